// Package hashing implements the local embedding backend: a signed
// feature-hashing vectorizer. It is deterministic, needs no network and no
// corpus preparation, and always produces vectors of a fixed dimensionality.
package hashing

import (
	"context"
	"hash/fnv"
	"math"
	"regexp"
	"strings"
)

// Dimension is fixed so that vectors stay comparable across processes.
const Dimension = 384

// Embedder hashes term frequencies into a fixed-length L2-normalized vector.
type Embedder struct {
	tokenPattern *regexp.Regexp
	stopwords    map[string]struct{}
}

func New() *Embedder {
	return &Embedder{
		tokenPattern: regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*|\p{N}+(?:[.:\-]\p{N}+)*`),
		stopwords:    defaultStopwords(),
	}
}

func (e *Embedder) Name() string { return "hashing" }

func (e *Embedder) Dimension() int { return Dimension }

// Embed returns one vector per text. A text with no usable tokens embeds to
// the zero vector.
func (e *Embedder) Embed(_ context.Context, texts []string) ([][]float64, error) {
	vectors := make([][]float64, len(texts))
	for i, text := range texts {
		vectors[i] = e.embedOne(text)
	}
	return vectors, nil
}

func (e *Embedder) embedOne(text string) []float64 {
	vec := make([]float64, Dimension)
	tokens := e.tokenize(text)
	if len(tokens) == 0 {
		return vec
	}
	for _, tok := range tokens {
		bucket, sign := hashToken(tok)
		vec[bucket] += sign / float64(len(tokens))
	}
	// L2 normalize so cosine similarity reduces to a dot product
	norm := 0.0
	for _, v := range vec {
		norm += v * v
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec
}

// hashToken maps a token to a bucket index and a sign. The top bit of the
// hash gives the sign, which keeps colliding terms from systematically
// accumulating.
func hashToken(tok string) (int, float64) {
	h := fnv.New32a()
	h.Write([]byte(tok))
	sum := h.Sum32()
	bucket := int(sum % Dimension)
	sign := 1.0
	if (sum>>31)&1 == 1 {
		sign = -1.0
	}
	return bucket, sign
}

func (e *Embedder) tokenize(text string) []string {
	lower := strings.ToLower(text)
	raw := e.tokenPattern.FindAllString(lower, -1)
	if len(raw) == 0 {
		return nil
	}
	out := raw[:0]
	for _, t := range raw {
		if _, isStop := e.stopwords[t]; isStop {
			continue
		}
		out = append(out, t)
	}
	return out
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at", "by", "with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "this", "that", "these", "those", "from", "up", "down", "over", "under", "again", "further", "than", "so", "such", "into", "about", "between", "through", "during", "before", "after", "above", "below", "out", "off", "own", "same", "too", "very", "can", "will", "just", "don", "should", "now",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
