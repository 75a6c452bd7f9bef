package hashing

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDimensionIsFixed(t *testing.T) {
	e := New()
	assert.Equal(t, Dimension, e.Dimension())

	vecs, err := e.Embed(context.Background(), []string{"failed console login", "x"})
	require.NoError(t, err)
	require.Len(t, vecs, 2)
	assert.Len(t, vecs[0], Dimension)
	assert.Len(t, vecs[1], Dimension)
}

func TestEmbeddingIsDeterministic(t *testing.T) {
	e := New()
	first, err := e.Embed(context.Background(), []string{"Event: ConsoleLogin | Result: Failure"})
	require.NoError(t, err)
	second, err := New().Embed(context.Background(), []string{"Event: ConsoleLogin | Result: Failure"})
	require.NoError(t, err)
	assert.Equal(t, first[0], second[0])
}

func TestVectorsAreL2Normalized(t *testing.T) {
	e := New()
	vecs, err := e.Embed(context.Background(), []string{"user alice failed login from 1.2.3.4"})
	require.NoError(t, err)
	norm := 0.0
	for _, v := range vecs[0] {
		norm += v * v
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-9)
}

func TestNoTokensEmbedsToZeroVector(t *testing.T) {
	e := New()
	vecs, err := e.Embed(context.Background(), []string{"   ...  "})
	require.NoError(t, err)
	for _, v := range vecs[0] {
		assert.Zero(t, v)
	}
}

func TestSimilarTextsAreCloser(t *testing.T) {
	e := New()
	vecs, err := e.Embed(context.Background(), []string{
		"failed console login attempt",
		"console login failed",
		"dynamodb table scan completed",
	})
	require.NoError(t, err)
	related := dot(vecs[0], vecs[1])
	unrelated := dot(vecs[0], vecs[2])
	assert.Greater(t, related, unrelated)
}

func dot(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
