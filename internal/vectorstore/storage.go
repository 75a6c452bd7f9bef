// Package vectorstore defines the vector index contract and its backends.
package vectorstore

import (
	"math"

	"securequery/internal/apperr"
	"securequery/internal/domain"
)

// Storage is a persistent, named collection of (id, vector, document,
// metadata) entries.
//
// All backends use cosine distance (1 - cosine similarity): lower is more
// similar, Search returns matches in ascending distance order. Re-adding an
// existing id overwrites the stored entry.
type Storage interface {
	// Add stores one entry per record. The records and vectors slices must
	// have equal length; a mismatch is a validation error and nothing is
	// inserted.
	Add(records []domain.LogRecord, vectors [][]float64) error

	// Search returns up to k matches for the query vector, most similar
	// first. Searching an empty collection returns an empty slice; k <= 0 is
	// a validation error.
	Search(vector []float64, k int) ([]domain.Match, error)

	// Clear destroys all entries. The collection is immediately usable again.
	Clear() error

	// Count returns the number of stored entries.
	Count() (int, error)

	Close() error
}

// ValidateBatch checks an Add batch before any insert happens.
func ValidateBatch(records []domain.LogRecord, vectors [][]float64) error {
	if len(records) != len(vectors) {
		return apperr.Newf(apperr.CodeValidation,
			"records and vectors length mismatch: %d != %d", len(records), len(vectors))
	}
	return nil
}

// ValidateK checks the requested result count.
func ValidateK(k int) error {
	if k <= 0 {
		return apperr.Newf(apperr.CodeValidation, "k must be positive, got %d", k)
	}
	return nil
}

// CosineDistance returns 1 - cos(a, b). Vectors with zero norm are maximally
// distant from everything.
func CosineDistance(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	dot, na, nb := 0.0, 0.0, 0.0
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
}
