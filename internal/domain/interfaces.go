package domain

import "context"

// Normalizer converts one raw log format into uniform LogRecords.
// Parse returns the records, the number of malformed records that were
// skipped, and an error only when the whole file is unusable.
type Normalizer interface {
	Name() string
	Parse(path string) (records []LogRecord, skipped int, err error)
}

// Embedder converts free text into fixed-length numeric vectors. The backend
// is chosen once at construction and fixed for the process lifetime; vectors
// from different backends are not comparable.
type Embedder interface {
	Name() string
	Dimension() int
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}

// Answerer turns a fully assembled prompt into free text. It is the one
// external collaborator of the retrieval core.
type Answerer interface {
	Name() string
	Answer(ctx context.Context, prompt string) (string, error)
}
