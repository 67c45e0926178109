package index

import (
	"context"
	"errors"

	"docchat/internal/models"
)

// DefaultK is the number of chunks returned when the caller passes k <= 0.
const DefaultK = 4

var (
	// ErrEmptyCorpus rejects building an index over zero chunks. A degenerate
	// index that always returns nothing would hide ingestion bugs.
	ErrEmptyCorpus = errors.New("empty corpus")

	// ErrEmbedding marks a failure of the embedding service.
	ErrEmbedding = errors.New("embedding error")
)

// Embedder maps text to a fixed-dimension vector. Deterministic for
// identical input. Satisfied by langchaingo's *embeddings.EmbedderImpl.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Index is a built semantic index over one document's chunks.
// Implementations are immutable after construction; rebuilding means
// discarding and creating a new one.
type Index interface {
	// Search returns the k chunks nearest to the query, sorted by ascending
	// distance with ties broken by ingestion order. Returns fewer than k when
	// the corpus is smaller; k exceeding the corpus size is not an error.
	Search(ctx context.Context, query string, k int) ([]models.TextChunk, error)
}
