package driven

import (
	"context"

	"github.com/custodia-labs/chatdocs/internal/core/domain"
)

// VectorIndex persists chunk embeddings with their text and metadata
// and answers nearest-neighbour queries.
//
// Search ranks by cosine similarity, descending. Records with equal scores
// keep insertion order. The index is append-only between rebuilds.
type VectorIndex interface {
	// Add appends chunks with their embeddings. Every chunk must carry an
	// embedding of the index dimension. Chunks whose ID is already stored
	// are skipped. Returns the number of records actually added.
	Add(ctx context.Context, chunks []domain.Chunk) (int, error)

	// Search returns up to k chunks most similar to the query vector.
	// An empty index yields an empty result, not an error.
	Search(ctx context.Context, query []float32, k int) ([]domain.RetrievedChunk, error)

	// Count returns the number of stored records.
	Count(ctx context.Context) (int, error)

	// Peek returns up to limit records in insertion order.
	Peek(ctx context.Context, limit int) ([]domain.Chunk, error)

	// Stats summarises the index.
	Stats(ctx context.Context) (*domain.IndexStats, error)

	// EnsureModel records the embedding model and dimension on first use and
	// returns domain.ErrIndexMismatch if the index was built with another.
	EnsureModel(ctx context.Context, model string, dims int) error

	// Replace swaps the whole index for chunks built with model, atomically.
	// If it fails, the previous records and model are left untouched.
	// Returns the number of records stored.
	Replace(ctx context.Context, model string, dims int, chunks []domain.Chunk) (int, error)

	// Close releases resources.
	Close() error
}

// VectorIndexFactory opens the persisted index.
type VectorIndexFactory interface {
	// Open opens an existing index.
	// Returns domain.ErrIndexNotFound if nothing has been ingested yet.
	Open(ctx context.Context) (VectorIndex, error)

	// Create opens the index, creating its storage if absent.
	Create(ctx context.Context) (VectorIndex, error)

	// Location returns where the index is persisted.
	Location() string
}
