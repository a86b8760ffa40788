package driving

import (
	"context"

	"github.com/custodia-labs/chatdocs/internal/core/domain"
)

// DefaultPeekLimit is the number of records shown by inspection.
const DefaultPeekLimit = 5

// IndexService exposes read-only inspection of the persisted index.
type IndexService interface {
	// Stats summarises the index.
	Stats(ctx context.Context) (*domain.IndexStats, error)

	// Peek returns up to limit records in insertion order.
	Peek(ctx context.Context, limit int) ([]domain.Chunk, error)
}

// ModelService lists the language models available to the configured provider.
type ModelService interface {
	// ListModels returns model identifiers.
	// Returns domain.ErrNotImplemented if the provider cannot enumerate models.
	ListModels(ctx context.Context) ([]string, error)
}
