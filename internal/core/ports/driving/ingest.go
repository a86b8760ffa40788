package driving

import (
	"context"

	"github.com/custodia-labs/chatdocs/internal/core/domain"
)

// IngestOptions configures an ingestion run.
type IngestOptions struct {
	// Rebuild clears the index before adding records.
	Rebuild bool

	// Progress, when set, is called after each embedded batch with the
	// number of chunks done so far and the total.
	Progress func(done, total int)
}

// IngestService builds the vector index from the documentation corpus.
type IngestService interface {
	// Ingest loads, chunks, embeds and stores the corpus.
	// Nothing is written if loading or embedding fails.
	Ingest(ctx context.Context, opts IngestOptions) (*domain.IngestStats, error)
}
