package driven

import (
	"context"

	"github.com/custodia-labs/chatdocs/internal/core/domain"
)

// PostProcessor is one stage of turning a document into chunks.
// The first stage receives nil and splits the document; later stages
// annotate the chunks they are given. No stage may change chunk content,
// since chunks must stay exact substrings of the document.
type PostProcessor interface {
	// Name identifies the stage in errors and logs.
	Name() string

	// Process returns the chunks for doc after this stage.
	Process(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error)
}

// PostProcessorPipeline runs every stage in order.
type PostProcessorPipeline interface {
	// Process returns the final chunks for doc, in document order.
	Process(ctx context.Context, doc *domain.Document) ([]domain.Chunk, error)
}
