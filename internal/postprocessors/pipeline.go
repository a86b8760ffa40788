// Package postprocessors turns loaded documents into chunks ready to embed.
package postprocessors

import (
	"context"
	"fmt"

	"github.com/custodia-labs/chatdocs/internal/core/domain"
	"github.com/custodia-labs/chatdocs/internal/core/ports/driven"
	"github.com/custodia-labs/chatdocs/internal/logger"
)

// Ensure Pipeline implements the interface.
var _ driven.PostProcessorPipeline = (*Pipeline)(nil)

// Pipeline runs chunking stages in order.
type Pipeline struct {
	stages []driven.PostProcessor
}

// NewPipeline creates a pipeline. The first stage must produce chunks.
func NewPipeline(stages ...driven.PostProcessor) *Pipeline {
	return &Pipeline{stages: stages}
}

// Process splits doc and runs the annotation stages over the result.
// Every chunk inherits the document's ID and source, and the source is
// recorded in chunk metadata so it survives storage.
func (p *Pipeline) Process(ctx context.Context, doc *domain.Document) ([]domain.Chunk, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: document is nil", domain.ErrInvalidInput)
	}

	var chunks []domain.Chunk
	for _, stage := range p.stages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var err error
		chunks, err = stage.Process(ctx, doc, chunks)
		if err != nil {
			return nil, fmt.Errorf("stage %s: %w", stage.Name(), err)
		}
	}

	for i := range chunks {
		chunks[i].DocumentID = doc.ID
		chunks[i].SourceID = doc.SourceID
		if chunks[i].Metadata == nil {
			chunks[i].Metadata = make(map[string]any, 1)
		}
		chunks[i].Metadata[domain.MetadataSource] = doc.SourceID
	}

	logger.Debug("%s: %d chunks", doc.SourceID, len(chunks))
	return chunks, nil
}

// Len returns the number of stages.
func (p *Pipeline) Len() int {
	return len(p.stages)
}
