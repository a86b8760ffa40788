package postprocessors

import (
	"github.com/custodia-labs/chatdocs/internal/core/domain"
	"github.com/custodia-labs/chatdocs/internal/postprocessors/chunker"
	"github.com/custodia-labs/chatdocs/internal/postprocessors/sections"
)

// NewDefaultPipeline builds the ingestion pipeline: fixed-size chunking
// followed by section annotation.
func NewDefaultPipeline(cfg domain.ChunkingSettings) (*Pipeline, error) {
	c, err := chunker.New(chunker.WithChunkSize(cfg.Size), chunker.WithOverlap(cfg.Overlap))
	if err != nil {
		return nil, err
	}
	return NewPipeline(c, sections.New()), nil
}
