package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/chatdocs/internal/core/domain"
	"github.com/custodia-labs/chatdocs/internal/core/ports/driven"
	"github.com/custodia-labs/chatdocs/internal/core/ports/driving"
)

// Ensure services implement the interfaces.
var (
	_ driving.IndexService = (*IndexService)(nil)
	_ driving.ModelService = (*ModelService)(nil)
)

// IndexService inspects the persisted vector index.
type IndexService struct {
	indexes driven.VectorIndexFactory
}

// NewIndexService creates a new index inspection service.
func NewIndexService(indexes driven.VectorIndexFactory) *IndexService {
	return &IndexService{indexes: indexes}
}

// Stats summarises the index.
func (s *IndexService) Stats(ctx context.Context) (*domain.IndexStats, error) {
	index, err := s.indexes.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer index.Close()

	stats, err := index.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("read index stats: %w", err)
	}
	return stats, nil
}

// Peek returns up to limit records in insertion order.
// limit <= 0 selects driving.DefaultPeekLimit.
func (s *IndexService) Peek(ctx context.Context, limit int) ([]domain.Chunk, error) {
	if limit <= 0 {
		limit = driving.DefaultPeekLimit
	}

	index, err := s.indexes.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer index.Close()

	chunks, err := index.Peek(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("peek index: %w", err)
	}
	return chunks, nil
}

// ModelService lists models from the configured LLM provider.
type ModelService struct {
	llm driven.LLMService
}

// NewModelService creates a new model listing service.
func NewModelService(llm driven.LLMService) *ModelService {
	return &ModelService{llm: llm}
}

// ListModels returns model identifiers.
func (s *ModelService) ListModels(ctx context.Context) ([]string, error) {
	if s.llm == nil {
		return nil, fmt.Errorf("list models: %w", domain.ErrLLMUnavailable)
	}
	lister, ok := s.llm.(driven.ModelLister)
	if !ok {
		return nil, fmt.Errorf("list models for %s: %w", s.llm.ModelName(), domain.ErrNotImplemented)
	}

	models, err := lister.ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}
	return models, nil
}
