package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/custodia-labs/chatdocs/internal/core/domain"
	"github.com/custodia-labs/chatdocs/internal/core/ports/driven"
	"github.com/custodia-labs/chatdocs/internal/core/ports/driving"
	"github.com/custodia-labs/chatdocs/internal/logger"
)

// Ensure RetrieverService implements the interface.
var _ driving.RetrieverService = (*RetrieverService)(nil)

// RetrieverService embeds queries and searches the vector index.
// The index is opened on first use and kept open for later queries.
type RetrieverService struct {
	embedder driven.EmbeddingService
	indexes  driven.VectorIndexFactory
	defaultK int

	mu    sync.Mutex
	index driven.VectorIndex
}

// NewRetrieverService creates a new retriever. defaultK <= 0 selects domain.DefaultK.
func NewRetrieverService(
	embedder driven.EmbeddingService,
	indexes driven.VectorIndexFactory,
	defaultK int,
) *RetrieverService {
	if defaultK <= 0 {
		defaultK = domain.DefaultK
	}
	return &RetrieverService{
		embedder: embedder,
		indexes:  indexes,
		defaultK: defaultK,
	}
}

// Retrieve embeds the query and returns up to k chunks, best first.
// An empty index yields an empty result.
func (s *RetrieverService) Retrieve(ctx context.Context, query string, k int) (*domain.RetrievalResult, error) {
	logger.Section("Retrieve")

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query is empty", domain.ErrInvalidInput)
	}
	if k <= 0 {
		k = s.defaultK
	}

	index, err := s.open(ctx)
	if err != nil {
		return nil, err
	}

	logger.Debug("Embedding query %q with %s", query, s.embedder.ModelName())
	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, embeddingError(err)
	}

	logger.Debug("Searching for top %d", k)
	hits, err := index.Search(ctx, vec, k)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}
	for _, h := range hits {
		logger.Debug("  %.4f  %s #%d", h.Score, h.Chunk.Source(), h.Chunk.Position)
	}

	return &domain.RetrievalResult{Query: query, Chunks: hits}, nil
}

// open returns the cached index, opening it and checking the embedding
// model on first use.
func (s *RetrieverService) open(ctx context.Context) (driven.VectorIndex, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.index != nil {
		return s.index, nil
	}

	index, err := s.indexes.Open(ctx)
	if err != nil {
		return nil, err
	}

	stats, err := index.Stats(ctx)
	if err != nil {
		index.Close()
		return nil, fmt.Errorf("read index stats: %w", err)
	}
	if stats.EmbeddingModel != "" && stats.EmbeddingModel != s.embedder.ModelName() {
		index.Close()
		return nil, fmt.Errorf("%w: index built with %s, configured %s. Re-run ingest with --rebuild",
			domain.ErrIndexMismatch, stats.EmbeddingModel, s.embedder.ModelName())
	}
	logger.Debug("Opened index %s (%d records)", stats.Location, stats.Count)

	s.index = index
	return index, nil
}

// Close releases the cached index.
func (s *RetrieverService) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.index == nil {
		return nil
	}
	err := s.index.Close()
	s.index = nil
	return err
}
