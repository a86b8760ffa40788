package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/chatdocs/internal/core/domain"
	"github.com/custodia-labs/chatdocs/internal/core/ports/driven"
	"github.com/custodia-labs/chatdocs/internal/core/ports/driving"
	"github.com/custodia-labs/chatdocs/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// DefaultEmbedBatchSize is the number of chunks embedded per request.
const DefaultEmbedBatchSize = 32

// IngestService builds the vector index from the documentation corpus.
type IngestService struct {
	loader    driven.DocumentLoader
	pipeline  driven.PostProcessorPipeline
	embedder  driven.EmbeddingService
	indexes   driven.VectorIndexFactory
	batchSize int
}

// NewIngestService creates a new ingestion service.
func NewIngestService(
	loader driven.DocumentLoader,
	pipeline driven.PostProcessorPipeline,
	embedder driven.EmbeddingService,
	indexes driven.VectorIndexFactory,
) *IngestService {
	return &IngestService{
		loader:    loader,
		pipeline:  pipeline,
		embedder:  embedder,
		indexes:   indexes,
		batchSize: DefaultEmbedBatchSize,
	}
}

// SetBatchSize overrides the embedding batch size.
func (s *IngestService) SetBatchSize(n int) {
	if n > 0 {
		s.batchSize = n
	}
}

// Ingest loads, chunks, embeds and stores the corpus.
//
// Every chunk is embedded before the index is opened for writing, so a
// loader or embedding failure leaves the persisted index untouched.
func (s *IngestService) Ingest(ctx context.Context, opts driving.IngestOptions) (*domain.IngestStats, error) {
	start := time.Now()
	logger.Section("Ingest")

	// 1. Load documents
	docs, err := s.loader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load documents: %w", err)
	}
	logger.Debug("Loaded %d documents from %s", len(docs), s.loader.Root())

	// 2. Chunk
	var chunks []domain.Chunk
	for i := range docs {
		docChunks, err := s.pipeline.Process(ctx, &docs[i])
		if err != nil {
			return nil, fmt.Errorf("chunk %s: %w", docs[i].SourceID, err)
		}
		chunks = append(chunks, docChunks...)
	}
	logger.Debug("Split into %d chunks", len(chunks))

	// 3. Embed
	if err := s.embed(ctx, chunks, opts.Progress); err != nil {
		return nil, err
	}

	// 4. Store
	index, err := s.indexes.Create(ctx)
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}
	defer index.Close()

	added := 0
	switch {
	case opts.Rebuild:
		// The old index is only dropped once the new one is fully written.
		logger.Debug("Rebuilding index at %s", s.indexes.Location())
		model, dims := "", 0
		if len(chunks) > 0 {
			model, dims = s.embedder.ModelName(), len(chunks[0].Embedding)
		}
		added, err = index.Replace(ctx, model, dims, chunks)
		if err != nil {
			return nil, fmt.Errorf("rebuild index: %w", err)
		}
	case len(chunks) > 0:
		dims := len(chunks[0].Embedding)
		if err := index.EnsureModel(ctx, s.embedder.ModelName(), dims); err != nil {
			return nil, err
		}
		added, err = index.Add(ctx, chunks)
		if err != nil {
			return nil, fmt.Errorf("add chunks: %w", err)
		}
	}

	stats := &domain.IngestStats{
		Documents: len(docs),
		Chunks:    len(chunks),
		Added:     added,
		Skipped:   len(chunks) - added,
		Rebuilt:   opts.Rebuild,
		Duration:  time.Since(start),
	}
	logger.Info("Ingested %d documents: %d chunks, %d added, %d already indexed",
		stats.Documents, stats.Chunks, stats.Added, stats.Skipped)
	return stats, nil
}

// embed fills chunk embeddings in batches.
func (s *IngestService) embed(ctx context.Context, chunks []domain.Chunk, progress func(done, total int)) error {
	total := len(chunks)
	for start := 0; start < total; start += s.batchSize {
		if err := ctx.Err(); err != nil {
			return err
		}

		end := min(start+s.batchSize, total)
		texts := make([]string, end-start)
		for i := range texts {
			texts[i] = chunks[start+i].Content
		}

		vectors, err := s.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return embeddingError(err)
		}
		if len(vectors) != len(texts) {
			return fmt.Errorf("%w: got %d vectors for %d chunks",
				domain.ErrEmbeddingUnavailable, len(vectors), len(texts))
		}
		for i, vec := range vectors {
			chunks[start+i].Embedding = vec
		}

		logger.Debug("Embedded %d/%d chunks", end, total)
		if progress != nil {
			progress(end, total)
		}
	}
	return nil
}

// embeddingError ensures embedder failures carry domain.ErrEmbeddingUnavailable.
func embeddingError(err error) error {
	if errors.Is(err, domain.ErrEmbeddingUnavailable) || errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
}
