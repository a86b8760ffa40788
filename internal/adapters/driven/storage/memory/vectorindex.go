package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/chatdocs/internal/core/domain"
	"github.com/custodia-labs/chatdocs/internal/core/ports/driven"
)

// Ensure VectorIndex implements the interface.
var (
	_ driven.VectorIndex        = (*VectorIndex)(nil)
	_ driven.VectorIndexFactory = (*VectorIndexFactory)(nil)
)

// VectorIndex is an in-memory implementation of driven.VectorIndex.
// Search is an exact linear scan.
type VectorIndex struct {
	mu        sync.RWMutex
	chunks    []domain.Chunk
	ids       map[string]struct{}
	model     string
	dims      int
	updatedAt time.Time
}

// NewVectorIndex creates an empty in-memory index.
func NewVectorIndex() *VectorIndex {
	return &VectorIndex{ids: make(map[string]struct{})}
}

// Add appends chunks, skipping IDs already present.
func (v *VectorIndex) Add(_ context.Context, chunks []domain.Chunk) (int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if err := checkEmbeddings(chunks, v.dims); err != nil {
		return 0, err
	}

	added := 0
	for _, c := range chunks {
		if _, dup := v.ids[c.ID]; dup {
			continue
		}
		c.Embedding = append([]float32(nil), c.Embedding...)
		v.chunks = append(v.chunks, c)
		v.ids[c.ID] = struct{}{}
		added++
	}
	if added > 0 {
		v.updatedAt = time.Now()
	}
	return added, nil
}

// Search scores every record by cosine similarity.
func (v *VectorIndex) Search(_ context.Context, query []float32, k int) ([]domain.RetrievedChunk, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	if v.dims > 0 && len(query) != v.dims {
		return nil, fmt.Errorf("%w: query has %d dimensions, index has %d",
			domain.ErrIndexMismatch, len(query), v.dims)
	}

	hits := make([]domain.RetrievedChunk, 0, len(v.chunks))
	for _, c := range v.chunks {
		score := domain.CosineSimilarity(query, c.Embedding)
		c.Embedding = nil
		hits = append(hits, domain.RetrievedChunk{Chunk: c, Score: score})
	}
	return domain.TopK(hits, k), nil
}

// Count returns the number of stored records.
func (v *VectorIndex) Count(_ context.Context) (int, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.chunks), nil
}

// Peek returns up to limit records in insertion order.
func (v *VectorIndex) Peek(_ context.Context, limit int) ([]domain.Chunk, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	if limit < 0 || limit > len(v.chunks) {
		limit = len(v.chunks)
	}
	out := make([]domain.Chunk, limit)
	for i := 0; i < limit; i++ {
		out[i] = v.chunks[i]
		out[i].Embedding = nil
	}
	return out, nil
}

// Stats summarises the index.
func (v *VectorIndex) Stats(_ context.Context) (*domain.IndexStats, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	sources := make(map[string]struct{})
	for _, c := range v.chunks {
		sources[c.Source()] = struct{}{}
	}
	return &domain.IndexStats{
		Location:       Location,
		Count:          len(v.chunks),
		Sources:        len(sources),
		EmbeddingModel: v.model,
		Dimensions:     v.dims,
		UpdatedAt:      v.updatedAt,
	}, nil
}

// EnsureModel records the model on first use and rejects a different one later.
func (v *VectorIndex) EnsureModel(_ context.Context, model string, dims int) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.model == "" {
		v.model, v.dims = model, dims
		return nil
	}
	if v.model != model || v.dims != dims {
		return fmt.Errorf("%w: index uses %s (%d), configured %s (%d)",
			domain.ErrIndexMismatch, v.model, v.dims, model, dims)
	}
	return nil
}

// Replace swaps in chunks and model under one lock. A rejected batch
// leaves the index as it was.
func (v *VectorIndex) Replace(_ context.Context, model string, dims int, chunks []domain.Chunk) (int, error) {
	if err := checkEmbeddings(chunks, dims); err != nil {
		return 0, err
	}

	next := make([]domain.Chunk, 0, len(chunks))
	ids := make(map[string]struct{}, len(chunks))
	for _, c := range chunks {
		if _, dup := ids[c.ID]; dup {
			continue
		}
		c.Embedding = append([]float32(nil), c.Embedding...)
		next = append(next, c)
		ids[c.ID] = struct{}{}
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	v.chunks, v.ids = next, ids
	v.model, v.dims = model, dims
	v.updatedAt = time.Time{}
	if len(next) > 0 {
		v.updatedAt = time.Now()
	}
	return len(next), nil
}

func checkEmbeddings(chunks []domain.Chunk, dims int) error {
	for i := range chunks {
		if len(chunks[i].Embedding) == 0 {
			return fmt.Errorf("%w: chunk %s has no embedding", domain.ErrInvalidInput, chunks[i].ID)
		}
		if dims > 0 && len(chunks[i].Embedding) != dims {
			return fmt.Errorf("%w: chunk %s has %d dimensions, index has %d",
				domain.ErrIndexMismatch, chunks[i].ID, len(chunks[i].Embedding), dims)
		}
	}
	return nil
}

// Close is a no-op; the index lives as long as its owner.
func (v *VectorIndex) Close() error {
	return nil
}

// VectorIndexFactory hands out a single shared in-memory index.
// Open behaves like a missing on-disk index until Create is called.
type VectorIndexFactory struct {
	mu      sync.Mutex
	index   *VectorIndex
	created bool
}

// NewVectorIndexFactory creates a factory with no index yet.
func NewVectorIndexFactory() *VectorIndexFactory {
	return &VectorIndexFactory{index: NewVectorIndex()}
}

// Open returns the index, or domain.ErrIndexNotFound before Create.
func (f *VectorIndexFactory) Open(_ context.Context) (driven.VectorIndex, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.created {
		return nil, domain.ErrIndexNotFound
	}
	return f.index, nil
}

// Create returns the index, marking it as existing.
func (f *VectorIndexFactory) Create(_ context.Context) (driven.VectorIndex, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.created = true
	return f.index, nil
}

// Location returns the in-memory marker.
func (f *VectorIndexFactory) Location() string {
	return Location
}
