package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/chatdocs/internal/adapters/driven/embedding/hashing"
	"github.com/custodia-labs/chatdocs/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/chatdocs/internal/core/domain"
	"github.com/custodia-labs/chatdocs/internal/core/ports/driving"
)

// seedIndex ingests docs with the hashing embedder into a fresh in-memory index.
func seedIndex(t *testing.T, docs []domain.Document) *memory.VectorIndexFactory {
	t.Helper()
	indexes := memory.NewVectorIndexFactory()
	svc := newTestIngest(t, &mockLoader{docs: docs}, hashing.NewEmbeddingService(0), indexes)
	_, err := svc.Ingest(context.Background(), driving.IngestOptions{})
	require.NoError(t, err)
	return indexes
}

func TestRetrieve_BeforeIngest(t *testing.T) {
	svc := NewRetrieverService(hashing.NewEmbeddingService(0), memory.NewVectorIndexFactory(), 3)

	_, err := svc.Retrieve(context.Background(), "anything", 3)
	assert.True(t, errors.Is(err, domain.ErrIndexNotFound))
}

func TestRetrieve_SingleSource(t *testing.T) {
	indexes := seedIndex(t, []domain.Document{
		{ID: "intro", SourceID: "intro.md", Content: "LoopDocs explains dosing"},
	})
	svc := NewRetrieverService(hashing.NewEmbeddingService(0), indexes, 3)

	result, err := svc.Retrieve(context.Background(), "What does LoopDocs explain?", 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"intro.md"}, result.Sources())
}

func TestRetrieve_OrderingAndTruncation(t *testing.T) {
	indexes := seedIndex(t, testDocs())
	svc := NewRetrieverService(hashing.NewEmbeddingService(0), indexes, 2)

	result, err := svc.Retrieve(context.Background(), "build Loop with Xcode on a Mac", 0)
	require.NoError(t, err)
	require.Len(t, result.Chunks, 2, "k <= 0 uses the default")

	for i := 1; i < len(result.Chunks); i++ {
		assert.GreaterOrEqual(t, result.Chunks[i-1].Score, result.Chunks[i].Score)
	}
	assert.Equal(t, "build/overview.md", result.Chunks[0].Chunk.Source())

	all, err := svc.Retrieve(context.Background(), "build", 1000)
	require.NoError(t, err)
	count, _ := mustOpen(t, indexes).Count(context.Background())
	assert.Len(t, all.Chunks, count)
}

func TestRetrieve_Deterministic(t *testing.T) {
	indexes := seedIndex(t, testDocs())
	svc := NewRetrieverService(hashing.NewEmbeddingService(0), indexes, 3)

	a, err := svc.Retrieve(context.Background(), "dosing", 3)
	require.NoError(t, err)
	b, err := svc.Retrieve(context.Background(), "dosing", 3)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestRetrieve_EmptyQuery(t *testing.T) {
	svc := NewRetrieverService(hashing.NewEmbeddingService(0), memory.NewVectorIndexFactory(), 3)
	_, err := svc.Retrieve(context.Background(), "   ", 3)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestRetrieve_EmbeddingUnavailable(t *testing.T) {
	indexes := seedIndex(t, testDocs())
	svc := NewRetrieverService(&mockEmbeddingService{model: "hashing-384", embedErr: errors.New("timeout")}, indexes, 3)

	_, err := svc.Retrieve(context.Background(), "dosing", 3)
	assert.True(t, errors.Is(err, domain.ErrEmbeddingUnavailable))
}

func TestRetrieve_ModelMismatch(t *testing.T) {
	indexes := seedIndex(t, testDocs())
	svc := NewRetrieverService(&mockEmbeddingService{model: "all-minilm"}, indexes, 3)

	_, err := svc.Retrieve(context.Background(), "dosing", 3)
	assert.True(t, errors.Is(err, domain.ErrIndexMismatch))
}

func TestRetriever_Close(t *testing.T) {
	indexes := seedIndex(t, testDocs())
	svc := NewRetrieverService(hashing.NewEmbeddingService(0), indexes, 0)

	assert.NoError(t, svc.Close())
	_, err := svc.Retrieve(context.Background(), "dosing", 0)
	require.NoError(t, err)
	assert.NoError(t, svc.Close())
}

func mustOpen(t *testing.T, indexes *memory.VectorIndexFactory) *memory.VectorIndex {
	t.Helper()
	index, err := indexes.Open(context.Background())
	require.NoError(t, err)
	return index.(*memory.VectorIndex)
}
