package postprocessors

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/chatdocs/internal/core/domain"
	"github.com/custodia-labs/chatdocs/internal/postprocessors/sections"
)

// mockProcessor is a test processor that returns predefined chunks.
type mockProcessor struct {
	name   string
	chunks []domain.Chunk
	err    error
	seen   []domain.Chunk
}

func (m *mockProcessor) Name() string {
	return m.name
}

func (m *mockProcessor) Process(_ context.Context, _ *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error) {
	m.seen = chunks
	if m.err != nil {
		return nil, m.err
	}
	if m.chunks != nil {
		return m.chunks, nil
	}
	return chunks, nil
}

func testDoc() *domain.Document {
	return &domain.Document{ID: "doc", SourceID: "intro.md", Content: "test content"}
}

func TestPipeline_Len(t *testing.T) {
	assert.Equal(t, 0, NewPipeline().Len())
	assert.Equal(t, 2, NewPipeline(&mockProcessor{name: "a"}, &mockProcessor{name: "b"}).Len())
}

func TestPipeline_Process_NilDocument(t *testing.T) {
	_, err := NewPipeline().Process(context.Background(), nil)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestPipeline_Process_EmptyPipeline(t *testing.T) {
	chunks, err := NewPipeline().Process(context.Background(), testDoc())
	require.NoError(t, err)
	assert.Nil(t, chunks)
}

func TestPipeline_Process_ChainsInOrder(t *testing.T) {
	first := &mockProcessor{name: "first", chunks: []domain.Chunk{{ID: "c1"}}}
	second := &mockProcessor{name: "second"}

	chunks, err := NewPipeline(first, second).Process(context.Background(), testDoc())
	require.NoError(t, err)

	assert.Nil(t, first.seen, "first processor receives nil chunks")
	require.Len(t, second.seen, 1)
	require.Len(t, chunks, 1)
	assert.Equal(t, "c1", chunks[0].ID)
}

func TestPipeline_Process_StampsSource(t *testing.T) {
	first := &mockProcessor{name: "split", chunks: []domain.Chunk{{ID: "c1"}, {ID: "c2", Metadata: map[string]any{"k": "v"}}}}

	chunks, err := NewPipeline(first).Process(context.Background(), testDoc())
	require.NoError(t, err)

	for _, c := range chunks {
		assert.Equal(t, "doc", c.DocumentID)
		assert.Equal(t, "intro.md", c.SourceID)
		assert.Equal(t, "intro.md", c.Metadata[domain.MetadataSource])
	}
	assert.Equal(t, "v", chunks[1].Metadata["k"])
}

func TestPipeline_Process_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewPipeline(&mockProcessor{name: "split"}).Process(ctx, testDoc())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPipeline_Process_ProcessorError(t *testing.T) {
	expectedErr := errors.New("processor failed")
	p := NewPipeline(&mockProcessor{name: "failing", err: expectedErr})

	_, err := p.Process(context.Background(), testDoc())
	require.Error(t, err)
	assert.True(t, errors.Is(err, expectedErr))
	assert.Contains(t, err.Error(), "stage failing")
}

func TestNewDefaultPipeline(t *testing.T) {
	p, err := NewDefaultPipeline(domain.ChunkingSettings{Size: 20, Overlap: 5})
	require.NoError(t, err)
	assert.Equal(t, 2, p.Len())

	doc := &domain.Document{ID: "d", SourceID: "sky.md", Content: "# Sky\nThe sky is blue. The sky is vast."}
	chunks, err := p.Process(context.Background(), doc)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(chunks), 2)
	for _, c := range chunks {
		assert.Equal(t, "sky.md", c.SourceID)
		assert.Equal(t, "Sky", c.Metadata[sections.MetadataSection])
	}
}

func TestNewDefaultPipeline_InvalidSettings(t *testing.T) {
	_, err := NewDefaultPipeline(domain.ChunkingSettings{Size: 10, Overlap: 10})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}
