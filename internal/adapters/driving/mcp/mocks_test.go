package mcp

import (
	"context"

	"github.com/custodia-labs/chatdocs/internal/core/domain"
	"github.com/custodia-labs/chatdocs/internal/core/ports/driving"
)

// mockRetrieverService is a mock implementation of driving.RetrieverService.
type mockRetrieverService struct {
	result *domain.RetrievalResult
	err    error
	gotK   int
}

func (m *mockRetrieverService) Retrieve(_ context.Context, query string, k int) (*domain.RetrievalResult, error) {
	m.gotK = k
	if m.err != nil {
		return nil, m.err
	}
	if m.result == nil {
		return &domain.RetrievalResult{Query: query, Chunks: []domain.RetrievedChunk{}}, nil
	}
	return m.result, nil
}

// mockAskService is a mock implementation of driving.AskService.
// It appends a turn to the transcript on success, like the real service.
type mockAskService struct {
	answer *domain.Answer
	err    error
}

func (m *mockAskService) Ask(
	ctx context.Context,
	query string,
	_ int,
	transcript driving.TranscriptRecorder,
) (*domain.Answer, error) {
	if m.err != nil {
		return nil, m.err
	}
	answer := *m.answer
	answer.Query = query
	if transcript != nil {
		if err := transcript.Append(ctx, domain.NewTurn(&answer, testTime)); err != nil {
			return nil, err
		}
	}
	return &answer, nil
}

// mockIndexService is a mock implementation of driving.IndexService.
type mockIndexService struct {
	stats *domain.IndexStats
	err   error
}

func (m *mockIndexService) Stats(_ context.Context) (*domain.IndexStats, error) {
	return m.stats, m.err
}

func (m *mockIndexService) Peek(_ context.Context, _ int) ([]domain.Chunk, error) {
	return nil, m.err
}
