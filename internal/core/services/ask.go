package services

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/chatdocs/internal/core/domain"
	"github.com/custodia-labs/chatdocs/internal/core/ports/driving"
	"github.com/custodia-labs/chatdocs/internal/logger"
)

// Ensure AskService implements the interface.
var _ driving.AskService = (*AskService)(nil)

// AskService runs retrieve then answer, and records successful turns.
type AskService struct {
	retriever driving.RetrieverService
	answerer  driving.AnswerService
	now       func() time.Time
}

// NewAskService creates a new ask pipeline.
func NewAskService(retriever driving.RetrieverService, answerer driving.AnswerService) *AskService {
	return &AskService{
		retriever: retriever,
		answerer:  answerer,
		now:       time.Now,
	}
}

// Ask retrieves, answers and, when transcript is non-nil, appends the turn.
// Any failure returns before the transcript is touched.
func (s *AskService) Ask(
	ctx context.Context, query string, k int, transcript driving.TranscriptRecorder,
) (*domain.Answer, error) {
	retrieved, err := s.retriever.Retrieve(ctx, query, k)
	if err != nil {
		return nil, err
	}

	answer, err := s.answerer.Answer(ctx, retrieved.Query, retrieved)
	if err != nil {
		return nil, err
	}

	if transcript != nil {
		if err := transcript.Append(ctx, domain.NewTurn(answer, s.now())); err != nil {
			return nil, fmt.Errorf("record transcript: %w", err)
		}
	}

	logger.Debug("Answered with %d sources", len(answer.Sources))
	return answer, nil
}
