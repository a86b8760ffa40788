package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/chatdocs/internal/adapters/driven/embedding/hashing"
	"github.com/custodia-labs/chatdocs/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/chatdocs/internal/core/domain"
)

func newTestAsk(t *testing.T, llm *mockLLMService) *AskService {
	t.Helper()
	indexes := seedIndex(t, []domain.Document{
		{ID: "intro", SourceID: "intro.md", Content: "LoopDocs explains dosing"},
	})
	svc := NewAskService(
		NewRetrieverService(hashing.NewEmbeddingService(0), indexes, 3),
		NewAnswerService(llm, 0.2),
	)
	svc.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	return svc
}

func TestAsk_AppendsTurn(t *testing.T) {
	transcript := memory.NewTranscriptLog()
	svc := newTestAsk(t, &mockLLMService{response: "It explains dosing."})

	answer, err := svc.Ask(context.Background(), "What does LoopDocs explain?", 3, transcript)
	require.NoError(t, err)
	assert.Equal(t, []string{"intro.md"}, answer.Sources)

	turns, err := transcript.Turns(context.Background())
	require.NoError(t, err)
	require.Len(t, turns, 1)
	assert.Equal(t, "What does LoopDocs explain?", turns[0].Question)
	assert.Equal(t, "It explains dosing.", turns[0].Answer)
	assert.Equal(t, []string{"intro.md"}, turns[0].Sources)
	assert.Equal(t, 2024, turns[0].AskedAt.Year())
}

func TestAsk_FailureAppendsNothing(t *testing.T) {
	transcript := memory.NewTranscriptLog()
	svc := newTestAsk(t, &mockLLMService{err: errors.New("boom")})

	_, err := svc.Ask(context.Background(), "q", 3, transcript)
	assert.True(t, errors.Is(err, domain.ErrSynthesisUnavailable))

	turns, _ := transcript.Turns(context.Background())
	assert.Empty(t, turns)
}

func TestAsk_BeforeIngest(t *testing.T) {
	llm := &mockLLMService{response: "x"}
	svc := NewAskService(
		NewRetrieverService(hashing.NewEmbeddingService(0), memory.NewVectorIndexFactory(), 3),
		NewAnswerService(llm, 0.2),
	)

	_, err := svc.Ask(context.Background(), "q", 3, nil)
	assert.True(t, errors.Is(err, domain.ErrIndexNotFound))
	assert.Equal(t, 0, llm.calls)
}

func TestAsk_NilTranscript(t *testing.T) {
	svc := newTestAsk(t, &mockLLMService{response: "ok"})
	_, err := svc.Ask(context.Background(), "dosing", 0, nil)
	assert.NoError(t, err)
}

func TestAsk_TranscriptError(t *testing.T) {
	svc := newTestAsk(t, &mockLLMService{response: "ok"})
	_, err := svc.Ask(context.Background(), "dosing", 0, failingTranscript{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "record transcript")
}
