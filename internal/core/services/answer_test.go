package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/chatdocs/internal/core/domain"
	"github.com/custodia-labs/chatdocs/internal/core/ports/driven"
)

func retrievalFixture() *domain.RetrievalResult {
	return &domain.RetrievalResult{
		Query: "How do I build Loop?",
		Chunks: []domain.RetrievedChunk{
			{Chunk: domain.Chunk{SourceID: "build/overview.md", Content: "You need a Mac."}, Score: 0.9},
			{Chunk: domain.Chunk{SourceID: "build/xcode.md", Content: "Install Xcode."}, Score: 0.8},
			{Chunk: domain.Chunk{SourceID: "build/overview.md", Content: "Use a cable."}, Score: 0.7},
		},
	}
}

func TestAnswer_ReturnsVerbatimWithSources(t *testing.T) {
	llm := &mockLLMService{response: "  You need a Mac and Xcode.\n"}
	svc := NewAnswerService(llm, 0.2)

	answer, err := svc.Answer(context.Background(), "How do I build Loop?", retrievalFixture())
	require.NoError(t, err)

	assert.Equal(t, "  You need a Mac and Xcode.\n", answer.Text)
	assert.Equal(t, []string{"build/overview.md", "build/xcode.md"}, answer.Sources)
	assert.Equal(t, "How do I build Loop?", answer.Query)
	assert.Len(t, answer.Retrieved, 3)

	assert.Equal(t, 1, llm.calls)
	assert.InDelta(t, 0.2, llm.opts.Temperature, 1e-9)
	require.Len(t, llm.messages, 2)
	assert.Equal(t, driven.RoleSystem, llm.messages[0].Role)
	assert.Contains(t, llm.messages[0].Content, "You need a Mac.\n\nInstall Xcode.\n\nUse a cable.")
	assert.Contains(t, llm.messages[0].Content, "don't try to make up an answer")
	assert.Equal(t, "Question: How do I build Loop?\nHelpful Answer:", llm.messages[1].Content)
}

func TestAnswer_SynthesisUnavailable(t *testing.T) {
	llm := &mockLLMService{err: errors.New("503 overloaded")}
	svc := NewAnswerService(llm, 0.2)

	_, err := svc.Answer(context.Background(), "q", retrievalFixture())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrSynthesisUnavailable))
	assert.Equal(t, 1, llm.calls, "no retry")
}

func TestAnswer_NilLLM(t *testing.T) {
	_, err := NewAnswerService(nil, 0.2).Answer(context.Background(), "q", retrievalFixture())
	assert.True(t, errors.Is(err, domain.ErrSynthesisUnavailable))
}

func TestAnswer_Timeout(t *testing.T) {
	svc := NewAnswerService(&blockingLLM{}, 0.2)
	svc.SetTimeout(10 * time.Millisecond)

	_, err := svc.Answer(context.Background(), "q", retrievalFixture())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrSynthesisUnavailable))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestAnswer_EmptyRetrieval(t *testing.T) {
	llm := &mockLLMService{response: "I don't know."}
	answer, err := NewAnswerService(llm, 0).Answer(context.Background(), "q", &domain.RetrievalResult{Query: "q"})
	require.NoError(t, err)
	assert.Empty(t, answer.Sources)
	assert.Equal(t, "I don't know.", answer.Text)
}

func TestAnswer_CustomPrompts(t *testing.T) {
	llm := &mockLLMService{response: "ok"}
	svc := NewAnswerService(llm, 0)
	svc.SetPromptStore(&mockPromptStore{prompts: map[string]string{
		driven.PromptAnswerSystem: "CTX[%s]",
	}})

	_, err := svc.Answer(context.Background(), "q", retrievalFixture())
	require.NoError(t, err)
	assert.Equal(t, "CTX[You need a Mac.\n\nInstall Xcode.\n\nUse a cable.]", llm.messages[0].Content)
	// Missing prompt falls back to the default.
	assert.Equal(t, "Question: q\nHelpful Answer:", llm.messages[1].Content)
}

// blockingLLM waits for its context to end.
type blockingLLM struct {
	mockLLMService
}

func (b *blockingLLM) Chat(ctx context.Context, _ []driven.ChatMessage, _ driven.ChatOptions) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}
