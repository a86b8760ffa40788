package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/chatdocs/internal/core/domain"
	"github.com/custodia-labs/chatdocs/internal/core/ports/driven"
	"github.com/custodia-labs/chatdocs/internal/core/ports/driving"
	"github.com/custodia-labs/chatdocs/internal/logger"
)

// Ensure AnswerService implements the interfaces.
var (
	_ driving.AnswerService   = (*AnswerService)(nil)
	_ driven.PromptStoreAware = (*AnswerService)(nil)
)

// DefaultSynthesisTimeout bounds a single completion call.
const DefaultSynthesisTimeout = 2 * time.Minute

// Fallback templates used when no PromptStore is configured.
const (
	defaultAnswerSystemPrompt = "Use the following pieces of context to answer the question at the end. " +
		"If you don't know the answer, just say that you don't know, don't try to make up an answer.\n\n%s"
	defaultAnswerUserPrompt = "Question: %s\nHelpful Answer:"
)

// AnswerService stuffs retrieved chunks into a prompt and asks the LLM.
// It makes exactly one completion call per answer.
type AnswerService struct {
	llm         driven.LLMService
	promptStore driven.PromptStore
	temperature float64
	timeout     time.Duration
}

// NewAnswerService creates a new answer synthesiser.
// A nil llm makes every Answer fail with domain.ErrSynthesisUnavailable.
func NewAnswerService(llm driven.LLMService, temperature float64) *AnswerService {
	return &AnswerService{
		llm:         llm,
		temperature: temperature,
		timeout:     DefaultSynthesisTimeout,
	}
}

// SetPromptStore sets the prompt store for loading customisable prompts.
func (s *AnswerService) SetPromptStore(store driven.PromptStore) {
	s.promptStore = store
}

// SetTimeout overrides the completion timeout.
func (s *AnswerService) SetTimeout(d time.Duration) {
	if d > 0 {
		s.timeout = d
	}
}

// Answer sends the query and retrieved chunk texts to the language model.
func (s *AnswerService) Answer(
	ctx context.Context, query string, retrieved *domain.RetrievalResult,
) (*domain.Answer, error) {
	logger.Section("Synthesize")

	if s.llm == nil {
		return nil, fmt.Errorf("%w: no language model configured", domain.ErrSynthesisUnavailable)
	}

	messages := s.BuildMessages(query, retrieved)
	logger.Debug("Prompting %s with %d context chunks", s.llm.ModelName(), retrieved.Len())

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	text, err := s.llm.Chat(ctx, messages, driven.ChatOptions{Temperature: s.temperature})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSynthesisUnavailable, err)
	}

	answer := &domain.Answer{
		Query:   query,
		Text:    text,
		Sources: retrieved.Sources(),
	}
	if retrieved != nil {
		answer.Retrieved = retrieved.Chunks
	}
	return answer, nil
}

// BuildMessages renders the system and user prompts for a query.
// Chunk texts are joined with blank lines in retrieval order.
func (s *AnswerService) BuildMessages(query string, retrieved *domain.RetrievalResult) []driven.ChatMessage {
	texts := make([]string, 0, retrieved.Len())
	if retrieved != nil {
		for _, c := range retrieved.Chunks {
			texts = append(texts, c.Chunk.Content)
		}
	}

	system := fmt.Sprintf(s.loadPrompt(driven.PromptAnswerSystem, defaultAnswerSystemPrompt),
		strings.Join(texts, "\n\n"))
	user := fmt.Sprintf(s.loadPrompt(driven.PromptAnswerUser, defaultAnswerUserPrompt), query)

	return []driven.ChatMessage{
		{Role: driven.RoleSystem, Content: system},
		{Role: driven.RoleUser, Content: user},
	}
}

// loadPrompt loads a prompt from the store, falling back to the default if unavailable.
func (s *AnswerService) loadPrompt(name, fallback string) string {
	if s.promptStore == nil {
		return fallback
	}
	prompt, err := s.promptStore.Load(name)
	if err != nil {
		return fallback
	}
	return prompt
}
