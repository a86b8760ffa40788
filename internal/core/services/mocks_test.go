package services

import (
	"context"
	"errors"
	"sync"

	"github.com/custodia-labs/chatdocs/internal/core/domain"
	"github.com/custodia-labs/chatdocs/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockLoader implements driven.DocumentLoader for testing.
type mockLoader struct {
	docs []domain.Document
	err  error
}

func (m *mockLoader) Load(_ context.Context) ([]domain.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]domain.Document, len(m.docs))
	copy(out, m.docs)
	return out, nil
}

func (m *mockLoader) Root() string {
	return "docs"
}

// mockEmbeddingService implements driven.EmbeddingService for testing.
// It delegates to embed when set, otherwise returns a fixed vector.
type mockEmbeddingService struct {
	embed     func(text string) []float32
	embedErr  error
	model     string
	batches   int
	failAfter int // fail on the Nth batch when > 0
}

func (m *mockEmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := m.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (m *mockEmbeddingService) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.batches++
	if m.embedErr != nil && (m.failAfter == 0 || m.batches >= m.failAfter) {
		return nil, m.embedErr
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		if m.embed != nil {
			out[i] = m.embed(t)
		} else {
			out[i] = []float32{1, 0, 0}
		}
	}
	return out, nil
}

func (m *mockEmbeddingService) Dimensions() int {
	return 3
}

func (m *mockEmbeddingService) ModelName() string {
	if m.model != "" {
		return m.model
	}
	return "mock-embed"
}

func (m *mockEmbeddingService) Ping(_ context.Context) error {
	return m.embedErr
}

func (m *mockEmbeddingService) Close() error {
	return nil
}

// mockLLMService implements driven.LLMService for testing.
type mockLLMService struct {
	response string
	err      error
	models   []string

	mu       sync.Mutex
	calls    int
	messages []driven.ChatMessage
	opts     driven.ChatOptions
}

func (m *mockLLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	return m.Chat(ctx, []driven.ChatMessage{{Role: driven.RoleUser, Content: prompt}},
		driven.ChatOptions{MaxTokens: opts.MaxTokens, Temperature: opts.Temperature})
}

func (m *mockLLMService) Chat(_ context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.messages = messages
	m.opts = opts
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func (m *mockLLMService) ModelName() string {
	return "mock-llm"
}

func (m *mockLLMService) Ping(_ context.Context) error {
	return m.err
}

func (m *mockLLMService) Close() error {
	return nil
}

// listingLLMService adds driven.ModelLister to mockLLMService.
type listingLLMService struct {
	mockLLMService
}

func (m *listingLLMService) ListModels(_ context.Context) ([]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.models, nil
}

// mockPromptStore implements driven.PromptStore for testing.
type mockPromptStore struct {
	prompts map[string]string
}

func (m *mockPromptStore) Load(name string) (string, error) {
	if p, ok := m.prompts[name]; ok {
		return p, nil
	}
	return "", errors.New("prompt not found")
}

func (m *mockPromptStore) Reload() {}

// failingTranscript implements driving.TranscriptRecorder and always fails.
type failingTranscript struct{}

func (failingTranscript) Append(_ context.Context, _ domain.Turn) error {
	return errors.New("disk full")
}

// mockValidator implements driven.AIConfigValidator for testing.
type mockValidator struct {
	embedErr error
	llmErr   error
}

func (m *mockValidator) ValidateEmbedding(_ *domain.EmbeddingSettings) error {
	return m.embedErr
}

func (m *mockValidator) ValidateLLM(_ *domain.LLMSettings) error {
	return m.llmErr
}

// failingWriteFactory wraps a factory so that writes to the created index fail.
type failingWriteFactory struct {
	driven.VectorIndexFactory
	err error
}

func (f *failingWriteFactory) Create(ctx context.Context) (driven.VectorIndex, error) {
	index, err := f.VectorIndexFactory.Create(ctx)
	if err != nil {
		return nil, err
	}
	return &failingWriteIndex{VectorIndex: index, err: f.err}, nil
}

type failingWriteIndex struct {
	driven.VectorIndex
	err error
}

func (i *failingWriteIndex) Add(_ context.Context, _ []domain.Chunk) (int, error) {
	return 0, i.err
}

func (i *failingWriteIndex) Replace(_ context.Context, _ string, _ int, _ []domain.Chunk) (int, error) {
	return 0, i.err
}
