// Package app wires adapters and core services together for the CLI.
// Services are built on demand from the effective settings so that a command
// only needs the providers it actually uses.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/custodia-labs/chatdocs/internal/adapters/driven/ai"
	"github.com/custodia-labs/chatdocs/internal/adapters/driven/config/file"
	"github.com/custodia-labs/chatdocs/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/chatdocs/internal/connectors/filesystem"
	"github.com/custodia-labs/chatdocs/internal/connectors/github"
	"github.com/custodia-labs/chatdocs/internal/core/domain"
	"github.com/custodia-labs/chatdocs/internal/core/ports/driven"
	"github.com/custodia-labs/chatdocs/internal/core/ports/driving"
	"github.com/custodia-labs/chatdocs/internal/core/services"
	"github.com/custodia-labs/chatdocs/internal/logger"
	"github.com/custodia-labs/chatdocs/internal/postprocessors"
)

// TokenEnv is the environment variable holding the GitHub token.
const TokenEnv = "GITHUB_TOKEN"

// HistoryFile is the transcript file name inside the config directory.
const HistoryFile = "history.jsonl"

// Backend builds chatdocs services from settings.
type Backend struct {
	configDir string
	settings  *services.SettingsService
	prompts   driven.PromptStore
	getenv    func(string) string

	mu         sync.Mutex
	ai         ai.InitResult
	retrievers []*services.RetrieverService
}

// NewBackend creates a backend rooted at configDir.
// An empty configDir selects ~/.chatdocs.
func NewBackend(configDir string) (*Backend, error) {
	if configDir == "" {
		dir, err := file.DefaultDir()
		if err != nil {
			return nil, err
		}
		configDir = dir
	}

	store, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	prompts, err := file.NewPromptStore(filepath.Join(configDir, "prompts"))
	if err != nil {
		return nil, fmt.Errorf("open prompts: %w", err)
	}

	return &Backend{
		configDir: configDir,
		settings:  services.NewSettingsService(store, ai.NewConfigValidator()),
		prompts:   prompts,
		getenv:    os.Getenv,
	}, nil
}

// ConfigDir returns the configuration directory.
func (b *Backend) ConfigDir() string {
	return b.configDir
}

// Settings returns the settings service.
func (b *Backend) Settings() driving.SettingsService {
	return b.settings
}

// Ingest builds the ingestion service.
func (b *Backend) Ingest(s *domain.AppSettings) (driving.IngestService, error) {
	embedder, err := b.embedder(s)
	if err != nil {
		return nil, err
	}
	pipeline, err := postprocessors.NewDefaultPipeline(s.Chunking)
	if err != nil {
		return nil, err
	}

	loader := filesystem.NewLoader(s.Docs.Path, s.Docs.Glob)
	return services.NewIngestService(loader, pipeline, embedder, sqlite.NewIndexFactory(s.Index.PersistDir)), nil
}

// Retriever builds a retriever over the persisted index.
func (b *Backend) Retriever(s *domain.AppSettings) (driving.RetrieverService, error) {
	return b.retriever(s)
}

// Ask builds the full question answering pipeline.
// The LLM is only contacted once retrieval has succeeded, so a missing index
// is reported before an unreachable model.
func (b *Backend) Ask(s *domain.AppSettings) (driving.AskService, error) {
	retriever, err := b.retriever(s)
	if err != nil {
		return nil, err
	}

	answerer := &lazyAnswerer{build: func() (driving.AnswerService, error) {
		llm, err := b.llm(s)
		if err != nil {
			return nil, err
		}
		a := services.NewAnswerService(llm, s.LLM.Temperature)
		a.SetPromptStore(b.prompts)
		return a, nil
	}}
	return services.NewAskService(retriever, answerer), nil
}

// lazyAnswerer creates the answer service on first use. A provider that
// cannot be created surfaces as domain.ErrSynthesisUnavailable.
type lazyAnswerer struct {
	build func() (driving.AnswerService, error)

	mu       sync.Mutex
	answerer driving.AnswerService
}

func (l *lazyAnswerer) Answer(ctx context.Context, query string, retrieved *domain.RetrievalResult) (*domain.Answer, error) {
	l.mu.Lock()
	if l.answerer == nil {
		a, err := l.build()
		if err != nil {
			l.mu.Unlock()
			return nil, fmt.Errorf("%w: %w", domain.ErrSynthesisUnavailable, err)
		}
		l.answerer = a
	}
	answerer := l.answerer
	l.mu.Unlock()

	return answerer.Answer(ctx, query, retrieved)
}

// Index builds the index inspection service.
func (b *Backend) Index(s *domain.AppSettings) (driving.IndexService, error) {
	return services.NewIndexService(sqlite.NewIndexFactory(s.Index.PersistDir)), nil
}

// Models builds the model listing service.
func (b *Backend) Models(s *domain.AppSettings) (driving.ModelService, error) {
	llm, err := b.llm(s)
	if err != nil {
		return nil, err
	}
	return services.NewModelService(llm), nil
}

// Fetcher builds the GitHub corpus fetcher, authenticated when GITHUB_TOKEN is set.
func (b *Backend) Fetcher(ctx context.Context) (driving.CorpusFetcher, error) {
	token := b.getenv(TokenEnv)
	if token == "" {
		logger.Warn("%s is not set; GitHub allows 60 anonymous requests per hour", TokenEnv)
	}
	client, err := github.NewClient(ctx, github.ClientConfig{Token: token})
	if err != nil {
		return nil, err
	}
	return github.NewFetcher(client), nil
}

// Watcher builds a watcher over the corpus directory.
func (b *Backend) Watcher(s *domain.AppSettings) (driven.ChangeWatcher, error) {
	return filesystem.NewWatcher(s.Docs.Path, s.Docs.Glob), nil
}

// Transcript opens the question history file.
func (b *Backend) Transcript() (driven.TranscriptLog, error) {
	return file.NewTranscriptLog(filepath.Join(b.configDir, HistoryFile))
}

// Close releases every provider and index opened by this backend.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	var errs []error
	for _, r := range b.retrievers {
		errs = append(errs, r.Close())
	}
	b.retrievers = nil
	b.ai.Close()
	b.ai = ai.InitResult{}
	return errors.Join(errs...)
}

func (b *Backend) retriever(s *domain.AppSettings) (*services.RetrieverService, error) {
	embedder, err := b.embedder(s)
	if err != nil {
		return nil, err
	}

	r := services.NewRetrieverService(embedder, sqlite.NewIndexFactory(s.Index.PersistDir), s.Retrieval.K)
	b.mu.Lock()
	b.retrievers = append(b.retrievers, r)
	b.mu.Unlock()
	return r, nil
}

// embedder creates and pings the embedding provider once per backend.
func (b *Backend) embedder(s *domain.AppSettings) (driven.EmbeddingService, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.ai.EmbeddingService != nil {
		return b.ai.EmbeddingService, nil
	}
	svc, err := ai.CreateAndValidateEmbeddingService(&s.Embedding)
	if err != nil {
		return nil, err
	}
	b.ai.EmbeddingService = svc
	return svc, nil
}

// llm creates and pings the LLM provider once per backend.
func (b *Backend) llm(s *domain.AppSettings) (driven.LLMService, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.ai.LLMService != nil {
		return b.ai.LLMService, nil
	}
	svc, err := ai.CreateAndValidateLLMService(&s.LLM)
	if err != nil {
		return nil, err
	}
	b.ai.LLMService = svc
	return svc, nil
}
