package cli

import (
	"context"
	"time"

	"github.com/custodia-labs/chatdocs/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/chatdocs/internal/core/domain"
	"github.com/custodia-labs/chatdocs/internal/core/ports/driven"
	"github.com/custodia-labs/chatdocs/internal/core/ports/driving"
	"github.com/custodia-labs/chatdocs/internal/core/services"
)

var testTime = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

// mockBackend hands out the mock services below and records the settings
// each command was built with.
type mockBackend struct {
	store      *memory.ConfigStore
	settings   *services.SettingsService
	ingest     *mockIngestService
	retriever  *mockRetrieverService
	ask        *mockAskService
	index      *mockIndexService
	models     *mockModelService
	fetcher    *mockFetcher
	transcript *memory.TranscriptLog
	askErr     error
	last       *domain.AppSettings
}

func newMockBackend() *mockBackend {
	store := memory.NewConfigStore()
	return &mockBackend{
		store:      store,
		settings:   services.NewSettingsService(store, nil),
		ingest:     &mockIngestService{},
		retriever:  &mockRetrieverService{},
		ask:        &mockAskService{},
		index:      &mockIndexService{},
		models:     &mockModelService{},
		fetcher:    &mockFetcher{},
		transcript: memory.NewTranscriptLog(),
	}
}

func (b *mockBackend) Settings() driving.SettingsService { return b.settings }

func (b *mockBackend) Ingest(s *domain.AppSettings) (driving.IngestService, error) {
	b.last = s
	return b.ingest, nil
}

func (b *mockBackend) Retriever(s *domain.AppSettings) (driving.RetrieverService, error) {
	b.last = s
	return b.retriever, nil
}

func (b *mockBackend) Ask(s *domain.AppSettings) (driving.AskService, error) {
	b.last = s
	if b.askErr != nil {
		return nil, b.askErr
	}
	return b.ask, nil
}

func (b *mockBackend) Index(s *domain.AppSettings) (driving.IndexService, error) {
	b.last = s
	return b.index, nil
}

func (b *mockBackend) Models(s *domain.AppSettings) (driving.ModelService, error) {
	b.last = s
	return b.models, nil
}

func (b *mockBackend) Fetcher(context.Context) (driving.CorpusFetcher, error) {
	return b.fetcher, nil
}

func (b *mockBackend) Watcher(*domain.AppSettings) (driven.ChangeWatcher, error) {
	return nil, domain.ErrNotImplemented
}

func (b *mockBackend) Transcript() (driven.TranscriptLog, error) {
	return b.transcript, nil
}

func (b *mockBackend) Close() error { return nil }

type mockIngestService struct {
	stats *domain.IngestStats
	err   error
	opts  driving.IngestOptions
	calls int
}

func (m *mockIngestService) Ingest(_ context.Context, opts driving.IngestOptions) (*domain.IngestStats, error) {
	m.calls++
	m.opts = opts
	if m.err != nil {
		return nil, m.err
	}
	if m.stats != nil {
		return m.stats, nil
	}
	return &domain.IngestStats{Rebuilt: opts.Rebuild}, nil
}

type mockRetrieverService struct {
	result   *domain.RetrievalResult
	err      error
	gotQuery string
	gotK     int
}

func (m *mockRetrieverService) Retrieve(_ context.Context, query string, k int) (*domain.RetrievalResult, error) {
	m.gotQuery = query
	m.gotK = k
	if m.err != nil {
		return nil, m.err
	}
	if m.result != nil {
		return m.result, nil
	}
	return &domain.RetrievalResult{Query: query}, nil
}

type mockAskService struct {
	answer      *domain.Answer
	err         error
	gotQuery    string
	gotK        int
	gotRecorder driving.TranscriptRecorder
}

func (m *mockAskService) Ask(
	ctx context.Context, query string, k int, transcript driving.TranscriptRecorder,
) (*domain.Answer, error) {
	m.gotQuery = query
	m.gotK = k
	m.gotRecorder = transcript
	if m.err != nil {
		return nil, m.err
	}
	answer := m.answer
	if answer == nil {
		answer = &domain.Answer{Query: query, Text: "An answer.", Sources: []string{}}
	}
	if transcript != nil {
		if err := transcript.Append(ctx, domain.NewTurn(answer, testTime)); err != nil {
			return nil, err
		}
	}
	return answer, nil
}

type mockIndexService struct {
	stats    *domain.IndexStats
	chunks   []domain.Chunk
	err      error
	gotLimit int
}

func (m *mockIndexService) Stats(context.Context) (*domain.IndexStats, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.stats != nil {
		return m.stats, nil
	}
	return &domain.IndexStats{}, nil
}

func (m *mockIndexService) Peek(_ context.Context, limit int) ([]domain.Chunk, error) {
	m.gotLimit = limit
	if limit < len(m.chunks) {
		return m.chunks[:limit], nil
	}
	return m.chunks, nil
}

type mockModelService struct {
	models []string
	err    error
}

func (m *mockModelService) ListModels(context.Context) ([]string, error) {
	return m.models, m.err
}

type mockFetcher struct {
	result *driving.FetchResult
	err    error
	got    driving.FetchRequest
}

func (m *mockFetcher) Fetch(_ context.Context, req driving.FetchRequest) (*driving.FetchResult, error) {
	m.got = req
	if m.err != nil {
		return nil, m.err
	}
	if m.result != nil {
		return m.result, nil
	}
	return &driving.FetchResult{Ref: "main"}, nil
}
