package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/chatdocs/internal/core/domain"
	"github.com/custodia-labs/chatdocs/internal/core/ports/driving"
)

// fakeOllama answers chat requests with a fixed reply and records the prompt.
func fakeOllama(t *testing.T, reply string, prompts *[]string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/tags", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"models": []map[string]string{{"name": "llama3.2"}}})
	})
	mux.HandleFunc("POST /api/chat", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		for _, m := range req.Messages {
			*prompts = append(*prompts, m.Content)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"message": map[string]string{"role": "assistant", "content": reply},
			"done":    true,
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testSettings(t *testing.T, root string, llmURL string) *domain.AppSettings {
	t.Helper()
	s := domain.DefaultAppSettings()
	s.Docs.Path = filepath.Join(root, "docs")
	s.Index.PersistDir = filepath.Join(root, "index")
	s.Chunking = domain.ChunkingSettings{Size: 200, Overlap: 20}
	s.Embedding = domain.EmbeddingSettings{Provider: domain.AIProviderLocal, Model: "hashing-384"}
	s.LLM = domain.LLMSettings{Provider: domain.AIProviderOllama, Model: "llama3.2", BaseURL: llmURL}
	return &s
}

func writeDoc(t *testing.T, root, rel, content string) {
	t.Helper()
	p := filepath.Join(root, "docs", filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
}

func TestNewBackend(t *testing.T) {
	dir := t.TempDir()

	b, err := NewBackend(dir)

	require.NoError(t, err)
	assert.Equal(t, dir, b.ConfigDir())
	assert.NotNil(t, b.Settings())
	assert.Equal(t, filepath.Join(dir, "config.toml"), b.Settings().ConfigPath())
}

func TestBackend_IngestRetrieveAsk(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "index.md", "# Loop\n\nLoop is an automated insulin delivery app for iPhone.")
	writeDoc(t, root, "build/xcode.md", "# Build with Xcode\n\nYou need a Mac computer running Xcode to build Loop.")
	writeDoc(t, root, "operation/pump.md", "# Pumps\n\nOmnipod DASH and Medtronic pumps are supported.")

	var prompts []string
	llm := fakeOllama(t, "You need a Mac with Xcode.", &prompts)
	settings := testSettings(t, root, llm.URL)

	b, err := NewBackend(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	ctx := context.Background()

	ingest, err := b.Ingest(settings)
	require.NoError(t, err)
	stats, err := ingest.Ingest(ctx, driving.IngestOptions{})
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Documents)
	assert.Positive(t, stats.Added)

	retriever, err := b.Retriever(settings)
	require.NoError(t, err)
	result, err := retriever.Retrieve(ctx, "mac computer xcode build", 1)
	require.NoError(t, err)
	require.Equal(t, 1, result.Len())
	assert.Equal(t, "build/xcode.md", result.Chunks[0].Chunk.Source())

	ask, err := b.Ask(settings)
	require.NoError(t, err)
	transcript, err := b.Transcript()
	require.NoError(t, err)

	answer, err := ask.Ask(ctx, "What do I need to build Loop with Xcode?", 2, transcript)
	require.NoError(t, err)
	assert.Equal(t, "You need a Mac with Xcode.", answer.Text)
	assert.NotEmpty(t, answer.Sources)
	require.NotEmpty(t, prompts)
	assert.Contains(t, prompts[0], "You need a Mac computer running Xcode")

	turns, err := transcript.Turns(ctx)
	require.NoError(t, err)
	require.Len(t, turns, 1)
	assert.Equal(t, "What do I need to build Loop with Xcode?", turns[0].Question)
	assert.FileExists(t, filepath.Join(b.ConfigDir(), HistoryFile))

	index, err := b.Index(settings)
	require.NoError(t, err)
	indexStats, err := index.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, indexStats.Sources)
	assert.Equal(t, "hashing-384", indexStats.EmbeddingModel)
}

func TestBackend_RetrieveBeforeIngest(t *testing.T) {
	root := t.TempDir()
	settings := testSettings(t, root, "http://127.0.0.1:1")

	b, err := NewBackend(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })

	retriever, err := b.Retriever(settings)
	require.NoError(t, err)

	_, err = retriever.Retrieve(context.Background(), "anything", 0)
	assert.ErrorIs(t, err, domain.ErrIndexNotFound)
}

func TestBackend_IngestMissingDocs(t *testing.T) {
	root := t.TempDir()
	settings := testSettings(t, root, "http://127.0.0.1:1")

	b, err := NewBackend(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })

	ingest, err := b.Ingest(settings)
	require.NoError(t, err)

	_, err = ingest.Ingest(context.Background(), driving.IngestOptions{})
	assert.ErrorIs(t, err, domain.ErrDocsNotFound)
	assert.NoDirExists(t, settings.Index.PersistDir)
}

func TestBackend_AskBeforeIngest(t *testing.T) {
	settings := testSettings(t, t.TempDir(), "http://127.0.0.1:1")

	b, err := NewBackend(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })

	ask, err := b.Ask(settings)
	require.NoError(t, err)

	_, err = ask.Ask(context.Background(), "What is Loop?", 0, nil)
	assert.ErrorIs(t, err, domain.ErrIndexNotFound)
}

func TestBackend_AskUnreachableLLM(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "index.md", "# Loop\n\nLoop is an automated insulin delivery app for iPhone.")
	settings := testSettings(t, root, "http://127.0.0.1:1")

	b, err := NewBackend(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	ctx := context.Background()

	ingest, err := b.Ingest(settings)
	require.NoError(t, err)
	_, err = ingest.Ingest(ctx, driving.IngestOptions{})
	require.NoError(t, err)

	ask, err := b.Ask(settings)
	require.NoError(t, err)
	transcript, err := b.Transcript()
	require.NoError(t, err)

	_, err = ask.Ask(ctx, "What is Loop?", 0, transcript)
	assert.ErrorIs(t, err, domain.ErrSynthesisUnavailable)
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)

	turns, err := transcript.Turns(ctx)
	require.NoError(t, err)
	assert.Empty(t, turns)
}

func TestBackend_Models(t *testing.T) {
	var prompts []string
	llm := fakeOllama(t, "", &prompts)
	settings := testSettings(t, t.TempDir(), llm.URL)

	b, err := NewBackend(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })

	models, err := b.Models(settings)
	require.NoError(t, err)

	names, err := models.ListModels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"llama3.2"}, names)
}

func TestBackend_FetcherAndWatcher(t *testing.T) {
	b, err := NewBackend(t.TempDir())
	require.NoError(t, err)
	b.getenv = func(string) string { return "ghp_test" }

	fetcher, err := b.Fetcher(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, fetcher)

	s := domain.DefaultAppSettings()
	watcher, err := b.Watcher(&s)
	require.NoError(t, err)
	assert.NotNil(t, watcher)
}
