package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/chatdocs/internal/core/domain"
	"github.com/custodia-labs/chatdocs/internal/core/ports/driven"
)

func newTestService(t *testing.T, handler http.HandlerFunc) *LLMService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	svc, err := NewLLMService(Config{APIKey: "g-key", BaseURL: server.URL})
	require.NoError(t, err)
	return svc
}

func TestNewLLMService(t *testing.T) {
	_, err := NewLLMService(Config{})
	assert.Error(t, err)

	svc, err := NewLLMService(Config{APIKey: "k", Model: "models/gemini-2.5-pro"})
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.5-pro", svc.ModelName())
	assert.NoError(t, svc.Close())
}

func TestChat(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/gemini-2.5-flash:generateContent", r.URL.Path)
		assert.Equal(t, "g-key", r.Header.Get("x-goog-api-key"))

		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.NotNil(t, req.SystemInstruction)
		assert.Equal(t, "use this context", req.SystemInstruction.Parts[0].Text)
		require.Len(t, req.Contents, 3)
		assert.Equal(t, "user", req.Contents[0].Role)
		assert.Equal(t, "model", req.Contents[1].Role)
		require.NotNil(t, req.GenerationConfig.Temperature)
		assert.InDelta(t, 0.2, *req.GenerationConfig.Temperature, 1e-9)

		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"Loop "},{"text":"needs a Mac."}]},"finishReason":"STOP"}]}`))
	})

	out, err := svc.Chat(context.Background(), []driven.ChatMessage{
		{Role: driven.RoleSystem, Content: "use this context"},
		{Role: driven.RoleUser, Content: "hi"},
		{Role: driven.RoleAssistant, Content: "hello"},
		{Role: driven.RoleUser, Content: "what do I need?"},
	}, driven.ChatOptions{Temperature: 0.2})

	require.NoError(t, err)
	assert.Equal(t, "Loop needs a Mac.", out)
}

func TestGenerate_Errors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		contains string
		isRate   bool
	}{
		{"api error", http.StatusBadRequest, `{"error":{"code":400,"message":"API key not valid","status":"INVALID_ARGUMENT"}}`, "API key not valid", false},
		{"rate limited", http.StatusTooManyRequests, `{"error":{"code":429,"message":"quota","status":"RESOURCE_EXHAUSTED"}}`, "quota", true},
		{"blocked", http.StatusOK, `{"candidates":[],"promptFeedback":{"blockReason":"SAFETY"}}`, "SAFETY", false},
		{"no candidates", http.StatusOK, `{}`, "no candidates", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := svc.Generate(context.Background(), "hi", driven.GenerateOptions{})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.contains)
			assert.Equal(t, tt.isRate, errors.Is(err, domain.ErrRateLimited))
		})
	}
}

func TestListModels_FiltersAndPages(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models", r.URL.Path)
		if r.URL.Query().Get("pageToken") == "" {
			_, _ = w.Write([]byte(`{"models":[
				{"name":"models/gemini-2.5-flash","supportedGenerationMethods":["generateContent","countTokens"]},
				{"name":"models/text-embedding-004","supportedGenerationMethods":["embedContent"]}
			],"nextPageToken":"p2"}`))
			return
		}
		_, _ = w.Write([]byte(`{"models":[{"name":"models/gemini-2.5-pro","supportedGenerationMethods":["generateContent"]}]}`))
	})

	models, err := svc.ListModels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"gemini-2.5-flash", "gemini-2.5-pro"}, models)
}

func TestPing(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/gemini-2.5-flash", r.URL.Path)
		_, _ = w.Write([]byte(`{"name":"models/gemini-2.5-flash"}`))
	})
	assert.NoError(t, svc.Ping(context.Background()))
}
