package services

import (
	"fmt"
	"os"
	"strconv"

	"github.com/custodia-labs/chatdocs/internal/core/domain"
	"github.com/custodia-labs/chatdocs/internal/core/ports/driven"
	"github.com/custodia-labs/chatdocs/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyDocsPath        = "docs.path"
	keyDocsGlob        = "docs.glob"
	keyPersistDir      = "index.persist_dir"
	keyChunkSize       = "chunking.size"
	keyChunkOverlap    = "chunking.overlap"
	keyRetrievalK      = "retrieval.k"
	keyEmbedProvider   = "embedding.provider"
	keyEmbedModel      = "embedding.model"
	keyEmbedBaseURL    = "embedding.base_url"
	keyEmbedAPIKey     = "embedding.api_key"
	keyLLMProvider     = "llm.provider"
	keyLLMModel        = "llm.model"
	keyLLMBaseURL      = "llm.base_url"
	keyLLMAPIKey       = "llm.api_key"
	keyLLMTemperature  = "llm.temperature"
	defaultOllamaURL   = "http://localhost:11434"
	redactedSecretMark = "********"
)

var settingKeys = []string{
	keyDocsPath, keyDocsGlob, keyPersistDir,
	keyChunkSize, keyChunkOverlap, keyRetrievalK,
	keyEmbedProvider, keyEmbedModel, keyEmbedBaseURL, keyEmbedAPIKey,
	keyLLMProvider, keyLLMModel, keyLLMBaseURL, keyLLMAPIKey, keyLLMTemperature,
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	getenv      func(string) string
}

// NewSettingsService creates a new settings service.
// API keys missing from the config file are read from the environment.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
		getenv:      os.Getenv,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Docs: domain.DocsSettings{
			Path: s.getString(keyDocsPath, defaults.Docs.Path),
			Glob: s.getString(keyDocsGlob, defaults.Docs.Glob),
		},
		Index: domain.IndexSettings{
			PersistDir: s.getString(keyPersistDir, defaults.Index.PersistDir),
		},
		Chunking: domain.ChunkingSettings{
			Size:    s.getInt(keyChunkSize, defaults.Chunking.Size),
			Overlap: s.getInt(keyChunkOverlap, defaults.Chunking.Overlap),
		},
		Embedding: domain.EmbeddingSettings{
			Provider: s.getProvider(keyEmbedProvider, defaults.Embedding.Provider),
			BaseURL:  s.configStore.GetString(keyEmbedBaseURL), // No default - empty is valid for cloud providers
		},
		LLM: domain.LLMSettings{
			Provider:    s.getProvider(keyLLMProvider, defaults.LLM.Provider),
			BaseURL:     s.configStore.GetString(keyLLMBaseURL),
			Temperature: s.getFloat(keyLLMTemperature, defaults.LLM.Temperature),
		},
		Retrieval: domain.RetrievalSettings{
			K: s.getInt(keyRetrievalK, defaults.Retrieval.K),
		},
	}

	settings.Embedding.Model = s.getString(keyEmbedModel, defaultModel(
		domain.DefaultEmbeddingModels(), settings.Embedding.Provider, defaults.Embedding.Model))
	settings.LLM.Model = s.getString(keyLLMModel, defaultModel(
		domain.DefaultLLMModels(), settings.LLM.Provider, defaults.LLM.Model))
	settings.Embedding.APIKey = s.apiKey(keyEmbedAPIKey, settings.Embedding.Provider)
	settings.LLM.APIKey = s.apiKey(keyLLMAPIKey, settings.LLM.Provider)

	return settings, nil
}

// Save validates and persists application settings.
// API keys are only written when set, so environment keys never leak into the file.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	values := []struct {
		key string
		val any
	}{
		{keyDocsPath, settings.Docs.Path},
		{keyDocsGlob, settings.Docs.Glob},
		{keyPersistDir, settings.Index.PersistDir},
		{keyChunkSize, settings.Chunking.Size},
		{keyChunkOverlap, settings.Chunking.Overlap},
		{keyRetrievalK, settings.Retrieval.K},
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyLLMProvider, settings.LLM.Provider.String()},
		{keyLLMModel, settings.LLM.Model},
		{keyLLMBaseURL, settings.LLM.BaseURL},
		{keyLLMTemperature, settings.LLM.Temperature},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.val); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	if settings.Embedding.APIKey != "" && settings.Embedding.APIKey != s.envKey(settings.Embedding.Provider) {
		if err := s.configStore.Set(keyEmbedAPIKey, settings.Embedding.APIKey); err != nil {
			return fmt.Errorf("save embedding api_key: %w", err)
		}
	}
	if settings.LLM.APIKey != "" && settings.LLM.APIKey != s.envKey(settings.LLM.Provider) {
		if err := s.configStore.Set(keyLLMAPIKey, settings.LLM.APIKey); err != nil {
			return fmt.Errorf("save llm api_key: %w", err)
		}
	}

	return nil
}

// Set updates a single setting by key, validating the result before saving.
func (s *SettingsService) Set(key, value string) error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	switch key {
	case keyDocsPath:
		settings.Docs.Path = value
	case keyDocsGlob:
		settings.Docs.Glob = value
	case keyPersistDir:
		settings.Index.PersistDir = value
	case keyChunkSize:
		settings.Chunking.Size, err = parseInt(key, value)
	case keyChunkOverlap:
		settings.Chunking.Overlap, err = parseInt(key, value)
	case keyRetrievalK:
		settings.Retrieval.K, err = parseInt(key, value)
	case keyEmbedProvider:
		return s.SetEmbeddingProvider(domain.AIProvider(value), "", settings.Embedding.APIKey)
	case keyEmbedModel:
		settings.Embedding.Model = value
	case keyEmbedBaseURL:
		settings.Embedding.BaseURL = value
	case keyEmbedAPIKey:
		settings.Embedding.APIKey = value
	case keyLLMProvider:
		return s.SetLLMProvider(domain.AIProvider(value), "", settings.LLM.APIKey)
	case keyLLMModel:
		settings.LLM.Model = value
	case keyLLMBaseURL:
		settings.LLM.BaseURL = value
	case keyLLMAPIKey:
		settings.LLM.APIKey = value
	case keyLLMTemperature:
		settings.LLM.Temperature, err = strconv.ParseFloat(value, 64)
		if err != nil {
			err = fmt.Errorf("%w: %s must be a number, got %q", domain.ErrInvalidInput, key, value)
		}
	default:
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	if err != nil {
		return err
	}

	return s.Save(settings)
}

// Keys returns every settable key in display order.
func (s *SettingsService) Keys() []string {
	keys := make([]string, len(settingKeys))
	copy(keys, settingKeys)
	return keys
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: invalid embedding provider: %s", domain.ErrInvalidInput, provider)
	}
	if !provider.SupportsEmbeddings() {
		return fmt.Errorf("%w: provider %s does not support embeddings", domain.ErrInvalidInput, provider)
	}
	if apiKey == "" {
		apiKey = s.envKey(provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("%w: API key required for %s (set %s)", domain.ErrInvalidInput, provider, provider.APIKeyEnv())
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Embedding.Provider = provider
	settings.Embedding.Model = defaultModel(domain.DefaultEmbeddingModels(), provider, model)
	settings.Embedding.BaseURL = baseURLFor(provider, settings.Embedding.BaseURL)
	settings.Embedding.APIKey = apiKey

	return s.Save(settings)
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: invalid LLM provider: %s", domain.ErrInvalidInput, provider)
	}
	if !provider.SupportsLLM() {
		return fmt.Errorf("%w: provider %s does not support completions", domain.ErrInvalidInput, provider)
	}
	if apiKey == "" {
		apiKey = s.envKey(provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("%w: API key required for %s (set %s)", domain.ErrInvalidInput, provider, provider.APIKeyEnv())
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.LLM.Provider = provider
	settings.LLM.Model = defaultModel(domain.DefaultLLMModels(), provider, model)
	settings.LLM.BaseURL = baseURLFor(provider, settings.LLM.BaseURL)
	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// Validate checks current settings are consistent.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return settings.Validate()
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// ConfigPath returns the configuration file location.
func (s *SettingsService) ConfigPath() string {
	return s.configStore.Path()
}

// RedactKey masks an API key for display.
func RedactKey(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 8 {
		return redactedSecretMark
	}
	return key[:4] + redactedSecretMark
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getInt treats a stored zero as a value, since overlap 0 is legitimate.
func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) apiKey(key string, provider domain.AIProvider) string {
	if val := s.configStore.GetString(key); val != "" {
		return val
	}
	return s.envKey(provider)
}

func (s *SettingsService) envKey(provider domain.AIProvider) string {
	name := provider.APIKeyEnv()
	if name == "" || s.getenv == nil {
		return ""
	}
	return s.getenv(name)
}

func defaultModel(defaults map[domain.AIProvider]string, provider domain.AIProvider, model string) string {
	if model != "" {
		return model
	}
	if m, ok := defaults[provider]; ok {
		return m
	}
	return model
}

// baseURLFor keeps a custom URL for Ollama, which needs one, and clears it for
// cloud providers, which use their public endpoint.
func baseURLFor(provider domain.AIProvider, current string) string {
	if provider == domain.AIProviderOllama {
		if current == "" {
			return defaultOllamaURL
		}
		return current
	}
	return ""
}

func parseInt(key, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer, got %q", domain.ErrInvalidInput, key, value)
	}
	return n, nil
}
