package domain

import "fmt"

const unknownDescription = "Unknown"

// Default configuration values, matching the LoopDocs setup.
const (
	DefaultDocsPath       = "docs"
	DefaultDocsGlob       = "**/*.md"
	DefaultPersistDir     = "data/loopdocs"
	DefaultChunkSize      = 1000
	DefaultChunkOverlap   = 200
	DefaultTemperature    = 0.2
	DefaultEmbeddingModel = "all-minilm"
	DefaultLLMModel       = "gemini-2.5-flash"
	MaxTemperature        = 2.0
)

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"

	// AIProviderGemini is the Google Gemini API.
	AIProviderGemini AIProvider = "gemini"

	// AIProviderLocal is the built-in hashing embedder. It needs no network.
	AIProviderLocal AIProvider = "local"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic, AIProviderGemini, AIProviderLocal:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic || p == AIProviderGemini
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama || p == AIProviderLocal
}

// SupportsEmbeddings returns true if the provider can embed text.
func (p AIProvider) SupportsEmbeddings() bool {
	for _, e := range AllEmbeddingProviders() {
		if e == p {
			return true
		}
	}
	return false
}

// SupportsLLM returns true if the provider can complete prompts.
func (p AIProvider) SupportsLLM() bool {
	for _, l := range AllLLMProviders() {
		if l == p {
			return true
		}
	}
	return false
}

// APIKeyEnv returns the environment variable consulted when no API key
// is configured, or "" for providers that need none.
func (p AIProvider) APIKeyEnv() string {
	switch p {
	case AIProviderOpenAI:
		return "OPENAI_API_KEY"
	case AIProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	case AIProviderGemini:
		return "GOOGLE_API_KEY"
	default:
		return ""
	}
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	case AIProviderGemini:
		return "Google Gemini (cloud)"
	case AIProviderLocal:
		return "Hashing embedder (built-in, offline)"
	default:
		return unknownDescription
	}
}

// DocsSettings locates the markdown corpus.
type DocsSettings struct {
	// Path is the root directory of the source markdown.
	Path string

	// Glob selects files under Path (doublestar syntax).
	Glob string
}

// IndexSettings locates the persisted vector index.
type IndexSettings struct {
	// PersistDir is the vector index storage location.
	PersistDir string
}

// ChunkingSettings configures the chunker.
type ChunkingSettings struct {
	// Size is the maximum chunk length in characters.
	Size int

	// Overlap is the number of characters shared by neighbouring chunks.
	Overlap int
}

// Validate checks 0 <= overlap < size.
func (c ChunkingSettings) Validate() error {
	if c.Size <= 0 {
		return fmt.Errorf("%w: chunk size must be positive, got %d", ErrInvalidInput, c.Size)
	}
	if c.Overlap < 0 || c.Overlap >= c.Size {
		return fmt.Errorf("%w: chunk overlap must be in [0, %d), got %d", ErrInvalidInput, c.Size, c.Overlap)
	}
	return nil
}

// RetrievalSettings configures the retriever.
type RetrievalSettings struct {
	// K is the number of chunks retrieved per query.
	K int
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama or OpenAI-compatible servers).
	BaseURL string

	// APIKey is the API key (for cloud providers).
	APIKey string
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.SupportsEmbeddings() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for cloud providers).
	APIKey string

	// Temperature is the sampling temperature used for synthesis.
	Temperature float64
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.SupportsLLM() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// AppSettings holds all application settings.
type AppSettings struct {
	// Docs locates the markdown corpus.
	Docs DocsSettings

	// Index locates the persisted vector index.
	Index IndexSettings

	// Chunking configures the chunker.
	Chunking ChunkingSettings

	// Embedding holds embedding provider settings.
	Embedding EmbeddingSettings

	// LLM holds LLM provider settings.
	LLM LLMSettings

	// Retrieval configures the retriever.
	Retrieval RetrievalSettings
}

// DefaultAppSettings returns settings with sensible defaults.
// API keys are left empty; they come from the config file or environment.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Docs: DocsSettings{
			Path: DefaultDocsPath,
			Glob: DefaultDocsGlob,
		},
		Index: IndexSettings{
			PersistDir: DefaultPersistDir,
		},
		Chunking: ChunkingSettings{
			Size:    DefaultChunkSize,
			Overlap: DefaultChunkOverlap,
		},
		Embedding: EmbeddingSettings{
			Provider: AIProviderOllama,
			Model:    DefaultEmbeddingModel,
		},
		LLM: LLMSettings{
			Provider:    AIProviderGemini,
			Model:       DefaultLLMModel,
			Temperature: DefaultTemperature,
		},
		Retrieval: RetrievalSettings{
			K: DefaultK,
		},
	}
}

// Validate checks the settings are internally consistent.
// It does not contact any provider.
func (s *AppSettings) Validate() error {
	if s.Docs.Path == "" {
		return fmt.Errorf("%w: docs path is empty", ErrInvalidInput)
	}
	if s.Index.PersistDir == "" {
		return fmt.Errorf("%w: persist dir is empty", ErrInvalidInput)
	}
	if err := s.Chunking.Validate(); err != nil {
		return err
	}
	if s.Retrieval.K <= 0 {
		return fmt.Errorf("%w: k must be positive, got %d", ErrInvalidInput, s.Retrieval.K)
	}
	if !s.Embedding.Provider.SupportsEmbeddings() {
		return fmt.Errorf("%w: provider %q does not support embeddings", ErrInvalidInput, s.Embedding.Provider)
	}
	if !s.LLM.Provider.SupportsLLM() {
		return fmt.Errorf("%w: provider %q does not support completions", ErrInvalidInput, s.LLM.Provider)
	}
	if s.LLM.Temperature < 0 || s.LLM.Temperature > MaxTemperature {
		return fmt.Errorf("%w: temperature must be in [0, %.1f], got %g",
			ErrInvalidInput, MaxTemperature, s.LLM.Temperature)
	}
	return nil
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderGemini,
		AIProviderLocal,
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
		AIProviderGemini,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: DefaultEmbeddingModel,
		AIProviderOpenAI: "text-embedding-3-small",
		AIProviderGemini: "text-embedding-004",
		AIProviderLocal:  "hashing-384",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
		AIProviderGemini:    DefaultLLMModel,
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
		// Gemini models
		"text-embedding-004": 768,
		// Built-in
		"hashing-384": 384,
	}
}
