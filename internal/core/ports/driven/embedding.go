package driven

import "context"

// EmbeddingService generates vector embeddings from text.
//
// The same model must be used for ingestion and querying; VectorIndex
// records the model name and dimension to enforce this.
//
// Implementations include:
//   - Ollama (all-minilm, nomic-embed-text)
//   - OpenAI (text-embedding-3-small, text-embedding-3-large)
//   - Gemini (text-embedding-004)
//   - Local feature hashing (offline)
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	// Equal input yields an equal vector.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts, preserving order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g., 384, 768, 1536).
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
