package domain

import "errors"

// Domain errors represent pipeline failures.
// These are distinct from infrastructure errors, which adapters wrap with them.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotImplemented indicates functionality is not available for a provider.
	ErrNotImplemented = errors.New("not implemented")

	// ErrDocsNotFound indicates the ingestion source directory is missing.
	// Ingestion aborts before anything is written.
	ErrDocsNotFound = errors.New("documentation directory not found")

	// ErrEmbeddingUnavailable indicates the embedding backend cannot be loaded or reached.
	// It is fatal to the current ingestion or query; no partial state is persisted.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrIndexNotFound indicates a query was issued before any successful ingestion.
	ErrIndexNotFound = errors.New("vector index not found")

	// ErrIndexMismatch indicates the persisted index was built with a different
	// embedding model or dimension than the one currently configured.
	ErrIndexMismatch = errors.New("vector index built with a different embedding model")

	// ErrSynthesisUnavailable indicates the language-model call failed or timed out.
	// Only the current query fails; index and transcript stay intact.
	ErrSynthesisUnavailable = errors.New("answer synthesis unavailable")

	// ErrLLMUnavailable indicates the LLM provider is not configured or unreachable.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrRateLimited indicates a remote API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)
