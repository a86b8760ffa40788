package driven

import "github.com/custodia-labs/chatdocs/internal/core/domain"

// AIConfigValidator checks that provider settings produce a reachable service.
type AIConfigValidator interface {
	// ValidateEmbedding builds the embedding service and pings it.
	ValidateEmbedding(config *domain.EmbeddingSettings) error

	// ValidateLLM builds the LLM service and pings it.
	ValidateLLM(config *domain.LLMSettings) error
}
