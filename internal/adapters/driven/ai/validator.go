package ai

import (
	"context"
	"time"

	"github.com/custodia-labs/chatdocs/internal/core/domain"
	"github.com/custodia-labs/chatdocs/internal/core/ports/driven"
	"github.com/custodia-labs/chatdocs/internal/logger"
)

// Ensure ConfigValidator implements the interface.
var _ driven.AIConfigValidator = (*ConfigValidator)(nil)

// ConfigValidator checks provider settings by building the service and
// pinging it. Each check gets its own deadline.
type ConfigValidator struct {
	timeout time.Duration
}

// NewConfigValidator creates a validator using the default ping timeout.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{timeout: pingTimeout}
}

// ValidateEmbedding builds the embedding service and pings it.
func (v *ConfigValidator) ValidateEmbedding(config *domain.EmbeddingSettings) error {
	svc, err := CreateEmbeddingService(config)
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), v.timeout)
	defer cancel()
	if err := svc.Ping(ctx); err != nil {
		return err
	}
	logger.Debug("embedding %s/%s reachable (%d dims)", config.Provider, svc.ModelName(), svc.Dimensions())
	return nil
}

// ValidateLLM builds the LLM service and pings it.
func (v *ConfigValidator) ValidateLLM(config *domain.LLMSettings) error {
	svc, err := CreateLLMService(config)
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), v.timeout)
	defer cancel()
	if err := svc.Ping(ctx); err != nil {
		return err
	}
	logger.Debug("llm %s/%s reachable", config.Provider, config.Model)
	return nil
}
