package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// ProviderConfig describe qué proveedor construir y cómo.
type ProviderConfig struct {
	Provider    string
	APIKey      string
	BaseURL     string
	Model       string
	Timeout     time.Duration
	MaxAttempts int
}

// NewProvider construye el cliente del proveedor configurado, envuelto en
// RetryClient cuando MaxAttempts > 1. El closer libera recursos del SDK.
func NewProvider(ctx context.Context, cfg ProviderConfig, logger *zap.Logger) (LLMClient, func() error, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	noop := func() error { return nil }

	var (
		client LLMClient
		closer = noop
	)
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", ProviderOpenAI:
		httpClient := &http.Client{Timeout: cfg.Timeout + 5*time.Second}
		client = NewHTTPClient(cfg.BaseURL, cfg.APIKey, cfg.Model, httpClient, logger)
	case ProviderGemini:
		g, err := NewGeminiClient(ctx, cfg.APIKey, cfg.Model)
		if err != nil {
			return nil, noop, err
		}
		client = g
		closer = g.Close
	default:
		return nil, noop, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}

	if cfg.MaxAttempts > 1 {
		client = NewRetryClient(client, cfg.MaxAttempts, defaultRetryBaseDelay, defaultRetryMaxDelay, logger)
	}
	return client, closer, nil
}
