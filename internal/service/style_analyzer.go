package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"style-ai/internal/domain"
	"style-ai/internal/llm"
)

const (
	defaultStyleMaxTokens   = 500
	defaultStyleTemperature = 0.3
	defaultStyleTimeout     = 30 * time.Second
	defaultStyleConfidence  = 0.9
)

// StyleAnalyzerConfig agrupa la configuracion inmutable del analizador.
type StyleAnalyzerConfig struct {
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
	// DefaultConfidence es una heuristica fija que se usa cuando el proveedor no
	// reporta su propia confianza.
	DefaultConfidence float64
	// APIKey solo se usa para redactarla de los mensajes de error.
	APIKey string
}

// StyleAnalyzer convierte pedidos de estilo en texto libre en perfiles estructurados
// delegando la comprension del texto al LLM. Cada llamada es independiente.
type StyleAnalyzer struct {
	llmClient llm.LLMClient
	parser    *StyleProfileParser
	cfg       StyleAnalyzerConfig
	logger    *zap.Logger
}

func NewStyleAnalyzer(llmClient llm.LLMClient, cfg StyleAnalyzerConfig, logger *zap.Logger) *StyleAnalyzer {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultStyleMaxTokens
	}
	if cfg.Temperature < 0 {
		cfg.Temperature = defaultStyleTemperature
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultStyleTimeout
	}
	if cfg.DefaultConfidence <= 0 || cfg.DefaultConfidence > 1 {
		cfg.DefaultConfidence = defaultStyleConfidence
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StyleAnalyzer{
		llmClient: llmClient,
		parser:    NewStyleProfileParser(cfg.DefaultConfidence),
		cfg:       cfg,
		logger:    logger,
	}
}

// Analyze hace exactamente una llamada al proveedor por pedido valido. Nunca devuelve
// error: todo fallo se convierte en un AnalysisResult con ErrorKind.
func (a *StyleAnalyzer) Analyze(ctx context.Context, req domain.StyleRequest) domain.AnalysisResult {
	if strings.TrimSpace(req.Text) == "" {
		return domain.Failure(domain.ErrorKindValidation, "text must not be empty")
	}

	start := time.Now()
	prompt := a.BuildPrompt(req)

	raw, err := a.callProvider(ctx, prompt)
	if err != nil {
		msg := a.redact(describeProviderError(err, a.cfg.Timeout))
		a.logger.Warn("style analysis provider failure",
			zap.String("error_kind", string(domain.ErrorKindProvider)),
			zap.String("prompt_version", StylePromptVersion),
			zap.String("detail", msg),
			zap.Duration("latency", time.Since(start)),
		)
		return domain.Failure(domain.ErrorKindProvider, msg)
	}

	profile, err := a.parser.Parse(raw)
	if err != nil {
		a.logger.Warn("style analysis parse failure",
			zap.String("error_kind", string(domain.ErrorKindParse)),
			zap.String("prompt_version", StylePromptVersion),
			zap.Error(err),
			zap.Int("raw_len", len(raw)),
		)
		return domain.Failure(domain.ErrorKindParse, err.Error())
	}

	a.logger.Info("style analysis finished",
		zap.Int("formality_level", profile.FormalityLevel),
		zap.String("prompt_version", StylePromptVersion),
		zap.Strings("style_categories", profile.StyleCategories),
		zap.Duration("latency", time.Since(start)),
	)
	return domain.Success(profile)
}

// callProvider acota la llamada con el timeout configurado y convierte panics del
// adaptador en errores.
func (a *StyleAnalyzer) callProvider(ctx context.Context, prompt llm.CompletionRequest) (out string, err error) {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			out = ""
			err = fmt.Errorf("provider panic: %v", r)
		}
	}()

	return a.llmClient.Generate(ctx, prompt)
}

func (a *StyleAnalyzer) redact(msg string) string {
	if a.cfg.APIKey == "" {
		return msg
	}
	return strings.ReplaceAll(msg, a.cfg.APIKey, "[REDACTED]")
}

func describeProviderError(err error, timeout time.Duration) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Sprintf("provider timeout after %s: %v", timeout, err)
	}
	if errors.Is(err, context.Canceled) {
		return fmt.Sprintf("provider call cancelled: %v", err)
	}
	var statusErr *llm.StatusError
	if errors.As(err, &statusErr) {
		switch statusErr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Sprintf("provider authentication failed (status %d): %s", statusErr.StatusCode, statusErr.Body)
		case http.StatusTooManyRequests:
			return fmt.Sprintf("provider rate limited (status %d): %s", statusErr.StatusCode, statusErr.Body)
		default:
			return fmt.Sprintf("provider returned status %d: %s", statusErr.StatusCode, statusErr.Body)
		}
	}
	return fmt.Sprintf("provider request failed: %v", err)
}
