package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	defaultRetryBaseDelay = 1 * time.Second
	defaultRetryMaxDelay  = 10 * time.Second
)

// RetryClient envuelve un LLMClient y reintenta fallos transitorios (408, 429, 5xx,
// timeouts de red). Es opt-in: el analizador por si solo hace un unico intento.
type RetryClient struct {
	next      LLMClient
	attempts  int
	baseDelay time.Duration
	maxDelay  time.Duration
	logger    *zap.Logger
	sleep     func(ctx context.Context, d time.Duration) error
}

// NewRetryClient construye el wrapper. attempts <= 1 equivale a no reintentar.
func NewRetryClient(next LLMClient, attempts int, baseDelay, maxDelay time.Duration, logger *zap.Logger) *RetryClient {
	if attempts < 1 {
		attempts = 1
	}
	if baseDelay < 0 {
		baseDelay = defaultRetryBaseDelay
	}
	if maxDelay <= 0 {
		maxDelay = defaultRetryMaxDelay
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RetryClient{
		next:      next,
		attempts:  attempts,
		baseDelay: baseDelay,
		maxDelay:  maxDelay,
		logger:    logger,
		sleep:     sleepContext,
	}
}

func (r *RetryClient) Generate(ctx context.Context, req CompletionRequest) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= r.attempts; attempt++ {
		out, err := r.next.Generate(ctx, req)
		if err == nil {
			return out, nil
		}
		lastErr = err
		if attempt == r.attempts || !isRetryable(ctx, err) {
			break
		}
		delay := r.backoff(attempt)
		var statusErr *StatusError
		if errors.As(err, &statusErr) && statusErr.RetryAfter > 0 {
			delay = min(statusErr.RetryAfter, r.maxDelay)
		}
		r.logger.Warn("llm call failed, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err),
		)
		if err := r.sleep(ctx, delay); err != nil {
			return "", err
		}
	}
	if r.attempts == 1 {
		return "", lastErr
	}
	return "", fmt.Errorf("failed after %d attempts: %w", r.attempts, lastErr)
}

// backoff: intento 1 -> base, 2 -> base*2, 3 -> base*4, con tope en maxDelay.
func (r *RetryClient) backoff(attempt int) time.Duration {
	delay := r.baseDelay
	for i := 1; i < attempt; i++ {
		if delay > r.maxDelay/2 {
			return r.maxDelay
		}
		delay *= 2
	}
	return min(delay, r.maxDelay)
}

func isRetryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode == http.StatusRequestTimeout ||
			statusErr.StatusCode == http.StatusTooManyRequests ||
			statusErr.StatusCode >= http.StatusInternalServerError
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, ErrEmptyResponse)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
