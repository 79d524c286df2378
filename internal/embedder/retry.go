package embedder

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"syscall"
	"time"

	apperrors "codeberg.org/hhbot/vectorstore/internal/errors"
	"github.com/sashabaranov/go-openai"
)

// status codes worth another attempt
var retryableStatus = map[int]bool{
	http.StatusTooManyRequests:    true,
	http.StatusBadGateway:         true,
	http.StatusServiceUnavailable: true,
	http.StatusGatewayTimeout:     true,
}

// converts any provider-side failure into a ProviderError with the
// retryable flag set according to the retry policy
func classifyProviderError(err error) *apperrors.ProviderError {
	var providerErr *apperrors.ProviderError
	if errors.As(err, &providerErr) {
		return providerErr
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &apperrors.ProviderError{
			StatusCode: apiErr.HTTPStatusCode,
			Retryable:  retryableStatus[apiErr.HTTPStatusCode],
			Err:        err,
		}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &apperrors.ProviderError{
			StatusCode: reqErr.HTTPStatusCode,
			Retryable:  retryableStatus[reqErr.HTTPStatusCode],
			Err:        err,
		}
	}

	return &apperrors.ProviderError{
		Retryable: isNetworkError(err),
		Err:       err,
	}
}

// connection refused, reset, or timed out
func isNetworkError(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}

	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())

	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "timed out") ||
		strings.Contains(msg, "timeout")
}

// returns the wait before the attempt following `attempt` (1-based)
func backoffDelay(base time.Duration, attempt int) time.Duration {
	return base * time.Duration(1<<(attempt-1))
}

// runs fn up to maxAttempts times, waiting base*2^(attempt-1) after each
// retryable failure. The final error is always a *ProviderError carrying the
// number of attempts made.
func withRetry[T any](ctx context.Context, maxAttempts int, base time.Duration, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr *apperrors.ProviderError

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}

		lastErr = classifyProviderError(err)
		lastErr.Attempts = attempt

		if !lastErr.Retryable || attempt == maxAttempts {
			return zero, lastErr
		}

		timer := time.NewTimer(backoffDelay(base, attempt))

		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, &apperrors.ProviderError{Attempts: attempt, Err: ctx.Err()}
		case <-timer.C:
		}
	}

	return zero, lastErr
}
