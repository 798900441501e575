package gateway

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/clearbill/payments/internal/application"
	"github.com/clearbill/payments/internal/config"
)

// RetryGateway retries transient adapter failures with exponential
// backoff and jitter. Business declines and validation-shaped
// rejections pass through on the first attempt.
type RetryGateway struct {
	inner      application.GatewayAdapter
	baseDelay  time.Duration
	maxRetries int
}

func NewRetryGateway(inner application.GatewayAdapter, cfg config.RetryConfig) *RetryGateway {
	return &RetryGateway{
		inner:      inner,
		baseDelay:  time.Duration(cfg.BaseDelay) * time.Second,
		maxRetries: int(cfg.MaxRetries),
	}
}

func (r *RetryGateway) Authorize(ctx context.Context, req application.AuthorizationRequest, creds application.Credentials) (*application.GatewayResult, error) {
	return retry(r, ctx, func(ctx context.Context) (*application.GatewayResult, error) {
		return r.inner.Authorize(ctx, req, creds)
	})
}

func (r *RetryGateway) Capture(ctx context.Context, req application.CaptureRequest, creds application.Credentials) (*application.GatewayResult, error) {
	return retry(r, ctx, func(ctx context.Context) (*application.GatewayResult, error) {
		return r.inner.Capture(ctx, req, creds)
	})
}

func (r *RetryGateway) Cancel(ctx context.Context, req application.CancelRequest, creds application.Credentials) (*application.GatewayResult, error) {
	return retry(r, ctx, func(ctx context.Context) (*application.GatewayResult, error) {
		return r.inner.Cancel(ctx, req, creds)
	})
}

func (r *RetryGateway) Credit(ctx context.Context, req application.CreditRequest, creds application.Credentials) (*application.GatewayResult, error) {
	return retry(r, ctx, func(ctx context.Context) (*application.GatewayResult, error) {
		return r.inner.Credit(ctx, req, creds)
	})
}

func retry[T any](r *RetryGateway, ctx context.Context, operation func(ctx context.Context) (*T, error)) (*T, error) {
	var lastErr error

	for attempt := 0; attempt < r.maxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		resp, err := operation(ctx)
		if err == nil {
			return resp, nil
		}

		lastErr = err

		if !isRetryable(err) {
			return nil, err
		}

		if attempt < r.maxRetries-1 {
			time.Sleep(r.backoff(attempt))
		}
	}

	return nil, fmt.Errorf("maximum retries exceeded: %w", lastErr)
}

func isRetryable(err error) bool {
	if gwErr, ok := application.IsGatewayError(err); ok {
		return gwErr.IsRetryable()
	}

	if errors.Is(err, context.Canceled) {
		return false
	}

	// Transport-level failures (connection refused, timeouts) arrive as
	// plain wrapped errors and are worth another attempt.
	return true
}

func (r *RetryGateway) backoff(attempt int) time.Duration {
	base := r.baseDelay * time.Duration(1<<attempt)

	jitter := time.Duration(rand.Intn(1000)) * time.Millisecond

	return base + jitter
}
