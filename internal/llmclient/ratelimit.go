package llmclient

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/spencerj41/droidmark-cli/api/schemas"
)

// Throttled wraps an LLMClient with a shared token-bucket limiter so that
// concurrent episode evaluation cannot exceed the provider's request quota.
type Throttled struct {
	inner   schemas.LLMClient
	limiter *rate.Limiter
}

// NewThrottled builds a throttled client allowing requestsPerMinute calls
// with a burst of one. A non-positive rate disables throttling.
func NewThrottled(inner schemas.LLMClient, requestsPerMinute float64) *Throttled {
	var limiter *rate.Limiter
	if requestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(requestsPerMinute/60.0), 1)
	}
	return &Throttled{inner: inner, limiter: limiter}
}

// Generate waits for limiter capacity, then delegates to the wrapped client.
func (t *Throttled) Generate(ctx context.Context, req schemas.GenerationRequest) (string, error) {
	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limit wait aborted: %w", err)
		}
	}
	return t.inner.Generate(ctx, req)
}
