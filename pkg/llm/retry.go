package llm

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// RetryProvider retries transient Chat failures with exponential backoff and
// ±25% jitter. It stops early when the context is done.
type RetryProvider struct {
	next       LLMProvider
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration

	// Retryable classifies errors; IsTransient when nil.
	Retryable func(err error) bool

	sleep func(ctx context.Context, d time.Duration) error
}

var _ LLMProvider = &RetryProvider{}

func NewRetryProvider(next LLMProvider, maxRetries int) *RetryProvider {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &RetryProvider{
		next:       next,
		MaxRetries: maxRetries,
		BaseDelay:  500 * time.Millisecond,
		MaxDelay:   8 * time.Second,
		sleep:      sleepCtx,
	}
}

func (r *RetryProvider) Chat(ctx context.Context, history []Message, options ...Option) (string, error) {
	retryable := r.Retryable
	if retryable == nil {
		retryable = IsTransient
	}

	var lastErr error
	for attempt := 0; attempt <= r.MaxRetries; attempt++ {
		if attempt > 0 {
			if err := r.sleep(ctx, r.backoff(attempt)); err != nil {
				return "", lastErr
			}
		}

		out, err := r.next.Chat(ctx, history, options...)
		if err == nil {
			return out, nil
		}
		lastErr = err
		if !retryable(err) {
			break
		}
	}
	return "", lastErr
}

func (r *RetryProvider) Generate(ctx context.Context, prompt string, options ...Option) (string, error) {
	return r.Chat(ctx, []Message{{Role: RoleUser, Content: prompt}}, options...)
}

func (r *RetryProvider) backoff(attempt int) time.Duration {
	base := float64(r.BaseDelay)
	if base <= 0 {
		base = float64(500 * time.Millisecond)
	}
	maxD := float64(r.MaxDelay)
	if maxD <= 0 {
		maxD = float64(8 * time.Second)
	}
	delay := base * math.Pow(2, float64(attempt-1))
	delay += delay * 0.25 * (rand.Float64()*2 - 1)
	if delay > maxD {
		delay = maxD
	}
	return time.Duration(delay)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
