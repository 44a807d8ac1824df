package llm

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedProvider struct {
	errs  []error
	calls int
}

func (p *scriptedProvider) Chat(ctx context.Context, history []Message, options ...Option) (string, error) {
	i := p.calls
	p.calls++
	if i < len(p.errs) && p.errs[i] != nil {
		return "", p.errs[i]
	}
	return "ok", nil
}

func (p *scriptedProvider) Generate(ctx context.Context, prompt string, options ...Option) (string, error) {
	return p.Chat(ctx, nil, options...)
}

func newTestRetry(next LLMProvider, n int) (*RetryProvider, *[]time.Duration) {
	var slept []time.Duration
	r := NewRetryProvider(next, n)
	r.sleep = func(ctx context.Context, d time.Duration) error {
		slept = append(slept, d)
		return ctx.Err()
	}
	return r, &slept
}

func TestRetryProviderRecoversFromTransientErrors(t *testing.T) {
	inner := &scriptedProvider{errs: []error{
		errors.New("connection reset"),
		&StatusError{Provider: "x", StatusCode: http.StatusTooManyRequests},
	}}
	r, slept := newTestRetry(inner, 3)

	out, err := r.Chat(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, 3, inner.calls)
	assert.Len(t, *slept, 2)
}

func TestRetryProviderStopsOnPermanentError(t *testing.T) {
	inner := &scriptedProvider{errs: []error{&StatusError{Provider: "x", StatusCode: http.StatusUnauthorized}}}
	r, slept := newTestRetry(inner, 3)

	_, err := r.Chat(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, 1, inner.calls)
	assert.Empty(t, *slept)
}

func TestRetryProviderGivesUp(t *testing.T) {
	boom := errors.New("dial tcp: timeout")
	inner := &scriptedProvider{errs: []error{boom, boom, boom}}
	r, _ := newTestRetry(inner, 2)

	_, err := r.Generate(context.Background(), "q")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 3, inner.calls)
}

func TestRetryProviderHonoursCancelledContext(t *testing.T) {
	inner := &scriptedProvider{errs: []error{errors.New("flaky"), errors.New("flaky")}}
	r, _ := newTestRetry(inner, 5)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Chat(ctx, nil)
	require.Error(t, err)
	assert.Equal(t, 1, inner.calls)
}

func TestBackoffIsBounded(t *testing.T) {
	r := NewRetryProvider(&scriptedProvider{}, 10)
	for attempt := 1; attempt <= 10; attempt++ {
		d := r.backoff(attempt)
		assert.LessOrEqual(t, d, r.MaxDelay)
		assert.Greater(t, d, time.Duration(0))
	}
}

func TestIsTransient(t *testing.T) {
	assert.False(t, IsTransient(nil))
	assert.False(t, IsTransient(context.DeadlineExceeded))
	assert.True(t, IsTransient(&StatusError{StatusCode: 503}))
	assert.False(t, IsTransient(&StatusError{StatusCode: 400}))
	assert.True(t, IsTransient(errors.New("eof")))
}
