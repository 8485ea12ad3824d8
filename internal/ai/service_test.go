package ai

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -------- test fakes --------

type fakeLLM struct {
	reply string
	err   error
	calls int
}

func (f *fakeLLM) Complete(ctx context.Context, prompt string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

type allowAll struct{}

func (allowAll) Allow(string) bool { return true }

type denyAll struct{}

func (denyAll) Allow(string) bool { return false }

func newService(llm LLMClient, limiter RateLimiter) *Service {
	return NewService(llm, NewMemoryCache(time.Hour), limiter)
}

func TestGenerateTitleEmptyTextNoUpstreamCall(t *testing.T) {
	llm := &fakeLLM{reply: `{"title": "x"}`}
	svc := newService(llm, allowAll{})

	_, err := svc.GenerateTitle(context.Background(), TitleRequest{DreamText: "   \n\t "})

	assert.ErrorIs(t, err, ErrEmptyText)
	assert.Zero(t, llm.calls, "blank text must not reach the provider")
}

func TestGenerateTitleParsesProviderJSON(t *testing.T) {
	llm := &fakeLLM{reply: `{"title": "Falling Upward", "themes": ["flight", "vertigo"]}`}
	svc := newService(llm, allowAll{})

	got, err := svc.GenerateTitle(context.Background(), TitleRequest{DreamText: "I was falling up into the sky"})

	require.NoError(t, err)
	assert.Equal(t, "Falling Upward", got.Title)
	assert.Equal(t, []string{"flight", "vertigo"}, got.Themes)
	assert.False(t, got.Fallback)
	assert.False(t, got.Cached)
}

func TestGenerateTitleSecondIdenticalRequestIsCached(t *testing.T) {
	llm := &fakeLLM{reply: `{"title": "Falling Upward", "themes": []}`}
	svc := newService(llm, allowAll{})
	req := TitleRequest{DreamText: "  I was falling up into the sky  ", UserID: "u1"}

	first, err := svc.GenerateTitle(context.Background(), req)
	require.NoError(t, err)
	require.False(t, first.Cached)

	second, err := svc.GenerateTitle(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Title, second.Title)
	assert.Equal(t, 1, llm.calls, "cache hit must issue zero upstream calls")
}

func TestGenerateTitleCustomPromptSplitsCache(t *testing.T) {
	llm := &fakeLLM{reply: `{"title": "T", "themes": []}`}
	svc := newService(llm, allowAll{})

	_, err := svc.GenerateTitle(context.Background(), TitleRequest{DreamText: "same dream"})
	require.NoError(t, err)
	_, err = svc.GenerateTitle(context.Background(), TitleRequest{DreamText: "same dream", CustomPrompt: "be ominous"})
	require.NoError(t, err)

	assert.Equal(t, 2, llm.calls)
}

func TestGenerateTitleQuotaExceeded(t *testing.T) {
	llm := &fakeLLM{reply: `{"title": "T"}`}
	svc := newService(llm, denyAll{})

	_, err := svc.GenerateTitle(context.Background(), TitleRequest{DreamText: "a dream", UserID: "u1"})

	assert.ErrorIs(t, err, ErrQuotaExceeded)
	assert.Zero(t, llm.calls)
}

func TestGenerateTitleProviderFailureFallsBack(t *testing.T) {
	llm := &fakeLLM{err: assert.AnError}
	svc := newService(llm, allowAll{})

	got, err := svc.GenerateTitle(context.Background(), TitleRequest{DreamText: "the lighthouse kept moving away from me"})

	require.NoError(t, err, "provider failure must not surface to the caller")
	assert.True(t, got.Fallback)
	assert.Equal(t, "provider unavailable", got.Reason)
	assert.Equal(t, "the lighthouse kept moving away from…", got.Title)
}

func TestGenerateTitleUnconfiguredProvider(t *testing.T) {
	svc := newService(nil, allowAll{})

	got, err := svc.GenerateTitle(context.Background(), TitleRequest{DreamText: "short dream"})

	require.NoError(t, err)
	assert.True(t, got.Fallback)
	assert.Equal(t, "provider not configured", got.Reason)
	assert.Equal(t, "short dream", got.Title)
}

func TestDailyLimiter(t *testing.T) {
	l := NewDailyLimiter(2)
	now := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("u1"))
	assert.True(t, l.Allow("u1"))
	assert.False(t, l.Allow("u1"), "third call of the day is over quota")
	assert.True(t, l.Allow("u2"), "quota is per caller")

	now = now.Add(24 * time.Hour)
	assert.True(t, l.Allow("u1"), "new day resets the bucket")
}

func TestMemoryCacheTTL(t *testing.T) {
	c := NewMemoryCache(time.Minute)
	now := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Set("k", TitleResult{Title: "T"})
	_, ok := c.Get("k")
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)
	_, ok = c.Get("k")
	assert.False(t, ok, "expired entry must miss")
}
