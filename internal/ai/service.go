// Package ai generates dream titles and themes through an LLM provider,
// with a content-hash response cache and a per-user daily quota in front of
// it. The service never hard-fails the caller: when the provider is
// unconfigured or errors out, it answers with a locally derived fallback
// title marked as such.
package ai

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

var (
	// ErrEmptyText means the dream text was empty after trimming.
	ErrEmptyText = errors.New("dream text is empty")
	// ErrQuotaExceeded means the caller used up today's title generations.
	ErrQuotaExceeded = errors.New("daily title quota exceeded")
)

// LLMClient is the upstream text-generation collaborator.
type LLMClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// TitleRequest is one title-generation call.
type TitleRequest struct {
	DreamText    string `json:"dreamText" validate:"required"`
	UserID       string `json:"userId,omitempty"`
	CustomPrompt string `json:"customPrompt,omitempty"`
}

// TitleResult is the caller-visible outcome. Fallback marks responses the
// provider did not produce; Reason says why.
type TitleResult struct {
	Title    string   `json:"title"`
	Themes   []string `json:"themes"`
	Cached   bool     `json:"cached,omitempty"`
	Fallback bool     `json:"fallback,omitempty"`
	Reason   string   `json:"reason,omitempty"`
}

// TitleService generates titles for dream text.
type TitleService interface {
	GenerateTitle(ctx context.Context, req TitleRequest) (TitleResult, error)
}

// Service implements TitleService over an LLMClient. A nil llm means the
// provider is unconfigured and every request takes the fallback path.
type Service struct {
	llm     LLMClient
	cache   ResponseCache
	limiter RateLimiter
}

// NewService creates a Service
func NewService(llm LLMClient, cache ResponseCache, limiter RateLimiter) *Service {
	return &Service{llm: llm, cache: cache, limiter: limiter}
}

// GenerateTitle serves a title for the dream text: cache first, then quota,
// then the provider, falling back locally when the provider cannot answer.
// Cache hits do not consume quota and issue no upstream call.
func (s *Service) GenerateTitle(ctx context.Context, req TitleRequest) (TitleResult, error) {
	text := strings.TrimSpace(req.DreamText)
	if text == "" {
		return TitleResult{}, ErrEmptyText
	}

	key := cacheKey(text, req.CustomPrompt)
	if cached, ok := s.cache.Get(key); ok {
		cached.Cached = true
		return cached, nil
	}

	caller := req.UserID
	if caller == "" {
		caller = "anonymous"
	}
	if !s.limiter.Allow(caller) {
		return TitleResult{}, ErrQuotaExceeded
	}

	if s.llm == nil {
		return s.fallback(key, text, "provider not configured"), nil
	}

	raw, err := s.llm.Complete(ctx, buildPrompt(text, req.CustomPrompt))
	if err != nil {
		slog.Warn("Title provider call failed, serving fallback", "error", err)
		return s.fallback(key, text, "provider unavailable"), nil
	}

	parsed := ParseTitleResponse(raw, text)
	result := TitleResult{Title: parsed.Title, Themes: parsed.Themes}
	if parsed.Outcome == Unparsed {
		result.Fallback = true
		result.Reason = "unparseable provider response"
	}

	s.cache.Set(key, result)
	return result, nil
}

// fallback builds and caches the locally derived answer so retries of the
// same text stay cheap even while the provider is down.
func (s *Service) fallback(key, text, reason string) TitleResult {
	result := TitleResult{
		Title:    FallbackTitle(text),
		Themes:   []string{},
		Fallback: true,
		Reason:   reason,
	}
	s.cache.Set(key, result)
	return result
}

func buildPrompt(text, custom string) string {
	if custom != "" {
		return fmt.Sprintf("%s\n\nDream:\n%s", custom, text)
	}
	return fmt.Sprintf(
		"Give this dream a short evocative title and up to three themes. "+
			"Answer as JSON: {\"title\": \"...\", \"themes\": [\"...\"]}.\n\nDream:\n%s",
		text)
}

// cacheKey hashes the trimmed text and custom prompt together; the same
// text under a different instruction is a different cache entry.
func cacheKey(text, custom string) string {
	sum := sha256.Sum256([]byte(text + "\x00" + custom))
	return hex.EncodeToString(sum[:])
}
