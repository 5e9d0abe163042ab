// Package humanizer rewrites AI-sounding text through a provider and caches the results.
package humanizer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/singleflight"

	"github.com/at-ishikawa/humanizer/internal/cache"
	"github.com/at-ishikawa/humanizer/internal/inference"
	"github.com/at-ishikawa/humanizer/internal/metrics"
	"github.com/at-ishikawa/humanizer/internal/postprocess"
)

// MaxTextLength is the maximum number of characters accepted per request.
const MaxTextLength = 10000

// PromptBuilder renders the provider request for an input text.
type PromptBuilder interface {
	Build(text string) (inference.RewriteRequest, error)
}

// Result describes a completed rewrite.
type Result struct {
	Text            string
	OriginalLength  int
	HumanizedLength int
	// Cached reports whether the text is in the cache once the call returns.
	// After a miss it is therefore true as well.
	Cached bool
	// Hit reports whether the text was served from the cache.
	Hit     bool
	Elapsed time.Duration
}

// Service validates input, consults the cache and calls the provider on a miss.
// It owns its cache; concurrent calls are safe.
type Service struct {
	client    inference.Client
	prompts   PromptBuilder
	responses *cache.FIFOCache
	inflight  singleflight.Group
	now       func() time.Time
}

// NewService returns a Service that rewrites through client, renders prompts
// with prompts and stores results in responses.
func NewService(client inference.Client, prompts PromptBuilder, responses *cache.FIFOCache) *Service {
	return &Service{
		client:    client,
		prompts:   prompts,
		responses: responses,
		now:       time.Now,
	}
}

// CacheSize returns the number of cached responses.
func (s *Service) CacheSize() int {
	return s.responses.Len()
}

// CacheStats returns the counters of the response cache.
func (s *Service) CacheStats() cache.Stats {
	return s.responses.Stats()
}

// Validate trims text and checks it against the request limits.
func Validate(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", &ValidationError{Message: MessageNoText}
	}
	if utf8.RuneCountInString(text) > MaxTextLength {
		return "", &ValidationError{Message: MessageTextTooLong}
	}
	return text, nil
}

// Humanize returns the rewritten form of text. On error the returned Result
// still carries the time spent so far.
func (s *Service) Humanize(ctx context.Context, text string) (Result, error) {
	start := s.now()

	text, err := Validate(text)
	if err != nil {
		return Result{Elapsed: s.now().Sub(start)}, err
	}
	originalLength := utf8.RuneCountInString(text)
	metrics.InputChars.Observe(float64(originalLength))

	key := cache.Fingerprint(text)
	humanized, hit := s.responses.Get(key)
	if hit {
		metrics.CacheLookupsTotal.WithLabelValues("hit").Inc()
		slog.Default().Debug("cache hit", "key", key)
	} else {
		metrics.CacheLookupsTotal.WithLabelValues("miss").Inc()
		slog.Default().Info("processing new text", "key", key, "length", originalLength)

		humanized, err = s.rewrite(ctx, key, text)
		if err != nil {
			return Result{Elapsed: s.now().Sub(start)}, err
		}
	}

	return Result{
		Text:            humanized,
		OriginalLength:  originalLength,
		HumanizedLength: utf8.RuneCountInString(humanized),
		Cached:          s.responses.Contains(key),
		Hit:             hit,
		Elapsed:         s.now().Sub(start),
	}, nil
}

// rewrite calls the provider once per key even when several requests for the
// same text miss the cache at the same time. The shared call does not inherit
// the cancellation of the caller that started it; each caller stops waiting
// when its own ctx is done, and the provider timeout bounds the call itself.
func (s *Service) rewrite(ctx context.Context, key, text string) (string, error) {
	detached := context.WithoutCancel(ctx)
	results := s.inflight.DoChan(key, func() (any, error) {
		request, err := s.prompts.Build(text)
		if err != nil {
			return "", fmt.Errorf("prompts.Build > %w", err)
		}

		start := s.now()
		response, err := s.client.Rewrite(detached, request)
		if err != nil {
			metrics.RewriteDuration.WithLabelValues("error").Observe(s.now().Sub(start).Seconds())
			if inference.IsAuthError(err) {
				slog.Default().Error("provider rejected the API key", "key", key, "error", err)
			} else {
				slog.Default().Error("rewrite failed", "key", key, "error", err)
			}
			return "", err
		}
		metrics.RewriteDuration.WithLabelValues("ok").Observe(s.now().Sub(start).Seconds())

		humanized := postprocess.Apply(response.Text)
		if s.responses.Set(key, humanized) {
			metrics.CacheEvictionsTotal.Inc()
		}
		metrics.CacheEntries.Set(float64(s.responses.Len()))
		return humanized, nil
	})

	select {
	case <-ctx.Done():
		return "", fmt.Errorf("waiting for the rewrite > %w", ctx.Err())
	case result := <-results:
		if result.Err != nil {
			return "", result.Err
		}
		if result.Shared {
			slog.Default().Debug("shared an in-flight rewrite", "key", key)
		}
		return result.Val.(string), nil
	}
}
