// Package search turns a raw text query into a ranked, deduplicated list of
// track candidates. It fans out over transliterated query variants, calls the
// media provider under bounded concurrency and a per-call timeout, and caches
// the ranked outcome per normalized query.
package search

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"tunestream/musicbot/internal/domain"
	"tunestream/musicbot/internal/translit"
)

const (
	defaultCacheTTL    = 10 * time.Minute
	defaultConcurrency = 3

	// Candidates must be playable tracks, not snippets or full mixes.
	minDurationSeconds = 30
	maxDurationSeconds = 3600
)

// Provider resolves a free-text query to raw track results. Implementations
// own their transport-level retries; a returned error or timeout is treated
// as zero results for that variant.
type Provider interface {
	Name() string
	Search(ctx context.Context, query string, wanted int) ([]domain.RawResult, error)
}

type Service struct {
	provider Provider
	timeout  time.Duration
	sem      *semaphore.Weighted
	expand   func(string) []string

	cacheTTL time.Duration
	cacheMu  sync.Mutex
	cache    map[string]cacheEntry
}

type Option func(*Service)

// WithCacheTTL overrides how long a ranked result set is served from cache.
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

// WithConcurrency bounds how many searches may run provider calls at once.
func WithConcurrency(n int64) Option {
	return func(s *Service) {
		if n > 0 {
			s.sem = semaphore.NewWeighted(n)
		}
	}
}

// WithExpander replaces the query-variant expander, mainly for tests.
func WithExpander(expand func(string) []string) Option {
	return func(s *Service) {
		if expand != nil {
			s.expand = expand
		}
	}
}

func NewService(provider Provider, timeout time.Duration, opts ...Option) *Service {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	svc := &Service{
		provider: provider,
		timeout:  timeout,
		sem:      semaphore.NewWeighted(defaultConcurrency),
		expand:   translit.Expand,
		cacheTTL: defaultCacheTTL,
		cache:    make(map[string]cacheEntry),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// NormalizeQuery produces the canonical form used as the cache key and as
// the relevance-scoring reference.
func NormalizeQuery(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}
