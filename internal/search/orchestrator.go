package search

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"tunestream/musicbot/internal/domain"
	"tunestream/musicbot/internal/metrics"
)

// Search returns at most limit ranked candidates for query. The second
// return value is false when nothing qualifies: provider failures, timeouts
// and empty catalogs all collapse into an absent result.
func (s *Service) Search(ctx context.Context, query string, limit int) (domain.ResultSet, bool) {
	if limit <= 0 {
		limit = 3
	}
	normalized := NormalizeQuery(query)
	if normalized == "" {
		return domain.ResultSet{}, false
	}

	if cached, ok := s.cacheLookup(normalized, time.Now()); ok {
		metrics.CacheHitsTotal.Inc()
		return cached, true
	}
	metrics.CacheMissesTotal.Inc()

	if err := s.sem.Acquire(ctx, 1); err != nil {
		return domain.ResultSet{}, false
	}
	defer s.sem.Release(1)

	tracer := otel.Tracer("musicbot/search")
	ctx, span := tracer.Start(ctx, "search.run")
	span.SetAttributes(attribute.String("query", normalized), attribute.Int("limit", limit))
	defer span.End()

	raw := s.collectRaw(ctx, normalized, limit)
	tracks := rank(normalized, raw, limit)
	if len(tracks) == 0 {
		slog.Info("search found nothing qualifying",
			slog.String("query", normalized),
			slog.Int("raw", len(raw)),
		)
		return domain.ResultSet{}, false
	}

	set := domain.ResultSet{
		Query:     normalized,
		Tracks:    tracks,
		CreatedAt: time.Now(),
	}
	s.cacheStore(normalized, set, set.CreatedAt)

	slog.Info("search completed",
		slog.String("query", normalized),
		slog.Int("raw", len(raw)),
		slog.Int("ranked", len(tracks)),
	)
	return set.Clone(), true
}

// collectRaw accumulates provider results across query variants, stopping
// early once limit*2 raw results are gathered. A failed variant contributes
// nothing and never aborts the search.
func (s *Service) collectRaw(ctx context.Context, normalized string, limit int) []domain.RawResult {
	wanted := limit * 2
	variants := s.expand(normalized)

	var raw []domain.RawResult
	for _, variant := range variants {
		if len(raw) >= wanted {
			break
		}
		results, err := s.searchVariant(ctx, variant, wanted)
		if err != nil {
			slog.Warn("provider search failed for variant",
				slog.String("provider", s.provider.Name()),
				slog.String("variant", variant),
				slog.String("error", err.Error()),
			)
			continue
		}
		raw = append(raw, results...)
	}
	return raw
}

func (s *Service) searchVariant(ctx context.Context, variant string, wanted int) ([]domain.RawResult, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	startedAt := time.Now()
	results, err := s.provider.Search(callCtx, variant, wanted)
	metrics.ProviderSearchDuration.WithLabelValues(s.provider.Name()).Observe(time.Since(startedAt).Seconds())

	status := "ok"
	switch {
	case callCtx.Err() == context.DeadlineExceeded:
		status = "timeout"
	case err != nil:
		status = "error"
	}
	metrics.ProviderSearchTotal.WithLabelValues(s.provider.Name(), status).Inc()

	if err != nil {
		return nil, err
	}
	return results, nil
}

// rank filters, deduplicates, scores, sorts and truncates the raw results.
// The query must already be normalized.
func rank(query string, raw []domain.RawResult, limit int) []domain.Track {
	seen := make(map[string]struct{}, len(raw))
	tracks := make([]domain.Track, 0, len(raw))

	for _, r := range raw {
		if r.URL == "" {
			continue
		}
		if r.DurationSeconds < minDurationSeconds || r.DurationSeconds > maxDurationSeconds {
			continue
		}
		title := CleanTitle(r.Title)
		if title == "" {
			continue
		}
		if _, dup := seen[r.URL]; dup {
			continue
		}
		seen[r.URL] = struct{}{}

		artist := strings.TrimSpace(r.Uploader)
		if artist == "" {
			artist = "unknown"
		}
		tracks = append(tracks, domain.Track{
			Title:           title,
			SourceURL:       r.URL,
			DurationSeconds: r.DurationSeconds,
			Artist:          artist,
			Score:           score(query, title),
		})
	}

	sort.SliceStable(tracks, func(i, j int) bool {
		if tracks[i].Score != tracks[j].Score {
			return tracks[i].Score > tracks[j].Score
		}
		return tracks[i].DurationSeconds > tracks[j].DurationSeconds
	})

	if len(tracks) > limit {
		tracks = tracks[:limit]
	}
	return tracks
}

// score implements the fixed relevance heuristic: +10 for a query substring
// match, then +5 for an "official" marker or +3 for an "original" marker.
// The two markers are mutually exclusive; official wins because it implies a
// canonical release.
func score(query, title string) int {
	lowered := strings.ToLower(title)
	value := 0
	if strings.Contains(lowered, query) {
		value += 10
	}
	switch {
	case strings.Contains(lowered, "official"):
		value += 5
	case strings.Contains(lowered, "original"):
		value += 3
	}
	return value
}
