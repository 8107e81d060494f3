package search

import (
	"time"

	"tunestream/musicbot/internal/domain"
)

type cacheEntry struct {
	set      domain.ResultSet
	storedAt time.Time
}

// cacheLookup returns the cached result set for key if it is younger than
// the TTL. Expired entries are purged lazily here; there is no background
// eviction and no cap on key count.
func (s *Service) cacheLookup(key string, now time.Time) (domain.ResultSet, bool) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()

	entry, ok := s.cache[key]
	if !ok {
		return domain.ResultSet{}, false
	}
	if now.Sub(entry.storedAt) > s.cacheTTL {
		delete(s.cache, key)
		return domain.ResultSet{}, false
	}
	return entry.set.Clone(), true
}

func (s *Service) cacheStore(key string, set domain.ResultSet, now time.Time) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()

	s.cache[key] = cacheEntry{set: set.Clone(), storedAt: now}
}
