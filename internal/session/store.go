// Package session keeps the per-chat selection state between a search reply
// and the user's pick. Chats hold at most one live session; a new search
// simply replaces the old one.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"tunestream/musicbot/internal/domain"
	"tunestream/musicbot/internal/metrics"
)

type entry struct {
	session  domain.Session
	storedAt time.Time
}

type Store struct {
	ttl time.Duration

	mu     sync.Mutex
	byChat map[int64]entry
}

func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 40 * time.Minute
	}
	return &Store{
		ttl:    ttl,
		byChat: make(map[int64]entry),
	}
}

// Put installs the session for its chat, replacing any previous one.
func (s *Store) Put(session domain.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.byChat[session.ChatID] = entry{session: session, storedAt: time.Now()}
	metrics.ActiveSessions.Set(float64(len(s.byChat)))
}

// Get returns the live session for chatID. An entry older than the TTL is
// treated as absent and removed on the way out.
func (s *Store) Get(chatID int64) (domain.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.byChat[chatID]
	if !ok {
		return domain.Session{}, false
	}
	if time.Since(e.storedAt) > s.ttl {
		delete(s.byChat, chatID)
		metrics.ActiveSessions.Set(float64(len(s.byChat)))
		return domain.Session{}, false
	}
	return e.session, true
}

// Delete drops the session for chatID if present.
func (s *Store) Delete(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.byChat, chatID)
	metrics.ActiveSessions.Set(float64(len(s.byChat)))
}

// Sweep removes every expired session and reports how many were dropped.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-s.ttl)
	dropped := 0
	for chatID, e := range s.byChat {
		if e.storedAt.Before(cutoff) {
			delete(s.byChat, chatID)
			dropped++
		}
	}
	metrics.ActiveSessions.Set(float64(len(s.byChat)))
	return dropped
}

// Len reports how many sessions are currently stored, expired or not.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byChat)
}

// StartSweeper runs Sweep on the given interval until ctx is canceled.
func (s *Store) StartSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if dropped := s.Sweep(); dropped > 0 {
					slog.Debug("swept expired sessions", slog.Int("dropped", dropped))
				}
			}
		}
	}()
}
