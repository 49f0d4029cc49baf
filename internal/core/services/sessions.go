package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/sairamandadi/emotion-based-Music-Recommender/internal/logger"
)

const DefaultSessionTTL = 30 * time.Minute

// CoordinatorFactory builds the coordinator for a new session.
type CoordinatorFactory func() *Coordinator

// Sessions maps session IDs to coordinators. Idle sessions expire after the
// TTL and their coordinators are closed on eviction.
type Sessions struct {
	// mu serializes lookups with removals so a refresh never re-adds a
	// session that was just deleted or evicted.
	mu      sync.Mutex
	items   *cache.Cache
	ttl     time.Duration
	factory CoordinatorFactory
}

func NewSessions(ttl time.Duration, factory CoordinatorFactory) *Sessions {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	// Expired entries are swept by Run rather than go-cache's janitor so the
	// sweeper stops with its context.
	items := cache.New(ttl, 0)
	items.OnEvicted(func(id string, v interface{}) {
		if c, ok := v.(*Coordinator); ok {
			c.Close()
		}
		logger.Debug("session evicted", logger.String("session_id", id))
	})
	return &Sessions{items: items, ttl: ttl, factory: factory}
}

// Create registers a fresh coordinator under a new random ID.
func (s *Sessions) Create() (string, *Coordinator) {
	id := uuid.NewString()
	c := s.factory()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items.Set(id, c, cache.DefaultExpiration)
	logger.Info("session created", logger.String("session_id", id))
	return id, c
}

// Get returns the session's coordinator and extends its lifetime.
func (s *Sessions) Get(id string) (*Coordinator, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.items.Get(id)
	if !ok {
		return nil, false
	}
	c, ok := v.(*Coordinator)
	if !ok {
		return nil, false
	}
	s.items.Set(id, c, cache.DefaultExpiration)
	return c, true
}

// Delete closes and removes a session.
func (s *Sessions) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items.Delete(id)
}

func (s *Sessions) Len() int {
	return s.items.ItemCount()
}

// Sweep evicts expired sessions.
func (s *Sessions) Sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items.DeleteExpired()
}

// Run sweeps expired sessions until ctx is done, then closes every session.
func (s *Sessions) Run(ctx context.Context) {
	interval := s.ttl / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.CloseAll()
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// CloseAll evicts every session.
func (s *Sessions) CloseAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id := range s.items.Items() {
		s.items.Delete(id)
	}
}
