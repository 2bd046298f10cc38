package server

import (
	"sync"
	"time"

	"github.com/pintscoredd/zerodte/internal/engine"
)

// Store holds the most recent analysis per ticker. The refresher
// writes, the HTTP handlers and the websocket streamer read.
type Store struct {
	mu          sync.RWMutex
	analyses    map[string]*engine.Analysis
	refreshedAt time.Time
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		analyses: make(map[string]*engine.Analysis),
	}
}

// SetAnalysis replaces the stored analysis for a ticker.
func (s *Store) SetAnalysis(ticker string, a *engine.Analysis) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.analyses[ticker] = a
	s.refreshedAt = time.Now()
}

// Latest returns the current analysis for a ticker.
func (s *Store) Latest(ticker string) (*engine.Analysis, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.analyses[ticker]
	return a, ok
}

// RefreshedAt returns when the store last changed. Zero until the
// first analysis lands.
func (s *Store) RefreshedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshedAt
}
