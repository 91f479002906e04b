// Package store keeps the latest market snapshot and uploaded portfolio in
// memory for the single dashboard user.
package store

import (
	"sync"

	"github.com/ChevesR/ibit-strategy-v5/internal/model"
)

// Store is safe for concurrent use.
type Store struct {
	mu        sync.RWMutex
	snapshot  *model.MarketSnapshot
	portfolio *model.Portfolio
}

func New() *Store { return &Store{} }

func (s *Store) SetSnapshot(snap *model.MarketSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = snap
}

// Snapshot returns the latest snapshot, or nil before the first refresh.
func (s *Store) Snapshot() *model.MarketSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

func (s *Store) SetPortfolio(p *model.Portfolio) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.portfolio = p
}

// Portfolio returns the uploaded portfolio, or nil.
func (s *Store) Portfolio() *model.Portfolio {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.portfolio
}

func (s *Store) ClearPortfolio() {
	s.SetPortfolio(nil)
}
