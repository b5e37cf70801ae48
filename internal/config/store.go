package config

import (
	"fmt"
	"sync"

	"github.com/Apsteward8/market-scanner/pkg/models"
)

// StrategyStore owns the mutable strategy settings. Readers get immutable
// snapshots; an update only affects calls that snapshot after it.
type StrategyStore struct {
	mu      sync.RWMutex
	current models.StrategyConfig
	version int
}

// NewStrategyStore seeds the store with an initial configuration.
func NewStrategyStore(initial models.StrategyConfig) (*StrategyStore, error) {
	if err := initial.Validate(); err != nil {
		return nil, fmt.Errorf("invalid strategy settings: %w", err)
	}
	return &StrategyStore{current: initial, version: 1}, nil
}

// Snapshot returns the current settings by value. The slice is copied so a
// later update cannot mutate a snapshot already handed out.
func (s *StrategyStore) Snapshot() models.StrategyConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cfg := s.current
	cfg.TargetSports = append([]string(nil), s.current.TargetSports...)
	return cfg
}

// Version returns the current settings version, bumped on every update.
func (s *StrategyStore) Version() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Update replaces the settings. Invalid settings are rejected and the current
// ones stay in effect.
func (s *StrategyStore) Update(next models.StrategyConfig) error {
	if err := next.Validate(); err != nil {
		return fmt.Errorf("invalid strategy settings: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = next
	s.version++
	return nil
}
