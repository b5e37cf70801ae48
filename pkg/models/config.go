package models

import "fmt"

// StrategyConfig is an immutable snapshot of the follow strategy settings.
// Core operations take a snapshot parameter instead of reading shared state,
// so a settings change applies to subsequent calls only.
type StrategyConfig struct {
	MinStakeThreshold float64  `json:"min_stake_threshold" yaml:"min_stake_threshold"`
	MaxBetSize        float64  `json:"max_bet_size" yaml:"max_bet_size"`
	DefaultBetSize    float64  `json:"default_bet_size" yaml:"default_bet_size"`
	UndercutTicks     int      `json:"undercut_ticks" yaml:"undercut_ticks"`
	TargetSports      []string `json:"target_sports" yaml:"target_sports"`
	DryRun            bool     `json:"dry_run" yaml:"dry_run"`
}

// DefaultStrategyConfig mirrors the scanner's stock settings.
func DefaultStrategyConfig() StrategyConfig {
	return StrategyConfig{
		MinStakeThreshold: 5000,
		MaxBetSize:        1000,
		DefaultBetSize:    100,
		UndercutTicks:     1,
		TargetSports:      []string{"Baseball", "American Football", "Basketball"},
		DryRun:            true,
	}
}

// Validate rejects configurations the core must never act on. Invalid values
// are surfaced immediately, not clamped.
func (c StrategyConfig) Validate() error {
	if c.MinStakeThreshold < 0 {
		return fmt.Errorf("min_stake_threshold must be >= 0, got %.2f", c.MinStakeThreshold)
	}
	if c.MaxBetSize < 0 {
		return fmt.Errorf("max_bet_size must be >= 0, got %.2f", c.MaxBetSize)
	}
	if c.DefaultBetSize < 0 {
		return fmt.Errorf("default_bet_size must be >= 0, got %.2f", c.DefaultBetSize)
	}
	if c.UndercutTicks < 1 {
		return fmt.Errorf("undercut_ticks must be >= 1, got %d", c.UndercutTicks)
	}
	return nil
}

// SportAllowed reports whether a sport passes the allow-list. An empty list
// allows every sport.
func (c StrategyConfig) SportAllowed(sport string) bool {
	if len(c.TargetSports) == 0 {
		return true
	}
	for _, s := range c.TargetSports {
		if s == sport {
			return true
		}
	}
	return false
}
