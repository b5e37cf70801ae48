package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Apsteward8/market-scanner/internal/config"
	"github.com/Apsteward8/market-scanner/pkg/models"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.HTTPPort != "8086" {
		t.Errorf("http port = %s, want 8086", cfg.HTTPPort)
	}
	if !cfg.Strategy.DryRun {
		t.Error("dry run should default to true")
	}
	if cfg.Strategy.MinStakeThreshold != 5000 {
		t.Errorf("min stake threshold = %f, want 5000", cfg.Strategy.MinStakeThreshold)
	}
}

func TestLoadYAMLFile(t *testing.T) {
	path := writeConfig(t, `
env: dev
http_port: "9000"
exchange:
  base_url: https://cash.api.prophetx.co
  feed_ws_url: wss://feed.prophetx.co/ws
strategy:
  min_stake_threshold: 2500
  max_bet_size: 500
  default_bet_size: 10
  undercut_ticks: 2
  target_sports: ["Basketball"]
  dry_run: false
`)

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Env != "dev" || cfg.HTTPPort != "9000" {
		t.Errorf("env/port = %s/%s", cfg.Env, cfg.HTTPPort)
	}
	if cfg.Exchange.FeedWSURL != "wss://feed.prophetx.co/ws" {
		t.Errorf("feed url = %s", cfg.Exchange.FeedWSURL)
	}
	if cfg.Strategy.MinStakeThreshold != 2500 || cfg.Strategy.UndercutTicks != 2 {
		t.Errorf("strategy = %+v", cfg.Strategy)
	}
	if cfg.Strategy.DryRun {
		t.Error("dry run should be false from file")
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
strategy:
  min_stake_threshold: 2500
`)

	t.Setenv("MIN_STAKE_THRESHOLD", "7500")
	t.Setenv("DRY_RUN", "false")

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Strategy.MinStakeThreshold != 7500 {
		t.Errorf("min stake threshold = %f, want env override 7500", cfg.Strategy.MinStakeThreshold)
	}
	if cfg.Strategy.DryRun {
		t.Error("dry run should be overridden to false")
	}
}

func TestLoadRejectsInvalidStrategy(t *testing.T) {
	path := writeConfig(t, `
strategy:
  max_bet_size: -100
  undercut_ticks: 1
`)

	if _, err := config.Load(path); err == nil {
		t.Error("expected error for negative max_bet_size")
	}
}

func TestStrategyStoreSnapshots(t *testing.T) {
	store, err := config.NewStrategyStore(models.DefaultStrategyConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	before := store.Snapshot()

	next := store.Snapshot()
	next.MinStakeThreshold = 12000
	next.TargetSports = append(next.TargetSports, "Hockey")
	if err := store.Update(next); err != nil {
		t.Fatalf("update: %v", err)
	}

	// The earlier snapshot is unaffected by the update.
	if before.MinStakeThreshold != 5000 {
		t.Errorf("old snapshot mutated: %f", before.MinStakeThreshold)
	}
	if len(before.TargetSports) != 3 {
		t.Errorf("old snapshot sports mutated: %v", before.TargetSports)
	}

	after := store.Snapshot()
	if after.MinStakeThreshold != 12000 {
		t.Errorf("new snapshot = %f, want 12000", after.MinStakeThreshold)
	}
	if store.Version() != 2 {
		t.Errorf("version = %d, want 2", store.Version())
	}
}

func TestStrategyStoreRejectsInvalidUpdate(t *testing.T) {
	store, _ := config.NewStrategyStore(models.DefaultStrategyConfig())

	bad := store.Snapshot()
	bad.UndercutTicks = 0
	if err := store.Update(bad); err == nil {
		t.Fatal("expected error for invalid update")
	}

	if store.Snapshot().UndercutTicks != 1 {
		t.Error("failed update must leave current settings in effect")
	}
	if store.Version() != 1 {
		t.Errorf("version = %d, want unchanged 1", store.Version())
	}
}
