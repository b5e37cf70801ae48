// Package ledger is the append-only audit trail of every placement attempt.
package ledger

import (
	"context"

	"github.com/Apsteward8/market-scanner/pkg/models"
)

// StatusFilter narrows history reads to one outcome.
type StatusFilter string

const (
	StatusAll        StatusFilter = "all"
	StatusSuccessful StatusFilter = "successful"
	StatusFailed     StatusFilter = "failed"
)

// Ledger stores placement records. Implementations must support concurrent
// appends and reads; records are immutable once written and only Clear ever
// removes them.
type Ledger interface {
	// Record appends one placement record.
	Record(ctx context.Context, rec models.PlacementRecord) error

	// History returns records most-recent-first by placement time, optionally
	// filtered by outcome. limit <= 0 means no cap.
	History(ctx context.Context, limit int, status StatusFilter) ([]models.PlacementRecord, error)

	// Stats recomputes aggregate statistics from the ledger's full contents.
	Stats(ctx context.Context) (models.PlacementStats, error)

	// Clear irreversibly empties the ledger. Callers own the warning.
	Clear(ctx context.Context) error
}

func matches(rec models.PlacementRecord, status StatusFilter) bool {
	switch status {
	case StatusSuccessful:
		return rec.Success
	case StatusFailed:
		return !rec.Success
	default:
		return true
	}
}

func computeStats(records []models.PlacementRecord) models.PlacementStats {
	stats := models.PlacementStats{}
	for _, rec := range records {
		stats.TotalAttempts++
		if rec.Success {
			stats.Successful++
			stats.TotalStaked += rec.Stake
		} else {
			stats.Failed++
		}
		if rec.DryRun {
			stats.DryRunAttempts++
		}
	}

	if stats.TotalAttempts > 0 {
		stats.SuccessRate = float64(stats.Successful) / float64(stats.TotalAttempts) * 100.0
	}
	if stats.Successful > 0 {
		stats.AverageStake = stats.TotalStaked / float64(stats.Successful)
	}
	return stats
}
