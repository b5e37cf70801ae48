package ledger

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/Apsteward8/market-scanner/pkg/models"
)

// Postgres persists placement records in the placements table.
type Postgres struct {
	db *sql.DB
}

// NewPostgres wraps an open database handle.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// Migrate creates the placements table if it does not exist.
func (p *Postgres) Migrate(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS placements (
			id             BIGSERIAL PRIMARY KEY,
			external_id    TEXT NOT NULL,
			line_id        TEXT NOT NULL,
			side           TEXT NOT NULL DEFAULT '',
			odds           INTEGER NOT NULL,
			stake          DOUBLE PRECISION NOT NULL,
			stake_clamped  BOOLEAN NOT NULL DEFAULT FALSE,
			success        BOOLEAN NOT NULL,
			dry_run        BOOLEAN NOT NULL,
			order_id       TEXT,
			failure_reason TEXT,
			event_id       TEXT,
			market_id      TEXT,
			placed_at      TIMESTAMPTZ NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create placements table: %w", err)
	}
	return nil
}

func (p *Postgres) Record(ctx context.Context, rec models.PlacementRecord) error {
	query := `
		INSERT INTO placements (
			external_id, line_id, side, odds, stake, stake_clamped,
			success, dry_run, order_id, failure_reason, event_id, market_id, placed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := p.db.ExecContext(ctx, query,
		rec.ExternalID,
		rec.LineID,
		rec.Side,
		rec.Odds,
		rec.Stake,
		rec.StakeClamped,
		rec.Success,
		rec.DryRun,
		nullable(rec.OrderID),
		nullable(rec.FailureReason),
		nullable(rec.EventID),
		nullable(rec.MarketID),
		rec.PlacedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert placement: %w", err)
	}
	return nil
}

func (p *Postgres) History(ctx context.Context, limit int, status StatusFilter) ([]models.PlacementRecord, error) {
	query := `
		SELECT external_id, line_id, side, odds, stake, stake_clamped,
		       success, dry_run, order_id, failure_reason, event_id, market_id, placed_at
		FROM placements
	`

	args := []interface{}{}
	switch status {
	case StatusSuccessful:
		query += " WHERE success = TRUE"
	case StatusFailed:
		query += " WHERE success = FALSE"
	}
	query += " ORDER BY placed_at DESC"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", len(args)+1)
		args = append(args, limit)
	}

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query placements: %w", err)
	}
	defer rows.Close()

	var out []models.PlacementRecord
	for rows.Next() {
		var rec models.PlacementRecord
		var orderID, reason, eventID, marketID sql.NullString
		if err := rows.Scan(
			&rec.ExternalID, &rec.LineID, &rec.Side, &rec.Odds, &rec.Stake, &rec.StakeClamped,
			&rec.Success, &rec.DryRun, &orderID, &reason, &eventID, &marketID, &rec.PlacedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan placement: %w", err)
		}
		rec.OrderID = orderID.String
		rec.FailureReason = reason.String
		rec.EventID = eventID.String
		rec.MarketID = marketID.String
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (p *Postgres) Stats(ctx context.Context) (models.PlacementStats, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE success),
			COUNT(*) FILTER (WHERE NOT success),
			COUNT(*) FILTER (WHERE dry_run),
			COALESCE(SUM(stake) FILTER (WHERE success), 0)
		FROM placements
	`

	var stats models.PlacementStats
	err := p.db.QueryRowContext(ctx, query).Scan(
		&stats.TotalAttempts,
		&stats.Successful,
		&stats.Failed,
		&stats.DryRunAttempts,
		&stats.TotalStaked,
	)
	if err != nil {
		return models.PlacementStats{}, fmt.Errorf("failed to compute stats: %w", err)
	}

	if stats.TotalAttempts > 0 {
		stats.SuccessRate = float64(stats.Successful) / float64(stats.TotalAttempts) * 100.0
	}
	if stats.Successful > 0 {
		stats.AverageStake = stats.TotalStaked / float64(stats.Successful)
	}
	return stats, nil
}

func (p *Postgres) Clear(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, "DELETE FROM placements"); err != nil {
		return fmt.Errorf("failed to clear placements: %w", err)
	}
	return nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
