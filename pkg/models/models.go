package models

import "time"

// WagerEvent is a single observed bet on the exchange, as delivered by the
// wager feed. Events are immutable once observed.
type WagerEvent struct {
	EventID    string    `json:"event_id"`
	MarketID   string    `json:"market_id"`
	LineID     string    `json:"line_id"`
	Side       string    `json:"side"`
	Sport      string    `json:"sport"`
	EventName  string    `json:"event_name,omitempty"`
	MarketName string    `json:"market_name,omitempty"`
	Odds       int       `json:"odds"`
	Stake      float64   `json:"stake"`
	ObservedAt time.Time `json:"observed_at"`
}

// Opportunity is a wager event judged large enough to follow, augmented with
// the undercut price and profit projections at the configured default stake.
type Opportunity struct {
	Event WagerEvent `json:"event"`

	UndercutOdds    int     `json:"undercut_odds"`
	UndercutClamped bool    `json:"undercut_clamped"`
	ProposedStake   float64 `json:"proposed_stake"`
	PotentialProfit float64 `json:"potential_profit"`
	PotentialReturn float64 `json:"potential_return"`
	ROIPercent      float64 `json:"roi_percent"`
	ValueScore      float64 `json:"value_score"`

	DetectedAt time.Time `json:"detected_at"`
}

// PlacementRecord is the outcome of one placement attempt, success or failure,
// live or dry run. Records are append-only; the ledger never mutates them.
type PlacementRecord struct {
	ExternalID    string    `json:"external_id"`
	LineID        string    `json:"line_id"`
	Side          string    `json:"side"`
	Odds          int       `json:"odds"`
	Stake         float64   `json:"stake"`
	StakeClamped  bool      `json:"stake_clamped"`
	Success       bool      `json:"success"`
	DryRun        bool      `json:"dry_run"`
	OrderID       string    `json:"order_id,omitempty"`
	FailureReason string    `json:"failure_reason,omitempty"`
	EventID       string    `json:"event_id,omitempty"`
	MarketID      string    `json:"market_id,omitempty"`
	PlacedAt      time.Time `json:"placed_at"`
}

// PlacementSummary reports the outcome of a batch placement.
type PlacementSummary struct {
	Total       int               `json:"total"`
	Successful  int               `json:"successful"`
	Failed      int               `json:"failed"`
	BetSizeUsed float64           `json:"bet_size_used"`
	Results     []PlacementRecord `json:"results"`
}

// PlacementStats is the aggregate view over the full ledger. It is recomputed
// on demand, never independently mutated.
type PlacementStats struct {
	TotalAttempts  int     `json:"total_attempts"`
	Successful     int     `json:"successful"`
	Failed         int     `json:"failed"`
	SuccessRate    float64 `json:"success_rate"`
	TotalStaked    float64 `json:"total_staked"`
	AverageStake   float64 `json:"average_stake"`
	DryRunAttempts int     `json:"dry_run_attempts"`
}
