package oddsmath

import "fmt"

// UndercutResult is the price a follower should offer to win queue priority
// over an observed bet on the same side.
type UndercutResult struct {
	Odds    int  `json:"odds"`
	Clamped bool `json:"clamped"`
}

// Metrics are the profit projections for a bet at given odds and stake.
type Metrics struct {
	Stake           float64 `json:"stake"`
	PotentialProfit float64 `json:"potential_profit"`
	PotentialReturn float64 `json:"potential_return"`
	ROIPercent      float64 `json:"roi_percent"`
}

// Undercut computes the odds to offer on the same side as an observed bet so
// that a matching counterparty strictly prefers the follower.
//
// Exchange queue economics: someone betting -138 is offering +138 to the
// market; to beat them we offer +140, which means taking -140 ourselves.
// Someone betting +120 is offering -120; to beat them we offer -119 by taking
// +119. Either way the follow price is ticks positions toward the lay side.
//
// ticks must be >= 1. The result always lies on the exchange grid; at the
// extreme end of the grid the price clamps to the last tick and the result is
// flagged rather than failing.
func Undercut(american, ticks int) (UndercutResult, error) {
	if ticks < 1 {
		return UndercutResult{}, fmt.Errorf("undercut ticks must be >= 1, got %d", ticks)
	}

	odds, clamped, err := NextTickTowardLay(american, ticks)
	if err != nil {
		return UndercutResult{}, err
	}

	return UndercutResult{Odds: odds, Clamped: clamped}, nil
}

// ProfitMetrics projects the outcome of a winning bet at the given price.
// Positive odds pay odds/100 per unit staked; negative odds pay 100/|odds|.
func ProfitMetrics(american int, stake float64) (Metrics, error) {
	if err := checkAmerican(american); err != nil {
		return Metrics{}, err
	}
	if stake < 0 {
		return Metrics{}, fmt.Errorf("stake must be >= 0, got %.2f", stake)
	}

	var profit float64
	if american > 0 {
		profit = stake * float64(american) / 100.0
	} else {
		profit = stake * 100.0 / float64(-american)
	}

	roi := 0.0
	if stake > 0 {
		roi = profit / stake * 100.0
	}

	return Metrics{
		Stake:           stake,
		PotentialProfit: profit,
		PotentialReturn: stake + profit,
		ROIPercent:      roi,
	}, nil
}
