// Package classifier turns observed wager events into betting opportunities.
//
// Classification is a pure function over (event, config snapshot): no state is
// carried between calls, so a settings change simply applies to the next
// event.
package classifier

import (
	"fmt"
	"time"

	"github.com/Apsteward8/market-scanner/pkg/models"
	"github.com/Apsteward8/market-scanner/pkg/oddsmath"
)

// Classify decides whether an observed wager is worth following. It returns
// (nil, nil) for events rejected by the stake threshold or sport allow-list;
// that is a normal outcome, not an error. Errors are reserved for malformed
// events and bad configuration.
func Classify(event models.WagerEvent, cfg models.StrategyConfig) (*models.Opportunity, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid strategy config: %w", err)
	}
	if event.Stake < 0 {
		return nil, fmt.Errorf("wager event stake must be >= 0, got %.2f", event.Stake)
	}
	if _, err := oddsmath.ImpliedProbability(event.Odds); err != nil {
		return nil, fmt.Errorf("wager event odds: %w", err)
	}

	// Threshold and allow-list rejections are silent by design: the feed
	// delivers every bet on the exchange and almost all of them are small.
	if event.Stake < cfg.MinStakeThreshold {
		return nil, nil
	}
	if !cfg.SportAllowed(event.Sport) {
		return nil, nil
	}

	undercut, err := oddsmath.Undercut(event.Odds, cfg.UndercutTicks)
	if err != nil {
		return nil, fmt.Errorf("undercut %d: %w", event.Odds, err)
	}

	metrics, err := oddsmath.ProfitMetrics(undercut.Odds, cfg.DefaultBetSize)
	if err != nil {
		return nil, fmt.Errorf("profit metrics at %d: %w", undercut.Odds, err)
	}

	score, err := valueScore(event, undercut.Odds)
	if err != nil {
		return nil, err
	}

	return &models.Opportunity{
		Event:           event,
		UndercutOdds:    undercut.Odds,
		UndercutClamped: undercut.Clamped,
		ProposedStake:   cfg.DefaultBetSize,
		PotentialProfit: metrics.PotentialProfit,
		PotentialReturn: metrics.PotentialReturn,
		ROIPercent:      metrics.ROIPercent,
		ValueScore:      score,
		DetectedAt:      time.Now().UTC(),
	}, nil
}

// valueScore ranks opportunities for display. Larger original stakes score
// higher, and so do undercut prices closer to the original, since a smaller
// price concession buys the same queue priority. The score is not a filter.
func valueScore(event models.WagerEvent, undercutOdds int) (float64, error) {
	base := event.Stake / 1000.0

	origProb, err := oddsmath.ImpliedProbability(event.Odds)
	if err != nil {
		return 0, err
	}
	ourProb, err := oddsmath.ImpliedProbability(undercutOdds)
	if err != nil {
		return 0, err
	}

	// The undercut always sits at a higher implied probability than the
	// original, so the ratio is in (0,1] and approaches 1 as the concession
	// shrinks.
	return base * (origProb / ourProb), nil
}
