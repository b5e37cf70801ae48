// Package notifier pushes large-bet alerts to chat channels.
package notifier

import (
	"context"
	"fmt"
	"strings"

	"github.com/Apsteward8/market-scanner/pkg/models"
)

// Notifier delivers an opportunity alert to one destination.
type Notifier interface {
	SendAlert(ctx context.Context, opp models.Opportunity) error
}

// Multi fans an alert out to several notifiers; one destination failing does
// not stop the others.
type Multi []Notifier

func (m Multi) SendAlert(ctx context.Context, opp models.Opportunity) error {
	var errs []string
	for _, n := range m {
		if err := n.SendAlert(ctx, opp); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("notify failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// formatAlert renders the shared alert text.
func formatAlert(opp models.Opportunity) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("🚨 LARGE BET: %s %+d for $%.0f\n",
		opp.Event.Side, opp.Event.Odds, opp.Event.Stake))
	if opp.Event.EventName != "" {
		sb.WriteString(fmt.Sprintf("%s / %s\n", opp.Event.Sport, opp.Event.EventName))
	}
	sb.WriteString(fmt.Sprintf("Follow at %+d", opp.UndercutOdds))
	if opp.UndercutClamped {
		sb.WriteString(" (clamped at grid edge)")
	}
	sb.WriteString(fmt.Sprintf("\nProjected profit $%.2f at $%.2f stake (ROI %.0f%%), score %.1f",
		opp.PotentialProfit, opp.ProposedStake, opp.ROIPercent, opp.ValueScore))

	return sb.String()
}
