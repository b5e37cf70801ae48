// Package sequencer turns opportunities into placed follow bets.
//
// Placement is intentionally sequential: the exchange rate-limits wager
// submissions, and later orders in a batch may touch the same line as earlier
// ones and should observe their effect. Each order fully resolves, success or
// failure, before the next is submitted.
package sequencer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Apsteward8/market-scanner/internal/ledger"
	"github.com/Apsteward8/market-scanner/internal/metrics"
	"github.com/Apsteward8/market-scanner/pkg/models"
	"github.com/Apsteward8/market-scanner/pkg/oddsmath"
)

// OrderSubmitter is the transport that actually places wagers. Any returned
// error is treated as an order failure; the sequencer only keeps its message.
type OrderSubmitter interface {
	SubmitOrder(ctx context.Context, externalID, lineID string, odds int, stake float64) (string, error)
}

// PlacementGate can veto a live submission (rate limiting). Dry runs bypass
// the gate.
type PlacementGate interface {
	AllowPlacement(ctx context.Context) (bool, error)
}

// RecordPublisher forwards placement records to downstream consumers.
type RecordPublisher interface {
	PublishPlacement(ctx context.Context, rec models.PlacementRecord) error
}

// Order is a single wager the sequencer should place.
type Order struct {
	LineID   string
	Side     string
	Odds     int
	Stake    float64
	EventID  string
	MarketID string
}

// Sequencer places orders one at a time and records every attempt.
type Sequencer struct {
	submitter OrderSubmitter
	store     ledger.Ledger
	gate      PlacementGate   // optional
	publisher RecordPublisher // optional
	log       *zap.Logger
}

// New creates a sequencer. gate and publisher may be nil.
func New(submitter OrderSubmitter, store ledger.Ledger, gate PlacementGate, publisher RecordPublisher, log *zap.Logger) *Sequencer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Sequencer{
		submitter: submitter,
		store:     store,
		gate:      gate,
		publisher: publisher,
		log:       log,
	}
}

// PlaceSingle places one order under the given config snapshot. Invalid odds
// and bad configuration are rejected up front with no ledger entry; once an
// attempt is made, exactly one record is written whatever the outcome.
func (s *Sequencer) PlaceSingle(ctx context.Context, order Order, cfg models.StrategyConfig) (models.PlacementRecord, error) {
	if err := cfg.Validate(); err != nil {
		return models.PlacementRecord{}, fmt.Errorf("invalid strategy config: %w", err)
	}
	if order.LineID == "" {
		return models.PlacementRecord{}, fmt.Errorf("order is missing a line id")
	}
	if !oddsmath.IsValidOdds(order.Odds) {
		return models.PlacementRecord{}, fmt.Errorf("%w: %d is not a valid exchange price", oddsmath.ErrInvalidOdds, order.Odds)
	}

	return s.place(ctx, order, cfg), nil
}

// PlaceBatch places the opportunities strictly in the order given. One
// order's failure never aborts the batch; each failed attempt becomes a
// failed record and processing continues. delay is the inter-order pause,
// applied between live submissions only.
func (s *Sequencer) PlaceBatch(
	ctx context.Context,
	opps []models.Opportunity,
	cfg models.StrategyConfig,
	betSize float64,
	delay time.Duration,
) (models.PlacementSummary, error) {
	if err := cfg.Validate(); err != nil {
		return models.PlacementSummary{}, fmt.Errorf("invalid strategy config: %w", err)
	}

	if betSize <= 0 {
		betSize = cfg.DefaultBetSize
	}

	summary := models.PlacementSummary{BetSizeUsed: betSize}

	for i, opp := range opps {
		// Inter-order pause. Cooperative: cancellation ends the batch
		// without rolling back records already written.
		if i > 0 && !cfg.DryRun && delay > 0 {
			select {
			case <-ctx.Done():
				return summary, ctx.Err()
			case <-time.After(delay):
			}
		}

		order := Order{
			LineID:   opp.Event.LineID,
			Side:     opp.Event.Side,
			Odds:     opp.UndercutOdds,
			Stake:    betSize,
			EventID:  opp.Event.EventID,
			MarketID: opp.Event.MarketID,
		}

		var rec models.PlacementRecord
		if !oddsmath.IsValidOdds(order.Odds) || order.LineID == "" {
			// A malformed opportunity only fails itself.
			rec = models.PlacementRecord{
				ExternalID:    s.externalID(order),
				LineID:        order.LineID,
				Side:          order.Side,
				Odds:          order.Odds,
				Stake:         order.Stake,
				DryRun:        cfg.DryRun,
				Success:       false,
				FailureReason: fmt.Sprintf("invalid order: line=%q odds=%d", order.LineID, order.Odds),
				EventID:       order.EventID,
				MarketID:      order.MarketID,
				PlacedAt:      time.Now().UTC(),
			}
			s.persist(ctx, rec)
		} else {
			rec = s.place(ctx, order, cfg)
		}

		summary.Total++
		if rec.Success {
			summary.Successful++
		} else {
			summary.Failed++
		}
		summary.Results = append(summary.Results, rec)
	}

	s.log.Info("batch placement finished",
		zap.Int("total", summary.Total),
		zap.Int("successful", summary.Successful),
		zap.Int("failed", summary.Failed),
		zap.Float64("bet_size", summary.BetSizeUsed),
		zap.Bool("dry_run", cfg.DryRun),
	)
	return summary, nil
}

// place runs one attempt through the Pending → Submitting → Succeeded|Failed
// progression and writes exactly one record. Failure is terminal for the
// order; the sequencer never retries.
func (s *Sequencer) place(ctx context.Context, order Order, cfg models.StrategyConfig) models.PlacementRecord {
	stake := order.Stake
	clamped := false
	if stake > cfg.MaxBetSize {
		stake = cfg.MaxBetSize
		clamped = true
	}
	if stake < 0 {
		stake = 0
		clamped = true
	}

	rec := models.PlacementRecord{
		ExternalID:   s.externalID(order),
		LineID:       order.LineID,
		Side:         order.Side,
		Odds:         order.Odds,
		Stake:        stake,
		StakeClamped: clamped,
		DryRun:       cfg.DryRun,
		EventID:      order.EventID,
		MarketID:     order.MarketID,
	}

	switch {
	case cfg.DryRun:
		// Simulated success: no exchange call, no order id, but the record
		// flows through ledger and statistics exactly like a live one.
		rec.Success = true

	default:
		if allowed := s.allowedByGate(ctx); !allowed {
			rec.Success = false
			rec.FailureReason = "placement rate limit exceeded"
			break
		}

		start := time.Now()
		orderID, err := s.submitter.SubmitOrder(ctx, rec.ExternalID, order.LineID, order.Odds, stake)
		metrics.PlacementLatency.Observe(time.Since(start).Seconds())

		if err != nil {
			rec.Success = false
			rec.FailureReason = err.Error()
		} else {
			rec.Success = true
			rec.OrderID = orderID
		}
	}

	rec.PlacedAt = time.Now().UTC()
	s.persist(ctx, rec)

	if rec.Success {
		s.log.Info("follow bet placed",
			zap.String("external_id", rec.ExternalID),
			zap.String("line_id", rec.LineID),
			zap.Int("odds", rec.Odds),
			zap.Float64("stake", rec.Stake),
			zap.Bool("dry_run", rec.DryRun),
		)
	} else {
		s.log.Warn("follow bet failed",
			zap.String("external_id", rec.ExternalID),
			zap.String("line_id", rec.LineID),
			zap.String("reason", rec.FailureReason),
		)
	}
	return rec
}

func (s *Sequencer) allowedByGate(ctx context.Context) bool {
	if s.gate == nil {
		return true
	}
	allowed, err := s.gate.AllowPlacement(ctx)
	if err != nil {
		// A broken gate should not silently stop live betting; log and pass.
		s.log.Warn("placement gate error", zap.Error(err))
		return true
	}
	return allowed
}

// persist writes the record to the ledger and forwards it downstream. The
// ledger is the audit trail, so a failed append is loud.
func (s *Sequencer) persist(ctx context.Context, rec models.PlacementRecord) {
	if err := s.store.Record(ctx, rec); err != nil {
		s.log.Error("failed to record placement", zap.String("external_id", rec.ExternalID), zap.Error(err))
	}

	metrics.PlacementsTotal.WithLabelValues(
		metrics.PlacementStatus(rec.Success),
		metrics.PlacementMode(rec.DryRun),
	).Inc()

	if s.publisher != nil {
		if err := s.publisher.PublishPlacement(ctx, rec); err != nil {
			s.log.Warn("failed to publish placement", zap.String("external_id", rec.ExternalID), zap.Error(err))
		}
	}
}

// externalID builds the idempotency key sent to the exchange:
// event-market-nonce, "manual" when the bet has no originating event.
func (s *Sequencer) externalID(order Order) string {
	event := order.EventID
	if event == "" {
		event = "manual"
	}
	market := order.MarketID
	if market == "" {
		market = "0"
	}
	return fmt.Sprintf("%s-%s-%s", event, market, uuid.NewString())
}
