// Package engine wires the wager feed to classification, alerting, and
// optional automatic follow betting.
package engine

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/Apsteward8/market-scanner/internal/classifier"
	"github.com/Apsteward8/market-scanner/internal/metrics"
	"github.com/Apsteward8/market-scanner/internal/sequencer"
	"github.com/Apsteward8/market-scanner/pkg/models"
)

// maxCachedOpportunities bounds the in-memory list served by the API.
const maxCachedOpportunities = 100

// ConfigProvider hands out the current strategy snapshot. The engine calls it
// once per event, so settings changes apply to the next event, never
// retroactively.
type ConfigProvider func() models.StrategyConfig

// Deduplicator suppresses repeat alerts for re-delivered wagers.
type Deduplicator interface {
	ShouldAlert(ctx context.Context, opp models.Opportunity) (bool, error)
}

// Notifier delivers opportunity alerts.
type Notifier interface {
	SendAlert(ctx context.Context, opp models.Opportunity) error
}

// Engine consumes wager events and maintains the live opportunity set.
type Engine struct {
	events     <-chan models.WagerEvent
	configFn   ConfigProvider
	dedup      Deduplicator         // optional
	notifier   Notifier             // optional
	seq        *sequencer.Sequencer // optional, used when autoFollow is set
	autoFollow bool
	log        *zap.Logger

	mu            sync.RWMutex
	opportunities []models.Opportunity // most recent first
}

// New creates an engine. dedup, notifier and seq may be nil.
func New(
	events <-chan models.WagerEvent,
	configFn ConfigProvider,
	dedup Deduplicator,
	notifier Notifier,
	seq *sequencer.Sequencer,
	autoFollow bool,
	log *zap.Logger,
) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		events:     events,
		configFn:   configFn,
		dedup:      dedup,
		notifier:   notifier,
		seq:        seq,
		autoFollow: autoFollow,
		log:        log,
	}
}

// Run processes feed events until the context ends or the feed closes.
func (e *Engine) Run(ctx context.Context) error {
	e.log.Info("monitoring engine started", zap.Bool("auto_follow", e.autoFollow))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-e.events:
			if !ok {
				e.log.Info("feed channel closed, engine stopping")
				return nil
			}
			e.processEvent(ctx, event)
		}
	}
}

// processEvent classifies one event against the current config snapshot. A
// bad event only fails itself.
func (e *Engine) processEvent(ctx context.Context, event models.WagerEvent) {
	cfg := e.configFn()

	opp, err := classifier.Classify(event, cfg)
	if err != nil {
		e.log.Warn("classification failed",
			zap.String("event_id", event.EventID),
			zap.Int("odds", event.Odds),
			zap.Error(err),
		)
		return
	}
	if opp == nil {
		return
	}

	metrics.OpportunitiesTotal.Inc()

	fresh := true
	if e.dedup != nil {
		fresh, err = e.dedup.ShouldAlert(ctx, *opp)
		if err != nil {
			e.log.Warn("dedup check failed", zap.Error(err))
			fresh = true
		}
	}
	if !fresh {
		return
	}

	e.cache(*opp)

	e.log.Info("follow opportunity detected",
		zap.String("event_id", event.EventID),
		zap.String("side", event.Side),
		zap.Int("odds", event.Odds),
		zap.Float64("stake", event.Stake),
		zap.Int("undercut_odds", opp.UndercutOdds),
	)

	if e.notifier != nil {
		if err := e.notifier.SendAlert(ctx, *opp); err != nil {
			e.log.Warn("alert delivery failed", zap.Error(err))
		}
	}

	if e.autoFollow && e.seq != nil {
		order := sequencer.Order{
			LineID:   opp.Event.LineID,
			Side:     opp.Event.Side,
			Odds:     opp.UndercutOdds,
			Stake:    cfg.DefaultBetSize,
			EventID:  opp.Event.EventID,
			MarketID: opp.Event.MarketID,
		}
		if _, err := e.seq.PlaceSingle(ctx, order, cfg); err != nil {
			e.log.Warn("auto follow rejected", zap.Error(err))
		}
	}
}

// Opportunities returns recent opportunities, most recent first.
func (e *Engine) Opportunities() []models.Opportunity {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]models.Opportunity, len(e.opportunities))
	copy(out, e.opportunities)
	return out
}

func (e *Engine) cache(opp models.Opportunity) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.opportunities = append([]models.Opportunity{opp}, e.opportunities...)
	if len(e.opportunities) > maxCachedOpportunities {
		e.opportunities = e.opportunities[:maxCachedOpportunities]
	}
}
