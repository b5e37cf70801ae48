package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Apsteward8/market-scanner/internal/classifier"
	"github.com/Apsteward8/market-scanner/internal/config"
	"github.com/Apsteward8/market-scanner/internal/ledger"
	"github.com/Apsteward8/market-scanner/internal/sequencer"
	"github.com/Apsteward8/market-scanner/pkg/models"
)

// OpportunitySource exposes the most recently detected opportunities.
type OpportunitySource interface {
	Opportunities() []models.Opportunity
}

// Handler contains dependencies for HTTP handlers
type Handler struct {
	seq      *sequencer.Sequencer
	store    ledger.Ledger
	strategy *config.StrategyStore
	source   OpportunitySource
	log      *zap.Logger
}

// NewHandler creates a new handler
func NewHandler(seq *sequencer.Sequencer, store ledger.Ledger, strategy *config.StrategyStore, source OpportunitySource, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		seq:      seq,
		store:    store,
		strategy: strategy,
		source:   source,
		log:      log,
	}
}

// Routes mounts all handler routes on a chi router.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/health", h.HealthCheck)
	r.Post("/classify", h.ClassifyEvent)
	r.Get("/opportunities", h.ListOpportunities)
	r.Post("/bets/place", h.PlaceBet)
	r.Post("/bets/follow", h.FollowOpportunities)
	r.Get("/bets/history", h.BetHistory)
	r.Get("/bets/stats", h.BetStats)
	r.Delete("/bets/history", h.ClearHistory)
	r.Get("/settings", h.GetSettings)
	r.Put("/settings", h.UpdateSettings)
}

// HealthCheck returns service health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "market-scanner",
	})
}

// ClassifyEvent runs a single wager event through the classifier using the
// current strategy settings and returns the opportunity, or null when the
// event does not qualify.
func (h *Handler) ClassifyEvent(w http.ResponseWriter, r *http.Request) {
	var event models.WagerEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}

	opp, err := classifier.Classify(event, h.strategy.Snapshot())
	if err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("classification error: %v", err))
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"opportunity": opp,
		"qualified":   opp != nil,
	})
}

// ListOpportunities returns the most recently detected opportunities from the
// live feed, newest first.
func (h *Handler) ListOpportunities(w http.ResponseWriter, r *http.Request) {
	if h.source == nil {
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"opportunities": []models.Opportunity{},
			"count":         0,
		})
		return
	}

	opps := h.source.Opportunities()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"opportunities": opps,
		"count":         len(opps),
	})
}

// PlaceBetRequest is the body for a single manual placement.
type PlaceBetRequest struct {
	LineID   string  `json:"line_id"`
	Side     string  `json:"side"`
	Odds     int     `json:"odds"`
	Stake    float64 `json:"stake"`
	EventID  string  `json:"event_id"`
	MarketID string  `json:"market_id"`
}

// PlaceBet places a single order at the given line and odds.
func (h *Handler) PlaceBet(w http.ResponseWriter, r *http.Request) {
	var req PlaceBetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}

	cfg := h.strategy.Snapshot()
	if req.Stake <= 0 {
		req.Stake = cfg.DefaultBetSize
	}

	rec, err := h.seq.PlaceSingle(r.Context(), sequencer.Order{
		LineID:   req.LineID,
		Side:     req.Side,
		Odds:     req.Odds,
		Stake:    req.Stake,
		EventID:  req.EventID,
		MarketID: req.MarketID,
	}, cfg)
	if err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("placement rejected: %v", err))
		return
	}

	status := http.StatusOK
	if !rec.Success {
		status = http.StatusBadGateway
	}
	respondJSON(w, status, rec)
}

// FollowRequest is the body for a batch placement run.
type FollowRequest struct {
	Opportunities []models.Opportunity `json:"opportunities"`
	BetSize       float64              `json:"bet_size,omitempty"`
	DelaySeconds  float64              `json:"delay_seconds,omitempty"`
}

// FollowOpportunities places one order per opportunity, sequentially, using
// the current strategy settings. A failed order does not stop the batch.
func (h *Handler) FollowOpportunities(w http.ResponseWriter, r *http.Request) {
	var req FollowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}
	if len(req.Opportunities) == 0 {
		respondError(w, http.StatusBadRequest, "no opportunities provided")
		return
	}
	if req.DelaySeconds < 0 {
		respondError(w, http.StatusBadRequest, "delay_seconds must not be negative")
		return
	}

	delay := secondsToDuration(req.DelaySeconds)
	summary, err := h.seq.PlaceBatch(r.Context(), req.Opportunities, h.strategy.Snapshot(), req.BetSize, delay)
	if err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("batch rejected: %v", err))
		return
	}

	h.log.Info("batch placement finished",
		zap.Int("total", summary.Total),
		zap.Int("successful", summary.Successful),
		zap.Int("failed", summary.Failed))

	respondJSON(w, http.StatusOK, summary)
}

// BetHistory returns placement records, most recent first. Supports
// ?limit=N and ?status=successful|failed.
func (h *Handler) BetHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			respondError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	status, ok := parseStatus(r.URL.Query().Get("status"))
	if !ok {
		respondError(w, http.StatusBadRequest, "status must be successful or failed")
		return
	}

	records, err := h.store.History(r.Context(), limit, status)
	if err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("history lookup failed: %v", err))
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"records": records,
		"count":   len(records),
	})
}

// BetStats returns aggregate placement statistics.
func (h *Handler) BetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.Stats(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("stats lookup failed: %v", err))
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

// ClearHistory deletes all placement records. Destructive, so it requires
// ?confirm=true.
func (h *Handler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("confirm") != "true" {
		respondError(w, http.StatusBadRequest, "pass confirm=true to clear placement history")
		return
	}

	if err := h.store.Clear(r.Context()); err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("clear failed: %v", err))
		return
	}

	h.log.Warn("placement history cleared")
	respondJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

// GetSettings returns the current strategy settings.
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"settings": h.strategy.Snapshot(),
		"version":  h.strategy.Version(),
	})
}

// UpdateSettings replaces the strategy settings. Invalid settings are
// rejected and the previous ones stay in effect.
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var next models.StrategyConfig
	if err := json.NewDecoder(r.Body).Decode(&next); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}

	if err := h.strategy.Update(next); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid settings: %v", err))
		return
	}

	h.log.Info("strategy settings updated", zap.Int("version", h.strategy.Version()))
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"settings": h.strategy.Snapshot(),
		"version":  h.strategy.Version(),
	})
}

func parseStatus(raw string) (ledger.StatusFilter, bool) {
	switch raw {
	case "":
		return ledger.StatusAll, true
	case "successful":
		return ledger.StatusSuccessful, true
	case "failed":
		return ledger.StatusFailed, true
	default:
		return ledger.StatusAll, false
	}
}

func secondsToDuration(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
