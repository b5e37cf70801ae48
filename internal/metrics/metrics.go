// Package metrics holds the service's Prometheus collectors and the small
// HTTP server that exposes them.
package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// FeedEventsTotal counts wager events received from the exchange feed.
	FeedEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scanner_feed_events_total",
		Help: "Wager events received from the exchange feed",
	})

	// OpportunitiesTotal counts classified follow opportunities.
	OpportunitiesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scanner_opportunities_total",
		Help: "Wager events classified as follow opportunities",
	})

	// PlacementsTotal counts placement attempts by outcome and mode.
	PlacementsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scanner_placements_total",
		Help: "Placement attempts by outcome and mode",
	}, []string{"status", "mode"})

	// PlacementLatency observes live submission latency.
	PlacementLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "scanner_placement_latency_seconds",
		Help:    "Latency of live order submissions",
		Buckets: prometheus.DefBuckets,
	})
)

// PlacementMode returns the metrics label for a placement mode.
func PlacementMode(dryRun bool) string {
	if dryRun {
		return "dry_run"
	}
	return "live"
}

// PlacementStatus returns the metrics label for a placement outcome.
func PlacementStatus(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}

// HealthFunc probes a dependency for the /healthz endpoint.
type HealthFunc func(ctx context.Context) error

// StartServer runs a lightweight HTTP server for /metrics and /healthz on its
// own port, so scrapes never contend with the public API.
func StartServer(port string, healthFn HealthFunc) *http.Server {
	mux := http.NewServeMux()

	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()

		if healthFn != nil {
			if err := healthFn(ctx); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(fmt.Sprintf("unhealthy: %v", err)))
				return
			}
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: mux,
	}

	go func() {
		_ = srv.ListenAndServe()
	}()

	return srv
}
