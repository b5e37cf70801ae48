package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Apsteward8/market-scanner/internal/config"
	"github.com/Apsteward8/market-scanner/internal/dedup"
	"github.com/Apsteward8/market-scanner/internal/engine"
	"github.com/Apsteward8/market-scanner/internal/exchange"
	"github.com/Apsteward8/market-scanner/internal/feed"
	"github.com/Apsteward8/market-scanner/internal/handlers"
	"github.com/Apsteward8/market-scanner/internal/ledger"
	"github.com/Apsteward8/market-scanner/internal/logger"
	"github.com/Apsteward8/market-scanner/internal/metrics"
	"github.com/Apsteward8/market-scanner/internal/notifier"
	"github.com/Apsteward8/market-scanner/internal/producer"
	"github.com/Apsteward8/market-scanner/internal/ratelimit"
	"github.com/Apsteward8/market-scanner/internal/sequencer"
)

func main() {
	// Load configuration
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		fmt.Printf("✗ Config error: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New("market-scanner", cfg.Env)
	if err != nil {
		fmt.Printf("✗ Logger error: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	strategy, err := config.NewStrategyStore(cfg.Strategy)
	if err != nil {
		log.Fatal("invalid strategy settings", zap.Error(err))
	}

	// Placement ledger: Postgres when configured, in-memory otherwise.
	var store ledger.Ledger
	var db *sql.DB
	if cfg.PostgresDSN != "" {
		db, err = sql.Open("postgres", cfg.PostgresDSN)
		if err != nil {
			log.Fatal("failed to open postgres", zap.Error(err))
		}
		defer db.Close()

		pg := ledger.NewPostgres(db)
		if err := pg.Migrate(ctx); err != nil {
			log.Fatal("ledger migration failed", zap.Error(err))
		}
		store = pg
		log.Info("using postgres ledger")
	} else {
		store = ledger.NewMemory()
		log.Info("using in-memory ledger")
	}

	// Redis backs alert dedup and the placement rate limit.
	var gate sequencer.PlacementGate
	var dedupSvc engine.Deduplicator
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer redisClient.Close()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatal("redis unreachable", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		}

		window := time.Duration(cfg.DedupWindowMinutes) * time.Minute
		dedupSvc = dedup.NewDeduplicator(redisClient, window)
		gate = ratelimit.NewTokenBucket(ctx, redisClient, cfg.PlacementsPerMin, time.Minute)
		log.Info("redis connected",
			zap.Duration("dedup_window", window),
			zap.Int("placements_per_min", cfg.PlacementsPerMin))
	}

	var publisher sequencer.RecordPublisher
	if cfg.KafkaBrokers != "" {
		kafka := producer.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer kafka.Close()
		publisher = kafka
		log.Info("kafka producer ready", zap.String("topic", cfg.KafkaTopic))
	}

	var notifiers notifier.Multi
	if cfg.SlackWebhookURL != "" {
		notifiers = append(notifiers, notifier.NewSlackNotifier(cfg.SlackWebhookURL))
	}
	if cfg.TelegramBotToken != "" {
		tg, err := notifier.NewTelegramNotifier(cfg.TelegramBotToken, cfg.TelegramChatID)
		if err != nil {
			log.Error("telegram notifier unavailable", zap.Error(err))
		} else {
			notifiers = append(notifiers, tg)
		}
	}
	var alerter engine.Notifier
	if len(notifiers) > 0 {
		alerter = notifiers
	}

	client := exchange.NewClient(cfg.Exchange.BaseURL, cfg.Exchange.AccessKey, cfg.Exchange.SecretKey, nil)
	seq := sequencer.New(client, store, gate, publisher, log)

	// Live feed and monitoring engine.
	var source handlers.OpportunitySource
	if cfg.Exchange.FeedWSURL != "" {
		ws := feed.NewWSClient(cfg.Exchange.FeedWSURL, log)
		go ws.Start(ctx)

		eng := engine.New(ws.Events(), strategy.Snapshot, dedupSvc, alerter, seq, cfg.AutoFollow, log)
		go func() {
			if err := eng.Run(ctx); err != nil && ctx.Err() == nil {
				log.Error("engine stopped", zap.Error(err))
			}
		}()
		source = eng
		log.Info("feed monitoring enabled",
			zap.String("url", cfg.Exchange.FeedWSURL),
			zap.Bool("auto_follow", cfg.AutoFollow))
	}

	handler := handlers.NewHandler(seq, store, strategy, source, log)

	// Create router
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:3001"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	handler.Routes(r)

	metricsSrv := metrics.StartServer(cfg.MetricsPort, func(ctx context.Context) error {
		if db != nil {
			if err := db.PingContext(ctx); err != nil {
				return fmt.Errorf("postgres: %w", err)
			}
		}
		if redisClient != nil {
			if err := redisClient.Ping(ctx).Err(); err != nil {
				return fmt.Errorf("redis: %w", err)
			}
		}
		return nil
	})

	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("market scanner started",
			zap.String("port", cfg.HTTPPort),
			zap.String("metrics_port", cfg.MetricsPort),
			zap.Bool("dry_run", cfg.Strategy.DryRun),
			zap.Float64("min_stake_threshold", cfg.Strategy.MinStakeThreshold))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", zap.Error(err))
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("metrics shutdown error", zap.Error(err))
	}

	log.Info("market scanner stopped")
}
