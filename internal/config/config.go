// Package config loads service configuration from a YAML file with
// environment-variable overrides, and owns the mutable strategy settings.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/Apsteward8/market-scanner/pkg/models"
)

// Config is the full service configuration.
type Config struct {
	Env         string `yaml:"env"`          // "local", "dev", "prod"
	HTTPPort    string `yaml:"http_port"`    // public API
	MetricsPort string `yaml:"metrics_port"` // /metrics and /healthz

	Exchange ExchangeConfig `yaml:"exchange"`

	PostgresDSN string `yaml:"postgres_dsn"` // empty: in-memory ledger
	RedisAddr   string `yaml:"redis_addr"`   // empty: no dedup/rate limiting

	KafkaBrokers string `yaml:"kafka_brokers"` // empty: no placement publishing
	KafkaTopic   string `yaml:"kafka_topic"`

	SlackWebhookURL  string `yaml:"slack_webhook_url"`
	TelegramBotToken string `yaml:"telegram_bot_token"`
	TelegramChatID   int64  `yaml:"telegram_chat_id"`

	AutoFollow         bool `yaml:"auto_follow"`
	PlacementsPerMin   int  `yaml:"placements_per_min"`
	DedupWindowMinutes int  `yaml:"dedup_window_minutes"`

	Strategy models.StrategyConfig `yaml:"strategy"`
}

// Load reads the YAML file at path (if it exists) and applies environment
// overrides on top. A missing file is fine; env vars alone can configure the
// service.
func Load(path string) (Config, error) {
	cfg := Config{
		Env:                "local",
		HTTPPort:           "8086",
		MetricsPort:        "9106",
		KafkaTopic:         "bets.placed",
		PlacementsPerMin:   10,
		DedupWindowMinutes: 30,
		Strategy:           models.DefaultStrategyConfig(),
	}
	cfg.Exchange = ExchangeConfig{
		BaseURL: "https://api-ss-sandbox.betprophet.co",
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("failed to parse config file: %w", err)
			}
		} else if !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Strategy.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid strategy settings: %w", err)
	}
	return cfg, nil
}

// ExchangeConfig points the order client and wager feed at the exchange.
type ExchangeConfig struct {
	BaseURL   string `yaml:"base_url"`
	FeedWSURL string `yaml:"feed_ws_url"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
}

func (c *Config) applyEnv() {
	c.Env = getEnv("ENV", c.Env)
	c.HTTPPort = getEnv("HTTP_PORT", c.HTTPPort)
	c.MetricsPort = getEnv("METRICS_PORT", c.MetricsPort)

	c.Exchange.BaseURL = getEnv("EXCHANGE_BASE_URL", c.Exchange.BaseURL)
	c.Exchange.FeedWSURL = getEnv("EXCHANGE_FEED_WS_URL", c.Exchange.FeedWSURL)
	c.Exchange.AccessKey = getEnv("EXCHANGE_ACCESS_KEY", c.Exchange.AccessKey)
	c.Exchange.SecretKey = getEnv("EXCHANGE_SECRET_KEY", c.Exchange.SecretKey)

	c.PostgresDSN = getEnv("POSTGRES_DSN", c.PostgresDSN)
	c.RedisAddr = getEnv("REDIS_ADDR", c.RedisAddr)
	c.KafkaBrokers = getEnv("KAFKA_BROKERS", c.KafkaBrokers)
	c.KafkaTopic = getEnv("KAFKA_TOPIC_BETS", c.KafkaTopic)

	c.SlackWebhookURL = getEnv("SLACK_WEBHOOK_URL", c.SlackWebhookURL)
	c.TelegramBotToken = getEnv("TELEGRAM_BOT_TOKEN", c.TelegramBotToken)
	c.TelegramChatID = getEnvInt64("TELEGRAM_CHAT_ID", c.TelegramChatID)

	c.AutoFollow = getEnvBool("AUTO_FOLLOW", c.AutoFollow)
	c.PlacementsPerMin = getEnvInt("PLACEMENTS_PER_MIN", c.PlacementsPerMin)

	c.Strategy.MinStakeThreshold = getEnvFloat("MIN_STAKE_THRESHOLD", c.Strategy.MinStakeThreshold)
	c.Strategy.MaxBetSize = getEnvFloat("MAX_BET_SIZE", c.Strategy.MaxBetSize)
	c.Strategy.DefaultBetSize = getEnvFloat("DEFAULT_BET_SIZE", c.Strategy.DefaultBetSize)
	c.Strategy.UndercutTicks = getEnvInt("UNDERCUT_TICKS", c.Strategy.UndercutTicks)
	c.Strategy.DryRun = getEnvBool("DRY_RUN", c.Strategy.DryRun)
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return def
}
