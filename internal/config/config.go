package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment.
type Config struct {
	DB struct {
		DSN string
	}
	API struct {
		Port     string
		BasePath string
	}
	Logging struct {
		Dir   string
		Level string
	}
	Kafka struct {
		Broker  string
		Topic   string
		GroupID string
	}
	Monitor struct {
		IntervalMinutes int
		StatsWindowDays int
	}
	Notify struct {
		QueueSize       int
		MaxWorkers      int
		PollSeconds     int
		TelegramToken   string
		TelegramChatIDs []int64
		TelegramRate    int
	}
}

// Load reads environment variables, applies defaults, and returns a Config.
func Load() (Config, error) {
	// Load .env if present
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("failed to load .env file: %w", err)
	}

	var cfg Config

	cfg.DB.DSN = os.Getenv("DB_DSN")

	cfg.API.Port = os.Getenv("API_PORT")
	cfg.API.BasePath = os.Getenv("API_BASE_PATH")

	cfg.Logging.Dir = os.Getenv("LOG_DIR")
	cfg.Logging.Level = os.Getenv("LOG_LEVEL")

	cfg.Kafka.Broker = os.Getenv("KAFKA_BROKER")
	cfg.Kafka.Topic = os.Getenv("KAFKA_TOPIC")
	cfg.Kafka.GroupID = os.Getenv("KAFKA_GROUP_ID")

	if m, err := strconv.Atoi(os.Getenv("MONITOR_INTERVAL_MINUTES")); err == nil {
		cfg.Monitor.IntervalMinutes = m
	}
	if d, err := strconv.Atoi(os.Getenv("STATS_WINDOW_DAYS")); err == nil {
		cfg.Monitor.StatsWindowDays = d
	}

	if qs, err := strconv.Atoi(os.Getenv("QUEUE_SIZE")); err == nil {
		cfg.Notify.QueueSize = qs
	}
	if mw, err := strconv.Atoi(os.Getenv("MAX_WORKERS")); err == nil {
		cfg.Notify.MaxWorkers = mw
	}
	if ps, err := strconv.Atoi(os.Getenv("NOTIFY_POLL_SECONDS")); err == nil {
		cfg.Notify.PollSeconds = ps
	}
	cfg.Notify.TelegramToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	for _, raw := range strings.Split(os.Getenv("TELEGRAM_CHAT_IDS"), ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("invalid TELEGRAM_CHAT_IDS entry %q: %w", raw, err)
		}
		cfg.Notify.TelegramChatIDs = append(cfg.Notify.TelegramChatIDs, id)
	}
	if r, err := strconv.Atoi(os.Getenv("TELEGRAM_RATE_LIMIT")); err == nil {
		cfg.Notify.TelegramRate = r
	}

	// Validate required settings
	missing := []string{}
	if cfg.DB.DSN == "" {
		missing = append(missing, "DB_DSN")
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required configurations: %v", missing)
	}

	// Apply defaults
	if cfg.API.Port == "" {
		cfg.API.Port = ":8080"
	}
	if !strings.HasPrefix(cfg.API.Port, ":") {
		cfg.API.Port = ":" + cfg.API.Port
	}
	if cfg.API.BasePath == "" {
		cfg.API.BasePath = "/api/v0"
	}
	if cfg.Logging.Dir == "" {
		cfg.Logging.Dir = "logs"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Monitor.StatsWindowDays == 0 {
		cfg.Monitor.StatsWindowDays = 30
	}
	if cfg.Notify.QueueSize == 0 {
		cfg.Notify.QueueSize = 500
	}
	if cfg.Notify.MaxWorkers == 0 {
		cfg.Notify.MaxWorkers = 10
	}
	if cfg.Notify.PollSeconds == 0 {
		cfg.Notify.PollSeconds = 15
	}
	if cfg.Notify.TelegramRate == 0 {
		cfg.Notify.TelegramRate = 20
	}

	return cfg, nil
}
