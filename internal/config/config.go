package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config keeps runtime settings for the bot and both engine timers.
type Config struct {
	TelegramToken string
	DatabaseURL   string

	CompanyName    string
	CompanyAddress string
	BookingURL     string
	ReviewURL      string
	GroupURL       string

	SyncInterval     time.Duration
	DispatchInterval time.Duration
	ScrapeTimeout    time.Duration
}

// Load reads configuration from a local .env file (if present) and the
// environment, with sane defaults for everything but the bot token.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		TelegramToken:    strings.TrimSpace(os.Getenv("TELEGRAM_TOKEN")),
		DatabaseURL:      strings.TrimSpace(os.Getenv("DATABASE_URL")),
		CompanyName:      getEnv("COMPANY_NAME", "MeowNoMeow"),
		CompanyAddress:   getEnv("COMPANY_ADDRESS", "г.Томск, ул.Фрунзе 11Б"),
		BookingURL:       getEnv("BOOKING_URL", "https://dikidi.net/1993359"),
		ReviewURL:        getEnv("REVIEW_URL", ""),
		GroupURL:         getEnv("GROUP_URL", ""),
		SyncInterval:     getMinutes("SYNC_INTERVAL_MINUTES", 10),
		DispatchInterval: getMinutes("DISPATCH_INTERVAL_MINUTES", 1),
		ScrapeTimeout:    getSeconds("SCRAPE_TIMEOUT_SECONDS", 90),
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "salon_notify.db"
	}

	if cfg.TelegramToken == "" {
		return cfg, fmt.Errorf("TELEGRAM_TOKEN is required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getMinutes(key string, fallback int) time.Duration {
	return time.Duration(getInt(key, fallback)) * time.Minute
}

func getSeconds(key string, fallback int) time.Duration {
	return time.Duration(getInt(key, fallback)) * time.Second
}

func getInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
