package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/Vovarama1992/braille_bridge/internal/export"
	"github.com/Vovarama1992/braille_bridge/internal/session"
)

const DefaultBackendURL = "https://braillebridgebackend-9zof.onrender.com"

type Config struct {
	BackendURL  string
	Port        string
	SessionFile string
	ExportDir   string
	RateLimit   int

	S3 *export.S3Config

	TelegramToken  string
	TelegramChatID int64
}

// Load reads .env if present, then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		BackendURL:  getenv("BACKEND_URL", DefaultBackendURL),
		Port:        getenv("PORT", "8080"),
		SessionFile: os.Getenv("SESSION_FILE"),
		ExportDir:   getenv("EXPORT_DIR", "exports"),
		RateLimit:   100,
	}

	if cfg.SessionFile == "" {
		p, err := session.DefaultPath()
		if err != nil {
			return nil, fmt.Errorf("session path: %w", err)
		}
		cfg.SessionFile = p
	}

	if v := os.Getenv("RATE_LIMIT_PER_MIN"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("RATE_LIMIT_PER_MIN must be a positive integer, got %q", v)
		}
		cfg.RateLimit = n
	}

	if endpoint := os.Getenv("S3_ENDPOINT"); endpoint != "" {
		cfg.S3 = &export.S3Config{
			Endpoint:  endpoint,
			AccessKey: os.Getenv("S3_ACCESS_KEY"),
			SecretKey: os.Getenv("S3_SECRET_KEY"),
			Bucket:    os.Getenv("S3_BUCKET"),
			Region:    os.Getenv("S3_REGION"),
			Insecure:  os.Getenv("S3_INSECURE") == "true",
		}
		if cfg.S3.Bucket == "" {
			return nil, fmt.Errorf("S3_BUCKET is not set")
		}
	}

	cfg.TelegramToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	if cfg.TelegramToken != "" {
		id, err := strconv.ParseInt(os.Getenv("TELEGRAM_ADMIN_CHAT_ID"), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("TELEGRAM_ADMIN_CHAT_ID is not a chat id: %w", err)
		}
		cfg.TelegramChatID = id
	}

	return cfg, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
