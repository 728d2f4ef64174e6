package main

import (
	"log"
	"net/http"
	"time"

	"github.com/Vovarama1992/go-utils/logger"

	"github.com/Vovarama1992/braille_bridge/internal/auth"
	"github.com/Vovarama1992/braille_bridge/internal/backend"
	"github.com/Vovarama1992/braille_bridge/internal/config"
	"github.com/Vovarama1992/braille_bridge/internal/delivery"
	"github.com/Vovarama1992/braille_bridge/internal/error_notificator"
	"github.com/Vovarama1992/braille_bridge/internal/files"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"go.uber.org/zap"
)

func main() {

	// =========================================================================
	// ENV
	// =========================================================================

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	baseLogger, _ := zap.NewProduction()
	defer baseLogger.Sync()
	zl := logger.NewZapLogger(baseLogger.Sugar())

	// =========================================================================
	// INFRASTRUCTURE
	// =========================================================================

	client := backend.NewClient(cfg.BackendURL, &http.Client{Timeout: 2 * time.Minute}, zl)

	// =========================================================================
	// ERROR NOTIFICATION
	// =========================================================================

	var errInfra error_notificator.Notificator
	if cfg.TelegramToken != "" {
		tg, err := error_notificator.NewTelegramInfra(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			log.Fatalf("failed to init telegram notifier: %v", err)
		}
		errInfra = tg
	}
	errService := error_notificator.NewService(errInfra)

	// =========================================================================
	// DOMAIN SERVICES
	// =========================================================================

	// each request carries its own token; nothing is persisted server side
	authService := auth.NewService(client, nil, zl)
	filesService := files.NewService(client, nil, zl)

	// =========================================================================
	// HTTP ROUTER
	// =========================================================================

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))
	r.Use(httprate.LimitByIP(cfg.RateLimit, time.Minute))

	delivery.RegisterRoutes(
		r,
		delivery.NewAuthHandler(authService),
		delivery.NewConvertHandler(client, errService, zl),
		delivery.NewFilesHandler(filesService),
	)

	// =========================================================================
	// START SERVER
	// =========================================================================

	addr := ":" + cfg.Port
	zl.Log(logger.LogEntry{
		Level:   "info",
		Message: "listening at " + addr + ", backend " + client.BaseURL(),
		Service: "braille_bridge",
	})

	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
