package main

import (
	"context"
	"crypto/rand"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"fintrack/internal/app"
	"fintrack/internal/backend"
	"fintrack/internal/backend/memory"
	"fintrack/internal/backend/rest"
	"fintrack/internal/backend/sqlite"
	"fintrack/internal/config"
	"fintrack/internal/log"
	"fintrack/internal/repository"
	"fintrack/internal/web"
)

func main() {
	// A missing .env is fine; the environment may be set directly.
	_ = godotenv.Load()

	logger := log.New(log.Config{Level: log.LevelFromEnv()})
	log.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	var (
		auth  backend.Auth
		store backend.Store
	)
	switch cfg.DataBackend {
	case "rest":
		client := rest.New(cfg.BackendURL, cfg.BackendAPIKey, cfg.SiteURL)
		auth, store = client, client
		logger.Info("Using remote REST backend", "url", cfg.BackendURL)
	case "sqlite":
		s, err := sqlite.New(cfg.SQLiteDBPath, cfg.JWTSecret)
		if err != nil {
			logger.Error("Failed to open sqlite backend", "path", cfg.SQLiteDBPath, "error", err)
			os.Exit(1)
		}
		auth, store = s, s
		logger.Info("Using sqlite backend", "path", cfg.SQLiteDBPath)
	default:
		m := memory.New()
		auth, store = m, m
		logger.Warn("Using in-memory backend, data will not survive a restart")
	}

	repo := repository.New(auth, store, logger)
	defer func() {
		if err := repo.Close(); err != nil {
			logger.Warn("Closing backend failed", "error", err)
		}
	}()

	application := app.New(repo, logger, app.Options{
		InviteCode:   cfg.InviteCode,
		UpcomingDays: cfg.UpcomingDays,
	})

	srv, err := web.NewServer(web.Config{
		Addr:       ":" + cfg.Port,
		SessionKey: keyOrRandom(cfg.SessionKey, "SESSION_KEY", logger),
		CSRFKey:    keyOrRandom(cfg.CSRFKey, "CSRF_KEY", logger),
		DevMode:    cfg.DevMode,
	}, application, logger)
	if err != nil {
		logger.Error("Failed to build server", "error", err)
		os.Exit(1)
	}

	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 15 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting fintrack", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped")
}

// keyOrRandom returns the configured key bytes, or a random key when the
// variable is unset. Random keys mean cookies die with the process, so
// the gap is called out at startup.
func keyOrRandom(key, name string, logger *log.Logger) []byte {
	if key != "" {
		return []byte(key)
	}
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		logger.Error("Failed to generate a key", "variable", name, "error", err)
		os.Exit(1)
	}
	logger.Warn("Generated a throwaway key, sessions will not survive a restart", "variable", name)
	return b
}
