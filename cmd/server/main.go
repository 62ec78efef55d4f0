package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/gatehouse/gatehouse/internal/access"
	"github.com/gatehouse/gatehouse/internal/api"
	"github.com/gatehouse/gatehouse/internal/auth"
	"github.com/gatehouse/gatehouse/internal/config"
	"github.com/gatehouse/gatehouse/internal/database"
	"github.com/gatehouse/gatehouse/internal/session"
)

func main() {
	// .env is optional; real environments set variables directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.LogLevel)

	ctx := context.Background()

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		slog.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	userRepo := auth.NewRepository(db.Pool())
	store := access.NewStore(db.Pool())
	sessionStore := session.NewStore(db.Pool())

	hasher := auth.NewBcryptHasher(cfg.BcryptCost)
	authService := auth.NewService(userRepo, hasher)

	codec := session.NewTokenCodec(cfg.SessionSecret, cfg.TokenIssuer, time.Duration(cfg.SessionTTLMinutes)*time.Minute)
	binding := session.NewManager(sessionStore, codec, userRepo)

	resolver := access.NewResolver(store)
	gate := access.NewGate(resolver)

	if _, err := authService.BootstrapSuperuser(ctx, cfg.SuperuserPhone); err != nil {
		slog.Error("failed to bootstrap superuser", "error", err)
		os.Exit(1)
	}

	if removed, err := sessionStore.DeleteExpired(ctx); err != nil {
		slog.Warn("failed to clean up expired sessions", "error", err)
	} else if removed > 0 {
		slog.Info("expired sessions removed", "count", removed)
	}

	router := api.NewRouter(api.RouterDeps{
		AuthService: authService,
		UserRepo:    userRepo,
		Store:       store,
		Resolver:    resolver,
		Gate:        gate,
		Binding:     binding,
		DBPinger:    db,
		Version:     cfg.Version,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting gatehouse server", "port", cfg.Port, "version", cfg.Version)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("shutting down server", "signal", sig.String())
	case err := <-serverErr:
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}

func setupLogger(level string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}
