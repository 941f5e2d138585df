package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/erazemk/stvari/internal/api"
	"github.com/erazemk/stvari/internal/db"
	"github.com/erazemk/stvari/internal/store"
	"github.com/erazemk/stvari/internal/web"
)

func main() {
	cfg, err := parseFlags(os.Args[1:], os.Stdout)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	closeLog, err := setupLogger(cfg.logPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	if err := run(cfg); err != nil {
		slog.Error("fatal", "error", err)
		closeLog()
		os.Exit(1)
	}
}

func run(cfg *config) error {
	database, err := db.Open(cfg.dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	if err := db.Migrate(database); err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}
	slog.Info("database ready", "path", cfg.dbPath)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	password, err := ensureAdmin(ctx, database, cfg.adminUser)
	if err != nil {
		return err
	}
	if password != "" {
		printAdminCreated(cfg.dbPath, cfg.adminUser, password)
	}

	if cfg.rotateSecret {
		if _, err := store.RotateJWTSecret(ctx, database); err != nil {
			return fmt.Errorf("rotating JWT secret: %w", err)
		}
		slog.Info("JWT secret rotated, existing sessions are invalid")
	}

	jwtSecret, err := store.GetJWTSecret(ctx, database)
	if err != nil {
		return fmt.Errorf("getting JWT secret: %w", err)
	}

	vocabulary, err := loadVocabulary(cfg.vocabPath)
	if err != nil {
		return err
	}

	facetCache, err := openCache(ctx, cfg.redisAddr, cfg.redisPassword)
	if err != nil {
		return fmt.Errorf("opening facet cache: %w", err)
	}
	defer facetCache.Close()

	apiRouter := api.NewRouter(api.Config{
		DB:        database,
		JWTSecret: jwtSecret,
		Vocab:     vocabulary,
		Cache:     facetCache,
		Lang:      cfg.lang,
	})
	webRouter, err := web.NewRouter(web.Config{
		DB:        database,
		JWTSecret: jwtSecret,
		Vocab:     vocabulary,
		Cache:     facetCache,
		Lang:      cfg.lang,
	})
	if err != nil {
		return fmt.Errorf("setting up web router: %w", err)
	}

	// API routes take priority, web routes handle the rest.
	mux := http.NewServeMux()
	mux.Handle("/api/", apiRouter)
	mux.Handle("/metrics", apiRouter)
	mux.Handle("/", webRouter)

	server := &http.Server{
		Addr:              cfg.addr,
		Handler:           api.LoggingMiddleware(mux),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go purgeRevokedTokens(ctx, database, time.Hour)

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-quit
		slog.Info("shutdown signal received", "signal", sig.String())
		stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	slog.Info("server started", "addr", cfg.addr, "lang", cfg.lang.String())
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving: %w", err)
	}

	slog.Info("server stopped, closing database")
	return nil
}
