// Command server runs the noteful HTTP API.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/kuitang/noteful/internal/api"
	"github.com/kuitang/noteful/internal/auth"
	"github.com/kuitang/noteful/internal/config"
	"github.com/kuitang/noteful/internal/notes"
	"github.com/kuitang/noteful/internal/obs"
	"github.com/kuitang/noteful/internal/ratelimit"
	"github.com/kuitang/noteful/internal/store"
)

func main() {
	obs.Init()
	log := obs.Pkg("main")

	cfg, err := config.Load()
	if err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	cfg.PrintStartupSummary()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mongoStore, err := store.ConnectMongo(ctx, cfg.MongoURI, cfg.DatabaseName)
	if err != nil {
		log.Error("mongo connection failed", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := mongoStore.Close(context.Background()); err != nil {
			log.Error("mongo disconnect failed", "error", err)
		}
	}()

	if err := mongoStore.EnsureIndexes(ctx); err != nil {
		log.Error("index creation failed", "error", err)
		os.Exit(1)
	}

	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTExpiry)
	authService := auth.NewService(mongoStore, tokens)
	notesService := notes.NewService(mongoStore)

	limiter := ratelimit.New(cfg.RateLimit)
	defer limiter.Stop()

	handler := api.NewHandler(authService, notesService)
	router := handler.Routes(auth.NewMiddleware(tokens), ratelimit.Middleware(limiter))

	server := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", cfg.ListenAddr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("shutdown failed", "error", err)
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "error", err)
			os.Exit(1)
		}
	}
}
