package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/tahsin/salamilink/internal/auth"
	"github.com/tahsin/salamilink/internal/config"
	"github.com/tahsin/salamilink/internal/metrics"
	"github.com/tahsin/salamilink/internal/service"
	"github.com/tahsin/salamilink/internal/sharelink"
	"github.com/tahsin/salamilink/internal/storage/sqlite"
	httptransport "github.com/tahsin/salamilink/internal/transport/http"
	"github.com/tahsin/salamilink/pkg/logging"
)

// main wires dependencies and keeps the server lifecycle small. Business
// logic lives in the internal service packages.
func main() {
	logging.Setup()
	logger := slog.Default()

	cfg := config.FromEnv()

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		logger.Error("failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	logger.Info("storage initialized", "database", cfg.DBPath)

	m := metrics.New()
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
	authenticator := auth.NewPasswordAuthenticator(store)

	invoices := service.NewInvoiceService(store, m, logger)
	identities := service.NewIdentityService(store, authenticator, jwtManager, m, logger)
	links := sharelink.NewBuilder(cfg.BaseURL)

	handler := httptransport.NewHandler(invoices, identities, store, links, logger)
	router := httptransport.NewRouter(handler, jwtManager, m, logger)

	srv := &http.Server{
		Addr: cfg.Addr,
		// h2c so the server speaks HTTP/2 cleartext behind a proxy.
		Handler:           h2c.NewHandler(router, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server starting", "addr", cfg.Addr, "base_url", cfg.BaseURL)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown on SIGINT
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	logger.Info("shutting down server gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
