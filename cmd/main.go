package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/markjakearzadon/clubdues-gobackend/internal/auth"
	"github.com/markjakearzadon/clubdues-gobackend/internal/config"
	"github.com/markjakearzadon/clubdues-gobackend/internal/db"
	"github.com/markjakearzadon/clubdues-gobackend/internal/events"
	"github.com/markjakearzadon/clubdues-gobackend/internal/handlers"
	"github.com/markjakearzadon/clubdues-gobackend/internal/logging"
	"github.com/markjakearzadon/clubdues-gobackend/internal/metrics"
	"github.com/markjakearzadon/clubdues-gobackend/internal/services"
)

func main() {
	envFile := flag.String("env", ".env", "path to an optional .env file")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger := logging.Setup(cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stores, err := db.OpenStores(ctx, cfg.Store)
	if err != nil {
		logger.Error("Failed to open store", "backend", cfg.Store.Backend, "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := stores.Close(); err != nil {
			logger.Error("Error disconnecting from store", "error", err)
		}
	}()
	logger.Info("Store ready", "backend", cfg.Store.Backend)

	var revoker auth.Revoker = auth.NewMemoryRevoker()
	if cfg.Redis.URL != "" {
		rdb, err := auth.NewRedisClient(ctx, cfg.Redis.URL)
		if err != nil {
			logger.Error("Failed to connect to Redis", "error", err)
			os.Exit(1)
		}
		defer rdb.Close()
		revoker = auth.NewRedisRevoker(rdb)
		logger.Info("Token revocation backed by Redis")
	}

	var publisher events.Publisher = events.Noop{}
	if cfg.AMQP.URL != "" {
		amqpPublisher, err := events.NewAMQPPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange)
		if err != nil {
			logger.Error("Failed to connect to AMQP broker", "error", err)
			os.Exit(1)
		}
		defer amqpPublisher.Close()
		publisher = amqpPublisher
		logger.Info("Publishing events", "exchange", cfg.AMQP.Exchange)
	}

	m := metrics.New()
	deps := services.Deps{
		Members:          stores.Members,
		Expenses:         stores.Expenses,
		Hasher:           auth.NewHasher(cfg.Auth.BcryptCost),
		Tokens:           auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		Revoker:          revoker,
		Events:           publisher,
		Metrics:          m,
		Logger:           logger,
		BootstrapAdminID: cfg.Bootstrap.AdminID,
	}

	router := handlers.NewRouter(handlers.RouterConfig{
		Auth:          services.NewAuthService(deps),
		Members:       services.NewMemberService(deps),
		Payments:      services.NewPaymentService(deps),
		Expenses:      services.NewExpenseService(deps),
		Dashboard:     services.NewDashboardService(deps),
		Metrics:       m,
		Logger:        logger,
		InitAdminName: cfg.Bootstrap.AdminName,
		InitPassword:  cfg.Bootstrap.AdminPassword,
	})

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Server running", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			logger.Error("Server failed", "error", err)
		}
	case <-ctx.Done():
		logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("Graceful shutdown failed", "error", err)
		}
	}
}
