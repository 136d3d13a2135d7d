// Command initdb provisions the bootstrap admin account and exits.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/markjakearzadon/clubdues-gobackend/internal/auth"
	"github.com/markjakearzadon/clubdues-gobackend/internal/config"
	"github.com/markjakearzadon/clubdues-gobackend/internal/db"
	"github.com/markjakearzadon/clubdues-gobackend/internal/logging"
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

	if cfg.Bootstrap.AdminPassword == "" {
		logger.Error("BOOTSTRAP_ADMIN_PASSWORD must be set")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	stores, err := db.OpenStores(ctx, cfg.Store)
	if err != nil {
		logger.Error("Failed to open store", "error", err)
		os.Exit(1)
	}
	defer stores.Close()

	members := services.NewMemberService(services.Deps{
		Members:          stores.Members,
		Expenses:         stores.Expenses,
		Hasher:           auth.NewHasher(cfg.Auth.BcryptCost),
		Logger:           logger,
		BootstrapAdminID: cfg.Bootstrap.AdminID,
	})

	created, err := members.EnsureBootstrapAdmin(ctx, cfg.Bootstrap.AdminName, cfg.Bootstrap.AdminPassword)
	if err != nil {
		logger.Error("Failed to create admin", "error", err)
		os.Exit(1)
	}
	if !created {
		logger.Info("Admin already exists", "member_id", cfg.Bootstrap.AdminID)
		return
	}
	logger.Info("Admin created", "member_id", cfg.Bootstrap.AdminID)
}
