// The seed command loads the initial catalog and coupons into the
// configured store. It is safe to run repeatedly: collections that
// already hold data are left alone.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/lumenmarket/storefront/internal/config"
	"github.com/lumenmarket/storefront/internal/repository/memory"
	"github.com/lumenmarket/storefront/internal/repository/postgres"
	"github.com/lumenmarket/storefront/internal/seed"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "err", err)
		os.Exit(1)
	}

	ctx := context.Background()

	if cfg.StatePath != "" {
		store, err := memory.Open(cfg.StatePath)
		if err != nil {
			slog.Error("Failed to open state store", "path", cfg.StatePath, "err", err)
			os.Exit(1)
		}
		if err := seed.Apply(ctx, store.Products(), store.Coupons()); err != nil {
			slog.Error("Failed to seed store", "err", err)
			os.Exit(1)
		}
		slog.Info("Seeded file-backed store", "path", cfg.StatePath)
		return
	}

	db, err := postgres.InitDB(cfg.DatabaseURL)
	if err != nil {
		slog.Error("Failed to init database", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := seed.Apply(ctx, postgres.NewProductRepository(db), postgres.NewCouponRepository(db)); err != nil {
		slog.Error("Failed to seed database", "err", err)
		os.Exit(1)
	}
	slog.Info("Seeded database")
}
