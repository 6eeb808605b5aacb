package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/menulens/menulens/internal/config"
	"github.com/menulens/menulens/internal/migrations"
	"github.com/menulens/menulens/internal/observability"
	"github.com/menulens/menulens/internal/seed"
	"github.com/menulens/menulens/internal/store"
)

func main() {
	cfg, err := config.LoadFromEnv("menulens-seed")
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	restaurants := flag.Int("restaurants", cfg.Seed.Restaurants, "number of restaurants (max 10)")
	customers := flag.Int("customers", cfg.Seed.Customers, "number of customers")
	orders := flag.Int("orders", cfg.Seed.Orders, "number of orders")
	reviews := flag.Int("reviews", cfg.Seed.Reviews, "number of reviews")
	days := flag.Int("days", cfg.Seed.DateRangeDays, "order history window in days")
	randomSeed := flag.Int64("seed", cfg.Seed.RandomSeed, "random seed for reproducible data")
	reset := flag.Bool("reset", cfg.Seed.Reset, "delete existing rows before loading")
	flag.Parse()

	logger := observability.NewLogger(cfg, os.Stdout)
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := store.Open(ctx, store.DBConfig{Driver: cfg.Store.Driver, DSN: cfg.Store.DSN, MaxOpenConns: 1})
	if err != nil {
		logger.Error("failed to open database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	if _, err := migrations.NewRunner().Up(ctx, db, 0); err != nil {
		logger.Error("failed to apply migrations", slog.Any("error", err))
		os.Exit(1)
	}

	opts := seed.Options{
		Restaurants:   *restaurants,
		Customers:     *customers,
		Orders:        *orders,
		Reviews:       *reviews,
		DateRangeDays: *days,
	}
	counts, err := seed.Run(ctx, db, *randomSeed, opts, *reset)
	if err != nil {
		logger.Error("failed to load sample data", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("sample data loaded",
		slog.String("driver", cfg.Store.Driver),
		slog.Int64("seed", *randomSeed),
		slog.Int("restaurants", counts.Restaurants),
		slog.Int("menu_items", counts.MenuItems),
		slog.Int("customers", counts.Customers),
		slog.Int("orders", counts.Orders),
		slog.Int("order_items", counts.OrderItems),
		slog.Int("reviews", counts.Reviews),
	)
}
