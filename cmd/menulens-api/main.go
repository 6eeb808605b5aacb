package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/menulens/menulens/internal/analytics"
	"github.com/menulens/menulens/internal/api"
	"github.com/menulens/menulens/internal/api/uistatic"
	"github.com/menulens/menulens/internal/auth"
	"github.com/menulens/menulens/internal/config"
	"github.com/menulens/menulens/internal/export"
	"github.com/menulens/menulens/internal/llm"
	"github.com/menulens/menulens/internal/migrations"
	"github.com/menulens/menulens/internal/observability"
	"github.com/menulens/menulens/internal/query/sqlstore"
	"github.com/menulens/menulens/internal/samples"
	"github.com/menulens/menulens/internal/schema"
	"github.com/menulens/menulens/internal/seed"
	"github.com/menulens/menulens/internal/store"
	s3store "github.com/menulens/menulens/internal/storage/s3"
)

func main() {
	cfg, err := config.LoadFromEnv("menulens-api")
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg, os.Stdout)
	db, err := store.Open(context.Background(), store.DBConfig{
		Driver:          cfg.Store.Driver,
		DSN:             cfg.Store.DSN,
		MaxOpenConns:    cfg.Store.MaxOpenConns,
		MaxIdleConns:    cfg.Store.MaxIdleConns,
		ConnMaxIdleTime: cfg.Store.ConnMaxIdleTime,
		ConnMaxLifetime: cfg.Store.ConnMaxLifetime,
	})
	if err != nil {
		logger.Error("failed to open database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), 30*time.Second)
	applied, err := migrations.NewRunner().Up(migrateCtx, db, 0)
	cancelMigrate()
	if err != nil {
		logger.Error("failed to apply migrations", slog.Any("error", err))
		os.Exit(1)
	}
	if applied > 0 {
		logger.Info("applied migrations", slog.Int("count", applied))
	}

	dialect, err := store.Dialect(cfg.Store.Driver)
	if err != nil {
		logger.Error("unsupported database driver", slog.Any("error", err))
		os.Exit(1)
	}
	repo := store.NewRepository(db)
	descriptor := schema.Restaurant()
	catalog, err := samples.Default()
	if err != nil {
		logger.Error("failed to load sample questions", slog.Any("error", err))
		os.Exit(1)
	}

	deps := api.Dependencies{
		Logger:            logger,
		Dashboard:         repo,
		Schema:            &descriptor,
		Samples:           &catalog,
		UI:                uistatic.Handler(),
		DependencyTimeout: time.Second,
		Seeder: func(ctx context.Context, randomSeed int64, opts seed.Options, reset bool) (seed.Counts, error) {
			return seed.Run(ctx, db, randomSeed, opts, reset)
		},
		Readiness: api.CombineReadinessChecks(
			repo.Ping,
			api.CheckAIConfig(cfg),
		),
	}

	completer, err := llm.New(llm.Config{
		Provider:    cfg.AI.Provider,
		BaseURL:     cfg.AI.BaseURL,
		APIKey:      cfg.AI.APIKey,
		Model:       cfg.AI.Model,
		Temperature: cfg.AI.Temperature,
		MaxTokens:   cfg.AI.MaxTokens,
		Timeout:     cfg.AI.Timeout,
	})
	if err != nil {
		logger.Warn("ai client unavailable, question answering disabled", slog.Any("error", err))
	} else {
		deps.Analyst = analytics.NewService(completer, sqlstore.NewEngine(db), descriptor, analytics.Config{
			Dialect:           dialect,
			GenerationTimeout: cfg.AI.Timeout,
			QueryTimeout:      cfg.Store.QueryTimeout,
			MaxResultRows:     cfg.Store.MaxResultRows,
		}, logger)
	}

	if cfg.Export.Enabled {
		objectStore, err := s3store.New(context.Background(), s3store.Config{
			Endpoint:         cfg.ObjectStore.Endpoint,
			Region:           cfg.ObjectStore.Region,
			Bucket:           cfg.ObjectStore.Bucket,
			AccessKeyID:      cfg.ObjectStore.AccessKeyID,
			SecretAccessKey:  cfg.ObjectStore.SecretAccessKey,
			UseSSL:           cfg.ObjectStore.UseSSL,
			Prefix:           cfg.ObjectStore.Prefix,
			AutoCreateBucket: cfg.ObjectStore.AutoCreateBucket,
		})
		if err != nil {
			logger.Error("failed to initialize object store", slog.Any("error", err))
			os.Exit(1)
		}
		deps.Exporter = export.NewExporter(objectStore)
		deps.Readiness = api.CombineReadinessChecks(deps.Readiness, objectStore.Ping)
	}

	if cfg.Auth.Required {
		validator, err := auth.NewStaticAPIKeyValidator(cfg.Auth.StaticKeys)
		if err != nil {
			logger.Error("failed to parse static auth keys", slog.Any("error", err))
			os.Exit(1)
		}
		deps.AuthMiddleware = auth.Middleware(logger, validator)
	}

	handler := api.NewHandler(cfg, deps)
	server := &http.Server{
		Addr:         cfg.HTTP.Address,
		Handler:      handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("starting api server", slog.String("addr", cfg.HTTP.Address), slog.String("dialect", dialect))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("api server failed", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("shutting down api server")
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", slog.Any("error", err))
		_ = server.Close()
		os.Exit(1)
	}
}
