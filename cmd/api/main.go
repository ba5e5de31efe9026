package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/mwhitaker/stockroom/api/routes"
	"github.com/mwhitaker/stockroom/internal/labels"
	"github.com/mwhitaker/stockroom/internal/reconcile"
	"github.com/mwhitaker/stockroom/internal/registry"
	"github.com/mwhitaker/stockroom/internal/store"
	"github.com/mwhitaker/stockroom/pkg/config"
	"github.com/mwhitaker/stockroom/pkg/db"
	"github.com/mwhitaker/stockroom/pkg/logger"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	st := store.New(dbClient.DB())
	if err := st.EnsureSchema(context.Background()); err != nil {
		logg.Error(context.Background(), "failed to ensure schema", err)
		os.Exit(1)
	}

	stockSvc, err := reconcile.NewService(reconcile.ServiceParams{
		Store: st,
		Deriver: labels.NewDeriver(labels.Config{
			PreferExternal:      cfg.Labels.PreferExternal,
			ExternalURLTemplate: cfg.Labels.ExternalURLTemplate,
			ShortMaxLen:         cfg.Labels.ShortMaxLen,
		}),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create stock service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, st, registry.NewRepository(dbClient.DB()), stockSvc),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
