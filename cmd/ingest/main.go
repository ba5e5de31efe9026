package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mwhitaker/stockroom/internal/export"
	"github.com/mwhitaker/stockroom/internal/ingest"
	"github.com/mwhitaker/stockroom/internal/labels"
	"github.com/mwhitaker/stockroom/internal/registry"
	"github.com/mwhitaker/stockroom/internal/store"
	"github.com/mwhitaker/stockroom/pkg/config"
	"github.com/mwhitaker/stockroom/pkg/db"
	"github.com/mwhitaker/stockroom/pkg/logger"
	"github.com/mwhitaker/stockroom/pkg/metrics"
)

func main() {
	var (
		dir        = flag.String("dir", "", "folder to scan for receipt PDFs")
		skipExport = flag.Bool("no-export", false, "skip writing CSV snapshots after the batch")
	)
	flag.Parse()

	logg := logger.New(logger.Options{ServiceName: "ingest"})
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		logg.Warn(ctx, ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(ctx, "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "ingest",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	paths, err := collectInputs(*dir, flag.Args())
	if err != nil {
		logg.Error(ctx, "failed to collect input files", err)
		os.Exit(1)
	}
	if len(paths) == 0 {
		fmt.Fprintln(os.Stderr, "usage: stockroom-ingest [-dir folder] [receipt.pdf ...]")
		os.Exit(2)
	}

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(ctx, "error closing database", err)
		}
	}()

	st := store.New(dbClient.DB())
	pipeline, err := ingest.NewPipeline(ingest.PipelineParams{
		Registry: registry.NewRepository(dbClient.DB()),
		Store:    st,
		Deriver: labels.NewDeriver(labels.Config{
			PreferExternal:      cfg.Labels.PreferExternal,
			ExternalURLTemplate: cfg.Labels.ExternalURLTemplate,
			ShortMaxLen:         cfg.Labels.ShortMaxLen,
		}),
		Parsers:           ingest.Registered(),
		Logger:            logg,
		Metrics:           metrics.NewIngestMetrics(prometheus.DefaultRegisterer),
		QuarantineDirName: cfg.Ingest.QuarantineDirName,
	})
	if err != nil {
		logg.Error(ctx, "failed to build pipeline", err)
		os.Exit(1)
	}

	report, runErr := pipeline.Run(ctx, paths)
	if report == nil {
		logg.Error(ctx, "ingest batch aborted", runErr)
		os.Exit(1)
	}
	if runErr != nil {
		logg.Warn(logg.WithField(ctx, "errors", runErr.Error()), "some files failed to ingest")
	}

	for _, res := range report.Results {
		line := fmt.Sprintf("%-22s %s", res.Status, filepath.Base(res.Path))
		if res.Detail != "" {
			line += "  (" + res.Detail + ")"
		}
		fmt.Println(line)
	}
	fmt.Printf("\nok=%d duplicates=%d skipped=%d failed=%d  orders=%d lines=%d parts=%d\n",
		report.OK, report.Duplicates, report.Skipped, report.Failed,
		report.OrdersUpserted, report.LineItemsUpserted, report.PartsTracked)

	if !*skipExport && report.OK > 0 {
		out, err := writeExports(ctx, st, cfg.Export.Dir)
		if err != nil {
			logg.Error(ctx, "failed to write exports", err)
			os.Exit(1)
		}
		fmt.Printf("exports written to %s\n", out)
	}
}

// collectInputs merges explicit file arguments with a folder scan for PDFs.
func collectInputs(dir string, args []string) ([]string, error) {
	var paths []string
	paths = append(paths, args...)

	if dir != "" {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", dir, err)
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			if strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
				paths = append(paths, filepath.Join(dir, e.Name()))
			}
		}
	}

	sort.Strings(paths)
	return paths, nil
}

func writeExports(ctx context.Context, st *store.Store, dir string) (string, error) {
	orders, err := st.Orders(ctx, 0)
	if err != nil {
		return "", err
	}
	items, err := st.AllLineItems(ctx)
	if err != nil {
		return "", err
	}
	received, err := st.PartsReceived(ctx)
	if err != nil {
		return "", err
	}
	removed, err := st.AllRemovals(ctx)
	if err != nil {
		return "", err
	}
	inventory, err := st.SearchInventory(ctx, store.InventoryFilter{})
	if err != nil {
		return "", err
	}

	return export.NewWriter(dir).Write(export.Snapshot{
		Orders:        orders,
		LineItems:     items,
		PartsReceived: received,
		PartsRemoved:  removed,
		Inventory:     inventory,
	})
}
