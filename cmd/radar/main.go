package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"sweep_radar/internal/config"
	"sweep_radar/internal/discord"
	"sweep_radar/internal/fetcher"
	"sweep_radar/internal/filter"
	"sweep_radar/internal/pipeline"
	"sweep_radar/internal/sites"
	"sweep_radar/internal/storage"
	"sweep_radar/internal/telegram"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	if cfg == nil {
		return
	}

	log := newLogger(cfg.LogLevel)

	if err := run(cfg, log); err != nil {
		log.Error("run failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	filters, err := filter.ParseRules(cfg.Include, cfg.Exclude)
	if err != nil {
		return fmt.Errorf("parse filters: %w", err)
	}

	registry := sites.Default(fetcher.New(fetcher.DefaultOptions(), log))
	selected, err := registry.Resolve(cfg.Site)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(cfg.DatabasePath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create data directory %s: %w", dir, err)
		}
	}

	store, err := storage.NewSQLite(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("open database %s: %w", cfg.DatabasePath, err)
	}
	defer func() { _ = store.Close() }()

	sender := discord.NewClient(log)
	runner := pipeline.New(store, sender, log)
	runner.SetLocation(loc)
	runner.SetFilters(filters)
	runner.SetMetricsFile(cfg.MetricsFile)
	if cfg.AlertOnError {
		runner.SetAlerter(sender)
	}

	if cfg.TelegramToken != "" {
		mirror, err := telegram.New(cfg.TelegramToken, cfg.TelegramChat, loc, log)
		if err != nil {
			return fmt.Errorf("create telegram mirror: %w", err)
		}
		runner.SetMirror(mirror)
	}

	jobs := make([]pipeline.Job, 0, len(selected))
	for _, s := range selected {
		jobs = append(jobs, pipeline.Job{
			Site: s,
			Options: pipeline.Options{
				Limit:        cfg.SiteLimit(s.Key),
				Pages:        cfg.SitePages(s.Key),
				Dry:          cfg.Dry(),
				RecordDryRun: cfg.RecordDryRun,
				Webhook:      cfg.SiteWebhook(s.Key),
			},
		})
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("starting radar", "sites", len(jobs), "mode", cfg.Mode, "db", cfg.DatabasePath, "webhook_set", cfg.Webhook != "")

	if cfg.Interval > 0 {
		runner.Run(ctx, cfg.Interval, jobs)
		log.Info("radar stopped")
		return nil
	}

	_, err = runner.RunAll(ctx, jobs)
	runner.WriteMetrics()
	return err
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
