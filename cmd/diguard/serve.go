package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/codewithboateng/diguard/internal/analysis"
	"github.com/codewithboateng/diguard/internal/api"
	"github.com/codewithboateng/diguard/internal/metrics"
)

func serveCmd(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to YAML config (optional)")
	addr := fs.String("addr", "", "Listen address")
	dbPath := fs.String("db", "", "SQLite database path")
	schedule := fs.String("schedule", "", "Cron spec for re-analysis of analysis.sources (optional)")
	_ = fs.Parse(args)

	cfg := loadConfig("serve", *configPath)
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *dbPath != "" {
		cfg.Database.DSN = *dbPath
	}
	if *schedule != "" {
		cfg.Analysis.Schedule = *schedule
	}

	db := openDB(cfg.Database.DSN)
	defer db.Close()

	m := metrics.New()
	p, err := analysis.New(cfg, db, m)
	if err != nil {
		fmt.Fprintln(os.Stderr, "serve:", err)
		os.Exit(2)
	}

	srv := &api.Server{
		DB:              db,
		UserStore:       db,
		Rules:           p.Rules,
		Metrics:         m,
		Logger:          slog.Default(),
		AllowedOrigins:  cfg.Server.AllowedOrigins,
		SessionDuration: time.Duration(cfg.Server.SessionHours) * time.Hour,
		CacheSize:       cfg.Server.CacheSize,
	}
	httpSrv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Analysis.Schedule != "" {
		if len(cfg.Analysis.Sources) == 0 {
			fmt.Fprintln(os.Stderr, "serve: analysis.schedule needs analysis.sources")
			os.Exit(2)
		}
		c := cron.New()
		_, err := c.AddFunc(cfg.Analysis.Schedule, func() {
			for _, src := range cfg.Analysis.Sources {
				// failures are logged and counted by the pipeline
				_, _ = p.Analyze(ctx, src)
			}
			srv.InvalidateRuns()
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "serve: bad schedule %q: %v\n", cfg.Analysis.Schedule, err)
			os.Exit(2)
		}
		c.Start()
		defer c.Stop()
		slog.Info("scheduled analysis", "schedule", cfg.Analysis.Schedule, "sources", cfg.Analysis.Sources)
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	slog.Info("api listening", "addr", cfg.Server.Addr, "db", cfg.Database.DSN)
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server error", "err", err)
		os.Exit(1)
	}
}
