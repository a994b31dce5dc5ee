package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	mcpadapter "github.com/codelore/codelore/internal/adapter/mcp"
	"github.com/codelore/codelore/internal/adapter/natskv"
	otelx "github.com/codelore/codelore/internal/adapter/otel"
	"github.com/codelore/codelore/internal/adapter/ristretto"
	"github.com/codelore/codelore/internal/adapter/snapshot"
	"github.com/codelore/codelore/internal/adapter/sqlitekv"
	"github.com/codelore/codelore/internal/adapter/tiered"
	"github.com/codelore/codelore/internal/adapter/treesitter"
	"github.com/codelore/codelore/internal/config"
	"github.com/codelore/codelore/internal/logger"
	"github.com/codelore/codelore/internal/port/cache"
	"github.com/codelore/codelore/internal/service"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log, logCloser := logger.New(cfg.Logging)
	defer logCloser.Close()
	slog.SetDefault(log)

	log.Info("config loaded",
		"log_level", cfg.Logging.Level,
		"l1_size_mb", cfg.Cache.L1MaxSizeMB,
		"l3_enabled", cfg.Cache.L3Enabled,
		"max_parallel", cfg.Engine.MaxParallel,
	)

	ctx := context.Background()

	shutdownTelemetry, err := otelx.Init(ctx, cfg.Telemetry, cfg.Logging.Service)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			log.Warn("telemetry shutdown", "error", err)
		}
	}()

	// --- Cache tiers ---

	l1, err := ristretto.New(cfg.Cache.L1MaxSizeMB * 1024 * 1024)
	if err != nil {
		return fmt.Errorf("l1 cache: %w", err)
	}
	defer l1.Close()

	l2, err := sqlitekv.Open(ctx, cfg.Cache.L2Path)
	if err != nil {
		return fmt.Errorf("l2 cache: %w", err)
	}
	defer func() { _ = l2.Close() }()
	log.Info("durable cache ready", "path", cfg.Cache.L2Path)

	// The distributed tier is optional; a missing NATS only costs cache
	// sharing, never correctness.
	var l3 cache.Cache
	if cfg.Cache.L3Enabled {
		nk, err := natskv.Connect(ctx, cfg.NATS.URL, cfg.Cache.L3Bucket, cfg.Cache.TTL, cfg.Cache.L3Timeout)
		if err != nil {
			log.Warn("distributed cache unavailable, continuing without it", "error", err)
		} else {
			defer nk.Close()
			l3 = nk
			log.Info("distributed cache ready", "url", cfg.NATS.URL, "bucket", cfg.Cache.L3Bucket)
		}
	}

	analysisCache := tiered.New(l1, l2, l3, cfg.Cache.PromoteTTL, log)

	// --- Services ---

	metrics, err := otelx.NewMetrics()
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	snapshots := snapshot.New(cfg.Engine.StateDir)
	scans := service.NewScanService(cfg.Engine.MaxFileSizeKB*1024, log)
	engine := service.NewEngine(analysisCache, treesitter.NewParser(), snapshots, scans, service.EngineOptions{
		Metrics:     metrics,
		CacheTTL:    cfg.Cache.TTL,
		TopRankings: cfg.Engine.TopRankings,
		MaxParallel: cfg.Engine.MaxParallel,
		Logger:      log,
	})

	// --- MCP ---

	srv := mcpadapter.NewServer(Version, mcpadapter.Deps{
		Scanner:  scans,
		Analyzer: engine,
	}, log)

	// ServeStdio returns when the client closes stdin.
	return srv.ServeStdio()
}
