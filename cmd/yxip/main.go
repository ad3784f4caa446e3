package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/cheggaaa/pb/v3"

	"github.com/admpjgj/yxip/internal/config"
	"github.com/admpjgj/yxip/internal/fetch"
	"github.com/admpjgj/yxip/internal/geo"
	"github.com/admpjgj/yxip/internal/logger"
	"github.com/admpjgj/yxip/internal/model"
	"github.com/admpjgj/yxip/internal/notify"
	"github.com/admpjgj/yxip/internal/persist"
	"github.com/admpjgj/yxip/internal/registry"
	"github.com/admpjgj/yxip/internal/render"
	"github.com/admpjgj/yxip/internal/schedule"
)

func main() {
	cfg := config.Load()
	logger.Setup(cfg.LogLevel)
	ctx := context.Background()

	sources := registry.Builtin()
	if cfg.SourceFile != "" {
		var err error
		sources, err = registry.LoadFile(cfg.SourceFile)
		if err != nil {
			slog.Error("source_file_invalid", "path", cfg.SourceFile, "error", err)
			os.Exit(1)
		}
	}

	var renderer render.Renderer
	if cfg.RenderEndpoint != "" {
		svc := render.NewService(cfg.RenderEndpoint, cfg.RenderTimeout)
		defer svc.Close()
		renderer = svc
	} else {
		slog.Info("rendering_disabled", "reason", "no RENDER_ENDPOINT configured")
	}

	fetcher, err := fetch.New(fetch.Options{
		Timeout:    cfg.FetchTimeout,
		Backoff:    fetch.NewBackoff(cfg.FetchAttempts, cfg.FetchBaseDelay, cfg.FetchJitter),
		Rate:       cfg.FetchRate,
		SocksProxy: cfg.SocksProxy,
		Settle:     cfg.RenderSettle,
		SettleHigh: cfg.RenderSettleHigh,
		Renderer:   renderer,
	})
	if err != nil {
		slog.Error("fetcher_init_failed", "error", err)
		os.Exit(1)
	}

	sched := schedule.New(fetcher, schedule.Options{
		Workers: cfg.Workers,
		PaceMin: cfg.PaceMin,
		PaceMax: cfg.PaceMax,
	})

	// Stage 1: harvest, aggregate, persist.
	set, stats := sched.Run(ctx, sources)
	eps := set.Endpoints()
	slog.Info("harvest_done", "sources", len(sources), "endpoints", len(eps))

	if err := persist.WriteEndpoints(cfg.OutputPath, eps); err != nil {
		slog.Error("stage1_write_failed", "error", err)
		os.Exit(1)
	}
	abs, _ := filepath.Abs(cfg.OutputPath)
	slog.Info("stage1_written", "path", abs, "count", len(eps))

	// Stage 2: region classification, skipped gracefully when the
	// configured region database cannot be obtained.
	var regionCounts map[model.Region]int
	if cfg.Classify {
		regionCounts = classify(ctx, cfg, eps)
	}

	if n := notify.New(cfg.TelegramToken, cfg.TelegramChatID); n != nil {
		if err := n.SendMessage(ctx, notify.Summary(stats, len(eps), regionCounts)); err != nil {
			slog.Warn("notify_failed", "error", err)
		}
	}
}

// classify runs Stage 2 and returns per-region counts, or nil when
// classification was unavailable (distinct from zero matches: then the
// map is empty but non-nil and the artifact exists).
func classify(ctx context.Context, cfg *config.Config, eps []model.Endpoint) map[model.Region]int {
	classifier, cleanup, err := buildClassifier(ctx, cfg)
	if err != nil {
		if errors.Is(err, geo.ErrRegionDBUnavailable) {
			slog.Warn("region_database_unavailable", "detail", "stage 2 skipped, stage 1 artifact unaffected")
		} else {
			slog.Warn("classifier_init_failed", "error", err)
		}
		return nil
	}
	defer cleanup()

	targets := make(map[model.Region]bool, len(cfg.TargetRegions))
	for _, r := range cfg.TargetRegions {
		targets[model.Region(strings.ToUpper(strings.TrimSpace(r)))] = true
	}

	var bar *pb.ProgressBar
	if cfg.Progress {
		bar = pb.StartNew(len(eps))
	}

	counts := make(map[model.Region]int)
	matched := make([]model.Endpoint, 0, len(eps))
	for _, e := range eps {
		region := classifier.Classify(e)
		if targets[region] {
			counts[region]++
			matched = append(matched, e)
		}
		if bar != nil {
			bar.Increment()
		}
	}
	if bar != nil {
		bar.Finish()
	}

	if err := persist.WriteEndpoints(cfg.RegionOutputPath, matched); err != nil {
		slog.Error("stage2_write_failed", "error", err)
		os.Exit(1)
	}
	abs, _ := filepath.Abs(cfg.RegionOutputPath)
	slog.Info("stage2_written", "path", abs, "count", len(matched),
		"hk", counts[model.RegionHongKong],
		"jp", counts[model.RegionJapan],
		"sg", counts[model.RegionSingapore],
	)
	return counts
}

// buildClassifier picks the table source: a MaxMind database when one
// is configured, else the configured external interval datasets, else
// the curated octet table.
func buildClassifier(ctx context.Context, cfg *config.Config) (geo.Classifier, func(), error) {
	if cfg.GeoIPPath != "" {
		db, err := geo.OpenMMDB(cfg.GeoIPPath)
		if err == nil {
			slog.Info("classifier_ready", "backend", "mmdb", "path", cfg.GeoIPPath)
			return db, db.Close, nil
		}
		slog.Warn("mmdb_open_failed", "path", cfg.GeoIPPath, "error", err)
	}
	if len(cfg.IntervalSources) > 0 {
		table, err := geo.FetchIntervalTable(ctx, nil, cfg.IntervalSources)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("classifier_ready", "backend", "interval", "rows", table.Len())
		return table, func() {}, nil
	}
	slog.Info("classifier_ready", "backend", "curated")
	return geo.NewOctetTable(geo.CuratedRules()), func() {}, nil
}
