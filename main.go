package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/pthm-cable/garden/components"
	"github.com/pthm-cable/garden/config"
	"github.com/pthm-cable/garden/dataset"
	"github.com/pthm-cable/garden/garden"
	"github.com/pthm-cable/garden/telemetry"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	entriesPath := flag.String("entries", "", "Path to entries CSV (empty = synthetic entries)")
	synthetic := flag.Int("synthetic", 300, "Number of synthetic entries when -entries is empty")
	syntheticDays := flag.Int("synthetic-days", 120, "Days spanned by synthetic entries")
	seed := flag.Uint("seed", 1, "Seed for synthetic entries")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	startFlag := flag.String("start", "", "Sweep start, RFC 3339 (empty = first entry)")
	endFlag := flag.String("end", "", "Sweep end, RFC 3339 (empty = last entry plus one lifespan)")
	step := flag.Duration("step", time.Hour, "Simulated time advanced per frame")
	frameInterval := flag.Duration("frame-interval", 0, "Real time per frame, used for scrub rate (0 = play at growth.playback_rate)")
	maxFrames := flag.Int("max-frames", 0, "Stop after N frames (0 = unlimited)")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		fmt.Fprintf(os.Stderr, "invalid -log-level %q: %v\n", *logLevel, err)
		os.Exit(2)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	var entries []components.Entry
	if *entriesPath != "" {
		var err error
		entries, err = dataset.Load(*entriesPath)
		if err != nil {
			slog.Error("failed to load entries", "error", err)
			os.Exit(1)
		}
	} else {
		start := time.Now().UTC().Truncate(24*time.Hour).AddDate(0, 0, -*syntheticDays)
		entries = dataset.Synthetic(*synthetic, *syntheticDays, start, uint32(*seed))
		slog.Info("generated synthetic entries", "count", len(entries), "days", *syntheticDays, "seed", *seed)
	}

	g, err := garden.New(entries, cfg, garden.WithLogger(logger))
	if err != nil {
		slog.Error("failed to build garden", "error", err)
		os.Exit(1)
	}

	if *step == 0 {
		*step = time.Hour
	}
	interval := *frameInterval
	if interval <= 0 {
		interval = playbackInterval(*step, cfg.Growth.PlaybackRate)
	}

	first, last := g.Span()
	sw := sweep{
		start:         first,
		end:           last.Add(cfg.Lifecycle.Lifespan),
		step:          *step,
		frameInterval: interval,
		maxFrames:     *maxFrames,
	}
	if sw.start, err = parseTime(*startFlag, sw.start); err != nil {
		slog.Error("invalid -start", "error", err)
		os.Exit(2)
	}
	if sw.end, err = parseTime(*endFlag, sw.end); err != nil {
		slog.Error("invalid -end", "error", err)
		os.Exit(2)
	}

	var out *telemetry.OutputManager
	if *outputDir != "" {
		out, err = telemetry.NewOutputManager(*outputDir)
		if err != nil {
			slog.Error("failed to create output directory", "error", err)
			os.Exit(1)
		}
		defer out.Close()
		if err := out.WriteConfig(cfg); err != nil {
			slog.Error("failed to write config snapshot", "error", err)
		}
		if err := out.WritePlacements(g.PlacementRecords()); err != nil {
			slog.Error("failed to write placements", "error", err)
		}
	}

	slog.Info("starting sweep",
		"start", sw.start,
		"end", sw.end,
		"step", sw.step,
		"frame_interval", sw.frameInterval,
		"output_dir", out.Dir(),
	)
	frames := sw.run(g, out, logger)
	slog.Info("sweep finished", "frames", frames, "perf", g.PerfStats())
}

func parseTime(s string, fallback time.Time) (time.Time, error) {
	if s == "" {
		return fallback, nil
	}
	return time.Parse(time.RFC3339, s)
}
