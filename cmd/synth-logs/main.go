package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/okian/persona/internal/synth"
	"github.com/okian/persona/pkg/logger"
)

func main() {
	var (
		out      = flag.String("out", "logs", "Directory the session logs are written to")
		sessions = flag.Int("sessions", synth.DefaultSessions, "Number of sessions to generate")
		seed     = flag.Int64("seed", 1, "Base random seed; session i uses seed+i")
		duration = flag.Float64("duration", synth.DefaultDuration, "Session length in seconds")
		workers  = flag.Int("workers", synth.DefaultWorkers, "Sessions simulated in parallel")
		bots     = flag.String("bots", "", "Comma separated bot names (default: all)")
		verbose  = flag.Bool("verbose", false, "Enable debug logging")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer logger.Sync()
	if *verbose {
		logger.SetLevelString("debug")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := synth.Config{
		OutDir:   *out,
		Sessions: *sessions,
		Seed:     *seed,
		Duration: *duration,
		Workers:  *workers,
	}
	if *bots != "" {
		cfg.Bots = strings.Split(*bots, ",")
	}

	stats, err := synth.Run(ctx, cfg)
	if err != nil {
		os.Stderr.WriteString("Generation failed: " + err.Error() + "\n")
		os.Exit(1)
	}
	for _, r := range stats.Results {
		if r.Err != nil {
			logger.Get().Warn(ctx, "session failed", logger.String("bot", r.Profile), logger.Error(r.Err))
			continue
		}
		logger.Get().Info(ctx, "session written",
			logger.String("bot", r.Profile),
			logger.String("intended", string(r.Intended)),
			logger.String("top", string(r.Top)),
			logger.String("live", string(r.Live)),
			logger.String("path", r.Path),
		)
	}
}
