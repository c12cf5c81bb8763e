// Package synth drives real sessions with scripted bots and writes their
// logs, so that the analyzer can be exercised without a player.
package synth

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/okian/persona/internal/adapters/mq/queue"
	"github.com/okian/persona/internal/adapters/mq/worker"
	"github.com/okian/persona/internal/app"
	"github.com/okian/persona/internal/domain/adapt"
	"github.com/okian/persona/internal/domain/model"
	"github.com/okian/persona/internal/sessionlog"
	"github.com/okian/persona/pkg/logger"
)

// Default generator configuration constants.
const (
	DefaultSessions = 14
	DefaultDuration = 60.0
	DefaultTick     = 0.1
	DefaultWorkers  = 4
)

// Config holds generator settings.
type Config struct {
	OutDir   string    // directory the logs are written to
	Sessions int       // number of sessions, bots are used round robin
	Seed     int64     // base seed; session i uses Seed+i
	Duration float64   // session length in seconds
	Tick     float64   // tick period in seconds
	Workers  int       // sessions simulated in parallel
	Bots     []string  // profile names; empty means all
	Start    time.Time // wall clock of the first session; zero means now
}

// Result is one generated session.
type Result struct {
	Profile  string
	Intended model.Persona
	Live     model.Persona // persona active when the session closed
	Top      model.Persona // best whole-session score
	Path     string
	Err      error
}

// Stats summarizes a Run.
type Stats struct {
	Generated int
	Failed    int
	Matched   int // sessions whose whole-session top persona is the intended one
	Results   []Result
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}

// Simulate runs one session of p for duration seconds and returns its summary.
func Simulate(ctx context.Context, p Profile, seed int64, duration, tick float64, start time.Time) (*app.Summary, error) {
	if p.MaxDuration > 0 && duration > p.MaxDuration {
		duration = p.MaxDuration
	}
	world := &adapt.NopWorld{}
	session := app.NewSession(world,
		app.WithLogger(logger.Nop()),
		app.WithDispatcher(adapt.NewDispatcher(world, adapt.WithLogger(logger.Nop()))),
		app.WithStartTime(start),
		app.WithSampleInterval(tick),
		app.WithMapName("synthetic"),
	)

	bot := p.NewBot()
	rng := rand.New(rand.NewPCG(uint64(seed), 0x5eed))
	x, z := 0.0, 0.0
	ticks := int(duration/tick + 0.5)
	for i := 1; i <= ticks; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		now := float64(i) * tick
		s := bot(rng, now)
		x, z = x+s.DX, z+s.DZ
		session.OnPosition3D(x, 1, z)
		for _, a := range s.Actions {
			session.OnAction(a)
		}
		session.OnTick(ctx, now, tick)
	}
	return session.Close(ctx)
}

type job struct {
	index   int
	profile Profile
}

// Run generates cfg.Sessions logs into cfg.OutDir.
func Run(ctx context.Context, cfg Config) (*Stats, error) {
	profiles, err := selectProfiles(cfg.Bots)
	if err != nil {
		return nil, err
	}
	if cfg.Sessions < 1 {
		cfg.Sessions = DefaultSessions
	}
	if cfg.Duration <= 0 {
		cfg.Duration = DefaultDuration
	}
	if cfg.Tick <= 0 {
		cfg.Tick = DefaultTick
	}
	if cfg.Workers < 1 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.Start.IsZero() {
		cfg.Start = time.Now()
	}

	log := logger.Get().Named("synth")
	stats := &Stats{StartTime: time.Now(), Results: make([]Result, cfg.Sessions)}
	log.Info(ctx, "generating synthetic sessions",
		logger.String("out", cfg.OutDir),
		logger.Int("sessions", cfg.Sessions),
		logger.Int("workers", cfg.Workers),
		logger.Float64("duration", cfg.Duration),
	)

	q := queue.NewInMemoryQueue[job](queue.WithCapacity(cfg.Sessions), queue.WithName("synth"))
	pool := worker.NewPool[job](min(cfg.Workers, cfg.Sessions), q, func(ctx context.Context, j job) error {
		// Sessions are a minute apart so file names never collide.
		start := cfg.Start.Add(time.Duration(j.index) * time.Minute)
		r := Result{Profile: j.profile.Name, Intended: j.profile.Persona}
		sum, err := Simulate(ctx, j.profile, cfg.Seed+int64(j.index), cfg.Duration, cfg.Tick, start)
		if err == nil {
			r.Live = sum.Persona
			r.Top, _ = sum.Scores.Best(0)
			end := start.Add(time.Duration(sum.Log.Meta.TotalTime * float64(time.Second)))
			r.Path, err = sessionlog.Write(cfg.OutDir, sum.Log, end)
		}
		r.Err = err
		stats.Results[j.index] = r
		return err
	}, worker.WithLogger(log))

	pool.Start(ctx)
	for i := 0; i < cfg.Sessions; i++ {
		q.Enqueue(ctx, job{index: i, profile: profiles[i%len(profiles)]})
	}
	_ = q.Close()
	pool.Wait()

	if err := ctx.Err(); err != nil {
		return stats, fmt.Errorf("generate sessions: %w", err)
	}
	_, failed := pool.Stats()
	stats.Failed = int(failed)
	for _, r := range stats.Results {
		if r.Err != nil {
			continue
		}
		stats.Generated++
		if r.Top == r.Intended {
			stats.Matched++
		}
	}
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	log.Info(ctx, "synthetic sessions written",
		logger.Int("generated", stats.Generated),
		logger.Int("failed", stats.Failed),
		logger.Int("matched", stats.Matched),
		logger.Duration("took", stats.Duration),
	)
	if stats.Generated == 0 {
		return stats, fmt.Errorf("no session could be written to %s", cfg.OutDir)
	}
	return stats, nil
}

func selectProfiles(names []string) ([]Profile, error) {
	if len(names) == 0 {
		return Profiles(), nil
	}
	out := make([]Profile, 0, len(names))
	for _, n := range names {
		p, ok := Lookup(n)
		if !ok {
			return nil, fmt.Errorf("unknown bot %q", n)
		}
		out = append(out, p)
	}
	return out, nil
}
