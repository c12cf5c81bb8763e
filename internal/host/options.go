package host

import (
	"time"

	"github.com/okian/persona/pkg/logger"
)

// Option applies a configuration option to the Runner.
type Option func(*Runner)

// WithTickInterval sets the tick period in seconds.
func WithTickInterval(seconds float64) Option {
	return func(r *Runner) {
		if seconds > 0 {
			r.interval = time.Duration(seconds * float64(time.Second))
		}
	}
}

// WithLogDir sets where the session log is written on stop.
func WithLogDir(dir string) Option {
	return func(r *Runner) {
		if dir != "" {
			r.logDir = dir
		}
	}
}

// WithDisplay draws the HUD after every tick.
func WithDisplay(d Display) Option {
	return func(r *Runner) {
		r.display = d
	}
}

// WithClock replaces time.Now for log file names.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		if now != nil {
			r.clock = now
		}
	}
}

// WithLogger sets a custom logger for the runner.
func WithLogger(l logger.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}
