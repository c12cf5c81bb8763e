package adapt

import (
	"github.com/okian/persona/internal/domain/model"
	"github.com/okian/persona/pkg/logger"
)

// Option applies a configuration option to the Dispatcher.
type Option func(*Dispatcher)

// WithPlans replaces the default plans. Personas missing from plans get an
// empty plan.
func WithPlans(plans map[model.Persona]Plan) Option {
	return func(d *Dispatcher) {
		if plans != nil {
			d.plans = plans
		}
	}
}

// WithRefreshInterval sets how often the active plan is re-applied.
func WithRefreshInterval(seconds float64) Option {
	return func(d *Dispatcher) {
		if seconds > 0 {
			d.refreshInterval = seconds
		}
	}
}

// WithListener registers the persona-change listener.
func WithListener(l Listener) Option {
	return func(d *Dispatcher) {
		d.listener = l
	}
}

// WithLogger sets a custom logger for the dispatcher.
func WithLogger(l logger.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}
