package stabilizer

import "github.com/okian/persona/internal/domain/model"

// Option applies a configuration option to the Stabilizer.
type Option func(*Stabilizer)

// WithAlpha sets the EMA smoothing factor. Values outside (0,1] are ignored.
func WithAlpha(alpha float64) Option {
	return func(s *Stabilizer) {
		if alpha > 0 && alpha <= 1 {
			s.alpha = alpha
		}
	}
}

// WithThreshold sets the activation threshold a smoothed score must reach.
func WithThreshold(threshold float64) Option {
	return func(s *Stabilizer) {
		if threshold >= 0 {
			s.threshold = threshold
		}
	}
}

// WithCooldown sets the minimum seconds between two accepted transitions.
func WithCooldown(seconds float64) Option {
	return func(s *Stabilizer) {
		if seconds >= 0 {
			s.cooldown = seconds
		}
	}
}

// WithPersonas restricts smoothing to the given personas.
func WithPersonas(personas []model.Persona) Option {
	return func(s *Stabilizer) {
		if len(personas) > 0 {
			s.personas = append([]model.Persona(nil), personas...)
		}
	}
}
