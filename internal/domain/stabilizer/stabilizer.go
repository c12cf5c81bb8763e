// Package stabilizer smooths raw persona scores over time and decides when the
// active persona may change. It holds the only long-lived classification
// state of a session.
package stabilizer

import (
	"github.com/okian/persona/internal/domain/model"
	"github.com/okian/persona/internal/domain/scoring"
)

// Default stabilizer configuration constants.
const (
	defaultAlpha     = 0.1
	defaultThreshold = 0.25
	defaultCooldown  = 6.0
)

// State is the stabilizer's current view of the player.
type State struct {
	Current    model.Persona
	Smoothed   scoring.Scores
	LastChange float64
	Reason     string
}

// Decision is the outcome of one Observe call.
type Decision struct {
	Previous  model.Persona
	Current   model.Persona
	Candidate model.Persona
	Score     float64
	Changed   bool
	// Held is set when the candidate differed from Current but the cooldown
	// had not elapsed. Reason is then ReasonCooldown.
	Held   bool
	Reason string
}

// Stabilizer applies EMA smoothing and a cooldown-gated argmax.
type Stabilizer struct {
	alpha     float64
	threshold float64
	cooldown  float64
	personas  []model.Persona

	current    model.Persona
	ema        scoring.Scores
	lastChange float64
	reason     string
}

// New creates a stabilizer in the Neutral state with last change at 0.
func New(opts ...Option) *Stabilizer {
	s := &Stabilizer{
		alpha:     defaultAlpha,
		threshold: defaultThreshold,
		cooldown:  defaultCooldown,
		personas:  append([]model.Persona(nil), model.Priority...),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Reset(0)
	return s
}

// Reset returns to Neutral, zeroes the EMA and records now as the last change.
func (s *Stabilizer) Reset(now float64) {
	s.current = model.Neutral
	s.lastChange = now
	s.reason = ReasonReset
	s.ema = make(scoring.Scores, len(s.personas))
	for _, p := range s.personas {
		s.ema[p] = 0
	}
}

// Observe folds one evaluation into the smoothed scores and applies the
// transition rule at time now.
func (s *Stabilizer) Observe(now float64, ev scoring.Evaluation) Decision {
	d := Decision{Previous: s.current, Current: s.current}

	if ev.Sufficient {
		for _, p := range s.personas {
			s.ema[p] = s.alpha*ev.Scores[p] + (1-s.alpha)*s.ema[p]
		}
		d.Candidate, d.Score = s.ema.Best(s.threshold)
		if d.Candidate == model.Neutral {
			d.Reason = ReasonBelowThreshold
		} else {
			d.Reason = ReasonHighestScore
		}
	} else {
		d.Candidate = model.Neutral
		d.Reason = ReasonInsufficientData
	}

	if d.Candidate == s.current {
		return d
	}
	if now-s.lastChange < s.cooldown {
		d.Held = true
		d.Reason = ReasonCooldown
		return d
	}

	s.current = d.Candidate
	s.lastChange = now
	s.reason = d.Reason
	d.Current = d.Candidate
	d.Changed = true
	return d
}

// Current returns the active persona.
func (s *Stabilizer) Current() model.Persona { return s.current }

// State returns a copy of the stabilizer state.
func (s *Stabilizer) State() State {
	return State{
		Current:    s.current,
		Smoothed:   s.ema.Clone(),
		LastChange: s.lastChange,
		Reason:     s.reason,
	}
}
