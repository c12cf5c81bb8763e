package window

import (
	"fmt"
	"math"
	"strings"

	"github.com/okian/persona/internal/domain/features"
	"github.com/okian/persona/internal/domain/model"
)

// Default store configuration constants.
const (
	defaultWindowSeconds          = 8.0
	defaultActionRetentionSeconds = 16.0
)

// Store owns the live session's sliding windows plus the session-long action
// counters. Callers supply every timestamp; the store never reads a clock.
type Store struct {
	window          float64
	actionRetention float64

	positions *Window[model.TimedSample]
	speeds    *Window[model.SpeedSample]
	actions   *Window[model.ActionEvent]
	counters  model.Counters
}

// NewStore creates an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		window:          defaultWindowSeconds,
		actionRetention: defaultActionRetentionSeconds,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.actionRetention < s.window {
		s.actionRetention = s.window
	}

	s.positions = New(s.window, func(p model.TimedSample) float64 { return p.T })
	s.speeds = New(s.window, func(v model.SpeedSample) float64 { return v.T })
	s.actions = New(s.actionRetention, func(a model.ActionEvent) float64 { return a.T })
	return s
}

// RecordPosition appends a position sample.
func (s *Store) RecordPosition(x, z, t float64) error {
	if !finite(x, z) {
		return fmt.Errorf("%w: non-finite position (%v, %v)", ErrMalformedInput, x, z)
	}
	if err := checkTime(t); err != nil {
		return err
	}
	if err := s.positions.Append(model.TimedSample{X: x, Z: z, T: t}); err != nil {
		return fmt.Errorf("%w: position at %v: %w", ErrMalformedInput, t, err)
	}
	return nil
}

// RecordSpeed appends a speed sample.
func (s *Store) RecordSpeed(v, t float64) error {
	if !finite(v) || v < 0 {
		return fmt.Errorf("%w: invalid speed %v", ErrMalformedInput, v)
	}
	if err := checkTime(t); err != nil {
		return err
	}
	if err := s.speeds.Append(model.SpeedSample{V: v, T: t}); err != nil {
		return fmt.Errorf("%w: speed at %v: %w", ErrMalformedInput, t, err)
	}
	return nil
}

// RecordAction appends an action and counts it for the whole session.
// Unrecognized labels are kept and counted in their own bucket.
func (s *Store) RecordAction(label string, t float64) (model.ActionEvent, error) {
	if strings.TrimSpace(label) == "" {
		return model.ActionEvent{}, fmt.Errorf("%w: empty action label", ErrMalformedInput)
	}
	if err := checkTime(t); err != nil {
		return model.ActionEvent{}, err
	}
	ev := model.NewActionEvent(label, t)
	if err := s.actions.Append(ev); err != nil {
		return model.ActionEvent{}, fmt.Errorf("%w: action at %v: %w", ErrMalformedInput, t, err)
	}
	s.counters.Add(ev.Kind)
	return ev, nil
}

// LastPosition returns the newest retained position.
func (s *Store) LastPosition() (model.TimedSample, bool) {
	return s.positions.Last()
}

// Prune drops everything outside the horizons as of now.
func (s *Store) Prune(now float64) {
	s.positions.Prune(now)
	s.speeds.Prune(now)
	s.actions.Prune(now)
}

// Snapshot returns the extraction input for the window ending at now. Actions
// are cut to the same span as positions even when they are retained longer.
func (s *Store) Snapshot(now float64) features.Input {
	cutoff := now - s.window
	return features.Input{
		Positions: s.positions.Since(cutoff),
		Speeds:    s.speeds.Since(cutoff),
		Actions:   s.actions.Since(cutoff),
		Counters:  s.counters,
		Elapsed:   now,
	}
}

// Counters returns a copy of the session-long totals.
func (s *Store) Counters() model.Counters { return s.counters }

// Window is the position horizon in seconds.
func (s *Store) Window() float64 { return s.window }

// Sizes reports the retained sample counts, before the snapshot cut.
func (s *Store) Sizes() (positions, speeds, actions int) {
	return s.positions.Len(), s.speeds.Len(), s.actions.Len()
}

func checkTime(t float64) error {
	if !finite(t) || t < 0 {
		return fmt.Errorf("%w: invalid time %v", ErrMalformedInput, t)
	}
	return nil
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
