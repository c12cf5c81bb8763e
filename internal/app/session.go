// Package app wires the classification pipeline into a per-session context.
// A Session owns the window store, scorer, stabilizer, dispatcher and the
// session recorder; the host drives it from a single tick goroutine.
package app

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/okian/persona/internal/domain/adapt"
	"github.com/okian/persona/internal/domain/features"
	"github.com/okian/persona/internal/domain/model"
	"github.com/okian/persona/internal/domain/scoring"
	"github.com/okian/persona/internal/domain/stabilizer"
	"github.com/okian/persona/internal/domain/window"
	"github.com/okian/persona/pkg/logger"
	"github.com/okian/persona/pkg/metrics"
)

const defaultDetectInterval = 2.0

// View is an immutable snapshot of the session for observers on other
// goroutines.
type View struct {
	SessionID       string           `json:"session_id"`
	Now             float64          `json:"now"`
	Persona         model.Persona    `json:"persona"`
	Reason          string           `json:"reason,omitempty"`
	LastChange      float64          `json:"last_change"`
	Smoothed        scoring.Scores   `json:"smoothed"`
	Features        features.Record  `json:"features"`
	Sufficient      bool             `json:"sufficient"`
	ActiveArtifacts int              `json:"active_artifacts"`
	Artifacts       []adapt.Artifact `json:"artifacts"`
	Positions       int              `json:"positions"`
	Actions         int              `json:"actions"`
	WindowPositions int              `json:"window_positions"`
	WindowActions   int              `json:"window_actions"`
	Closed          bool             `json:"closed"`
}

// Summary is what a closed session leaves behind.
type Summary struct {
	Log     *model.SessionLog
	Final   features.Record
	Scores  scoring.Scores
	Persona model.Persona
}

type stagedPosition struct {
	x, y, z float64
}

// Session is one player's classification context. OnPosition, OnAction,
// OnTick, CollectItem and Close must be called from one goroutine; View is
// safe from any.
type Session struct {
	store      *window.Store
	scorer     *scoring.Scorer
	stabilizer *stabilizer.Stabilizer
	dispatcher *adapt.Dispatcher
	params     features.Params
	rec        *recorder
	logger     logger.Logger

	detectInterval float64
	lastDetect     float64
	detected       bool
	now            float64
	lastRecord     features.Record
	lastSufficient bool

	stagedPos     *stagedPosition
	stagedActions []string

	closed bool
	view   atomic.Pointer[View]
}

// NewSession creates a session whose adaptations are realized in world.
func NewSession(world adapt.World, opts ...Option) *Session {
	s := &Session{
		params:         features.DefaultParams(),
		detectInterval: defaultDetectInterval,
		rec: &recorder{
			sessionID:      uuid.New().String(),
			start:          time.Now(),
			sampleInterval: features.DefaultSampleInterval,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("session")
	}
	if s.store == nil {
		s.store = window.NewStore()
	}
	if s.scorer == nil {
		s.scorer = scoring.New()
	}
	if s.stabilizer == nil {
		s.stabilizer = stabilizer.New(stabilizer.WithPersonas(s.scorer.Table().Personas()))
	}
	if s.dispatcher == nil {
		s.dispatcher = adapt.NewDispatcher(world, adapt.WithLogger(s.logger.Named("adapt")))
	}
	s.rec.windowSeconds = s.store.Window()
	s.rec.event(0, model.EventSessionStart, map[string]any{"session_id": s.rec.sessionID})

	metrics.UpdateActivePersona(string(model.Neutral), personaNames())
	s.publish()
	return s
}

// ID returns the session ID written to the log.
func (s *Session) ID() string { return s.rec.sessionID }

// Persona returns the active persona.
func (s *Session) Persona() model.Persona { return s.stabilizer.Current() }

// OnPosition stages the player's ground position for the next tick. A later
// call in the same tick replaces it.
func (s *Session) OnPosition(x, z float64) {
	s.OnPosition3D(x, 0, z)
}

// OnPosition3D is OnPosition with the height kept for the log.
func (s *Session) OnPosition3D(x, y, z float64) {
	if s.closed {
		return
	}
	s.stagedPos = &stagedPosition{x: x, y: y, z: z}
}

// OnAction stages a discrete action for the next tick.
func (s *Session) OnAction(label string) {
	if s.closed {
		return
	}
	s.stagedActions = append(s.stagedActions, label)
}

// CollectItem counts a collected item for the log.
func (s *Session) CollectItem() {
	if s.closed {
		return
	}
	s.rec.items++
}

// OnTick commits the staged samples at now and runs detection when the
// detection interval has elapsed; otherwise it lets the dispatcher refresh
// the active plan. Malformed ticks are dropped with a warning.
func (s *Session) OnTick(ctx context.Context, now, dt float64) {
	if s.closed {
		return
	}
	if !finite(now, dt) || now < 0 || dt < 0 || now < s.now {
		metrics.RecordRejectedSample("tick")
		s.logger.Warn(ctx, "dropping malformed tick",
			logger.Error(fmt.Errorf("%w: tick now=%v dt=%v after %v", ErrMalformedInput, now, dt, s.now)),
		)
		s.stagedPos, s.stagedActions = nil, nil
		return
	}
	s.now = now
	s.commit(ctx, now)

	if !s.detected || now-s.lastDetect >= s.detectInterval {
		s.detect(ctx, now)
	} else if _, err := s.dispatcher.Refresh(ctx, now); err != nil {
		s.logger.Warn(ctx, "refresh failed", logger.Error(err))
	}
	s.publish()
}

func (s *Session) commit(ctx context.Context, now float64) {
	if p := s.stagedPos; p != nil {
		s.stagedPos = nil
		if !finite(p.y) {
			s.reject(ctx, "position", fmt.Errorf("%w: non-finite height %v", window.ErrMalformedInput, p.y))
		} else if err := s.store.RecordPosition(p.x, p.z, now); err != nil {
			s.reject(ctx, "position", err)
		} else {
			metrics.RecordSample("position")
			prev, ok := s.rec.position(p.x, p.y, p.z, now)
			if ok {
				cur := model.TimedSample{X: p.x, Z: p.z, T: now}
				v := features.SpeedBetween(prev, cur)
				if err := s.store.RecordSpeed(v, now); err != nil {
					s.reject(ctx, "speed", err)
				} else {
					s.rec.speed(v, now)
					metrics.RecordSample("speed")
				}
			}
		}
	}

	labels := s.stagedActions
	s.stagedActions = nil
	for _, label := range labels {
		ev, err := s.store.RecordAction(label, now)
		if err != nil {
			s.reject(ctx, "action", err)
			continue
		}
		metrics.RecordSample("action")
		if !ev.Kind.Recognized() {
			s.logger.Debug(ctx, "unrecognized action", logger.String("label", label))
		}
		s.rec.action(ev)
	}
}

func (s *Session) reject(ctx context.Context, kind string, err error) {
	metrics.RecordRejectedSample(kind)
	s.logger.Warn(ctx, "dropping malformed sample", logger.String("kind", kind), logger.Error(err))
}

func (s *Session) detect(ctx context.Context, now float64) {
	start := time.Now()
	s.detected = true
	s.lastDetect = now

	s.store.Prune(now)
	rec := features.Extract(s.store.Snapshot(now), s.params)
	ev := s.scorer.Evaluate(rec)
	s.lastRecord, s.lastSufficient = rec, ev.Sufficient

	if !ev.Sufficient {
		metrics.RecordInsufficientData()
	}
	for p, v := range ev.Scores {
		metrics.UpdatePersonaScore(string(p), v)
	}

	d := s.stabilizer.Observe(now, ev)
	metrics.RecordDetection(float64(time.Since(start).Microseconds()) / 1000)

	switch {
	case d.Changed:
		s.transition(ctx, now, d)
	case d.Held:
		metrics.RecordHold()
		s.logger.Debug(ctx, "transition held by cooldown",
			logger.String("current", string(d.Current)),
			logger.String("candidate", string(d.Candidate)),
			logger.String("reason", d.Reason),
		)
	default:
		if _, err := s.dispatcher.Refresh(ctx, now); err != nil {
			s.logger.Warn(ctx, "refresh failed", logger.Error(err))
		}
	}
}

func (s *Session) transition(ctx context.Context, now float64, d stabilizer.Decision) {
	metrics.RecordTransition(string(d.Previous), string(d.Current))
	metrics.UpdateActivePersona(string(d.Current), personaNames())
	s.logger.Info(ctx, "persona changed",
		logger.String("from", string(d.Previous)),
		logger.String("to", string(d.Current)),
		logger.Float64("score", d.Score),
		logger.String("reason", d.Reason),
		logger.Float64("t", now),
	)
	s.rec.event(now, model.EventPersonaChanged, map[string]any{
		"from":   string(d.Previous),
		"to":     string(d.Current),
		"reason": d.Reason,
		"score":  d.Score,
	})
	if _, err := s.dispatcher.Transition(ctx, now, d.Previous, d.Current); err != nil {
		s.logger.Warn(ctx, "adaptation incomplete", logger.Error(err))
	}
}

// Close ends the session: every adaptation is cleared and the log and final
// whole-session feature record are returned. A second call reports
// ErrSessionClosed.
func (s *Session) Close(ctx context.Context) (*Summary, error) {
	if s.closed {
		return nil, ErrSessionClosed
	}
	s.closed = true
	s.stagedPos, s.stagedActions = nil, nil

	clearErr := s.dispatcher.Close(ctx)
	if clearErr != nil {
		s.logger.Warn(ctx, "clearing adaptations failed", logger.Error(clearErr))
	}

	persona := s.stabilizer.Current()
	s.rec.event(s.now, model.EventSessionEnd, map[string]any{"final_persona": string(persona)})

	final := features.Extract(s.rec.input(s.now, s.store.Counters()), s.params)
	sum := &Summary{
		Log:     s.rec.log(s.now, persona),
		Final:   final,
		Scores:  s.scorer.Score(final),
		Persona: persona,
	}
	s.publish()

	s.logger.Info(ctx, "session closed",
		logger.String("session_id", s.rec.sessionID),
		logger.String("persona", string(persona)),
		logger.Float64("elapsed", s.now),
		logger.Int("positions", final.PositionSamples),
		logger.Int("actions", final.ActionSamples),
	)
	if clearErr != nil {
		return sum, fmt.Errorf("close session: %w", clearErr)
	}
	return sum, nil
}

// View returns the latest published snapshot.
func (s *Session) View() *View {
	return s.view.Load()
}

func (s *Session) publish() {
	st := s.stabilizer.State()
	artifacts := s.dispatcher.Artifacts()
	windowPositions, _, windowActions := s.store.Sizes()
	s.view.Store(&View{
		SessionID:       s.rec.sessionID,
		Now:             s.now,
		Persona:         st.Current,
		Reason:          st.Reason,
		LastChange:      st.LastChange,
		Smoothed:        st.Smoothed,
		Features:        s.lastRecord,
		Sufficient:      s.lastSufficient,
		ActiveArtifacts: len(artifacts),
		Artifacts:       artifacts,
		Positions:       len(s.rec.samples),
		Actions:         len(s.rec.actions),
		WindowPositions: windowPositions,
		WindowActions:   windowActions,
		Closed:          s.closed,
	})
}

func personaNames() []string {
	all := model.All()
	out := make([]string, len(all))
	for i, p := range all {
		out[i] = string(p)
	}
	return out
}
