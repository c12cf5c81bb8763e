package app

import (
	"time"

	"github.com/okian/persona/internal/domain/adapt"
	"github.com/okian/persona/internal/domain/features"
	"github.com/okian/persona/internal/domain/scoring"
	"github.com/okian/persona/internal/domain/stabilizer"
	"github.com/okian/persona/internal/domain/window"
	"github.com/okian/persona/pkg/logger"
)

// Option applies a configuration option to the Session.
type Option func(*Session)

// WithStore replaces the default sliding window store.
func WithStore(s *window.Store) Option {
	return func(sess *Session) {
		if s != nil {
			sess.store = s
		}
	}
}

// WithScorer replaces the default scorer.
func WithScorer(s *scoring.Scorer) Option {
	return func(sess *Session) {
		if s != nil {
			sess.scorer = s
		}
	}
}

// WithStabilizer replaces the default stabilizer.
func WithStabilizer(s *stabilizer.Stabilizer) Option {
	return func(sess *Session) {
		if s != nil {
			sess.stabilizer = s
		}
	}
}

// WithDispatcher replaces the dispatcher built over the session's world.
func WithDispatcher(d *adapt.Dispatcher) Option {
	return func(sess *Session) {
		if d != nil {
			sess.dispatcher = d
		}
	}
}

// WithFeatureParams sets extraction tuning.
func WithFeatureParams(p features.Params) Option {
	return func(sess *Session) {
		sess.params = p
	}
}

// WithDetectInterval sets the seconds between two detection passes.
func WithDetectInterval(seconds float64) Option {
	return func(sess *Session) {
		if seconds > 0 {
			sess.detectInterval = seconds
		}
	}
}

// WithSessionID overrides the generated session ID.
func WithSessionID(id string) Option {
	return func(sess *Session) {
		if id != "" {
			sess.rec.sessionID = id
		}
	}
}

// WithStartTime sets the wall-clock start written to the log.
func WithStartTime(t time.Time) Option {
	return func(sess *Session) {
		if !t.IsZero() {
			sess.rec.start = t
		}
	}
}

// WithSampleInterval records the host's position period in the log meta.
func WithSampleInterval(seconds float64) Option {
	return func(sess *Session) {
		if seconds > 0 {
			sess.rec.sampleInterval = seconds
		}
	}
}

// WithMapName records the map in the log meta.
func WithMapName(name string) Option {
	return func(sess *Session) {
		sess.rec.mapName = name
	}
}

// WithLogger sets a custom logger for the session.
func WithLogger(l logger.Logger) Option {
	return func(sess *Session) {
		if l != nil {
			sess.logger = l
		}
	}
}
