// Package scoring maps a feature record to per-persona scores in [0,1] using
// a data-driven rule table, and decides whether a window holds enough data
// to be scored at all.
package scoring

import (
	"github.com/okian/persona/internal/domain/features"
	"github.com/okian/persona/internal/domain/model"
)

// Default scoring configuration constants.
const (
	defaultMinPositionSamples = 4
	defaultMinActionSamples   = 2
	defaultMaxExpectedTime    = 3600.0
	defaultWindowSamples      = 80.0 // 8 s window at 10 Hz

	// ReasonInsufficientData is reported when the confidence gate rejects a window.
	ReasonInsufficientData = "insufficient data"
)

// ConfidenceRule decides how the two sample minimums combine.
type ConfidenceRule int

const (
	// RequireAny accepts a window when either channel meets its minimum.
	RequireAny ConfidenceRule = iota
	// RequireAll accepts a window only when both channels meet their minimums.
	RequireAll
)

// Scores maps personas to scores in [0,1].
type Scores map[model.Persona]float64

// Best returns the highest-scoring persona, breaking ties by priority. When
// the best score is below threshold (or s is empty) it returns Neutral with
// that score.
func (s Scores) Best(threshold float64) (model.Persona, float64) {
	best, bestScore := model.Neutral, -1.0
	for _, p := range model.Priority {
		v, ok := s[p]
		if !ok {
			continue
		}
		if v > bestScore {
			best, bestScore = p, v
		}
	}
	if bestScore < 0 {
		return model.Neutral, 0
	}
	if bestScore < threshold {
		return model.Neutral, bestScore
	}
	return best, bestScore
}

// Clone returns an independent copy.
func (s Scores) Clone() Scores {
	out := make(Scores, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Evaluation is the scorer's verdict for one window.
type Evaluation struct {
	Scores     Scores
	Sufficient bool
	Reason     string
}

// Scorer scores feature records with a Table.
type Scorer struct {
	table          *Table
	minPositions   int
	minActions     int
	confidenceRule ConfidenceRule
}

// New creates a scorer with the default table and minimums.
func New(opts ...Option) *Scorer {
	s := &Scorer{
		table:          DefaultTable(),
		minPositions:   defaultMinPositionSamples,
		minActions:     defaultMinActionSamples,
		confidenceRule: RequireAny,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Table returns the rule table in use.
func (s *Scorer) Table() *Table { return s.table }

// Sufficient applies the confidence gate to rec's window sizes.
func (s *Scorer) Sufficient(rec features.Record) bool {
	posOK := rec.PositionSamples >= s.minPositions
	actOK := rec.ActionSamples >= s.minActions
	if s.confidenceRule == RequireAll {
		return posOK && actOK
	}
	return posOK || actOK
}

// Evaluate gates rec and, when it has enough data, scores it.
func (s *Scorer) Evaluate(rec features.Record) Evaluation {
	if !s.Sufficient(rec) {
		return Evaluation{Scores: Scores{}, Reason: ReasonInsufficientData}
	}
	return Evaluation{Scores: s.table.Score(rec), Sufficient: true}
}

// Score scores rec without the confidence gate.
func (s *Scorer) Score(rec features.Record) Scores {
	return s.table.Score(rec)
}
