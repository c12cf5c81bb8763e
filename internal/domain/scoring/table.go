package scoring

import (
	"fmt"
	"math"
	"slices"

	"github.com/okian/persona/internal/domain/features"
	"github.com/okian/persona/internal/domain/model"
)

// Transforms a Term may apply to its raw feature.
const (
	TransformLinear   = "linear"
	TransformInvLog1p = "inv_log1p"
	TransformStep     = "step"
)

// Term reads one feature, shapes it and weights it:
//
//	x = transform(feature); x *= Scale; if Clamp { x = clamp01(x) }; contribution = Weight * x
//
// A zero Scale means 1. Threshold is only read by the step transform, which
// yields 1 when the feature is strictly greater than it.
type Term struct {
	Feature   string  `koanf:"feature" json:"feature"`
	Transform string  `koanf:"transform" json:"transform,omitempty"`
	Threshold float64 `koanf:"threshold" json:"threshold,omitempty"`
	Scale     float64 `koanf:"scale" json:"scale,omitempty"`
	Clamp     bool    `koanf:"clamp" json:"clamp,omitempty"`
	Weight    float64 `koanf:"weight" json:"weight"`
}

// Factor is Bias plus the sum of its terms.
type Factor struct {
	Bias  float64 `koanf:"bias" json:"bias,omitempty"`
	Terms []Term  `koanf:"terms" json:"terms"`
}

// Rule scores one persona as the clamped product of its factors.
type Rule struct {
	Persona model.Persona `koanf:"persona" json:"persona"`
	Factors []Factor      `koanf:"factors" json:"factors"`
}

// Table is a validated, immutable set of rules.
type Table struct {
	rules []Rule
}

// NewTable validates rules and returns them ordered by persona priority.
func NewTable(rules []Rule) (*Table, error) {
	if len(rules) == 0 {
		return nil, ErrEmptyTable
	}
	seen := make(map[model.Persona]bool, len(rules))
	for _, r := range rules {
		if !r.Persona.Valid() || r.Persona == model.Neutral {
			return nil, fmt.Errorf("%w: persona %q", ErrInvalidRule, r.Persona)
		}
		if seen[r.Persona] {
			return nil, fmt.Errorf("%w: duplicate persona %q", ErrInvalidRule, r.Persona)
		}
		seen[r.Persona] = true
		if len(r.Factors) == 0 {
			return nil, fmt.Errorf("%w: %s has no factors", ErrInvalidRule, r.Persona)
		}
		for _, f := range r.Factors {
			for _, term := range f.Terms {
				if !features.Known(term.Feature) {
					return nil, fmt.Errorf("%w: %s: unknown feature %q", ErrInvalidRule, r.Persona, term.Feature)
				}
				switch term.Transform {
				case "", TransformLinear, TransformInvLog1p, TransformStep:
				default:
					return nil, fmt.Errorf("%w: %s: unknown transform %q", ErrInvalidRule, r.Persona, term.Transform)
				}
			}
		}
	}

	ordered := slices.Clone(rules)
	slices.SortFunc(ordered, func(a, b Rule) int {
		return model.Rank(a.Persona) - model.Rank(b.Persona)
	})
	return &Table{rules: ordered}, nil
}

// Personas lists the scored personas in priority order.
func (t *Table) Personas() []model.Persona {
	out := make([]model.Persona, len(t.rules))
	for i, r := range t.rules {
		out[i] = r.Persona
	}
	return out
}

// Score evaluates every rule against rec.
func (t *Table) Score(rec features.Record) Scores {
	out := make(Scores, len(t.rules))
	for _, r := range t.rules {
		out[r.Persona] = r.eval(rec)
	}
	return out
}

func (r Rule) eval(rec features.Record) float64 {
	product := 1.0
	for _, f := range r.Factors {
		product *= f.eval(rec)
	}
	return features.Clamp01(product)
}

func (f Factor) eval(rec features.Record) float64 {
	sum := f.Bias
	for _, term := range f.Terms {
		sum += term.eval(rec)
	}
	return sum
}

func (t Term) eval(rec features.Record) float64 {
	x, _ := rec.Value(t.Feature)
	switch t.Transform {
	case TransformInvLog1p:
		x = 1 / (1 + math.Log1p(math.Max(x, 0)))
	case TransformStep:
		if x > t.Threshold {
			x = 1
		} else {
			x = 0
		}
	}
	if t.Scale != 0 {
		x *= t.Scale
	}
	if t.Clamp {
		x = features.Clamp01(x)
	}
	return t.Weight * x
}

// DefaultRules is the stock persona table.
func DefaultRules() []Rule {
	term := func(feature string, weight float64) Term { return Term{Feature: feature, Weight: weight} }
	single := func(p model.Persona, bias float64, terms ...Term) Rule {
		return Rule{Persona: p, Factors: []Factor{{Bias: bias, Terms: terms}}}
	}

	return []Rule{
		single(model.Explorer, 0, term(features.NamePosRatio, 1.6), term(features.NameAvgSpeed, 0.2)),
		single(model.Analyst, 0, Term{Feature: features.NameUniqueActions, Transform: TransformInvLog1p, Weight: 1}),
		{
			Persona: model.Verifier,
			Factors: []Factor{
				{Bias: 1, Terms: []Term{{Feature: features.NameRiskyCount, Scale: 0.2, Clamp: true, Weight: -1}}},
				{Bias: 0.3, Terms: []Term{{Feature: features.NameRestartCount, Scale: 1.0 / 3.0, Clamp: true, Weight: 1}}},
			},
		},
		single(model.Achiever, 0, term(features.NameInteractCount, 0.2)),
		single(model.Gambler, 0, term(features.NameRiskyCount, 0.6), term(features.NameJumpCount, 0.1)),
		single(model.Creator, 0, term(features.NameCumulativeSpawnCount, 0.1), term(features.NameCumulativeUndoCount, 0.2)),
		single(model.Immerser, 0.5,
			Term{Feature: features.NamePositionSamples, Scale: 1.0 / defaultWindowSamples, Weight: 1},
			term(features.NameIdleFrac, -0.5),
		),
		single(model.Glitcher, 0,
			term(features.NameOutOfBoundsCount, 0.5),
			Term{Feature: features.NameRestartCount, Transform: TransformStep, Threshold: 5, Weight: 0.5},
		),
		single(model.Speedrunner, 1, Term{Feature: features.NameElapsedTime, Scale: 1.0 / defaultMaxExpectedTime, Weight: -1}),
	}
}

// DefaultTable wraps DefaultRules.
func DefaultTable() *Table {
	t, err := NewTable(DefaultRules())
	if err != nil {
		panic(err) // built-in rules are static
	}
	return t
}

// WithMaxExpectedTimeRules returns rules with the Speedrunner elapsed-time
// scale set to 1/seconds.
func WithMaxExpectedTimeRules(rules []Rule, seconds float64) []Rule {
	if seconds <= 0 {
		return rules
	}
	return rescale(rules, model.Speedrunner, features.NameElapsedTime, 1/seconds)
}

// WithWindowSamplesRules returns rules with the Immerser position-sample
// scale set to 1/samples, where samples is how many positions a full window
// holds (window seconds over sample interval).
func WithWindowSamplesRules(rules []Rule, samples float64) []Rule {
	if samples <= 0 {
		return rules
	}
	return rescale(rules, model.Immerser, features.NamePositionSamples, 1/samples)
}

// rescale copies rules and sets Scale on every term of persona that reads
// feature. Other rules share their backing arrays with the input.
func rescale(rules []Rule, persona model.Persona, feature string, scale float64) []Rule {
	out := make([]Rule, len(rules))
	for i, r := range rules {
		out[i] = r
		if r.Persona != persona {
			continue
		}
		out[i].Factors = make([]Factor, len(r.Factors))
		for j, f := range r.Factors {
			out[i].Factors[j] = Factor{Bias: f.Bias, Terms: append([]Term(nil), f.Terms...)}
			for k, term := range out[i].Factors[j].Terms {
				if term.Feature == feature {
					out[i].Factors[j].Terms[k].Scale = scale
				}
			}
		}
	}
	return out
}
