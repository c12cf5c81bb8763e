package scoring_test

import (
	"errors"
	"math"
	"testing"

	"github.com/okian/persona/internal/domain/features"
	"github.com/okian/persona/internal/domain/model"
	scoring "github.com/okian/persona/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDefaultTable(t *testing.T) {
	Convey("Given the default table", t, func() {
		table := scoring.DefaultTable()

		Convey("Then it scores every non-neutral persona in priority order", func() {
			So(table.Personas(), ShouldResemble, model.Priority)
		})

		Convey("When an explorer-like window is scored", func() {
			s := table.Score(features.Record{PosRatio: 0.5, AvgSpeed: 1})

			Convey("Then Explorer is pos_ratio*1.6 + avg_speed*0.2", func() {
				So(s[model.Explorer], ShouldAlmostEqual, 1.0)
				So(table.Score(features.Record{PosRatio: 0.25})[model.Explorer], ShouldAlmostEqual, 0.4)
			})
		})

		Convey("When unique actions grow", func() {
			Convey("Then Analyst follows 1/(1+ln(1+u))", func() {
				So(table.Score(features.Record{})[model.Analyst], ShouldEqual, 1)
				So(table.Score(features.Record{UniqueActions: 3})[model.Analyst], ShouldAlmostEqual, 1/(1+math.Log(4)))
			})
		})

		Convey("When restarts grow with no risky actions", func() {
			prev := -1.0
			var last float64
			for r := 0; r <= 8; r++ {
				v := table.Score(features.Record{RestartCount: r})[model.Verifier]
				So(v, ShouldBeGreaterThanOrEqualTo, prev)
				So(v, ShouldBeLessThanOrEqualTo, 1)
				prev, last = v, v
			}

			Convey("Then Verifier is monotone and capped at one", func() {
				So(table.Score(features.Record{})[model.Verifier], ShouldAlmostEqual, 0.3)
				So(last, ShouldEqual, 1)
			})
		})

		Convey("When risky actions pile up", func() {
			s := table.Score(features.Record{RiskyCount: 5, RestartCount: 3})

			Convey("Then Verifier drops to zero and Gambler saturates", func() {
				So(s[model.Verifier], ShouldAlmostEqual, 0)
				So(s[model.Gambler], ShouldEqual, 1)
			})
		})

		Convey("When the remaining personas are scored", func() {
			s := table.Score(features.Record{
				InteractCount:        2,
				JumpCount:            3,
				CumulativeSpawnCount: 2,
				CumulativeUndoCount:  1,
				PositionSamples:      40,
				IdleFrac:             0.5,
				OutOfBoundsCount:     1,
				RestartCount:         6,
				ElapsedTime:          1800,
			})

			Convey("Then each follows its formula", func() {
				So(s[model.Achiever], ShouldAlmostEqual, 0.4)
				So(s[model.Gambler], ShouldAlmostEqual, 0.3)
				So(s[model.Creator], ShouldAlmostEqual, 0.4)
				So(s[model.Immerser], ShouldAlmostEqual, 0.75)
				So(s[model.Glitcher], ShouldAlmostEqual, 1)
				So(s[model.Speedrunner], ShouldAlmostEqual, 0.5)
			})
		})

		Convey("Then every score stays in [0,1] for extreme inputs", func() {
			for _, rec := range []features.Record{
				{},
				{PosRatio: 1, AvgSpeed: 1e9, RiskyCount: 1e6, JumpCount: 1e6, ElapsedTime: 1e9, IdleFrac: 1},
			} {
				for _, v := range table.Score(rec) {
					So(v, ShouldBeBetweenOrEqual, 0, 1)
				}
			}
		})
	})
}

func TestNewTable(t *testing.T) {
	Convey("Given custom rules", t, func() {
		Convey("When a rule names an unknown feature", func() {
			_, err := scoring.NewTable([]scoring.Rule{{Persona: model.Explorer, Factors: []scoring.Factor{{Terms: []scoring.Term{{Feature: "luck"}}}}}})
			So(errors.Is(err, scoring.ErrInvalidRule), ShouldBeTrue)
		})

		Convey("When a rule targets Neutral or repeats a persona", func() {
			f := []scoring.Factor{{Bias: 1}}
			_, err := scoring.NewTable([]scoring.Rule{{Persona: model.Neutral, Factors: f}})
			So(errors.Is(err, scoring.ErrInvalidRule), ShouldBeTrue)
			_, err = scoring.NewTable([]scoring.Rule{{Persona: model.Analyst, Factors: f}, {Persona: model.Analyst, Factors: f}})
			So(errors.Is(err, scoring.ErrInvalidRule), ShouldBeTrue)
		})

		Convey("When a transform is unknown", func() {
			_, err := scoring.NewTable([]scoring.Rule{{Persona: model.Analyst, Factors: []scoring.Factor{{Terms: []scoring.Term{{Feature: features.NameJumpCount, Transform: "sqrt"}}}}}})
			So(errors.Is(err, scoring.ErrInvalidRule), ShouldBeTrue)
		})

		Convey("When no rules are given", func() {
			_, err := scoring.NewTable(nil)
			So(errors.Is(err, scoring.ErrEmptyTable), ShouldBeTrue)
		})

		Convey("When rules are listed out of priority order", func() {
			table, err := scoring.NewTable([]scoring.Rule{
				{Persona: model.Gambler, Factors: []scoring.Factor{{Bias: 0.5}}},
				{Persona: model.Explorer, Factors: []scoring.Factor{{Bias: 0.5}}},
			})

			Convey("Then the table reorders them", func() {
				So(err, ShouldBeNil)
				So(table.Personas(), ShouldResemble, []model.Persona{model.Explorer, model.Gambler})
			})
		})

		Convey("When the expected session length is changed", func() {
			rules := scoring.WithMaxExpectedTimeRules(scoring.DefaultRules(), 100)
			table, err := scoring.NewTable(rules)
			So(err, ShouldBeNil)

			Convey("Then Speedrunner is normalized by it without touching the defaults", func() {
				So(table.Score(features.Record{ElapsedTime: 50})[model.Speedrunner], ShouldAlmostEqual, 0.5)
				So(scoring.DefaultTable().Score(features.Record{ElapsedTime: 50})[model.Speedrunner], ShouldBeGreaterThan, 0.98)
			})
		})

		Convey("When the window holds a different number of samples", func() {
			rules := scoring.WithWindowSamplesRules(scoring.DefaultRules(), 40)
			table, err := scoring.NewTable(rules)
			So(err, ShouldBeNil)
			rec := features.Record{PositionSamples: 20}

			Convey("Then Immerser is normalized by it and the defaults keep 80", func() {
				So(table.Score(rec)[model.Immerser], ShouldAlmostEqual, 1.0)
				So(scoring.DefaultTable().Score(rec)[model.Immerser], ShouldAlmostEqual, 0.75)
				So(scoring.DefaultRules()[6].Factors[0].Terms[0].Scale, ShouldAlmostEqual, 1.0/80.0)
			})
		})
	})
}

func TestScorerConfidence(t *testing.T) {
	Convey("Given a scorer with the any rule", t, func() {
		s := scoring.New()

		Convey("When a window has 2 interact actions and no positions", func() {
			ev := s.Evaluate(features.Record{ActionSamples: 2, InteractCount: 2})

			Convey("Then it is scored", func() {
				So(ev.Sufficient, ShouldBeTrue)
				So(ev.Scores[model.Achiever], ShouldAlmostEqual, 0.4)
			})
		})

		Convey("When both channels are below their minimums", func() {
			ev := s.Evaluate(features.Record{PositionSamples: 3, ActionSamples: 1})

			Convey("Then the window is insufficient and unscored", func() {
				So(ev.Sufficient, ShouldBeFalse)
				So(ev.Reason, ShouldEqual, scoring.ReasonInsufficientData)
				So(ev.Scores, ShouldBeEmpty)
			})
		})
	})

	Convey("Given a scorer with the all rule", t, func() {
		s := scoring.New(scoring.WithConfidenceRule(scoring.RequireAll), scoring.WithMinimums(4, 2))

		Convey("Then one channel alone is not enough", func() {
			So(s.Sufficient(features.Record{ActionSamples: 2}), ShouldBeFalse)
			So(s.Sufficient(features.Record{PositionSamples: 10}), ShouldBeFalse)
			So(s.Sufficient(features.Record{PositionSamples: 4, ActionSamples: 2}), ShouldBeTrue)
		})

		Convey("And Score ignores the gate", func() {
			So(s.Score(features.Record{}), ShouldHaveLength, len(model.Priority))
		})
	})
}

func TestScoresBest(t *testing.T) {
	Convey("Given scores", t, func() {
		Convey("When two personas tie", func() {
			p, v := scoring.Scores{model.Gambler: 0.6, model.Analyst: 0.6, model.Creator: 0.1}.Best(0.25)

			Convey("Then the earlier persona in priority wins", func() {
				So(p, ShouldEqual, model.Analyst)
				So(v, ShouldEqual, 0.6)
			})
		})

		Convey("When the best score is below the threshold", func() {
			p, v := scoring.Scores{model.Explorer: 0.2}.Best(0.25)
			So(p, ShouldEqual, model.Neutral)
			So(v, ShouldEqual, 0.2)
		})

		Convey("When there are no scores", func() {
			p, _ := scoring.Scores{}.Best(0)
			So(p, ShouldEqual, model.Neutral)
		})
	})
}
