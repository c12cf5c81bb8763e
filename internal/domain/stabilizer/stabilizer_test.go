package stabilizer_test

import (
	"math/rand"
	"testing"

	"github.com/okian/persona/internal/domain/model"
	"github.com/okian/persona/internal/domain/scoring"
	stabilizer "github.com/okian/persona/internal/domain/stabilizer"
	. "github.com/smartystreets/goconvey/convey"
)

func sufficient(s scoring.Scores) scoring.Evaluation {
	return scoring.Evaluation{Scores: s, Sufficient: true}
}

func TestStabilizer(t *testing.T) {
	Convey("Given a stabilizer with default tuning", t, func() {
		s := stabilizer.New()

		Convey("Then it starts Neutral with a zero EMA", func() {
			st := s.State()
			So(st.Current, ShouldEqual, model.Neutral)
			So(st.LastChange, ShouldEqual, 0)
			for _, v := range st.Smoothed {
				So(v, ShouldEqual, 0)
			}
		})

		Convey("When Explorer scores 1 every two seconds", func() {
			var changedAt float64
			for now := 2.0; now <= 10; now += 2 {
				d := s.Observe(now, sufficient(scoring.Scores{model.Explorer: 1}))
				if d.Changed {
					changedAt = now
					break
				}
			}

			Convey("Then Explorer activates once its EMA passes the threshold", func() {
				So(changedAt, ShouldEqual, 6)
				So(s.Current(), ShouldEqual, model.Explorer)
				So(s.State().Smoothed[model.Explorer], ShouldAlmostEqual, 0.271)
			})
		})

		Convey("When the smoothed scores stay below the threshold", func() {
			d := s.Observe(10, sufficient(scoring.Scores{model.Analyst: 1}))

			Convey("Then the candidate is Neutral", func() {
				So(d.Candidate, ShouldEqual, model.Neutral)
				So(d.Reason, ShouldEqual, stabilizer.ReasonBelowThreshold)
				So(d.Changed, ShouldBeFalse)
			})
		})

		Convey("When a window is insufficient", func() {
			s.Observe(2, sufficient(scoring.Scores{model.Gambler: 1}))
			before := s.State().Smoothed
			d := s.Observe(4, scoring.Evaluation{Reason: scoring.ReasonInsufficientData})

			Convey("Then the EMA is untouched and Neutral is proposed", func() {
				So(s.State().Smoothed, ShouldResemble, before)
				So(d.Candidate, ShouldEqual, model.Neutral)
				So(d.Reason, ShouldEqual, stabilizer.ReasonInsufficientData)
			})
		})
	})

	Convey("Given an unsmoothed stabilizer", t, func() {
		s := stabilizer.New(stabilizer.WithAlpha(1))

		Convey("When a strong persona appears before the cooldown elapsed", func() {
			held := s.Observe(1, sufficient(scoring.Scores{model.Gambler: 0.9}))
			changed := s.Observe(6, sufficient(scoring.Scores{model.Gambler: 0.9}))

			Convey("Then it is held until the cooldown passes", func() {
				So(held.Held, ShouldBeTrue)
				So(held.Reason, ShouldEqual, stabilizer.ReasonCooldown)
				So(held.Candidate, ShouldEqual, model.Gambler)
				So(held.Current, ShouldEqual, model.Neutral)
				So(changed.Changed, ShouldBeTrue)
				So(changed.Previous, ShouldEqual, model.Neutral)
				So(changed.Current, ShouldEqual, model.Gambler)
				So(s.State().LastChange, ShouldEqual, 6)
			})
		})

		Convey("When two personas tie", func() {
			s.Observe(6, sufficient(scoring.Scores{model.Speedrunner: 0.7, model.Verifier: 0.7}))

			Convey("Then the earlier one in priority wins", func() {
				So(s.Current(), ShouldEqual, model.Verifier)
			})
		})

		Convey("When insufficient data follows an active persona", func() {
			s.Observe(6, sufficient(scoring.Scores{model.Creator: 1}))
			held := s.Observe(8, scoring.Evaluation{})
			dropped := s.Observe(12, scoring.Evaluation{})

			Convey("Then the drop to Neutral still respects the cooldown", func() {
				So(held.Held, ShouldBeTrue)
				So(dropped.Changed, ShouldBeTrue)
				So(dropped.Current, ShouldEqual, model.Neutral)
			})
		})

		Convey("When Reset is called", func() {
			s.Observe(6, sufficient(scoring.Scores{model.Creator: 1}))
			s.Reset(20)

			Convey("Then the state is Neutral again", func() {
				st := s.State()
				So(st.Current, ShouldEqual, model.Neutral)
				So(st.LastChange, ShouldEqual, 20)
				So(st.Reason, ShouldEqual, stabilizer.ReasonReset)
				So(st.Smoothed[model.Creator], ShouldEqual, 0)
			})
		})
	})
}

func TestNoDoubleTransitionWithinCooldown(t *testing.T) {
	Convey("Given random evaluations at random intervals", t, func() {
		rng := rand.New(rand.NewSource(7))
		s := stabilizer.New(stabilizer.WithAlpha(0.6), stabilizer.WithCooldown(6))

		var changes []float64
		now := 0.0
		for i := 0; i < 2000; i++ {
			now += rng.Float64() * 3
			ev := scoring.Evaluation{Sufficient: rng.Intn(5) > 0, Scores: scoring.Scores{}}
			if ev.Sufficient {
				for _, p := range model.Priority {
					ev.Scores[p] = rng.Float64()
				}
			}
			if d := s.Observe(now, ev); d.Changed {
				changes = append(changes, now)
			}
		}

		Convey("Then consecutive transitions are at least a cooldown apart", func() {
			So(len(changes), ShouldBeGreaterThan, 1)
			for i := 1; i < len(changes); i++ {
				So(changes[i]-changes[i-1], ShouldBeGreaterThanOrEqualTo, 6)
			}
			if len(changes) > 0 {
				So(changes[0], ShouldBeGreaterThanOrEqualTo, 6)
			}
		})
	})
}
