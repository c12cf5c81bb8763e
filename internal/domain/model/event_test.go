package model_test

import (
	"encoding/json"
	"errors"
	"testing"

	model "github.com/okian/persona/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestClassifyAction(t *testing.T) {
	convey.Convey("Given raw action labels", t, func() {
		convey.Convey("When a known label is classified", func() {
			convey.So(model.ClassifyAction("jump"), convey.ShouldEqual, model.ActionJump)
			convey.So(model.ClassifyAction(" Interact "), convey.ShouldEqual, model.ActionInteract)
			convey.So(model.ClassifyAction("out_of_bounds"), convey.ShouldEqual, model.ActionOutOfBounds)
		})

		convey.Convey("When both spellings of the risky label are used", func() {
			convey.Convey("Then they map to the same kind", func() {
				convey.So(model.ClassifyAction("risky"), convey.ShouldEqual, model.ActionRisky)
				convey.So(model.ClassifyAction("risky_action"), convey.ShouldEqual, model.ActionRisky)
			})
		})

		convey.Convey("When an unknown label is classified", func() {
			k := model.ClassifyAction("dance")

			convey.Convey("Then it lands in the unrecognized bucket", func() {
				convey.So(k, convey.ShouldEqual, model.ActionUnrecognized)
				convey.So(k.Recognized(), convey.ShouldBeFalse)
				convey.So(k.String(), convey.ShouldEqual, "unrecognized")
			})
		})

		convey.Convey("When an event is marshalled", func() {
			ev := model.NewActionEvent("risky_action", 1.25)
			b, err := json.Marshal(ev)

			convey.Convey("Then the kind is written by name and read back", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(string(b), convey.ShouldContainSubstring, `"kind":"risky"`)
				var back model.ActionEvent
				convey.So(json.Unmarshal(b, &back), convey.ShouldBeNil)
				convey.So(back, convey.ShouldResemble, ev)
			})
		})
	})
}

func TestPersona(t *testing.T) {
	convey.Convey("Given the persona enumeration", t, func() {
		convey.Convey("Then the priority order is fixed", func() {
			convey.So(model.Priority[0], convey.ShouldEqual, model.Explorer)
			convey.So(model.Priority[1], convey.ShouldEqual, model.Analyst)
			convey.So(model.Priority[2], convey.ShouldEqual, model.Verifier)
			convey.So(model.Priority, convey.ShouldNotContain, model.Neutral)
			convey.So(model.Rank(model.Explorer), convey.ShouldBeLessThan, model.Rank(model.Speedrunner))
			convey.So(model.Rank(model.Neutral), convey.ShouldEqual, len(model.Priority))
		})

		convey.Convey("When names are parsed", func() {
			p, err := model.ParsePersona("explorer")
			convey.So(err, convey.ShouldBeNil)
			convey.So(p, convey.ShouldEqual, model.Explorer)

			_, err = model.ParsePersona("bard")
			convey.So(errors.Is(err, model.ErrUnknownPersona), convey.ShouldBeTrue)
		})

		convey.Convey("Then validity is exact", func() {
			convey.So(model.Neutral.Valid(), convey.ShouldBeTrue)
			convey.So(model.Persona("explorer").Valid(), convey.ShouldBeFalse)
			convey.So(model.Persona("").Valid(), convey.ShouldBeFalse)
		})
	})
}

func TestSessionLog(t *testing.T) {
	convey.Convey("Given session logs", t, func() {
		convey.Convey("When meta.total_time is present", func() {
			l := model.SessionLog{StartTime: 100, EndTime: 160, Meta: model.LogMeta{TotalTime: 59.5}}
			convey.So(l.Duration(), convey.ShouldEqual, 59.5)
		})

		convey.Convey("When only start and end are present", func() {
			l := model.SessionLog{StartTime: 100, EndTime: 160}
			convey.So(l.Duration(), convey.ShouldEqual, 60)
		})

		convey.Convey("When timestamps are missing", func() {
			l := model.SessionLog{Positions: [][3]float64{{0, 0, 0}}, Actions: []string{"jump"}}
			convey.So(l.Timed(), convey.ShouldBeFalse)
			l.PositionT = []float64{0}
			l.ActionT = []float64{0}
			convey.So(l.Timed(), convey.ShouldBeTrue)
		})
	})
}
