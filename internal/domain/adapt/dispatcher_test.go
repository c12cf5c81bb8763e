package adapt_test

import (
	"context"
	"errors"
	"testing"

	adapt "github.com/okian/persona/internal/domain/adapt"
	"github.com/okian/persona/internal/domain/model"
	"github.com/okian/persona/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

// flakyWorld fails removals of the listed artifact IDs and realization of one
// category.
type flakyWorld struct {
	adapt.NopWorld
	failRemove  map[string]bool
	failRealize adapt.Category
}

func (w *flakyWorld) Realize(ctx context.Context, d adapt.Directive) ([]adapt.Artifact, error) {
	if d.Category == w.failRealize {
		return nil, errors.New("scene unavailable")
	}
	return w.NopWorld.Realize(ctx, d)
}

func (w *flakyWorld) Remove(ctx context.Context, a adapt.Artifact) (adapt.RemoveStatus, error) {
	if w.failRemove[a.ID] {
		return adapt.Removed, errors.New("locked")
	}
	return w.NopWorld.Remove(ctx, a)
}

func TestDispatcher(t *testing.T) {
	ctx := context.Background()

	Convey("Given a dispatcher over a nop world", t, func() {
		world := &adapt.NopWorld{}
		var seen [][]adapt.Command
		d := adapt.NewDispatcher(world,
			adapt.WithLogger(logger.Nop()),
			adapt.WithListener(adapt.ListenerFunc(func(_, _ model.Persona, cmds []adapt.Command) {
				seen = append(seen, cmds)
			})),
		)

		Convey("When the player becomes an Explorer", func() {
			cmds, err := d.Transition(ctx, 6, model.Neutral, model.Explorer)

			Convey("Then a clear and an apply are issued and reported", func() {
				So(err, ShouldBeNil)
				So(cmds, ShouldHaveLength, 2)
				So(cmds[0].Kind, ShouldEqual, adapt.CommandClear)
				So(cmds[1].Kind, ShouldEqual, adapt.CommandApply)
				So(cmds[1].Persona, ShouldEqual, model.Explorer)
				So(seen, ShouldHaveLength, 1)
				So(d.Current(), ShouldEqual, model.Explorer)
				So(d.ActiveCount(), ShouldEqual, 6)
				So(world.Live(), ShouldEqual, 6)
			})

			Convey("And switching to Analyst leaves no Explorer artifact behind", func() {
				_, err := d.Transition(ctx, 12, model.Explorer, model.Analyst)
				So(err, ShouldBeNil)
				for _, a := range d.Artifacts() {
					So(a.Label, ShouldNotEqual, "Hidden Cache")
				}
				So(world.Live(), ShouldEqual, d.ActiveCount())
			})

			Convey("And applying the same persona again keeps the artifact count", func() {
				before := d.ActiveCount()
				_, err := d.Apply(ctx, 7, model.Explorer)
				So(err, ShouldBeNil)
				_, err = d.Apply(ctx, 8, model.Explorer)
				So(err, ShouldBeNil)
				So(d.ActiveCount(), ShouldEqual, before)
				So(world.Live(), ShouldEqual, before)
			})

			Convey("And Refresh waits for the refresh interval", func() {
				ok, err := d.Refresh(ctx, 10)
				So(err, ShouldBeNil)
				So(ok, ShouldBeFalse)
				ok, err = d.Refresh(ctx, 14)
				So(err, ShouldBeNil)
				So(ok, ShouldBeTrue)
				So(world.Live(), ShouldEqual, 6)
			})

			Convey("And Close removes everything", func() {
				So(d.Close(ctx), ShouldBeNil)
				So(d.ActiveCount(), ShouldEqual, 0)
				So(world.Live(), ShouldEqual, 0)
				So(d.Current(), ShouldEqual, model.Neutral)
			})
		})

		Convey("When the transition goes to Neutral", func() {
			_, err := d.Transition(ctx, 6, model.Neutral, model.Gambler)
			So(err, ShouldBeNil)
			_, err = d.Transition(ctx, 12, model.Gambler, model.Neutral)

			Convey("Then nothing is active and Refresh does nothing", func() {
				So(err, ShouldBeNil)
				So(d.ActiveCount(), ShouldEqual, 0)
				ok, _ := d.Refresh(ctx, 100)
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When clearing a clean dispatcher", func() {
			So(d.Close(ctx), ShouldBeNil)
			So(world.Live(), ShouldEqual, 0)
		})
	})

	Convey("Given a world that loses artifacts and fails some calls", t, func() {
		world := &flakyWorld{failRemove: map[string]bool{"beacon-1": true}}
		d := adapt.NewDispatcher(world, adapt.WithLogger(logger.Nop()))
		_, err := d.Transition(ctx, 6, model.Neutral, model.Explorer)
		So(err, ShouldBeNil)

		Convey("When an artifact vanished before removal", func() {
			_, _ = world.NopWorld.Remove(ctx, adapt.Artifact{ID: "tokens-4"})
			err := d.Close(ctx)

			Convey("Then NotFound is not an error but the failed removal is", func() {
				So(errors.Is(err, adapt.ErrRemove), ShouldBeTrue)
				So(d.ActiveCount(), ShouldEqual, 0)
			})
		})

		Convey("When a directive cannot be realized", func() {
			world.failRealize = adapt.CategoryMarkers
			_, err := d.Transition(ctx, 12, model.Explorer, model.Analyst)

			Convey("Then the rest of the plan is still applied", func() {
				So(errors.Is(err, adapt.ErrRealize), ShouldBeTrue)
				So(d.Current(), ShouldEqual, model.Analyst)
				So(d.ActiveCount(), ShouldBeGreaterThan, 0)
			})
		})
	})

	Convey("Given a dispatcher without a world", t, func() {
		d := adapt.NewDispatcher(nil, adapt.WithLogger(logger.Nop()))
		_, err := d.Transition(ctx, 0, model.Neutral, model.Explorer)
		So(errors.Is(err, adapt.ErrNoWorld), ShouldBeTrue)
	})
}

func TestDefaultPlans(t *testing.T) {
	Convey("Given the default plans", t, func() {
		plans := adapt.DefaultPlans()

		Convey("Then every persona has one and Neutral is empty", func() {
			for _, p := range model.All() {
				_, ok := plans[p]
				So(ok, ShouldBeTrue)
			}
			So(plans[model.Neutral].Directives, ShouldBeEmpty)
			So(plans[model.Explorer].Directives[0].Label, ShouldEqual, "Hidden Cache")
			So(plans[model.Verifier].Directives[0].Target, ShouldEqual, adapt.TargetNear)
		})
	})
}
