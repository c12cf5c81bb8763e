package host_test

import (
	"context"
	"errors"
	"io"
	"os"
	"testing"

	"github.com/okian/persona/internal/domain/adapt"
	"github.com/okian/persona/internal/domain/model"
	"github.com/okian/persona/internal/host"
	"github.com/okian/persona/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	_ = logger.Init(logger.WithOutput(io.Discard))
	os.Exit(m.Run())
}

func TestWorld(t *testing.T) {
	ctx := context.Background()

	Convey("Given a seeded world", t, func() {
		w := host.NewWorld(28, 7)

		Convey("Then the same seed gives the same grid", func() {
			So(host.NewWorld(28, 7).Cells(), ShouldResemble, w.Cells())
			So(w.Walls(), ShouldBeGreaterThan, 0)
		})

		Convey("Then the player starts at the centre", func() {
			x, y, z := w.Position()
			So(x, ShouldEqual, 14)
			So(y, ShouldEqual, 1)
			So(z, ShouldEqual, 14)
			So(w.Cells()[14][14], ShouldEqual, host.GlyphPlayer)
		})

		Convey("When the player walks inside the grid", func() {
			left := w.Move(1, -2)

			Convey("Then it moves without leaving bounds", func() {
				So(left, ShouldBeFalse)
				x, _, z := w.Position()
				So(x, ShouldEqual, 15)
				So(z, ShouldEqual, 12)
			})
		})

		Convey("When the player leaves the grid without a checkpoint", func() {
			So(w.Teleport(3, 3), ShouldBeFalse)
			left := w.Move(-10, 0)

			Convey("Then it respawns at the centre", func() {
				So(left, ShouldBeTrue)
				x, _, z := w.Position()
				So(x, ShouldEqual, 14)
				So(z, ShouldEqual, 14)
			})
		})

		Convey("When a checkpoint is placed", func() {
			arts, err := w.Realize(ctx, adapt.Directive{Category: adapt.CategoryCheckpoint, Op: adapt.OpPlace, Target: adapt.TargetNear, Count: 1})
			So(err, ShouldBeNil)
			So(arts, ShouldHaveLength, 1)

			Convey("Then leaving the grid respawns there", func() {
				So(w.Teleport(100, 0), ShouldBeTrue)
				x, _, z := w.Position()
				So(x, ShouldEqual, arts[0].X)
				So(z, ShouldEqual, arts[0].Z)
			})

			Convey("And removing it clears the respawn point", func() {
				st, err := w.Remove(ctx, arts[0])
				So(err, ShouldBeNil)
				So(st, ShouldEqual, adapt.Removed)
				_, _, ok := w.Checkpoint()
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When a beacon is placed far away", func() {
			arts, err := w.Realize(ctx, adapt.Directive{Category: adapt.CategoryBeacon, Op: adapt.OpPlace, Label: "Hidden Cache", Target: adapt.TargetFar, Count: 1})
			So(err, ShouldBeNil)

			Convey("Then it lands on a distant floor tile with a uuid", func() {
				a := arts[0]
				So(a.ID, ShouldHaveLength, 36)
				So(a.Label, ShouldEqual, "Hidden Cache")
				So((a.X-14)*(a.X-14)+(a.Z-14)*(a.Z-14), ShouldBeGreaterThan, 100)
				So(w.Cells()[int(a.Z)][int(a.X)], ShouldEqual, host.GlyphBeacon)
			})
		})

		Convey("When a marker path asks for several tiles", func() {
			arts, err := w.Realize(ctx, adapt.Directive{Category: adapt.CategoryMarkers, Op: adapt.OpMark, Target: adapt.TargetCenter, Count: 6})
			So(err, ShouldBeNil)

			Convey("Then each marker gets its own tile", func() {
				So(arts, ShouldHaveLength, 6)
				seen := map[[2]float64]bool{}
				for _, a := range arts {
					seen[[2]float64{a.X, a.Z}] = true
				}
				So(seen, ShouldHaveLength, 6)
			})
		})

		Convey("When every wall is hidden", func() {
			arts, err := w.Realize(ctx, adapt.Directive{Category: adapt.CategoryObstacles, Op: adapt.OpHide, Fraction: 1})
			So(err, ShouldBeNil)
			So(w.HiddenWalls(), ShouldEqual, w.Walls())

			Convey("Then removing the directive restores them", func() {
				st, err := w.Remove(ctx, arts[0])
				So(err, ShouldBeNil)
				So(st, ShouldEqual, adapt.Removed)
				So(w.HiddenWalls(), ShouldEqual, 0)
			})
		})

		Convey("When a partial share is hidden", func() {
			_, err := w.Realize(ctx, adapt.Directive{Category: adapt.CategoryObstacles, Op: adapt.OpHide, Fraction: 0.3})
			So(err, ShouldBeNil)

			Convey("Then only that share disappears", func() {
				So(w.HiddenWalls(), ShouldBeGreaterThan, 0)
				So(w.HiddenWalls(), ShouldBeLessThan, w.Walls())
			})
		})

		Convey("When an unknown artifact is removed", func() {
			st, err := w.Remove(ctx, adapt.Artifact{ID: "nope"})

			Convey("Then it is reported as not found", func() {
				So(err, ShouldBeNil)
				So(st, ShouldEqual, adapt.NotFound)
			})
		})

		Convey("When a directive has an unknown op", func() {
			_, err := w.Realize(ctx, adapt.Directive{Category: adapt.CategoryTiles, Op: "melt"})
			So(errors.Is(err, host.ErrUnsupportedOp), ShouldBeTrue)
		})

		Convey("When boxes are spawned and undone", func() {
			w.Spawn()
			w.Spawn()
			So(w.Boxes(), ShouldEqual, 2)
			So(w.Undo(), ShouldBeTrue)
			So(w.Undo(), ShouldBeTrue)
			So(w.Undo(), ShouldBeFalse)
		})

		Convey("When the dispatcher applies and clears the Explorer plan", func() {
			d := adapt.NewDispatcher(w, adapt.WithLogger(logger.Nop()))
			_, err := d.Transition(ctx, 0, model.Neutral, model.Explorer)
			So(err, ShouldBeNil)
			So(w.Artifacts(), ShouldHaveLength, d.ActiveCount())
			So(w.HiddenWalls(), ShouldBeGreaterThan, 0)

			So(d.Close(ctx), ShouldBeNil)

			Convey("Then the world is back to its initial state", func() {
				So(w.Artifacts(), ShouldBeEmpty)
				So(w.HiddenWalls(), ShouldEqual, 0)
				_, _, ok := w.Checkpoint()
				So(ok, ShouldBeFalse)
			})
		})
	})
}
