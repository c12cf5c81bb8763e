package synth_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/persona/internal/analyzer"
	"github.com/okian/persona/internal/domain/model"
	"github.com/okian/persona/internal/sessionlog"
	"github.com/okian/persona/internal/synth"
	"github.com/okian/persona/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	_ = logger.Init(logger.WithOutput(io.Discard))
	os.Exit(m.Run())
}

var start = time.Date(2024, 3, 9, 14, 0, 0, 0, time.UTC)

func TestSimulate(t *testing.T) {
	ctx := context.Background()

	Convey("Given the bot profiles", t, func() {
		So(synth.Profiles(), ShouldHaveLength, 7)
		_, ok := synth.Lookup("gambler")
		So(ok, ShouldBeTrue)
		_, ok = synth.Lookup("wizard")
		So(ok, ShouldBeFalse)

		Convey("When the explorer bot plays a minute", func() {
			p, _ := synth.Lookup("explorer")
			sum, err := synth.Simulate(ctx, p, 1, 60, 0.1, start)
			So(err, ShouldBeNil)

			Convey("Then the whole session reads as Explorer", func() {
				top, _ := sum.Scores.Best(0.25)
				So(top, ShouldEqual, model.Explorer)
				So(sum.Log.Positions, ShouldHaveLength, 600)
				So(sum.Log.Meta.Map, ShouldEqual, "synthetic")
			})
		})

		Convey("When the gambler bot plays a minute", func() {
			p, _ := synth.Lookup("gambler")
			sum, err := synth.Simulate(ctx, p, 1, 60, 0.1, start)
			So(err, ShouldBeNil)

			Convey("Then it takes risks and reads as Gambler", func() {
				So(sum.Final.RiskyCount, ShouldBeGreaterThan, 10)
				top, _ := sum.Scores.Best(0.25)
				So(top, ShouldEqual, model.Gambler)
			})
		})

		Convey("When the same seed is replayed", func() {
			p, _ := synth.Lookup("achiever")
			a, err := synth.Simulate(ctx, p, 42, 20, 0.1, start)
			So(err, ShouldBeNil)
			b, err := synth.Simulate(ctx, p, 42, 20, 0.1, start)
			So(err, ShouldBeNil)

			Convey("Then the sessions match", func() {
				So(b.Log.Actions, ShouldResemble, a.Log.Actions)
				So(b.Final, ShouldResemble, a.Final)
			})
		})

		Convey("When the speedrunner is asked for a long session", func() {
			p, _ := synth.Lookup("speedrunner")
			sum, err := synth.Simulate(ctx, p, 1, 600, 0.1, start)

			Convey("Then its sprint cap applies", func() {
				So(err, ShouldBeNil)
				So(sum.Log.Meta.TotalTime, ShouldAlmostEqual, 30, 1e-9)
			})
		})

		Convey("When the context is already canceled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			p, _ := synth.Lookup("explorer")
			_, err := synth.Simulate(cctx, p, 1, 10, 0.1, start)
			So(err, ShouldEqual, context.Canceled)
		})
	})
}

func TestRun(t *testing.T) {
	ctx := context.Background()

	Convey("Given a generator configuration", t, func() {
		dir := filepath.Join(t.TempDir(), "logs")
		cfg := synth.Config{OutDir: dir, Sessions: 4, Seed: 9, Duration: 20, Workers: 3, Bots: []string{"explorer", "gambler"}, Start: start}

		Convey("When it runs", func() {
			stats, err := synth.Run(ctx, cfg)
			So(err, ShouldBeNil)

			Convey("Then one log per session is written and readable", func() {
				So(stats.Generated, ShouldEqual, 4)
				So(stats.Failed, ShouldEqual, 0)
				files, err := sessionlog.List(dir, "")
				So(err, ShouldBeNil)
				So(files, ShouldHaveLength, 4)
				So(stats.Results[0].Profile, ShouldEqual, "explorer")
				So(stats.Results[1].Profile, ShouldEqual, "gambler")
			})

			Convey("Then the analyzer scores every generated log", func() {
				report, err := analyzer.New(analyzer.WithLogger(logger.Nop()), analyzer.WithClusterer(nil)).Analyze(ctx, dir)
				So(err, ShouldBeNil)
				So(report.Entries, ShouldHaveLength, 4)
				So(report.Skipped, ShouldBeEmpty)
				So(report.Counts[model.Explorer], ShouldEqual, 2)
				So(report.Counts[model.Gambler], ShouldEqual, 2)
			})
		})

		Convey("When the output path is a file", func() {
			blocked := filepath.Join(t.TempDir(), "blocked")
			So(os.WriteFile(blocked, []byte("x"), 0o600), ShouldBeNil)
			cfg.OutDir = blocked

			stats, err := synth.Run(ctx, cfg)

			Convey("Then every session counts as failed", func() {
				So(err, ShouldNotBeNil)
				So(stats.Generated, ShouldEqual, 0)
				So(stats.Failed, ShouldEqual, 4)
				So(errors.Is(stats.Results[0].Err, sessionlog.ErrWriteLog), ShouldBeTrue)
			})
		})

		Convey("When an unknown bot is named", func() {
			cfg.Bots = []string{"wizard"}
			_, err := synth.Run(ctx, cfg)
			So(err, ShouldNotBeNil)
		})
	})
}
