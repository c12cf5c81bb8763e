package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/okian/persona/internal/synth"
	"github.com/okian/persona/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	_ = logger.Init(logger.WithOutput(io.Discard))
	os.Exit(m.Run())
}

func TestRunUsage(t *testing.T) {
	Convey("Given the persona command", t, func() {
		var stdout, stderr bytes.Buffer
		ctx := context.Background()

		Convey("When the mode is unknown", func() {
			code := run(ctx, []string{"replay"}, strings.NewReader(""), &stdout, &stderr)

			Convey("Then it exits with a usage error", func() {
				So(code, ShouldEqual, exitUsage)
				So(stderr.String(), ShouldContainSubstring, `unknown mode "replay"`)
			})
		})

		Convey("When no mode is given", func() {
			dir := t.TempDir()
			t.Setenv("PERSONA_LOG_DIR", dir)
			code := run(ctx, nil, strings.NewReader("quit\n"), &stdout, &stderr)

			Convey("Then it runs a live session", func() {
				So(code, ShouldEqual, exitOK)
				So(stdout.String(), ShouldContainSubstring, "session log written to "+dir)
			})
		})

		Convey("When a flag is unknown", func() {
			So(run(ctx, []string{"-verbose"}, strings.NewReader(""), &stdout, &stderr), ShouldEqual, exitUsage)
		})

		Convey("When extra arguments follow a mode", func() {
			So(run(ctx, []string{"run", "now"}, strings.NewReader(""), &stdout, &stderr), ShouldEqual, exitUsage)
			So(run(ctx, []string{"analyze", "a", "b"}, strings.NewReader(""), &stdout, &stderr), ShouldEqual, exitUsage)
		})

		Convey("When the config file does not exist", func() {
			code := run(ctx, []string{"-config", filepath.Join(t.TempDir(), "missing.yaml"), "analyze"}, strings.NewReader(""), &stdout, &stderr)

			Convey("Then it exits with a runtime error", func() {
				So(code, ShouldEqual, exitFailure)
				So(stderr.String(), ShouldContainSubstring, "failed to load config")
			})
		})
	})
}

func TestRunAnalyze(t *testing.T) {
	Convey("Given a directory of generated session logs", t, func() {
		dir := t.TempDir()
		ctx := context.Background()
		_, err := synth.Run(ctx, synth.Config{
			OutDir:   dir,
			Sessions: 2,
			Seed:     3,
			Duration: 30,
			Bots:     []string{"explorer", "gambler"},
		})
		So(err, ShouldBeNil)
		_ = logger.Init(logger.WithOutput(io.Discard))

		Convey("When analyze runs on it with an archive", func() {
			t.Setenv("PERSONA_REPORT_DB", filepath.Join(t.TempDir(), "runs.db"))
			var stdout, stderr bytes.Buffer
			code := run(ctx, []string{"analyze", dir}, strings.NewReader(""), &stdout, &stderr)

			Convey("Then the report is printed", func() {
				So(code, ShouldEqual, exitOK)
				So(stdout.String(), ShouldContainSubstring, "Analyzed 2 of 2 logs")
				So(stdout.String(), ShouldContainSubstring, "=== Persona Counts ===")
			})
		})

		Convey("When analyze reads the configured log directory", func() {
			t.Setenv("PERSONA_LOG_DIR", dir)
			var stdout, stderr bytes.Buffer
			So(run(ctx, []string{"analyze"}, strings.NewReader(""), &stdout, &stderr), ShouldEqual, exitOK)
			So(stdout.String(), ShouldContainSubstring, dir)
		})
	})
}

func TestRunSession(t *testing.T) {
	Convey("Given line input that walks, interacts and quits", t, func() {
		dir := t.TempDir()
		t.Setenv("PERSONA_LOG_DIR", dir)
		var stdout, stderr bytes.Buffer

		code := run(context.Background(), []string{"run"}, strings.NewReader("d d w\ne\nquit\n"), &stdout, &stderr)

		Convey("Then a session log is written to the log directory", func() {
			So(code, ShouldEqual, exitOK)
			So(stdout.String(), ShouldContainSubstring, "session log written to "+dir)

			entries, err := os.ReadDir(dir)
			So(err, ShouldBeNil)
			So(entries, ShouldHaveLength, 1)
		})
	})
}
