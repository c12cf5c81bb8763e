package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell"

	"github.com/okian/persona/internal/adapters/http/api"
	"github.com/okian/persona/internal/adapters/mq/queue"
	"github.com/okian/persona/internal/adapters/repository"
	"github.com/okian/persona/internal/analyzer"
	app "github.com/okian/persona/internal/app"
	"github.com/okian/persona/internal/config"
	"github.com/okian/persona/internal/host"
	"github.com/okian/persona/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

// Exit codes.
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

const (
	modeRun     = "run"
	modeAnalyze = "analyze"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run parses args, loads configuration and dispatches to a mode:
//
//	persona [-config file] [run]
//	persona [-config file] analyze [dir]
//
// With no mode it runs a live session.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("persona", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "YAML configuration file (default $"+config.EnvConfigFile+")")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: persona [-config file] [run | analyze [dir]]  (mode defaults to run)")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	mode := modeRun
	rest := fs.Args()
	if len(rest) > 0 {
		mode, rest = rest[0], rest[1:]
	}
	switch {
	case mode != modeRun && mode != modeAnalyze:
		fmt.Fprintf(stderr, "unknown mode %q\n", mode)
		fs.Usage()
		return exitUsage
	case mode == modeRun && len(rest) > 0, mode == modeAnalyze && len(rest) > 1:
		fs.Usage()
		return exitUsage
	}

	if err := logger.Init(logger.WithOutput(stderr)); err != nil {
		fmt.Fprintln(stderr, "failed to initialize logging:", err)
		return exitFailure
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Get()

	cfg, err := config.Load(ctx, *configPath)
	if err != nil {
		fmt.Fprintln(stderr, "failed to load config:", err)
		return exitFailure
	}
	if cfg.LogFormat == "json" {
		_ = logger.Init(logger.WithOutput(stderr), logger.WithJSON(true))
		log = logger.Get()
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	if mode == modeAnalyze {
		dir := cfg.LogDir
		if len(rest) == 1 {
			dir = rest[0]
		}
		err = analyze(ctx, cfg, dir, stdout, log)
	} else {
		err = play(ctx, cfg, stdin, stdout, log)
	}
	if err != nil {
		log.Error(ctx, mode+" failed", logger.Error(err))
		fmt.Fprintln(stderr, "error:", err)
		return exitFailure
	}
	return exitOK
}

// analyze scores every log in dir and prints the report.
func analyze(ctx context.Context, cfg *config.Config, dir string, stdout io.Writer, log logger.Logger) error {
	scorer, err := app.ScorerFromConfig(cfg)
	if err != nil {
		return err
	}
	opts := []analyzer.Option{analyzer.WithLogger(log.Named("analyzer"))}
	if cfg.ReportDB != "" {
		store, err := repository.NewSQLiteStore(cfg.ReportDB)
		if err != nil {
			return err
		}
		defer store.Close()
		opts = append(opts, analyzer.WithArchive(store))
	}
	a, err := analyzer.NewFromConfig(cfg, scorer, opts...)
	if err != nil {
		return err
	}

	report, err := a.Analyze(ctx, dir)
	if report != nil {
		if rerr := report.Render(stdout); rerr != nil {
			return errors.Join(err, rerr)
		}
	}
	return err
}

// play runs one live session against the built-in grid world.
func play(ctx context.Context, cfg *config.Config, stdin io.Reader, stdout io.Writer, log logger.Logger) error {
	world := host.NewWorld(cfg.WorldSize, cfg.WorldSeed)
	session, err := app.NewSessionFromConfig(cfg, world, app.WithLogger(log.Named("session")))
	if err != nil {
		return err
	}

	input := queue.NewInMemoryQueue[host.Command](
		queue.WithCapacity(cfg.InputQueueSize),
		queue.WithName("input"),
	)
	opts := []host.Option{
		host.WithTickInterval(cfg.SampleIntervalSeconds),
		host.WithLogDir(cfg.LogDir),
		host.WithLogger(log.Named("host")),
	}

	var front host.Frontend
	switch cfg.Input {
	case config.InputTerminal:
		screen, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("open terminal: %w", err)
		}
		tf, err := host.NewTerminalFrontend(screen, log.Named("terminal"))
		if err != nil {
			return err
		}
		defer tf.Close()
		front = tf
		opts = append(opts, host.WithDisplay(tf))
	default:
		front = host.NewLineFrontend(stdin, log.Named("input"))
	}

	if cfg.HTTPAddr != "" {
		var reports repository.Store
		if cfg.ReportDB != "" {
			store, err := repository.NewSQLiteStore(cfg.ReportDB)
			if err != nil {
				return err
			}
			defer store.Close()
			reports = store
		}
		stopHTTP := serveObserver(ctx, cfg.HTTPAddr, api.NewServer(session, reports), log)
		defer stopHTTP()
	}

	runner := host.NewRunner(session, world, input, opts...)
	path, err := runner.Run(ctx, front)
	if path != "" {
		fmt.Fprintln(stdout, "session log written to", path)
	}
	return err
}

// serveObserver starts the HTTP observer and returns its shutdown func.
func serveObserver(ctx context.Context, addr string, s *api.Server, log logger.Logger) func() {
	mux := http.NewServeMux()
	s.Register(ctx, mux)

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP observer", logger.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "HTTP observer failed", logger.Error(err))
		}
	}()

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error(ctx, "observer shutdown failed", logger.Error(err))
		}
	}
}
