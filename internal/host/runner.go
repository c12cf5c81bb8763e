package host

import (
	"context"
	"errors"
	"time"

	"github.com/okian/persona/internal/adapters/mq/queue"
	"github.com/okian/persona/internal/app"
	"github.com/okian/persona/internal/sessionlog"
	"github.com/okian/persona/pkg/logger"
)

// Default runner configuration constants.
const (
	defaultTickInterval = 100 * time.Millisecond
	defaultLogDir       = "logs"
)

// Runner drives one session from queued commands at a fixed tick.
type Runner struct {
	session  *app.Session
	world    *World
	queue    *queue.InMemoryQueue[Command]
	interval time.Duration
	logDir   string
	display  Display
	clock    func() time.Time
	logger   logger.Logger

	last   float64
	status string
}

// NewRunner wires session, world and the command queue the front-end fills.
func NewRunner(session *app.Session, world *World, q *queue.InMemoryQueue[Command], opts ...Option) *Runner {
	r := &Runner{
		session:  session,
		world:    world,
		queue:    q,
		interval: defaultTickInterval,
		logDir:   defaultLogDir,
		clock:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = logger.Get().Named("runner")
	}
	return r
}

// Step runs one tick at session time now: the commands queued when the tick
// starts are applied, the player position is sampled and the session ticks.
// Commands arriving meanwhile wait for the next tick. It reports whether the
// player asked to quit.
func (r *Runner) Step(ctx context.Context, now float64) bool {
	quit := false
	for n := r.queue.Len(); n > 0 && !quit; n-- {
		c, ok := r.queue.TryDequeue()
		if !ok {
			break
		}
		quit = r.apply(c)
	}

	x, y, z := r.world.Position()
	r.session.OnPosition3D(x, y, z)
	r.session.OnTick(ctx, now, now-r.last)
	r.last = now

	if r.display != nil {
		r.display.Draw(HUD{
			Now:         now,
			Persona:     r.session.View().Persona,
			Status:      r.status,
			X:           x,
			Z:           z,
			Artifacts:   len(r.world.Artifacts()),
			Boxes:       r.world.Boxes(),
			HiddenWalls: r.world.HiddenWalls(),
			Cells:       r.world.Cells(),
		})
	}
	return quit
}

func (r *Runner) apply(c Command) bool {
	switch c.Kind {
	case CommandQuit:
		r.session.OnAction("escape")
		return true
	case CommandMove:
		r.outOfBounds(r.world.Move(c.DX, c.DZ))
	case CommandTeleport:
		r.outOfBounds(r.world.Teleport(c.X, c.Z))
	case CommandAction:
		r.session.OnAction(c.Label)
		r.status = c.Label
		switch c.Label {
		case LabelRestart:
			r.world.Respawn()
		case LabelSpawn:
			r.world.Spawn()
		case LabelUndo:
			r.world.Undo()
		}
	}
	return false
}

func (r *Runner) outOfBounds(left bool) {
	if !left {
		return
	}
	r.session.OnAction(LabelOutOfBounds)
	r.session.OnAction(LabelRespawn)
	r.status = "respawned"
}

// Run ticks until the front-end quits or ctx is done, then closes the session
// and writes its log. It returns the log path.
func (r *Runner) Run(ctx context.Context, front Frontend) (string, error) {
	inputCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	frontErr := make(chan error, 1)
	go func() { frontErr <- front.Run(inputCtx, r.queue) }()

	r.logger.Info(ctx, "session started",
		logger.String("session_id", r.session.ID()),
		logger.Duration("tick", r.interval),
	)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	start := time.Now()

loop:
	for {
		select {
		case <-ctx.Done():
			r.logger.Info(ctx, "interrupted, saving session")
			break loop
		case t := <-ticker.C:
			if r.Step(ctx, t.Sub(start).Seconds()) {
				break loop
			}
		}
	}
	cancel()

	var inputErr error
	select {
	case inputErr = <-frontErr:
	default:
	}
	path, err := r.Finish(context.WithoutCancel(ctx))
	return path, errors.Join(err, inputErr)
}

// Finish closes the session and saves its log. When the log directory is not
// writable the log lands in the system temp directory and the error is
// returned with that path.
func (r *Runner) Finish(ctx context.Context) (string, error) {
	_ = r.queue.Close()

	sum, closeErr := r.session.Close(ctx)
	if sum == nil {
		return "", closeErr
	}

	path, err := sessionlog.Save(r.logDir, sum.Log, r.clock())
	switch {
	case err != nil && path != "":
		r.logger.Error(ctx, "log directory not writable, saved partial log", logger.String("path", path), logger.Error(err))
	case err != nil:
		r.logger.Error(ctx, "saving session log failed", logger.Error(err))
	default:
		r.logger.Info(ctx, "session log saved",
			logger.String("path", path),
			logger.String("persona", string(sum.Persona)),
		)
	}
	return path, errors.Join(closeErr, err)
}
