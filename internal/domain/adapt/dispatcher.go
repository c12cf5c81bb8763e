// Package adapt turns persona changes into world adaptations. It tracks every
// artifact it creates so that a later clear or re-apply never leaks one.
package adapt

import (
	"context"
	"errors"
	"fmt"

	"github.com/okian/persona/internal/domain/model"
	"github.com/okian/persona/pkg/logger"
	"github.com/okian/persona/pkg/metrics"
)

const defaultRefreshInterval = 8.0

// CommandKind tells a listener what a command did.
type CommandKind string

// Command kinds.
const (
	CommandClear CommandKind = "clear"
	CommandApply CommandKind = "apply"
)

// Command is one step of a transition, reported to the listener.
type Command struct {
	Kind       CommandKind   `json:"kind"`
	Persona    model.Persona `json:"persona"`
	Directives []Directive   `json:"directives,omitempty"`
}

// Listener is notified after every persona transition.
type Listener interface {
	OnPersonaChanged(old, new model.Persona, cmds []Command)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(old, new model.Persona, cmds []Command)

// OnPersonaChanged implements Listener.
func (f ListenerFunc) OnPersonaChanged(old, new model.Persona, cmds []Command) { f(old, new, cmds) }

// Dispatcher owns the artifacts of the active persona.
type Dispatcher struct {
	world           World
	plans           map[model.Persona]Plan
	refreshInterval float64
	listener        Listener
	logger          logger.Logger

	current   model.Persona
	lastApply float64
	active    map[Category][]Artifact
}

// NewDispatcher creates a dispatcher bound to world.
func NewDispatcher(world World, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		world:           world,
		plans:           DefaultPlans(),
		refreshInterval: defaultRefreshInterval,
		current:         model.Neutral,
		active:          make(map[Category][]Artifact),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = logger.Get().Named("adapt")
	}
	return d
}

// Current returns the persona whose plan is applied.
func (d *Dispatcher) Current() model.Persona { return d.current }

// ActiveCount returns the number of tracked artifacts.
func (d *Dispatcher) ActiveCount() int {
	n := 0
	for _, as := range d.active {
		n += len(as)
	}
	return n
}

// Artifacts returns a copy of the tracked artifacts in category order.
func (d *Dispatcher) Artifacts() []Artifact {
	out := make([]Artifact, 0, d.ActiveCount())
	for _, c := range Categories() {
		out = append(out, d.active[c]...)
	}
	return out
}

// Transition clears every artifact and applies the plan of next. The
// listener sees both commands even if some world calls failed.
func (d *Dispatcher) Transition(ctx context.Context, now float64, prev, next model.Persona) ([]Command, error) {
	if d.world == nil {
		return nil, ErrNoWorld
	}

	cmds := []Command{{Kind: CommandClear, Persona: prev}}
	clearErr := d.clear(ctx)

	apply, applyErr := d.apply(ctx, now, next)
	cmds = append(cmds, apply)

	for _, c := range cmds {
		metrics.RecordAdaptationCommand(string(c.Kind))
	}
	if d.listener != nil {
		d.listener.OnPersonaChanged(prev, next, cmds)
	}

	d.logger.Info(ctx, "adaptation applied",
		logger.String("from", string(prev)),
		logger.String("to", string(next)),
		logger.Int("artifacts", d.ActiveCount()),
	)
	return cmds, errors.Join(clearErr, applyErr)
}

// Apply realizes the plan of p. Each category touched by the plan has its
// previous artifacts removed first, so applying the same plan twice leaves
// the same artifacts count.
func (d *Dispatcher) Apply(ctx context.Context, now float64, p model.Persona) (Command, error) {
	if d.world == nil {
		return Command{}, ErrNoWorld
	}
	cmd, err := d.apply(ctx, now, p)
	metrics.RecordAdaptationCommand(string(cmd.Kind))
	return cmd, err
}

// Refresh re-applies the current plan when the refresh interval has elapsed
// since the last apply. It reports whether a re-apply happened.
func (d *Dispatcher) Refresh(ctx context.Context, now float64) (bool, error) {
	if d.world == nil || d.current == model.Neutral {
		return false, nil
	}
	if now-d.lastApply < d.refreshInterval {
		return false, nil
	}
	_, err := d.Apply(ctx, now, d.current)
	return true, err
}

// Close removes every tracked artifact and returns to Neutral.
func (d *Dispatcher) Close(ctx context.Context) error {
	if d.world == nil {
		return nil
	}
	err := d.clear(ctx)
	if d.current != model.Neutral {
		metrics.RecordAdaptationCommand(string(CommandClear))
	}
	d.current = model.Neutral
	return err
}

func (d *Dispatcher) apply(ctx context.Context, now float64, p model.Persona) (Command, error) {
	plan := d.plans[p]
	cmd := Command{Kind: CommandApply, Persona: p, Directives: append([]Directive(nil), plan.Directives...)}

	var errs []error
	replaced := make(map[Category]bool)
	for _, dir := range plan.Directives {
		if !replaced[dir.Category] {
			errs = append(errs, d.removeCategory(ctx, dir.Category))
			replaced[dir.Category] = true
		}
		made, err := d.world.Realize(ctx, dir)
		if err != nil {
			metrics.RecordAdaptationError()
			d.logger.Warn(ctx, "realize failed",
				logger.String("category", string(dir.Category)),
				logger.String("label", dir.Label),
				logger.Error(err),
			)
			errs = append(errs, fmt.Errorf("%w: %s %s: %w", ErrRealize, dir.Category, dir.Op, err))
		}
		d.active[dir.Category] = append(d.active[dir.Category], made...)
	}

	d.current = p
	d.lastApply = now
	metrics.UpdateActiveArtifacts(d.ActiveCount())
	return cmd, errors.Join(errs...)
}

func (d *Dispatcher) clear(ctx context.Context) error {
	var errs []error
	for _, c := range Categories() {
		errs = append(errs, d.removeCategory(ctx, c))
	}
	metrics.UpdateActiveArtifacts(d.ActiveCount())
	return errors.Join(errs...)
}

// removeCategory removes every artifact of c. Failed removals are reported
// and the artifact is forgotten; the world is expected to drop it on its own.
func (d *Dispatcher) removeCategory(ctx context.Context, c Category) error {
	var errs []error
	for _, a := range d.active[c] {
		status, err := d.world.Remove(ctx, a)
		if err != nil {
			metrics.RecordAdaptationError()
			d.logger.Warn(ctx, "remove failed", logger.String("artifact", a.ID), logger.Error(err))
			errs = append(errs, fmt.Errorf("%w: %s: %w", ErrRemove, a.ID, err))
			continue
		}
		if status == NotFound {
			d.logger.Debug(ctx, "artifact already gone", logger.String("artifact", a.ID))
		}
	}
	delete(d.active, c)
	return errors.Join(errs...)
}
