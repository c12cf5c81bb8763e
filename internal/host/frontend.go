package host

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gdamore/tcell"

	"github.com/okian/persona/internal/domain/model"
	"github.com/okian/persona/pkg/logger"
)

// Sink accepts commands without blocking. The runner's queue is one.
type Sink interface {
	Enqueue(ctx context.Context, c Command) bool
}

// Frontend produces commands until the player quits or ctx is done.
type Frontend interface {
	Run(ctx context.Context, sink Sink) error
}

// HUD is what a Display shows after each tick.
type HUD struct {
	Now         float64
	Persona     model.Persona
	Status      string
	X, Z        float64
	Artifacts   int // realized in the world
	Boxes       int
	HiddenWalls int
	Cells       [][]rune
}

// Display renders the HUD.
type Display interface {
	Draw(h HUD)
}

// LineFrontend reads commands from text lines, one or more words per line.
// End of input quits.
type LineFrontend struct {
	r      io.Reader
	logger logger.Logger
}

// NewLineFrontend reads from r.
func NewLineFrontend(r io.Reader, l logger.Logger) *LineFrontend {
	if l == nil {
		l = logger.Get().Named("input")
	}
	return &LineFrontend{r: r, logger: l}
}

// Run implements Frontend.
func (f *LineFrontend) Run(ctx context.Context, sink Sink) error {
	lines := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(f.r)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		errc <- sc.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				sink.Enqueue(ctx, Command{Kind: CommandQuit})
				select {
				case err := <-errc:
					if err != nil {
						return fmt.Errorf("read input: %w", err)
					}
				default:
				}
				return nil
			}
			cmds, err := ParseLine(line)
			if err != nil {
				f.logger.Warn(ctx, "ignoring input", logger.String("line", line), logger.Error(err))
				continue
			}
			for _, c := range cmds {
				if !sink.Enqueue(ctx, c) {
					f.logger.Warn(ctx, "input queue full, command dropped", logger.String("line", line))
				}
				if c.Kind == CommandQuit {
					return nil
				}
			}
		}
	}
}

// TerminalFrontend captures keys from a tcell screen and draws the HUD on it.
type TerminalFrontend struct {
	screen tcell.Screen
	logger logger.Logger
}

// NewTerminalFrontend initializes screen. Call Close to restore the terminal.
func NewTerminalFrontend(screen tcell.Screen, l logger.Logger) (*TerminalFrontend, error) {
	if l == nil {
		l = logger.Get().Named("terminal")
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("init terminal: %w", err)
	}
	screen.Clear()
	return &TerminalFrontend{screen: screen, logger: l}, nil
}

// Run implements Frontend.
func (f *TerminalFrontend) Run(ctx context.Context, sink Sink) error {
	go func() {
		<-ctx.Done()
		_ = f.screen.PostEvent(tcell.NewEventInterrupt(nil))
	}()

	for {
		ev := f.screen.PollEvent()
		if ev == nil {
			return nil // screen finalized
		}
		switch ev := ev.(type) {
		case *tcell.EventInterrupt:
			if ctx.Err() != nil {
				return nil
			}
		case *tcell.EventResize:
			f.screen.Sync()
		case *tcell.EventKey:
			c, ok := KeyCommand(ev)
			if !ok {
				continue
			}
			if !sink.Enqueue(ctx, c) {
				f.logger.Debug(ctx, "input queue full, key dropped")
			}
			if c.Kind == CommandQuit {
				return nil
			}
		case *tcell.EventError:
			return errors.New(ev.Error())
		}
	}
}

var (
	styleDefault = tcell.StyleDefault
	styleStatus  = tcell.StyleDefault.Background(tcell.ColorDarkBlue).Foreground(tcell.ColorWhite)
	stylePlayer  = tcell.StyleDefault.Foreground(tcell.ColorLightGreen)
	styleWall    = tcell.StyleDefault.Foreground(tcell.ColorSlateGray)
	styleMarker  = tcell.StyleDefault.Foreground(tcell.ColorYellow)
)

// Draw implements Display. The first two rows hold the persona line and the
// key help; the grid follows.
func (f *TerminalFrontend) Draw(h HUD) {
	s := f.screen
	s.Clear()
	width, _ := s.Size()

	status := fmt.Sprintf(" Persona: %-12s t=%6.1fs  pos=(%.0f,%.0f)  artifacts=%d  boxes=%d  hidden=%d  %s",
		h.Persona, h.Now, h.X, h.Z, h.Artifacts, h.Boxes, h.HiddenWalls, h.Status)
	f.text(0, 0, padRight(status, width), styleStatus)
	f.text(0, 1, " wasd move · space jump · e interact · q risky · r restart · b spawn · u undo · h hint · esc quit", styleDefault)

	for z, row := range h.Cells {
		for x, r := range row {
			st := styleDefault
			switch r {
			case GlyphPlayer:
				st = stylePlayer
			case GlyphWall:
				st = styleWall
			case GlyphBeacon, GlyphCheckpoint, GlyphMarker, GlyphTile, GlyphToken:
				st = styleMarker
			}
			s.SetContent(x*2, z+2, r, nil, st)
		}
	}
	s.Show()
}

// Close restores the terminal.
func (f *TerminalFrontend) Close() {
	f.screen.Fini()
}

func (f *TerminalFrontend) text(x, y int, str string, st tcell.Style) {
	for _, r := range str {
		f.screen.SetContent(x, y, r, nil, st)
		x++
	}
}

func padRight(s string, width int) string {
	if n := len([]rune(s)); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}
