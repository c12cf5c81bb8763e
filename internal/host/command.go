package host

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gdamore/tcell"
)

// CommandKind says what a Command does.
type CommandKind int

// Command kinds.
const (
	CommandAction CommandKind = iota
	CommandMove
	CommandTeleport
	CommandQuit
)

// Command is one unit of player input.
type Command struct {
	Kind   CommandKind
	Label  string  // action label for CommandAction
	DX, DZ float64 // step for CommandMove
	X, Z   float64 // target for CommandTeleport
}

// Action labels produced by the host besides the player's own.
const (
	LabelJump        = "jump"
	LabelInteract    = "interact"
	LabelRisky       = "risky"
	LabelRestart     = "restart"
	LabelComplete    = "complete"
	LabelSpawn       = "spawn"
	LabelUndo        = "undo"
	LabelHint        = "hint"
	LabelOutOfBounds = "out_of_bounds"
	LabelRespawn     = "soft_respawn"
)

const moveStep = 1.0

var wordCommands = map[string]Command{
	"w":        {Kind: CommandMove, DZ: -moveStep},
	"s":        {Kind: CommandMove, DZ: moveStep},
	"a":        {Kind: CommandMove, DX: -moveStep},
	"d":        {Kind: CommandMove, DX: moveStep},
	"space":    {Kind: CommandAction, Label: LabelJump},
	"jump":     {Kind: CommandAction, Label: LabelJump},
	"e":        {Kind: CommandAction, Label: LabelInteract},
	"interact": {Kind: CommandAction, Label: LabelInteract},
	"q":        {Kind: CommandAction, Label: LabelRisky},
	"risky":    {Kind: CommandAction, Label: LabelRisky},
	"r":        {Kind: CommandAction, Label: LabelRestart},
	"restart":  {Kind: CommandAction, Label: LabelRestart},
	"c":        {Kind: CommandAction, Label: LabelComplete},
	"complete": {Kind: CommandAction, Label: LabelComplete},
	"b":        {Kind: CommandAction, Label: LabelSpawn},
	"spawn":    {Kind: CommandAction, Label: LabelSpawn},
	"u":        {Kind: CommandAction, Label: LabelUndo},
	"undo":     {Kind: CommandAction, Label: LabelUndo},
	"h":        {Kind: CommandAction, Label: LabelHint},
	"hint":     {Kind: CommandAction, Label: LabelHint},
	"esc":      {Kind: CommandQuit},
	"escape":   {Kind: CommandQuit},
	"quit":     {Kind: CommandQuit},
}

// ParseLine turns one input line into commands. A line starting with "tp"
// teleports to the two coordinates that follow; any other line is split into
// words. Unknown words become actions labelled with the word.
func ParseLine(line string) ([]Command, error) {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return nil, nil
	}
	if fields[0] == "tp" {
		if len(fields) != 3 {
			return nil, fmt.Errorf("%w: tp needs x and z", ErrUnknownCommand)
		}
		x, errX := strconv.ParseFloat(fields[1], 64)
		z, errZ := strconv.ParseFloat(fields[2], 64)
		if errX != nil || errZ != nil {
			return nil, fmt.Errorf("%w: tp %s %s", ErrUnknownCommand, fields[1], fields[2])
		}
		return []Command{{Kind: CommandTeleport, X: x, Z: z}}, nil
	}

	out := make([]Command, 0, len(fields))
	for _, f := range fields {
		out = append(out, ParseWord(f))
	}
	return out, nil
}

// ParseWord maps one word to its command.
func ParseWord(word string) Command {
	if c, ok := wordCommands[word]; ok {
		return c
	}
	return Command{Kind: CommandAction, Label: word}
}

// KeyCommand maps a terminal key event to a command.
func KeyCommand(ev *tcell.EventKey) (Command, bool) {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return Command{Kind: CommandQuit}, true
	case tcell.KeyUp:
		return wordCommands["w"], true
	case tcell.KeyDown:
		return wordCommands["s"], true
	case tcell.KeyLeft:
		return wordCommands["a"], true
	case tcell.KeyRight:
		return wordCommands["d"], true
	case tcell.KeyRune:
		r := ev.Rune()
		if r == ' ' {
			return wordCommands["space"], true
		}
		c, ok := wordCommands[strings.ToLower(string(r))]
		return c, ok
	}
	return Command{}, false
}
