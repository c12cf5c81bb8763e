// Package model contains domain models passed between layers.
package model

import "strings"

// TimedSample is one player position on the ground plane at session time T (seconds).
type TimedSample struct {
	X float64 `json:"x"`
	Z float64 `json:"z"`
	T float64 `json:"t"`
}

// SpeedSample is the instantaneous speed derived from two consecutive positions.
type SpeedSample struct {
	V float64 `json:"v"`
	T float64 `json:"t"`
}

// ActionEvent is a discrete player action. Label keeps the raw string as seen
// at ingestion; Kind is its classification.
type ActionEvent struct {
	Label string     `json:"label"`
	Kind  ActionKind `json:"kind"`
	T     float64    `json:"t"`
}

// NewActionEvent classifies label and stamps it with t.
func NewActionEvent(label string, t float64) ActionEvent {
	return ActionEvent{Label: label, Kind: ClassifyAction(label), T: t}
}

// ActionKind is the closed set of action classes the scorer understands.
type ActionKind int

// Known action kinds. ActionUnrecognized collects every label outside the set.
const (
	ActionUnrecognized ActionKind = iota
	ActionJump
	ActionInteract
	ActionRisky
	ActionRestart
	ActionOutOfBounds
	ActionComplete
	ActionSpawn
	ActionUndo
	ActionDelete
	ActionHint
	ActionClear
	ActionSoftRespawn
)

var actionNames = map[ActionKind]string{
	ActionUnrecognized: "unrecognized",
	ActionJump:         "jump",
	ActionInteract:     "interact",
	ActionRisky:        "risky",
	ActionRestart:      "restart",
	ActionOutOfBounds:  "out_of_bounds",
	ActionComplete:     "complete",
	ActionSpawn:        "spawn",
	ActionUndo:         "undo",
	ActionDelete:       "delete",
	ActionHint:         "hint",
	ActionClear:        "clear",
	ActionSoftRespawn:  "soft_respawn",
}

// labelKinds maps every accepted spelling to its kind. "risky_action" is the
// older spelling of "risky".
var labelKinds = map[string]ActionKind{
	"jump":          ActionJump,
	"interact":      ActionInteract,
	"risky":         ActionRisky,
	"risky_action":  ActionRisky,
	"restart":       ActionRestart,
	"out_of_bounds": ActionOutOfBounds,
	"complete":      ActionComplete,
	"spawn":         ActionSpawn,
	"undo":          ActionUndo,
	"delete":        ActionDelete,
	"hint":          ActionHint,
	"clear":         ActionClear,
	"soft_respawn":  ActionSoftRespawn,
}

// ClassifyAction maps a raw label to its kind. Matching ignores case and
// surrounding whitespace.
func ClassifyAction(label string) ActionKind {
	if k, ok := labelKinds[strings.ToLower(strings.TrimSpace(label))]; ok {
		return k
	}
	return ActionUnrecognized
}

// String returns the canonical label of the kind.
func (k ActionKind) String() string {
	if s, ok := actionNames[k]; ok {
		return s
	}
	return "unrecognized"
}

// Recognized reports whether k is part of the closed set.
func (k ActionKind) Recognized() bool {
	return k != ActionUnrecognized
}

// MarshalText keeps logs and JSON views readable.
func (k ActionKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText accepts any label; unknown ones become ActionUnrecognized.
func (k *ActionKind) UnmarshalText(b []byte) error {
	*k = ClassifyAction(string(b))
	return nil
}

// NumActionKinds sizes arrays indexed by ActionKind.
const NumActionKinds = int(ActionSoftRespawn) + 1

// Counters accumulates action totals over a whole session. It is a value type
// so copies are independent.
type Counters struct {
	Total        int
	Unrecognized int
	ByKind       [NumActionKinds]int
}

// Add counts one action of kind k.
func (c *Counters) Add(k ActionKind) {
	c.Total++
	if int(k) >= 0 && int(k) < NumActionKinds {
		c.ByKind[k]++
	}
	if !k.Recognized() {
		c.Unrecognized++
	}
}

// Count returns the total for kind k.
func (c Counters) Count(k ActionKind) int {
	if int(k) < 0 || int(k) >= NumActionKinds {
		return 0
	}
	return c.ByKind[k]
}
