package model

import (
	"fmt"
	"strings"
)

// Persona is a behavioral archetype. The zero value is not valid; sessions
// start in Neutral.
type Persona string

// Known personas.
const (
	Neutral     Persona = "Neutral"
	Explorer    Persona = "Explorer"
	Analyst     Persona = "Analyst"
	Verifier    Persona = "Verifier"
	Achiever    Persona = "Achiever"
	Gambler     Persona = "Gambler"
	Creator     Persona = "Creator"
	Immerser    Persona = "Immerser"
	Glitcher    Persona = "Glitcher"
	Speedrunner Persona = "Speedrunner"
)

// Priority is the fixed order used to break ties between equal scores.
// Neutral is never scored and is not part of it.
var Priority = []Persona{
	Explorer,
	Analyst,
	Verifier,
	Achiever,
	Gambler,
	Creator,
	Immerser,
	Glitcher,
	Speedrunner,
}

// All lists Neutral followed by Priority.
func All() []Persona {
	return append([]Persona{Neutral}, Priority...)
}

// Rank returns the position of p in Priority, or len(Priority) when absent.
func Rank(p Persona) int {
	for i, q := range Priority {
		if q == p {
			return i
		}
	}
	return len(Priority)
}

// ParsePersona resolves a name case-insensitively.
func ParsePersona(name string) (Persona, error) {
	for _, p := range All() {
		if strings.EqualFold(string(p), strings.TrimSpace(name)) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPersona, name)
}

// Valid reports whether p is a known persona.
func (p Persona) Valid() bool {
	for _, q := range All() {
		if p == q {
			return true
		}
	}
	return false
}

func (p Persona) String() string { return string(p) }
