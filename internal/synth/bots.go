package synth

import (
	"math"
	"math/rand/v2"
	"sort"

	"github.com/okian/persona/internal/domain/model"
)

// Step is what a bot does on one tick.
type Step struct {
	DX, DZ  float64
	Actions []string
}

// Bot decides the next step at session time t.
type Bot func(rng *rand.Rand, t float64) Step

// Profile is a named bot and the persona it plays.
type Profile struct {
	Name    string
	Persona model.Persona
	// NewBot builds a fresh bot; bots keep state between steps.
	NewBot func() Bot
	// MaxDuration caps the session length in seconds. Zero means no cap.
	MaxDuration float64
}

// Bot tuning constants.
const (
	walkStep     = 0.3
	turnChance   = 0.05
	actionChance = 0.1
	rareChance   = 0.03
	sprintLength = 30.0
)

func chance(rng *rand.Rand, p float64) bool { return rng.Float64() < p }

// walker keeps a heading and turns now and then.
func walker(step float64) func() Bot {
	return func() Bot {
		heading := 0.0
		return func(rng *rand.Rand, _ float64) Step {
			if chance(rng, turnChance) {
				heading = rng.Float64() * 2 * math.Pi
			}
			return Step{DX: step * math.Cos(heading), DZ: step * math.Sin(heading)}
		}
	}
}

// idler stands still and fires labels with the given chances.
func idler(actions map[string]float64) func() Bot {
	labels := make([]string, 0, len(actions))
	for l := range actions {
		labels = append(labels, l)
	}
	sort.Strings(labels) // map order must not leak into the rng sequence
	bot := func(rng *rand.Rand, _ float64) Step {
		var s Step
		for _, l := range labels {
			if chance(rng, actions[l]) {
				s.Actions = append(s.Actions, l)
			}
		}
		return s
	}
	return func() Bot { return bot }
}

// Profiles returns every bot in a stable order.
func Profiles() []Profile {
	return []Profile{
		{Name: "explorer", Persona: model.Explorer, NewBot: walker(walkStep)},
		{Name: "analyst", Persona: model.Analyst, NewBot: idler(map[string]float64{"inspect": actionChance})},
		{Name: "verifier", Persona: model.Verifier, NewBot: idler(map[string]float64{"restart": rareChance})},
		{Name: "achiever", Persona: model.Achiever, NewBot: idler(map[string]float64{"interact": actionChance, "complete": rareChance})},
		{Name: "gambler", Persona: model.Gambler, NewBot: idler(map[string]float64{"risky": actionChance, "jump": rareChance})},
		{Name: "creator", Persona: model.Creator, NewBot: idler(map[string]float64{"spawn": actionChance, "undo": rareChance})},
		{Name: "speedrunner", Persona: model.Speedrunner, NewBot: walker(walkStep / 10), MaxDuration: sprintLength},
	}
}

// Lookup returns the profile with the given name.
func Lookup(name string) (Profile, bool) {
	for _, p := range Profiles() {
		if p.Name == name {
			return p, true
		}
	}
	return Profile{}, false
}
