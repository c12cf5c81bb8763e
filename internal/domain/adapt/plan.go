package adapt

import "github.com/okian/persona/internal/domain/model"

// Category groups artifacts. A category holds at most one live set at a time.
type Category string

// Artifact categories.
const (
	CategoryBeacon     Category = "beacon"
	CategoryCheckpoint Category = "checkpoint"
	CategoryMarkers    Category = "markers"
	CategoryObstacles  Category = "obstacles"
	CategoryTiles      Category = "tiles"
	CategoryTokens     Category = "tokens"
)

// Categories lists every category in a stable order.
func Categories() []Category {
	return []Category{
		CategoryBeacon,
		CategoryCheckpoint,
		CategoryMarkers,
		CategoryObstacles,
		CategoryTiles,
		CategoryTokens,
	}
}

// Op says what a directive does to its category.
type Op string

// Directive operations.
const (
	OpPlace Op = "place"
	OpHide  Op = "hide"
	OpShow  Op = "show"
	OpMark  Op = "mark"
)

// Target is a placement hint relative to the player.
type Target string

// Placement targets.
const (
	TargetFar    Target = "far"
	TargetCenter Target = "center"
	TargetNear   Target = "near"
)

// Directive is one world change. Count is how many artifacts to place; Fraction
// is the share of existing obstacles to hide or show.
type Directive struct {
	Category Category `json:"category"`
	Op       Op       `json:"op"`
	Label    string   `json:"label,omitempty"`
	Target   Target   `json:"target,omitempty"`
	Count    int      `json:"count,omitempty"`
	Fraction float64  `json:"fraction,omitempty"`
}

// Plan is the set of directives applied while a persona is active.
type Plan struct {
	Persona    model.Persona
	Directives []Directive
}

// DefaultPlans returns the stock adaptations per persona. Neutral has an empty
// plan.
func DefaultPlans() map[model.Persona]Plan {
	beacon := func(label string, target Target) Directive {
		return Directive{Category: CategoryBeacon, Op: OpPlace, Label: label, Target: target, Count: 1}
	}
	checkpoint := func(target Target) Directive {
		return Directive{Category: CategoryCheckpoint, Op: OpPlace, Label: "Checkpoint", Target: target, Count: 1}
	}
	obstacles := func(op Op, fraction float64) Directive {
		return Directive{Category: CategoryObstacles, Op: op, Fraction: fraction}
	}
	tokens := func(label string, n int) Directive {
		return Directive{Category: CategoryTokens, Op: OpPlace, Label: label, Target: TargetFar, Count: n}
	}

	plans := []Plan{
		{Persona: model.Neutral},
		{Persona: model.Explorer, Directives: []Directive{
			beacon("Hidden Cache", TargetFar),
			checkpoint(TargetFar),
			obstacles(OpHide, 0.3),
			tokens("Cache Token", 3),
		}},
		{Persona: model.Analyst, Directives: []Directive{
			beacon("Optimal Node", TargetCenter),
			{Category: CategoryMarkers, Op: OpMark, Label: "Path", Target: TargetCenter, Count: 6},
			obstacles(OpShow, 1),
		}},
		{Persona: model.Verifier, Directives: []Directive{
			beacon("Safe Hub", TargetNear),
			checkpoint(TargetNear),
			{Category: CategoryTiles, Op: OpMark, Label: "Safe", Target: TargetNear, Count: 3},
			obstacles(OpHide, 1),
		}},
		{Persona: model.Achiever, Directives: []Directive{
			tokens("Optional Objective", 5),
			beacon("Trophy", TargetFar),
		}},
		{Persona: model.Gambler, Directives: []Directive{
			{Category: CategoryTiles, Op: OpMark, Label: "Risk", Target: TargetFar, Count: 4},
		}},
		{Persona: model.Creator, Directives: []Directive{
			beacon("Workshop", TargetCenter),
		}},
		{Persona: model.Immerser, Directives: []Directive{
			tokens("Lore", 3),
		}},
		{Persona: model.Glitcher, Directives: []Directive{
			checkpoint(TargetNear),
		}},
		{Persona: model.Speedrunner, Directives: []Directive{
			beacon("Finish Line", TargetFar),
			{Category: CategoryMarkers, Op: OpMark, Label: "Route", Target: TargetFar, Count: 6},
		}},
	}

	out := make(map[model.Persona]Plan, len(plans))
	for _, p := range plans {
		out[p.Persona] = p
	}
	return out
}
