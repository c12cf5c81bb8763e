// Package host is a small console stand-in for a game engine. It owns a grid
// world that realizes adaptation directives, turns keyboard or line input
// into session calls, and runs the tick loop.
package host

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/okian/persona/internal/domain/adapt"
)

// Default world configuration constants.
const (
	defaultWorldSize = 28
	floorProbability = 0.75
	wallProbability  = 0.12
	nearRadius       = 6.0
	playerHeight     = 1.0
)

// Cell glyphs used by Cells.
const (
	GlyphVoid       = ' '
	GlyphFloor      = '.'
	GlyphWall       = '#'
	GlyphPlayer     = '@'
	GlyphBeacon     = 'B'
	GlyphCheckpoint = 'C'
	GlyphMarker     = '+'
	GlyphTile       = '!'
	GlyphToken      = '*'
	GlyphBox        = 'o'
)

type tile struct{ x, z int }

type wall struct {
	tile
	hidden bool
}

// placed is an artifact plus what it changed in the world.
type placed struct {
	artifact adapt.Artifact
	toggled  []int // wall indexes flipped by an obstacle directive
}

// World is a seeded grid of floor tiles and walls. It implements adapt.World
// and tracks the player. Safe for concurrent use.
type World struct {
	mu sync.Mutex

	size   int
	rng    *rand.Rand
	floor  []tile
	walls  []wall
	onGrid map[tile]bool

	x, z       float64
	checkpoint *tile
	artifacts  map[string]placed
	boxes      []tile
}

// NewWorld generates a size×size world from seed. The player starts at the
// centre.
func NewWorld(size int, seed int64) *World {
	if size < 2 {
		size = defaultWorldSize
	}
	w := &World{
		size:      size,
		rng:       rand.New(rand.NewPCG(uint64(seed), uint64(size))),
		onGrid:    make(map[tile]bool),
		artifacts: make(map[string]placed),
	}
	for x := 0; x < size; x++ {
		for z := 0; z < size; z++ {
			if w.rng.Float64() >= floorProbability {
				continue
			}
			t := tile{x, z}
			w.floor = append(w.floor, t)
			w.onGrid[t] = true
			if w.rng.Float64() < wallProbability {
				w.walls = append(w.walls, wall{tile: t})
			}
		}
	}
	w.x, w.z = w.centre()
	return w
}

// Size returns the grid edge length.
func (w *World) Size() int { return w.size }

// Position returns the player position.
func (w *World) Position() (x, y, z float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.x, playerHeight, w.z
}

// Move shifts the player by (dx, dz). Leaving the grid respawns the player
// and reports true.
func (w *World) Move(dx, dz float64) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.placeLocked(w.x+dx, w.z+dz)
}

// Teleport places the player at (x, z). Leaving the grid respawns the player
// and reports true.
func (w *World) Teleport(x, z float64) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.placeLocked(x, z)
}

func (w *World) placeLocked(x, z float64) bool {
	if math.IsNaN(x) || math.IsNaN(z) || x < 0 || z < 0 || x > float64(w.size-1) || z > float64(w.size-1) {
		w.respawnLocked()
		return true
	}
	w.x, w.z = x, z
	return false
}

// Respawn moves the player to the checkpoint, or the centre when none is set.
func (w *World) Respawn() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.respawnLocked()
}

func (w *World) respawnLocked() {
	if w.checkpoint != nil {
		w.x, w.z = float64(w.checkpoint.x), float64(w.checkpoint.z)
		return
	}
	w.x, w.z = w.centre()
}

func (w *World) centre() (float64, float64) {
	c := float64(w.size / 2)
	return c, c
}

// Spawn drops a box on the player's tile.
func (w *World) Spawn() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.boxes = append(w.boxes, tile{int(math.Round(w.x)), int(math.Round(w.z))})
}

// Undo removes the newest box and reports whether there was one.
func (w *World) Undo() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.boxes) == 0 {
		return false
	}
	w.boxes = w.boxes[:len(w.boxes)-1]
	return true
}

// Boxes returns the number of spawned boxes.
func (w *World) Boxes() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.boxes)
}

// HiddenWalls counts walls currently hidden by obstacle directives.
func (w *World) HiddenWalls() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	n := 0
	for _, wl := range w.walls {
		if wl.hidden {
			n++
		}
	}
	return n
}

// Walls returns the total number of walls.
func (w *World) Walls() int { return len(w.walls) }

// Checkpoint returns the respawn tile when one is set.
func (w *World) Checkpoint() (x, z float64, ok bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.checkpoint == nil {
		return 0, 0, false
	}
	return float64(w.checkpoint.x), float64(w.checkpoint.z), true
}

// Realize implements adapt.World.
func (w *World) Realize(ctx context.Context, d adapt.Directive) ([]adapt.Artifact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	switch d.Op {
	case adapt.OpHide, adapt.OpShow:
		return w.toggleWalls(d), nil
	case adapt.OpPlace, adapt.OpMark:
	default:
		return nil, fmt.Errorf("%w: op %q", ErrUnsupportedOp, d.Op)
	}
	if len(w.floor) == 0 {
		return nil, ErrNoFloor
	}

	n := max(d.Count, 1)
	tiles := w.pick(d.Target, n)
	out := make([]adapt.Artifact, 0, len(tiles))
	for _, t := range tiles {
		a := adapt.Artifact{
			ID:       uuid.NewString(),
			Category: d.Category,
			Label:    d.Label,
			X:        float64(t.x),
			Z:        float64(t.z),
		}
		w.artifacts[a.ID] = placed{artifact: a}
		out = append(out, a)
	}
	if d.Category == adapt.CategoryCheckpoint && len(tiles) > 0 {
		cp := tiles[0]
		w.checkpoint = &cp
	}
	return out, nil
}

// toggleWalls hides or shows a share of the walls and records the change as
// one artifact so that removing it restores them.
func (w *World) toggleWalls(d adapt.Directive) []adapt.Artifact {
	hide := d.Op == adapt.OpHide
	var eligible []int
	for i, wl := range w.walls {
		if wl.hidden != hide {
			eligible = append(eligible, i)
		}
	}
	n := int(math.Ceil(d.Fraction * float64(len(eligible))))
	if d.Fraction <= 0 {
		n = len(eligible)
	}
	w.rng.Shuffle(len(eligible), func(i, j int) { eligible[i], eligible[j] = eligible[j], eligible[i] })
	toggled := eligible[:min(n, len(eligible))]
	for _, i := range toggled {
		w.walls[i].hidden = hide
	}

	a := adapt.Artifact{ID: uuid.NewString(), Category: d.Category, Label: string(d.Op)}
	w.artifacts[a.ID] = placed{artifact: a, toggled: append([]int(nil), toggled...)}
	return []adapt.Artifact{a}
}

// Remove implements adapt.World.
func (w *World) Remove(_ context.Context, a adapt.Artifact) (adapt.RemoveStatus, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	p, ok := w.artifacts[a.ID]
	if !ok {
		return adapt.NotFound, nil
	}
	delete(w.artifacts, a.ID)
	for _, i := range p.toggled {
		w.walls[i].hidden = !w.walls[i].hidden
	}
	if p.artifact.Category == adapt.CategoryCheckpoint && w.checkpoint != nil &&
		float64(w.checkpoint.x) == p.artifact.X && float64(w.checkpoint.z) == p.artifact.Z {
		w.checkpoint = nil
	}
	return adapt.Removed, nil
}

// Artifacts returns the live artifacts ordered by category and ID.
func (w *World) Artifacts() []adapt.Artifact {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]adapt.Artifact, 0, len(w.artifacts))
	for _, p := range w.artifacts {
		out = append(out, p.artifact)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// pick chooses n distinct floor tiles for target. Far prefers tiles far from
// the player, centre prefers tiles close to the grid centre, and near picks
// at random within nearRadius of the player.
func (w *World) pick(target adapt.Target, n int) []tile {
	candidates := append([]tile(nil), w.floor...)
	dist := func(t tile, x, z float64) float64 { return math.Hypot(float64(t.x)-x, float64(t.z)-z) }

	switch target {
	case adapt.TargetFar:
		sort.SliceStable(candidates, func(i, j int) bool {
			return dist(candidates[i], w.x, w.z) > dist(candidates[j], w.x, w.z)
		})
	case adapt.TargetCenter:
		cx, cz := w.centre()
		sort.SliceStable(candidates, func(i, j int) bool {
			return dist(candidates[i], cx, cz) < dist(candidates[j], cx, cz)
		})
	default:
		near := candidates[:0]
		for _, t := range w.floor {
			if dist(t, w.x, w.z) < nearRadius {
				near = append(near, t)
			}
		}
		if len(near) == 0 {
			near = append(near, w.floor...)
		}
		candidates = near
		w.rng.Shuffle(len(candidates), func(i, j int) { candidates[i], candidates[j] = candidates[j], candidates[i] })
	}
	return candidates[:min(n, len(candidates))]
}

// Cells renders the grid as rows of glyphs indexed [z][x].
func (w *World) Cells() [][]rune {
	w.mu.Lock()
	defer w.mu.Unlock()

	rows := make([][]rune, w.size)
	for z := range rows {
		rows[z] = make([]rune, w.size)
		for x := range rows[z] {
			rows[z][x] = GlyphVoid
		}
	}
	set := func(x, z int, r rune) {
		if x >= 0 && z >= 0 && x < w.size && z < w.size {
			rows[z][x] = r
		}
	}
	for _, t := range w.floor {
		set(t.x, t.z, GlyphFloor)
	}
	for _, wl := range w.walls {
		if !wl.hidden {
			set(wl.x, wl.z, GlyphWall)
		}
	}
	for _, b := range w.boxes {
		set(b.x, b.z, GlyphBox)
	}
	for _, p := range w.artifacts {
		if g, ok := categoryGlyph[p.artifact.Category]; ok {
			set(int(p.artifact.X), int(p.artifact.Z), g)
		}
	}
	set(int(math.Round(w.x)), int(math.Round(w.z)), GlyphPlayer)
	return rows
}

var categoryGlyph = map[adapt.Category]rune{
	adapt.CategoryBeacon:     GlyphBeacon,
	adapt.CategoryCheckpoint: GlyphCheckpoint,
	adapt.CategoryMarkers:    GlyphMarker,
	adapt.CategoryTiles:      GlyphTile,
	adapt.CategoryTokens:     GlyphToken,
}

var _ adapt.World = (*World)(nil)
