package adapt

import (
	"context"
	"strconv"
	"sync"
)

// Artifact is one world object created by a directive.
type Artifact struct {
	ID       string   `json:"id"`
	Category Category `json:"category"`
	Label    string   `json:"label,omitempty"`
	X        float64  `json:"x"`
	Z        float64  `json:"z"`
}

// RemoveStatus reports what happened to a removal request.
type RemoveStatus int

// Removal outcomes. NotFound is normal: the world may have dropped the
// artifact on its own.
const (
	Removed RemoveStatus = iota
	NotFound
)

func (s RemoveStatus) String() string {
	if s == NotFound {
		return "not_found"
	}
	return "removed"
}

// World is the scene collaborator that realizes directives.
type World interface {
	// Realize performs d and returns the artifacts it created.
	Realize(ctx context.Context, d Directive) ([]Artifact, error)
	// Remove undoes one artifact.
	Remove(ctx context.Context, a Artifact) (RemoveStatus, error)
}

// NopWorld realizes every directive as Count labelled artifacts without any
// scene behind them. Removing an unknown artifact reports NotFound.
type NopWorld struct {
	mu   sync.Mutex
	next int
	live map[string]bool
}

// Realize implements World.
func (w *NopWorld) Realize(_ context.Context, d Directive) ([]Artifact, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.live == nil {
		w.live = make(map[string]bool)
	}

	n := d.Count
	if n == 0 && d.Fraction > 0 {
		n = 1
	}
	out := make([]Artifact, 0, n)
	for i := 0; i < n; i++ {
		w.next++
		a := Artifact{ID: string(d.Category) + "-" + strconv.Itoa(w.next), Category: d.Category, Label: d.Label}
		w.live[a.ID] = true
		out = append(out, a)
	}
	return out, nil
}

// Remove implements World.
func (w *NopWorld) Remove(_ context.Context, a Artifact) (RemoveStatus, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.live[a.ID] {
		return NotFound, nil
	}
	delete(w.live, a.ID)
	return Removed, nil
}

// Live returns the number of artifacts not yet removed.
func (w *NopWorld) Live() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.live)
}
