// Package dedupe tracks which sessions have already been analyzed so that a
// log copied twice into the archive is only counted once.
package dedupe

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/okian/persona/internal/domain/model"
)

// Deduper records seen session keys.
type Deduper interface {
	// SeenAndRecord reports whether key was already recorded and records it
	// if not. It is safe for concurrent use.
	SeenAndRecord(ctx context.Context, key string) bool

	Size() int64
}

// inMemoryDeduper keeps every key for its lifetime; one is built per
// analysis pass.
type inMemoryDeduper struct {
	mu   sync.Mutex
	seen map[string]struct{}
	size atomic.Int64
}

// NewInMemoryDeduper creates an empty deduper.
func NewInMemoryDeduper() Deduper {
	return &inMemoryDeduper{seen: make(map[string]struct{})}
}

// SeenAndRecord implements Deduper.
func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[key]; ok {
		return true
	}
	d.seen[key] = struct{}{}
	d.size.Add(1)
	return false
}

// Size returns the number of recorded keys.
func (d *inMemoryDeduper) Size() int64 {
	return d.size.Load()
}

// SessionKey identifies a session log. Logs carry a session ID; legacy logs
// without one fall back to a fingerprint of their timing and sizes.
func SessionKey(log *model.SessionLog) string {
	if log == nil {
		return ""
	}
	if log.Meta.SessionID != "" {
		return log.Meta.SessionID
	}
	return fmt.Sprintf("legacy:%.6f:%.6f:%d:%d:%d",
		log.StartTime, log.EndTime, len(log.Positions), len(log.Actions), len(log.Events))
}
