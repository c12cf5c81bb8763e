// Package repository archives offline analysis runs so that reports can be
// compared across runs.
package repository

import (
	"context"
	"time"

	"github.com/okian/persona/internal/domain/features"
)

// Run is one analyzer pass over a log directory.
type Run struct {
	ID        string          `json:"id"`
	CreatedAt time.Time       `json:"created_at"`
	Dir       string          `json:"dir"`
	Files     int             `json:"files"`
	Scored    int             `json:"scored"`
	Skipped   int             `json:"skipped"`
	Clusters  int             `json:"clusters"` // 0 when clustering did not run
	Reports   []PersonaReport `json:"reports"`
}

// PersonaReport is the archived result for one session log.
type PersonaReport struct {
	RunID      string             `json:"run_id"`
	File       string             `json:"file"`
	SessionID  string             `json:"session_id"`
	TopPersona string             `json:"top_persona"`
	TopScore   float64            `json:"top_score"`
	Cluster    int                `json:"cluster"` // -1 when unclustered
	Scores     map[string]float64 `json:"scores"`
	Features   features.Record    `json:"features"`
	Rare       []string           `json:"rare,omitempty"`
}

// Store provides read/write access to archived runs.
type Store interface {
	// SaveRun stores run and its reports atomically. An empty ID is filled in.
	SaveRun(ctx context.Context, run *Run) error

	// LatestRun returns the most recent run with its reports.
	// Returns ErrNotFound if nothing was archived yet.
	LatestRun(ctx context.Context) (Run, error)

	// Reports returns the reports of one run ordered by file.
	Reports(ctx context.Context, runID string) ([]PersonaReport, error)

	// TopN returns the n reports of a run with the highest score for persona.
	TopN(ctx context.Context, runID, persona string, n int) ([]PersonaReport, error)

	Close() error
}
