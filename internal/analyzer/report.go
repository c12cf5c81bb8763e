package analyzer

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/okian/persona/internal/adapters/repository"
	"github.com/okian/persona/internal/domain/features"
	"github.com/okian/persona/internal/domain/model"
	"github.com/okian/persona/internal/domain/scoring"
)

// Entry is the analysis of one session log.
type Entry struct {
	File      string
	SessionID string
	Duration  float64
	Features  features.Record
	Scores    scoring.Scores
	Top       model.Persona
	TopScore  float64
	Rare      []model.Persona
	Cluster   int // -1 when unclustered

	vector []float64
}

// Skipped names a log that was not scored.
type Skipped struct {
	File   string
	Reason string
}

// Clustering is a k-means grouping of the scored logs. Members holds indexes
// into Report.Entries.
type Clustering struct {
	K         int
	Centroids [][]float64
	Members   [][]int
	Dominant  []model.Persona
}

// Report is the result of one Analyze call.
type Report struct {
	RunID       string
	Dir         string
	GeneratedAt time.Time
	Files       int
	Entries     []Entry
	Skipped     []Skipped
	Counts      map[model.Persona]int
	Clustering  *Clustering
	Notes       []string
}

// RareDetections returns the entries with at least one rare persona.
func (r *Report) RareDetections() []Entry {
	var out []Entry
	for _, e := range r.Entries {
		if len(e.Rare) > 0 {
			out = append(out, e)
		}
	}
	return out
}

// Run converts the report into its archived form.
func (r *Report) Run() repository.Run {
	run := repository.Run{
		ID:        r.RunID,
		CreatedAt: r.GeneratedAt,
		Dir:       r.Dir,
		Files:     r.Files,
		Scored:    len(r.Entries),
		Skipped:   len(r.Skipped),
		Reports:   make([]repository.PersonaReport, 0, len(r.Entries)),
	}
	if r.Clustering != nil {
		run.Clusters = r.Clustering.K
	}
	for _, e := range r.Entries {
		scores := make(map[string]float64, len(e.Scores))
		for p, v := range e.Scores {
			scores[string(p)] = v
		}
		rare := make([]string, len(e.Rare))
		for i, p := range e.Rare {
			rare[i] = string(p)
		}
		run.Reports = append(run.Reports, repository.PersonaReport{
			File:       e.File,
			SessionID:  e.SessionID,
			TopPersona: string(e.Top),
			TopScore:   e.TopScore,
			Cluster:    e.Cluster,
			Scores:     scores,
			Features:   e.Features,
			Rare:       rare,
		})
	}
	return run
}

// Render writes the human-readable report.
func (r *Report) Render(w io.Writer) error {
	var b strings.Builder
	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)

	fmt.Fprintf(&b, "Analyzed %d of %d logs in %s\n", len(r.Entries), r.Files, r.Dir)
	for _, n := range r.Notes {
		fmt.Fprintf(&b, "note: %s\n", n)
	}

	if c := r.Clustering; c != nil {
		fmt.Fprintf(&b, "\nKMeans clusters (k=%d):\n", c.K)
		for i := range c.Members {
			fmt.Fprintf(&b, " Cluster %d: %d logs, mostly %s\n", i, len(c.Members[i]), c.Dominant[i])
			for _, j := range c.Members[i] {
				fmt.Fprintf(&b, "    %s\n", filepath.Base(r.Entries[j].File))
			}
			fmt.Fprintf(&b, "  centroid: %s\n", formatVector(c.Centroids[i]))
		}
	}

	for _, e := range r.Entries {
		fmt.Fprintf(&b, "\n--- %s\n", filepath.Base(e.File))
		_ = tw.Flush()
		for _, p := range model.Priority {
			v, ok := e.Scores[p]
			if !ok {
				continue
			}
			fmt.Fprintf(tw, "  %s\t%.3f\n", p, v)
		}
		_ = tw.Flush()
		fmt.Fprintf(&b, "  top: %s (%.3f)\n", e.Top, e.TopScore)
		fmt.Fprintf(&b, "  derived features: %s\n", formatFeatures(e.Features))
	}

	if len(r.Counts) > 0 {
		b.WriteString("\n=== Persona Counts ===\n")
		for _, p := range model.All() {
			if n := r.Counts[p]; n > 0 {
				fmt.Fprintf(tw, "  %s\t%d\n", p, n)
			}
		}
		_ = tw.Flush()
	}

	b.WriteString("\n=== Rare Persona Detections (heuristic thresholds) ===\n")
	rare := r.RareDetections()
	if len(rare) == 0 {
		b.WriteString("  none\n")
	}
	for _, e := range rare {
		names := make([]string, len(e.Rare))
		for i, p := range e.Rare {
			names[i] = string(p)
		}
		fmt.Fprintf(&b, "%s -> %s\n", filepath.Base(e.File), strings.Join(names, ", "))
	}

	if len(r.Skipped) > 0 {
		b.WriteString("\n=== Skipped ===\n")
		for _, s := range r.Skipped {
			fmt.Fprintf(&b, "%s: %s\n", filepath.Base(s.File), s.Reason)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func formatVector(v []float64) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = fmt.Sprintf("%.3f", x)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func formatFeatures(rec features.Record) string {
	names := features.Names()
	parts := make([]string, 0, len(names))
	for _, n := range names {
		v, _ := rec.Value(n)
		parts = append(parts, fmt.Sprintf("%s=%g", n, v))
	}
	return strings.Join(parts, " ")
}
