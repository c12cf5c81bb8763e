package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS analysis_runs (
	run_id      TEXT PRIMARY KEY,
	created_at  TEXT NOT NULL,
	dir         TEXT NOT NULL,
	files       INTEGER NOT NULL,
	scored      INTEGER NOT NULL,
	skipped     INTEGER NOT NULL,
	clusters    INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS persona_reports (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id        TEXT NOT NULL,
	file          TEXT NOT NULL,
	session_id    TEXT,
	top_persona   TEXT NOT NULL,
	top_score     REAL NOT NULL,
	cluster       INTEGER NOT NULL,
	scores_json   TEXT NOT NULL,
	features_json TEXT NOT NULL,
	rare_json     TEXT NOT NULL,
	FOREIGN KEY (run_id) REFERENCES analysis_runs(run_id)
);

CREATE TABLE IF NOT EXISTS persona_scores (
	report_id  INTEGER NOT NULL,
	persona    TEXT NOT NULL,
	score      REAL NOT NULL,
	PRIMARY KEY (report_id, persona),
	FOREIGN KEY (report_id) REFERENCES persona_reports(id)
);

CREATE INDEX IF NOT EXISTS idx_reports_run ON persona_reports(run_id);
CREATE INDEX IF NOT EXISTS idx_scores_persona ON persona_scores(persona, score);
`

// SQLiteStore implements Store on a SQLite database.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStore opens the database at path and runs migrations.
func NewSQLiteStore(path string, opts ...Option) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	s := &SQLiteStore{db: db, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveRun implements Store.
func (s *SQLiteStore) SaveRun(ctx context.Context, run *Run) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = s.now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO analysis_runs (run_id, created_at, dir, files, scored, skipped, clusters)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.CreatedAt.Format(time.RFC3339Nano), run.Dir, run.Files, run.Scored, run.Skipped, run.Clusters,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for i := range run.Reports {
		r := &run.Reports[i]
		r.RunID = run.ID
		scoresJSON, err := json.Marshal(r.Scores)
		if err != nil {
			return fmt.Errorf("marshal scores: %w", err)
		}
		featuresJSON, err := json.Marshal(r.Features)
		if err != nil {
			return fmt.Errorf("marshal features: %w", err)
		}
		rare := r.Rare
		if rare == nil {
			rare = []string{}
		}
		rareJSON, err := json.Marshal(rare)
		if err != nil {
			return fmt.Errorf("marshal rare: %w", err)
		}

		res, err := tx.ExecContext(ctx,
			`INSERT INTO persona_reports (run_id, file, session_id, top_persona, top_score, cluster, scores_json, features_json, rare_json)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID, r.File, r.SessionID, r.TopPersona, r.TopScore, r.Cluster,
			string(scoresJSON), string(featuresJSON), string(rareJSON),
		)
		if err != nil {
			return fmt.Errorf("insert report %s: %w", r.File, err)
		}
		reportID, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("report id: %w", err)
		}
		for persona, score := range r.Scores {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO persona_scores (report_id, persona, score) VALUES (?, ?, ?)`,
				reportID, persona, score,
			); err != nil {
				return fmt.Errorf("insert score: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// LatestRun implements Store.
func (s *SQLiteStore) LatestRun(ctx context.Context) (Run, error) {
	var run Run
	var created string
	err := s.db.QueryRowContext(ctx,
		`SELECT run_id, created_at, dir, files, scored, skipped, clusters
		 FROM analysis_runs ORDER BY created_at DESC, rowid DESC LIMIT 1`,
	).Scan(&run.ID, &created, &run.Dir, &run.Files, &run.Scored, &run.Skipped, &run.Clusters)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrNotFound
	}
	if err != nil {
		return Run{}, fmt.Errorf("query latest run: %w", err)
	}
	run.CreatedAt, err = time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return Run{}, fmt.Errorf("parse created_at: %w", err)
	}

	run.Reports, err = s.Reports(ctx, run.ID)
	if err != nil {
		return Run{}, err
	}
	return run, nil
}

// Reports implements Store.
func (s *SQLiteStore) Reports(ctx context.Context, runID string) ([]PersonaReport, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, file, session_id, top_persona, top_score, cluster, scores_json, features_json, rare_json
		 FROM persona_reports WHERE run_id = ? ORDER BY file, id`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("query reports: %w", err)
	}
	defer rows.Close()
	return scanReports(rows)
}

// TopN implements Store.
func (s *SQLiteStore) TopN(ctx context.Context, runID, persona string, n int) ([]PersonaReport, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, n)
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT r.run_id, r.file, r.session_id, r.top_persona, r.top_score, r.cluster, r.scores_json, r.features_json, r.rare_json
		 FROM persona_reports r
		 JOIN persona_scores ps ON ps.report_id = r.id
		 WHERE r.run_id = ? AND ps.persona = ?
		 ORDER BY ps.score DESC, r.file
		 LIMIT ?`,
		runID, persona, n,
	)
	if err != nil {
		return nil, fmt.Errorf("query top reports: %w", err)
	}
	defer rows.Close()
	return scanReports(rows)
}

func scanReports(rows *sql.Rows) ([]PersonaReport, error) {
	var out []PersonaReport
	for rows.Next() {
		var r PersonaReport
		var sessionID sql.NullString
		var scoresJSON, featuresJSON, rareJSON string
		if err := rows.Scan(&r.RunID, &r.File, &sessionID, &r.TopPersona, &r.TopScore, &r.Cluster,
			&scoresJSON, &featuresJSON, &rareJSON); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		r.SessionID = sessionID.String
		if err := json.Unmarshal([]byte(scoresJSON), &r.Scores); err != nil {
			return nil, fmt.Errorf("unmarshal scores: %w", err)
		}
		if err := json.Unmarshal([]byte(featuresJSON), &r.Features); err != nil {
			return nil, fmt.Errorf("unmarshal features: %w", err)
		}
		if err := json.Unmarshal([]byte(rareJSON), &r.Rare); err != nil {
			return nil, fmt.Errorf("unmarshal rare: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reports: %w", err)
	}
	return out, nil
}

var _ Store = (*SQLiteStore)(nil)
