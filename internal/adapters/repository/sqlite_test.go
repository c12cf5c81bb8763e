package repository_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	repository "github.com/okian/persona/internal/adapters/repository"
	"github.com/okian/persona/internal/domain/features"
)

func openStore(t *testing.T, now time.Time) *repository.SQLiteStore {
	t.Helper()
	s, err := repository.NewSQLiteStore(filepath.Join(t.TempDir(), "reports.db"),
		repository.WithClock(func() time.Time { return now }))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleRun() *repository.Run {
	return &repository.Run{
		Dir:      "logs",
		Files:    3,
		Scored:   2,
		Skipped:  1,
		Clusters: 2,
		Reports: []repository.PersonaReport{
			{
				File:       "logs/playerlog_b.json",
				SessionID:  "s-b",
				TopPersona: "Gambler",
				TopScore:   0.9,
				Cluster:    1,
				Scores:     map[string]float64{"Gambler": 0.9, "Explorer": 0.2},
				Features:   features.Record{RiskyCount: 3, ElapsedTime: 40},
			},
			{
				File:       "logs/playerlog_a.json",
				TopPersona: "Explorer",
				TopScore:   0.7,
				Cluster:    0,
				Scores:     map[string]float64{"Gambler": 0.1, "Explorer": 0.7},
				Features:   features.Record{PosRatio: 0.7},
				Rare:       []string{"Speedrunner"},
			},
		},
	}
}

func TestSQLiteStoreSaveAndLoad(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s := openStore(t, now)

	_, err := s.LatestRun(ctx)
	require.True(t, errors.Is(err, repository.ErrNotFound))

	run := sampleRun()
	require.NoError(t, s.SaveRun(ctx, run))
	require.NotEmpty(t, run.ID)
	assert.True(t, now.Equal(run.CreatedAt))

	got, err := s.LatestRun(ctx)
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, 3, got.Files)
	assert.Equal(t, 2, got.Clusters)
	assert.True(t, now.Equal(got.CreatedAt))

	require.Len(t, got.Reports, 2)
	assert.Equal(t, "logs/playerlog_a.json", got.Reports[0].File, "reports are ordered by file")
	assert.Equal(t, []string{"Speedrunner"}, got.Reports[0].Rare)
	assert.Empty(t, got.Reports[0].SessionID)
	assert.Equal(t, 0.7, got.Reports[0].Features.PosRatio)
	assert.Equal(t, 3, got.Reports[1].Features.RiskyCount)
	assert.Equal(t, map[string]float64{"Gambler": 0.9, "Explorer": 0.2}, got.Reports[1].Scores)
	assert.Empty(t, got.Reports[1].Rare)
}

func TestSQLiteStoreLatestAndTopN(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))

	first := sampleRun()
	require.NoError(t, s.SaveRun(ctx, first))

	second := sampleRun()
	second.CreatedAt = time.Date(2024, 5, 2, 12, 0, 0, 0, time.UTC)
	second.Reports = second.Reports[:1]
	require.NoError(t, s.SaveRun(ctx, second))

	latest, err := s.LatestRun(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.ID, latest.ID)
	assert.Len(t, latest.Reports, 1)

	top, err := s.TopN(ctx, first.ID, "Explorer", 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "logs/playerlog_a.json", top[0].File)

	top, err = s.TopN(ctx, first.ID, "Gambler", 5)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "Gambler", top[0].TopPersona)

	_, err = s.TopN(ctx, first.ID, "Gambler", 0)
	assert.True(t, errors.Is(err, repository.ErrInvalidLimit))

	none, err := s.Reports(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, none)
}
