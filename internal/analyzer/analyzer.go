// Package analyzer scores archived session logs in batch. Each log is scored
// once over the whole session; the results can optionally be clustered and
// archived.
package analyzer

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/persona/internal/adapters/mq/queue"
	"github.com/okian/persona/internal/adapters/mq/worker"
	"github.com/okian/persona/internal/adapters/repository"
	"github.com/okian/persona/internal/domain/dedupe"
	"github.com/okian/persona/internal/domain/features"
	"github.com/okian/persona/internal/domain/model"
	"github.com/okian/persona/internal/domain/scoring"
	"github.com/okian/persona/internal/sessionlog"
	"github.com/okian/persona/pkg/logger"
	"github.com/okian/persona/pkg/metrics"
)

// Default analyzer configuration constants.
const (
	defaultThreshold   = 0.25
	defaultMaxClusters = 4
	defaultWorkers     = 4
	defaultMaxExpected = 3600.0
)

// DefaultRareThresholds flags personas that are uncommon enough to call out.
func DefaultRareThresholds() map[model.Persona]float64 {
	return map[model.Persona]float64{
		model.Speedrunner: 0.8,
		model.Glitcher:    0.5,
		model.Creator:     0.6,
	}
}

// Analyzer scores a directory of session logs.
type Analyzer struct {
	scorer         *scoring.Scorer
	params         features.Params
	sampleInterval float64
	threshold      float64
	rare           map[model.Persona]float64
	clusterer      Clusterer
	maxClusters    int
	maxExpected    float64
	workers        int
	pattern        string
	archive        repository.Store
	logger         logger.Logger
}

// New creates an analyzer with k-means clustering enabled.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		scorer:         scoring.New(),
		params:         features.DefaultParams(),
		sampleInterval: features.DefaultSampleInterval,
		threshold:      defaultThreshold,
		rare:           DefaultRareThresholds(),
		clusterer:      KMeansClusterer{},
		maxClusters:    defaultMaxClusters,
		maxExpected:    defaultMaxExpected,
		workers:        defaultWorkers,
		pattern:        sessionlog.DefaultPattern,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = logger.Get().Named("analyzer")
	}
	return a
}

type job struct {
	index int
	path  string
}

type loaded struct {
	entry Entry
	log   *model.SessionLog
	err   error
}

// Analyze scores every log in dir. Unreadable logs and repeated sessions are
// skipped and listed in the report. The returned error is non-nil only when
// the directory cannot be listed, ctx is canceled, or archiving fails; in the
// last case the report is still returned.
func (a *Analyzer) Analyze(ctx context.Context, dir string) (*Report, error) {
	files, err := sessionlog.List(dir, a.pattern)
	if err != nil {
		return nil, err
	}

	report := &Report{Dir: dir, GeneratedAt: time.Now(), Files: len(files), Counts: make(map[model.Persona]int)}
	if len(files) == 0 {
		report.Notes = append(report.Notes, "no log files found in "+dir)
		a.logger.Info(ctx, "no log files found", logger.String("dir", dir), logger.String("pattern", a.pattern))
		return report, nil
	}

	results := a.load(ctx, files)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("analyze %s: %w", dir, err)
	}

	seen := dedupe.NewInMemoryDeduper()
	for i, r := range results {
		if r.err != nil {
			a.logger.Warn(ctx, "skipping unreadable log", logger.String("file", files[i]), logger.Error(r.err))
			metrics.RecordAnalyzedLog("skipped", 0)
			report.Skipped = append(report.Skipped, Skipped{File: files[i], Reason: r.err.Error()})
			continue
		}
		key := dedupe.SessionKey(r.log)
		if seen.SeenAndRecord(ctx, key) {
			a.logger.Warn(ctx, "skipping duplicate session", logger.String("file", files[i]), logger.String("session", key))
			metrics.RecordAnalyzedLog("duplicate", 0)
			report.Skipped = append(report.Skipped, Skipped{File: files[i], Reason: "duplicate session " + key})
			continue
		}
		report.Entries = append(report.Entries, r.entry)
		report.Counts[r.entry.Top]++
	}

	a.cluster(ctx, report)

	a.logger.Info(ctx, "analysis finished",
		logger.String("dir", dir),
		logger.Int("files", len(files)),
		logger.Int("scored", len(report.Entries)),
		logger.Int("skipped", len(report.Skipped)),
		logger.Int("sessions", int(seen.Size())),
	)

	if a.archive != nil {
		run := report.Run()
		if err := a.archive.SaveRun(ctx, &run); err != nil {
			return report, fmt.Errorf("%w: %w", ErrArchive, err)
		}
		report.RunID = run.ID
	}
	return report, nil
}

// load reads and scores files on the worker pool. Results keep file order.
// A canceled ctx shuts the pool down after the logs in flight.
func (a *Analyzer) load(ctx context.Context, files []string) []loaded {
	results := make([]loaded, len(files))

	q := queue.NewInMemoryQueue[job](queue.WithCapacity(len(files)), queue.WithName("analyzer"))
	pool := worker.NewPool[job](min(a.workers, len(files)), q, func(_ context.Context, j job) error {
		results[j.index] = a.score(j.path)
		return results[j.index].err
	}, worker.WithLogger(a.logger))

	pool.Start(ctx)
	for i, f := range files {
		q.Enqueue(ctx, job{index: i, path: f})
	}
	_ = q.Close()

	done := make(chan struct{})
	go func() {
		pool.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		_ = pool.Shutdown(context.WithoutCancel(ctx))
		<-done
	}

	processed, failed := pool.Stats()
	a.logger.Debug(ctx, "logs loaded",
		logger.Int("processed", int(processed)),
		logger.Int("failed", int(failed)),
	)
	return results
}

// score loads one log and scores the whole session once.
func (a *Analyzer) score(path string) loaded {
	start := time.Now()
	log, err := sessionlog.Read(path)
	if err != nil {
		return loaded{err: err}
	}

	rec := features.Extract(features.FromLog(log, a.sampleInterval), a.params)
	scores := a.scorer.Score(rec)
	top, topScore := scores.Best(a.threshold)

	e := Entry{
		File:      path,
		SessionID: log.Meta.SessionID,
		Duration:  log.Duration(),
		Features:  rec,
		Scores:    scores,
		Top:       top,
		TopScore:  topScore,
		Cluster:   -1,
		vector:    rec.Vector(a.maxExpected),
	}
	for _, p := range model.Priority {
		if limit, ok := a.rare[p]; ok && scores[p] > limit {
			e.Rare = append(e.Rare, p)
		}
	}

	metrics.RecordAnalyzedLog("scored", float64(time.Since(start).Microseconds())/1000)
	return loaded{entry: e, log: log}
}

func (a *Analyzer) cluster(ctx context.Context, report *Report) {
	if a.clusterer == nil {
		metrics.RecordClustering("disabled")
		report.Notes = append(report.Notes, "clustering disabled")
		return
	}
	if len(report.Entries) == 0 {
		return
	}

	k := clusterCount(a.maxClusters, len(report.Entries))
	vectors := make([][]float64, len(report.Entries))
	for i, e := range report.Entries {
		vectors[i] = e.vector
	}

	p, err := a.clusterer.Cluster(ctx, vectors, k)
	if err != nil {
		metrics.RecordClustering("unavailable")
		a.logger.Warn(ctx, "clustering skipped", logger.Error(err))
		report.Notes = append(report.Notes, "clustering skipped: "+err.Error())
		return
	}
	metrics.RecordClustering("ok")

	c := &Clustering{K: len(p.Centroids), Centroids: p.Centroids, Members: make([][]int, len(p.Centroids))}
	for i, cl := range p.Assignments {
		report.Entries[i].Cluster = cl
		c.Members[cl] = append(c.Members[cl], i)
	}
	c.Dominant = make([]model.Persona, c.K)
	for ci, members := range c.Members {
		counts := make(map[model.Persona]int)
		for _, i := range members {
			counts[report.Entries[i].Top]++
		}
		best := model.Neutral
		for _, p := range model.All() {
			if counts[p] > counts[best] {
				best = p
			}
		}
		c.Dominant[ci] = best
	}
	report.Clustering = c
}
