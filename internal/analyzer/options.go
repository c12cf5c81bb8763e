package analyzer

import (
	"github.com/okian/persona/internal/adapters/repository"
	"github.com/okian/persona/internal/domain/features"
	"github.com/okian/persona/internal/domain/model"
	"github.com/okian/persona/internal/domain/scoring"
	"github.com/okian/persona/pkg/logger"
)

// Option applies a configuration option to the Analyzer.
type Option func(*Analyzer)

// WithScorer replaces the default scorer.
func WithScorer(s *scoring.Scorer) Option {
	return func(a *Analyzer) {
		if s != nil {
			a.scorer = s
		}
	}
}

// WithFeatureParams sets extraction tuning.
func WithFeatureParams(p features.Params) Option {
	return func(a *Analyzer) {
		a.params = p
	}
}

// WithSampleInterval sets the position period assumed for logs without timestamps.
func WithSampleInterval(seconds float64) Option {
	return func(a *Analyzer) {
		if seconds > 0 {
			a.sampleInterval = seconds
		}
	}
}

// WithThreshold sets the score a persona needs to be reported as top persona.
func WithThreshold(threshold float64) Option {
	return func(a *Analyzer) {
		if threshold >= 0 {
			a.threshold = threshold
		}
	}
}

// WithRareThresholds sets the scores above which a persona is flagged as rare.
func WithRareThresholds(t map[model.Persona]float64) Option {
	return func(a *Analyzer) {
		if t != nil {
			a.rare = t
		}
	}
}

// WithClusterer sets the clusterer. nil disables clustering.
func WithClusterer(c Clusterer) Option {
	return func(a *Analyzer) {
		a.clusterer = c
	}
}

// WithMaxClusters caps k.
func WithMaxClusters(k int) Option {
	return func(a *Analyzer) {
		if k > 0 {
			a.maxClusters = k
		}
	}
}

// WithMaxExpectedTime normalizes elapsed time in the clustering vector.
func WithMaxExpectedTime(seconds float64) Option {
	return func(a *Analyzer) {
		if seconds > 0 {
			a.maxExpected = seconds
		}
	}
}

// WithWorkers sets how many logs are loaded in parallel.
func WithWorkers(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.workers = n
		}
	}
}

// WithPattern sets the glob of log files inside the directory.
func WithPattern(pattern string) Option {
	return func(a *Analyzer) {
		if pattern != "" {
			a.pattern = pattern
		}
	}
}

// WithArchive stores every run in s.
func WithArchive(s repository.Store) Option {
	return func(a *Analyzer) {
		a.archive = s
	}
}

// WithLogger sets a custom logger for the analyzer.
func WithLogger(l logger.Logger) Option {
	return func(a *Analyzer) {
		if l != nil {
			a.logger = l
		}
	}
}
