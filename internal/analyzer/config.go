package analyzer

import (
	"fmt"

	"github.com/okian/persona/internal/config"
	"github.com/okian/persona/internal/domain/features"
	"github.com/okian/persona/internal/domain/model"
	"github.com/okian/persona/internal/domain/scoring"
)

// NewFromConfig builds an analyzer with every tunable taken from cfg. Extra
// options are applied last.
func NewFromConfig(cfg *config.Config, scorer *scoring.Scorer, opts ...Option) (*Analyzer, error) {
	rare := make(map[model.Persona]float64, len(cfg.RareThresholds))
	for name, v := range cfg.RareThresholds {
		p, err := model.ParsePersona(name)
		if err != nil {
			return nil, fmt.Errorf("rare_thresholds: %w", err)
		}
		rare[p] = v
	}

	base := []Option{
		WithScorer(scorer),
		WithFeatureParams(features.Params{IdleSpeedEpsilon: cfg.IdleSpeedEpsilon}),
		WithSampleInterval(cfg.SampleIntervalSeconds),
		WithThreshold(cfg.ActivationThreshold),
		WithRareThresholds(rare),
		WithMaxClusters(cfg.KMeansClusters),
		WithMaxExpectedTime(cfg.MaxExpectedTimeSeconds),
		WithWorkers(cfg.AnalysisWorkers),
		WithPattern(cfg.LogPattern),
	}
	if !cfg.ClusteringEnabled {
		base = append(base, WithClusterer(nil))
	}
	return New(append(base, opts...)...), nil
}
