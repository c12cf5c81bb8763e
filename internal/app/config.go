package app

import (
	"fmt"

	"github.com/okian/persona/internal/config"
	"github.com/okian/persona/internal/domain/adapt"
	"github.com/okian/persona/internal/domain/features"
	"github.com/okian/persona/internal/domain/scoring"
	"github.com/okian/persona/internal/domain/stabilizer"
	"github.com/okian/persona/internal/domain/window"
	"github.com/okian/persona/pkg/logger"
)

// ScorerFromConfig builds the scorer described by cfg: the configured rule
// table (or the built-in one) normalized by max_expected_time_seconds and by
// the samples a full window holds, with the configured confidence gate.
func ScorerFromConfig(cfg *config.Config) (*scoring.Scorer, error) {
	rules := scoring.DefaultRules()
	if len(cfg.Personas) > 0 {
		rules = cfg.Personas
	}
	rules = scoring.WithMaxExpectedTimeRules(rules, cfg.MaxExpectedTimeSeconds)
	if cfg.SampleIntervalSeconds > 0 {
		rules = scoring.WithWindowSamplesRules(rules, cfg.WindowSeconds/cfg.SampleIntervalSeconds)
	}
	table, err := scoring.NewTable(rules)
	if err != nil {
		return nil, fmt.Errorf("build scoring table: %w", err)
	}

	rule := scoring.RequireAny
	if cfg.ConfidenceRule == config.ConfidenceAll {
		rule = scoring.RequireAll
	}
	return scoring.New(
		scoring.WithTable(table),
		scoring.WithMinimums(cfg.MinPositionSamples, cfg.MinActionSamples),
		scoring.WithConfidenceRule(rule),
	), nil
}

// NewSessionFromConfig builds a session with every tunable taken from cfg.
// Extra options are applied last.
func NewSessionFromConfig(cfg *config.Config, world adapt.World, opts ...Option) (*Session, error) {
	scorer, err := ScorerFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	log := logger.Get().Named("session")

	base := []Option{
		WithLogger(log),
		WithScorer(scorer),
		WithStore(window.NewStore(
			window.WithWindow(cfg.WindowSeconds),
			window.WithActionRetention(cfg.ActionRetentionSeconds),
		)),
		WithStabilizer(stabilizer.New(
			stabilizer.WithAlpha(cfg.SmoothingAlpha),
			stabilizer.WithThreshold(cfg.ActivationThreshold),
			stabilizer.WithCooldown(cfg.CooldownSeconds),
			stabilizer.WithPersonas(scorer.Table().Personas()),
		)),
		WithDispatcher(adapt.NewDispatcher(world,
			adapt.WithRefreshInterval(cfg.RefreshIntervalSeconds),
			adapt.WithLogger(log.Named("adapt")),
		)),
		WithFeatureParams(features.Params{IdleSpeedEpsilon: cfg.IdleSpeedEpsilon}),
		WithDetectInterval(cfg.DetectIntervalSeconds),
		WithSampleInterval(cfg.SampleIntervalSeconds),
	}
	return NewSession(world, append(base, opts...)...), nil
}
