// Package config defines process configuration structures and loading hooks.
//
// Conventions:
// - Provide New(...) initializer to build a Config with defaults.
// - Loader errors wrap ErrLoadConfig, validation errors wrap ErrInvalidConfig.
package config

import (
	"fmt"
	"math"
	"strings"

	"github.com/okian/persona/internal/domain/scoring"
)

// Confidence rules accepted by ConfidenceRule.
const (
	ConfidenceAny = "any"
	ConfidenceAll = "all"
)

// Input front-ends accepted by Input.
const (
	InputLines    = "lines"
	InputTerminal = "terminal"
)

// Config contains process configuration. Times are in seconds.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json records on stderr.
	LogFormat string `koanf:"log_format"`

	// LogDir is where session logs are written by run and read by analyze.
	LogDir string `koanf:"log_dir"`

	// LogPattern is the glob the analyzer matches inside LogDir.
	LogPattern string `koanf:"log_pattern"`

	// WindowSeconds is the horizon of the position and speed windows.
	WindowSeconds float64 `koanf:"window_seconds"`

	// ActionRetentionSeconds is the horizon of the action window. Never below WindowSeconds.
	ActionRetentionSeconds float64 `koanf:"action_retention_seconds"`

	// SampleIntervalSeconds is the run-mode tick and the synthetic time step for legacy logs.
	SampleIntervalSeconds float64 `koanf:"sample_interval_seconds"`

	DetectIntervalSeconds  float64 `koanf:"detect_interval_seconds"`
	CooldownSeconds        float64 `koanf:"cooldown_seconds"`
	RefreshIntervalSeconds float64 `koanf:"refresh_interval_seconds"`

	// SmoothingAlpha is the EMA factor applied to raw persona scores.
	SmoothingAlpha float64 `koanf:"smoothing_alpha"`

	// ActivationThreshold is the smoothed score a persona needs to beat Neutral.
	ActivationThreshold float64 `koanf:"activation_threshold"`

	// IdleSpeedEpsilon is the speed below which a sample counts as idle.
	IdleSpeedEpsilon float64 `koanf:"idle_speed_epsilon"`

	MinPositionSamples int `koanf:"min_position_samples"`
	MinActionSamples   int `koanf:"min_action_samples"`

	// ConfidenceRule is "any" (one channel with enough data suffices) or "all".
	ConfidenceRule string `koanf:"confidence_rule"`

	// MaxExpectedTimeSeconds normalizes elapsed time for the Speedrunner score.
	MaxExpectedTimeSeconds float64 `koanf:"max_expected_time_seconds"`

	ClusteringEnabled bool `koanf:"clustering_enabled"`
	KMeansClusters    int  `koanf:"kmeans_clusters"`
	AnalysisWorkers   int  `koanf:"analysis_workers"`

	// ReportDB is an optional SQLite path where analysis runs are archived.
	ReportDB string `koanf:"report_db"`

	// HTTPAddr enables the run-mode observer (/healthz, /metrics, /persona) when set.
	HTTPAddr string `koanf:"http_addr"`

	// Input selects the run-mode front-end: lines or terminal.
	Input          string `koanf:"input"`
	InputQueueSize int    `koanf:"input_queue_size"`

	WorldSize int   `koanf:"world_size"`
	WorldSeed int64 `koanf:"world_seed"`

	// RareThresholds maps persona names to the score above which the analyzer flags them.
	RareThresholds map[string]float64 `koanf:"rare_thresholds"`

	// Personas replaces the built-in scoring table when non-empty.
	Personas []scoring.Rule `koanf:"personas"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:               "info",
		LogFormat:              "text",
		LogDir:                 "logs",
		LogPattern:             "playerlog_*.json",
		WindowSeconds:          8,
		ActionRetentionSeconds: 16,
		SampleIntervalSeconds:  0.1,
		DetectIntervalSeconds:  2,
		CooldownSeconds:        6,
		RefreshIntervalSeconds: 8,
		SmoothingAlpha:         0.1,
		ActivationThreshold:    0.25,
		IdleSpeedEpsilon:       0.05,
		MinPositionSamples:     4,
		MinActionSamples:       2,
		ConfidenceRule:         ConfidenceAny,
		MaxExpectedTimeSeconds: 3600,
		ClusteringEnabled:      true,
		KMeansClusters:         4,
		AnalysisWorkers:        4,
		Input:                  InputLines,
		InputQueueSize:         256,
		WorldSize:              28,
		WorldSeed:              1,
		RareThresholds: map[string]float64{
			"Speedrunner": 0.8,
			"Glitcher":    0.5,
			"Creator":     0.6,
		},
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	positive := []struct {
		key string
		v   float64
	}{
		{"window_seconds", c.WindowSeconds},
		{"sample_interval_seconds", c.SampleIntervalSeconds},
		{"detect_interval_seconds", c.DetectIntervalSeconds},
		{"refresh_interval_seconds", c.RefreshIntervalSeconds},
		{"max_expected_time_seconds", c.MaxExpectedTimeSeconds},
	}
	for _, p := range positive {
		if math.IsNaN(p.v) || math.IsInf(p.v, 0) || p.v <= 0 {
			return fmt.Errorf("%w: %s must be > 0, got %v", ErrInvalidConfig, p.key, p.v)
		}
	}

	switch {
	case c.ActionRetentionSeconds < c.WindowSeconds:
		return fmt.Errorf("%w: action_retention_seconds (%v) must be >= window_seconds (%v)", ErrInvalidConfig, c.ActionRetentionSeconds, c.WindowSeconds)
	case c.CooldownSeconds < 0:
		return fmt.Errorf("%w: cooldown_seconds must be >= 0", ErrInvalidConfig)
	case c.SmoothingAlpha <= 0 || c.SmoothingAlpha > 1:
		return fmt.Errorf("%w: smoothing_alpha must be in (0,1], got %v", ErrInvalidConfig, c.SmoothingAlpha)
	case c.ActivationThreshold < 0 || c.ActivationThreshold > 1:
		return fmt.Errorf("%w: activation_threshold must be in [0,1], got %v", ErrInvalidConfig, c.ActivationThreshold)
	case c.IdleSpeedEpsilon < 0:
		return fmt.Errorf("%w: idle_speed_epsilon must be >= 0", ErrInvalidConfig)
	case c.MinPositionSamples < 0 || c.MinActionSamples < 0:
		return fmt.Errorf("%w: minimum sample counts must be >= 0", ErrInvalidConfig)
	case c.KMeansClusters < 2:
		return fmt.Errorf("%w: kmeans_clusters must be >= 2", ErrInvalidConfig)
	case c.AnalysisWorkers < 1:
		return fmt.Errorf("%w: analysis_workers must be >= 1", ErrInvalidConfig)
	case c.InputQueueSize < 1:
		return fmt.Errorf("%w: input_queue_size must be >= 1", ErrInvalidConfig)
	case c.WorldSize < 5:
		return fmt.Errorf("%w: world_size must be >= 5", ErrInvalidConfig)
	case strings.TrimSpace(c.LogDir) == "":
		return fmt.Errorf("%w: log_dir must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.LogPattern) == "":
		return fmt.Errorf("%w: log_pattern must not be empty", ErrInvalidConfig)
	}

	switch c.ConfidenceRule {
	case ConfidenceAny, ConfidenceAll:
	default:
		return fmt.Errorf("%w: confidence_rule must be %q or %q, got %q", ErrInvalidConfig, ConfidenceAny, ConfidenceAll, c.ConfidenceRule)
	}
	switch c.Input {
	case InputLines, InputTerminal:
	default:
		return fmt.Errorf("%w: input must be %q or %q, got %q", ErrInvalidConfig, InputLines, InputTerminal, c.Input)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log_format must be text or json, got %q", ErrInvalidConfig, c.LogFormat)
	}

	if len(c.Personas) > 0 {
		if _, err := scoring.NewTable(c.Personas); err != nil {
			return fmt.Errorf("%w: personas: %w", ErrInvalidConfig, err)
		}
	}
	return nil
}
