// Package features turns windowed samples into a fixed set of normalized
// behavioral measurements. Everything here is pure: the same Input and Params
// always give the same Record.
package features

import (
	"math"

	"github.com/okian/persona/internal/domain/model"
)

// Default extraction constants.
const (
	DefaultIdleSpeedEpsilon = 0.05
	minDeltaT               = 1e-6
	gridPrecision           = 100 // positions are bucketed to 2 decimals
)

// Input is everything one extraction pass reads. Positions, Speeds and Actions
// are ordered by time. Counters covers the whole session, not just the window.
type Input struct {
	Positions []model.TimedSample
	Speeds    []model.SpeedSample
	Actions   []model.ActionEvent
	Counters  model.Counters
	Elapsed   float64
}

// Params tunes extraction.
type Params struct {
	IdleSpeedEpsilon float64
}

// DefaultParams returns the stock tuning.
func DefaultParams() Params {
	return Params{IdleSpeedEpsilon: DefaultIdleSpeedEpsilon}
}

// Record is one feature vector. Field tags double as the names the scoring
// table refers to.
type Record struct {
	PosRatio               float64 `json:"pos_ratio"`
	AvgSpeed               float64 `json:"avg_speed"`
	IdleFrac               float64 `json:"idle_frac"`
	UniqueActions          int     `json:"unique_actions"`
	JumpCount              int     `json:"jump_count"`
	InteractCount          int     `json:"interact_count"`
	RiskyCount             int     `json:"risky_count"`
	RestartCount           int     `json:"restart_count"`
	OutOfBoundsCount       int     `json:"out_of_bounds_count"`
	CompleteCount          int     `json:"complete_count"`
	ElapsedTime            float64 `json:"elapsed_time"`
	PositionSamples        int     `json:"position_samples"`
	ActionSamples          int     `json:"action_samples"`
	SpeedSamples           int     `json:"speed_samples"`
	CumulativeSpawnCount   int     `json:"cumulative_spawn_count"`
	CumulativeUndoCount    int     `json:"cumulative_undo_count"`
	CumulativeRestartCount int     `json:"cumulative_restart_count"`
	UnrecognizedCount      int     `json:"unrecognized_count"`
}

// Extract computes the Record for in.
func Extract(in Input, p Params) Record {
	r := Record{
		PosRatio:               PosRatio(in.Positions),
		AvgSpeed:               AvgSpeed(in.Positions),
		IdleFrac:               IdleFrac(in.Speeds, p.IdleSpeedEpsilon),
		ElapsedTime:            in.Elapsed,
		PositionSamples:        len(in.Positions),
		ActionSamples:          len(in.Actions),
		SpeedSamples:           len(in.Speeds),
		CumulativeSpawnCount:   in.Counters.Count(model.ActionSpawn),
		CumulativeUndoCount:    in.Counters.Count(model.ActionUndo),
		CumulativeRestartCount: in.Counters.Count(model.ActionRestart),
	}

	var seen [model.NumActionKinds]bool
	for _, a := range in.Actions {
		if int(a.Kind) < 0 || int(a.Kind) >= model.NumActionKinds {
			a.Kind = model.ActionUnrecognized
		}
		switch a.Kind {
		case model.ActionJump:
			r.JumpCount++
		case model.ActionInteract:
			r.InteractCount++
		case model.ActionRisky:
			r.RiskyCount++
		case model.ActionRestart:
			r.RestartCount++
		case model.ActionOutOfBounds:
			r.OutOfBoundsCount++
		case model.ActionComplete:
			r.CompleteCount++
		case model.ActionUnrecognized:
			r.UnrecognizedCount++
			continue
		}
		if !seen[a.Kind] {
			seen[a.Kind] = true
			r.UniqueActions++
		}
	}
	return r
}

// PosRatio is the share of distinct grid cells among the positions. N
// identical samples give 1/N; an empty slice gives 0.
func PosRatio(positions []model.TimedSample) float64 {
	if len(positions) == 0 {
		return 0
	}
	return float64(UniquePositions(positions)) / float64(len(positions))
}

// UniquePositions counts distinct positions after rounding to two decimals.
func UniquePositions(positions []model.TimedSample) int {
	type cell struct{ x, z float64 }
	cells := make(map[cell]struct{}, len(positions))
	for _, s := range positions {
		cells[cell{round2(s.X), round2(s.Z)}] = struct{}{}
	}
	return len(cells)
}

// AvgSpeed is the mean speed over consecutive position pairs.
func AvgSpeed(positions []model.TimedSample) float64 {
	if len(positions) < 2 {
		return 0
	}
	var sum float64
	for i := 1; i < len(positions); i++ {
		sum += SpeedBetween(positions[i-1], positions[i])
	}
	return sum / float64(len(positions)-1)
}

// SpeedBetween is the planar speed from a to b. The time step is floored so
// two samples at the same instant never divide by zero.
func SpeedBetween(a, b model.TimedSample) float64 {
	dt := math.Max(b.T-a.T, minDeltaT)
	return math.Hypot(b.X-a.X, b.Z-a.Z) / dt
}

// IdleFrac is the share of speed samples below eps.
func IdleFrac(speeds []model.SpeedSample, eps float64) float64 {
	if len(speeds) == 0 {
		return 0
	}
	idle := 0
	for _, s := range speeds {
		if s.V < eps {
			idle++
		}
	}
	return float64(idle) / float64(len(speeds))
}

func round2(v float64) float64 {
	return math.Round(v*gridPrecision) / gridPrecision
}

// Clamp01 limits v to [0,1]. NaN maps to 0.
func Clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
