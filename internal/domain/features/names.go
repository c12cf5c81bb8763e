package features

// Feature names accepted by Value.
const (
	NamePosRatio               = "pos_ratio"
	NameAvgSpeed               = "avg_speed"
	NameIdleFrac               = "idle_frac"
	NameUniqueActions          = "unique_actions"
	NameJumpCount              = "jump_count"
	NameInteractCount          = "interact_count"
	NameRiskyCount             = "risky_count"
	NameRestartCount           = "restart_count"
	NameOutOfBoundsCount       = "out_of_bounds_count"
	NameCompleteCount          = "complete_count"
	NameElapsedTime            = "elapsed_time"
	NamePositionSamples        = "position_samples"
	NameActionSamples          = "action_samples"
	NameSpeedSamples           = "speed_samples"
	NameCumulativeSpawnCount   = "cumulative_spawn_count"
	NameCumulativeUndoCount    = "cumulative_undo_count"
	NameCumulativeRestartCount = "cumulative_restart_count"
	NameUnrecognizedCount      = "unrecognized_count"
)

// Names lists every feature in a stable order.
func Names() []string {
	return []string{
		NamePosRatio, NameAvgSpeed, NameIdleFrac, NameUniqueActions,
		NameJumpCount, NameInteractCount, NameRiskyCount, NameRestartCount,
		NameOutOfBoundsCount, NameCompleteCount, NameElapsedTime,
		NamePositionSamples, NameActionSamples, NameSpeedSamples,
		NameCumulativeSpawnCount, NameCumulativeUndoCount, NameCumulativeRestartCount,
		NameUnrecognizedCount,
	}
}

// Known reports whether name is a feature of Record.
func Known(name string) bool {
	_, ok := Record{}.Value(name)
	return ok
}

// Value returns the named feature as a float.
func (r Record) Value(name string) (float64, bool) {
	switch name {
	case NamePosRatio:
		return r.PosRatio, true
	case NameAvgSpeed:
		return r.AvgSpeed, true
	case NameIdleFrac:
		return r.IdleFrac, true
	case NameUniqueActions:
		return float64(r.UniqueActions), true
	case NameJumpCount:
		return float64(r.JumpCount), true
	case NameInteractCount:
		return float64(r.InteractCount), true
	case NameRiskyCount:
		return float64(r.RiskyCount), true
	case NameRestartCount:
		return float64(r.RestartCount), true
	case NameOutOfBoundsCount:
		return float64(r.OutOfBoundsCount), true
	case NameCompleteCount:
		return float64(r.CompleteCount), true
	case NameElapsedTime:
		return r.ElapsedTime, true
	case NamePositionSamples:
		return float64(r.PositionSamples), true
	case NameActionSamples:
		return float64(r.ActionSamples), true
	case NameSpeedSamples:
		return float64(r.SpeedSamples), true
	case NameCumulativeSpawnCount:
		return float64(r.CumulativeSpawnCount), true
	case NameCumulativeUndoCount:
		return float64(r.CumulativeUndoCount), true
	case NameCumulativeRestartCount:
		return float64(r.CumulativeRestartCount), true
	case NameUnrecognizedCount:
		return float64(r.UnrecognizedCount), true
	}
	return 0, false
}

// VectorSize is the length of Vector's result.
const VectorSize = 10

// Vector is the clustering representation of r. Action counts are divided by
// one plus the number of actions so long and short sessions stay comparable;
// the last component is a speed score normalized by maxExpected seconds.
func (r Record) Vector(maxExpected float64) []float64 {
	n := 1 + float64(r.ActionSamples)
	speed := 0.0
	if maxExpected > 0 {
		speed = Clamp01(1 - r.ElapsedTime/maxExpected)
	}
	return []float64{
		r.PosRatio,
		float64(r.UniqueActions) / n,
		float64(r.RiskyCount) / n,
		float64(r.JumpCount) / n,
		float64(r.RestartCount),
		float64(r.OutOfBoundsCount),
		float64(r.InteractCount) / n,
		float64(r.CumulativeSpawnCount + r.CumulativeUndoCount),
		float64(r.CompleteCount),
		speed,
	}
}
