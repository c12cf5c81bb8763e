package model

// SessionLog is the archived record of one play session. The fields
// positions, actions, events, start_time, end_time and meta keep the layout of
// the earliest logs; position_t and action_t were added later and are
// optional when reading.
type SessionLog struct {
	Positions      [][3]float64 `json:"positions"`
	PositionT      []float64    `json:"position_t,omitempty"`
	Actions        []string     `json:"actions"`
	ActionT        []float64    `json:"action_t,omitempty"`
	Events         []LogEvent   `json:"events"`
	ItemsCollected int          `json:"items_collected"`
	StartTime      float64      `json:"start_time"`
	EndTime        float64      `json:"end_time"`
	Meta           LogMeta      `json:"meta"`
}

// LogEvent is a named occurrence with a free-form payload, stamped in session seconds.
type LogEvent struct {
	T       float64        `json:"t"`
	Name    string         `json:"name"`
	Payload map[string]any `json:"payload,omitempty"`
}

// LogMeta carries session-level facts.
type LogMeta struct {
	SessionID       string  `json:"session_id,omitempty"`
	TotalTime       float64 `json:"total_time"`
	SampleInterval  float64 `json:"sample_interval,omitempty"`
	WindowSeconds   float64 `json:"window_seconds,omitempty"`
	UniquePositions int     `json:"unique_positions"`
	TotalPositions  int     `json:"total_positions"`
	UniqueActions   int     `json:"unique_actions"`
	FinalPersona    string  `json:"final_persona,omitempty"`
	Map             string  `json:"map,omitempty"`
}

// Event names written into SessionLog.Events.
const (
	EventSessionStart   = "session_start"
	EventSessionEnd     = "session_end"
	EventPersonaChanged = "persona_changed"
	EventOutOfBounds    = "out_of_bounds"
	EventComplete       = "complete"
)

// Duration is the session length in seconds, preferring meta.total_time.
func (l *SessionLog) Duration() float64 {
	if l.Meta.TotalTime > 0 {
		return l.Meta.TotalTime
	}
	if d := l.EndTime - l.StartTime; d > 0 {
		return d
	}
	return 0
}

// Timed reports whether the log carries per-sample timestamps.
func (l *SessionLog) Timed() bool {
	return len(l.PositionT) == len(l.Positions) && len(l.ActionT) == len(l.Actions)
}
