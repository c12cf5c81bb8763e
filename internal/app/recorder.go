package app

import (
	"math"
	"time"

	"github.com/okian/persona/internal/domain/features"
	"github.com/okian/persona/internal/domain/model"
)

// recorder keeps the unpruned history of a session: everything the log file
// needs and everything the end-of-session feature record is computed from.
type recorder struct {
	sessionID      string
	start          time.Time
	sampleInterval float64
	windowSeconds  float64
	mapName        string

	positions [][3]float64
	samples   []model.TimedSample
	speeds    []model.SpeedSample
	actions   []model.ActionEvent
	events    []model.LogEvent
	items     int
}

func (r *recorder) position(x, y, z, t float64) (model.TimedSample, bool) {
	cur := model.TimedSample{X: x, Z: z, T: t}
	var prev model.TimedSample
	hasPrev := len(r.samples) > 0
	if hasPrev {
		prev = r.samples[len(r.samples)-1]
	}
	r.positions = append(r.positions, [3]float64{x, y, z})
	r.samples = append(r.samples, cur)
	return prev, hasPrev
}

func (r *recorder) speed(v, t float64) {
	r.speeds = append(r.speeds, model.SpeedSample{V: v, T: t})
}

func (r *recorder) action(ev model.ActionEvent) {
	r.actions = append(r.actions, ev)
	switch ev.Kind {
	case model.ActionOutOfBounds:
		r.event(ev.T, model.EventOutOfBounds, nil)
	case model.ActionComplete:
		r.event(ev.T, model.EventComplete, nil)
	}
}

func (r *recorder) event(t float64, name string, payload map[string]any) {
	r.events = append(r.events, model.LogEvent{T: t, Name: name, Payload: payload})
}

// input is the whole-session extraction input as of now.
func (r *recorder) input(now float64, counters model.Counters) features.Input {
	return features.Input{
		Positions: append([]model.TimedSample(nil), r.samples...),
		Speeds:    append([]model.SpeedSample(nil), r.speeds...),
		Actions:   append([]model.ActionEvent(nil), r.actions...),
		Counters:  counters,
		Elapsed:   now,
	}
}

// log renders the session log as of now.
func (r *recorder) log(now float64, final model.Persona) *model.SessionLog {
	startEpoch := float64(r.start.Unix()) + float64(r.start.Nanosecond())/float64(time.Second)

	l := &model.SessionLog{
		Positions:      append([][3]float64{}, r.positions...),
		PositionT:      make([]float64, len(r.samples)),
		Actions:        make([]string, len(r.actions)),
		ActionT:        make([]float64, len(r.actions)),
		Events:         append([]model.LogEvent{}, r.events...),
		ItemsCollected: r.items,
		StartTime:      startEpoch,
		EndTime:        startEpoch + now,
		Meta: model.LogMeta{
			SessionID:       r.sessionID,
			TotalTime:       now,
			SampleInterval:  r.sampleInterval,
			WindowSeconds:   r.windowSeconds,
			UniquePositions: features.UniquePositions(r.samples),
			TotalPositions:  len(r.samples),
			FinalPersona:    string(final),
			Map:             r.mapName,
		},
	}
	for i, s := range r.samples {
		l.PositionT[i] = s.T
	}
	labels := make(map[string]struct{}, len(r.actions))
	for i, a := range r.actions {
		l.Actions[i] = a.Label
		l.ActionT[i] = a.T
		labels[a.Label] = struct{}{}
	}
	l.Meta.UniqueActions = len(labels)
	return l
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
