package features

import (
	"sort"

	"github.com/okian/persona/internal/domain/model"
)

// DefaultSampleInterval is the position period assumed for logs that carry
// neither per-sample timestamps nor meta.sample_interval.
const DefaultSampleInterval = 0.1

// FromLog rebuilds a whole-session Input from an archived log. Nothing is
// pruned: the result spans the entire session.
//
// Logs without position_t/action_t get synthetic times. Positions are spaced
// by meta.sample_interval (or fallbackInterval), actions are spread evenly over
// the session, and out_of_bounds/complete events are folded into the action
// stream because those logs recorded them only as events.
func FromLog(log *model.SessionLog, fallbackInterval float64) Input {
	if fallbackInterval <= 0 {
		fallbackInterval = DefaultSampleInterval
	}
	in := Input{Elapsed: log.Duration()}

	timed := log.Timed()
	interval := log.Meta.SampleInterval
	if interval <= 0 {
		interval = fallbackInterval
	}

	in.Positions = make([]model.TimedSample, len(log.Positions))
	for i, p := range log.Positions {
		t := float64(i) * interval
		if timed {
			t = log.PositionT[i]
		}
		in.Positions[i] = model.TimedSample{X: p[0], Z: p[2], T: t}
	}
	if len(in.Positions) > 1 {
		in.Speeds = make([]model.SpeedSample, 0, len(in.Positions)-1)
		for i := 1; i < len(in.Positions); i++ {
			in.Speeds = append(in.Speeds, model.SpeedSample{V: SpeedBetween(in.Positions[i-1], in.Positions[i]), T: in.Positions[i].T})
		}
	}

	in.Actions = make([]model.ActionEvent, 0, len(log.Actions))
	for i, label := range log.Actions {
		var t float64
		if timed {
			t = log.ActionT[i]
		} else if n := len(log.Actions); n > 0 {
			t = in.Elapsed * float64(i) / float64(n)
		}
		in.Actions = append(in.Actions, model.NewActionEvent(label, t))
	}
	if !timed {
		for _, ev := range log.Events {
			switch ev.Name {
			case model.EventOutOfBounds, model.EventComplete:
				in.Actions = append(in.Actions, model.NewActionEvent(ev.Name, ev.T))
			}
		}
		sort.SliceStable(in.Actions, func(i, j int) bool { return in.Actions[i].T < in.Actions[j].T })
	}

	for _, a := range in.Actions {
		in.Counters.Add(a.Kind)
	}
	return in
}
