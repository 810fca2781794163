package environment

import "github.com/samuelfneumann/quadrl/timestep"

// TimeLimit implements the Ender interface to end episodes once the
// timestamp of a TimeStep exceeds some duration
type TimeLimit struct {
	duration float64
}

// NewTimeLimit creates and returns a new time limit of duration
// seconds
func NewTimeLimit(duration float64) *TimeLimit {
	return &TimeLimit{duration}
}

// End determines whether or not the current episode should be ended,
// returning a boolean to indicate episode termination. If the episode
// should be ended End() will modify the timestep so that its StepType
// field is timestep.Last and its EndType is timestep.Timeout.
func (l *TimeLimit) End(t *timestep.TimeStep) bool {
	if t.Time > l.duration {
		t.SetEnd(timestep.Timeout)
		return true
	}
	return false
}

// Duration returns the time limit in seconds
func (l *TimeLimit) Duration() float64 {
	return l.duration
}
