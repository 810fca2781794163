// Package timestep implements timesteps of the task-agent interaction
package timestep

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// StepType denotes the type of step that a TimeStep can be, either the
// first step of an episode, a middle step, or a last step
type StepType int

const (
	First StepType = iota
	Mid
	Last
)

func (s StepType) String() string {
	switch s {
	case First:
		return "First"
	case Last:
		return "Last"
	default:
		return "Mid"
	}
}

// EndType describes why an episode ended. It is only meaningful on
// the Last TimeStep of an episode.
type EndType int

const (
	// Unfinished marks a TimeStep that did not end its episode
	Unfinished EndType = iota

	// TerminalStateReached marks an episode that ended because the
	// goal of the task was reached
	TerminalStateReached

	// Timeout marks an episode that ran out of time
	Timeout

	// Failure marks an episode that ended because the controlled body
	// entered a failure condition, such as drifting too far from a
	// target
	Failure
)

func (e EndType) String() string {
	switch e {
	case TerminalStateReached:
		return "TerminalStateReached"
	case Timeout:
		return "Timeout"
	case Failure:
		return "Failure"
	default:
		return "Unfinished"
	}
}

// TimeStep packages together a single control tick of a task. Time
// is the timestamp reported by the driver for the tick and Number is
// the index of the tick within the episode.
type TimeStep struct {
	StepType
	EndType
	Reward      float64
	Observation *mat.VecDense
	Number      int
	Time        float64
}

// New returns a new TimeStep
func New(t StepType, reward float64, obs *mat.VecDense, n int,
	time float64) TimeStep {
	return TimeStep{
		StepType:    t,
		Reward:      reward,
		Observation: obs,
		Number:      n,
		Time:        time,
	}
}

// First returns whether a TimeStep is the first in an episode
func (t *TimeStep) First() bool {
	return t.StepType == First
}

// Mid returns whether a TimeStep is a middle step in an episode
func (t *TimeStep) Mid() bool {
	return t.StepType == Mid
}

// Last returns whether a TimeStep is the last step in an episode
func (t *TimeStep) Last() bool {
	return t.StepType == Last
}

// SetEnd marks the TimeStep as the last of its episode, ending for
// reason e
func (t *TimeStep) SetEnd(e EndType) {
	t.StepType = Last
	t.EndType = e
}

func (t TimeStep) String() string {
	str := "TimeStep | Type: %v  |  End: %v  |  Reward:  %.2f  |  " +
		"Step Number:  %v  |  Time: %.3f"

	return fmt.Sprintf(str, t.StepType, t.EndType, t.Reward, t.Number,
		t.Time)
}

// Transition packages together the previous observation, the action
// taken in it, the reward that action earned, the observation that
// followed, and whether that observation ended the episode.
//
// Transitions are built by agents that learn from experience. They are
// not part of the task-agent call protocol.
type Transition struct {
	State     *mat.VecDense
	Action    *mat.VecDense
	Reward    float64
	NextState *mat.VecDense
	Done      bool
}

// NewTransition returns a new Transition
func NewTransition(state, action *mat.VecDense, reward float64,
	nextState *mat.VecDense, done bool) Transition {
	return Transition{state, action, reward, nextState, done}
}
