package tracker

import (
	"fmt"

	ts "github.com/samuelfneumann/quadrl/timestep"
)

// Return tracks the episodic return in an experiment. Each TimeStep
// of an episode contributes its reward to the return, including the
// reward of the first TimeStep.
//
// Note: An episode must finish for this Tracker to record its data.
// If the last episode in an experiment does not finish, that episode's
// return will not be recorded.
type Return struct {
	lastTimeStep   int
	currentReturn  float64
	episodeReturns []float64
}

// NewReturn creates and returns a new *Return Tracker
func NewReturn() *Return {
	return &Return{lastTimeStep: -1}
}

// Track tracks the reward seen on a timestep. When a new episode
// starts, the Tracker starts accumulating the rewards for the new
// episode separately from the rewards seen on previous episodes.
//
// The first TimeStep of an episode discards any rewards left over from
// an episode which never finished.
//
// Track panics if it is called for non-sequential timesteps
func (r *Return) Track(step ts.TimeStep) {
	if step.First() {
		r.currentReturn = 0.0
		r.lastTimeStep = -1
	}
	if r.lastTimeStep+1 != step.Number {
		panic(fmt.Sprintf("track: last two timesteps tracked are not "+
			"sequential: timestep %v --> timestep %v were tracked",
			r.lastTimeStep, step.Number))
	}

	r.currentReturn += step.Reward
	if !step.Last() {
		r.lastTimeStep = step.Number
		return
	}

	r.episodeReturns = append(r.episodeReturns, r.currentReturn)
	r.currentReturn = 0.0
	r.lastTimeStep = -1
}

// Name returns the name of the tracked metric
func (r *Return) Name() string {
	return "return"
}

// Data returns the returns of all finished episodes
func (r *Return) Data() []float64 {
	return append([]float64(nil), r.episodeReturns...)
}

// Current returns the return accumulated so far in the running episode
func (r *Return) Current() float64 {
	return r.currentReturn
}
