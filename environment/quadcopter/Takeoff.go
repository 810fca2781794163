package quadcopter

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/samuelfneumann/quadrl/environment"
	"github.com/samuelfneumann/quadrl/kinematics"
	"github.com/samuelfneumann/quadrl/timestep"
)

// TakeoffStart returns the default starting positions of the Takeoff
// task: on or just above the ground, over the origin.
func TakeoffStart() []r1.Interval {
	return []r1.Interval{{Min: 0, Max: 0}, {Min: 0, Max: 0}, {Min: 0, Max: 1}}
}

// Takeoff implements the task of lifting off from the ground and
// reaching a target height.
//
// Rewards are the negative distance to the target height, capped at
// MaxDistancePenalty. Reaching the target height adds Bonus and ends
// the episode. Running out of time subtracts Bonus and ends the
// episode.
type Takeoff struct {
	base
	goalEnder *environment.FunctionEnder
	timeLimit *environment.TimeLimit
	target    float64
}

// NewTakeoff creates and returns a new Takeoff task. The Starter
// determines the starting position of the quadcopter, target is the
// height to reach, and duration is the time limit of each episode in
// seconds.
func NewTakeoff(s environment.Starter, target, duration float64) *Takeoff {
	validateTarget(target)

	goal := func(obs *mat.VecDense) bool {
		return obs.AtVec(Z) >= target
	}

	return &Takeoff{
		base:      newBase(s, poseBounds()),
		goalEnder: environment.NewFunctionEnder(goal, timestep.TerminalStateReached),
		timeLimit: environment.NewTimeLimit(duration),
		target:    target,
	}
}

// Reset starts a new episode
func (t *Takeoff) Reset() (kinematics.Pose, kinematics.Twist, error) {
	return t.reset()
}

// Update processes a single control tick
func (t *Takeoff) Update(timestamp float64, pose kinematics.Pose,
	angularVelocity, linearAcceleration r3.Vec) (*kinematics.Wrench, bool,
	error) {
	if err := t.checkTick(pose); err != nil {
		return nil, false, err
	}

	step, err := t.newStep(timestamp, pose)
	if err != nil {
		return nil, false, err
	}

	step.Reward = distancePenalty(t.target, pose.Position.Z)
	if environment.CheckEnders(&step, t.goalEnder, t.timeLimit) {
		switch step.EndType {
		case timestep.TerminalStateReached:
			step.Reward += Bonus
		case timestep.Timeout:
			step.Reward -= Bonus
		}
	}

	return t.act(step)
}

// Target returns the target height
func (t *Takeoff) Target() float64 {
	return t.target
}
