package quadcopter

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r1"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/samuelfneumann/quadrl/environment"
	"github.com/samuelfneumann/quadrl/kinematics"
	"github.com/samuelfneumann/quadrl/timestep"
)

// MaxDrift is the default distance from the target height a hovering
// quadcopter may drift before failing
const MaxDrift float64 = 5.0

// HoverStart returns the default starting positions of the Hover and
// Landing tasks: near the target height, over the origin.
func HoverStart() []r1.Interval {
	return []r1.Interval{
		{Min: 0, Max: 0},
		{Min: 0, Max: 0},
		{Min: TargetHeight - 0.5, Max: TargetHeight + 0.5},
	}
}

// Hover implements the task of holding a target height.
//
// Rewards are the negative distance to the target height, capped at
// MaxDistancePenalty, minus VelocityPenalty times the vertical speed.
// Drifting further than the maximum drift from the target subtracts
// Bonus and ends the episode. Holding the height until the time limit
// adds Bonus and ends the episode.
type Hover struct {
	base
	driftEnder *environment.IntervalLimit
	timeLimit  *environment.TimeLimit
	target     float64
	maxDrift   float64
}

// NewHover creates and returns a new Hover task
func NewHover(s environment.Starter, target, maxDrift,
	duration float64) *Hover {
	validateTarget(target)
	if maxDrift <= 0 {
		panic(fmt.Sprintf("illegal maximum drift %v ∉ (0, ∞)", maxDrift))
	}

	bounds := append(poseBounds(), velocityBounds())
	drift := []r1.Interval{{Min: target - maxDrift, Max: target + maxDrift}}

	return &Hover{
		base: newBase(s, bounds),
		driftEnder: environment.NewIntervalLimit(drift, []int{Z},
			timestep.Failure),
		timeLimit: environment.NewTimeLimit(duration),
		target:    target,
		maxDrift:  maxDrift,
	}
}

// Reset starts a new episode
func (h *Hover) Reset() (kinematics.Pose, kinematics.Twist, error) {
	return h.reset()
}

// Update processes a single control tick
func (h *Hover) Update(timestamp float64, pose kinematics.Pose,
	angularVelocity, linearAcceleration r3.Vec) (*kinematics.Wrench, bool,
	error) {
	if err := h.checkTick(pose); err != nil {
		return nil, false, err
	}

	vz := h.verticalVelocity(timestamp, pose.Position.Z)
	step, err := h.newStep(timestamp, pose, vz)
	if err != nil {
		return nil, false, err
	}

	step.Reward = distancePenalty(h.target, pose.Position.Z) -
		VelocityPenalty*math.Abs(step.Observation.AtVec(VZ))
	if environment.CheckEnders(&step, h.driftEnder, h.timeLimit) {
		switch step.EndType {
		case timestep.Failure:
			step.Reward -= Bonus
		case timestep.Timeout:
			step.Reward += Bonus
		}
	}

	return h.act(step)
}

// Target returns the target height
func (h *Hover) Target() float64 {
	return h.target
}
