package quadcopter

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/samuelfneumann/quadrl/environment"
	"github.com/samuelfneumann/quadrl/kinematics"
	"github.com/samuelfneumann/quadrl/timestep"
)

const (
	// TouchdownHeight is the height at or below which the quadcopter
	// has landed
	TouchdownHeight float64 = 0.1

	// SafeLandingSpeed is the fastest vertical speed at which a
	// touchdown is considered a landing rather than a crash
	SafeLandingSpeed float64 = 1.0
)

// Landing implements the task of descending gently to the ground.
//
// Rewards are the negative height, capped at MaxDistancePenalty, minus
// VelocityPenalty times the vertical speed. Touching down ends the
// episode, adding Bonus if the vertical speed is at most the safe
// landing speed and subtracting it otherwise. Running out of time
// subtracts Bonus and ends the episode.
type Landing struct {
	base
	touchdown *environment.FunctionEnder
	timeLimit *environment.TimeLimit
	safeSpeed float64
}

// NewLanding creates and returns a new Landing task
func NewLanding(s environment.Starter, safeSpeed,
	duration float64) *Landing {
	touchdown := func(obs *mat.VecDense) bool {
		return obs.AtVec(Z) <= TouchdownHeight
	}

	return &Landing{
		base: newBase(s, append(poseBounds(), velocityBounds())),
		touchdown: environment.NewFunctionEnder(touchdown,
			timestep.TerminalStateReached),
		timeLimit: environment.NewTimeLimit(duration),
		safeSpeed: safeSpeed,
	}
}

// Reset starts a new episode
func (l *Landing) Reset() (kinematics.Pose, kinematics.Twist, error) {
	return l.reset()
}

// Update processes a single control tick
func (l *Landing) Update(timestamp float64, pose kinematics.Pose,
	angularVelocity, linearAcceleration r3.Vec) (*kinematics.Wrench, bool,
	error) {
	if err := l.checkTick(pose); err != nil {
		return nil, false, err
	}

	vz := l.verticalVelocity(timestamp, pose.Position.Z)
	step, err := l.newStep(timestamp, pose, vz)
	if err != nil {
		return nil, false, err
	}

	speed := math.Abs(step.Observation.AtVec(VZ))
	step.Reward = -math.Min(step.Observation.AtVec(Z), MaxDistancePenalty) -
		VelocityPenalty*speed
	if environment.CheckEnders(&step, l.touchdown, l.timeLimit) {
		switch {
		case step.EndType == timestep.TerminalStateReached &&
			speed <= l.safeSpeed:
			step.Reward += Bonus
		case step.EndType == timestep.TerminalStateReached:
			step.EndType = timestep.Failure
			step.Reward -= Bonus
		default:
			step.Reward -= Bonus
		}
	}

	return l.act(step)
}
