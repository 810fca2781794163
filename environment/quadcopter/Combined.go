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

// Stage is a stage of the Combined task
type Stage int

const (
	TakeoffStage Stage = iota
	HoverStage
	LandingStage
)

func (s Stage) String() string {
	switch s {
	case TakeoffStage:
		return "Takeoff"
	case HoverStage:
		return "Hover"
	default:
		return "Landing"
	}
}

const (
	// HoldTime is the default time the Combined task must hover before
	// landing
	HoldTime float64 = 3.0

	// CombinedDuration is the default time limit of the Combined task
	CombinedDuration float64 = 15.0

	// StageBonus is the reward for reaching the target height during
	// the Combined task
	StageBonus float64 = 5.0
)

// Combined implements the task of taking off to a target height,
// hovering there for a hold time, then landing.
//
// Each stage rewards the quadcopter as its standalone task does.
// Reaching the target height adds StageBonus and moves to the hover
// stage. Drifting from the target while hovering subtracts Bonus and
// ends the episode. After the hold time the quadcopter must land; a
// touchdown ends the episode exactly as in the Landing task. Touching
// down before the landing stage is not a landing. Running out of time
// subtracts Bonus and ends the episode.
//
// The observation appends the vertical velocity and the current stage.
type Combined struct {
	base
	timeLimit *environment.TimeLimit
	target    float64
	maxDrift  float64
	holdTime  float64

	stage     Stage
	holdStart float64
}

// NewCombined creates and returns a new Combined task
func NewCombined(s environment.Starter, target, maxDrift, holdTime,
	duration float64) *Combined {
	validateTarget(target)
	if maxDrift <= 0 {
		panic(fmt.Sprintf("illegal maximum drift %v ∉ (0, ∞)", maxDrift))
	}
	if holdTime < 0 || holdTime > duration {
		panic(fmt.Sprintf("illegal hold time %v ∉ [%v, %v]", holdTime, 0.0,
			duration))
	}

	bounds := append(poseBounds(), velocityBounds(),
		r1.Interval{Min: float64(TakeoffStage), Max: float64(LandingStage)})

	return &Combined{
		base:      newBase(s, bounds),
		timeLimit: environment.NewTimeLimit(duration),
		target:    target,
		maxDrift:  maxDrift,
		holdTime:  holdTime,
	}
}

// Reset starts a new episode in the takeoff stage
func (c *Combined) Reset() (kinematics.Pose, kinematics.Twist, error) {
	c.stage = TakeoffStage
	c.holdStart = 0
	return c.reset()
}

// Stage returns the current stage of the episode
func (c *Combined) Stage() Stage {
	return c.stage
}

// Update processes a single control tick
func (c *Combined) Update(timestamp float64, pose kinematics.Pose,
	angularVelocity, linearAcceleration r3.Vec) (*kinematics.Wrench, bool,
	error) {
	if err := c.checkTick(pose); err != nil {
		return nil, false, err
	}

	z := pose.Position.Z
	vz := c.verticalVelocity(timestamp, z)
	speed := math.Min(math.Abs(vz), MaxVerticalSpeed)

	reward, end := c.advance(timestamp, z, speed)

	step, err := c.newStep(timestamp, pose, vz, float64(c.stage))
	if err != nil {
		return nil, false, err
	}
	step.Reward = reward

	if end != timestep.Unfinished {
		step.SetEnd(end)
	} else if c.timeLimit.End(&step) {
		step.Reward -= Bonus
	}

	return c.act(step)
}

// advance computes the reward of the current stage and moves to the
// next stage when the current one is complete
func (c *Combined) advance(timestamp, z, speed float64) (float64,
	timestep.EndType) {
	switch c.stage {
	case TakeoffStage:
		reward := distancePenalty(c.target, z)
		if z >= c.target {
			c.stage = HoverStage
			c.holdStart = timestamp
			reward += StageBonus
		}
		return reward, timestep.Unfinished

	case HoverStage:
		reward := distancePenalty(c.target, z) - VelocityPenalty*speed
		if math.Abs(z-c.target) > c.maxDrift {
			return reward - Bonus, timestep.Failure
		}
		if timestamp-c.holdStart >= c.holdTime {
			c.stage = LandingStage
		}
		return reward, timestep.Unfinished

	default:
		reward := -math.Min(z, MaxDistancePenalty) - VelocityPenalty*speed
		if z > TouchdownHeight {
			return reward, timestep.Unfinished
		}
		if speed <= SafeLandingSpeed {
			return reward + Bonus, timestep.TerminalStateReached
		}
		return reward - Bonus, timestep.Failure
	}
}
