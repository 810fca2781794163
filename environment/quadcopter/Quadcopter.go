// Package quadcopter implements tasks for controlling a quadcopter:
// taking off to a target height, hovering at it, landing from it, and
// all three in sequence.
//
// Every task observes the position of the quadcopter and its
// orientation quaternion, ordered (x, y, z, qx, qy, qz, qw). Tasks
// which need it append the vertical velocity, estimated by finite
// differences of consecutive heights. Actions are six dimensional: a
// force followed by a torque, each component bounded by MaxForce.
package quadcopter

import (
	"fmt"
	"io"
	"math"

	"github.com/charmbracelet/log"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/samuelfneumann/quadrl/agent"
	"github.com/samuelfneumann/quadrl/environment"
	"github.com/samuelfneumann/quadrl/kinematics"
	"github.com/samuelfneumann/quadrl/spec"
	"github.com/samuelfneumann/quadrl/timestep"
	"github.com/samuelfneumann/quadrl/utils/matutils"
)

const (
	// Commonly used task settings
	TargetHeight float64 = 10.0
	Duration     float64 = 5.0

	// CubeSize is the side length of the cube the quadcopter flies in.
	// The cube is centred above the origin in x and y and rests on the
	// ground at z = 0.
	CubeSize float64 = 300.0

	// MaxForce bounds each component of the force and torque
	MaxForce float64 = 50.0

	// MaxVerticalSpeed bounds the observed vertical velocity
	MaxVerticalSpeed float64 = 50.0

	// MaxDistancePenalty caps the distance term of the reward
	MaxDistancePenalty float64 = 20.0

	// Bonus is the reward added for reaching a goal and subtracted for
	// timing out or failing
	Bonus float64 = 10.0

	// VelocityPenalty scales the vertical speed term of the reward
	VelocityPenalty float64 = 0.1
)

// Indices of the observation vector
const (
	X = iota
	Y
	Z
	QX
	QY
	QZ
	QW
	VZ
	Phase
)

// poseBounds returns the bounds on position and orientation components
// of the observation
func poseBounds() []r1.Interval {
	half := CubeSize / 2.0
	return []r1.Interval{
		{Min: -half, Max: half},
		{Min: -half, Max: half},
		{Min: 0, Max: CubeSize},
		{Min: -1, Max: 1},
		{Min: -1, Max: 1},
		{Min: -1, Max: 1},
		{Min: -1, Max: 1},
	}
}

// velocityBounds returns the bounds on the observed vertical velocity
func velocityBounds() r1.Interval {
	return r1.Interval{Min: -MaxVerticalSpeed, Max: MaxVerticalSpeed}
}

// actionSpace returns the action space shared by all tasks
func actionSpace() spec.Space {
	bounds := make([]r1.Interval, kinematics.WrenchDims)
	for i := range bounds {
		bounds[i] = r1.Interval{Min: -MaxForce, Max: MaxForce}
	}
	return spec.NewBox(spec.Action, bounds)
}

// validateTarget panics if a target height cannot be observed
func validateTarget(target float64) {
	if target <= 0 || target > CubeSize {
		panic(fmt.Sprintf("illegal target height %v ∉ (%v, %v]", target,
			0.0, CubeSize))
	}
}

// distancePenalty returns the capped distance between a and b
func distancePenalty(a, b float64) float64 {
	return -math.Min(math.Abs(a-b), MaxDistancePenalty)
}

// base implements the bookkeeping shared by all quadcopter tasks: the
// bound agent, the starting state distribution, the observation and
// action spaces, vertical velocity estimation, and the conversion of
// agent actions into commands.
type base struct {
	environment.Starter
	agent    agent.Agent
	obsSpace spec.Space
	actSpace spec.Space
	logger   *log.Logger

	lastStep timestep.TimeStep
	lastTime float64
	lastZ    float64
	ticks    int
}

func newBase(s environment.Starter, obsBounds []r1.Interval) base {
	if s == nil {
		panic("starter cannot be nil")
	}
	return base{
		Starter:  s,
		obsSpace: spec.NewBox(spec.Observation, obsBounds),
		actSpace: actionSpace(),
		logger:   log.New(io.Discard),
	}
}

// SetAgent binds the agent the task hands its observations to
func (b *base) SetAgent(a agent.Agent) {
	b.agent = a
}

// SetLogger sets the logger that per-tick details are reported to
func (b *base) SetLogger(l *log.Logger) {
	if l == nil {
		l = log.New(io.Discard)
	}
	b.logger = l
}

// ObservationSpec returns the observation space of the task
func (b *base) ObservationSpec() spec.Space {
	return b.obsSpace
}

// ActionSpec returns the action space of the task
func (b *base) ActionSpec() spec.Space {
	return b.actSpace
}

// LastTimeStep returns the TimeStep produced by the most recent Update
func (b *base) LastTimeStep() timestep.TimeStep {
	return b.lastStep
}

// reset samples a starting position and clears the episode bookkeeping
func (b *base) reset() (kinematics.Pose, kinematics.Twist, error) {
	start := b.Start()
	if start.Len() != 3 {
		return kinematics.Pose{}, kinematics.Twist{},
			fmt.Errorf("reset: starting state must have 3 components, "+
				"have %v", start.Len())
	}

	position := r3.Vec{X: start.AtVec(0), Y: start.AtVec(1),
		Z: start.AtVec(2)}
	bounds := poseBounds()
	for i, v := range []float64{position.X, position.Y, position.Z} {
		if v < bounds[i].Min || v > bounds[i].Max {
			return kinematics.Pose{}, kinematics.Twist{},
				fmt.Errorf("reset: illegal starting position %v ∉ [%v, %v]",
					v, bounds[i].Min, bounds[i].Max)
		}
	}

	b.ticks = 0
	b.lastTime, b.lastZ = 0, 0
	b.lastStep = timestep.TimeStep{}

	return kinematics.NewPose(position), kinematics.Twist{}, nil
}

// checkTick validates the arguments of an Update call
func (b *base) checkTick(pose kinematics.Pose) error {
	if b.agent == nil {
		return fmt.Errorf("update: %w", environment.ErrNoAgent)
	}
	if !pose.Valid() {
		return fmt.Errorf("update: invalid pose %v", pose)
	}
	return nil
}

// verticalVelocity estimates the vertical velocity from the height at
// the previous tick. The first tick of an episode and ticks which do
// not advance the timestamp have zero velocity.
func (b *base) verticalVelocity(timestamp, z float64) float64 {
	vz := 0.0
	if dt := timestamp - b.lastTime; b.ticks > 0 && dt > 0 {
		vz = (z - b.lastZ) / dt
	}
	b.lastTime, b.lastZ = timestamp, z
	return vz
}

// newStep builds the TimeStep for the current tick, observing the pose
// followed by extra. The observation is clipped to the observation
// space.
func (b *base) newStep(timestamp float64, pose kinematics.Pose,
	extra ...float64) (timestep.TimeStep, error) {
	q := kinematics.Normalize(pose.Orientation)
	features := append([]float64{
		pose.Position.X, pose.Position.Y, pose.Position.Z,
		q.Imag, q.Jmag, q.Kmag, q.Real,
	}, extra...)

	obs, err := b.obsSpace.Clip(mat.NewVecDense(len(features), features))
	if err != nil {
		return timestep.TimeStep{}, fmt.Errorf("update: %w", err)
	}

	stepType := timestep.Mid
	if b.ticks == 0 {
		stepType = timestep.First
	}
	return timestep.New(stepType, 0, obs, b.ticks, timestamp), nil
}

// act hands the TimeStep to the agent and converts the returned action
// into a command. The command returned with a done TimeStep is only
// informative, so an unusable action on the last tick is dropped
// rather than reported.
func (b *base) act(step timestep.TimeStep) (*kinematics.Wrench, bool,
	error) {
	b.lastStep = step
	b.ticks++
	done := step.Last()

	b.logger.Debug("tick", "number", step.Number, "time", step.Time,
		"z", step.Observation.AtVec(Z), "reward", step.Reward, "done", done)

	action := b.agent.Step(step.Observation, step.Reward, done)
	if matutils.IsEmpty(action) {
		return nil, done, nil
	}

	clipped, err := b.actSpace.Clip(action)
	if err != nil {
		if done {
			return nil, done, nil
		}
		return nil, done, fmt.Errorf("update: %w", err)
	}

	wrench, err := kinematics.WrenchFromAction(clipped)
	if err != nil {
		return nil, done, fmt.Errorf("update: %w", err)
	}
	return wrench, done, nil
}
