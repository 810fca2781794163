// Package environment outlines the interfaces and structs needed to
// implement concrete tasks
package environment

import (
	"errors"

	"github.com/samuelfneumann/quadrl/agent"
	"github.com/samuelfneumann/quadrl/kinematics"
	"github.com/samuelfneumann/quadrl/spec"
	"github.com/samuelfneumann/quadrl/timestep"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	// ErrUnimplemented is returned by tasks which do not implement
	// Reset or Update. Drivers treat it as fatal.
	ErrUnimplemented = errors.New("task method not implemented")

	// ErrNoAgent is returned by Update when no agent has been bound
	// to the task
	ErrNoAgent = errors.New("no agent bound to task")
)

// Starter implements a distribution of starting states and samples
// starting states for tasks
type Starter interface {
	Start() mat.Vector
}

// Ender determines when episodes should end. If End returns true, it
// must also mark the TimeStep as the last of its episode with the
// reason the episode ended.
type Ender interface {
	End(*timestep.TimeStep) bool
}

// Task implements the reward scheme and termination rules of some
// control problem, and mediates between a driver and a single agent.
//
// A driver calls Reset at the start of each episode to get the initial
// condition, then calls Update once per control tick. Update forwards
// the observation, reward, and done flag to the agent and returns the
// command to apply until the next tick. Once Update reports done, the
// returned command must be ignored and the next call must be Reset.
type Task interface {
	// Reset starts a new episode and returns the initial pose and
	// velocity the driver should place the body in
	Reset() (kinematics.Pose, kinematics.Twist, error)

	// Update processes a single control tick. A nil Wrench means that
	// no command should be applied.
	Update(timestamp float64, pose kinematics.Pose, angularVelocity,
		linearAcceleration r3.Vec) (*kinematics.Wrench, bool, error)

	// SetAgent binds the agent the task hands its observations to
	SetAgent(agent.Agent)

	ObservationSpec() spec.Space
	ActionSpec() spec.Space
}

// TimeStepper is a task which exposes the TimeStep produced by its
// most recent Update
type TimeStepper interface {
	LastTimeStep() timestep.TimeStep
}

// Unimplemented can be embedded in a task to satisfy the Reset and
// Update methods of the Task interface, which then return
// ErrUnimplemented until overridden.
type Unimplemented struct{}

// Reset returns ErrUnimplemented
func (Unimplemented) Reset() (kinematics.Pose, kinematics.Twist, error) {
	return kinematics.Pose{}, kinematics.Twist{}, ErrUnimplemented
}

// Update returns ErrUnimplemented
func (Unimplemented) Update(float64, kinematics.Pose, r3.Vec,
	r3.Vec) (*kinematics.Wrench, bool, error) {
	return nil, false, ErrUnimplemented
}
