// Package rigidbody implements a simulator of a single rigid body
// flying in three dimensions above a flat ground
package rigidbody

import (
	"fmt"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/samuelfneumann/quadrl/kinematics"
)

// Default physical parameters
const (
	Mass    float64 = 1.0
	Inertia float64 = 0.1
	Gravity float64 = 9.81
)

// Body simulates a rigid body under gravity. Forces and torques are
// applied in the world frame and integrated with semi-implicit Euler
// steps. The ground at z = 0 stops the body from falling further and
// absorbs its vertical velocity.
type Body struct {
	mass    float64
	inertia r3.Vec // Diagonal of the inertia tensor
	gravity float64

	time  float64
	pose  kinematics.Pose
	twist kinematics.Twist
	accel r3.Vec
}

// New returns a new Body at rest at the origin
func New(mass float64, inertia r3.Vec, gravity float64) *Body {
	if mass <= 0 {
		panic(fmt.Sprintf("illegal mass %v ∉ (0, ∞)", mass))
	}
	for _, i := range []float64{inertia.X, inertia.Y, inertia.Z} {
		if i <= 0 {
			panic(fmt.Sprintf("illegal moment of inertia %v ∉ (0, ∞)", i))
		}
	}

	return &Body{
		mass:    mass,
		inertia: inertia,
		gravity: gravity,
		pose:    kinematics.NewPose(r3.Vec{}),
	}
}

// NewDefault returns a new Body with the default physical parameters
func NewDefault() *Body {
	return New(Mass, r3.Vec{X: Inertia, Y: Inertia, Z: Inertia}, Gravity)
}

// Reset places the body in pose moving with twist and restarts the
// simulation clock
func (b *Body) Reset(pose kinematics.Pose, twist kinematics.Twist) error {
	if !pose.Valid() {
		return fmt.Errorf("reset: invalid pose %v", pose)
	}
	if pose.Position.Z < 0 {
		return fmt.Errorf("reset: illegal height %v below the ground",
			pose.Position.Z)
	}

	b.time = 0
	b.pose = pose
	b.twist = twist
	b.accel = r3.Vec{}
	return nil
}

// Step advances the simulation by dt seconds while applying w. A nil
// Wrench applies no force or torque.
func (b *Body) Step(w *kinematics.Wrench, dt float64) error {
	if dt <= 0 {
		return fmt.Errorf("step: illegal timestep %v ∉ (0, ∞)", dt)
	}

	force := r3.Vec{Z: -b.mass * b.gravity}
	var torque r3.Vec
	if w != nil {
		force = r3.Add(force, w.Force)
		torque = w.Torque
	}

	// Linear motion
	prev := b.twist.Linear
	velocity := r3.Add(prev, r3.Scale(dt/b.mass, force))
	position := r3.Add(b.pose.Position, r3.Scale(dt, velocity))
	if position.Z <= 0 {
		position.Z = 0
		if velocity.Z < 0 {
			velocity.Z = 0
		}
	}
	b.accel = r3.Scale(1/dt, r3.Sub(velocity, prev))
	b.twist.Linear = velocity
	b.pose.Position = position

	// Angular motion
	alpha := r3.Vec{
		X: torque.X / b.inertia.X,
		Y: torque.Y / b.inertia.Y,
		Z: torque.Z / b.inertia.Z,
	}
	omega := r3.Add(b.twist.Angular, r3.Scale(dt, alpha))
	b.twist.Angular = omega

	q := b.pose.Orientation
	spin := quat.Mul(quat.Number{Imag: omega.X, Jmag: omega.Y,
		Kmag: omega.Z}, q)
	b.pose.Orientation = kinematics.Normalize(quat.Add(q,
		quat.Scale(0.5*dt, spin)))

	b.time += dt
	return nil
}

// Time returns the simulation time in seconds since the last Reset
func (b *Body) Time() float64 {
	return b.time
}

// Pose returns the pose of the body
func (b *Body) Pose() kinematics.Pose {
	return b.pose
}

// Twist returns the velocity of the body
func (b *Body) Twist() kinematics.Twist {
	return b.twist
}

// LinearAcceleration returns the acceleration of the body over the
// last step
func (b *Body) LinearAcceleration() r3.Vec {
	return b.accel
}
