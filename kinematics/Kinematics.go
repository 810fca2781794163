// Package kinematics defines the pose, velocity, and control command
// types exchanged between a driver and a task
package kinematics

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Pose is the position and orientation of a body in the world frame.
// Orientation is a unit quaternion.
type Pose struct {
	Position    r3.Vec
	Orientation quat.Number
}

// Identity returns the quaternion representing no rotation
func Identity() quat.Number {
	return quat.Number{Real: 1}
}

// NewPose returns a new Pose at position with the identity orientation
func NewPose(position r3.Vec) Pose {
	return Pose{Position: position, Orientation: Identity()}
}

// Normalize returns q scaled to unit length. The zero quaternion
// normalizes to the identity.
func Normalize(q quat.Number) quat.Number {
	norm := quat.Abs(q)
	if norm == 0 || math.IsNaN(norm) || math.IsInf(norm, 0) {
		return Identity()
	}
	return quat.Scale(1/norm, q)
}

// Valid returns whether the pose holds only finite values and a unit
// orientation quaternion
func (p Pose) Valid() bool {
	for _, v := range []float64{p.Position.X, p.Position.Y, p.Position.Z} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return math.Abs(quat.Abs(p.Orientation)-1) < 1e-6
}

func (p Pose) String() string {
	q := p.Orientation
	return fmt.Sprintf("Pose | Position: (%.3f, %.3f, %.3f) | "+
		"Orientation: (%.3f, %.3f, %.3f, %.3f)", p.Position.X, p.Position.Y,
		p.Position.Z, q.Imag, q.Jmag, q.Kmag, q.Real)
}

// Twist is the linear and angular velocity of a body
type Twist struct {
	Linear  r3.Vec
	Angular r3.Vec
}

// Wrench is a control command: a force and a torque applied to a body
type Wrench struct {
	Force  r3.Vec
	Torque r3.Vec
}

// WrenchDims is the number of action components a Wrench is built from
const WrenchDims = 6

// WrenchFromAction converts an action vector into a Wrench. The first
// three components are the force and the next three the torque.
// WrenchFromAction returns an error unless the action has exactly
// WrenchDims components.
func WrenchFromAction(action mat.Vector) (*Wrench, error) {
	if action.Len() != WrenchDims {
		return nil, fmt.Errorf("wrenchFromAction: action of length %v "+
			"does not have %v components", action.Len(), WrenchDims)
	}

	return &Wrench{
		Force: r3.Vec{
			X: action.AtVec(0),
			Y: action.AtVec(1),
			Z: action.AtVec(2),
		},
		Torque: r3.Vec{
			X: action.AtVec(3),
			Y: action.AtVec(4),
			Z: action.AtVec(5),
		},
	}, nil
}

// Action returns the Wrench as a six dimensional action vector
func (w *Wrench) Action() *mat.VecDense {
	return mat.NewVecDense(WrenchDims, []float64{
		w.Force.X, w.Force.Y, w.Force.Z,
		w.Torque.X, w.Torque.Y, w.Torque.Z,
	})
}
