// Package simulator provides the physics simulations that drive tasks
// when they run outside of a real flight stack
package simulator

import (
	"errors"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/samuelfneumann/quadrl/kinematics"
	"github.com/samuelfneumann/quadrl/simulator/planar"
	"github.com/samuelfneumann/quadrl/simulator/rigidbody"
)

// ErrUnknownSimulator is returned when constructing a simulator of a
// kind that does not exist
var ErrUnknownSimulator = errors.New("unknown simulator")

// Simulator simulates a quadcopter. Step applies a Wrench for dt
// seconds, after which the simulator reports the state that a flight
// stack would report to a task on the next control tick.
type Simulator interface {
	Reset(kinematics.Pose, kinematics.Twist) error
	Step(w *kinematics.Wrench, dt float64) error
	Time() float64
	Pose() kinematics.Pose
	Twist() kinematics.Twist
	LinearAcceleration() r3.Vec
}

// Renderer is a Simulator that can draw its current state to an image
// file
type Renderer interface {
	Simulator
	Render(path string) error
}

// Kinds of simulators
const (
	RigidBody = "rigidbody"
	Planar    = "planar"
)

var constructors = map[string]func() Simulator{
	RigidBody: func() Simulator { return rigidbody.NewDefault() },
	Planar:    func() Simulator { return planar.New() },
}

// New returns a new simulator of the given kind
func New(kind string) (Simulator, error) {
	c, ok := constructors[kind]
	if !ok {
		return nil, fmt.Errorf("new: %w %q", ErrUnknownSimulator, kind)
	}
	return c(), nil
}

// Kinds returns the kinds of simulators that can be constructed, in
// sorted order
func Kinds() []string {
	kinds := make([]string, 0, len(constructors))
	for k := range constructors {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}
