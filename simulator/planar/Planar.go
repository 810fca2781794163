// Package planar implements a simulator of a quadcopter flying in the
// vertical x-z plane, backed by the Box2D physics engine.
//
// Box2D simulates the plane with its x axis along the world x axis and
// its y axis along the world z axis. Rotations in the plane are about
// the world y axis. Forces and torques outside the plane are ignored.
package planar

import (
	"fmt"
	"image/color"
	"math"

	"github.com/ByteArena/box2d"
	"github.com/fogleman/gg"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/samuelfneumann/quadrl/kinematics"
)

// Physical parameters of the simulated quadcopter
const (
	Gravity    float64 = 9.81
	HalfWidth  float64 = 0.25
	HalfHeight float64 = 0.05
	Mass       float64 = 1.0
	GroundSize float64 = 300.0

	// Box2D solver iterations
	VelocityIterations int = 6
	PositionIterations int = 2
)

// Rendering parameters
const (
	ViewportW float64 = 600
	ViewportH float64 = 400
	Scale     float64 = 20 // Pixels per unit
)

// Quadcopter simulates a rigid box under gravity above a static
// ground. Heights are reported for the bottom of the box, so a
// quadcopter resting on the ground is at height 0.
type Quadcopter struct {
	world  box2d.B2World
	body   *box2d.B2Body
	ground *box2d.B2Body

	time  float64
	accel r3.Vec
}

// New returns a new Quadcopter at rest on the ground at the origin
func New() *Quadcopter {
	q := &Quadcopter{}
	q.world = box2d.MakeB2World(box2d.B2Vec2{X: 0, Y: -Gravity})

	// Ground
	groundDef := box2d.MakeB2BodyDef()
	groundDef.Type = 0 // Static body
	q.ground = q.world.CreateBody(&groundDef)

	groundShape := box2d.NewB2EdgeShape()
	groundShape.Set(box2d.MakeB2Vec2(-GroundSize/2, 0),
		box2d.MakeB2Vec2(GroundSize/2, 0))
	groundFix := box2d.MakeB2FixtureDef()
	groundFix.Shape = groundShape
	groundFix.Friction = 0.5
	q.ground.CreateFixtureFromDef(&groundFix)

	// Quadcopter
	bodyDef := box2d.MakeB2BodyDef()
	bodyDef.Type = 2 // Dynamic body
	bodyDef.AllowSleep = false
	bodyDef.Position = box2d.MakeB2Vec2(0, HalfHeight)
	q.body = q.world.CreateBody(&bodyDef)

	shape := box2d.NewB2PolygonShape()
	shape.SetAsBox(HalfWidth, HalfHeight)
	fix := box2d.MakeB2FixtureDef()
	fix.Shape = shape
	fix.Density = Mass / (4 * HalfWidth * HalfHeight)
	fix.Friction = 0.5
	q.body.CreateFixtureFromDef(&fix)

	return q
}

// Reset places the quadcopter in pose moving with twist and restarts
// the simulation clock. Only the in-plane components of pose and twist
// are used.
func (q *Quadcopter) Reset(pose kinematics.Pose, twist kinematics.Twist) error {
	if !pose.Valid() {
		return fmt.Errorf("reset: invalid pose %v", pose)
	}
	if pose.Position.Z < 0 {
		return fmt.Errorf("reset: illegal height %v below the ground",
			pose.Position.Z)
	}

	q.body.SetTransform(box2d.MakeB2Vec2(pose.Position.X,
		pose.Position.Z+HalfHeight), pitch(pose.Orientation))
	q.body.SetLinearVelocity(box2d.MakeB2Vec2(twist.Linear.X,
		twist.Linear.Z))
	q.body.SetAngularVelocity(-twist.Angular.Y)
	q.body.SetAwake(true)

	q.time = 0
	q.accel = r3.Vec{}
	return nil
}

// Step advances the simulation by dt seconds while applying w. A nil
// Wrench applies no force or torque.
func (q *Quadcopter) Step(w *kinematics.Wrench, dt float64) error {
	if dt <= 0 {
		return fmt.Errorf("step: illegal timestep %v ∉ (0, ∞)", dt)
	}

	if w != nil {
		q.body.ApplyForceToCenter(box2d.MakeB2Vec2(w.Force.X, w.Force.Z),
			true)
		q.body.ApplyTorque(-w.Torque.Y, true)
	}

	prev := q.body.GetLinearVelocity()
	q.world.Step(dt, VelocityIterations, PositionIterations)
	v := q.body.GetLinearVelocity()

	q.accel = r3.Vec{X: (v.X - prev.X) / dt, Z: (v.Y - prev.Y) / dt}
	q.time += dt
	return nil
}

// Time returns the simulation time in seconds since the last Reset
func (q *Quadcopter) Time() float64 {
	return q.time
}

// Pose returns the pose of the quadcopter
func (q *Quadcopter) Pose() kinematics.Pose {
	p := q.body.GetPosition()

	// A rotation by θ in the Box2D plane is a rotation by -θ about the
	// world y axis
	half := -q.body.GetAngle() / 2
	return kinematics.Pose{
		Position:    r3.Vec{X: p.X, Z: p.Y - HalfHeight},
		Orientation: quat.Number{Real: math.Cos(half), Jmag: math.Sin(half)},
	}
}

// Twist returns the velocity of the quadcopter
func (q *Quadcopter) Twist() kinematics.Twist {
	v := q.body.GetLinearVelocity()
	return kinematics.Twist{
		Linear:  r3.Vec{X: v.X, Z: v.Y},
		Angular: r3.Vec{Y: -q.body.GetAngularVelocity()},
	}
}

// LinearAcceleration returns the acceleration of the quadcopter over
// the last step
func (q *Quadcopter) LinearAcceleration() r3.Vec {
	return q.accel
}

// pitch returns the Box2D angle of the rotation about the world y axis
// in o
func pitch(o quat.Number) float64 {
	o = kinematics.Normalize(o)
	return -2 * math.Atan2(o.Jmag, o.Real)
}

// worldToPixel converts world coordinates in the plane to pixel
// coordinates of a rendered frame, centred on the quadcopter
// horizontally and with the ground along the bottom of the frame
func worldToPixel(x, z, centreX float64) (float64, float64) {
	px := (x-centreX)*Scale + ViewportW/2
	py := ViewportH - 20 - z*Scale
	return px, py
}

// Render draws the current frame of the simulation to a PNG image at
// path
func (q *Quadcopter) Render(path string) error {
	dc := gg.NewContext(int(ViewportW), int(ViewportH))
	dc.SetColor(color.RGBA{R: 30, G: 30, B: 30, A: 255})
	dc.Clear()

	p := q.body.GetPosition()

	// Ground
	dc.SetColor(color.RGBA{R: 255, G: 166, B: 0, A: 255})
	dc.SetLineWidth(3.0)
	x1, y1 := worldToPixel(-GroundSize/2, 0, p.X)
	x2, y2 := worldToPixel(GroundSize/2, 0, p.X)
	dc.DrawLine(x1, y1, x2, y2)
	dc.Stroke()

	// Quadcopter, rotated about its centre
	cx, cy := worldToPixel(p.X, p.Y, p.X)
	dc.Push()
	dc.RotateAbout(-q.body.GetAngle(), cx, cy)
	dc.DrawRectangle(cx-HalfWidth*Scale, cy-HalfHeight*Scale,
		2*HalfWidth*Scale, 2*HalfHeight*Scale)
	dc.SetColor(color.RGBA{R: 128, G: 102, B: 230, A: 255})
	dc.Fill()
	dc.Pop()

	// Height marker
	dc.SetColor(color.White)
	dc.DrawString(fmt.Sprintf("z = %.2f  t = %.2f", p.Y-HalfHeight, q.time),
		10, 20)

	if err := dc.SavePNG(path); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	return nil
}
