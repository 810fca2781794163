package quadcopter

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/samuelfneumann/quadrl/environment"
	"github.com/samuelfneumann/quadrl/kinematics"
	"github.com/samuelfneumann/quadrl/timestep"
)

const (
	rate    = 30.0
	gravity = 9.81
)

// call records the arguments of a single Step call
type call struct {
	state  *mat.VecDense
	reward float64
	done   bool
}

// scripted is an agent returning a fixed action and recording the
// arguments of every call
type scripted struct {
	action mat.Vector
	calls  []call
}

func (s *scripted) Step(state mat.Vector, reward float64,
	done bool) mat.Vector {
	s.calls = append(s.calls, call{mat.VecDenseCopyOf(state), reward, done})
	return s.action
}

func fixedStart(x, y, z float64) *environment.UniformStarter {
	return environment.NewUniformStarter([]r1.Interval{
		{Min: x, Max: x},
		{Min: y, Max: y},
		{Min: z, Max: z},
	}, 1)
}

func upward(force float64) mat.Vector {
	return mat.NewVecDense(6, []float64{0, 0, force, 0, 0, 0})
}

// fly runs a single episode of task, integrating the vertical motion of
// a unit mass under gravity and the commanded force. It returns the
// index of the tick on which the task reported done, or -1 if the
// episode did not end within maxTicks.
func fly(t *testing.T, task environment.Task, maxTicks int) int {
	t.Helper()

	pose, twist, err := task.Reset()
	if err != nil {
		t.Fatal(err)
	}
	vz := twist.Linear.Z

	for tick := 0; tick < maxTicks; tick++ {
		wrench, done, err := task.Update(float64(tick)/rate, pose, r3.Vec{},
			r3.Vec{})
		if err != nil {
			t.Fatal(err)
		}
		if done {
			return tick
		}

		force := 0.0
		if wrench != nil {
			force = wrench.Force.Z
		}
		vz += (force - gravity) / rate
		pose.Position.Z += vz / rate
		if pose.Position.Z < 0 {
			pose.Position.Z, vz = 0, 0
		}
	}
	return -1
}

func TestTakeoffReachesTarget(t *testing.T) {
	task := NewTakeoff(fixedStart(0, 0, 0), TargetHeight, Duration)
	a := &scripted{action: upward(MaxForce)}
	task.SetAgent(a)

	end := fly(t, task, 1000)
	if end < 0 || end >= int(Duration*rate) {
		t.Fatalf("episode should end before tick %v, ended at %v",
			int(Duration*rate), end)
	}

	for i, c := range a.calls {
		z := c.state.AtVec(Z)
		if i < end && (c.done || z >= TargetHeight) {
			t.Errorf("tick %v: done = %v at height %v", i, c.done, z)
		}
		if i == end && (!c.done || z < TargetHeight) {
			t.Errorf("final tick %v: done = %v at height %v", i, c.done, z)
		}
	}

	last := task.LastTimeStep()
	if last.EndType != timestep.TerminalStateReached {
		t.Errorf("end type: want %v, have %v", timestep.TerminalStateReached,
			last.EndType)
	}
	want := distancePenalty(TargetHeight, last.Observation.AtVec(Z)) + Bonus
	if last.Reward != want {
		t.Errorf("final reward: want %v, have %v", want, last.Reward)
	}
}

func TestTakeoffTimeout(t *testing.T) {
	task := NewTakeoff(fixedStart(0, 0, 0), TargetHeight, Duration)
	a := &scripted{action: upward(0)}
	task.SetAgent(a)

	end := fly(t, task, 1000)
	if end < int(Duration*rate) {
		t.Fatalf("episode should end at or after tick %v, ended at %v",
			int(Duration*rate), end)
	}
	if end != int(Duration*rate)+1 {
		t.Errorf("episode should end on the first tick after %v s, ended "+
			"at tick %v", Duration, end)
	}

	last := task.LastTimeStep()
	if last.EndType != timestep.Timeout {
		t.Errorf("end type: want %v, have %v", timestep.Timeout,
			last.EndType)
	}
	if want := -TargetHeight - Bonus; last.Reward != want {
		t.Errorf("final reward: want %v, have %v", want, last.Reward)
	}
	if len(a.calls) != end+1 {
		t.Errorf("agent calls: want %v, have %v", end+1, len(a.calls))
	}
}

func TestTerminalCall(t *testing.T) {
	task := NewTakeoff(fixedStart(0, 0, 0), TargetHeight, Duration)
	a := &scripted{action: upward(MaxForce)}
	task.SetAgent(a)

	if _, _, err := task.Reset(); err != nil {
		t.Fatal(err)
	}

	// A pose above the target ends the episode on the first tick, yet
	// the agent is still consulted and its action still converted
	pose := kinematics.NewPose(r3.Vec{Z: 12})
	wrench, done, err := task.Update(0, pose, r3.Vec{}, r3.Vec{})
	if err != nil {
		t.Fatal(err)
	}
	if !done {
		t.Fatal("episode should be done")
	}
	if len(a.calls) != 1 || !a.calls[0].done {
		t.Errorf("agent should be called once with done, calls: %v",
			len(a.calls))
	}
	if wrench == nil || wrench.Force.Z != MaxForce {
		t.Errorf("terminal command should still be converted, have %v",
			wrench)
	}

	// A malformed action on the terminal tick is dropped, not reported
	a.action = mat.NewVecDense(2, nil)
	if _, _, err := task.Reset(); err != nil {
		t.Fatal(err)
	}
	wrench, done, err = task.Update(0, pose, r3.Vec{}, r3.Vec{})
	if err != nil || !done || wrench != nil {
		t.Errorf("want (nil, true, nil), have (%v, %v, %v)", wrench, done,
			err)
	}
}

func TestActionClamping(t *testing.T) {
	task := NewTakeoff(fixedStart(0, 0, 0), TargetHeight, Duration)
	a := &scripted{
		action: mat.NewVecDense(6, []float64{100, -100, 1e9, 3, -51, 50}),
	}
	task.SetAgent(a)

	if _, _, err := task.Reset(); err != nil {
		t.Fatal(err)
	}
	wrench, done, err := task.Update(0, kinematics.NewPose(r3.Vec{}),
		r3.Vec{}, r3.Vec{})
	if err != nil {
		t.Fatal(err)
	}
	if done {
		t.Fatal("episode should not be done")
	}

	want := kinematics.Wrench{
		Force:  r3.Vec{X: 50, Y: -50, Z: 50},
		Torque: r3.Vec{X: 3, Y: -50, Z: 50},
	}
	if *wrench != want {
		t.Errorf("want %v, have %v", want, *wrench)
	}
	if !task.ActionSpec().Contains(wrench.Action()) {
		t.Error("command should lie within the action space")
	}
	if a.action.AtVec(2) != 1e9 {
		t.Error("clamping should not modify the agent's action")
	}
}

func TestActionClampingNonFinite(t *testing.T) {
	task := NewTakeoff(fixedStart(0, 0, 0), TargetHeight, Duration)
	a := &scripted{
		action: mat.NewVecDense(6, []float64{0, math.Inf(1), math.NaN(),
			math.NaN(), math.Inf(-1), 0}),
	}
	task.SetAgent(a)

	if _, _, err := task.Reset(); err != nil {
		t.Fatal(err)
	}
	wrench, _, err := task.Update(0, kinematics.NewPose(r3.Vec{}),
		r3.Vec{}, r3.Vec{})
	if err != nil {
		t.Fatal(err)
	}

	want := kinematics.Wrench{
		Force:  r3.Vec{X: 0, Y: MaxForce, Z: 0},
		Torque: r3.Vec{X: 0, Y: -MaxForce, Z: 0},
	}
	if *wrench != want {
		t.Errorf("want %v, have %v", want, *wrench)
	}
	if !task.ActionSpec().Contains(wrench.Action()) {
		t.Error("command should lie within the action space")
	}
}

func TestNoCommand(t *testing.T) {
	task := NewTakeoff(fixedStart(0, 0, 0), TargetHeight, Duration)
	task.SetAgent(&scripted{action: (*mat.VecDense)(nil)})

	if _, _, err := task.Reset(); err != nil {
		t.Fatal(err)
	}
	wrench, done, err := task.Update(0, kinematics.NewPose(r3.Vec{}),
		r3.Vec{}, r3.Vec{})
	if err != nil || done || wrench != nil {
		t.Errorf("want (nil, false, nil), have (%v, %v, %v)", wrench, done,
			err)
	}
}

func TestActionDimensionMismatch(t *testing.T) {
	task := NewTakeoff(fixedStart(0, 0, 0), TargetHeight, Duration)
	task.SetAgent(&scripted{action: mat.NewVecDense(3, nil)})

	if _, _, err := task.Reset(); err != nil {
		t.Fatal(err)
	}
	_, _, err := task.Update(0, kinematics.NewPose(r3.Vec{}), r3.Vec{},
		r3.Vec{})
	if err == nil {
		t.Error("action of the wrong dimension should be an error")
	}
}

func TestNoAgent(t *testing.T) {
	tasks := []environment.Task{
		NewTakeoff(fixedStart(0, 0, 0), TargetHeight, Duration),
		NewHover(fixedStart(0, 0, 10), TargetHeight, MaxDrift, Duration),
		NewLanding(fixedStart(0, 0, 10), SafeLandingSpeed, Duration),
		NewCombined(fixedStart(0, 0, 0), TargetHeight, MaxDrift, HoldTime,
			CombinedDuration),
	}

	for _, task := range tasks {
		if _, _, err := task.Reset(); err != nil {
			t.Fatal(err)
		}
		_, _, err := task.Update(0, kinematics.NewPose(r3.Vec{}), r3.Vec{},
			r3.Vec{})
		if !errors.Is(err, environment.ErrNoAgent) {
			t.Errorf("want %v, have %v", environment.ErrNoAgent, err)
		}
	}
}

func TestObservationsWithinSpace(t *testing.T) {
	tasks := []environment.Task{
		NewTakeoff(fixedStart(0, 0, 0), TargetHeight, Duration),
		NewHover(fixedStart(0, 0, 10), TargetHeight, 1000, Duration),
		NewLanding(fixedStart(0, 0, 10), SafeLandingSpeed, Duration),
		NewCombined(fixedStart(0, 0, 0), TargetHeight, 1000, HoldTime,
			CombinedDuration),
	}

	poses := []kinematics.Pose{
		kinematics.NewPose(r3.Vec{X: -500, Y: 500, Z: 1000}),
		kinematics.NewPose(r3.Vec{X: 1, Y: 2, Z: 3}),
		kinematics.NewPose(r3.Vec{X: 1, Y: 2, Z: 290}),
	}

	for _, task := range tasks {
		a := &scripted{}
		task.SetAgent(a)
		if _, _, err := task.Reset(); err != nil {
			t.Fatal(err)
		}

		for i, pose := range poses {
			_, done, err := task.Update(float64(i)/rate, pose, r3.Vec{},
				r3.Vec{})
			if err != nil {
				t.Fatal(err)
			}
			if done {
				break
			}
		}

		for _, c := range a.calls {
			if !task.ObservationSpec().Contains(c.state) {
				t.Errorf("observation %v outside of observation space",
					c.state.RawVector().Data)
			}
		}
	}
}

func TestResetBounds(t *testing.T) {
	bounds := []r1.Interval{{Min: -1, Max: 1}, {Min: -2, Max: 2},
		{Min: 0, Max: 1}}
	task := NewTakeoff(environment.NewUniformStarter(bounds, 7),
		TargetHeight, Duration)

	var prev kinematics.Pose
	for i := 0; i < 500; i++ {
		pose, twist, err := task.Reset()
		if err != nil {
			t.Fatal(err)
		}
		if !pose.Valid() {
			t.Fatalf("invalid starting pose %v", pose)
		}
		if twist != (kinematics.Twist{}) {
			t.Errorf("starting twist should be at rest, have %v", twist)
		}

		p := pose.Position
		for j, v := range []float64{p.X, p.Y, p.Z} {
			if v < bounds[j].Min || v > bounds[j].Max {
				t.Fatalf("starting position %v ∉ [%v, %v]", v, bounds[j].Min,
					bounds[j].Max)
			}
		}
		if i > 0 && pose == prev {
			t.Errorf("consecutive resets should be independent draws")
		}
		prev = pose
	}
}

func TestResetOutsideCube(t *testing.T) {
	task := NewTakeoff(fixedStart(0, 0, -1), TargetHeight, Duration)
	if _, _, err := task.Reset(); err == nil {
		t.Error("starting below the ground should be an error")
	}
}

func TestRewardTiming(t *testing.T) {
	task := NewTakeoff(fixedStart(0, 0, 0), TargetHeight, Duration)
	a := &scripted{action: upward(MaxForce)}
	task.SetAgent(a)
	if _, _, err := task.Reset(); err != nil {
		t.Fatal(err)
	}

	// The reward of each tick scores the pose reported on that tick
	heights := []float64{0, 2, 5, 9}
	for i, z := range heights {
		_, _, err := task.Update(float64(i)/rate,
			kinematics.NewPose(r3.Vec{Z: z}), r3.Vec{}, r3.Vec{})
		if err != nil {
			t.Fatal(err)
		}
		if want := -(TargetHeight - z); a.calls[i].reward != want {
			t.Errorf("tick %v: want reward %v, have %v", i, want,
				a.calls[i].reward)
		}
	}

	if step := task.LastTimeStep(); !step.Mid() {
		t.Error("later ticks should be middle timesteps")
	}
}

func TestInvalidPose(t *testing.T) {
	task := NewTakeoff(fixedStart(0, 0, 0), TargetHeight, Duration)
	task.SetAgent(&scripted{})
	if _, _, err := task.Reset(); err != nil {
		t.Fatal(err)
	}

	pose := kinematics.NewPose(r3.Vec{Z: math.NaN()})
	if _, _, err := task.Update(0, pose, r3.Vec{}, r3.Vec{}); err == nil {
		t.Error("NaN pose should be an error")
	}
}

func TestVerticalVelocity(t *testing.T) {
	task := NewHover(fixedStart(0, 0, 10), TargetHeight, MaxDrift, Duration)
	a := &scripted{}
	task.SetAgent(a)
	if _, _, err := task.Reset(); err != nil {
		t.Fatal(err)
	}

	ticks := []struct {
		time float64
		z    float64
		vz   float64
	}{
		{0, 10, 0},   // first tick
		{0.5, 11, 2}, // climbing
		{0.5, 12, 0}, // timestamp did not advance
		{1.0, 11, -2},
	}

	for i, tick := range ticks {
		_, _, err := task.Update(tick.time,
			kinematics.NewPose(r3.Vec{Z: tick.z}), r3.Vec{}, r3.Vec{})
		if err != nil {
			t.Fatal(err)
		}
		if have := a.calls[i].state.AtVec(VZ); math.Abs(have-tick.vz) > 1e-9 {
			t.Errorf("tick %v: want vz %v, have %v", i, tick.vz, have)
		}
	}
}

func TestHoverDrift(t *testing.T) {
	task := NewHover(fixedStart(0, 0, 10), TargetHeight, MaxDrift, Duration)
	task.SetAgent(&scripted{})
	if _, _, err := task.Reset(); err != nil {
		t.Fatal(err)
	}

	_, done, err := task.Update(0, kinematics.NewPose(r3.Vec{Z: 10}),
		r3.Vec{}, r3.Vec{})
	if err != nil || done {
		t.Fatalf("hovering at target: done = %v, err = %v", done, err)
	}

	_, done, err = task.Update(1, kinematics.NewPose(r3.Vec{Z: 16}),
		r3.Vec{}, r3.Vec{})
	if err != nil {
		t.Fatal(err)
	}
	if !done || task.LastTimeStep().EndType != timestep.Failure {
		t.Errorf("drifting should fail, have %v", task.LastTimeStep())
	}

	want := -6.0 - VelocityPenalty*6.0 - Bonus
	if have := task.LastTimeStep().Reward; math.Abs(have-want) > 1e-9 {
		t.Errorf("reward: want %v, have %v", want, have)
	}
}

func TestHoverTimeout(t *testing.T) {
	task := NewHover(fixedStart(0, 0, 10), TargetHeight, MaxDrift, 1.0)
	task.SetAgent(&scripted{})
	if _, _, err := task.Reset(); err != nil {
		t.Fatal(err)
	}

	_, done, err := task.Update(1.5, kinematics.NewPose(r3.Vec{Z: 10}),
		r3.Vec{}, r3.Vec{})
	if err != nil {
		t.Fatal(err)
	}
	if !done || task.LastTimeStep().EndType != timestep.Timeout {
		t.Errorf("hover should end at the time limit")
	}
	if have := task.LastTimeStep().Reward; have != Bonus {
		t.Errorf("reward: want %v, have %v", Bonus, have)
	}
}

func TestLanding(t *testing.T) {
	tests := []struct {
		name    string
		to      float64 // height one second after starting at 1
		endType timestep.EndType
		reward  float64
	}{
		{"Gentle", 0.05, timestep.TerminalStateReached, -0.05 - 0.095 + Bonus},
		{"Crash", -0.0, timestep.Failure, -0.0 - 0.1 - Bonus},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			task := NewLanding(fixedStart(0, 0, 10), 0.96, Duration)
			task.SetAgent(&scripted{})
			if _, _, err := task.Reset(); err != nil {
				t.Fatal(err)
			}

			_, done, err := task.Update(0, kinematics.NewPose(r3.Vec{Z: 1}),
				r3.Vec{}, r3.Vec{})
			if err != nil || done {
				t.Fatalf("first tick: done = %v, err = %v", done, err)
			}

			_, done, err = task.Update(1,
				kinematics.NewPose(r3.Vec{Z: test.to}), r3.Vec{}, r3.Vec{})
			if err != nil {
				t.Fatal(err)
			}
			if !done {
				t.Fatal("touchdown should end the episode")
			}

			last := task.LastTimeStep()
			if last.EndType != test.endType {
				t.Errorf("end type: want %v, have %v", test.endType,
					last.EndType)
			}
			if math.Abs(last.Reward-test.reward) > 1e-9 {
				t.Errorf("reward: want %v, have %v", test.reward,
					last.Reward)
			}
		})
	}
}

func TestCombinedStages(t *testing.T) {
	task := NewCombined(fixedStart(0, 0, 0), TargetHeight, MaxDrift, 1.0,
		CombinedDuration)
	a := &scripted{}
	task.SetAgent(a)
	if _, _, err := task.Reset(); err != nil {
		t.Fatal(err)
	}

	ticks := []struct {
		time  float64
		z     float64
		stage Stage
		done  bool
	}{
		{0, 0, TakeoffStage, false},
		{1, 10, HoverStage, false},
		{1.5, 10, HoverStage, false},
		{2.0, 10, LandingStage, false},
		{2.5, 5, LandingStage, false},
		{12.5, 0, LandingStage, true},
	}

	for i, tick := range ticks {
		_, done, err := task.Update(tick.time,
			kinematics.NewPose(r3.Vec{Z: tick.z}), r3.Vec{}, r3.Vec{})
		if err != nil {
			t.Fatal(err)
		}
		if done != tick.done {
			t.Errorf("tick %v: want done %v, have %v", i, tick.done, done)
		}
		if task.Stage() != tick.stage {
			t.Errorf("tick %v: want stage %v, have %v", i, tick.stage,
				task.Stage())
		}
		if have := a.calls[i].state.AtVec(Phase); have != float64(tick.stage) {
			t.Errorf("tick %v: observed stage %v", i, have)
		}
	}

	if a.calls[1].reward != StageBonus {
		t.Errorf("reaching the target: want reward %v, have %v", StageBonus,
			a.calls[1].reward)
	}
	if task.LastTimeStep().EndType != timestep.TerminalStateReached {
		t.Errorf("slow touchdown should land, have %v",
			task.LastTimeStep().EndType)
	}

	// Reset returns to the takeoff stage
	if _, _, err := task.Reset(); err != nil {
		t.Fatal(err)
	}
	if task.Stage() != TakeoffStage {
		t.Errorf("stage after reset: want %v, have %v", TakeoffStage,
			task.Stage())
	}
}

func TestConstructorPanics(t *testing.T) {
	tests := []struct {
		name string
		f    func()
	}{
		{"NegativeTarget", func() { NewTakeoff(fixedStart(0, 0, 0), -1, 5) }},
		{"TargetAboveCube", func() { NewTakeoff(fixedStart(0, 0, 0), 301, 5) }},
		{"NilStarter", func() { NewTakeoff(nil, 10, 5) }},
		{"ZeroDrift", func() { NewHover(fixedStart(0, 0, 10), 10, 0, 5) }},
		{"LongHold", func() {
			NewCombined(fixedStart(0, 0, 0), 10, 5, 20, 15)
		}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("constructor should panic")
				}
			}()
			test.f()
		})
	}
}
