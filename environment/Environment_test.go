package environment

import (
	"errors"
	"testing"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/samuelfneumann/quadrl/kinematics"
	"github.com/samuelfneumann/quadrl/timestep"
)

func TestUnimplemented(t *testing.T) {
	var u Unimplemented

	if _, _, err := u.Reset(); !errors.Is(err, ErrUnimplemented) {
		t.Errorf("Reset: want %v, have %v", ErrUnimplemented, err)
	}

	_, _, err := u.Update(0, kinematics.NewPose(r3.Vec{}), r3.Vec{},
		r3.Vec{})
	if !errors.Is(err, ErrUnimplemented) {
		t.Errorf("Update: want %v, have %v", ErrUnimplemented, err)
	}
}

func TestUniformStarter(t *testing.T) {
	bounds := []r1.Interval{{Min: -1, Max: 1}, {Min: 0, Max: 0.5}}
	s := NewUniformStarter(bounds, 12)

	for i := 0; i < 100; i++ {
		start := s.Start()
		for j, b := range bounds {
			if v := start.AtVec(j); v < b.Min || v > b.Max {
				t.Fatalf("start component %v = %v ∉ [%v, %v]", j, v,
					b.Min, b.Max)
			}
		}
	}

	// Starters with the same seed generate the same sequence
	a, b := NewUniformStarter(bounds, 3), NewUniformStarter(bounds, 3)
	for i := 0; i < 10; i++ {
		if !mat.Equal(a.Start(), b.Start()) {
			t.Fatal("starters with equal seeds diverged")
		}
	}
}

func TestCategoricalStarter(t *testing.T) {
	starts := [][]float64{{0, 0, 1}, {0, 0, 5}, {2, 2, 9}}
	s := NewCategoricalStarter(starts, 7)

	seen := make(map[float64]bool)
	for i := 0; i < 200; i++ {
		start := s.Start()
		if start.Len() != 3 {
			t.Fatalf("start length: want 3, have %v", start.Len())
		}
		seen[start.AtVec(2)] = true
	}
	for _, start := range starts {
		if !seen[start[2]] {
			t.Errorf("starting state %v never chosen", start)
		}
	}
	if len(seen) != len(starts) {
		t.Errorf("want only the given starts, have heights %v", seen)
	}

	defer func() {
		if recover() == nil {
			t.Error("ragged starting states should panic")
		}
	}()
	NewCategoricalStarter([][]float64{{0, 0, 1}, {0, 1}}, 7)
}

func TestTimeLimit(t *testing.T) {
	limit := NewTimeLimit(5.0)

	tests := []struct {
		time float64
		want bool
	}{
		{0, false},
		{5.0, false},
		{5.0001, true},
	}

	for _, test := range tests {
		step := timestep.New(timestep.Mid, 0, mat.NewVecDense(1, nil), 0,
			test.time)
		if have := limit.End(&step); have != test.want {
			t.Errorf("End at %v: want %v, have %v", test.time, test.want,
				have)
		}
		if test.want && (!step.Last() || step.EndType != timestep.Timeout) {
			t.Errorf("timestep not marked as timed out: %v", step)
		}
	}
}

func TestIntervalLimit(t *testing.T) {
	limit := NewIntervalLimit([]r1.Interval{{Min: 5, Max: 15}}, []int{1},
		timestep.Failure)

	inside := timestep.New(timestep.Mid, 0,
		mat.NewVecDense(2, []float64{100, 10}), 1, 0)
	if limit.End(&inside) {
		t.Error("observation within interval should not end episode")
	}

	outside := timestep.New(timestep.Mid, 0,
		mat.NewVecDense(2, []float64{0, 16}), 1, 0)
	if !limit.End(&outside) {
		t.Error("observation outside interval should end episode")
	}
	if outside.EndType != timestep.Failure {
		t.Errorf("end type: want %v, have %v", timestep.Failure,
			outside.EndType)
	}
}

func TestCheckEnders(t *testing.T) {
	calls := 0
	success := NewFunctionEnder(func(obs *mat.VecDense) bool {
		calls++
		return obs.AtVec(0) >= 10
	}, timestep.TerminalStateReached)
	timeout := NewTimeLimit(5)

	// Both enders fire, the first one decides the end type
	step := timestep.New(timestep.Mid, 0, mat.NewVecDense(1,
		[]float64{12}), 200, 6)
	if !CheckEnders(&step, success, timeout) {
		t.Fatal("episode should have ended")
	}
	if step.EndType != timestep.TerminalStateReached {
		t.Errorf("end type: want %v, have %v",
			timestep.TerminalStateReached, step.EndType)
	}

	step = timestep.New(timestep.Mid, 0, mat.NewVecDense(1,
		[]float64{1}), 3, 0.1)
	if CheckEnders(&step, success, timeout) {
		t.Error("episode should not have ended")
	}
	if calls != 2 {
		t.Errorf("function ender calls: want 2, have %v", calls)
	}
}
