package environment

import (
	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/quadrl/timestep"
)

// FunctionEnder ends an episode whenever a function of the observation
// returns true.
type FunctionEnder struct {
	end     func(*mat.VecDense) bool
	endType timestep.EndType
}

// NewFunctionEnder returns a new FunctionEnder which ends episodes with
// end type endType when f returns true.
func NewFunctionEnder(f func(*mat.VecDense) bool,
	endType timestep.EndType) *FunctionEnder {
	return &FunctionEnder{f, endType}
}

// End determines whether or not the current episode should be ended,
// returning a boolean to indicate episode temrination. If the episode
// should be ended, End() will modify the timestep so that its StepType
// field is timestep.Last and its EndType is the appropriate ending
// type.
func (f *FunctionEnder) End(t *timestep.TimeStep) bool {
	if f.end(t.Observation) {
		t.SetEnd(f.endType)
		return true
	}
	return false
}

// CheckEnders runs each Ender on t in order and reports whether any of
// them ended the episode. Enders after the first one to end the
// episode are not consulted.
func CheckEnders(t *timestep.TimeStep, enders ...Ender) bool {
	for _, e := range enders {
		if e.End(t) {
			return true
		}
	}
	return false
}
