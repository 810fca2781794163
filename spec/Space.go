// Package spec implements specifications of the observation and action
// spaces that tasks expose to agents
package spec

import (
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
	"gonum.org/v1/gonum/stat/distmv"

	"github.com/samuelfneumann/quadrl/utils/floatutils"
)

// SpaceType determines what kind of values a Space describes
type SpaceType int

const (
	Action SpaceType = iota
	Observation
)

func (s SpaceType) String() string {
	if s == Action {
		return "Action"
	}
	return "Observation"
}

// Cardinality determines the cardinality of a number (discrete or
// continuous)
type Cardinality string

const (
	Continuous Cardinality = "Continuous"
	Discrete   Cardinality = "Discrete"
)

// Space describes the type, dimensionality, and bounds of the
// observations or actions of a task. Bounds are inclusive.
type Space struct {
	Type       SpaceType
	LowerBound *mat.VecDense
	UpperBound *mat.VecDense
	Cardinality
}

// NewSpace constructs a new Space. NewSpace panics if the bounds differ
// in length or if any lower bound exceeds its upper bound.
func NewSpace(t SpaceType, lowerBound, upperBound mat.Vector,
	cardinality Cardinality) Space {
	if lowerBound.Len() != upperBound.Len() {
		panic(fmt.Sprintf("lower bounds length %v must match upper bounds "+
			"length %v", lowerBound.Len(), upperBound.Len()))
	}

	lower := mat.VecDenseCopyOf(lowerBound)
	upper := mat.VecDenseCopyOf(upperBound)
	for i := 0; i < lower.Len(); i++ {
		if lower.AtVec(i) > upper.AtVec(i) {
			panic(fmt.Sprintf("illegal lower bound %v > upper bound %v at "+
				"index %v", lower.AtVec(i), upper.AtVec(i), i))
		}
	}

	return Space{t, lower, upper, cardinality}
}

// NewBox constructs a new continuous Space with one dimension per
// interval
func NewBox(t SpaceType, bounds []r1.Interval) Space {
	lower := make([]float64, len(bounds))
	upper := make([]float64, len(bounds))
	for i, b := range bounds {
		lower[i], upper[i] = b.Min, b.Max
	}

	return NewSpace(t, mat.NewVecDense(len(lower), lower),
		mat.NewVecDense(len(upper), upper), Continuous)
}

// Dims returns the dimensionality of the space
func (s Space) Dims() int {
	if s.LowerBound == nil {
		return 0
	}
	return s.LowerBound.Len()
}

// Intervals returns the bounds of each dimension of the space
func (s Space) Intervals() []r1.Interval {
	intervals := make([]r1.Interval, s.Dims())
	for i := range intervals {
		intervals[i] = r1.Interval{
			Min: s.LowerBound.AtVec(i),
			Max: s.UpperBound.AtVec(i),
		}
	}
	return intervals
}

// Contains returns whether v lies within the bounds of the space
func (s Space) Contains(v mat.Vector) bool {
	if v == nil || v.Len() != s.Dims() {
		return false
	}

	for i := 0; i < v.Len(); i++ {
		interval := r1.Interval{
			Min: s.LowerBound.AtVec(i),
			Max: s.UpperBound.AtVec(i),
		}
		if !floatutils.Contains(v.AtVec(i), interval) {
			return false
		}
	}
	return true
}

// Clip returns a copy of v with each component clamped to the bounds
// of the space. The argument v is not modified.
func (s Space) Clip(v mat.Vector) (*mat.VecDense, error) {
	if v == nil || v.Len() != s.Dims() {
		length := 0
		if v != nil {
			length = v.Len()
		}
		return nil, fmt.Errorf("clip: vector of length %v does not fit %v "+
			"space of dimension %v", length, s.Type, s.Dims())
	}

	clipped := mat.NewVecDense(v.Len(), nil)
	for i, interval := range s.Intervals() {
		clipped.SetVec(i, floatutils.ClipInterval(v.AtVec(i), interval))
	}
	return clipped, nil
}

// Sample draws a vector uniformly from within the bounds of the space
func (s Space) Sample(src rand.Source) *mat.VecDense {
	uniform := distmv.NewUniform(s.Intervals(), src)
	return mat.NewVecDense(s.Dims(), uniform.Rand(nil))
}

func (s Space) String() string {
	return fmt.Sprintf("%v Space (%v) | Lower: %v | Upper: %v", s.Type,
		s.Cardinality, mat.Formatted(s.LowerBound.T()),
		mat.Formatted(s.UpperBound.T()))
}
