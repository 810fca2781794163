package environment

import (
	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
	"gonum.org/v1/gonum/stat/distmv"
)

// UniformStarter returns starting states drawn uniformly from a box of
// intervals
type UniformStarter struct {
	bounds []r1.Interval
	seed   uint64
	rand   *distmv.Uniform
}

// NewUniformStarter returns a new UniformStarter sampling dimension i
// of the starting state from bounds[i]
func NewUniformStarter(bounds []r1.Interval, seed uint64) *UniformStarter {
	source := rand.NewSource(seed)
	rand := distmv.NewUniform(bounds, source)

	b := make([]r1.Interval, len(bounds))
	copy(b, bounds)

	return &UniformStarter{b, seed, rand}
}

// Start returns a starting state vector
func (u *UniformStarter) Start() mat.Vector {
	return mat.NewVecDense(len(u.bounds), u.rand.Rand(nil))
}

// Bounds returns the intervals starting states are drawn from
func (u *UniformStarter) Bounds() []r1.Interval {
	b := make([]r1.Interval, len(u.bounds))
	copy(b, u.bounds)
	return b
}

// Seed returns the seed of the starter
func (u *UniformStarter) Seed() uint64 {
	return u.seed
}
