package features

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/samuelfneumann/quadrl/utils/matutils/initializers/weights"
)

// RBFSampler approximates the feature map of a radial basis function
// kernel exp(-gamma ||x - y||²) with random Fourier features:
//
//	φ(x) = sqrt(2 / components) cos(W x + b)
//
// with each entry of W drawn from N(0, 2 gamma) and each entry of b
// drawn from U(0, 2π).
type RBFSampler struct {
	weights *mat.Dense
	offsets *mat.VecDense
	scale   float64
}

// NewRBFSampler returns a new RBFSampler mapping vectors with inDims
// components to vectors with components components
func NewRBFSampler(inDims, components int, gamma float64,
	seed uint64) *RBFSampler {
	if gamma <= 0 {
		panic("gamma must be positive")
	}

	src := rand.NewSource(seed)
	normal := distuv.Normal{Mu: 0, Sigma: math.Sqrt(2 * gamma), Src: src}
	w := mat.NewDense(components, inDims, nil)
	weights.NewLinearUV(normal).Initialize(w)

	uniform := distuv.Uniform{Min: 0, Max: 2 * math.Pi, Src: src}
	offsets := mat.NewVecDense(components, nil)
	for i := 0; i < components; i++ {
		offsets.SetVec(i, uniform.Rand())
	}

	return &RBFSampler{w, offsets, math.Sqrt(2.0 / float64(components))}
}

// Transform returns the random Fourier features of v
func (r *RBFSampler) Transform(v mat.Vector) *mat.VecDense {
	out := mat.NewVecDense(r.Dims(), nil)
	out.MulVec(r.weights, v)
	out.AddVec(out, r.offsets)
	for i := 0; i < out.Len(); i++ {
		out.SetVec(i, r.scale*math.Cos(out.AtVec(i)))
	}
	return out
}

// Dims returns the length of transformed vectors
func (r *RBFSampler) Dims() int {
	return r.offsets.Len()
}
