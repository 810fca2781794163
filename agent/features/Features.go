// Package features implements transformations of observations into
// feature vectors for linear function approximation
package features

import (
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/quadrl/spec"
)

// Transformer transforms an observation into a feature vector
type Transformer interface {
	Transform(v mat.Vector) *mat.VecDense
	Dims() int // Length of transformed vectors
}

// Kind names a feature transformation that can be built with New
type Kind string

const (
	None     Kind = "none"
	Standard Kind = "standard"
	RBF      Kind = "rbf"
	Tile     Kind = "tile"
)

// Samples is the number of observations drawn from the observation
// space to fit a StandardScaler
const Samples int = 1000

// RBF kernel widths and number of components per width used by New
var (
	Gammas     = []float64{5.0, 2.0, 1.0, 0.5}
	Components = 5
)

// New returns the feature transformation named kind for observations
// from obs:
//
//	none		observations are used unchanged
//	standard	observations are standardized
//	rbf		standardized observations are mapped through a union of
//			RBF samplers, one per width in Gammas
//	tile		observations are tile coded
//
// The standardization is fit on Samples observations drawn uniformly
// from obs. All features besides none include a trailing bias unit.
func New(kind Kind, obs spec.Space, seed uint64) (Transformer, error) {
	switch kind {
	case None, "":
		return NewIdentity(obs.Dims()), nil

	case Standard:
		return NewBias(fitScaler(obs, seed)), nil

	case RBF:
		samplers := make([]Transformer, len(Gammas))
		for i, gamma := range Gammas {
			samplers[i] = NewRBFSampler(obs.Dims(), Components, gamma,
				seed+uint64(i)+1)
		}
		return NewBias(NewChain(fitScaler(obs, seed), NewUnion(samplers...))),
			nil

	case Tile:
		bins := make([][]int, TileTilings)
		for i := range bins {
			bins[i] = make([]int, obs.Dims())
			for j := range bins[i] {
				bins[i][j] = TileBins
			}
		}
		return NewTileCoder(obs.LowerBound, obs.UpperBound, bins, seed, true),
			nil
	}

	return nil, fmt.Errorf("new: unknown features %q", kind)
}

// fitScaler fits a StandardScaler to observations sampled from obs
func fitScaler(obs spec.Space, seed uint64) *StandardScaler {
	src := rand.NewSource(seed)
	samples := mat.NewDense(Samples, obs.Dims(), nil)
	for i := 0; i < Samples; i++ {
		samples.SetRow(i, obs.Sample(src).RawVector().Data)
	}
	return FitStandardScaler(samples)
}

// Identity returns observations unchanged
type Identity struct {
	dims int
}

// NewIdentity returns a new Identity transformation of vectors with
// dims components
func NewIdentity(dims int) Identity {
	return Identity{dims}
}

// Transform returns a copy of v
func (i Identity) Transform(v mat.Vector) *mat.VecDense {
	return mat.VecDenseCopyOf(v)
}

// Dims returns the length of transformed vectors
func (i Identity) Dims() int {
	return i.dims
}

// Bias appends a unit of constant 1.0 to the features of another
// Transformer
type Bias struct {
	Transformer
}

// NewBias returns a new Bias
func NewBias(t Transformer) Bias {
	return Bias{t}
}

// Transform returns the features of the wrapped Transformer followed
// by 1.0
func (b Bias) Transform(v mat.Vector) *mat.VecDense {
	features := b.Transformer.Transform(v)
	data := append(features.RawVector().Data, 1.0)
	return mat.NewVecDense(len(data), data)
}

// Dims returns the length of transformed vectors
func (b Bias) Dims() int {
	return b.Transformer.Dims() + 1
}

// Chain applies a sequence of Transformers, each to the output of the
// previous one
type Chain []Transformer

// NewChain returns a new Chain
func NewChain(t ...Transformer) Chain {
	if len(t) == 0 {
		panic("chain must have at least one transformer")
	}
	return Chain(t)
}

// Transform applies each Transformer of the Chain in order
func (c Chain) Transform(v mat.Vector) *mat.VecDense {
	out := c[0].Transform(v)
	for _, t := range c[1:] {
		out = t.Transform(out)
	}
	return out
}

// Dims returns the length of transformed vectors
func (c Chain) Dims() int {
	return c[len(c)-1].Dims()
}

// Union concatenates the features of multiple Transformers applied to
// the same vector
type Union []Transformer

// NewUnion returns a new Union
func NewUnion(t ...Transformer) Union {
	return Union(t)
}

// Transform concatenates the features of each Transformer of the Union
func (u Union) Transform(v mat.Vector) *mat.VecDense {
	data := make([]float64, 0, u.Dims())
	for _, t := range u {
		data = append(data, t.Transform(v).RawVector().Data...)
	}
	return mat.NewVecDense(len(data), data)
}

// Dims returns the length of transformed vectors
func (u Union) Dims() int {
	dims := 0
	for _, t := range u {
		dims += t.Dims()
	}
	return dims
}
