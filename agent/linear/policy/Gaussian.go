// Package policy implements linear continuous-action policies
package policy

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"

	"github.com/samuelfneumann/quadrl/utils/matutils"
	"github.com/samuelfneumann/quadrl/utils/matutils/initializers/weights"
)

// StdOffset is added to the standard deviation of each action
// dimension so that it is never zero
const StdOffset float64 = 1e-3

const (
	// Keys for weights map: map[string]*mat.Dense
	MeanWeightsKey   string = "mean"
	StdWeightsKey    string = "standard deviation"
	CriticWeightsKey string = "critic"
)

// Gaussian implements a multi-dimensional linear Gaussian policy with
// independent action dimensions. The policy uses linear function
// approximation to compute the mean and the log of the standard
// deviation of each action dimension.
type Gaussian struct {
	meanWeights *mat.Dense // actionDims × features
	stdWeights  *mat.Dense
	actionDims  int
	source      rand.Source
}

// NewGaussian creates a new Gaussian policy over actions with
// actionDims dimensions given feature vectors with features
// components. The weights of the mean are initialized with initializer, the
// weights of the standard deviation are initialized to zero.
func NewGaussian(features, actionDims int, initializer weights.Initializer,
	seed uint64) *Gaussian {
	meanWeights := mat.NewDense(actionDims, features, nil)
	stdWeights := mat.NewDense(actionDims, features, nil)
	initializer.Initialize(meanWeights)

	source := rand.NewSource(seed)

	return &Gaussian{meanWeights, stdWeights, actionDims, source}
}

// Std gets the standard deviation of the policy given some state
// features obs
func (g *Gaussian) Std(obs mat.Vector) *mat.VecDense {
	stdVec := mat.NewVecDense(g.actionDims, nil)
	stdVec.MulVec(g.stdWeights, obs)
	for i := 0; i < stdVec.Len(); i++ {
		std := math.Exp(stdVec.AtVec(i))
		stdVec.SetVec(i, std+StdOffset)
	}
	return stdVec
}

// Mean gets the mean of the policy given some state features obs
func (g *Gaussian) Mean(obs mat.Vector) *mat.VecDense {
	mean := mat.NewVecDense(g.actionDims, nil)
	mean.MulVec(g.meanWeights, obs)
	return mean
}

// SelectAction samples an action from the policy given some state
// features obs
func (g *Gaussian) SelectAction(obs mat.Vector) *mat.VecDense {
	mean := g.Mean(obs)
	stdVec := g.Std(obs)

	variance := make([]float64, stdVec.Len())
	for i := range variance {
		variance[i] = stdVec.AtVec(i) * stdVec.AtVec(i)
	}
	cov := mat.NewDiagDense(len(variance), variance)

	dist, ok := distmv.NewNormal(mean.RawVector().Data, cov, g.source)
	if !ok {
		msg := fmt.Sprintf("*Normal has non-positive-definite covariance %v",
			matutils.Format(cov))
		panic(msg)
	}

	return mat.NewVecDense(g.actionDims, dist.Rand(nil))
}

// ActionDims returns the dimension of actions
func (g *Gaussian) ActionDims() int {
	return g.actionDims
}

// Weights gets and returns the weights of the policy
func (g *Gaussian) Weights() map[string]*mat.Dense {
	weights := make(map[string]*mat.Dense)

	weights[MeanWeightsKey] = g.meanWeights
	weights[StdWeightsKey] = g.stdWeights

	return weights
}

// SetWeights sets the weight pointers to point to a new set of weights.
func (g *Gaussian) SetWeights(weights map[string]*mat.Dense) error {
	meanWeights, ok := weights[MeanWeightsKey]
	if !ok {
		return fmt.Errorf("setWeights: no weights named \"%v\"",
			MeanWeightsKey)
	}

	stdWeights, ok := weights[StdWeightsKey]
	if !ok {
		return fmt.Errorf("setWeights: no weights named \"%v\"",
			StdWeightsKey)
	}

	r, c := g.meanWeights.Dims()
	for key, w := range map[string]*mat.Dense{MeanWeightsKey: meanWeights,
		StdWeightsKey: stdWeights} {
		if wr, wc := w.Dims(); wr != r || wc != c {
			return fmt.Errorf("setWeights: %v weights have shape (%v, %v), "+
				"want (%v, %v)", key, wr, wc, r, c)
		}
	}

	g.meanWeights = meanWeights
	g.stdWeights = stdWeights

	return nil
}
