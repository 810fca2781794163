package environment

import (
	"fmt"

	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/samuelfneumann/quadrl/utils/matutils"
)

// CategoricalStarter returns starting states chosen uniformly at
// random from a fixed set of candidate states
type CategoricalStarter struct {
	starts []*mat.VecDense
	seed   uint64
	rand   distuv.Categorical
}

// NewCategoricalStarter returns a new CategoricalStarter choosing
// between starts. All starting states must have the same length.
func NewCategoricalStarter(starts [][]float64,
	seed uint64) *CategoricalStarter {
	if len(starts) == 0 {
		panic("newCategoricalStarter: no starting states")
	}

	vecs := make([]*mat.VecDense, len(starts))
	weights := make([]float64, len(starts))
	for i, s := range starts {
		if len(s) == 0 || len(s) != len(starts[0]) {
			panic(fmt.Sprintf("newCategoricalStarter: illegal length of "+
				"starting state %v: %v", i, len(s)))
		}
		vecs[i] = mat.NewVecDense(len(s), append([]float64(nil), s...))
		weights[i] = 1.0 / float64(len(starts))
	}

	source := rand.NewSource(seed)
	return &CategoricalStarter{
		starts: vecs,
		seed:   seed,
		rand:   distuv.NewCategorical(weights, source),
	}
}

// Start returns a starting state vector
func (c *CategoricalStarter) Start() mat.Vector {
	i := int(c.rand.Rand())
	return matutils.CloneVec(c.starts[i])
}

// Seed returns the seed of the starter
func (c *CategoricalStarter) Seed() uint64 {
	return c.seed
}
