// Package randomsearch implements a random policy search agent
package randomsearch

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"io"
	"math"

	"github.com/charmbracelet/log"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/samuelfneumann/quadrl/agent/features"
	"github.com/samuelfneumann/quadrl/spec"
	"github.com/samuelfneumann/quadrl/utils/matutils"
	"github.com/samuelfneumann/quadrl/utils/matutils/initializers/weights"
)

// RandomSearch implements random search over the weights of a linear
// policy. The policy acts with
//
//	action = Wᵀ φ(state) + ε
//
// where φ is a feature transformation and ε is Gaussian exploration
// noise. Each episode is scored by its mean reward. When an episode
// ends, a better score than any seen before keeps the current weights
// as the best and halves the perturbation scale, otherwise the scale
// doubles. The weights of the next episode are the best weights plus
// Gaussian noise of the current scale.
//
// The reward of the first tick of each episode scores the starting
// state rather than an action of the policy, and so is not counted.
type RandomSearch struct {
	features   features.Transformer
	controlled []int
	actionDims int

	weights     *mat.Dense // features × controlled
	bestWeights *mat.Dense
	bestScore   float64
	scale       float64
	minScale    float64
	maxScale    float64

	actionNoise distuv.Normal
	weightNoise weights.LinearUV

	// Episode statistics
	total    float64
	count    int
	started  bool
	episodes int

	logger *log.Logger
}

// New creates and returns a new RandomSearch agent acting on
// observations from obs with actions in act
func New(c Config, obs, act spec.Space, seed uint64) (*RandomSearch, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("new: %w", err)
	}
	if act.Cardinality != spec.Continuous {
		return nil, fmt.Errorf("new: actions must be continuous")
	}

	controlled := c.Controlled
	if len(controlled) == 0 {
		controlled = make([]int, act.Dims())
		for i := range controlled {
			controlled[i] = i
		}
	}
	for _, i := range controlled {
		if i >= act.Dims() {
			return nil, fmt.Errorf("new: illegal controlled action %v ∉ "+
				"[0, %v)", i, act.Dims())
		}
	}

	f, err := features.New(features.Kind(c.Features), obs, seed)
	if err != nil {
		return nil, fmt.Errorf("new: %w", err)
	}

	src := rand.NewSource(seed)
	weightNoise := weights.NewLinearUV(distuv.Normal{Mu: 0, Sigma: 1,
		Src: src})

	w := mat.NewDense(f.Dims(), len(controlled), nil)
	weightNoise.Initialize(w)

	return &RandomSearch{
		features:    f,
		controlled:  append([]int(nil), controlled...),
		actionDims:  act.Dims(),
		weights:     w,
		bestWeights: mat.DenseCopyOf(w),
		bestScore:   math.Inf(-1),
		scale:       c.InitialScale,
		minScale:    c.MinScale,
		maxScale:    c.MaxScale,
		actionNoise: distuv.Normal{Mu: 0, Sigma: c.ActionNoise, Src: src},
		weightNoise: weightNoise,
		logger:      log.New(io.Discard),
	}, nil
}

// SetLogger sets the logger that episode scores are reported to
func (r *RandomSearch) SetLogger(l *log.Logger) {
	if l == nil {
		l = log.New(io.Discard)
	}
	r.logger = l
}

// Step records the reward of the current state and returns the action
// to take in it. When done is true the episode is scored, the weights
// are perturbed, and no action is returned.
func (r *RandomSearch) Step(state mat.Vector, reward float64,
	done bool) mat.Vector {
	if r.started {
		r.total += reward
		r.count++
	}
	r.started = true

	if done {
		r.learn()
		return nil
	}

	return r.act(state)
}

// act returns the noisy action of the current weights in state
func (r *RandomSearch) act(state mat.Vector) *mat.VecDense {
	x := r.features.Transform(state)

	mean := mat.NewVecDense(len(r.controlled), nil)
	mean.MulVec(r.weights.T(), x)

	action := mat.NewVecDense(r.actionDims, nil)
	for i, index := range r.controlled {
		action.SetVec(index, mean.AtVec(i)+r.actionNoise.Rand())
	}
	return action
}

// learn scores the finished episode and perturbs the weights
func (r *RandomSearch) learn() {
	score := 0.0
	if r.count > 0 {
		score = r.total / float64(r.count)
	}

	if score > r.bestScore {
		r.bestScore = score
		r.bestWeights.Copy(r.weights)
		r.scale = math.Max(0.5*r.scale, r.minScale)
	} else {
		r.scale = math.Min(2.0*r.scale, r.maxScale)
	}

	rows, cols := r.weights.Dims()
	noise := mat.NewDense(rows, cols, nil)
	r.weightNoise.Initialize(noise)
	r.weights.Scale(r.scale, noise)
	r.weights.Add(r.weights, r.bestWeights)

	r.episodes++
	r.logger.Debug("episode scored", "episode", r.episodes, "score", score,
		"best", r.bestScore, "scale", r.scale)

	r.total, r.count, r.started = 0, 0, false
}

// BestScore returns the best episode score seen so far
func (r *RandomSearch) BestScore() float64 {
	return r.bestScore
}

// Scale returns the current scale of weight perturbations
func (r *RandomSearch) Scale() float64 {
	return r.scale
}

// Weights returns a copy of the weights used in the current episode
func (r *RandomSearch) Weights() *mat.Dense {
	return mat.DenseCopyOf(r.weights)
}

// BestWeights returns a copy of the best weights found so far
func (r *RandomSearch) BestWeights() *mat.Dense {
	return mat.DenseCopyOf(r.bestWeights)
}

func (r *RandomSearch) String() string {
	return fmt.Sprintf("RandomSearch | Best: %.3f | Scale: %.3f\n%v",
		r.bestScore, r.scale, matutils.Format(r.bestWeights))
}

// checkpoint is the gob serializable search state of a RandomSearch
type checkpoint struct {
	Weights     *mat.Dense
	BestWeights *mat.Dense
	BestScore   float64
	Scale       float64
	Episodes    int
}

// GobEncode implements the gob.GobEncoder interface
func (r *RandomSearch) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	err := gob.NewEncoder(&buf).Encode(checkpoint{
		Weights:     r.weights,
		BestWeights: r.bestWeights,
		BestScore:   r.bestScore,
		Scale:       r.scale,
		Episodes:    r.episodes,
	})
	if err != nil {
		return nil, fmt.Errorf("gobEncode: %w", err)
	}
	return buf.Bytes(), nil
}

// GobDecode implements the gob.GobDecoder interface. The receiver
// must have been created with New using the same observation and
// action spaces and features as the encoded agent.
func (r *RandomSearch) GobDecode(data []byte) error {
	var c checkpoint
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&c); err != nil {
		return fmt.Errorf("gobDecode: %w", err)
	}

	if r.weights != nil {
		wr, wc := r.weights.Dims()
		cr, cc := c.Weights.Dims()
		if wr != cr || wc != cc {
			return fmt.Errorf("gobDecode: weights of shape (%v, %v) do not "+
				"fit agent of shape (%v, %v)", cr, cc, wr, wc)
		}
	}

	r.weights = c.Weights
	r.bestWeights = c.BestWeights
	r.bestScore = c.BestScore
	r.scale = c.Scale
	r.episodes = c.Episodes
	r.total, r.count, r.started = 0, 0, false
	return nil
}
