// Package actorcritic implements linear Actor-Critic algorithms
package actorcritic

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/quadrl/agent/features"
	"github.com/samuelfneumann/quadrl/agent/linear/policy"
	"github.com/samuelfneumann/quadrl/spec"
	"github.com/samuelfneumann/quadrl/timestep"
	"github.com/samuelfneumann/quadrl/utils/matutils/initializers/weights"
)

// LinearGaussian implements the Linear Gaussian Actor Critic algorithm:
//
// https://hal.inria.fr/hal-00764281/PDF/DegrisACC2012.pdf
//
// This algorithm is an actor critic algorithm which uses linear
// function approximation and eligibility traces. The critic learns the
// state value function to approximate the actor gradient. Each action
// dimension the agent controls is an independent Gaussian.
//
// The agent learns from the transition between consecutive Step calls,
// so the first call of each episode only selects an action. The last
// call of an episode learns from the terminal transition, clears the
// eligibility traces, and returns no action.
type LinearGaussian struct {
	policy     *policy.Gaussian
	features   features.Transformer
	controlled []int
	actionDims int

	criticWeights *mat.VecDense

	// Eligibility traces
	decay       float64
	meanTrace   *mat.Dense
	stdTrace    *mat.Dense
	criticTrace *mat.VecDense

	actorLearningRate  float64
	criticLearningRate float64
	discount           float64

	// Previous state features and the controlled action taken in them
	state  *mat.VecDense
	action *mat.VecDense
}

// NewLinearGaussian returns a new LinearGaussian agent acting on
// observations from obs with actions in act. All weights and
// eligibility traces are initialized to zero.
func NewLinearGaussian(c Config, obs, act spec.Space,
	seed uint64) (*LinearGaussian, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("newLinearGaussian: %w", err)
	}
	if act.Cardinality != spec.Continuous {
		return nil, fmt.Errorf("newLinearGaussian: actions must be " +
			"continuous")
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
			return nil, fmt.Errorf("newLinearGaussian: illegal controlled "+
				"action %v ∉ [0, %v)", i, act.Dims())
		}
	}

	f, err := features.New(features.Kind(c.Features), obs, seed)
	if err != nil {
		return nil, fmt.Errorf("newLinearGaussian: %w", err)
	}

	initializer := weights.NewLinearUV(weights.NewZeroUV())
	n := len(controlled)
	return &LinearGaussian{
		policy:             policy.NewGaussian(f.Dims(), n, initializer, seed),
		features:           f,
		controlled:         append([]int(nil), controlled...),
		actionDims:         act.Dims(),
		criticWeights:      mat.NewVecDense(f.Dims(), nil),
		decay:              c.Decay,
		meanTrace:          mat.NewDense(n, f.Dims(), nil),
		stdTrace:           mat.NewDense(n, f.Dims(), nil),
		criticTrace:        mat.NewVecDense(f.Dims(), nil),
		actorLearningRate:  c.ActorLearningRate,
		criticLearningRate: c.CriticLearningRate,
		discount:           c.Discount,
	}, nil
}

// Step learns from the transition into state and returns the action
// to take in it
func (l *LinearGaussian) Step(state mat.Vector, reward float64,
	done bool) mat.Vector {
	next := l.features.Transform(state)

	if l.state != nil {
		l.learn(timestep.NewTransition(l.state, l.action, reward, next, done))
	}

	if done {
		l.endEpisode()
		return nil
	}

	l.state = next
	l.action = l.policy.SelectAction(next)

	action := mat.NewVecDense(l.actionDims, nil)
	for i, index := range l.controlled {
		action.SetVec(index, l.action.AtVec(i))
	}
	return action
}

// TdError returns the TD error on a transition
func (l *LinearGaussian) TdError(t timestep.Transition) float64 {
	stateValue := mat.Dot(l.criticWeights, t.State)

	nextStateValue := 0.0
	if !t.Done {
		nextStateValue = mat.Dot(l.criticWeights, t.NextState)
	}

	return t.Reward + l.discount*nextStateValue - stateValue
}

// learn performs a single update of the actor and critic
func (l *LinearGaussian) learn(t timestep.Transition) {
	state := t.State
	tdError := l.TdError(t)

	// Update the critic
	l.criticTrace.AddScaledVec(state, l.discount*l.decay, l.criticTrace)
	l.criticWeights.AddScaledVec(l.criticWeights,
		l.criticLearningRate*tdError, l.criticTrace)

	// Actor gradients, one row per action dimension
	mean := l.policy.Mean(state)
	std := l.policy.Std(state)
	for i := 0; i < t.Action.Len(); i++ {
		diff := (t.Action.AtVec(i) - mean.AtVec(i)) / std.AtVec(i)
		meanGradScale := diff / std.AtVec(i)
		stdGradScale := diff*diff - 1.0

		// Update actor traces
		meanTrace := l.meanTrace.RowView(i).(*mat.VecDense)
		meanTrace.ScaleVec(l.discount*l.decay, meanTrace)
		meanTrace.AddScaledVec(meanTrace, meanGradScale, state)

		stdTrace := l.stdTrace.RowView(i).(*mat.VecDense)
		stdTrace.ScaleVec(l.discount*l.decay, stdTrace)
		stdTrace.AddScaledVec(stdTrace, stdGradScale, state)
	}

	// Update actor
	step := l.actorLearningRate * tdError
	weights := l.policy.Weights()
	meanWeights := weights[policy.MeanWeightsKey]
	meanWeights.Add(meanWeights, scaled(step, l.meanTrace))
	stdWeights := weights[policy.StdWeightsKey]
	stdWeights.Add(stdWeights, scaled(step, l.stdTrace))
}

// scaled returns alpha * m
func scaled(alpha float64, m mat.Matrix) *mat.Dense {
	var out mat.Dense
	out.Scale(alpha, m)
	return &out
}

// endEpisode clears the eligibility traces and the previous state
func (l *LinearGaussian) endEpisode() {
	l.meanTrace.Zero()
	l.stdTrace.Zero()
	l.criticTrace.Zero()
	l.state = nil
	l.action = nil
}

// Weights returns copies of the weights of the agent
func (l *LinearGaussian) Weights() map[string]*mat.Dense {
	weights := l.policy.Weights()
	return map[string]*mat.Dense{
		policy.MeanWeightsKey: mat.DenseCopyOf(weights[policy.MeanWeightsKey]),
		policy.StdWeightsKey:  mat.DenseCopyOf(weights[policy.StdWeightsKey]),
		policy.CriticWeightsKey: mat.NewDense(1, l.criticWeights.Len(),
			append([]float64(nil), l.criticWeights.RawVector().Data...)),
	}
}

// GobEncode implements the gob.GobEncoder interface
func (l *LinearGaussian) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(l.Weights()); err != nil {
		return nil, fmt.Errorf("gobEncode: %w", err)
	}
	return buf.Bytes(), nil
}

// GobDecode implements the gob.GobDecoder interface. The receiver
// must have been created with NewLinearGaussian using the same
// observation and action spaces and features as the encoded agent.
func (l *LinearGaussian) GobDecode(data []byte) error {
	weights := make(map[string]*mat.Dense)
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&weights); err != nil {
		return fmt.Errorf("gobDecode: %w", err)
	}

	critic, ok := weights[policy.CriticWeightsKey]
	if !ok {
		return fmt.Errorf("gobDecode: no weights named \"%v\"",
			policy.CriticWeightsKey)
	}
	if _, c := critic.Dims(); c != l.criticWeights.Len() {
		return fmt.Errorf("gobDecode: critic weights of length %v, want %v",
			c, l.criticWeights.Len())
	}
	if err := l.policy.SetWeights(weights); err != nil {
		return fmt.Errorf("gobDecode: %w", err)
	}

	l.criticWeights = mat.NewVecDense(l.criticWeights.Len(),
		critic.RawMatrix().Data)
	l.endEpisode()
	return nil
}
