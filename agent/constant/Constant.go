// Package constant implements an agent which always takes the same
// action
package constant

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/quadrl/agent"
	"github.com/samuelfneumann/quadrl/spec"
	"github.com/samuelfneumann/quadrl/utils/matutils"
)

func init() {
	agent.Register(agent.Constant, Config{})
}

// Config represents a configuration for a Constant agent. An empty
// Action makes a silent agent, which never commands anything. Actions
// shorter than the action space are padded with zeros.
type Config struct {
	Action []float64
}

// CreateAgent creates the agent from the Config
func (c Config) CreateAgent(obs, act spec.Space,
	seed uint64) (agent.Agent, error) {
	return New(c.Action, act)
}

// Validate ensures that the Config is valid
func (c Config) Validate() error {
	return nil
}

// Type returns the type of the agent constructed by the Config
func (c Config) Type() agent.Type {
	return agent.Constant
}

// Constant is an agent which returns the same action on every tick
type Constant struct {
	action *mat.VecDense
	steps  int
}

// New returns a new Constant agent taking action in the action space
// act. A nil action creates a silent agent.
func New(action []float64, act spec.Space) (*Constant, error) {
	if len(action) == 0 {
		return &Constant{}, nil
	}
	if len(action) > act.Dims() {
		return nil, fmt.Errorf("new: action of length %v exceeds action "+
			"space of dimension %v", len(action), act.Dims())
	}

	a := mat.NewVecDense(act.Dims(), nil)
	for i, v := range action {
		a.SetVec(i, v)
	}
	return &Constant{action: a}, nil
}

// Step returns a copy of the constant action, or nil for a silent
// agent
func (c *Constant) Step(state mat.Vector, reward float64,
	done bool) mat.Vector {
	c.steps++
	if c.action == nil {
		return nil
	}
	return matutils.CloneVec(c.action)
}

// Steps returns the number of times Step was called
func (c *Constant) Steps() int {
	return c.steps
}
