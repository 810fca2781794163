package actorcritic

import (
	"fmt"

	"github.com/samuelfneumann/quadrl/agent"
	"github.com/samuelfneumann/quadrl/agent/features"
	"github.com/samuelfneumann/quadrl/spec"
)

func init() {
	agent.Register(agent.GaussianActorCriticLinear, Config{
		ActorLearningRate:  0.005,
		CriticLearningRate: 0.05,
		Decay:              0.5,
		Discount:           0.99,
		Features:           string(features.Tile),
		Controlled:         []int{2},
	})
}

// Config represents a configuration for an Actor Critic agent
type Config struct {
	ActorLearningRate  float64
	CriticLearningRate float64
	Decay              float64
	Discount           float64

	// Features names the feature transformation of observations, one
	// of the kinds accepted by features.New
	Features string

	// Controlled lists the action components the agent controls. All
	// other components are always zero. An empty list controls every
	// component.
	Controlled []int
}

// CreateAgent creates the agent from the Config. Agent weights are
// always initialized to zero.
func (c Config) CreateAgent(obs, act spec.Space,
	seed uint64) (agent.Agent, error) {
	return NewLinearGaussian(c, obs, act, seed)
}

// Validate ensures that the Config is valid
func (c Config) Validate() error {
	if c.ActorLearningRate <= 0 {
		return fmt.Errorf("validate: illegal actor learning rate %v <= 0",
			c.ActorLearningRate)
	}
	if c.CriticLearningRate <= 0 {
		return fmt.Errorf("validate: illegal critic learning rate %v <= 0",
			c.CriticLearningRate)
	}
	if c.Decay < 0 || c.Decay > 1 {
		return fmt.Errorf("validate: illegal decay %v ∉ [0, 1]", c.Decay)
	}
	if c.Discount < 0 || c.Discount > 1 {
		return fmt.Errorf("validate: illegal discount %v ∉ [0, 1]",
			c.Discount)
	}
	for _, i := range c.Controlled {
		if i < 0 {
			return fmt.Errorf("validate: illegal controlled action %v", i)
		}
	}
	return nil
}

// Type returns the type of the agent constructed by the Config
func (c Config) Type() agent.Type {
	return agent.GaussianActorCriticLinear
}
