package randomsearch

import (
	"fmt"

	"github.com/samuelfneumann/quadrl/agent"
	"github.com/samuelfneumann/quadrl/agent/features"
	"github.com/samuelfneumann/quadrl/spec"
)

func init() {
	agent.Register(agent.RandomSearch, Config{
		Features:     string(features.RBF),
		ActionNoise:  0.1,
		InitialScale: 0.1,
		MinScale:     0.01,
		MaxScale:     4.0,
		Controlled:   []int{2},
	})
}

// Config represents a configuration for a RandomSearch agent
type Config struct {
	// Features names the feature transformation of observations, one
	// of the kinds accepted by features.New
	Features string

	// ActionNoise is the standard deviation of the exploration noise
	// added to each action
	ActionNoise float64

	// InitialScale, MinScale, and MaxScale control the scale of the
	// weight perturbations between episodes
	InitialScale float64
	MinScale     float64
	MaxScale     float64

	// Controlled lists the action components the agent controls. All
	// other components are always zero. An empty list controls every
	// component.
	Controlled []int
}

// CreateAgent creates the agent from the Config
func (c Config) CreateAgent(obs, act spec.Space,
	seed uint64) (agent.Agent, error) {
	return New(c, obs, act, seed)
}

// Validate ensures that the Config is valid
func (c Config) Validate() error {
	if c.ActionNoise < 0 {
		return fmt.Errorf("validate: illegal action noise %v < 0",
			c.ActionNoise)
	}
	if c.MinScale <= 0 || c.MaxScale < c.MinScale {
		return fmt.Errorf("validate: illegal scale bounds [%v, %v]",
			c.MinScale, c.MaxScale)
	}
	if c.InitialScale < c.MinScale || c.InitialScale > c.MaxScale {
		return fmt.Errorf("validate: illegal initial scale %v ∉ [%v, %v]",
			c.InitialScale, c.MinScale, c.MaxScale)
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
	return agent.RandomSearch
}
