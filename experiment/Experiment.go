// Package experiment implements functionality for running an experiment
package experiment

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/samuelfneumann/quadrl/agent"
	"github.com/samuelfneumann/quadrl/environment/envconfig"
	"github.com/samuelfneumann/quadrl/experiment/checkpointer"
	"github.com/samuelfneumann/quadrl/experiment/tracker"
	"github.com/samuelfneumann/quadrl/simulator"
)

// Defaults of an experiment Config
const (
	DefaultRate     float64 = 30.0
	DefaultMaxTicks int     = 10000
)

// Experiment outlines structs that can run experiments. The Run()
// method runs a number of episodes, while RunEpisode() runs a single
// episode. Data generated during the experiment is recorded by
// Trackers, which are registered through the constructor or through
// Register().
type Experiment interface {
	Run(ctx context.Context, episodes int) error
	RunEpisode(ctx context.Context) (Summary, error)

	// Adds a new tracker.Tracker to the (possibly already running)
	// experiment
	Register(t tracker.Tracker)
}

// Config represents a configuration of an experiment
type Config struct {
	Task      envconfig.Config
	Agent     agent.Type
	Settings  map[string]any // Overrides of the agent's defaults
	Simulator string
	Rate      float64 // Control ticks per second
	MaxTicks  int
	Seed      uint64
}

// Validate returns an error if the Config cannot create an experiment
func (c Config) Validate() error {
	if err := c.Task.Validate(); err != nil {
		return fmt.Errorf("validate: %w", err)
	}
	if !agent.Registered(c.Agent) {
		return fmt.Errorf("validate: %w %q", agent.ErrUnknownType, c.Agent)
	}
	if c.Rate < 0 {
		return fmt.Errorf("validate: illegal rate %v ∉ (0, ∞)", c.Rate)
	}
	if c.MaxTicks < 0 {
		return fmt.Errorf("validate: illegal tick limit %v ∉ [0, ∞)",
			c.MaxTicks)
	}
	return nil
}

// CreateExp creates the task, agent, and simulator described by the
// Config and returns an Online experiment driving them together with
// the agent, so that callers may checkpoint or close it. The logger,
// if non-nil, is handed to the experiment, task, and agent.
func (c Config) CreateExp(logger *log.Logger, t []tracker.Tracker,
	check []checkpointer.Checkpointer) (*Online, agent.Agent, error) {
	if err := c.Validate(); err != nil {
		return nil, nil, fmt.Errorf("createExp: %w", err)
	}

	task, err := c.Task.Create(nil, c.Seed)
	if err != nil {
		return nil, nil, fmt.Errorf("createExp: could not create task: %w",
			err)
	}

	conf, err := agent.NewConfig(c.Agent, c.Settings)
	if err != nil {
		return nil, nil, fmt.Errorf("createExp: %w", err)
	}
	a, err := conf.CreateAgent(task.ObservationSpec(), task.ActionSpec(),
		c.Seed)
	if err != nil {
		return nil, nil, fmt.Errorf("createExp: could not create agent: %w",
			err)
	}
	task.SetAgent(a)

	kind := c.Simulator
	if kind == "" {
		kind = simulator.RigidBody
	}
	sim, err := simulator.New(kind)
	if err != nil {
		return nil, nil, fmt.Errorf("createExp: %w", err)
	}

	rate := c.Rate
	if rate == 0 {
		rate = DefaultRate
	}

	exp := NewOnline(task, sim, rate, c.MaxTicks, t, check)
	if logger != nil {
		exp.SetLogger(logger)
		if l, ok := task.(interface{ SetLogger(*log.Logger) }); ok {
			l.SetLogger(logger)
		}
		if l, ok := a.(agent.LoggerSetter); ok {
			l.SetLogger(logger)
		}
	}
	return exp, a, nil
}
