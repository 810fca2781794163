// Package envconfig provides configuration structs for creating
// quadcopter tasks with default parameters.
package envconfig

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r1"

	"github.com/samuelfneumann/quadrl/agent"
	env "github.com/samuelfneumann/quadrl/environment"
	"github.com/samuelfneumann/quadrl/environment/quadcopter"
)

// ErrUnknownTask is returned when creating a task which does not exist
var ErrUnknownTask = errors.New("unknown task")

// TaskName stores the tasks that can be configured with this package
type TaskName string

// Tasks available for configuration
const (
	Takeoff  TaskName = "Takeoff"
	Hover    TaskName = "Hover"
	Landing  TaskName = "Landing"
	Combined TaskName = "Combined"
)

// Tasks returns the names of all tasks that can be configured
func Tasks() []TaskName {
	return []TaskName{Takeoff, Hover, Landing, Combined}
}

// Config implements a specific configuration of a quadcopter task.
// Zero values of Target and Duration select the task's defaults. If
// Starts is non-empty, episodes start at one of the listed [x, y, z]
// positions instead of the task's default starting region.
type Config struct {
	Task     TaskName
	Target   float64
	Duration float64
	Starts   [][]float64
}

// NewConfig returns a new task Config
func NewConfig(task TaskName, target, duration float64) Config {
	return Config{Task: task, Target: target, Duration: duration}
}

// Validate returns an error describing whether or not the
// configuration is valid
func (c Config) Validate() error {
	known := false
	for _, t := range Tasks() {
		known = known || t == c.Task
	}
	if !known {
		return fmt.Errorf("validate: %w %q", ErrUnknownTask, c.Task)
	}

	if c.Target < 0 || c.Target > quadcopter.CubeSize {
		return fmt.Errorf("validate: illegal target %v ∉ [%v, %v]",
			c.Target, 0.0, quadcopter.CubeSize)
	}
	if c.Duration < 0 {
		return fmt.Errorf("validate: illegal duration %v < 0", c.Duration)
	}
	for i, start := range c.Starts {
		if len(start) != 3 {
			return fmt.Errorf("validate: starting position %v must have "+
				"3 components, have %v", i, len(start))
		}
	}
	return nil
}

// Create returns the task described by the Config, with a, if non-nil,
// bound as its agent. Starting states are sampled with seed.
func (c Config) Create(a agent.Agent, seed uint64) (env.Task, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("create: %w", err)
	}

	target := c.Target
	if target == 0 {
		target = quadcopter.TargetHeight
	}

	var task env.Task
	switch c.Task {
	case Takeoff:
		s := c.starter(quadcopter.TakeoffStart(), seed)
		task = quadcopter.NewTakeoff(s, target,
			c.duration(quadcopter.Duration))

	case Hover:
		s := c.starter(near(target), seed)
		task = quadcopter.NewHover(s, target, quadcopter.MaxDrift,
			c.duration(quadcopter.Duration))

	case Landing:
		s := c.starter(near(target), seed)
		task = quadcopter.NewLanding(s, quadcopter.SafeLandingSpeed,
			c.duration(quadcopter.Duration))

	case Combined:
		s := c.starter(quadcopter.TakeoffStart(), seed)
		duration := c.duration(quadcopter.CombinedDuration)
		task = quadcopter.NewCombined(s, target, quadcopter.MaxDrift,
			math.Min(quadcopter.HoldTime, duration), duration)
	}

	if a != nil {
		task.SetAgent(a)
	}
	return task, nil
}

// starter returns the starter of the configured task, drawing from
// bounds unless starting positions were listed
func (c Config) starter(bounds []r1.Interval, seed uint64) env.Starter {
	if len(c.Starts) > 0 {
		return env.NewCategoricalStarter(c.Starts, seed)
	}
	return env.NewUniformStarter(bounds, seed)
}

func (c Config) duration(defaultDuration float64) float64 {
	if c.Duration == 0 {
		return defaultDuration
	}
	return c.Duration
}

// near returns starting positions within half a unit of height target
// over the origin, kept inside the flight cube
func near(target float64) []r1.Interval {
	bounds := quadcopter.HoverStart()
	bounds[2] = r1.Interval{
		Min: math.Max(target-0.5, 0),
		Max: math.Min(target+0.5, quadcopter.CubeSize),
	}
	return bounds
}
