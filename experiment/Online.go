package experiment

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/log"

	env "github.com/samuelfneumann/quadrl/environment"
	"github.com/samuelfneumann/quadrl/experiment/checkpointer"
	"github.com/samuelfneumann/quadrl/experiment/tracker"
	"github.com/samuelfneumann/quadrl/simulator"
	"github.com/samuelfneumann/quadrl/telemetry"
	ts "github.com/samuelfneumann/quadrl/timestep"
)

// ErrTickLimit is returned when an episode runs for more control ticks
// than the driver allows without its task reporting done
var ErrTickLimit = errors.New("episode exceeded tick limit")

// Progress is notified after each finished episode
type Progress interface {
	Increment()
	Display()
}

// Summary describes a finished episode
type Summary struct {
	Episode int
	Ticks   int
	Return  float64
	End     ts.EndType
}

// Online drives a task in closed loop with a simulator. Each control
// tick it hands the simulator's state to the task and applies the
// returned command to the simulator for one tick. The agent bound to
// the task learns online only. No offline evaluation is performed.
type Online struct {
	task     env.Task
	sim      simulator.Simulator
	rate     float64
	maxTicks int

	trackers      []tracker.Tracker
	checkpointers []checkpointer.Checkpointer

	logger   *log.Logger
	metrics  *telemetry.EpisodeMetrics
	progress Progress
	episodes int

	renderDir   string
	renderEvery int
}

// NewOnline creates and returns a new online experiment driving task
// with sim at rate control ticks per second. An episode which runs for
// more than maxTicks ticks fails with ErrTickLimit, a maxTicks of 0
// disables the limit. The t parameter is a slice of tracker.Tracker
// which determine what data is recorded, and check is a slice of
// checkpointer.Checkpointer which save the agent during the
// experiment. Trackers and checkpointers only see TimeSteps of tasks
// that implement environment.TimeStepper.
func NewOnline(task env.Task, sim simulator.Simulator, rate float64,
	maxTicks int, t []tracker.Tracker,
	check []checkpointer.Checkpointer) *Online {
	if rate <= 0 {
		panic(fmt.Sprintf("newOnline: illegal rate %v ∉ (0, ∞)", rate))
	}
	if maxTicks < 0 {
		panic(fmt.Sprintf("newOnline: illegal tick limit %v ∉ [0, ∞)",
			maxTicks))
	}

	return &Online{
		task:          task,
		sim:           sim,
		rate:          rate,
		maxTicks:      maxTicks,
		trackers:      t,
		checkpointers: check,
		logger:        telemetry.Discard(),
	}
}

// Register registers a tracker.Tracker with an Experiment so that data
// generated during the experiment can be tracked
func (o *Online) Register(t tracker.Tracker) {
	o.trackers = append(o.trackers, t)
}

// AddCheckpointer adds a checkpointer.Checkpointer to the experiment
func (o *Online) AddCheckpointer(c checkpointer.Checkpointer) {
	o.checkpointers = append(o.checkpointers, c)
}

// SetLogger sets the logger the experiment reports episodes to
func (o *Online) SetLogger(l *log.Logger) {
	if l == nil {
		l = telemetry.Discard()
	}
	o.logger = l
}

// SetMetrics sets the instruments finished episodes are recorded with
func (o *Online) SetMetrics(m *telemetry.EpisodeMetrics) {
	o.metrics = m
}

// SetProgress sets the progress indicator notified after each episode
func (o *Online) SetProgress(p Progress) {
	o.progress = p
}

// SetRender draws the final frame of every episode whose index is a
// multiple of every to frame-<episode>.png in dir. An every of 0 turns
// rendering off. SetRender returns an error if the simulator cannot
// render.
func (o *Online) SetRender(dir string, every int) error {
	if every < 0 {
		return fmt.Errorf("setRender: illegal interval %v ∉ [0, ∞)", every)
	}
	if _, ok := o.sim.(simulator.Renderer); !ok && every > 0 {
		return fmt.Errorf("setRender: simulator %T cannot render", o.sim)
	}
	o.renderDir, o.renderEvery = dir, every
	return nil
}

// Trackers returns the trackers registered with the experiment
func (o *Online) Trackers() []tracker.Tracker {
	return o.trackers
}

// RunEpisode runs a single episode of the experiment, returning a
// summary of the episode once the task reports done
func (o *Online) RunEpisode(ctx context.Context) (Summary, error) {
	summary := Summary{Episode: o.episodes}

	pose, twist, err := o.task.Reset()
	if err != nil {
		return summary, fmt.Errorf("runEpisode: could not reset task: %w",
			err)
	}
	if err := o.sim.Reset(pose, twist); err != nil {
		return summary, fmt.Errorf("runEpisode: could not reset "+
			"simulator: %w", err)
	}

	dt := 1.0 / o.rate
	for {
		if err := ctx.Err(); err != nil {
			return summary, fmt.Errorf("runEpisode: %w", err)
		}
		if o.maxTicks > 0 && summary.Ticks >= o.maxTicks {
			return summary, fmt.Errorf("runEpisode: %w (%v ticks)",
				ErrTickLimit, o.maxTicks)
		}

		cmd, done, err := o.task.Update(o.sim.Time(), o.sim.Pose(),
			o.sim.Twist().Angular, o.sim.LinearAcceleration())
		if err != nil {
			return summary, fmt.Errorf("runEpisode: tick %v: %w",
				summary.Ticks, err)
		}
		summary.Ticks++

		if step, ok := o.lastTimeStep(); ok {
			summary.Return += step.Reward
			summary.End = step.EndType
			if err := o.track(step); err != nil {
				return summary, fmt.Errorf("runEpisode: %w", err)
			}
		}

		o.logger.Debug("tick", "episode", summary.Episode, "tick",
			summary.Ticks, "time", o.sim.Time(), "z",
			o.sim.Pose().Position.Z, "done", done)

		// The command returned on the final tick is never applied
		if done {
			break
		}
		if err := o.sim.Step(cmd, dt); err != nil {
			return summary, fmt.Errorf("runEpisode: could not step "+
				"simulator: %w", err)
		}
	}

	if err := o.render(summary.Episode); err != nil {
		return summary, fmt.Errorf("runEpisode: %w", err)
	}

	o.episodes++
	o.logger.Info("episode finished", "episode", summary.Episode,
		"ticks", summary.Ticks, "return", summary.Return, "end",
		summary.End)
	o.metrics.RecordEpisode(ctx, summary.Ticks, summary.Return,
		summary.End.String())
	if o.progress != nil {
		o.progress.Increment()
		o.progress.Display()
	}
	return summary, nil
}

// Run runs episodes episodes of the experiment, stopping at the first
// episode that fails
func (o *Online) Run(ctx context.Context, episodes int) error {
	for i := 0; i < episodes; i++ {
		if _, err := o.RunEpisode(ctx); err != nil {
			return fmt.Errorf("run: episode %v: %w", o.episodes, err)
		}
	}
	return nil
}

// render draws the current frame of the simulator if episode is due
func (o *Online) render(episode int) error {
	if o.renderEvery == 0 || episode%o.renderEvery != 0 {
		return nil
	}
	r, ok := o.sim.(simulator.Renderer)
	if !ok {
		return nil
	}

	path := filepath.Join(o.renderDir, fmt.Sprintf("frame-%v.png", episode))
	if err := r.Render(path); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	o.logger.Debug("rendered frame", "episode", episode, "path", path)
	return nil
}

// lastTimeStep returns the TimeStep of the task's most recent Update,
// if the task exposes it
func (o *Online) lastTimeStep() (ts.TimeStep, bool) {
	stepper, ok := o.task.(env.TimeStepper)
	if !ok {
		return ts.TimeStep{}, false
	}
	return stepper.LastTimeStep(), true
}

// track sends the current timestep to each tracker and checkpointer
func (o *Online) track(t ts.TimeStep) error {
	for _, tr := range o.trackers {
		tr.Track(t)
	}
	for _, c := range o.checkpointers {
		if err := c.Checkpoint(t); err != nil {
			return fmt.Errorf("track: could not checkpoint: %w", err)
		}
	}
	return nil
}
