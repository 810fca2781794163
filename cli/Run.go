package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"

	"github.com/samuelfneumann/quadrl/agent"
	"github.com/samuelfneumann/quadrl/config"
	"github.com/samuelfneumann/quadrl/environment/envconfig"
	"github.com/samuelfneumann/quadrl/experiment"
	"github.com/samuelfneumann/quadrl/experiment/checkpointer"
	"github.com/samuelfneumann/quadrl/experiment/savers"
	"github.com/samuelfneumann/quadrl/experiment/tracker"
	"github.com/samuelfneumann/quadrl/telemetry"
	"github.com/samuelfneumann/quadrl/utils/progressbar"
)

// ProgressWidth is the width of the progress bar in characters
const ProgressWidth = 40

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run an experiment",
		Args:  cobra.NoArgs,
		RunE:  runExperiment,
	}

	f := cmd.Flags()
	f.String("config", "", "YAML configuration file")
	f.String("task", "Takeoff", "task to run")
	f.Float64("target", 0, "target height, 0 uses the task's default")
	f.Float64("duration", 0, "episode duration in seconds, 0 uses the "+
		"task's default")
	f.String("agent", string(agent.RandomSearch), "agent to train")
	f.Int("episodes", 10, "number of episodes to run")
	f.Uint64("seed", 1, "random seed")
	f.String("simulator", "rigidbody", "simulator driving the task")
	f.String("log-level", "info", "log level (debug, info, warn, error)")
	f.Bool("log-json", false, "log JSON records")
	f.String("metrics", "none", "metrics exporter (none, stdout)")
	f.String("output", "results", "directory results are written to")
	f.String("format", savers.CSV, "format of saved results (csv, gob, "+
		"sqlite)")
	f.Int("render", 0, "draw the final frame of every n-th episode, 0 "+
		"disables rendering")
	f.Bool("progress", false, "display a progress bar")

	return cmd
}

func runExperiment(cmd *cobra.Command, args []string) error {
	if err := config.LoadDotEnv(".env"); err != nil {
		return err
	}

	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}
	cfg, err := config.Load(path, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := telemetry.NewLogger(telemetry.LogConfig{
		Level:  cfg.Log.Level,
		JSON:   cfg.Log.JSON,
		Output: cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt)
	defer stop()

	shutdown, err := telemetry.Init(cfg.Telemetry.Exporter, 0)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			logger.Warn("could not flush metrics", "err", err)
		}
	}()

	run := uuid.NewString()
	logger = logger.With("run", run)
	metrics, err := telemetry.NewEpisodeMetrics(
		attribute.String(telemetry.AttrRunID, run),
		attribute.String(telemetry.AttrTask, cfg.Task.Name),
		attribute.String(telemetry.AttrAgent, cfg.Agent.Type),
	)
	if err != nil {
		return err
	}

	taskConf := envconfig.NewConfig(envconfig.TaskName(cfg.Task.Name),
		cfg.Task.Target, cfg.Task.Duration)
	taskConf.Starts = cfg.Task.Starts

	expConf := experiment.Config{
		Task:      taskConf,
		Agent:     agent.Type(cfg.Agent.Type),
		Settings:  cfg.Agent.Settings,
		Simulator: cfg.Experiment.Simulator,
		Rate:      cfg.Experiment.Rate,
		MaxTicks:  cfg.Experiment.Limit,
		Seed:      cfg.Experiment.Seed,
	}
	trackers := []tracker.Tracker{
		tracker.NewReturn(),
		tracker.NewEpisodeLength(),
	}
	exp, a, err := expConf.CreateExp(logger, trackers, nil)
	if err != nil {
		return err
	}
	exp.SetMetrics(metrics)

	if err := os.MkdirAll(cfg.Output.Dir, 0o755); err != nil {
		return fmt.Errorf("run: %w", err)
	}
	if n := cfg.Output.Checkpoint; n > 0 {
		s, ok := a.(checkpointer.Serializable)
		if !ok {
			return fmt.Errorf("run: agent %v cannot be checkpointed",
				cfg.Agent.Type)
		}
		name := filepath.Join(cfg.Output.Dir, "agent")
		exp.AddCheckpointer(checkpointer.NewNEpisode(n, s,
			checkpointer.FilenameEnumerator(0, name, ".bin")))
	}

	if err := exp.SetRender(cfg.Output.Dir, cfg.Output.Render); err != nil {
		return fmt.Errorf("run: %w", err)
	}

	if show, _ := cmd.Flags().GetBool("progress"); show {
		bar := progressbar.NewManualProgressBar(cmd.OutOrStdout(),
			ProgressWidth, cfg.Experiment.Episodes)
		exp.SetProgress(bar)
		defer bar.Close()
	}

	logger.Info("starting experiment", "task", cfg.Task.Name, "agent",
		cfg.Agent.Type, "simulator", cfg.Experiment.Simulator, "episodes",
		cfg.Experiment.Episodes, "seed", cfg.Experiment.Seed)
	runErr := exp.Run(ctx, cfg.Experiment.Episodes)

	// Results of finished episodes are saved even if the run failed
	if err := save(cfg, run, exp.Trackers(), logger); err != nil {
		return errors.Join(runErr, err)
	}
	return runErr
}

// save persists the data of trackers in the configured format
func save(cfg *config.Config, run string, trackers []tracker.Tracker,
	logger *log.Logger) error {
	s, err := savers.New(cfg.Output.Format, cfg.Output.Dir, run)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.Save(trackers...); err != nil {
		return err
	}
	logger.Info("saved results", "dir", cfg.Output.Dir, "format",
		cfg.Output.Format)
	return nil
}

// commandContext returns the context of cmd, or a background context
// if it has none
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
