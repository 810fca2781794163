package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("Should use defaults without other sources", func(t *testing.T) {
		cfg, err := Load("", nil)
		require.NoError(t, err)

		assert.Equal(t, "info", cfg.Log.Level)
		assert.Equal(t, 10, cfg.Experiment.Episodes)
		assert.Equal(t, 30.0, cfg.Experiment.Rate)
		assert.Equal(t, "Takeoff", cfg.Task.Name)
		assert.Equal(t, "RandomSearch", cfg.Agent.Type)
		assert.Equal(t, "csv", cfg.Output.Format)
	})

	t.Run("Should read a YAML file", func(t *testing.T) {
		path := writeFile(t, "quadrl.yaml", `
task:
  name: Hover
  target: 20
  starts:
    - [0, 0, 19]
    - [0, 0, 21]
agent:
  type: Constant
  settings:
    action: [0, 0, 9.81]
experiment:
  episodes: 3
`)
		cfg, err := Load(path, nil)
		require.NoError(t, err)

		assert.Equal(t, "Hover", cfg.Task.Name)
		assert.Equal(t, 20.0, cfg.Task.Target)
		assert.Equal(t, "Constant", cfg.Agent.Type)
		assert.Equal(t, 3, cfg.Experiment.Episodes)
		assert.Contains(t, cfg.Agent.Settings, "action")
		assert.Equal(t, [][]float64{{0, 0, 19}, {0, 0, 21}}, cfg.Task.Starts)
	})

	t.Run("Should let the environment override the file", func(t *testing.T) {
		path := writeFile(t, "quadrl.yaml", "experiment:\n  episodes: 3\n")
		t.Setenv("QUADRL_EXPERIMENT_EPISODES", "7")
		t.Setenv("QUADRL_LOG_LEVEL", "debug")

		cfg, err := Load(path, nil)
		require.NoError(t, err)
		assert.Equal(t, 7, cfg.Experiment.Episodes)
		assert.Equal(t, "debug", cfg.Log.Level)
	})

	t.Run("Should let changed flags override everything", func(t *testing.T) {
		t.Setenv("QUADRL_TASK_NAME", "Landing")

		flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
		flags.String("task", "Takeoff", "")
		flags.Int("episodes", 10, "")
		flags.Uint64("seed", 1, "")
		require.NoError(t, flags.Parse([]string{"--task", "Combined",
			"--seed", "42"}))

		cfg, err := Load("", flags)
		require.NoError(t, err)
		assert.Equal(t, "Combined", cfg.Task.Name)
		assert.Equal(t, uint64(42), cfg.Experiment.Seed)

		// Unchanged flags keep the lower layers
		assert.Equal(t, 10, cfg.Experiment.Episodes)
	})

	t.Run("Should reject invalid values", func(t *testing.T) {
		path := writeFile(t, "quadrl.yaml", "experiment:\n  episodes: 0\n")
		_, err := Load(path, nil)
		assert.Error(t, err)
	})

	t.Run("Should read the render interval", func(t *testing.T) {
		flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
		flags.Int("render", 0, "")
		require.NoError(t, flags.Parse([]string{"--render", "5"}))

		cfg, err := Load("", flags)
		require.NoError(t, err)
		assert.Equal(t, 5, cfg.Output.Render)

		path := writeFile(t, "quadrl.yaml", "output:\n  render: -1\n")
		_, err = Load(path, nil)
		assert.Error(t, err)
	})

	t.Run("Should fail on a missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
		assert.Error(t, err)
	})
}

func TestLoadDotEnv(t *testing.T) {
	t.Run("Should load the first existing file", func(t *testing.T) {
		t.Setenv("QUADRL_OUTPUT_DIR", "")
		os.Unsetenv("QUADRL_OUTPUT_DIR")

		path := writeFile(t, ".env", "QUADRL_OUTPUT_DIR=runs\n")
		missing := filepath.Join(t.TempDir(), ".env")
		require.NoError(t, LoadDotEnv(missing, path))
		assert.Equal(t, "runs", os.Getenv("QUADRL_OUTPUT_DIR"))

		cfg, err := Load("", nil)
		require.NoError(t, err)
		assert.Equal(t, "runs", cfg.Output.Dir)
	})

	t.Run("Should ignore missing files", func(t *testing.T) {
		assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), ".env")))
	})
}

func TestFlagKey(t *testing.T) {
	assert.Equal(t, "task.name", FlagKey("task"))
	assert.Equal(t, "output.render", FlagKey("render"))
	assert.Equal(t, "", FlagKey("config"))
}
