// Package config loads the configuration of quadrl runs. Values are
// layered, later layers overriding earlier ones: built-in defaults, a
// YAML file, QUADRL_ environment variables, and command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix prefixes environment variables holding configuration.
// QUADRL_TASK_NAME sets task.name.
const EnvPrefix = "QUADRL_"

// Config is the configuration of a run
type Config struct {
	Log        LogConfig        `koanf:"log"`
	Telemetry  TelemetryConfig  `koanf:"telemetry"`
	Experiment ExperimentConfig `koanf:"experiment"`
	Task       TaskConfig       `koanf:"task"`
	Agent      AgentConfig      `koanf:"agent"`
	Output     OutputConfig     `koanf:"output"`
}

type LogConfig struct {
	Level string `koanf:"level"`
	JSON  bool   `koanf:"json"`
}

type TelemetryConfig struct {
	Exporter string `koanf:"exporter"` // none, stdout
}

type ExperimentConfig struct {
	Episodes  int     `koanf:"episodes"`
	Seed      uint64  `koanf:"seed"`
	Rate      float64 `koanf:"rate"`  // Control ticks per second
	Limit     int     `koanf:"limit"` // Maximum ticks per episode
	Simulator string  `koanf:"simulator"`
}

type TaskConfig struct {
	Name     string      `koanf:"name"`
	Target   float64     `koanf:"target"`
	Duration float64     `koanf:"duration"`
	Starts   [][]float64 `koanf:"starts"` // Fixed [x, y, z] starting positions
}

type AgentConfig struct {
	Type     string         `koanf:"type"`
	Settings map[string]any `koanf:"settings"`
}

type OutputConfig struct {
	Dir        string `koanf:"dir"`
	Format     string `koanf:"format"` // csv, gob, sqlite
	Checkpoint int    `koanf:"checkpoint"`
	Render     int    `koanf:"render"` // Draw the last frame every n episodes
}

// defaults are the built-in values of each key
var defaults = map[string]any{
	"log.level":            "info",
	"log.json":             false,
	"telemetry.exporter":   "none",
	"experiment.episodes":  10,
	"experiment.seed":      1,
	"experiment.rate":      30.0,
	"experiment.limit":     10000,
	"experiment.simulator": "rigidbody",
	"task.name":            "Takeoff",
	"task.target":          0.0,
	"task.duration":        0.0,
	"agent.type":           "RandomSearch",
	"output.dir":           "results",
	"output.format":        "csv",
	"output.checkpoint":    0,
	"output.render":        0,
}

// flagKeys maps command-line flags to configuration keys
var flagKeys = map[string]string{
	"log-level": "log.level",
	"log-json":  "log.json",
	"metrics":   "telemetry.exporter",
	"episodes":  "experiment.episodes",
	"seed":      "experiment.seed",
	"simulator": "experiment.simulator",
	"task":      "task.name",
	"target":    "task.target",
	"duration":  "task.duration",
	"agent":     "agent.type",
	"output":    "output.dir",
	"format":    "output.format",
	"render":    "output.render",
}

// FlagKey returns the configuration key set by the named flag, or an
// empty string if the flag sets no key
func FlagKey(flag string) string {
	return flagKeys[flag]
}

// Load loads the configuration. The YAML file at path is skipped if
// path is empty. Flags, if non-nil, override all other sources, but
// only flags named by FlagKey are considered.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	for key, value := range defaults {
		if err := k.Set(key, value); err != nil {
			return nil, fmt.Errorf("load: %w", err)
		}
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load: could not read %v: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.Replace(strings.ToLower(
			strings.TrimPrefix(s, EnvPrefix)), "_", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}

	if flags != nil {
		provider := posflag.ProviderWithFlag(flags, ".", k,
			func(f *pflag.Flag) (string, any) {
				key := FlagKey(f.Name)
				if key == "" || !f.Changed {
					return "", nil
				}
				return key, posflag.FlagVal(flags, f)
			})
		if err := k.Load(provider, nil); err != nil {
			return nil, fmt.Errorf("load: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	return &cfg, nil
}

// Validate returns an error if the values of the Config cannot
// describe a run. Names of tasks, agents, and simulators are checked
// when the run is created.
func (c *Config) Validate() error {
	if c.Experiment.Episodes <= 0 {
		return fmt.Errorf("validate: illegal number of episodes %v ∉ [1, ∞)",
			c.Experiment.Episodes)
	}
	if c.Experiment.Rate <= 0 {
		return fmt.Errorf("validate: illegal rate %v ∉ (0, ∞)",
			c.Experiment.Rate)
	}
	if c.Experiment.Limit < 0 {
		return fmt.Errorf("validate: illegal tick limit %v ∉ [0, ∞)",
			c.Experiment.Limit)
	}
	if c.Output.Checkpoint < 0 {
		return fmt.Errorf("validate: illegal checkpoint interval %v ∉ [0, ∞)",
			c.Output.Checkpoint)
	}
	if c.Output.Render < 0 {
		return fmt.Errorf("validate: illegal render interval %v ∉ [0, ∞)",
			c.Output.Render)
	}
	return nil
}

// LoadDotEnv loads environment variables from the first of paths that
// exists. Variables already set in the environment are kept. It is not
// an error if none of the files exist.
func LoadDotEnv(paths ...string) error {
	for _, path := range paths {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("loadDotEnv: %w", err)
		}
		return nil
	}
	return nil
}
