// Package config loads the EngineConfig a runner uses to construct a
// sim.Simulator: max ticks, the PRNG seed, and tick-log verbosity. This is
// configuration for the process driving the simulation, not persisted
// simulation state — flowsim's core has no snapshot or resume mechanism
// (spec.md §1 non-goals: "persistent storage"). The load-with-defaults
// shape (a missing file is not an error; it is created with defaults)
// follows server/whitelist.go's LoadWhitelist.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml"
)

// ErrInvalidConfig is returned by Validate (and by LoadEngineConfig, which
// validates after decoding) when a field is out of range.
var ErrInvalidConfig = errors.New("config: invalid engine configuration")

// EngineConfig holds the construction-time parameters for a sim.Simulator
// run, loaded from a TOML file.
type EngineConfig struct {
	// MaxTicks bounds how long Run advances the simulator for.
	MaxTicks int64 `toml:"max_ticks"`
	// Seed drives the simulator's seeded PRNG stream.
	Seed uint64 `toml:"random_seed"`
	// LogLevel is one of "debug", "info", "warn", "error" — parsed into a
	// log/slog.Level by the runner, not by this package, which keeps
	// config free of a log/slog import for a field that is purely data.
	LogLevel string `toml:"log_level"`
}

// defaultEngineConfig is persisted the first time LoadEngineConfig sees a
// missing file, matching LoadWhitelist's "missing file -> defaults
// persisted" behaviour.
var defaultEngineConfig = EngineConfig{
	MaxTicks: 1000,
	Seed:     0,
	LogLevel: "info",
}

// Validate reports ErrInvalidConfig if c holds an out-of-range field.
func (c EngineConfig) Validate() error {
	if c.MaxTicks < 0 {
		return fmt.Errorf("%w: max_ticks must be >= 0, got %d", ErrInvalidConfig, c.MaxTicks)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: unrecognized log_level %q", ErrInvalidConfig, c.LogLevel)
	}
	return nil
}

// LoadEngineConfig loads the EngineConfig stored in the TOML file at path.
// If the file does not exist, defaultEngineConfig is written to path and
// returned. The result is always validated before being returned.
func LoadEngineConfig(path string) (EngineConfig, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if err := writeEngineConfig(path, defaultEngineConfig); err != nil {
				return EngineConfig{}, err
			}
			return defaultEngineConfig, nil
		}
		return EngineConfig{}, fmt.Errorf("read engine config: %w", err)
	}

	cfg := defaultEngineConfig
	if len(contents) != 0 {
		if err := toml.Unmarshal(contents, &cfg); err != nil {
			return EngineConfig{}, fmt.Errorf("decode engine config: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return EngineConfig{}, err
	}
	return cfg, nil
}

func writeEngineConfig(path string, cfg EngineConfig) error {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0777); err != nil {
			return fmt.Errorf("create engine config directory: %w", err)
		}
	}
	encoded, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode engine config: %w", err)
	}
	if err := os.WriteFile(path, encoded, 0644); err != nil {
		return fmt.Errorf("write engine config: %w", err)
	}
	return nil
}
