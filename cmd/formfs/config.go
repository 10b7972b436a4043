package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/tomasbasham/formfs"
)

// configEnv names the environment variable pointing at a config file when
// --config is not given.
const configEnv = "FORMFS_CONFIG"

// config holds the settings of one run. Values come from the defaults, then
// an optional YAML file, then command line flags.
type config struct {
	// Dir is the working directory fields are written into.
	Dir string `yaml:"dir"`

	// Boundary overrides the boundary token. The content type is not
	// consulted when it is set.
	Boundary string `yaml:"boundary"`

	// Sequence is the file field names are logged to, in arrival order.
	// Relative paths are taken relative to Dir.
	Sequence string `yaml:"sequence"`

	// BufferSize is the read window capacity in bytes.
	BufferSize int `yaml:"buffer_size"`

	// LogLevel is one of debug, info, warn or error.
	LogLevel string `yaml:"log_level"`
}

func defaultConfig() config {
	return config{
		Dir:        filepath.Join(os.TempDir(), fmt.Sprintf("cgi-%d", os.Getppid())),
		BufferSize: formfs.DefaultBufferSize,
		LogLevel:   "warn",
	}
}

// loadConfigFile overlays the YAML file at path onto cfg. Unknown keys are
// rejected so that typos do not go unnoticed.
func loadConfigFile(cfg *config, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// applyFlags overlays the flags the user actually set.
func applyFlags(cfg *config, flags *pflag.FlagSet, fromFlags config) {
	if flags.Changed("boundary") {
		cfg.Boundary = fromFlags.Boundary
	}
	if flags.Changed("sequence") {
		cfg.Sequence = fromFlags.Sequence
	}
	if flags.Changed("buffer-size") {
		cfg.BufferSize = fromFlags.BufferSize
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = fromFlags.LogLevel
	}
}

func (c config) validate() error {
	if c.Dir == "" {
		return errors.New("no working directory")
	}
	if c.BufferSize <= 0 {
		return fmt.Errorf("invalid buffer size %d", c.BufferSize)
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	return nil
}

func (c config) level() slog.Level {
	var level slog.Level
	_ = level.UnmarshalText([]byte(c.LogLevel))
	return level
}

// sequencePath resolves the sequence log path against the working directory.
func (c config) sequencePath() string {
	if c.Sequence == "" || filepath.IsAbs(c.Sequence) {
		return c.Sequence
	}
	return filepath.Join(c.Dir, c.Sequence)
}
