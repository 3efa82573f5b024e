// Package config loads and validates the optional .tsrun YAML file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigFile is the name of the configuration file, discovered by
// walking upward from the working directory.
const ConfigFile = ".tsrun"

// DefaultRuntime is the script runtime binary used when none is configured.
const DefaultRuntime = "deno"

// DefaultRunArgs select non-type-checked script execution.
var DefaultRunArgs = []string{"run", "--no-check"}

// Config holds the parsed .tsrun configuration.
// All fields are optional; zero values represent defaults.
type Config struct {
	Version      int      `yaml:"version"`
	RawRuntime   string   `yaml:"runtime"`     // runtime binary, e.g. "deno"
	RawRunArgs   []string `yaml:"run_args"`    // runtime subcommand and flags
	Permissions  []string `yaml:"permissions"` // capability flags for every child process
	RawTimeout   string   `yaml:"timeout"`     // e.g. "30s"; empty means no limit
	RawMaxOutput int      `yaml:"max_output"`  // bytes per stream; 0 means unbounded
}

// Runtime returns the configured runtime binary or the default.
func (c *Config) Runtime() string {
	if c.RawRuntime != "" {
		return c.RawRuntime
	}
	return DefaultRuntime
}

// RunArgs returns the configured runtime arguments or the default.
func (c *Config) RunArgs() []string {
	if len(c.RawRunArgs) > 0 {
		return c.RawRunArgs
	}
	return DefaultRunArgs
}

// Timeout returns the configured execution timeout. Zero means no limit:
// a call blocks until the script exits on its own.
func (c *Config) Timeout() time.Duration {
	if c.RawTimeout != "" {
		d, err := time.ParseDuration(c.RawTimeout)
		if err == nil && d > 0 {
			return d
		}
	}
	return 0
}

// MaxOutputBytes returns the configured per-stream output cap.
// Zero means output is buffered without bound.
func (c *Config) MaxOutputBytes() int {
	if c.RawMaxOutput > 0 {
		return c.RawMaxOutput
	}
	return 0
}

// LoadResult holds the parsed config and the file it came from.
type LoadResult struct {
	Config *Config
	Path   string // file the config was read from; empty if defaults
}

// Load reads the .tsrun file found at or above dir. If no file exists,
// a default Config is returned.
func Load(dir string) (*LoadResult, error) {
	path, err := findConfig(dir)
	if err != nil {
		return &LoadResult{Config: &Config{}}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &LoadResult{Config: cfg, Path: path}, nil
}

// findConfig walks upward from dir looking for a .tsrun file.
func findConfig(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		path := filepath.Join(dir, ConfigFile)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%s not found", ConfigFile)
		}
		dir = parent
	}
}
