package fixtures

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/flanksource/commons/logger"
	"github.com/goccy/go-yaml"
	"github.com/samber/lo"
)

const (
	DefaultConfigFile = "lintfixtures.yaml"
	DefaultPython     = "python3"
	DefaultProfile    = "flake8"
	DefaultTimeout    = 2 * time.Minute
)

// DefaultFixtures is the discovery glob used when none is configured.
var DefaultFixtures = []string{"tests/*.pyi"}

// Config is the harness configuration, loaded from lintfixtures.yaml and
// overridden by command line flags.
type Config struct {
	// Fixtures are doublestar globs, relative to WorkDir
	Fixtures []string `yaml:"fixtures,omitempty" json:"fixtures,omitempty"`
	// Profile names a registered or custom linter profile
	Profile string `yaml:"profile,omitempty" json:"profile,omitempty"`
	// Profiles declares additional linter profiles
	Profiles []Profile `yaml:"profiles,omitempty" json:"profiles,omitempty"`
	// Command overrides the profile's command, e.g. [python3, -m, flake8]
	Command []string `yaml:"command,omitempty" json:"command,omitempty"`
	// Flags are passed to every invocation ahead of the fixture's own flags
	Flags []string `yaml:"flags,omitempty" json:"flags,omitempty"`
	// Env is added to the linter's environment, values may use {{ .workDir }}
	Env     map[string]string `yaml:"env,omitempty" json:"env,omitempty"`
	WorkDir string            `yaml:"workDir,omitempty" json:"workDir,omitempty"`
	// Python is probed for its version when PythonVersion is not set
	Python        string `yaml:"python,omitempty" json:"python,omitempty"`
	PythonVersion string `yaml:"pythonVersion,omitempty" json:"pythonVersion,omitempty"`
	// Timeout bounds each linter invocation
	Timeout *time.Duration `yaml:"timeout,omitempty" json:"timeout,omitempty"`
	// Strict fails fixtures with malformed annotations instead of warning
	Strict bool `yaml:"strict,omitempty" json:"strict,omitempty"`
}

// LoadConfig reads a YAML config file. A missing file yields an empty config.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		logger.Debugf("no config at %s, using defaults", path)
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if cfg.WorkDir != "" && !filepath.IsAbs(cfg.WorkDir) {
		cfg.WorkDir = filepath.Join(filepath.Dir(path), cfg.WorkDir)
	}
	return cfg, nil
}

// MergeInto overlays the non-empty fields of other onto c.
func (c Config) MergeInto(other Config) Config {
	merged := c
	if len(other.Fixtures) > 0 {
		merged.Fixtures = other.Fixtures
	}
	if other.Profile != "" {
		merged.Profile = other.Profile
	}
	merged.Profiles = append(lo.Filter(merged.Profiles, func(p Profile, _ int) bool {
		return !lo.ContainsBy(other.Profiles, func(o Profile) bool { return o.Name == p.Name })
	}), other.Profiles...)
	if len(other.Command) > 0 {
		merged.Command = other.Command
	}
	if len(other.Flags) > 0 {
		merged.Flags = other.Flags
	}
	if len(other.Env) > 0 {
		merged.Env = lo.Assign(merged.Env, other.Env)
	}
	if other.WorkDir != "" {
		merged.WorkDir = other.WorkDir
	}
	if other.Python != "" {
		merged.Python = other.Python
	}
	if other.PythonVersion != "" {
		merged.PythonVersion = other.PythonVersion
	}
	if other.Timeout != nil {
		merged.Timeout = other.Timeout
	}
	merged.Strict = merged.Strict || other.Strict
	return merged
}

// Defaults fills every unset field.
func (c Config) Defaults() Config {
	if len(c.Fixtures) == 0 {
		c.Fixtures = DefaultFixtures
	}
	if c.Profile == "" {
		c.Profile = DefaultProfile
	}
	c.Env = lo.Assign(map[string]string{"PYTHONPATH": "."}, c.Env)
	if c.WorkDir == "" {
		c.WorkDir, _ = os.Getwd()
	}
	if c.Python == "" {
		c.Python = DefaultPython
	}
	if c.Timeout == nil {
		c.Timeout = lo.ToPtr(DefaultTimeout)
	}
	return c
}

// ResolveProfile looks the profile up among the custom profiles first, then the
// default registry.
func (c Config) ResolveProfile() (Profile, error) {
	if p, ok := lo.Find(c.Profiles, func(p Profile) bool { return p.Name == c.Profile }); ok {
		return p, p.Validate()
	}
	if p, ok := Get(c.Profile); ok {
		return p, nil
	}
	return Profile{}, fmt.Errorf("unknown linter profile %q (available: %v)", c.Profile, DefaultRegistry.List())
}

// Linter builds the process linter described by the config.
func (c Config) Linter() (*ProcessLinter, error) {
	profile, err := c.ResolveProfile()
	if err != nil {
		return nil, err
	}
	return &ProcessLinter{
		Profile: profile,
		Command: c.Command,
		Env:     c.Env,
		WorkDir: c.WorkDir,
		Timeout: lo.FromPtr(c.Timeout),
	}, nil
}

// Gate builds the version gate, probing the interpreter if no version is pinned.
func (c Config) Gate(ctx context.Context) (*Gate, error) {
	if c.PythonVersion != "" {
		return NewGate(c.PythonVersion)
	}
	v, err := ProbePythonVersion(ctx, c.Python)
	if err != nil {
		return nil, err
	}
	return &Gate{Runtime: v}, nil
}
