package fixtures

import (
	"fmt"
	"sort"
	"sync"
)

// Profile describes the command line surface of a linter.
type Profile struct {
	Name string `yaml:"name" json:"name"`
	// Command is the executable followed by any fixed leading arguments
	Command []string `yaml:"command" json:"command"`
	// ConcurrencyFlag disables parallel checking so output order is deterministic
	ConcurrencyFlag string `yaml:"concurrencyFlag,omitempty" json:"concurrencyFlag,omitempty"`
	// DisplayNameFlag makes diagnostics for stdin input report the fixture path
	DisplayNameFlag string `yaml:"displayNameFlag,omitempty" json:"displayNameFlag,omitempty"`
	// StdinMarker is the positional argument meaning "read source from stdin"
	StdinMarker string `yaml:"stdinMarker,omitempty" json:"stdinMarker,omitempty"`
}

// Validate checks the profile can drive both invocation modes.
func (p Profile) Validate() error {
	if len(p.Command) == 0 || p.Command[0] == "" {
		return fmt.Errorf("profile %q has no command", p.Name)
	}
	if p.DisplayNameFlag == "" || p.StdinMarker == "" {
		return fmt.Errorf("profile %q must set displayNameFlag and stdinMarker", p.Name)
	}
	return nil
}

// Registry manages the registration and retrieval of linter profiles.
// It provides thread-safe access to registered profiles.
type Registry struct {
	mu       sync.RWMutex
	profiles map[string]Profile
}

// NewRegistry creates a new profile registry
func NewRegistry() *Registry {
	return &Registry{
		profiles: make(map[string]Profile),
	}
}

// Register adds a profile to the registry
func (r *Registry) Register(profile Profile) error {
	if err := profile.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.profiles[profile.Name]; exists {
		return fmt.Errorf("linter profile '%s' already registered", profile.Name)
	}

	r.profiles[profile.Name] = profile
	return nil
}

// Get retrieves a profile by name
func (r *Registry) Get(name string) (Profile, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.profiles[name]
	return p, ok
}

// List returns all registered profile names, sorted
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.profiles))
	for name := range r.profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var (
	Flake8 = Profile{
		Name:            "flake8",
		Command:         []string{"flake8"},
		ConcurrencyFlag: "-j0",
		DisplayNameFlag: "--stdin-display-name",
		StdinMarker:     "-",
	}

	// Ruff is single threaded per file and has no concurrency switch.
	Ruff = Profile{
		Name:            "ruff",
		Command:         []string{"ruff", "check", "--output-format=concise", "--no-cache"},
		DisplayNameFlag: "--stdin-filename",
		StdinMarker:     "-",
	}
)

// DefaultRegistry is the global profile registry
var DefaultRegistry = NewRegistry()

// Register adds a profile to the default registry
func Register(profile Profile) error {
	return DefaultRegistry.Register(profile)
}

// Get retrieves a profile from the default registry
func Get(name string) (Profile, bool) {
	return DefaultRegistry.Get(name)
}

func init() {
	_ = Register(Flake8)
	_ = Register(Ruff)
}
