package fixtures

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"
	"time"

	"github.com/flanksource/commons/logger"
	"github.com/flanksource/gomplate/v3"
)

// Mode selects how the fixture source reaches the linter.
type Mode int

const (
	// PathMode passes the fixture path as a positional argument.
	PathMode Mode = iota
	// StdinMode pipes the fixture text on stdin with a display-name override.
	StdinMode
)

// Modes lists every invocation mode in the order they are run.
var Modes = []Mode{PathMode, StdinMode}

func (m Mode) String() string {
	switch m {
	case PathMode:
		return "path"
	case StdinMode:
		return "stdin"
	default:
		return "unknown"
	}
}

// Invocation is a single linter run over one fixture.
type Invocation struct {
	Mode    Mode
	Path    string
	Content string
	Flags   []string
}

// Linter runs the analyzer under test and returns what it wrote to stdout.
type Linter interface {
	Run(ctx context.Context, inv Invocation) (string, error)
}

// ErrTimeout is wrapped by ProcessLinter when an invocation exceeds its timeout.
var ErrTimeout = errors.New("linter timed out")

// ProcessLinter runs a linter executable described by a Profile.
type ProcessLinter struct {
	Profile Profile
	// Command overrides Profile.Command when set.
	Command []string
	// Env is added to the parent environment of every invocation. Values are
	// gomplate templates with .workDir, .path and .mode available.
	Env     map[string]string
	WorkDir string
	Timeout time.Duration
}

func (p *ProcessLinter) command() []string {
	if len(p.Command) > 0 {
		return p.Command
	}
	return p.Profile.Command
}

// Args builds the argument list (excluding the executable) for an invocation.
func (p *ProcessLinter) Args(inv Invocation) []string {
	var args []string
	if command := p.command(); len(command) > 1 {
		args = append(args, command[1:]...)
	}
	if p.Profile.ConcurrencyFlag != "" {
		args = append(args, p.Profile.ConcurrencyFlag)
	}
	switch inv.Mode {
	case StdinMode:
		args = append(args, p.Profile.DisplayNameFlag, inv.Path)
		args = append(args, inv.Flags...)
		args = append(args, p.Profile.StdinMarker)
	default:
		args = append(args, inv.Flags...)
		args = append(args, inv.Path)
	}
	return args
}

// Environ returns the child process environment: the parent's plus the rendered Env.
func (p *ProcessLinter) Environ(inv Invocation) ([]string, error) {
	env := os.Environ()
	data := map[string]any{
		"workDir": p.WorkDir,
		"path":    inv.Path,
		"mode":    inv.Mode.String(),
	}

	keys := make([]string, 0, len(p.Env))
	for k := range p.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		v := p.Env[k]
		if strings.Contains(v, "{{") {
			rendered, err := gomplate.RunTemplate(data, gomplate.Template{Template: v})
			if err != nil {
				return nil, fmt.Errorf("failed to render env %s: %w", k, err)
			}
			v = rendered
		}
		env = append(env, k+"="+v)
	}
	return env, nil
}

// Run executes the linter and returns its stdout. Exit status is ignored; only a
// failure to start the process or a timeout is an error.
func (p *ProcessLinter) Run(ctx context.Context, inv Invocation) (string, error) {
	command := p.command()
	if len(command) == 0 {
		return "", fmt.Errorf("no linter command configured")
	}
	if inv.Mode == StdinMode && p.Profile.DisplayNameFlag == "" {
		return "", fmt.Errorf("profile %s does not support reading from stdin", p.Profile.Name)
	}

	env, err := p.Environ(inv)
	if err != nil {
		return "", err
	}

	parent := ctx
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	args := p.Args(inv)
	cmd := exec.CommandContext(ctx, command[0], args...)
	cmd.Dir = p.WorkDir
	cmd.Env = env
	if inv.Mode == StdinMode {
		cmd.Stdin = strings.NewReader(inv.Content)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logger.V(3).Infof("%s: %s %s", inv.Mode, command[0], strings.Join(args, " "))

	err = cmd.Run()
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		if parent.Err() != nil {
			return stdout.String(), fmt.Errorf("%s %s: deadline exceeded: %w", command[0], inv.Mode, ErrTimeout)
		}
		return stdout.String(), fmt.Errorf("%s %s after %s: %w", command[0], inv.Mode, p.Timeout, ErrTimeout)
	}
	if ctx.Err() != nil {
		return stdout.String(), ctx.Err()
	}
	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return stdout.String(), fmt.Errorf("failed to run %s: %w", command[0], err)
	}
	if stderr.Len() > 0 {
		logger.V(4).Infof("%s stderr (%s): %s", command[0], inv.Mode, stderr.String())
	}
	return stdout.String(), nil
}

// InvokeBoth runs the linter in path mode then stdin mode.
func InvokeBoth(ctx context.Context, linter Linter, path, content string, flags []string) (map[Mode]string, error) {
	outputs := make(map[Mode]string, len(Modes))
	for _, mode := range Modes {
		out, err := linter.Run(ctx, Invocation{
			Mode:    mode,
			Path:    path,
			Content: content,
			Flags:   flags,
		})
		if err != nil {
			return outputs, fmt.Errorf("%s mode: %w", mode, err)
		}
		outputs[mode] = out
	}
	return outputs, nil
}
