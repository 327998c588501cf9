package fixtures

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/flanksource/commons/logger"
)

// LoadFixture reads path relative to workDir.
func LoadFixture(workDir, path string) (Fixture, error) {
	full := path
	if workDir != "" && !filepath.IsAbs(path) {
		full = filepath.Join(workDir, path)
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return Fixture{}, fmt.Errorf("failed to read fixture: %w", err)
	}
	return Fixture{Path: path, Content: string(data)}, nil
}

// Evaluator checks fixtures against a linter.
type Evaluator struct {
	Linter Linter
	// Gate may be nil, in which case no fixture is skipped
	Gate    *Gate
	WorkDir string
	// Flags are passed ahead of each fixture's own flags
	Flags  []string
	Strict bool
}

// Check evaluates a fixture whose content is already loaded. The gate is not
// consulted.
func (e *Evaluator) Check(ctx context.Context, fixture Fixture) FixtureResult {
	start := time.Now()
	result := FixtureResult{Name: fixture.Path, Start: &start}

	exp := ParseAnnotations(fixture.Path, fixture.Content)
	flags := append(append([]string{}, e.Flags...), exp.Flags...)
	result.Flags = flags
	result.Expected = exp.Output()

	if suspects := Lint(fixture.Content); len(suspects) > 0 {
		result.Suspects = suspects
		for _, s := range suspects {
			logger.Warnf("%s: %s", fixture.Path, s)
		}
	}

	outputs, err := InvokeBoth(ctx, e.Linter, fixture.Path, fixture.Content, flags)
	if err != nil {
		return result.Errorf(err, "failed to run linter")
	}

	result.Actual = make(map[string]string, len(outputs))
	for _, mode := range Modes {
		actual := Normalize(outputs[mode])
		result.Actual[mode.String()] = actual

		var mismatch *MismatchError
		if err := Compare(mode, result.Expected, actual); errors.As(err, &mismatch) {
			result.Mismatches = append(result.Mismatches, mismatch)
		}
	}

	if len(result.Mismatches) > 0 {
		modes := make([]string, 0, len(result.Mismatches))
		for _, m := range result.Mismatches {
			modes = append(modes, m.Mode.String())
		}
		return result.Failf("output mismatch in %s mode", strings.Join(modes, ", "))
	}
	if e.Strict && len(result.Suspects) > 0 {
		return result.Failf("%d malformed annotation(s)", len(result.Suspects))
	}
	return result.Pass()
}

// Evaluate loads the fixture at path and runs it unless the gate skips it.
func (e *Evaluator) Evaluate(ctx context.Context, path string) FixtureResult {
	start := time.Now()
	result := FixtureResult{Name: path, Start: &start}

	if skip, reason := e.Gate.Check(path); skip {
		logger.V(2).Infof("skipping %s: %s", path, reason)
		return result.Skipf("%s", reason)
	}

	fixture, err := LoadFixture(e.WorkDir, path)
	if err != nil {
		return result.Errorf(err, "failed to load %s", path)
	}
	return e.Check(ctx, fixture)
}
