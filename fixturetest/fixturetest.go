// Package fixturetest runs annotated linter fixtures as Go subtests.
//
// A test in the linter plugin's repository only needs:
//
//	func TestFixtures(t *testing.T) {
//		fixturetest.Run(t, fixtures.Config{WorkDir: ".."})
//	}
//
// Each fixture becomes a parallel subtest named after its path. Fixtures gated
// on a newer interpreter are skipped, mismatches are reported with a diff for
// each invocation mode.
package fixturetest

import (
	"context"
	"testing"

	"github.com/flanksource/lintfixtures/fixtures"
)

// Options tweak Run beyond what Config covers.
type Options struct {
	Filter string
	Linter fixtures.Linter
	Gate   *fixtures.Gate
}

// Run discovers the fixtures described by cfg and evaluates each in a subtest.
func Run(t *testing.T, cfg fixtures.Config, opts ...Options) {
	t.Helper()

	var o Options
	if len(opts) > 0 {
		o = opts[0]
	}

	runner, err := fixtures.NewRunner(context.Background(), fixtures.RunnerOptions{
		Config: cfg,
		Filter: o.Filter,
		Linter: o.Linter,
		Gate:   o.Gate,
	})
	if err != nil {
		t.Fatalf("failed to create fixture runner: %v", err)
	}

	paths, err := runner.Discover()
	if err != nil {
		t.Fatalf("failed to discover fixtures: %v", err)
	}
	if len(paths) == 0 {
		t.Fatalf("no fixtures found")
	}

	evaluator := runner.Evaluator()
	for _, path := range paths {
		path := path
		t.Run(path, func(t *testing.T) {
			t.Parallel()
			Check(t, evaluator, path)
		})
	}
}

// Check evaluates a single fixture and reports the outcome on t.
func Check(t testing.TB, evaluator *fixtures.Evaluator, path string) fixtures.FixtureResult {
	t.Helper()

	result := evaluator.Evaluate(context.Background(), path)
	switch {
	case result.IsSkipped():
		t.Skip(result.Error)
	case len(result.Mismatches) > 0:
		for _, m := range result.Mismatches {
			t.Errorf("%s mode output mismatch\nexpected:\n%s\nactual:\n%s\ndiff:\n%s",
				m.Mode, m.Expected, m.Actual, m.Diff())
		}
	case !result.IsOK():
		t.Errorf("%s: %s", path, result.Error)
	}
	return result
}
