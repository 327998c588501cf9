package fixtures

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/flanksource/clicky"
	"github.com/flanksource/clicky/task"
	flanksourceContext "github.com/flanksource/commons/context"
	"github.com/flanksource/commons/logger"
	"github.com/samber/lo"
)

// RunnerOptions configures the fixture runner
type RunnerOptions struct {
	Config Config
	// Filter keeps fixtures whose path matches this glob
	Filter string
	// Linter overrides the process linter built from Config
	Linter Linter
	// Gate overrides the version gate built from Config
	Gate *Gate
}

// Runner discovers and evaluates fixtures in parallel.
type Runner struct {
	options   RunnerOptions
	evaluator *Evaluator
	fixtures  []string
	tree      *FixtureNode
}

// NewRunner creates a new fixture runner
func NewRunner(ctx context.Context, opts RunnerOptions) (*Runner, error) {
	opts.Config = opts.Config.Defaults()

	linter := opts.Linter
	if linter == nil {
		pl, err := opts.Config.Linter()
		if err != nil {
			return nil, fmt.Errorf("failed to create linter: %w", err)
		}
		linter = pl
	}

	gate := opts.Gate
	if gate == nil {
		var err error
		if gate, err = opts.Config.Gate(ctx); err != nil {
			return nil, fmt.Errorf("failed to determine python version: %w", err)
		}
	}

	return &Runner{
		options: opts,
		evaluator: &Evaluator{
			Linter:  linter,
			Gate:    gate,
			WorkDir: opts.Config.WorkDir,
			Flags:   opts.Config.Flags,
			Strict:  opts.Config.Strict,
		},
	}, nil
}

// Evaluator exposes the evaluator the runner uses for each fixture.
func (r *Runner) Evaluator() *Evaluator {
	return r.evaluator
}

// Discover expands the configured globs relative to the work dir and applies the filter.
func (r *Runner) Discover() ([]string, error) {
	fixtures, err := Discover(r.options.Config.WorkDir, r.options.Config.Fixtures, r.options.Filter)
	if err != nil {
		return nil, err
	}
	r.fixtures = fixtures
	return fixtures, nil
}

// Discover returns the sorted, de-duplicated fixture paths matching patterns under
// workDir, optionally filtered by a glob on the path.
func Discover(workDir string, patterns []string, filter string) ([]string, error) {
	fsys := os.DirFS(workDir)
	var paths []string
	for _, pattern := range patterns {
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("invalid glob pattern '%s': %w", pattern, err)
		}
		if len(matches) == 0 {
			logger.Warnf("No files matched pattern: %s", pattern)
		}
		paths = append(paths, matches...)
	}
	paths = lo.Uniq(paths)

	if filter != "" {
		if !doublestar.ValidatePattern(filter) {
			return nil, fmt.Errorf("invalid filter pattern '%s'", filter)
		}
		paths = lo.Filter(paths, func(p string, _ int) bool {
			match, _ := doublestar.Match(filter, p)
			return match
		})
		logger.Infof("Filtered to %d fixtures matching '%s'", len(paths), filter)
	}

	sort.Strings(paths)
	return paths, nil
}

// fixtureTimeout bounds a whole fixture: two linter invocations plus slack.
func (r *Runner) fixtureTimeout() time.Duration {
	return 2*lo.FromPtr(r.options.Config.Timeout) + 30*time.Second
}

// Execute evaluates every discovered fixture using a typed task group.
func (r *Runner) Execute() ([]FixtureResult, error) {
	group := task.StartGroup[FixtureResult]("Fixtures")

	for _, path := range r.fixtures {
		path := path
		group.Add(path, func(ctx flanksourceContext.Context, t *task.Task) (FixtureResult, error) {
			ctx.Logger.V(4).Infof("evaluating %s", path)
			return r.evaluator.Evaluate(ctx, path), nil
		}, clicky.WithTaskTimeout(r.fixtureTimeout()))
	}

	groupResult := group.WaitFor()
	if groupResult.Error != nil {
		logger.Warnf("Some fixtures failed: %v", groupResult.Error)
	}

	resultMap, err := group.GetResults()
	if err != nil {
		return nil, fmt.Errorf("failed to get fixture results: %w", err)
	}

	results := make([]FixtureResult, 0, len(resultMap))
	for _, result := range resultMap {
		results = append(results, result)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Name < results[j].Name })

	r.tree = BuildTree("Fixtures", results)
	return results, nil
}

// Tree returns the result tree of the last Execute.
func (r *Runner) Tree() *FixtureNode {
	return r.tree
}

// Run discovers, executes and prints the fixtures, returning an error if any failed.
func (r *Runner) Run() error {
	fixtures, err := r.Discover()
	if err != nil {
		return fmt.Errorf("failed to discover fixtures: %w", err)
	}
	if len(fixtures) == 0 {
		return fmt.Errorf("no fixtures found")
	}
	logger.Infof("Loaded %d fixtures", len(fixtures))

	if _, err := r.Execute(); err != nil {
		return fmt.Errorf("failed to execute fixtures: %w", err)
	}

	clicky.WaitForGlobalCompletion()

	for _, child := range r.tree.Children {
		fmt.Println(clicky.MustFormat(*child))
	}

	stats := lo.FromPtr(r.tree.Stats)
	logger.Infof("Fixtures: %s", stats.String())
	if stats.HasFailures() {
		return fmt.Errorf("%d fixture(s) failed, %d errored", stats.Failed, stats.Error)
	}
	return nil
}
