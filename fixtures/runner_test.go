package fixtures

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/flanksource/clicky/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, dir string, paths ...string) {
	t.Helper()
	for _, p := range paths {
		full := filepath.Join(dir, p)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte("x = 1\n"), 0o644))
	}
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "tests/b.pyi", "tests/a.pyi", "tests/a_py312.pyi", "tests/other.py", "tests/sub/c.pyi")

	paths, err := Discover(dir, []string{"tests/*.pyi"}, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"tests/a.pyi", "tests/a_py312.pyi", "tests/b.pyi"}, paths)

	paths, err = Discover(dir, []string{"tests/**/*.pyi", "tests/*.pyi"}, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"tests/a.pyi", "tests/a_py312.pyi", "tests/b.pyi", "tests/sub/c.pyi"}, paths)

	paths, err = Discover(dir, []string{"tests/**/*.pyi"}, "**/a*")
	require.NoError(t, err)
	assert.Equal(t, []string{"tests/a.pyi", "tests/a_py312.pyi"}, paths)

	_, err = Discover(dir, []string{"tests/[.pyi"}, "")
	assert.Error(t, err)
}

func TestNewRunnerUsesOverrides(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "tests/a.pyi")
	mock := NewMockLinter()

	runner, err := NewRunner(context.Background(), RunnerOptions{
		Config: Config{WorkDir: dir, PythonVersion: "3.11", Flags: []string{"--x"}},
		Linter: mock,
	})
	require.NoError(t, err)

	paths, err := runner.Discover()
	require.NoError(t, err)
	assert.Equal(t, []string{"tests/a.pyi"}, paths)

	e := runner.Evaluator()
	assert.Equal(t, mock, e.Linter)
	assert.Equal(t, []string{"--x"}, e.Flags)
	assert.Equal(t, uint64(11), e.Gate.Runtime.Minor())
}

func TestBuildTree(t *testing.T) {
	results := []FixtureResult{
		{Name: "tests/b.pyi", Status: task.StatusFAIL},
		{Name: "tests/a.pyi", Status: task.StatusPASS},
		{Name: "tests/new_py312.pyi", Status: task.StatusSKIP},
		{Name: "other/c.pyi", Status: task.StatusERR},
	}

	tree := BuildTree("Fixtures", results)
	require.Len(t, tree.Children, 2)
	assert.Equal(t, "other", tree.Children[0].Name)
	assert.Equal(t, "tests", tree.Children[1].Name)
	assert.Equal(t, "tests/a.pyi", tree.Children[1].Children[0].Name)

	stats := *tree.Stats
	assert.Equal(t, Stats{Total: 4, Passed: 1, Failed: 1, Skipped: 1, Error: 1}, stats)
	assert.True(t, stats.HasFailures())
	assert.Equal(t, "1/2 1 skipped 1 error", stats.String())

	assert.Equal(t, Stats{Total: 3, Passed: 1, Failed: 1, Skipped: 1}, *tree.Children[1].Stats)
}

// silentFor wraps a linter and prints nothing for the given paths.
type silentFor struct {
	Linter
	paths []string
}

func (s silentFor) Run(ctx context.Context, inv Invocation) (string, error) {
	for _, p := range s.paths {
		if p == inv.Path {
			return "", nil
		}
	}
	return s.Linter.Run(ctx, inv)
}

func writeFixture(t *testing.T, dir, path, content string) {
	t.Helper()
	full := filepath.Join(dir, path)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

func TestRunnerRun(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "tests/ok.pyi", "x = 1  # E001 unused variable\n")
	writeFixture(t, dir, "tests/new_py399.pyi", "x = 1  # E001 unused variable\n")
	writeFixture(t, dir, "tests/bad.pyi", "y: int  # E002 bad type\n")

	newRunner := func(silent ...string) *Runner {
		runner, err := NewRunner(context.Background(), RunnerOptions{
			Config: Config{WorkDir: dir, PythonVersion: "3.11"},
			Linter: silentFor{Linter: NewMockLinter(), paths: silent},
		})
		require.NoError(t, err)
		return runner
	}

	t.Run("mismatch fails the run", func(t *testing.T) {
		runner := newRunner("tests/bad.pyi")
		err := runner.Run()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "1 fixture(s) failed")

		stats := runner.Tree().GetStats()
		assert.Equal(t, Stats{Total: 3, Passed: 1, Failed: 1, Skipped: 1}, stats)
	})

	t.Run("passes and skips succeed", func(t *testing.T) {
		runner := newRunner()
		require.NoError(t, runner.Run())

		stats := runner.Tree().GetStats()
		assert.Equal(t, Stats{Total: 3, Passed: 2, Skipped: 1}, stats)
		assert.False(t, stats.HasFailures())
	})
}
