package fixtures

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/flanksource/commons/logger"
)

var versionSuffixPattern = regexp.MustCompile(`_py3(\d+)\.[^./\\]+$`)

// RequiredMinor returns N for fixtures named like foo_py3N.pyi.
func RequiredMinor(path string) (int, bool) {
	m := versionSuffixPattern.FindStringSubmatch(filepath.Base(path))
	if m == nil {
		return 0, false
	}
	minor, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return minor, true
}

// Gate decides whether a fixture can run against the interpreter the linter uses.
type Gate struct {
	Runtime *semver.Version
}

// NewGate parses a "3.11" or "Python 3.11.4" style version string.
func NewGate(version string) (*Gate, error) {
	v, err := ParsePythonVersion(version)
	if err != nil {
		return nil, err
	}
	return &Gate{Runtime: v}, nil
}

// Check returns skip=true with a reason when the fixture requires a newer interpreter.
// A nil gate or a nil runtime version imposes no constraint.
func (g *Gate) Check(path string) (bool, string) {
	minor, ok := RequiredMinor(path)
	if !ok || g == nil || g.Runtime == nil {
		return false, ""
	}
	required := semver.New(3, uint64(minor), 0, "", "")
	if g.Runtime.LessThan(required) {
		return true, fmt.Sprintf("Python %d.%d is too old for %s (requires 3.%d)",
			g.Runtime.Major(), g.Runtime.Minor(), path, minor)
	}
	return false, ""
}

var pythonVersionPattern = regexp.MustCompile(`(\d+)\.(\d+)`)

// ParsePythonVersion accepts "3.11", "3.11.4", "Python 3.12.0rc1" and similar.
func ParsePythonVersion(s string) (*semver.Version, error) {
	m := pythonVersionPattern.FindStringSubmatch(s)
	if m == nil {
		return nil, fmt.Errorf("invalid python version %q", strings.TrimSpace(s))
	}
	v, err := semver.NewVersion(m[1] + "." + m[2])
	if err != nil {
		return nil, fmt.Errorf("invalid python version %q: %w", strings.TrimSpace(s), err)
	}
	return v, nil
}

const probeScript = `import sys; print("%d.%d" % sys.version_info[:2])`

// ProbePythonVersion asks the interpreter for its major.minor version.
func ProbePythonVersion(ctx context.Context, python string) (*semver.Version, error) {
	if python == "" {
		python = DefaultPython
	}
	cmd := exec.CommandContext(ctx, python, "-c", probeScript)
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("failed to probe %s version: %w", python, err)
	}
	v, err := ParsePythonVersion(string(out))
	if err != nil {
		return nil, err
	}
	logger.Debugf("%s reports version %s", python, v)
	return v, nil
}
