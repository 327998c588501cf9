package fixtures

import (
	"fmt"
	"strings"

	"github.com/flanksource/clicky"
	"github.com/flanksource/clicky/api"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// MismatchError is returned when the normalized linter output differs from the
// expectation for one invocation mode.
type MismatchError struct {
	Mode     Mode
	Expected string
	Actual   string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("%s mode output mismatch\nexpected:\n%s\nactual:\n%s", e.Mode, e.Expected, e.Actual)
}

// Diff renders a unified-style line diff of expected (-) against actual (+).
func (e *MismatchError) Diff() string {
	return strings.Join(lineDiff(e.Expected, e.Actual), "\n")
}

func (e *MismatchError) Pretty() api.Text {
	t := clicky.Text(fmt.Sprintf("%s mode", e.Mode), "font-bold").NewLine()
	for _, line := range lineDiff(e.Expected, e.Actual) {
		switch {
		case strings.HasPrefix(line, "-"):
			t = t.Append(line, "text-red-500").NewLine()
		case strings.HasPrefix(line, "+"):
			t = t.Append(line, "text-green-500").NewLine()
		default:
			t = t.Append(line, "text-gray-400").NewLine()
		}
	}
	return t
}

// Compare reports a *MismatchError unless actual equals expected exactly.
func Compare(mode Mode, expected, actual string) error {
	if expected == actual {
		return nil
	}
	return &MismatchError{Mode: mode, Expected: expected, Actual: actual}
}

func lineDiff(expected, actual string) []string {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(expected, actual)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var out []string
	for _, diff := range diffs {
		prefix := " "
		switch diff.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		}
		for _, line := range strings.SplitAfter(diff.Text, "\n") {
			if line == "" {
				continue
			}
			out = append(out, prefix+strings.TrimSuffix(line, "\n"))
		}
	}
	return out
}
