package fixtures

import (
	"regexp"
	"strings"
)

// columnPattern matches the column of a leading "path:line:col: " prefix only,
// leaving "path:line: " and message text alone.
var columnPattern = regexp.MustCompile(`(?m)^(.*?:\d+):\d+: `)

// Normalize collapses "path:line:col: " prefixes to "path:line: " so comparisons
// ignore column numbers. It is idempotent.
func Normalize(raw string) string {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	return columnPattern.ReplaceAllString(raw, "${1}: ")
}
