package fixtures

import (
	"fmt"
	"regexp"
	"strings"
)

// FlagsMarker starts a directive line whose remaining tokens are passed to the linter.
const FlagsMarker = "# flags: "

var (
	annotationPattern = regexp.MustCompile(`# ([A-Z]\d\d\d) `)
	codeShapedPattern = regexp.MustCompile(`#\s*[A-Za-z]\d{3}\b`)
)

// Annotation is one expected diagnostic declared inline in a fixture.
type Annotation struct {
	Line    int    `json:"line"`
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}

// Expectation is everything a fixture declares about the linter run: the flags to
// invoke it with and the diagnostics it must print.
type Expectation struct {
	Path        string       `json:"path"`
	Flags       []string     `json:"flags,omitempty"`
	Annotations []Annotation `json:"annotations,omitempty"`
}

// Output renders the expectation the way the linter prints it, minus column numbers.
func (e Expectation) Output() string {
	var sb strings.Builder
	for _, a := range e.Annotations {
		fmt.Fprintf(&sb, "%s:%d: %s %s\n", e.Path, a.Line, a.Code, a.Message)
	}
	return sb.String()
}

type lineKind int

const (
	contentLine lineKind = iota
	directiveLine
	commentLine
)

func classify(line string) lineKind {
	switch {
	case strings.HasPrefix(line, FlagsMarker):
		return directiveLine
	case strings.HasPrefix(line, "#"):
		return commentLine
	default:
		return contentLine
	}
}

// ParseAnnotations extracts the flags directive and the inline annotations from the
// fixture text. path is used verbatim in the rendered output.
func ParseAnnotations(path, content string) Expectation {
	exp := Expectation{Path: path}

	for i, line := range splitLines(content) {
		lineno := i + 1
		switch classify(line) {
		case directiveLine:
			fields := strings.Fields(line)
			if len(fields) > 2 {
				exp.Flags = append(exp.Flags, fields[2:]...)
			}
		case commentLine:
			continue
		case contentLine:
			exp.Annotations = append(exp.Annotations, annotationsInLine(lineno, line)...)
		}
	}
	return exp
}

func annotationsInLine(lineno int, line string) []Annotation {
	matches := annotationPattern.FindAllStringSubmatchIndex(line, -1)
	if len(matches) == 0 {
		return nil
	}

	annotations := make([]Annotation, 0, len(matches))
	for i, m := range matches {
		end := len(line)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		annotations = append(annotations, Annotation{
			Line:    lineno,
			Code:    line[m[2]:m[3]],
			Message: strings.TrimSpace(line[m[1]:end]),
		})
	}
	return annotations
}

// splitLines splits on \n, \r\n and \r without yielding a trailing empty line.
func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	lines := strings.Split(content, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// Suspect is a content line that looks like it was meant to carry an annotation
// but produced none, or produced fewer than it appears to declare.
type Suspect struct {
	Line   int    `json:"line"`
	Text   string `json:"text"`
	Reason string `json:"reason"`
}

func (s Suspect) String() string {
	return fmt.Sprintf("line %d: %s: %q", s.Line, s.Reason, s.Text)
}

// Lint reports content lines where a comment marker is followed by a code-shaped
// token (#E001, # e001, a bare # E001 at end of line) that was not picked up as an
// annotation.
func Lint(content string) []Suspect {
	var suspects []Suspect
	for i, line := range splitLines(content) {
		if classify(line) != contentLine {
			continue
		}
		idx := strings.Index(line, "#")
		if idx < 0 {
			continue
		}
		comment := line[idx:]
		found := len(codeShapedPattern.FindAllStringIndex(line, -1))
		matched := len(annotationPattern.FindAllStringIndex(line, -1))
		if found == 0 || found <= matched {
			continue
		}
		reason := "code-shaped token is not a well-formed annotation"
		if matched > 0 {
			reason = fmt.Sprintf("%d of %d code-shaped tokens are well-formed annotations", matched, found)
		}
		suspects = append(suspects, Suspect{Line: i + 1, Text: strings.TrimSpace(comment), Reason: reason})
	}
	return suspects
}
