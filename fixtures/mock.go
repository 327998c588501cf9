package fixtures

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// MockLinter implements Linter for testing. By default it behaves like a correct
// linter: it prints every annotation of the fixture it is given, with a column.
type MockLinter struct {
	mu    sync.Mutex
	calls []Invocation

	// Outputs, when set for a mode, is returned verbatim instead
	Outputs map[Mode]string
	// Err is returned from every Run
	Err error
	// Column is inserted after the line number, defaults to 1
	Column int
}

// NewMockLinter creates a MockLinter that echoes fixture annotations.
func NewMockLinter() *MockLinter {
	return &MockLinter{Outputs: map[Mode]string{}}
}

func (m *MockLinter) Run(_ context.Context, inv Invocation) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, inv)
	m.mu.Unlock()

	if m.Err != nil {
		return "", m.Err
	}
	if out, ok := m.Outputs[inv.Mode]; ok {
		return out, nil
	}

	col := m.Column
	if col == 0 {
		col = 1
	}
	var sb strings.Builder
	for _, a := range ParseAnnotations(inv.Path, inv.Content).Annotations {
		fmt.Fprintf(&sb, "%s:%d:%d: %s %s\n", inv.Path, a.Line, col, a.Code, a.Message)
	}
	return sb.String(), nil
}

// Calls returns the invocations seen so far.
func (m *MockLinter) Calls() []Invocation {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Invocation(nil), m.calls...)
}
