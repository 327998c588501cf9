package fixtures

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/flanksource/clicky"
	"github.com/flanksource/clicky/api"
	"github.com/flanksource/clicky/task"
)

// Fixture is a source file annotated with the diagnostics the linter must report
// for it.
type Fixture struct {
	// Path as passed to the linter and printed in diagnostics, relative to the work dir
	Path    string `json:"path"`
	Content string `json:"-"`
}

// FixtureResult represents the outcome of evaluating a single fixture.
type FixtureResult struct {
	Name     string        `json:"name" pretty:"label=Fixture,style=text-blue-600"`
	Status   task.Status   `json:"status,omitempty"`
	Duration time.Duration `json:"duration,omitempty" pretty:"label=Duration,style=text-yellow-600,omitempty"`

	Flags    []string `json:"flags,omitempty" pretty:"label=Flags,omitempty"`
	Expected string   `json:"expected,omitempty" pretty:"label=Expected,omitempty"`
	// Actual holds the normalized output per mode
	Actual     map[string]string `json:"actual,omitempty" pretty:"label=Actual,omitempty"`
	Mismatches []*MismatchError  `json:"-"`
	Suspects   []Suspect         `json:"suspects,omitempty" pretty:"label=Suspect annotations,omitempty"`

	Error string     `json:"error,omitempty" pretty:"label=Error,style=text-red-600,omitempty"`
	Start *time.Time `json:"start,omitempty"`
}

func (f FixtureResult) finish() FixtureResult {
	if f.Start != nil {
		f.Duration = time.Since(*f.Start)
	}
	return f
}

func (f FixtureResult) Failf(format string, args ...interface{}) FixtureResult {
	f = f.finish()
	f.Status = task.StatusFAIL
	f.Error = fmt.Sprintf(format, args...)
	return f
}

func (f FixtureResult) Errorf(err error, format string, args ...interface{}) FixtureResult {
	f = f.finish()
	f.Status = task.StatusERR
	f.Error = err.Error() + ": " + fmt.Sprintf(format, args...)
	return f
}

func (f FixtureResult) Skipf(format string, args ...interface{}) FixtureResult {
	f = f.finish()
	f.Status = task.StatusSKIP
	f.Error = fmt.Sprintf(format, args...)
	return f
}

func (f FixtureResult) Pass() FixtureResult {
	f = f.finish()
	f.Status = task.StatusPASS
	return f
}

func (f FixtureResult) IsSkipped() bool {
	return f.Status == task.StatusSKIP
}

func (f FixtureResult) IsOK() bool {
	return f.Status == task.StatusPASS || f.Status == task.StatusSKIP
}

func (f FixtureResult) String() string {
	return fmt.Sprintf("%s - %s", f.Name, f.Status.String())
}

func (f FixtureResult) Pretty() api.Text {
	t := f.Status.Pretty().Append(" ").Append(f.Name, "italic text-orange-500")
	if f.Duration > 0 {
		t = t.Append(fmt.Sprintf(" (%s)", f.Duration.Round(time.Millisecond)), "text-gray-500")
	}
	if f.Error != "" && len(f.Mismatches) == 0 {
		t = t.Space().Append(f.Error, "text-red-600")
	}
	for _, s := range f.Suspects {
		t = t.NewLine().Append("  ⚠ "+s.String(), "text-yellow-600")
	}
	for _, m := range f.Mismatches {
		t = t.NewLine().Add(m.Pretty())
	}
	return t
}

// Stats provides summary statistics for fixture evaluation.
type Stats struct {
	Total   int `json:"total,omitempty"`
	Passed  int `json:"passed,omitempty"`
	Failed  int `json:"failed,omitempty"`
	Skipped int `json:"skipped,omitempty"`
	Error   int `json:"error,omitempty"`
}

func (s Stats) Merge(o Stats) Stats {
	return Stats{
		Total:   s.Total + o.Total,
		Passed:  s.Passed + o.Passed,
		Failed:  s.Failed + o.Failed,
		Skipped: s.Skipped + o.Skipped,
		Error:   s.Error + o.Error,
	}
}

func (s Stats) Add(result *FixtureResult) Stats {
	if result == nil {
		return s
	}
	s.Total++
	switch result.Status {
	case task.StatusFAIL, task.StatusFailed:
		s.Failed++
	case task.StatusPASS, task.StatusSuccess:
		s.Passed++
	case task.StatusSKIP:
		s.Skipped++
	case task.StatusERR, task.StatusCancelled:
		s.Error++
	}
	return s
}

func (s Stats) IsOK() bool {
	return s.Failed == 0 && s.Error == 0
}

func (s Stats) HasFailures() bool {
	return s.Failed > 0 || s.Error > 0
}

func (s Stats) Health() task.Health {
	if s.Failed+s.Error > 0 {
		return task.HealthError
	}
	if s.Total == 0 || s.Skipped > 0 {
		return task.HealthWarning
	}
	return task.HealthOK
}

// Pretty prints status, with green for passed red for failed and yellow for skipped
func (s Stats) Pretty() api.Text {
	t := api.Text{}
	if s.Passed > 0 {
		t = t.Append(strconv.Itoa(s.Passed), "text-green-500")
	}
	if s.Failed > 0 {
		if !t.IsEmpty() {
			t = t.Append("/", "text-gray-500")
		}
		t = t.Append(strconv.Itoa(s.Failed), "text-red-500")
	}
	if s.Skipped > 0 {
		t = t.Append(fmt.Sprintf(" %d skipped", s.Skipped), "text-yellow-500")
	}
	if s.Error > 0 {
		t = t.Append(fmt.Sprintf(" %d errors", s.Error), "text-red-500")
	}
	return t
}

func (s Stats) String() string {
	if s.Total == 0 {
		return "-"
	}
	str := fmt.Sprintf("%d/%d", s.Passed, s.Failed+s.Passed)
	if s.Skipped > 0 {
		str += fmt.Sprintf(" %d skipped", s.Skipped)
	}
	if s.Error > 0 {
		str += fmt.Sprintf(" %d error", s.Error)
	}
	return str
}

// FixtureNode groups fixture results by directory for display.
type FixtureNode struct {
	Name     string         `json:"name" pretty:"label"`
	Children []*FixtureNode `json:"children,omitempty"`
	Results  *FixtureResult `json:"results,omitempty"`
	Stats    *Stats         `json:"stats,omitempty"`
}

func (f *FixtureNode) GetStats() Stats {
	s := Stats{}.Add(f.Results)
	for _, child := range f.Children {
		s = s.Merge(child.GetStats())
	}
	return s
}

// UpdateStats calculates and updates the Stats field for this node and its children
func (f *FixtureNode) UpdateStats() {
	for _, child := range f.Children {
		child.UpdateStats()
	}
	stats := f.GetStats()
	f.Stats = &stats
}

func (f FixtureNode) Pretty() api.Text {
	if f.Results != nil {
		return f.Results.Pretty()
	}
	s := clicky.Text("📁 "+f.Name, "text-blue-600 font-bold")
	if f.Stats != nil {
		s = s.Append(" (").Add(f.Stats.Pretty()).Append(")")
	}
	return s
}

func (f FixtureNode) GetChildren() []api.TreeNode {
	nodes := make([]api.TreeNode, len(f.Children))
	for i, child := range f.Children {
		nodes[i] = child
	}
	return nodes
}

// BuildTree groups results under one node per directory, sorted by path.
func BuildTree(name string, results []FixtureResult) *FixtureNode {
	sorted := append([]FixtureResult(nil), results...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	root := &FixtureNode{Name: name}
	dirs := map[string]*FixtureNode{}
	for i := range sorted {
		dir := filepath.Dir(sorted[i].Name)
		node, ok := dirs[dir]
		if !ok {
			node = &FixtureNode{Name: dir}
			dirs[dir] = node
			root.Children = append(root.Children, node)
		}
		node.Children = append(node.Children, &FixtureNode{Name: sorted[i].Name, Results: &sorted[i]})
	}
	root.UpdateStats()
	return root
}
