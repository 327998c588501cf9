package fixtures_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/flanksource/clicky/task"
	"github.com/flanksource/lintfixtures/fixtures"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Evaluator", func() {
	var (
		workDir   string
		mock      *fixtures.MockLinter
		evaluator *fixtures.Evaluator
	)

	writeFixture := func(path, content string) {
		full := filepath.Join(workDir, path)
		Expect(os.MkdirAll(filepath.Dir(full), 0o755)).To(Succeed())
		Expect(os.WriteFile(full, []byte(content), 0o644)).To(Succeed())
	}

	BeforeEach(func() {
		workDir = GinkgoT().TempDir()
		mock = fixtures.NewMockLinter()
		gate, err := fixtures.NewGate("3.11")
		Expect(err).NotTo(HaveOccurred())
		evaluator = &fixtures.Evaluator{Linter: mock, Gate: gate, WorkDir: workDir}
	})

	It("passes when both modes print the annotations", func() {
		writeFixture("tests/foo.pyi", "x = 1  # E001 unused variable\n")

		result := evaluator.Evaluate(context.Background(), "tests/foo.pyi")

		Expect(result.Status).To(Equal(task.StatusPASS), result.Error)
		Expect(result.Expected).To(Equal("tests/foo.pyi:1: E001 unused variable\n"))
		Expect(result.Actual).To(HaveKeyWithValue("path", result.Expected))
		Expect(result.Actual).To(HaveKeyWithValue("stdin", result.Expected))
		Expect(mock.Calls()).To(HaveLen(2))
	})

	It("ignores column numbers of any width", func() {
		mock.Column = 12345
		writeFixture("tests/foo.pyi", "y: int  # E002 bad type # E003 bad default\n")

		result := evaluator.Evaluate(context.Background(), "tests/foo.pyi")
		Expect(result.IsOK()).To(BeTrue(), result.Error)
	})

	It("passes the flags directive to both invocations", func() {
		evaluator.Flags = []string{"--global"}
		writeFixture("tests/flags.pyi", "# flags: --select=E001\nx = 1  # E001 unused\n")

		result := evaluator.Evaluate(context.Background(), "tests/flags.pyi")

		Expect(result.IsOK()).To(BeTrue(), result.Error)
		Expect(result.Expected).To(Equal("tests/flags.pyi:2: E001 unused\n"))
		for _, call := range mock.Calls() {
			Expect(call.Flags).To(Equal([]string{"--global", "--select=E001"}))
		}
	})

	It("fails with both outputs when one mode differs", func() {
		mock.Outputs[fixtures.StdinMode] = "stdin:1:1: E001 unused variable\n"
		writeFixture("tests/foo.pyi", "x = 1  # E001 unused variable\n")

		result := evaluator.Evaluate(context.Background(), "tests/foo.pyi")

		Expect(result.Status).To(Equal(task.StatusFAIL))
		Expect(result.Mismatches).To(HaveLen(1))
		m := result.Mismatches[0]
		Expect(m.Mode).To(Equal(fixtures.StdinMode))
		Expect(m.Expected).To(Equal("tests/foo.pyi:1: E001 unused variable\n"))
		Expect(m.Actual).To(Equal("stdin:1: E001 unused variable\n"))
	})

	It("treats an empty output as a mismatch", func() {
		mock.Outputs[fixtures.PathMode] = ""
		mock.Outputs[fixtures.StdinMode] = ""
		writeFixture("tests/foo.pyi", "x = 1  # E001 unused variable\n")

		result := evaluator.Evaluate(context.Background(), "tests/foo.pyi")
		Expect(result.Status).To(Equal(task.StatusFAIL))
		Expect(result.Mismatches).To(HaveLen(2))
	})

	It("skips fixtures requiring a newer interpreter without running the linter", func() {
		writeFixture("tests/new_py312.pyi", "x = 1  # E001 unused variable\n")

		result := evaluator.Evaluate(context.Background(), "tests/new_py312.pyi")

		Expect(result.Status).To(Equal(task.StatusSKIP))
		Expect(result.Error).To(ContainSubstring("3.12"))
		Expect(mock.Calls()).To(BeEmpty())
	})

	It("runs gated fixtures when the interpreter is new enough", func() {
		gate, err := fixtures.NewGate("3.12")
		Expect(err).NotTo(HaveOccurred())
		evaluator.Gate = gate
		writeFixture("tests/new_py312.pyi", "x = 1  # E001 unused variable\n")

		result := evaluator.Evaluate(context.Background(), "tests/new_py312.pyi")
		Expect(result.Status).To(Equal(task.StatusPASS))
	})

	It("reports linter failures as errors, not mismatches", func() {
		mock.Err = errors.New("boom")
		writeFixture("tests/foo.pyi", "x = 1\n")

		result := evaluator.Evaluate(context.Background(), "tests/foo.pyi")
		Expect(result.Status).To(Equal(task.StatusERR))
		Expect(result.Error).To(ContainSubstring("boom"))
	})

	It("reports a missing fixture as an error", func() {
		result := evaluator.Evaluate(context.Background(), "tests/missing.pyi")
		Expect(result.Status).To(Equal(task.StatusERR))
	})

	Context("with malformed annotations", func() {
		BeforeEach(func() {
			writeFixture("tests/typo.pyi", "x = 1  #E001 unused variable\n")
		})

		It("warns but passes by default", func() {
			result := evaluator.Evaluate(context.Background(), "tests/typo.pyi")
			Expect(result.Status).To(Equal(task.StatusPASS))
			Expect(result.Suspects).To(HaveLen(1))
		})

		It("fails in strict mode", func() {
			evaluator.Strict = true
			result := evaluator.Evaluate(context.Background(), "tests/typo.pyi")
			Expect(result.Status).To(Equal(task.StatusFAIL))
		})
	})
})
