// Package fixtures checks a linter's diagnostics against expectations written
// inline in fixture files.
//
// # Annotations
//
// A fixture is an ordinary source file. Any line that does not start with '#'
// may carry one or more annotations, each a comment marker followed by a code
// (one uppercase letter, three digits), a space and the expected message:
//
//	x = 1  # E001 unused variable
//	y: int  # E002 bad type # E003 bad default
//
// The message runs until the next annotation on the same line or the end of the
// line and is whitespace-trimmed. The expected linter output is one line per
// annotation, in source order:
//
//	tests/foo.pyi:1: E001 unused variable
//	tests/foo.pyi:2: E002 bad type
//	tests/foo.pyi:2: E003 bad default
//
// Other lines starting with '#' are comments, except a flags directive whose
// tokens are passed to the linter:
//
//	# flags: --select=E001
//
// # Invocation
//
// Each fixture is linted twice, once by path and once on stdin with a display
// name override, with parallelism disabled. Column numbers are stripped from the
// output and both runs must match the expectation exactly.
//
// # Version gating
//
// A fixture named foo_py312.pyi is skipped when the interpreter is older than
// Python 3.12.
//
// # Running
//
//	runner, _ := fixtures.NewRunner(ctx, fixtures.RunnerOptions{Config: cfg})
//	err := runner.Run()
//
// See fixturetest for running fixtures as Go subtests.
package fixtures
