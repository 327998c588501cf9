package main

import (
	"fmt"
	"strings"

	"github.com/flanksource/lintfixtures/fixtures"
	"github.com/spf13/cobra"
)

var expectCmd = &cobra.Command{
	Use:          "expect <fixture...>",
	Short:        "Print the diagnostics a fixture expects, without running the linter",
	Args:         cobra.MinimumNArgs(1),
	RunE:         runExpect,
	SilenceUsage: true,
}

func runExpect(cmd *cobra.Command, args []string) error {
	wd, err := getWorkingDir()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, path := range args {
		fixture, err := fixtures.LoadFixture(wd, path)
		if err != nil {
			return err
		}
		exp := fixtures.ParseAnnotations(fixture.Path, fixture.Content)
		if len(exp.Flags) > 0 {
			fmt.Fprintf(out, "%s%s\n", fixtures.FlagsMarker, strings.Join(exp.Flags, " "))
		}
		if minor, ok := fixtures.RequiredMinor(path); ok {
			fmt.Fprintf(out, "# requires: 3.%d\n", minor)
		}
		fmt.Fprint(out, exp.Output())
	}
	return nil
}

var lintCmd = &cobra.Command{
	Use:          "lint <fixture...>",
	Short:        "Report comments that look like annotations but do not parse as one",
	Args:         cobra.MinimumNArgs(1),
	RunE:         runLint,
	SilenceUsage: true,
}

func runLint(cmd *cobra.Command, args []string) error {
	wd, err := getWorkingDir()
	if err != nil {
		return err
	}
	total := 0
	for _, path := range args {
		fixture, err := fixtures.LoadFixture(wd, path)
		if err != nil {
			return err
		}
		for _, s := range fixtures.Lint(fixture.Content) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s:%d: %s: %s\n", path, s.Line, s.Reason, s.Text)
			total++
		}
	}
	if total > 0 {
		return fmt.Errorf("%d suspect annotation(s)", total)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(expectCmd, lintCmd)
}
