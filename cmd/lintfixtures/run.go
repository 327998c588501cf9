package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/flanksource/commons/logger"
	"github.com/flanksource/lintfixtures/fixtures"
	"github.com/spf13/cobra"
)

type runFlags struct {
	config        string
	profile       string
	command       []string
	flags         []string
	pythonVersion string
	python        string
	filter        string
	timeout       time.Duration
	strict        bool
}

var runOpts runFlags

var runCmd = &cobra.Command{
	Use:          "run [fixture-globs...]",
	Short:        "Run the linter over each fixture in path and stdin mode and compare with its annotations",
	RunE:         runFixtures,
	SilenceUsage: true,
}

// loadConfig merges the config file, command line flags and defaults.
func loadConfig(cmd *cobra.Command, args []string) (fixtures.Config, error) {
	wd, err := getWorkingDir()
	if err != nil {
		return fixtures.Config{}, fmt.Errorf("failed to get working directory: %w", err)
	}

	path := runOpts.config
	if !filepath.IsAbs(path) {
		path = filepath.Join(wd, path)
	}
	cfg, err := fixtures.LoadConfig(path)
	if err != nil {
		return cfg, err
	}

	overrides := fixtures.Config{
		Fixtures:      args,
		Profile:       runOpts.profile,
		Command:       runOpts.command,
		Flags:         runOpts.flags,
		Python:        runOpts.python,
		PythonVersion: runOpts.pythonVersion,
		Strict:        runOpts.strict,
	}
	if cmd.Flags().Changed("timeout") {
		overrides.Timeout = &runOpts.timeout
	}
	if cfg.WorkDir == "" {
		overrides.WorkDir = wd
	}
	cfg = cfg.MergeInto(overrides).Defaults()
	logger.Debugf("config: %+v", cfg)
	return cfg, nil
}

func runFixtures(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	runner, err := fixtures.NewRunner(cmd.Context(), fixtures.RunnerOptions{
		Config: cfg,
		Filter: runOpts.filter,
	})
	if err != nil {
		return fmt.Errorf("failed to create fixture runner: %w", err)
	}

	return runner.Run()
}

func init() {
	flags := runCmd.Flags()
	flags.StringVarP(&runOpts.config, "config", "c", fixtures.DefaultConfigFile, "Config file, relative to --cwd")
	flags.StringVar(&runOpts.profile, "profile", "", "Linter profile (flake8, ruff or one declared in the config)")
	flags.StringSliceVar(&runOpts.command, "command", nil, "Linter command overriding the profile's, e.g. python3,-m,flake8")
	flags.StringArrayVar(&runOpts.flags, "flag", nil, "Extra flag passed to every invocation (repeatable)")
	flags.StringVar(&runOpts.python, "python", "", "Interpreter probed for the version gate")
	flags.StringVar(&runOpts.pythonVersion, "python-version", "", "Interpreter version for the version gate, skips probing")
	flags.StringVar(&runOpts.filter, "filter", "", "Only run fixtures whose path matches this glob")
	flags.DurationVar(&runOpts.timeout, "timeout", fixtures.DefaultTimeout, "Timeout for each linter invocation")
	flags.BoolVar(&runOpts.strict, "strict", false, "Fail fixtures containing malformed annotations")
	rootCmd.AddCommand(runCmd)
}
