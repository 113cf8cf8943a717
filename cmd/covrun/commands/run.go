package commands

import (
	"time"

	"github.com/spf13/cobra"

	"covrun/internal/config"
	"covrun/internal/domain"
)

type runFlags struct {
	pkgs      []string
	coverPkgs []string
	coverMode string
	race      bool
	run       string
	timeout   time.Duration
	verbose   bool
	failUnder float64
	publish   string
	noSave    bool
}

// run: go test with coverage, then the HTML report. Exit code is go test's.
func runCmd() *cobra.Command {
	var f runFlags
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the tests with coverage and write htmlcov/index.html",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(cmd, f)
		},
	}
	bindRunFlags(cmd, &f)
	return cmd
}

func bindRunFlags(cmd *cobra.Command, f *runFlags) {
	fl := cmd.Flags()
	fl.StringArrayVar(&f.pkgs, "pkg", nil, "package pattern to test (repeatable; default ./...)")
	fl.StringArrayVar(&f.coverPkgs, "coverpkg", nil, "package pattern to instrument (repeatable)")
	fl.StringVar(&f.coverMode, "covermode", "", "set|count|atomic")
	fl.BoolVar(&f.race, "race", false, "enable the race detector")
	fl.StringVar(&f.run, "run", "", "only run tests matching this regexp")
	fl.DurationVar(&f.timeout, "timeout", 0, "go test -timeout")
	fl.BoolVarP(&f.verbose, "verbose", "v", false, "verbose test output")
	fl.Float64Var(&f.failUnder, "fail-under", 0, "exit 2 when tests pass but total coverage is below this percent")
	fl.StringVar(&f.publish, "publish", "", "report server URL to publish the run manifest to")
	fl.BoolVar(&f.noSave, "no-save", false, "do not record the run under .covrun/runs")
}

func runTests(cmd *cobra.Command, f runFlags) error {
	if err := applyRunFlags(cmd, f); err != nil {
		return err
	}
	a, err := newApp(f.noSave)
	if err != nil {
		return err
	}
	opts := a.RunOptions()
	opts.Request.Run = f.run
	_, err = a.Runs.Run(cmd.Context(), opts)
	return err
}

// applyRunFlags overlays explicitly set flags on the loaded settings.
func applyRunFlags(cmd *cobra.Command, f runFlags) error {
	changed := cmd.Flags().Changed
	if changed("pkg") {
		settings.Packages = f.pkgs
	}
	if changed("coverpkg") {
		settings.CoverPackages = f.coverPkgs
	}
	if changed("covermode") {
		settings.CoverMode = domain.CoverMode(f.coverMode)
	}
	if changed("race") {
		settings.Race = f.race
	}
	if changed("timeout") {
		settings.TestTimeout = f.timeout
	}
	if changed("verbose") {
		settings.Verbose = f.verbose
	}
	if changed("fail-under") {
		settings.FailUnder = f.failUnder
	}
	if changed("publish") {
		settings.PublishURL = f.publish
	}
	if err := config.Validate(settings); err != nil {
		return &domain.OpError{Op: "commands.run", Kind: domain.KindInvalidConfig, Err: err}
	}
	return nil
}
