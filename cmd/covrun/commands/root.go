package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"covrun/internal/app"
	"covrun/internal/config"
	"covrun/internal/domain"
	"covrun/internal/locate"
	"covrun/internal/observability"
)

var (
	dirFlag    string
	configPath string
	logLevel   string

	projectDir string
	settings   *config.Config
	logger     *zap.Logger

	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := newRootCmd().ExecuteContext(ctx)
	if logger != nil {
		_ = logger.Sync()
	}
	reportError(stderr, err)
	return domain.ExitCode(err)
}

// reportError prints err unless it only carries an exit code; go test has
// already explained its own failures.
func reportError(w io.Writer, err error) {
	if err == nil {
		return
	}
	var ee *domain.ExitError
	if errors.As(err, &ee) && ee.Err == nil {
		return
	}
	fmt.Fprintln(w, "covrun:", err)
}

func newRootCmd() *cobra.Command {
	var run runFlags

	root := &cobra.Command{
		Use:           "covrun",
		Short:         "Run the project's tests with coverage and write an HTML report",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(cmd, run)
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	bindRunFlags(root, &run)

	root.PersistentFlags().StringVar(&dirFlag, "dir", "", "project directory (default: nearest go.mod, then the executable's directory)")
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default <dir>/.covrun.yaml)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug|info|warn|error (default warn)")

	root.AddCommand(runCmd(), reportCmd(), historyCmd(), serveCmd(), versionCmd())
	return root
}

// setup resolves the project directory, loads settings and builds the logger.
func setup() error {
	dir, err := locate.NewResolver().Resolve(dirFlag)
	if err != nil {
		return err
	}
	cfg, err := config.Load(dir, configPath)
	if err != nil {
		return err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	l, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}

	projectDir, settings, logger = dir, cfg, l
	logger.Debug("project resolved", zap.String("dir", dir))
	return nil
}

// newApp wires the app after subcommand flags have been applied to settings.
func newApp(noSave bool) (*app.App, error) {
	return app.New(app.Config{
		Dir:      projectDir,
		Settings: settings,
		Logger:   logger,
		Stdout:   stdout,
		Stderr:   stderr,
		NoSave:   noSave,
	})
}
