package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"covrun/internal/buildinfo"
	"covrun/internal/config"
	"covrun/internal/domain"
	"covrun/internal/httpserver"
	"covrun/internal/locate"
	"covrun/internal/observability"
	"covrun/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "covrund:", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		dir        string
		configPath string
		addr       string
		logLevel   string
	)
	cmd := &cobra.Command{
		Use:           "covrund",
		Short:         "Serve covrun reports and accept published runs",
		Version:       buildinfo.String(),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := locate.NewResolver().Resolve(dir)
			if err != nil {
				return err
			}
			cfg, err := config.Load(root, configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.ServeAddr = addr
			}
			if logLevel != "" {
				cfg.LogLevel = logLevel
			}
			logger, err := observability.NewLogger(cfg.LogLevel)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			metrics := observability.NewMetrics()
			runs := store.NewManifestFileStore(filepath.Join(root, filepath.FromSlash(store.RunsDir)))
			router := httpserver.NewRouter(httpserver.Deps{
				Store:     runs,
				ReportDir: filepath.Join(root, domain.ReportDir),
				Metrics:   metrics.Handler(),
				OnPublish: func(m domain.Manifest) {
					metrics.PublishedTotal.Inc()
					metrics.Record(m, m.EndedAt.Sub(m.StartedAt))
					if cfg.KeepRuns > 0 {
						if _, err := runs.Prune(cfg.KeepRuns); err != nil {
							logger.Warn("prune run history", zap.Error(err))
						}
					}
				},
				Logger: logger,
			})

			return httpserver.Serve(cmd.Context(), cfg.ServeAddr, router, cfg.ShutdownTimeout, logger, func(bound net.Addr) {
				logger.Info("covrund listening", zap.String("addr", bound.String()), zap.String("dir", root))
			})
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "directory holding htmlcov and .covrun/runs (default: nearest go.mod)")
	cmd.Flags().StringVar(&configPath, "config", "", "config file (default <dir>/.covrun.yaml)")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default serve.addr or :8080)")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "log level: debug|info|warn|error")
	return cmd
}
