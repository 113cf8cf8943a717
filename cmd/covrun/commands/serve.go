package commands

import (
	"fmt"
	"net"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"covrun/internal/httpserver"
)

// serve: report viewer for htmlcov, run history and metrics.
func serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the coverage report, run history and metrics over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				settings.ServeAddr = addr
			}
			a, err := newApp(false)
			if err != nil {
				return err
			}
			router := httpserver.NewRouter(a.ServerDeps())
			return httpserver.Serve(cmd.Context(), settings.ServeAddr, router, settings.ShutdownTimeout, logger, func(bound net.Addr) {
				url := serveURL(bound)
				fmt.Fprintf(stdout, "Serving coverage report at %s\n", url)
				logger.Info("serving coverage report", zap.String("url", url))
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	return cmd
}

// serveURL turns a bound address into a browsable URL; wildcard hosts become
// localhost.
func serveURL(addr net.Addr) string {
	host, port, err := net.SplitHostPort(addr.String())
	if err != nil {
		return "http://" + addr.String() + "/"
	}
	if ip := net.ParseIP(host); host == "" || (ip != nil && ip.IsUnspecified()) {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port) + "/"
}
