package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"covrun/internal/domain"
	"covrun/internal/publish"
)

// history: list recorded runs from .covrun/runs or a report server.
func historyCmd() *cobra.Command {
	var server string
	var limit int
	var format string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var runs []domain.Manifest
			if server != "" {
				var remote domain.RunLister = publish.NewHTTP(server, nil)
				list, err := remote.List(cmd.Context())
				if err != nil {
					return err
				}
				runs = list
			} else {
				a, err := newApp(false)
				if err != nil {
					return err
				}
				list, err := a.Store.List()
				if err != nil {
					return err
				}
				runs = list
			}
			if limit > 0 && len(runs) > limit {
				runs = runs[:limit]
			}
			return printHistory(stdout, runs, format)
		},
	}
	cmd.Flags().StringVar(&server, "server", "", "read history from a report server instead of the project")
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "show at most N runs (0 = all)")
	cmd.Flags().StringVar(&format, "format", "table", "Output format: table|json")
	return cmd
}

func printHistory(w io.Writer, runs []domain.Manifest, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if runs == nil {
			runs = []domain.Manifest{}
		}
		return enc.Encode(runs)
	case "table", "":
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "RUN\tSTARTED\tDURATION\tEXIT\tCOVERAGE")
		for _, m := range runs {
			cov := "-"
			if m.Summary != nil {
				cov = fmt.Sprintf("%.1f%%", m.Summary.Percent)
			}
			exit := fmt.Sprintf("%d", m.ExitCode)
			if m.ThresholdFailed {
				exit += " (fail-under)"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
				m.ID,
				m.StartedAt.Local().Format(time.DateTime),
				m.EndedAt.Sub(m.StartedAt).Round(time.Millisecond),
				exit,
				cov,
			)
		}
		return tw.Flush()
	default:
		return fmt.Errorf("unsupported format %q (expected table|json)", format)
	}
}
