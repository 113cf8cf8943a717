package commands

import (
	"fmt"
	"io"
	"path"

	"github.com/spf13/cobra"

	"covrun/internal/domain"
)

// report: re-render the HTML report from the last profile without running tests.
func reportCmd() *cobra.Command {
	var byFile bool
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Re-render htmlcov/index.html from the last coverage profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(true)
			if err != nil {
				return err
			}
			s, err := a.Runs.Report(cmd.Context(), a.Dir, settings.Profile)
			if err != nil {
				return err
			}
			printSummary(stdout, s, byFile)
			fmt.Fprintf(stdout, "Coverage report: %s\n", path.Join(domain.ReportDir, domain.ReportIndex))
			return nil
		},
	}
	cmd.Flags().BoolVar(&byFile, "files", false, "list every file instead of packages")
	return cmd
}

func printSummary(w io.Writer, s domain.Summary, byFile bool) {
	if byFile {
		for _, f := range s.Files {
			fmt.Fprintf(w, "%-60s %6.1f%%  (%d/%d)\n", f.Name, f.Percent, f.Covered, f.Statements)
		}
	} else {
		for _, p := range s.Packages {
			fmt.Fprintf(w, "%-60s %6.1f%%  (%d/%d)\n", p.ImportPath, p.Percent, p.Covered, p.Statements)
		}
	}
	fmt.Fprintf(w, "%-60s %6.1f%%  (%d/%d)\n", "total", s.Percent, s.Covered, s.Statements)
}
