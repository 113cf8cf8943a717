package interfaces

import (
	"context"
	"io"

	types "covrun/internal/domain/types"
)

// TestRunner executes the delegated test command.
type TestRunner interface {
	// Run returns a non-nil error only when the command could not be started.
	// A failing test run is reported through TestOutcome.ExitCode.
	Run(ctx context.Context, req types.TestRequest, stdout, stderr io.Writer) (types.TestOutcome, error)
}

// ReportRenderer turns a cover profile into an HTML report.
type ReportRenderer interface {
	Render(ctx context.Context, dir, profile, out string) error
}
