package types

import "time"

// TestRequest describes one delegated go test invocation.
type TestRequest struct {
	Dir           string // working directory (project root)
	Packages      []string
	CoverPackages []string // -coverpkg; empty means go test's default
	CoverMode     CoverMode
	ProfilePath   string
	Race          bool
	Run           string
	Timeout       time.Duration
	Verbose       bool
}

// TestOutcome is what the delegated command left behind.
type TestOutcome struct {
	Args      []string
	ExitCode  int
	StartedAt time.Time
	EndedAt   time.Time
}

// Duration of the test command.
func (o TestOutcome) Duration() time.Duration {
	if o.StartedAt.IsZero() || o.EndedAt.IsZero() {
		return 0
	}
	return o.EndedAt.Sub(o.StartedAt)
}
