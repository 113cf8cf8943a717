package types

import "time"

// Manifest records one run: what was executed, how it ended and where the
// report went.
type Manifest struct {
	ID              RunID     `json:"id"`
	Dir             string    `json:"dir"`
	Args            []string  `json:"args"`
	StartedAt       time.Time `json:"started_at"`
	EndedAt         time.Time `json:"ended_at"`
	TestExitCode    int       `json:"test_exit_code"`
	ExitCode        int       `json:"exit_code"`
	ReportPath      string    `json:"report_path,omitempty"`
	ProfileDigest   string    `json:"profile_digest,omitempty"`
	Summary         *Summary  `json:"summary,omitempty"`
	FailUnder       float64   `json:"fail_under,omitempty"`
	ThresholdFailed bool      `json:"threshold_failed,omitempty"`
}
