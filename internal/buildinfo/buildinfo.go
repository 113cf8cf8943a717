package buildinfo

import "fmt"

// Set with -ldflags "-X covrun/internal/buildinfo.Version=...".
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

func String() string {
	return fmt.Sprintf("covrun %s (commit=%s, date=%s)", Version, Commit, Date)
}
