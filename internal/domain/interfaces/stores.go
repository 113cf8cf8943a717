package interfaces

import (
	"context"
	"time"

	types "covrun/internal/domain/types"
)

// ManifestStore persists run manifests.
type ManifestStore interface {
	Save(m types.Manifest) error
	Load(id types.RunID) (types.Manifest, bool, error)
	// List returns manifests newest first.
	List() ([]types.Manifest, error)
	// Prune keeps the newest keep manifests and reports how many were removed.
	Prune(keep int) (int, error)
}

// MetricsRecorder captures run metrics and exports them as a textfile.
type MetricsRecorder interface {
	Record(m types.Manifest, d time.Duration)
	WriteTextfile(path string) error
}

// Publisher sends a manifest to a remote report server.
type Publisher interface {
	Publish(ctx context.Context, m types.Manifest) error
}

// RunLister reads manifests from a remote report server.
type RunLister interface {
	List(ctx context.Context) ([]types.Manifest, error)
}
