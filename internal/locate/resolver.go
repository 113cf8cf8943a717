package locate

import (
	"fmt"
	"os"
	"path/filepath"

	"covrun/internal/domain"
)

// EnvDir names the environment variable that pins the project directory.
const EnvDir = "COVRUN_DIR"

// DefaultMarker identifies a project root.
const DefaultMarker = "go.mod"

// Resolver picks the project directory. The function fields default to the
// os package and exist so tests can pin them.
type Resolver struct {
	Marker     string // file that marks a project root; DefaultMarker when empty
	Getenv     func(string) string
	Getwd      func() (string, error)
	Executable func() (string, error)
}

func NewResolver() *Resolver {
	return &Resolver{
		Marker:     DefaultMarker,
		Getenv:     os.Getenv,
		Getwd:      os.Getwd,
		Executable: os.Executable,
	}
}

// Resolve returns an absolute, cleaned project directory.
func (r *Resolver) Resolve(explicit string) (string, error) {
	if explicit != "" {
		return existingDir(explicit)
	}
	if env := r.Getenv(EnvDir); env != "" {
		return existingDir(env)
	}

	if wd, err := r.Getwd(); err == nil {
		if root, ok := r.moduleRoot(wd); ok {
			return root, nil
		}
	}

	exe, err := r.Executable()
	if err != nil {
		return "", &domain.OpError{Op: "locate.resolve", Kind: domain.KindNotFound, Err: fmt.Errorf("no %s above the working directory and no executable: %w", r.marker(), err)}
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe), nil
}

// moduleRoot returns the nearest directory at or above dir holding the marker.
func (r *Resolver) moduleRoot(dir string) (string, bool) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", false
	}
	for cur := filepath.Clean(abs); ; {
		if info, err := os.Stat(filepath.Join(cur, r.marker())); err == nil && !info.IsDir() {
			return cur, true
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return "", false
		}
		cur = parent
	}
}

func (r *Resolver) marker() string {
	if r.Marker == "" {
		return DefaultMarker
	}
	return r.Marker
}

func existingDir(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", &domain.OpError{Op: "locate.resolve", Kind: domain.KindExecution, Path: p, Err: err}
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", &domain.OpError{Op: "locate.resolve", Kind: domain.KindNotFound, Path: abs, Err: err}
	}
	if !info.IsDir() {
		return "", &domain.OpError{Op: "locate.resolve", Kind: domain.KindInvalidConfig, Path: abs, Err: fmt.Errorf("not a directory")}
	}
	return filepath.Clean(abs), nil
}
