package coverage

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"covrun/internal/domain"
)

// HTMLRenderer writes an HTML report with `go tool cover -html`.
type HTMLRenderer struct {
	Bin    string   // toolchain binary; name or path
	Env    []string // appended to the inherited environment
	Stderr io.Writer
}

func NewHTMLRenderer(bin string) *HTMLRenderer {
	if bin == "" {
		bin = "go"
	}
	return &HTMLRenderer{Bin: bin}
}

// Render writes the report for profile to out. dir must be the module root
// so the toolchain can locate the profiled sources.
func (r *HTMLRenderer) Render(ctx context.Context, dir, profile, out string) error {
	if _, err := os.Stat(profile); err != nil {
		return &domain.OpError{Op: "coverage.render", Kind: domain.KindNotFound, Path: profile, Err: domain.ErrNoProfile}
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return &domain.OpError{Op: "coverage.render", Kind: domain.KindExecution, Path: out, Err: err}
	}

	bin, err := exec.LookPath(r.Bin)
	if err != nil {
		return &domain.OpError{Op: "coverage.render", Kind: domain.KindToolchain, Path: r.Bin, Err: err}
	}

	var stderr strings.Builder
	cmd := exec.CommandContext(ctx, bin, "tool", "cover", "-html="+profile, "-o", out)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), r.Env...)
	cmd.Stderr = &stderr
	if r.Stderr != nil {
		cmd.Stderr = io.MultiWriter(&stderr, r.Stderr)
	}
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			err = fmt.Errorf("%w: %s", err, msg)
		}
		return &domain.OpError{Op: "coverage.render", Kind: domain.KindExecution, Path: out, Err: err}
	}
	return nil
}

var _ domain.ReportRenderer = (*HTMLRenderer)(nil)
