package runner

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"covrun/internal/domain"
)

// DefaultBin is the toolchain binary looked up on PATH.
const DefaultBin = "go"

// DefaultWaitDelay bounds how long Run waits after cancellation for the
// test command to exit and release its output.
const DefaultWaitDelay = 10 * time.Second

// GoTest runs `go test` with coverage flags.
type GoTest struct {
	Bin       string        // toolchain binary; name or path
	Env       []string      // appended to the inherited environment
	WaitDelay time.Duration // DefaultWaitDelay when zero
}

func New(bin string) *GoTest {
	if bin == "" {
		bin = DefaultBin
	}
	return &GoTest{Bin: bin, WaitDelay: DefaultWaitDelay}
}

// LookPath resolves the toolchain binary.
func (g *GoTest) LookPath() (string, error) {
	p, err := exec.LookPath(g.Bin)
	if err != nil {
		return "", &domain.OpError{
			Op:   "runner.lookpath",
			Kind: domain.KindToolchain,
			Path: g.Bin,
			Err:  errors.Join(domain.ErrToolchain, err),
		}
	}
	return p, nil
}

// Args returns the go test arguments for req, without the binary.
func Args(req domain.TestRequest) []string {
	mode := req.CoverMode
	if mode == "" {
		mode = domain.CoverSet
	}
	args := []string{"test", "-covermode=" + string(mode), "-coverprofile=" + req.ProfilePath}
	if len(req.CoverPackages) > 0 {
		args = append(args, "-coverpkg="+strings.Join(req.CoverPackages, ","))
	}
	if req.Race {
		args = append(args, "-race")
	}
	if req.Timeout > 0 {
		args = append(args, "-timeout="+req.Timeout.String())
	}
	if req.Run != "" {
		args = append(args, "-run="+req.Run)
	}
	if req.Verbose {
		args = append(args, "-v")
	}
	pkgs := req.Packages
	if len(pkgs) == 0 {
		pkgs = []string{"./..."}
	}
	return append(args, pkgs...)
}

// Run executes the tests. The returned error is non-nil only when the
// command could not be started; test failures surface as a non-zero ExitCode.
func (g *GoTest) Run(ctx context.Context, req domain.TestRequest, stdout, stderr io.Writer) (domain.TestOutcome, error) {
	bin, err := g.LookPath()
	if err != nil {
		return domain.TestOutcome{ExitCode: 1}, err
	}

	args := Args(req)
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Dir = req.Dir
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.Env = append(os.Environ(), g.Env...)
	// go test stops its test binaries on interrupt; a kill would orphan them.
	cmd.Cancel = func() error {
		if err := cmd.Process.Signal(os.Interrupt); err != nil {
			return cmd.Process.Kill()
		}
		return nil
	}
	cmd.WaitDelay = g.WaitDelay
	if cmd.WaitDelay <= 0 {
		cmd.WaitDelay = DefaultWaitDelay
	}

	out := domain.TestOutcome{
		Args:      append([]string{g.Bin}, args...),
		StartedAt: time.Now().UTC(),
	}
	runErr := cmd.Run()
	out.EndedAt = time.Now().UTC()

	if cmd.ProcessState != nil {
		// The command ran. Wait may still report ErrWaitDelay or the context
		// error; the exit status is what counts.
		out.ExitCode = cmd.ProcessState.ExitCode()
		if out.ExitCode < 0 || (out.ExitCode == 0 && ctx.Err() != nil) {
			out.ExitCode = 1
		}
		return out, nil
	}
	code, err := ExitCode(runErr)
	out.ExitCode = code
	if err != nil {
		return out, &domain.OpError{Op: "runner.run", Kind: domain.KindExecution, Path: req.Dir, Err: err}
	}
	return out, nil
}

// ExitCode maps the error from exec.Cmd.Run to a process exit code. A
// process killed by a signal reports 1. Errors that are not exit statuses
// (start failures) are returned alongside code 1.
func ExitCode(err error) (int, error) {
	if err == nil {
		return 0, nil
	}
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		if code := ee.ExitCode(); code >= 0 {
			return code, nil
		}
		return 1, nil
	}
	return 1, err
}

var _ domain.TestRunner = (*GoTest)(nil)
