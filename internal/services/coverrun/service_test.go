package coverrun_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"covrun/internal/domain"
	"covrun/internal/services/coverrun"
	"covrun/internal/store"
)

const profileBody = `mode: set
school/activities/store.go:10.30,12.2 3 1
school/activities/store.go:14.30,18.2 1 0
`

type fakeRunner struct {
	exitCode     int
	writeProfile bool
	startErr     error
	got          domain.TestRequest
}

func (f *fakeRunner) Run(_ context.Context, req domain.TestRequest, stdout, _ io.Writer) (domain.TestOutcome, error) {
	f.got = req
	if f.startErr != nil {
		return domain.TestOutcome{ExitCode: 1}, f.startErr
	}
	_, _ = io.WriteString(stdout, "--- test output ---\n")
	if f.writeProfile {
		if err := os.WriteFile(req.ProfilePath, []byte(profileBody), 0o644); err != nil {
			return domain.TestOutcome{}, err
		}
	}
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return domain.TestOutcome{
		Args:      []string{"go", "test", "./..."},
		ExitCode:  f.exitCode,
		StartedAt: start,
		EndedAt:   start.Add(3 * time.Second),
	}, nil
}

// fakeRenderer behaves like go tool cover: it needs the profile to exist.
type fakeRenderer struct{ calls int }

func (f *fakeRenderer) Render(_ context.Context, _, profile, out string) error {
	f.calls++
	if _, err := os.Stat(profile); err != nil {
		return domain.ErrNoProfile
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return err
	}
	return os.WriteFile(out, []byte("<html></html>"), 0o644)
}

type fakeMetrics struct {
	recorded []domain.Manifest
	written  string
}

func (f *fakeMetrics) Record(m domain.Manifest, _ time.Duration) { f.recorded = append(f.recorded, m) }
func (f *fakeMetrics) WriteTextfile(path string) error { f.written = path; return nil }

type fakePublisher struct {
	published []domain.Manifest
	err       error
}

func (f *fakePublisher) Publish(_ context.Context, m domain.Manifest) error {
	f.published = append(f.published, m)
	return f.err
}

type fixture struct {
	dir       string
	runner    *fakeRunner
	renderer  *fakeRenderer
	store     *store.ManifestFileStore
	metrics   *fakeMetrics
	publisher *fakePublisher
	stdout    *bytes.Buffer
	svc       *coverrun.Service
}

func newFixture(t *testing.T, runner *fakeRunner) *fixture {
	t.Helper()
	f := &fixture{
		dir:       t.TempDir(),
		runner:    runner,
		renderer:  &fakeRenderer{},
		metrics:   &fakeMetrics{},
		publisher: &fakePublisher{},
		stdout:    &bytes.Buffer{},
	}
	f.store = store.NewManifestFileStore(filepath.Join(f.dir, store.RunsDir))
	f.svc = coverrun.New(coverrun.Deps{
		Runner:    f.runner,
		Renderer:  f.renderer,
		Store:     f.store,
		Metrics:   f.metrics,
		Publisher: f.publisher,
		Stdout:    f.stdout,
		Stderr:    io.Discard,
		NewID:     func() domain.RunID { return "run-1" },
	})
	return f
}

func (f *fixture) run(t *testing.T, opts coverrun.RunOptions) (domain.Manifest, error) {
	t.Helper()
	opts.Dir = f.dir
	return f.svc.Run(context.Background(), opts)
}

func TestRun_PassingTests(t *testing.T) {
	f := newFixture(t, &fakeRunner{writeProfile: true})
	m, err := f.run(t, coverrun.RunOptions{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if m.ExitCode != 0 || m.TestExitCode != 0 {
		t.Fatalf("exit codes = %d/%d, want 0/0", m.ExitCode, m.TestExitCode)
	}
	if _, err := os.Stat(filepath.Join(f.dir, "htmlcov", "index.html")); err != nil {
		t.Fatalf("report missing: %v", err)
	}
	if m.Summary == nil || m.Summary.Percent != 75 {
		t.Fatalf("summary = %+v, want 75%%", m.Summary)
	}
	if !strings.HasPrefix(m.ProfileDigest, "blake2b-256:") {
		t.Errorf("digest = %q", m.ProfileDigest)
	}
}

func TestRun_PrintsStartAndCompletionLines(t *testing.T) {
	f := newFixture(t, &fakeRunner{writeProfile: true})
	if _, err := f.run(t, coverrun.RunOptions{}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(f.stdout.String()), "\n")
	if lines[0] != coverrun.StartLine {
		t.Errorf("first line = %q", lines[0])
	}
	last := lines[len(lines)-1]
	if last != "Tests completed (total coverage 75.0%). Coverage report: htmlcov/index.html" {
		t.Errorf("last line = %q", last)
	}
}

// The report is produced even when the tests fail, and the exit code is
// the test command's.
func TestRun_FailingTestsStillReport(t *testing.T) {
	f := newFixture(t, &fakeRunner{exitCode: 1, writeProfile: true})
	m, err := f.run(t, coverrun.RunOptions{})

	if got := domain.ExitCode(err); got != 1 {
		t.Fatalf("ExitCode(err) = %d, want 1 (err=%v)", got, err)
	}
	var ee *domain.ExitError
	if !errors.As(err, &ee) || ee.Err != nil {
		t.Fatalf("expected bare ExitError, got %#v", err)
	}
	if m.ReportPath != filepath.Join("htmlcov", "index.html") {
		t.Fatalf("ReportPath = %q", m.ReportPath)
	}
	if _, err := os.Stat(filepath.Join(f.dir, "htmlcov", "index.html")); err != nil {
		t.Fatalf("report missing after failing run: %v", err)
	}
}

func TestRun_ExitCodePassthrough(t *testing.T) {
	for _, code := range []int{0, 1, 2, 3} {
		f := newFixture(t, &fakeRunner{exitCode: code, writeProfile: true})
		_, err := f.run(t, coverrun.RunOptions{})
		if got := domain.ExitCode(err); got != code {
			t.Errorf("test exit %d: covrun exit = %d", code, got)
		}
	}
}

func TestRun_RequestUsesProjectDirAndProfile(t *testing.T) {
	f := newFixture(t, &fakeRunner{})
	_, _ = f.run(t, coverrun.RunOptions{
		Profile: "build/c.out",
		Request: domain.TestRequest{Packages: []string{"./tests/..."}, Dir: "/elsewhere"},
	})
	if f.runner.got.Dir != f.dir {
		t.Errorf("Dir = %q, want %q", f.runner.got.Dir, f.dir)
	}
	if f.runner.got.ProfilePath != filepath.Join(f.dir, "build", "c.out") {
		t.Errorf("ProfilePath = %q", f.runner.got.ProfilePath)
	}
	if len(f.runner.got.Packages) != 1 || f.runner.got.Packages[0] != "./tests/..." {
		t.Errorf("Packages = %v", f.runner.got.Packages)
	}
}

func TestRun_StaleProfileRemoved(t *testing.T) {
	f := newFixture(t, &fakeRunner{exitCode: 2, writeProfile: false})
	stale := filepath.Join(f.dir, "coverage.out")
	if err := os.WriteFile(stale, []byte(profileBody), 0o644); err != nil {
		t.Fatal(err)
	}

	m, _ := f.run(t, coverrun.RunOptions{})
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Fatalf("stale profile still present: %v", err)
	}
	if m.ReportPath != "" || m.Summary != nil {
		t.Fatalf("report built from stale profile: %+v", m)
	}
	if !strings.Contains(f.stdout.String(), "No coverage report was generated.") {
		t.Errorf("stdout = %q", f.stdout.String())
	}
}

func TestRun_StartFailure(t *testing.T) {
	f := newFixture(t, &fakeRunner{startErr: &domain.OpError{Op: "runner.lookpath", Kind: domain.KindToolchain, Err: domain.ErrToolchain}})
	_, err := f.run(t, coverrun.RunOptions{})
	if domain.ExitCode(err) != 1 {
		t.Fatalf("ExitCode = %d, want 1", domain.ExitCode(err))
	}
	if !domain.IsKind(err, domain.KindToolchain) {
		t.Fatalf("expected toolchain error, got %v", err)
	}
	if f.renderer.calls != 0 {
		t.Errorf("renderer called %d times after start failure", f.renderer.calls)
	}
	if len(f.metrics.recorded) != 0 || len(f.publisher.published) != 0 {
		t.Error("bookkeeping ran after start failure")
	}
}

func TestRun_Threshold(t *testing.T) {
	f := newFixture(t, &fakeRunner{writeProfile: true})
	m, err := f.run(t, coverrun.RunOptions{FailUnder: 80})
	if domain.ExitCode(err) != coverrun.ThresholdExitCode {
		t.Fatalf("ExitCode = %d, want %d", domain.ExitCode(err), coverrun.ThresholdExitCode)
	}
	if !m.ThresholdFailed || m.TestExitCode != 0 {
		t.Fatalf("manifest = %+v", m)
	}
	if !strings.Contains(err.Error(), "below fail-under 80.0%") {
		t.Errorf("error = %v", err)
	}
}

// A failing test run keeps its own exit code even when coverage is also low.
func TestRun_ThresholdIgnoredWhenTestsFail(t *testing.T) {
	f := newFixture(t, &fakeRunner{exitCode: 1, writeProfile: true})
	m, err := f.run(t, coverrun.RunOptions{FailUnder: 99})
	if domain.ExitCode(err) != 1 || m.ThresholdFailed {
		t.Fatalf("exit=%d thresholdFailed=%v", domain.ExitCode(err), m.ThresholdFailed)
	}
}

func TestRun_RecordsSavesAndPublishes(t *testing.T) {
	f := newFixture(t, &fakeRunner{exitCode: 1, writeProfile: true})
	_, _ = f.run(t, coverrun.RunOptions{KeepRuns: 5})

	if len(f.metrics.recorded) != 1 || f.metrics.recorded[0].TestExitCode != 1 {
		t.Errorf("metrics recorded = %+v", f.metrics.recorded)
	}
	if f.metrics.written != filepath.Join(f.dir, "htmlcov", "metrics.prom") {
		t.Errorf("metrics textfile = %q", f.metrics.written)
	}
	saved, ok, err := f.store.Load("run-1")
	if err != nil || !ok {
		t.Fatalf("manifest not saved: ok=%v err=%v", ok, err)
	}
	if saved.ExitCode != 1 || saved.Summary == nil {
		t.Errorf("saved manifest = %+v", saved)
	}
	if len(f.publisher.published) != 1 || f.publisher.published[0].ID != "run-1" {
		t.Errorf("published = %+v", f.publisher.published)
	}
}

func TestRun_PublishFailureKeepsExitCode(t *testing.T) {
	f := newFixture(t, &fakeRunner{writeProfile: true})
	f.publisher.err = errors.New("connection refused")
	if _, err := f.run(t, coverrun.RunOptions{}); err != nil {
		t.Fatalf("publish failure leaked into result: %v", err)
	}
}

func TestReport_RendersExistingProfile(t *testing.T) {
	f := newFixture(t, &fakeRunner{})
	if err := os.WriteFile(filepath.Join(f.dir, "coverage.out"), []byte(profileBody), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := f.svc.Report(context.Background(), f.dir, "")
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if s.Statements != 4 || s.Covered != 3 {
		t.Fatalf("summary = %+v", s)
	}
	if _, err := os.Stat(filepath.Join(f.dir, "htmlcov", "index.html")); err != nil {
		t.Fatalf("report missing: %v", err)
	}
}

func TestReport_MissingProfile(t *testing.T) {
	f := newFixture(t, &fakeRunner{})
	if _, err := f.svc.Report(context.Background(), f.dir, ""); err == nil {
		t.Fatal("expected error without a profile")
	}
}

func TestProfilePath(t *testing.T) {
	abs := filepath.Join(t.TempDir(), "x.out")
	cases := []struct{ dir, profile, want string }{
		{"/p", "", filepath.Join("/p", "coverage.out")},
		{"/p", "out/c.out", filepath.Join("/p", "out", "c.out")},
		{"/p", abs, abs},
	}
	for _, c := range cases {
		if got := coverrun.ProfilePath(c.dir, c.profile); got != c.want {
			t.Errorf("ProfilePath(%q, %q) = %q, want %q", c.dir, c.profile, got, c.want)
		}
	}
}
