package coverrun

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"covrun/internal/coverage"
	"covrun/internal/domain"
	"covrun/internal/store"
)

// ThresholdExitCode is returned when tests pass but coverage misses fail-under.
const ThresholdExitCode = 2

// StartLine is printed before the tests run.
const StartLine = "Running tests with coverage..."

// Deps are the collaborators of a Service. Store, Metrics and Publisher are
// optional.
type Deps struct {
	Runner    domain.TestRunner
	Renderer  domain.ReportRenderer
	Store     domain.ManifestStore
	Metrics   domain.MetricsRecorder
	Publisher domain.Publisher
	Logger    *zap.Logger
	Stdout    io.Writer
	Stderr    io.Writer
	NewID     func() domain.RunID
}

// Service runs the tests and everything that follows them.
type Service struct {
	deps Deps
}

// New returns a Service, filling unset writers, logger and id source.
func New(deps Deps) *Service {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.NewID == nil {
		deps.NewID = func() domain.RunID { return domain.RunID(uuid.NewString()) }
	}
	return &Service{deps: deps}
}

// RunOptions select what to test and what to do with the result.
type RunOptions struct {
	Dir       string // resolved project directory
	Profile   string // relative to Dir unless absolute
	Request   domain.TestRequest
	FailUnder float64
	KeepRuns  int // 0 keeps every manifest
}

// Run executes the tests and returns the run manifest. The error is a
// *domain.ExitError whenever the exit code is non-zero.
func (s *Service) Run(ctx context.Context, opts RunOptions) (domain.Manifest, error) {
	log := s.deps.Logger
	profile := ProfilePath(opts.Dir, opts.Profile)
	reportPath := filepath.Join(opts.Dir, domain.ReportDir, domain.ReportIndex)

	req := opts.Request
	req.Dir = opts.Dir
	req.ProfilePath = profile

	// A stale profile would be rendered as if this run had produced it.
	if err := os.Remove(profile); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn("remove stale profile", zap.String("profile", profile), zap.Error(err))
	}

	fmt.Fprintln(s.deps.Stdout, StartLine)

	outcome, err := s.deps.Runner.Run(ctx, req, s.deps.Stdout, s.deps.Stderr)
	if err != nil {
		log.Error("test command did not start", zap.Error(err))
		return domain.Manifest{Dir: opts.Dir, ExitCode: 1, TestExitCode: outcome.ExitCode}, &domain.ExitError{Code: 1, Err: err}
	}
	log.Info("test command finished",
		zap.Int("exit_code", outcome.ExitCode),
		zap.Duration("duration", outcome.Duration()),
	)

	m := domain.Manifest{
		ID:           s.deps.NewID(),
		Dir:          opts.Dir,
		Args:         outcome.Args,
		StartedAt:    outcome.StartedAt,
		EndedAt:      outcome.EndedAt,
		TestExitCode: outcome.ExitCode,
		ExitCode:     outcome.ExitCode,
		FailUnder:    opts.FailUnder,
	}

	if err := s.deps.Renderer.Render(ctx, opts.Dir, profile, reportPath); err != nil {
		log.Warn("coverage report not generated", zap.String("report", reportPath), zap.Error(err))
	} else {
		m.ReportPath = filepath.Join(domain.ReportDir, domain.ReportIndex)
	}

	if summary, err := summarize(profile); err != nil {
		log.Warn("coverage summary unavailable", zap.Error(err))
	} else {
		m.Summary = &summary
		if digest, err := store.ProfileDigest(profile); err == nil {
			m.ProfileDigest = digest
		}
	}

	var thresholdErr error
	if m.TestExitCode == 0 && m.Summary != nil && coverage.BelowThreshold(*m.Summary, opts.FailUnder) {
		m.ThresholdFailed = true
		m.ExitCode = ThresholdExitCode
		thresholdErr = fmt.Errorf("coverage %.1f%% is below fail-under %.1f%%", m.Summary.Percent, opts.FailUnder)
	}

	s.record(ctx, m, outcome.Duration(), opts)

	fmt.Fprintln(s.deps.Stdout, CompletionLine(m))

	if m.ExitCode != 0 {
		return m, &domain.ExitError{Code: m.ExitCode, Err: thresholdErr}
	}
	return m, nil
}

// Report re-renders the HTML report from an existing profile and returns
// its summary.
func (s *Service) Report(ctx context.Context, dir, profile string) (domain.Summary, error) {
	profile = ProfilePath(dir, profile)
	if err := s.deps.Renderer.Render(ctx, dir, profile, filepath.Join(dir, domain.ReportDir, domain.ReportIndex)); err != nil {
		return domain.Summary{}, err
	}
	return summarize(profile)
}

// record runs the best-effort bookkeeping after a run.
func (s *Service) record(ctx context.Context, m domain.Manifest, d time.Duration, opts RunOptions) {
	log := s.deps.Logger.With(zap.String("run_id", string(m.ID)))

	if s.deps.Metrics != nil {
		s.deps.Metrics.Record(m, d)
		path := filepath.Join(opts.Dir, domain.ReportDir, domain.ReportMetrics)
		if err := s.deps.Metrics.WriteTextfile(path); err != nil {
			log.Warn("metrics textfile not written", zap.String("path", path), zap.Error(err))
		}
	}

	if s.deps.Store != nil {
		if err := s.deps.Store.Save(m); err != nil {
			log.Warn("run manifest not saved", zap.Error(err))
		} else if opts.KeepRuns > 0 {
			if n, err := s.deps.Store.Prune(opts.KeepRuns); err != nil {
				log.Warn("prune run history", zap.Error(err))
			} else if n > 0 {
				log.Debug("pruned run history", zap.Int("removed", n))
			}
		}
	}

	if s.deps.Publisher != nil {
		if err := s.deps.Publisher.Publish(ctx, m); err != nil {
			log.Warn("publish run", zap.Error(err))
		} else {
			log.Info("run published")
		}
	}
}

// CompletionLine is printed after the tests and the report.
func CompletionLine(m domain.Manifest) string {
	if m.ReportPath == "" {
		return "Tests completed. No coverage report was generated."
	}
	if m.Summary != nil {
		return fmt.Sprintf("Tests completed (total coverage %.1f%%). Coverage report: %s", m.Summary.Percent, filepath.ToSlash(m.ReportPath))
	}
	return "Tests completed. Coverage report: " + filepath.ToSlash(m.ReportPath)
}

// ProfilePath resolves profile against dir.
func ProfilePath(dir, profile string) string {
	if profile == "" {
		profile = "coverage.out"
	}
	if filepath.IsAbs(profile) {
		return profile
	}
	return filepath.Join(dir, profile)
}

func summarize(profile string) (domain.Summary, error) {
	profiles, err := coverage.ParseProfile(profile)
	if err != nil {
		return domain.Summary{}, err
	}
	return coverage.Summarize(profiles), nil
}
