package app

import (
	"path/filepath"

	"covrun/internal/config"
	"covrun/internal/domain"
	"covrun/internal/httpserver"
	"covrun/internal/services/coverrun"
)

// App is the wired application for one project directory.
type App struct {
	Dir      string
	Settings *config.Config
	*Wire
}

// New wires an App from cfg.
func New(cfg Config) (*App, error) {
	w, err := NewWire(cfg)
	if err != nil {
		return nil, err
	}
	return &App{Dir: cfg.Dir, Settings: cfg.Settings, Wire: w}, nil
}

// RunOptions maps the settings onto a coverrun request.
func (a *App) RunOptions() coverrun.RunOptions {
	s := a.Settings
	return coverrun.RunOptions{
		Dir:     a.Dir,
		Profile: s.Profile,
		Request: domain.TestRequest{
			Packages:      s.Packages,
			CoverPackages: s.CoverPackages,
			CoverMode:     s.CoverMode,
			Race:          s.Race,
			Timeout:       s.TestTimeout,
			Verbose:       s.Verbose,
		},
		FailUnder: s.FailUnder,
		KeepRuns:  s.KeepRuns,
	}
}

// ServerDeps describes the report viewer over this project's report
// directory and manifest store.
func (a *App) ServerDeps() httpserver.Deps {
	return httpserver.Deps{
		Store:     a.Store,
		ReportDir: filepath.Join(a.Dir, domain.ReportDir),
		Metrics:   a.Metrics.Handler(),
		OnPublish: func(m domain.Manifest) {
			a.Metrics.PublishedTotal.Inc()
			a.Metrics.Record(m, m.EndedAt.Sub(m.StartedAt))
		},
		Logger: a.Logger,
	}
}
