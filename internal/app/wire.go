package app

import (
	"path/filepath"

	"go.uber.org/zap"

	"covrun/internal/coverage"
	"covrun/internal/observability"
	"covrun/internal/publish"
	"covrun/internal/runner"
	"covrun/internal/services/coverrun"
	"covrun/internal/store"
)

// Wire bundles the runner, renderer, stores, metrics and services for the CLI.
type Wire struct {
	Runner    *runner.GoTest
	Renderer  *coverage.HTMLRenderer
	Store     *store.ManifestFileStore
	Metrics   *observability.Metrics
	Publisher *publish.HTTPClient // nil without a publish URL
	Runs      *coverrun.Service
	Logger    *zap.Logger
}

// NewWire constructs the dependency graph from cfg.
func NewWire(cfg Config) (*Wire, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	s := cfg.Settings

	goTest := runner.New(s.GoBin)
	renderer := coverage.NewHTMLRenderer(s.GoBin)
	renderer.Stderr = cfg.Stderr
	manifests := store.NewManifestFileStore(filepath.Join(cfg.Dir, filepath.FromSlash(store.RunsDir)))
	metrics := observability.NewMetrics()

	deps := coverrun.Deps{
		Runner:   goTest,
		Renderer: renderer,
		Metrics:  metrics,
		Logger:   logger,
		Stdout:   cfg.Stdout,
		Stderr:   cfg.Stderr,
	}
	// Disabled collaborators must stay nil interfaces, not typed nils.
	if !cfg.NoSave {
		deps.Store = manifests
	}
	var pub *publish.HTTPClient
	if s.PublishURL != "" {
		pub = publish.NewHTTP(s.PublishURL, cfg.HTTP)
		deps.Publisher = pub
	}

	return &Wire{
		Runner:    goTest,
		Renderer:  renderer,
		Store:     manifests,
		Metrics:   metrics,
		Publisher: pub,
		Runs:      coverrun.New(deps),
		Logger:    logger,
	}, nil
}
