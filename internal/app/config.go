package app

import (
	"io"
	"net/http"

	"go.uber.org/zap"

	"covrun/internal/config"
)

// Config holds runtime wiring options for building the app.
type Config struct {
	Dir      string         // resolved project directory
	Settings *config.Config // loaded .covrun.yaml plus env
	Logger   *zap.Logger
	Stdout   io.Writer
	Stderr   io.Writer
	HTTP     *http.Client // optional; publish client default when nil
	NoSave   bool         // skip the manifest store
}
