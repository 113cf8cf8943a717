package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"covrun/internal/domain"
)

// FileName is the per-project config file looked up in the project directory.
const FileName = ".covrun.yaml"

// Config holds covrun settings loaded from YAML and env.
type Config struct {
	GoBin string

	Packages      []string
	CoverPackages []string
	CoverMode     domain.CoverMode
	Race          bool
	TestTimeout   time.Duration
	Verbose       bool

	Profile   string // relative to the project directory
	FailUnder float64

	KeepRuns   int
	PublishURL string

	LogLevel string

	ServeAddr       string
	ShutdownTimeout time.Duration
}

type fileConfig struct {
	GoBin string `yaml:"go_bin"`

	Test struct {
		Packages      []string `yaml:"packages"`
		CoverPackages []string `yaml:"cover_packages"`
		CoverMode     string   `yaml:"covermode"`
		Race          bool     `yaml:"race"`
		Timeout       string   `yaml:"timeout"`
		Verbose       bool     `yaml:"verbose"`
	} `yaml:"test"`

	Coverage struct {
		Profile   string   `yaml:"profile"`
		FailUnder *float64 `yaml:"fail_under"`
	} `yaml:"coverage"`

	History struct {
		Keep       *int   `yaml:"keep"`
		PublishURL string `yaml:"publish_url"`
	} `yaml:"history"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`

	Serve struct {
		Addr            string `yaml:"addr"`
		ShutdownTimeout string `yaml:"shutdown_timeout"`
	} `yaml:"serve"`
}

// Default returns the settings used when no config file exists.
func Default() *Config {
	return &Config{
		GoBin:           "go",
		Packages:        []string{"./..."},
		CoverMode:       domain.CoverSet,
		Profile:         "coverage.out",
		KeepRuns:        20,
		LogLevel:        "warn",
		ServeAddr:       ":8080",
		ShutdownTimeout: 10 * time.Second,
	}
}

// Load reads <dir>/.covrun.yaml, or path when non-empty. A missing default
// file yields Default(); a missing explicit path is an error. Env overrides
// (COVRUN_GO_BIN, COVRUN_COVERMODE, LOG_LEVEL) apply last.
func Load(dir, path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = filepath.Join(dir, FileName)
	}

	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		var fc fileConfig
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return nil, &domain.OpError{Op: "config.load", Kind: domain.KindInvalidConfig, Path: path, Err: fmt.Errorf("parse config file: %w", err)}
		}
		apply(cfg, &fc)
	case os.IsNotExist(err) && !explicit:
		// defaults only
	case os.IsNotExist(err):
		return nil, &domain.OpError{Op: "config.load", Kind: domain.KindNotFound, Path: path, Err: fmt.Errorf("config file not found")}
	default:
		return nil, &domain.OpError{Op: "config.load", Kind: domain.KindExecution, Path: path, Err: fmt.Errorf("read config file: %w", err)}
	}

	if v := strings.TrimSpace(os.Getenv("COVRUN_GO_BIN")); v != "" {
		cfg.GoBin = v
	}
	if v := strings.TrimSpace(strings.ToLower(os.Getenv("COVRUN_COVERMODE"))); v != "" {
		cfg.CoverMode = domain.CoverMode(v)
	}
	if v := strings.TrimSpace(os.Getenv("LOG_LEVEL")); v != "" {
		cfg.LogLevel = v
	}

	if err := Validate(cfg); err != nil {
		return nil, &domain.OpError{Op: "config.load", Kind: domain.KindInvalidConfig, Path: path, Err: err}
	}
	return cfg, nil
}

func apply(cfg *Config, fc *fileConfig) {
	if v := strings.TrimSpace(fc.GoBin); v != "" {
		cfg.GoBin = v
	}
	if pkgs := nonEmpty(fc.Test.Packages); len(pkgs) > 0 {
		cfg.Packages = pkgs
	}
	cfg.CoverPackages = nonEmpty(fc.Test.CoverPackages)
	if v := strings.TrimSpace(strings.ToLower(fc.Test.CoverMode)); v != "" {
		cfg.CoverMode = domain.CoverMode(v)
	}
	cfg.Race = fc.Test.Race
	cfg.Verbose = fc.Test.Verbose
	cfg.TestTimeout = parseDurationOrZero(fc.Test.Timeout, 0)

	if v := strings.TrimSpace(fc.Coverage.Profile); v != "" {
		cfg.Profile = v
	}
	if fc.Coverage.FailUnder != nil {
		cfg.FailUnder = *fc.Coverage.FailUnder
	}

	if fc.History.Keep != nil {
		cfg.KeepRuns = *fc.History.Keep
	}
	cfg.PublishURL = strings.TrimSpace(fc.History.PublishURL)

	if v := strings.TrimSpace(fc.Log.Level); v != "" {
		cfg.LogLevel = v
	}

	if v := strings.TrimSpace(fc.Serve.Addr); v != "" {
		cfg.ServeAddr = v
	}
	cfg.ShutdownTimeout = parseDuration(fc.Serve.ShutdownTimeout, cfg.ShutdownTimeout)
}

// parseDuration parses a duration string and returns defaultVal if parsing fails or result is <= 0.
func parseDuration(s string, defaultVal time.Duration) time.Duration {
	d := parseDurationOrZero(s, defaultVal)
	if d <= 0 {
		return defaultVal
	}
	return d
}

// parseDurationOrZero parses a duration string, returning defaultVal on empty string or parse error.
func parseDurationOrZero(s string, defaultVal time.Duration) time.Duration {
	s = strings.TrimSpace(s)
	if s == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return defaultVal
	}
	return d
}

func nonEmpty(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Validate checks values that go test or the store would reject later.
func Validate(cfg *Config) error {
	if !cfg.CoverMode.Valid() {
		return fmt.Errorf("covermode must be set, count or atomic, got %q", cfg.CoverMode)
	}
	if cfg.Race && cfg.CoverMode != domain.CoverAtomic {
		// go test requires atomic counters under -race
		cfg.CoverMode = domain.CoverAtomic
	}
	if cfg.FailUnder < 0 || cfg.FailUnder > 100 {
		return fmt.Errorf("coverage.fail_under must be within 0..100, got %v", cfg.FailUnder)
	}
	if cfg.KeepRuns < 0 {
		return fmt.Errorf("history.keep must not be negative, got %d", cfg.KeepRuns)
	}
	if strings.TrimSpace(cfg.Profile) == "" {
		return fmt.Errorf("coverage.profile must not be empty")
	}
	if cfg.TestTimeout < 0 {
		cfg.TestTimeout = 0
	}
	return nil
}
