package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"covrun/internal/domain"
)

func writeConfigFile(t *testing.T, dir, content string) string {
	t.Helper()
	p := filepath.Join(dir, FileName)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return p
}

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv("COVRUN_GO_BIN", "")
	t.Setenv("COVRUN_COVERMODE", "")
	t.Setenv("LOG_LEVEL", "")
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(t.TempDir(), "")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Errorf("Load() = %+v, want defaults %+v", cfg, Default())
	}
}

func TestLoad_ExplicitPathMissing(t *testing.T) {
	clearEnv(t)
	_, err := Load(t.TempDir(), filepath.Join(t.TempDir(), "missing.yaml"))
	if !domain.IsKind(err, domain.KindNotFound) {
		t.Fatalf("Load() error = %v, want KindNotFound", err)
	}
}

func TestLoad_FileValues(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeConfigFile(t, dir, `
go_bin: /opt/go/bin/go
test:
  packages: ["./tests/...", " "]
  cover_packages: ["./src/..."]
  covermode: COUNT
  timeout: 2m
  verbose: true
coverage:
  profile: build/cover.out
  fail_under: 75.5
history:
  keep: 5
  publish_url: http://ci.local:8080
log:
  level: debug
serve:
  addr: 127.0.0.1:9000
  shutdown_timeout: 3s
`)
	cfg, err := Load(dir, "")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.GoBin != "/opt/go/bin/go" {
		t.Errorf("GoBin = %q", cfg.GoBin)
	}
	if !reflect.DeepEqual(cfg.Packages, []string{"./tests/..."}) {
		t.Errorf("Packages = %v", cfg.Packages)
	}
	if !reflect.DeepEqual(cfg.CoverPackages, []string{"./src/..."}) {
		t.Errorf("CoverPackages = %v", cfg.CoverPackages)
	}
	if cfg.CoverMode != domain.CoverCount {
		t.Errorf("CoverMode = %q, want count", cfg.CoverMode)
	}
	if cfg.TestTimeout != 2*time.Minute || !cfg.Verbose {
		t.Errorf("TestTimeout=%v Verbose=%v", cfg.TestTimeout, cfg.Verbose)
	}
	if cfg.Profile != "build/cover.out" || cfg.FailUnder != 75.5 {
		t.Errorf("Profile=%q FailUnder=%v", cfg.Profile, cfg.FailUnder)
	}
	if cfg.KeepRuns != 5 || cfg.PublishURL != "http://ci.local:8080" {
		t.Errorf("KeepRuns=%d PublishURL=%q", cfg.KeepRuns, cfg.PublishURL)
	}
	if cfg.LogLevel != "debug" || cfg.ServeAddr != "127.0.0.1:9000" || cfg.ShutdownTimeout != 3*time.Second {
		t.Errorf("LogLevel=%q ServeAddr=%q ShutdownTimeout=%v", cfg.LogLevel, cfg.ServeAddr, cfg.ShutdownTimeout)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "go_bin: go1.22\ntest:\n  covermode: count\nlog:\n  level: info\n")
	t.Setenv("COVRUN_GO_BIN", "/usr/local/go/bin/go")
	t.Setenv("COVRUN_COVERMODE", "atomic")
	t.Setenv("LOG_LEVEL", "error")

	cfg, err := Load(dir, "")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.GoBin != "/usr/local/go/bin/go" || cfg.CoverMode != domain.CoverAtomic || cfg.LogLevel != "error" {
		t.Errorf("env overrides not applied: %+v", cfg)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeConfigFile(t, dir, "test: [unclosed\n")
	_, err := Load(dir, "")
	if !domain.IsKind(err, domain.KindInvalidConfig) {
		t.Fatalf("Load() error = %v, want KindInvalidConfig", err)
	}
}

func TestLoad_InvalidDurationFallsBack(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeConfigFile(t, dir, "serve:\n  shutdown_timeout: soon\n")
	cfg, err := Load(dir, "")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Errorf("ShutdownTimeout = %v, want default 10s", cfg.ShutdownTimeout)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"bad covermode", func(c *Config) { c.CoverMode = "lines" }, "covermode"},
		{"fail_under high", func(c *Config) { c.FailUnder = 101 }, "fail_under"},
		{"fail_under negative", func(c *Config) { c.FailUnder = -1 }, "fail_under"},
		{"keep negative", func(c *Config) { c.KeepRuns = -1 }, "history.keep"},
		{"empty profile", func(c *Config) { c.Profile = " " }, "profile"},
		{"ok", func(c *Config) {}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := Validate(cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_RaceForcesAtomic(t *testing.T) {
	cfg := Default()
	cfg.Race = true
	if err := Validate(cfg); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
	if cfg.CoverMode != domain.CoverAtomic {
		t.Errorf("CoverMode = %q, want atomic under -race", cfg.CoverMode)
	}
}
