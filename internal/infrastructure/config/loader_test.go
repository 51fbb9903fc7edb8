package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/doeshing/cmdgate/internal/domain"
)

func TestLoadWritesDefaultOnFirstRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	loader := NewFileLoader(path)

	cfg, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Execution.Shell != "/bin/sh" {
		t.Errorf("shell = %q, want /bin/sh", cfg.Execution.Shell)
	}
	if cfg.Execution.TimeoutSeconds != 30 {
		t.Errorf("timeout = %d, want 30", cfg.Execution.TimeoutSeconds)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("default config file not written: %v", err)
	}
}

func TestLoadHydratesPartialConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	partial := `config_format_version: "1"
execution:
  timeout: 5
`
	if err := os.WriteFile(path, []byte(partial), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := NewFileLoader(path).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Execution.TimeoutSeconds != 5 {
		t.Errorf("timeout = %d, want 5", cfg.Execution.TimeoutSeconds)
	}
	if cfg.Execution.Shell != "/bin/sh" {
		t.Errorf("shell default not applied, got %q", cfg.Execution.Shell)
	}
	if cfg.Execution.MaxOutputBytes != 1<<20 {
		t.Errorf("max output default not applied, got %d", cfg.Execution.MaxOutputBytes)
	}
	if cfg.Security.TargetPlatform == "" {
		t.Error("target platform should default to the detected platform")
	}
}

func TestLoadRejectsBrokenYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("models: [unclosed"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFileLoader(path).Load(context.Background()); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*domain.Config)
		wantErr bool
	}{
		{name: "default is valid", mutate: func(*domain.Config) {}},
		{
			name:    "negative timeout",
			mutate:  func(c *domain.Config) { c.Execution.TimeoutSeconds = -1 },
			wantErr: true,
		},
		{
			name:    "negative revisions",
			mutate:  func(c *domain.Config) { c.Preferences.MaxRevisions = -2 },
			wantErr: true,
		},
		{
			name:    "unknown default model",
			mutate:  func(c *domain.Config) { c.Preferences.DefaultModel = "ghost" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := Validate(cfg)
			if tt.wantErr && err == nil {
				t.Error("expected validation error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestFindModel(t *testing.T) {
	cfg := DefaultConfig()

	if m := FindModel(cfg, "claude-sonnet-4"); m == nil || m.Name != "claude-sonnet-4" {
		t.Errorf("FindModel by name = %+v", m)
	}
	if m := FindModel(cfg, ""); m == nil || m.Name != cfg.Preferences.DefaultModel {
		t.Errorf("FindModel default = %+v", m)
	}
	if m := FindModel(cfg, "ghost"); m != nil {
		t.Errorf("FindModel ghost = %+v, want nil", m)
	}
}
