// Package config loads YAML configuration from disk, writing a commented
// default file on first run.
package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/doeshing/cmdgate/internal/domain"
	"github.com/doeshing/cmdgate/internal/ports"
)

// FileLoader loads configuration from ~/.cmdgate/config.yaml, overridable
// via CMDGATE_CONFIG or an explicit path.
type FileLoader struct {
	overridePath string
}

// NewFileLoader builds a loader. An empty path means resolve the default
// location at load time.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{overridePath: path}
}

// Load implements ports.ConfigProvider.
func (l *FileLoader) Load(context.Context) (domain.Config, error) {
	path := l.resolvePath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return domain.Config{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := writeDefault(path, cfg); err != nil {
				return domain.Config{}, err
			}
			return cfg, nil
		}
		return domain.Config{}, err
	}

	var cfg domain.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return domain.Config{}, fmt.Errorf("parse %s: %w", path, err)
	}

	cfg = hydrateDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return domain.Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func (l *FileLoader) resolvePath() string {
	if l.overridePath != "" {
		return expandPath(l.overridePath)
	}
	if custom := os.Getenv("CMDGATE_CONFIG"); custom != "" {
		return expandPath(custom)
	}
	return filepath.Join(userHomeDir(), ".cmdgate", "config.yaml")
}

func writeDefault(path string, cfg domain.Config) error {
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o600)
}

// DefaultConfig is the configuration written on first run. The offline
// model keeps the pipeline usable without any credentials.
func DefaultConfig() domain.Config {
	return domain.Config{
		ConfigFormatVersion: "1",
		Preferences: domain.Preferences{
			DefaultModel: "offline",
			MaxRevisions: 0,
		},
		Security: domain.SecuritySettings{
			RulesFile:      filepath.Join(userHomeDir(), ".cmdgate", "rules.yaml"),
			TargetPlatform: string(domain.DetectPlatform()),
		},
		Execution: domain.ExecutionSettings{
			Shell:          "/bin/sh",
			TimeoutSeconds: 30,
			MaxOutputBytes: 1 << 20,
		},
		Harness: domain.HarnessSettings{
			Parallel: 1,
		},
		Models: []domain.ModelDefinition{
			{
				Name: "offline",
			},
			{
				Name:       "claude-sonnet-4",
				Endpoint:   "https://api.anthropic.com/v1/messages",
				AuthEnvVar: "ANTHROPIC_API_KEY",
				ModelID:    "claude-3-5-sonnet-20240620",
				MaxTokens:  1024,
			},
		},
	}
}

func hydrateDefaults(cfg domain.Config) domain.Config {
	if cfg.Preferences.DefaultModel == "" && len(cfg.Models) > 0 {
		cfg.Preferences.DefaultModel = cfg.Models[0].Name
	}
	if cfg.Execution.Shell == "" {
		cfg.Execution.Shell = "/bin/sh"
	}
	if cfg.Execution.TimeoutSeconds == 0 {
		cfg.Execution.TimeoutSeconds = 30
	}
	if cfg.Execution.MaxOutputBytes == 0 {
		cfg.Execution.MaxOutputBytes = 1 << 20
	}
	if cfg.Security.TargetPlatform == "" {
		cfg.Security.TargetPlatform = string(domain.DetectPlatform())
	}
	if cfg.Harness.Parallel == 0 {
		cfg.Harness.Parallel = 1
	}
	return cfg
}

// Validate rejects configurations the pipeline cannot act on.
func Validate(cfg domain.Config) error {
	if cfg.Execution.TimeoutSeconds < 0 {
		return fmt.Errorf("execution timeout must not be negative, got %d", cfg.Execution.TimeoutSeconds)
	}
	if cfg.Execution.MaxOutputBytes < 0 {
		return fmt.Errorf("max output bytes must not be negative, got %d", cfg.Execution.MaxOutputBytes)
	}
	if cfg.Preferences.MaxRevisions < 0 {
		return fmt.Errorf("max revisions must not be negative, got %d", cfg.Preferences.MaxRevisions)
	}
	if cfg.Preferences.DefaultModel != "" && len(cfg.Models) > 0 {
		if findModel(cfg.Models, cfg.Preferences.DefaultModel) == nil {
			return fmt.Errorf("default model %q is not defined", cfg.Preferences.DefaultModel)
		}
	}
	return nil
}

// FindModel returns the named model definition, or the first one when the
// name is empty, or nil when nothing matches.
func FindModel(cfg domain.Config, name string) *domain.ModelDefinition {
	if name == "" {
		name = cfg.Preferences.DefaultModel
	}
	if name == "" && len(cfg.Models) > 0 {
		return &cfg.Models[0]
	}
	return findModel(cfg.Models, name)
}

func findModel(models []domain.ModelDefinition, name string) *domain.ModelDefinition {
	for i := range models {
		if models[i].Name == name {
			return &models[i]
		}
	}
	return nil
}

func expandPath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if len(path) > 1 && path[:2] == "~/" {
		return filepath.Join(userHomeDir(), path[2:])
	}
	return filepath.Clean(path)
}

func userHomeDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return "."
}

var _ ports.ConfigProvider = (*FileLoader)(nil)
