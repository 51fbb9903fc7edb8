// Package app wires application services to infrastructure adapters.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/doeshing/cmdgate/internal/domain"
	"github.com/doeshing/cmdgate/internal/infrastructure/ai"
	"github.com/doeshing/cmdgate/internal/infrastructure/config"
	"github.com/doeshing/cmdgate/internal/infrastructure/executor"
	"github.com/doeshing/cmdgate/internal/infrastructure/harness"
	"github.com/doeshing/cmdgate/internal/infrastructure/history"
	"github.com/doeshing/cmdgate/internal/infrastructure/security"
	"github.com/doeshing/cmdgate/internal/infrastructure/verify"
	"github.com/doeshing/cmdgate/internal/pkg/logger"
	"github.com/doeshing/cmdgate/internal/ports"
	"github.com/doeshing/cmdgate/internal/services"
)

// Container holds the wired dependency graph.
type Container struct {
	Config   domain.Config
	Platform domain.Platform
	Policy   ports.PolicyService
	Factory  *ai.Factory
	Ledger   ports.RunLedger
	Logger   ports.Logger
}

// BuildContainer constructs the dependency graph from configuration.
func BuildContainer(ctx context.Context, verbose bool) (*Container, error) {
	log := logger.NewStd(verbose)

	cfg, err := config.NewFileLoader("").Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	platform := domain.ParsePlatform(cfg.Security.TargetPlatform)

	engine, err := security.NewEngine(platform, cfg.Security.RulesFile)
	if err != nil {
		log.Warn("rules file unusable, falling back to built-in patterns", map[string]interface{}{
			"rules_file": cfg.Security.RulesFile,
			"error":      err.Error(),
		})
		engine, err = security.NewEngine(platform, "")
		if err != nil {
			return nil, err
		}
	}

	var ledger ports.RunLedger
	ledger, err = history.NewSQLiteStore(ledgerPath())
	if err != nil {
		log.Warn("ledger unavailable, runs will not be recorded", map[string]interface{}{
			"error": err.Error(),
		})
		ledger = history.NopLedger{}
	}

	return &Container{
		Config:   cfg,
		Platform: platform,
		Policy:   engine,
		Factory:  ai.NewFactory(),
		Ledger:   ledger,
		Logger:   log,
	}, nil
}

// ProposerFor resolves a model name (empty means the configured default)
// to a proposer backed by that model's provider.
func (c *Container) ProposerFor(modelName string) (ports.Proposer, error) {
	model := config.FindModel(c.Config, modelName)
	if model == nil {
		if modelName != "" {
			return nil, fmt.Errorf("model %q is not defined", modelName)
		}
		return ai.OfflineProposer(c.Platform), nil
	}
	return c.Factory.ProposerFor(*model, c.Platform)
}

// ReviewerFor resolves a model name to a generative reviewer.
func (c *Container) ReviewerFor(modelName string) (ports.Reviewer, error) {
	model := config.FindModel(c.Config, modelName)
	if model == nil {
		return nil, fmt.Errorf("model %q is not defined", modelName)
	}
	return c.Factory.ReviewerFor(*model, c.Platform)
}

// NewPipeline binds a pipeline to one session's sandbox.
func (c *Container) NewPipeline(session *services.Session, proposer ports.Proposer, reviewer ports.Reviewer) *services.Pipeline {
	return &services.Pipeline{
		SessionID:   session.ID,
		Proposer:    proposer,
		Reviewer:    reviewer,
		Policy:      c.Policy,
		Executor:    executor.NewSandboxed(c.Config.Execution.Shell, session.Box, c.Config.Execution.MaxOutputBytes),
		Verifier:    verify.NewChecker(session.Box.Root()),
		Ledger:      c.Ledger,
		Logger:      c.Logger,
		SandboxRoot: session.Box.Root(),
	}
}

// HarnessRunner builds a battery runner over the configured stack. A nil
// proposer means the deterministic offline one, keeping the battery
// reproducible by default.
func (c *Container) HarnessRunner(parallel int, proposer ports.Proposer) *harness.Runner {
	if parallel <= 0 {
		parallel = c.Config.Harness.Parallel
	}
	if proposer == nil {
		proposer = ai.OfflineProposer(c.Platform)
	}
	return &harness.Runner{
		Proposer:      proposer,
		Policy:        c.Policy,
		Logger:        c.Logger,
		Shell:         c.Config.Execution.Shell,
		Timeout:       c.Timeout(),
		MaxOutput:     c.Config.Execution.MaxOutputBytes,
		SandboxParent: c.Config.Execution.SandboxParent,
		Parallel:      parallel,
	}
}

// Timeout is the configured per-command execution timeout.
func (c *Container) Timeout() time.Duration {
	return time.Duration(c.Config.Execution.TimeoutSeconds) * time.Second
}

// Close releases long-lived resources.
func (c *Container) Close() error {
	return c.Ledger.Close()
}

func ledgerPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".cmdgate", "history", "ledger.db")
}
