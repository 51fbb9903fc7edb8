// Package ports defines the interfaces (ports) for the hexagonal architecture.
//
// The application core depends only on these abstractions; concrete
// adapters live in the infrastructure layer. The proposer and reviewer are
// external collaborators (any backend able to map a task plus context to
// structured output), while the policy engine, executor and verifier are
// local adapters.
package ports

import (
	"context"
	"time"

	"github.com/doeshing/cmdgate/internal/domain"
)

// ConfigProvider loads the latest configuration from persistent storage.
// Implementations typically read from ~/.cmdgate/config.yaml.
type ConfigProvider interface {
	Load(context.Context) (domain.Config, error)
}

// Proposer maps a natural-language task plus context onto a candidate
// shell command. Empty or malformed output must surface as a proposal
// failure, never as a reviewable command.
type Proposer interface {
	Propose(ctx context.Context, task string, taskContext string) (domain.CommandProposal, error)
}

// Reviewer is an optional generative reviewer supplementing the rule-based
// policy engine. Its output is validated against the fixed
// {approved, reasoning} shape and rejected outright if it fails to parse.
type Reviewer interface {
	Assess(ctx context.Context, proposal domain.CommandProposal, taskContext string) (domain.ReviewVerdict, error)
}

// PolicyService evaluates a proposed command against the ordered hazard
// classifiers. Purely evaluative: deterministic, no side effects, and
// idempotent for a given proposal and sandbox root.
type PolicyService interface {
	Review(proposal domain.CommandProposal, sandboxRoot string) domain.ReviewVerdict
}

// CommandExecutor runs one approved command with the working directory
// fixed inside a sandbox root, captured output and a wall-clock timeout.
// Implementations re-validate path containment as defense in depth and
// fail closed with a sandbox violation if it does not hold.
type CommandExecutor interface {
	Run(ctx context.Context, command string, timeout time.Duration) (domain.ExecutionResult, error)
}

// StateVerifier checks the sandbox filesystem and the captured execution
// result against one expected post-condition. Never mutates state.
type StateVerifier interface {
	Check(result domain.ExecutionResult, expect domain.Expectation) domain.VerificationOutcome
}

// RunLedger persists pipeline runs for auditing.
type RunLedger interface {
	Save(record domain.RunRecord) error
	Records(limit int, search string) ([]domain.RunRecord, error)
	Close() error
}

// Logger provides structured logging abstraction for the application layer.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error, fields map[string]interface{})
}
