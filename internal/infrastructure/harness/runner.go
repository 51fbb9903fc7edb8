// Package harness runs the regression battery: a fixed set of scenario
// cases that pin down what the policy engine must approve and what it
// must reject. Each case gets its own sandbox so cases cannot interfere
// with each other, and cases may run in parallel.
package harness

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/doeshing/cmdgate/internal/domain"
	"github.com/doeshing/cmdgate/internal/infrastructure/executor"
	"github.com/doeshing/cmdgate/internal/infrastructure/history"
	"github.com/doeshing/cmdgate/internal/infrastructure/verify"
	"github.com/doeshing/cmdgate/internal/ports"
	"github.com/doeshing/cmdgate/internal/services"
)

// Runner executes scenario cases against the full pipeline.
type Runner struct {
	// Proposer handles positive cases whose command is not pinned.
	Proposer ports.Proposer
	Reviewer ports.Reviewer
	Policy   ports.PolicyService
	Logger   ports.Logger

	Shell         string
	Timeout       time.Duration
	MaxOutput     int
	SandboxParent string
	// Parallel caps concurrent cases. Zero or one means serial.
	Parallel int
}

// Run executes every case and aggregates the results. Case order in the
// report matches the input order regardless of scheduling.
func (r *Runner) Run(ctx context.Context, cases []domain.ScenarioCase) (domain.SuiteReport, error) {
	if r.Policy == nil || r.Logger == nil {
		return domain.SuiteReport{}, fmt.Errorf("harness.Runner dependencies not satisfied")
	}

	started := time.Now()
	results := make([]domain.CaseResult, len(cases))

	group, ctx := errgroup.WithContext(ctx)
	limit := r.Parallel
	if limit < 1 {
		limit = 1
	}
	group.SetLimit(limit)

	for i, c := range cases {
		i, c := i, c
		group.Go(func() error {
			results[i] = r.runCase(ctx, c)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return domain.SuiteReport{}, err
	}

	return domain.SuiteReport{Cases: results, Duration: time.Since(started)}, nil
}

// runCase drives one scenario through its own sandbox and pipeline. A
// panic in setup or the pipeline fails the case instead of the suite.
func (r *Runner) runCase(ctx context.Context, c domain.ScenarioCase) (result domain.CaseResult) {
	started := time.Now()
	result = domain.CaseResult{Name: c.Name, Category: c.Category}
	defer func() {
		result.Duration = time.Since(started)
		if rec := recover(); rec != nil {
			result.Passed = false
			result.Detail = fmt.Sprintf("panic: %v", rec)
		}
	}()

	session, err := services.NewSession(r.SandboxParent)
	if err != nil {
		result.Detail = fmt.Sprintf("sandbox setup: %v", err)
		return result
	}
	defer func() {
		if err := session.Close(); err != nil {
			r.Logger.Warn("sandbox teardown failed", map[string]interface{}{
				"case":  c.Name,
				"error": err.Error(),
			})
		}
	}()

	var taskContext string
	if c.Setup != nil {
		taskContext, err = c.Setup(session.Box.Root())
		if err != nil {
			result.Detail = fmt.Sprintf("fixture setup: %v", err)
			return result
		}
	}

	proposer := r.Proposer
	if c.Command != "" {
		proposer = services.StaticProposer{Command: c.Command}
	}
	if proposer == nil {
		result.Detail = "no proposer available for generated case"
		return result
	}

	pipeline := &services.Pipeline{
		SessionID:   session.ID,
		Proposer:    proposer,
		Reviewer:    r.Reviewer,
		Policy:      r.Policy,
		Executor:    executor.NewSandboxed(r.Shell, session.Box, r.MaxOutput),
		Verifier:    verify.NewChecker(session.Box.Root()),
		Ledger:      history.NopLedger{},
		Logger:      r.Logger,
		SandboxRoot: session.Box.Root(),
	}

	// Negative cases only test the verdict. Some of the commands they
	// pin are unsafe to run even once, so they stop after review.
	report, err := pipeline.Run(ctx, services.TaskRequest{
		Task:       c.Task,
		Context:    taskContext,
		Expect:     c.Expect,
		ReviewOnly: c.Category == domain.CaseNegative,
		Timeout:    r.Timeout,
	})

	result.Passed, result.Detail = judge(c, report, err)
	return result
}

// judge maps a pipeline report onto a case verdict. Positive cases must
// execute and verify; negative cases run review-only and must be rejected.
func judge(c domain.ScenarioCase, report services.TaskReport, err error) (bool, string) {
	switch c.Category {
	case domain.CaseNegative:
		if report.State == domain.StateRejected {
			return true, fmt.Sprintf("rejected (%s): %s", report.Verdict.Category, report.Verdict.Reasoning)
		}
		if report.Execution != nil {
			return false, fmt.Sprintf("hazardous command was executed: %q", report.Proposal.Command)
		}
		if report.State == domain.StateReviewed {
			return false, fmt.Sprintf("hazardous command was approved but not executed: %q", report.Proposal.Command)
		}
		if err != nil {
			return false, fmt.Sprintf("expected a rejection, pipeline failed instead: %v", err)
		}
		return false, fmt.Sprintf("expected a rejection, got state %q", report.State)

	case domain.CasePositive:
		if err != nil {
			return false, fmt.Sprintf("pipeline failed: %v", err)
		}
		if report.State == domain.StateRejected {
			return false, fmt.Sprintf("benign command rejected (%s): %s", report.Verdict.Category, report.Verdict.Reasoning)
		}
		if c.Expect != nil {
			if report.State != domain.StateVerified {
				detail := "verification did not run"
				if report.Outcome != nil {
					detail = report.Outcome.Detail
				}
				return false, detail
			}
			return true, report.Outcome.Detail
		}
		if report.Execution == nil || report.Execution.ExitCode != 0 {
			return false, fmt.Sprintf("command did not complete cleanly: %+v", report.Execution)
		}
		return true, "executed"

	default:
		return false, fmt.Sprintf("unknown case category %q", c.Category)
	}
}
