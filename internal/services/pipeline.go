// Package services orchestrates the gated pipeline: propose, review,
// execute, verify. Policy rejections and failed verifications are
// ordinary outcomes here; only stage failures and sandbox violations
// surface as errors.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/doeshing/cmdgate/internal/domain"
	"github.com/doeshing/cmdgate/internal/ports"
)

// TaskRequest describes one unit of work for the pipeline.
type TaskRequest struct {
	Task    string
	Context string
	// Expect, when set, is checked against the sandbox after execution.
	Expect domain.Expectation
	// ReviewOnly stops the pipeline after the verdict. Nothing executes.
	ReviewOnly bool
	Timeout    time.Duration
}

// TaskReport is the pipeline's account of one run. Execution and Outcome
// are nil for stages that were never reached.
type TaskReport struct {
	SessionID string
	State     domain.TaskState
	Proposal  domain.CommandProposal
	Verdict   domain.ReviewVerdict
	Execution *domain.ExecutionResult
	Outcome   *domain.VerificationOutcome
}

// Pipeline wires the ports together for one session. The generative
// Reviewer is optional; the policy engine is not.
type Pipeline struct {
	SessionID string
	Proposer  ports.Proposer
	Reviewer  ports.Reviewer
	Policy    ports.PolicyService
	Executor  ports.CommandExecutor
	Verifier  ports.StateVerifier
	Ledger    ports.RunLedger
	Logger    ports.Logger

	SandboxRoot string
}

// Run drives one task through propose, review and (unless ReviewOnly)
// execute and verify. Every run lands in the ledger, rejected ones too.
func (p *Pipeline) Run(ctx context.Context, req TaskRequest) (TaskReport, error) {
	if p.Proposer == nil || p.Policy == nil || p.Logger == nil {
		return TaskReport{}, errors.New("services.Pipeline dependencies not satisfied")
	}
	if !req.ReviewOnly && p.Executor == nil {
		return TaskReport{}, errors.New("services.Pipeline executor not set")
	}

	report := TaskReport{SessionID: p.SessionID}
	started := time.Now()

	proposal, err := p.Proposer.Propose(ctx, req.Task, req.Context)
	if err != nil {
		report.State = domain.StateFailed
		p.Logger.Warn("proposal failed", map[string]interface{}{
			"task":  req.Task,
			"error": err.Error(),
		})
		p.record(req, report, started)
		return report, err
	}
	report.Proposal = proposal
	report.State = domain.StateProposed
	p.Logger.Debug("command proposed", map[string]interface{}{
		"proposal_id": proposal.ID,
		"command":     proposal.Command,
	})

	verdict := p.Policy.Review(proposal, p.SandboxRoot)
	if verdict.Approved && p.Reviewer != nil {
		second, err := p.Reviewer.Assess(ctx, proposal, req.Context)
		if err != nil {
			report.State = domain.StateFailed
			p.record(req, report, started)
			return report, fmt.Errorf("generative review: %w", err)
		}
		if !second.Approved {
			verdict = second
		}
	}
	report.Verdict = verdict

	if !verdict.Approved {
		report.State = domain.StateRejected
		p.Logger.Info("proposal rejected", map[string]interface{}{
			"proposal_id": proposal.ID,
			"category":    string(verdict.Category),
			"reasoning":   verdict.Reasoning,
		})
		p.record(req, report, started)
		return report, nil
	}

	report.State = domain.StateReviewed
	if req.ReviewOnly {
		p.record(req, report, started)
		return report, nil
	}

	result, err := p.Executor.Run(ctx, proposal.Command, req.Timeout)
	if err != nil {
		report.State = domain.StateFailed
		if errors.Is(err, domain.ErrSandboxViolation) {
			// An approved command should never reach a path outside the
			// root. Escalate loudly instead of downgrading to a rejection.
			p.Logger.Error("sandbox violation after approval", err, map[string]interface{}{
				"proposal_id": proposal.ID,
				"command":     proposal.Command,
			})
		}
		p.record(req, report, started)
		return report, err
	}
	result.ProposalID = proposal.ID
	report.Execution = &result
	report.State = domain.StateExecuted

	if result.TimedOut {
		report.State = domain.StateFailed
		p.Logger.Warn("command timed out", map[string]interface{}{
			"proposal_id": proposal.ID,
			"timeout":     req.Timeout.String(),
		})
		p.record(req, report, started)
		return report, nil
	}

	if req.Expect != nil {
		// Verification runs even after a non-zero exit; the expectation,
		// not the exit code, decides whether the task achieved its goal.
		outcome := p.verify(result, req.Expect)
		report.Outcome = &outcome
		if outcome.Passed {
			report.State = domain.StateVerified
		}
	}

	p.record(req, report, started)
	return report, nil
}

func (p *Pipeline) verify(result domain.ExecutionResult, expect domain.Expectation) domain.VerificationOutcome {
	if p.Verifier == nil {
		return domain.VerificationOutcome{Passed: false, Detail: "no verifier configured"}
	}
	return p.Verifier.Check(result, expect)
}

// RunWithRevisions retries after a rejection, a failed verification or a
// non-zero exit, feeding the failure back into the task context. At most
// maxRevisions retries happen; the last report is returned either way.
func (p *Pipeline) RunWithRevisions(ctx context.Context, req TaskRequest, maxRevisions int) (TaskReport, error) {
	report, err := p.Run(ctx, req)
	if err != nil {
		return report, err
	}

	for attempt := 0; attempt < maxRevisions; attempt++ {
		feedback := revisionFeedback(report)
		if feedback == "" {
			return report, nil
		}
		p.Logger.Info("revising proposal", map[string]interface{}{
			"attempt":  attempt + 1,
			"feedback": feedback,
		})

		next := req
		if next.Context != "" {
			next.Context += "\n"
		}
		next.Context += feedback

		report, err = p.Run(ctx, next)
		if err != nil {
			return report, err
		}
		req = next
	}
	return report, nil
}

// revisionFeedback returns a description of why the last run fell short,
// or "" when there is nothing left to revise.
func revisionFeedback(report TaskReport) string {
	switch {
	case report.State == domain.StateRejected:
		return fmt.Sprintf("The previous command %q was rejected (%s): %s. Propose a different command.",
			report.Proposal.Command, report.Verdict.Category, report.Verdict.Reasoning)
	case report.Outcome != nil && !report.Outcome.Passed:
		return fmt.Sprintf("The previous command %q ran but did not produce the expected result: %s. Propose a corrected command.",
			report.Proposal.Command, report.Outcome.Detail)
	case report.Execution != nil && report.Execution.ExitCode != 0:
		return fmt.Sprintf("The previous command %q exited with code %d. Stderr: %s. Propose a corrected command.",
			report.Proposal.Command, report.Execution.ExitCode, report.Execution.Stderr)
	default:
		return ""
	}
}

func (p *Pipeline) record(req TaskRequest, report TaskReport, started time.Time) {
	if p.Ledger == nil {
		return
	}
	rec := domain.RunRecord{
		Timestamp:  started,
		SessionID:  p.SessionID,
		ProposalID: report.Proposal.ID,
		Task:       req.Task,
		Command:    report.Proposal.Command,
		Approved:   report.Verdict.Approved,
		Category:   report.Verdict.Category,
		Reasoning:  report.Verdict.Reasoning,
		State:      report.State,
		DurationMS: time.Since(started).Milliseconds(),
	}
	if report.Execution != nil {
		rec.Executed = true
		rec.ExitCode = report.Execution.ExitCode
		rec.TimedOut = report.Execution.TimedOut
	}
	if report.Outcome != nil {
		rec.Verified = report.Outcome.Passed
	}
	if err := p.Ledger.Save(rec); err != nil {
		p.Logger.Warn("ledger save failed", map[string]interface{}{"error": err.Error()})
	}
}

// StaticProposer serves a fixed command, bypassing generation. Used when
// the caller already has the exact command to vet or run.
type StaticProposer struct {
	Command   string
	Rationale string
}

func (s StaticProposer) Propose(context.Context, string, string) (domain.CommandProposal, error) {
	if s.Command == "" {
		return domain.CommandProposal{}, &domain.ProposalError{Detail: "empty command"}
	}
	return domain.CommandProposal{
		ID:        uuid.NewString(),
		Command:   s.Command,
		Rationale: s.Rationale,
	}, nil
}

var _ ports.Proposer = StaticProposer{}
