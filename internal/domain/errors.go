package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the pipeline error taxonomy. Policy rejections and
// verification failures are ordinary outcomes, not errors; only stage
// failures and sandbox violations surface through these.
var (
	// ErrProposalFailed indicates the external proposer was unreachable or
	// returned empty/unparsable output. No review is attempted.
	ErrProposalFailed = errors.New("cmdgate: proposer returned no usable command")

	// ErrReviewerMalformed indicates a generative reviewer's output did not
	// parse as an {approved, reasoning} verdict. The output is rejected outright.
	ErrReviewerMalformed = errors.New("cmdgate: reviewer output failed to parse as a verdict")

	// ErrSandboxViolation indicates a path escaped the sandbox root despite
	// an approved verdict. This is escalated as a policy-engine defect and
	// never silently downgraded.
	ErrSandboxViolation = errors.New("cmdgate: path escapes sandbox root")

	// ErrSandboxClosed indicates the sandbox was already purged.
	ErrSandboxClosed = errors.New("cmdgate: sandbox already purged")
)

// SandboxViolationError reports the offending path alongside the root it
// escaped. It wraps ErrSandboxViolation so errors.Is keeps working.
type SandboxViolationError struct {
	Path string
	Root string
}

func (e *SandboxViolationError) Error() string {
	return fmt.Sprintf("%s: %q resolves outside %q", ErrSandboxViolation.Error(), e.Path, e.Root)
}

func (e *SandboxViolationError) Unwrap() error {
	return ErrSandboxViolation
}

// ProposalError carries the raw proposer output that could not be used.
// It wraps ErrProposalFailed.
type ProposalError struct {
	Raw    string
	Detail string
}

func (e *ProposalError) Error() string {
	return fmt.Sprintf("%s: %s", ErrProposalFailed.Error(), e.Detail)
}

func (e *ProposalError) Unwrap() error {
	return ErrProposalFailed
}
