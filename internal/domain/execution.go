package domain

import "time"

// TimeoutExitCode is the sentinel exit code recorded when a command is
// forcibly terminated on timeout.
const TimeoutExitCode = -1

// ExecutionResult wraps details from the sandboxed executor. Exactly one
// result exists per executed proposal; rejected proposals never produce one.
type ExecutionResult struct {
	ProposalID string
	ExitCode   int
	Stdout     string
	Stderr     string
	Duration   time.Duration
	TimedOut   bool
	// Truncated indicates captured output hit the configured buffer limit.
	Truncated bool
}

// VerificationOutcome reports whether the sandbox state after execution
// matched the expected post-condition.
type VerificationOutcome struct {
	Passed bool
	Detail string
}

// TaskState tracks a task through the gated pipeline.
type TaskState string

const (
	StateProposed TaskState = "proposed"
	StateReviewed TaskState = "reviewed"
	StateRejected TaskState = "rejected"
	StateExecuted TaskState = "executed"
	StateVerified TaskState = "verified"
	StateFailed   TaskState = "failed"
)
