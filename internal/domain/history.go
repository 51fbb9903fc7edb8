package domain

import "time"

// RunRecord is one pipeline run as persisted in the history ledger.
type RunRecord struct {
	Timestamp  time.Time
	SessionID  string
	ProposalID string
	Task       string
	Command    string
	Approved   bool
	Category   RejectionCategory
	Reasoning  string
	State      TaskState
	Executed   bool
	ExitCode   int
	TimedOut   bool
	Verified   bool
	DurationMS int64
}
