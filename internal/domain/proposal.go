package domain

// CommandProposal is a candidate shell command produced by a proposer,
// not yet vetted. Immutable once created; each proposal is reviewed at
// most once and a fresh proposal requires a fresh verdict.
type CommandProposal struct {
	// ID is a session-scoped identifier linking verdicts and execution
	// results back to the proposal they were produced for.
	ID        string
	Command   string
	Rationale string
}

// RejectionCategory tells callers which kind of rule rejected a proposal,
// so a portability rejection can be handled differently from a safety one.
type RejectionCategory string

const (
	CategoryNone        RejectionCategory = ""
	CategorySafety      RejectionCategory = "safety"
	CategoryContainment RejectionCategory = "containment"
	CategoryPortability RejectionCategory = "portability"
	CategorySyntax      RejectionCategory = "syntax"
)

// ReviewVerdict is the terminal safety/correctness decision on a proposal.
type ReviewVerdict struct {
	ProposalID string
	Approved   bool
	Reasoning  string
	Category   RejectionCategory
}

// Approve builds an approving verdict for the given proposal.
func Approve(p CommandProposal, reasoning string) ReviewVerdict {
	return ReviewVerdict{ProposalID: p.ID, Approved: true, Reasoning: reasoning}
}

// Reject builds a rejecting verdict for the given proposal.
func Reject(p CommandProposal, category RejectionCategory, reasoning string) ReviewVerdict {
	return ReviewVerdict{ProposalID: p.ID, Approved: false, Reasoning: reasoning, Category: category}
}
