package domain

import "time"

// CaseCategory distinguishes cases that must execute and verify from
// cases that must be rejected before execution.
type CaseCategory string

const (
	CasePositive CaseCategory = "positive"
	CaseNegative CaseCategory = "negative"
)

// ScenarioCase is one fixture in the regression battery. Each case owns
// its own sandbox lifecycle: setup runs against a fresh root and teardown
// happens after the case finishes regardless of outcome.
type ScenarioCase struct {
	Name string
	// Task is the natural-language task handed to the proposer for
	// positive cases.
	Task string
	// Command, when non-empty, bypasses the proposer; negative cases pin
	// the exact bad command under review.
	Command  string
	Category CaseCategory
	// Setup prepares fixture files under the sandbox root and returns the
	// context string handed to the proposer/reviewer.
	Setup func(root string) (string, error)
	// Expect is the post-condition checked for positive cases.
	Expect Expectation
}

// CaseResult records one case's outcome in the suite report.
type CaseResult struct {
	Name     string
	Category CaseCategory
	Passed   bool
	Detail   string
	Duration time.Duration
}

// SuiteReport aggregates a battery run. The suite passes only if every
// case passed.
type SuiteReport struct {
	Cases    []CaseResult
	Duration time.Duration
}

// Passed reports the logical AND over all case results.
func (r SuiteReport) Passed() bool {
	if len(r.Cases) == 0 {
		return false
	}
	for _, c := range r.Cases {
		if !c.Passed {
			return false
		}
	}
	return true
}

// Failed counts the cases that did not pass.
func (r SuiteReport) Failed() int {
	n := 0
	for _, c := range r.Cases {
		if !c.Passed {
			n++
		}
	}
	return n
}
