package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/doeshing/cmdgate/internal/domain"
	"github.com/doeshing/cmdgate/internal/services"
)

const timeRounding = time.Millisecond

// RenderReport prints a pipeline report in a plain, ASCII-only format.
func RenderReport(w io.Writer, report services.TaskReport) {
	if report.Proposal.Command != "" {
		fmt.Fprintln(w, "Proposed Command:")
		fmt.Fprintf(w, "  %s\n", report.Proposal.Command)
	}

	switch {
	case report.Verdict.Approved:
		fmt.Fprintf(w, "\nVerdict: APPROVED (%s)\n", report.Verdict.Reasoning)
	case report.State == domain.StateRejected:
		fmt.Fprintf(w, "\nVerdict: REJECTED [%s]\n", report.Verdict.Category)
		fmt.Fprintf(w, "  %s\n", report.Verdict.Reasoning)
	}

	if report.Execution != nil {
		if report.Execution.TimedOut {
			fmt.Fprintln(w, "\nCommand timed out and was terminated.")
		} else {
			fmt.Fprintf(w, "\nExit code: %d (%s)\n", report.Execution.ExitCode, report.Execution.Duration.Round(timeRounding))
		}
		if out := strings.TrimRight(report.Execution.Stdout, "\n"); out != "" {
			fmt.Fprintln(w, "\nstdout:")
			fmt.Fprintln(w, indent(out))
		}
		if errOut := strings.TrimRight(report.Execution.Stderr, "\n"); errOut != "" {
			fmt.Fprintln(w, "\nstderr:")
			fmt.Fprintln(w, indent(errOut))
		}
		if report.Execution.Truncated {
			fmt.Fprintln(w, "(output truncated)")
		}
	}

	if report.Outcome != nil {
		if report.Outcome.Passed {
			fmt.Fprintf(w, "\nVerified: %s\n", report.Outcome.Detail)
		} else {
			fmt.Fprintf(w, "\nVerification failed: %s\n", report.Outcome.Detail)
		}
	}

	fmt.Fprintf(w, "\nState: %s\n", report.State)
}

func indent(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = "  " + line
	}
	return strings.Join(lines, "\n")
}
