package harness

import (
	"fmt"
	"io"
	"time"

	"github.com/doeshing/cmdgate/internal/domain"
)

const (
	ansiGreen = "\033[32m"
	ansiRed   = "\033[31m"
	ansiDim   = "\033[2m"
	ansiReset = "\033[0m"
)

// Render writes a human-readable suite report. Colors are applied only
// when the destination is a terminal.
func Render(w io.Writer, report domain.SuiteReport, colored bool) {
	green, red, dim, reset := "", "", "", ""
	if colored {
		green, red, dim, reset = ansiGreen, ansiRed, ansiDim, ansiReset
	}

	for _, c := range report.Cases {
		status := green + "PASS" + reset
		if !c.Passed {
			status = red + "FAIL" + reset
		}
		fmt.Fprintf(w, "%s  %-28s %s(%s, %s)%s\n", status, c.Name, dim, c.Category, c.Duration.Round(time.Millisecond), reset)
		if c.Detail != "" {
			fmt.Fprintf(w, "      %s%s%s\n", dim, c.Detail, reset)
		}
	}

	passed := len(report.Cases) - report.Failed()
	summary := fmt.Sprintf("%d/%d cases passed in %s", passed, len(report.Cases), report.Duration.Round(time.Millisecond))
	if report.Passed() {
		fmt.Fprintf(w, "\n%s%s%s\n", green, summary, reset)
	} else {
		fmt.Fprintf(w, "\n%s%s%s\n", red, summary, reset)
	}
}
