// Package verify checks the sandbox filesystem and captured output
// against expected post-conditions. Checks are read-only.
package verify

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/doeshing/cmdgate/internal/domain"
	"github.com/doeshing/cmdgate/internal/ports"
)

// Checker implements the StateVerifier port for one sandbox root.
// Expectation paths are resolved relative to that root.
type Checker struct {
	root string
}

// NewChecker builds a verifier over the given sandbox root.
func NewChecker(root string) *Checker {
	return &Checker{root: root}
}

// Check implements ports.StateVerifier. String comparisons are exact; only
// OutputContains applies tolerant (substring, order-insensitive) matching.
func (c *Checker) Check(result domain.ExecutionResult, expect domain.Expectation) domain.VerificationOutcome {
	switch e := expect.(type) {
	case domain.FileContentEquals:
		return c.fileContentEquals(e)
	case domain.FileExists:
		return c.fileExists(e)
	case domain.FileAbsent:
		return c.fileAbsent(e)
	case domain.DirectoryExists:
		return c.directoryExists(e)
	case domain.OutputContains:
		return outputContains(result, e)
	case nil:
		return domain.VerificationOutcome{Passed: false, Detail: "no expectation provided"}
	default:
		return domain.VerificationOutcome{Passed: false, Detail: fmt.Sprintf("unknown expectation %T", expect)}
	}
}

func (c *Checker) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.root, path)
}

func (c *Checker) fileContentEquals(e domain.FileContentEquals) domain.VerificationOutcome {
	data, err := os.ReadFile(c.resolve(e.Path))
	if err != nil {
		return domain.VerificationOutcome{Passed: false, Detail: fmt.Sprintf("read %q: %v", e.Path, err)}
	}
	if string(data) != e.Expected {
		return domain.VerificationOutcome{
			Passed: false,
			Detail: fmt.Sprintf("content of %q differs: got %q, want %q", e.Path, string(data), e.Expected),
		}
	}
	return domain.VerificationOutcome{Passed: true, Detail: e.Describe()}
}

func (c *Checker) fileExists(e domain.FileExists) domain.VerificationOutcome {
	info, err := os.Stat(c.resolve(e.Path))
	if err != nil {
		return domain.VerificationOutcome{Passed: false, Detail: fmt.Sprintf("stat %q: %v", e.Path, err)}
	}
	if info.IsDir() {
		return domain.VerificationOutcome{Passed: false, Detail: fmt.Sprintf("%q is a directory, not a file", e.Path)}
	}
	return domain.VerificationOutcome{Passed: true, Detail: e.Describe()}
}

func (c *Checker) fileAbsent(e domain.FileAbsent) domain.VerificationOutcome {
	_, err := os.Lstat(c.resolve(e.Path))
	if err == nil {
		return domain.VerificationOutcome{Passed: false, Detail: fmt.Sprintf("%q still present", e.Path)}
	}
	if !os.IsNotExist(err) {
		return domain.VerificationOutcome{Passed: false, Detail: fmt.Sprintf("lstat %q: %v", e.Path, err)}
	}
	return domain.VerificationOutcome{Passed: true, Detail: e.Describe()}
}

func (c *Checker) directoryExists(e domain.DirectoryExists) domain.VerificationOutcome {
	info, err := os.Stat(c.resolve(e.Path))
	if err != nil {
		return domain.VerificationOutcome{Passed: false, Detail: fmt.Sprintf("stat %q: %v", e.Path, err)}
	}
	if !info.IsDir() {
		return domain.VerificationOutcome{Passed: false, Detail: fmt.Sprintf("%q exists but is not a directory", e.Path)}
	}
	return domain.VerificationOutcome{Passed: true, Detail: e.Describe()}
}

func outputContains(result domain.ExecutionResult, e domain.OutputContains) domain.VerificationOutcome {
	var missing []string
	for _, substr := range e.Substrings {
		if !strings.Contains(result.Stdout, substr) {
			missing = append(missing, substr)
		}
	}
	if len(missing) > 0 {
		return domain.VerificationOutcome{
			Passed: false,
			Detail: fmt.Sprintf("stdout missing [%s]", strings.Join(missing, ", ")),
		}
	}
	return domain.VerificationOutcome{Passed: true, Detail: e.Describe()}
}

var _ ports.StateVerifier = (*Checker)(nil)
