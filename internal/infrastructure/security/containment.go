package security

import (
	"fmt"

	"github.com/doeshing/cmdgate/internal/domain"
	"github.com/doeshing/cmdgate/internal/infrastructure/sandbox"
	"github.com/doeshing/cmdgate/internal/pkg/shellwords"
)

// ContainmentClassifier resolves every file-path-like argument against the
// sandbox root — collapsing "." and ".." segments and following symlinks —
// and rejects the proposal if any resolved path escapes the root,
// regardless of command verb. Single- and multi-level "../" traversal are
// the regression cases this classifier exists for.
type ContainmentClassifier struct{}

func (ContainmentClassifier) Name() string {
	return "path-containment"
}

func (ContainmentClassifier) Inspect(a *Analysis) (Finding, bool) {
	if a.Root == "" {
		return Finding{}, false
	}
	for _, seg := range a.Parsed.Segments {
		argv := stripSudo(seg)
		// argv[0] is the program name, not a filesystem operand.
		for i := 1; i < len(argv); i++ {
			if finding, ok := checkContained(a, argv[i]); ok {
				return finding, true
			}
		}
	}
	for _, r := range a.Parsed.Redirects {
		if finding, ok := checkContained(a, r.Target); ok {
			return finding, true
		}
	}
	return Finding{}, false
}

func checkContained(a *Analysis, word string) (Finding, bool) {
	path, ok := shellwords.ExtractPath(word)
	if !ok {
		return Finding{}, false
	}
	expanded := shellwords.ExpandHome(path, a.Home)
	resolved, err := sandbox.ResolveUnder(a.Root, expanded)
	if err != nil {
		return Finding{}, false
	}
	if sandbox.Within(a.Root, resolved) {
		return Finding{}, false
	}
	return Finding{
		Category: domain.CategoryContainment,
		Reason:   fmt.Sprintf("%q resolves to %q, outside the sandbox root", word, resolved),
	}, true
}
