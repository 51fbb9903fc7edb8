package security

import (
	"fmt"
	"strings"

	"mvdan.cc/sh/v3/syntax"

	"github.com/doeshing/cmdgate/internal/domain"
)

// SyntaxClassifier rejects commands that do not parse as a single
// well-formed shell program, such as unbalanced quoting or escaping.
type SyntaxClassifier struct{}

func (SyntaxClassifier) Name() string {
	return "syntax-well-formedness"
}

func (SyntaxClassifier) Inspect(a *Analysis) (Finding, bool) {
	// A fresh parser per call keeps Inspect safe for concurrent reviews.
	if _, err := syntax.NewParser().Parse(strings.NewReader(a.Raw), ""); err != nil {
		return Finding{
			Category: domain.CategorySyntax,
			Reason:   fmt.Sprintf("not a well-formed shell command: %v", err),
		}, true
	}
	return Finding{}, false
}
