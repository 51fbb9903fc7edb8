// Package security implements the rule-based policy engine that decides
// whether a proposed command may execute. The engine is an ordered chain
// of independent classifiers; the first one that objects rejects the
// proposal with its reasoning, and a proposal no classifier objects to is
// approved. Evaluation is deterministic and side-effect free.
package security

import (
	"os"
	"strings"

	"github.com/doeshing/cmdgate/internal/domain"
	"github.com/doeshing/cmdgate/internal/pkg/shellwords"
	"github.com/doeshing/cmdgate/internal/ports"
)

// Finding is one classifier's terminal objection.
type Finding struct {
	Category domain.RejectionCategory
	Reason   string
}

// Classifier is one independent rejection rule. Inspect returns no
// opinion (false) to let the chain continue.
type Classifier interface {
	Name() string
	Inspect(a *Analysis) (Finding, bool)
}

// Analysis is the pre-parsed view of a proposal shared by all classifiers.
type Analysis struct {
	Raw      string
	Root     string
	Home     string
	Platform domain.Platform
	Parsed   shellwords.Parsed
}

// Engine implements the PolicyService port.
type Engine struct {
	platform    domain.Platform
	classifiers []Classifier
}

// NewEngine builds the mandatory classifier chain for the given target
// platform, loading supplementary danger-pattern rules from rulesPath
// (compiled-in defaults apply when the file is missing).
func NewEngine(platform domain.Platform, rulesPath string) (*Engine, error) {
	rules, err := loadRules(rulesPath)
	if err != nil {
		return nil, err
	}
	compiled, err := compilePatterns(rules.Rules.DangerPatterns)
	if err != nil {
		return nil, err
	}
	return &Engine{
		platform: platform,
		classifiers: []Classifier{
			&DestructiveRootClassifier{Patterns: compiled},
			ContainmentClassifier{},
			PlatformClassifier{},
			SyntaxClassifier{},
			SystemFileClassifier{},
		},
	}, nil
}

// Review implements ports.PolicyService. The verdict is terminal for the
// proposal: re-reviewing the same proposal yields the same verdict.
func (e *Engine) Review(p domain.CommandProposal, sandboxRoot string) domain.ReviewVerdict {
	command := strings.TrimSpace(p.Command)
	if command == "" {
		return domain.Reject(p, domain.CategorySyntax, "empty command")
	}

	a := &Analysis{
		Raw:      command,
		Root:     sandboxRoot,
		Home:     userHomeDir(),
		Platform: e.platform,
		Parsed:   shellwords.Split(command),
	}
	for _, c := range e.classifiers {
		if finding, ok := c.Inspect(a); ok {
			return domain.Reject(p, finding.Category, c.Name()+": "+finding.Reason)
		}
	}
	return domain.Approve(p, "no classifier objected")
}

// Analyze exposes the parsed view for classifier-level tests.
func Analyze(command, root string, platform domain.Platform) *Analysis {
	return &Analysis{
		Raw:      command,
		Root:     root,
		Home:     userHomeDir(),
		Platform: platform,
		Parsed:   shellwords.Split(command),
	}
}

func userHomeDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return ""
}

var _ ports.PolicyService = (*Engine)(nil)
