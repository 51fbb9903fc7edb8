package security

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/doeshing/cmdgate/internal/domain"
	"github.com/doeshing/cmdgate/internal/infrastructure/sandbox"
	"github.com/doeshing/cmdgate/internal/pkg/shellwords"
)

// DestructiveRootClassifier rejects recursive-delete commands aimed at the
// filesystem root, the sandbox root, the current directory shorthand or an
// unguarded wildcard at the sandbox root, plus any command matching the
// configured danger-pattern catalogue.
type DestructiveRootClassifier struct {
	Patterns []CompiledPattern
}

func (c *DestructiveRootClassifier) Name() string {
	return "destructive-root"
}

func (c *DestructiveRootClassifier) Inspect(a *Analysis) (Finding, bool) {
	for _, seg := range a.Parsed.Segments {
		argv := stripSudo(seg)
		if len(argv) == 0 || filepath.Base(argv[0]) != "rm" {
			continue
		}
		recursive := false
		var targets []string
		for _, arg := range argv[1:] {
			if arg == "--recursive" {
				recursive = true
				continue
			}
			if strings.HasPrefix(arg, "-") && !strings.HasPrefix(arg, "--") {
				if strings.ContainsAny(arg, "rR") {
					recursive = true
				}
				continue
			}
			if strings.HasPrefix(arg, "--") {
				continue
			}
			targets = append(targets, arg)
		}
		if !recursive {
			continue
		}
		for _, target := range targets {
			if reason, bad := destructiveTarget(target, a.Root, a.Home); bad {
				return Finding{Category: domain.CategorySafety, Reason: reason}, true
			}
		}
	}

	for _, p := range c.Patterns {
		if p.Re.MatchString(a.Raw) {
			return Finding{Category: domain.CategorySafety, Reason: p.Rule.Message}, true
		}
	}
	return Finding{}, false
}

func destructiveTarget(target, root, home string) (string, bool) {
	switch target {
	case "/", ".", "./", "..", "*", "./*":
		return fmt.Sprintf("recursive delete of %q destroys more than the task could intend", target), true
	}
	expanded := shellwords.ExpandHome(target, home)
	if home != "" && filepath.Clean(expanded) == filepath.Clean(home) {
		return "recursive delete of the home directory", true
	}

	p := expanded
	if !filepath.IsAbs(p) {
		p = filepath.Join(root, p)
	}
	p = filepath.Clean(p)
	if p == "/" {
		return "recursive delete targets the filesystem root", true
	}
	if root != "" && p == filepath.Clean(root) {
		return "recursive delete targets the sandbox root itself", true
	}
	if strings.HasSuffix(target, "*") && root != "" && filepath.Dir(p) == filepath.Clean(root) {
		return "unguarded wildcard delete at the sandbox root", true
	}
	return "", false
}

func stripSudo(argv []string) []string {
	if len(argv) > 1 && argv[0] == "sudo" {
		return argv[1:]
	}
	return argv
}

// PlatformClassifier flags flag syntax incompatible with the declared
// target platform. The known divergence is in-place sed: BSD sed requires
// an explicit (possibly empty) backup-suffix operand after -i, GNU sed
// must not be given a standalone empty operand there.
type PlatformClassifier struct{}

func (PlatformClassifier) Name() string {
	return "platform-compatibility"
}

// sedScriptRe matches operands that are sed scripts rather than backup
// suffixes, e.g. "s/old/new/g" or "2,4y|a|b|".
var sedScriptRe = regexp.MustCompile(`^(\d+(,\d+)?)?[sy][^0-9A-Za-z]`)

func (PlatformClassifier) Inspect(a *Analysis) (Finding, bool) {
	for _, seg := range a.Parsed.Segments {
		argv := stripSudo(seg)
		if len(argv) == 0 || filepath.Base(argv[0]) != "sed" {
			continue
		}
		for i := 1; i < len(argv); i++ {
			if argv[i] != "-i" {
				continue
			}
			hasOperand := i+1 < len(argv)
			switch a.Platform {
			case domain.PlatformDarwin:
				if !hasOperand || !validSedSuffix(argv[i+1]) {
					return Finding{
						Category: domain.CategoryPortability,
						Reason:   "BSD sed requires an explicit (possibly empty) backup suffix after -i, e.g. sed -i '' 's/old/new/g'",
					}, true
				}
			case domain.PlatformLinux:
				if hasOperand && argv[i+1] == "" {
					return Finding{
						Category: domain.CategoryPortability,
						Reason:   "GNU sed would treat the empty operand after -i as the script; drop the '' argument",
					}, true
				}
			}
		}
	}
	return Finding{}, false
}

// validSedSuffix reports whether the operand after -i can be a BSD backup
// suffix. The empty string is the explicit no-backup form.
func validSedSuffix(operand string) bool {
	if operand == "" {
		return true
	}
	if strings.HasPrefix(operand, "-") {
		return false // another flag; the suffix was omitted
	}
	if strings.HasPrefix(operand, "/") {
		return false // an address script like /pattern/d
	}
	return !sedScriptRe.MatchString(operand)
}

// SystemFileClassifier rejects writes that target known system
// configuration locations outside the sandbox, including shell run-control
// files inside a user home directory. It backstops the containment
// classifier for the write cases that must never slip through.
type SystemFileClassifier struct{}

func (SystemFileClassifier) Name() string {
	return "system-file-mutation"
}

var systemPathPrefixes = []string{
	"/etc/", "/boot/", "/sys/", "/proc/", "/var/spool/cron",
}

var rcFileNames = map[string]bool{
	".bashrc":       true,
	".bash_profile": true,
	".bash_login":   true,
	".zshrc":        true,
	".zprofile":     true,
	".profile":      true,
	".cshrc":        true,
}

func (SystemFileClassifier) Inspect(a *Analysis) (Finding, bool) {
	for _, target := range writeTargets(a.Parsed) {
		expanded := shellwords.ExpandHome(target, a.Home)
		if !filepath.IsAbs(expanded) {
			// Relative writes land inside the sandbox working directory.
			continue
		}
		clean := filepath.Clean(expanded)
		if sandbox.Within(a.Root, clean) {
			continue
		}
		for _, prefix := range systemPathPrefixes {
			if strings.HasPrefix(clean, prefix) {
				return Finding{
					Category: domain.CategorySafety,
					Reason:   fmt.Sprintf("write to system configuration path %q", clean),
				}, true
			}
		}
		if rcFileNames[filepath.Base(clean)] {
			return Finding{
				Category: domain.CategorySafety,
				Reason:   fmt.Sprintf("write to shell run-control file %q", clean),
			}, true
		}
	}
	return Finding{}, false
}

// writeTargets collects every path the command would write to: redirection
// operands plus tee arguments.
func writeTargets(parsed shellwords.Parsed) []string {
	var targets []string
	for _, r := range parsed.Redirects {
		if strings.HasPrefix(r.Op, "<") {
			continue
		}
		targets = append(targets, r.Target)
	}
	for _, seg := range parsed.Segments {
		argv := stripSudo(seg)
		if len(argv) == 0 || filepath.Base(argv[0]) != "tee" {
			continue
		}
		for _, arg := range argv[1:] {
			if strings.HasPrefix(arg, "-") {
				continue
			}
			targets = append(targets, arg)
		}
	}
	return targets
}
