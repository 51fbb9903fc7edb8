package security

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// DangerPattern describes one regex-based rejection rule supplementing the
// built-in classifiers.
type DangerPattern struct {
	Pattern string `yaml:"pattern"`
	Message string `yaml:"message"`
}

// RulesFile is the YAML schema root.
type RulesFile struct {
	Rules struct {
		DangerPatterns []DangerPattern `yaml:"danger_patterns"`
	} `yaml:"rules"`
}

// CompiledPattern pairs a rule with its compiled regex.
type CompiledPattern struct {
	Re   *regexp.Regexp
	Rule DangerPattern
}

func loadRules(path string) (RulesFile, error) {
	var rules RulesFile
	if path == "" {
		rules.Rules.DangerPatterns = defaultPatterns()
		return rules, nil
	}
	data, err := os.ReadFile(expandPath(path))
	if err != nil {
		// fall back to defaults
		rules.Rules.DangerPatterns = defaultPatterns()
		return rules, nil
	}
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return RulesFile{}, err
	}
	if len(rules.Rules.DangerPatterns) == 0 {
		rules.Rules.DangerPatterns = defaultPatterns()
	}
	return rules, nil
}

func compilePatterns(patterns []DangerPattern) ([]CompiledPattern, error) {
	var compiled []CompiledPattern
	for _, pattern := range patterns {
		re, err := regexp.Compile(pattern.Pattern)
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, CompiledPattern{Re: re, Rule: pattern})
	}
	return compiled, nil
}

func defaultPatterns() []DangerPattern {
	return []DangerPattern{
		{Pattern: `dd\s+if=`, Message: "raw disk writing"},
		{Pattern: `mkfs\.`, Message: "formatting a filesystem"},
		{Pattern: `>\s*/dev/(sd[a-z]|nvme)`, Message: "writing to a block device"},
		{Pattern: `:\(\)\s*\{\s*:\|:&\s*\}\s*;\s*:`, Message: "fork bomb"},
		{Pattern: `curl[^|]*\|\s*(sudo\s+)?(ba)?sh`, Message: "piping a remote script into a shell"},
		{Pattern: `\b(shutdown|reboot|halt)\b`, Message: "host power control"},
	}
}

func expandPath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(userHomeDir(), path[2:])
	}
	return path
}
