package domain

// Config mirrors ~/.cmdgate/config.yaml.
type Config struct {
	ConfigFormatVersion string            `yaml:"config_format_version"`
	Preferences         Preferences       `yaml:"preferences"`
	Models              []ModelDefinition `yaml:"models"`
	Security            SecuritySettings  `yaml:"security"`
	Execution           ExecutionSettings `yaml:"execution"`
	Harness             HarnessSettings   `yaml:"harness"`
}

// Preferences captures user-level toggles.
type Preferences struct {
	DefaultModel string `yaml:"default_model"`
	// MaxRevisions bounds the optional re-propose loop after a rejection
	// or failed verification. Zero disables revisions.
	MaxRevisions int `yaml:"max_revisions"`
}

// ModelDefinition describes one proposer/reviewer backend.
type ModelDefinition struct {
	Name       string          `yaml:"name"`
	Endpoint   string          `yaml:"endpoint"`
	ModelID    string          `yaml:"model_id"`
	AuthEnvVar string          `yaml:"auth_env_var"`
	MaxTokens  int             `yaml:"max_tokens"`
	Prompt     []PromptMessage `yaml:"prompt"`
}

// PromptMessage is one templated chat message for a model definition.
type PromptMessage struct {
	Role    string `yaml:"role"`
	Content string `yaml:"content"`
}

// SecuritySettings defines policy engine behavior.
type SecuritySettings struct {
	// RulesFile points to an optional YAML danger-pattern catalogue that
	// supplements the built-in classifiers.
	RulesFile string `yaml:"rules_file"`
	// TargetPlatform declares which userland proposed commands must be
	// compatible with ("darwin" or "linux"). Empty means detect.
	TargetPlatform string `yaml:"target_platform"`
}

// ExecutionSettings controls how approved commands run.
type ExecutionSettings struct {
	Shell          string `yaml:"shell"`
	TimeoutSeconds int    `yaml:"timeout"`
	MaxOutputBytes int    `yaml:"max_output_bytes"`
	// SandboxParent is the directory sandbox roots are created under.
	// Empty means the system temp directory.
	SandboxParent string `yaml:"sandbox_parent"`
}

// HarnessSettings controls the regression battery.
type HarnessSettings struct {
	// Parallel caps how many cases run concurrently, each in its own
	// sandbox root. Zero or one means serial.
	Parallel int `yaml:"parallel"`
}
