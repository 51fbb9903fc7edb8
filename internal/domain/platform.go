package domain

import (
	"runtime"
	"strings"
)

// Platform is the declared target platform for proposed commands. The
// policy engine uses it to flag flag-syntax incompatibilities (BSD vs GNU
// userland) before execution.
type Platform string

const (
	PlatformDarwin Platform = "darwin"
	PlatformLinux  Platform = "linux"
)

// ParsePlatform normalizes a configured platform string. Unknown values
// fall back to the detected platform.
func ParsePlatform(value string) Platform {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "darwin", "macos", "bsd", "freebsd":
		return PlatformDarwin
	case "linux", "gnu":
		return PlatformLinux
	default:
		return DetectPlatform()
	}
}

// DetectPlatform maps the running OS onto a target platform.
func DetectPlatform() Platform {
	if runtime.GOOS == "darwin" {
		return PlatformDarwin
	}
	return PlatformLinux
}
