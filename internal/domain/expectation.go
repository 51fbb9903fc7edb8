package domain

import (
	"fmt"
	"strings"
)

// Expectation is one post-condition from the closed set of checks the
// verifier knows how to evaluate. Paths are sandbox-relative.
type Expectation interface {
	Describe() string
}

// FileContentEquals expects the file at Path to contain exactly Expected,
// byte for byte. No whitespace normalization is applied.
type FileContentEquals struct {
	Path     string
	Expected string
}

func (e FileContentEquals) Describe() string {
	return fmt.Sprintf("file %q has exact expected content (%d bytes)", e.Path, len(e.Expected))
}

// FileExists expects a regular file at Path.
type FileExists struct {
	Path string
}

func (e FileExists) Describe() string {
	return fmt.Sprintf("file %q exists", e.Path)
}

// FileAbsent expects no entry at Path.
type FileAbsent struct {
	Path string
}

func (e FileAbsent) Describe() string {
	return fmt.Sprintf("path %q is absent", e.Path)
}

// DirectoryExists expects a directory at Path.
type DirectoryExists struct {
	Path string
}

func (e DirectoryExists) Describe() string {
	return fmt.Sprintf("directory %q exists", e.Path)
}

// OutputContains expects every substring to appear somewhere in the
// captured stdout. Order-insensitive; all substrings must be present.
type OutputContains struct {
	Substrings []string
}

func (e OutputContains) Describe() string {
	return fmt.Sprintf("stdout contains all of [%s]", strings.Join(e.Substrings, ", "))
}
