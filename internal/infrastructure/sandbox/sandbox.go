// Package sandbox manages the directory boundary all execution and path
// checks are confined to. One Sandbox owns one root for the lifetime of a
// session: created at session start, purged at session end.
package sandbox

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/doeshing/cmdgate/internal/domain"
)

// Sandbox is a single bounded directory tree. At most one command executes
// at a time per sandbox; independent sandboxes may run concurrently.
type Sandbox struct {
	root string

	mu     sync.Mutex // serializes command execution on this root
	closed bool
}

// New creates a fresh sandbox root under parent (the system temp directory
// when parent is empty). The root itself is resolved through symlinks so
// later containment checks compare canonical paths.
func New(parent string) (*Sandbox, error) {
	if parent == "" {
		parent = os.TempDir()
	}
	root, err := os.MkdirTemp(parent, "cmdgate-*")
	if err != nil {
		return nil, fmt.Errorf("create sandbox root: %w", err)
	}
	resolved, err := filepath.EvalSymlinks(root)
	if err != nil {
		_ = os.RemoveAll(root)
		return nil, fmt.Errorf("resolve sandbox root: %w", err)
	}
	return &Sandbox{root: resolved}, nil
}

// Attach wraps an existing directory as a sandbox root without taking
// ownership of its creation. Used by review-only flows that need a
// containment boundary but never execute.
func Attach(root string) (*Sandbox, error) {
	resolved, err := filepath.EvalSymlinks(root)
	if err != nil {
		return nil, fmt.Errorf("resolve sandbox root: %w", err)
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("sandbox root %q is not a directory", root)
	}
	return &Sandbox{root: resolved}, nil
}

// Root returns the canonical sandbox root path.
func (s *Sandbox) Root() string {
	return s.root
}

// Acquire takes the per-root execution lock.
func (s *Sandbox) Acquire() {
	s.mu.Lock()
}

// Release drops the per-root execution lock.
func (s *Sandbox) Release() {
	s.mu.Unlock()
}

// Resolve normalizes a command argument against the root: relative paths
// are joined to the root, "." and ".." segments are collapsed, and symlinks
// along the deepest existing ancestor are followed. The returned path is
// what containment decisions must be made on.
func (s *Sandbox) Resolve(arg string) (string, error) {
	return ResolveUnder(s.root, arg)
}

// Contains reports whether an already-resolved path lies inside the root.
func (s *Sandbox) Contains(resolved string) bool {
	return Within(s.root, resolved)
}

// CheckPath resolves arg and fails closed with a SandboxViolationError if
// it escapes the root.
func (s *Sandbox) CheckPath(arg string) error {
	resolved, err := s.Resolve(arg)
	if err != nil {
		return err
	}
	if !s.Contains(resolved) {
		return &domain.SandboxViolationError{Path: arg, Root: s.root}
	}
	return nil
}

// Purge removes the sandbox tree. Safe to call once; later calls return
// ErrSandboxClosed.
func (s *Sandbox) Purge() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return domain.ErrSandboxClosed
	}
	s.closed = true
	return os.RemoveAll(s.root)
}

// ResolveUnder normalizes arg against root without requiring a Sandbox.
// Symlinks are followed for the deepest ancestor that exists, so a link
// inside the root pointing outside is caught even when the final component
// does not exist yet.
func ResolveUnder(root, arg string) (string, error) {
	p := arg
	if !filepath.IsAbs(p) {
		p = filepath.Join(root, p)
	}
	p = filepath.Clean(p)

	// filepath.Join already collapses ".." lexically, which is the first
	// line of defense. Now follow symlinks on the existing portion.
	existing := p
	var tail []string
	for {
		if _, err := os.Lstat(existing); err == nil {
			break
		}
		parent := filepath.Dir(existing)
		if parent == existing {
			break
		}
		tail = append([]string{filepath.Base(existing)}, tail...)
		existing = parent
	}
	resolved, err := filepath.EvalSymlinks(existing)
	if err != nil {
		// Unresolvable ancestry (dangling link, permission): fall back to
		// the lexical form, which is still safe to compare.
		return p, nil //nolint:nilerr
	}
	if len(tail) > 0 {
		resolved = filepath.Join(append([]string{resolved}, tail...)...)
	}
	return resolved, nil
}

// Within reports whether path equals root or sits below it.
func Within(root, path string) bool {
	if path == root {
		return true
	}
	return strings.HasPrefix(path, root+string(filepath.Separator))
}
