package sandbox

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/doeshing/cmdgate/internal/domain"
)

func newTestSandbox(t *testing.T) *Sandbox {
	t.Helper()
	box, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = box.Purge() })
	return box
}

func TestResolveRelativeStaysInside(t *testing.T) {
	box := newTestSandbox(t)

	resolved, err := box.Resolve("sub/file.txt")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !box.Contains(resolved) {
		t.Errorf("relative path resolved outside root: %q", resolved)
	}
}

func TestResolveTraversalEscapes(t *testing.T) {
	box := newTestSandbox(t)

	for _, arg := range []string{
		"../escape.txt",
		"../../..",
		"sandbox/../../../etc/passwd",
		"a/b/../../../outside",
	} {
		resolved, err := box.Resolve(arg)
		if err != nil {
			t.Fatalf("Resolve(%q): %v", arg, err)
		}
		if box.Contains(resolved) {
			t.Errorf("traversal %q resolved inside root: %q", arg, resolved)
		}
		if err := box.CheckPath(arg); !errors.Is(err, domain.ErrSandboxViolation) {
			t.Errorf("CheckPath(%q) = %v, want sandbox violation", arg, err)
		}
	}
}

func TestResolveAbsoluteOutside(t *testing.T) {
	box := newTestSandbox(t)

	if err := box.CheckPath("/etc/passwd"); !errors.Is(err, domain.ErrSandboxViolation) {
		t.Errorf("CheckPath(/etc/passwd) = %v, want sandbox violation", err)
	}
}

func TestResolveFollowsSymlinkOutside(t *testing.T) {
	box := newTestSandbox(t)

	outside := t.TempDir()
	link := filepath.Join(box.Root(), "link")
	if err := os.Symlink(outside, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	if err := box.CheckPath("link/secret.txt"); !errors.Is(err, domain.ErrSandboxViolation) {
		t.Errorf("CheckPath through symlink = %v, want sandbox violation", err)
	}
}

func TestPurgeRemovesTreeOnce(t *testing.T) {
	box, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := os.WriteFile(filepath.Join(box.Root(), "f.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	if err := box.Purge(); err != nil {
		t.Fatalf("Purge: %v", err)
	}
	if _, err := os.Stat(box.Root()); !os.IsNotExist(err) {
		t.Errorf("root still present after purge")
	}
	if err := box.Purge(); !errors.Is(err, domain.ErrSandboxClosed) {
		t.Errorf("second Purge = %v, want ErrSandboxClosed", err)
	}
}

func TestAttachRejectsFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := Attach(file); err == nil {
		t.Error("Attach accepted a regular file as root")
	}
}

func TestWithin(t *testing.T) {
	tests := []struct {
		root, path string
		want       bool
	}{
		{"/tmp/box", "/tmp/box", true},
		{"/tmp/box", "/tmp/box/a/b", true},
		{"/tmp/box", "/tmp/boxes", false},
		{"/tmp/box", "/etc/passwd", false},
		{"/tmp/box", "/tmp", false},
	}
	for _, tt := range tests {
		if got := Within(tt.root, tt.path); got != tt.want {
			t.Errorf("Within(%q, %q) = %v, want %v", tt.root, tt.path, got, tt.want)
		}
	}
}
