//go:build darwin || linux

package executor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/doeshing/cmdgate/internal/domain"
	"github.com/doeshing/cmdgate/internal/infrastructure/sandbox"
)

func newTestExecutor(t *testing.T) (*Sandboxed, *sandbox.Sandbox) {
	t.Helper()
	box, err := sandbox.New(t.TempDir())
	if err != nil {
		t.Fatalf("sandbox.New: %v", err)
	}
	t.Cleanup(func() { _ = box.Purge() })
	return NewSandboxed("/bin/sh", box, 0), box
}

func TestRunCapturesOutput(t *testing.T) {
	exe, _ := newTestExecutor(t)

	result, err := exe.Run(context.Background(), "echo hello; echo oops >&2", 5*time.Second)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.ExitCode != 0 {
		t.Errorf("exit code = %d", result.ExitCode)
	}
	if got := strings.TrimSpace(result.Stdout); got != "hello" {
		t.Errorf("stdout = %q", got)
	}
	if got := strings.TrimSpace(result.Stderr); got != "oops" {
		t.Errorf("stderr = %q", got)
	}
	if result.TimedOut {
		t.Error("TimedOut set on fast command")
	}
}

func TestRunNonZeroExitIsNotAnError(t *testing.T) {
	exe, _ := newTestExecutor(t)

	result, err := exe.Run(context.Background(), "exit 3", 5*time.Second)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.ExitCode != 3 {
		t.Errorf("exit code = %d, want 3", result.ExitCode)
	}
}

func TestRunWorkingDirIsSandboxRoot(t *testing.T) {
	exe, box := newTestExecutor(t)

	result, err := exe.Run(context.Background(), "pwd", 5*time.Second)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := strings.TrimSpace(result.Stdout); got != box.Root() {
		t.Errorf("pwd = %q, want %q", got, box.Root())
	}
}

func TestRunSideEffectsLandInSandbox(t *testing.T) {
	exe, box := newTestExecutor(t)

	if _, err := exe.Run(context.Background(), "touch created.txt", 5*time.Second); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, err := os.Stat(filepath.Join(box.Root(), "created.txt")); err != nil {
		t.Errorf("file not created in sandbox: %v", err)
	}
}

func TestRunTimeoutKillsProcess(t *testing.T) {
	exe, _ := newTestExecutor(t)

	start := time.Now()
	result, err := exe.Run(context.Background(), "sleep 30", 300*time.Millisecond)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !result.TimedOut {
		t.Fatal("TimedOut not set")
	}
	if result.ExitCode != domain.TimeoutExitCode {
		t.Errorf("exit code = %d, want sentinel %d", result.ExitCode, domain.TimeoutExitCode)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("timeout took %v; process tree not killed promptly", elapsed)
	}
}

func TestRunBoundsOutput(t *testing.T) {
	box, err := sandbox.New(t.TempDir())
	if err != nil {
		t.Fatalf("sandbox.New: %v", err)
	}
	t.Cleanup(func() { _ = box.Purge() })
	exe := NewSandboxed("/bin/sh", box, 64)

	result, err := exe.Run(context.Background(), "yes x | head -c 4096", 5*time.Second)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !result.Truncated {
		t.Error("Truncated not set")
	}
	if len(result.Stdout) > 64 {
		t.Errorf("stdout length %d exceeds limit", len(result.Stdout))
	}
}

func TestRunExactlyFullOutputIsNotTruncated(t *testing.T) {
	box, err := sandbox.New(t.TempDir())
	if err != nil {
		t.Fatalf("sandbox.New: %v", err)
	}
	t.Cleanup(func() { _ = box.Purge() })
	exe := NewSandboxed("/bin/sh", box, 64)

	result, err := exe.Run(context.Background(), "yes x | head -c 64", 5*time.Second)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Stdout) != 64 {
		t.Fatalf("stdout length = %d, want 64", len(result.Stdout))
	}
	if result.Truncated {
		t.Error("Truncated set although no bytes were dropped")
	}
}

func TestRunFailsClosedOnEscapingPath(t *testing.T) {
	exe, _ := newTestExecutor(t)

	_, err := exe.Run(context.Background(), "cat ../../../etc/passwd", 5*time.Second)
	if !errors.Is(err, domain.ErrSandboxViolation) {
		t.Fatalf("Run = %v, want sandbox violation", err)
	}

	_, err = exe.Run(context.Background(), "echo pwned >> /etc/hosts", 5*time.Second)
	if !errors.Is(err, domain.ErrSandboxViolation) {
		t.Fatalf("Run redirect = %v, want sandbox violation", err)
	}
}
