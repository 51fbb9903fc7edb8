// Package executor runs approved commands inside a sandbox root with
// bounded output capture and a wall-clock timeout that kills the whole
// process tree.
package executor

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"time"

	"github.com/doeshing/cmdgate/internal/domain"
	"github.com/doeshing/cmdgate/internal/infrastructure/sandbox"
	"github.com/doeshing/cmdgate/internal/pkg/shellwords"
	"github.com/doeshing/cmdgate/internal/ports"
)

// DefaultMaxOutput bounds captured stdout/stderr when no limit is configured.
const DefaultMaxOutput = 1 << 20 // 1 MiB

// Sandboxed executes shell commands with the working directory fixed to a
// sandbox root. At most one command runs at a time per root; the sandbox
// itself carries the lock.
type Sandboxed struct {
	shell     string
	box       *sandbox.Sandbox
	maxOutput int
}

// NewSandboxed builds an executor bound to one sandbox. Shell defaults to
// /bin/sh.
func NewSandboxed(shell string, box *sandbox.Sandbox, maxOutput int) *Sandboxed {
	if shell == "" {
		shell = "/bin/sh"
	}
	if maxOutput <= 0 {
		maxOutput = DefaultMaxOutput
	}
	return &Sandboxed{shell: shell, box: box, maxOutput: maxOutput}
}

// Run implements ports.CommandExecutor. Approval is the orchestrator's
// responsibility; Run independently re-validates path containment as
// defense in depth and fails closed when it does not hold.
func (e *Sandboxed) Run(ctx context.Context, command string, timeout time.Duration) (domain.ExecutionResult, error) {
	if err := e.revalidatePaths(command); err != nil {
		return domain.ExecutionResult{}, err
	}

	e.box.Acquire()
	defer e.box.Release()

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, e.shell, "-c", command)
	cmd.Dir = e.box.Root()

	var stdout, stderr bytes.Buffer
	outWriter := &limitedWriter{buf: &stdout, limit: e.maxOutput}
	errWriter := &limitedWriter{buf: &stderr, limit: e.maxOutput}
	cmd.Stdout = outWriter
	cmd.Stderr = errWriter

	setupProcessGroup(cmd)

	start := time.Now()
	err := cmd.Run()
	duration := time.Since(start)

	result := domain.ExecutionResult{
		Stdout:    stdout.String(),
		Stderr:    stderr.String(),
		Duration:  duration,
		Truncated: outWriter.truncated || errWriter.truncated,
	}

	if ctx.Err() == context.DeadlineExceeded {
		result.TimedOut = true
		result.ExitCode = domain.TimeoutExitCode
		return result, nil
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// A non-zero exit is an ordinary outcome, not a Go error.
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		return result, err
	}
	return result, nil
}

// revalidatePaths re-runs the containment check on every path-like
// argument. An escape here means the policy engine approved something it
// should not have; the caller escalates it as a defect.
func (e *Sandboxed) revalidatePaths(command string) error {
	parsed := shellwords.Split(command)
	home, _ := os.UserHomeDir()
	check := func(word string) error {
		path, ok := shellwords.ExtractPath(word)
		if !ok {
			return nil
		}
		return e.box.CheckPath(shellwords.ExpandHome(path, home))
	}
	for _, seg := range parsed.Segments {
		for i := 1; i < len(seg); i++ {
			if err := check(seg[i]); err != nil {
				return err
			}
		}
	}
	for _, r := range parsed.Redirects {
		if err := check(r.Target); err != nil {
			return err
		}
	}
	return nil
}

// limitedWriter discards bytes past limit while recording that the stream
// was truncated rather than failing the command.
type limitedWriter struct {
	buf       *bytes.Buffer
	limit     int
	truncated bool
}

func (w *limitedWriter) Write(p []byte) (int, error) {
	remaining := w.limit - w.buf.Len()
	if remaining <= 0 {
		if len(p) > 0 {
			w.truncated = true
		}
		return len(p), nil
	}
	if len(p) > remaining {
		w.truncated = true
		_, err := w.buf.Write(p[:remaining])
		return len(p), err
	}
	return w.buf.Write(p)
}

var _ ports.CommandExecutor = (*Sandboxed)(nil)
