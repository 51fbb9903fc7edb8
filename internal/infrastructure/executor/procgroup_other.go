//go:build !darwin && !linux

package executor

import "os/exec"

// setupProcessGroup is a no-op on platforms without process-group kill
// support; context cancellation still terminates the direct child.
func setupProcessGroup(_ *exec.Cmd) {}
