// Package command wraps external command execution behind a small interface
// so the refresh pipeline can be tested with a deterministic fake.
package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"syscall"
	"time"
)

const (
	// maxOutputBytes caps the amount of stdout/stderr captured per command.
	maxOutputBytes = 64 * 1024

	// terminationGracePeriod is the time we wait after SIGTERM before sending SIGKILL.
	terminationGracePeriod = 5 * time.Second
)

// Result captures the observable outcome of one external command.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Success reports whether the command exited cleanly.
func (r Result) Success() bool {
	return r.ExitCode == 0
}

// Runner executes an external command in dir and returns its outcome.
// A non-zero exit status is reported through Result, not through error;
// error is reserved for spawn failures and timeouts.
type Runner interface {
	Run(ctx context.Context, dir, name string, args ...string) (Result, error)
}

// ExecRunner runs commands via os/exec with a bounded execution time.
// A command that outlives the timeout gets SIGTERM, a grace period, then
// SIGKILL, and the run is reported as context.DeadlineExceeded.
type ExecRunner struct {
	Timeout time.Duration
	Logger  *slog.Logger
}

// NewExecRunner creates an ExecRunner with the given per-command timeout.
func NewExecRunner(timeout time.Duration, logger *slog.Logger) *ExecRunner {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &ExecRunner{Timeout: timeout, Logger: logger}
}

// Run executes name with args in dir and waits for completion or timeout.
func (e *ExecRunner) Run(ctx context.Context, dir, name string, args ...string) (Result, error) {
	timeoutTimer := time.NewTimer(e.Timeout)
	defer timeoutTimer.Stop()

	// Termination is managed manually so SIGTERM gets a grace period
	// before escalation; CommandContext would kill outright.
	cmd := exec.Command(name, args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if e.Logger != nil {
		e.Logger.Debug("running command", "name", name, "args", args, "dir", dir, "timeout", e.Timeout)
	}

	if err := cmd.Start(); err != nil {
		return Result{ExitCode: -1}, fmt.Errorf("start process: %w", err)
	}

	waitErr := make(chan error, 1)
	go func() {
		waitErr <- cmd.Wait()
	}()

	select {
	case <-ctx.Done():
		e.terminate(cmd, waitErr)
		return collect(-1, &stdout, &stderr), ctx.Err()

	case <-timeoutTimer.C:
		if e.Logger != nil {
			e.Logger.Warn("command timed out, sending SIGTERM", "name", name, "timeout", e.Timeout)
		}
		e.terminate(cmd, waitErr)
		return collect(-1, &stdout, &stderr), context.DeadlineExceeded

	case err := <-waitErr:
		exitCode := 0
		if err != nil {
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) {
				exitCode = exitErr.ExitCode()
			} else {
				return collect(-1, &stdout, &stderr), fmt.Errorf("wait process: %w", err)
			}
		}
		return collect(exitCode, &stdout, &stderr), nil
	}
}

// terminate sends SIGTERM, waits out the grace period, then SIGKILLs.
func (e *ExecRunner) terminate(cmd *exec.Cmd, waitErr chan error) {
	if cmd.Process != nil {
		_ = cmd.Process.Signal(syscall.SIGTERM)
	}

	grace := time.NewTimer(terminationGracePeriod)
	defer grace.Stop()

	select {
	case <-waitErr:
	case <-grace.C:
		if e.Logger != nil {
			e.Logger.Warn("process did not exit after SIGTERM, sending SIGKILL")
		}
		if cmd.Process != nil {
			_ = cmd.Process.Kill()
		}
		<-waitErr
	}
}

func collect(exitCode int, stdout, stderr *bytes.Buffer) Result {
	return Result{
		ExitCode: exitCode,
		Stdout:   truncate(stdout.String()),
		Stderr:   truncate(stderr.String()),
	}
}

// truncate caps captured output to keep log lines bounded.
func truncate(s string) string {
	if len(s) > maxOutputBytes {
		return s[:maxOutputBytes] + "\n... (truncated)"
	}
	return s
}
