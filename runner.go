// runner.go: Safe invocation of the external slicer binary
//
// The binary is always started from an explicit argument vector; no shell
// ever sits between the core and the process, so values containing spaces,
// quotes or metacharacters reach the binary verbatim. This holds
// independently of the filename validator and the sandbox and is the last
// line of the injection defense.

package sliceguard

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/agilira/go-errors"
)

// RunResult is the outcome of a completed slicer invocation. Captured
// output is truncated to 2000 characters to bound memory and log size.
type RunResult struct {
	ExitCode int    `json:"exit_code"`
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
}

// SliceRequest names the sandboxed paths handed to the slicer. Input and
// Output are required; the three settings paths are optional and skipped
// when empty.
type SliceRequest struct {
	Input            SandboxedPath
	Output           SandboxedPath
	MachineSettings  SandboxedPath
	FilamentSettings SandboxedPath
	ProcessSettings  SandboxedPath
}

// SlicerRunner drives the external slicer executable with a bounded
// execution time.
type SlicerRunner struct {
	bin     string
	timeout time.Duration
}

// NewSlicerRunner creates a runner for the binary at bin. A zero timeout
// disables the deadline.
func NewSlicerRunner(bin string, timeout time.Duration) *SlicerRunner {
	return &SlicerRunner{bin: bin, timeout: timeout}
}

// Binary returns the configured executable path.
func (r *SlicerRunner) Binary() string { return r.bin }

// Run executes the binary with the given argument vector, capturing stdout
// and stderr. Failures classify as ProcessFailure: a non-zero exit carries
// the exit code and truncated stderr; a spawn failure, timeout or caller
// cancellation carries no exit code.
func (r *SlicerRunner) Run(ctx context.Context, args []string) (RunResult, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, r.bin, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	result := RunResult{
		Stdout: truncateOutput(stdout.String()),
		Stderr: truncateOutput(stderr.String()),
	}

	if err != nil {
		// Deadline and caller cancellation both mean the process was
		// killed from outside: no exit code, only captured output.
		if ctxErr := ctx.Err(); ctxErr != nil {
			msg := "slicer canceled before completion"
			if ctxErr == context.DeadlineExceeded {
				msg = fmt.Sprintf("slicer timed out after %s", r.timeout)
			}
			return result, errors.Wrap(ctxErr, ErrCodeProcessFailure, msg).
				WithContext("binary", r.bin).
				WithContext("stderr", result.Stderr)
		}

		if exitErr, ok := err.(*exec.ExitError); ok {
			result.ExitCode = exitErr.ExitCode()
			return result, errors.New(ErrCodeProcessFailure,
				fmt.Sprintf("slicer exited with code %d: %s", result.ExitCode, result.Stderr)).
				WithContext("binary", r.bin).
				WithContext("exit_code", result.ExitCode).
				WithContext("stderr", result.Stderr)
		}
		// Could not be spawned at all: no exit code, no captured output.
		return result, errors.Wrap(err, ErrCodeProcessFailure, "failed to start slicer").
			WithContext("binary", r.bin)
	}

	return result, nil
}

// Slice builds the slicer argument vector from a request and runs it.
// Every value in the vector is a sandbox-resolved absolute path.
func (r *SlicerRunner) Slice(ctx context.Context, req SliceRequest) (RunResult, error) {
	args := []string{"--input", req.Input.String(), "--output", req.Output.String()}
	if req.MachineSettings != "" {
		args = append(args, "--machine-settings", req.MachineSettings.String())
	}
	if req.FilamentSettings != "" {
		args = append(args, "--filament-settings", req.FilamentSettings.String())
	}
	if req.ProcessSettings != "" {
		args = append(args, "--process-settings", req.ProcessSettings.String())
	}
	return r.Run(ctx, args)
}
