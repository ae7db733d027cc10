// Package command runs external tools with a bounded timeout.
package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Runner executes an external program and returns its standard output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs programs with os/exec. Each call is bounded by Timeout
// when it is positive.
type ExecRunner struct {
	Timeout time.Duration
	// Env replaces the child environment when non-nil
	Env []string
}

// ExitError carries the output of a program that ran but failed.
type ExitError struct {
	Name     string
	Args     []string
	ExitCode int
	Stdout   string
	Stderr   string
	Err      error
}

func (e *ExitError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" {
		msg = strings.TrimSpace(e.Stdout)
	}
	cmd := strings.TrimSpace(e.Name + " " + strings.Join(e.Args, " "))
	if msg != "" {
		return fmt.Sprintf("%s: %v: %s", cmd, e.Err, msg)
	}
	return fmt.Sprintf("%s: %v", cmd, e.Err)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// Run executes name with args. A non-zero exit, a missing program and an
// expired timeout are all reported as errors; the first two as *ExitError.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, name, args...)
	if r.Env != nil {
		cmd.Env = r.Env
	}
	// grandchildren may hold the output pipes open after a kill
	cmd.WaitDelay = time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return stdout.Bytes(), nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return stdout.Bytes(), fmt.Errorf("%s timed out after %s: %w", name, r.Timeout, ctxErr)
		}
		return stdout.Bytes(), fmt.Errorf("%s: %w", name, ctxErr)
	}

	exitErr := &ExitError{
		Name:     name,
		Args:     args,
		ExitCode: -1,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Err:      err,
	}
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		exitErr.ExitCode = ee.ExitCode()
	}
	return stdout.Bytes(), exitErr
}

// Exists checks if a command is available in PATH
func Exists(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
