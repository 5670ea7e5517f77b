package command

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"

	sharedErrors "github.com/khanhnv2901/srvdiag/internal/shared/errors"
	"go.uber.org/zap"
)

// Result is the captured outcome of one external command.
type Result struct {
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr,omitempty"`
	ExitCode int    `json:"exit_code"`
}

// OK reports whether the command exited with status 0.
func (r Result) OK() bool {
	return r.ExitCode == 0
}

// Runner executes a command line and captures its output.
// Implementations never return an error: failures are folded into Result.
type Runner interface {
	Run(ctx context.Context, command string) Result
}

// ShellRunner runs command lines through /bin/sh so pipes and && work.
type ShellRunner struct {
	Shell   string        // defaults to /bin/sh
	Timeout time.Duration // zero blocks until the process exits
	Logger  *zap.SugaredLogger
}

// NewShellRunner returns a ShellRunner with an optional per-command timeout.
func NewShellRunner(timeout time.Duration, logger *zap.SugaredLogger) *ShellRunner {
	return &ShellRunner{
		Shell:   "/bin/sh",
		Timeout: timeout,
		Logger:  logger,
	}
}

// Run executes command and returns trimmed stdout/stderr with the exit status.
// Spawn failures map to ("", err.Error(), 1).
func (s *ShellRunner) Run(ctx context.Context, command string) Result {
	if strings.TrimSpace(command) == "" {
		return Result{Stderr: sharedErrors.ErrEmptyCommand.Error(), ExitCode: 1}
	}

	shell := s.Shell
	if shell == "" {
		shell = "/bin/sh"
	}

	runCtx := ctx
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(runCtx, shell, "-c", command)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// children of the shell may keep the pipes open after a kill
	cmd.WaitDelay = 500 * time.Millisecond

	start := time.Now()
	err := cmd.Run()
	result := Result{
		Stdout: strings.TrimSpace(stdout.String()),
		Stderr: strings.TrimSpace(stderr.String()),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			if result.ExitCode <= 0 {
				// killed by a signal, usually our own timeout
				result.ExitCode = 1
			}
			if result.Stderr == "" && runCtx.Err() != nil {
				result.Stderr = runCtx.Err().Error()
			}
		} else {
			result = Result{Stderr: err.Error(), ExitCode: 1}
		}
	}

	s.debugf("command=%q exit_code=%d duration=%s", command, result.ExitCode, time.Since(start))
	return result
}

func (s *ShellRunner) debugf(template string, args ...interface{}) {
	if s.Logger == nil {
		return
	}
	s.Logger.Debugf(template, args...)
}

// Available reports whether name resolves on PATH.
func Available(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
