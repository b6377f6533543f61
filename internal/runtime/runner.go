package runtime

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"

	"github.com/agentx-labs/plugin-installer/internal/failure"
)

// Command describes one process invocation.
type Command struct {
	Name string
	Args []string
	// Dir is the working directory. Empty means the caller's.
	Dir string
	// Env replaces the process environment when non-nil.
	Env []string
}

// String renders the command line for logs and error messages.
func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// Result captures the outcome of a finished command.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Success returns true if the command exited with code 0.
func (r Result) Success() bool {
	return r.ExitCode == 0
}

// CommandRunner executes commands. A non-zero exit is reported through
// Result.ExitCode; the error return is reserved for commands that could not
// be started at all.
type CommandRunner interface {
	Run(ctx context.Context, cmd Command) (Result, error)
}

// CommandError reports a command that exited with a non-zero status.
type CommandError struct {
	Command  string
	ExitCode int
	Stderr   string
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("command %q exited with status %d", e.Command, e.ExitCode)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + s
	}
	return msg
}

// Is lets errors.Is match failure.ErrCommandFailed.
func (e *CommandError) Is(target error) bool {
	return target == failure.ErrCommandFailed
}

// RunChecked runs cmd and converts a non-zero exit into a non-recoverable
// *CommandError.
func RunChecked(ctx context.Context, r CommandRunner, cmd Command) (Result, error) {
	res, err := r.Run(ctx, cmd)
	if err != nil {
		return res, &failure.NonRecoverableError{
			Msg: fmt.Sprintf("running %s: %v", cmd.Name, err),
			Err: errors.Join(failure.ErrCommandFailed, err),
		}
	}
	if !res.Success() {
		ce := &CommandError{Command: cmd.String(), ExitCode: res.ExitCode, Stderr: res.Stderr}
		return res, &failure.NonRecoverableError{Msg: ce.Error(), Err: ce}
	}
	return res, nil
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct {
	// Stdout and Stderr receive a live copy of the output when set.
	Stdout io.Writer
	Stderr io.Writer

	logger zerolog.Logger
}

// NewExecRunner returns an ExecRunner logging through logger.
func NewExecRunner(logger zerolog.Logger) *ExecRunner {
	return &ExecRunner{logger: logger.With().Str("component", "runtime.exec").Logger()}
}

// Run executes cmd and waits for it to finish.
func (r *ExecRunner) Run(ctx context.Context, cmd Command) (Result, error) {
	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir
	if cmd.Env != nil {
		c.Env = cmd.Env
	}

	var stdoutBuf, stderrBuf bytes.Buffer
	c.Stdout = &stdoutBuf
	c.Stderr = &stderrBuf
	if r.Stdout != nil {
		c.Stdout = io.MultiWriter(r.Stdout, &stdoutBuf)
	}
	if r.Stderr != nil {
		c.Stderr = io.MultiWriter(r.Stderr, &stderrBuf)
	}

	r.logger.Debug().Str("cmd", cmd.String()).Str("dir", cmd.Dir).Msg("Running command")

	err := c.Run()
	res := Result{
		Stdout: stdoutBuf.String(),
		Stderr: stderrBuf.String(),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			r.logger.Debug().Str("cmd", cmd.Name).Int("exit_code", res.ExitCode).Str("stderr", res.Stderr).Msg("Command failed")
			return res, nil
		}
		return res, fmt.Errorf("executing %s: %w", cmd.Name, err)
	}

	r.logger.Debug().Str("cmd", cmd.Name).Int("exit_code", 0).Msg("Command finished")
	return res, nil
}

var _ CommandRunner = (*ExecRunner)(nil)
