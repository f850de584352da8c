// Package command runs external programs with a deadline.
package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ErrTimeout is returned when a command outlives its deadline.
var ErrTimeout = errors.New("timed out")

// Cmd describes one invocation.
type Cmd struct {
	Name    string
	Args    []string
	Dir     string
	Timeout time.Duration // zero means no deadline beyond ctx
}

func (c Cmd) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// Result is the captured output of a finished command.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	Duration time.Duration
}

// Runner runs commands. Implementations must return an error for a non-zero
// exit status.
type Runner interface {
	Run(ctx context.Context, cmd Cmd) (Result, error)
}

// RunnerFunc adapts a function to the Runner interface.
type RunnerFunc func(ctx context.Context, cmd Cmd) (Result, error)

// Run calls f(ctx, cmd).
func (f RunnerFunc) Run(ctx context.Context, cmd Cmd) (Result, error) {
	return f(ctx, cmd)
}

// Exec runs commands with os/exec.
type Exec struct {
	Logger *zap.Logger
}

// Run starts cmd and waits for it. A command killed by its deadline returns
// an error wrapping ErrTimeout; any other failure includes the tail of the
// command's output.
func (e Exec) Run(ctx context.Context, cmd Cmd) (Result, error) {
	logger := e.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	runCtx := ctx
	if cmd.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, cmd.Timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	c := exec.CommandContext(runCtx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir
	c.Stdout = &stdout
	c.Stderr = &stderr

	logger.Debug("running command", zap.Stringer("cmd", cmd), zap.String("dir", cmd.Dir))
	start := time.Now()
	err := c.Run()
	res := Result{Stdout: stdout.Bytes(), Stderr: stderr.Bytes(), Duration: time.Since(start)}
	logger.Debug("command finished", zap.String("cmd", cmd.Name), zap.Duration("duration", res.Duration), zap.Error(err))

	if err == nil {
		return res, nil
	}
	if ctx.Err() == nil && errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return res, fmt.Errorf("%s %w after %s", cmd.Name, ErrTimeout, cmd.Timeout)
	}
	if ctx.Err() != nil {
		return res, ctx.Err()
	}
	return res, fmt.Errorf("%s: %w%s", cmd.Name, err, tail(res))
}

// tail returns the last lines of the command output for error messages.
func tail(res Result) string {
	out := res.Stderr
	if len(bytes.TrimSpace(out)) == 0 {
		out = res.Stdout
	}
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	if len(lines) == 1 && lines[0] == "" {
		return ""
	}
	if len(lines) > 5 {
		lines = lines[len(lines)-5:]
	}
	return "\n" + strings.Join(lines, "\n")
}
