package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"syscall"
	"time"
)

const defaultGracePeriod = 5 * time.Second

// Command is one subprocess invocation.
type Command struct {
	Binary string
	Args   []string
	// Env is appended to the parent environment. Empty inherits it as is.
	Env []string
	// GracePeriod between SIGTERM and SIGKILL on cancellation. Zero means 5s.
	GracePeriod time.Duration
}

// Result is what a finished subprocess left behind.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int // -1 when killed or never started
	Duration time.Duration
}

// StderrTail returns at most n trailing bytes of stderr, trimmed.
func (r *Result) StderrTail(n int) string {
	s := bytes.TrimSpace(r.Stderr)
	if len(s) > n {
		s = s[len(s)-n:]
	}
	return string(s)
}

// Run starts cmd in its own process group and waits for it. On context
// cancellation the group receives SIGTERM, then SIGKILL once GracePeriod
// has passed.
func Run(ctx context.Context, cmd Command) (*Result, error) {
	if cmd.Binary == "" {
		return nil, fmt.Errorf("process: binary is required")
	}
	grace := cmd.GracePeriod
	if grace == 0 {
		grace = defaultGracePeriod
	}

	c := exec.CommandContext(ctx, cmd.Binary, cmd.Args...) //nolint:gosec // args come from backend config
	if len(cmd.Env) > 0 {
		c.Env = append(os.Environ(), cmd.Env...)
	}
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	// whisper forks decoder workers; they must die with it
	c.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	c.Cancel = func() error {
		if c.Process == nil {
			return nil
		}
		return syscall.Kill(-c.Process.Pid, syscall.SIGTERM)
	}
	c.WaitDelay = grace

	start := time.Now()
	err := c.Run()
	res := &Result{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		ExitCode: c.ProcessState.ExitCode(),
		Duration: time.Since(start),
	}

	switch {
	case err == nil:
		return res, nil
	case ctx.Err() != nil:
		return res, fmt.Errorf("process: killed by context: %w", ctx.Err())
	case errors.Is(err, exec.ErrNotFound):
		return res, fmt.Errorf("process: %s not found on PATH: %w", cmd.Binary, err)
	default:
		return res, fmt.Errorf("process: %s exited with code %d: %w", cmd.Binary, res.ExitCode, err)
	}
}
