// Package process executes process lifecycle operations: spawning
// commands, killing processes, and delivering signals.
package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/airsstack/airssys-osl/pkg/operations"
	"github.com/airsstack/airssys-osl/pkg/osl"
)

// DefaultSpawnTimeout bounds commands that do not carry their own timeout.
const DefaultSpawnTimeout = 2 * time.Minute

// Executor handles osl.TypeProcess operations.
type Executor struct {
	// MaxOutputBytes caps captured combined output. Zero means the
	// default of 1 MiB.
	MaxOutputBytes int
}

var _ osl.Executor = (*Executor)(nil)

// New returns a process executor with default limits.
func New() *Executor { return &Executor{} }

func (e *Executor) Name() string { return "process" }

func (e *Executor) SupportedTypes() []osl.OperationType {
	return []osl.OperationType{osl.TypeProcess}
}

func (e *Executor) Execute(ctx context.Context, op osl.Operation, ec *osl.ExecutionContext) (*osl.ExecutionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, osl.ExecutionFailed(string(op.Type()), err)
	}

	switch o := op.(type) {
	case *operations.ProcessSpawn:
		return e.spawn(ctx, o)
	case *operations.ProcessKill:
		return e.kill(o)
	case *operations.ProcessSignal:
		return e.signal(o)
	default:
		return nil, osl.ExecutionFailed("process", fmt.Errorf("unsupported operation %T", op))
	}
}

func (e *Executor) spawn(ctx context.Context, op *operations.ProcessSpawn) (*osl.ExecutionResult, error) {
	if op.Command == "" {
		return nil, osl.ProcessError("spawn", fmt.Errorf("command is empty"))
	}

	timeout := op.Timeout
	if timeout <= 0 {
		timeout = DefaultSpawnTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, op.Command, op.Args...)
	cmd.Dir = op.WorkingDir
	if len(op.Env) > 0 {
		cmd.Env = append(os.Environ(), op.Env...)
	}

	var out bytes.Buffer
	limit := e.MaxOutputBytes
	if limit <= 0 {
		limit = 1 << 20
	}
	lw := &limitedWriter{buf: &out, limit: limit}
	cmd.Stdout = lw
	cmd.Stderr = lw

	start := time.Now().UTC()
	err := cmd.Run()
	completed := time.Now().UTC()

	if ctx.Err() == context.DeadlineExceeded {
		return nil, osl.ProcessError("spawn", fmt.Errorf("command %q timed out after %s", op.Command, timeout))
	}

	exitCode := 0
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// Non-zero exit is a completed execution, not an
			// executor failure.
			exitCode = exitErr.ExitCode()
		} else {
			return nil, osl.ProcessError("spawn", err)
		}
	}

	res := osl.NewResult(out.Bytes(), exitCode, start, completed)
	res.WithMetadata("command", op.Command)
	if cmd.Process != nil {
		res.WithMetadata("pid", fmt.Sprintf("%d", cmd.Process.Pid))
	}
	if lw.truncated {
		res.WithMetadata("output_truncated", "true")
	}
	return res, nil
}

func (e *Executor) kill(op *operations.ProcessKill) (*osl.ExecutionResult, error) {
	if op.PID <= 0 {
		return nil, osl.ProcessError("kill", fmt.Errorf("invalid pid %d", op.PID))
	}
	start := time.Now().UTC()
	proc, err := os.FindProcess(op.PID)
	if err != nil {
		return nil, osl.ProcessError("kill", err)
	}
	if err := proc.Kill(); err != nil {
		return nil, osl.ProcessError("kill", err)
	}
	res := osl.Success(nil, start, time.Now().UTC())
	res.WithMetadata("pid", fmt.Sprintf("%d", op.PID))
	return res, nil
}

func (e *Executor) signal(op *operations.ProcessSignal) (*osl.ExecutionResult, error) {
	if op.PID <= 0 {
		return nil, osl.ProcessError("signal", fmt.Errorf("invalid pid %d", op.PID))
	}
	start := time.Now().UTC()
	if err := signalProcess(op.PID, op.Signal); err != nil {
		return nil, osl.ProcessError("signal", err)
	}
	res := osl.Success(nil, start, time.Now().UTC())
	res.WithMetadata("pid", fmt.Sprintf("%d", op.PID))
	res.WithMetadata("signal", fmt.Sprintf("%d", op.Signal))
	return res, nil
}

// limitedWriter keeps the first limit bytes and drops the rest so a
// chatty child cannot exhaust memory.
type limitedWriter struct {
	buf       *bytes.Buffer
	limit     int
	truncated bool
}

func (w *limitedWriter) Write(p []byte) (int, error) {
	remaining := w.limit - w.buf.Len()
	if remaining <= 0 {
		w.truncated = true
		return len(p), nil
	}
	if len(p) > remaining {
		w.truncated = true
		w.buf.Write(p[:remaining])
		return len(p), nil
	}
	return w.buf.Write(p)
}
