package operations

import (
	"time"

	"github.com/airsstack/airssys-osl/pkg/osl"
)

// ProcessSpawn starts a new process and waits for it to exit, capturing
// combined output.
type ProcessSpawn struct {
	meta

	// Command is the executable to run.
	Command string

	// Args are the command arguments.
	Args []string

	// Env holds additions or overrides to the inherited environment,
	// as KEY=VALUE pairs.
	Env []string

	// WorkingDir is the working directory; empty inherits the parent's.
	WorkingDir string

	// Timeout bounds the process runtime; zero means no bound beyond
	// the caller's context.
	Timeout time.Duration
}

// NewProcessSpawn creates a spawn operation for command with args.
func NewProcessSpawn(command string, args ...string) *ProcessSpawn {
	return &ProcessSpawn{meta: newMeta(), Command: command, Args: args}
}

// WithEnv appends environment overrides (KEY=VALUE).
func (o *ProcessSpawn) WithEnv(kv ...string) *ProcessSpawn {
	o.Env = append(o.Env, kv...)
	return o
}

// WithWorkingDir sets the working directory.
func (o *ProcessSpawn) WithWorkingDir(dir string) *ProcessSpawn {
	o.WorkingDir = dir
	return o
}

// WithTimeout bounds the process runtime.
func (o *ProcessSpawn) WithTimeout(d time.Duration) *ProcessSpawn {
	o.Timeout = d
	return o
}

// WithID overrides the stamped operation ID.
func (o *ProcessSpawn) WithID(id string) *ProcessSpawn { o.setID(id); return o }

func (o *ProcessSpawn) Type() osl.OperationType { return osl.TypeProcess }

func (o *ProcessSpawn) RequiredPermissions() []osl.Permission {
	return []osl.Permission{
		osl.ProcessSpawn(),
		osl.FilesystemExecute(o.Command),
	}
}

// ProcessKill forcibly terminates a process by PID.
type ProcessKill struct {
	meta

	// PID identifies the process to kill.
	PID int
}

// NewProcessKill creates a kill operation for pid.
func NewProcessKill(pid int) *ProcessKill {
	return &ProcessKill{meta: newMeta(), PID: pid}
}

// WithID overrides the stamped operation ID.
func (o *ProcessKill) WithID(id string) *ProcessKill { o.setID(id); return o }

func (o *ProcessKill) Type() osl.OperationType { return osl.TypeProcess }

func (o *ProcessKill) RequiredPermissions() []osl.Permission {
	return []osl.Permission{osl.ProcessManage()}
}

// ProcessSignal sends a signal to a process by PID. Signal numbers use
// the platform's numbering; delivery is unsupported on Windows.
type ProcessSignal struct {
	meta

	// PID identifies the target process.
	PID int

	// Signal is the signal number to deliver.
	Signal int
}

// NewProcessSignal creates a signal operation for pid.
func NewProcessSignal(pid, signal int) *ProcessSignal {
	return &ProcessSignal{meta: newMeta(), PID: pid, Signal: signal}
}

// WithID overrides the stamped operation ID.
func (o *ProcessSignal) WithID(id string) *ProcessSignal { o.setID(id); return o }

func (o *ProcessSignal) Type() osl.OperationType { return osl.TypeProcess }

func (o *ProcessSignal) RequiredPermissions() []osl.Permission {
	return []osl.Permission{osl.ProcessManage()}
}
