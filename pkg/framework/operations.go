package framework

import (
	"context"
	"time"

	"github.com/airsstack/airssys-osl/pkg/operations"
	"github.com/airsstack/airssys-osl/pkg/osl"
)

// FilesystemOps is the fluent entry point for filesystem operations.
type FilesystemOps struct {
	fw *Framework
}

// Filesystem returns the filesystem operation facade.
func (f *Framework) Filesystem() FilesystemOps { return FilesystemOps{fw: f} }

// ReadFile reads the file at path.
func (o FilesystemOps) ReadFile(ctx context.Context, path string) (*osl.ExecutionResult, error) {
	return o.fw.Execute(ctx, operations.NewFileRead(path))
}

// WriteFile writes content to path, replacing any existing file.
func (o FilesystemOps) WriteFile(ctx context.Context, path string, content []byte) (*osl.ExecutionResult, error) {
	return o.fw.Execute(ctx, operations.NewFileWrite(path, content))
}

// AppendFile appends content to path, creating it if needed.
func (o FilesystemOps) AppendFile(ctx context.Context, path string, content []byte) (*osl.ExecutionResult, error) {
	return o.fw.Execute(ctx, operations.NewFileAppend(path, content))
}

// DeleteFile removes the file at path.
func (o FilesystemOps) DeleteFile(ctx context.Context, path string) (*osl.ExecutionResult, error) {
	return o.fw.Execute(ctx, operations.NewFileDelete(path))
}

// CreateDir creates the directory at path; parents must exist.
func (o FilesystemOps) CreateDir(ctx context.Context, path string) (*osl.ExecutionResult, error) {
	return o.fw.Execute(ctx, operations.NewDirCreate(path))
}

// CreateDirAll creates the directory at path along with missing parents.
func (o FilesystemOps) CreateDirAll(ctx context.Context, path string) (*osl.ExecutionResult, error) {
	return o.fw.Execute(ctx, operations.NewDirCreateAll(path))
}

// ListDir returns the directory listing at path as JSON output.
func (o FilesystemOps) ListDir(ctx context.Context, path string) (*osl.ExecutionResult, error) {
	return o.fw.Execute(ctx, operations.NewDirList(path))
}

// ProcessOps is the fluent entry point for process operations.
type ProcessOps struct {
	fw *Framework
}

// Process returns the process operation facade.
func (f *Framework) Process() ProcessOps { return ProcessOps{fw: f} }

// Spawn runs command with args and waits for it to exit.
func (o ProcessOps) Spawn(ctx context.Context, command string, args ...string) (*osl.ExecutionResult, error) {
	return o.fw.Execute(ctx, operations.NewProcessSpawn(command, args...))
}

// SpawnWithTimeout runs command bounded by timeout.
func (o ProcessOps) SpawnWithTimeout(ctx context.Context, timeout time.Duration, command string, args ...string) (*osl.ExecutionResult, error) {
	return o.fw.Execute(ctx, operations.NewProcessSpawn(command, args...).WithTimeout(timeout))
}

// Kill forcibly terminates the process with pid.
func (o ProcessOps) Kill(ctx context.Context, pid int) (*osl.ExecutionResult, error) {
	return o.fw.Execute(ctx, operations.NewProcessKill(pid))
}

// Signal delivers a numeric signal to the process with pid.
func (o ProcessOps) Signal(ctx context.Context, pid, signal int) (*osl.ExecutionResult, error) {
	return o.fw.Execute(ctx, operations.NewProcessSignal(pid, signal))
}

// NetworkOps is the fluent entry point for network operations.
type NetworkOps struct {
	fw *Framework
}

// Network returns the network operation facade.
func (f *Framework) Network() NetworkOps { return NetworkOps{fw: f} }

// Connect probes TCP reachability of addr.
func (o NetworkOps) Connect(ctx context.Context, addr string) (*osl.ExecutionResult, error) {
	return o.fw.Execute(ctx, operations.NewNetworkConnect(addr))
}

// Listen probes that a TCP listener can bind addr.
func (o NetworkOps) Listen(ctx context.Context, addr string) (*osl.ExecutionResult, error) {
	return o.fw.Execute(ctx, operations.NewNetworkListen(addr))
}

// ListenUnix probes that a unix domain socket can bind socketPath.
func (o NetworkOps) ListenUnix(ctx context.Context, socketPath string) (*osl.ExecutionResult, error) {
	return o.fw.Execute(ctx, operations.NewUnixListen(socketPath))
}

// Socket probes socket creation for the given transport kind.
func (o NetworkOps) Socket(ctx context.Context, kind operations.SocketKind) (*osl.ExecutionResult, error) {
	return o.fw.Execute(ctx, operations.NewNetworkSocket(kind))
}
