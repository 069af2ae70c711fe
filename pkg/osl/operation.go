// Package osl defines the core contracts of the OS abstraction framework:
// operations, permissions, execution contexts, middleware, and executors.
//
// Everything that flows through the framework implements or consumes these
// types. Concrete operations live in pkg/operations, host-side executors in
// pkg/executor, and pipeline orchestration in pkg/framework.
package osl

import "time"

// OperationType categorizes operations for executor dispatch and
// permission checking.
type OperationType string

const (
	// TypeFilesystem covers file and directory operations.
	TypeFilesystem OperationType = "filesystem"
	// TypeProcess covers process management (spawn, kill, signal).
	TypeProcess OperationType = "process"
	// TypeNetwork covers socket creation, connect, and listen.
	TypeNetwork OperationType = "network"
	// TypeUtility covers external utility execution (docker, gh, ...).
	TypeUtility OperationType = "utility"
)

// Valid reports whether t is a known operation type.
func (t OperationType) Valid() bool {
	switch t {
	case TypeFilesystem, TypeProcess, TypeNetwork, TypeUtility:
		return true
	}
	return false
}

// Operation is a single unit of OS-level work. Operations are stateless
// value objects: they carry everything needed for execution, are consumed
// once by the pipeline, and discarded afterwards.
type Operation interface {
	// Type returns the operation category used for executor dispatch.
	Type() OperationType

	// ID returns the unique identifier stamped at construction.
	ID() string

	// CreatedAt returns when the operation was constructed (UTC).
	CreatedAt() time.Time

	// RequiredPermissions returns the capabilities a caller must hold
	// for this operation to be authorized.
	RequiredPermissions() []Permission
}

// Permission is a capability requirement attached to an operation.
// Action is a fixed verb like "file:read"; Resource narrows it to a
// concrete path, address, or utility name and may be empty for
// resource-less capabilities such as process spawning.
type Permission struct {
	Action   string
	Resource string
}

// String renders the permission as "action" or "action:resource".
func (p Permission) String() string {
	if p.Resource == "" {
		return p.Action
	}
	return p.Action + ":" + p.Resource
}

// Permission actions understood by the built-in policies.
const (
	ActionFilesystemRead    = "file:read"
	ActionFilesystemWrite   = "file:write"
	ActionFilesystemExecute = "file:execute"
	ActionProcessSpawn      = "process:spawn"
	ActionProcessManage     = "process:manage"
	ActionNetworkSocket     = "network:socket"
	ActionNetworkConnect    = "network:connect"
	ActionUtilityExecute    = "utility:execute"
)

// FilesystemRead requires read access to path.
func FilesystemRead(path string) Permission {
	return Permission{Action: ActionFilesystemRead, Resource: path}
}

// FilesystemWrite requires write access to path.
func FilesystemWrite(path string) Permission {
	return Permission{Action: ActionFilesystemWrite, Resource: path}
}

// FilesystemExecute requires execute access to path.
func FilesystemExecute(path string) Permission {
	return Permission{Action: ActionFilesystemExecute, Resource: path}
}

// ProcessSpawn requires permission to start new processes.
func ProcessSpawn() Permission {
	return Permission{Action: ActionProcessSpawn}
}

// ProcessManage requires permission to kill or signal processes.
func ProcessManage() Permission {
	return Permission{Action: ActionProcessManage}
}

// NetworkSocket requires permission to create sockets.
func NetworkSocket() Permission {
	return Permission{Action: ActionNetworkSocket}
}

// NetworkConnect requires permission to connect to addr.
func NetworkConnect(addr string) Permission {
	return Permission{Action: ActionNetworkConnect, Resource: addr}
}

// UtilityExecute requires permission to run the named external utility.
func UtilityExecute(name string) Permission {
	return Permission{Action: ActionUtilityExecute, Resource: name}
}
