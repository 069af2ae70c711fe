package operations

import (
	"time"

	"github.com/airsstack/airssys-osl/pkg/osl"
)

// SocketKind selects the transport for socket and listen operations.
type SocketKind string

const (
	SocketTCP  SocketKind = "tcp"
	SocketUDP  SocketKind = "udp"
	SocketUnix SocketKind = "unix"
)

// Valid reports whether k is a supported socket kind.
func (k SocketKind) Valid() bool {
	switch k {
	case SocketTCP, SocketUDP, SocketUnix:
		return true
	}
	return false
}

// NetworkConnect establishes (and immediately closes) a TCP connection,
// verifying that the address is reachable under the current policy.
type NetworkConnect struct {
	meta

	// Address is the host:port to connect to.
	Address string

	// Timeout bounds the connection attempt; zero uses the dialer
	// default.
	Timeout time.Duration
}

// NewNetworkConnect creates a connect operation for addr.
func NewNetworkConnect(addr string) *NetworkConnect {
	return &NetworkConnect{meta: newMeta(), Address: addr}
}

// WithTimeout bounds the connection attempt.
func (o *NetworkConnect) WithTimeout(d time.Duration) *NetworkConnect {
	o.Timeout = d
	return o
}

// WithID overrides the stamped operation ID.
func (o *NetworkConnect) WithID(id string) *NetworkConnect { o.setID(id); return o }

func (o *NetworkConnect) Type() osl.OperationType { return osl.TypeNetwork }

func (o *NetworkConnect) RequiredPermissions() []osl.Permission {
	return []osl.Permission{osl.NetworkConnect(o.Address)}
}

// NetworkListen binds a listener, reports the bound address, and releases
// it. For unix sockets set SocketPath instead of Address.
type NetworkListen struct {
	meta

	// Address is the host:port to bind ("127.0.0.1:0" for an ephemeral
	// port). Ignored when SocketPath is set.
	Address string

	// SocketPath, when non-empty, binds a unix domain socket at this
	// filesystem path.
	SocketPath string
}

// NewNetworkListen creates a TCP listen operation for addr.
func NewNetworkListen(addr string) *NetworkListen {
	return &NetworkListen{meta: newMeta(), Address: addr}
}

// NewUnixListen creates a unix domain socket listen operation.
func NewUnixListen(socketPath string) *NetworkListen {
	return &NetworkListen{meta: newMeta(), SocketPath: socketPath}
}

// WithID overrides the stamped operation ID.
func (o *NetworkListen) WithID(id string) *NetworkListen { o.setID(id); return o }

func (o *NetworkListen) Type() osl.OperationType { return osl.TypeNetwork }

func (o *NetworkListen) RequiredPermissions() []osl.Permission {
	perms := []osl.Permission{osl.NetworkSocket()}
	if o.SocketPath != "" {
		perms = append(perms, osl.FilesystemWrite(o.SocketPath))
	}
	return perms
}

// NetworkSocket probes socket creation for a transport kind without
// binding a caller-visible address.
type NetworkSocket struct {
	meta

	// Kind is the transport to probe.
	Kind SocketKind
}

// NewNetworkSocket creates a socket probe operation.
func NewNetworkSocket(kind SocketKind) *NetworkSocket {
	return &NetworkSocket{meta: newMeta(), Kind: kind}
}

// WithID overrides the stamped operation ID.
func (o *NetworkSocket) WithID(id string) *NetworkSocket { o.setID(id); return o }

func (o *NetworkSocket) Type() osl.OperationType { return osl.TypeNetwork }

func (o *NetworkSocket) RequiredPermissions() []osl.Permission {
	return []osl.Permission{osl.NetworkSocket()}
}
