// Package network executes network operations: outbound connects,
// listener binds, and socket capability probes.
package network

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/airsstack/airssys-osl/pkg/operations"
	"github.com/airsstack/airssys-osl/pkg/osl"
)

// DefaultConnectTimeout bounds dials that do not carry their own timeout.
const DefaultConnectTimeout = 10 * time.Second

// Executor handles osl.TypeNetwork operations.
//
// Connect establishes a TCP connection and closes it immediately,
// reporting reachability. Listen binds and closes a listener, reporting
// that the address is available. Both are probes: the framework mediates
// access, callers own long-lived sockets themselves.
type Executor struct{}

var _ osl.Executor = (*Executor)(nil)

// New returns a network executor.
func New() *Executor { return &Executor{} }

func (e *Executor) Name() string { return "network" }

func (e *Executor) SupportedTypes() []osl.OperationType {
	return []osl.OperationType{osl.TypeNetwork}
}

func (e *Executor) Execute(ctx context.Context, op osl.Operation, ec *osl.ExecutionContext) (*osl.ExecutionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, osl.ExecutionFailed(string(op.Type()), err)
	}

	switch o := op.(type) {
	case *operations.NetworkConnect:
		return e.connect(ctx, o)
	case *operations.NetworkListen:
		return e.listen(o)
	case *operations.NetworkSocket:
		return e.socket(o)
	default:
		return nil, osl.ExecutionFailed("network", fmt.Errorf("unsupported operation %T", op))
	}
}

func (e *Executor) connect(ctx context.Context, op *operations.NetworkConnect) (*osl.ExecutionResult, error) {
	if op.Address == "" {
		return nil, osl.NetworkError("connect", fmt.Errorf("address is empty"))
	}
	timeout := op.Timeout
	if timeout <= 0 {
		timeout = DefaultConnectTimeout
	}

	start := time.Now().UTC()
	dialer := net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "tcp", op.Address)
	if err != nil {
		return nil, osl.NetworkError("connect", err)
	}
	local := conn.LocalAddr().String()
	remote := conn.RemoteAddr().String()
	if err := conn.Close(); err != nil {
		return nil, osl.NetworkError("connect", err)
	}

	res := osl.Success(nil, start, time.Now().UTC())
	res.WithMetadata("local_addr", local)
	res.WithMetadata("remote_addr", remote)
	return res, nil
}

func (e *Executor) listen(op *operations.NetworkListen) (*osl.ExecutionResult, error) {
	network := "tcp"
	addr := op.Address
	if op.SocketPath != "" {
		network = "unix"
		addr = op.SocketPath
	}
	if addr == "" {
		return nil, osl.NetworkError("listen", fmt.Errorf("address is empty"))
	}

	start := time.Now().UTC()
	ln, err := net.Listen(network, addr)
	if err != nil {
		return nil, osl.NetworkError("listen", err)
	}
	bound := ln.Addr().String()
	if err := ln.Close(); err != nil {
		return nil, osl.NetworkError("listen", err)
	}

	res := osl.Success(nil, start, time.Now().UTC())
	res.WithMetadata("network", network)
	res.WithMetadata("bound_addr", bound)
	return res, nil
}

func (e *Executor) socket(op *operations.NetworkSocket) (*osl.ExecutionResult, error) {
	if !op.Kind.Valid() {
		return nil, osl.NetworkError("socket", fmt.Errorf("unknown socket kind %q", op.Kind))
	}

	start := time.Now().UTC()
	switch op.Kind {
	case operations.SocketTCP:
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return nil, osl.NetworkError("socket", err)
		}
		_ = ln.Close()
	case operations.SocketUDP:
		pc, err := net.ListenPacket("udp", "127.0.0.1:0")
		if err != nil {
			return nil, osl.NetworkError("socket", err)
		}
		_ = pc.Close()
	case operations.SocketUnix:
		// Unix sockets need a path; creating one is a listen
		// operation. The probe only confirms the kind is known.
	}

	res := osl.Success(nil, start, time.Now().UTC())
	res.WithMetadata("kind", string(op.Kind))
	return res, nil
}
