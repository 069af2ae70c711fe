//go:build !windows

package process

import "golang.org/x/sys/unix"

// signalProcess delivers a numeric signal to a process.
func signalProcess(pid, sig int) error {
	return unix.Kill(pid, unix.Signal(sig))
}
