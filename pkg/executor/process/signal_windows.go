//go:build windows

package process

import (
	"fmt"
	"syscall"

	"golang.org/x/sys/windows"
)

// signalProcess approximates signal delivery on Windows. Only SIGKILL
// and SIGTERM are supported, both via TerminateProcess.
func signalProcess(pid, sig int) error {
	switch syscall.Signal(sig) {
	case syscall.SIGKILL, syscall.SIGTERM:
	default:
		return fmt.Errorf("signal %d not supported on windows", sig)
	}

	handle, err := windows.OpenProcess(windows.PROCESS_TERMINATE, false, uint32(pid))
	if err != nil {
		return err
	}
	defer windows.CloseHandle(handle)

	exitCode := uint32(128 + sig)
	return windows.TerminateProcess(handle, exitCode)
}
