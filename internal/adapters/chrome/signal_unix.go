//go:build unix

package chrome

import (
	"errors"
	"os"
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// Each browser gets its own process group so renderer and helper children
// receive the same signal as the parent.
func sysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setpgid: true}
}

func terminateGraceful(p *os.Process) error {
	return signalGroup(p, unix.SIGTERM)
}

func terminateForced(p *os.Process) error {
	return signalGroup(p, unix.SIGKILL)
}

func signalGroup(p *os.Process, sig unix.Signal) error {
	pgid, err := unix.Getpgid(p.Pid)
	if err == nil && pgid == p.Pid {
		err = unix.Kill(-pgid, sig)
	} else {
		err = p.Signal(sig)
	}
	if errors.Is(err, unix.ESRCH) || errors.Is(err, os.ErrProcessDone) {
		return nil
	}
	return err
}

func strayKillCommand(processName string) (string, []string) {
	return "pkill", []string{"-x", processName}
}

// pkill exits 1 when no process matched.
func strayNoMatch(err error) bool {
	var exitErr *exec.ExitError
	return errors.As(err, &exitErr) && exitErr.ExitCode() == 1
}
