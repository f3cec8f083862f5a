//go:build windows

package chrome

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"strconv"
	"syscall"
	"time"
)

const taskkillTimeout = 10 * time.Second

func sysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP}
}

func terminateGraceful(p *os.Process) error {
	return taskkill("/T", "/PID", strconv.Itoa(p.Pid))
}

func terminateForced(p *os.Process) error {
	return taskkill("/F", "/T", "/PID", strconv.Itoa(p.Pid))
}

func taskkill(args ...string) error {
	ctx, cancel := context.WithTimeout(context.Background(), taskkillTimeout)
	defer cancel()
	_, _, err := execCapture(ctx, "taskkill", args)
	return err
}

func strayKillCommand(processName string) (string, []string) {
	return "taskkill", []string{"/F", "/IM", processName}
}

// taskkill exits 128 when no process matched the image name.
func strayNoMatch(err error) bool {
	var exitErr *exec.ExitError
	return errors.As(err, &exitErr) && exitErr.ExitCode() == 128
}
