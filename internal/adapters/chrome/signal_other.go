//go:build !unix && !windows

package chrome

import (
	"os"
	"syscall"
)

func sysProcAttr() *syscall.SysProcAttr { return nil }

func terminateGraceful(p *os.Process) error { return p.Kill() }

func terminateForced(p *os.Process) error { return p.Kill() }

func strayKillCommand(processName string) (string, []string) {
	return "pkill", []string{"-x", processName}
}

func strayNoMatch(error) bool { return false }
