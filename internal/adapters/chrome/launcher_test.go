//go:build unix

package chrome

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/sso-harvest/internal/domain"
)

// TestHelperProcess stands in for the browser binary in launcher tests.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}

	port := ""
	for _, arg := range os.Args {
		if value, ok := strings.CutPrefix(arg, "--remote-debugging-port="); ok {
			port = value
		}
	}

	switch os.Getenv("HELPER_MODE") {
	case "exit":
		os.Exit(3)
	case "silent":
		time.Sleep(time.Minute)
	case "ignore-term":
		signal.Ignore(syscall.SIGTERM)
		time.Sleep(time.Minute)
	case "serve":
		ln, err := net.Listen("tcp", "127.0.0.1:"+port)
		if err != nil {
			os.Exit(4)
		}
		go func() {
			_ = http.Serve(ln, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				fmt.Fprintf(w, `{"Browser":"Helper/1.0","webSocketDebuggerUrl":"ws://127.0.0.1:%s/devtools/browser/helper"}`, port)
			}))
		}()
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGTERM)
		select {
		case <-stop:
		case <-time.After(time.Minute):
		}
	}
	os.Exit(0)
}

func helperCommand(mode string) func(name string, args ...string) *exec.Cmd {
	return func(name string, args ...string) *exec.Cmd {
		cs := append([]string{"-test.run=TestHelperProcess", "--", name}, args...)
		cmd := exec.Command(os.Args[0], cs...)
		cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1", "HELPER_MODE="+mode)
		return cmd
	}
}

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())
	return port
}

func newTestLauncher(t *testing.T, mode string, opts Options) *Launcher {
	t.Helper()
	if opts.Port == 0 {
		opts.Port = freePort(t)
	}
	if opts.TerminateGrace == 0 {
		opts.TerminateGrace = 2 * time.Second
	}
	l := NewLauncher(opts, nil, nil)
	l.pollInterval = 20 * time.Millisecond
	l.command = helperCommand(mode)
	l.resolve = func(string) (string, error) { return "/opt/google/chrome/chrome", nil }
	return l
}

func TestArgs(t *testing.T) {
	t.Parallel()

	l := NewLauncher(Options{
		UserDataDir:       "/home/u/.config/google-chrome",
		Port:              9333,
		DisableExtensions: true,
		ExtraArgs:         []string{"--window-size=800,600"},
	}, nil, nil)

	assert.Equal(t, []string{
		"--user-data-dir=/home/u/.config/google-chrome",
		"--profile-directory=Profile 1",
		"--remote-debugging-port=9333",
		"--no-first-run",
		"--no-default-browser-check",
		"--disable-extensions",
		"--window-size=800,600",
		"about:blank",
	}, l.Args("Profile 1"))
}

func TestArgsWithoutUserDataDir(t *testing.T) {
	t.Parallel()

	args := NewLauncher(Options{}, nil, nil).Args("Default")
	assert.Equal(t, "--profile-directory=Default", args[0])
	assert.Contains(t, args, "--remote-debugging-port=9333")
	assert.NotContains(t, args, "--disable-extensions")
}

func TestLaunchReadyTerminate(t *testing.T) {
	t.Parallel()

	l := newTestLauncher(t, "serve", Options{})
	instance, err := l.Launch(context.Background(), "Default")
	require.NoError(t, err)
	assert.Positive(t, instance.PID())
	assert.Equal(t, domain.ProfileID("Default"), instance.Profile())

	require.NoError(t, l.WaitReady(context.Background(), instance, 10*time.Second))
	require.NoError(t, l.Terminate(context.Background(), instance))

	select {
	case <-instance.Exited():
	default:
		t.Fatal("process still running after terminate")
	}

	require.NoError(t, l.Terminate(context.Background(), instance))
}

func TestWaitReadyEarlyExit(t *testing.T) {
	t.Parallel()

	l := newTestLauncher(t, "exit", Options{})
	instance, err := l.Launch(context.Background(), "Default")
	require.NoError(t, err)

	err = l.WaitReady(context.Background(), instance, 10*time.Second)
	require.ErrorIs(t, err, domain.ErrLaunch)
	require.NoError(t, l.Terminate(context.Background(), instance))
}

func TestWaitReadyTimeout(t *testing.T) {
	t.Parallel()

	l := newTestLauncher(t, "silent", Options{})
	instance, err := l.Launch(context.Background(), "Default")
	require.NoError(t, err)
	defer func() { _ = l.Terminate(context.Background(), instance) }()

	err = l.WaitReady(context.Background(), instance, 150*time.Millisecond)
	require.ErrorIs(t, err, domain.ErrTimeout)
	assert.NotErrorIs(t, err, domain.ErrLaunch)
}

func TestTerminateEscalatesToKill(t *testing.T) {
	t.Parallel()

	l := newTestLauncher(t, "ignore-term", Options{TerminateGrace: 200 * time.Millisecond})
	instance, err := l.Launch(context.Background(), "Default")
	require.NoError(t, err)

	// Give the helper time to install its signal handler.
	time.Sleep(300 * time.Millisecond)

	started := time.Now()
	require.NoError(t, l.Terminate(context.Background(), instance))
	assert.GreaterOrEqual(t, time.Since(started), 200*time.Millisecond)

	select {
	case <-instance.Exited():
	default:
		t.Fatal("process survived forced kill")
	}
}

func TestTerminateWaitsForPortRelease(t *testing.T) {
	t.Parallel()

	l := newTestLauncher(t, "silent", Options{PortReleaseDelay: 150 * time.Millisecond})
	instance, err := l.Launch(context.Background(), "Default")
	require.NoError(t, err)

	started := time.Now()
	require.NoError(t, l.Terminate(context.Background(), instance))
	assert.GreaterOrEqual(t, time.Since(started), 150*time.Millisecond)
}

func TestTerminateExitedInstanceStillWaitsForPortRelease(t *testing.T) {
	t.Parallel()

	l := newTestLauncher(t, "exit", Options{PortReleaseDelay: 150 * time.Millisecond})
	instance, err := l.Launch(context.Background(), "Default")
	require.NoError(t, err)

	select {
	case <-instance.Exited():
	case <-time.After(10 * time.Second):
		t.Fatal("helper did not exit")
	}

	started := time.Now()
	require.NoError(t, l.Terminate(context.Background(), instance))
	assert.GreaterOrEqual(t, time.Since(started), 150*time.Millisecond)
}

func TestLaunchCancelledContext(t *testing.T) {
	t.Parallel()

	l := newTestLauncher(t, "serve", Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := l.Launch(ctx, "Default")
	require.ErrorIs(t, err, domain.ErrLaunch)
}

func TestLaunchExecutableNotFound(t *testing.T) {
	t.Parallel()

	l := NewLauncher(Options{Executable: filepath.Join(t.TempDir(), "missing-chrome")}, nil, nil)
	_, err := l.Launch(context.Background(), "Default")
	require.ErrorIs(t, err, domain.ErrExecutableNotFound)
	require.ErrorIs(t, l.KillStray(context.Background()), domain.ErrExecutableNotFound)
}

func TestResolveExecutableConfiguredPath(t *testing.T) {
	t.Parallel()

	exe := filepath.Join(t.TempDir(), "chrome")
	require.NoError(t, os.WriteFile(exe, []byte("#!/bin/sh\n"), 0o755))

	got, err := ResolveExecutable(exe)
	require.NoError(t, err)
	assert.Equal(t, exe, got)

	_, err = ResolveExecutable(t.TempDir())
	require.ErrorIs(t, err, domain.ErrExecutableNotFound)
}

func TestProcessName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "chrome", ProcessName("/opt/google/chrome/chrome"))
}

// The tests below swap package-level seams and must not run in parallel.

func TestKillStrayNoMatchIsNotAnError(t *testing.T) {
	restore := stubExec(t, 1)
	defer restore()

	l := newTestLauncher(t, "serve", Options{KillStray: true})
	require.NoError(t, l.KillStray(context.Background()))
}

func TestKillStrayReportsFailures(t *testing.T) {
	restore := stubExec(t, 2)
	defer restore()

	l := newTestLauncher(t, "serve", Options{KillStray: true, ProcessName: "chrome"})
	err := l.KillStray(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kill stray chrome processes")
}

func TestKillStrayDisabled(t *testing.T) {
	restore := stubExec(t, 2)
	defer restore()

	l := newTestLauncher(t, "serve", Options{KillStray: false})
	require.NoError(t, l.KillStray(context.Background()))
}

func TestResolveExecutableSearchesPath(t *testing.T) {
	original := lookPath
	defer func() { lookPath = original }()

	lookPath = func(file string) (string, error) {
		if file == "google-chrome" || file == "chromium" {
			return "/usr/bin/" + file, nil
		}
		return "", errors.New("not found")
	}

	got, err := ResolveExecutable("chromium")
	require.NoError(t, err)
	assert.Equal(t, "/usr/bin/chromium", got)
}

func stubExec(t *testing.T, exitCode int) func() {
	t.Helper()
	original := execCommandContext
	execCommandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		return exec.CommandContext(ctx, "sh", "-c", fmt.Sprintf("exit %d", exitCode))
	}
	return func() { execCommandContext = original }
}
