package chrome

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/exec"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/bnema/sso-harvest/internal/adapters/cdp"
	"github.com/bnema/sso-harvest/internal/domain"
	"github.com/bnema/sso-harvest/internal/ports"
)

const (
	DefaultPort             = 9333
	DefaultTerminateGrace   = 5 * time.Second
	DefaultPortReleaseDelay = 2 * time.Second
	defaultPollInterval     = 250 * time.Millisecond
	probeTimeout            = time.Second
	killWait                = 5 * time.Second
)

var _ ports.BrowserLauncher = (*Launcher)(nil)

type Options struct {
	Executable        string
	ProcessName       string
	UserDataDir       string
	Port              int
	ExtraArgs         []string
	DisableExtensions bool
	KillStray         bool
	StartupDelay      time.Duration
	TerminateGrace    time.Duration
	PortReleaseDelay  time.Duration
}

// Launcher starts one browser per profile with a debug port and owns the
// process until Terminate.
type Launcher struct {
	opts         Options
	httpClient   *http.Client
	logger       *zap.Logger
	pollInterval time.Duration
	now          func() time.Time
	command      func(name string, args ...string) *exec.Cmd

	once    sync.Once
	exe     string
	exeErr  error
	resolve func(string) (string, error)
}

func NewLauncher(opts Options, httpClient *http.Client, logger *zap.Logger) *Launcher {
	if opts.Port <= 0 {
		opts.Port = DefaultPort
	}
	if opts.TerminateGrace <= 0 {
		opts.TerminateGrace = DefaultTerminateGrace
	}
	if opts.PortReleaseDelay < 0 {
		opts.PortReleaseDelay = 0
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: probeTimeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Launcher{
		opts:         opts,
		httpClient:   httpClient,
		logger:       logger.Named("chrome"),
		pollInterval: defaultPollInterval,
		now:          time.Now,
		command:      exec.Command,
		resolve:      ResolveExecutable,
	}
}

func (l *Launcher) Port() int {
	return l.opts.Port
}

// Executable resolves the browser binary once and caches the answer.
func (l *Launcher) Executable() (string, error) {
	l.once.Do(func() {
		l.exe, l.exeErr = l.resolve(l.opts.Executable)
	})
	return l.exe, l.exeErr
}

func (l *Launcher) Args(profile domain.ProfileID) []string {
	args := make([]string, 0, 8+len(l.opts.ExtraArgs))
	if l.opts.UserDataDir != "" {
		args = append(args, "--user-data-dir="+l.opts.UserDataDir)
	}
	args = append(args,
		"--profile-directory="+string(profile),
		"--remote-debugging-port="+strconv.Itoa(l.opts.Port),
		"--no-first-run",
		"--no-default-browser-check",
	)
	if l.opts.DisableExtensions {
		args = append(args, "--disable-extensions")
	}
	args = append(args, l.opts.ExtraArgs...)
	return append(args, "about:blank")
}

func (l *Launcher) Launch(ctx context.Context, profile domain.ProfileID) (ports.ProcessInstance, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrLaunch, err)
	}

	exe, err := l.Executable()
	if err != nil {
		return nil, err
	}

	cmd := l.command(exe, l.Args(profile)...)
	cmd.SysProcAttr = sysProcAttr()
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: start %s: %w", domain.ErrLaunch, exe, err)
	}

	p := &process{
		cmd:     cmd,
		pid:     cmd.Process.Pid,
		port:    l.opts.Port,
		profile: profile,
		started: l.now(),
		done:    make(chan struct{}),
	}
	go p.wait()

	l.logger.Info("browser launched",
		zap.String("profile", string(profile)),
		zap.Int("pid", p.pid),
		zap.Int("port", p.port),
	)
	return p, nil
}

// WaitReady polls the debug endpoint until it answers, the process exits,
// or timeout elapses.
func (l *Launcher) WaitReady(ctx context.Context, instance ports.ProcessInstance, timeout time.Duration) error {
	p, err := asProcess(instance)
	if err != nil {
		return err
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	if l.opts.StartupDelay > 0 {
		timer := time.NewTimer(l.opts.StartupDelay)
		select {
		case <-timer.C:
		case <-p.done:
			timer.Stop()
			return p.exitedEarly()
		case <-ctx.Done():
			timer.Stop()
			return notReady(ctx, p, nil)
		}
	}

	ticker := time.NewTicker(l.pollInterval)
	defer ticker.Stop()

	var lastErr error
	for {
		probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
		info, err := cdp.FetchVersion(probeCtx, l.httpClient, cdp.DefaultHost, p.port)
		cancel()
		if err == nil {
			l.logger.Debug("debug endpoint ready",
				zap.String("profile", string(p.profile)),
				zap.String("browser", info.Browser),
				zap.Duration("after", l.now().Sub(p.started)),
			)
			return nil
		}
		lastErr = err

		select {
		case <-p.done:
			return p.exitedEarly()
		case <-ctx.Done():
			return notReady(ctx, p, lastErr)
		case <-ticker.C:
		}
	}
}

// Terminate asks the browser to exit, escalates to a forced kill after the
// grace period, then waits for the port to be released. An instance that
// already exited is not signalled but still gets the port-release wait.
func (l *Launcher) Terminate(ctx context.Context, instance ports.ProcessInstance) error {
	p, err := asProcess(instance)
	if err != nil {
		return err
	}

	select {
	case <-p.done:
		l.waitPortRelease(ctx)
		return nil
	default:
	}

	log := l.logger.With(zap.String("profile", string(p.profile)), zap.Int("pid", p.pid))
	if err := terminateGraceful(p.cmd.Process); err != nil {
		log.Debug("graceful terminate", zap.Error(err))
	}

	grace := time.NewTimer(l.opts.TerminateGrace)
	defer grace.Stop()

	select {
	case <-p.done:
		log.Debug("browser exited")
	case <-grace.C:
		log.Warn("browser ignored terminate, killing", zap.Duration("grace", l.opts.TerminateGrace))
		if err := l.forceKill(p); err != nil {
			return err
		}
	case <-ctx.Done():
		if err := l.forceKill(p); err != nil {
			return err
		}
	}

	l.waitPortRelease(ctx)
	return nil
}

func (l *Launcher) waitPortRelease(ctx context.Context) {
	if l.opts.PortReleaseDelay <= 0 {
		return
	}
	timer := time.NewTimer(l.opts.PortReleaseDelay)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

func (l *Launcher) forceKill(p *process) error {
	if err := terminateForced(p.cmd.Process); err != nil {
		return fmt.Errorf("kill browser pid %d: %w", p.pid, err)
	}
	timer := time.NewTimer(killWait)
	defer timer.Stop()
	select {
	case <-p.done:
		return nil
	case <-timer.C:
		return fmt.Errorf("browser pid %d still running %s after kill", p.pid, killWait)
	}
}

// KillStray force-kills every process named like the browser. It is the
// fallback for processes the tracked handles missed; no match is not an error.
func (l *Launcher) KillStray(ctx context.Context) error {
	exe, err := l.Executable()
	if err != nil {
		return err
	}
	if !l.opts.KillStray {
		return nil
	}

	processName := l.opts.ProcessName
	if processName == "" {
		processName = ProcessName(exe)
	}

	name, args := strayKillCommand(processName)
	_, stderr, err := execCapture(ctx, name, args)
	if err != nil {
		if strayNoMatch(err) {
			return nil
		}
		return fmt.Errorf("kill stray %s processes: %w (%s)", processName, err, stderr)
	}

	l.logger.Info("stray browser processes killed", zap.String("process", processName))
	return nil
}

func notReady(ctx context.Context, p *process, lastErr error) error {
	if !errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", domain.ErrLaunch, ctx.Err())
	}
	if lastErr == nil {
		lastErr = ctx.Err()
	}
	return fmt.Errorf("%w: debug endpoint on port %d not ready: %w", domain.ErrTimeout, p.port, lastErr)
}

func asProcess(instance ports.ProcessInstance) (*process, error) {
	p, ok := instance.(*process)
	if !ok || p == nil {
		return nil, fmt.Errorf("unsupported process instance %T", instance)
	}
	return p, nil
}
