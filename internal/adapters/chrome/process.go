package chrome

import (
	"fmt"
	"os/exec"
	"time"

	"github.com/bnema/sso-harvest/internal/domain"
)

type process struct {
	cmd     *exec.Cmd
	pid     int
	port    int
	profile domain.ProfileID
	started time.Time

	done    chan struct{}
	waitErr error
}

func (p *process) PID() int                  { return p.pid }
func (p *process) Port() int                 { return p.port }
func (p *process) Profile() domain.ProfileID { return p.profile }
func (p *process) StartedAt() time.Time      { return p.started }
func (p *process) Exited() <-chan struct{}   { return p.done }

func (p *process) wait() {
	p.waitErr = p.cmd.Wait()
	close(p.done)
}

// exitedEarly must only be called after done is closed.
func (p *process) exitedEarly() error {
	if p.waitErr != nil {
		return fmt.Errorf("%w: browser exited before debug endpoint came up: %w", domain.ErrLaunch, p.waitErr)
	}
	return fmt.Errorf("%w: browser exited before debug endpoint came up", domain.ErrLaunch)
}
