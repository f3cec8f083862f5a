package ports

import (
	"context"
	"time"

	"github.com/bnema/sso-harvest/internal/domain"
)

// ProcessInstance is a handle to one launched browser process.
type ProcessInstance interface {
	PID() int
	Port() int
	Profile() domain.ProfileID
	StartedAt() time.Time
	// Exited is closed once the process has been reaped.
	Exited() <-chan struct{}
}

type BrowserLauncher interface {
	Launch(ctx context.Context, profile domain.ProfileID) (ProcessInstance, error)
	WaitReady(ctx context.Context, instance ProcessInstance, timeout time.Duration) error
	Terminate(ctx context.Context, instance ProcessInstance) error
	KillStray(ctx context.Context) error
}

type DebugClient interface {
	Connect(ctx context.Context, port int, timeout time.Duration) (DebugSession, error)
}

type DebugSession interface {
	OpenPage(ctx context.Context) (DebugPage, error)
	ReadCookies(ctx context.Context, urls []string) ([]domain.CookieRecord, error)
	Close() error
}

type DebugPage interface {
	Navigate(ctx context.Context, url string, timeout time.Duration) error
	Close() error
}
