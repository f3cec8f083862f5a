package application

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/bnema/sso-harvest/internal/domain"
	"github.com/bnema/sso-harvest/internal/ports"
)

type fakeInstance struct {
	pid     int
	port    int
	profile domain.ProfileID
	started time.Time
	done    chan struct{}
	once    sync.Once
}

func (i *fakeInstance) PID() int                  { return i.pid }
func (i *fakeInstance) Port() int                 { return i.port }
func (i *fakeInstance) Profile() domain.ProfileID { return i.profile }
func (i *fakeInstance) StartedAt() time.Time      { return i.started }
func (i *fakeInstance) Exited() <-chan struct{}   { return i.done }

func (i *fakeInstance) exit() {
	i.once.Do(func() { close(i.done) })
}

type fakeLauncher struct {
	launchErr map[domain.ProfileID]error
	readyErr  map[domain.ProfileID]error
	strayErr  error

	current    domain.ProfileID
	launched   []domain.ProfileID
	terminated []domain.ProfileID
	strayCalls int
	live       int
	maxLive    int
	nextPID    int
}

func (l *fakeLauncher) Launch(_ context.Context, profile domain.ProfileID) (ports.ProcessInstance, error) {
	if err := l.launchErr[profile]; err != nil {
		return nil, err
	}
	l.nextPID++
	l.current = profile
	l.launched = append(l.launched, profile)
	l.live++
	if l.live > l.maxLive {
		l.maxLive = l.live
	}
	return &fakeInstance{pid: 1000 + l.nextPID, port: 9333, profile: profile, done: make(chan struct{})}, nil
}

func (l *fakeLauncher) WaitReady(ctx context.Context, instance ports.ProcessInstance, _ time.Duration) error {
	if err := l.readyErr[instance.Profile()]; err != nil {
		return err
	}
	return ctx.Err()
}

func (l *fakeLauncher) Terminate(_ context.Context, instance ports.ProcessInstance) error {
	l.terminated = append(l.terminated, instance.Profile())
	l.live--
	instance.(*fakeInstance).exit()
	return nil
}

func (l *fakeLauncher) KillStray(context.Context) error {
	l.strayCalls++
	return l.strayErr
}

type fakeClient struct {
	launcher    *fakeLauncher
	cookies     map[domain.ProfileID][]domain.CookieRecord
	connectErr  map[domain.ProfileID]error
	readErr     map[domain.ProfileID]error
	navigateErr error
	block       map[domain.ProfileID]bool

	connects int
	closed   int
	urls     []string
}

func (c *fakeClient) Connect(ctx context.Context, _ int, timeout time.Duration) (ports.DebugSession, error) {
	c.connects++
	profile := c.launcher.current
	if c.block[profile] {
		waitCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		<-waitCtx.Done()
		return nil, waitCtx.Err()
	}
	if err := c.connectErr[profile]; err != nil {
		return nil, err
	}
	return &fakeSession{client: c, profile: profile}, nil
}

type fakeSession struct {
	client  *fakeClient
	profile domain.ProfileID
}

func (s *fakeSession) OpenPage(context.Context) (ports.DebugPage, error) {
	return &fakePage{err: s.client.navigateErr}, nil
}

func (s *fakeSession) ReadCookies(_ context.Context, urls []string) ([]domain.CookieRecord, error) {
	s.client.urls = urls
	if err := s.client.readErr[s.profile]; err != nil {
		return nil, err
	}
	return s.client.cookies[s.profile], nil
}

func (s *fakeSession) Close() error {
	s.client.closed++
	return nil
}

type fakePage struct {
	err error
}

func (p *fakePage) Navigate(context.Context, string, time.Duration) error { return p.err }
func (p *fakePage) Close() error                                         { return nil }

type staticProfiles []domain.ProfileID

func (p staticProfiles) Profiles(context.Context) ([]domain.ProfileID, error) {
	return p, nil
}

type memoryResults struct {
	saved   []domain.ExtractedToken
	saves   int
	saveErr error
}

func (r *memoryResults) Save(_ context.Context, tokens []domain.ExtractedToken) error {
	r.saves++
	if r.saveErr != nil {
		return r.saveErr
	}
	r.saved = tokens
	return nil
}

func (r *memoryResults) Load(context.Context) ([]domain.ExtractedToken, error) {
	return r.saved, nil
}

func (r *memoryResults) Path() string { return "data/extracted_tokens.json" }

type mockRegistry struct {
	mock.Mock
}

func (m *mockRegistry) Import(ctx context.Context, pool domain.ImportPool) error {
	args := m.Called(ctx, pool)
	return args.Error(0)
}

func (m *mockRegistry) Counts(ctx context.Context) (map[string]int, error) {
	args := m.Called(ctx)
	counts, _ := args.Get(0).(map[string]int)
	return counts, args.Error(1)
}

type memorySecrets struct {
	values map[string]string
	getErr error
}

func (s *memorySecrets) Get(_ context.Context, key string) (string, error) {
	if s.getErr != nil {
		return "", s.getErr
	}
	value, ok := s.values[key]
	if !ok {
		return "", domain.ErrSecretNotFound
	}
	return value, nil
}

func (s *memorySecrets) Put(_ context.Context, key, value string) error {
	if s.values == nil {
		s.values = map[string]string{}
	}
	s.values[key] = value
	return nil
}

func (s *memorySecrets) Delete(_ context.Context, key string) error {
	if _, ok := s.values[key]; !ok {
		return domain.ErrSecretNotFound
	}
	delete(s.values, key)
	return nil
}

type fakeCookieDB struct {
	rows map[domain.ProfileID][]domain.StoredCookie
	errs map[domain.ProfileID]error
}

func (f *fakeCookieDB) ReadCookies(_ context.Context, profile domain.ProfileID, _ []string, _ string) ([]domain.StoredCookie, error) {
	if err := f.errs[profile]; err != nil {
		return nil, err
	}
	return f.rows[profile], nil
}

type fixedClock struct {
	now time.Time
}

func (f fixedClock) Now() time.Time {
	return f.now
}

func ssoCookie(value, host string) domain.CookieRecord {
	return domainCookie("sso", value, host)
}

func domainCookie(name, value, host string) domain.CookieRecord {
	return domain.CookieRecord{Name: name, Value: value, Domain: host, Path: "/", HTTPOnly: true, Secure: true}
}
