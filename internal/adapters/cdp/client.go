package cdp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/bnema/sso-harvest/internal/domain"
	"github.com/bnema/sso-harvest/internal/ports"
)

var (
	_ ports.DebugClient  = (*Client)(nil)
	_ ports.DebugSession = (*Session)(nil)
	_ ports.DebugPage    = (*Page)(nil)
)

// Client attaches to an already running browser through its debug port.
type Client struct {
	HTTPClient *http.Client
	Host       string
	Logger     *zap.Logger
}

func NewClient(httpClient *http.Client, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{HTTPClient: httpClient, Host: DefaultHost, Logger: logger.Named("cdp")}
}

func (c *Client) Connect(ctx context.Context, port int, timeout time.Duration) (ports.DebugSession, error) {
	probeCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		probeCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	info, err := FetchVersion(probeCtx, c.HTTPClient, c.Host, port)
	if err != nil {
		return nil, connectErr(probeCtx, err)
	}
	c.logger().Debug("debug endpoint found", zap.String("browser", info.Browser), zap.Int("port", port))

	allocCtx, allocCancel := chromedp.NewRemoteAllocator(ctx, info.WebSocketDebuggerURL, chromedp.NoModifyURL)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// The first Run attaches to the browser. Its context must outlive the
	// session, so the connect bound is enforced here instead of through it.
	attached := make(chan error, 1)
	go func() { attached <- chromedp.Run(browserCtx) }()

	var attachErr error
	select {
	case attachErr = <-attached:
	case <-probeCtx.Done():
		browserCancel()
		allocCancel()
		<-attached
		return nil, connectErr(probeCtx, probeCtx.Err())
	}
	if attachErr != nil {
		browserCancel()
		allocCancel()
		return nil, connectErr(probeCtx, attachErr)
	}

	return &Session{
		ctx:         browserCtx,
		cancel:      browserCancel,
		allocCancel: allocCancel,
		logger:      c.logger(),
	}, nil
}

func (c *Client) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

func connectErr(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w: %w", domain.ErrConnect, domain.ErrTimeout, err)
	}
	return fmt.Errorf("%w: %w", domain.ErrConnect, err)
}

type Session struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	logger      *zap.Logger
}

// OpenPage opens a new tab in the default browser context, which shares the
// profile's cookie jar.
func (s *Session) OpenPage(ctx context.Context) (ports.DebugPage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pageCtx, cancel := chromedp.NewContext(s.ctx)
	return &Page{ctx: pageCtx, cancel: cancel, logger: s.logger}, nil
}

// ReadCookies returns every cookie that applies to urls, HTTP-only ones included.
func (s *Session) ReadCookies(ctx context.Context, urls []string) ([]domain.CookieRecord, error) {
	runCtx, cancel := bind(s.ctx, ctx)
	defer cancel()

	var cookies []*network.Cookie
	err := chromedp.Run(runCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		cookies, err = network.GetCookies().WithURLs(urls).Do(ctx)
		return err
	}))
	if err != nil {
		if callerErr := ctx.Err(); callerErr != nil {
			return nil, fmt.Errorf("get cookies: %w", callerErr)
		}
		return nil, fmt.Errorf("get cookies: %w", err)
	}

	s.logger.Debug("cookies read", zap.Int("count", len(cookies)), zap.Strings("urls", urls))
	return toCookieRecords(cookies), nil
}

func (s *Session) Close() error {
	s.cancel()
	s.allocCancel()
	return nil
}

type Page struct {
	ctx    context.Context
	cancel context.CancelFunc
	logger *zap.Logger
}

func (p *Page) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	runCtx, cancel := bind(p.ctx, ctx)
	defer cancel()

	if err := chromedp.Run(runCtx, chromedp.Navigate(url)); err != nil {
		if callerErr := ctx.Err(); callerErr != nil {
			err = callerErr
		}
		return fmt.Errorf("%w: %s: %w", domain.ErrNavigationTimeout, url, err)
	}

	p.logger.Debug("navigated", zap.String("url", url))
	return nil
}

func (p *Page) Close() error {
	p.cancel()
	return nil
}

// bind derives a context from base, which carries the chromedp target, that
// also ends when caller does.
func bind(base, caller context.Context) (context.Context, context.CancelFunc) {
	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if deadline, ok := caller.Deadline(); ok {
		ctx, cancel = context.WithDeadline(base, deadline)
	} else {
		ctx, cancel = context.WithCancel(base)
	}
	stop := context.AfterFunc(caller, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

func toCookieRecords(cookies []*network.Cookie) []domain.CookieRecord {
	records := make([]domain.CookieRecord, 0, len(cookies))
	for _, cookie := range cookies {
		if cookie == nil {
			continue
		}
		records = append(records, domain.CookieRecord{
			Name:     cookie.Name,
			Value:    cookie.Value,
			Domain:   cookie.Domain,
			Path:     cookie.Path,
			HTTPOnly: cookie.HTTPOnly,
			Secure:   cookie.Secure,
		})
	}
	return records
}
