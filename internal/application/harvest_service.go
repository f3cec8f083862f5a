package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/bnema/sso-harvest/internal/domain"
	"github.com/bnema/sso-harvest/internal/ports"
)

const defaultTerminateTimeout = 15 * time.Second

type HarvestService struct {
	launcher ports.BrowserLauncher
	client   ports.DebugClient
	opts     HarvestOptions
	logger   *zap.Logger
	clock    ports.Clock
	sleep    func(ctx context.Context, d time.Duration) error
}

func NewHarvestService(launcher ports.BrowserLauncher, client ports.DebugClient, opts HarvestOptions, logger *zap.Logger, clock ports.Clock) *HarvestService {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.TerminateTimeout <= 0 {
		opts.TerminateTimeout = defaultTerminateTimeout
	}

	return &HarvestService{
		launcher: launcher,
		client:   client,
		opts:     opts,
		logger:   logger.Named("harvest"),
		clock:    clock,
		sleep:    sleepContext,
	}
}

// Harvest visits each profile in order, one browser at a time. Per-profile
// failures are recorded on the outcome and never stop the loop. The returned
// report always carries the tokens collected so far, also when err is set.
func (s *HarvestService) Harvest(ctx context.Context, profiles []domain.ProfileID) (HarvestReport, error) {
	profiles = domain.NormalizeProfiles(profiles)
	if len(profiles) == 0 {
		return HarvestReport{Tokens: []domain.ExtractedToken{}}, domain.ErrNoProfiles
	}

	agg := NewAggregator()
	report := HarvestReport{Outcomes: make([]ProfileOutcome, 0, len(profiles))}

	for i, profile := range profiles {
		if err := ctx.Err(); err != nil {
			report.Tokens = agg.Finalize()
			return report, fmt.Errorf("harvest interrupted before %q: %w", profile, err)
		}

		s.logger.Info("harvesting profile",
			zap.String("profile", string(profile)),
			zap.Int("index", i+1),
			zap.Int("total", len(profiles)),
		)

		outcome := s.harvestProfile(ctx, profile, agg.Seen())
		if outcome.Token != nil && !agg.Record(*outcome.Token) {
			outcome.Result = ExtractDuplicate
			outcome.Token = nil
		}
		report.Outcomes = append(report.Outcomes, outcome)
		s.logOutcome(outcome)

		if errors.Is(outcome.Err, domain.ErrExecutableNotFound) {
			report.Tokens = agg.Finalize()
			return report, outcome.Err
		}
	}

	report.Tokens = agg.Finalize()
	return report, nil
}

func (s *HarvestService) harvestProfile(parent context.Context, profile domain.ProfileID, seen SeenSet) (outcome ProfileOutcome) {
	started := s.clock.Now()
	tracker := newStateTracker(profile, s.logger)
	outcome = ProfileOutcome{Profile: profile, Result: ExtractMissing}

	defer func() {
		outcome.State = tracker.state
		outcome.Duration = s.clock.Now().Sub(started)
	}()

	if err := profile.Validate(); err != nil {
		tracker.to(domain.ProfileStateLaunching)
		tracker.to(domain.ProfileStateClosing)
		tracker.to(domain.ProfileStateFailed)
		outcome.Err = fmt.Errorf("%w: %w", domain.ErrLaunch, err)
		return outcome
	}

	ctx := parent
	if s.opts.ProfileTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(parent, s.opts.ProfileTimeout)
		defer cancel()
	}

	tracker.to(domain.ProfileStateLaunching)
	instance, err := s.launcher.Launch(ctx, profile)
	if err != nil {
		tracker.to(domain.ProfileStateClosing)
		tracker.to(domain.ProfileStateFailed)
		outcome.Err = fmt.Errorf("launch browser: %w", err)
		return outcome
	}

	defer func() {
		tracker.to(domain.ProfileStateClosing)
		// The profile deadline may already be spent; cleanup gets its own.
		termCtx, cancel := context.WithTimeout(context.WithoutCancel(parent), s.opts.TerminateTimeout)
		defer cancel()
		if err := s.launcher.Terminate(termCtx, instance); err != nil {
			outcome.TerminateErr = err
			s.logger.Warn("terminate browser", zap.String("profile", string(profile)), zap.Int("pid", instance.PID()), zap.Error(err))
		}
		if outcome.Err != nil {
			tracker.to(domain.ProfileStateFailed)
			return
		}
		tracker.to(domain.ProfileStateDone)
	}()

	tracker.to(domain.ProfileStateSettling)
	if err := s.launcher.WaitReady(ctx, instance, s.opts.ReadyTimeout); err != nil {
		outcome.Err = fmt.Errorf("wait for debug endpoint: %w", timeoutErr(err))
		return outcome
	}

	tracker.to(domain.ProfileStateConnecting)
	session, err := s.client.Connect(ctx, instance.Port(), s.opts.ConnectTimeout)
	if err != nil {
		outcome.Err = fmt.Errorf("connect to debug endpoint: %w", timeoutErr(err))
		return outcome
	}
	defer func() {
		if err := session.Close(); err != nil {
			s.logger.Debug("close debug session", zap.String("profile", string(profile)), zap.Error(err))
		}
	}()

	tracker.to(domain.ProfileStateExtracting)
	records, err := s.readCookies(ctx, session, &outcome)
	if err != nil {
		outcome.Err = err
		return outcome
	}

	outcome.CookieCount = len(records)
	token, status := Extract(records, s.opts.TargetCookie, profile, seen)
	outcome.Result = status
	if status == ExtractFound {
		outcome.Token = &token
	}

	return outcome
}

func (s *HarvestService) readCookies(ctx context.Context, session ports.DebugSession, outcome *ProfileOutcome) ([]domain.CookieRecord, error) {
	page, err := session.OpenPage(ctx)
	if err != nil {
		return nil, fmt.Errorf("open page: %w", timeoutErr(err))
	}
	defer func() {
		if err := page.Close(); err != nil {
			s.logger.Debug("close page", zap.String("profile", string(outcome.Profile)), zap.Error(err))
		}
	}()

	if s.opts.NavigateURL != "" {
		if err := page.Navigate(ctx, s.opts.NavigateURL, s.opts.NavigationTimeout); err != nil {
			// Cookies set by earlier sessions are still readable without a fresh load.
			outcome.NavigationErr = err
			s.logger.Warn("navigation incomplete, reading cookies anyway",
				zap.String("profile", string(outcome.Profile)),
				zap.String("url", s.opts.NavigateURL),
				zap.Error(err),
			)
		}
	}

	if err := s.sleep(ctx, s.opts.CookieSettle); err != nil {
		return nil, fmt.Errorf("wait for cookies: %w", timeoutErr(err))
	}

	readCtx := ctx
	if s.opts.CookieReadTimeout > 0 {
		var cancel context.CancelFunc
		readCtx, cancel = context.WithTimeout(ctx, s.opts.CookieReadTimeout)
		defer cancel()
	}

	records, err := session.ReadCookies(readCtx, s.opts.CookieURLs)
	if err != nil {
		return nil, fmt.Errorf("read cookies: %w", timeoutErr(err))
	}

	return records, nil
}

func (s *HarvestService) logOutcome(outcome ProfileOutcome) {
	fields := []zap.Field{
		zap.String("profile", string(outcome.Profile)),
		zap.String("state", string(outcome.State)),
		zap.String("result", string(outcome.Result)),
		zap.Int("cookies", outcome.CookieCount),
		zap.Duration("elapsed", outcome.Duration),
	}

	switch {
	case outcome.Err != nil:
		s.logger.Warn("profile failed", append(fields, zap.Error(outcome.Err))...)
	case outcome.Yielded():
		s.logger.Info("profile yielded token", append(fields, zap.String("domain", outcome.Token.Domain))...)
	default:
		s.logger.Info("profile yielded no new token", fields...)
	}
}

// timeoutErr tags deadline expiry with domain.ErrTimeout so callers can
// tell a stalled step from a refused one.
func timeoutErr(err error) error {
	if err == nil || errors.Is(err, domain.ErrTimeout) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", domain.ErrTimeout, err)
	}
	return err
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type stateTracker struct {
	profile domain.ProfileID
	state   domain.ProfileState
	logger  *zap.Logger
}

func newStateTracker(profile domain.ProfileID, logger *zap.Logger) *stateTracker {
	return &stateTracker{profile: profile, state: domain.ProfileStateIdle, logger: logger}
}

func (t *stateTracker) to(next domain.ProfileState) {
	if !t.state.CanTransition(next) {
		t.logger.Error("invalid profile state transition",
			zap.String("profile", string(t.profile)),
			zap.String("from", string(t.state)),
			zap.String("to", string(next)),
		)
		return
	}
	t.logger.Debug("profile state",
		zap.String("profile", string(t.profile)),
		zap.String("from", string(t.state)),
		zap.String("to", string(next)),
	)
	t.state = next
}
