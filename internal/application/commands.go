package application

import (
	"time"

	"github.com/bnema/sso-harvest/internal/domain"
)

type HarvestOptions struct {
	TargetCookie      string
	CookieURLs        []string
	NavigateURL       string
	ReadyTimeout      time.Duration
	ConnectTimeout    time.Duration
	NavigationTimeout time.Duration
	CookieSettle      time.Duration
	CookieReadTimeout time.Duration
	ProfileTimeout    time.Duration
	TerminateTimeout  time.Duration
}

type RunCommand struct {
	// Profiles overrides the configured profile source when non-empty.
	Profiles   []domain.ProfileID
	Pool       string
	Quota      int
	SkipImport bool
	SkipVerify bool
}

type ImportCommand struct {
	Tokens []domain.ExtractedToken
	Pool   string
	Quota  int
}

type ScanCommand struct {
	Profiles []domain.ProfileID
	Domains  []string
	Name     string
}
