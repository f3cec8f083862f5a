package application

import (
	"time"

	"github.com/bnema/sso-harvest/internal/domain"
)

type ProfileOutcome struct {
	Profile       domain.ProfileID
	State         domain.ProfileState
	Result        ExtractStatus
	Token         *domain.ExtractedToken
	CookieCount   int
	Err           error
	NavigationErr error
	TerminateErr  error
	Duration      time.Duration
}

func (o ProfileOutcome) Yielded() bool {
	return o.Err == nil && o.Result == ExtractFound && o.Token != nil
}

type HarvestReport struct {
	Outcomes []ProfileOutcome
	Tokens   []domain.ExtractedToken
}

type ImportResult struct {
	Pool  string
	Count int
	Quota int
}

type Verification struct {
	Pools map[string]int
	Total int
}

type RunReport struct {
	RunID        string
	StartedAt    time.Time
	FinishedAt   time.Time
	Harvest      HarvestReport
	ProfilesErr  error
	ResultPath   string
	Imported     *ImportResult
	ImportErr    error
	Verification *Verification
	VerifyErr    error
}

type ScanReport struct {
	Cookies  []domain.StoredCookie
	Failures map[domain.ProfileID]error
	// Tokens holds plaintext hits in profile order, deduplicated.
	Tokens []domain.ExtractedToken
}
