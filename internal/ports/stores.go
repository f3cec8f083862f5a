package ports

import (
	"context"

	"github.com/bnema/sso-harvest/internal/domain"
)

type ResultStore interface {
	Save(ctx context.Context, tokens []domain.ExtractedToken) error
	Load(ctx context.Context) ([]domain.ExtractedToken, error)
	Path() string
}

type TokenRegistry interface {
	Import(ctx context.Context, pool domain.ImportPool) error
	Counts(ctx context.Context) (map[string]int, error)
}

type ProfileSource interface {
	Profiles(ctx context.Context) ([]domain.ProfileID, error)
}

type CookieStoreReader interface {
	ReadCookies(ctx context.Context, profile domain.ProfileID, domains []string, name string) ([]domain.StoredCookie, error)
}
