package application

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/bnema/sso-harvest/internal/domain"
	"github.com/bnema/sso-harvest/internal/ports"
)

// FallbackService reads cookies straight from profile databases when no
// browser can be driven. Encrypted values are reported by size only.
type FallbackService struct {
	profiles ports.ProfileSource
	reader   ports.CookieStoreReader
	logger   *zap.Logger
}

func NewFallbackService(profiles ports.ProfileSource, reader ports.CookieStoreReader, logger *zap.Logger) *FallbackService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FallbackService{profiles: profiles, reader: reader, logger: logger.Named("fallback")}
}

func (s *FallbackService) Scan(ctx context.Context, cmd ScanCommand) (ScanReport, error) {
	profiles := cmd.Profiles
	if len(profiles) == 0 {
		listed, err := s.profiles.Profiles(ctx)
		if err != nil {
			return ScanReport{}, fmt.Errorf("list profiles: %w", err)
		}
		profiles = listed
	}
	profiles = domain.NormalizeProfiles(profiles)
	if len(profiles) == 0 {
		return ScanReport{}, domain.ErrNoProfiles
	}

	report := ScanReport{Failures: map[domain.ProfileID]error{}}
	agg := NewAggregator()

	for _, profile := range profiles {
		if err := ctx.Err(); err != nil {
			report.Tokens = agg.Finalize()
			return report, err
		}

		cookies, err := s.reader.ReadCookies(ctx, profile, cmd.Domains, cmd.Name)
		if err != nil {
			report.Failures[profile] = err
			s.logger.Warn("read cookie database", zap.String("profile", string(profile)), zap.Error(err))
			continue
		}

		for _, cookie := range cookies {
			report.Cookies = append(report.Cookies, cookie)
			if cookie.Encrypted() {
				s.logger.Info("cookie is encrypted",
					zap.String("profile", string(profile)),
					zap.String("host", cookie.Host),
					zap.Int("bytes", cookie.EncryptedLen),
				)
				continue
			}
			if cookie.Value != "" {
				agg.Record(domain.ExtractedToken{Token: cookie.Value, Domain: cookie.Host, Profile: profile})
			}
		}
	}

	report.Tokens = agg.Finalize()
	return report, nil
}
