package application

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/bnema/sso-harvest/internal/domain"
	"github.com/bnema/sso-harvest/internal/ports"
)

type ImportService struct {
	registry ports.TokenRegistry
	logger   *zap.Logger
}

func NewImportService(registry ports.TokenRegistry, logger *zap.Logger) *ImportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportService{registry: registry, logger: logger.Named("import")}
}

// ImportTokens sends every token to the registry as one pool in a single
// request. Any failure is reported wrapped in domain.ErrImport.
func (s *ImportService) ImportTokens(ctx context.Context, cmd ImportCommand) (ImportResult, error) {
	if cmd.Pool == "" {
		cmd.Pool = domain.PoolBasic
	}

	pool := domain.NewImportPool(cmd.Pool, cmd.Quota, cmd.Tokens)
	if err := pool.Validate(); err != nil {
		return ImportResult{}, fmt.Errorf("%w: %w", domain.ErrImport, err)
	}

	result := ImportResult{Pool: pool.Name, Count: len(pool.Entries), Quota: pool.Entries[0].Quota}
	s.logger.Info("importing tokens", zap.String("pool", result.Pool), zap.Int("count", result.Count), zap.Int("quota", result.Quota))

	if err := s.registry.Import(ctx, pool); err != nil {
		if !errors.Is(err, domain.ErrImport) {
			err = fmt.Errorf("%w: %w", domain.ErrImport, err)
		}
		return ImportResult{}, err
	}

	return result, nil
}

// Verify lists the registry's pools. The counts are informational only.
func (s *ImportService) Verify(ctx context.Context) (Verification, error) {
	counts, err := s.registry.Counts(ctx)
	if err != nil {
		return Verification{}, fmt.Errorf("list registry tokens: %w", err)
	}

	v := Verification{Pools: counts}
	names := make([]string, 0, len(counts))
	for name, count := range counts {
		names = append(names, name)
		v.Total += count
	}
	sort.Strings(names)
	for _, name := range names {
		s.logger.Debug("registry pool", zap.String("pool", name), zap.Int("count", counts[name]))
	}

	return v, nil
}
