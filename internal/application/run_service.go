package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bnema/sso-harvest/internal/domain"
	"github.com/bnema/sso-harvest/internal/ports"
)

const strayKillTimeout = 10 * time.Second

// RunService drives one complete harvest: sweep leftovers, visit every
// profile, persist what was found, then hand the tokens to the registry.
type RunService struct {
	profiles ports.ProfileSource
	launcher ports.BrowserLauncher
	harvest  *HarvestService
	results  ports.ResultStore
	importer *ImportService
	logger   *zap.Logger
	clock    ports.Clock
	newRunID func() string
}

func NewRunService(
	profiles ports.ProfileSource,
	launcher ports.BrowserLauncher,
	harvest *HarvestService,
	results ports.ResultStore,
	importer *ImportService,
	logger *zap.Logger,
	clock ports.Clock,
) *RunService {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &RunService{
		profiles: profiles,
		launcher: launcher,
		harvest:  harvest,
		results:  results,
		importer: importer,
		logger:   logger.Named("run"),
		clock:    clock,
		newRunID: uuid.NewString,
	}
}

func (s *RunService) Run(ctx context.Context, cmd RunCommand) (report RunReport, err error) {
	report = RunReport{RunID: s.newRunID(), StartedAt: s.clock.Now(), ResultPath: s.results.Path()}
	log := s.logger.With(zap.String("run_id", report.RunID))
	defer func() { report.FinishedAt = s.clock.Now() }()

	if err := s.launcher.KillStray(ctx); err != nil {
		if errors.Is(err, domain.ErrExecutableNotFound) {
			return report, err
		}
		log.Warn("sweep stray browsers before run", zap.Error(err))
	}
	defer func() {
		sweepCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), strayKillTimeout)
		defer cancel()
		if err := s.launcher.KillStray(sweepCtx); err != nil {
			log.Warn("sweep stray browsers after run", zap.Error(err))
		}
	}()

	profiles := cmd.Profiles
	var listErr error
	if len(profiles) == 0 {
		listed, err := s.profiles.Profiles(ctx)
		if err != nil {
			report.ProfilesErr = err
			log.Warn("list profiles", zap.Error(err))
			if !errors.Is(err, domain.ErrNoProfiles) {
				listErr = fmt.Errorf("list profiles: %w", err)
			}
		}
		profiles = listed
	}

	log.Info("run started", zap.Int("profiles", len(profiles)))

	harvest := HarvestReport{Tokens: []domain.ExtractedToken{}}
	var harvestErr error
	if len(profiles) > 0 {
		harvest, harvestErr = s.harvest.Harvest(ctx, profiles)
		if harvestErr != nil && errors.Is(harvestErr, domain.ErrExecutableNotFound) {
			report.Harvest = harvest
			return report, harvestErr
		}
	}
	report.Harvest = harvest

	// Persist before anything touches the network so tokens survive a failed import.
	var saveErr error
	if err := s.results.Save(context.WithoutCancel(ctx), harvest.Tokens); err != nil {
		saveErr = fmt.Errorf("save results: %w", err)
		log.Error("persist tokens", zap.String("path", report.ResultPath), zap.Error(err))
	} else {
		log.Info("tokens persisted", zap.String("path", report.ResultPath), zap.Int("count", len(harvest.Tokens)))
	}

	switch {
	case len(harvest.Tokens) == 0:
		log.Info("no tokens extracted, skipping import")
	case cmd.SkipImport || s.importer == nil:
		log.Info("import skipped")
	case ctx.Err() != nil:
		log.Warn("run cancelled, skipping import", zap.Error(ctx.Err()))
	default:
		s.importAndVerify(ctx, cmd, harvest.Tokens, &report, log)
	}

	return report, errors.Join(listErr, harvestErr, saveErr)
}

func (s *RunService) importAndVerify(ctx context.Context, cmd RunCommand, tokens []domain.ExtractedToken, report *RunReport, log *zap.Logger) {
	result, err := s.importer.ImportTokens(ctx, ImportCommand{Tokens: tokens, Pool: cmd.Pool, Quota: cmd.Quota})
	if err != nil {
		report.ImportErr = err
		log.Warn("import failed, tokens remain in local file", zap.String("path", report.ResultPath), zap.Error(err))
		return
	}
	report.Imported = &result
	log.Info("tokens imported", zap.String("pool", result.Pool), zap.Int("count", result.Count))

	if cmd.SkipVerify {
		return
	}
	verification, err := s.importer.Verify(ctx)
	if err != nil {
		report.VerifyErr = err
		log.Warn("verify registry", zap.Error(err))
		return
	}
	report.Verification = &verification
	log.Info("registry verified", zap.Int("total", verification.Total), zap.Int("pools", len(verification.Pools)))
}
