package service

import (
	"context"

	"siege-tracker/internal/config"
	"siege-tracker/internal/constants"
	"siege-tracker/internal/demo"
	"siege-tracker/internal/domain"
	"siege-tracker/internal/normalize"
	"siege-tracker/internal/ubi"

	"github.com/rs/zerolog"
)

// SeasonalService serves a player's ranked season progression, newest
// season first.
type SeasonalService struct {
	ubi    *ubi.Client
	mode   *ModeService
	gen    *demo.Generator
	policy config.FailurePolicy
	logger zerolog.Logger
}

func NewSeasonalService(cfg *config.Config, client *ubi.Client, mode *ModeService, gen *demo.Generator, logger zerolog.Logger) *SeasonalService {
	return &SeasonalService{ubi: client, mode: mode, gen: gen, policy: cfg.FailurePolicy, logger: logger}
}

func (s *SeasonalService) GetHistory(ctx context.Context, username string, platform domain.Platform) ([]domain.SeasonRecord, error) {
	if s.mode.DemoMode() {
		return s.demoHistory(), nil
	}

	history, err := s.resolveLive(ctx, username, platform)
	if err != nil {
		if s.policy == config.FallbackToDemo {
			s.logger.Warn().Err(err).Str("username", username).Msg("seasonal lookup failed, serving demo data")
			return s.demoHistory(), nil
		}
		return nil, err
	}
	return history, nil
}

func (s *SeasonalService) resolveLive(ctx context.Context, username string, platform domain.Platform) ([]domain.SeasonRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	identity, err := s.ubi.ResolveProfile(ctx, username, platform)
	if err != nil {
		return nil, err
	}

	apiCtx, apiCancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	defer apiCancel()

	raw, err := s.ubi.SeasonalStats(apiCtx, identity.ProfileID, platform)
	if err != nil {
		s.logger.Error().Err(err).Str("profile_id", identity.ProfileID).Msg("failed to fetch seasonal stats")
		return nil, err
	}

	history := normalize.Seasons(raw)
	domain.SortSeasonsDesc(history)
	return history, nil
}

func (s *SeasonalService) demoHistory() []domain.SeasonRecord {
	history := s.gen.SeasonalHistory()
	domain.SortSeasonsDesc(history)
	return history
}
