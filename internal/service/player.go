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
	"golang.org/x/sync/errgroup"
)

// PlayerService runs the single-player pipeline: profile resolution,
// concurrent stat fetches and normalization, with the configured policy
// deciding what a live failure turns into.
type PlayerService struct {
	ubi    *ubi.Client
	mode   *ModeService
	gen    *demo.Generator
	policy config.FailurePolicy
	logger zerolog.Logger
}

func NewPlayerService(cfg *config.Config, client *ubi.Client, mode *ModeService, gen *demo.Generator, logger zerolog.Logger) *PlayerService {
	return &PlayerService{ubi: client, mode: mode, gen: gen, policy: cfg.FailurePolicy, logger: logger}
}

// GetPlayer serves one player's stats. Demo mode synthesizes; otherwise
// the live pipeline runs, degrading to demo data under FallbackToDemo so
// a single-player read never surfaces a raw upstream error.
func (s *PlayerService) GetPlayer(ctx context.Context, username string, platform domain.Platform) (domain.PlayerStats, error) {
	if s.mode.DemoMode() {
		s.logger.Debug().Str("username", username).Msg("demo mode active, synthesizing player")
		return s.gen.Player(username, platform), nil
	}

	stats, err := s.ResolveLive(ctx, username, platform)
	if err != nil {
		if s.policy == config.FallbackToDemo {
			s.logger.Warn().Err(err).Str("username", username).Msg("live lookup failed, serving demo data")
			return s.gen.Player(username, platform), nil
		}
		return domain.PlayerStats{}, err
	}
	return stats, nil
}

// ResolveLive is the live pipeline with no demo fallback. The batch
// orchestrator calls it directly so per-player failures stay visible.
func (s *PlayerService) ResolveLive(ctx context.Context, username string, platform domain.Platform) (domain.PlayerStats, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	s.logger.Info().Str("username", username).Str("platform", string(platform)).Msg("resolving player")

	identity, err := s.ubi.ResolveProfile(ctx, username, platform)
	if err != nil {
		return domain.PlayerStats{}, err
	}

	apiCtx, apiCancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	defer apiCancel()

	g, gCtx := errgroup.WithContext(apiCtx)

	var ranked *ubi.RankedProfile
	var operators []ubi.RawOperator

	g.Go(func() error {
		var err error
		ranked, err = s.ubi.RankedStats(gCtx, identity.ProfileID, platform)
		return err
	})

	g.Go(func() error {
		var err error
		operators, err = s.ubi.OperatorStats(gCtx, identity.ProfileID, platform)
		return err
	})

	if err := g.Wait(); err != nil {
		s.logger.Error().Err(err).Str("profile_id", identity.ProfileID).Msg("failed to fetch player stats")
		return domain.PlayerStats{}, err
	}

	s.logger.Debug().Str("profile_id", identity.ProfileID).Int("operator_count", len(operators)).Msg("player stats fetched")
	return normalize.Player(username, platform, ranked, operators), nil
}
