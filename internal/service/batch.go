package service

import (
	"context"

	"siege-tracker/internal/demo"
	"siege-tracker/internal/domain"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/iter"
)

// BatchService fans a list of player requests out concurrently. Each
// entry succeeds or fails on its own; the result slice always has one
// entry per request, in request order.
type BatchService struct {
	players *PlayerService
	mode    *ModeService
	gen     *demo.Generator
	logger  zerolog.Logger
}

func NewBatchService(players *PlayerService, mode *ModeService, gen *demo.Generator, logger zerolog.Logger) *BatchService {
	return &BatchService{players: players, mode: mode, gen: gen, logger: logger}
}

func (s *BatchService) ResolveBatch(ctx context.Context, reqs []domain.PlayerRequest) []domain.BatchResult {
	batchID, err := gonanoid.New(8)
	if err != nil {
		batchID = "batch"
	}
	log := s.logger.With().Str("batch_id", batchID).Int("players", len(reqs)).Logger()

	if s.mode.DemoMode() {
		log.Debug().Msg("demo mode active, synthesizing batch")
		return iter.Map(reqs, func(req *domain.PlayerRequest) domain.BatchResult {
			stats := s.gen.Player(req.Username, domain.ParsePlatform(req.Platform))
			return domain.BatchResult{Success: true, Username: req.Username, Data: &stats}
		})
	}

	log.Info().Msg("resolving batch")

	results := iter.Map(reqs, func(req *domain.PlayerRequest) domain.BatchResult {
		stats, err := s.players.ResolveLive(ctx, req.Username, domain.ParsePlatform(req.Platform))
		if err != nil {
			log.Warn().Err(err).Str("username", req.Username).Msg("player lookup failed")
			return domain.BatchResult{Success: false, Username: req.Username, Error: err.Error()}
		}
		return domain.BatchResult{Success: true, Username: req.Username, Data: &stats}
	})

	log.Info().Msg("batch resolved")
	return results
}
