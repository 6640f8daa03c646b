package service

import (
	"sync"

	"siege-tracker/internal/config"
	"siege-tracker/internal/domain"

	"github.com/rs/zerolog"
)

// ModeService holds the demo/live switch. Demo starts on in dev mode and
// off otherwise; toggling is only allowed in dev mode.
type ModeService struct {
	logger zerolog.Logger
	dev    bool

	mu   sync.RWMutex
	demo bool
}

func NewModeService(cfg *config.Config, logger zerolog.Logger) *ModeService {
	return &ModeService{logger: logger, dev: cfg.DevMode, demo: cfg.DevMode}
}

func (s *ModeService) DevMode() bool {
	return s.dev
}

func (s *ModeService) DemoMode() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.demo
}

func (s *ModeService) SetDemoMode(on bool) error {
	if !s.dev {
		return domain.ErrModeLocked
	}
	s.mu.Lock()
	s.demo = on
	s.mu.Unlock()
	s.logger.Info().Bool("demo_mode", on).Msg("demo mode toggled")
	return nil
}
