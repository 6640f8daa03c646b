package server

import (
	"io"
	"net/http"
	"time"

	"siege-tracker/internal/domain"
	"siege-tracker/internal/metrics"
	"siege-tracker/internal/service"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// Server exposes the /api surface consumed by the browser UI.
type Server struct {
	players  *service.PlayerService
	seasonal *service.SeasonalService
	batch    *service.BatchService
	mode     *service.ModeService
	validate *validator.Validate
	logger   zerolog.Logger
}

func New(players *service.PlayerService, seasonal *service.SeasonalService, batch *service.BatchService, mode *service.ModeService, logger zerolog.Logger) *Server {
	return &Server{
		players:  players,
		seasonal: seasonal,
		batch:    batch,
		mode:     mode,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}
}

func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/players", s.handlePlayers)
	mux.HandleFunc("GET /api/player", s.handlePlayer)
	mux.HandleFunc("GET /api/seasonal", s.handleSeasonal)
	mux.HandleFunc("GET /api/mode", s.handleGetMode)
	mux.HandleFunc("POST /api/mode", s.handleSetMode)
	mux.HandleFunc("GET /health", s.handleHealth)
}

type playersRequest struct {
	Players []domain.PlayerRequest `json:"players" validate:"omitempty,dive"`
}

type playersResponse struct {
	Results             []domain.BatchResult   `json:"results"`
	TeamThreatScore     int                    `json:"teamThreatScore"`
	TeamThreatBreakdown domain.ThreatBreakdown `json:"teamThreatBreakdown"`
}

func (s *Server) handlePlayers(w http.ResponseWriter, r *http.Request) {
	var req playersRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if len(req.Players) == 0 {
		writeJSON(w, http.StatusOK, playersResponse{
			Results:             []domain.BatchResult{},
			TeamThreatBreakdown: domain.ThreatBreakdown{},
		})
		return
	}

	results := s.batch.ResolveBatch(r.Context(), req.Players)

	team := make([]domain.PlayerStats, 0, len(results))
	for _, res := range results {
		if res.Success && res.Data != nil {
			team = append(team, *res.Data)
		}
	}

	writeJSON(w, http.StatusOK, playersResponse{
		Results:             results,
		TeamThreatScore:     metrics.TeamScore(team),
		TeamThreatBreakdown: metrics.TeamBreakdown(team),
	})
}

type playerResponse struct {
	domain.PlayerStats
	ThreatScore     int                    `json:"threatScore"`
	ThreatBreakdown domain.ThreatBreakdown `json:"threatBreakdown"`
	Badges          []string               `json:"badges"`
}

func (s *Server) handlePlayer(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")
	if username == "" {
		writeError(w, http.StatusBadRequest, "username is required")
		return
	}
	platform := domain.ParsePlatform(r.URL.Query().Get("platform"))

	stats, err := s.players.GetPlayer(r.Context(), username, platform)
	if err != nil {
		s.writeUpstreamError(w, err, "failed to fetch player")
		return
	}

	writeJSON(w, http.StatusOK, playerResponse{
		PlayerStats:     stats,
		ThreatScore:     metrics.ThreatScore(stats),
		ThreatBreakdown: metrics.Breakdown(stats),
		Badges:          metrics.Badges(stats),
	})
}

type seasonalResponse struct {
	Username string                `json:"username"`
	History  []domain.SeasonRecord `json:"history"`
}

func (s *Server) handleSeasonal(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")
	if username == "" {
		writeError(w, http.StatusBadRequest, "username is required")
		return
	}
	platform := domain.ParsePlatform(r.URL.Query().Get("platform"))

	history, err := s.seasonal.GetHistory(r.Context(), username, platform)
	if err != nil {
		s.writeUpstreamError(w, err, "failed to fetch seasonal history")
		return
	}

	writeJSON(w, http.StatusOK, seasonalResponse{Username: username, History: history})
}

type modeResponse struct {
	DevMode  bool `json:"devMode"`
	DemoMode bool `json:"demoMode"`
}

func (s *Server) handleGetMode(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, modeResponse{DevMode: s.mode.DevMode(), DemoMode: s.mode.DemoMode()})
}

func (s *Server) handleSetMode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DemoMode bool `json:"demoMode"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.mode.SetDemoMode(req.DemoMode); err != nil {
		writeError(w, http.StatusForbidden, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, modeResponse{DevMode: s.mode.DevMode(), DemoMode: s.mode.DemoMode()})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"devMode":   s.mode.DevMode(),
	})
}

func (s *Server) writeUpstreamError(w http.ResponseWriter, err error, msg string) {
	s.logger.Error().Err(err).Msg(msg)
	if errors.Is(err, domain.ErrPlayerNotFound) {
		writeError(w, http.StatusNotFound, "player not found")
		return
	}
	writeError(w, http.StatusBadGateway, msg)
}

func decodeBody(r *http.Request, v any) error {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return err
	}
	if len(body) == 0 {
		return nil
	}
	return sonic.Unmarshal(body, v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	payload, err := sonic.Marshal(v)
	if err != nil {
		http.Error(w, "encoding failure", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
