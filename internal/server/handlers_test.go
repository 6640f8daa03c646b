package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"siege-tracker/internal/config"
	"siege-tracker/internal/demo"
	"siege-tracker/internal/domain"
	"siege-tracker/internal/service"
	"siege-tracker/internal/ubi"

	"github.com/bytedance/sonic"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// newTestMux wires the full handler stack in demo-or-live dev
// configuration with no reachable upstream; dev=true keeps everything on
// the synthetic path.
func newTestMux(t *testing.T, dev bool) *http.ServeMux {
	t.Helper()

	cfg := &config.Config{
		UbiAppID:      "app-id",
		APIBaseURL:    "http://127.0.0.1:0",
		DevMode:       dev,
		FailurePolicy: config.FallbackToDemo,
	}

	log := zerolog.Nop()
	hc := ubi.NewHTTPClient()
	client := ubi.NewClient(cfg, hc, ubi.NewSessionManager(cfg, hc, log), log)
	gen := demo.NewGenerator()
	mode := service.NewModeService(cfg, log)
	players := service.NewPlayerService(cfg, client, mode, gen, log)
	seasonal := service.NewSeasonalService(cfg, client, mode, gen, log)
	batch := service.NewBatchService(players, mode, gen, log)

	mux := http.NewServeMux()
	New(players, seasonal, batch, mode, log).Register(mux)
	return mux
}

func doRequest(t *testing.T, mux *http.ServeMux, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestHandlePlayer_RequiresUsername(t *testing.T) {
	t.Parallel()

	mux := newTestMux(t, true)
	rec := doRequest(t, mux, http.MethodGet, "/api/player", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlePlayer_DemoMode(t *testing.T) {
	t.Parallel()

	mux := newTestMux(t, true)
	rec := doRequest(t, mux, http.MethodGet, "/api/player?username=demo&platform=ps", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp playerResponse
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "demo", resp.Username)
	require.Equal(t, domain.PlatformPSN, resp.Platform)
	require.GreaterOrEqual(t, resp.ThreatScore, 0)
	require.LessOrEqual(t, resp.ThreatScore, 100)
	require.Len(t, resp.ThreatBreakdown, 6)
	require.Equal(t, "Rank", resp.ThreatBreakdown[0].Label)
}

func TestHandlePlayers_EmptyListShortCircuits(t *testing.T) {
	t.Parallel()

	mux := newTestMux(t, true)
	rec := doRequest(t, mux, http.MethodPost, "/api/players", `{"players":[]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp playersResponse
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &resp))
	require.Empty(t, resp.Results)
	require.Zero(t, resp.TeamThreatScore)
}

func TestHandlePlayers_RejectsEntryWithoutUsername(t *testing.T) {
	t.Parallel()

	mux := newTestMux(t, true)
	rec := doRequest(t, mux, http.MethodPost, "/api/players", `{"players":[{"platform":"pc"}]}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlePlayers_DemoBatchWithTeamAggregates(t *testing.T) {
	t.Parallel()

	mux := newTestMux(t, true)
	body := `{"players":[{"username":"a","platform":"pc"},{"username":"b","platform":"xbox"},{"username":"c","platform":"psn"}]}`
	rec := doRequest(t, mux, http.MethodPost, "/api/players", body)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp playersResponse
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 3)
	for _, res := range resp.Results {
		require.True(t, res.Success)
		require.NotNil(t, res.Data)
	}
	require.GreaterOrEqual(t, resp.TeamThreatScore, 0)
	require.LessOrEqual(t, resp.TeamThreatScore, 100)
	require.Len(t, resp.TeamThreatBreakdown, 6)
}

func TestHandleSeasonal_DemoMode(t *testing.T) {
	t.Parallel()

	mux := newTestMux(t, true)
	rec := doRequest(t, mux, http.MethodGet, "/api/seasonal?username=demo", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp seasonalResponse
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "demo", resp.Username)
	require.Len(t, resp.History, 40)
	// newest first
	require.Equal(t, "Y10S3", resp.History[0].Season)
}

func TestHandleMode_ToggleForbiddenOutsideDev(t *testing.T) {
	t.Parallel()

	mux := newTestMux(t, false)
	rec := doRequest(t, mux, http.MethodPost, "/api/mode", `{"demoMode":true}`)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestHandleMode_RoundTripInDev(t *testing.T) {
	t.Parallel()

	mux := newTestMux(t, true)

	rec := doRequest(t, mux, http.MethodGet, "/api/mode", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp modeResponse
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.DevMode)
	require.True(t, resp.DemoMode)

	rec = doRequest(t, mux, http.MethodPost, "/api/mode", `{"demoMode":false}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &resp))
	require.False(t, resp.DemoMode)
}

func TestHandleHealth(t *testing.T) {
	t.Parallel()

	mux := newTestMux(t, false)
	rec := doRequest(t, mux, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"status":"ok"`)
}
