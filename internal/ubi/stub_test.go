package ubi

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"siege-tracker/internal/config"

	"github.com/rs/zerolog"
)

// upstreamStub fakes the Ubisoft public services for tests: login,
// profile lookup and the three stat endpoints, with per-call status
// overrides to provoke retries and session refreshes.
type upstreamStub struct {
	srv *httptest.Server

	mu         sync.Mutex
	logins     int
	statCalls  int
	statQueue  []int
	loginDelay time.Duration
	loginCode  int
	profiles   map[string][]string
}

func newStub(t *testing.T) *upstreamStub {
	t.Helper()

	s := &upstreamStub{
		loginCode: http.StatusOK,
		profiles: map[string][]string{
			"alice": {"p-1"},
			"bob":   {"p-2"},
			"multi": {"p-a", "p-b"},
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/v3/profiles/sessions", s.handleLogin)
	mux.HandleFunc("/v3/profiles", s.handleProfiles)
	mux.HandleFunc("/v1/spaces/", s.handleStats)

	s.srv = httptest.NewServer(mux)
	t.Cleanup(s.srv.Close)
	return s
}

func (s *upstreamStub) config() *config.Config {
	return &config.Config{
		UbiEmail:    "user@example.com",
		UbiPassword: "hunter2",
		UbiAppID:    "app-id",
		APIBaseURL:  s.srv.URL,
	}
}

// client builds a session manager and client wired against the stub.
func (s *upstreamStub) client(t *testing.T) (*Client, *SessionManager) {
	t.Helper()
	cfg := s.config()
	hc := NewHTTPClient()
	sessions := NewSessionManager(cfg, hc, zerolog.Nop())
	return NewClient(cfg, hc, sessions, zerolog.Nop()), sessions
}

func (s *upstreamStub) loginCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.logins
}

func (s *upstreamStub) statCallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statCalls
}

// statusDrop in the stat queue hijacks the connection and closes it
// mid-request, so the client sees a transport failure instead of a
// response.
const statusDrop = -1

// queueStatStatuses sets the statuses returned by the next stat calls,
// in order; later calls fall back to 200.
func (s *upstreamStub) queueStatStatuses(statuses ...int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statQueue = append(s.statQueue, statuses...)
}

func (s *upstreamStub) handleLogin(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.logins++
	n := s.logins
	delay := s.loginDelay
	code := s.loginCode
	s.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if code != http.StatusOK {
		w.WriteHeader(code)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"ticket":"t-%d","sessionId":"s-%d","userId":"u-1"}`, n, n)
}

func (s *upstreamStub) handleProfiles(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("nameOnPlatform")

	s.mu.Lock()
	ids := s.profiles[name]
	s.mu.Unlock()

	entries := make([]string, 0, len(ids))
	for _, id := range ids {
		entries = append(entries, fmt.Sprintf(
			`{"profileId":"%s","userId":"u-%s","platformType":"uplay","nameOnPlatform":"%s"}`, id, id, name))
	}

	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"profiles":[%s]}`, strings.Join(entries, ","))
}

func (s *upstreamStub) handleStats(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.statCalls++
	code := http.StatusOK
	if len(s.statQueue) > 0 {
		code = s.statQueue[0]
		s.statQueue = s.statQueue[1:]
	}
	s.mu.Unlock()

	if code == statusDrop {
		hj, ok := w.(http.Hijacker)
		if !ok {
			panic("response writer does not support hijacking")
		}
		conn, _, err := hj.Hijack()
		if err != nil {
			panic(err)
		}
		conn.Close()
		return
	}
	if code != http.StatusOK {
		w.WriteHeader(code)
		return
	}

	profileID := r.URL.Query().Get("profileIds")
	w.Header().Set("Content-Type", "application/json")

	switch {
	case strings.Contains(r.URL.Path, "r6playerprofile/playerstats"):
		fmt.Fprint(w, `{"playerProfiles":[{"rank":18,"mmr":3400,"season":"Y9S4","lastMatchMmrChange":12,
			"general":{"kills":900,"deaths":700,"matchesWon":80,"matchesLost":60}}]}`)
	case strings.Contains(r.URL.Path, "r6operators"):
		fmt.Fprintf(w, `{"operators":{"%s":[
			{"name":"ash","kills":120,"deaths":90,"wins":30,"losses":20},
			{"name":"smoke","kills":70,"deaths":60,"roundsWon":15,"roundsLost":12}]}}`, profileID)
	case strings.Contains(r.URL.Path, "progressions"):
		fmt.Fprint(w, `{"playerProfiles":[{"seasons":[
			{"seasonId":"Y9S2","region":"EU","mmr":2900,"maxMmr":3000,"rank":17,"maxRank":18},
			{"seasonId":"Y10S1","region":"EU","mmr":3300,"maxMmr":3500,"rank":20,"maxRank":21},
			{"seasonId":"Y9S4","region":"EU","mmr":3100,"maxMmr":3200,"rank":19,"maxRank":19}]}]}`)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}
