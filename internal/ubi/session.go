package ubi

import (
	"context"
	"sync"
	"time"

	"siege-tracker/internal/config"
	"siege-tracker/internal/constants"
	"siege-tracker/internal/domain"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
	"golang.org/x/sync/singleflight"
)

// SessionManager owns the single upstream session for the process. Login
// is idempotent upstream, but refreshes are still coalesced so concurrent
// callers hitting an expired session share one login call.
type SessionManager struct {
	cfg    *config.Config
	http   *fasthttp.Client
	logger zerolog.Logger
	now    func() time.Time

	mu      sync.RWMutex
	current *domain.Session
	group   singleflight.Group
}

func NewSessionManager(cfg *config.Config, client *fasthttp.Client, logger zerolog.Logger) *SessionManager {
	return &SessionManager{cfg: cfg, http: client, logger: logger, now: time.Now}
}

// Acquire returns the cached session while it is still valid, otherwise
// performs a fresh login with the configured credentials.
func (m *SessionManager) Acquire(ctx context.Context) (*domain.Session, error) {
	m.mu.RLock()
	current := m.current
	m.mu.RUnlock()

	if current.Valid(m.now()) {
		return current, nil
	}

	v, err, _ := m.group.Do("login", func() (any, error) {
		// another caller may have refreshed while we waited on the group
		m.mu.RLock()
		current := m.current
		m.mu.RUnlock()
		if current.Valid(m.now()) {
			return current, nil
		}
		return m.login(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Session), nil
}

// Invalidate drops the cached session so the next Acquire logs in again.
// Called by the access layer when the upstream rejects a ticket.
func (m *SessionManager) Invalidate() {
	m.mu.Lock()
	m.current = nil
	m.mu.Unlock()
	m.logger.Debug().Msg("session invalidated")
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Ticket    string `json:"ticket"`
	SessionID string `json:"sessionId"`
	UserID    string `json:"userId"`
}

func (m *SessionManager) login(ctx context.Context) (*domain.Session, error) {
	if !m.cfg.HasCredentials() {
		return nil, domain.ErrAuthConfig
	}

	payload, err := sonic.Marshal(loginRequest{Email: m.cfg.UbiEmail, Password: m.cfg.UbiPassword})
	if err != nil {
		return nil, errors.Wrap(err, "encode login request")
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(m.cfg.APIBaseURL + "/v3/profiles/sessions")
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.Header.Set("Ubi-AppId", m.cfg.UbiAppID)
	req.Header.Set("Ubi-RequestedPlatformType", "uplay")
	req.Header.Set("User-Agent", userAgent)
	req.SetBody(payload)

	if deadline, ok := ctx.Deadline(); ok {
		err = m.http.DoDeadline(req, resp, deadline)
	} else {
		err = m.http.Do(req, resp)
	}
	if err != nil {
		return nil, errors.Wrap(err, "ubisoft login")
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, errors.Wrapf(domain.ErrAuthFailure, "status %d", resp.StatusCode())
	}

	var decoded sessionResponse
	if err := sonic.Unmarshal(resp.Body(), &decoded); err != nil {
		return nil, errors.Wrap(err, "decode session response")
	}

	now := m.now()
	sess := &domain.Session{
		Ticket:    decoded.Ticket,
		SessionID: decoded.SessionID,
		UserID:    decoded.UserID,
		IssuedAt:  now,
		ExpiresAt: now.Add(constants.SessionTTL),
	}

	m.mu.Lock()
	m.current = sess
	m.mu.Unlock()

	m.logger.Info().Time("expires_at", sess.ExpiresAt).Msg("ubisoft session acquired")
	return sess, nil
}
