package ubi

import (
	"context"
	"fmt"
	"net/url"

	"siege-tracker/internal/config"
	"siege-tracker/internal/constants"
	"siege-tracker/internal/domain"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"
	"github.com/valyala/fasthttp"
)

const userAgent = "SiegeTracker/1.0"

const spaceID = "98a601e5-ca91-4440-b1c5-753f601a2c90"

var sandboxes = map[domain.Platform]string{
	domain.PlatformPC:   "OSBOR_PC_LNCH_A",
	domain.PlatformXbox: "OSBOR_XBOXONE_LNCH_A",
	domain.PlatformPSN:  "OSBOR_PS4_LNCH_A",
}

var platformTypes = map[domain.Platform]string{
	domain.PlatformPC:   "uplay",
	domain.PlatformXbox: "xbl",
	domain.PlatformPSN:  "psn",
}

// Client queries the Ubisoft public services. Transport failures and 5xx
// responses are retried here; an expired session (401) is handled one
// level up by re-acquiring through the SessionManager.
type Client struct {
	cfg      *config.Config
	http     *fasthttp.Client
	sessions *SessionManager
	logger   zerolog.Logger
}

func NewHTTPClient() *fasthttp.Client {
	return &fasthttp.Client{
		MaxConnsPerHost:     constants.MaxConnsPerHost,
		ReadTimeout:         constants.ClientReadTimeout,
		WriteTimeout:        constants.ClientWriteTimeout,
		MaxIdleConnDuration: constants.MaxIdleConnDuration,
		// The fetch layer owns retries; keep fasthttp from re-issuing
		// idempotent requests on its own.
		MaxIdemponentCallAttempts: 1,
	}
}

func NewClient(cfg *config.Config, client *fasthttp.Client, sessions *SessionManager, logger zerolog.Logger) *Client {
	return &Client{cfg: cfg, http: client, sessions: sessions, logger: logger}
}

// ResolveProfile maps a (username, platform) pair to the upstream profile.
// First match wins when the lookup is ambiguous.
func (c *Client) ResolveProfile(ctx context.Context, username string, platform domain.Platform) (*domain.PlayerIdentity, error) {
	u := fmt.Sprintf("%s/v3/profiles?nameOnPlatform=%s&platformType=%s",
		c.cfg.APIBaseURL, url.QueryEscape(username), platformTypes[platform])

	decoded, err := getAuthed[profilesResponse](ctx, c, u)
	if err != nil {
		return nil, err
	}
	if len(decoded.Profiles) == 0 {
		return nil, errors.Wrapf(domain.ErrPlayerNotFound, "%s on %s", username, platform)
	}

	p := decoded.Profiles[0]
	return &domain.PlayerIdentity{
		ProfileID:   p.ProfileID,
		UserID:      p.UserID,
		Platform:    platform,
		DisplayName: p.NameOnPlatform,
	}, nil
}

// RankedStats fetches the ranked/general stat block for a profile. A nil
// result means the upstream knows the profile but has no stats for it.
func (c *Client) RankedStats(ctx context.Context, profileID string, platform domain.Platform) (*RankedProfile, error) {
	u := fmt.Sprintf("%s/v1/spaces/%s/sandboxes/%s/r6playerprofile/playerstats?profileIds=%s",
		c.cfg.APIBaseURL, spaceID, sandboxes[platform], profileID)

	decoded, err := getAuthed[playerStatsResponse](ctx, c, u)
	if err != nil {
		return nil, err
	}
	if len(decoded.PlayerProfiles) == 0 {
		return nil, nil
	}
	return &decoded.PlayerProfiles[0], nil
}

// OperatorStats fetches per-operator stats for a profile.
func (c *Client) OperatorStats(ctx context.Context, profileID string, platform domain.Platform) ([]RawOperator, error) {
	u := fmt.Sprintf("%s/v1/spaces/%s/sandboxes/%s/r6operators?profileIds=%s",
		c.cfg.APIBaseURL, spaceID, sandboxes[platform], profileID)

	decoded, err := getAuthed[operatorsResponse](ctx, c, u)
	if err != nil {
		return nil, err
	}
	return decoded.Operators[profileID], nil
}

// SeasonalStats fetches the ranked season progression for a profile.
func (c *Client) SeasonalStats(ctx context.Context, profileID string, platform domain.Platform) ([]RawSeason, error) {
	u := fmt.Sprintf("%s/v1/spaces/%s/sandboxes/%s/r6ranked/playerprofile/progressions?profileIds=%s",
		c.cfg.APIBaseURL, spaceID, sandboxes[platform], profileID)

	decoded, err := getAuthed[seasonsResponse](ctx, c, u)
	if err != nil {
		return nil, err
	}
	if len(decoded.PlayerProfiles) == 0 {
		return nil, nil
	}
	return decoded.PlayerProfiles[0].Seasons, nil
}

// getAuthed performs an authenticated GET. On a 401 the cached session is
// dropped, a fresh one acquired and the call retried exactly once before
// the failure surfaces.
func getAuthed[T any](ctx context.Context, c *Client, u string) (*T, error) {
	sess, err := c.sessions.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	status, body, err := c.do(ctx, u, sess)
	if err != nil {
		return nil, err
	}

	if status == fasthttp.StatusUnauthorized {
		c.logger.Debug().Str("url", u).Msg("session rejected, refreshing and retrying once")
		c.sessions.Invalidate()

		sess, err = c.sessions.Acquire(ctx)
		if err != nil {
			return nil, err
		}
		status, body, err = c.do(ctx, u, sess)
		if err != nil {
			return nil, err
		}
		if status == fasthttp.StatusUnauthorized {
			return nil, errors.Wrapf(domain.ErrSessionExpired, "after refresh for %s", u)
		}
	}

	if status != fasthttp.StatusOK {
		return nil, errors.Wrapf(domain.ErrUpstreamStatus, "status %d for %s", status, u)
	}

	var decoded T
	if err := sonic.Unmarshal(body, &decoded); err != nil {
		return nil, errors.Wrapf(err, "decode response from %s", u)
	}
	return &decoded, nil
}

// do is the resilient fetch: network errors and 5xx responses retry up to
// FetchMaxAttempts with a fixed delay. When retries run out on a 5xx the
// last response is handed back rather than an error; 401 passes straight
// through for the auth layer above.
func (c *Client) do(ctx context.Context, u string, sess *domain.Session) (int, []byte, error) {
	var (
		status    int
		body      []byte
		transport bool
	)

	backoff := retry.WithMaxRetries(constants.FetchMaxAttempts-1, retry.NewConstant(constants.FetchRetryDelay))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		st, b, err := c.roundTrip(ctx, u, sess)
		if err != nil {
			transport = true
			return retry.RetryableError(err)
		}
		transport = false
		status, body = st, b
		if st >= fasthttp.StatusInternalServerError {
			return retry.RetryableError(errors.Wrapf(domain.ErrUpstreamStatus, "status %d", st))
		}
		return nil
	})
	if err != nil {
		// Hand back the captured 5xx only when it was the final attempt;
		// a trailing transport failure surfaces as the error.
		if !transport && status >= fasthttp.StatusInternalServerError {
			return status, body, nil
		}
		return 0, nil, errors.Wrapf(err, "fetch %s", u)
	}
	return status, body, nil
}

func (c *Client) roundTrip(ctx context.Context, u string, sess *domain.Session) (int, []byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(u)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Ubi-AppId", c.cfg.UbiAppID)
	req.Header.Set("Authorization", "ubi_v1 t="+sess.Ticket)
	req.Header.Set("Ubi-SessionId", sess.SessionID)
	req.Header.Set("User-Agent", userAgent)

	var err error
	if deadline, ok := ctx.Deadline(); ok {
		err = c.http.DoDeadline(req, resp, deadline)
	} else {
		err = c.http.Do(req, resp)
	}
	if err != nil {
		return 0, nil, err
	}

	// resp is pooled, the body must outlive the release
	return resp.StatusCode(), append([]byte(nil), resp.Body()...), nil
}

type profilesResponse struct {
	Profiles []rawProfile `json:"profiles"`
}

type rawProfile struct {
	ProfileID      string `json:"profileId"`
	UserID         string `json:"userId"`
	PlatformType   string `json:"platformType"`
	NameOnPlatform string `json:"nameOnPlatform"`
}

type playerStatsResponse struct {
	PlayerProfiles []RankedProfile `json:"playerProfiles"`
}

// RankedProfile is the raw ranked/general stat block. Fields the upstream
// omits decode to zero.
type RankedProfile struct {
	Rank               int        `json:"rank"`
	MMR                int        `json:"mmr"`
	Season             string     `json:"season"`
	LastMatchMMRChange int        `json:"lastMatchMmrChange"`
	General            RawGeneral `json:"general"`
}

type RawGeneral struct {
	Kills       int `json:"kills"`
	Deaths      int `json:"deaths"`
	MatchesWon  int `json:"matchesWon"`
	MatchesLost int `json:"matchesLost"`
}

type operatorsResponse struct {
	Operators map[string][]RawOperator `json:"operators"`
}

// RawOperator carries both the canonical wins/losses keys and the
// roundsWon/roundsLost alternates some sandboxes return.
type RawOperator struct {
	Name       string `json:"name"`
	Kills      int    `json:"kills"`
	Deaths     int    `json:"deaths"`
	Wins       int    `json:"wins"`
	Losses     int    `json:"losses"`
	RoundsWon  int    `json:"roundsWon"`
	RoundsLost int    `json:"roundsLost"`
}

type seasonsResponse struct {
	PlayerProfiles []struct {
		Seasons []RawSeason `json:"seasons"`
	} `json:"playerProfiles"`
}

type RawSeason struct {
	SeasonID string `json:"seasonId"`
	Region   string `json:"region"`
	MMR      int    `json:"mmr"`
	MaxMMR   int    `json:"maxMmr"`
	Rank     int    `json:"rank"`
	MaxRank  int    `json:"maxRank"`
}
