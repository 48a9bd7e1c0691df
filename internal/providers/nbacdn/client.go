package nbacdn

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/preston-bernstein/nba-stats-service/internal/domain"
	"github.com/preston-bernstein/nba-stats-service/internal/domain/games"
	"github.com/preston-bernstein/nba-stats-service/internal/providers"
	"github.com/preston-bernstein/nba-stats-service/internal/timeutil"
)

// Config controls how the client reaches the NBA CDN and stats endpoints.
type Config struct {
	CDNBaseURL   string
	StatsBaseURL string
	HTTPClient   *http.Client
	Timeout      time.Duration
	UserAgent    string
}

// Client fetches raw payloads for every resource kind. It performs a single attempt;
// retries and rate limiting are layered on by the providers decorators.
type Client struct {
	cdnBaseURL   string
	statsBaseURL string
	userAgent    string
	httpClient   httpDoer
	now          func() time.Time
}

var _ providers.Fetcher = (*Client)(nil)

var errUpstreamRefused = errors.New("upstream refused request")

// NewClient constructs a client with the provided configuration.
func NewClient(cfg Config) *Client {
	ua := cfg.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	return &Client{
		cdnBaseURL:   normalizeBaseURL(cfg.CDNBaseURL, defaultCDNBaseURL),
		statsBaseURL: normalizeBaseURL(cfg.StatsBaseURL, defaultStatsBaseURL),
		userAgent:    ua,
		httpClient:   resolveHTTPClient(cfg.HTTPClient, cfg.Timeout),
		now:          time.Now,
	}
}

// Fetch retrieves the payload for req.
func (c *Client) Fetch(ctx context.Context, req providers.Request) ([]byte, error) {
	endpoint, err := c.endpoint(req)
	if err != nil {
		return nil, &providers.FetchError{Kind: req.Kind, ID: req.ID, Err: err}
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &providers.FetchError{Kind: req.Kind, ID: req.ID, Err: err}
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)
	httpReq.Header.Set("Referer", defaultReferer)
	httpReq.Header.Set("Origin", strings.TrimSuffix(defaultReferer, "/"))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &providers.FetchError{Kind: req.Kind, ID: req.ID, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		if err != nil {
			return nil, &providers.FetchError{Kind: req.Kind, ID: req.ID, StatusCode: resp.StatusCode, Err: err}
		}
		return body, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, &providers.FetchError{Kind: req.Kind, ID: req.ID, StatusCode: resp.StatusCode, Err: providers.ErrUpstreamNotFound}
	case resp.StatusCode == http.StatusForbidden:
		// stats.nba.com answers throttled or blocked clients with 403.
		return nil, &providers.FetchError{Kind: req.Kind, ID: req.ID, StatusCode: resp.StatusCode, Err: errUpstreamRefused}
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &providers.RateLimitError{
			Provider:   ProviderName,
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"), c.now()),
			Remaining:  resp.Header.Get("X-RateLimit-Remaining"),
			Message:    "nbacdn rate limited",
		}
	default:
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, errorSnippetBytes))
		return nil, &providers.FetchError{
			Kind:       req.Kind,
			ID:         req.ID,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status: %s", strings.TrimSpace(string(snippet))),
		}
	}
}

func (c *Client) endpoint(req providers.Request) (string, error) {
	switch req.Kind {
	case domain.KindGame, domain.KindBoxScore:
		if err := games.ValidateID(req.ID); err != nil {
			return "", fmt.Errorf("%w: %v", providers.ErrInvalidRequest, err)
		}
		return c.cdnBaseURL + "/static/json/liveData/boxscore/boxscore_" + req.ID + ".json", nil
	case domain.KindPlayByPlay:
		if err := games.ValidateID(req.ID); err != nil {
			return "", fmt.Errorf("%w: %v", providers.ErrInvalidRequest, err)
		}
		return c.cdnBaseURL + "/static/json/liveData/playbyplay/playbyplay_" + req.ID + ".json", nil
	case domain.KindSchedule:
		return c.cdnBaseURL + "/static/json/staticData/scheduleLeagueV2_1.json", nil
	case domain.KindPlayer:
		q := url.Values{}
		q.Set("LeagueID", "00")
		q.Set("Season", c.season(req.Season))
		return c.statsBaseURL + "/stats/playerindex?" + q.Encode(), nil
	case domain.KindTeam:
		if req.ID == "" {
			return "", fmt.Errorf("%w: team id required", providers.ErrInvalidRequest)
		}
		q := url.Values{}
		q.Set("TeamID", req.ID)
		return c.statsBaseURL + "/stats/teamdetails?" + q.Encode(), nil
	case domain.KindStandings:
		q := url.Values{}
		q.Set("LeagueID", "00")
		q.Set("Season", c.season(req.Season))
		q.Set("SeasonType", "Regular Season")
		return c.statsBaseURL + "/stats/leaguestandingsv3?" + q.Encode(), nil
	default:
		return "", fmt.Errorf("%w: unsupported kind %q", providers.ErrInvalidRequest, req.Kind)
	}
}

func (c *Client) season(raw string) string {
	if season, err := timeutil.NormalizeSeason(raw); err == nil {
		return season
	}
	return timeutil.SeasonForDate(c.now().In(timeutil.LocationOrDefault("")))
}
