// Package soundcloud is a minimal client for the SoundCloud public API,
// covering exactly the surface the metrics pipeline consumes: user profiles,
// cursor-paginated track and playlist listings, and bulk track lookup.
package soundcloud

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shamsmusic/scpulse/data"
)

const (
	DefaultAPIBase  = "https://api.soundcloud.com"
	DefaultTokenURL = "https://secure.soundcloud.com/oauth/token"

	// BatchSize is the number of URNs per bulk-lookup call; the upstream
	// endpoint rejects larger batches.
	BatchSize = 50

	pageLimit = 200
)

// Config carries the knobs for one client. Zero values fall back to the
// defaults below; tests shrink the backoff to keep retries fast.
type Config struct {
	ClientID     string
	ClientSecret string

	APIBase  string
	TokenURL string

	Timeout     time.Duration
	MaxAttempts int
	BackoffBase time.Duration
	BackoffCap  time.Duration
}

// New creates a client. The client holds one authenticated session for its
// whole lifetime: the token is fetched lazily on first use and refreshed
// only when it is about to expire.
func New(cfg Config, log *slog.Logger) *Client {
	if cfg.APIBase == "" {
		cfg.APIBase = DefaultAPIBase
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = DefaultTokenURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = 4
	}
	if cfg.BackoffBase == 0 {
		cfg.BackoffBase = 2 * time.Second
	}
	if cfg.BackoffCap == 0 {
		cfg.BackoffCap = 20 * time.Second
	}
	return &Client{
		cfg: cfg,
		hc:  &http.Client{Timeout: cfg.Timeout},
		log: log,
	}
}

type Client struct {
	cfg Config
	hc  *http.Client
	log *slog.Logger

	accessToken string
	expiresAt   time.Time
}

// StatusError is returned for any non-2xx response that survives the retry
// budget, carrying the status code and response body.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http status %d: %s", e.StatusCode, e.Body)
}

func retryable(status int) bool {
	switch status {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// FetchUser resolves one user profile.
func (c *Client) FetchUser(ctx context.Context, userURN string) (data.Profile, error) {
	body, err := c.get(ctx, c.cfg.APIBase+"/users/"+userURN, nil)
	if err != nil {
		return data.Profile{}, err
	}
	var u userJSON
	if err := json.Unmarshal(body, &u); err != nil {
		return data.Profile{}, fmt.Errorf("user decode error: %w", err)
	}
	return data.Profile{
		Username:   u.Username,
		Followers:  u.FollowersCount,
		TrackCount: u.TrackCount,
	}, nil
}

// FetchUserTracks walks the user's full cursor-paginated track listing. The
// listing entries are sparse; callers hydrate the URNs afterward.
func (c *Client) FetchUserTracks(ctx context.Context, userURN string) ([]data.Track, error) {
	params := url.Values{}
	params.Set("limit", fmt.Sprintf("%d", pageLimit))
	items, err := c.fetchPaged(ctx, c.cfg.APIBase+"/users/"+userURN+"/tracks", params)
	if err != nil {
		return nil, err
	}
	tracks := make([]data.Track, 0, len(items))
	for _, raw := range items {
		var t trackJSON
		if err := json.Unmarshal(raw, &t); err != nil {
			return nil, fmt.Errorf("track decode error: %w", err)
		}
		tracks = append(tracks, t.track())
	}
	return tracks, nil
}

// HydrateTracks resolves track URNs into full records via the bulk-lookup
// endpoint, in chunks of BatchSize. URNs the upstream silently drops are
// simply absent from the result; the caller's repair loop deals with them.
func (c *Client) HydrateTracks(ctx context.Context, urns []string) ([]data.Track, error) {
	var out []data.Track
	total := len(urns)
	for start := 0; start < total; start += BatchSize {
		end := start + BatchSize
		if end > total {
			end = total
		}
		batch := urns[start:end]

		params := url.Values{}
		params.Set("urns", strings.Join(batch, ","))
		params.Set("limit", fmt.Sprintf("%d", len(batch)))
		body, err := c.get(ctx, c.cfg.APIBase+"/tracks", params)
		if err != nil {
			return nil, err
		}

		var items trackCollection
		if err := json.Unmarshal(body, &items); err != nil {
			return nil, fmt.Errorf("tracks decode error: %w", err)
		}
		for _, t := range items {
			out = append(out, t.track())
		}
		c.log.Info("batch hydrated", "done", end, "total", total)
	}
	return out, nil
}

// FetchUserAlbums walks the user's playlists with track expansion and keeps
// only the ones the platform flags as albums.
func (c *Client) FetchUserAlbums(ctx context.Context, userURN string) ([]data.Album, error) {
	params := url.Values{}
	params.Set("limit", fmt.Sprintf("%d", pageLimit))
	params.Set("show_tracks", "true")
	items, err := c.fetchPaged(ctx, c.cfg.APIBase+"/users/"+userURN+"/playlists", params)
	if err != nil {
		return nil, err
	}

	var albums []data.Album
	for _, raw := range items {
		var p playlistJSON
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("playlist decode error: %w", err)
		}
		if !p.isAlbum() {
			continue
		}
		album := data.Album{
			URN:          p.URN,
			Title:        p.Title,
			PermalinkURL: p.PermalinkURL,
			ArtworkURL:   p.ArtworkURL,
		}
		for _, t := range p.Tracks {
			album.TrackURNs = append(album.TrackURNs, t.URN)
		}
		albums = append(albums, album)
	}
	return albums, nil
}

// fetchPaged follows next_href cursors until the upstream stops supplying
// one, accumulating collection entries in page order. Cursor pagination is
// always requested explicitly; it is stable under concurrent upstream
// mutation where offset pagination is not.
func (c *Client) fetchPaged(ctx context.Context, baseURL string, params url.Values) ([]json.RawMessage, error) {
	query := url.Values{}
	for k, vs := range params {
		query[k] = vs
	}
	query.Set("linked_partitioning", "true")

	next := baseURL + "?" + query.Encode()
	var out []json.RawMessage
	for next != "" {
		body, err := c.get(ctx, next, nil)
		if err != nil {
			return nil, err
		}
		var pg page
		if err := json.Unmarshal(body, &pg); err != nil {
			return nil, fmt.Errorf("page decode error: %w", err)
		}
		out = append(out, pg.Collection...)
		next = pg.NextHref
	}
	return out, nil
}

type page struct {
	Collection []json.RawMessage `json:"collection"`
	NextHref   string            `json:"next_href"`
}

// get performs one authorized GET with the retry budget: retryable statuses
// and transport-level faults back off and try again, anything else surfaces
// immediately as a StatusError.
func (c *Client) get(ctx context.Context, rawURL string, params url.Values) ([]byte, error) {
	u := rawURL
	if len(params) > 0 {
		u = rawURL + "?" + params.Encode()
	}

	for attempt := 1; ; attempt++ {
		body, status, retryAfter, err := c.do(ctx, u)
		if err != nil {
			if attempt >= c.cfg.MaxAttempts {
				return nil, fmt.Errorf("get %s: %w", u, err)
			}
			c.log.Warn("request fault, retrying", "url", u, "attempt", attempt, "error", err)
			if err := c.sleep(ctx, c.backoffFor(attempt, "")); err != nil {
				return nil, err
			}
			continue
		}
		if retryable(status) && attempt < c.cfg.MaxAttempts {
			c.log.Warn("retryable status, backing off", "url", u, "status", status, "attempt", attempt)
			if err := c.sleep(ctx, c.backoffFor(attempt, retryAfter)); err != nil {
				return nil, err
			}
			continue
		}
		if status < 200 || status >= 300 {
			return nil, &StatusError{StatusCode: status, Body: string(body)}
		}
		return body, nil
	}
}

func (c *Client) do(ctx context.Context, u string) (body []byte, status int, retryAfter string, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, 0, "", fmt.Errorf("request error: %w", err)
	}
	token, err := c.token(ctx)
	if err != nil {
		return nil, 0, "", err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, 0, "", err
	}
	defer resp.Body.Close()

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, "", err
	}
	return body, resp.StatusCode, resp.Header.Get("Retry-After"), nil
}

// backoffFor honors a server-supplied Retry-After value, otherwise doubles
// from the base per attempt up to the cap.
func (c *Client) backoffFor(attempt int, retryAfter string) time.Duration {
	if retryAfter != "" {
		if seconds, err := strconv.ParseFloat(retryAfter, 64); err == nil && seconds >= 0 {
			return time.Duration(seconds * float64(time.Second))
		}
		return c.cfg.BackoffBase
	}
	d := c.cfg.BackoffBase << (attempt - 1)
	if d > c.cfg.BackoffCap {
		d = c.cfg.BackoffCap
	}
	return d
}

func (c *Client) sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

type tokenResult struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

func (c *Client) token(ctx context.Context) (string, error) {
	if c.accessToken == "" || c.expiresAt.Before(time.Now().Add(time.Second)) {
		if err := c.fetchToken(ctx); err != nil {
			return "", err
		}
	}
	return c.accessToken, nil
}

func (c *Client) fetchToken(ctx context.Context) error {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("token request error: %w", err)
	}
	credential := base64.StdEncoding.EncodeToString([]byte(c.cfg.ClientID + ":" + c.cfg.ClientSecret))
	req.Header.Set("Authorization", "Basic "+credential)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	requestAt := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("token request error: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var result tokenResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("token decode error: %w", err)
	}

	c.accessToken = result.AccessToken
	c.expiresAt = requestAt.Add(time.Duration(result.ExpiresIn) * time.Second)
	return nil
}
