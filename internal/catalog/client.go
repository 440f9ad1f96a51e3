package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mixtape-cli/mixtape/internal/shared"
	"golang.org/x/time/rate"
)

const (
	baseURL = "https://api.spotify.com/v1"

	connectTimeout = 5 * time.Second
	requestTimeout = 10 * time.Second

	// maxAttempts bounds retries for connection errors and timeouts.
	// Rate-limit waits (429) do not consume attempts.
	maxAttempts = 3
	backoffUnit = time.Second

	metadataBatchSize  = 50
	featureBatchSize   = 100
	addTracksBatchSize = 100
)

// statusError marks a non-2xx response that is neither an auth failure nor a
// rate limit. Read operations treat it as "no results" so the acquisition
// pipeline can fall through to its next query variant.
type statusError struct {
	Code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("catalog API error: status %d", e.Code)
}

// Seeds is the seed set for a recommendation query. The catalog accepts at
// most 5 combined seeds.
type Seeds struct {
	Genres  []string
	Artists []string
	Tracks  []string
}

// Count returns the combined number of seeds.
func (s Seeds) Count() int {
	return len(s.Genres) + len(s.Artists) + len(s.Tracks)
}

// Client performs authenticated catalog calls with retry, backoff, and
// rate-limit handling. It is the only component touching the network.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenProvider
	limiter    *rate.Limiter
	logger     *log.Logger
	sleep      func(time.Duration)
}

// ClientOpts contains configuration options for creating a Client.
type ClientOpts struct {
	BaseURL    string
	HTTPClient *http.Client
	Tokens     TokenProvider
	RateLimit  float64 // Requests per second; 0 disables client-side pacing
	Logger     *log.Logger
}

// NewClient creates a Client with the provided options.
func NewClient(opts ClientOpts) (*Client, error) {
	if opts.Tokens == nil {
		return nil, fmt.Errorf("%w: token provider is required", shared.ErrMissingCredentials)
	}
	if opts.BaseURL == "" {
		opts.BaseURL = baseURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{
			Timeout: requestTimeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{Timeout: connectTimeout}).DialContext,
			},
		}
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}

	return &Client{
		baseURL:    opts.BaseURL,
		httpClient: opts.HTTPClient,
		tokens:     opts.Tokens,
		limiter:    limiter,
		logger:     opts.Logger,
		sleep:      time.Sleep,
	}, nil
}

// doRequest performs an authenticated request with the client's retry policy:
// up to maxAttempts tries with linear backoff (1x, 2x, 3x seconds) on
// transport errors, a blocking Retry-After wait on 429, and an immediate
// abort on 401/403.
func (c *Client) doRequest(ctx context.Context, method, endpoint string, body, result any) error {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return err
	}

	var payload []byte
	if body != nil {
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	apiURL := c.baseURL + endpoint

	for attempt := 1; ; {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return err
			}
		}

		var reader *bytes.Reader
		var req *http.Request
		if payload != nil {
			reader = bytes.NewReader(payload)
			req, err = http.NewRequestWithContext(ctx, method, apiURL, reader)
		} else {
			req, err = http.NewRequestWithContext(ctx, method, apiURL, nil)
		}
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}

		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if attempt >= maxAttempts {
				return fmt.Errorf("%w: %s %s failed after %d attempts: %v", shared.ErrTimeout, method, endpoint, attempt, err)
			}
			wait := backoffUnit * time.Duration(attempt)
			c.logger.Warn("catalog request failed, retrying", "endpoint", endpoint, "attempt", attempt, "wait", wait, "err", err)
			c.sleep(wait)
			attempt++
			continue
		}

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			defer resp.Body.Close()
			if result != nil {
				if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
					return fmt.Errorf("failed to decode response: %w", err)
				}
			}
			return nil

		case resp.StatusCode == http.StatusTooManyRequests:
			wait := retryAfter(resp.Header)
			resp.Body.Close()
			c.logger.Warn("rate limited by catalog", "endpoint", endpoint, "wait", wait)
			c.sleep(wait)
			// 429 waits are a blocking pause, not a failed attempt.
			continue

		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			resp.Body.Close()
			return fmt.Errorf("%w: status %d from %s", shared.ErrAuthFailed, resp.StatusCode, endpoint)

		default:
			resp.Body.Close()
			c.logger.Warn("catalog returned non-success status", "endpoint", endpoint, "status", resp.StatusCode)
			return &statusError{Code: resp.StatusCode}
		}
	}
}

// retryAfter parses the Retry-After header in seconds, defaulting to 1s.
func retryAfter(h http.Header) time.Duration {
	if v := h.Get("Retry-After"); v != "" {
		if seconds, err := strconv.Atoi(v); err == nil && seconds >= 0 {
			return time.Duration(seconds) * time.Second
		}
	}
	return time.Second
}

// emptyOnStatus converts "other non-2xx" errors into a nil error so read
// paths can treat them as empty result sets.
func emptyOnStatus(err error) error {
	var se *statusError
	if errors.As(err, &se) {
		return nil
	}
	return err
}

// SearchTracks performs a track search. Non-auth upstream failures yield an
// empty slice, never an error, so callers can try their next query variant.
func (c *Client) SearchTracks(ctx context.Context, query string, limit int) ([]Track, error) {
	if limit <= 0 || limit > 50 {
		limit = 50
	}

	endpoint := fmt.Sprintf("/search?q=%s&type=track&limit=%d", url.QueryEscape(query), limit)

	var response struct {
		Tracks struct {
			Items []Track `json:"items"`
		} `json:"tracks"`
	}

	if err := c.doRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, emptyOnStatus(err)
	}

	return response.Tracks.Items, nil
}

// SearchArtist resolves an artist name to its first search hit.
func (c *Client) SearchArtist(ctx context.Context, name string) (*Artist, error) {
	endpoint := fmt.Sprintf("/search?q=%s&type=artist&limit=1", url.QueryEscape(name))

	var response struct {
		Artists struct {
			Items []Artist `json:"items"`
		} `json:"artists"`
	}

	if err := c.doRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		if err := emptyOnStatus(err); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s", shared.ErrArtistNotFound, name)
	}
	if len(response.Artists.Items) == 0 {
		return nil, fmt.Errorf("%w: %s", shared.ErrArtistNotFound, name)
	}

	return &response.Artists.Items[0], nil
}

// Recommendations fetches seed-based recommendations. Tunables are audio
// feature parameters keyed target_*/min_*/max_* exactly as the catalog
// expects them; min/max bounds act as hard filters on this endpoint.
func (c *Client) Recommendations(ctx context.Context, seeds Seeds, tunables map[string]float64, limit int) ([]Track, error) {
	if seeds.Count() == 0 {
		return nil, fmt.Errorf("%w: recommendation query needs at least one seed", shared.ErrInvalidArgument)
	}
	if seeds.Count() > 5 {
		return nil, fmt.Errorf("%w: at most 5 combined seeds allowed, got %d", shared.ErrInvalidArgument, seeds.Count())
	}
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	if len(seeds.Genres) > 0 {
		params.Set("seed_genres", strings.Join(seeds.Genres, ","))
	}
	if len(seeds.Artists) > 0 {
		params.Set("seed_artists", strings.Join(seeds.Artists, ","))
	}
	if len(seeds.Tracks) > 0 {
		params.Set("seed_tracks", strings.Join(seeds.Tracks, ","))
	}

	keys := make([]string, 0, len(tunables))
	for k := range tunables {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		params.Set(k, strconv.FormatFloat(tunables[k], 'f', -1, 64))
	}

	endpoint := "/recommendations?" + params.Encode()

	var response struct {
		Tracks []Track `json:"tracks"`
	}

	if err := c.doRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, emptyOnStatus(err)
	}

	return response.Tracks, nil
}

// SeveralTracks retrieves authoritative metadata for any number of track
// IDs, chunked at the catalog's 50-ID batch ceiling.
func (c *Client) SeveralTracks(ctx context.Context, trackIDs []string) ([]Track, error) {
	var tracks []Track

	for start := 0; start < len(trackIDs); start += metadataBatchSize {
		end := min(start+metadataBatchSize, len(trackIDs))

		ids := strings.Join(trackIDs[start:end], ",")
		endpoint := fmt.Sprintf("/tracks?ids=%s", url.QueryEscape(ids))

		var response struct {
			Tracks []Track `json:"tracks"`
		}

		if err := c.doRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
			if err := emptyOnStatus(err); err != nil {
				return nil, err
			}
			continue
		}

		tracks = append(tracks, response.Tracks...)
	}

	return tracks, nil
}

// AudioFeatures retrieves audio-feature vectors keyed by track ID, chunked
// at the endpoint's 100-ID ceiling.
func (c *Client) AudioFeatures(ctx context.Context, trackIDs []string) (map[string]AudioFeatures, error) {
	features := make(map[string]AudioFeatures, len(trackIDs))

	for start := 0; start < len(trackIDs); start += featureBatchSize {
		end := min(start+featureBatchSize, len(trackIDs))

		ids := strings.Join(trackIDs[start:end], ",")
		endpoint := fmt.Sprintf("/audio-features?ids=%s", url.QueryEscape(ids))

		var response struct {
			AudioFeatures []AudioFeatures `json:"audio_features"`
		}

		if err := c.doRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
			if err := emptyOnStatus(err); err != nil {
				return nil, err
			}
			continue
		}

		for _, f := range response.AudioFeatures {
			if f.ID != "" {
				features[f.ID] = f
			}
		}
	}

	return features, nil
}

// ArtistTopTracks fetches an artist's most popular tracks.
func (c *Client) ArtistTopTracks(ctx context.Context, artistID string) ([]Track, error) {
	endpoint := fmt.Sprintf("/artists/%s/top-tracks?market=from_token", url.PathEscape(artistID))

	var response struct {
		Tracks []Track `json:"tracks"`
	}

	if err := c.doRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, emptyOnStatus(err)
	}

	return response.Tracks, nil
}

// CurrentUser retrieves the authenticated user's profile.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	var user User
	if err := c.doRequest(ctx, http.MethodGet, "/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// CreatePlaylist creates a named playlist for the given user.
func (c *Client) CreatePlaylist(ctx context.Context, userID, name, description string, public bool) (*Playlist, error) {
	body := struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Public      bool   `json:"public"`
	}{Name: name, Description: description, Public: public}

	endpoint := fmt.Sprintf("/users/%s/playlists", url.PathEscape(userID))

	var playlist Playlist
	if err := c.doRequest(ctx, http.MethodPost, endpoint, body, &playlist); err != nil {
		return nil, err
	}

	return &playlist, nil
}

// AddTracks appends track URIs to a playlist in batches of 100.
func (c *Client) AddTracks(ctx context.Context, playlistID string, uris []string) error {
	for start := 0; start < len(uris); start += addTracksBatchSize {
		end := min(start+addTracksBatchSize, len(uris))

		body := struct {
			URIs []string `json:"uris"`
		}{URIs: uris[start:end]}

		endpoint := fmt.Sprintf("/playlists/%s/tracks", url.PathEscape(playlistID))
		if err := c.doRequest(ctx, http.MethodPost, endpoint, body, nil); err != nil {
			return err
		}
	}

	return nil
}
