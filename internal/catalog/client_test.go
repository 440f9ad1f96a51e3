package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mixtape-cli/mixtape/internal/shared"
	mxtest "github.com/mixtape-cli/mixtape/internal/testing"
)

// testClient builds a client against the given handler with sleeps recorded
// instead of executed.
func testClient(t *testing.T, handler http.Handler) (*Client, *[]time.Duration, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(ClientOpts{
		BaseURL: server.URL,
		Tokens:  StaticToken("test-token"),
		Logger:  shared.NewLogger(io.Discard),
	})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	var sleeps []time.Duration
	client.sleep = func(d time.Duration) { sleeps = append(sleeps, d) }

	return client, &sleeps, server
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Fatalf("failed to encode response: %v", err)
	}
}

func TestNewClient(t *testing.T) {
	t.Run("requires a token provider", func(t *testing.T) {
		_, err := NewClient(ClientOpts{})
		if !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("error = %v, want ErrMissingCredentials", err)
		}
	})

	t.Run("defaults are applied", func(t *testing.T) {
		client, err := NewClient(ClientOpts{Tokens: StaticToken("tok")})
		if err != nil {
			t.Fatalf("NewClient() error = %v", err)
		}
		if client.baseURL == "" {
			t.Error("baseURL not defaulted")
		}
		if client.httpClient == nil || client.httpClient.Timeout != requestTimeout {
			t.Error("http client not defaulted with request timeout")
		}
		if client.limiter != nil {
			t.Error("limiter created without a rate limit")
		}
	})
}

func TestClient_RetryPolicy(t *testing.T) {
	t.Run("transport errors retry with linear backoff", func(t *testing.T) {
		client, err := NewClient(ClientOpts{
			Tokens: StaticToken("test-token"),
			HTTPClient: &http.Client{
				Transport: mxtest.NewMockRoundTripper(nil, errors.New("connection refused")),
			},
			Logger: shared.NewLogger(io.Discard),
		})
		if err != nil {
			t.Fatalf("NewClient() error = %v", err)
		}
		var recorded []time.Duration
		sleeps := &recorded
		client.sleep = func(d time.Duration) { recorded = append(recorded, d) }

		_, err = client.CurrentUser(context.Background())
		if !errors.Is(err, shared.ErrTimeout) {
			t.Fatalf("error = %v, want ErrTimeout", err)
		}
		want := []time.Duration{time.Second, 2 * time.Second}
		if len(*sleeps) != len(want) {
			t.Fatalf("slept %d times, want %d", len(*sleeps), len(want))
		}
		for i, d := range want {
			if (*sleeps)[i] != d {
				t.Errorf("sleep[%d] = %v, want %v", i, (*sleeps)[i], d)
			}
		}
	})

	t.Run("429 waits Retry-After without consuming attempts", func(t *testing.T) {
		calls := 0
		client, sleeps, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			// More rate-limit rounds than the retry budget allows for
			// transport errors; they must not abort the request.
			if calls <= 4 {
				w.Header().Set("Retry-After", "3")
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			writeJSON(t, w, User{ID: "user1"})
		}))

		user, err := client.CurrentUser(context.Background())
		if err != nil {
			t.Fatalf("CurrentUser() error = %v", err)
		}
		if user.ID != "user1" {
			t.Errorf("user ID = %q, want user1", user.ID)
		}
		if len(*sleeps) != 4 {
			t.Fatalf("slept %d times, want 4", len(*sleeps))
		}
		for i, d := range *sleeps {
			if d != 3*time.Second {
				t.Errorf("sleep[%d] = %v, want 3s from Retry-After", i, d)
			}
		}
	})

	t.Run("429 without Retry-After waits one second", func(t *testing.T) {
		calls := 0
		client, sleeps, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			if calls == 1 {
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			writeJSON(t, w, User{ID: "user1"})
		}))

		if _, err := client.CurrentUser(context.Background()); err != nil {
			t.Fatalf("CurrentUser() error = %v", err)
		}
		if len(*sleeps) != 1 || (*sleeps)[0] != time.Second {
			t.Errorf("sleeps = %v, want a single 1s default wait", *sleeps)
		}
	})

	t.Run("401 aborts immediately", func(t *testing.T) {
		calls := 0
		client, sleeps, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			w.WriteHeader(http.StatusUnauthorized)
		}))

		_, err := client.CurrentUser(context.Background())
		if !errors.Is(err, shared.ErrAuthFailed) {
			t.Fatalf("error = %v, want ErrAuthFailed", err)
		}
		if calls != 1 {
			t.Errorf("made %d requests, want 1", calls)
		}
		if len(*sleeps) != 0 {
			t.Errorf("slept %v, want no waits", *sleeps)
		}
	})

	t.Run("403 aborts immediately", func(t *testing.T) {
		client, _, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))

		_, err := client.CurrentUser(context.Background())
		if !errors.Is(err, shared.ErrAuthFailed) {
			t.Errorf("error = %v, want ErrAuthFailed", err)
		}
	})

	t.Run("bearer token is attached", func(t *testing.T) {
		client, _, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
				t.Errorf("Authorization = %q, want bearer test-token", got)
			}
			writeJSON(t, w, User{ID: "user1"})
		}))

		if _, err := client.CurrentUser(context.Background()); err != nil {
			t.Fatalf("CurrentUser() error = %v", err)
		}
	})
}

func TestClient_SearchTracks(t *testing.T) {
	t.Run("parses results", func(t *testing.T) {
		client, _, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("type"); got != "track" {
				t.Errorf("type = %q, want track", got)
			}
			writeJSON(t, w, map[string]any{
				"tracks": map[string]any{
					"items": []Track{{ID: "t1", URI: "spotify:track:t1", Name: "Song"}},
				},
			})
		}))

		tracks, err := client.SearchTracks(context.Background(), "grunge", 10)
		if err != nil {
			t.Fatalf("SearchTracks() error = %v", err)
		}
		if len(tracks) != 1 || tracks[0].ID != "t1" {
			t.Errorf("tracks = %v, want single t1", tracks)
		}
	})

	t.Run("non-auth failure yields empty results", func(t *testing.T) {
		client, _, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))

		tracks, err := client.SearchTracks(context.Background(), "anything", 10)
		if err != nil {
			t.Fatalf("SearchTracks() error = %v, want nil for upstream 502", err)
		}
		if len(tracks) != 0 {
			t.Errorf("tracks = %v, want empty", tracks)
		}
	})

	t.Run("auth failure propagates", func(t *testing.T) {
		client, _, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))

		_, err := client.SearchTracks(context.Background(), "anything", 10)
		if !errors.Is(err, shared.ErrAuthFailed) {
			t.Errorf("error = %v, want ErrAuthFailed", err)
		}
	})
}

func TestClient_SearchArtist(t *testing.T) {
	t.Run("first hit wins", func(t *testing.T) {
		client, _, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(t, w, map[string]any{
				"artists": map[string]any{
					"items": []Artist{{ID: "a1", Name: "Nirvana"}, {ID: "a2", Name: "Nirvana Tribute"}},
				},
			})
		}))

		artist, err := client.SearchArtist(context.Background(), "Nirvana")
		if err != nil {
			t.Fatalf("SearchArtist() error = %v", err)
		}
		if artist.ID != "a1" {
			t.Errorf("artist = %v, want first hit a1", artist)
		}
	})

	t.Run("no hits", func(t *testing.T) {
		client, _, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(t, w, map[string]any{"artists": map[string]any{"items": []Artist{}}})
		}))

		_, err := client.SearchArtist(context.Background(), "Nobody")
		if !errors.Is(err, shared.ErrArtistNotFound) {
			t.Errorf("error = %v, want ErrArtistNotFound", err)
		}
	})
}

func TestClient_Recommendations(t *testing.T) {
	t.Run("seed count validation", func(t *testing.T) {
		client, _, _ := testClient(t, http.NotFoundHandler())

		_, err := client.Recommendations(context.Background(), Seeds{}, nil, 10)
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("zero seeds: error = %v, want ErrInvalidArgument", err)
		}

		tooMany := Seeds{Genres: []string{"rock"}, Artists: []string{"a", "b", "c"}, Tracks: []string{"t", "u"}}
		_, err = client.Recommendations(context.Background(), tooMany, nil, 10)
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("six seeds: error = %v, want ErrInvalidArgument", err)
		}
	})

	t.Run("seeds and tunables in query", func(t *testing.T) {
		client, _, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			if got := q.Get("seed_genres"); got != "grunge" {
				t.Errorf("seed_genres = %q, want grunge", got)
			}
			if got := q.Get("min_energy"); got != "0.9" {
				t.Errorf("min_energy = %q, want 0.9", got)
			}
			if got := q.Get("target_tempo"); got != "140" {
				t.Errorf("target_tempo = %q, want 140", got)
			}
			writeJSON(t, w, map[string]any{"tracks": []Track{{ID: "t1", URI: "u1"}}})
		}))

		tracks, err := client.Recommendations(context.Background(), Seeds{Genres: []string{"grunge"}}, map[string]float64{
			"min_energy":   0.9,
			"target_tempo": 140,
		}, 20)
		if err != nil {
			t.Fatalf("Recommendations() error = %v", err)
		}
		if len(tracks) != 1 {
			t.Errorf("got %d tracks, want 1", len(tracks))
		}
	})
}

func TestClient_Batching(t *testing.T) {
	ids := func(n int) []string {
		out := make([]string, n)
		for i := range out {
			out[i] = fmt.Sprintf("id%d", i)
		}
		return out
	}

	t.Run("several tracks chunks at 50", func(t *testing.T) {
		var sizes []int
		client, _, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sizes = append(sizes, len(strings.Split(r.URL.Query().Get("ids"), ",")))
			writeJSON(t, w, map[string]any{"tracks": []Track{}})
		}))

		if _, err := client.SeveralTracks(context.Background(), ids(120)); err != nil {
			t.Fatalf("SeveralTracks() error = %v", err)
		}
		want := []int{50, 50, 20}
		if len(sizes) != 3 || sizes[0] != want[0] || sizes[1] != want[1] || sizes[2] != want[2] {
			t.Errorf("chunk sizes = %v, want %v", sizes, want)
		}
	})

	t.Run("audio features chunks at 100", func(t *testing.T) {
		var sizes []int
		client, _, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sizes = append(sizes, len(strings.Split(r.URL.Query().Get("ids"), ",")))
			writeJSON(t, w, map[string]any{"audio_features": []AudioFeatures{{ID: "id0", Tempo: 120}}})
		}))

		features, err := client.AudioFeatures(context.Background(), ids(150))
		if err != nil {
			t.Fatalf("AudioFeatures() error = %v", err)
		}
		if len(sizes) != 2 || sizes[0] != 100 || sizes[1] != 50 {
			t.Errorf("chunk sizes = %v, want [100 50]", sizes)
		}
		if features["id0"].Tempo != 120 {
			t.Errorf("features[id0] = %+v, want tempo 120", features["id0"])
		}
	})

	t.Run("add tracks chunks at 100", func(t *testing.T) {
		var sizes []int
		client, _, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var body struct {
				URIs []string `json:"uris"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Errorf("failed to decode body: %v", err)
			}
			sizes = append(sizes, len(body.URIs))
			w.WriteHeader(http.StatusCreated)
		}))

		if err := client.AddTracks(context.Background(), "pl1", ids(250)); err != nil {
			t.Fatalf("AddTracks() error = %v", err)
		}
		if len(sizes) != 3 || sizes[0] != 100 || sizes[1] != 100 || sizes[2] != 50 {
			t.Errorf("chunk sizes = %v, want [100 100 50]", sizes)
		}
	})
}

func TestClient_CreatePlaylist(t *testing.T) {
	client, _, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if !strings.Contains(r.URL.Path, "/users/user1/playlists") {
			t.Errorf("path = %s, want users/user1/playlists", r.URL.Path)
		}

		var body struct {
			Name        string `json:"name"`
			Description string `json:"description"`
			Public      bool   `json:"public"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode body: %v", err)
		}
		if body.Name != "Hype Grunge Mix" || body.Public {
			t.Errorf("body = %+v, want private Hype Grunge Mix", body)
		}

		writeJSON(t, w, Playlist{ID: "pl1", Name: body.Name, URI: "spotify:playlist:pl1"})
	}))

	playlist, err := client.CreatePlaylist(context.Background(), "user1", "Hype Grunge Mix", "desc", false)
	if err != nil {
		t.Fatalf("CreatePlaylist() error = %v", err)
	}
	if playlist.ID != "pl1" {
		t.Errorf("playlist = %+v, want pl1", playlist)
	}
	if playlist.URL() != "spotify:playlist:pl1" {
		t.Errorf("URL() = %q, want the URI fallback", playlist.URL())
	}

	t.Run("write failures are not silenced", func(t *testing.T) {
		client, _, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))

		if _, err := client.CreatePlaylist(context.Background(), "user1", "x", "", false); err == nil {
			t.Error("CreatePlaylist() succeeded, want error on 500")
		}
	})
}

func TestStaticToken(t *testing.T) {
	if _, err := StaticToken("").Token(context.Background()); !errors.Is(err, shared.ErrMissingCredentials) {
		t.Errorf("empty token error = %v, want ErrMissingCredentials", err)
	}

	tok, err := StaticToken("abc").Token(context.Background())
	if err != nil || tok != "abc" {
		t.Errorf("Token() = %q, %v, want abc", tok, err)
	}
}

func TestNewClientCredentials(t *testing.T) {
	if _, err := NewClientCredentials("", "secret"); !errors.Is(err, shared.ErrMissingCredentials) {
		t.Errorf("error = %v, want ErrMissingCredentials", err)
	}
	if _, err := NewClientCredentials("id", ""); !errors.Is(err, shared.ErrMissingCredentials) {
		t.Errorf("error = %v, want ErrMissingCredentials", err)
	}
	if _, err := NewClientCredentials("id", "secret"); err != nil {
		t.Errorf("NewClientCredentials() error = %v", err)
	}
}
