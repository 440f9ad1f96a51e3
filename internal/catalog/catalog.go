// package catalog implements a typed client for the streaming catalog API.
//
// Response types based on https://developer.spotify.com/documentation/web-api/reference/
//
// All raw JSON is validated and defaulted at this boundary so downstream
// components operate on [Candidate] values, never on loose maps.
package catalog

import (
	"strconv"
)

// Defaulting policy for malformed upstream track objects. Search results
// occasionally omit duration or carry an empty artist list; the pipeline
// must never fail on those.
const (
	DefaultDurationMS = 210000
	DefaultArtistName = "Unknown"
)

// Artist represents a catalog artist.
type Artist struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Genres []string `json:"genres"`
	URI    string   `json:"uri"`
}

// Album represents a catalog album.
type Album struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ReleaseDate string `json:"release_date"`
}

// Track represents a catalog track as returned by search, recommendation,
// and batch metadata endpoints.
type Track struct {
	ID         string   `json:"id"`
	URI        string   `json:"uri"`
	Name       string   `json:"name"`
	Artists    []Artist `json:"artists"`
	Album      Album    `json:"album"`
	DurationMS int      `json:"duration_ms"`
	Explicit   bool     `json:"explicit"`
	Popularity int      `json:"popularity"`
}

// AudioFeatures represents the audio analysis vector for a single track.
type AudioFeatures struct {
	ID               string  `json:"id"`
	Tempo            float64 `json:"tempo"`
	Energy           float64 `json:"energy"`
	Valence          float64 `json:"valence"`
	Danceability     float64 `json:"danceability"`
	Acousticness     float64 `json:"acousticness"`
	Instrumentalness float64 `json:"instrumentalness"`
	Speechiness      float64 `json:"speechiness"`
	Loudness         float64 `json:"loudness"`
}

// User represents the authenticated catalog user.
type User struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type externalURLs struct {
	Spotify string `json:"spotify"`
}

// Playlist represents a created playlist resource.
type Playlist struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	URI          string       `json:"uri"`
	ExternalURLs externalURLs `json:"external_urls"`
}

// URL returns the playlist's public web URL, falling back to its URI.
func (p Playlist) URL() string {
	if p.ExternalURLs.Spotify != "" {
		return p.ExternalURLs.Spotify
	}
	return p.URI
}

// Candidate is an immutable, defaulted view of a track used by the
// selection pipeline. Audio features are zero until merged via
// [MergeFeatures].
type Candidate struct {
	URI        string
	ID         string
	Title      string
	Artist     string
	Popularity int
	Explicit   bool
	DurationMS int
	Tempo      float64
	Energy     float64
	Valence    float64
	// ReleaseYear is 0 when the album release date is absent or malformed.
	ReleaseYear int
}

// Candidate converts a raw track into a defaulted pipeline candidate.
func (t Track) Candidate() Candidate {
	c := Candidate{
		URI:        t.URI,
		ID:         t.ID,
		Title:      t.Name,
		Artist:     DefaultArtistName,
		Popularity: t.Popularity,
		Explicit:   t.Explicit,
		DurationMS: t.DurationMS,
	}

	if c.DurationMS <= 0 {
		c.DurationMS = DefaultDurationMS
	}
	if len(t.Artists) > 0 && t.Artists[0].Name != "" {
		c.Artist = t.Artists[0].Name
	}
	if len(t.Album.ReleaseDate) >= 4 {
		if year, err := strconv.Atoi(t.Album.ReleaseDate[:4]); err == nil {
			c.ReleaseYear = year
		}
	}

	return c
}

// Candidates converts a slice of raw tracks, dropping entries without a URI.
func Candidates(tracks []Track) []Candidate {
	out := make([]Candidate, 0, len(tracks))
	for _, t := range tracks {
		if t.URI == "" {
			continue
		}
		out = append(out, t.Candidate())
	}
	return out
}

// MergeFeatures copies audio-feature fields onto candidates by track ID.
// Candidates without a feature entry keep their zero vector.
func MergeFeatures(candidates []Candidate, features map[string]AudioFeatures) {
	for i := range candidates {
		f, ok := features[candidates[i].ID]
		if !ok {
			continue
		}
		candidates[i].Tempo = f.Tempo
		candidates[i].Energy = f.Energy
		candidates[i].Valence = f.Valence
	}
}
