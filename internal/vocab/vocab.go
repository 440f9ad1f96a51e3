// package vocab maps free-form genre and mood input into the catalog's
// controlled vocabulary and into audio-feature target vectors.
package vocab

import (
	"strings"

	"github.com/charmbracelet/log"
)

// FallbackGenre is used when nothing in the controlled vocabulary matches.
const FallbackGenre = "pop"

// FeatureTargets is a partial audio-feature vector keyed the way the
// recommendation endpoint expects its tunables: target_* entries bias
// ranking, min_*/max_* entries are hard filters.
type FeatureTargets map[string]float64

// genreAliases maps application-specific shorthand onto controlled genre
// tokens. Checked before the controlled list so "lo-fi" lands on "chill"
// rather than fuzzy-matching something odd.
var genreAliases = map[string]string{
	"lo-fi":       "chill",
	"lofi":        "chill",
	"lo fi":       "chill",
	"hiphop":      "hip-hop",
	"hip hop":     "hip-hop",
	"rap":         "hip-hop",
	"rnb":         "r-n-b",
	"r&b":         "r-n-b",
	"edm":         "electronic",
	"dnb":         "drum-and-bass",
	"drum n bass": "drum-and-bass",
	"rock n roll": "rock-n-roll",
	"oldies":      "rock-n-roll",
	"classic":     "classical",
	"score":       "soundtracks",
	"soundtrack":  "soundtracks",
}

// controlledGenres is the catalog's seedable genre vocabulary (subset).
var controlledGenres = []string{
	"acoustic", "alternative", "ambient", "blues", "chill", "classical",
	"club", "country", "dance", "disco", "drum-and-bass", "electronic",
	"folk", "funk", "grunge", "hip-hop", "house", "indie", "indie-pop",
	"jazz", "latin", "metal", "pop", "punk", "r-n-b", "reggae", "rock",
	"rock-n-roll", "soul", "soundtracks", "techno", "work-out",
}

// moods maps named moods to partial audio-feature vectors.
var moods = map[string]FeatureTargets{
	"happy": {
		"target_valence": 0.9,
		"min_valence":    0.6,
		"target_energy":  0.7,
	},
	"chill": {
		"max_energy":          0.5,
		"target_valence":      0.5,
		"target_acousticness": 0.6,
		"max_tempo":           110,
	},
	"upbeat": {
		"min_energy":     0.7,
		"target_valence": 0.8,
		"target_tempo":   120,
	},
	"focus": {
		"max_energy":           0.45,
		"min_instrumentalness": 0.5,
		"max_speechiness":      0.1,
		"target_valence":       0.4,
	},
	"party": {
		"min_danceability": 0.7,
		"target_energy":    0.9,
		"target_tempo":     122,
	},
	"hype": {
		"min_energy":          0.9,
		"target_tempo":        140,
		"target_danceability": 0.8,
		"target_valence":      0.7,
	},
	"melancholy": {
		"max_valence":         0.35,
		"target_energy":       0.35,
		"target_acousticness": 0.5,
	},
	"workout": {
		"min_energy":          0.75,
		"min_tempo":           120,
		"target_tempo":        135,
		"target_danceability": 0.7,
	},
	"romantic": {
		"target_valence":      0.6,
		"max_energy":          0.6,
		"target_acousticness": 0.5,
		"max_tempo":           100,
	},
}

// EnergyBand is a half-open [Lo, Hi) band over the [0,1] energy scale.
// The top band closes at 1.0 inclusive.
type EnergyBand struct {
	Name string
	Lo   float64
	Hi   float64
}

var energyBands = []EnergyBand{
	{Name: "low", Lo: 0, Hi: 0.4},
	{Name: "medium", Lo: 0.4, Hi: 0.65},
	{Name: "high", Lo: 0.65, Hi: 0.85},
	{Name: "very-high", Lo: 0.85, Hi: 1.0},
}

// BandFor looks up a named energy bucket (low/medium/high/very-high).
func BandFor(name string) (EnergyBand, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, b := range energyBands {
		if b.Name == name {
			return b, true
		}
	}
	return EnergyBand{}, false
}

// Contains reports whether energy falls inside the band.
func (b EnergyBand) Contains(energy float64) bool {
	if b.Hi >= 1.0 {
		return energy >= b.Lo && energy <= 1.0
	}
	return energy >= b.Lo && energy < b.Hi
}

// Vocabulary resolves free-form input against the controlled tables.
type Vocabulary struct {
	logger *log.Logger
}

// NewVocabulary creates a Vocabulary that logs resolution paths through the
// given logger.
func NewVocabulary(logger *log.Logger) *Vocabulary {
	return &Vocabulary{logger: logger}
}

// NormalizeGenre resolves free text to a controlled genre token.
//
// Resolution order: alias table, controlled-list exact match, substring
// fuzzy match (either token contains the other), then FallbackGenre. The
// second return is false only for empty input or the sentinel "any".
func (v *Vocabulary) NormalizeGenre(raw string) (string, bool) {
	token := strings.ToLower(strings.TrimSpace(raw))
	if token == "" || token == "any" {
		return "", false
	}

	if genre, ok := genreAliases[token]; ok {
		v.logger.Debug("genre resolved via alias", "raw", raw, "genre", genre)
		return genre, true
	}

	for _, genre := range controlledGenres {
		if genre == token {
			v.logger.Debug("genre resolved via exact match", "raw", raw, "genre", genre)
			return genre, true
		}
	}

	for _, genre := range controlledGenres {
		if strings.Contains(genre, token) || strings.Contains(token, genre) {
			v.logger.Debug("genre resolved via fuzzy match", "raw", raw, "genre", genre)
			return genre, true
		}
	}

	v.logger.Debug("genre unresolved, using fallback", "raw", raw, "genre", FallbackGenre)
	return FallbackGenre, true
}

// NormalizeMood returns the audio-feature vector for a named mood.
// Unknown moods yield an empty vector so they add no ranking bias.
func (v *Vocabulary) NormalizeMood(raw string) FeatureTargets {
	token := strings.ToLower(strings.TrimSpace(raw))

	targets, ok := moods[token]
	if !ok {
		if token != "" {
			v.logger.Debug("unknown mood, no feature bias applied", "mood", raw)
		}
		return FeatureTargets{}
	}

	// Copy so callers can layer keyword-derived tweaks without mutating the table.
	out := make(FeatureTargets, len(targets))
	for k, val := range targets {
		out[k] = val
	}
	return out
}

// Genres returns the controlled genre list for display.
func Genres() []string {
	out := make([]string, len(controlledGenres))
	copy(out, controlledGenres)
	return out
}

// Moods returns the known mood names for display.
func Moods() []string {
	out := make([]string, 0, len(moods))
	for name := range moods {
		out = append(out, name)
	}
	return out
}
