// package era infers probability-weighted musical decades for a listener
// profile, used to bias track selection toward generationally relevant
// material.
package era

import (
	"fmt"
	"strings"
	"time"
)

// UniformWeight is the era component applied to every candidate when no era
// signal is available (empty weight map).
const UniformWeight = 0.1

// artistEras maps well-known artists to the decades they were active or
// chart-relevant in. An artist may belong to multiple decades; each
// membership counts toward that era.
//
// Keys are lowercase. Unknown artists simply contribute nothing.
var artistEras = map[string][]string{
	"the beatles":        {"1960s"},
	"the rolling stones": {"1960s", "1970s"},
	"led zeppelin":       {"1970s"},
	"pink floyd":         {"1970s", "1980s"},
	"queen":              {"1970s", "1980s"},
	"michael jackson":    {"1980s", "1990s"},
	"madonna":            {"1980s", "1990s"},
	"prince":             {"1980s"},
	"nirvana":            {"1990s"},
	"pearl jam":          {"1990s"},
	"soundgarden":        {"1990s"},
	"alice in chains":    {"1990s"},
	"radiohead":          {"1990s", "2000s"},
	"oasis":              {"1990s"},
	"tupac":              {"1990s"},
	"the notorious b.i.g.": {"1990s"},
	"eminem":             {"1990s", "2000s"},
	"jay-z":              {"1990s", "2000s"},
	"beyonce":            {"2000s", "2010s"},
	"beyoncé":            {"2000s", "2010s"},
	"coldplay":           {"2000s", "2010s"},
	"kanye west":         {"2000s", "2010s"},
	"rihanna":            {"2000s", "2010s"},
	"the killers":        {"2000s"},
	"arctic monkeys":     {"2000s", "2010s"},
	"taylor swift":       {"2010s", "2020s"},
	"drake":              {"2010s", "2020s"},
	"kendrick lamar":     {"2010s", "2020s"},
	"billie eilish":      {"2010s", "2020s"},
	"dua lipa":           {"2020s"},
	"olivia rodrigo":     {"2020s"},
	"bad bunny":          {"2020s"},
	"the weeknd":         {"2010s", "2020s"},
}

// InferEraWeights derives decade affinity weights from seed artists, falling
// back to birth-year heuristics when no seed artist resolves.
//
// Seed-artist counts are normalized by the maximum count observed, not the
// sum, so the top era(s) always carry weight 1.0 and multi-era artists stay
// influential across all their eras. With no artists and no birth year the
// map is empty and downstream scoring degrades to [UniformWeight].
func InferEraWeights(seedArtists []string, birthYear int) map[string]float64 {
	counts := make(map[string]int)
	for _, artist := range seedArtists {
		key := strings.ToLower(strings.TrimSpace(artist))
		for _, decade := range artistEras[key] {
			counts[decade]++
		}
	}

	if len(counts) > 0 {
		maxCount := 0
		for _, n := range counts {
			if n > maxCount {
				maxCount = n
			}
		}

		weights := make(map[string]float64, len(counts))
		for decade, n := range counts {
			weights[decade] = float64(n) / float64(maxCount)
		}
		return weights
	}

	if birthYear > 0 {
		return birthYearWeights(time.Now().Year() - birthYear)
	}

	return map[string]float64{}
}

// birthYearWeights is the fallback heuristic keyed on listener age.
func birthYearWeights(age int) map[string]float64 {
	switch {
	case age < 30:
		return map[string]float64{"2020s": 1.0, "2010s": 0.8}
	case age <= 45:
		return map[string]float64{"2000s": 1.0, "1990s": 0.8}
	default:
		return map[string]float64{"1980s": 1.0, "1990s": 0.6}
	}
}

// DecadeOf maps a release year to its decade label, e.g. 1994 -> "1990s".
// Returns "" for unparseable (zero) years.
func DecadeOf(year int) string {
	if year < 1900 {
		return ""
	}
	return fmt.Sprintf("%ds", (year/10)*10)
}

// Weight returns the era component for a release year against a weight map.
// Unknown decades and empty maps both score [UniformWeight].
func Weight(weights map[string]float64, releaseYear int) float64 {
	if len(weights) == 0 {
		return UniformWeight
	}
	if w, ok := weights[DecadeOf(releaseYear)]; ok {
		return w
	}
	return UniformWeight
}
