package pipeline

import (
	"fmt"
	"math"

	"github.com/mixtape-cli/mixtape/internal/shared"
	"github.com/mixtape-cli/mixtape/internal/vocab"
)

// ContentPolicy filters track selection by the explicit flag.
type ContentPolicy string

const (
	PolicyAny      ContentPolicy = "any"
	PolicyClean    ContentPolicy = "clean"
	PolicyExplicit ContentPolicy = "explicit"
)

// ParsePolicy validates a content policy string. Empty input means "any".
func ParsePolicy(s string) (ContentPolicy, error) {
	switch ContentPolicy(s) {
	case "", PolicyAny:
		return PolicyAny, nil
	case PolicyClean:
		return PolicyClean, nil
	case PolicyExplicit:
		return PolicyExplicit, nil
	default:
		return "", fmt.Errorf("%w: content policy must be clean, explicit, or any", shared.ErrInvalidFlag)
	}
}

// Allows reports whether a track with the given explicit flag passes the policy.
func (p ContentPolicy) Allows(explicit bool) bool {
	switch p {
	case PolicyClean:
		return !explicit
	case PolicyExplicit:
		return explicit
	default:
		return true
	}
}

const (
	minTrackCount   = 5
	minutesPerTrack = 4

	// maxArtistSeeds caps resolved artist seeds; combined with a genre seed
	// this stays under the recommendation endpoint's 5-seed ceiling.
	maxArtistSeeds = 3
)

// Constraints is the read-only selection envelope for one build request,
// constructed once before acquisition starts.
type Constraints struct {
	TargetCount      int
	TargetDurationMS int
	Policy           ContentPolicy

	// Features holds target_*/min_*/max_* recommendation tunables from the
	// mood vocabulary.
	Features vocab.FeatureTargets

	// GenreSeed is empty or a single normalized genre token.
	GenreSeed string

	// ArtistSeeds are resolved catalog artist IDs (0-3); ArtistNames keeps
	// the raw names for the top-tracks fallback tier.
	ArtistSeeds []string
	ArtistNames []string

	Keywords []string
	Mood     string

	// EraWeights maps decade labels to affinity weights in [0,1]. May be
	// empty, in which case era scoring is a uniform no-op.
	EraWeights map[string]float64
}

// targetTrackCount derives the requested track count from a duration in
// minutes: one track per 4 minutes, rounded, floor of 5.
func targetTrackCount(durationMinutes int) int {
	if durationMinutes <= 0 {
		return minTrackCount
	}
	count := int(math.Round(float64(durationMinutes) / minutesPerTrack))
	if count < minTrackCount {
		return minTrackCount
	}
	return count
}
