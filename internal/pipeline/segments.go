package pipeline

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/mixtape-cli/mixtape/internal/catalog"
	"github.com/mixtape-cli/mixtape/internal/shared"
	"github.com/mixtape-cli/mixtape/internal/vocab"
)

// Segment describes one tempo/energy window of a segmented playlist.
type Segment struct {
	Name          string
	MinBPM        float64
	MaxBPM        float64
	Energy        string // Named bucket: low, medium, high, very-high
	BudgetMinutes int
}

// Validate checks the segment's BPM range, energy bucket, and budget.
func (s Segment) Validate() error {
	if s.MinBPM < 0 || s.MaxBPM <= s.MinBPM {
		return fmt.Errorf("%w: segment %q has invalid BPM range [%v, %v]", shared.ErrInvalidArgument, s.Name, s.MinBPM, s.MaxBPM)
	}
	if _, ok := vocab.BandFor(s.Energy); !ok {
		return fmt.Errorf("%w: segment %q has unknown energy bucket %q", shared.ErrInvalidArgument, s.Name, s.Energy)
	}
	if s.BudgetMinutes <= 0 {
		return fmt.Errorf("%w: segment %q needs a positive duration budget", shared.ErrInvalidArgument, s.Name)
	}
	return nil
}

// AssembleSegments fills each segment greedily from the shared candidate
// pool: candidates sorted by descending popularity, accepted only when
// tempo is inside the BPM range, energy inside the named band, and the
// track fits the remaining duration budget. Overflowing tracks are skipped,
// never truncated, and the scan continues in case a shorter track fits.
//
// Segments are assembled independently and concatenated in input order, so
// a track may appear in more than one segment's output; the materializer
// deduplicates the final URI list first-placement-wins.
func AssembleSegments(candidates []catalog.Candidate, segments []Segment) ([]catalog.Candidate, error) {
	for _, seg := range segments {
		if err := seg.Validate(); err != nil {
			return nil, err
		}
	}

	byPopularity := make([]catalog.Candidate, len(candidates))
	copy(byPopularity, candidates)
	sort.SliceStable(byPopularity, func(i, j int) bool {
		return byPopularity[i].Popularity > byPopularity[j].Popularity
	})

	var assembled []catalog.Candidate
	for _, seg := range segments {
		band, _ := vocab.BandFor(seg.Energy)
		budgetMS := seg.BudgetMinutes * 60 * 1000

		spent := 0
		for _, c := range byPopularity {
			if c.Tempo < seg.MinBPM || c.Tempo > seg.MaxBPM {
				continue
			}
			if !band.Contains(c.Energy) {
				continue
			}
			if spent+c.DurationMS > budgetMS {
				continue
			}
			spent += c.DurationMS
			assembled = append(assembled, c)
		}
	}

	return assembled, nil
}

// WorkoutSegments is the built-in warm-up/peak/cool-down preset, splitting
// the total duration 25/50/25.
func WorkoutSegments(totalMinutes int) []Segment {
	if totalMinutes <= 0 {
		totalMinutes = 40
	}
	quarter := totalMinutes / 4
	if quarter < 1 {
		quarter = 1
	}
	return []Segment{
		{Name: "warm-up", MinBPM: 100, MaxBPM: 130, Energy: "medium", BudgetMinutes: quarter},
		{Name: "peak", MinBPM: 125, MaxBPM: 170, Energy: "very-high", BudgetMinutes: totalMinutes - 2*quarter},
		{Name: "cool-down", MinBPM: 80, MaxBPM: 115, Energy: "low", BudgetMinutes: quarter},
	}
}

// ParseSegments parses a CLI segment spec of the form
// "name:minBPM-maxBPM:energy:minutes" separated by commas, e.g.
// "warm-up:100-130:medium:10,peak:130-165:very-high:25".
func ParseSegments(spec string) ([]Segment, error) {
	if strings.TrimSpace(spec) == "" {
		return nil, nil
	}

	var segments []Segment
	for _, part := range strings.Split(spec, ",") {
		fields := strings.Split(strings.TrimSpace(part), ":")
		if len(fields) != 4 {
			return nil, fmt.Errorf("%w: segment %q must be name:minBPM-maxBPM:energy:minutes", shared.ErrInvalidFlag, part)
		}

		bpm := strings.SplitN(fields[1], "-", 2)
		if len(bpm) != 2 {
			return nil, fmt.Errorf("%w: segment %q has invalid BPM range %q", shared.ErrInvalidFlag, part, fields[1])
		}

		minBPM, err := strconv.ParseFloat(strings.TrimSpace(bpm[0]), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: segment %q has invalid BPM %q", shared.ErrInvalidFlag, part, bpm[0])
		}
		maxBPM, err := strconv.ParseFloat(strings.TrimSpace(bpm[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: segment %q has invalid BPM %q", shared.ErrInvalidFlag, part, bpm[1])
		}
		minutes, err := strconv.Atoi(strings.TrimSpace(fields[3]))
		if err != nil {
			return nil, fmt.Errorf("%w: segment %q has invalid duration %q", shared.ErrInvalidFlag, part, fields[3])
		}

		segment := Segment{
			Name:          strings.TrimSpace(fields[0]),
			MinBPM:        minBPM,
			MaxBPM:        maxBPM,
			Energy:        strings.TrimSpace(fields[2]),
			BudgetMinutes: minutes,
		}
		if err := segment.Validate(); err != nil {
			return nil, err
		}
		segments = append(segments, segment)
	}

	return segments, nil
}
