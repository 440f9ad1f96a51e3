package vocab

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"
)

func testVocabulary() *Vocabulary {
	return NewVocabulary(log.New(io.Discard))
}

func TestNormalizeGenre(t *testing.T) {
	v := testVocabulary()

	tests := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{"empty input", "", "", false},
		{"any sentinel", "any", "", false},
		{"exact match", "grunge", "grunge", true},
		{"case and whitespace", "  GRUNGE ", "grunge", true},
		{"alias lo-fi", "lo-fi", "chill", true},
		{"alias rap", "rap", "hip-hop", true},
		{"alias edm", "edm", "electronic", true},
		{"alias r&b", "r&b", "r-n-b", true},
		{"fuzzy token in genre", "tech", "techno", true},
		{"fuzzy genre in token", "indie rock", "indie", true},
		{"unresolvable falls back", "zydeco-polka", FallbackGenre, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := v.NormalizeGenre(tt.input)
			if got != tt.want || ok != tt.ok {
				t.Errorf("NormalizeGenre(%q) = (%q, %v), want (%q, %v)", tt.input, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestNormalizeMood(t *testing.T) {
	v := testVocabulary()

	t.Run("hype vector", func(t *testing.T) {
		targets := v.NormalizeMood("hype")
		if targets["min_energy"] != 0.9 {
			t.Errorf("min_energy = %v, want 0.9", targets["min_energy"])
		}
		if targets["target_tempo"] != 140 {
			t.Errorf("target_tempo = %v, want 140", targets["target_tempo"])
		}
	})

	t.Run("unknown mood is empty", func(t *testing.T) {
		if targets := v.NormalizeMood("grumpy"); len(targets) != 0 {
			t.Errorf("NormalizeMood(grumpy) = %v, want empty", targets)
		}
	})

	t.Run("case insensitive", func(t *testing.T) {
		if targets := v.NormalizeMood(" Chill "); targets["max_tempo"] != 110 {
			t.Errorf("max_tempo = %v, want 110", targets["max_tempo"])
		}
	})

	t.Run("returned vector is a copy", func(t *testing.T) {
		first := v.NormalizeMood("party")
		first["target_energy"] = 0
		second := v.NormalizeMood("party")
		if second["target_energy"] != 0.9 {
			t.Error("mutation of a returned vector leaked into the mood table")
		}
	})
}

func TestBandFor(t *testing.T) {
	tests := []struct {
		name string
		ok   bool
	}{
		{"low", true},
		{"medium", true},
		{"high", true},
		{"very-high", true},
		{" VERY-HIGH ", true},
		{"extreme", false},
		{"", false},
	}
	for _, tt := range tests {
		if _, ok := BandFor(tt.name); ok != tt.ok {
			t.Errorf("BandFor(%q) ok = %v, want %v", tt.name, ok, tt.ok)
		}
	}
}

func TestEnergyBandContains(t *testing.T) {
	medium, _ := BandFor("medium")
	top, _ := BandFor("very-high")

	tests := []struct {
		band   EnergyBand
		energy float64
		want   bool
	}{
		{medium, 0.4, true},   // lower bound inclusive
		{medium, 0.5, true},
		{medium, 0.65, false}, // upper bound exclusive
		{medium, 0.39, false},
		{top, 0.85, true},
		{top, 1.0, true}, // top band closes at 1.0
		{top, 0.84, false},
	}
	for _, tt := range tests {
		if got := tt.band.Contains(tt.energy); got != tt.want {
			t.Errorf("%s.Contains(%v) = %v, want %v", tt.band.Name, tt.energy, got, tt.want)
		}
	}
}

func TestVocabularyListings(t *testing.T) {
	genres := Genres()
	if len(genres) == 0 {
		t.Fatal("Genres() is empty")
	}
	// Returned slice must be a copy of the controlled list.
	genres[0] = "mutated"
	if fresh := Genres(); fresh[0] == "mutated" {
		t.Error("Genres() exposes the internal slice")
	}

	moodNames := Moods()
	if len(moodNames) != 9 {
		t.Errorf("Moods() returned %d names, want 9", len(moodNames))
	}
}
