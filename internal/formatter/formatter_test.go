package formatter

import (
	"encoding/csv"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mixtape-cli/mixtape/internal/catalog"
	"github.com/mixtape-cli/mixtape/internal/pipeline"
	mxtest "github.com/mixtape-cli/mixtape/internal/testing"
)

func resultFixture() *pipeline.BuildResult {
	return &pipeline.BuildResult{
		RequestID: "req-1",
		Name:      "Hype Grunge Mix",
		URL:       "https://open.spotify.com/playlist/pl1",
		URIs:      []string{"spotify:track:t1", "spotify:track:t2"},
		Tracks: []catalog.Candidate{
			{
				URI:         "spotify:track:t1",
				ID:          "t1",
				Title:       "Smells Like Teen Spirit",
				Artist:      "Nirvana",
				Popularity:  88,
				DurationMS:  301000,
				ReleaseYear: 1991,
			},
			{
				URI:        "spotify:track:t2",
				ID:         "t2",
				Title:      "Black",
				Artist:     "Pearl Jam",
				Popularity: 82,
				DurationMS: 343000,
				Explicit:   true,
			},
		},
	}
}

func TestExportToCSV(t *testing.T) {
	data, err := ExportToCSV(resultFixture())
	if err != nil {
		t.Fatalf("ExportToCSV() error = %v", err)
	}

	records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d rows, want header plus 2 tracks", len(records))
	}
	if records[0][0] != "ID" || records[0][1] != "Title" {
		t.Errorf("header = %v", records[0])
	}
	if records[1][2] != "Nirvana" {
		t.Errorf("first row artist = %q, want Nirvana", records[1][2])
	}
	if records[2][5] != "true" {
		t.Errorf("explicit column = %q, want true", records[2][5])
	}
}

func TestExportToMarkdown(t *testing.T) {
	data, err := ExportToMarkdown(resultFixture())
	if err != nil {
		t.Fatalf("ExportToMarkdown() error = %v", err)
	}
	out := string(data)

	if !strings.HasPrefix(out, "# Hype Grunge Mix") {
		t.Errorf("missing title heading:\n%s", out)
	}
	if !strings.Contains(out, "**Tracks**: 2") {
		t.Errorf("missing track count:\n%s", out)
	}
	if !strings.Contains(out, "1. Nirvana - Smells Like Teen Spirit (1991) [5:01]") {
		t.Errorf("missing first track line:\n%s", out)
	}
	// No release year on the second track, so no parenthetical.
	if !strings.Contains(out, "2. Pearl Jam - Black [5:43]") {
		t.Errorf("missing second track line:\n%s", out)
	}
}

func TestExportToText(t *testing.T) {
	data, err := ExportToText(resultFixture())
	if err != nil {
		t.Fatalf("ExportToText() error = %v", err)
	}
	out := string(data)

	if !strings.Contains(out, "Playlist: Hype Grunge Mix") {
		t.Errorf("missing playlist name:\n%s", out)
	}
	if !strings.Contains(out, "2. Pearl Jam - Black") {
		t.Errorf("missing track line:\n%s", out)
	}
}

func TestToJSON(t *testing.T) {
	data, err := ToJSON(resultFixture(), false)
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded["Name"] != "Hype Grunge Mix" {
		t.Errorf("Name = %v, want Hype Grunge Mix", decoded["Name"])
	}
}

func TestWriteExport(t *testing.T) {
	t.Run("csv writes tracks and metadata", func(t *testing.T) {
		base := filepath.Join(t.TempDir(), "export")

		files, err := WriteExport(resultFixture(), "csv", base)
		if err != nil {
			t.Fatalf("WriteExport() error = %v", err)
		}
		if len(files.Files) != 2 {
			t.Fatalf("got %d files, want 2", len(files.Files))
		}
		for _, f := range files.Files {
			mxtest.AssertFileExists(t, f)
		}
	})

	t.Run("markdown", func(t *testing.T) {
		base := filepath.Join(t.TempDir(), "export")

		files, err := WriteExport(resultFixture(), "markdown", base)
		if err != nil {
			t.Fatalf("WriteExport() error = %v", err)
		}
		if len(files.Files) != 1 || !strings.HasSuffix(files.Files[0], ".md") {
			t.Errorf("files = %v, want a single .md file", files.Files)
		}
	})

	t.Run("json is the default", func(t *testing.T) {
		base := filepath.Join(t.TempDir(), "export")

		files, err := WriteExport(resultFixture(), "", base)
		if err != nil {
			t.Fatalf("WriteExport() error = %v", err)
		}
		if len(files.Files) != 1 || !strings.HasSuffix(files.Files[0], ".json") {
			t.Errorf("files = %v, want a single .json file", files.Files)
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		if _, err := WriteExport(resultFixture(), "yaml", ""); err == nil {
			t.Error("WriteExport(yaml) succeeded, want error")
		}
	})
}
