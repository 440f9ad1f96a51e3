// package formatter provides functions to export build results to various formats (CSV, Markdown, plain text, JSON)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/mixtape-cli/mixtape/internal/pipeline"
	"github.com/mixtape-cli/mixtape/internal/shared"
)

// ExportToCSV converts a BuildResult to CSV format with columns: ID, Title, Artist, Popularity, Duration, Explicit, Year
func ExportToCSV(result *pipeline.BuildResult) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Artist", "Popularity", "Duration", "Explicit", "Year"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, track := range result.Tracks {
		record := []string{
			track.ID,
			track.Title,
			track.Artist,
			strconv.Itoa(track.Popularity),
			strconv.Itoa(track.DurationMS),
			strconv.FormatBool(track.Explicit),
			strconv.Itoa(track.ReleaseYear),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a BuildResult to Markdown format
func ExportToMarkdown(result *pipeline.BuildResult) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", result.Name))

	if result.URL != "" {
		buf.WriteString(fmt.Sprintf("**Playlist**: %s\n", result.URL))
	}
	buf.WriteString(fmt.Sprintf("**Tracks**: %d\n", len(result.Tracks)))
	buf.WriteString(fmt.Sprintf("**Total duration**: %s\n\n", shared.FormatDuration(result.TotalDurationMS())))

	buf.WriteString("## Tracks\n\n")
	for i, track := range result.Tracks {
		duration := shared.FormatDuration(track.DurationMS)
		yearPart := ""
		if track.ReleaseYear > 0 {
			yearPart = fmt.Sprintf(" (%d)", track.ReleaseYear)
		}
		buf.WriteString(fmt.Sprintf("%d. %s - %s%s [%s]\n", i+1, track.Artist, track.Title, yearPart, duration))
	}

	return buf.Bytes(), nil
}

// ExportToText converts a BuildResult to plain text format
func ExportToText(result *pipeline.BuildResult) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Playlist: %s\n", result.Name))
	if result.URL != "" {
		buf.WriteString(fmt.Sprintf("URL: %s\n", result.URL))
	}
	buf.WriteString(fmt.Sprintf("Tracks: %d\n\n", len(result.Tracks)))

	for i, track := range result.Tracks {
		buf.WriteString(fmt.Sprintf("%d. %s - %s\n", i+1, track.Artist, track.Title))
	}

	return buf.Bytes(), nil
}

// ToJSON generates a JSON representation of the full build result.
func ToJSON(result *pipeline.BuildResult, pretty bool) ([]byte, error) {
	return shared.MarshalJSON(result, pretty)
}

// ExportFiles contains the paths of files created by WriteExport.
type ExportFiles struct {
	Files []string
}

// WriteExport writes a build result in the requested format.
//
// Format is one of csv, markdown, txt, json. The base filepath defaults to
// the request ID; csv exports additionally write a {base}_metadata.json
// companion with the full result.
func WriteExport(result *pipeline.BuildResult, format, baseFilepath string) (*ExportFiles, error) {
	if baseFilepath == "" {
		baseFilepath = result.RequestID
	}

	switch format {
	case "csv":
		csvData, err := ExportToCSV(result)
		if err != nil {
			return nil, fmt.Errorf("failed to generate CSV: %w", err)
		}
		tracksFile := baseFilepath + "_tracks.csv"
		if err := os.WriteFile(tracksFile, csvData, 0644); err != nil {
			return nil, fmt.Errorf("failed to write CSV file: %w", err)
		}

		metadataJSON, err := ToJSON(result, true)
		if err != nil {
			return nil, fmt.Errorf("failed to generate metadata JSON: %w", err)
		}
		metadataFile := baseFilepath + "_metadata.json"
		if err := os.WriteFile(metadataFile, metadataJSON, 0644); err != nil {
			return nil, fmt.Errorf("failed to write metadata file: %w", err)
		}

		return &ExportFiles{Files: []string{tracksFile, metadataFile}}, nil

	case "markdown", "md":
		mdData, err := ExportToMarkdown(result)
		if err != nil {
			return nil, fmt.Errorf("failed to generate Markdown: %w", err)
		}
		mdFile := baseFilepath + ".md"
		if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
			return nil, fmt.Errorf("failed to write Markdown file: %w", err)
		}
		return &ExportFiles{Files: []string{mdFile}}, nil

	case "txt", "text":
		textData, err := ExportToText(result)
		if err != nil {
			return nil, fmt.Errorf("failed to generate text: %w", err)
		}
		textFile := baseFilepath + "_tracks.txt"
		if err := os.WriteFile(textFile, textData, 0644); err != nil {
			return nil, fmt.Errorf("failed to write text file: %w", err)
		}
		return &ExportFiles{Files: []string{textFile}}, nil

	case "json", "":
		jsonData, err := ToJSON(result, true)
		if err != nil {
			return nil, fmt.Errorf("failed to generate JSON: %w", err)
		}
		jsonFile := baseFilepath + ".json"
		if err := os.WriteFile(jsonFile, jsonData, 0644); err != nil {
			return nil, fmt.Errorf("failed to write JSON file: %w", err)
		}
		return &ExportFiles{Files: []string{jsonFile}}, nil

	default:
		return nil, fmt.Errorf("%w: unsupported export format %q", shared.ErrInvalidFlag, format)
	}
}
