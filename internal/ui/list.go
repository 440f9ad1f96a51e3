package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/mixtape-cli/mixtape/internal/catalog"
	"github.com/mixtape-cli/mixtape/internal/shared"
)

var _ list.Item = trackItem{}

// trackItem wraps [catalog.Candidate] to implement [list.Item].
type trackItem struct {
	track catalog.Candidate
}

func (i trackItem) FilterValue() string { return i.track.Title }
func (i trackItem) Title() string       { return i.track.Title }
func (i trackItem) Description() string {
	desc := fmt.Sprintf("%s • %s", i.track.Artist, shared.FormatDuration(i.track.DurationMS))
	if i.track.ReleaseYear > 0 {
		desc = fmt.Sprintf("%s • %d", desc, i.track.ReleaseYear)
	}
	if i.track.Explicit {
		desc = fmt.Sprintf("%s • explicit", desc)
	}
	return desc
}
