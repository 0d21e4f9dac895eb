package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/lyrx/internal/models"
)

var _ list.Item = matchItem{}

// matchItem wraps [models.MatchedTrack] to implement [list.Item].
type matchItem struct {
	track models.MatchedTrack
}

func (i matchItem) FilterValue() string { return i.track.Title }
func (i matchItem) Title() string       { return i.track.Title }
func (i matchItem) Description() string {
	desc := i.track.Artist
	if i.track.Album != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.track.Album)
	}
	if score := i.track.Source.Source.Score; score > 0 {
		desc = fmt.Sprintf("%s • %.4f", desc, score)
	}
	return desc
}
