package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/nvale/scrapedeck/internal/models"
)

var (
	_ list.Item = recordItem{}
	_ list.Item = candidateItem{}
	_ list.Item = seasonItem{}
	_ list.Item = episodeItem{}
	_ list.Item = actionItem{}
)

// recordItem wraps [models.HistoryRecord] to implement [list.Item].
type recordItem struct {
	record models.HistoryRecord
}

func (i recordItem) FilterValue() string { return i.record.Title }
func (i recordItem) Title() string {
	title := fmt.Sprintf("#%d %s", i.record.DisplayID, i.record.Title)
	if i.record.Season != nil && i.record.Episode != nil {
		title = fmt.Sprintf("%s • S%02dE%02d", title, *i.record.Season, *i.record.Episode)
	}
	return title
}
func (i recordItem) Description() string {
	desc := statusLabel(i.record.Status)
	if i.record.Message != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.record.Message)
	}
	return desc
}

// candidateItem wraps [models.SeriesCandidate] to implement [list.Item].
type candidateItem struct {
	candidate models.SeriesCandidate
}

func (i candidateItem) FilterValue() string { return i.candidate.Name }
func (i candidateItem) Title() string {
	name := i.candidate.Name
	if i.candidate.FirstAirDate != "" {
		name = fmt.Sprintf("%s (%s)", name, i.candidate.FirstAirDate)
	}
	return name
}
func (i candidateItem) Description() string {
	if i.candidate.Overview != "" {
		return i.candidate.Overview
	}
	return i.candidate.OriginalName
}

// seasonItem wraps [models.Season] to implement [list.Item].
type seasonItem struct {
	season models.Season
}

func (i seasonItem) FilterValue() string { return i.season.Name }
func (i seasonItem) Title() string       { return i.season.Name }
func (i seasonItem) Description() string {
	count := i.season.EpisodeCount
	if count == 0 {
		count = len(i.season.Episodes)
	}
	return fmt.Sprintf("%d episodes", count)
}

// episodeItem wraps [models.Episode] to implement [list.Item].
type episodeItem struct {
	episode models.Episode
}

func (i episodeItem) FilterValue() string { return i.episode.Name }
func (i episodeItem) Title() string {
	return fmt.Sprintf("E%02d %s", i.episode.EpisodeNumber, i.episode.Name)
}
func (i episodeItem) Description() string { return i.episode.AirDate }

// actionItem is one selectable file or library action. value carries the
// wire value submitted to the server.
type actionItem struct {
	value string
	label string
	desc  string
}

func (i actionItem) FilterValue() string { return i.label }
func (i actionItem) Title() string       { return i.label }
func (i actionItem) Description() string { return i.desc }

// statusLabel renders a record status with the palette color for its severity.
func statusLabel(s models.Status) string {
	switch s {
	case models.StatusSuccess:
		return styles.ok.Render(string(s))
	case models.StatusFailed, models.StatusTimeout:
		return styles.err.Render(string(s))
	case models.StatusPendingAction:
		return styles.warn.Render(string(s))
	default:
		return string(s)
	}
}
