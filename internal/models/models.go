package models

import (
	"time"
)

// Status enumerates the outcome states of a scrape attempt.
type Status string

const (
	StatusSuccess       Status = "success"
	StatusFailed        Status = "failed"
	StatusTimeout       Status = "timeout"
	StatusCancelled     Status = "cancelled"
	StatusSkipped       Status = "skipped"
	StatusPendingAction Status = "pending_action"
	StatusRunning       Status = "running"
)

// Source identifies what triggered a scrape attempt.
type Source string

const (
	SourceManual  Source = "manual"
	SourceWatcher Source = "watcher"
)

// ConflictType discriminates the payload attached to a pending_action record.
// The set of recognized values is closed; anything else is unresolvable from
// the client (see Known on ConflictType).
type ConflictType string

const (
	ConflictNeedSelection     ConflictType = "need_selection"
	ConflictNeedSeasonEpisode ConflictType = "need_season_episode"
	ConflictFile              ConflictType = "file_conflict"
	ConflictNoMatch           ConflictType = "no_match"
	ConflictSearchFailed      ConflictType = "search_failed"
	ConflictAPIFailed         ConflictType = "api_failed"
	ConflictEmby              ConflictType = "emby_conflict"
)

// Known reports whether t is one of the seven recognized conflict types.
// Unrecognized types must not crash the client; they disable resolution.
func (t ConflictType) Known() bool {
	switch t {
	case ConflictNeedSelection, ConflictNeedSeasonEpisode, ConflictFile,
		ConflictNoMatch, ConflictSearchFailed, ConflictAPIFailed, ConflictEmby:
		return true
	}
	return false
}

// NeedsManualSearch reports whether t requires a full manual candidate search
// (no usable automatic match exists).
func (t ConflictType) NeedsManualSearch() bool {
	return t == ConflictNoMatch || t == ConflictSearchFailed || t == ConflictAPIFailed
}

// FileAction is the user's choice for a file_conflict record.
type FileAction string

const (
	FileOverwrite FileAction = "overwrite"
	FileSkip      FileAction = "skip"
	FileRename    FileAction = "rename"
)

// LibraryAction is the user's choice for an emby_conflict record.
type LibraryAction string

const (
	LibraryForce  LibraryAction = "force"
	LibrarySkip   LibraryAction = "skip"
	LibraryChange LibraryAction = "change"
)

// ConflictData is the discriminated payload attached to a record whose
// status is pending_action.
type ConflictData struct {
	Type       ConflictType      `json:"conflict_type"`
	Message    string            `json:"message,omitempty"`
	Candidates []SeriesCandidate `json:"candidates,omitempty"`
	// Season/Episode already parsed from the filename, when the parser
	// got that far. A need_selection record with both set skips the
	// season/episode picking step.
	ParsedSeason  *int `json:"parsed_season,omitempty"`
	ParsedEpisode *int `json:"parsed_episode,omitempty"`
	// SeriesInfo seeds the wizard's season list when the server already
	// resolved the series, avoiding one detail fetch.
	SeriesInfo *Series `json:"series_info,omitempty"`
	// DestPath is the colliding destination for file_conflict records.
	DestPath string `json:"dest_path,omitempty"`
}

// HasParsedEpisode reports whether the filename already yielded both a
// season and an episode number.
func (c *ConflictData) HasParsedEpisode() bool {
	return c != nil && c.ParsedSeason != nil && c.ParsedEpisode != nil
}

// HistoryRecord is one row representing a single scrape attempt outcome.
// ID is the stable merge key; DisplayID is a small ordinal used only for
// label text and is not guaranteed unique over time.
type HistoryRecord struct {
	ID         string        `json:"id"`
	DisplayID  int           `json:"display_id"`
	JobID      string        `json:"job_id,omitempty"`
	Title      string        `json:"title"`
	FolderPath string        `json:"folder_path,omitempty"`
	Status     Status        `json:"status"`
	Season     *int          `json:"season,omitempty"`
	Episode    *int          `json:"episode,omitempty"`
	Source     Source        `json:"source"`
	Message    string        `json:"message,omitempty"`
	Conflict   *ConflictData `json:"conflict_data,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

// RecordPatch carries the changed fields of a history_updated push event.
// Nil fields were not present in the payload and must be left untouched
// when the patch is applied.
type RecordPatch struct {
	ID         string        `json:"id"`
	Title      *string       `json:"title,omitempty"`
	FolderPath *string       `json:"folder_path,omitempty"`
	Status     *Status       `json:"status,omitempty"`
	Season     *int          `json:"season,omitempty"`
	Episode    *int          `json:"episode,omitempty"`
	Source     *Source       `json:"source,omitempty"`
	Message    *string       `json:"message,omitempty"`
	Conflict   *ConflictData `json:"conflict_data,omitempty"`
	UpdatedAt  *time.Time    `json:"updated_at,omitempty"`
}

// Apply shallow-merges the patch onto the record in place.
func (r *HistoryRecord) Apply(p RecordPatch) {
	if p.Title != nil {
		r.Title = *p.Title
	}
	if p.FolderPath != nil {
		r.FolderPath = *p.FolderPath
	}
	if p.Status != nil {
		r.Status = *p.Status
	}
	if p.Season != nil {
		r.Season = p.Season
	}
	if p.Episode != nil {
		r.Episode = p.Episode
	}
	if p.Source != nil {
		r.Source = *p.Source
	}
	if p.Message != nil {
		r.Message = *p.Message
	}
	if p.Conflict != nil {
		r.Conflict = p.Conflict
	}
	if p.UpdatedAt != nil {
		r.UpdatedAt = *p.UpdatedAt
	}
}

// HistoryQuery holds the parameters that produce one page of history.
type HistoryQuery struct {
	JobID    string
	Page     int
	PageSize int
	Search   string
	Status   Status
}

// HistoryPage is one fetched page of history records with the authoritative
// total count across all pages.
type HistoryPage struct {
	Records []HistoryRecord `json:"records"`
	Total   int             `json:"total"`
}

// ResolutionRequest is the single payload submitted to resolve one conflict
// record. Retry submissions for failed records use the same shape.
type ResolutionRequest struct {
	RecordID      string        `json:"record_id"`
	ConflictType  ConflictType  `json:"conflict_type"`
	SeriesID      int           `json:"series_id,omitempty"`
	Season        *int          `json:"season,omitempty"`
	Episode       *int          `json:"episode,omitempty"`
	FileAction    FileAction    `json:"file_action,omitempty"`
	LibraryAction LibraryAction `json:"library_action,omitempty"`
}
