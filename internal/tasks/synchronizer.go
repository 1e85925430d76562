package tasks

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/nvale/scrapedeck/internal/models"
	"github.com/nvale/scrapedeck/internal/services"
	"github.com/nvale/scrapedeck/internal/shared"
)

// LoadToken identifies one full-page fetch. A completion presenting a token
// older than the synchronizer's current one is discarded: the newest load is
// always the authoritative snapshot.
type LoadToken uint64

// PushResult reports what ApplyPush did with an event.
type PushResult struct {
	// Changed is true when the held list or total was mutated.
	Changed bool
	// NeedsReload is true for cleared events: the local state was
	// discarded and the host must issue a fresh load with the current
	// query.
	NeedsReload bool
}

// Synchronizer owns one page of history records plus the authoritative total
// count and the query that produced them. The hosting page reads Records and
// Total and issues commands; it never mutates the list directly.
//
// All methods must be called from the same logical thread. Network calls are
// split into Begin/Complete pairs so the caller can await them elsewhere;
// the race between an in-flight load and interleaved pushes is resolved in
// the load's favor (push effects applied meanwhile are overwritten by the
// response).
type Synchronizer struct {
	api    services.HistoryAPI
	logger *log.Logger

	query   models.HistoryQuery
	records []models.HistoryRecord
	total   int
	seq     LoadToken
}

// NewSynchronizer creates a synchronizer for the given query.
func NewSynchronizer(api services.HistoryAPI, logger *log.Logger, query models.HistoryQuery) *Synchronizer {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.PageSize <= 0 {
		query.PageSize = 20
	}
	return &Synchronizer{
		api:     api,
		logger:  logger,
		query:   query,
		records: []models.HistoryRecord{},
	}
}

// Records returns the held page. Callers must treat it as read-only.
func (s *Synchronizer) Records() []models.HistoryRecord { return s.records }

// Total returns the authoritative total count across all pages.
func (s *Synchronizer) Total() int { return s.total }

// Query returns the query that produced the held page.
func (s *Synchronizer) Query() models.HistoryQuery { return s.query }

// SetQuery updates the query used by subsequent loads (page change, filter
// change). It does not touch the held records; call BeginLoad after.
func (s *Synchronizer) SetQuery(query models.HistoryQuery) {
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.PageSize <= 0 {
		query.PageSize = 20
	}
	s.query = query
}

// BeginLoad starts a full page fetch: it advances the load token and returns
// it with the query to fetch. The caller performs the fetch and reports back
// through CompleteLoad.
func (s *Synchronizer) BeginLoad() (LoadToken, models.HistoryQuery) {
	s.seq++
	return s.seq, s.query
}

// CompleteLoad applies a finished fetch. A stale token (a newer load has
// begun since) is silently discarded, success or not. A current-token error
// leaves the held state untouched and is returned for the caller to surface.
// A current-token success replaces the entire list and total atomically.
func (s *Synchronizer) CompleteLoad(token LoadToken, page *models.HistoryPage, err error) error {
	if token != s.seq {
		s.logger.Debug("discarding stale load response", "token", token, "current", s.seq)
		return nil
	}
	if err != nil {
		return err
	}

	records := make([]models.HistoryRecord, len(page.Records))
	copy(records, page.Records)
	s.records = records
	s.total = page.Total
	return nil
}

// Load performs a blocking fetch-and-apply. Used by the CLI; the TUI drives
// BeginLoad/CompleteLoad itself.
func (s *Synchronizer) Load(ctx context.Context) error {
	token, query := s.BeginLoad()
	page, err := s.api.List(ctx, query)
	return s.CompleteLoad(token, page, err)
}

// ApplyPush merges one push event into the held page. Events referencing
// records not on this page are ignored; duplicate created events are no-ops.
// The mutation is synchronous and atomic with respect to the caller.
func (s *Synchronizer) ApplyPush(ev models.PushEvent) PushResult {
	switch ev.Type {
	case models.PushCreated:
		if ev.Record == nil || s.indexOf(ev.Record.ID) >= 0 {
			return PushResult{}
		}
		// Newest records sort first; inserting at the front covers the
		// common "a running task just finished" case without a refetch.
		s.records = append([]models.HistoryRecord{*ev.Record}, s.records...)
		s.total++
		return PushResult{Changed: true}

	case models.PushUpdated:
		if ev.Patch == nil {
			return PushResult{}
		}
		i := s.indexOf(ev.Patch.ID)
		if i < 0 {
			// Not on the current page; expected under filtering.
			return PushResult{}
		}
		s.records[i].Apply(*ev.Patch)
		return PushResult{Changed: true}

	case models.PushDeleted:
		i := s.indexOf(ev.ID)
		if i < 0 {
			return PushResult{}
		}
		s.records = append(s.records[:i], s.records[i+1:]...)
		if s.total > 0 {
			s.total--
		}
		return PushResult{Changed: true}

	case models.PushCleared:
		s.records = []models.HistoryRecord{}
		s.total = 0
		return PushResult{Changed: true, NeedsReload: true}
	}

	return PushResult{}
}

// DeleteOne deletes a record server-side, then refetches the current page so
// the displayed total and ordering are authoritative. No optimistic local
// removal: on failure nothing changes.
func (s *Synchronizer) DeleteOne(ctx context.Context, id string) error {
	if err := s.api.Delete(ctx, id); err != nil {
		return err
	}
	return s.Load(ctx)
}

// DeleteMany deletes the given records server-side, then refetches.
func (s *Synchronizer) DeleteMany(ctx context.Context, ids []string) error {
	if err := s.api.DeleteMany(ctx, ids); err != nil {
		return err
	}
	return s.Load(ctx)
}

// ClearAll clears all history server-side, then refetches.
func (s *Synchronizer) ClearAll(ctx context.Context) error {
	if err := s.api.Clear(ctx); err != nil {
		return err
	}
	return s.Load(ctx)
}

func (s *Synchronizer) indexOf(id string) int {
	for i := range s.records {
		if s.records[i].ID == id {
			return i
		}
	}
	return -1
}
