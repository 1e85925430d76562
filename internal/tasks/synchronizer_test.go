package tasks

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/nvale/scrapedeck/internal/models"
	mocks "github.com/nvale/scrapedeck/internal/testing"
)

func makeRecords(n int) []models.HistoryRecord {
	records := make([]models.HistoryRecord, n)
	for i := range records {
		records[i] = models.HistoryRecord{
			ID:        fmt.Sprintf("rec-%d", i),
			DisplayID: i + 1,
			Title:     fmt.Sprintf("Show S01E%02d", i+1),
			Status:    models.StatusSuccess,
			Source:    models.SourceWatcher,
		}
	}
	return records
}

func createdEvent(id string) models.PushEvent {
	return models.PushEvent{
		Type:   models.PushCreated,
		Record: &models.HistoryRecord{ID: id, Title: "pushed " + id, Status: models.StatusRunning},
	}
}

func TestSynchronizerLoad(t *testing.T) {
	t.Run("Replaces List And Total Atomically", func(t *testing.T) {
		api := &mocks.MockHistoryAPI{
			ListFn: func(ctx context.Context, q models.HistoryQuery) (*models.HistoryPage, error) {
				return &models.HistoryPage{Records: makeRecords(20), Total: 57}, nil
			},
		}
		s := NewSynchronizer(api, nil, models.HistoryQuery{Page: 1, PageSize: 20})

		if err := s.Load(context.Background()); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(s.Records()) != 20 || s.Total() != 57 {
			t.Errorf("expected 20 records total 57, got %d/%d", len(s.Records()), s.Total())
		}
	})

	t.Run("Idempotent Without Server Change", func(t *testing.T) {
		api := &mocks.MockHistoryAPI{
			ListFn: func(ctx context.Context, q models.HistoryQuery) (*models.HistoryPage, error) {
				return &models.HistoryPage{Records: makeRecords(5), Total: 5}, nil
			},
		}
		s := NewSynchronizer(api, nil, models.HistoryQuery{Page: 1, PageSize: 20})

		s.Load(context.Background())
		first := append([]models.HistoryRecord(nil), s.Records()...)
		s.Load(context.Background())

		if len(s.Records()) != len(first) || s.Total() != 5 {
			t.Fatal("repeated load must be idempotent")
		}
		for i := range first {
			if s.Records()[i].ID != first[i].ID {
				t.Errorf("record %d differs after reload", i)
			}
		}
	})

	t.Run("Failure Leaves State Untouched", func(t *testing.T) {
		calls := 0
		api := &mocks.MockHistoryAPI{
			ListFn: func(ctx context.Context, q models.HistoryQuery) (*models.HistoryPage, error) {
				calls++
				if calls == 1 {
					return &models.HistoryPage{Records: makeRecords(3), Total: 3}, nil
				}
				return nil, errors.New("boom")
			},
		}
		s := NewSynchronizer(api, nil, models.HistoryQuery{Page: 1, PageSize: 20})

		s.Load(context.Background())
		err := s.Load(context.Background())

		if err == nil {
			t.Fatal("expected error from second load")
		}
		if len(s.Records()) != 3 || s.Total() != 3 {
			t.Error("failed load must not change held state")
		}
	})

	t.Run("In-Flight Load Wins Over Pushes", func(t *testing.T) {
		s := NewSynchronizer(&mocks.MockHistoryAPI{}, nil, models.HistoryQuery{Page: 1, PageSize: 20})

		// A load goes out, then pushes arrive and mutate the list before
		// the response lands.
		token, _ := s.BeginLoad()
		s.ApplyPush(createdEvent("pushed-1"))
		s.ApplyPush(createdEvent("pushed-2"))
		s.ApplyPush(models.PushEvent{Type: models.PushDeleted, ID: "pushed-1"})

		response := &models.HistoryPage{Records: makeRecords(20), Total: 57}
		if err := s.CompleteLoad(token, response, nil); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if len(s.Records()) != 20 || s.Total() != 57 {
			t.Fatalf("load response must fully overwrite push effects, got %d/%d", len(s.Records()), s.Total())
		}
		for _, r := range s.Records() {
			if r.ID == "pushed-2" {
				t.Error("push artifacts must not survive the authoritative snapshot")
			}
		}
	})

	t.Run("Stale Load Response Discarded", func(t *testing.T) {
		s := NewSynchronizer(&mocks.MockHistoryAPI{}, nil, models.HistoryQuery{Page: 1, PageSize: 20})

		oldToken, _ := s.BeginLoad()
		newToken, _ := s.BeginLoad()

		if err := s.CompleteLoad(oldToken, &models.HistoryPage{Records: makeRecords(9), Total: 9}, nil); err != nil {
			t.Fatalf("stale response must be dropped silently, got %v", err)
		}
		if len(s.Records()) != 0 {
			t.Error("stale response must not be applied")
		}

		if err := s.CompleteLoad(newToken, &models.HistoryPage{Records: makeRecords(2), Total: 2}, nil); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(s.Records()) != 2 {
			t.Error("current response must be applied")
		}

		// A stale error is dropped too, not surfaced.
		if err := s.CompleteLoad(oldToken, nil, errors.New("late failure")); err != nil {
			t.Errorf("stale error must be dropped, got %v", err)
		}
	})
}

func TestSynchronizerApplyPush(t *testing.T) {
	loaded := func(n, total int) *Synchronizer {
		api := &mocks.MockHistoryAPI{
			ListFn: func(ctx context.Context, q models.HistoryQuery) (*models.HistoryPage, error) {
				return &models.HistoryPage{Records: makeRecords(n), Total: total}, nil
			},
		}
		s := NewSynchronizer(api, nil, models.HistoryQuery{Page: 1, PageSize: 20})
		s.Load(context.Background())
		return s
	}

	t.Run("Created Inserts At Front And Is Idempotent", func(t *testing.T) {
		s := loaded(5, 40)

		res := s.ApplyPush(createdEvent("fresh"))
		if !res.Changed {
			t.Error("expected mutation")
		}
		if s.Records()[0].ID != "fresh" {
			t.Error("created record must be inserted at index 0")
		}
		if len(s.Records()) != 6 || s.Total() != 41 {
			t.Errorf("expected 6 records total 41, got %d/%d", len(s.Records()), s.Total())
		}

		res = s.ApplyPush(createdEvent("fresh"))
		if res.Changed {
			t.Error("duplicate created push must be a no-op")
		}
		if len(s.Records()) != 6 || s.Total() != 41 {
			t.Error("duplicate created push changed state")
		}
	})

	t.Run("Updated Merges Named Fields Only", func(t *testing.T) {
		s := loaded(5, 5)
		target := s.Records()[2]
		status := models.StatusFailed

		res := s.ApplyPush(models.PushEvent{
			Type:  models.PushUpdated,
			Patch: &models.RecordPatch{ID: target.ID, Status: &status},
		})

		if !res.Changed {
			t.Error("expected mutation")
		}
		got := s.Records()[2]
		if got.Status != models.StatusFailed {
			t.Errorf("expected patched status, got %s", got.Status)
		}
		if got.Title != target.Title || got.DisplayID != target.DisplayID {
			t.Error("fields absent from the patch must be unchanged")
		}
	})

	t.Run("Updated For Absent Record Dropped", func(t *testing.T) {
		s := loaded(5, 5)
		status := models.StatusFailed

		res := s.ApplyPush(models.PushEvent{
			Type:  models.PushUpdated,
			Patch: &models.RecordPatch{ID: "elsewhere", Status: &status},
		})

		if res.Changed {
			t.Error("update for a record on another page must be dropped")
		}
	})

	t.Run("Deleted Removes And Decrements", func(t *testing.T) {
		// Scenario from the history page: 20 records, total 57, the 6th
		// record is deleted by push.
		s := loaded(20, 57)
		victim := s.Records()[5].ID

		res := s.ApplyPush(models.PushEvent{Type: models.PushDeleted, ID: victim})

		if !res.Changed {
			t.Error("expected mutation")
		}
		if len(s.Records()) != 19 || s.Total() != 56 {
			t.Errorf("expected 19 records total 56, got %d/%d", len(s.Records()), s.Total())
		}
		for _, r := range s.Records() {
			if r.ID == victim {
				t.Error("deleted id must be absent")
			}
		}
	})

	t.Run("Deleted For Absent Record Is No-op", func(t *testing.T) {
		s := loaded(5, 5)
		res := s.ApplyPush(models.PushEvent{Type: models.PushDeleted, ID: "elsewhere"})
		if res.Changed || len(s.Records()) != 5 || s.Total() != 5 {
			t.Error("delete of absent id must change nothing")
		}
	})

	t.Run("Total Never Negative", func(t *testing.T) {
		s := NewSynchronizer(&mocks.MockHistoryAPI{}, nil, models.HistoryQuery{Page: 1, PageSize: 20})
		s.ApplyPush(createdEvent("only"))
		s.ApplyPush(models.PushEvent{Type: models.PushDeleted, ID: "only"})
		s.ApplyPush(models.PushEvent{Type: models.PushDeleted, ID: "only"})

		if s.Total() != 0 {
			t.Errorf("total must floor at zero, got %d", s.Total())
		}
	})

	t.Run("Cleared Discards And Requests Reload", func(t *testing.T) {
		s := loaded(5, 40)
		res := s.ApplyPush(models.PushEvent{Type: models.PushCleared})

		if !res.NeedsReload {
			t.Error("cleared must request a reload")
		}
		if len(s.Records()) != 0 || s.Total() != 0 {
			t.Error("cleared must discard local state")
		}
	})
}

func TestSynchronizerUserActions(t *testing.T) {
	t.Run("DeleteOne Refetches On Success", func(t *testing.T) {
		var deleted string
		listCalls := 0
		api := &mocks.MockHistoryAPI{
			DeleteFn: func(ctx context.Context, id string) error {
				deleted = id
				return nil
			},
			ListFn: func(ctx context.Context, q models.HistoryQuery) (*models.HistoryPage, error) {
				listCalls++
				return &models.HistoryPage{Records: makeRecords(4), Total: 4}, nil
			},
		}
		s := NewSynchronizer(api, nil, models.HistoryQuery{Page: 1, PageSize: 20})

		if err := s.DeleteOne(context.Background(), "rec-2"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if deleted != "rec-2" {
			t.Errorf("expected delete of rec-2, got %q", deleted)
		}
		if listCalls != 1 {
			t.Errorf("expected one refetch, got %d", listCalls)
		}
		if s.Total() != 4 {
			t.Errorf("expected authoritative total 4, got %d", s.Total())
		}
	})

	t.Run("DeleteOne Failure Leaves State", func(t *testing.T) {
		listCalls := 0
		api := &mocks.MockHistoryAPI{
			DeleteFn: func(ctx context.Context, id string) error { return errors.New("denied") },
			ListFn: func(ctx context.Context, q models.HistoryQuery) (*models.HistoryPage, error) {
				listCalls++
				return &models.HistoryPage{Records: makeRecords(4), Total: 4}, nil
			},
		}
		s := NewSynchronizer(api, nil, models.HistoryQuery{Page: 1, PageSize: 20})
		s.Load(context.Background())

		if err := s.DeleteOne(context.Background(), "rec-2"); err == nil {
			t.Fatal("expected error")
		}
		if listCalls != 1 {
			t.Error("failed delete must not refetch")
		}
		if len(s.Records()) != 4 {
			t.Error("failed delete must not change the list")
		}
	})

	t.Run("ClearAll Refetches", func(t *testing.T) {
		cleared := false
		api := &mocks.MockHistoryAPI{
			ClearFn: func(ctx context.Context) error {
				cleared = true
				return nil
			},
			ListFn: func(ctx context.Context, q models.HistoryQuery) (*models.HistoryPage, error) {
				return &models.HistoryPage{Records: []models.HistoryRecord{}, Total: 0}, nil
			},
		}
		s := NewSynchronizer(api, nil, models.HistoryQuery{Page: 1, PageSize: 20})

		if err := s.ClearAll(context.Background()); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !cleared {
			t.Error("expected clear call")
		}
		if s.Total() != 0 {
			t.Error("expected empty state after clear")
		}
	})

	t.Run("DeleteMany Forwards IDs", func(t *testing.T) {
		var got []string
		api := &mocks.MockHistoryAPI{
			DeleteManyFn: func(ctx context.Context, ids []string) error {
				got = ids
				return nil
			},
			ListFn: func(ctx context.Context, q models.HistoryQuery) (*models.HistoryPage, error) {
				return &models.HistoryPage{Records: []models.HistoryRecord{}, Total: 0}, nil
			},
		}
		s := NewSynchronizer(api, nil, models.HistoryQuery{Page: 1, PageSize: 20})

		if err := s.DeleteMany(context.Background(), []string{"a", "b", "c"}); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(got) != 3 {
			t.Errorf("expected 3 ids forwarded, got %v", got)
		}
	})
}
