package tasks

import (
	"errors"
	"testing"

	"github.com/nvale/scrapedeck/internal/models"
)

func intPtr(n int) *int { return &n }

func exampleSeries() *models.Series {
	return &models.Series{
		ID:   42,
		Name: "Example Show",
		Seasons: []models.Season{
			{SeasonNumber: 1, Name: "Season 1", Episodes: []models.Episode{
				{EpisodeNumber: 1, Name: "Pilot"}, {EpisodeNumber: 2, Name: "Second"},
			}},
			{SeasonNumber: 2, Name: "Season 2", Episodes: []models.Episode{
				{EpisodeNumber: 1, Name: "Return"},
			}},
		},
	}
}

func conflictRecord(c *models.ConflictData) *models.HistoryRecord {
	return &models.HistoryRecord{
		ID:       "rec-1",
		Title:    "Example.Show.S01E01.mkv",
		Status:   models.StatusPendingAction,
		Conflict: c,
	}
}

func TestWizardOpen(t *testing.T) {
	t.Run("Unknown Conflict Type Is Hard Stop", func(t *testing.T) {
		w := NewWizard()
		w.Open(conflictRecord(&models.ConflictData{Type: "mystery"}), false)

		if w.Step() != StepDisabled {
			t.Fatalf("expected disabled step, got %v", w.Step())
		}
		if w.CanSubmit() {
			t.Error("submit must be disabled")
		}
		if _, err := w.BeginSubmit(); err == nil {
			t.Error("submit attempt must fail without building a request")
		}
	})

	t.Run("Missing Conflict Data Is Hard Stop", func(t *testing.T) {
		w := NewWizard()
		w.Open(conflictRecord(nil), false)
		if w.Step() != StepDisabled {
			t.Fatalf("expected disabled step, got %v", w.Step())
		}
	})

	t.Run("Manual Search Types Start On Search", func(t *testing.T) {
		for _, ct := range []models.ConflictType{models.ConflictNoMatch, models.ConflictSearchFailed, models.ConflictAPIFailed} {
			w := NewWizard()
			w.Open(conflictRecord(&models.ConflictData{Type: ct}), false)
			if w.Step() != StepSearch {
				t.Errorf("%s: expected search step, got %v", ct, w.Step())
			}
		}
	})

	t.Run("Retry Variant Starts On Search", func(t *testing.T) {
		w := NewWizard()
		w.Open(&models.HistoryRecord{ID: "rec-1", Status: models.StatusFailed}, true)
		if w.Step() != StepSearch {
			t.Errorf("expected search step, got %v", w.Step())
		}
	})

	t.Run("Need Selection Starts On Candidates Filtered", func(t *testing.T) {
		w := NewWizard()
		w.Open(conflictRecord(&models.ConflictData{
			Type: models.ConflictNeedSelection,
			Candidates: []models.SeriesCandidate{
				{ID: 1, Name: "A", MediaType: models.MediaTV},
				{ID: 2, Name: "B", MediaType: models.MediaMovie},
				{ID: 3, Name: "C"},
			},
		}), false)

		if w.Step() != StepPickCandidate {
			t.Fatalf("expected candidate step, got %v", w.Step())
		}
		if len(w.Candidates()) != 2 {
			t.Errorf("movie candidates must be filtered out, got %d", len(w.Candidates()))
		}
	})

	t.Run("Need Season Episode Seeds From Series Info", func(t *testing.T) {
		w := NewWizard()
		fetch := w.Open(conflictRecord(&models.ConflictData{
			Type:       models.ConflictNeedSeasonEpisode,
			SeriesInfo: exampleSeries(),
		}), false)

		if fetch != nil {
			t.Error("pre-attached series info must avoid a detail fetch")
		}
		if w.Step() != StepPickSeason || len(w.Seasons()) != 2 {
			t.Errorf("expected season step with seeded seasons, got %v/%d", w.Step(), len(w.Seasons()))
		}
	})

	t.Run("Need Season Episode Without Series Info Fetches", func(t *testing.T) {
		w := NewWizard()
		fetch := w.Open(conflictRecord(&models.ConflictData{
			Type:       models.ConflictNeedSeasonEpisode,
			Candidates: []models.SeriesCandidate{{ID: 42, Name: "Example Show"}},
		}), false)

		if fetch == nil || fetch.SeriesID != 42 {
			t.Fatal("expected a detail fetch for the single candidate")
		}
		if !w.Fetching() {
			t.Error("controls must be blocked while fetching")
		}
	})

	t.Run("Reopening Resets Session", func(t *testing.T) {
		w := NewWizard()
		w.Open(conflictRecord(&models.ConflictData{
			Type:       models.ConflictNeedSelection,
			Candidates: []models.SeriesCandidate{{ID: 1, Name: "A"}},
		}), false)
		fetch, err := w.SelectCandidate(1)
		if err != nil || fetch == nil {
			t.Fatalf("setup failed: %v", err)
		}

		other := conflictRecord(&models.ConflictData{Type: models.ConflictFile, DestPath: "/dest/file.mkv"})
		other.ID = "rec-2"
		w.Open(other, false)

		if w.Step() != StepChooseAction {
			t.Errorf("expected fresh session on choose-action step, got %v", w.Step())
		}
		// The fetch issued for the previous record is now stale.
		if err := w.CompleteDetail(fetch.Token, exampleSeries(), nil); err != nil {
			t.Errorf("stale detail must be dropped silently, got %v", err)
		}
		if len(w.Seasons()) != 0 {
			t.Error("stale detail must not seed the new session")
		}
	})
}

func TestWizardNeedSelection(t *testing.T) {
	t.Run("Parsed Episode Skips Picking", func(t *testing.T) {
		w := NewWizard()
		w.Open(conflictRecord(&models.ConflictData{
			Type:          models.ConflictNeedSelection,
			Candidates:    []models.SeriesCandidate{{ID: 7, Name: "A"}, {ID: 8, Name: "B"}},
			ParsedSeason:  intPtr(1),
			ParsedEpisode: intPtr(3),
		}), false)

		fetch, err := w.SelectCandidate(8)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if fetch != nil {
			t.Error("parsed season/episode must not trigger a detail fetch")
		}
		if w.Step() != StepConfirm || !w.CanSubmit() {
			t.Fatalf("expected submittable state, got %v", w.Step())
		}

		intent, err := w.BeginSubmit()
		if err != nil {
			t.Fatalf("expected submit intent, got %v", err)
		}
		req := intent.Request
		if req.SeriesID != 8 || req.Season == nil || *req.Season != 1 || req.Episode == nil || *req.Episode != 3 {
			t.Errorf("unexpected payload: %+v", req)
		}
	})

	t.Run("Without Parsed Episode Walks Season And Episode", func(t *testing.T) {
		w := NewWizard()
		w.Open(conflictRecord(&models.ConflictData{
			Type:       models.ConflictNeedSelection,
			Candidates: []models.SeriesCandidate{{ID: 42, Name: "Example Show"}},
		}), false)

		fetch, err := w.SelectCandidate(42)
		if err != nil || fetch == nil {
			t.Fatalf("expected detail fetch, got %v", err)
		}
		if !w.Fetching() {
			t.Error("expected pending state during fetch")
		}
		if _, err := w.SelectCandidate(42); err == nil {
			t.Error("re-selection must be refused while a lookup is pending")
		}

		if err := w.CompleteDetail(fetch.Token, exampleSeries(), nil); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if w.Step() != StepPickSeason {
			t.Fatalf("expected season step, got %v", w.Step())
		}

		if err := w.SelectSeason(1); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(w.EpisodesForSeason()) != 2 {
			t.Errorf("expected 2 episodes for season 1, got %d", len(w.EpisodesForSeason()))
		}

		intent, err := w.SelectEpisode(2)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if intent != nil {
			t.Error("need_selection path must not auto-submit")
		}
		if w.Step() != StepConfirm {
			t.Fatalf("expected confirm step, got %v", w.Step())
		}

		submit, err := w.BeginSubmit()
		if err != nil {
			t.Fatalf("expected submit intent, got %v", err)
		}
		if submit.Request.ConflictType != models.ConflictNeedSelection {
			t.Errorf("unexpected conflict type %s", submit.Request.ConflictType)
		}
		if *submit.Request.Season != 1 || *submit.Request.Episode != 2 {
			t.Errorf("unexpected season/episode: %+v", submit.Request)
		}
	})

	t.Run("Superseded Detail Fetch Dropped", func(t *testing.T) {
		w := NewWizard()
		w.Open(conflictRecord(&models.ConflictData{
			Type:       models.ConflictNeedSelection,
			Candidates: []models.SeriesCandidate{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}},
		}), false)

		first, err := w.SelectCandidate(1)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		// The fetch fails transiently; the user re-selects.
		if err := w.CompleteDetail(first.Token, nil, errors.New("slow network")); err == nil {
			t.Error("current-token failure must surface")
		}
		second, err := w.SelectCandidate(2)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		// Candidate A's retried response arrives late and must not apply.
		if err := w.CompleteDetail(first.Token, exampleSeries(), nil); err != nil {
			t.Errorf("stale completion must be silent, got %v", err)
		}
		if len(w.Seasons()) != 0 || w.Step() != StepPickCandidate {
			t.Error("stale detail applied to superseded selection")
		}

		if err := w.CompleteDetail(second.Token, exampleSeries(), nil); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if w.Step() != StepPickSeason {
			t.Error("current detail must apply")
		}
	})
}

func TestWizardManualSearch(t *testing.T) {
	open := func(t *testing.T) *Wizard {
		t.Helper()
		w := NewWizard()
		w.Open(conflictRecord(&models.ConflictData{Type: models.ConflictNoMatch}), false)
		return w
	}

	t.Run("Search Is Explicit And Filters Candidates", func(t *testing.T) {
		w := open(t)

		if _, err := w.BeginSearch(""); err == nil {
			t.Error("empty query must be rejected")
		}

		intent, err := w.BeginSearch("Foo")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !intent.Fuzzy {
			t.Error("manual search should enable fuzzy fallback")
		}

		resp := &models.SearchResponse{
			Query: "Foo",
			Results: []models.SeriesCandidate{
				{ID: 1, Name: "Foo", MediaType: models.MediaTV},
				{ID: 2, Name: "Foo Movie", MediaType: models.MediaMovie},
			},
		}
		if err := w.CompleteSearch(intent.Token, resp, nil); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if w.Step() != StepPickCandidate || len(w.Candidates()) != 1 {
			t.Errorf("expected one filtered candidate, got %d on %v", len(w.Candidates()), w.Step())
		}
	})

	t.Run("Effective Query Displayed Without Resubmitting", func(t *testing.T) {
		w := open(t)
		intent, _ := w.BeginSearch("Foo")

		resp := &models.SearchResponse{Query: "Foo", EffectiveQuery: "Foo Bar", Results: []models.SeriesCandidate{{ID: 1, Name: "Foo Bar", MediaType: models.MediaTV}}}
		if err := w.CompleteSearch(intent.Token, resp, nil); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if w.EffectiveQuery() != "Foo Bar" {
			t.Errorf("expected substituted query surfaced, got %q", w.EffectiveQuery())
		}
	})

	t.Run("Episode Selection Auto-Submits", func(t *testing.T) {
		w := open(t)
		intent, _ := w.BeginSearch("Example")
		w.CompleteSearch(intent.Token, &models.SearchResponse{Results: []models.SeriesCandidate{{ID: 42, Name: "Example Show", MediaType: models.MediaTV}}}, nil)

		fetch, err := w.SelectCandidate(42)
		if err != nil || fetch == nil {
			t.Fatalf("expected detail fetch, got %v", err)
		}
		w.CompleteDetail(fetch.Token, exampleSeries(), nil)
		w.SelectSeason(2)

		submit, err := w.SelectEpisode(1)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if submit == nil {
			t.Fatal("manual path must submit implicitly on episode selection")
		}
		if submit.Request.ConflictType != models.ConflictNoMatch || submit.Request.SeriesID != 42 {
			t.Errorf("unexpected payload: %+v", submit.Request)
		}
	})

	t.Run("Stale Search Response Dropped", func(t *testing.T) {
		w := open(t)
		first, _ := w.BeginSearch("One")
		second, _ := w.BeginSearch("Two")

		if err := w.CompleteSearch(first.Token, &models.SearchResponse{Results: []models.SeriesCandidate{{ID: 1, Name: "One", MediaType: models.MediaTV}}}, nil); err != nil {
			t.Errorf("stale search must be silent, got %v", err)
		}
		if w.Step() != StepSearch {
			t.Error("stale search must not advance state")
		}

		w.CompleteSearch(second.Token, &models.SearchResponse{Results: []models.SeriesCandidate{{ID: 2, Name: "Two", MediaType: models.MediaTV}}}, nil)
		if len(w.Candidates()) != 1 || w.Candidates()[0].ID != 2 {
			t.Error("expected the newer search's candidates")
		}
	})
}

func TestWizardFileConflict(t *testing.T) {
	t.Run("Rename Then Submit", func(t *testing.T) {
		w := NewWizard()
		w.Open(conflictRecord(&models.ConflictData{Type: models.ConflictFile, DestPath: "/dest/show.mkv"}), false)

		if w.Step() != StepChooseAction {
			t.Fatalf("expected choose-action step, got %v", w.Step())
		}
		if err := w.ChooseFileAction(models.FileRename); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		intent, err := w.BeginSubmit()
		if err != nil {
			t.Fatalf("expected submit intent, got %v", err)
		}
		req := intent.Request
		if req.ConflictType != models.ConflictFile || req.FileAction != models.FileRename {
			t.Errorf("unexpected payload: %+v", req)
		}
		if req.Season != nil || req.Episode != nil {
			t.Error("file conflict payload must not require season/episode")
		}
	})

	t.Run("File Action On Wrong Type Rejected", func(t *testing.T) {
		w := NewWizard()
		w.Open(conflictRecord(&models.ConflictData{Type: models.ConflictEmby}), false)
		if err := w.ChooseFileAction(models.FileSkip); err == nil {
			t.Error("expected rejection for non-file conflict")
		}
	})
}

func TestWizardLibraryConflict(t *testing.T) {
	t.Run("Force Submits Immediately", func(t *testing.T) {
		w := NewWizard()
		w.Open(conflictRecord(&models.ConflictData{Type: models.ConflictEmby}), false)

		intent, err := w.ChooseLibraryAction(models.LibraryForce)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if intent == nil || intent.Request.LibraryAction != models.LibraryForce {
			t.Fatal("force must produce an immediate submit intent")
		}
	})

	t.Run("Change Opens Season Picking", func(t *testing.T) {
		w := NewWizard()
		w.Open(conflictRecord(&models.ConflictData{Type: models.ConflictEmby, SeriesInfo: exampleSeries()}), false)

		intent, err := w.ChooseLibraryAction(models.LibraryChange)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if intent != nil {
			t.Error("change must not submit immediately")
		}
		if w.Step() != StepPickSeason || len(w.Seasons()) != 2 {
			t.Errorf("expected season picking with seeded seasons, got %v", w.Step())
		}
	})
}

func TestWizardSubmitSemantics(t *testing.T) {
	openConfirm := func(t *testing.T) *Wizard {
		t.Helper()
		w := NewWizard()
		w.Open(conflictRecord(&models.ConflictData{Type: models.ConflictFile}), false)
		if err := w.ChooseFileAction(models.FileSkip); err != nil {
			t.Fatalf("setup failed: %v", err)
		}
		return w
	}

	t.Run("At Most One Submission Per Session", func(t *testing.T) {
		w := openConfirm(t)

		first, err := w.BeginSubmit()
		if err != nil {
			t.Fatalf("expected submit intent, got %v", err)
		}
		if _, err := w.BeginSubmit(); err == nil {
			t.Error("second submit must be refused while the first is outstanding")
		}

		ok, err := w.CompleteSubmit(first.Token, nil)
		if !ok || err != nil {
			t.Fatalf("expected success, got ok=%v err=%v", ok, err)
		}
		if w.Step() != StepDone {
			t.Errorf("expected done step, got %v", w.Step())
		}
		if _, err := w.BeginSubmit(); err == nil {
			t.Error("submit after success must be refused")
		}
	})

	t.Run("Failure Keeps Selections For Retry", func(t *testing.T) {
		w := openConfirm(t)

		intent, _ := w.BeginSubmit()
		ok, err := w.CompleteSubmit(intent.Token, errors.New("server says no"))
		if ok {
			t.Error("failed submission must not report success")
		}
		if err == nil {
			t.Error("failure must surface for display")
		}

		// The dialog stays open with selections intact; retrying works.
		retry, err := w.BeginSubmit()
		if err != nil {
			t.Fatalf("retry must be allowed, got %v", err)
		}
		if retry.Request.FileAction != models.FileSkip {
			t.Error("selections must survive a failed submission")
		}
	})

	t.Run("Close Invalidates In-Flight Submit", func(t *testing.T) {
		w := openConfirm(t)
		intent, _ := w.BeginSubmit()
		w.Close()

		ok, err := w.CompleteSubmit(intent.Token, nil)
		if ok || err != nil {
			t.Error("completion after close must be a silent no-op")
		}
	})
}

func TestWizardBack(t *testing.T) {
	t.Run("Back Discards Later Selections", func(t *testing.T) {
		w := NewWizard()
		w.Open(conflictRecord(&models.ConflictData{
			Type:       models.ConflictNeedSelection,
			Candidates: []models.SeriesCandidate{{ID: 42, Name: "Example Show"}},
		}), false)

		fetch, _ := w.SelectCandidate(42)
		w.CompleteDetail(fetch.Token, exampleSeries(), nil)
		w.SelectSeason(1)
		w.SelectEpisode(2)

		if !w.Back() {
			t.Fatal("expected back from confirm")
		}
		if w.Step() != StepPickEpisode {
			t.Fatalf("expected episode step, got %v", w.Step())
		}

		w.Back()
		if w.Step() != StepPickSeason || w.Season() != nil {
			t.Error("back to season step must forget the season choice")
		}

		w.Back()
		if w.Step() != StepPickCandidate {
			t.Fatalf("expected candidate step, got %v", w.Step())
		}
		if len(w.Seasons()) != 0 {
			t.Error("back to candidate step must forget the loaded seasons")
		}
	})

	t.Run("Back From Initial State Refused", func(t *testing.T) {
		w := NewWizard()
		w.Open(conflictRecord(&models.ConflictData{Type: models.ConflictNoMatch}), false)
		if w.Back() {
			t.Error("no back from the initial step")
		}
	})

	t.Run("Back Supersedes In-Flight Fetch", func(t *testing.T) {
		w := NewWizard()
		w.Open(conflictRecord(&models.ConflictData{Type: models.ConflictNoMatch}), false)

		search, _ := w.BeginSearch("Example")
		w.CompleteSearch(search.Token, &models.SearchResponse{Results: []models.SeriesCandidate{{ID: 42, Name: "Example", MediaType: models.MediaTV}}}, nil)
		fetch, _ := w.SelectCandidate(42)

		w.Back()
		if w.Step() != StepSearch {
			t.Fatalf("expected search step, got %v", w.Step())
		}
		if err := w.CompleteDetail(fetch.Token, exampleSeries(), nil); err != nil {
			t.Errorf("superseded fetch must be silent, got %v", err)
		}
		if len(w.Seasons()) != 0 {
			t.Error("superseded fetch must not apply")
		}
	})
}
