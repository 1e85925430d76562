package tasks

import (
	"fmt"

	"github.com/nvale/scrapedeck/internal/models"
	"github.com/nvale/scrapedeck/internal/shared"
)

// WizardStep is the wizard's position within the resolution flow for the
// open record's conflict type.
type WizardStep int

const (
	// StepIdle: no record open.
	StepIdle WizardStep = iota
	// StepDisabled: the record's conflict type is missing or unrecognized.
	// Submission is disabled entirely; the record must be deleted
	// out-of-band.
	StepDisabled
	// StepSearch: manual candidate search (no_match, search_failed,
	// api_failed, and the retry variant).
	StepSearch
	// StepPickCandidate: choose among candidate series.
	StepPickCandidate
	// StepPickSeason and StepPickEpisode: choose within the loaded series.
	StepPickSeason
	StepPickEpisode
	// StepChooseAction: choose a file or library action.
	StepChooseAction
	// StepConfirm: all inputs gathered, awaiting explicit submit.
	StepConfirm
	// StepDone: resolution accepted by the server.
	StepDone
)

// SessionToken marks one wizard selection state. Tokens advance on every
// superseding user action (open, close, back, re-selection), and async
// completions carrying an old token are dropped instead of applied.
type SessionToken uint64

// SearchIntent asks the host to run a candidate search.
type SearchIntent struct {
	Token SessionToken
	Query string
	Fuzzy bool
}

// DetailFetch asks the host to fetch series detail.
type DetailFetch struct {
	Token    SessionToken
	SeriesID int
}

// SubmitIntent asks the host to send one resolution request. Retry selects
// the retry endpoint instead of resolve.
type SubmitIntent struct {
	Token   SessionToken
	Request models.ResolutionRequest
	Retry   bool
}

// Wizard is the conflict-resolution state machine for one record at a time.
// It never performs I/O itself: selection methods return intents, the host
// runs them and reports back through the Complete methods. At most one
// resolution is submitted per open session.
type Wizard struct {
	record *models.HistoryRecord
	retry  bool

	step    WizardStep
	trail   []WizardStep
	session SessionToken

	candidates     []models.SeriesCandidate
	effectiveQuery string
	lastQuery      string

	seriesID int
	seasons  []models.Season
	season   *int
	episode  *int

	fileAction    models.FileAction
	libraryAction models.LibraryAction

	fetching  bool
	submitted bool
}

// NewWizard creates an idle wizard.
func NewWizard() *Wizard {
	return &Wizard{step: StepIdle}
}

// Open starts a session for the given record, discarding any previous
// session state. retry marks the failed-record retry variant, which always
// walks the manual search path. Returns a DetailFetch when the initial step
// needs series detail the record did not carry.
func (w *Wizard) Open(record *models.HistoryRecord, retry bool) *DetailFetch {
	w.reset()
	w.record = record
	w.retry = retry

	if retry {
		w.step = StepSearch
		return nil
	}

	c := record.Conflict
	if c == nil || !c.Type.Known() {
		w.step = StepDisabled
		return nil
	}

	switch {
	case c.Type.NeedsManualSearch():
		w.step = StepSearch

	case c.Type == models.ConflictNeedSelection:
		w.candidates = filterCandidates(c.Candidates)
		w.step = StepPickCandidate

	case c.Type == models.ConflictNeedSeasonEpisode:
		w.step = StepPickSeason
		if c.SeriesInfo != nil {
			w.seriesID = c.SeriesInfo.ID
			w.seasons = c.SeriesInfo.Seasons
			return nil
		}
		if len(c.Candidates) == 1 {
			w.seriesID = c.Candidates[0].ID
			w.fetching = true
			return &DetailFetch{Token: w.session, SeriesID: w.seriesID}
		}
		// No series attached at all; fall back to manual search.
		w.step = StepSearch

	case c.Type == models.ConflictFile, c.Type == models.ConflictEmby:
		w.step = StepChooseAction
	}

	return nil
}

// Close discards the session. Any in-flight fetch belonging to it becomes a
// no-op on completion.
func (w *Wizard) Close() {
	w.reset()
}

func (w *Wizard) reset() {
	w.session++
	w.record = nil
	w.retry = false
	w.step = StepIdle
	w.trail = nil
	w.candidates = nil
	w.effectiveQuery = ""
	w.lastQuery = ""
	w.seriesID = 0
	w.seasons = nil
	w.season = nil
	w.episode = nil
	w.fileAction = ""
	w.libraryAction = ""
	w.fetching = false
	w.submitted = false
}

// Step returns the current position.
func (w *Wizard) Step() WizardStep { return w.step }

// Record returns the open record, or nil.
func (w *Wizard) Record() *models.HistoryRecord { return w.record }

// Retry reports whether this session is the failed-record retry variant.
func (w *Wizard) Retry() bool { return w.retry }

// Fetching reports whether an async lookup is pending; the host blocks
// selection controls while true.
func (w *Wizard) Fetching() bool { return w.fetching }

// Candidates returns the candidates currently offered for picking.
func (w *Wizard) Candidates() []models.SeriesCandidate { return w.candidates }

// Seasons returns the season list of the chosen series.
func (w *Wizard) Seasons() []models.Season { return w.seasons }

// Season returns the chosen season number, or nil.
func (w *Wizard) Season() *int { return w.season }

// EpisodeNumber returns the chosen episode number, or nil.
func (w *Wizard) EpisodeNumber() *int { return w.episode }

// FileAction returns the chosen file action, or empty.
func (w *Wizard) FileAction() models.FileAction { return w.fileAction }

// LibraryAction returns the chosen library action, or empty.
func (w *Wizard) LibraryAction() models.LibraryAction { return w.libraryAction }

// EpisodesForSeason returns the episodes of the currently chosen season.
func (w *Wizard) EpisodesForSeason() []models.Episode {
	if w.season == nil {
		return nil
	}
	for i := range w.seasons {
		if w.seasons[i].SeasonNumber == *w.season {
			return w.seasons[i].Episodes
		}
	}
	return nil
}

// EffectiveQuery returns the server-substituted search term when the fuzzy
// fallback kicked in, or empty. Displayed to the user; the search is not
// re-issued.
func (w *Wizard) EffectiveQuery() string { return w.effectiveQuery }

// CanSubmit reports whether an explicit submit is currently allowed.
func (w *Wizard) CanSubmit() bool {
	return w.step == StepConfirm && !w.fetching && !w.submitted
}

// push records the current step before a forward transition so Back can
// return to it.
func (w *Wizard) push(next WizardStep) {
	w.trail = append(w.trail, w.step)
	w.step = next
}

// Back returns to the immediately preceding step, discarding selections made
// after that point. It also supersedes any in-flight fetch.
func (w *Wizard) Back() bool {
	if len(w.trail) == 0 {
		return false
	}
	w.session++
	w.fetching = false

	prev := w.trail[len(w.trail)-1]
	w.trail = w.trail[:len(w.trail)-1]

	// Selections belonging to the abandoned step are forgotten.
	switch w.step {
	case StepPickEpisode:
		w.episode = nil
	case StepPickSeason:
		w.season = nil
		w.episode = nil
	case StepPickCandidate:
		w.candidates = w.openCandidates()
	case StepConfirm:
		w.episode = nil
		w.fileAction = ""
		w.libraryAction = ""
	}
	switch prev {
	case StepPickSeason:
		w.season = nil
		w.episode = nil
	case StepPickCandidate:
		w.seriesID = 0
		w.seasons = nil
		w.season = nil
		w.episode = nil
	case StepChooseAction:
		w.fileAction = ""
		w.libraryAction = ""
		w.season = nil
		w.episode = nil
	case StepSearch:
		w.seriesID = 0
		w.seasons = nil
		w.season = nil
		w.episode = nil
	}

	w.step = prev
	return true
}

// openCandidates returns the candidate list the session started with.
func (w *Wizard) openCandidates() []models.SeriesCandidate {
	if w.record != nil && w.record.Conflict != nil && w.record.Conflict.Type == models.ConflictNeedSelection {
		return filterCandidates(w.record.Conflict.Candidates)
	}
	return w.candidates
}

// BeginSearch starts an explicit candidate search. Only legal on the search
// step; supersedes any outstanding lookup.
func (w *Wizard) BeginSearch(query string) (*SearchIntent, error) {
	if w.step != StepSearch {
		return nil, fmt.Errorf("%w: not on the search step", shared.ErrInvalidInput)
	}
	if query == "" {
		return nil, fmt.Errorf("%w: empty search query", shared.ErrInvalidInput)
	}

	w.session++
	w.fetching = true
	w.lastQuery = query
	w.effectiveQuery = ""
	return &SearchIntent{Token: w.session, Query: query, Fuzzy: true}, nil
}

// CompleteSearch applies a finished search. Stale tokens are dropped
// silently; errors clear the pending flag and are returned for display.
func (w *Wizard) CompleteSearch(token SessionToken, resp *models.SearchResponse, err error) error {
	if token != w.session {
		return nil
	}
	w.fetching = false
	if err != nil {
		return err
	}

	// The server is not trusted to pre-filter by content category.
	w.candidates = filterCandidates(resp.Results)
	if resp.EffectiveQuery != "" && resp.EffectiveQuery != w.lastQuery {
		w.effectiveQuery = resp.EffectiveQuery
	}
	w.push(StepPickCandidate)
	return nil
}

// SelectCandidate chooses a candidate series. Depending on the record it
// either advances directly to a submittable state (season and episode were
// already parsed from the filename), seeds seasons from pre-attached series
// info, or returns a DetailFetch for the host to run.
func (w *Wizard) SelectCandidate(id int) (*DetailFetch, error) {
	if w.step != StepPickCandidate {
		return nil, fmt.Errorf("%w: not on the candidate step", shared.ErrInvalidInput)
	}
	if w.fetching {
		return nil, fmt.Errorf("%w: lookup already pending", shared.ErrInvalidInput)
	}

	w.session++
	w.seriesID = id
	w.seasons = nil
	w.season = nil
	w.episode = nil

	c := w.conflict()
	if c != nil && c.Type == models.ConflictNeedSelection && c.HasParsedEpisode() {
		w.season = c.ParsedSeason
		w.episode = c.ParsedEpisode
		w.push(StepConfirm)
		return nil, nil
	}

	if c != nil && c.SeriesInfo != nil && c.SeriesInfo.ID == id {
		w.seasons = c.SeriesInfo.Seasons
		w.push(StepPickSeason)
		return nil, nil
	}

	w.fetching = true
	return &DetailFetch{Token: w.session, SeriesID: id}, nil
}

// CompleteDetail applies a finished series-detail fetch. A stale token means
// the user re-selected or closed the dialog since; the result is discarded.
func (w *Wizard) CompleteDetail(token SessionToken, series *models.Series, err error) error {
	if token != w.session {
		return nil
	}
	w.fetching = false
	if err != nil {
		return err
	}

	w.seasons = series.Seasons
	if w.step != StepPickSeason {
		w.push(StepPickSeason)
	}
	return nil
}

// SelectSeason chooses a season and advances to episode picking.
func (w *Wizard) SelectSeason(n int) error {
	if w.step != StepPickSeason || w.fetching {
		return fmt.Errorf("%w: not on the season step", shared.ErrInvalidInput)
	}
	season := n
	w.season = &season
	w.episode = nil
	w.push(StepPickEpisode)
	return nil
}

// SelectEpisode chooses an episode. On the manual search path this submits
// implicitly and returns the submit intent; elsewhere it advances to the
// confirm step.
func (w *Wizard) SelectEpisode(n int) (*SubmitIntent, error) {
	if w.step != StepPickEpisode || w.fetching {
		return nil, fmt.Errorf("%w: not on the episode step", shared.ErrInvalidInput)
	}
	episode := n
	w.episode = &episode

	if w.retry || (w.conflict() != nil && w.conflict().Type.NeedsManualSearch()) {
		w.push(StepConfirm)
		return w.BeginSubmit()
	}

	w.push(StepConfirm)
	return nil, nil
}

// ChooseFileAction records the user's choice for a file_conflict record and
// advances to explicit confirmation.
func (w *Wizard) ChooseFileAction(a models.FileAction) error {
	c := w.conflict()
	if w.step != StepChooseAction || c == nil || c.Type != models.ConflictFile {
		return fmt.Errorf("%w: not a file conflict", shared.ErrInvalidInput)
	}
	w.fileAction = a
	w.push(StepConfirm)
	return nil
}

// ChooseLibraryAction records the user's choice for an emby_conflict record.
// Force and skip submit immediately; change opens season/episode picking.
func (w *Wizard) ChooseLibraryAction(a models.LibraryAction) (*SubmitIntent, error) {
	c := w.conflict()
	if w.step != StepChooseAction || c == nil || c.Type != models.ConflictEmby {
		return nil, fmt.Errorf("%w: not a library conflict", shared.ErrInvalidInput)
	}

	w.libraryAction = a
	switch a {
	case models.LibraryForce, models.LibrarySkip:
		w.push(StepConfirm)
		return w.BeginSubmit()

	case models.LibraryChange:
		if c.SeriesInfo != nil {
			w.seriesID = c.SeriesInfo.ID
			w.seasons = c.SeriesInfo.Seasons
			w.push(StepPickSeason)
		} else {
			// Without attached series info the re-pick needs a manual
			// search first.
			w.push(StepSearch)
		}
		return nil, nil
	}

	return nil, fmt.Errorf("%w: library action %q", shared.ErrInvalidInput, a)
}

// BeginSubmit builds the single resolution request for this session. It is
// refused outside the confirm step, while a lookup is pending, and after a
// submission has already been sent.
func (w *Wizard) BeginSubmit() (*SubmitIntent, error) {
	if w.step == StepDisabled {
		return nil, shared.ErrUnknownConflict
	}
	if w.submitted {
		return nil, shared.ErrAlreadyResolved
	}
	if w.step != StepConfirm || w.fetching {
		return nil, fmt.Errorf("%w: nothing to submit yet", shared.ErrIncompleteChoice)
	}

	req := models.ResolutionRequest{
		RecordID: w.record.ID,
		SeriesID: w.seriesID,
		Season:   w.season,
		Episode:  w.episode,
	}
	if c := w.conflict(); c != nil {
		req.ConflictType = c.Type
	}
	req.FileAction = w.fileAction
	req.LibraryAction = w.libraryAction

	w.submitted = true
	return &SubmitIntent{Token: w.session, Request: req, Retry: w.retry}, nil
}

// CompleteSubmit applies the submission outcome. Success is reported exactly
// once per session; the caller refreshes its list and closes the dialog. On
// failure the selections stay intact so the user can retry.
func (w *Wizard) CompleteSubmit(token SessionToken, err error) (bool, error) {
	if token != w.session {
		return false, nil
	}
	if err != nil {
		w.submitted = false
		return false, err
	}

	w.step = StepDone
	return true, nil
}

func (w *Wizard) conflict() *models.ConflictData {
	if w.record == nil {
		return nil
	}
	return w.record.Conflict
}

// filterCandidates drops candidates whose content category is set and is not
// the tool's target category.
func filterCandidates(in []models.SeriesCandidate) []models.SeriesCandidate {
	out := make([]models.SeriesCandidate, 0, len(in))
	for _, c := range in {
		if c.MediaType != "" && c.MediaType != models.MediaTV {
			continue
		}
		out = append(out, c)
	}
	return out
}
