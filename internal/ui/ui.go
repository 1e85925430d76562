package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/nvale/scrapedeck/internal/models"
	"github.com/nvale/scrapedeck/internal/services"
	"github.com/nvale/scrapedeck/internal/shared"
	"github.com/nvale/scrapedeck/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	HistoryView ViewState = iota
	ConfirmClearView
	WizardView
)

// statusFilters is the cycle order for the history status filter key.
var statusFilters = []models.Status{
	"",
	models.StatusPendingAction,
	models.StatusFailed,
	models.StatusSuccess,
	models.StatusRunning,
}

// Model represents the TUI application state. The history page is owned by
// the synchronizer and the resolution dialog by the wizard; the model routes
// key events to them and runs their fetch intents as commands.
type Model struct {
	ctx    context.Context
	logger *log.Logger

	sync     *tasks.Synchronizer
	wizard   *tasks.Wizard
	history  services.HistoryAPI
	metadata services.MetadataAPI
	push     *services.PushClient

	pushCh      chan models.PushEvent
	unsubscribe func()

	view    ViewState
	width   int
	height  int
	loading bool
	notice  string

	filterIndex int

	recordList  list.Model
	wizardList  list.Model
	searchInput textinput.Model
	spin        spinner.Model
	help        help.Model
	keys        keyMap
}

// NewModel creates a new TUI model with the provided dependencies. push may
// be nil, in which case the page only refreshes on explicit reloads.
func NewModel(ctx context.Context, history services.HistoryAPI, metadata services.MetadataAPI, push *services.PushClient, query models.HistoryQuery, logger *log.Logger) *Model {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	recordList := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	recordList.Title = "History"
	recordList.SetShowHelp(false)

	wizardList := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	wizardList.SetShowHelp(false)

	input := textinput.New()
	input.Placeholder = "series name"
	input.CharLimit = 120

	m := &Model{
		ctx:         ctx,
		logger:      logger,
		sync:        tasks.NewSynchronizer(history, logger, query),
		wizard:      tasks.NewWizard(),
		history:     history,
		metadata:    metadata,
		push:        push,
		view:        HistoryView,
		recordList:  recordList,
		wizardList:  wizardList,
		searchInput: input,
		spin:        spinner.New(spinner.WithSpinner(spinner.Dot)),
		help:        help.New(),
		keys:        newKeyMap(),
	}

	for i, status := range statusFilters {
		if status == query.Status {
			m.filterIndex = i
		}
	}

	return m
}

// Init subscribes to the push channel and starts the first page load.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.loadPage(), m.spin.Tick}

	if m.push != nil {
		m.pushCh = make(chan models.PushEvent, 64)
		ch := m.pushCh
		m.unsubscribe = m.push.Subscribe(func(ev models.PushEvent) {
			select {
			case ch <- ev:
			default:
				// Backpressure: the UI is far behind; the next explicit
				// reload resnapshots the page anyway.
			}
		})
		cmds = append(cmds, m.waitForPush())
	}

	return tea.Batch(cmds...)
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.recordList.SetSize(msg.Width-4, msg.Height-8)
		m.wizardList.SetSize(msg.Width-4, msg.Height-10)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case HistoryView:
			return m.handleHistoryKeys(msg)
		case ConfirmClearView:
			return m.handleConfirmClearKeys(msg)
		case WizardView:
			return m.handleWizardKeys(msg)
		}

	case spinner.TickMsg:
		if !m.loading && !m.wizard.Fetching() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case pageLoadedMsg:
		m.loading = false
		if err := m.sync.CompleteLoad(msg.token, msg.page, msg.err); err != nil {
			m.notice = err.Error()
			return m, nil
		}
		m.refreshRecords()
		return m, nil

	case pushMsg:
		result := m.sync.ApplyPush(models.PushEvent(msg))
		cmds := []tea.Cmd{m.waitForPush()}
		if result.NeedsReload {
			m.loading = true
			cmds = append(cmds, m.loadPage(), m.spin.Tick)
		} else if result.Changed {
			m.refreshRecords()
		}
		return m, tea.Batch(cmds...)

	case pushClosedMsg:
		return m, nil

	case actionDoneMsg:
		if msg.err != nil {
			m.notice = msg.err.Error()
			return m, nil
		}
		m.loading = true
		return m, tea.Batch(m.loadPage(), m.spin.Tick)

	case searchDoneMsg:
		if err := m.wizard.CompleteSearch(msg.token, msg.resp, msg.err); err != nil {
			m.notice = err.Error()
			return m, nil
		}
		m.syncWizardList()
		return m, nil

	case detailDoneMsg:
		if err := m.wizard.CompleteDetail(msg.token, msg.series, msg.err); err != nil {
			m.notice = err.Error()
			return m, nil
		}
		m.syncWizardList()
		return m, nil

	case submitDoneMsg:
		done, err := m.wizard.CompleteSubmit(msg.token, msg.err)
		if err != nil {
			m.notice = err.Error()
			return m, nil
		}
		if done {
			m.wizard.Close()
			m.view = HistoryView
			m.notice = styles.ok.Render("resolution accepted")
			m.loading = true
			return m, tea.Batch(m.loadPage(), m.spin.Tick)
		}
		return m, nil
	}

	return m.updateLists(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case HistoryView:
		return m.renderHistory()
	case ConfirmClearView:
		return m.renderConfirmClear()
	case WizardView:
		return m.renderWizard()
	default:
		return ""
	}
}

func (m *Model) handleHistoryKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.recordList.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.recordList, cmd = m.recordList.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		m.teardown()
		return m, tea.Quit

	case key.Matches(msg, m.keys.enter):
		return m.openWizard()

	case key.Matches(msg, m.keys.delete):
		if it, ok := m.recordList.SelectedItem().(recordItem); ok {
			m.notice = ""
			return m, m.deleteRecord(it.record.ID)
		}
		return m, nil

	case key.Matches(msg, m.keys.clear):
		m.view = ConfirmClearView
		return m, nil

	case key.Matches(msg, m.keys.reload):
		m.notice = ""
		m.loading = true
		return m, tea.Batch(m.loadPage(), m.spin.Tick)

	case key.Matches(msg, m.keys.filter):
		m.filterIndex = (m.filterIndex + 1) % len(statusFilters)
		query := m.sync.Query()
		query.Status = statusFilters[m.filterIndex]
		query.Page = 1
		m.sync.SetQuery(query)
		m.loading = true
		return m, tea.Batch(m.loadPage(), m.spin.Tick)

	case key.Matches(msg, m.keys.next):
		query := m.sync.Query()
		if query.Page*query.PageSize < m.sync.Total() {
			query.Page++
			m.sync.SetQuery(query)
			m.loading = true
			return m, tea.Batch(m.loadPage(), m.spin.Tick)
		}
		return m, nil

	case key.Matches(msg, m.keys.prev):
		query := m.sync.Query()
		if query.Page > 1 {
			query.Page--
			m.sync.SetQuery(query)
			m.loading = true
			return m, tea.Batch(m.loadPage(), m.spin.Tick)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.recordList, cmd = m.recordList.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmClearKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.yes):
		m.view = HistoryView
		m.notice = ""
		return m, m.clearAll()
	case key.Matches(msg, m.keys.no), key.Matches(msg, m.keys.back), key.Matches(msg, m.keys.quit):
		m.view = HistoryView
		return m, nil
	}
	return m, nil
}

func (m *Model) handleWizardKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.teardown()
		return m, tea.Quit
	}

	if key.Matches(msg, m.keys.back) {
		m.notice = ""
		if !m.wizard.Back() {
			m.wizard.Close()
			m.view = HistoryView
			return m, nil
		}
		m.syncWizardList()
		return m, nil
	}

	switch m.wizard.Step() {
	case tasks.StepDisabled, tasks.StepDone:
		// Any remaining key closes the dialog.
		m.wizard.Close()
		m.view = HistoryView
		return m, nil

	case tasks.StepSearch:
		if msg.Type == tea.KeyEnter {
			intent, err := m.wizard.BeginSearch(strings.TrimSpace(m.searchInput.Value()))
			if err != nil {
				m.notice = err.Error()
				return m, nil
			}
			m.notice = ""
			return m, tea.Batch(m.runSearch(intent), m.spin.Tick)
		}
		var cmd tea.Cmd
		m.searchInput, cmd = m.searchInput.Update(msg)
		return m, cmd

	case tasks.StepPickCandidate:
		if msg.Type == tea.KeyEnter {
			if it, ok := m.wizardList.SelectedItem().(candidateItem); ok {
				fetch, err := m.wizard.SelectCandidate(it.candidate.ID)
				if err != nil {
					m.notice = err.Error()
					return m, nil
				}
				m.notice = ""
				m.syncWizardList()
				if fetch != nil {
					return m, tea.Batch(m.runDetail(fetch), m.spin.Tick)
				}
			}
			return m, nil
		}

	case tasks.StepPickSeason:
		if msg.Type == tea.KeyEnter {
			if it, ok := m.wizardList.SelectedItem().(seasonItem); ok {
				if err := m.wizard.SelectSeason(it.season.SeasonNumber); err != nil {
					m.notice = err.Error()
					return m, nil
				}
				m.notice = ""
				m.syncWizardList()
			}
			return m, nil
		}

	case tasks.StepPickEpisode:
		if msg.Type == tea.KeyEnter {
			if it, ok := m.wizardList.SelectedItem().(episodeItem); ok {
				intent, err := m.wizard.SelectEpisode(it.episode.EpisodeNumber)
				if err != nil {
					m.notice = err.Error()
					return m, nil
				}
				m.notice = ""
				m.syncWizardList()
				if intent != nil {
					return m, m.runSubmit(intent)
				}
			}
			return m, nil
		}

	case tasks.StepChooseAction:
		if msg.Type == tea.KeyEnter {
			if it, ok := m.wizardList.SelectedItem().(actionItem); ok {
				return m.chooseAction(it.value)
			}
			return m, nil
		}

	case tasks.StepConfirm:
		if key.Matches(msg, m.keys.yes) || msg.Type == tea.KeyEnter {
			intent, err := m.wizard.BeginSubmit()
			if err != nil {
				m.notice = err.Error()
				return m, nil
			}
			m.notice = ""
			return m, m.runSubmit(intent)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.wizardList, cmd = m.wizardList.Update(msg)
	return m, cmd
}

// openWizard starts a resolution session for the selected record. Records in
// pending_action resolve their conflict; failed and timed-out records walk
// the retry variant. Anything else is not actionable.
func (m *Model) openWizard() (tea.Model, tea.Cmd) {
	it, ok := m.recordList.SelectedItem().(recordItem)
	if !ok {
		return m, nil
	}

	record := it.record
	var fetch *tasks.DetailFetch
	switch record.Status {
	case models.StatusPendingAction:
		fetch = m.wizard.Open(&record, false)
	case models.StatusFailed, models.StatusTimeout:
		m.wizard.Open(&record, true)
	default:
		return m, nil
	}

	m.view = WizardView
	m.notice = ""
	m.searchInput.SetValue("")
	m.searchInput.Focus()
	m.syncWizardList()

	if fetch != nil {
		return m, tea.Batch(m.runDetail(fetch), m.spin.Tick)
	}
	return m, nil
}

func (m *Model) chooseAction(value string) (tea.Model, tea.Cmd) {
	record := m.wizard.Record()
	if record == nil || record.Conflict == nil {
		return m, nil
	}

	if record.Conflict.Type == models.ConflictFile {
		if err := m.wizard.ChooseFileAction(models.FileAction(value)); err != nil {
			m.notice = err.Error()
			return m, nil
		}
		m.notice = ""
		m.syncWizardList()
		return m, nil
	}

	intent, err := m.wizard.ChooseLibraryAction(models.LibraryAction(value))
	if err != nil {
		m.notice = err.Error()
		return m, nil
	}
	m.notice = ""
	m.syncWizardList()
	if intent != nil {
		return m, m.runSubmit(intent)
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case HistoryView:
		m.recordList, cmd = m.recordList.Update(msg)
	case WizardView:
		m.wizardList, cmd = m.wizardList.Update(msg)
	}
	return m, cmd
}

// refreshRecords rebuilds the record list from the synchronizer's page.
func (m *Model) refreshRecords() {
	records := m.sync.Records()
	items := make([]list.Item, len(records))
	for i, rec := range records {
		items[i] = recordItem{record: rec}
	}
	m.recordList.SetItems(items)

	query := m.sync.Query()
	title := fmt.Sprintf("History (page %d, %d records)", query.Page, m.sync.Total())
	if query.Status != "" {
		title = fmt.Sprintf("%s [%s]", title, query.Status)
	}
	m.recordList.Title = title
}

// syncWizardList rebuilds the wizard list for the current step.
func (m *Model) syncWizardList() {
	var items []list.Item
	title := ""

	switch m.wizard.Step() {
	case tasks.StepPickCandidate:
		for _, c := range m.wizard.Candidates() {
			items = append(items, candidateItem{candidate: c})
		}
		title = "Pick the matching series"

	case tasks.StepPickSeason:
		for _, s := range m.wizard.Seasons() {
			items = append(items, seasonItem{season: s})
		}
		title = "Pick a season"

	case tasks.StepPickEpisode:
		for _, e := range m.wizard.EpisodesForSeason() {
			items = append(items, episodeItem{episode: e})
		}
		title = "Pick an episode"

	case tasks.StepChooseAction:
		items = m.actionItems()
		title = "Choose an action"
	}

	m.wizardList.SetItems(items)
	m.wizardList.Title = title
	m.wizardList.ResetSelected()
}

func (m *Model) actionItems() []list.Item {
	record := m.wizard.Record()
	if record == nil || record.Conflict == nil {
		return nil
	}

	if record.Conflict.Type == models.ConflictFile {
		return []list.Item{
			actionItem{value: string(models.FileOverwrite), label: "Overwrite", desc: "replace the existing file"},
			actionItem{value: string(models.FileSkip), label: "Skip", desc: "keep the existing file"},
			actionItem{value: string(models.FileRename), label: "Rename", desc: "keep both, rename the new file"},
		}
	}
	return []list.Item{
		actionItem{value: string(models.LibraryForce), label: "Force", desc: "add to the library anyway"},
		actionItem{value: string(models.LibrarySkip), label: "Skip", desc: "leave the library untouched"},
		actionItem{value: string(models.LibraryChange), label: "Change", desc: "pick a different episode"},
	}
}

func (m *Model) teardown() {
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
}

func (m *Model) loadPage() tea.Cmd {
	m.loading = true
	token, query := m.sync.BeginLoad()
	return func() tea.Msg {
		page, err := m.history.List(m.ctx, query)
		return pageLoadedMsg{token: token, page: page, err: err}
	}
}

func (m *Model) waitForPush() tea.Cmd {
	ch := m.pushCh
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return pushClosedMsg{}
		}
		return pushMsg(ev)
	}
}

func (m *Model) deleteRecord(id string) tea.Cmd {
	return func() tea.Msg {
		return actionDoneMsg{err: m.history.Delete(m.ctx, id)}
	}
}

func (m *Model) clearAll() tea.Cmd {
	return func() tea.Msg {
		return actionDoneMsg{err: m.history.Clear(m.ctx)}
	}
}

func (m *Model) runSearch(intent *tasks.SearchIntent) tea.Cmd {
	return func() tea.Msg {
		resp, err := m.metadata.Search(m.ctx, intent.Query, intent.Fuzzy)
		return searchDoneMsg{token: intent.Token, resp: resp, err: err}
	}
}

func (m *Model) runDetail(fetch *tasks.DetailFetch) tea.Cmd {
	return func() tea.Msg {
		series, err := m.metadata.SeriesDetail(m.ctx, fetch.SeriesID)
		return detailDoneMsg{token: fetch.Token, series: series, err: err}
	}
}

func (m *Model) runSubmit(intent *tasks.SubmitIntent) tea.Cmd {
	return func() tea.Msg {
		var err error
		if intent.Retry {
			err = m.history.Retry(m.ctx, intent.Request)
		} else {
			err = m.history.Resolve(m.ctx, intent.Request)
		}
		return submitDoneMsg{token: intent.Token, err: err}
	}
}

func (m *Model) renderHistory() string {
	var status string
	if m.loading {
		status = fmt.Sprintf("%s loading", m.spin.View())
	}

	helpKeys := []key.Binding{m.keys.enter, m.keys.delete, m.keys.clear, m.keys.filter, m.keys.next, m.keys.prev, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n%s\n%s", m.recordList.View(), status, m.renderNotice(), helpView)
}

func (m *Model) renderConfirmClear() string {
	title := styles.title.Render(fmt.Sprintf("Clear all %d history records?", m.sync.Total()))
	warn := styles.warn.Render("This cannot be undone.")

	helpKeys := []key.Binding{m.keys.yes, m.keys.no}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n\n%s", title, warn, helpView)
}

func (m *Model) renderWizard() string {
	record := m.wizard.Record()
	if record == nil {
		return ""
	}

	header := styles.title.Render(fmt.Sprintf("Resolve: %s", record.Title))
	body := m.renderWizardStep()

	helpKeys := []key.Binding{m.keys.enter, m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n%s\n%s", header, body, m.renderNotice(), helpView)
}

func (m *Model) renderWizardStep() string {
	if m.wizard.Fetching() {
		return fmt.Sprintf("%s fetching", m.spin.View())
	}

	switch m.wizard.Step() {
	case tasks.StepDisabled:
		return styles.err.Render("This conflict type is not recognized; it cannot be resolved here.\nDelete the record or handle it on the server.")

	case tasks.StepSearch:
		view := fmt.Sprintf("Search for the correct series:\n\n%s", m.searchInput.View())
		if eq := m.wizard.EffectiveQuery(); eq != "" {
			view = fmt.Sprintf("%s\n\n%s", view, styles.warn.Render(fmt.Sprintf("server searched for %q instead", eq)))
		}
		return view

	case tasks.StepPickCandidate, tasks.StepPickSeason, tasks.StepPickEpisode, tasks.StepChooseAction:
		view := m.wizardList.View()
		if eq := m.wizard.EffectiveQuery(); eq != "" && m.wizard.Step() == tasks.StepPickCandidate {
			view = fmt.Sprintf("%s\n%s", styles.warn.Render(fmt.Sprintf("results for %q (fuzzy fallback)", eq)), view)
		}
		return view

	case tasks.StepConfirm:
		return fmt.Sprintf("%s\n\npress y or enter to submit", m.renderChoices())

	case tasks.StepDone:
		return styles.ok.Render("Resolved.")
	}

	return ""
}

// renderChoices summarizes the gathered inputs on the confirm step.
func (m *Model) renderChoices() string {
	var parts []string

	if s, e := m.wizard.Season(), m.wizard.EpisodeNumber(); s != nil && e != nil {
		parts = append(parts, fmt.Sprintf("Episode: S%02dE%02d", *s, *e))
	}
	if a := m.wizard.FileAction(); a != "" {
		parts = append(parts, fmt.Sprintf("File action: %s", a))
	}
	if a := m.wizard.LibraryAction(); a != "" {
		parts = append(parts, fmt.Sprintf("Library action: %s", a))
	}

	if len(parts) == 0 {
		return "Submit this resolution?"
	}
	return strings.Join(parts, "\n")
}

func (m *Model) renderNotice() string {
	if m.notice == "" {
		return ""
	}
	return m.notice
}
