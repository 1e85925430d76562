package ui

import (
	"github.com/nvale/scrapedeck/internal/models"
	"github.com/nvale/scrapedeck/internal/tasks"
)

// pageLoadedMsg delivers a finished page fetch with the load token that
// started it. The synchronizer decides whether the response is still current.
type pageLoadedMsg struct {
	token tasks.LoadToken
	page  *models.HistoryPage
	err   error
}

// pushMsg delivers one push event bridged from the subscriber channel.
type pushMsg models.PushEvent

// pushClosedMsg signals that the push channel subscriber was torn down.
type pushClosedMsg struct{}

// actionDoneMsg delivers the outcome of a server-side delete or clear.
type actionDoneMsg struct {
	err error
}

// searchDoneMsg delivers a finished candidate search for the wizard.
type searchDoneMsg struct {
	token tasks.SessionToken
	resp  *models.SearchResponse
	err   error
}

// detailDoneMsg delivers a finished series-detail fetch for the wizard.
type detailDoneMsg struct {
	token  tasks.SessionToken
	series *models.Series
	err    error
}

// submitDoneMsg delivers the outcome of a resolution submission.
type submitDoneMsg struct {
	token tasks.SessionToken
	err   error
}
