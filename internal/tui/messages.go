package tui

import (
	"github.com/johan-st/datadeck/internal/analyst"
	"github.com/johan-st/datadeck/internal/dataset"
	"github.com/johan-st/datadeck/internal/ingest"
	"github.com/johan-st/datadeck/internal/session"
)

// Messages passed through the bubbletea update loop.

// DatasetsLoadedMsg carries persisted datasets and discovered sources
// from the startup scan.
type DatasetsLoadedMsg struct {
	Datasets []*dataset.Dataset
	Sources  []ingest.Source
	Error    error
}

// DatasetOpenedMsg is sent when a source file has been ingested.
type DatasetOpenedMsg struct {
	Dataset *dataset.Dataset
	Error   error
}

// SessionCreatedMsg is sent when an analysis session has been opened for
// the newly activated dataset.
type SessionCreatedMsg struct {
	Session *session.Session
	Error   error
}

// AnalysisMsg carries the analyst's answer to a question.
type AnalysisMsg struct {
	Question string
	Analysis *analyst.Analysis
	Error    error
}

// SuggestionsMsg carries cleaning suggestions from the analyst.
type SuggestionsMsg struct {
	Suggestions []analyst.Suggestion
	Error       error
}

// CleanedMsg reports the outcome of a cleaning action.
type CleanedMsg struct {
	Action  dataset.CleanAction
	Column  string
	Changed int
	Error   error
}

// SavedMsg reports the outcome of persisting the active dataset.
type SavedMsg struct {
	Error error
}

// TilePinnedMsg is sent after a chart is pinned to the session board.
type TilePinnedMsg struct {
	Tile  session.Tile
	Error error
}

// ConfigReloadedMsg is sent when the config file changes on disk.
type ConfigReloadedMsg struct{}

// ErrorMsg wraps a generic error for the status line.
type ErrorMsg struct {
	Err error
}
