// Package tui is the terminal workspace: a dataset browser, a column
// layout pane and the data grid, plus the chart view, cleaning menu and
// the ask-the-analyst flow.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"

	"github.com/johan-st/datadeck/internal/analyst"
	"github.com/johan-st/datadeck/internal/config"
	"github.com/johan-st/datadeck/internal/dataset"
	"github.com/johan-st/datadeck/internal/grid"
	"github.com/johan-st/datadeck/internal/ingest"
	"github.com/johan-st/datadeck/internal/session"
)

// Focus represents which pane is focused.
type Focus int

const (
	FocusDatasets Focus = iota
	FocusColumns
	FocusData
)

// inputMode is the active text input, if any.
type inputMode int

const (
	inputNone inputMode = iota
	inputSearch
	inputFilter
	inputAsk
	inputEdit
)

const answerMaxLines = 6

// deckEntry is one row of the datasets pane: a loaded dataset or a
// discovered source file not yet imported.
type deckEntry struct {
	title  string
	desc   string
	loaded bool
	dsIdx  int
	srcIdx int
}

// App is the main TUI application model.
type App struct {
	// Dependencies
	cfg       *config.Config
	workspace *session.Store
	analyst   *analyst.Client
	logger    *log.Logger

	// Window size
	width, height int

	// Workspace state
	focus     Focus
	sources   []ingest.Source
	datasets  []*dataset.Dataset
	selected  int // index into entries()
	active    *dataset.Dataset
	sess      *session.Session

	// Grid engine
	pipeline *grid.Pipeline
	filters  *grid.FilterSet
	sortCfg  grid.SortConfig
	search   string
	layout   *grid.Layout
	editor   *dataset.Editor

	// Grid cursor
	selectedRow  int // index into the pipeline view
	selectedCol  int // index into the layout order
	scrollOffset int // first visible view row

	// Text input
	mode         inputMode
	inputBuf     string
	filterColumn string

	// Analyst
	busy        bool
	answer      []string
	suggestions []analyst.Suggestion

	// Chart view
	chart *chartModel

	// Cleaning menu
	cleanOpen   bool
	cleanCursor int

	// Mouse geometry, captured during render for drag-resize hit testing
	gridOriginX int
	headerRowY  int

	// UI state
	showHelp bool
	status   string
	err      error

	// Key bindings
	keys KeyMap
}

// NewApp creates the application model. client may be nil when no analyst
// endpoint is configured.
func NewApp(cfg *config.Config, workspace *session.Store, client *analyst.Client, logger *log.Logger, width, height int) *App {
	return &App{
		cfg:       cfg,
		workspace: workspace,
		analyst:   client,
		logger:    logger,
		width:     width,
		height:    height,
		focus:     FocusDatasets,
		pipeline:  grid.NewPipeline(),
		filters:   grid.NewFilterSet(),
		keys:      DefaultKeyMap(),
	}
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return a.loadWorkspace
}

// loadWorkspace loads persisted datasets and discovers configured sources.
func (a *App) loadWorkspace() tea.Msg {
	datasets, err := a.workspace.LoadDatasets()
	if err != nil {
		return DatasetsLoadedMsg{Error: err}
	}

	var sources []ingest.Source
	for _, src := range a.cfg.Sources {
		found, err := ingest.Discover(src.Path)
		if err != nil {
			a.logger.Warn("source discovery failed", "path", src.Path, "err", err)
			continue
		}
		if src.Alias != "" && len(found) == 1 {
			found[0].Alias = src.Alias
		}
		sources = append(sources, found...)
	}

	return DatasetsLoadedMsg{Datasets: datasets, Sources: sources}
}

// openSource imports a source file and persists the resulting dataset.
func (a *App) openSource(src ingest.Source) tea.Cmd {
	return func() tea.Msg {
		d, err := ingest.DecodeFile(src.Path)
		if err != nil {
			return DatasetOpenedMsg{Error: err}
		}
		d.Name = src.Alias
		if err := a.workspace.SaveDataset(d); err != nil {
			return DatasetOpenedMsg{Error: err}
		}
		a.logger.Info("dataset imported", "name", d.Name, "rows", d.Store.Len())
		return DatasetOpenedMsg{Dataset: d}
	}
}

// askAnalyst sends a question about the active dataset. The user message
// is recorded before the call, the answer after.
func (a *App) askAnalyst(question string) tea.Cmd {
	d := a.active
	sess := a.sess
	sample := sampleRows(a.currentView(), a.cfg.Analyst.SampleRows)
	return func() tea.Msg {
		if sess != nil {
			if err := a.workspace.RecordMessage(sess.ID, session.RoleUser, question); err != nil {
				a.logger.Warn("failed to record message", "err", err)
			}
		}

		ctx, cancel := context.WithTimeout(context.Background(), a.cfg.GetAnalystTimeout())
		defer cancel()

		analysis, err := a.analyst.Analyze(ctx, analyst.AnalyzeRequest{
			Summary:    d.Summary,
			Question:   question,
			SampleRows: sample,
		})
		if err != nil {
			return AnalysisMsg{Question: question, Error: err}
		}

		if sess != nil {
			if err := a.workspace.RecordMessage(sess.ID, session.RoleAnalyst, analysis.Text); err != nil {
				a.logger.Warn("failed to record message", "err", err)
			}
		}
		return AnalysisMsg{Question: question, Analysis: analysis}
	}
}

// fetchSuggestions asks the analyst which cleaning actions it would apply.
func (a *App) fetchSuggestions() tea.Cmd {
	d := a.active
	sample := sampleRows(a.currentView(), a.cfg.Analyst.SampleRows)
	anyRows := make([]any, len(sample))
	for i, r := range sample {
		anyRows[i] = r
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), a.cfg.GetAnalystTimeout())
		defer cancel()

		suggestions, err := a.analyst.CleaningSuggestions(ctx, d.Summary, anyRows)
		return SuggestionsMsg{Suggestions: suggestions, Error: err}
	}
}

// runClean applies a cleaning action to the row store. The summary refresh
// and the save happen back on the update loop when CleanedMsg arrives.
func (a *App) runClean(action dataset.CleanAction, column string) tea.Cmd {
	d := a.active
	return func() tea.Msg {
		changed, err := d.CleanStore(action, column)
		return CleanedMsg{Action: action, Column: column, Changed: changed, Error: err}
	}
}

// saveActive persists the active dataset after a cell edit.
func (a *App) saveActive() tea.Cmd {
	d := a.active
	return func() tea.Msg {
		return SavedMsg{Error: a.workspace.SaveDataset(d)}
	}
}

// pinChart saves the current chart as a dashboard tile.
func (a *App) pinChart() tea.Cmd {
	if a.chart == nil || a.sess == nil {
		return nil
	}
	tile := session.Tile{
		SessionID: a.sess.ID,
		Title:     a.chart.title(),
		ChartKind: "bar",
		Column:    a.chart.column,
	}
	return func() tea.Msg {
		err := a.workspace.SaveTile(&tile)
		return TilePinnedMsg{Tile: tile, Error: err}
	}
}

// sampleRows caps the analyst context at the first n rows of the current
// view, so the service sees the data the way the user has narrowed it.
func sampleRows(view []grid.ViewRow, n int) []dataset.Row {
	if n <= 0 || n > len(view) {
		n = len(view)
	}
	out := make([]dataset.Row, n)
	for i := 0; i < n; i++ {
		out[i] = view[i].Row
	}
	return out
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKey(msg)

	case tea.MouseMsg:
		return a.handleMouse(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ensureVisible()
		return a, nil

	case DatasetsLoadedMsg:
		if msg.Error != nil {
			a.err = msg.Error
			return a, nil
		}
		a.datasets = msg.Datasets
		a.sources = msg.Sources
		if a.selected >= len(a.entries()) {
			a.selected = 0
		}
		return a, nil

	case DatasetOpenedMsg:
		if msg.Error != nil {
			a.err = msg.Error
			return a, nil
		}
		a.datasets = append([]*dataset.Dataset{msg.Dataset}, a.datasets...)
		a.selected = 0
		return a, a.activateDataset(msg.Dataset)

	case SessionCreatedMsg:
		if msg.Error != nil {
			a.err = msg.Error
			return a, nil
		}
		a.sess = msg.Session
		return a, nil

	case AnalysisMsg:
		a.busy = false
		if msg.Error != nil {
			a.err = msg.Error
			return a, nil
		}
		a.answer = formatAnalysis(msg.Analysis)
		a.status = "analyst answered"
		if msg.Analysis.Chart != nil && a.active != nil {
			a.chart = buildChart(msg.Analysis.Chart.Column, a.currentView())
		}
		return a, nil

	case SuggestionsMsg:
		a.busy = false
		if msg.Error != nil {
			a.err = msg.Error
			return a, nil
		}
		a.suggestions = msg.Suggestions
		return a, nil

	case CleanedMsg:
		if msg.Error != nil {
			a.err = msg.Error
			return a, nil
		}
		a.status = fmt.Sprintf("%s: %s rows affected", msg.Action, humanize.Comma(int64(msg.Changed)))
		a.clampCursor()
		if msg.Changed > 0 && a.active != nil {
			a.active.Summary = a.active.Summarize()
			return a, a.saveActive()
		}
		return a, nil

	case SavedMsg:
		if msg.Error != nil {
			a.err = msg.Error
		}
		return a, nil

	case TilePinnedMsg:
		if msg.Error != nil {
			a.err = msg.Error
		} else {
			a.status = fmt.Sprintf("pinned %q", msg.Tile.Title)
		}
		return a, nil

	case ConfigReloadedMsg:
		if a.layout != nil {
			a.layout.SetDefaults(a.cfg.Grid.DefaultColumnWidth, a.cfg.Grid.MinColumnWidth)
		}
		a.status = "config reloaded"
		return a, nil

	case ErrorMsg:
		a.err = msg.Err
		return a, nil
	}

	return a, nil
}

// entries builds the datasets pane rows: loaded datasets first, then
// sources whose alias does not collide with a loaded dataset.
func (a *App) entries() []deckEntry {
	loaded := make(map[string]bool, len(a.datasets))
	out := make([]deckEntry, 0, len(a.datasets)+len(a.sources))
	for i, d := range a.datasets {
		loaded[d.Name] = true
		out = append(out, deckEntry{
			title:  d.Name,
			desc:   fmt.Sprintf("%s rows", humanize.Comma(int64(d.Store.Len()))),
			loaded: true,
			dsIdx:  i,
		})
	}
	for i, src := range a.sources {
		if loaded[src.Alias] {
			continue
		}
		out = append(out, deckEntry{
			title:  src.Alias,
			desc:   humanize.Bytes(uint64(src.Size)),
			srcIdx: i,
		})
	}
	return out
}

// activateDataset makes a dataset current. The column layout resets to
// canonical order; filters, search and sort carry over so a comparison
// across datasets keeps its constraints.
func (a *App) activateDataset(d *dataset.Dataset) tea.Cmd {
	a.active = d
	a.editor = dataset.NewEditor(d.Store)
	a.layout = grid.NewLayout(d.Columns)
	a.layout.SetDefaults(a.cfg.Grid.DefaultColumnWidth, a.cfg.Grid.MinColumnWidth)
	a.pipeline.Invalidate()
	a.selectedRow = 0
	a.selectedCol = 0
	a.scrollOffset = 0
	a.answer = nil
	a.chart = nil
	a.suggestions = nil

	return func() tea.Msg {
		sess, err := a.workspace.CreateSession(d.ID, "")
		return SessionCreatedMsg{Session: sess, Error: err}
	}
}

// currentView runs the query pipeline for the active dataset.
func (a *App) currentView() []grid.ViewRow {
	if a.active == nil {
		return nil
	}
	return a.pipeline.View(a.active.Store, a.filters, a.search, a.sortCfg)
}

// currentColumn is the column under the cursor in display order.
func (a *App) currentColumn() string {
	if a.layout == nil {
		return ""
	}
	order := a.layout.Order()
	if len(order) == 0 {
		return ""
	}
	if a.selectedCol >= len(order) {
		a.selectedCol = len(order) - 1
	}
	return order[a.selectedCol]
}

// gridRows is how many data rows fit in the grid viewport.
func (a *App) gridRows() int {
	// borders (2) + input bar + status bar + header + position line
	rows := a.height - 6 - len(a.notices()) - a.answerHeight()
	if rows < 1 {
		rows = 1
	}
	return rows
}

// ensureVisible keeps the selected row inside the viewport.
func (a *App) ensureVisible() {
	rows := a.gridRows()
	if a.selectedRow < a.scrollOffset {
		a.scrollOffset = a.selectedRow
	}
	if a.selectedRow >= a.scrollOffset+rows {
		a.scrollOffset = a.selectedRow - rows + 1
	}
	if a.scrollOffset < 0 {
		a.scrollOffset = 0
	}
}

// clampCursor pulls the cursor back in range after the view shrank.
func (a *App) clampCursor() {
	n := len(a.currentView())
	if a.selectedRow >= n {
		a.selectedRow = n - 1
	}
	if a.selectedRow < 0 {
		a.selectedRow = 0
	}
	a.ensureVisible()
}

func (a *App) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if a.layout == nil {
		return a, nil
	}

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft || msg.Y != a.headerRowY {
			return a, nil
		}
		if col, ok := a.columnEdgeAt(msg.X); ok {
			a.layout.BeginResize(col, msg.X)
		}

	case tea.MouseActionMotion:
		if s := a.layout.ActiveResize(); s != nil {
			s.Update(msg.X)
		}

	case tea.MouseActionRelease:
		if s := a.layout.ActiveResize(); s != nil {
			s.End()
		}
	}

	return a, nil
}

// columnEdgeAt reports which column's right edge sits at pointer x, with
// one cell of slop either side.
func (a *App) columnEdgeAt(x int) (string, bool) {
	edge := a.gridOriginX
	for _, col := range a.layout.Order() {
		edge += a.layout.Width(col) + 1
		if x >= edge-1 && x <= edge+1 {
			return col, true
		}
	}
	return "", false
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.mode == inputEdit {
		return a.handleEditKey(msg)
	}
	if a.mode != inputNone {
		return a.handleInputKey(msg)
	}

	if a.showHelp {
		if key.Matches(msg, a.keys.Back) || key.Matches(msg, a.keys.Help) {
			a.showHelp = false
		}
		return a, nil
	}

	if a.cleanOpen {
		return a.handleCleanKey(msg)
	}

	if a.chart != nil {
		return a.handleChartKey(msg)
	}

	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit

	case key.Matches(msg, a.keys.Help):
		a.showHelp = true
		return a, nil

	case key.Matches(msg, a.keys.Refresh):
		return a, a.loadWorkspace

	case key.Matches(msg, a.keys.NextPane):
		a.focus = (a.focus + 1) % 3
		return a, nil

	case key.Matches(msg, a.keys.PrevPane):
		a.focus = (a.focus + 2) % 3
		return a, nil

	case key.Matches(msg, a.keys.Back):
		a.answer = nil
		a.err = nil
		a.status = ""
		return a, nil

	case key.Matches(msg, a.keys.Up):
		return a.handleUp()

	case key.Matches(msg, a.keys.Down):
		return a.handleDown()

	case key.Matches(msg, a.keys.Left):
		return a.handleLeft()

	case key.Matches(msg, a.keys.Right):
		return a.handleRight()

	case key.Matches(msg, a.keys.PageUp):
		return a.moveRow(-a.gridRows())

	case key.Matches(msg, a.keys.PageDown):
		return a.moveRow(a.gridRows())

	case key.Matches(msg, a.keys.Home):
		return a.handleHome()

	case key.Matches(msg, a.keys.End):
		return a.handleEnd()

	case key.Matches(msg, a.keys.Select):
		return a.handleSelect()

	case key.Matches(msg, a.keys.Sort):
		if col := a.currentColumn(); col != "" {
			a.sortCfg = a.sortCfg.Toggle(col)
			a.clampCursor()
		}
		return a, nil

	case key.Matches(msg, a.keys.Search):
		a.mode = inputSearch
		a.inputBuf = a.search
		return a, nil

	case key.Matches(msg, a.keys.Filter):
		if col := a.currentColumn(); col != "" {
			a.mode = inputFilter
			a.filterColumn = col
			a.inputBuf = ""
		}
		return a, nil

	case key.Matches(msg, a.keys.ClearFilter):
		a.filters.Clear()
		a.search = ""
		a.clampCursor()
		return a, nil

	case key.Matches(msg, a.keys.Edit):
		return a.beginEdit()

	case key.Matches(msg, a.keys.MoveColL):
		return a.moveColumn(-1)

	case key.Matches(msg, a.keys.MoveColR):
		return a.moveColumn(1)

	case key.Matches(msg, a.keys.Narrow):
		if col := a.currentColumn(); col != "" {
			a.layout.SetWidth(col, a.layout.Width(col)-2)
		}
		return a, nil

	case key.Matches(msg, a.keys.Widen):
		if col := a.currentColumn(); col != "" {
			a.layout.SetWidth(col, a.layout.Width(col)+2)
		}
		return a, nil

	case key.Matches(msg, a.keys.Ask):
		if a.active == nil {
			return a, nil
		}
		if a.analyst == nil {
			a.err = fmt.Errorf("no analyst endpoint configured")
			return a, nil
		}
		if a.busy {
			return a, nil
		}
		a.mode = inputAsk
		a.inputBuf = ""
		return a, nil

	case key.Matches(msg, a.keys.Chart):
		if col := a.currentColumn(); col != "" {
			a.chart = buildChart(col, a.currentView())
		}
		return a, nil

	case key.Matches(msg, a.keys.Clean):
		if a.active == nil {
			return a, nil
		}
		a.cleanOpen = true
		a.cleanCursor = 0
		if a.analyst != nil && !a.busy {
			a.busy = true
			return a, a.fetchSuggestions()
		}
		return a, nil
	}

	return a, nil
}

func (a *App) handleUp() (tea.Model, tea.Cmd) {
	switch a.focus {
	case FocusDatasets:
		if a.selected > 0 {
			a.selected--
		}
	case FocusColumns:
		if a.selectedCol > 0 {
			a.selectedCol--
		}
	case FocusData:
		return a.moveRow(-1)
	}
	return a, nil
}

func (a *App) handleDown() (tea.Model, tea.Cmd) {
	switch a.focus {
	case FocusDatasets:
		if a.selected < len(a.entries())-1 {
			a.selected++
		}
	case FocusColumns:
		if a.layout != nil && a.selectedCol < len(a.layout.Order())-1 {
			a.selectedCol++
		}
	case FocusData:
		return a.moveRow(1)
	}
	return a, nil
}

func (a *App) handleLeft() (tea.Model, tea.Cmd) {
	if a.focus == FocusData {
		if a.selectedCol > 0 {
			a.selectedCol--
		} else {
			a.focus = FocusColumns
		}
		return a, nil
	}
	if a.focus > 0 {
		a.focus--
	}
	return a, nil
}

func (a *App) handleRight() (tea.Model, tea.Cmd) {
	if a.focus == FocusData {
		if a.layout != nil && a.selectedCol < len(a.layout.Order())-1 {
			a.selectedCol++
		}
		return a, nil
	}
	a.focus++
	return a, nil
}

func (a *App) moveRow(delta int) (tea.Model, tea.Cmd) {
	n := len(a.currentView())
	if n == 0 {
		return a, nil
	}
	a.selectedRow += delta
	if a.selectedRow < 0 {
		a.selectedRow = 0
	}
	if a.selectedRow >= n {
		a.selectedRow = n - 1
	}
	a.ensureVisible()
	return a, nil
}

func (a *App) handleHome() (tea.Model, tea.Cmd) {
	switch a.focus {
	case FocusDatasets:
		a.selected = 0
	case FocusColumns:
		a.selectedCol = 0
	case FocusData:
		a.selectedRow = 0
		a.ensureVisible()
	}
	return a, nil
}

func (a *App) handleEnd() (tea.Model, tea.Cmd) {
	switch a.focus {
	case FocusDatasets:
		if n := len(a.entries()); n > 0 {
			a.selected = n - 1
		}
	case FocusColumns:
		if a.layout != nil && len(a.layout.Order()) > 0 {
			a.selectedCol = len(a.layout.Order()) - 1
		}
	case FocusData:
		if n := len(a.currentView()); n > 0 {
			a.selectedRow = n - 1
			a.ensureVisible()
		}
	}
	return a, nil
}

func (a *App) handleSelect() (tea.Model, tea.Cmd) {
	switch a.focus {
	case FocusDatasets:
		entries := a.entries()
		if a.selected >= len(entries) {
			return a, nil
		}
		entry := entries[a.selected]
		if entry.loaded {
			a.focus = FocusData
			return a, a.activateDataset(a.datasets[entry.dsIdx])
		}
		a.status = fmt.Sprintf("importing %s...", entry.title)
		return a, a.openSource(a.sources[entry.srcIdx])

	case FocusColumns:
		a.focus = FocusData
	}
	return a, nil
}

// moveColumn shifts the cursor's column one slot in display order.
func (a *App) moveColumn(delta int) (tea.Model, tea.Cmd) {
	if a.layout == nil {
		return a, nil
	}
	order := a.layout.Order()
	dst := a.selectedCol + delta
	if dst < 0 || dst >= len(order) {
		return a, nil
	}
	a.layout.Move(order[a.selectedCol], order[dst])
	a.selectedCol = dst
	return a, nil
}

// beginEdit opens a cell edit session for the cursor cell.
func (a *App) beginEdit() (tea.Model, tea.Cmd) {
	if a.focus != FocusData || a.editor == nil {
		return a, nil
	}
	view := a.currentView()
	if a.selectedRow >= len(view) {
		return a, nil
	}
	col := a.currentColumn()
	if col == "" {
		return a, nil
	}
	if _, err := a.editor.Begin(view[a.selectedRow].Pos, col); err != nil {
		a.err = err
		return a, nil
	}
	a.mode = inputEdit
	return a, nil
}

func (a *App) handleEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	sess := a.editor.Active()
	if sess == nil {
		a.mode = inputNone
		return a, nil
	}

	switch msg.Type {
	case tea.KeyEsc:
		a.editor.Cancel()
		a.mode = inputNone
		return a, nil

	case tea.KeyEnter:
		a.mode = inputNone
		if err := a.editor.Commit(); err != nil {
			a.err = err
			return a, nil
		}
		a.clampCursor()
		return a, a.saveActive()

	case tea.KeyBackspace:
		if len(sess.Input) > 0 {
			sess.Input = sess.Input[:len(sess.Input)-1]
		}
		return a, nil

	case tea.KeyRunes:
		sess.Input += string(msg.Runes)
		return a, nil

	case tea.KeySpace:
		sess.Input += " "
		return a, nil
	}

	return a, nil
}

func (a *App) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		a.mode = inputNone
		a.inputBuf = ""
		return a, nil

	case tea.KeyEnter:
		mode := a.mode
		input := strings.TrimSpace(a.inputBuf)
		a.mode = inputNone
		a.inputBuf = ""
		return a.submitInput(mode, input)

	case tea.KeyBackspace:
		if len(a.inputBuf) > 0 {
			a.inputBuf = a.inputBuf[:len(a.inputBuf)-1]
		}
		// Live search narrows as the input shrinks too.
		if a.mode == inputSearch {
			a.search = a.inputBuf
			a.clampCursor()
		}
		return a, nil

	case tea.KeyRunes, tea.KeySpace:
		if msg.Type == tea.KeySpace {
			a.inputBuf += " "
		} else {
			a.inputBuf += string(msg.Runes)
		}
		if a.mode == inputSearch {
			a.search = a.inputBuf
			a.clampCursor()
		}
		return a, nil
	}

	return a, nil
}

func (a *App) submitInput(mode inputMode, input string) (tea.Model, tea.Cmd) {
	switch mode {
	case inputSearch:
		a.search = input
		a.clampCursor()

	case inputFilter:
		if input == "" {
			return a, nil
		}
		f, err := parseFilter(a.filterColumn, input)
		if err != nil {
			a.err = err
			return a, nil
		}
		a.filters.Add(f)
		a.clampCursor()

	case inputAsk:
		if input == "" {
			return a, nil
		}
		a.busy = true
		a.err = nil
		return a, a.askAnalyst(input)
	}
	return a, nil
}

// parseFilter parses "op value [value2]" filter input for a column.
func parseFilter(column, input string) (grid.Filter, error) {
	fields := strings.Fields(input)
	if len(fields) < 2 {
		return grid.Filter{}, fmt.Errorf("usage: <equals|contains|gt|lt|between> <value> [value2]")
	}

	op := grid.Operator(strings.ToLower(fields[0]))
	switch op {
	case grid.OpEquals, grid.OpContains:
		return grid.NewFilter(column, op, strings.Join(fields[1:], " "), nil), nil
	case grid.OpGT, grid.OpLT:
		return grid.NewFilter(column, op, fields[1], nil), nil
	case grid.OpBetween:
		if len(fields) < 3 {
			return grid.Filter{}, fmt.Errorf("between needs two values")
		}
		return grid.NewFilter(column, op, fields[1], fields[2]), nil
	default:
		return grid.Filter{}, fmt.Errorf("unknown operator %q", fields[0])
	}
}

func (a *App) handleChartKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit

	case key.Matches(msg, a.keys.Back), key.Matches(msg, a.keys.Chart):
		a.chart = nil
		return a, nil

	case key.Matches(msg, a.keys.Up):
		a.chart.moveCursor(-1)
		return a, nil

	case key.Matches(msg, a.keys.Down):
		a.chart.moveCursor(1)
		return a, nil

	case key.Matches(msg, a.keys.Pin):
		return a, a.pinChart()

	case key.Matches(msg, a.keys.Select):
		// Drill down: the selected bar becomes an equality filter and the
		// grid shows the matching rows.
		if b, ok := a.chart.selectedBucket(); ok {
			a.filters.Add(grid.DrillDown(a.chart.column, b.value))
			a.chart = nil
			a.focus = FocusData
			a.selectedRow = 0
			a.scrollOffset = 0
		}
		return a, nil
	}
	return a, nil
}

func (a *App) handleCleanKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	items := a.cleanItems()

	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit

	case key.Matches(msg, a.keys.Back), key.Matches(msg, a.keys.Clean):
		a.cleanOpen = false
		return a, nil

	case key.Matches(msg, a.keys.Up):
		if a.cleanCursor > 0 {
			a.cleanCursor--
		}
		return a, nil

	case key.Matches(msg, a.keys.Down):
		if a.cleanCursor < len(items)-1 {
			a.cleanCursor++
		}
		return a, nil

	case key.Matches(msg, a.keys.Select):
		if a.cleanCursor >= len(items) {
			return a, nil
		}
		item := items[a.cleanCursor]
		a.cleanOpen = false
		a.status = fmt.Sprintf("cleaning: %s %s...", item.action, item.column)
		return a, a.runClean(item.action, item.column)
	}
	return a, nil
}

// cleanItem is one cleaning menu entry.
type cleanItem struct {
	action dataset.CleanAction
	column string
	label  string
}

// cleanItems builds the menu: the built-in actions against the cursor
// column, then whatever the analyst suggested.
func (a *App) cleanItems() []cleanItem {
	col := a.currentColumn()
	items := make([]cleanItem, 0, len(dataset.CleanActions)+len(a.suggestions))
	for _, action := range dataset.CleanActions {
		items = append(items, cleanItem{
			action: action,
			column: col,
			label:  fmt.Sprintf("%s (%s)", action, col),
		})
	}
	for _, s := range a.suggestions {
		items = append(items, cleanItem{
			action: dataset.CleanAction(s.Action),
			column: s.Column,
			label:  fmt.Sprintf("suggested: %s (%s) - %s", s.Action, s.Column, s.Reason),
		})
	}
	return items
}

// formatAnalysis flattens an analysis into display lines.
func formatAnalysis(an *analyst.Analysis) []string {
	lines := strings.Split(strings.TrimSpace(an.Text), "\n")
	for _, m := range an.Metrics {
		lines = append(lines, fmt.Sprintf("%s: %s", m.Label, m.Value))
	}
	for _, ins := range an.Insights {
		lines = append(lines, "* "+ins)
	}
	return lines
}

// View implements tea.Model.
func (a *App) View() string {
	if a.width < 60 || a.height < 12 {
		return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center,
			errorStyle.Render("Terminal too small\nMin: 60x12"))
	}

	if a.showHelp {
		return a.renderHelp()
	}

	dsWidth := a.datasetsPaneWidth()
	colWidth := a.columnsPaneWidth()
	dataWidth := a.width - dsWidth - colWidth - 2
	contentHeight := a.height - 2 // input bar + status bar

	var b strings.Builder

	dsPane := a.renderDatasetsPane(dsWidth, contentHeight)
	colPane := a.renderColumnsPane(colWidth, contentHeight)

	var mainPane string
	if a.chart != nil {
		mainPane = a.renderChartPane(dataWidth, contentHeight)
	} else {
		mainPane = a.renderDataPane(dataWidth, contentHeight)
	}

	// Mouse hit testing needs the grid's left edge: two panes, their
	// borders, the data pane's left border and padding.
	a.gridOriginX = dsWidth + colWidth + 2
	a.headerRowY = 1 + len(a.notices())

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, dsPane, colPane, mainPane))
	b.WriteString("\n")
	b.WriteString(a.renderInputBar())
	b.WriteString("\n")
	b.WriteString(a.renderStatusBar())

	if a.cleanOpen {
		return a.renderCleanMenu()
	}

	return b.String()
}

func (a *App) datasetsPaneWidth() int {
	maxLen := 8 // "Datasets"
	for _, e := range a.entries() {
		if len(e.title) > maxLen {
			maxLen = len(e.title)
		}
	}
	w := maxLen + 7
	if w > a.width/4 {
		w = a.width / 4
	}
	if w < 14 {
		w = 14
	}
	return w
}

func (a *App) columnsPaneWidth() int {
	maxLen := 7 // "Columns"
	if a.layout != nil {
		for _, c := range a.layout.Order() {
			if len(c) > maxLen {
				maxLen = len(c)
			}
		}
	}
	w := maxLen + 12 // room for sort and filter markers
	if w > a.width/4 {
		w = a.width / 4
	}
	if w < 14 {
		w = 14
	}
	return w
}

func (a *App) renderDatasetsPane(width, height int) string {
	focused := a.focus == FocusDatasets
	entries := a.entries()

	visibleHeight := height - 2
	if visibleHeight < 1 {
		visibleHeight = 1
	}

	var content strings.Builder
	if len(entries) == 0 {
		content.WriteString(dimItemStyle.Render(" No datasets"))
	} else {
		offset := 0
		if a.selected >= visibleHeight {
			offset = a.selected - visibleHeight + 1
		}
		end := offset + visibleHeight
		if end > len(entries) {
			end = len(entries)
		}

		for i := offset; i < end; i++ {
			e := entries[i]
			marker := "  "
			if a.active != nil && e.loaded && a.datasets[e.dsIdx] == a.active {
				marker = "* "
			}
			line := truncateString(e.title, width-8-len(e.desc)) + " " + e.desc
			switch {
			case i == a.selected:
				line = selectedItemStyle.Render("> " + line)
			case e.loaded:
				line = normalItemStyle.Render(marker + line)
			default:
				line = dimItemStyle.Render(marker + line)
			}
			content.WriteString(line)
			if i < end-1 {
				content.WriteString("\n")
			}
		}
	}

	return renderPaneWithTitle(content.String(), width, height, "Datasets", focused)
}

func (a *App) renderColumnsPane(width, height int) string {
	focused := a.focus == FocusColumns

	if a.layout == nil {
		return renderPaneWithTitle(dimItemStyle.Render(" No dataset"), width, height, "Columns", focused)
	}

	filtered := make(map[string]int)
	for _, f := range a.filters.List() {
		filtered[f.Column]++
	}

	visibleHeight := height - 2
	if visibleHeight < 1 {
		visibleHeight = 1
	}

	order := a.layout.Order()
	offset := 0
	if a.selectedCol >= visibleHeight {
		offset = a.selectedCol - visibleHeight + 1
	}
	end := offset + visibleHeight
	if end > len(order) {
		end = len(order)
	}

	var content strings.Builder
	for i := offset; i < end; i++ {
		col := order[i]

		marks := ""
		if a.sortCfg.Column == col {
			switch a.sortCfg.Direction {
			case grid.DirAsc:
				marks += " ↑"
			case grid.DirDesc:
				marks += " ↓"
			}
		}
		if n := filtered[col]; n > 0 {
			marks += fmt.Sprintf(" ⊃%d", n)
		}

		line := fmt.Sprintf("%s%s %d", truncateString(col, width-10), marks, a.layout.Width(col))
		if i == a.selectedCol {
			line = selectedItemStyle.Render("> " + line)
		} else {
			line = normalItemStyle.Render("  " + line)
		}
		content.WriteString(line)
		if i < end-1 {
			content.WriteString("\n")
		}
	}

	return renderPaneWithTitle(content.String(), width, height, "Columns", focused)
}

// notices are the transient lines rendered above the grid header.
func (a *App) notices() []string {
	var out []string
	if a.search != "" {
		out = append(out, filterBadgeStyle.Render("search")+" "+inputStyle.Render(a.search))
	}
	if n := len(a.filters.List()); n > 0 {
		parts := make([]string, 0, n)
		for _, f := range a.filters.List() {
			parts = append(parts, fmt.Sprintf("%s %s %s", f.Column, f.Op, dataset.Format(f.Value)))
		}
		out = append(out, filterBadgeStyle.Render(fmt.Sprintf("%d filters", n))+" "+dimItemStyle.Render(strings.Join(parts, ", ")))
	}
	if a.mode == inputEdit && a.editor != nil && a.editor.Active() != nil {
		sess := a.editor.Active()
		out = append(out, promptStyle.Render("edit ["+sess.Column+"] ")+inputStyle.Render(sess.Input+"█"))
	}
	return out
}

func (a *App) answerHeight() int {
	if len(a.answer) == 0 {
		return 0
	}
	n := len(a.answer)
	if n > answerMaxLines {
		n = answerMaxLines
	}
	return n + 1 // heading line
}

func (a *App) renderDataPane(width, height int) string {
	focused := a.focus == FocusData

	if a.active == nil {
		return renderPaneWithTitle(dimItemStyle.Render(" Select a dataset"), width, height, "Data", focused)
	}

	view := a.currentView()
	order := a.layout.Order()
	rowH := a.cfg.Grid.RowHeight
	if rowH <= 0 {
		rowH = 1
	}

	gridRows := a.gridRows()
	win := grid.ComputeWindow(len(view), a.scrollOffset*rowH, gridRows*rowH, rowH, a.cfg.Grid.BufferRows)
	visible := win.Slice(view)

	var content strings.Builder
	for _, n := range a.notices() {
		content.WriteString(n)
		content.WriteString("\n")
	}

	// Header
	var header strings.Builder
	for i, col := range order {
		w := a.layout.Width(col)
		label := truncateString(col, w)
		cell := fmt.Sprintf("%-*s", w, label)
		switch {
		case a.sortCfg.Column == col && a.sortCfg.Direction != grid.DirNone:
			cell = gridSortedHeaderStyle.Render(cell)
		case i == a.selectedCol && focused:
			cell = gridSelectedCellStyle.Render(cell)
		default:
			cell = gridHeaderStyle.Render(cell)
		}
		header.WriteString(cell)
		header.WriteString(" ")
	}
	content.WriteString(truncateLine(header.String(), width-4))
	content.WriteString("\n")

	// Rows. The window over-fetches by the buffer; render only what fits.
	rendered := 0
	for i, vr := range visible {
		viewIdx := win.Start + i
		if viewIdx < a.scrollOffset {
			continue
		}
		if rendered >= gridRows {
			break
		}

		var line strings.Builder
		for ci, col := range order {
			w := a.layout.Width(col)
			cell := fmt.Sprintf("%-*s", w, truncateString(dataset.Format(vr.Row[col]), w))
			if viewIdx == a.selectedRow && focused {
				if ci == a.selectedCol {
					cell = gridSelectedCellStyle.Render(cell)
				} else {
					cell = gridSelectedRowStyle.Render(cell)
				}
			}
			line.WriteString(cell)
			line.WriteString(" ")
		}
		content.WriteString(truncateLine(line.String(), width-4))
		content.WriteString("\n")
		rendered++
	}
	for rendered < gridRows {
		content.WriteString("\n")
		rendered++
	}

	// Position line
	total := a.active.Store.Len()
	if len(view) == 0 {
		content.WriteString(dimItemStyle.Render(fmt.Sprintf("no matching rows (of %s)", humanize.Comma(int64(total)))))
	} else {
		pos := fmt.Sprintf("row %s/%s", humanize.Comma(int64(a.selectedRow+1)), humanize.Comma(int64(len(view))))
		if len(view) != total {
			pos += fmt.Sprintf(" (%s hidden)", humanize.Comma(int64(total-len(view))))
		}
		content.WriteString(dimItemStyle.Render(pos))
	}

	// Analyst answer block
	if len(a.answer) > 0 {
		content.WriteString("\n")
		content.WriteString(successStyle.Render("Analyst"))
		for i, line := range a.answer {
			if i >= answerMaxLines {
				break
			}
			content.WriteString("\n")
			content.WriteString(truncateLine(normalItemStyle.Render(line), width-4))
		}
	}

	return renderPaneWithTitle(content.String(), width, height, a.active.Name, focused)
}

func (a *App) renderInputBar() string {
	switch a.mode {
	case inputSearch:
		return promptStyle.Render("search> ") + inputStyle.Render(a.inputBuf+"█")
	case inputFilter:
		return promptStyle.Render("filter "+a.filterColumn+"> ") + inputStyle.Render(a.inputBuf+"█")
	case inputAsk:
		return promptStyle.Render("ask> ") + inputStyle.Render(a.inputBuf+"█")
	}
	if a.err != nil {
		return promptStyle.Render("> ") + errorStyle.Render(a.err.Error())
	}
	if a.status != "" {
		return promptStyle.Render("> ") + successStyle.Render(a.status)
	}
	return promptStyle.Render("> ") + dimItemStyle.Render("/ search · f filter · a ask · v chart · c clean")
}

func (a *App) renderStatusBar() string {
	var leftParts []string
	var rightParts []string

	leftParts = append(leftParts, titleStyle.Render(a.cfg.Name))
	if a.sess != nil {
		leftParts = append(leftParts, dimItemStyle.Render(a.sess.Name))
	}

	if a.active != nil {
		rightParts = append(rightParts, statusKeyStyle.Render(a.active.Name))
		rightParts = append(rightParts, statusValueStyle.Render(
			humanize.Comma(int64(a.active.Store.Len()))+" rows"))
		if a.active.SizeBytes > 0 {
			rightParts = append(rightParts, dimItemStyle.Render(humanize.Bytes(uint64(a.active.SizeBytes))))
		}
	}
	if n := len(a.filters.List()); n > 0 {
		rightParts = append(rightParts, filterBadgeStyle.Render(fmt.Sprintf("%d⊃", n)))
	}
	if a.busy {
		rightParts = append(rightParts, busyBadgeStyle.Render("THINKING"))
	}
	rightParts = append(rightParts, dimItemStyle.Render("| ?:help q:quit"))

	leftContent := strings.Join(leftParts, " ")
	rightContent := strings.Join(rightParts, " ")

	padding := a.width - lipgloss.Width(leftContent) - lipgloss.Width(rightContent) - 2
	if padding < 1 {
		padding = 1
	}

	return statusBarStyle.Width(a.width).Render(leftContent + strings.Repeat(" ", padding) + rightContent)
}

func (a *App) renderCleanMenu() string {
	items := a.cleanItems()

	var b strings.Builder
	for i, item := range items {
		line := truncateString(item.label, a.width/2)
		if i == a.cleanCursor {
			b.WriteString(selectedItemStyle.Render("> " + line))
		} else {
			b.WriteString(normalItemStyle.Render("  " + line))
		}
		b.WriteString("\n")
	}
	if a.busy {
		b.WriteString(dimItemStyle.Render("\nfetching suggestions..."))
	}
	b.WriteString("\n")
	b.WriteString(dimItemStyle.Render("Enter to apply, Esc to close"))

	modal := modalStyle.Render(titleStyle.Render("Clean data") + "\n\n" + b.String())
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, modal)
}

func (a *App) renderHelp() string {
	var b strings.Builder

	bindings := []struct {
		key  string
		desc string
	}{
		{"↑/k, ↓/j", "Navigate rows"},
		{"←/h, →/l", "Move between columns"},
		{"Tab", "Next pane"},
		{"Enter", "Open dataset / select"},
		{"s", "Cycle sort (asc, desc, off)"},
		{"/", "Search all fields"},
		{"f", "Filter current column"},
		{"F", "Clear filters and search"},
		{"e", "Edit cell"},
		{"[, ]", "Move column left/right"},
		{"-, +", "Narrow/widen column"},
		{"a", "Ask the analyst"},
		{"v", "Chart current column"},
		{"c", "Cleaning menu"},
		{"p", "Pin chart (in chart view)"},
		{"r", "Refresh sources"},
		{"?", "Toggle help"},
		{"q, Ctrl+C", "Quit"},
	}

	for _, binding := range bindings {
		b.WriteString(helpKeyStyle.Render(fmt.Sprintf("%-12s", binding.key)))
		b.WriteString(helpDescStyle.Render(binding.desc))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(dimItemStyle.Render("Press ? or Esc to close"))

	modal := modalStyle.Render(titleStyle.Render("Help") + "\n\n" + b.String())
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, modal)
}

// buildBorderTitle builds a top border line with an embedded title.
func buildBorderTitle(width int, title string, focused bool) string {
	border := lipgloss.RoundedBorder()
	var borderColor lipgloss.Color
	var style lipgloss.Style
	if focused {
		borderColor = primaryColor
		style = focusedBorderTitleStyle
	} else {
		borderColor = mutedColor
		style = borderTitleStyle
	}

	borderStyle := lipgloss.NewStyle().Foreground(borderColor)

	titleRendered := style.Render(truncateString(title, width-6))
	titleWidth := lipgloss.Width(titleRendered)

	remainingWidth := width - 5 - titleWidth
	if remainingWidth < 0 {
		remainingWidth = 0
	}

	var b strings.Builder
	b.WriteString(borderStyle.Render(border.TopLeft))
	b.WriteString(borderStyle.Render(border.Top))
	b.WriteString(" ")
	b.WriteString(titleRendered)
	b.WriteString(" ")
	for i := 0; i < remainingWidth; i++ {
		b.WriteString(borderStyle.Render(border.Top))
	}
	b.WriteString(borderStyle.Render(border.TopRight))

	return b.String()
}

// renderPaneWithTitle renders content in a pane with a title in the top
// border.
func renderPaneWithTitle(content string, width, height int, title string, focused bool) string {
	border := lipgloss.RoundedBorder()
	var borderColor lipgloss.Color
	if focused {
		borderColor = primaryColor
	} else {
		borderColor = mutedColor
	}
	borderStyle := lipgloss.NewStyle().Foreground(borderColor)

	innerWidth := width - 2
	innerHeight := height - 2
	if innerWidth < 1 {
		innerWidth = 1
	}
	if innerHeight < 1 {
		innerHeight = 1
	}

	contentLines := strings.Split(content, "\n")
	for len(contentLines) < innerHeight {
		contentLines = append(contentLines, "")
	}
	if len(contentLines) > innerHeight {
		contentLines = contentLines[:innerHeight]
	}

	var result strings.Builder
	result.WriteString(buildBorderTitle(width, title, focused))
	result.WriteString("\n")

	for _, line := range contentLines {
		result.WriteString(borderStyle.Render(border.Left))
		paddedLine := " " + line
		lineWidth := lipgloss.Width(paddedLine)
		if lineWidth < innerWidth {
			paddedLine += strings.Repeat(" ", innerWidth-lineWidth)
		}
		result.WriteString(paddedLine)
		result.WriteString(borderStyle.Render(border.Right))
		result.WriteString("\n")
	}

	result.WriteString(borderStyle.Render(border.BottomLeft))
	for i := 0; i < innerWidth; i++ {
		result.WriteString(borderStyle.Render(border.Bottom))
	}
	result.WriteString(borderStyle.Render(border.BottomRight))

	return result.String()
}

// truncateString truncates a string to maxLen runes, adding ellipsis if
// needed.
func truncateString(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-1]) + "…"
}

// truncateLine caps a styled line at a display width.
func truncateLine(s string, maxWidth int) string {
	if lipgloss.Width(s) <= maxWidth {
		return s
	}
	return lipgloss.NewStyle().MaxWidth(maxWidth).Render(s)
}
