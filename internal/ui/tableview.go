package ui

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	btable "github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"

	"github.com/abelbrown/stockroom/internal/api"
	"github.com/abelbrown/stockroom/internal/bulk"
	"github.com/abelbrown/stockroom/internal/logging"
	"github.com/abelbrown/stockroom/internal/resource"
	"github.com/abelbrown/stockroom/internal/table"
)

type mode int

const (
	modeBrowse mode = iota
	modeFilter
	modeConfirm
)

// pageSizes are the steps +/- move through.
var pageSizes = []int{5, 10, 20, 50, 100}

// maxColumnWidth caps a column so one long value cannot push the rest off screen.
const maxColumnWidth = 32

// Screen is one tab of the App.
type Screen interface {
	Name() string
	Title() string
	// Start issues the initial fetch. Called the first time the screen is shown.
	Start() (Screen, tea.Cmd)
	Update(tea.Msg) (Screen, tea.Cmd)
	View() string
	// Capturing reports whether the screen wants every key (filter input,
	// confirmation prompt).
	Capturing() bool
}

// ViewConfig wires a TableView.
type ViewConfig[R any] struct {
	Resource     resource.Descriptor[R]
	PageSize     int
	Load         func(ctx context.Context) ([]R, error)
	Dispatcher   *bulk.Dispatcher[R]
	SavePageSize func(n int) error
}

// TableView shows one resource through a table.Controller.
type TableView[R any] struct {
	ctx          context.Context
	res          resource.Descriptor[R]
	ctrl         *table.Controller[R]
	load         func(ctx context.Context) ([]R, error)
	dispatch     *bulk.Dispatcher[R]
	savePageSize func(int) error

	keys    keyMap
	grid    btable.Model
	filter  textinput.Model
	spinner spinner.Model
	help    help.Model

	mode     mode
	seq      int // latest fetch issued
	loading  bool
	deleting bool
	pending  []R // resolved selection awaiting delete confirmation
	err      error
	notice   string
	loadedAt time.Time
	width    int
	height   int
}

// NewTableView creates a view. Nothing is fetched until Start.
func NewTableView[R any](ctx context.Context, cfg ViewConfig[R]) TableView[R] {
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = table.DefaultPageSize
	}

	ti := textinput.New()
	ti.Prompt = "/"
	ti.PromptStyle = FilterBarPrompt
	ti.TextStyle = FilterBarText
	var searchable []string
	for _, f := range cfg.Resource.Schema.Searchable() {
		searchable = append(searchable, strings.ToLower(f.Title))
	}
	ti.Placeholder = "search " + strings.Join(searchable, ", ")

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = StatusBarKey

	grid := btable.New(btable.WithFocused(true))
	styles := btable.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(colorMuted).
		BorderBottom(true).
		Bold(true).
		Foreground(colorPrimary)
	styles.Selected = styles.Selected.
		Foreground(colorHighlight).
		Bold(true)
	grid.SetStyles(styles)

	v := TableView[R]{
		ctx:          ctx,
		res:          cfg.Resource,
		ctrl:         table.NewController(cfg.Resource.Schema, pageSize),
		load:         cfg.Load,
		dispatch:     cfg.Dispatcher,
		savePageSize: cfg.SavePageSize,
		keys:         defaultKeys(),
		grid:         grid,
		filter:       ti,
		spinner:      sp,
		help:         help.New(),
	}
	v.syncGrid()
	return v
}

func (v TableView[R]) Name() string  { return v.res.Name }
func (v TableView[R]) Title() string { return v.res.Title }

func (v TableView[R]) Capturing() bool { return v.mode != modeBrowse }

// Controller exposes the table state (for testing).
func (v TableView[R]) Controller() *table.Controller[R] { return v.ctrl }

// Err returns the error shown in the banner, if any.
func (v TableView[R]) Err() error { return v.err }

// Notice returns the last action result line.
func (v TableView[R]) Notice() string { return v.notice }

// Loading reports whether a fetch is outstanding.
func (v TableView[R]) Loading() bool { return v.loading }

// Deleting reports whether a delete is in flight.
func (v TableView[R]) Deleting() bool { return v.deleting }

func (v TableView[R]) Start() (Screen, tea.Cmd) {
	return v.fetch()
}

func (v TableView[R]) Update(msg tea.Msg) (Screen, tea.Cmd) {
	return v.update(msg)
}

func (v TableView[R]) update(msg tea.Msg) (TableView[R], tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width, v.height = msg.Width, msg.Height
		v.help.Width = msg.Width
		v.filter.Width = max(10, msg.Width-4)
		v.syncGrid()
		return v, nil

	case spinner.TickMsg:
		if !v.loading && !v.deleting {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd

	case CollectionLoaded[R]:
		return v.onLoaded(msg), nil

	case ActionFinished[R]:
		return v.onActionFinished(msg)

	case PrefSaved:
		if msg.Err != nil {
			v.err = fmt.Errorf("save page size: %w", msg.Err)
		}
		return v, nil

	case tea.KeyMsg:
		switch v.mode {
		case modeFilter:
			return v.updateFilter(msg)
		case modeConfirm:
			return v.updateConfirm(msg)
		}
		return v.updateBrowse(msg)
	}

	if v.mode == modeFilter {
		var cmd tea.Cmd
		v.filter, cmd = v.filter.Update(msg)
		return v, cmd
	}
	return v, nil
}

// fetch issues a new load. Only the response to the latest fetch is applied.
func (v TableView[R]) fetch() (TableView[R], tea.Cmd) {
	if v.load == nil {
		return v, nil
	}
	v.seq++
	v.loading = true
	seq, load, ctx, name := v.seq, v.load, v.ctx, v.res.Name
	return v, tea.Batch(v.spinner.Tick, func() tea.Msg {
		records, err := load(ctx)
		return CollectionLoaded[R]{Screen: name, Seq: seq, Records: records, Err: err, At: time.Now()}
	})
}

func (v TableView[R]) onLoaded(msg CollectionLoaded[R]) TableView[R] {
	if msg.Seq < v.seq {
		logging.Debug("dropping stale response", "screen", v.res.Name, "seq", msg.Seq, "latest", v.seq)
		return v
	}
	v.loading = false
	if msg.Err != nil {
		// Never mix old rows with a failed refresh.
		v.ctrl.SetRecords(nil)
		v.err = msg.Err
		logging.Warn("load failed", "screen", v.res.Name, "error", msg.Err)
	} else {
		v.ctrl.SetRecords(msg.Records)
		v.err = nil
		v.loadedAt = msg.At
	}
	v.syncGrid()
	return v
}

func (v TableView[R]) onActionFinished(msg ActionFinished[R]) (TableView[R], tea.Cmd) {
	sum := msg.Summary
	if sum.Action == bulk.ActionDelete {
		v.deleting = false
		v.keys.Delete.SetEnabled(true)
	}

	if msg.Err != nil {
		switch {
		case errors.Is(msg.Err, bulk.ErrCancelled):
			v.notice = "delete cancelled"
		case sum.Action == bulk.ActionDelete && sum.Count > 0 && !sum.Refetched:
			// Deleted but the refetch failed: the rows on screen are gone
			// and the selection must not carry over to the next load.
			v.ctrl.ClearSelection()
			v.err = msg.Err
			v.syncGrid()
			return v.fetch()
		default:
			v.err = msg.Err
		}
		return v, nil
	}

	if sum.Refetched {
		sum.ApplyTo(v.ctrl)
		// Anything still in flight was issued before the delete.
		v.seq++
		v.loading = false
		v.loadedAt = msg.At
	}
	switch sum.Action {
	case bulk.ActionExport:
		v.notice = fmt.Sprintf("exported %d %s to %s", sum.Count, plural(sum.Count, "row"), sum.Location)
	case bulk.ActionDelete:
		v.notice = fmt.Sprintf("deleted %d %s", sum.Count, plural(sum.Count, "record"))
	}
	v.syncGrid()
	return v, nil
}

func (v TableView[R]) updateBrowse(msg tea.KeyMsg) (TableView[R], tea.Cmd) {
	v.err = nil
	v.notice = ""

	switch {
	case key.Matches(msg, v.keys.Filter):
		v.mode = modeFilter
		v.filter.SetValue(v.ctrl.Query())
		v.filter.CursorEnd()
		cmd := v.filter.Focus()
		return v, cmd
	case key.Matches(msg, v.keys.Up):
		v.grid.MoveUp(1)
		return v, nil
	case key.Matches(msg, v.keys.Down):
		v.grid.MoveDown(1)
		return v, nil
	case key.Matches(msg, v.keys.Sort):
		v.cycleSort()
	case key.Matches(msg, v.keys.SortDir):
		v.flipSort()
	case key.Matches(msg, v.keys.Toggle):
		if r, ok := v.current(); ok {
			v.ctrl.ToggleOne(v.res.Schema.ID(r))
		}
	case key.Matches(msg, v.keys.ToggleAll):
		v.ctrl.ToggleAll()
	case key.Matches(msg, v.keys.NextPage):
		v.ctrl.NextPage()
		v.grid.SetCursor(0)
	case key.Matches(msg, v.keys.PrevPage):
		v.ctrl.PrevPage()
		v.grid.SetCursor(0)
	case key.Matches(msg, v.keys.PageBigger):
		return v.stepPageSize(1)
	case key.Matches(msg, v.keys.PageSmall):
		return v.stepPageSize(-1)
	case key.Matches(msg, v.keys.Export):
		return v.export()
	case key.Matches(msg, v.keys.Delete):
		return v.confirmDelete()
	case key.Matches(msg, v.keys.Refresh):
		return v.fetch()
	default:
		return v, nil
	}
	v.syncGrid()
	return v, nil
}

func (v TableView[R]) updateFilter(msg tea.KeyMsg) (TableView[R], tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Accept):
		v.mode = modeBrowse
		v.filter.Blur()
	case key.Matches(msg, v.keys.Cancel):
		v.mode = modeBrowse
		v.filter.Blur()
		v.filter.SetValue("")
		v.ctrl.SetQuery("")
	default:
		var cmd tea.Cmd
		v.filter, cmd = v.filter.Update(msg)
		v.ctrl.SetQuery(v.filter.Value())
		v.syncGrid()
		return v, cmd
	}
	v.syncGrid()
	return v, nil
}

func (v TableView[R]) updateConfirm(msg tea.KeyMsg) (TableView[R], tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Yes):
		resolved := v.pending
		v.pending = nil
		v.mode = modeBrowse
		v.deleting = true
		v.keys.Delete.SetEnabled(false)
		return v, tea.Batch(v.spinner.Tick, v.run(bulk.ActionDelete, resolved))
	case key.Matches(msg, v.keys.No):
		v.pending = nil
		v.mode = modeBrowse
		v.notice = "delete cancelled"
	}
	return v, nil
}

func (v TableView[R]) export() (TableView[R], tea.Cmd) {
	resolved := v.ctrl.Resolve()
	if len(resolved) == 0 {
		v.notice = "nothing selected"
		return v, nil
	}
	return v, v.run(bulk.ActionExport, resolved)
}

func (v TableView[R]) confirmDelete() (TableView[R], tea.Cmd) {
	resolved := v.ctrl.Resolve()
	if len(resolved) == 0 {
		v.notice = "nothing selected"
		return v, nil
	}
	v.pending = resolved
	v.mode = modeConfirm
	return v, nil
}

// run executes action off the update loop.
func (v TableView[R]) run(action bulk.Action, resolved []R) tea.Cmd {
	d, ctx, name := v.dispatch, v.ctx, v.res.Name
	return func() tea.Msg {
		if d == nil {
			return ActionFinished[R]{Screen: name, Summary: bulk.Summary[R]{Action: action}, Err: errors.New("actions are not available here")}
		}
		sum, err := d.Execute(ctx, action, resolved)
		return ActionFinished[R]{Screen: name, Summary: sum, Err: err, At: time.Now()}
	}
}

func (v *TableView[R]) sortColumns() []string {
	var cols []string
	for _, c := range v.res.Columns {
		if f, ok := v.res.Schema.Field(c); ok && f.Sortable {
			cols = append(cols, c)
		}
	}
	return cols
}

// cycleSort moves to the next visible sortable column, ascending.
func (v *TableView[R]) cycleSort() {
	cols := v.sortColumns()
	if len(cols) == 0 {
		return
	}
	i := slices.Index(cols, v.ctrl.Sort().Column)
	next := cols[(i+1)%len(cols)]
	if err := v.ctrl.SetSort(table.SortDescriptor{Column: next, Direction: table.Ascending}); err != nil {
		v.err = err
	}
}

func (v *TableView[R]) flipSort() {
	col := v.ctrl.Sort().Column
	if col == "" {
		cols := v.sortColumns()
		if len(cols) == 0 {
			return
		}
		col = cols[0]
	}
	if err := v.ctrl.SortBy(col); err != nil {
		v.err = err
	}
}

func (v TableView[R]) stepPageSize(dir int) (TableView[R], tea.Cmd) {
	cur := v.ctrl.Info().PageSize
	next := 0
	if dir > 0 {
		if i := slices.IndexFunc(pageSizes, func(n int) bool { return n > cur }); i >= 0 {
			next = pageSizes[i]
		}
	} else {
		for _, n := range pageSizes {
			if n < cur {
				next = n
			}
		}
	}
	if next == 0 {
		return v, nil
	}
	if err := v.ctrl.SetPageSize(next); err != nil {
		v.err = err
		return v, nil
	}
	v.notice = fmt.Sprintf("page size %d", next)
	v.syncGrid()

	if v.savePageSize == nil {
		return v, nil
	}
	save, name := v.savePageSize, v.res.Name
	return v, func() tea.Msg {
		return PrefSaved{Screen: name, Err: save(next)}
	}
}

func (v TableView[R]) current() (R, bool) {
	page := v.ctrl.Page()
	i := v.grid.Cursor()
	if i < 0 || i >= len(page) {
		var zero R
		return zero, false
	}
	return page[i], true
}

// syncGrid rebuilds the bubbles table from the controller's current page.
func (v *TableView[R]) syncGrid() {
	names := v.res.Columns
	titles := v.res.Schema.Titles(names)
	if d := v.ctrl.Sort(); !d.IsZero() {
		if i := slices.Index(names, d.Column); i >= 0 {
			titles[i] += " " + d.Direction.Arrow()
		}
	}

	page := v.ctrl.Page()
	cells := make([][]string, len(page))
	for i, r := range page {
		cells[i] = v.res.Schema.Row(r, names)
	}
	widths := columnWidths(titles, cells, v.width)

	cols := make([]btable.Column, 0, len(names)+1)
	cols = append(cols, btable.Column{Title: " ", Width: 1})
	for i, t := range titles {
		cols = append(cols, btable.Column{Title: runewidth.Truncate(t, widths[i], "…"), Width: widths[i]})
	}
	rows := make([]btable.Row, len(page))
	for i, r := range page {
		mark := " "
		if v.ctrl.IsSelected(v.res.Schema.ID(r)) {
			mark = "✓"
		}
		row := btable.Row{mark}
		for j, c := range cells[i] {
			row = append(row, runewidth.Truncate(c, widths[j], "…"))
		}
		rows[i] = row
	}

	cursor := v.grid.Cursor()
	v.grid.SetRows(nil)
	v.grid.SetColumns(cols)
	v.grid.SetRows(rows)

	height := v.ctrl.Info().PageSize + 2
	if v.height > 0 {
		height = min(height, max(3, v.height-6))
	}
	v.grid.SetHeight(height)
	if cursor >= len(rows) {
		v.grid.SetCursor(max(0, len(rows)-1))
	}
}

// columnWidths sizes each column to its widest cell, capped, then shrinks the
// widest columns until the table fits total (when known).
func columnWidths(titles []string, rows [][]string, total int) []int {
	w := make([]int, len(titles))
	for i, t := range titles {
		w[i] = runewidth.StringWidth(t)
	}
	for _, r := range rows {
		for i, c := range r {
			w[i] = max(w[i], runewidth.StringWidth(c))
		}
	}
	for i := range w {
		w[i] = min(w[i], maxColumnWidth)
	}
	if total <= 0 {
		return w
	}

	// Each column carries one cell of padding either side, plus the marker column.
	avail := total - 2*(len(w)+1) - 1
	for totalWidth(w) > avail {
		i := slices.Index(w, slices.Max(w))
		if w[i] <= 4 {
			break
		}
		w[i]--
	}
	return w
}

func totalWidth(xs []int) int {
	n := 0
	for _, x := range xs {
		n += x
	}
	return n
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

// describeError turns client errors into banner text.
func describeError(err error) string {
	var act *api.ActionError
	var auth *api.AuthError
	var netErr *api.NetworkError
	var format *api.FormatError
	switch {
	case errors.As(err, &act):
		return act.Error()
	case errors.As(err, &auth):
		return "not signed in or session expired, run `stockroom login`"
	case errors.As(err, &netErr):
		if netErr.Status != 0 {
			return fmt.Sprintf("server error (%d), press r to retry", netErr.Status)
		}
		return "cannot reach server, press r to retry"
	case errors.As(err, &format):
		return "unexpected response from server: " + format.Reason
	}
	return err.Error()
}

// View renders the filter line, the table, any banner and the status bar.
func (v TableView[R]) View() string {
	var b strings.Builder

	switch {
	case v.mode == modeFilter:
		b.WriteString(v.filter.View())
	case v.ctrl.Query() != "":
		b.WriteString(FilterBarPrompt.Render("/") + FilterBarText.Render(v.ctrl.Query()))
	}
	b.WriteString("\n")

	info := v.ctrl.Info()
	if info.Total == 0 && !v.loading && v.err == nil {
		b.WriteString(HelpStyle.Render("No records. Press r to refresh."))
		b.WriteString("\n")
	} else {
		b.WriteString(v.grid.View())
		b.WriteString("\n")
	}

	if v.mode == modeConfirm {
		prompt := fmt.Sprintf("Delete %d %s? (y/n)", len(v.pending), strings.ToLower(v.res.Title))
		b.WriteString(ConfirmStyle.Render(prompt))
		b.WriteString("\n")
	}

	switch {
	case v.err != nil:
		msg := "Error: " + describeError(v.err)
		if v.width > 0 {
			msg = runewidth.Truncate(msg, v.width-2, "…")
		}
		b.WriteString(ErrorStyle.Render(msg))
		b.WriteString("\n")
	case v.notice != "":
		b.WriteString(NoticeStyle.Render(v.notice))
		b.WriteString("\n")
	}

	b.WriteString(v.statusBar(info))
	b.WriteString("\n")
	b.WriteString(HelpStyle.Render(v.help.View(v.keys)))
	return b.String()
}

func (v TableView[R]) statusBar(info table.PageInfo) string {
	left := fmt.Sprintf("page %d / %d", info.Page, info.TotalPages)
	if v.loading || v.deleting {
		left = v.spinner.View() + " " + left
	}
	left += StatusBarText.Render(fmt.Sprintf("  %d selected  %d of %d rows", info.Selected, info.Filtered, info.Total))

	var right string
	if !v.loadedAt.IsZero() {
		right = StatusBarText.Render("updated " + humanize.Time(v.loadedAt))
	}

	if v.width <= 0 {
		return StatusBar.Render(left + "  " + right)
	}
	padding := max(0, v.width-2-lipgloss.Width(left)-lipgloss.Width(right))
	return StatusBar.Width(v.width).Render(left + strings.Repeat(" ", padding) + right)
}
