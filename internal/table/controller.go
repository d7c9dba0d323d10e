package table

import (
	"errors"
	"strings"
)

// DefaultPageSize is used when a controller is built with a non-positive size.
const DefaultPageSize = 10

// ErrPageSize is returned for a non-positive page size.
var ErrPageSize = errors.New("page size must be positive")

// PageInfo summarises the controller state for a status bar.
type PageInfo struct {
	Page       int
	TotalPages int
	PageSize   int
	Total      int // records in the collection
	Filtered   int // records matching the query
	Selected   int // displayed selected count
}

// Controller holds the state of one table view: the fetched collection, the
// query, sort, page and selection. It is not safe for concurrent use; a
// Bubble Tea model owns it from the update loop.
type Controller[R any] struct {
	schema    Schema[R]
	records   []R
	query     string
	sort      SortDescriptor
	page      int
	pageSize  int
	selection Selection

	// visible is records after filter and sort.
	visible []R
}

// NewController builds a controller over schema.
func NewController[R any](schema Schema[R], pageSize int) *Controller[R] {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	c := &Controller[R]{
		schema:   schema,
		page:     1,
		pageSize: pageSize,
	}
	c.refresh()
	return c
}

// Schema returns the schema the controller was built with.
func (c *Controller[R]) Schema() Schema[R] {
	return c.schema
}

// SetRecords replaces the collection wholesale. Selection is kept; ids that
// no longer exist simply never resolve.
func (c *Controller[R]) SetRecords(records []R) {
	c.records = make([]R, len(records))
	copy(c.records, records)
	c.refresh()
}

// Records returns the unfiltered collection.
func (c *Controller[R]) Records() []R {
	return c.records
}

// SetQuery changes the filter. The page is clamped into the new range.
func (c *Controller[R]) SetQuery(query string) {
	c.query = query
	c.refresh()
}

// Query returns the current filter text.
func (c *Controller[R]) Query() string {
	return c.query
}

// Filtering reports whether the query narrows the collection.
func (c *Controller[R]) Filtering() bool {
	return strings.TrimSpace(c.query) != ""
}

// SortBy selects column, flipping direction if it is already selected.
func (c *Controller[R]) SortBy(column string) error {
	return c.SetSort(c.sort.Toggle(column))
}

// SetSort replaces the sort descriptor.
func (c *Controller[R]) SetSort(d SortDescriptor) error {
	if err := Validate(c.schema, d); err != nil {
		return err
	}
	c.sort = d
	c.refresh()
	return nil
}

// Sort returns the current sort descriptor.
func (c *Controller[R]) Sort() SortDescriptor {
	return c.sort
}

// SetPage moves to page, clamped into range.
func (c *Controller[R]) SetPage(page int) {
	c.page = ClampPage(page, len(c.visible), c.pageSize)
}

// NextPage advances one page if there is one.
func (c *Controller[R]) NextPage() {
	c.SetPage(c.page + 1)
}

// PrevPage goes back one page if there is one.
func (c *Controller[R]) PrevPage() {
	c.SetPage(c.page - 1)
}

// SetPageSize changes the page size and clamps the page.
func (c *Controller[R]) SetPageSize(size int) error {
	if size <= 0 {
		return ErrPageSize
	}
	c.pageSize = size
	c.SetPage(c.page)
	return nil
}

// Visible returns the filtered and sorted records.
func (c *Controller[R]) Visible() []R {
	return c.visible
}

// Page returns the current slice of Visible.
func (c *Controller[R]) Page() []R {
	return Paginate(c.visible, c.page, c.pageSize)
}

// Info returns page and count figures for display.
func (c *Controller[R]) Info() PageInfo {
	return PageInfo{
		Page:       c.page,
		TotalPages: TotalPages(len(c.visible), c.pageSize),
		PageSize:   c.pageSize,
		Total:      len(c.records),
		Filtered:   len(c.visible),
		Selected:   c.SelectedCount(),
	}
}

// ToggleAll flips the "select all" control against the visible records.
func (c *Controller[R]) ToggleAll() {
	c.selection = c.selection.ToggleAll(c.schema.IDs(c.visible), c.Filtering())
}

// ToggleOne flips the selection of one record.
func (c *Controller[R]) ToggleOne(id string) {
	c.selection = c.selection.ToggleOne(id, c.schema.IDs(c.visible))
}

// IsSelected reports whether the record with id is selected.
func (c *Controller[R]) IsSelected(id string) bool {
	return c.selection.IsSelected(id)
}

// SelectedCount is the selected count shown to the user.
func (c *Controller[R]) SelectedCount() int {
	return c.selection.Count(c.schema.IDs(c.visible))
}

// Selection returns the current selection state.
func (c *Controller[R]) Selection() Selection {
	return c.selection
}

// ClearSelection resets the selection to an empty explicit set.
func (c *Controller[R]) ClearSelection() {
	c.selection = Selection{}
}

// Resolve returns the records a bulk action should operate on.
func (c *Controller[R]) Resolve() []R {
	return Resolve(c.selection, c.records, c.visible, c.schema.ID)
}

func (c *Controller[R]) refresh() {
	filtered := Filter(c.records, c.query, c.schema.Searchable())
	sorted, err := Sort(filtered, c.schema, c.sort)
	if err != nil {
		// SetSort validates, so this only happens if the schema changed
		// underneath; fall back to filter order.
		sorted = filtered
	}
	c.visible = sorted
	c.page = ClampPage(c.page, len(c.visible), c.pageSize)
}
