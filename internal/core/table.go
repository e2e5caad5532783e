package core

import (
	"sync"

	"golang.org/x/text/language"
)

// DefaultPageSize is used when neither the definition nor the caller sets one.
const DefaultPageSize = 10

// MaxPageSize caps user-selected page sizes.
const MaxPageSize = 500

// PageSizeOptions are the sizes offered by the page size selector.
var PageSizeOptions = []int{10, 25, 50, 100}

// TableOptions configures a table instance beyond its definition.
type TableOptions struct {
	PageSize     int          // Overrides the definition's page size when > 0
	Locale       language.Tag // Collation locale; DefaultLocale when zero
	OnResetAll   func()       // Called after Reset completes
	OnClearDates func()       // Called after ClearDates completes
}

// Table is one mounted data table: its rows, columns, filter configuration
// and view state. All methods are safe for concurrent use; every state change
// is applied atomically.
type Table struct {
	info    TableInfo
	columns []Column
	filters FilterConfig
	locale  language.Tag

	onResetAll   func()
	onClearDates func()

	mu       sync.Mutex
	rows     []Row
	defaults ViewState
	state    ViewState
}

// NewTable creates a table over rows with fresh default state.
func NewTable(def TableDefinition, rows []Row, opts TableOptions) *Table {
	columns := def.Columns
	if def.IndexColumn {
		columns = WithIndexColumn(columns)
	}

	pageSize := def.PageSize
	if opts.PageSize > 0 {
		pageSize = opts.PageSize
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	locale := opts.Locale
	if locale == language.Und {
		locale = DefaultLocale
	}

	defaults := ViewState{
		Selects:  make(map[string]string, len(def.Filters.Selects)),
		Page:     1,
		PageSize: pageSize,
	}
	for _, sf := range def.Filters.Selects {
		defaults.Selects[sf.Key] = ""
	}

	return &Table{
		info:         def.Info,
		columns:      columns,
		filters:      def.Filters,
		locale:       locale,
		onResetAll:   opts.OnResetAll,
		onClearDates: opts.OnClearDates,
		rows:         rows,
		defaults:     defaults,
		state:        defaults.Clone(),
	}
}

// WithIndexColumn prepends the synthetic rank column unless one is present.
func WithIndexColumn(columns []Column) []Column {
	for _, c := range columns {
		if c.IsIndex() {
			return columns
		}
	}
	out := make([]Column, 0, len(columns)+1)
	out = append(out, Column{Key: IndexKey, Label: IndexLabel, Type: FieldNumeric, Unsortable: true})
	return append(out, columns...)
}

// Info returns the table's display information.
func (t *Table) Info() TableInfo { return t.info }

// Columns returns the columns including the synthetic index column if any.
func (t *Table) Columns() []Column { return t.columns }

// Filters returns the filter configuration.
func (t *Table) Filters() FilterConfig { return t.filters }

// State returns a snapshot of the current view state.
func (t *Table) State() ViewState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state.Clone()
}

// DefaultState returns the state Reset restores.
func (t *Table) DefaultState() ViewState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.resetState()
}

// SetRows replaces the table's data. View state is kept; a page beyond the
// new range is clamped when the view is derived.
func (t *Table) SetRows(rows []Row) {
	t.mu.Lock()
	t.rows = rows
	t.mu.Unlock()
}

// View derives the visible window for the current state.
func (t *Table) View() View {
	t.mu.Lock()
	rows, state := t.rows, t.state.Clone()
	t.mu.Unlock()
	return Derive(rows, t.columns, t.filters, state, t.locale)
}

// Resolved returns every filtered and sorted row with resolved cells,
// ignoring pagination. Exports are built from this.
func (t *Table) Resolved() []ViewRow {
	t.mu.Lock()
	rows, state := t.rows, t.state.Clone()
	t.mu.Unlock()

	sorted := SortedRows(rows, t.columns, t.filters, state, t.locale)
	out := make([]ViewRow, len(sorted))
	for i, row := range sorted {
		out[i] = ResolveRow(t.columns, row, i)
	}
	return out
}

// SetQuery sets the free-text search and returns to page 1.
func (t *Table) SetQuery(q string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state.Query = q
	t.state.Page = 1
}

// SetSelect chooses an option for a configured select filter; "" clears it.
// Unknown keys are ignored.
func (t *Table) SetSelect(key, value string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.defaults.Selects[key]; !ok {
		return
	}
	t.state.Selects[key] = value
	t.state.Page = 1
}

// SetDateRange sets both date bounds and returns to page 1.
func (t *Table) SetDateRange(from, to string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state.DateFrom = from
	t.state.DateTo = to
	t.state.Page = 1
}

// SetDateFrom sets the lower date bound and returns to page 1.
func (t *Table) SetDateFrom(from string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state.DateFrom = from
	t.state.Page = 1
}

// SetDateTo sets the upper date bound and returns to page 1.
func (t *Table) SetDateTo(to string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state.DateTo = to
	t.state.Page = 1
}

// SetPageSize changes the page size and returns to page 1.
// Non-positive sizes restore the default; sizes above MaxPageSize are capped.
func (t *Table) SetPageSize(size int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if size <= 0 {
		size = t.defaults.PageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	t.state.PageSize = size
	t.state.Page = 1
}

// SetPage moves to page n, clamped to the current page range.
func (t *Table) SetPage(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state.Page = ClampPage(n, t.pageCountLocked())
}

// NextPage advances one page if possible.
func (t *Table) NextPage() {
	t.mu.Lock()
	defer t.mu.Unlock()
	pages := t.pageCountLocked()
	t.state.Page = ClampPage(ClampPage(t.state.Page, pages)+1, pages)
}

// PrevPage goes back one page if possible.
func (t *Table) PrevPage() {
	t.mu.Lock()
	defer t.mu.Unlock()
	pages := t.pageCountLocked()
	t.state.Page = ClampPage(ClampPage(t.state.Page, pages)-1, pages)
}

func (t *Table) pageCountLocked() int {
	n := len(FilterRows(t.rows, t.filters, t.state))
	return PageCount(n, t.state.PageSize)
}

// ToggleSort handles a header click. The active column flips direction;
// any other sortable column becomes active ascending. Clicks on the index
// column, unsortable columns or unknown keys are no-ops. The page is kept.
func (t *Table) ToggleSort(key string) {
	col, ok := t.column(key)
	if !ok || !col.Sortable() {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state.Sort.Key == key {
		if t.state.Sort.Dir == SortAsc {
			t.state.Sort.Dir = SortDesc
		} else {
			t.state.Sort.Dir = SortAsc
		}
		return
	}
	t.state.Sort = SortSpec{Key: key, Dir: SortAsc}
}

func (t *Table) column(key string) (Column, bool) {
	for _, c := range t.columns {
		if c.Key == key {
			return c, true
		}
	}
	return Column{}, false
}

// ClearDates clears both date bounds, returns to page 1 and then calls
// OnClearDates. Other filters are untouched.
func (t *Table) ClearDates() {
	t.mu.Lock()
	t.state.DateFrom = ""
	t.state.DateTo = ""
	t.state.Page = 1
	t.mu.Unlock()

	if t.onClearDates != nil {
		t.onClearDates()
	}
}

// Reset restores query, selects, dates, sort and page to their defaults in
// one update, then calls OnResetAll. The page size is a display preference
// and is kept.
func (t *Table) Reset() {
	t.mu.Lock()
	t.state = t.resetState()
	t.mu.Unlock()

	if t.onResetAll != nil {
		t.onResetAll()
	}
}

func (t *Table) resetState() ViewState {
	s := t.defaults.Clone()
	if t.state.PageSize > 0 {
		s.PageSize = t.state.PageSize
	}
	return s
}
