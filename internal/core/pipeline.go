package core

// pipeline.go derives what a table shows from its inputs.
//
// The derivation is pure: given the same rows, columns, filters and view
// state it always yields the same result and never mutates caller data.
//
//  1. text search      (any search key contains the query, case-insensitive)
//  2. select filters   (exact match on the string form)
//  3. date range       (from <= t <= to, unparsable dates excluded)
//  4. sort             (stable; numbers, dates, then numeric-aware collation)
//  5. paginate         (slice the window for the clamped page)
//
// Steps 1-3 are independent predicates combined with AND.

import (
	"strings"
	"time"

	"golang.org/x/text/language"
)

// Cell is one resolved value of a visible row.
type Cell struct {
	Key     string
	Value   any         // Raw field value (rank for the index column)
	Display Displayable // Render output, or the value as Text
	Text    string      // ExtractText(Display), shared with exports
}

// ViewRow is a row of the derived result with its position.
type ViewRow struct {
	Index int // 0-based position in the filtered and sorted set
	Rank  int // Index + 1, the value of the synthetic index column
	Row   Row
	Cells []Cell
}

// View is the derived window a table displays.
type View struct {
	Columns    []Column
	Rows       []ViewRow
	Total      int // Rows passing all filters
	Page       int // Clamped page actually shown
	PageSize   int
	TotalPages int
	From       int // 1-based rank of the first visible row, 0 when empty
	To         int // 1-based rank of the last visible row, 0 when empty
	Sort       SortSpec
	State      ViewState
}

// HasPrev reports whether a previous page exists.
func (v View) HasPrev() bool { return v.Page > 1 }

// HasNext reports whether a next page exists.
func (v View) HasNext() bool { return v.Page < v.TotalPages }

// PageCount returns max(1, ceil(total/size)).
func PageCount(total, size int) int {
	if size <= 0 {
		return 1
	}
	pages := (total + size - 1) / size
	if pages < 1 {
		pages = 1
	}
	return pages
}

// ClampPage moves page into [1, pages].
func ClampPage(page, pages int) int {
	if page > pages {
		page = pages
	}
	if page < 1 {
		page = 1
	}
	return page
}

// dateBounds holds the parsed from/to range. A nil bound is unbounded.
type dateBounds struct {
	from *time.Time
	to   *time.Time
}

func parseBounds(from, to string) dateBounds {
	var b dateBounds
	if t, ok := ParseDate(from); ok {
		b.from = &t
	}
	if t, ok := ParseDate(to); ok {
		b.to = &t
	}
	return b
}

func (b dateBounds) active() bool {
	return b.from != nil || b.to != nil
}

func (b dateBounds) contains(t time.Time) bool {
	if b.from != nil && t.Before(*b.from) {
		return false
	}
	if b.to != nil && t.After(*b.to) {
		return false
	}
	return true
}

// FilterRows applies search, select and date filters. The returned slice is
// new; the rows themselves are shared with the input.
func FilterRows(rows []Row, filters FilterConfig, state ViewState) []Row {
	query := strings.ToLower(strings.TrimSpace(state.Query))

	var bounds dateBounds
	if filters.DateKey != "" {
		bounds = parseBounds(state.DateFrom, state.DateTo)
	}

	out := make([]Row, 0, len(rows))
	for _, row := range rows {
		if query != "" && !matchesSearch(row, filters.SearchKeys, query) {
			continue
		}
		if !matchesSelects(row, filters.Selects, state.Selects) {
			continue
		}
		if bounds.active() && !matchesDates(row, filters.DateKey, bounds) {
			continue
		}
		out = append(out, row)
	}
	return out
}

func matchesSearch(row Row, keys []string, query string) bool {
	if len(keys) == 0 {
		for _, v := range row {
			if strings.Contains(strings.ToLower(Stringify(v)), query) {
				return true
			}
		}
		return false
	}
	for _, k := range keys {
		if strings.Contains(strings.ToLower(Stringify(row[k])), query) {
			return true
		}
	}
	return false
}

func matchesSelects(row Row, selects []SelectFilter, chosen map[string]string) bool {
	for _, sf := range selects {
		want := chosen[sf.Key]
		if want == "" {
			continue
		}
		if Stringify(row[sf.Key]) != want {
			return false
		}
	}
	return true
}

func matchesDates(row Row, key string, bounds dateBounds) bool {
	t, ok := ToTime(row[key])
	if !ok {
		return false
	}
	return bounds.contains(t)
}

// SortedRows filters rows and applies the active sort. This is the set every
// export works on.
func SortedRows(rows []Row, columns []Column, filters FilterConfig, state ViewState, locale language.Tag) []Row {
	filtered := FilterRows(rows, filters, state)
	if state.Sort.Active() {
		sortRows(filtered, state.Sort, columnType(columns, state.Sort.Key), locale)
	}
	return filtered
}

func columnType(columns []Column, key string) FieldType {
	for _, c := range columns {
		if c.Key == key {
			return c.Type
		}
	}
	return FieldText
}

// ResolveCell renders one cell the way both the table and exports see it.
func ResolveCell(col Column, row Row, index int) Cell {
	var value any
	if col.IsIndex() {
		value = index + 1
	} else {
		value = row[col.Key]
	}

	var display Displayable
	if col.Render != nil {
		display = col.Render(value, row, index)
	} else {
		display = Text(Stringify(value))
	}

	return Cell{
		Key:     col.Key,
		Value:   value,
		Display: display,
		Text:    ExtractText(display),
	}
}

// ResolveRow resolves every column of row.
func ResolveRow(columns []Column, row Row, index int) ViewRow {
	cells := make([]Cell, len(columns))
	for i, col := range columns {
		cells[i] = ResolveCell(col, row, index)
	}
	return ViewRow{Index: index, Rank: index + 1, Row: row, Cells: cells}
}

// Derive runs the whole pipeline and returns the visible window.
func Derive(rows []Row, columns []Column, filters FilterConfig, state ViewState, locale language.Tag) View {
	sorted := SortedRows(rows, columns, filters, state, locale)

	size := state.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}
	total := len(sorted)
	pages := PageCount(total, size)
	page := ClampPage(state.Page, pages)

	start := (page - 1) * size
	end := start + size
	if end > total {
		end = total
	}

	visible := make([]ViewRow, 0, end-start)
	for i := start; i < end; i++ {
		visible = append(visible, ResolveRow(columns, sorted[i], i))
	}

	v := View{
		Columns:    columns,
		Rows:       visible,
		Total:      total,
		Page:       page,
		PageSize:   size,
		TotalPages: pages,
		Sort:       state.Sort,
		State:      state.Clone(),
	}
	if end > start {
		v.From = start + 1
		v.To = end
	}
	return v
}
