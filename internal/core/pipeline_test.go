package core

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/text/language"
)

func exampleRows() []Row {
	return []Row{
		{"name": "Bob", "amount": 5, "date": "2024-01-10"},
		{"name": "Ann", "amount": 12, "date": "2024-03-01"},
	}
}

func exampleColumns() []Column {
	return []Column{
		{Key: "name", Label: "Name"},
		{Key: "amount", Label: "Amount", Type: FieldNumeric},
		{Key: "date", Label: "Date", Type: FieldDate},
	}
}

func names(rows []Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = Stringify(r["name"])
	}
	return out
}

func viewNames(v View) []string {
	out := make([]string, len(v.Rows))
	for i, r := range v.Rows {
		out[i] = Stringify(r.Row["name"])
	}
	return out
}

func TestFilterRows_ExampleScenario(t *testing.T) {
	filters := FilterConfig{DateKey: "date"}

	tests := []struct {
		name  string
		state ViewState
		want  []string
	}{
		{"no filters", ViewState{}, []string{"Bob", "Ann"}},
		{"query an", ViewState{Query: "an"}, []string{"Ann"}},
		{"query is trimmed and case-insensitive", ViewState{Query: "  BO "}, []string{"Bob"}},
		{"whitespace query matches all", ViewState{Query: "   "}, []string{"Bob", "Ann"}},
		{"from bound", ViewState{DateFrom: "2024-02-01"}, []string{"Ann"}},
		{"to bound", ViewState{DateTo: "2024-02-01"}, []string{"Bob"}},
		{"inclusive bounds", ViewState{DateFrom: "2024-01-10", DateTo: "2024-03-01"}, []string{"Bob", "Ann"}},
		{"empty range", ViewState{DateFrom: "2024-04-01", DateTo: "2024-05-01"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := names(FilterRows(exampleRows(), filters, tt.state))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("FilterRows mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFilterRows_SearchKeys(t *testing.T) {
	rows := []Row{
		{"name": "Alice", "note": "vip"},
		{"name": "Victor", "note": "regular"},
	}

	got := names(FilterRows(rows, FilterConfig{SearchKeys: []string{"name"}}, ViewState{Query: "vi"}))
	if diff := cmp.Diff([]string{"Victor"}, got); diff != "" {
		t.Errorf("search keys not honoured (-want +got):\n%s", diff)
	}

	got = names(FilterRows(rows, FilterConfig{}, ViewState{Query: "vi"}))
	if diff := cmp.Diff([]string{"Alice", "Victor"}, got); diff != "" {
		t.Errorf("default search should cover every key (-want +got):\n%s", diff)
	}
}

func TestFilterRows_NilIsEmptyString(t *testing.T) {
	rows := []Row{{"name": "Zed", "note": nil}}

	for _, q := range []string{"null", "nil", "undefined", "<nil>"} {
		if got := FilterRows(rows, FilterConfig{}, ViewState{Query: q}); len(got) != 0 {
			t.Errorf("query %q matched a nil field", q)
		}
	}
}

func TestFilterRows_SelectsExactMatch(t *testing.T) {
	rows := []Row{
		{"name": "A", "status": "Paid", "tier": 1},
		{"name": "B", "status": "paid", "tier": 2},
		{"name": "C", "status": "Pending", "tier": 1},
	}
	filters := FilterConfig{Selects: []SelectFilter{
		{Key: "status", Options: []string{"Paid", "Pending"}},
		{Key: "tier", Options: []string{"1", "2"}},
	}}

	tests := []struct {
		name    string
		selects map[string]string
		want    []string
	}{
		{"unset selects keep all", map[string]string{"status": "", "tier": ""}, []string{"A", "B", "C"}},
		{"case-sensitive", map[string]string{"status": "Paid"}, []string{"A"}},
		{"numbers compare by string form", map[string]string{"tier": "1"}, []string{"A", "C"}},
		{"selects combine with AND", map[string]string{"status": "Pending", "tier": "1"}, []string{"C"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := names(FilterRows(rows, filters, ViewState{Selects: tt.selects}))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("selects mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFilterRows_UnparsableDatesExcluded(t *testing.T) {
	rows := []Row{
		{"name": "good", "date": "2024-02-10"},
		{"name": "bad", "date": "not a date"},
		{"name": "missing"},
	}
	filters := FilterConfig{DateKey: "date"}

	got := names(FilterRows(rows, filters, ViewState{DateFrom: "2024-01-01"}))
	if diff := cmp.Diff([]string{"good"}, got); diff != "" {
		t.Errorf("bounded view (-want +got):\n%s", diff)
	}

	// Without bounds the date filter is inactive.
	if got := FilterRows(rows, filters, ViewState{}); len(got) != 3 {
		t.Errorf("unbounded view returned %d rows, want 3", len(got))
	}
}

// Date-only bounds are midnight UTC, so a to bound drops timestamps later
// that same day.
func TestFilterRows_DateOnlyBoundsAgainstTimestamps(t *testing.T) {
	rows := []Row{
		{"name": "midnight", "date": "2024-05-10T00:00:00Z"},
		{"name": "afternoon", "date": "2024-05-10T15:30:00Z"},
		{"name": "next day", "date": "2024-05-11T08:00:00Z"},
	}
	filters := FilterConfig{DateKey: "date"}

	tests := []struct {
		name  string
		state ViewState
		want  []string
	}{
		{"to is the start of the day", ViewState{DateTo: "2024-05-10"}, []string{"midnight"}},
		{"to the next day covers the whole day", ViewState{DateTo: "2024-05-11"}, []string{"midnight", "afternoon"}},
		{"from includes the whole day", ViewState{DateFrom: "2024-05-10"}, []string{"midnight", "afternoon", "next day"}},
	}
	for _, tt := range tests {
		got := names(FilterRows(rows, filters, tt.state))
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("%s (-want +got):\n%s", tt.name, diff)
		}
	}
}

func TestFilterRows_DateFilterNeedsDateKey(t *testing.T) {
	got := FilterRows(exampleRows(), FilterConfig{}, ViewState{DateFrom: "2030-01-01"})
	if len(got) != 2 {
		t.Errorf("date bounds without a DateKey filtered rows: got %d", len(got))
	}
}

// A row is kept iff it passes every predicate on its own.
func TestFilterRows_Composition(t *testing.T) {
	var rows []Row
	statuses := []string{"Paid", "Pending", "Rejected"}
	for i := 0; i < 60; i++ {
		rows = append(rows, Row{
			"name":   fmt.Sprintf("client-%02d", i),
			"status": statuses[i%3],
			"date":   fmt.Sprintf("2024-%02d-%02d", i%12+1, i%28+1),
		})
	}
	filters := FilterConfig{
		SearchKeys: []string{"name"},
		Selects:    []SelectFilter{{Key: "status", Options: statuses}},
		DateKey:    "date",
	}

	states := []ViewState{
		{Query: "1"},
		{Selects: map[string]string{"status": "Paid"}},
		{DateFrom: "2024-03-01", DateTo: "2024-08-31"},
		{Query: "2", Selects: map[string]string{"status": "Pending"}, DateFrom: "2024-05-01"},
	}

	for i, state := range states {
		got := FilterRows(rows, filters, state)
		kept := make(map[string]bool, len(got))
		for _, r := range got {
			kept[Stringify(r["name"])] = true
		}

		for _, r := range rows {
			search := FilterRows([]Row{r}, filters, ViewState{Query: state.Query})
			sel := FilterRows([]Row{r}, filters, ViewState{Selects: state.Selects})
			date := FilterRows([]Row{r}, filters, ViewState{DateFrom: state.DateFrom, DateTo: state.DateTo})
			want := len(search) == 1 && len(sel) == 1 && len(date) == 1
			if kept[Stringify(r["name"])] != want {
				t.Errorf("state %d: row %v kept=%v, want %v", i, r["name"], !want, want)
			}
		}
	}
}

func TestSortedRows(t *testing.T) {
	cols := exampleColumns()

	asc := SortedRows(exampleRows(), cols, FilterConfig{}, ViewState{Sort: SortSpec{Key: "amount", Dir: SortAsc}}, language.English)
	if diff := cmp.Diff([]string{"Bob", "Ann"}, names(asc)); diff != "" {
		t.Errorf("ascending (-want +got):\n%s", diff)
	}

	desc := SortedRows(exampleRows(), cols, FilterConfig{}, ViewState{Sort: SortSpec{Key: "amount", Dir: SortDesc}}, language.English)
	if diff := cmp.Diff([]string{"Ann", "Bob"}, names(desc)); diff != "" {
		t.Errorf("descending (-want +got):\n%s", diff)
	}
}

func TestSortedRows_DoesNotMutateInput(t *testing.T) {
	rows := exampleRows()
	rows[0], rows[1] = rows[1], rows[0] // Ann, Bob

	SortedRows(rows, exampleColumns(), FilterConfig{}, ViewState{Sort: SortSpec{Key: "name", Dir: SortDesc}}, language.English)
	if diff := cmp.Diff([]string{"Ann", "Bob"}, names(rows)); diff != "" {
		t.Errorf("input order changed (-want +got):\n%s", diff)
	}
}

func TestSortRows_Comparisons(t *testing.T) {
	tests := []struct {
		name   string
		ft     FieldType
		values []any
		want   []string
	}{
		{
			name:   "numeric-aware collation",
			values: []any{"10", "2", "1"},
			want:   []string{"1", "2", "10"},
		},
		{
			name:   "native numbers",
			ft:     FieldNumeric,
			values: []any{12.5, 3, int64(-1)},
			want:   []string{"-1", "3", "12.5"},
		},
		{
			name:   "case-insensitive locale order",
			values: []any{"banana", "Apple", "cherry"},
			want:   []string{"Apple", "banana", "cherry"},
		},
		{
			name:   "date columns sort chronologically",
			ft:     FieldDate,
			values: []any{"01/15/2024", "2023-12-31", "2024-01-02"},
			want:   []string{"2023-12-31", "2024-01-02", "01/15/2024"},
		},
		{
			name:   "mixed number and string collate",
			values: []any{"10", 5},
			want:   []string{"5", "10"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := make([]Row, len(tt.values))
			for i, v := range tt.values {
				rows[i] = Row{"v": v}
			}
			sortRows(rows, SortSpec{Key: "v", Dir: SortAsc}, tt.ft, language.English)

			got := make([]string, len(rows))
			for i, r := range rows {
				got[i] = Stringify(r["v"])
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("sort order (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSortRows_StableTies(t *testing.T) {
	rows := []Row{
		{"name": "first", "tier": 1},
		{"name": "second", "tier": 1},
		{"name": "third", "tier": 0},
	}

	sortRows(rows, SortSpec{Key: "tier", Dir: SortDesc}, FieldNumeric, language.English)
	if diff := cmp.Diff([]string{"first", "second", "third"}, names(rows)); diff != "" {
		t.Errorf("ties reordered (-want +got):\n%s", diff)
	}
}

func TestPageCount(t *testing.T) {
	tests := []struct {
		total, size, want int
	}{
		{0, 10, 1},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{25, 25, 1},
		{26, 25, 2},
		{5, 0, 1},
	}
	for _, tt := range tests {
		if got := PageCount(tt.total, tt.size); got != tt.want {
			t.Errorf("PageCount(%d, %d) = %d, want %d", tt.total, tt.size, got, tt.want)
		}
	}
}

func TestDerive_PaginationAndClamp(t *testing.T) {
	var rows []Row
	for i := 1; i <= 23; i++ {
		rows = append(rows, Row{"name": fmt.Sprintf("r%02d", i)})
	}
	cols := []Column{{Key: "name", Label: "Name"}}

	tests := []struct {
		name     string
		page     int
		wantPage int
		wantFrom int
		wantTo   int
	}{
		{"first page", 1, 1, 1, 10},
		{"last partial page", 3, 3, 21, 23},
		{"stale page clamps down", 9, 3, 21, 23},
		{"zero clamps up", 0, 1, 1, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Derive(rows, cols, FilterConfig{}, ViewState{Page: tt.page, PageSize: 10}, language.English)
			if v.TotalPages != 3 {
				t.Errorf("TotalPages = %d, want 3", v.TotalPages)
			}
			if v.Page != tt.wantPage || v.From != tt.wantFrom || v.To != tt.wantTo {
				t.Errorf("page/from/to = %d/%d/%d, want %d/%d/%d",
					v.Page, v.From, v.To, tt.wantPage, tt.wantFrom, tt.wantTo)
			}
			if len(v.Rows) != tt.wantTo-tt.wantFrom+1 {
				t.Errorf("len(Rows) = %d", len(v.Rows))
			}
		})
	}
}

func TestDerive_Empty(t *testing.T) {
	v := Derive(nil, exampleColumns(), FilterConfig{}, ViewState{Page: 4, PageSize: 10}, language.English)
	if v.Total != 0 || v.TotalPages != 1 || v.Page != 1 || v.From != 0 || v.To != 0 {
		t.Errorf("empty view = %+v", v)
	}
	if v.HasPrev() || v.HasNext() {
		t.Error("empty view should have no neighbours")
	}
}

func TestResolveCell(t *testing.T) {
	row := Row{"name": "Ann", "amount": 12, "missing": nil}

	tests := []struct {
		name  string
		col   Column
		index int
		want  string
	}{
		{"plain value", Column{Key: "name"}, 0, "Ann"},
		{"number", Column{Key: "amount"}, 0, "12"},
		{"nil", Column{Key: "missing"}, 0, ""},
		{"index column is rank", Column{Key: IndexKey}, 41, "42"},
		{
			"render tree is flattened",
			Column{Key: "amount", Render: func(v any, r Row, _ int) Displayable {
				return El("span", "badge", Text("$"), El("b", "", Number(12)), Text(" "+Stringify(r["name"])))
			}},
			0,
			"$12 Ann",
		},
		{
			"render receives absolute index",
			Column{Key: "name", Render: func(_ any, _ Row, i int) Displayable { return Number(i) }},
			7,
			"7",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveCell(tt.col, row, tt.index).Text; got != tt.want {
				t.Errorf("ResolveCell().Text = %q, want %q", got, tt.want)
			}
		})
	}
}
