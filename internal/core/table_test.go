package core

import (
	"fmt"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func newExampleTable(opts TableOptions) *Table {
	def := TableDefinition{
		Info:    TableInfo{Key: "example", Label: "Example"},
		Columns: exampleColumns(),
		Filters: FilterConfig{
			Selects: []SelectFilter{{Key: "name", Label: "Name", Options: []string{"Ann", "Bob"}}},
			DateKey: "date",
		},
		PageSize: 10,
	}
	return NewTable(def, exampleRows(), opts)
}

func manyRows(n int) []Row {
	rows := make([]Row, n)
	for i := range rows {
		rows[i] = Row{"name": fmt.Sprintf("row-%03d", i), "amount": i, "date": "2024-01-01"}
	}
	return rows
}

func TestTable_ExampleScenario(t *testing.T) {
	tbl := newExampleTable(TableOptions{})

	tbl.SetQuery("an")
	if diff := cmp.Diff([]string{"Ann"}, viewNames(tbl.View())); diff != "" {
		t.Errorf("query (-want +got):\n%s", diff)
	}

	tbl.SetQuery("")
	tbl.ToggleSort("amount")
	if diff := cmp.Diff([]string{"Bob", "Ann"}, viewNames(tbl.View())); diff != "" {
		t.Errorf("ascending (-want +got):\n%s", diff)
	}

	tbl.ToggleSort("amount")
	if diff := cmp.Diff([]string{"Ann", "Bob"}, viewNames(tbl.View())); diff != "" {
		t.Errorf("descending (-want +got):\n%s", diff)
	}

	tbl.Reset()
	tbl.SetDateFrom("2024-02-01")
	if diff := cmp.Diff([]string{"Ann"}, viewNames(tbl.View())); diff != "" {
		t.Errorf("date from (-want +got):\n%s", diff)
	}
}

func TestTable_ToggleSort(t *testing.T) {
	tbl := NewTable(TableDefinition{
		Columns: []Column{
			{Key: "name", Label: "Name"},
			{Key: "amount", Label: "Amount"},
			{Key: "note", Label: "Note", Unsortable: true},
		},
		IndexColumn: true,
	}, exampleRows(), TableOptions{})

	steps := []struct {
		key  string
		want SortSpec
	}{
		{"amount", SortSpec{Key: "amount", Dir: SortAsc}},
		{"amount", SortSpec{Key: "amount", Dir: SortDesc}},
		{"amount", SortSpec{Key: "amount", Dir: SortAsc}},
		{"amount", SortSpec{Key: "amount", Dir: SortDesc}},
		{"name", SortSpec{Key: "name", Dir: SortAsc}},
		{IndexKey, SortSpec{Key: "name", Dir: SortAsc}},
		{"note", SortSpec{Key: "name", Dir: SortAsc}},
		{"does_not_exist", SortSpec{Key: "name", Dir: SortAsc}},
	}

	for i, step := range steps {
		tbl.ToggleSort(step.key)
		if got := tbl.State().Sort; got != step.want {
			t.Errorf("step %d toggle %q: sort = %+v, want %+v", i, step.key, got, step.want)
		}
	}
}

func TestTable_SortKeepsPage(t *testing.T) {
	def := TableDefinition{Columns: []Column{{Key: "name"}, {Key: "amount"}}, PageSize: 10}
	tbl := NewTable(def, manyRows(30), TableOptions{})

	tbl.SetPage(3)
	tbl.ToggleSort("amount")
	if got := tbl.State().Page; got != 3 {
		t.Errorf("page after sort = %d, want 3", got)
	}
}

func TestTable_FilterChangesResetPage(t *testing.T) {
	def := TableDefinition{
		Columns: []Column{{Key: "name"}, {Key: "amount"}, {Key: "date"}},
		Filters: FilterConfig{
			Selects: []SelectFilter{{Key: "name", Options: []string{"row-001"}}},
			DateKey: "date",
		},
		PageSize: 10,
	}

	changes := map[string]func(*Table){
		"query":     func(tb *Table) { tb.SetQuery("row") },
		"select":    func(tb *Table) { tb.SetSelect("name", "") },
		"date from": func(tb *Table) { tb.SetDateFrom("2023-01-01") },
		"date to":   func(tb *Table) { tb.SetDateTo("2025-01-01") },
		"range":     func(tb *Table) { tb.SetDateRange("2023-01-01", "2025-01-01") },
		"page size": func(tb *Table) { tb.SetPageSize(5) },
		"clear":     func(tb *Table) { tb.ClearDates() },
	}

	for name, change := range changes {
		t.Run(name, func(t *testing.T) {
			tbl := NewTable(def, manyRows(50), TableOptions{})
			tbl.SetPage(4)
			if got := tbl.State().Page; got != 4 {
				t.Fatalf("setup page = %d, want 4", got)
			}
			change(tbl)
			if got := tbl.State().Page; got != 1 {
				t.Errorf("page after %s = %d, want 1", name, got)
			}
		})
	}
}

func TestTable_SetPageClamps(t *testing.T) {
	tbl := NewTable(TableDefinition{Columns: []Column{{Key: "name"}}, PageSize: 10}, manyRows(25), TableOptions{})

	tbl.SetPage(99)
	if got := tbl.State().Page; got != 3 {
		t.Errorf("SetPage(99) stored %d, want 3", got)
	}
	tbl.SetPage(-2)
	if got := tbl.State().Page; got != 1 {
		t.Errorf("SetPage(-2) stored %d, want 1", got)
	}

	tbl.NextPage()
	tbl.NextPage()
	tbl.NextPage()
	if got := tbl.State().Page; got != 3 {
		t.Errorf("NextPage past end = %d, want 3", got)
	}
	tbl.PrevPage()
	if got := tbl.State().Page; got != 2 {
		t.Errorf("PrevPage = %d, want 2", got)
	}
}

func TestTable_StalePageClampedOnView(t *testing.T) {
	tbl := NewTable(TableDefinition{Columns: []Column{{Key: "name"}}, PageSize: 10}, manyRows(40), TableOptions{})
	tbl.SetPage(4)

	tbl.SetRows(manyRows(12))
	v := tbl.View()
	if v.Page != 2 || v.TotalPages != 2 {
		t.Errorf("view page/pages = %d/%d, want 2/2", v.Page, v.TotalPages)
	}
	if len(v.Rows) != 2 {
		t.Errorf("visible rows = %d, want 2", len(v.Rows))
	}
}

func TestTable_IndexColumnIsAbsoluteRank(t *testing.T) {
	def := TableDefinition{
		Columns:     []Column{{Key: "name"}, {Key: "amount", Type: FieldNumeric}},
		PageSize:    4,
		IndexColumn: true,
	}
	tbl := NewTable(def, manyRows(10), TableOptions{})
	tbl.ToggleSort("amount")
	tbl.ToggleSort("amount") // descending: row-009 first
	tbl.SetPage(2)

	v := tbl.View()
	if v.Columns[0].Key != IndexKey {
		t.Fatalf("first column = %q, want index column", v.Columns[0].Key)
	}
	for i, r := range v.Rows {
		wantRank := 5 + i
		if got := r.Cells[0].Text; got != fmt.Sprint(wantRank) {
			t.Errorf("row %d index cell = %q, want %d", i, got, wantRank)
		}
		wantName := fmt.Sprintf("row-%03d", 10-wantRank)
		if got := r.Cells[1].Text; got != wantName {
			t.Errorf("row %d name = %q, want %q", i, got, wantName)
		}
	}
}

func TestTable_IndexColumnNotDuplicated(t *testing.T) {
	def := TableDefinition{
		Columns:     []Column{{Key: "name"}, {Key: IndexKey, Label: "No."}},
		IndexColumn: true,
	}
	tbl := NewTable(def, nil, TableOptions{})

	cols := tbl.Columns()
	if len(cols) != 2 || cols[1].Label != "No." {
		t.Errorf("columns = %+v, want caller's index column kept in place", cols)
	}
}

func TestTable_Reset(t *testing.T) {
	calls := 0
	tbl := newExampleTable(TableOptions{OnResetAll: func() { calls++ }})
	want := tbl.DefaultState()

	tbl.SetQuery("ann")
	tbl.SetSelect("name", "Ann")
	tbl.SetDateRange("2024-01-01", "2024-12-31")
	tbl.ToggleSort("amount")
	tbl.SetPage(1)

	tbl.Reset()
	if diff := cmp.Diff(want, tbl.State()); diff != "" {
		t.Errorf("state after reset (-want +got):\n%s", diff)
	}
	if calls != 1 {
		t.Errorf("OnResetAll called %d times, want 1", calls)
	}
	if want.Query != "" || want.Sort.Active() || want.Page != 1 || want.Selects["name"] != "" {
		t.Errorf("default state is not empty: %+v", want)
	}
}

func TestTable_ResetKeepsPageSize(t *testing.T) {
	tbl := newExampleTable(TableOptions{})
	tbl.SetPageSize(50)
	tbl.Reset()
	if got := tbl.State().PageSize; got != 50 {
		t.Errorf("PageSize after reset = %d, want 50", got)
	}
}

func TestTable_ClearDates(t *testing.T) {
	calls := 0
	tbl := newExampleTable(TableOptions{OnClearDates: func() { calls++ }})

	tbl.SetQuery("a")
	tbl.SetSelect("name", "Ann")
	tbl.SetDateRange("2024-01-01", "2024-02-01")
	tbl.ToggleSort("name")
	tbl.ClearDates()

	s := tbl.State()
	if s.DateFrom != "" || s.DateTo != "" {
		t.Errorf("dates not cleared: %q..%q", s.DateFrom, s.DateTo)
	}
	if s.Query != "a" || s.Selects["name"] != "Ann" || s.Sort.Key != "name" {
		t.Errorf("other state changed: %+v", s)
	}
	if calls != 1 {
		t.Errorf("OnClearDates called %d times, want 1", calls)
	}
}

func TestTable_SetSelectUnknownKey(t *testing.T) {
	tbl := newExampleTable(TableOptions{})
	tbl.SetSelect("nope", "x")
	if _, ok := tbl.State().Selects["nope"]; ok {
		t.Error("unknown select key was stored")
	}
}

func TestTable_SetPageSizeBounds(t *testing.T) {
	tbl := newExampleTable(TableOptions{PageSize: 25})

	tbl.SetPageSize(0)
	if got := tbl.State().PageSize; got != 25 {
		t.Errorf("SetPageSize(0) = %d, want default 25", got)
	}
	tbl.SetPageSize(MaxPageSize + 1)
	if got := tbl.State().PageSize; got != MaxPageSize {
		t.Errorf("SetPageSize(max+1) = %d, want %d", got, MaxPageSize)
	}
}

func TestTable_StateSnapshotIsolated(t *testing.T) {
	tbl := newExampleTable(TableOptions{})
	s := tbl.State()
	s.Selects["name"] = "Bob"

	if got := tbl.State().Selects["name"]; got != "" {
		t.Errorf("mutating a snapshot leaked into the table: %q", got)
	}
}

func TestTable_Resolved(t *testing.T) {
	def := TableDefinition{Columns: []Column{{Key: "name"}, {Key: "amount"}}, PageSize: 2, IndexColumn: true}
	tbl := NewTable(def, manyRows(5), TableOptions{})
	tbl.SetQuery("row-00")
	tbl.SetPage(2)

	rows := tbl.Resolved()
	if len(rows) != 5 {
		t.Fatalf("Resolved returned %d rows, want all 5 regardless of page", len(rows))
	}
	for i, r := range rows {
		if r.Rank != i+1 || r.Cells[0].Text != fmt.Sprint(i+1) {
			t.Errorf("row %d rank = %d (%q)", i, r.Rank, r.Cells[0].Text)
		}
	}
}

func TestTable_ConcurrentUse(t *testing.T) {
	tbl := NewTable(TableDefinition{Columns: []Column{{Key: "name"}, {Key: "amount"}}}, manyRows(100), TableOptions{})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				switch j % 4 {
				case 0:
					tbl.SetQuery(fmt.Sprint(i))
				case 1:
					tbl.ToggleSort("amount")
				case 2:
					tbl.NextPage()
				default:
					_ = tbl.View()
				}
			}
		}(i)
	}
	wg.Wait()

	if p := tbl.View().Page; p < 1 {
		t.Errorf("page = %d after concurrent use", p)
	}
}
