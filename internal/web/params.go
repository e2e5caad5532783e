package web

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/JonMunkholm/ibportal/internal/core"
)

// applyQuery replays stateless query parameters onto a fresh table:
//
//	q=text  filter[key]=value  from=date  to=date
//	sort=key  dir=asc|desc  size=n  page=n
//
// Filters go first and page last because filter changes reset the page.
func applyQuery(t *core.Table, def core.TableDefinition, q url.Values, maxPageSize int) error {
	if v := q.Get("q"); v != "" {
		t.SetQuery(v)
	}

	for key, values := range q {
		if !strings.HasPrefix(key, "filter[") || !strings.HasSuffix(key, "]") {
			continue
		}
		col := key[len("filter[") : len(key)-1]
		if !hasSelect(def.Filters, col) {
			return fmt.Errorf("unknown column %q", col)
		}
		t.SetSelect(col, values[0])
	}

	if from, to := q.Get("from"), q.Get("to"); from != "" || to != "" {
		if def.Filters.DateKey == "" {
			return fmt.Errorf("unknown column: table %q has no date filter", def.Info.Key)
		}
		if err := checkDates(from, to); err != nil {
			return err
		}
		t.SetDateRange(from, to)
	}

	if key := q.Get("sort"); key != "" {
		col, ok := findColumn(t.Columns(), key)
		if !ok || !col.Sortable() {
			return fmt.Errorf("unknown column %q", key)
		}
		t.ToggleSort(key)
		switch strings.ToLower(q.Get("dir")) {
		case "", string(core.SortAsc):
		case string(core.SortDesc):
			t.ToggleSort(key)
		default:
			return fmt.Errorf("unknown column: invalid sort direction %q", q.Get("dir"))
		}
	}

	if v := q.Get("size"); v != "" {
		size, err := parsePositive(v)
		if err != nil {
			return err
		}
		t.SetPageSize(min(size, maxPageSize))
	}
	if v := q.Get("page"); v != "" {
		page, err := parsePositive(v)
		if err != nil {
			return err
		}
		t.SetPage(page)
	}
	return nil
}

func findColumn(columns []core.Column, key string) (core.Column, bool) {
	for _, c := range columns {
		if c.Key == key {
			return c, true
		}
	}
	return core.Column{}, false
}

// checkDates rejects bounds the table would silently ignore. Empty bounds
// are allowed and clear that side of the range.
func checkDates(bounds ...string) error {
	for _, b := range bounds {
		if b == "" {
			continue
		}
		if _, ok := core.ParseDate(b); !ok {
			return fmt.Errorf("invalid date %q", b)
		}
	}
	return nil
}
