package core

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// DefaultLocale is used for string collation when a table has none set.
var DefaultLocale = language.English

// comparator orders cell values for one sort pass.
// A collate.Collator keeps scratch buffers, so each pass gets its own.
type comparator struct {
	col      *collate.Collator
	dateSort bool
}

func newComparator(locale language.Tag, ft FieldType) *comparator {
	return &comparator{
		col:      collate.New(locale, collate.Numeric, collate.IgnoreWidth),
		dateSort: ft == FieldDate,
	}
}

// compare returns <0, 0 or >0. Native numbers compare numerically, date
// columns chronologically when both sides parse, everything else by
// numeric-aware collation of the string forms.
func (c *comparator) compare(a, b any) int {
	if fa, ok := ToNumber(a); ok {
		if fb, ok := ToNumber(b); ok {
			switch {
			case fa < fb:
				return -1
			case fa > fb:
				return 1
			default:
				return 0
			}
		}
	}

	if c.dateSort {
		if ta, ok := ToTime(a); ok {
			if tb, ok := ToTime(b); ok {
				return ta.Compare(tb)
			}
		}
	}

	return c.col.CompareString(Stringify(a), Stringify(b))
}

// sortRows orders rows in place by spec. The sort is stable so equal keys
// keep their input order and the result is deterministic.
func sortRows(rows []Row, spec SortSpec, ft FieldType, locale language.Tag) {
	if !spec.Active() || len(rows) < 2 {
		return
	}

	cmp := newComparator(locale, ft)
	desc := spec.Dir == SortDesc

	sort.SliceStable(rows, func(i, j int) bool {
		r := cmp.compare(rows[i][spec.Key], rows[j][spec.Key])
		if desc {
			return r > 0
		}
		return r < 0
	})
}
