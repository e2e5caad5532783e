package templates

import (
	"context"
	"fmt"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/ibportal/internal/core"
)

// ExportLink is one export button.
type ExportLink struct {
	Label  string
	Format string
	Href   string
}

// TableParams is everything a table view renders.
type TableParams struct {
	SessionID         string
	Info              core.TableInfo
	Filters           core.FilterConfig
	View              core.View
	SearchPlaceholder string
	PageSizes         []int
	Exports           []ExportLink
}

func (p TableParams) base() string { return "/view/" + p.SessionID }

func (p TableParams) containerID() string { return "table-" + p.SessionID }

func (p TableParams) resultsID() string { return "results-" + p.SessionID }

// TablePage is a full page holding one table view.
func TablePage(p TableParams) templ.Component {
	return Layout(p.Info.Label, component(func(ctx context.Context, h *htmlWriter) {
		h.raw("<h1>")
		h.text(p.Info.Label)
		h.raw("</h1>")
		h.component(ctx, TableView(p))
	}))
}

// TableView renders the toolbar and results. Reset and clear-dates swap it
// whole so the inputs show the restored state.
func TableView(p TableParams) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<div class="table-view"`)
		h.attr("id", p.containerID())
		h.raw(">")
		h.component(ctx, Toolbar(p))
		h.component(ctx, Results(p))
		h.raw("</div>")
	})
}

func (p TableParams) hxResults(h *htmlWriter, path string) {
	h.attr("hx-post", p.base()+path)
	h.attr("hx-target", "#"+p.resultsID())
	h.attr("hx-swap", "outerHTML")
}

func (p TableParams) hxContainer(h *htmlWriter, path string) {
	h.attr("hx-post", p.base()+path)
	h.attr("hx-target", "#"+p.containerID())
	h.attr("hx-swap", "outerHTML")
}

// Toolbar renders the filter controls and export links.
func Toolbar(p TableParams) templ.Component {
	return component(func(_ context.Context, h *htmlWriter) {
		writeToolbar(h, p)
	})
}

func writeToolbar(h *htmlWriter, p TableParams) {
	state := p.View.State
	h.raw(`<div class="toolbar">`)

	// Tables without SearchKeys search every row key, so the box is always shown.
	placeholder := p.SearchPlaceholder
	if placeholder == "" {
		placeholder = "Search"
	}
	h.raw(`<input type="search" name="q"`)
	h.attr("value", state.Query)
	h.attr("placeholder", placeholder)
	h.attr("hx-trigger", "input changed delay:300ms, search")
	p.hxResults(h, "/search")
	h.raw(">")

	for _, sf := range p.Filters.Selects {
		h.raw(`<form class="select-filter"`)
		h.attr("hx-trigger", "change")
		p.hxResults(h, "/select")
		h.raw(`><input type="hidden" name="key"`)
		h.attr("value", sf.Key)
		h.raw(`><label>`)
		h.text(sf.Label)
		h.raw(` <select name="value"><option value="">All</option>`)
		for _, opt := range sf.Options {
			h.raw("<option")
			h.attr("value", opt)
			if state.Selects[sf.Key] == opt {
				h.raw(" selected")
			}
			h.raw(">")
			h.text(opt)
			h.raw("</option>")
		}
		h.raw("</select></label></form>")
	}

	if p.Filters.DateKey != "" {
		h.raw(`<form class="date-filter"`)
		h.attr("hx-trigger", "change")
		p.hxResults(h, "/dates")
		h.raw(`><label>From <input type="date" name="from"`)
		h.attr("value", state.DateFrom)
		h.raw(`></label><label>To <input type="date" name="to"`)
		h.attr("value", state.DateTo)
		h.raw(`></label></form><button type="button"`)
		p.hxContainer(h, "/dates/clear")
		h.raw(`>Clear dates</button>`)
	}

	h.raw(`<button type="button" class="reset"`)
	p.hxContainer(h, "/reset")
	h.raw(`>Reset</button>`)

	h.raw(`<span class="exports">`)
	for _, e := range p.Exports {
		h.raw(`<a class="export" data-export`)
		h.attr("data-format", e.Format)
		h.attr("href", e.Href)
		h.raw(">")
		h.text(e.Label)
		h.raw("</a>")
	}
	h.raw("</span></div>")
}

// Results renders the table body, the range summary and the pager.
func Results(p TableParams) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		v := p.View
		h.raw(`<div class="results"`)
		h.attr("id", p.resultsID())
		h.raw(`><table class="data"><thead><tr>`)
		for _, col := range v.Columns {
			writeHeader(h, p, col)
		}
		h.raw("</tr></thead><tbody>")

		if len(v.Rows) == 0 {
			h.raw("<tr><td class=\"empty\"")
			h.attr("colspan", itoa(max(len(v.Columns), 1)))
			h.raw(">No matching rows</td></tr>")
		}
		for _, row := range v.Rows {
			h.raw("<tr>")
			for _, cell := range row.Cells {
				h.raw("<td")
				if cell.Key == core.IndexKey {
					h.attr("class", "index")
				}
				h.raw(">")
				h.component(ctx, Display(cell.Display))
				h.raw("</td>")
			}
			h.raw("</tr>")
		}
		h.raw("</tbody></table>")
		h.component(ctx, Pager(p))
		h.raw("</div>")
	})
}

func writeHeader(h *htmlWriter, p TableParams, col core.Column) {
	h.raw("<th")
	if !col.Sortable() {
		h.raw(">")
		h.text(col.Label)
		h.raw("</th>")
		return
	}

	dir := ""
	if p.View.Sort.Key == col.Key {
		dir = string(p.View.Sort.Dir)
		if dir == string(core.SortAsc) {
			h.attr("aria-sort", "ascending")
		} else {
			h.attr("aria-sort", "descending")
		}
	}
	h.raw(`><button type="button" class="sort"`)
	p.hxResults(h, "/sort/"+col.Key)
	h.raw(">")
	h.text(col.Label)
	switch dir {
	case string(core.SortAsc):
		h.raw(" ▲")
	case string(core.SortDesc):
		h.raw(" ▼")
	}
	h.raw("</button></th>")
}

// Pager renders the row range and paging controls.
func Pager(p TableParams) templ.Component {
	return component(func(_ context.Context, h *htmlWriter) {
		writePager(h, p)
	})
}

func writePager(h *htmlWriter, p TableParams) {
	v := p.View
	h.raw(`<div class="pager"><span class="range">`)
	if v.Total == 0 {
		h.raw("0 rows")
	} else {
		h.text(fmt.Sprintf("%d–%d of %d", v.From, v.To, v.Total))
	}
	h.raw("</span>")

	pageButton := func(label string, page int, enabled bool) {
		h.raw(`<button type="button"`)
		if !enabled {
			h.raw(" disabled")
		}
		p.hxResults(h, "/page")
		h.attr("hx-vals", fmt.Sprintf(`{"page":"%d"}`, page))
		h.raw(">")
		h.text(label)
		h.raw("</button>")
	}
	pageButton("Prev", v.Page-1, v.HasPrev())
	h.raw(`<span class="page">`)
	h.text(fmt.Sprintf("Page %d of %d", v.Page, max(v.TotalPages, 1)))
	h.raw("</span>")
	pageButton("Next", v.Page+1, v.HasNext())

	h.raw(`<form class="page-size"`)
	h.attr("hx-trigger", "change")
	p.hxResults(h, "/size")
	h.raw(`><label>Rows <select name="size">`)
	for _, n := range p.PageSizes {
		h.raw("<option")
		h.attr("value", itoa(n))
		if n == v.PageSize {
			h.raw(" selected")
		}
		h.raw(">")
		h.text(itoa(n))
		h.raw("</option>")
	}
	h.raw("</select></label></form></div>")
}
