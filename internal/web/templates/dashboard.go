package templates

import (
	"context"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/ibportal/internal/core"
)

// TableGroup is one section of the dashboard.
type TableGroup struct {
	Name   string
	Tables []core.TableInfo
}

// Dashboard lists every registered table by group.
func Dashboard(groups []TableGroup) templ.Component {
	return Layout("Dashboard", component(func(_ context.Context, h *htmlWriter) {
		h.raw(`<h1>Reports</h1>`)
		if len(groups) == 0 {
			h.raw(`<p class="empty">No tables are registered.</p>`)
			return
		}
		for _, g := range groups {
			h.raw(`<section class="group"><h2>`)
			h.text(g.Name)
			h.raw(`</h2><ul class="cards">`)
			for _, info := range g.Tables {
				h.raw(`<li class="card"><a`)
				h.attr("href", "/table/"+info.Key)
				h.raw(">")
				h.text(info.Label)
				h.raw("</a></li>")
			}
			h.raw("</ul></section>")
		}
	}))
}
