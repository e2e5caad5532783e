// Package templates renders the portal's pages and HTMX fragments as
// templ components.
package templates

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/ibportal/internal/core"
)

// htmlWriter accumulates the first write error so markup code can stay linear.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (h *htmlWriter) raw(s string) {
	if h.err != nil {
		return
	}
	_, h.err = io.WriteString(h.w, s)
}

func (h *htmlWriter) text(s string) {
	h.raw(templ.EscapeString(s))
}

// attr writes ` name="value"` with value escaped.
func (h *htmlWriter) attr(name, value string) {
	h.raw(" " + name + `="`)
	h.text(value)
	h.raw(`"`)
}

func (h *htmlWriter) component(ctx context.Context, c templ.Component) {
	if h.err != nil {
		return
	}
	h.err = c.Render(ctx, h.w)
}

func component(fn func(ctx context.Context, h *htmlWriter)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		fn(ctx, h)
		return h.err
	})
}

// Display renders a cell's display tree. Tags come from render functions
// in code, never from data; text and attributes are escaped.
func Display(d core.Displayable) templ.Component {
	return component(func(_ context.Context, h *htmlWriter) {
		writeDisplay(h, d)
	})
}

var allowedTags = map[string]bool{
	"span": true, "small": true, "strong": true, "em": true,
	"a": true, "time": true, "code": true, "div": true,
}

func writeDisplay(h *htmlWriter, d core.Displayable) {
	switch v := d.(type) {
	case nil:
	case core.Text:
		h.text(string(v))
	case core.Number:
		h.text(core.ExtractText(v))
	case *core.Node:
		if v == nil {
			return
		}
		tag := v.Tag
		if !allowedTags[tag] {
			tag = "span"
		}
		h.raw("<" + tag)
		if v.Class != "" {
			h.attr("class", v.Class)
		}
		if tag == "a" && v.Href != "" {
			h.attr("href", string(templ.URL(v.Href)))
		}
		h.raw(">")
		for _, c := range v.Children {
			writeDisplay(h, c)
		}
		h.raw("</" + tag + ">")
	}
}

func itoa(i int) string { return strconv.Itoa(i) }
