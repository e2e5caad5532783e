package templates

import (
	"context"

	"github.com/a-h/templ"
)

const htmxSrc = "https://unpkg.com/htmx.org@2.0.4"

// Layout wraps body in the page shell.
func Layout(title string, body templ.Component) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.raw("<title>")
		h.text(title)
		h.raw(" · IB Portal</title>")
		h.raw(`<link rel="stylesheet" href="/static/app.css">`)
		h.raw(`<script src="` + htmxSrc + `"></script>`)
		h.raw(`<script src="/static/app.js" defer></script>`)
		h.raw(`</head><body><header class="topbar"><a href="/">IB Portal</a></header><main>`)
		h.component(ctx, body)
		h.raw(`<div id="notices" aria-live="polite"></div></main></body></html>`)
	})
}

// ErrorAlert renders a user-facing error with its support code.
func ErrorAlert(message, action, code string) templ.Component {
	return component(func(_ context.Context, h *htmlWriter) {
		h.raw(`<div class="alert alert-error" role="alert"><strong>`)
		h.text(message)
		h.raw("</strong>")
		if action != "" {
			h.raw(" <span>")
			h.text(action)
			h.raw("</span>")
		}
		if code != "" {
			h.raw(` <small class="code">`)
			h.text(code)
			h.raw("</small>")
		}
		h.raw("</div>")
	})
}

// ErrorPage is ErrorAlert inside the layout.
func ErrorPage(message, action, code string) templ.Component {
	return Layout(message, ErrorAlert(message, action, code))
}
