package templates

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/ibportal/internal/core"
)

func renderString(t *testing.T, d core.Displayable) string {
	t.Helper()
	var buf bytes.Buffer
	if err := Display(d).Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render: %v", err)
	}
	return buf.String()
}

func TestDisplay_EscapesText(t *testing.T) {
	got := renderString(t, core.El("span", `x" onclick="y`, core.Text("<b>&</b>")))
	want := `<span class="x&#34; onclick=&#34;y">&lt;b&gt;&amp;&lt;/b&gt;</span>`
	if got != want {
		t.Errorf("Display = %q, want %q", got, want)
	}
}

func TestDisplay_UnknownTagBecomesSpan(t *testing.T) {
	got := renderString(t, core.El("script", "", core.Text("alert(1)")))
	if got != "<span>alert(1)</span>" {
		t.Errorf("Display = %q", got)
	}
}

func TestDisplay_SanitizesHref(t *testing.T) {
	n := core.El("a", "", core.Text("x"))
	n.Href = "javascript:alert(1)"
	got := renderString(t, n)
	if strings.Contains(got, "javascript") {
		t.Errorf("unsafe href rendered: %q", got)
	}

	n.Href = "mailto:ann@example.com"
	if got := renderString(t, n); !strings.Contains(got, `href="mailto:ann@example.com"`) {
		t.Errorf("mailto href dropped: %q", got)
	}
}

func TestResults_RendersRowsAndSortState(t *testing.T) {
	columns := core.WithIndexColumn([]core.Column{
		{Key: "name", Label: "Name"},
		{Key: "note", Label: "Note", Unsortable: true},
	})
	rows := []core.Row{{"name": "Ann", "note": "a"}, {"name": "Bob", "note": "b"}}
	state := core.ViewState{Page: 1, PageSize: 10, Sort: core.SortSpec{Key: "name", Dir: core.SortDesc}}
	view := core.Derive(rows, columns, core.FilterConfig{}, state, core.DefaultLocale)

	var buf bytes.Buffer
	p := TableParams{SessionID: "s1", View: view, PageSizes: core.PageSizeOptions}
	if err := Results(p).Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		`id="results-s1"`,
		`hx-post="/view/s1/sort/name"`,
		`aria-sort="descending"`,
		"<th>Note</th>",
		"<th>#</th>",
		"1–2 of 2",
		`<option value="10" selected>`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if strings.Index(out, "Bob") > strings.Index(out, "Ann") {
		t.Error("rows not in descending order")
	}
	if strings.Contains(out, "/sort/note") || strings.Contains(out, "/sort/"+core.IndexKey) {
		t.Error("unsortable column rendered a sort button")
	}
}

func TestResults_Empty(t *testing.T) {
	columns := []core.Column{{Key: "name", Label: "Name"}}
	view := core.Derive(nil, columns, core.FilterConfig{}, core.ViewState{Page: 1, PageSize: 10}, core.DefaultLocale)

	var buf bytes.Buffer
	if err := Results(TableParams{SessionID: "s", View: view}).Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(buf.String(), "No matching rows") || !strings.Contains(buf.String(), "0 rows") {
		t.Errorf("empty view output = %q", buf.String())
	}
}

func TestErrorAlert(t *testing.T) {
	var buf bytes.Buffer
	if err := ErrorAlert("Gone <now>", "Reload", "SES001").Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Gone &lt;now&gt;") || !strings.Contains(out, "SES001") {
		t.Errorf("ErrorAlert = %q", out)
	}
}

func renderComponent(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	if err := c.Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render: %v", err)
	}
	return buf.String()
}

func TestToolbar_SearchWithoutSearchKeys(t *testing.T) {
	out := renderComponent(t, Toolbar(TableParams{SessionID: "s"}))
	for _, want := range []string{`name="q"`, `placeholder="Search"`, `hx-post="/view/s/search"`} {
		if !strings.Contains(out, want) {
			t.Errorf("toolbar missing %s: %q", want, out)
		}
	}
	if strings.Contains(out, "date-filter") {
		t.Error("toolbar drew a date filter for a table without a date key")
	}
}

func TestPager_MiddlePage(t *testing.T) {
	columns := []core.Column{{Key: "n", Label: "N"}}
	rows := make([]core.Row, 25)
	for i := range rows {
		rows[i] = core.Row{"n": i}
	}
	view := core.Derive(rows, columns, core.FilterConfig{}, core.ViewState{Page: 2, PageSize: 10}, core.DefaultLocale)

	out := renderComponent(t, Pager(TableParams{SessionID: "s", View: view, PageSizes: []int{10, 25}}))
	for _, want := range []string{"11–20 of 25", "Page 2 of 3", `{&#34;page&#34;:&#34;1&#34;}`, `{&#34;page&#34;:&#34;3&#34;}`, `value="10" selected`} {
		if !strings.Contains(out, want) {
			t.Errorf("pager missing %s: %q", want, out)
		}
	}
	if strings.Contains(out, "disabled") {
		t.Error("a middle page should enable both page buttons")
	}
}
