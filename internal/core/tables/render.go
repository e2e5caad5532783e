package tables

import (
	"strconv"
	"strings"

	"github.com/JonMunkholm/ibportal/internal/core"
)

// statusClasses maps lowercase status values to badge styles.
var statusClasses = map[string]string{
	"approved":  "badge badge-success",
	"paid":      "badge badge-success",
	"active":    "badge badge-success",
	"completed": "badge badge-success",
	"pending":   "badge badge-warning",
	"review":    "badge badge-warning",
	"rejected":  "badge badge-danger",
	"failed":    "badge badge-danger",
	"suspended": "badge badge-danger",
}

// statusBadge renders a status value as a colored badge.
func statusBadge(value any, _ core.Row, _ int) core.Displayable {
	s := core.Stringify(value)
	if s == "" {
		return core.Text("")
	}
	class, ok := statusClasses[strings.ToLower(s)]
	if !ok {
		class = "badge"
	}
	return core.El("span", class, core.Text(s))
}

// money renders an amount with two decimals and the row's currency code.
// Values that are not numbers are shown as-is.
func money(currencyKey string) core.RenderFunc {
	return func(value any, row core.Row, _ int) core.Displayable {
		f, ok := core.ToNumber(value)
		if !ok {
			if f, err := strconv.ParseFloat(core.Stringify(value), 64); err == nil {
				return moneyNode(f, core.Stringify(row[currencyKey]))
			}
			return core.Text(core.Stringify(value))
		}
		return moneyNode(f, core.Stringify(row[currencyKey]))
	}
}

func moneyNode(f float64, currency string) core.Displayable {
	amount := core.Text(formatAmount(f))
	if currency == "" {
		return core.El("span", "num", amount)
	}
	return core.El("span", "num", amount, core.Text(" "), core.El("small", "ccy", core.Text(currency)))
}

// formatAmount formats f with two decimals and thousands separators.
func formatAmount(f float64) string {
	s := strconv.FormatFloat(f, 'f', 2, 64)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := b.String() + "." + frac
	if neg {
		return "-" + out
	}
	return out
}

// percent renders a fraction or percentage value with a % suffix.
func percent(value any, _ core.Row, _ int) core.Displayable {
	f, ok := core.ToNumber(value)
	if !ok {
		return core.Text(core.Stringify(value))
	}
	return core.Text(strconv.FormatFloat(f, 'f', -1, 64) + "%")
}

// dateOnly shows the calendar date part of a timestamp.
func dateOnly(value any, _ core.Row, _ int) core.Displayable {
	t, ok := core.ToTime(value)
	if !ok {
		return core.Text(core.Stringify(value))
	}
	return core.El("time", "", core.Text(t.Format("2006-01-02")))
}

// emailLink renders an email address as a mailto link.
func emailLink(value any, _ core.Row, _ int) core.Displayable {
	s := core.Stringify(value)
	if s == "" {
		return core.Text("")
	}
	return &core.Node{Tag: "a", Href: "mailto:" + s, Children: []core.Displayable{core.Text(s)}}
}
