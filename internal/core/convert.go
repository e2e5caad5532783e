package core

// convert.go turns loosely typed row values into the strings, numbers and
// timestamps the pipeline compares.
//
// Rows come from JSON envelopes, PostgreSQL (pgx map scans) and mock files, so
// a value may be a Go primitive, a json.Number, a pgtype value or a rendered
// Displayable. Every value has exactly one string form, used by search,
// select filters, collation and exports alike.

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// TwoDigitYearPivot defines how 2-digit years are interpreted.
// Years that would result in dates more than this many years in the future
// are assumed to be in the previous century.
var TwoDigitYearPivot = 20

var (
	timestampLayouts = []string{
		time.RFC3339Nano,
		"2006-01-02T15:04:05",
		"2006-01-02T15:04",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
	}
	fourDigitYearLayouts = []string{
		"2006-01-02", "2006/01/02", "2006.01.02",
		"1/2/2006", "01/02/2006", "1-2-2006", "01-02-2006",
		"Jan 2, 2006", "January 2, 2006", "2 Jan 2006",
		"20060102",
	}
	twoDigitYearLayouts = []string{
		"1/2/06", "01/02/06", "1-2-06",
	}
)

// Stringify returns the single string form of a cell value.
// nil and invalid database values become "", never "null".
func Stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case Displayable:
		return ExtractText(val)
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", val)
	case float32:
		return formatFloat(float64(val))
	case float64:
		return formatFloat(val)
	case json.Number:
		return val.String()
	case time.Time:
		return formatTime(val)
	case [16]byte:
		return uuid.UUID(val).String()
	case pgtype.Text:
		if !val.Valid {
			return ""
		}
		return val.String
	case pgtype.Numeric:
		f, ok := numericFloat(val)
		if !ok {
			return ""
		}
		return formatFloat(f)
	case pgtype.Date:
		if !val.Valid {
			return ""
		}
		return val.Time.Format("2006-01-02")
	case pgtype.Timestamptz:
		if !val.Valid {
			return ""
		}
		return formatTime(val.Time)
	case pgtype.Bool:
		if !val.Valid {
			return ""
		}
		return strconv.FormatBool(val.Bool)
	case pgtype.UUID:
		if !val.Valid {
			return ""
		}
		return uuid.UUID(val.Bytes).String()
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	h, m, s := t.Clock()
	if h == 0 && m == 0 && s == 0 && t.Nanosecond() == 0 {
		return t.Format("2006-01-02")
	}
	return t.Format(time.RFC3339)
}

// ToNumber reports the numeric value of v when v is natively numeric.
// Numeric-looking strings are deliberately not converted: they sort by
// collation, which already orders "2" before "10".
func ToNumber(v any) (float64, bool) {
	switch val := v.(type) {
	case int:
		return float64(val), true
	case int8:
		return float64(val), true
	case int16:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case uint:
		return float64(val), true
	case uint8:
		return float64(val), true
	case uint16:
		return float64(val), true
	case uint32:
		return float64(val), true
	case uint64:
		return float64(val), true
	case float32:
		return float64(val), !math.IsNaN(float64(val))
	case float64:
		return val, !math.IsNaN(val)
	case Number:
		return float64(val), true
	case json.Number:
		f, err := val.Float64()
		return f, err == nil
	case pgtype.Numeric:
		return numericFloat(val)
	case pgtype.Int8:
		return float64(val.Int64), val.Valid
	case pgtype.Int4:
		return float64(val.Int32), val.Valid
	case pgtype.Float8:
		return val.Float64, val.Valid
	default:
		return 0, false
	}
}

func numericFloat(n pgtype.Numeric) (float64, bool) {
	if !n.Valid {
		return 0, false
	}
	f, err := n.Float64Value()
	if err != nil || !f.Valid {
		return 0, false
	}
	return f.Float64, true
}

// ParseDate parses the date formats seen in portal data.
// All results are UTC; ISO dates without a time are midnight.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}

	// Try 4-digit year layouts first (unambiguous)
	for _, layout := range fourDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	pivotYear := time.Now().Year() + TwoDigitYearPivot
	for _, layout := range twoDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			if t.Year() > pivotYear {
				t = t.AddDate(-100, 0, 0)
			}
			return t, true
		}
	}

	return time.Time{}, false
}

// ToTime returns the timestamp held by a cell value, parsing strings.
func ToTime(v any) (time.Time, bool) {
	switch val := v.(type) {
	case time.Time:
		return val.UTC(), !val.IsZero()
	case pgtype.Date:
		return val.Time, val.Valid
	case pgtype.Timestamptz:
		return val.Time.UTC(), val.Valid
	case pgtype.Timestamp:
		return val.Time, val.Valid
	case nil:
		return time.Time{}, false
	default:
		return ParseDate(Stringify(v))
	}
}
