// Package export turns a resolved table view into a downloadable file.
//
// Three formats are supported. CSV is always available. The spreadsheet
// (xlsx) and PDF writers are capabilities loaded lazily on first use and
// shared by every table for the life of the process. A PDF request whose
// writer cannot be loaded is served as CSV with a Notice explaining the
// substitution; a spreadsheet request in the same situation fails.
package export

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/JonMunkholm/ibportal/internal/core"
)

// Format is an export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

// Formats lists the supported formats in menu order.
var Formats = []Format{FormatCSV, FormatXLSX, FormatPDF}

// ParseFormat accepts a format name case-insensitively. "excel" is an
// alias for xlsx.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	case "pdf":
		return FormatPDF, nil
	}
	return "", fmt.Errorf("unsupported export format %q", s)
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	switch f {
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatPDF:
		return "application/pdf"
	default:
		return "text/csv; charset=utf-8"
	}
}

// Label is the human name shown on export buttons.
func (f Format) Label() string {
	switch f {
	case FormatXLSX:
		return "Excel"
	case FormatPDF:
		return "PDF"
	default:
		return "CSV"
	}
}

// FileName builds "{title}-{YYYY-MM-DD}.{ext}" using the UTC date of now.
// An empty title becomes "table". Path separators and control characters
// are replaced so the name is safe to hand to a browser.
func FileName(title string, f Format, now time.Time) string {
	title = strings.TrimSpace(title)
	if title == "" {
		title = "table"
	}
	title = strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\':
			return '-'
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, title)
	return fmt.Sprintf("%s-%s.%s", title, now.UTC().Format("2006-01-02"), f)
}

// Grid is the label/value table every encoder writes: one header row and
// one row of plain text per resolved record.
type Grid struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// NewGrid flattens resolved rows into text. Cells without a render
// function use their stringified value; rendered cells use their
// extracted text.
func NewGrid(title string, columns []core.Column, rows []core.ViewRow) Grid {
	g := Grid{
		Title:   title,
		Headers: make([]string, len(columns)),
		Rows:    make([][]string, 0, len(rows)),
	}
	for i, col := range columns {
		g.Headers[i] = col.Label
	}
	for _, vr := range rows {
		line := make([]string, len(vr.Cells))
		for i, cell := range vr.Cells {
			line[i] = cell.Text
		}
		g.Rows = append(g.Rows, line)
	}
	return g
}
