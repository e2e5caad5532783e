package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
)

const (
	pdfFontFamily   = "body"
	pdfCoreFamily   = "Helvetica"
	pdfRowHeight    = 6.0
	pdfMinColWidth  = 16.0
	pdfBodyFontSize = 8.0
	ellipsis        = "..."
)

// PDFWriter writes a Grid as a landscape A4 document. With a table layout
// columns get equal fixed widths; without one every row is a wrapped line
// of " | "-joined text.
type PDFWriter struct {
	font        []byte // optional UTF-8 TrueType font
	tableLayout bool
	maxColumns  int

	uncompressed bool // leave content streams readable
}

// LoadPDFWriter is the loader behind the pdf capability. It reads the
// configured font and renders a blank page so both failures surface at
// load time.
func LoadPDFWriter(cfg Config) func(context.Context) (*PDFWriter, error) {
	return func(context.Context) (*PDFWriter, error) {
		if !cfg.PDFEnabled {
			return nil, errors.New("disabled by configuration")
		}
		w := &PDFWriter{
			tableLayout: cfg.PDFTableLayout,
			maxColumns:  cfg.PDFMaxTableColumns,
		}
		if cfg.PDFFontPath != "" {
			font, err := os.ReadFile(cfg.PDFFontPath)
			if err != nil {
				return nil, fmt.Errorf("read font: %w", err)
			}
			w.font = font
		}

		doc := w.newDocument()
		doc.AddPage()
		if err := doc.Output(io.Discard); err != nil {
			return nil, fmt.Errorf("render blank page: %w", err)
		}
		return w, nil
	}
}

func (w *PDFWriter) newDocument() *fpdf.Fpdf {
	doc := fpdf.New("L", "mm", "A4", "")
	doc.SetCompression(!w.uncompressed)
	if w.font != nil {
		doc.AddUTF8FontFromBytes(pdfFontFamily, "", w.font)
	}
	return doc
}

// usesTable reports whether cols columns can be laid out as a table.
func (w *PDFWriter) usesTable(cols int, usable float64) bool {
	if !w.tableLayout || cols == 0 {
		return false
	}
	if w.maxColumns > 0 && cols > w.maxColumns {
		return false
	}
	return usable/float64(cols) >= pdfMinColWidth
}

// Encode renders g. now is stamped under the title.
func (w *PDFWriter) Encode(g Grid, now time.Time) ([]byte, error) {
	doc := w.newDocument()
	doc.SetMargins(10, 12, 10)
	doc.SetTitle(g.Title, true)
	doc.SetCreator("ibportal", true)

	family, bold := pdfCoreFamily, "B"
	tr := doc.UnicodeTranslatorFromDescriptor("")
	if w.font != nil {
		// Only the regular face of a custom font is registered.
		family, bold = pdfFontFamily, ""
		tr = func(s string) string { return s }
	}

	doc.AddPage()
	doc.SetFont(family, bold, 14)
	title := g.Title
	if title == "" {
		title = "table"
	}
	doc.CellFormat(0, 8, tr(title), "", 1, "L", false, 0, "")
	doc.SetFont(family, "", pdfBodyFontSize)
	doc.SetTextColor(100, 100, 100)
	doc.CellFormat(0, 5, tr(fmt.Sprintf("Generated %s UTC, %d rows", now.UTC().Format("2006-01-02 15:04"), len(g.Rows))), "", 1, "L", false, 0, "")
	doc.SetTextColor(0, 0, 0)
	doc.Ln(2)

	pageW, _ := doc.GetPageSize()
	left, _, right, _ := doc.GetMargins()
	usable := pageW - left - right

	if w.usesTable(len(g.Headers), usable) {
		writeTable(doc, g, usable, family, bold, tr)
	} else {
		writeLines(doc, g, family, bold, tr)
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func writeTable(doc *fpdf.Fpdf, g Grid, usable float64, family, bold string, tr func(string) string) {
	colW := usable / float64(len(g.Headers))
	_, pageH := doc.GetPageSize()
	_, _, _, bottom := doc.GetMargins()
	doc.SetAutoPageBreak(false, bottom)

	header := func() {
		doc.SetFont(family, bold, pdfBodyFontSize)
		doc.SetFillColor(233, 238, 245)
		for _, h := range g.Headers {
			doc.CellFormat(colW, pdfRowHeight+1, fit(doc, tr(h), colW), "1", 0, "L", true, 0, "")
		}
		doc.Ln(-1)
		doc.SetFont(family, "", pdfBodyFontSize)
	}

	header()
	for _, row := range g.Rows {
		if doc.GetY()+pdfRowHeight > pageH-bottom {
			doc.AddPage()
			header()
		}
		for i := range g.Headers {
			var text string
			if i < len(row) {
				text = row[i]
			}
			doc.CellFormat(colW, pdfRowHeight, fit(doc, tr(text), colW), "1", 0, "L", false, 0, "")
		}
		doc.Ln(-1)
	}
}

func writeLines(doc *fpdf.Fpdf, g Grid, family, bold string, tr func(string) string) {
	doc.SetAutoPageBreak(true, 12)
	doc.SetFont(family, bold, pdfBodyFontSize)
	doc.MultiCell(0, 5, tr(strings.Join(g.Headers, " | ")), "B", "L", false)
	doc.SetFont(family, "", pdfBodyFontSize)
	for _, row := range g.Rows {
		doc.MultiCell(0, 5, tr(strings.Join(row, " | ")), "", "L", false)
	}
}

// fit truncates s with an ellipsis so it fits in a cell of width w.
func fit(doc *fpdf.Fpdf, s string, w float64) string {
	const padding = 2.0
	if doc.GetStringWidth(s)+padding <= w {
		return s
	}
	r := []rune(s)
	for len(r) > 0 {
		r = r[:len(r)-1]
		candidate := string(r) + ellipsis
		if doc.GetStringWidth(candidate)+padding <= w {
			return candidate
		}
	}
	return ""
}
