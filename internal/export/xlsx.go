package export

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

const (
	defaultSheetName = "Data"
	maxSheetNameLen  = 31
	maxColumnWidth   = 60
)

// SpreadsheetWriter writes a Grid as a single-sheet xlsx workbook.
type SpreadsheetWriter struct {
	bold bool
}

// LoadSpreadsheetWriter is the loader behind the xlsx capability. It
// opens a workbook once so a broken install fails at load, not mid-export.
func LoadSpreadsheetWriter(cfg Config) func(context.Context) (*SpreadsheetWriter, error) {
	return func(context.Context) (*SpreadsheetWriter, error) {
		if !cfg.SpreadsheetEnabled {
			return nil, errors.New("disabled by configuration")
		}
		f := excelize.NewFile()
		if err := f.Close(); err != nil {
			return nil, fmt.Errorf("open workbook: %w", err)
		}
		return &SpreadsheetWriter{bold: true}, nil
	}
}

// SheetName derives a worksheet name from a title. Excel forbids
// []:*?/\ and caps names at 31 characters.
func SheetName(title string) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case '[', ']', ':', '*', '?', '/', '\\':
			return ' '
		}
		return r
	}, title)
	name = strings.Trim(strings.TrimSpace(name), "'")
	if r := []rune(name); len(r) > maxSheetNameLen {
		name = strings.TrimSpace(string(r[:maxSheetNameLen]))
	}
	if name == "" {
		return defaultSheetName
	}
	return name
}

// Encode renders g and returns the workbook bytes.
func (w *SpreadsheetWriter) Encode(g Grid) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := SheetName(g.Title)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("name sheet: %w", err)
	}

	if err := setRow(f, sheet, 1, g.Headers); err != nil {
		return nil, err
	}
	for i, row := range g.Rows {
		if err := setRow(f, sheet, i+2, row); err != nil {
			return nil, err
		}
	}

	if len(g.Headers) > 0 {
		if err := w.styleHeader(f, sheet, len(g.Headers)); err != nil {
			return nil, err
		}
		if err := fitColumns(f, sheet, g); err != nil {
			return nil, err
		}
		if err := f.SetPanes(sheet, &excelize.Panes{
			Freeze:      true,
			YSplit:      1,
			TopLeftCell: "A2",
			ActivePane:  "bottomLeft",
		}); err != nil {
			return nil, fmt.Errorf("freeze header: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func setRow(f *excelize.File, sheet string, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	vals := make([]any, len(values))
	for i, v := range values {
		vals[i] = v
	}
	if err := f.SetSheetRow(sheet, cell, &vals); err != nil {
		return fmt.Errorf("write row %d: %w", row, err)
	}
	return nil
}

func (w *SpreadsheetWriter) styleHeader(f *excelize.File, sheet string, cols int) error {
	if !w.bold {
		return nil
	}
	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"E9EEF5"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(cols, 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", last, style)
}

func fitColumns(f *excelize.File, sheet string, g Grid) error {
	for i, h := range g.Headers {
		width := len([]rune(h))
		for _, row := range g.Rows {
			if i < len(row) {
				width = max(width, len([]rune(row[i])))
			}
		}
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, name, name, float64(min(width+2, maxColumnWidth))); err != nil {
			return fmt.Errorf("column width: %w", err)
		}
	}
	return nil
}
