package export

import "strings"

// EncodeCSV writes every field double-quoted, with embedded quotes
// doubled, lines joined by "\n" and no trailing newline. encoding/csv only
// quotes fields that need it, which spreadsheet tools then re-type.
func EncodeCSV(g Grid) []byte {
	var b strings.Builder
	writeCSVLine(&b, g.Headers)
	for _, row := range g.Rows {
		b.WriteByte('\n')
		writeCSVLine(&b, row)
	}
	return []byte(b.String())
}

func writeCSVLine(b *strings.Builder, fields []string) {
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(f, `"`, `""`))
		b.WriteByte('"')
	}
}
