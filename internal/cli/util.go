package cli

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/johan-st/datadeck/internal/dataset"
)

// printRows writes rows in the requested format: aligned table (default),
// csv or json. Columns render in canonical order.
func printRows(w io.Writer, columns []string, rows []dataset.Row, format string) {
	switch format {
	case "json":
		printJSON(w, rows)
	case "csv":
		cw := csv.NewWriter(w)
		cw.Write(columns)
		for _, row := range rows {
			record := make([]string, len(columns))
			for i, col := range columns {
				record[i] = dataset.Format(row[col])
			}
			cw.Write(record)
		}
		cw.Flush()
	default:
		cells := make([][]string, len(rows))
		for i, row := range rows {
			record := make([]string, len(columns))
			for j, col := range columns {
				record[j] = dataset.Format(row[col])
			}
			cells[i] = record
		}
		printTable(w, columns, cells)
	}
}

// printTable writes an aligned text table.
func printTable(w io.Writer, headers []string, rows [][]string) {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var b strings.Builder
	for i, h := range headers {
		if i > 0 {
			b.WriteString("  ")
		}
		fmt.Fprintf(&b, "%-*s", widths[i], h)
	}
	fmt.Fprintln(w, b.String())

	for _, row := range rows {
		b.Reset()
		for i, cell := range row {
			if i > 0 {
				b.WriteString("  ")
			}
			fmt.Fprintf(&b, "%-*s", widths[i], cell)
		}
		fmt.Fprintln(w, b.String())
	}
}

// printJSON writes indented JSON.
func printJSON(w io.Writer, v any) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(v)
}
