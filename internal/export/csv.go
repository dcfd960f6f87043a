// Package export writes table views as CSV or as printable HTML for PDF
// conversion.
package export

import (
	"encoding/csv"
	"io"

	"github.com/transitdesk/console/internal/datatable"
)

// WriteCSV serialises the headers and cell texts of views as one CSV
// document. Views are written in order, so a multi-page export is a slice of
// consecutive pages.
func WriteCSV(w io.Writer, views ...datatable.View) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if len(views) == 0 {
		writer.Flush()
		return writer.Error()
	}
	if err := writer.Write(views[0].Headers); err != nil {
		return err
	}
	for _, v := range views {
		for _, row := range v.Rows {
			record := make([]string, len(row.Cells))
			for i, cell := range row.Cells {
				record[i] = neutralize(cell.Text)
			}
			if err := writer.Write(record); err != nil {
				return err
			}
		}
	}
	writer.Flush()
	return writer.Error()
}

// neutralize stops spreadsheet applications from evaluating a cell as a formula.
func neutralize(s string) string {
	if s == "" {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + s
	}
	return s
}
