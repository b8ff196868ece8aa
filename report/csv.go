package report

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/rotisserie/eris"
)

// ============================================================================
// CSV OUTPUT — Sheets-ready rendering of charts and tables
// ============================================================================

// WriteChartCSV writes a chart as CSV: label column plus one column per
// series.
func WriteChartCSV(w io.Writer, chart *ChartConfig) error {
	cw := csv.NewWriter(w)
	if chart == nil || len(chart.Series) == 0 {
		cw.Write([]string{"Result", "No data"})
		cw.Flush()
		return eris.Wrap(cw.Error(), "report: write chart csv")
	}

	xLabel := chart.XAxis
	if xLabel == "" {
		xLabel = "Label"
	}
	headers := []string{xLabel}
	if len(chart.Series) == 1 {
		yLabel := chart.YAxis
		if yLabel == "" {
			yLabel = "Value"
		}
		headers = append(headers, yLabel)
	} else {
		for _, s := range chart.Series {
			headers = append(headers, s.Name)
		}
	}
	cw.Write(headers)

	for i, d := range chart.Series[0].Data {
		row := []string{d.Label}
		for _, s := range chart.Series {
			if i < len(s.Data) {
				row = append(row, fmtNum(s.Data[i].Value))
			} else {
				row = append(row, "")
			}
		}
		cw.Write(row)
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "report: write chart csv")
}

// WriteTableCSV writes column labels followed by the table rows.
func WriteTableCSV(w io.Writer, table *TableData) error {
	cw := csv.NewWriter(w)
	if table == nil {
		cw.Write([]string{"Result", "No data"})
		cw.Flush()
		return eris.Wrap(cw.Error(), "report: write table csv")
	}

	headers := make([]string, len(table.Columns))
	for i, c := range table.Columns {
		headers[i] = c.Label
	}
	cw.Write(headers)
	for _, row := range table.Rows {
		cw.Write(row)
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "report: write table csv")
}

// fmtNum prints whole numbers without decimals and fractions with two.
func fmtNum(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}
