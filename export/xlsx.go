package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/xuri/excelize/v2"

	"github.com/spektr-org/menulens/engine"
)

// ListingsSheet is the name of the record sheet.
const ListingsSheet = "Listings"

const maxSheetName = 31

// WriteXLSX writes a workbook with the records on ListingsSheet and one sheet
// per matrix.
func WriteXLSX(w io.Writer, records []engine.ListingRecord, matrices ...*engine.Matrix) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), ListingsSheet); err != nil {
		return eris.Wrap(err, "export: rename sheet")
	}
	if err := writeListings(f, records); err != nil {
		return err
	}

	used := map[string]bool{ListingsSheet: true}
	for _, m := range matrices {
		if m == nil {
			continue
		}
		name := uniqueSheetName(matrixSheetName(m), used)
		if _, err := f.NewSheet(name); err != nil {
			return eris.Wrapf(err, "export: add sheet %s", name)
		}
		if err := writeMatrix(f, name, m); err != nil {
			return err
		}
	}

	f.SetActiveSheet(0)
	if _, err := f.WriteTo(w); err != nil {
		return eris.Wrap(err, "export: write xlsx")
	}
	return nil
}

func writeListings(f *excelize.File, records []engine.ListingRecord) error {
	header := make([]any, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(ListingsSheet, "A1", &header); err != nil {
		return eris.Wrap(err, "export: write listings header")
	}
	for i, r := range records {
		row := []any{
			r.RowID, r.VenueID, r.VenueName, r.VenueAddress, r.City, r.Region,
			r.CustomerType, r.BrandOwner, r.Brand, r.MacroCategory,
			r.ProductCategory, r.SubCategory, r.Cocktail, r.Price, "",
		}
		if !r.Date.IsZero() {
			row[len(row)-1] = r.Date.Format("2006-01-02")
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return eris.Wrap(err, "export: cell name")
		}
		if err := f.SetSheetRow(ListingsSheet, cell, &row); err != nil {
			return eris.Wrapf(err, "export: write listing %d", i+1)
		}
	}
	return nil
}

func writeMatrix(f *excelize.File, sheet string, m *engine.Matrix) error {
	header := []any{m.RowDimension.Label()}
	for _, c := range m.Cols {
		header = append(header, c)
	}
	header = append(header, "Listings")
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return eris.Wrapf(err, "export: write %s header", sheet)
	}
	for i, r := range m.Rows {
		row := []any{r}
		for _, v := range m.Cells[i] {
			row = append(row, v)
		}
		row = append(row, m.RowTotals[i])
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return eris.Wrap(err, "export: cell name")
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return eris.Wrapf(err, "export: write %s row %d", sheet, i+1)
		}
	}
	return nil
}

func matrixSheetName(m *engine.Matrix) string {
	name := fmt.Sprintf("%s x %s", m.RowDimension.Label(), m.ColDimension.Label())
	name = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return '_'
		}
		return r
	}, name)
	return truncate(name, maxSheetName)
}

func uniqueSheetName(name string, used map[string]bool) string {
	candidate := name
	for i := 2; used[strings.ToLower(candidate)]; i++ {
		suffix := fmt.Sprintf(" (%d)", i)
		candidate = truncate(name, maxSheetName-len(suffix)) + suffix
	}
	used[strings.ToLower(candidate)] = true
	return candidate
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
