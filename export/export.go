// Package export writes canonical records and heatmaps to CSV and Excel.
package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/spektr-org/menulens/engine"
)

// Columns is the fixed export column order.
var Columns = []string{
	"row_id", "venue_id", "venue_name", "venue_address", "city", "region",
	"customer_type", "brand_owner", "brand", "macro_category",
	"product_category", "sub_category", "cocktail", "price", "date",
}

func recordRow(r engine.ListingRecord) []string {
	date := ""
	if !r.Date.IsZero() {
		date = r.Date.Format("2006-01-02")
	}
	return []string{
		r.RowID, r.VenueID, r.VenueName, r.VenueAddress, r.City, r.Region,
		r.CustomerType, r.BrandOwner, r.Brand, r.MacroCategory,
		r.ProductCategory, r.SubCategory, r.Cocktail,
		strconv.FormatFloat(r.Price, 'f', 2, 64), date,
	}
}

// WriteCSV writes a header and one line per record. Delimiter 0 means ','.
func WriteCSV(w io.Writer, records []engine.ListingRecord, delimiter rune) error {
	cw := csv.NewWriter(w)
	if delimiter != 0 {
		cw.Comma = delimiter
	}
	if err := cw.Write(Columns); err != nil {
		return eris.Wrap(err, "export: write csv header")
	}
	for _, r := range records {
		if err := cw.Write(recordRow(r)); err != nil {
			return eris.Wrap(err, "export: write csv row")
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "export: flush csv")
}
