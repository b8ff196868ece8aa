package report

import (
	"strings"

	"github.com/spektr-org/menulens/engine"
)

// ============================================================================
// TABLE BUILDER — TableData from engine results
// ============================================================================
// Every builder returns a non-nil table; empty inputs yield empty rows.
// ============================================================================

// RankingTable lists ranked entities with listings, venues and share.
func (f *Formatter) RankingTable(title string, d engine.Dimension, ranked []engine.RankedEntity) *TableData {
	t := &TableData{
		Title: title,
		Columns: []Column{
			textColumn("name", d.Label()),
			numberColumn("listings", "Listings", "number"),
			numberColumn("venues", "Venues", "number"),
			numberColumn("share", "Share", "percent"),
		},
		Rows: make([][]string, 0, len(ranked)),
	}
	for _, e := range ranked {
		t.Rows = append(t.Rows, []string{e.Name, f.Int(e.Listings), f.Int(e.Venues), f.Percent(e.Share)})
	}
	return t
}

// MatrixTable flattens a heatmap into one row per row entity.
func (f *Formatter) MatrixTable(title string, m *engine.Matrix) *TableData {
	t := &TableData{Title: title, Columns: []Column{}, Rows: [][]string{}}
	if m == nil {
		return t
	}

	t.Columns = append(t.Columns, textColumn("row", m.RowDimension.Label()))
	for _, c := range m.Cols {
		typ := "number"
		if m.Mode == engine.ValueShare {
			typ = "percent"
		}
		t.Columns = append(t.Columns, numberColumn(c, c, typ))
	}
	for i, r := range m.Rows {
		row := []string{r}
		for j := range m.Cols {
			row = append(row, f.cell(m.Mode, m.Cells[i][j]))
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func (f *Formatter) cell(mode engine.ValueMode, v float64) string {
	if mode == engine.ValueShare {
		return f.Percent(v)
	}
	return f.Int(int(v))
}

// ScorecardTable lists owner scorecards with a listing total.
func (f *Formatter) ScorecardTable(title string, cards []engine.OwnerScorecard) *TableData {
	t := &TableData{
		Title: title,
		Columns: []Column{
			textColumn("owner", engine.DimBrandOwner.Label()),
			numberColumn("listings", "Listings", "number"),
			numberColumn("venues", "Venues", "number"),
			numberColumn("brands", "Brands", "number"),
			numberColumn("shareOfMenu", "Share of menu", "percent"),
			numberColumn("depth", "Depth", "number"),
			numberColumn("breadth", "Breadth", "number"),
			textColumn("heroBrand", "Hero brand"),
			numberColumn("heroDependency", "Hero dependency", "percent"),
			numberColumn("penetration", "Penetration", "percent"),
		},
		Rows: make([][]string, 0, len(cards)),
	}
	total := 0
	for _, c := range cards {
		t.Rows = append(t.Rows, []string{
			c.Owner,
			f.Int(c.Listings),
			f.Int(c.Venues),
			f.Int(c.Brands),
			f.Percent(c.ShareOfMenu),
			f.Index(c.Depth),
			f.Index(c.Breadth),
			c.HeroBrand,
			f.Percent(c.HeroDependency),
			f.Percent(c.MarketPenetration),
		})
		total += c.Listings
	}
	t.Summary = &Summary{
		Label:  "Total",
		Values: map[string]string{"listings": f.Int(total)},
	}
	return t
}

// CoOccurrenceTable lists the competitors sharing venues with a brand.
func (f *Formatter) CoOccurrenceTable(title string, rows []engine.CoOccurrence) *TableData {
	t := &TableData{
		Title: title,
		Columns: []Column{
			textColumn("brand", engine.DimBrand.Label()),
			textColumn("owner", engine.DimBrandOwner.Label()),
			numberColumn("sharedVenues", "Shared venues", "number"),
			numberColumn("rate", "Co-occurrence", "percent"),
		},
		Rows: make([][]string, 0, len(rows)),
	}
	for _, c := range rows {
		t.Rows = append(t.Rows, []string{c.Brand, c.BrandOwner, f.Int(c.SharedVenues), f.Percent(c.Rate)})
	}
	return t
}

// WhiteSpotTable lists gap venues with their current brands.
func (f *Formatter) WhiteSpotTable(title string, gaps []engine.GapVenue) *TableData {
	t := &TableData{
		Title: title,
		Columns: []Column{
			textColumn("venue", engine.DimVenue.Label()),
			textColumn("city", engine.DimCity.Label()),
			textColumn("channel", engine.DimCustomerType.Label()),
			textColumn("brands", "Current brands"),
			numberColumn("avgPrice", "Avg price", "currency"),
		},
		Rows: make([][]string, 0, len(gaps)),
	}
	for _, g := range gaps {
		t.Rows = append(t.Rows, []string{
			g.VenueName,
			g.City,
			g.CustomerType,
			strings.Join(g.CurrentBrands, ", "),
			f.Price(g.AvgPrice),
		})
	}
	t.Summary = &Summary{
		Label:  "White spots",
		Values: map[string]string{"venue": f.Int(len(gaps))},
	}
	return t
}
