package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spektr-org/menulens/engine"
)

// Report bundles the charts and tables of one dashboard.
type Report struct {
	Title  string         `json:"title"`
	Charts []*ChartConfig `json:"charts"`
	Tables []*TableData   `json:"tables"`
}

// Dashboard builds every chart and table a dashboard payload supports.
// Sections without data are skipped.
func (f *Formatter) Dashboard(d *engine.Dashboard) *Report {
	r := &Report{
		Title:  "Menu overview " + d.Primary.Period,
		Charts: []*ChartConfig{},
		Tables: []*TableData{},
	}

	r.addChart(RankingChart("Top brand owners", engine.DimBrandOwner, engine.RankByListings, d.OwnerRanking))
	r.addChart(RankingChart("Top brands", engine.DimBrand, engine.RankByVenues, d.BrandRanking))
	r.addChart(MatrixChart("Regional presence", d.RegionHeatmap))
	if d.Primary.Owner != nil {
		r.addChart(ChannelChart("Channel penetration "+d.Primary.Owner.Owner, d.Primary.Owner.Penetration))
	}

	r.Tables = append(r.Tables,
		f.SnapshotTable(d),
		f.RankingTable("Top brand owners", engine.DimBrandOwner, d.OwnerRanking),
		f.RankingTable("Top brands", engine.DimBrand, d.BrandRanking),
		f.RankingTable("Top cities", engine.DimCity, d.CityRanking),
	)
	if d.OwnerShareHeatmap != nil && len(d.OwnerShareHeatmap.Rows) > 0 {
		r.Tables = append(r.Tables, f.MatrixTable("Owner share by venue", d.OwnerShareHeatmap))
	}
	if len(d.CoOccurrence) > 0 {
		r.Tables = append(r.Tables, f.CoOccurrenceTable("Co-occurring competitors", d.CoOccurrence))
	}
	if d.Query.FocusCocktail != "" && d.Query.FocusBrand != "" {
		r.Tables = append(r.Tables, f.WhiteSpotTable("White spots", d.WhiteSpots))
	}
	return r
}

func (r *Report) addChart(c *ChartConfig) {
	if c != nil {
		r.Charts = append(r.Charts, c)
	}
}

// SnapshotTable lists headline KPIs for the primary period, with the
// comparison period and deltas when present.
func (f *Formatter) SnapshotTable(d *engine.Dashboard) *TableData {
	t := &TableData{
		Title: "Headline KPIs",
		Columns: []Column{
			textColumn("kpi", "KPI"),
			numberColumn("primary", d.Primary.Period, "number"),
		},
	}
	cmp := d.Comparison != nil && d.Deltas != nil
	if cmp {
		t.Columns = append(t.Columns,
			numberColumn("comparison", d.Comparison.Period, "number"),
			numberColumn("delta", "Change", "percent"),
		)
	}

	add := func(label, cur, prev string, delta float64) {
		row := []string{label, cur}
		if cmp {
			row = append(row, prev, f.Percent(delta))
		}
		t.Rows = append(t.Rows, row)
	}
	p, c := d.Primary, engine.Snapshot{}
	var dl engine.Deltas
	if cmp {
		c, dl = *d.Comparison, *d.Deltas
	}
	add("Listings", f.Int(p.Listings), f.Int(c.Listings), dl.Listings)
	add("Venues", f.Int(p.Venues), f.Int(c.Venues), dl.Venues)
	add("Brands", f.Int(p.Brands), f.Int(c.Brands), dl.Brands)
	add("Cocktails", f.Int(p.Cocktails), f.Int(c.Cocktails), dl.Cocktails)
	add("Avg price", f.Price(p.AvgPrice), f.Price(c.AvgPrice), dl.AvgPrice)
	if p.Owner != nil {
		prev := ""
		if c.Owner != nil {
			prev = f.Percent(c.Owner.ShareOfMenu)
		}
		add("Share of menu "+p.Owner.Owner, f.Percent(p.Owner.ShareOfMenu), prev, dl.OwnerShareOfMenu)
	}
	if p.Brand != nil {
		prev := ""
		if c.Brand != nil {
			prev = f.Index(c.Brand.PriceIndex)
		}
		add("Price index "+p.Brand.Brand, f.Index(p.Brand.PriceIndex), prev, dl.BrandPriceIndex)
	}
	return t
}

// WriteText renders tables as aligned plain text.
func WriteText(w io.Writer, tables ...*TableData) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for i, t := range tables {
		if t == nil {
			continue
		}
		if i > 0 {
			fmt.Fprintln(tw)
		}
		fmt.Fprintf(tw, "== %s ==\n", t.Title)
		for j, c := range t.Columns {
			if j > 0 {
				fmt.Fprint(tw, "\t")
			}
			fmt.Fprint(tw, c.Label)
		}
		fmt.Fprintln(tw)
		for _, row := range t.Rows {
			for j, cell := range row {
				if j > 0 {
					fmt.Fprint(tw, "\t")
				}
				fmt.Fprint(tw, cell)
			}
			fmt.Fprintln(tw)
		}
	}
	return tw.Flush()
}
