package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spektr-org/menulens/engine"
)

func assertEqual(t *testing.T, got, want, msg string) {
	t.Helper()
	if got != want {
		t.Errorf("%s: got %q, want %q", msg, got, want)
	}
}

func sampleRanking() []engine.RankedEntity {
	return []engine.RankedEntity{
		{Name: "Aperol", Listings: 1200, Venues: 3, Share: 60, Pinned: true},
		{Name: "Select", Listings: 800, Venues: 2, Share: 40},
	}
}

func sampleMatrix() *engine.Matrix {
	return &engine.Matrix{
		RowDimension: engine.DimRegion,
		ColDimension: engine.DimBrandOwner,
		Mode:         engine.ValueShare,
		Rows:         []string{"Lombardia", "Lazio"},
		Cols:         []string{"Campari Group", "Martini & Rossi"},
		Cells:        [][]float64{{62.5, 37.5}, {100, 0}},
		RowTotals:    []int{8, 2},
	}
}

// ============================================================================
// FORMATTER
// ============================================================================

func TestFormatter(t *testing.T) {
	f := NewFormatter("en", "EUR")
	assertEqual(t, f.Int(1234567), "1,234,567", "en grouping")
	assertEqual(t, f.Percent(12.345), "12.3%", "percent")
	assertEqual(t, f.Price(8.5), "EUR 8.50", "price")
	assertEqual(t, f.Index(104.26), "104.3", "index")

	it := NewFormatter("it", "")
	assertEqual(t, it.Int(1234567), "1.234.567", "it grouping")
	assertEqual(t, it.Price(8.5), "EUR 8,50", "it price with default currency")

	bad := NewFormatter("not a locale!", "CHF")
	assertEqual(t, bad.Price(2), "CHF 2.00", "unknown locale falls back to English")
}

// ============================================================================
// CHARTS
// ============================================================================

func TestRankingChart(t *testing.T) {
	c := RankingChart("Top brands", engine.DimBrand, engine.RankByVenues, sampleRanking())
	if c == nil {
		t.Fatal("nil chart")
	}
	assertEqual(t, c.XAxis, "Brand", "x axis")
	assertEqual(t, c.YAxis, "Venues", "y axis")
	if len(c.Series) != 1 || len(c.Series[0].Data) != 2 {
		t.Fatalf("series shape: %+v", c.Series)
	}
	if p := c.Series[0].Data[0]; p.Value != 3 || !p.Highlight {
		t.Errorf("pinned point: %+v", p)
	}
	if c.Series[0].Data[1].Highlight {
		t.Error("unpinned point highlighted")
	}
	if RankingChart("empty", engine.DimBrand, engine.RankByVenues, nil) != nil {
		t.Error("empty ranking should yield no chart")
	}
}

func TestMatrixChart(t *testing.T) {
	c := MatrixChart("Regional presence", sampleMatrix())
	if c == nil {
		t.Fatal("nil chart")
	}
	assertEqual(t, c.ChartType, "stacked_bar", "type")
	assertEqual(t, c.XAxis, "Region", "x axis")
	assertEqual(t, c.YAxis, "Share of menu %", "y axis")
	if len(c.Series) != 2 || c.Series[0].Name != "Campari Group" {
		t.Fatalf("series: %+v", c.Series)
	}
	if v := c.Series[0].Data[0].Value; v != 62.5 {
		t.Errorf("cell value: %v", v)
	}
	if MatrixChart("nil", nil) != nil || MatrixChart("empty", &engine.Matrix{}) != nil {
		t.Error("empty matrix should yield no chart")
	}
}

func TestChannelChart(t *testing.T) {
	c := ChannelChart("Penetration", []engine.ChannelShare{{Channel: "Bar", Venues: 2, Penetration: 66.666}})
	if c == nil || c.Series[0].Data[0].Value != 66.67 {
		t.Fatalf("channel chart: %+v", c)
	}
	if ChannelChart("none", nil) != nil {
		t.Error("no shares should yield no chart")
	}
}

// ============================================================================
// TABLES
// ============================================================================

func TestRankingTable(t *testing.T) {
	tbl := Default.RankingTable("Top brands", engine.DimBrand, sampleRanking())
	if len(tbl.Columns) != 4 || len(tbl.Rows) != 2 {
		t.Fatalf("shape: %d cols, %d rows", len(tbl.Columns), len(tbl.Rows))
	}
	assertEqual(t, strings.Join(tbl.Rows[0], "|"), "Aperol|1,200|3|60.0%", "first row")

	empty := Default.RankingTable("none", engine.DimBrand, nil)
	if empty.Rows == nil || len(empty.Rows) != 0 {
		t.Error("empty ranking should yield empty, non-nil rows")
	}
}

func TestMatrixTable(t *testing.T) {
	tbl := Default.MatrixTable("Share", sampleMatrix())
	assertEqual(t, tbl.Columns[0].Label, "Region", "row header")
	assertEqual(t, tbl.Columns[1].Type, "percent", "share columns are percent")
	assertEqual(t, strings.Join(tbl.Rows[1], "|"), "Lazio|100.0%|0.0%", "second row")

	counts := sampleMatrix()
	counts.Mode = engine.ValueVenues
	counts.Cells = [][]float64{{3, 1}, {2, 0}}
	assertEqual(t, strings.Join(Default.MatrixTable("Venues", counts).Rows[0], "|"), "Lombardia|3|1", "count cells")

	if tbl := Default.MatrixTable("nil", nil); len(tbl.Rows) != 0 || len(tbl.Columns) != 0 {
		t.Error("nil matrix should yield an empty table")
	}
}

func TestScorecardTable(t *testing.T) {
	cards := []engine.OwnerScorecard{
		{Owner: "Campari Group", Listings: 3, Venues: 2, Brands: 2, ShareOfMenu: 50, HeroBrand: "Aperol", HeroDependency: 66.7},
		{Owner: "Martini & Rossi", Listings: 2, Venues: 2, Brands: 1, ShareOfMenu: 33.3, HeroBrand: "Martini", HeroDependency: 100},
	}
	tbl := Default.ScorecardTable("Owners", cards)
	if len(tbl.Rows) != 2 || len(tbl.Columns) != 10 {
		t.Fatalf("shape: %d cols, %d rows", len(tbl.Columns), len(tbl.Rows))
	}
	assertEqual(t, tbl.Rows[0][7], "Aperol", "hero brand")
	assertEqual(t, tbl.Summary.Values["listings"], "5", "listing total")
}

func TestCompetitionTables(t *testing.T) {
	co := Default.CoOccurrenceTable("Co", []engine.CoOccurrence{{Brand: "Select", BrandOwner: "Montenegro", SharedVenues: 2, Rate: 50}})
	assertEqual(t, strings.Join(co.Rows[0], "|"), "Select|Montenegro|2|50.0%", "co-occurrence row")

	gaps := Default.WhiteSpotTable("Gaps", []engine.GapVenue{{
		VenueName: "Bar Roma", City: "Milano", CustomerType: "Bar",
		CurrentBrands: []string{"Select", "Martini"}, AvgPrice: 9,
	}})
	assertEqual(t, strings.Join(gaps.Rows[0], "|"), "Bar Roma|Milano|Bar|Select, Martini|EUR 9.00", "gap row")
	assertEqual(t, gaps.Summary.Values["venue"], "1", "gap count")
}

// ============================================================================
// DASHBOARD
// ============================================================================

func sampleDashboard() *engine.Dashboard {
	return &engine.Dashboard{
		Query: engine.Query{FocusOwner: "Campari Group", FocusBrand: "Aperol", FocusCocktail: "Spritz"},
		Primary: engine.Snapshot{
			Period: "2024", Listings: 6, Venues: 3, Brands: 4, Cocktails: 1, AvgPrice: 9,
			Owner: &engine.OwnerKPIs{Owner: "Campari Group", ShareOfMenu: 50,
				Penetration: []engine.ChannelShare{{Channel: "Bar", Venues: 2, Penetration: 50}}},
		},
		Comparison:    &engine.Snapshot{Period: "2023", Listings: 5, Venues: 3, Brands: 4, Cocktails: 1, AvgPrice: 9},
		Deltas:        &engine.Deltas{Listings: 20},
		OwnerRanking:  sampleRanking(),
		BrandRanking:  sampleRanking(),
		RegionHeatmap: sampleMatrix(),
	}
}

func TestDashboardReport(t *testing.T) {
	r := Default.Dashboard(sampleDashboard())
	assertEqual(t, r.Title, "Menu overview 2024", "title")
	// owner ranking, brand ranking, region heatmap, channel penetration
	if len(r.Charts) != 4 {
		t.Errorf("charts: got %d", len(r.Charts))
	}
	// snapshot, three rankings, white spots
	if len(r.Tables) != 5 {
		t.Fatalf("tables: got %d", len(r.Tables))
	}
	assertEqual(t, r.Tables[4].Title, "White spots", "white-spot table present even when empty")

	kpis := r.Tables[0]
	if len(kpis.Columns) != 4 {
		t.Fatalf("comparison columns missing: %d", len(kpis.Columns))
	}
	assertEqual(t, strings.Join(kpis.Rows[0], "|"), "Listings|6|5|20.0%", "listings row")
	last := kpis.Rows[len(kpis.Rows)-1]
	assertEqual(t, last[0], "Share of menu Campari Group", "owner row")
	assertEqual(t, last[2], "", "no comparison owner KPIs")
}

func TestSnapshotTableWithoutComparison(t *testing.T) {
	d := sampleDashboard()
	d.Comparison, d.Deltas = nil, nil
	d.Primary.Owner = nil
	tbl := Default.SnapshotTable(d)
	if len(tbl.Columns) != 2 || len(tbl.Rows) != 5 {
		t.Fatalf("shape: %d cols, %d rows", len(tbl.Columns), len(tbl.Rows))
	}
	assertEqual(t, strings.Join(tbl.Rows[4], "|"), "Avg price|EUR 9.00", "price row")
}

// ============================================================================
// OUTPUT
// ============================================================================

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	tbl := Default.RankingTable("Top brands", engine.DimBrand, sampleRanking())
	if err := WriteText(&buf, tbl, nil, tbl); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if strings.Count(out, "== Top brands ==") != 2 {
		t.Errorf("titles missing:\n%s", out)
	}
	if !strings.Contains(out, "Aperol") || !strings.Contains(out, "Listings") {
		t.Errorf("rows missing:\n%s", out)
	}
}

func TestWriteChartCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteChartCSV(&buf, RankingChart("Top", engine.DimBrand, engine.RankByListings, sampleRanking())); err != nil {
		t.Fatal(err)
	}
	assertEqual(t, buf.String(), "Brand,Listings\nAperol,1200\nSelect,800\n", "single series")

	buf.Reset()
	if err := WriteChartCSV(&buf, MatrixChart("Share", sampleMatrix())); err != nil {
		t.Fatal(err)
	}
	assertEqual(t, strings.SplitN(buf.String(), "\n", 2)[0], "Region,Campari Group,Martini & Rossi", "multi-series header")
	if !strings.Contains(buf.String(), "Lombardia,62.50,37.50") {
		t.Errorf("fractions keep two decimals:\n%s", buf.String())
	}

	buf.Reset()
	if err := WriteChartCSV(&buf, nil); err != nil {
		t.Fatal(err)
	}
	assertEqual(t, buf.String(), "Result,No data\n", "nil chart")
}

func TestWriteTableCSV(t *testing.T) {
	var buf bytes.Buffer
	tbl := Default.CoOccurrenceTable("Co", []engine.CoOccurrence{{Brand: "Select", BrandOwner: "Montenegro", SharedVenues: 2, Rate: 50}})
	if err := WriteTableCSV(&buf, tbl); err != nil {
		t.Fatal(err)
	}
	assertEqual(t, buf.String(), "Brand,Brand Owner,Shared venues,Co-occurrence\nSelect,Montenegro,2,50.0%\n", "table csv")
}
