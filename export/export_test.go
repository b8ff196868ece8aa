package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/spektr-org/menulens/engine"
)

func sampleRecords() []engine.ListingRecord {
	return []engine.ListingRecord{
		{
			RowID: "r1", VenueID: "V1", VenueName: "Bar \"Roma\", Centro", City: "Milano",
			Region: "Lombardia", CustomerType: "Bar", BrandOwner: "Campari Group",
			Brand: "Aperol", MacroCategory: "Spirits", ProductCategory: "Aperitivo",
			Cocktail: engine.GeneralItem, Price: 8.5, Date: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		},
		{RowID: "r2", VenueName: "Osteria", Brand: "Campari", Price: 0},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleRecords(), ';'); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	r := csv.NewReader(&buf)
	r.Comma = ';'
	lines, err := r.ReadAll()
	if err != nil {
		t.Fatalf("output is not valid csv: %v", err)
	}
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}
	if strings.Join(lines[0], ",") != strings.Join(Columns, ",") {
		t.Errorf("header: got %v", lines[0])
	}
	if lines[1][2] != "Bar \"Roma\", Centro" {
		t.Errorf("quoted venue name: got %q", lines[1][2])
	}
	if lines[1][13] != "8.50" || lines[1][14] != "2024-03-15" {
		t.Errorf("price/date: got %q %q", lines[1][13], lines[1][14])
	}
	if lines[2][14] != "" {
		t.Errorf("zero date must be empty: got %q", lines[2][14])
	}
}

func TestWriteXLSX(t *testing.T) {
	m, err := engine.BuildMatrix(sampleRecords(), engine.MatrixSpec{
		Rows: engine.DimVenue, Cols: engine.DimBrand, Mode: engine.ValueListings,
	})
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := WriteXLSX(&buf, sampleRecords(), m, m, nil); err != nil {
		t.Fatalf("WriteXLSX: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	want := []string{ListingsSheet, "Venue x Brand", "Venue x Brand (2)"}
	if strings.Join(sheets, "|") != strings.Join(want, "|") {
		t.Fatalf("sheets: got %v, want %v", sheets, want)
	}

	rows, err := f.GetRows(ListingsSheet)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 || rows[1][8] != "Aperol" {
		t.Errorf("listings sheet: %v", rows)
	}

	mrows, err := f.GetRows("Venue x Brand")
	if err != nil {
		t.Fatal(err)
	}
	if mrows[0][0] != "Venue" || mrows[0][len(mrows[0])-1] != "Listings" {
		t.Errorf("matrix header: %v", mrows[0])
	}
	if len(mrows) != 3 {
		t.Errorf("matrix rows: got %d, want 3", len(mrows))
	}
}

func TestMatrixSheetName(t *testing.T) {
	used := map[string]bool{}
	long := strings.Repeat("x", 40)
	got := uniqueSheetName(truncate(long, maxSheetName), used)
	if len(got) != maxSheetName {
		t.Errorf("first name length: %d", len(got))
	}
	second := uniqueSheetName(truncate(long, maxSheetName), used)
	if len(second) != maxSheetName || !strings.HasSuffix(second, " (2)") {
		t.Errorf("second name: %q", second)
	}
}
