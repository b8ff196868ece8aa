package normalize

import (
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spektr-org/menulens/engine"
)

func assertEqual(t *testing.T, got, want, msg string) {
	t.Helper()
	if got != want {
		t.Errorf("%s: got %q, want %q", msg, got, want)
	}
}

func italianRow() RawRow {
	return RawRow{
		"Nome Locale": " bar  da mario ",
		"Città":       "milan",
		"Regione":     "lombardy",
		"Canale":      "cocktail bar",
		"Brand Owner": "gruppo campari",
		"Marca":       "aperol",
		"Categoria":   "aperitivo",
		"Prezzo":      "8,50",
		"Data":        "15/03/2024",
		"venue_id":    1234.0,
	}
}

func TestNormalize_AliasesAndPipeline(t *testing.T) {
	r := New().Normalize(italianRow())

	assertEqual(t, r.VenueID, "1234", "venue id")
	assertEqual(t, r.VenueName, "Bar Da Mario", "venue name")
	assertEqual(t, r.City, "Milano", "city")
	assertEqual(t, r.Region, "Lombardia", "region")
	assertEqual(t, r.CustomerType, "Cocktail Bar", "channel")
	assertEqual(t, r.BrandOwner, "Campari Group", "owner")
	assertEqual(t, r.Brand, "Aperol", "brand")
	assertEqual(t, r.ProductCategory, "Aperitivo", "product category")
	if r.Price != 8.5 {
		t.Errorf("price: got %v, want 8.5", r.Price)
	}
	if want := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC); !r.Date.Equal(want) {
		t.Errorf("date: got %v, want %v", r.Date, want)
	}
}

func TestNormalize_MissingFieldsUseSentinels(t *testing.T) {
	r := New().Normalize(RawRow{"brand": "Campari", "price": "  "})

	assertEqual(t, r.VenueName, UnknownVenue, "venue name")
	assertEqual(t, r.VenueAddress, UnknownAddress, "address")
	assertEqual(t, r.City, UnknownCity, "city")
	assertEqual(t, r.Region, UnknownRegion, "region")
	assertEqual(t, r.CustomerType, UnknownChannel, "channel")
	assertEqual(t, r.BrandOwner, UnknownOwner, "owner")
	assertEqual(t, r.MacroCategory, UnknownCategory, "macro")
	assertEqual(t, r.Cocktail, engine.GeneralItem, "cocktail")
	assertEqual(t, r.SubCategory, "", "sub category")
	assertEqual(t, r.VenueID, "", "venue id")
	if r.Price != 0 {
		t.Errorf("blank price: got %v, want 0", r.Price)
	}
	if !r.Date.IsZero() {
		t.Errorf("missing date: got %v, want zero", r.Date)
	}
	if !engine.IsSentinel(r.BrandOwner) || !engine.IsSentinel(r.Cocktail) {
		t.Error("fallback values must be engine sentinels")
	}
}

func TestNormalize_RowID(t *testing.T) {
	n := New()
	a := n.Normalize(italianRow())
	b := n.Normalize(italianRow())
	if a.RowID == "" || a.RowID != b.RowID {
		t.Errorf("derived row id must be stable and non-empty: %q vs %q", a.RowID, b.RowID)
	}

	other := italianRow()
	other["Marca"] = "campari"
	if n.Normalize(other).RowID == a.RowID {
		t.Error("different listings must get different row ids")
	}

	withID := italianRow()
	withID["row_id"] = "abc-1"
	assertEqual(t, n.Normalize(withID).RowID, "abc-1", "explicit row id")
}

func TestNormalize_Idempotent(t *testing.T) {
	master, err := NewProductMaster([]engine.ProductMasterEntry{
		{Brand: "Aperol", BrandOwner: "Campari Group", MacroCategory: "Spirits", ProductCategory: "Aperitivo"},
	})
	if err != nil {
		t.Fatal(err)
	}
	rows := []RawRow{
		italianRow(),
		{"venue": "caffè d'angolo", "region": "aosta valley", "brand": "moet & chandon", "cocktail": "mimosa", "price": 14},
		{"brand": "PROSECCO DOC", "owner": "n/a", "date": "2024-06-01T18:30:00Z"},
		{},
	}

	for _, n := range []*Normalizer{New(), New(WithProductMaster(master))} {
		for i, row := range rows {
			first := n.Normalize(row)
			second := n.Normalize(ToRaw(first))
			if first != second {
				t.Errorf("row %d: normalize is not idempotent\nfirst:  %+v\nsecond: %+v", i, first, second)
			}
		}
	}
}

func TestNormalize_ProductMasterEnrichment(t *testing.T) {
	master, err := NewProductMaster([]engine.ProductMasterEntry{
		{Brand: "Aperol", BrandOwner: "Campari Group", MacroCategory: "Spirits", ProductCategory: "Bitter", Aliases: []string{"Aperol Aperitivo"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	r := New(WithProductMaster(master)).Normalize(RawRow{
		"brand":            "APEROL APERITIVO",
		"brand_owner":      "someone else",
		"product_category": "aperitivo",
	})

	assertEqual(t, r.Brand, "Aperol", "brand")
	assertEqual(t, r.BrandOwner, "Campari Group", "owner")
	assertEqual(t, r.MacroCategory, "Spirits", "macro")
	assertEqual(t, r.ProductCategory, "Bitter", "product category")
}

func TestNormalize_ProductMasterValuesAreCanonical(t *testing.T) {
	master, err := NewProductMaster([]engine.ProductMasterEntry{
		{Brand: "aperol", BrandOwner: "campari group", MacroCategory: "spirits", ProductCategory: "bitter"},
	})
	if err != nil {
		t.Fatal(err)
	}
	n := New(WithProductMaster(master))

	enriched := n.Normalize(RawRow{"venue": "Bar Roma", "brand": "Aperol"})
	plain := n.Normalize(RawRow{"venue": "Bar Milano", "brand": "Bitter Campari", "brand_owner": "Campari Group"})

	assertEqual(t, enriched.Brand, "Aperol", "brand")
	assertEqual(t, enriched.BrandOwner, "Campari Group", "owner")
	assertEqual(t, enriched.MacroCategory, "Spirits", "macro")
	if got := engine.UniqueOwners([]engine.ListingRecord{enriched, plain}); got != 1 {
		t.Errorf("owners: got %d, want 1 (%q vs %q)", got, enriched.BrandOwner, plain.BrandOwner)
	}
}

func TestNormalizeAll_LogsSummary(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	n := New(WithLogger(zap.New(core)))

	out := n.NormalizeAll([]RawRow{italianRow(), {"venue": "x"}})
	if len(out) != 2 {
		t.Fatalf("got %d records, want 2", len(out))
	}

	entries := logs.FilterMessage("normalize: rows converted").All()
	if len(entries) != 1 {
		t.Fatalf("got %d summary logs, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["rows"] != int64(2) || fields["unknown_brands"] != int64(1) || fields["undated"] != int64(1) {
		t.Errorf("unexpected summary fields: %v", fields)
	}
}

func TestRawRow_FoldPrefersNonBlank(t *testing.T) {
	row := RawRow{"Venue Name": "", "venue_name": "Bar Roma", "VENUE-NAME": "Bar Milano"}
	got, ok := row.String("venue_name")
	if !ok {
		t.Fatal("expected a value")
	}
	// "VENUE-NAME" < "venue_name" byte-wise
	assertEqual(t, got, "Bar Milano", "folded duplicate")
}
