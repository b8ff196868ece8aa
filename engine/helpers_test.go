package engine

import (
	"math"
	"testing"
	"time"
)

// ============================================================================
// FIXTURES
// ============================================================================

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

// listing builds a Lombardia/Milano record; tests override fields as needed.
func listing(venue, owner, brand string, price float64, date string) ListingRecord {
	return ListingRecord{
		VenueID:         venue,
		VenueName:       "Venue " + venue,
		City:            "Milano",
		Region:          "Lombardia",
		CustomerType:    "Bar",
		BrandOwner:      owner,
		Brand:           brand,
		MacroCategory:   "Spirits",
		ProductCategory: "Vermouth",
		Cocktail:        GeneralItem,
		Price:           price,
		Date:            day(date),
	}
}

func withPlace(r ListingRecord, region, city, channel string) ListingRecord {
	r.Region, r.City, r.CustomerType = region, city, channel
	return r
}

func withCategory(r ListingRecord, macro, product string) ListingRecord {
	r.MacroCategory, r.ProductCategory = macro, product
	return r
}

func withCocktail(r ListingRecord, name string) ListingRecord {
	r.Cocktail = name
	r.MacroCategory = "Cocktail"
	r.ProductCategory = "Aperitivo"
	return r
}

// ============================================================================
// HELPERS
// ============================================================================

func assertFloat(t *testing.T, got, want float64, msg string) {
	t.Helper()
	if math.IsNaN(got) || math.IsInf(got, 0) {
		t.Errorf("%s: got %v, want finite %v", msg, got, want)
		return
	}
	if math.Abs(got-want) > 1e-6 {
		t.Errorf("%s: got %v, want %v", msg, got, want)
	}
}

func assertInt(t *testing.T, got, want int, msg string) {
	t.Helper()
	if got != want {
		t.Errorf("%s: got %d, want %d", msg, got, want)
	}
}

func assertEqual(t *testing.T, got, want, msg string) {
	t.Helper()
	if got != want {
		t.Errorf("%s: got %q, want %q", msg, got, want)
	}
}

func assertStrings(t *testing.T, got, want []string, msg string) {
	t.Helper()
	if len(got) != len(want) {
		t.Errorf("%s: got %v, want %v", msg, got, want)
		return
	}
	for i := range got {
		if got[i] != want[i] {
			t.Errorf("%s: got %v, want %v", msg, got, want)
			return
		}
	}
}
