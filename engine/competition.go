package engine

import (
	"sort"
	"strings"
)

// ============================================================================
// COMPETITION — Co-occurrence and white-spot (gap) analysis
// ============================================================================

// CoOccurrence is one competitor brand sharing venues with a target brand.
type CoOccurrence struct {
	Brand        string  `json:"brand"`
	BrandOwner   string  `json:"brandOwner"`
	SharedVenues int     `json:"sharedVenues"`
	Rate         float64 `json:"rate"`
}

// CoOccurrenceLimit is the number of competitors CoOccurrenceRate returns.
const CoOccurrenceLimit = 5

// CoOccurrenceRate finds the brands that appear alongside brand in the same
// venues within category (empty = any category). Rate is shared venues over
// the target brand's venue count × 100. The top five are returned, sorted by
// shared venues descending, first-seen order breaking ties.
func CoOccurrenceRate(brand, category string, records []ListingRecord) []CoOccurrence {
	return CoOccurrenceTopN(brand, category, records, CoOccurrenceLimit)
}

// CoOccurrenceTopN is CoOccurrenceRate with a caller-chosen limit (<=0 = all).
func CoOccurrenceTopN(brand, category string, records []ListingRecord, n int) []CoOccurrence {
	scope := categoryScope(records, category)
	brandKey := strings.ToLower(brand)

	target := make(map[string]struct{})
	for _, r := range scope {
		if strings.ToLower(r.Brand) == brandKey {
			if k := r.VenueKey(); !IsSentinel(k) {
				target[k] = struct{}{}
			}
		}
	}
	if len(target) == 0 {
		return []CoOccurrence{}
	}

	type tally struct {
		brand  string
		owner  string
		venues map[string]struct{}
	}
	index := make(map[string]int)
	var tallies []*tally
	for _, r := range scope {
		key := strings.ToLower(r.Brand)
		if key == brandKey || IsSentinel(r.Brand) {
			continue
		}
		venue := r.VenueKey()
		if _, ok := target[venue]; !ok {
			continue
		}
		i, ok := index[key]
		if !ok {
			i = len(tallies)
			index[key] = i
			tallies = append(tallies, &tally{brand: r.Brand, owner: r.BrandOwner, venues: make(map[string]struct{})})
		}
		tallies[i].venues[venue] = struct{}{}
	}

	out := make([]CoOccurrence, 0, len(tallies))
	for _, t := range tallies {
		out = append(out, CoOccurrence{
			Brand:        t.brand,
			BrandOwner:   t.owner,
			SharedVenues: len(t.venues),
			Rate:         Percent(float64(len(t.venues)), float64(len(target))),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SharedVenues > out[j].SharedVenues })
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// ============================================================================
// STRICT COCKTAIL CLASSIFICATION
// ============================================================================

var (
	cocktailMarker = "cocktail"
	wineMarkers    = []string{"wine", "vino", "vini", "prosecco", "spumante"}
	beerMarkers    = []string{"beer", "birra", "birre"}
)

// IsStrictCocktail reports whether a listing's category texts mark it as a
// cocktail without also carrying a wine or beer marker.
func IsStrictCocktail(r ListingRecord) bool {
	text := strings.ToLower(strings.Join([]string{r.MacroCategory, r.ProductCategory, r.SubCategory}, " "))
	if !strings.Contains(text, cocktailMarker) {
		return false
	}
	for _, m := range wineMarkers {
		if strings.Contains(text, m) {
			return false
		}
	}
	for _, m := range beerMarkers {
		if strings.Contains(text, m) {
			return false
		}
	}
	return true
}

// ============================================================================
// WHITE SPOTS
// ============================================================================

// GapVenue is a venue serving a cocktail without the target brand.
type GapVenue struct {
	VenueID       string   `json:"venueId"`
	VenueName     string   `json:"venueName"`
	City          string   `json:"city"`
	Region        string   `json:"region"`
	CustomerType  string   `json:"customerType"`
	CurrentBrands []string `json:"currentBrands"`
	AvgPrice      float64  `json:"avgPrice"`
}

// WhiteSpots returns the venues serving cocktail (strictly classified) where
// targetBrand is not the brand used for it, in first-seen venue order.
func WhiteSpots(cocktail, targetBrand string, records []ListingRecord) []GapVenue {
	cocktailKey := strings.ToLower(strings.TrimSpace(cocktail))
	brandKey := strings.ToLower(strings.TrimSpace(targetBrand))

	serving := make([]ListingRecord, 0)
	for _, r := range records {
		if !r.IsCocktail() || strings.ToLower(r.Cocktail) != cocktailKey {
			continue
		}
		if IsStrictCocktail(r) {
			serving = append(serving, r)
		}
	}

	out := make([]GapVenue, 0)
	for _, g := range GroupBy(serving, ListingRecord.VenueKey) {
		if IsSentinel(g.Key) || containsBrand(g.Records, brandKey) {
			continue
		}
		first := g.Records[0]
		var brands []string
		seen := make(map[string]bool)
		for _, r := range g.Records {
			if !seen[r.Brand] && !IsSentinel(r.Brand) {
				seen[r.Brand] = true
				brands = append(brands, r.Brand)
			}
		}
		out = append(out, GapVenue{
			VenueID:       g.Key,
			VenueName:     first.VenueName,
			City:          first.City,
			Region:        first.Region,
			CustomerType:  first.CustomerType,
			CurrentBrands: brands,
			AvgPrice:      AvgPrice(g.Records),
		})
	}
	return out
}

// CocktailVenues counts venues serving cocktail under strict classification.
func CocktailVenues(cocktail string, records []ListingRecord) int {
	cocktailKey := strings.ToLower(strings.TrimSpace(cocktail))
	venues := make(map[string]struct{})
	for _, r := range records {
		if r.IsCocktail() && strings.ToLower(r.Cocktail) == cocktailKey && IsStrictCocktail(r) {
			if k := r.VenueKey(); !IsSentinel(k) {
				venues[k] = struct{}{}
			}
		}
	}
	return len(venues)
}
