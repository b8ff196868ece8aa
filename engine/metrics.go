package engine

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ============================================================================
// METRICS — Owner and brand KPIs over already-filtered record sets
// ============================================================================
// No function here filters on its own: callers pass the slice they want
// measured. Every ratio is zero-safe.
// ============================================================================

// ============================================================================
// SHARE OF MENU
// ============================================================================

// ShareOfMenu returns len(subset)/len(total) × 100.
func ShareOfMenu(subset, total []ListingRecord) float64 {
	return Percent(float64(len(subset)), float64(len(total)))
}

// ShareOfVenues returns unique venues of subset over unique venues of total × 100.
func ShareOfVenues(subset, total []ListingRecord) float64 {
	return Percent(float64(UniqueVenues(subset)), float64(UniqueVenues(total)))
}

// OwnerRecords selects one owner's listings (case-insensitive).
func OwnerRecords(records []ListingRecord, owner string) []ListingRecord {
	return ApplyFilters(records, FilterSet{BrandOwners: []string{owner}})
}

// BrandRecords selects one brand's listings (case-insensitive).
func BrandRecords(records []ListingRecord, brand string) []ListingRecord {
	return ApplyFilters(records, FilterSet{Brands: []string{brand}})
}

// ============================================================================
// CHANNEL PENETRATION
// ============================================================================

// channelSynonyms collapses known singular/plural channel spellings.
var channelSynonyms = map[string]string{
	"restaurants": "restaurant",
}

// ChannelKey normalizes a customer-type label for comparison.
func ChannelKey(channel string) string {
	key := strings.ToLower(strings.TrimSpace(channel))
	folder := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(folder, key); err == nil {
		key = folded
	}
	if canon, ok := channelSynonyms[key]; ok {
		return canon
	}
	return key
}

// ChannelPenetration returns the share of all venues in channel (per the
// market universe) that appear in ownerRecords.
func ChannelPenetration(ownerRecords []ListingRecord, channel string, universe []MarketUniverseEntry) float64 {
	key := ChannelKey(channel)

	venues := make(map[string]struct{})
	for _, r := range ownerRecords {
		if ChannelKey(r.CustomerType) != key {
			continue
		}
		if k := r.VenueKey(); !IsSentinel(k) {
			venues[k] = struct{}{}
		}
	}

	return Percent(float64(len(venues)), float64(ChannelUniverse(universe, channel)))
}

// ChannelUniverse sums universe venue counts for a channel.
func ChannelUniverse(universe []MarketUniverseEntry, channel string) int {
	key := ChannelKey(channel)
	total := 0
	for _, e := range universe {
		if ChannelKey(e.CustomerType) == key {
			total += e.Venues
		}
	}
	return total
}

// PenetrationByChannel computes ChannelPenetration for every channel present
// in the universe, in first-seen order.
func PenetrationByChannel(ownerRecords []ListingRecord, universe []MarketUniverseEntry) []ChannelShare {
	var out []ChannelShare
	seen := make(map[string]bool)
	for _, e := range universe {
		key := ChannelKey(e.CustomerType)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, ChannelShare{
			Channel:     e.CustomerType,
			Venues:      ChannelUniverse(universe, e.CustomerType),
			Penetration: ChannelPenetration(ownerRecords, e.CustomerType, universe),
		})
	}
	return out
}

// ChannelShare is one channel's penetration figure.
type ChannelShare struct {
	Channel     string  `json:"channel"`
	Venues      int     `json:"venues"`
	Penetration float64 `json:"penetration"`
}

// ============================================================================
// PORTFOLIO
// ============================================================================

// HeroBrand returns the owner's most-listed brand and its share of all the
// owner's listings. Ties go to the brand seen first; sentinel brands never win.
func HeroBrand(ownerRecords []ListingRecord) (string, float64) {
	groups := GroupBy(ownerRecords, func(r ListingRecord) string { return r.Brand })
	best := -1
	for i, g := range groups {
		if IsSentinel(g.Key) {
			continue
		}
		if best < 0 || len(g.Records) > len(groups[best].Records) {
			best = i
		}
	}
	if best < 0 {
		return "", 0
	}
	return groups[best].Key, Percent(float64(len(groups[best].Records)), float64(len(ownerRecords)))
}

// HeroBrandDependency is the hero brand's share of the owner's listings.
func HeroBrandDependency(ownerRecords []ListingRecord) float64 {
	_, share := HeroBrand(ownerRecords)
	return share
}

// DistributionDepth is the average number of listings per venue.
func DistributionDepth(ownerRecords []ListingRecord) float64 {
	return Ratio(float64(len(ownerRecords)), float64(UniqueVenues(ownerRecords)))
}

// DistributionBreadth is the average number of distinct brands per venue.
func DistributionBreadth(ownerRecords []ListingRecord) float64 {
	return Ratio(float64(UniqueBrands(ownerRecords)), float64(UniqueVenues(ownerRecords)))
}

// ============================================================================
// PRICING
// ============================================================================

// PriceIndex returns (brand average price / category average price) × 100.
func PriceIndex(brandRecords, categoryRecords []ListingRecord) float64 {
	return Percent(AvgPrice(brandRecords), AvgPrice(categoryRecords))
}

// PriceIndexVsCategory indexes a brand's price against its product category
// within records. An empty category compares against every listing.
func PriceIndexVsCategory(records []ListingRecord, brand, category string) float64 {
	scope := categoryScope(records, category)
	return PriceIndex(BrandRecords(scope, brand), scope)
}

// Top4PositionRate is the share of the brand's venues where it ranks among
// the four most expensive listings of the category at that venue.
func Top4PositionRate(records []ListingRecord, brand, category string) float64 {
	return TopKPositionRate(records, brand, category, 4)
}

// TopKPositionRate generalizes Top4PositionRate to any k.
func TopKPositionRate(records []ListingRecord, brand, category string, k int) float64 {
	scope := categoryScope(records, category)
	brandKey := strings.ToLower(brand)

	byVenue := GroupBy(scope, ListingRecord.VenueKey)
	present, inTop := 0, 0
	for _, g := range byVenue {
		if IsSentinel(g.Key) || !containsBrand(g.Records, brandKey) {
			continue
		}
		present++

		ranked := append([]ListingRecord(nil), g.Records...)
		sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Price > ranked[j].Price })
		if k > 0 && len(ranked) > k {
			ranked = ranked[:k]
		}
		if containsBrand(ranked, brandKey) {
			inTop++
		}
	}
	return Percent(float64(inTop), float64(present))
}

func containsBrand(records []ListingRecord, brandKey string) bool {
	for _, r := range records {
		if strings.ToLower(r.Brand) == brandKey {
			return true
		}
	}
	return false
}

func categoryScope(records []ListingRecord, category string) []ListingRecord {
	if category == "" {
		return records
	}
	return ApplyFilters(records, FilterSet{ProductCategories: []string{category}})
}
