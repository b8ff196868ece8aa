package engine

import "strings"

// ============================================================================
// MARKET UNIVERSE — Penetration denominators
// ============================================================================
// The universe must describe the whole venue population. Callers derive it
// from the unrestricted record set, never from a permission-scoped one.
// ============================================================================

// BuildUniverse counts distinct venues per (region, city, customer type).
// Entries keep first-seen order.
func BuildUniverse(records []ListingRecord) []MarketUniverseEntry {
	type slice struct {
		entry  MarketUniverseEntry
		venues map[string]struct{}
	}
	index := make(map[[3]string]int)
	var slices []*slice
	for _, r := range records {
		key := [3]string{r.Region, r.City, r.CustomerType}
		i, ok := index[key]
		if !ok {
			i = len(slices)
			index[key] = i
			slices = append(slices, &slice{
				entry:  MarketUniverseEntry{Region: r.Region, City: r.City, CustomerType: r.CustomerType},
				venues: make(map[string]struct{}),
			})
		}
		if k := r.VenueKey(); !IsSentinel(k) {
			slices[i].venues[k] = struct{}{}
		}
	}

	out := make([]MarketUniverseEntry, 0, len(slices))
	for _, s := range slices {
		s.entry.Venues = len(s.venues)
		out = append(out, s.entry)
	}
	return out
}

// FilterUniverse narrows the universe to the region, city and customer-type
// selections of f. Brand-level filters do not apply to the universe.
func FilterUniverse(universe []MarketUniverseEntry, f FilterSet) []MarketUniverseEntry {
	regions := toLowerSet(f.Regions)
	cities := toLowerSet(f.Cities)
	channels := make(map[string]bool, len(f.CustomerTypes))
	for _, c := range f.CustomerTypes {
		channels[ChannelKey(c)] = true
	}

	out := make([]MarketUniverseEntry, 0, len(universe))
	for _, e := range universe {
		if len(regions) > 0 && !regions[strings.ToLower(e.Region)] {
			continue
		}
		if len(cities) > 0 && !cities[strings.ToLower(e.City)] {
			continue
		}
		if len(channels) > 0 && !channels[ChannelKey(e.CustomerType)] {
			continue
		}
		out = append(out, e)
	}
	return out
}

// UniverseVenues sums the venue counts of a universe slice.
func UniverseVenues(universe []MarketUniverseEntry) int {
	total := 0
	for _, e := range universe {
		total += e.Venues
	}
	return total
}

// MarketPenetration is the share of all universe venues carrying records.
func MarketPenetration(records []ListingRecord, universe []MarketUniverseEntry) float64 {
	return Percent(float64(UniqueVenues(records)), float64(UniverseVenues(universe)))
}
