package engine

import (
	"math"
	"sort"
	"strings"
)

// ============================================================================
// AGGREGATORS — Grouping, set cardinality and zero-safe ratios
// ============================================================================
// Pure helpers composed by every metric. Grouping preserves first-seen order
// so downstream stable sorts break ties by insertion order.
// ============================================================================

// Group is one bucket of records sharing a key.
type Group struct {
	Key     string          `json:"key"`
	Records []ListingRecord `json:"-"`
}

// GroupBy buckets records by keyFn, in first-seen key order.
func GroupBy(records []ListingRecord, keyFn func(ListingRecord) string) []Group {
	index := make(map[string]int)
	var groups []Group
	for _, r := range records {
		key := keyFn(r)
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, Group{Key: key})
		}
		groups[i].Records = append(groups[i].Records, r)
	}
	return groups
}

// GroupByDimension buckets records by a dimension value.
func GroupByDimension(records []ListingRecord, d Dimension) []Group {
	return GroupBy(records, func(r ListingRecord) string { return r.Value(d) })
}

// ============================================================================
// SET CARDINALITY
// ============================================================================

// distinct counts non-sentinel values of keyFn.
func distinct(records []ListingRecord, keyFn func(ListingRecord) string) int {
	seen := make(map[string]struct{})
	for _, r := range records {
		v := keyFn(r)
		if IsSentinel(v) {
			continue
		}
		seen[v] = struct{}{}
	}
	return len(seen)
}

// UniqueVenues counts distinct venue identifiers.
func UniqueVenues(records []ListingRecord) int {
	return distinct(records, ListingRecord.VenueKey)
}

// UniqueBrands counts distinct brand names.
func UniqueBrands(records []ListingRecord) int {
	return distinct(records, func(r ListingRecord) string { return r.Brand })
}

// UniqueOwners counts distinct brand owners.
func UniqueOwners(records []ListingRecord) int {
	return distinct(records, func(r ListingRecord) string { return r.BrandOwner })
}

// UniqueCocktails counts distinct cocktail names.
func UniqueCocktails(records []ListingRecord) int {
	return distinct(records, func(r ListingRecord) string { return r.Cocktail })
}

// VenueSet returns the set of venue identifiers in records.
func VenueSet(records []ListingRecord) map[string]struct{} {
	set := make(map[string]struct{})
	for _, r := range records {
		if k := r.VenueKey(); !IsSentinel(k) {
			set[k] = struct{}{}
		}
	}
	return set
}

// UniqueValues returns distinct non-empty values for a dimension, sorted
// case-insensitively.
func UniqueValues(records []ListingRecord, d Dimension) []string {
	seen := make(map[string]bool)
	var result []string
	for _, r := range records {
		val := r.Value(d)
		if val != "" && !seen[val] {
			seen[val] = true
			result = append(result, val)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return strings.ToLower(result[i]) < strings.ToLower(result[j])
	})
	return result
}

// ============================================================================
// RATIOS
// ============================================================================

// Ratio returns num/den, or 0 when den is zero.
func Ratio(num, den float64) float64 {
	if den == 0 || math.IsNaN(den) || math.IsInf(den, 0) {
		return 0
	}
	v := num / den
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Percent returns num/den × 100, or 0 when den is zero.
func Percent(num, den float64) float64 {
	return Ratio(num, den) * 100
}

// PercentChange returns (current-previous)/previous × 100, 0 when previous is 0.
func PercentChange(current, previous float64) float64 {
	return Percent(current-previous, previous)
}

// AvgPrice averages positive prices; unparsed (zero) prices are ignored.
func AvgPrice(records []ListingRecord) float64 {
	var total float64
	var n int
	for _, r := range records {
		if r.Price > 0 {
			total += r.Price
			n++
		}
	}
	return Ratio(total, float64(n))
}

// RoundTo1 rounds to 1 decimal place.
func RoundTo1(v float64) float64 {
	return math.Round(v*10) / 10
}

// RoundTo2 rounds to 2 decimal places.
func RoundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}
