package engine

import (
	"strings"
)

// ============================================================================
// FILTERS — Conjunctive Multi-Value Dimension Filtering
// ============================================================================
// Single-pass filter: checks ALL active dimension constraints per record.
// Values within a dimension are OR-combined, dimensions are AND-combined.
// ============================================================================

// ApplyFilters returns the records matching every non-empty dimension of f.
// An empty FilterSet returns records unchanged.
func ApplyFilters(records []ListingRecord, f FilterSet) []ListingRecord {
	m := NewMatcher(f)
	if m.IsEmpty() {
		return records
	}

	out := make([]ListingRecord, 0, len(records))
	for _, r := range records {
		if m.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

// Matcher is a FilterSet compiled into lowercase lookup sets.
type Matcher struct {
	dims []Dimension
	sets map[Dimension]map[string]bool
}

// NewMatcher pre-builds lookup sets for each active dimension.
func NewMatcher(f FilterSet) *Matcher {
	m := &Matcher{sets: make(map[Dimension]map[string]bool)}
	for _, d := range Dimensions {
		if vals := f.Values(d); len(vals) > 0 {
			m.dims = append(m.dims, d)
			m.sets[d] = toLowerSet(vals)
		}
	}
	return m
}

// IsEmpty reports whether the matcher accepts every record.
func (m *Matcher) IsEmpty() bool { return len(m.dims) == 0 }

// Match reports whether r satisfies every active dimension.
// A record with an empty field only matches an explicit "" entry.
func (m *Matcher) Match(r ListingRecord) bool {
	for _, d := range m.dims {
		if !m.sets[d][strings.ToLower(r.Value(d))] {
			return false
		}
	}
	return true
}

// toLowerSet converts a string slice to a lowercase lookup set.
func toLowerSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[strings.ToLower(item)] = true
	}
	return set
}

// ============================================================================
// ACCESS SCOPE — permission restriction applied before business filters
// ============================================================================

// AccessScope restricts the visible record set to a user's brand owners.
// An empty AllowedOwners list means unrestricted access.
type AccessScope struct {
	AllowedOwners []string `json:"allowedOwners,omitempty"`
}

// Unrestricted reports whether the scope lets every record through.
func (s AccessScope) Unrestricted() bool { return len(s.AllowedOwners) == 0 }

// Restrict returns the visible record set. It must run before ApplyFilters;
// the market universe is never passed through it.
func (s AccessScope) Restrict(records []ListingRecord) []ListingRecord {
	if s.Unrestricted() {
		return records
	}
	return ApplyFilters(records, FilterSet{BrandOwners: s.AllowedOwners})
}
