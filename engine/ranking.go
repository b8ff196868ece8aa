package engine

import (
	"sort"
	"strings"
)

// ============================================================================
// RANKING — Top-N selection with pinned entities
// ============================================================================

// TopN sorts entities by score descending (ties keep insertion order) and
// keeps the first n. Every pinned entity is included even if it ranks lower,
// displacing the lowest-ranked ones, and pinned entities lead the result in
// the order given. n <= 0 keeps all entities.
func TopN[T comparable](entities []T, score func(T) float64, n int, pinned ...T) []T {
	ranked := append([]T(nil), entities...)
	sort.SliceStable(ranked, func(i, j int) bool { return score(ranked[i]) > score(ranked[j]) })

	pins := dedupe(pinned)
	isPinned := make(map[T]bool, len(pins))
	for _, p := range pins {
		isPinned[p] = true
	}

	limit := n
	if limit <= 0 {
		limit = len(ranked)
		for _, p := range pins {
			if !containsValue(ranked, p) {
				limit++
			}
		}
	}

	out := make([]T, 0, limit)
	out = append(out, pins...)
	for _, e := range ranked {
		if len(out) >= limit {
			break
		}
		if !isPinned[e] {
			out = append(out, e)
		}
	}
	return out
}

func dedupe[T comparable](items []T) []T {
	seen := make(map[T]bool, len(items))
	out := make([]T, 0, len(items))
	for _, it := range items {
		if !seen[it] {
			seen[it] = true
			out = append(out, it)
		}
	}
	return out
}

func containsValue[T comparable](items []T, v T) bool {
	for _, it := range items {
		if it == v {
			return true
		}
	}
	return false
}

// ============================================================================
// ENTITY RANKING
// ============================================================================

// RankMetric selects what an entity is ranked by.
type RankMetric string

const (
	RankByListings RankMetric = "listings"
	RankByVenues   RankMetric = "venues"
)

// RankedEntity is one dimension value with its listing and venue counts.
type RankedEntity struct {
	Name     string  `json:"name"`
	Listings int     `json:"listings"`
	Venues   int     `json:"venues"`
	Share    float64 `json:"share"`
	Pinned   bool    `json:"pinned,omitempty"`
}

// RankBy ranks the values of dimension d in records by the chosen metric and
// returns the top n, with pinned values (matched case-insensitively) first.
// Share is the entity's listings over all listings × 100.
func RankBy(records []ListingRecord, d Dimension, metric RankMetric, n int, pinned ...string) []RankedEntity {
	groups := GroupByDimension(records, d)
	byKey := make(map[string]RankedEntity, len(groups))
	names := make([]string, 0, len(groups))
	for _, g := range groups {
		if IsSentinel(g.Key) {
			continue
		}
		byKey[g.Key] = RankedEntity{
			Name:     g.Key,
			Listings: len(g.Records),
			Venues:   UniqueVenues(g.Records),
			Share:    Percent(float64(len(g.Records)), float64(len(records))),
		}
		names = append(names, g.Key)
	}

	score := func(name string) float64 {
		e := byKey[name]
		if metric == RankByVenues {
			return float64(e.Venues)
		}
		return float64(e.Listings)
	}

	pins := resolveNames(names, pinned)
	top := TopN(names, score, n, pins...)

	out := make([]RankedEntity, 0, len(top))
	for _, name := range top {
		e, ok := byKey[name]
		if !ok {
			e = RankedEntity{Name: name}
		}
		e.Pinned = containsValue(pins, name)
		out = append(out, e)
	}
	return out
}

// resolveNames maps pinned names onto their spelling in names, keeping
// unknown names as given.
func resolveNames(names, pinned []string) []string {
	out := make([]string, 0, len(pinned))
	for _, p := range pinned {
		if strings.TrimSpace(p) == "" {
			continue
		}
		resolved := p
		for _, n := range names {
			if strings.EqualFold(n, p) {
				resolved = n
				break
			}
		}
		out = append(out, resolved)
	}
	return out
}
