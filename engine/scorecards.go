package engine

import (
	"context"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
)

// ============================================================================
// SCORECARDS — Per-owner KPIs computed in parallel
// ============================================================================
// Owners are independent shards. Each worker fills its own slot; results are
// merged and sorted afterwards, so output never depends on scheduling.
// ============================================================================

// OwnerScorecard summarizes one brand owner against the whole record set.
type OwnerScorecard struct {
	Owner             string  `json:"owner"`
	Listings          int     `json:"listings"`
	Venues            int     `json:"venues"`
	Brands            int     `json:"brands"`
	ShareOfMenu       float64 `json:"shareOfMenu"`
	ShareOfVenues     float64 `json:"shareOfVenues"`
	Depth             float64 `json:"depth"`
	Breadth           float64 `json:"breadth"`
	HeroBrand         string  `json:"heroBrand"`
	HeroDependency    float64 `json:"heroDependency"`
	MarketPenetration float64 `json:"marketPenetration"`
}

// OwnerScorecards computes a scorecard for every owner in records, sorted by
// listings descending then owner name. workers <= 0 uses GOMAXPROCS.
func OwnerScorecards(ctx context.Context, records []ListingRecord, universe []MarketUniverseEntry, workers int) ([]OwnerScorecard, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	var groups []Group
	for _, g := range GroupByDimension(records, DimBrandOwner) {
		if !IsSentinel(g.Key) {
			groups = append(groups, g)
		}
	}

	out := make([]OwnerScorecard, len(groups))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, grp := range groups {
		i, grp := i, grp
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			hero, dependency := HeroBrand(grp.Records)
			out[i] = OwnerScorecard{
				Owner:             grp.Key,
				Listings:          len(grp.Records),
				Venues:            UniqueVenues(grp.Records),
				Brands:            UniqueBrands(grp.Records),
				ShareOfMenu:       ShareOfMenu(grp.Records, records),
				ShareOfVenues:     ShareOfVenues(grp.Records, records),
				Depth:             DistributionDepth(grp.Records),
				Breadth:           DistributionBreadth(grp.Records),
				HeroBrand:         hero,
				HeroDependency:    dependency,
				MarketPenetration: MarketPenetration(grp.Records, universe),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Listings != out[j].Listings {
			return out[i].Listings > out[j].Listings
		}
		return strings.ToLower(out[i].Owner) < strings.ToLower(out[j].Owner)
	})
	return out, nil
}

// CountVenuesSharded counts unique venues by splitting records into shards,
// collecting partial venue sets concurrently and merging them. The result
// equals UniqueVenues for any shard count.
func CountVenuesSharded(ctx context.Context, records []ListingRecord, shards int) (int, error) {
	if shards <= 1 || len(records) < shards {
		return UniqueVenues(records), nil
	}

	size := (len(records) + shards - 1) / shards
	partials := make([]map[string]struct{}, shards)
	g, gctx := errgroup.WithContext(ctx)
	for s := 0; s < shards; s++ {
		lo := s * size
		if lo >= len(records) {
			break
		}
		hi := lo + size
		if hi > len(records) {
			hi = len(records)
		}
		s, chunk := s, records[lo:hi]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			partials[s] = VenueSet(chunk)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	merged := make(map[string]struct{})
	for _, p := range partials {
		for k := range p {
			merged[k] = struct{}{}
		}
	}
	return len(merged), nil
}
