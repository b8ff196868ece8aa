package engine

import (
	"go.uber.org/zap"
)

// ============================================================================
// DASHBOARD — Full recomputation for one Query
// ============================================================================
// Entry point: Analyze(records, universe, query, opts...)
//
// Pipeline:
//   1. Restrict records to the caller's AccessScope
//   2. Partition into primary / comparison periods
//   3. Apply the FilterSet per period
//   4. Derive snapshots, deltas, rankings, heatmaps, competition views
//
// Every call recomputes from scratch; nothing derived is cached or shared.
// ============================================================================

// Query is one dashboard request.
type Query struct {
	Filters       FilterSet     `json:"filters"`
	Time          TimeSelection `json:"time"`
	Scope         AccessScope   `json:"-"`
	FocusOwner    string        `json:"focusOwner,omitempty"`
	FocusBrand    string        `json:"focusBrand,omitempty"`
	FocusCategory string        `json:"focusCategory,omitempty"`
	FocusCocktail string        `json:"focusCocktail,omitempty"`
}

// Snapshot holds the headline figures of one period.
type Snapshot struct {
	Period            string     `json:"period"`
	Range             DateRange  `json:"range"`
	Listings          int        `json:"listings"`
	Venues            int        `json:"venues"`
	Brands            int        `json:"brands"`
	Owners            int        `json:"owners"`
	Cocktails         int        `json:"cocktails"`
	AvgPrice          float64    `json:"avgPrice"`
	MarketPenetration float64    `json:"marketPenetration"`
	Owner             *OwnerKPIs `json:"owner,omitempty"`
	Brand             *BrandKPIs `json:"brand,omitempty"`
}

// OwnerKPIs is the portfolio view of one brand owner.
type OwnerKPIs struct {
	Owner          string         `json:"owner"`
	Listings       int            `json:"listings"`
	Venues         int            `json:"venues"`
	Brands         int            `json:"brands"`
	ShareOfMenu    float64        `json:"shareOfMenu"`
	ShareOfVenues  float64        `json:"shareOfVenues"`
	Depth          float64        `json:"depth"`
	Breadth        float64        `json:"breadth"`
	HeroBrand      string         `json:"heroBrand"`
	HeroDependency float64        `json:"heroDependency"`
	Penetration    []ChannelShare `json:"penetration"`
}

// BrandKPIs is the competitive view of one brand.
type BrandKPIs struct {
	Brand      string  `json:"brand"`
	Category   string  `json:"category"`
	Listings   int     `json:"listings"`
	Venues     int     `json:"venues"`
	AvgPrice   float64 `json:"avgPrice"`
	PriceIndex float64 `json:"priceIndex"`
	Top4Rate   float64 `json:"top4Rate"`
}

// Deltas compares the primary snapshot with the comparison one. Count and
// price fields are percent changes; share fields are point differences.
type Deltas struct {
	Listings         float64 `json:"listings"`
	Venues           float64 `json:"venues"`
	Brands           float64 `json:"brands"`
	Cocktails        float64 `json:"cocktails"`
	AvgPrice         float64 `json:"avgPrice"`
	OwnerShareOfMenu float64 `json:"ownerShareOfMenu"`
	OwnerVenues      float64 `json:"ownerVenues"`
	BrandVenues      float64 `json:"brandVenues"`
	BrandPriceIndex  float64 `json:"brandPriceIndex"`
}

// Dashboard is the complete derived payload for one Query.
type Dashboard struct {
	Query              Query          `json:"query"`
	Primary            Snapshot       `json:"primary"`
	Comparison         *Snapshot      `json:"comparison,omitempty"`
	Deltas             *Deltas        `json:"deltas,omitempty"`
	OwnerRanking       []RankedEntity `json:"ownerRanking"`
	BrandRanking       []RankedEntity `json:"brandRanking"`
	CityRanking        []RankedEntity `json:"cityRanking"`
	OwnerShareHeatmap  *Matrix        `json:"ownerShareHeatmap"`
	RegionHeatmap      *Matrix        `json:"regionHeatmap"`
	CoOccurrence       []CoOccurrence `json:"coOccurrence,omitempty"`
	WhiteSpots         []GapVenue     `json:"whiteSpots,omitempty"`
	CocktailVenueCount int            `json:"cocktailVenueCount,omitempty"`
}

// Analyze runs the full pipeline for q. records is the complete canonical set;
// universe is the unrestricted market universe (nil derives it from records).
func Analyze(records []ListingRecord, universe []MarketUniverseEntry, q Query, opts ...Option) *Dashboard {
	cfg := applyOptions(opts)
	q.Time = q.Time.Resolved()
	if universe == nil {
		universe = BuildUniverse(records)
	}

	visible := q.Scope.Restrict(records)
	sets := Partition(visible, q.Time)
	denominators := FilterUniverse(universe, q.Filters)

	cfg.Logger.Debug("engine: partitioned",
		zap.Int("records", len(records)),
		zap.Int("visible", len(visible)),
		zap.Int("primary", len(sets.Primary)),
		zap.Int("comparison", len(sets.Comparison)),
		zap.String("mode", string(q.Time.Mode)),
	)

	primaryCtx := MarketContext(sets.Primary, q.Filters)
	primary := ApplyFilters(sets.Primary, q.Filters)

	d := &Dashboard{
		Query:   q,
		Primary: snapshot(q.Time.Primary, sets.PrimaryRange, primary, primaryCtx, denominators, q),
	}

	if q.Time.Compares() && sets.ComparisonRange != nil {
		comparisonCtx := MarketContext(sets.Comparison, q.Filters)
		comparison := ApplyFilters(sets.Comparison, q.Filters)
		snap := snapshot(q.Time.Comparison, *sets.ComparisonRange, comparison, comparisonCtx, denominators, q)
		d.Comparison = &snap
		d.Deltas = deltas(d.Primary, snap)
	}

	var ownerPins, brandPins []string
	if q.FocusOwner != "" {
		ownerPins = []string{q.FocusOwner}
	}
	if q.FocusBrand != "" {
		brandPins = []string{q.FocusBrand}
	}
	d.OwnerRanking = RankBy(primaryCtx, DimBrandOwner, RankByListings, cfg.TopN, ownerPins...)
	d.BrandRanking = RankBy(primaryCtx, DimBrand, RankByVenues, cfg.TopN, brandPins...)
	d.CityRanking = RankBy(primary, DimCity, RankByVenues, cfg.TopN)

	d.OwnerShareHeatmap = VenueOwnerShare(primaryCtx, ownerPins, cfg.HeatmapRows, cfg.HeatmapCols)
	d.RegionHeatmap = RegionCompetitorPresence(primaryCtx, q.FocusBrand, cfg.HeatmapCols)

	if q.FocusBrand != "" {
		d.CoOccurrence = CoOccurrenceTopN(q.FocusBrand, q.FocusCategory, primaryCtx, cfg.CoOccurrence)
	}
	if q.FocusCocktail != "" {
		d.CocktailVenueCount = CocktailVenues(q.FocusCocktail, primaryCtx)
		if q.FocusBrand != "" {
			d.WhiteSpots = WhiteSpots(q.FocusCocktail, q.FocusBrand, primaryCtx)
		}
	}

	cfg.Logger.Debug("engine: dashboard computed",
		zap.Int("listings", d.Primary.Listings),
		zap.Int("venues", d.Primary.Venues),
		zap.Int("white_spots", len(d.WhiteSpots)),
	)
	return d
}

// MarketContext applies every filter except brand and owner selections, so
// competitive views keep the competitors of the focused portfolio.
func MarketContext(records []ListingRecord, f FilterSet) []ListingRecord {
	return ApplyFilters(records, f.With(DimBrandOwner).With(DimBrand))
}

func snapshot(p Period, r DateRange, filtered, market []ListingRecord, universe []MarketUniverseEntry, q Query) Snapshot {
	s := Snapshot{
		Period:            p.String(),
		Range:             r,
		Listings:          len(filtered),
		Venues:            UniqueVenues(filtered),
		Brands:            UniqueBrands(filtered),
		Owners:            UniqueOwners(filtered),
		Cocktails:         UniqueCocktails(filtered),
		AvgPrice:          AvgPrice(filtered),
		MarketPenetration: MarketPenetration(filtered, universe),
	}
	if q.FocusOwner != "" {
		s.Owner = ownerKPIs(q.FocusOwner, market, universe)
	}
	if q.FocusBrand != "" {
		s.Brand = brandKPIs(q.FocusBrand, q.FocusCategory, market)
	}
	return s
}

func ownerKPIs(owner string, market []ListingRecord, universe []MarketUniverseEntry) *OwnerKPIs {
	owned := OwnerRecords(market, owner)
	hero, dependency := HeroBrand(owned)
	return &OwnerKPIs{
		Owner:          owner,
		Listings:       len(owned),
		Venues:         UniqueVenues(owned),
		Brands:         UniqueBrands(owned),
		ShareOfMenu:    ShareOfMenu(owned, market),
		ShareOfVenues:  ShareOfVenues(owned, market),
		Depth:          DistributionDepth(owned),
		Breadth:        DistributionBreadth(owned),
		HeroBrand:      hero,
		HeroDependency: dependency,
		Penetration:    PenetrationByChannel(owned, universe),
	}
}

func brandKPIs(brand, category string, market []ListingRecord) *BrandKPIs {
	branded := BrandRecords(market, brand)
	if category == "" {
		category = dominantCategory(branded)
	}
	return &BrandKPIs{
		Brand:      brand,
		Category:   category,
		Listings:   len(branded),
		Venues:     UniqueVenues(branded),
		AvgPrice:   AvgPrice(branded),
		PriceIndex: PriceIndexVsCategory(market, brand, category),
		Top4Rate:   Top4PositionRate(market, brand, category),
	}
}

// dominantCategory is the product category with most listings, first seen
// winning ties.
func dominantCategory(records []ListingRecord) string {
	ranked := RankBy(records, DimProductCategory, RankByListings, 1)
	if len(ranked) == 0 {
		return ""
	}
	return ranked[0].Name
}

func deltas(cur, prev Snapshot) *Deltas {
	d := &Deltas{
		Listings:  PercentChange(float64(cur.Listings), float64(prev.Listings)),
		Venues:    PercentChange(float64(cur.Venues), float64(prev.Venues)),
		Brands:    PercentChange(float64(cur.Brands), float64(prev.Brands)),
		Cocktails: PercentChange(float64(cur.Cocktails), float64(prev.Cocktails)),
		AvgPrice:  PercentChange(cur.AvgPrice, prev.AvgPrice),
	}
	if cur.Owner != nil && prev.Owner != nil {
		d.OwnerShareOfMenu = cur.Owner.ShareOfMenu - prev.Owner.ShareOfMenu
		d.OwnerVenues = PercentChange(float64(cur.Owner.Venues), float64(prev.Owner.Venues))
	}
	if cur.Brand != nil && prev.Brand != nil {
		d.BrandVenues = PercentChange(float64(cur.Brand.Venues), float64(prev.Brand.Venues))
		d.BrandPriceIndex = cur.Brand.PriceIndex - prev.Brand.PriceIndex
	}
	return d
}
