package engine

import (
	"strings"
	"time"
)

// ============================================================================
// MENULENS ENGINE TYPES — Canonical HORECA Listing Model
// ============================================================================
// Everything in this package operates on []ListingRecord produced by the
// normalize package. Records are never mutated; every derived view is a new
// slice.
// ============================================================================

// Sentinel values written by the normalizer when a raw field is absent.
const (
	// GeneralItem marks a listing that is not a cocktail.
	GeneralItem = "General Item"
	// UnknownPrefix starts every "Unknown X" fallback value.
	UnknownPrefix = "Unknown"
	// NotAvailable is the literal N/A token kept in fixed casing.
	NotAvailable = "N/A"
)

// ============================================================================
// LISTING RECORD
// ============================================================================

// ListingRecord is one menu listing of one brand's product at one venue on
// one date.
type ListingRecord struct {
	RowID           string    `json:"rowId"`
	VenueID         string    `json:"venueId"`
	VenueName       string    `json:"venueName"`
	VenueAddress    string    `json:"venueAddress"`
	City            string    `json:"city"`
	Region          string    `json:"region"`
	CustomerType    string    `json:"customerType"`
	BrandOwner      string    `json:"brandOwner"`
	Brand           string    `json:"brand"`
	MacroCategory   string    `json:"macroCategory"`
	ProductCategory string    `json:"productCategory"`
	SubCategory     string    `json:"subCategory,omitempty"`
	Cocktail        string    `json:"cocktail"`
	Price           float64   `json:"price"`
	Date            time.Time `json:"date"`
}

// IsCocktail reports whether the listing names a cocktail.
func (r ListingRecord) IsCocktail() bool {
	return r.Cocktail != "" && r.Cocktail != GeneralItem
}

// VenueKey is the identifier used for every unique-venue count.
func (r ListingRecord) VenueKey() string {
	if r.VenueID != "" {
		return r.VenueID
	}
	return r.VenueName
}

// Value returns the record's field for a filterable dimension.
func (r ListingRecord) Value(d Dimension) string {
	switch d {
	case DimRegion:
		return r.Region
	case DimCity:
		return r.City
	case DimCustomerType:
		return r.CustomerType
	case DimBrandOwner:
		return r.BrandOwner
	case DimBrand:
		return r.Brand
	case DimMacroCategory:
		return r.MacroCategory
	case DimProductCategory:
		return r.ProductCategory
	case DimCocktail:
		return r.Cocktail
	case DimVenue:
		return r.VenueName
	case DimVenueID:
		return r.VenueKey()
	}
	return ""
}

// IsSentinel reports whether v is an absent-value placeholder that must not
// be counted as a distinct entity.
func IsSentinel(v string) bool {
	if v == "" || v == GeneralItem || strings.EqualFold(v, NotAvailable) {
		return true
	}
	return strings.HasPrefix(strings.ToLower(v), strings.ToLower(UnknownPrefix))
}

// ============================================================================
// DIMENSIONS
// ============================================================================

// Dimension names a filterable / groupable attribute of a ListingRecord.
type Dimension string

const (
	DimRegion          Dimension = "region"
	DimCity            Dimension = "city"
	DimCustomerType    Dimension = "customer_type"
	DimBrandOwner      Dimension = "brand_owner"
	DimBrand           Dimension = "brand"
	DimMacroCategory   Dimension = "macro_category"
	DimProductCategory Dimension = "product_category"
	DimCocktail        Dimension = "cocktail"
	DimVenue           Dimension = "venue"
	DimVenueID         Dimension = "venue_id"
)

// Dimensions lists every dimension in FilterSet order.
var Dimensions = []Dimension{
	DimRegion, DimCity, DimCustomerType, DimBrandOwner, DimBrand,
	DimMacroCategory, DimProductCategory, DimCocktail, DimVenue, DimVenueID,
}

// ParseDimension resolves a dimension name (case-insensitive, "-" or "_").
func ParseDimension(s string) (Dimension, bool) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	for _, d := range Dimensions {
		if string(d) == key {
			return d, true
		}
	}
	switch key {
	case "channel":
		return DimCustomerType, true
	case "owner":
		return DimBrandOwner, true
	case "category":
		return DimProductCategory, true
	case "venue_name":
		return DimVenue, true
	}
	return "", false
}

// Label returns a display label for a dimension.
func (d Dimension) Label() string {
	parts := strings.Split(string(d), "_")
	for i, p := range parts {
		if p == "id" {
			parts[i] = "ID"
			continue
		}
		if p != "" {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, " ")
}

// ============================================================================
// FILTER SET
// ============================================================================

// FilterSet holds one multi-value selection per dimension.
// An empty slice means "no restriction", never "select nothing".
type FilterSet struct {
	Regions           []string `json:"regions,omitempty"`
	Cities            []string `json:"cities,omitempty"`
	CustomerTypes     []string `json:"customerTypes,omitempty"`
	BrandOwners       []string `json:"brandOwners,omitempty"`
	Brands            []string `json:"brands,omitempty"`
	MacroCategories   []string `json:"macroCategories,omitempty"`
	ProductCategories []string `json:"productCategories,omitempty"`
	Cocktails         []string `json:"cocktails,omitempty"`
	Venues            []string `json:"venues,omitempty"`
	VenueIDs          []string `json:"venueIds,omitempty"`
}

// Values returns the selection for one dimension.
func (f FilterSet) Values(d Dimension) []string {
	switch d {
	case DimRegion:
		return f.Regions
	case DimCity:
		return f.Cities
	case DimCustomerType:
		return f.CustomerTypes
	case DimBrandOwner:
		return f.BrandOwners
	case DimBrand:
		return f.Brands
	case DimMacroCategory:
		return f.MacroCategories
	case DimProductCategory:
		return f.ProductCategories
	case DimCocktail:
		return f.Cocktails
	case DimVenue:
		return f.Venues
	case DimVenueID:
		return f.VenueIDs
	}
	return nil
}

// With returns a copy of f with the selection for d replaced.
func (f FilterSet) With(d Dimension, values ...string) FilterSet {
	vals := append([]string(nil), values...)
	switch d {
	case DimRegion:
		f.Regions = vals
	case DimCity:
		f.Cities = vals
	case DimCustomerType:
		f.CustomerTypes = vals
	case DimBrandOwner:
		f.BrandOwners = vals
	case DimBrand:
		f.Brands = vals
	case DimMacroCategory:
		f.MacroCategories = vals
	case DimProductCategory:
		f.ProductCategories = vals
	case DimCocktail:
		f.Cocktails = vals
	case DimVenue:
		f.Venues = vals
	case DimVenueID:
		f.VenueIDs = vals
	}
	return f
}

// HasFilter returns true if a specific dimension filter is set.
func (f FilterSet) HasFilter(d Dimension) bool {
	return len(f.Values(d)) > 0
}

// IsEmpty returns true if no filters are set.
func (f FilterSet) IsEmpty() bool {
	for _, d := range Dimensions {
		if f.HasFilter(d) {
			return false
		}
	}
	return true
}

// ============================================================================
// REFERENCE DATA
// ============================================================================

// MarketUniverseEntry is the total venue count of one region/city/channel
// slice, independent of any brand.
type MarketUniverseEntry struct {
	Region       string `json:"region" yaml:"region"`
	City         string `json:"city" yaml:"city"`
	CustomerType string `json:"customerType" yaml:"customer_type"`
	Venues       int    `json:"venues" yaml:"venues"`
}

// ProductMasterEntry maps a canonical brand to its owner and categories.
type ProductMasterEntry struct {
	Brand           string   `json:"brand" yaml:"brand"`
	BrandOwner      string   `json:"brandOwner" yaml:"brand_owner"`
	MacroCategory   string   `json:"macroCategory" yaml:"macro_category"`
	ProductCategory string   `json:"productCategory" yaml:"product_category"`
	Aliases         []string `json:"aliases,omitempty" yaml:"aliases"`
}
