package normalize

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spektr-org/menulens/engine"
)

// ============================================================================
// NORMALIZER — RawRow → engine.ListingRecord
// ============================================================================
// Normalize never fails: missing fields fall back to sentinels, unparsable
// prices to 0 and unparsable dates to the zero time.
// ============================================================================

// rowNamespace seeds deterministic row ids for rows without one.
var rowNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("menulens/listing"))

// Normalizer holds the compiled string tables and optional product master.
// It is safe for concurrent use.
type Normalizer struct {
	text   *pipeline
	master *ProductMaster
	logger *zap.Logger
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithTables replaces the default synonym and accent tables.
func WithTables(t *Tables) Option {
	return func(n *Normalizer) { n.text = compile(t) }
}

// WithProductMaster enables brand enrichment.
func WithProductMaster(m *ProductMaster) Option {
	return func(n *Normalizer) { n.master = m }
}

// WithLogger sets the logger used by NormalizeAll.
func WithLogger(l *zap.Logger) Option {
	return func(n *Normalizer) {
		if l != nil {
			n.logger = l
		}
	}
}

// New builds a Normalizer with the default tables.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{text: compile(DefaultTables()), logger: zap.NewNop()}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Text runs the string pipeline for a field; exposed for filter inputs that
// must match canonical values.
func (n *Normalizer) Text(field, s string) string {
	return n.text.clean(field, s)
}

func (n *Normalizer) field(row RawRow, field string, aliases []string, fallback string) string {
	s, ok := row.lookupString(aliases)
	if !ok {
		return fallback
	}
	return n.canonical(field, s, fallback)
}

func (n *Normalizer) canonical(field, s, fallback string) string {
	if out := n.text.clean(field, s); out != "" {
		return out
	}
	return fallback
}

// Normalize converts one raw row.
func (n *Normalizer) Normalize(raw RawRow) engine.ListingRecord {
	row := raw.Fold()

	r := engine.ListingRecord{
		VenueName:       n.field(row, FieldText, aliasVenueName, UnknownVenue),
		VenueAddress:    n.field(row, FieldText, aliasVenueAddress, UnknownAddress),
		City:            n.field(row, FieldCity, aliasCity, UnknownCity),
		Region:          n.field(row, FieldRegion, aliasRegion, UnknownRegion),
		CustomerType:    n.field(row, FieldCustomerType, aliasCustomerType, UnknownChannel),
		BrandOwner:      n.field(row, FieldBrandOwner, aliasBrandOwner, UnknownOwner),
		Brand:           n.field(row, FieldBrand, aliasBrand, UnknownBrand),
		MacroCategory:   n.field(row, FieldCategory, aliasMacro, UnknownCategory),
		ProductCategory: n.field(row, FieldCategory, aliasProduct, UnknownCategory),
		SubCategory:     n.field(row, FieldCategory, aliasSub, ""),
		Cocktail:        n.field(row, FieldText, aliasCocktail, engine.GeneralItem),
	}
	if id, ok := row.lookupString(aliasVenueID); ok {
		r.VenueID = id
	}
	if v, ok := row.lookup(aliasPrice); ok {
		r.Price = ParsePrice(v)
	}
	if v, ok := row.lookup(aliasDate); ok {
		r.Date = ParseDate(v)
	}

	if n.master != nil {
		// master values take the same pipeline as row values
		r = n.master.Enrich(r)
		r.Brand = n.canonical(FieldBrand, r.Brand, UnknownBrand)
		r.BrandOwner = n.canonical(FieldBrandOwner, r.BrandOwner, UnknownOwner)
		r.MacroCategory = n.canonical(FieldCategory, r.MacroCategory, UnknownCategory)
		r.ProductCategory = n.canonical(FieldCategory, r.ProductCategory, UnknownCategory)
	}

	if id, ok := row.lookupString(aliasRowID); ok {
		r.RowID = id
	} else {
		r.RowID = rowID(r)
	}
	return r
}

// NormalizeAll converts rows in order.
func (n *Normalizer) NormalizeAll(rows []RawRow) []engine.ListingRecord {
	out := make([]engine.ListingRecord, 0, len(rows))
	unknownBrands, undated := 0, 0
	for _, row := range rows {
		r := n.Normalize(row)
		if r.Brand == UnknownBrand {
			unknownBrands++
		}
		if r.Date.IsZero() {
			undated++
		}
		out = append(out, r)
	}
	n.logger.Debug("normalize: rows converted",
		zap.Int("rows", len(out)),
		zap.Int("unknown_brands", unknownBrands),
		zap.Int("undated", undated),
	)
	return out
}

func rowID(r engine.ListingRecord) string {
	key := fmt.Sprintf("%s|%s|%s|%s|%s|%.2f",
		r.VenueKey(), r.Brand, r.Cocktail, r.ProductCategory, r.Date.Format("2006-01-02"), r.Price)
	return uuid.NewSHA1(rowNamespace, []byte(key)).String()
}

// ToRaw renders a canonical record back into a RawRow using the primary
// alias of every field. Normalize(ToRaw(r)) returns r for canonical records.
func ToRaw(r engine.ListingRecord) RawRow {
	return RawRow{
		aliasRowID[0]:        r.RowID,
		aliasVenueID[0]:      r.VenueID,
		aliasVenueName[0]:    r.VenueName,
		aliasVenueAddress[0]: r.VenueAddress,
		aliasCity[0]:         r.City,
		aliasRegion[0]:       r.Region,
		aliasCustomerType[0]: r.CustomerType,
		aliasBrandOwner[0]:   r.BrandOwner,
		aliasBrand[0]:        r.Brand,
		aliasMacro[0]:        r.MacroCategory,
		aliasProduct[0]:      r.ProductCategory,
		aliasSub[0]:          r.SubCategory,
		aliasCocktail[0]:     r.Cocktail,
		aliasPrice[0]:        r.Price,
		aliasDate[0]:         r.Date,
	}
}
