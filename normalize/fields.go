package normalize

// ============================================================================
// FIELD ALIASES — Historical column names per canonical attribute
// ============================================================================
// Earlier aliases win. Each chain mixes the current snake_case name, the
// camelCase API name and the Italian export headers seen in older dumps.
// ============================================================================

var (
	aliasRowID        = []string{"row_id", "rowId", "listing_id", "id"}
	aliasVenueID      = []string{"venue_id", "venueId", "id_locale", "outlet_id", "place_id"}
	aliasVenueName    = []string{"venue_name", "venueName", "venue", "nome_locale", "locale", "outlet_name", "name"}
	aliasVenueAddress = []string{"venue_address", "venueAddress", "address", "indirizzo", "formatted_address"}
	aliasCity         = []string{"city", "citta", "città", "comune", "locality"}
	aliasRegion       = []string{"region", "regione", "administrative_area", "area"}
	aliasCustomerType = []string{"customer_type", "customerType", "channel", "canale", "tipologia", "venue_type"}
	aliasBrandOwner   = []string{"brand_owner", "brandOwner", "owner", "proprietario", "company", "gruppo"}
	aliasBrand        = []string{"brand", "brand_name", "brandName", "marca", "marchio"}
	aliasMacro        = []string{"macro_category", "macroCategory", "macro_categoria", "macrocategoria", "category_macro"}
	aliasProduct      = []string{"product_category", "productCategory", "categoria_prodotto", "categoria", "category"}
	aliasSub          = []string{"sub_category", "subCategory", "sottocategoria", "subcategory"}
	aliasCocktail     = []string{"cocktail", "cocktail_name", "cocktailName", "drink", "drink_name"}
	aliasPrice        = []string{"price", "prezzo", "price_eur", "prezzo_eur", "menu_price"}
	aliasDate         = []string{"date", "listing_date", "listingDate", "data", "data_rilevazione", "scraped_at", "created_at"}
)

// Sentinels written when no alias yields a value.
const (
	UnknownVenue    = "Unknown Venue"
	UnknownAddress  = "Unknown Address"
	UnknownCity     = "Unknown City"
	UnknownRegion   = "Unknown Region"
	UnknownChannel  = "Unknown Channel"
	UnknownOwner    = "Unknown Owner"
	UnknownBrand    = "Unknown Brand"
	UnknownCategory = "Unknown Category"
)
