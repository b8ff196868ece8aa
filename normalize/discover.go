package normalize

import (
	"sort"
	"strings"
)

// ============================================================================
// COLUMN DISCOVERY — What a new listings file maps to
// ============================================================================
// Inspects sample rows and reports, per raw column, the canonical attribute
// it feeds, its detected value kind and fill rate. Attributes no column
// feeds will fall back to sentinels during normalization.
// ============================================================================

// ColumnKind is the detected value type of a raw column.
type ColumnKind string

const (
	KindText   ColumnKind = "text"
	KindNumber ColumnKind = "number"
	KindDate   ColumnKind = "date"
	KindEmpty  ColumnKind = "empty"
)

// ColumnInfo describes one raw column.
type ColumnInfo struct {
	Header  string     `json:"header"`
	Field   string     `json:"field,omitempty"`
	Kind    ColumnKind `json:"kind"`
	Filled  int        `json:"filled"`
	Unique  int        `json:"unique"`
	Samples []string   `json:"samples,omitempty"`
	Note    string     `json:"note,omitempty"`
}

// ColumnReport is the result of Discover.
type ColumnReport struct {
	Rows    int          `json:"rows"`
	Columns []ColumnInfo `json:"columns"`
	Missing []string     `json:"missing"`
}

type attribute struct {
	name    string
	aliases []string
	kind    ColumnKind
}

// attributes lists canonical attributes in record order.
var attributes = []attribute{
	{"row_id", aliasRowID, ""},
	{"venue_id", aliasVenueID, ""},
	{"venue_name", aliasVenueName, KindText},
	{"venue_address", aliasVenueAddress, KindText},
	{"city", aliasCity, KindText},
	{"region", aliasRegion, KindText},
	{"customer_type", aliasCustomerType, KindText},
	{"brand_owner", aliasBrandOwner, KindText},
	{"brand", aliasBrand, KindText},
	{"macro_category", aliasMacro, KindText},
	{"product_category", aliasProduct, KindText},
	{"sub_category", aliasSub, KindText},
	{"cocktail", aliasCocktail, KindText},
	{"price", aliasPrice, KindNumber},
	{"date", aliasDate, KindDate},
}

// DefaultSampleSize bounds the rows Discover inspects.
const DefaultSampleSize = 1000

// Discover inspects up to sampleSize rows (<= 0 means DefaultSampleSize).
func Discover(rows []RawRow, sampleSize int) *ColumnReport {
	if sampleSize <= 0 {
		sampleSize = DefaultSampleSize
	}
	if len(rows) > sampleSize {
		rows = rows[:sampleSize]
	}

	headerSet := make(map[string]bool)
	for _, r := range rows {
		for h := range r {
			headerSet[h] = true
		}
	}
	headers := make([]string, 0, len(headerSet))
	for h := range headerSet {
		headers = append(headers, h)
	}
	sort.Strings(headers)

	report := &ColumnReport{Rows: len(rows), Columns: make([]ColumnInfo, 0, len(headers)), Missing: []string{}}

	// best[attr] is the column with the earliest alias for attr
	type claim struct {
		col  int
		rank int
	}
	best := make(map[string]claim)

	for i, h := range headers {
		info := analyzeColumn(h, rows)
		attr, rank, ok := attributeFor(h)
		if ok {
			info.Field = attr.name
			if prev, seen := best[attr.name]; !seen || rank < prev.rank {
				best[attr.name] = claim{col: i, rank: rank}
			}
			if attr.kind != "" && info.Kind != KindEmpty && info.Kind != attr.kind {
				info.Note = "expected " + string(attr.kind) + " values"
			}
		} else {
			info.Note = "not mapped"
		}
		report.Columns = append(report.Columns, info)
	}

	for i := range report.Columns {
		c := &report.Columns[i]
		if c.Field == "" {
			continue
		}
		if winner := best[c.Field]; winner.col != i {
			c.Note = "shadowed by " + report.Columns[winner.col].Header
		}
	}
	for _, a := range attributes {
		if _, ok := best[a.name]; !ok {
			report.Missing = append(report.Missing, a.name)
		}
	}
	return report
}

// attributeFor maps a header to its attribute and alias position.
func attributeFor(header string) (attribute, int, bool) {
	key := foldKey(header)
	for _, a := range attributes {
		for rank, alias := range a.aliases {
			if foldKey(alias) == key {
				return a, rank, true
			}
		}
	}
	return attribute{}, 0, false
}

func analyzeColumn(header string, rows []RawRow) ColumnInfo {
	info := ColumnInfo{Header: header}
	unique := make(map[string]bool)
	numbers, dates := 0, 0
	for _, r := range rows {
		v, ok := r[header]
		if !ok || isBlank(v) {
			continue
		}
		s := stringify(v)
		if strings.EqualFold(s, "null") {
			continue
		}
		info.Filled++
		if !unique[s] {
			unique[s] = true
			if len(info.Samples) < 5 {
				info.Samples = append(info.Samples, s)
			}
		}
		if isDate(v) {
			dates++
		} else if isNumber(v) {
			numbers++
		}
	}
	info.Unique = len(unique)

	// a kind needs at least 80% of filled values
	dominant := func(n int) bool { return n > 0 && n*5 >= info.Filled*4 }
	switch {
	case info.Filled == 0:
		info.Kind = KindEmpty
	case dominant(dates):
		info.Kind = KindDate
	case dominant(numbers):
		info.Kind = KindNumber
	default:
		info.Kind = KindText
	}
	return info
}

// isDate ignores small numbers that would read as 1970 timestamps.
func isDate(v any) bool {
	t := ParseDate(v)
	return !t.IsZero() && t.Year() >= 2000
}

func isNumber(v any) bool {
	if ParsePrice(v) > 0 {
		return true
	}
	return strings.TrimSpace(stringify(v)) == "0"
}
