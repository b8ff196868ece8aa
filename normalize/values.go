package normalize

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// ============================================================================
// PRICES AND DATES
// ============================================================================

// ParsePrice accepts numbers or strings such as "8,50", "€ 1.250,00" or
// "12.5 EUR". Anything unparsable, negative or non-finite yields 0.
func ParsePrice(v any) float64 {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case json.Number:
		f = parsePriceString(x.String())
	case string:
		f = parsePriceString(x)
	case []byte:
		f = parsePriceString(string(x))
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	return f
}

func parsePriceString(s string) float64 {
	s = strings.TrimSpace(s)
	s = strings.NewReplacer("€", "", "EUR", "", "eur", "", "$", "", " ", "", "\u00a0", "").Replace(s)
	if s == "" {
		return 0
	}

	comma := strings.LastIndex(s, ",")
	dot := strings.LastIndex(s, ".")
	switch {
	case comma >= 0 && dot >= 0:
		// the later separator is the decimal one
		if comma > dot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case comma >= 0:
		if strings.Count(s, ",") > 1 {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.Replace(s, ",", ".", 1)
		}
	case strings.Count(s, ".") > 1:
		s = strings.ReplaceAll(s, ".", "")
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006/01/02",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"02.01.2006",
	"2006-01",
}

// ParseDate accepts time values, ISO and Italian day-first layouts, or Unix
// timestamps in seconds or milliseconds. Unparsable input yields the zero time.
func ParseDate(v any) time.Time {
	switch x := v.(type) {
	case time.Time:
		return x
	case float64:
		return fromUnix(int64(x))
	case int64:
		return fromUnix(x)
	case int:
		return fromUnix(int64(x))
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return fromUnix(n)
		}
		return ParseDate(x.String())
	case string:
		s := strings.TrimSpace(x)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t
			}
		}
		if n, err := strconv.ParseInt(s, 10, 64); err == nil && len(s) >= 9 {
			return fromUnix(n)
		}
	}
	return time.Time{}
}

func fromUnix(n int64) time.Time {
	if n <= 0 {
		return time.Time{}
	}
	if n > 1e11 {
		return time.UnixMilli(n).UTC()
	}
	return time.Unix(n, 0).UTC()
}
