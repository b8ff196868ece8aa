// Package normalize converts loosely-typed raw listing rows into canonical
// engine.ListingRecord values.
package normalize

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// RawRow is one upstream row keyed by whatever column names the source used.
type RawRow map[string]any

// Fold returns a copy keyed by lowercase snake_case names. When two keys
// fold together the non-blank value wins, then the smaller original key.
func (r RawRow) Fold() RawRow {
	type entry struct {
		key string
		v   any
	}
	picked := make(map[string]entry, len(r))
	for k, v := range r {
		fk := foldKey(k)
		cur, dup := picked[fk]
		switch {
		case !dup:
		case isBlank(cur.v) && !isBlank(v):
		case !isBlank(cur.v) && isBlank(v):
			continue
		case k > cur.key:
			continue
		}
		picked[fk] = entry{key: k, v: v}
	}
	out := make(RawRow, len(picked))
	for k, e := range picked {
		out[k] = e.v
	}
	return out
}

// lookup returns the first present, non-empty value among aliases on a
// folded row.
func (r RawRow) lookup(aliases []string) (any, bool) {
	for _, alias := range aliases {
		v, ok := r[foldKey(alias)]
		if ok && !isBlank(v) {
			return v, true
		}
	}
	return nil, false
}

// String returns the first present alias rendered as a trimmed string.
func (r RawRow) String(aliases ...string) (string, bool) {
	return r.Fold().lookupString(aliases)
}

func (r RawRow) lookupString(aliases []string) (string, bool) {
	v, ok := r.lookup(aliases)
	if !ok {
		return "", false
	}
	return stringify(v), true
}

func foldKey(k string) string {
	k = strings.ToLower(strings.TrimSpace(k))
	k = strings.ReplaceAll(k, " ", "_")
	return strings.ReplaceAll(k, "-", "_")
}

func isBlank(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	case []byte:
		return strings.TrimSpace(string(x)) == ""
	}
	return false
}

// stringify renders scalar values; numeric ids keep no trailing ".0".
func stringify(v any) string {
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x)
	case []byte:
		return strings.TrimSpace(string(x))
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case json.Number:
		return x.String()
	case time.Time:
		return x.Format("2006-01-02")
	case fmt.Stringer:
		return strings.TrimSpace(x.String())
	}
	return strings.TrimSpace(fmt.Sprint(v))
}
