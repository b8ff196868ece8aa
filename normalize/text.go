package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ============================================================================
// STRING PIPELINE
// ============================================================================
// 1. trim and collapse whitespace
// 2. per-field synonym table
// 3. accent fixes for known spellings
// 4. title case, keeping fixed tokens and d'/l' prefixes
// Canonical outputs of steps 2 and 3 map to themselves, so the pipeline is
// idempotent.
// ============================================================================

type pipeline struct {
	synonyms map[string]map[string]string
	accents  map[string]string
	fixed    map[string]string
}

func compile(t *Tables) *pipeline {
	if t == nil {
		t = DefaultTables()
	}
	p := &pipeline{
		synonyms: make(map[string]map[string]string, len(t.Synonyms)),
		accents:  make(map[string]string, len(t.AccentFixes)),
		fixed:    make(map[string]string, len(t.FixedTokens)),
	}
	for field, entries := range t.Synonyms {
		m := make(map[string]string, 2*len(entries))
		for k, v := range entries {
			m[strings.ToLower(collapse(k))] = v
		}
		for _, v := range entries {
			m[strings.ToLower(collapse(v))] = v
		}
		p.synonyms[field] = m
	}
	for _, canon := range t.AccentFixes {
		p.accents[accentKey(canon)] = canon
	}
	for _, tok := range t.FixedTokens {
		p.fixed[strings.ToLower(tok)] = tok
	}
	return p
}

// clean runs the full pipeline for one field value.
func (p *pipeline) clean(field, s string) string {
	s = collapse(s)
	if s == "" {
		return ""
	}
	if canon, ok := p.synonyms[field][strings.ToLower(s)]; ok {
		return canon
	}
	if canon, ok := p.accents[accentKey(s)]; ok {
		return canon
	}
	return p.title(s)
}

func (p *pipeline) title(s string) string {
	caser := cases.Title(language.Italian)
	words := strings.Split(s, " ")
	for i, w := range words {
		if fixed, ok := p.fixed[strings.ToLower(w)]; ok {
			words[i] = fixed
			continue
		}
		if prefix, rest, ok := elided(w); ok {
			words[i] = prefix + caser.String(rest)
			continue
		}
		words[i] = caser.String(w)
	}
	return strings.Join(words, " ")
}

// elided splits "d'aosta" into "d'" and "aosta".
func elided(w string) (string, string, bool) {
	for _, apo := range []string{"'", "’"} {
		i := strings.Index(w, apo)
		if i != 1 || len(w) <= i+len(apo) {
			continue
		}
		switch unicode.ToLower(rune(w[0])) {
		case 'd', 'l':
			return strings.ToLower(w[:1]) + "'", w[i+len(apo):], true
		}
	}
	return "", "", false
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// accentKey folds case, accents and hyphens.
func accentKey(s string) string {
	s = strings.ToLower(collapse(strings.ReplaceAll(s, "-", " ")))
	folder := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(folder, s); err == nil {
		return folded
	}
	return s
}
