package normalize

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// ============================================================================
// TABLES — Synonyms, accent fixes and fixed-case tokens
// ============================================================================

// Field names used as synonym table keys.
const (
	FieldRegion       = "region"
	FieldCity         = "city"
	FieldCustomerType = "customer_type"
	FieldBrandOwner   = "brand_owner"
	FieldBrand        = "brand"
	FieldCategory     = "category"
	FieldText         = "text"
)

// Tables drives the string pipeline. Synonyms are per field, keyed by the
// lowercased raw value. Accent fixes are canonical spellings matched after
// accent folding.
type Tables struct {
	Synonyms    map[string]map[string]string `yaml:"synonyms"`
	AccentFixes []string                     `yaml:"accent_fixes"`
	FixedTokens []string                     `yaml:"fixed_tokens"`
}

// DefaultTables returns the built-in tables for the Italian on-trade market.
func DefaultTables() *Tables {
	return &Tables{
		Synonyms: map[string]map[string]string{
			FieldRegion: {
				"lombardy":              "Lombardia",
				"piedmont":              "Piemonte",
				"tuscany":               "Toscana",
				"latium":                "Lazio",
				"apulia":                "Puglia",
				"sicily":                "Sicilia",
				"sardinia":              "Sardegna",
				"aosta valley":          "Valle d'Aosta",
				"trentino-south tyrol":  "Trentino-Alto Adige",
				"trentino alto adige":   "Trentino-Alto Adige",
				"friuli venezia giulia": "Friuli-Venezia Giulia",
				"emilia romagna":        "Emilia-Romagna",
			},
			FieldCity: {
				"milan":    "Milano",
				"rome":     "Roma",
				"turin":    "Torino",
				"florence": "Firenze",
				"naples":   "Napoli",
				"venice":   "Venezia",
				"genoa":    "Genova",
			},
			FieldBrandOwner: {
				"campari":            "Campari Group",
				"gruppo campari":     "Campari Group",
				"davide campari":     "Campari Group",
				"bacardi martini":    "Bacardi-Martini",
				"martini & rossi":    "Bacardi-Martini",
				"pernod-ricard":      "Pernod Ricard",
				"diageo plc":         "Diageo",
				"lvmh":               "LVMH",
				"moet hennessy":      "Moët Hennessy",
				"illva saronno":      "ILLVA Saronno",
				"distillerie branca": "Fratelli Branca",
			},
			FieldCustomerType: {
				"ristorante":   "Restaurant",
				"ristoranti":   "Restaurant",
				"albergo":      "Hotel",
				"cocktail bar": "Cocktail Bar",
			},
		},
		AccentFixes: []string{
			"Moët & Chandon",
			"Moët Hennessy",
			"Perrier-Jouët",
			"Rémy Martin",
			"Dom Pérignon",
			"Jägermeister",
			"Crème de Cassis",
			"Curaçao",
		},
		FixedTokens: []string{"N/A", "LVMH", "ILLVA", "IGT", "DOC", "DOCG", "DOP", "VSOP", "XO", "IPA", "&"},
	}
}

// LoadTables reads a YAML tables file and merges it over the defaults.
func LoadTables(path string) (*Tables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "normalize: read tables %s", path)
	}
	var extra Tables
	if err := yaml.Unmarshal(data, &extra); err != nil {
		return nil, eris.Wrapf(err, "normalize: parse tables %s", path)
	}
	t := DefaultTables()
	t.Merge(&extra)
	return t, nil
}

// Merge adds every entry of o, overriding synonyms with the same key.
func (t *Tables) Merge(o *Tables) {
	if o == nil {
		return
	}
	if t.Synonyms == nil {
		t.Synonyms = make(map[string]map[string]string, len(o.Synonyms))
	}
	for field, entries := range o.Synonyms {
		field = strings.ToLower(strings.TrimSpace(field))
		if t.Synonyms[field] == nil {
			t.Synonyms[field] = make(map[string]string, len(entries))
		}
		for k, v := range entries {
			t.Synonyms[field][strings.ToLower(strings.TrimSpace(k))] = v
		}
	}
	t.AccentFixes = append(t.AccentFixes, o.AccentFixes...)
	t.FixedTokens = append(t.FixedTokens, o.FixedTokens...)
}
