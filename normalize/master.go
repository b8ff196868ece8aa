package normalize

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/spektr-org/menulens/engine"
)

// ============================================================================
// PRODUCT MASTER — canonical brand → owner / category mapping
// ============================================================================

// ProductMaster resolves brand spellings and aliases to master entries.
type ProductMaster struct {
	entries []engine.ProductMasterEntry
	byKey   map[string]int
}

// NewProductMaster indexes entries by brand and alias. Two entries claiming
// the same name is an error.
func NewProductMaster(entries []engine.ProductMasterEntry) (*ProductMaster, error) {
	m := &ProductMaster{
		entries: make([]engine.ProductMasterEntry, 0, len(entries)),
		byKey:   make(map[string]int, len(entries)),
	}
	for _, e := range entries {
		if collapse(e.Brand) == "" {
			return nil, eris.New("normalize: product master entry without brand")
		}
		idx := len(m.entries)
		m.entries = append(m.entries, e)
		for _, name := range append([]string{e.Brand}, e.Aliases...) {
			key := accentKey(name)
			if key == "" {
				continue
			}
			if prev, ok := m.byKey[key]; ok && prev != idx {
				return nil, eris.Errorf("normalize: %q maps to both %q and %q", name, m.entries[prev].Brand, e.Brand)
			}
			m.byKey[key] = idx
		}
	}
	return m, nil
}

// LoadProductMaster reads a YAML list of master entries.
func LoadProductMaster(path string) (*ProductMaster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "normalize: read product master %s", path)
	}
	var doc struct {
		Products []engine.ProductMasterEntry `yaml:"products"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, eris.Wrapf(err, "normalize: parse product master %s", path)
	}
	return NewProductMaster(doc.Products)
}

// Len returns the number of master entries.
func (m *ProductMaster) Len() int {
	if m == nil {
		return 0
	}
	return len(m.entries)
}

// Lookup finds the entry for a brand name or alias, ignoring case and accents.
func (m *ProductMaster) Lookup(brand string) (engine.ProductMasterEntry, bool) {
	if m == nil {
		return engine.ProductMasterEntry{}, false
	}
	idx, ok := m.byKey[accentKey(brand)]
	if !ok {
		return engine.ProductMasterEntry{}, false
	}
	return m.entries[idx], true
}

// Enrich replaces brand, owner and categories with master values when the
// brand is known. Empty master fields leave the record's value alone.
func (m *ProductMaster) Enrich(r engine.ListingRecord) engine.ListingRecord {
	e, ok := m.Lookup(r.Brand)
	if !ok {
		return r
	}
	r.Brand = e.Brand
	if e.BrandOwner != "" {
		r.BrandOwner = e.BrandOwner
	}
	if e.MacroCategory != "" {
		r.MacroCategory = e.MacroCategory
	}
	if e.ProductCategory != "" {
		r.ProductCategory = e.ProductCategory
	}
	return r
}
