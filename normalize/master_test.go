package normalize

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spektr-org/menulens/engine"
)

func TestNewProductMaster_Errors(t *testing.T) {
	if _, err := NewProductMaster([]engine.ProductMasterEntry{{Brand: "  "}}); err == nil {
		t.Error("expected error for entry without brand")
	}

	_, err := NewProductMaster([]engine.ProductMasterEntry{
		{Brand: "Martini", Aliases: []string{"Martini Bianco"}},
		{Brand: "Martini Rosso", Aliases: []string{"martini bianco"}},
	})
	if err == nil {
		t.Error("expected error for alias claimed by two brands")
	}
}

func TestProductMaster_Lookup(t *testing.T) {
	m, err := NewProductMaster([]engine.ProductMasterEntry{
		{Brand: "Jägermeister", BrandOwner: "Mast-Jägermeister"},
		{Brand: "Campari", BrandOwner: "Campari Group", Aliases: []string{"Bitter Campari"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if m.Len() != 2 {
		t.Errorf("Len: got %d, want 2", m.Len())
	}

	e, ok := m.Lookup("JAGERMEISTER")
	if !ok {
		t.Fatal("accent-insensitive lookup failed")
	}
	assertEqual(t, e.Brand, "Jägermeister", "lookup brand")

	e, ok = m.Lookup("bitter  campari")
	if !ok {
		t.Fatal("alias lookup failed")
	}
	assertEqual(t, e.Brand, "Campari", "alias brand")

	if _, ok := m.Lookup("Aperol"); ok {
		t.Error("unknown brand must not resolve")
	}

	var nilMaster *ProductMaster
	if _, ok := nilMaster.Lookup("Campari"); ok || nilMaster.Len() != 0 {
		t.Error("nil master must be empty")
	}
}

func TestProductMaster_EnrichKeepsRecordValuesForEmptyFields(t *testing.T) {
	m, err := NewProductMaster([]engine.ProductMasterEntry{{Brand: "Campari", BrandOwner: "Campari Group"}})
	if err != nil {
		t.Fatal(err)
	}
	r := m.Enrich(engine.ListingRecord{Brand: "campari", BrandOwner: "Unknown Owner", ProductCategory: "Bitter"})
	assertEqual(t, r.Brand, "Campari", "brand")
	assertEqual(t, r.BrandOwner, "Campari Group", "owner")
	assertEqual(t, r.ProductCategory, "Bitter", "category kept")
}

func TestLoadProductMaster(t *testing.T) {
	path := filepath.Join(t.TempDir(), "master.yaml")
	doc := `products:
  - brand: Aperol
    brand_owner: Campari Group
    macro_category: Spirits
    product_category: Aperitivo
    aliases: [Aperol Aperitivo]
  - brand: Martini
    brand_owner: Bacardi-Martini
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	m, err := LoadProductMaster(path)
	if err != nil {
		t.Fatalf("LoadProductMaster: %v", err)
	}
	if m.Len() != 2 {
		t.Fatalf("Len: got %d, want 2", m.Len())
	}
	e, ok := m.Lookup("aperol aperitivo")
	if !ok {
		t.Fatal("alias from yaml not indexed")
	}
	assertEqual(t, e.ProductCategory, "Aperitivo", "category")

	if _, err := LoadProductMaster(filepath.Join(t.TempDir(), "none.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
