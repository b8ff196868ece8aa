package server

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/spektr-org/menulens/engine"
)

// ============================================================================
// FIXTURES
// ============================================================================

type fakeStore struct {
	records     []engine.ListingRecord
	err         error
	loads       int
	invalidated int
}

func (f *fakeStore) Load(context.Context) ([]engine.ListingRecord, error) {
	f.loads++
	return f.records, f.err
}

func (f *fakeStore) Invalidate(context.Context) error {
	f.invalidated++
	return nil
}

func rec(venue, owner, brand, date string) engine.ListingRecord {
	d, _ := time.Parse("2006-01-02", date)
	return engine.ListingRecord{
		VenueID: venue, VenueName: "Venue " + venue,
		Region: "Lombardia", City: "Milano", CustomerType: "Bar",
		BrandOwner: owner, Brand: brand,
		MacroCategory: "Spirits", ProductCategory: "Aperitivo",
		Cocktail: engine.GeneralItem, Price: 8, Date: d,
	}
}

func spritz(venue, owner, brand string) engine.ListingRecord {
	r := rec(venue, owner, brand, "2024-04-01")
	r.Cocktail, r.MacroCategory, r.ProductCategory = "Spritz", "Cocktail", "Aperitivo"
	return r
}

func fixture() []engine.ListingRecord {
	roma := rec("V3", "Campari Group", "Campari", "2024-06-01")
	roma.Region, roma.City, roma.CustomerType = "Lazio", "Roma", "Restaurant"
	return []engine.ListingRecord{
		rec("V1", "Campari Group", "Aperol", "2024-03-01"),
		rec("V1", "Bacardi-Martini", "Martini", "2024-03-01"),
		rec("V2", "Bacardi-Martini", "Martini", "2024-05-01"),
		roma,
		spritz("V1", "Campari Group", "Aperol"),
		spritz("V2", "Montenegro", "Select"),
		rec("V9", "Campari Group", "Aperol", "2023-03-01"),
	}
}

func newTestServer(t *testing.T, store *fakeStore, opts ...Option) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	return New(store, opts...)
}

func do(t *testing.T, s *Server, method, path string, body any, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("status: got %d, want %d; body=%s", w.Code, want, w.Body.String())
	}
}

var year2024 = map[string]any{"time": engine.TimeSelection{Mode: engine.TimeNone, Primary: engine.Period{Year: 2024}}}

// ============================================================================
// TESTS
// ============================================================================

func TestHealth_LoadsOnce(t *testing.T) {
	store := &fakeStore{records: fixture()}
	s := newTestServer(t, store)

	for i := 0; i < 2; i++ {
		w := do(t, s, http.MethodGet, "/api/health", nil, nil)
		expectStatus(t, w, http.StatusOK)
	}
	if store.loads != 1 {
		t.Errorf("store loaded %d times, want 1", store.loads)
	}
}

func TestHealth_StoreError(t *testing.T) {
	s := newTestServer(t, &fakeStore{err: errors.New("disk gone")})
	w := do(t, s, http.MethodGet, "/api/health", nil, nil)
	expectStatus(t, w, http.StatusServiceUnavailable)
}

func TestRequestIDHeader(t *testing.T) {
	s := newTestServer(t, &fakeStore{records: fixture()})

	w := do(t, s, http.MethodGet, "/api/health", nil, nil)
	if w.Header().Get(HeaderRequestID) == "" {
		t.Error("missing generated request id")
	}
	w = do(t, s, http.MethodGet, "/api/health", nil, map[string]string{HeaderRequestID: "abc"})
	if got := w.Header().Get(HeaderRequestID); got != "abc" {
		t.Errorf("request id must be echoed: got %q", got)
	}
}

func TestFilters_RespectsOwnerScope(t *testing.T) {
	s := newTestServer(t, &fakeStore{records: fixture()})

	w := do(t, s, http.MethodGet, "/api/filters", nil, map[string]string{HeaderAllowedOwners: "Campari Group"})
	expectStatus(t, w, http.StatusOK)

	var got map[string][]string
	decode(t, w, &got)
	owners := got[string(engine.DimBrandOwner)]
	if len(owners) != 1 || owners[0] != "Campari Group" {
		t.Errorf("scoped owners: %v", owners)
	}
	if len(got[string(engine.DimRegion)]) != 2 {
		t.Errorf("regions: %v", got[string(engine.DimRegion)])
	}
}

func TestDashboard(t *testing.T) {
	s := newTestServer(t, &fakeStore{records: fixture()})

	q := engine.Query{
		Time:       engine.TimeSelection{Mode: engine.TimeYoY, Primary: engine.Period{Year: 2024}},
		FocusOwner: "Campari Group",
	}
	w := do(t, s, http.MethodPost, "/api/dashboard", q, nil)
	expectStatus(t, w, http.StatusOK)

	var resp struct {
		Dashboard engine.Dashboard `json:"dashboard"`
		Report    struct {
			Tables []json.RawMessage `json:"tables"`
		} `json:"report"`
	}
	decode(t, w, &resp)
	d := resp.Dashboard
	if d.Primary.Listings != 6 || d.Primary.Venues != 3 {
		t.Errorf("primary: listings=%d venues=%d", d.Primary.Listings, d.Primary.Venues)
	}
	if d.Comparison == nil || d.Comparison.Listings != 1 {
		t.Errorf("derived YoY comparison: %+v", d.Comparison)
	}
	if d.Primary.Owner == nil || d.Primary.Owner.Listings != 3 {
		t.Errorf("owner KPIs: %+v", d.Primary.Owner)
	}
	if len(resp.Report.Tables) == 0 {
		t.Error("report tables missing")
	}
}

func TestDashboard_ScopeHeaderOverridesBody(t *testing.T) {
	s := newTestServer(t, &fakeStore{records: fixture()})

	body := map[string]any{
		"time":  year2024["time"],
		"scope": map[string]any{"allowedOwners": []string{"Bacardi-Martini", "Campari Group"}},
	}
	w := do(t, s, http.MethodPost, "/api/dashboard", body, map[string]string{HeaderAllowedOwners: "Montenegro"})
	expectStatus(t, w, http.StatusOK)

	var resp struct {
		Dashboard engine.Dashboard `json:"dashboard"`
	}
	decode(t, w, &resp)
	if resp.Dashboard.Primary.Listings != 1 {
		t.Errorf("scoped listings: got %d, want 1", resp.Dashboard.Primary.Listings)
	}
}

func TestDashboard_BadBody(t *testing.T) {
	s := newTestServer(t, &fakeStore{records: fixture()})
	req := httptest.NewRequest(http.MethodPost, "/api/dashboard", strings.NewReader("{"))
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	expectStatus(t, w, http.StatusBadRequest)
}

func TestDashboard_UnknownTimeMode(t *testing.T) {
	s := newTestServer(t, &fakeStore{records: fixture()})
	body := `{"time":{"mode":"weekly","primary":{"year":2024}}}`
	req := httptest.NewRequest(http.MethodPost, "/api/dashboard", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	expectStatus(t, w, http.StatusBadRequest)
}

func TestDashboard_TimeModeSpelling(t *testing.T) {
	s := newTestServer(t, &fakeStore{records: fixture()})
	body := `{"time":{"mode":"YoY","primary":{"year":2024}}}`
	req := httptest.NewRequest(http.MethodPost, "/api/dashboard", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	expectStatus(t, w, http.StatusOK)

	var resp struct {
		Dashboard engine.Dashboard `json:"dashboard"`
	}
	decode(t, w, &resp)
	if resp.Dashboard.Comparison == nil || resp.Dashboard.Comparison.Listings != 1 {
		t.Errorf("YoY comparison: %+v", resp.Dashboard.Comparison)
	}
}

func TestHeatmap(t *testing.T) {
	s := newTestServer(t, &fakeStore{records: fixture()})

	body := map[string]any{
		"time": year2024["time"],
		"spec": engine.MatrixSpec{Rows: engine.DimRegion, Cols: engine.DimBrand, Mode: engine.ValueVenues},
	}
	w := do(t, s, http.MethodPost, "/api/heatmap", body, nil)
	expectStatus(t, w, http.StatusOK)

	var resp struct {
		Matrix engine.Matrix `json:"matrix"`
	}
	decode(t, w, &resp)
	if len(resp.Matrix.Rows) != 2 || resp.Matrix.Rows[0] != "Lombardia" {
		t.Errorf("rows: %v", resp.Matrix.Rows)
	}

	body["spec"] = engine.MatrixSpec{Rows: "planet", Cols: engine.DimBrand, Mode: engine.ValueVenues}
	w = do(t, s, http.MethodPost, "/api/heatmap", body, nil)
	expectStatus(t, w, http.StatusBadRequest)
}

func TestCoOccurrence(t *testing.T) {
	s := newTestServer(t, &fakeStore{records: fixture()})

	w := do(t, s, http.MethodPost, "/api/cooccurrence", map[string]any{"time": year2024["time"]}, nil)
	expectStatus(t, w, http.StatusBadRequest)

	body := map[string]any{
		"time":    year2024["time"],
		"filters": engine.FilterSet{Brands: []string{"Aperol"}},
		"brand":   "Aperol",
	}
	w = do(t, s, http.MethodPost, "/api/cooccurrence", body, nil)
	expectStatus(t, w, http.StatusOK)

	var resp struct {
		CoOccurrence []engine.CoOccurrence `json:"coOccurrence"`
	}
	decode(t, w, &resp)
	found := false
	for _, c := range resp.CoOccurrence {
		if c.Brand == "Martini" {
			found = true
		}
	}
	if !found {
		t.Errorf("brand filter must not hide competitors: %+v", resp.CoOccurrence)
	}
}

func TestGaps(t *testing.T) {
	s := newTestServer(t, &fakeStore{records: fixture()})

	body := map[string]any{"time": year2024["time"], "cocktail": "spritz", "brand": "Aperol"}
	w := do(t, s, http.MethodPost, "/api/gaps", body, nil)
	expectStatus(t, w, http.StatusOK)

	var resp struct {
		CocktailVenues int               `json:"cocktailVenues"`
		WhiteSpots     []engine.GapVenue `json:"whiteSpots"`
	}
	decode(t, w, &resp)
	if resp.CocktailVenues != 2 {
		t.Errorf("cocktail venues: got %d, want 2", resp.CocktailVenues)
	}
	if len(resp.WhiteSpots) != 1 || resp.WhiteSpots[0].VenueID != "V2" {
		t.Errorf("white spots: %+v", resp.WhiteSpots)
	}

	w = do(t, s, http.MethodPost, "/api/gaps", map[string]any{"cocktail": "spritz"}, nil)
	expectStatus(t, w, http.StatusBadRequest)
}

func TestScorecards(t *testing.T) {
	s := newTestServer(t, &fakeStore{records: fixture()}, WithWorkers(2))

	w := do(t, s, http.MethodPost, "/api/scorecards", year2024, nil)
	expectStatus(t, w, http.StatusOK)

	var resp struct {
		Scorecards []engine.OwnerScorecard `json:"scorecards"`
	}
	decode(t, w, &resp)
	if len(resp.Scorecards) != 3 {
		t.Fatalf("got %d scorecards, want 3", len(resp.Scorecards))
	}
	if resp.Scorecards[0].Owner != "Campari Group" || resp.Scorecards[0].Listings != 3 {
		t.Errorf("first scorecard: %+v", resp.Scorecards[0])
	}
}

func TestExport(t *testing.T) {
	s := newTestServer(t, &fakeStore{records: fixture()})

	w := do(t, s, http.MethodPost, "/api/export", year2024, nil)
	expectStatus(t, w, http.StatusOK)
	lines, err := csv.NewReader(w.Body).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 7 {
		t.Errorf("csv lines: got %d, want header + 6", len(lines))
	}

	w = do(t, s, http.MethodPost, "/api/export?format=xlsx", year2024, nil)
	expectStatus(t, w, http.StatusOK)
	f, err := excelize.OpenReader(w.Body)
	if err != nil {
		t.Fatalf("xlsx: %v", err)
	}
	defer f.Close()
	if n := len(f.GetSheetList()); n != 3 {
		t.Errorf("sheets: got %d, want 3", n)
	}

	w = do(t, s, http.MethodPost, "/api/export?format=pdf", year2024, nil)
	expectStatus(t, w, http.StatusBadRequest)
}

func TestReload(t *testing.T) {
	store := &fakeStore{records: fixture()}
	s := newTestServer(t, store)

	do(t, s, http.MethodGet, "/api/health", nil, nil)
	store.records = store.records[:2]

	w := do(t, s, http.MethodPost, "/api/reload", nil, nil)
	expectStatus(t, w, http.StatusOK)
	if store.invalidated != 1 || store.loads != 2 {
		t.Errorf("invalidated=%d loads=%d", store.invalidated, store.loads)
	}

	var resp struct {
		Records int `json:"records"`
	}
	decode(t, do(t, s, http.MethodGet, "/api/health", nil, nil), &resp)
	if resp.Records != 2 {
		t.Errorf("records after reload: %d", resp.Records)
	}
}
