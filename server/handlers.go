package server

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/spektr-org/menulens/engine"
	"github.com/spektr-org/menulens/export"
)

// ============================================================================
// REQUESTS
// ============================================================================

// sliceRequest selects the records a view is computed on.
type sliceRequest struct {
	Filters engine.FilterSet     `json:"filters"`
	Time    engine.TimeSelection `json:"time"`
}

type heatmapRequest struct {
	sliceRequest
	Spec engine.MatrixSpec `json:"spec"`
}

type coOccurrenceRequest struct {
	sliceRequest
	Brand    string `json:"brand"`
	Category string `json:"category"`
	Limit    int    `json:"limit"`
}

type gapsRequest struct {
	sliceRequest
	Cocktail string `json:"cocktail"`
	Brand    string `json:"brand"`
}

// view is one request's record slice: the fully filtered primary period and
// its market context (brand and owner selections dropped).
type view struct {
	filtered []engine.ListingRecord
	market   []engine.ListingRecord
	universe []engine.MarketUniverseEntry
}

func (s *Server) bind(c *gin.Context, req any) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func (s *Server) view(c *gin.Context, req sliceRequest) (view, bool) {
	records, universe, err := s.store.snapshot(c.Request.Context())
	if err != nil {
		s.unavailable(c, err)
		return view{}, false
	}
	visible := scopeOf(c).Restrict(records)
	primary := engine.Partition(visible, req.Time).Primary
	return view{
		filtered: engine.ApplyFilters(primary, req.Filters),
		market:   engine.MarketContext(primary, req.Filters),
		universe: engine.FilterUniverse(universe, req.Filters),
	}, true
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

func (s *Server) unavailable(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(http.StatusServiceUnavailable, gin.H{"error": "records unavailable"})
}

// ============================================================================
// HANDLERS
// ============================================================================

// GET /api/health
func (s *Server) health(c *gin.Context) {
	records, _, err := s.store.snapshot(c.Request.Context())
	if err != nil {
		s.unavailable(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "records": len(records)})
}

// filterDimensions are offered as filter choices.
var filterDimensions = []engine.Dimension{
	engine.DimRegion, engine.DimCity, engine.DimCustomerType, engine.DimBrandOwner,
	engine.DimBrand, engine.DimMacroCategory, engine.DimProductCategory, engine.DimCocktail,
}

// GET /api/filters
func (s *Server) filters(c *gin.Context) {
	records, _, err := s.store.snapshot(c.Request.Context())
	if err != nil {
		s.unavailable(c, err)
		return
	}
	visible := scopeOf(c).Restrict(records)
	out := make(map[string][]string, len(filterDimensions))
	for _, d := range filterDimensions {
		out[string(d)] = engine.UniqueValues(visible, d)
	}
	c.JSON(http.StatusOK, out)
}

// POST /api/dashboard
func (s *Server) dashboard(c *gin.Context) {
	var q engine.Query
	if !s.bind(c, &q) {
		return
	}
	records, universe, err := s.store.snapshot(c.Request.Context())
	if err != nil {
		s.unavailable(c, err)
		return
	}
	q.Scope = scopeOf(c)

	opts := append([]engine.Option{engine.WithLogger(s.logger)}, s.engine...)
	d := engine.Analyze(records, universe, q, opts...)
	c.JSON(http.StatusOK, gin.H{"dashboard": d, "report": s.formatter.Dashboard(d)})
}

// POST /api/heatmap
func (s *Server) heatmap(c *gin.Context) {
	var req heatmapRequest
	if !s.bind(c, &req) {
		return
	}
	if err := req.Spec.Validate(); err != nil {
		badRequest(c, err.Error())
		return
	}
	v, ok := s.view(c, req.sliceRequest)
	if !ok {
		return
	}
	m, err := engine.BuildMatrix(v.market, req.Spec)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"matrix": m,
		"table":  s.formatter.MatrixTable(fmt.Sprintf("%s × %s", m.RowDimension.Label(), m.ColDimension.Label()), m),
	})
}

// POST /api/cooccurrence
func (s *Server) coOccurrence(c *gin.Context) {
	var req coOccurrenceRequest
	if !s.bind(c, &req) {
		return
	}
	if strings.TrimSpace(req.Brand) == "" {
		badRequest(c, "brand is required")
		return
	}
	limit := req.Limit
	if limit <= 0 {
		limit = engine.CoOccurrenceLimit
	}
	v, ok := s.view(c, req.sliceRequest)
	if !ok {
		return
	}
	rows := engine.CoOccurrenceTopN(req.Brand, req.Category, v.market, limit)
	c.JSON(http.StatusOK, gin.H{
		"brand":        req.Brand,
		"coOccurrence": rows,
		"table":        s.formatter.CoOccurrenceTable("Co-occurrence with "+req.Brand, rows),
	})
}

// POST /api/gaps
func (s *Server) gaps(c *gin.Context) {
	var req gapsRequest
	if !s.bind(c, &req) {
		return
	}
	if strings.TrimSpace(req.Cocktail) == "" || strings.TrimSpace(req.Brand) == "" {
		badRequest(c, "cocktail and brand are required")
		return
	}
	v, ok := s.view(c, req.sliceRequest)
	if !ok {
		return
	}
	spots := engine.WhiteSpots(req.Cocktail, req.Brand, v.market)
	c.JSON(http.StatusOK, gin.H{
		"cocktail":       req.Cocktail,
		"brand":          req.Brand,
		"cocktailVenues": engine.CocktailVenues(req.Cocktail, v.market),
		"whiteSpots":     spots,
		"table":          s.formatter.WhiteSpotTable(req.Cocktail+" without "+req.Brand, spots),
	})
}

// POST /api/scorecards
func (s *Server) scorecards(c *gin.Context) {
	var req sliceRequest
	if !s.bind(c, &req) {
		return
	}
	v, ok := s.view(c, req)
	if !ok {
		return
	}
	cards, err := engine.OwnerScorecards(c.Request.Context(), v.market, v.universe, s.workers)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "scorecards cancelled"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"scorecards": cards,
		"table":      s.formatter.ScorecardTable("Owner scorecards", cards),
	})
}

// POST /api/export?format=csv|xlsx
func (s *Server) export(c *gin.Context) {
	var req sliceRequest
	if !s.bind(c, &req) {
		return
	}
	format := strings.ToLower(c.DefaultQuery("format", "csv"))
	if format != "csv" && format != "xlsx" {
		badRequest(c, fmt.Sprintf("unknown export format %q", format))
		return
	}
	v, ok := s.view(c, req)
	if !ok {
		return
	}

	var buf bytes.Buffer
	contentType := "text/csv; charset=utf-8"
	if format == "xlsx" {
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		owners := engine.VenueOwnerShare(v.market, req.Filters.BrandOwners, 0, 0)
		var brand string
		if len(req.Filters.Brands) > 0 {
			brand = req.Filters.Brands[0]
		}
		regions := engine.RegionCompetitorPresence(v.market, brand, 0)
		if err := export.WriteXLSX(&buf, v.filtered, owners, regions); err != nil {
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
			return
		}
	} else if err := export.WriteCSV(&buf, v.filtered, ','); err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="listings.%s"`, format))
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

// POST /api/reload
func (s *Server) reload(c *gin.Context) {
	n, err := s.store.reload(c.Request.Context())
	if err != nil {
		s.unavailable(c, err)
		return
	}
	s.logger.Info("server: records reloaded", zap.Int("records", n))
	c.JSON(http.StatusOK, gin.H{"status": "reloaded", "records": n})
}
