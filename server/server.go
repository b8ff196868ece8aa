// Package server exposes the dashboard engine over HTTP.
package server

import (
	"context"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/spektr-org/menulens/engine"
	"github.com/spektr-org/menulens/report"
)

// Store supplies the canonical record set. dataset.Loader implements it.
type Store interface {
	Load(ctx context.Context) ([]engine.ListingRecord, error)
	Invalidate(ctx context.Context) error
}

// Server is the HTTP API.
type Server struct {
	router    *gin.Engine
	store     *storeState
	engine    []engine.Option
	workers   int
	formatter *report.Formatter
	logger    *zap.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithUniverse sets the reference market universe. Without it the universe
// is derived from the full record set on every load.
func WithUniverse(u []engine.MarketUniverseEntry) Option {
	return func(s *Server) { s.store.fixedUniverse = u }
}

// WithEngineOptions forwards options to engine.Analyze.
func WithEngineOptions(opts ...engine.Option) Option {
	return func(s *Server) { s.engine = append(s.engine, opts...) }
}

// WithWorkers bounds scorecard parallelism; 0 uses GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(s *Server) { s.workers = n }
}

// WithFormatter sets the number formatter used for report payloads.
func WithFormatter(f *report.Formatter) Option {
	return func(s *Server) {
		if f != nil {
			s.formatter = f
		}
	}
}

// WithLogger sets the request and load logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// New builds the router.
func New(store Store, opts ...Option) *Server {
	s := &Server{
		store:     &storeState{src: store},
		formatter: report.Default,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.router = gin.New()
	s.router.Use(gin.Recovery(), requestID(), accessLog(s.logger), ownerScope())
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.router.Group("/api")
	{
		api.GET("/health", s.health)
		api.GET("/filters", s.filters)
		api.POST("/dashboard", s.dashboard)
		api.POST("/heatmap", s.heatmap)
		api.POST("/cooccurrence", s.coOccurrence)
		api.POST("/gaps", s.gaps)
		api.POST("/scorecards", s.scorecards)
		api.POST("/export", s.export)
		api.POST("/reload", s.reload)
	}
}

// Handler returns the router for embedding or tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run starts listening on addr.
func (s *Server) Run(addr string) error {
	s.logger.Info("server: listening", zap.String("addr", addr))
	return s.router.Run(addr)
}

// ============================================================================
// STORE STATE
// ============================================================================

// storeState keeps the loaded records and universe. Handlers take a
// snapshot; a reload swaps both under the lock.
type storeState struct {
	src           Store
	fixedUniverse []engine.MarketUniverseEntry

	mu       sync.RWMutex
	loaded   bool
	records  []engine.ListingRecord
	universe []engine.MarketUniverseEntry
}

func (st *storeState) snapshot(ctx context.Context) ([]engine.ListingRecord, []engine.MarketUniverseEntry, error) {
	st.mu.RLock()
	if st.loaded {
		defer st.mu.RUnlock()
		return st.records, st.universe, nil
	}
	st.mu.RUnlock()
	return st.load(ctx)
}

func (st *storeState) load(ctx context.Context) ([]engine.ListingRecord, []engine.MarketUniverseEntry, error) {
	records, err := st.src.Load(ctx)
	if err != nil {
		return nil, nil, eris.Wrap(err, "server: load records")
	}
	universe := st.fixedUniverse
	if universe == nil {
		universe = engine.BuildUniverse(records)
	}

	st.mu.Lock()
	st.records, st.universe, st.loaded = records, universe, true
	st.mu.Unlock()
	return records, universe, nil
}

func (st *storeState) reload(ctx context.Context) (int, error) {
	if err := st.src.Invalidate(ctx); err != nil {
		return 0, err
	}
	records, _, err := st.load(ctx)
	return len(records), err
}
