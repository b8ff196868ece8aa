package dataset

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/spektr-org/menulens/cache"
	"github.com/spektr-org/menulens/engine"
	"github.com/spektr-org/menulens/normalize"
)

// ============================================================================
// LOADER — Source → Normalizer → cached canonical records
// ============================================================================
// Cache failures are logged and bypassed; source failures are returned.
// ============================================================================

// DefaultCacheKey names the cached record set.
const DefaultCacheKey = "records"

// Loader produces the canonical record set.
type Loader struct {
	src    Source
	norm   *normalize.Normalizer
	cache  cache.Cache
	key    string
	ttl    time.Duration
	logger *zap.Logger

	mu sync.Mutex
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithNormalizer replaces the default normalizer.
func WithNormalizer(n *normalize.Normalizer) LoaderOption {
	return func(l *Loader) {
		if n != nil {
			l.norm = n
		}
	}
}

// WithCache stores normalized records in c under key for ttl.
func WithCache(c cache.Cache, key string, ttl time.Duration) LoaderOption {
	return func(l *Loader) {
		l.cache = c
		if key != "" {
			l.key = key
		}
		l.ttl = ttl
	}
}

// WithLogger sets the loader logger.
func WithLogger(log *zap.Logger) LoaderOption {
	return func(l *Loader) {
		if log != nil {
			l.logger = log
		}
	}
}

// NewLoader builds a loader over src.
func NewLoader(src Source, opts ...LoaderOption) *Loader {
	l := &Loader{
		src:    src,
		norm:   normalize.New(),
		key:    DefaultCacheKey,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Normalizer returns the normalizer used for records.
func (l *Loader) Normalizer() *normalize.Normalizer {
	return l.norm
}

// Load returns the cached record set or fetches and normalizes a fresh one.
func (l *Loader) Load(ctx context.Context) ([]engine.ListingRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if records, ok := l.cached(ctx); ok {
		return records, nil
	}

	start := time.Now()
	rows, err := l.src.Fetch(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "dataset: fetch")
	}
	records := l.norm.NormalizeAll(rows)
	l.logger.Info("dataset: loaded",
		zap.Int("rows", len(rows)),
		zap.Duration("elapsed", time.Since(start)),
	)

	if l.cache != nil {
		if data, err := json.Marshal(records); err != nil {
			l.logger.Warn("dataset: encode cache entry", zap.Error(err))
		} else if err := l.cache.Set(ctx, l.key, data, l.ttl); err != nil {
			l.logger.Warn("dataset: cache write failed", zap.Error(err))
		}
	}
	return records, nil
}

func (l *Loader) cached(ctx context.Context) ([]engine.ListingRecord, bool) {
	if l.cache == nil {
		return nil, false
	}
	data, ok, err := l.cache.Get(ctx, l.key)
	if err != nil {
		l.logger.Warn("dataset: cache read failed", zap.Error(err))
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var records []engine.ListingRecord
	if err := json.Unmarshal(data, &records); err != nil {
		l.logger.Warn("dataset: discarding corrupt cache entry", zap.Error(err))
		return nil, false
	}
	l.logger.Debug("dataset: cache hit", zap.Int("records", len(records)))
	return records, true
}

// Invalidate drops the cached record set so the next Load refetches.
func (l *Loader) Invalidate(ctx context.Context) error {
	if l.cache == nil {
		return nil
	}
	if err := l.cache.Clear(ctx); err != nil {
		return eris.Wrap(err, "dataset: invalidate")
	}
	return nil
}
