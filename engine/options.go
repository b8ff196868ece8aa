package engine

import "go.uber.org/zap"

// ============================================================================
// ENGINE OPTIONS — Functional options for Analyze()
// ============================================================================

// Option configures engine behavior via functional options pattern.
type Option func(*config)

type config struct {
	TopN         int // entities per ranking
	HeatmapRows  int // rows per heatmap
	HeatmapCols  int // columns per heatmap, pinned included
	CoOccurrence int // competitors per co-occurrence list
	Logger       *zap.Logger
}

// WithTopN sets how many entities each ranking keeps.
func WithTopN(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.TopN = n
		}
	}
}

// WithHeatmapSize sets heatmap row and column counts.
func WithHeatmapSize(rows, cols int) Option {
	return func(c *config) {
		if rows > 0 {
			c.HeatmapRows = rows
		}
		if cols > 0 {
			c.HeatmapCols = cols
		}
	}
}

// WithCoOccurrenceLimit sets how many competitors co-occurrence keeps.
func WithCoOccurrenceLimit(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.CoOccurrence = n
		}
	}
}

// WithLogger routes engine debug logs to l.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.Logger = l
		}
	}
}

// applyOptions creates a config from functional options.
func applyOptions(opts []Option) *config {
	cfg := &config{
		TopN:         10,
		HeatmapRows:  10,
		HeatmapCols:  5,
		CoOccurrence: CoOccurrenceLimit,
		Logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
