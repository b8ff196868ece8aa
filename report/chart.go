package report

import (
	"github.com/spektr-org/menulens/engine"
)

// ============================================================================
// CHART BUILDER — ChartConfig from rankings, heatmaps and scorecards
// ============================================================================

// Default color palette for chart series.
var defaultColors = []string{
	"#4F46E5", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6",
	"#06B6D4", "#EC4899", "#84CC16", "#F97316", "#6366F1",
}

// RankingChart renders a ranking as a single-series bar chart. Pinned
// entities are highlighted.
func RankingChart(title string, d engine.Dimension, metric engine.RankMetric, ranked []engine.RankedEntity) *ChartConfig {
	if len(ranked) == 0 {
		return nil
	}

	points := make([]ChartPoint, 0, len(ranked))
	for _, e := range ranked {
		v := float64(e.Listings)
		if metric == engine.RankByVenues {
			v = float64(e.Venues)
		}
		points = append(points, ChartPoint{Label: e.Name, Value: v, Highlight: e.Pinned})
	}

	config := &ChartConfig{
		ChartType:  "bar",
		Title:      title,
		XAxis:      d.Label(),
		YAxis:      metricLabel(metric),
		ShowLegend: false,
		ShowGrid:   true,
		Series:     []ChartSeries{{Name: metricLabel(metric), Data: points}},
	}
	config.Colors = assignColors(len(config.Series))
	return config
}

// MatrixChart renders a heatmap as a grouped bar chart with one series per
// column entity.
func MatrixChart(title string, m *engine.Matrix) *ChartConfig {
	if m == nil || len(m.Rows) == 0 || len(m.Cols) == 0 {
		return nil
	}

	series := make([]ChartSeries, 0, len(m.Cols))
	for j, col := range m.Cols {
		points := make([]ChartPoint, 0, len(m.Rows))
		for i, row := range m.Rows {
			points = append(points, ChartPoint{Label: row, Value: engine.RoundTo2(m.Cells[i][j])})
		}
		series = append(series, ChartSeries{
			Name:  col,
			Data:  points,
			Color: defaultColors[j%len(defaultColors)],
		})
	}

	return &ChartConfig{
		ChartType:  "stacked_bar",
		Title:      title,
		XAxis:      m.RowDimension.Label(),
		YAxis:      modeLabel(m.Mode),
		Series:     series,
		Colors:     assignColors(len(series)),
		ShowLegend: true,
		ShowGrid:   true,
	}
}

// ChannelChart renders owner penetration per channel.
func ChannelChart(title string, shares []engine.ChannelShare) *ChartConfig {
	if len(shares) == 0 {
		return nil
	}
	points := make([]ChartPoint, 0, len(shares))
	for _, s := range shares {
		points = append(points, ChartPoint{Label: s.Channel, Value: engine.RoundTo2(s.Penetration)})
	}
	return &ChartConfig{
		ChartType: "bar",
		Title:     title,
		XAxis:     engine.DimCustomerType.Label(),
		YAxis:     "Penetration %",
		Series:    []ChartSeries{{Name: "Penetration", Data: points}},
		Colors:    assignColors(1),
		ShowGrid:  true,
	}
}

func metricLabel(m engine.RankMetric) string {
	if m == engine.RankByVenues {
		return "Venues"
	}
	return "Listings"
}

func modeLabel(m engine.ValueMode) string {
	switch m {
	case engine.ValueShare:
		return "Share of menu %"
	case engine.ValueVenues:
		return "Venues"
	default:
		return "Listings"
	}
}

func assignColors(count int) []string {
	colors := make([]string, count)
	for i := 0; i < count; i++ {
		colors[i] = defaultColors[i%len(defaultColors)]
	}
	return colors
}
