package engine

import "strconv"

// ============================================================================
// CHART BUILDER: Produces ChartConfig from a published artifact
// ============================================================================
// The ChartConfig is the renderer contract: a chart-type tag plus series.
// Pie:     one series, one point per slice, Colors aligned with points.
// Scatter: one series per booster group, one point per launch.
// ============================================================================

// Default color palette for chart series.
var defaultColors = []string{
	"#4F46E5", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6",
	"#06B6D4", "#EC4899", "#84CC16", "#F97316", "#6366F1",
}

// BuildChart produces a ChartConfig for an artifact. Unknown artifact types
// return nil.
func BuildChart(a Artifact) *ChartConfig {
	switch art := a.(type) {
	case PieArtifact:
		return buildPieChart(art)
	case *PieArtifact:
		return buildPieChart(*art)
	case ScatterArtifact:
		return buildScatterChart(art)
	case *ScatterArtifact:
		return buildScatterChart(*art)
	default:
		return nil
	}
}

// ============================================================================
// SERIES BUILDERS
// ============================================================================

func buildPieChart(art PieArtifact) *ChartConfig {
	config := &ChartConfig{
		ChartType:  art.ChartType(),
		Title:      art.Title,
		ShowLegend: true,
		ShowGrid:   false,
	}

	if art.Mode == PieModeSingle {
		b := OutcomeBuckets{}
		if art.Buckets != nil {
			b = *art.Buckets
		}
		colors := DefaultOutcomeColors
		if art.Colors != nil {
			colors = *art.Colors
		}
		config.Series = []ChartSeries{{
			Name: "class",
			Data: []ChartPoint{
				{Label: strconv.Itoa(int(Failure)), Value: float64(b.Failure)},
				{Label: strconv.Itoa(int(Success)), Value: float64(b.Success)},
			},
		}}
		config.Colors = []string{colors.Failure, colors.Success}
		return config
	}

	points := make([]ChartPoint, 0, len(art.Order))
	for _, site := range art.Order {
		points = append(points, ChartPoint{
			Label: site,
			Value: float64(art.PerSite[site]),
		})
	}
	config.Series = []ChartSeries{{
		Name: "Launch Site",
		Data: points,
	}}
	config.Colors = assignColors(len(points))
	return config
}

func buildScatterChart(art ScatterArtifact) *ChartConfig {
	config := &ChartConfig{
		ChartType:  art.ChartType(),
		Title:      art.Title,
		Subtitle:   art.RangeLabel,
		XAxis:      "Payload Mass (kg)",
		YAxis:      "class",
		ShowLegend: true,
		ShowGrid:   true,
	}

	groups := GroupByBooster(pointsView(art.Points))
	series := make([]ChartSeries, 0, len(groups))
	for i, g := range groups {
		data := make([]ChartPoint, g.View.Len())
		for j := range data {
			r := g.View.At(j)
			data[j] = ChartPoint{Label: g.Label, X: r.PayloadMass, Value: float64(r.Outcome)}
		}
		series = append(series, ChartSeries{
			Name:  g.Label,
			Data:  data,
			Color: defaultColors[i%len(defaultColors)],
		})
	}

	config.Series = series
	config.Colors = assignColors(len(series))
	return config
}

// pointsView exposes scatter points as records so they group like rows.
func pointsView(points []ScatterPoint) RecordView {
	records := make([]Record, len(points))
	for i, p := range points {
		records[i] = Record{PayloadMass: p.X, Outcome: p.Y, BoosterVersion: p.Group}
	}
	return NewSliceView(records)
}

func assignColors(count int) []string {
	colors := make([]string, count)
	for i := 0; i < count; i++ {
		colors[i] = defaultColors[i%len(defaultColors)]
	}
	return colors
}
