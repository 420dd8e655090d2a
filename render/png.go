package render

import (
	"io"
	"math"
	"strings"

	"github.com/rotisserie/eris"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/spektr-org/launchboard/engine"
)

const (
	defaultWidth  = 900
	defaultHeight = 500
)

// PNG rasterizes pie and scatter specs with go-chart.
type PNG struct {
	Width  int
	Height int
}

func (PNG) ContentType() string { return "image/png" }

func (p PNG) Render(w io.Writer, cfg *engine.ChartConfig) error {
	if cfg == nil {
		return ErrEmptyChart
	}
	switch cfg.ChartType {
	case "pie":
		return p.renderPie(w, cfg)
	case "scatter":
		return p.renderScatter(w, cfg)
	default:
		return eris.Errorf("render: unsupported chart type %q", cfg.ChartType)
	}
}

func (p PNG) size() (int, int) {
	width, height := p.Width, p.Height
	if width <= 0 {
		width = defaultWidth
	}
	if height <= 0 {
		height = defaultHeight
	}
	return width, height
}

// ── pie ─────────────────────────────────────────────────────

func (p PNG) renderPie(w io.Writer, cfg *engine.ChartConfig) error {
	var values []chart.Value
	for _, s := range cfg.Series {
		for i, pt := range s.Data {
			// go-chart cannot draw zero-width slices.
			if pt.Value <= 0 {
				continue
			}
			var c string
			if i < len(cfg.Colors) {
				c = cfg.Colors[i]
			}
			values = append(values, chart.Value{
				Label: pt.Label,
				Value: pt.Value,
				Style: chart.Style{FillColor: parseColor(c, i)},
			})
		}
	}
	if len(values) == 0 {
		return ErrEmptyChart
	}

	width, height := p.size()
	pie := chart.PieChart{
		Title:  cfg.Title,
		Width:  width,
		Height: height,
		Values: values,
	}
	if err := pie.Render(chart.PNG, w); err != nil {
		return eris.Wrap(err, "render: draw pie")
	}
	return nil
}

// ── scatter ─────────────────────────────────────────────────

// pointStyle draws dots only, no connecting line.
func pointStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeWidth: 0,
		StrokeColor: drawing.ColorTransparent,
		DotWidth:    5,
		DotColor:    col,
	}
}

func (p PNG) renderScatter(w io.Writer, cfg *engine.ChartConfig) error {
	var series []chart.Series
	minX, maxX := math.Inf(1), math.Inf(-1)
	for i, s := range cfg.Series {
		if len(s.Data) == 0 {
			continue
		}
		xs := make([]float64, len(s.Data))
		ys := make([]float64, len(s.Data))
		for j, pt := range s.Data {
			xs[j], ys[j] = pt.X, pt.Value
			minX, maxX = math.Min(minX, pt.X), math.Max(maxX, pt.X)
		}
		series = append(series, chart.ContinuousSeries{
			Name:    s.Name,
			XValues: xs,
			YValues: ys,
			Style:   pointStyle(parseColor(s.Color, i)),
		})
	}
	if len(series) == 0 {
		return ErrEmptyChart
	}

	// A single distinct x would give go-chart a zero-width range.
	pad := math.Max((maxX-minX)*0.05, 100)
	xName := cfg.XAxis
	if cfg.Subtitle != "" {
		xName += "  [" + cfg.Subtitle + "]"
	}

	width, height := p.size()
	ch := chart.Chart{
		Title:      cfg.Title,
		Width:      width,
		Height:     height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 16}},
		XAxis: chart.XAxis{
			Name:  xName,
			Range: &chart.ContinuousRange{Min: math.Max(0, minX-pad), Max: maxX + pad},
		},
		YAxis: chart.YAxis{
			Name: cfg.YAxis,
			// Ticks set the range; the unlabeled ends keep dots off the border.
			Ticks: []chart.Tick{{Value: -0.25}, {Value: 0, Label: "0"}, {Value: 1, Label: "1"}, {Value: 1.25}},
		},
		Series: series,
	}
	if cfg.ShowLegend {
		ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	}

	if err := ch.Render(chart.PNG, w); err != nil {
		return eris.Wrap(err, "render: draw scatter")
	}
	return nil
}

// ── colors ──────────────────────────────────────────────────

var fallbackColors = []drawing.Color{
	chart.ColorBlue, chart.ColorGreen, chart.ColorRed, chart.ColorOrange, chart.ColorCyan,
}

// parseColor accepts a basic CSS color name or a #rrggbb hex value. Empty
// or unknown values fall back to the palette entry for index i.
func parseColor(s string, i int) drawing.Color {
	s = strings.ToLower(strings.TrimSpace(s))
	if c := drawing.ColorFromKnown(s); !c.IsZero() {
		return c
	}
	if hex := strings.TrimPrefix(s, "#"); len(hex) == 6 || len(hex) == 3 {
		if isHex(hex) {
			return drawing.ColorFromHex(hex)
		}
	}
	return fallbackColors[i%len(fallbackColors)]
}

func isHex(s string) bool {
	for _, r := range s {
		if !strings.ContainsRune("0123456789abcdef", r) {
			return false
		}
	}
	return true
}
