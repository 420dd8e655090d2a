package render

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/spektr-org/launchboard/engine"
)

// ErrEmptyChart is returned when a chart has nothing to draw, e.g. a pie
// whose slices are all zero or a scatter with no points.
var ErrEmptyChart = eris.New("render: nothing to draw")

// Renderer draws a chart spec. It only looks at the chart-type tag and the
// series, never at artifacts.
type Renderer interface {
	ContentType() string
	Render(w io.Writer, cfg *engine.ChartConfig) error
}

// ForFormat returns the renderer for "json" or "png".
func ForFormat(format string) (Renderer, error) {
	switch strings.ToLower(format) {
	case "json":
		return JSON{}, nil
	case "png":
		return PNG{}, nil
	default:
		return nil, eris.Errorf("render: unsupported format %q", format)
	}
}

// JSON writes the chart spec itself, for front ends that draw client side.
type JSON struct {
	Indent bool
}

func (JSON) ContentType() string { return "application/json" }

func (j JSON) Render(w io.Writer, cfg *engine.ChartConfig) error {
	if cfg == nil {
		return ErrEmptyChart
	}
	enc := json.NewEncoder(w)
	if j.Indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(cfg); err != nil {
		return eris.Wrap(err, "render: encode json")
	}
	return nil
}
