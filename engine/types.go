package engine

import (
	"encoding/json"
	"math"

	"github.com/rotisserie/eris"
)

// ============================================================================
// LAUNCHBOARD ENGINE TYPES
// ============================================================================
// Record is one launch event. Signals are the two user inputs, artifacts are
// the two published outputs. ChartConfig and TableData are render-ready shapes
// handed to whatever draws them.
// ============================================================================

// ============================================================================
// RECORD
// ============================================================================

// Outcome is the binary launch result. Its integer value is the pie weight.
type Outcome int

const (
	Failure Outcome = 0
	Success Outcome = 1
)

func (o Outcome) String() string {
	if o == Success {
		return "success"
	}
	return "failure"
}

// Record is a single launch event.
type Record struct {
	Site           string  `json:"site"`
	PayloadMass    float64 `json:"payloadMass"`
	Outcome        Outcome `json:"outcome"`
	BoosterVersion string  `json:"boosterVersion"`
}

// ============================================================================
// SIGNALS
// ============================================================================

// Signal names an externally settable input.
type Signal string

const (
	SignalSite         Signal = "site"
	SignalPayloadRange Signal = "payloadRange"
)

// Output names a published artifact.
type Output string

const (
	OutputPie     Output = "success-pie-chart"
	OutputScatter Output = "success-payload-scatter-chart"
)

// SiteSelector is the value of the site signal: AllSites or one launch site.
type SiteSelector string

// AllSites selects every launch site.
const AllSites SiteSelector = "ALL"

// IsAll reports whether the selector is the ALL sentinel.
func (s SiteSelector) IsAll() bool { return s == AllSites }

// PayloadRange is a closed interval over payload mass (kg).
// It marshals as a two-element array, the shape a range slider emits.
type PayloadRange struct {
	Low  float64
	High float64
}

// Unbounded returns the range that contains every payload mass.
func Unbounded() PayloadRange {
	return PayloadRange{Low: math.Inf(-1), High: math.Inf(1)}
}

// Contains reports low <= mass <= high. An inverted range contains nothing.
func (r PayloadRange) Contains(mass float64) bool {
	return r.Low <= mass && mass <= r.High
}

// IsInverted reports low > high.
func (r PayloadRange) IsInverted() bool { return r.Low > r.High }

func (r PayloadRange) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{r.Low, r.High})
}

// UnmarshalJSON accepts [low, high] or {"low": .., "high": ..}.
func (r *PayloadRange) UnmarshalJSON(data []byte) error {
	var pair []float64
	if err := json.Unmarshal(data, &pair); err == nil {
		if len(pair) != 2 {
			return eris.Errorf("payload range: want 2 values, got %d", len(pair))
		}
		r.Low, r.High = pair[0], pair[1]
		return nil
	}

	var obj struct {
		Low  *float64 `json:"low"`
		High *float64 `json:"high"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return eris.Wrap(err, "payload range: decode")
	}
	if obj.Low == nil || obj.High == nil {
		return eris.New("payload range: low and high are required")
	}
	r.Low, r.High = *obj.Low, *obj.High
	return nil
}

// ============================================================================
// ARTIFACTS
// ============================================================================

// Artifact is a published output ready for rendering.
type Artifact interface {
	ArtifactTitle() string
	ChartType() string
}

// PieMode tags the PieArtifact union.
type PieMode string

const (
	PieModeAll    PieMode = "ALL"
	PieModeSingle PieMode = "SINGLE"
)

// OutcomeBuckets counts launches per outcome value.
type OutcomeBuckets struct {
	Failure int `json:"failure"`
	Success int `json:"success"`
}

// Total returns failure + success.
func (b OutcomeBuckets) Total() int { return b.Failure + b.Success }

// OutcomeColors is the fixed slice color per outcome.
type OutcomeColors struct {
	Failure string `json:"failure"`
	Success string `json:"success"`
}

// Fixed colors for the single-site breakdown.
var DefaultOutcomeColors = OutcomeColors{Failure: "red", Success: "green"}

// PieArtifact is the success-pie-chart output.
//
// Mode ALL fills PerSite (successes per site, zero sites omitted) and Order.
// Mode SINGLE fills Site, Buckets and Colors; both buckets are always present.
type PieArtifact struct {
	Mode    PieMode         `json:"mode"`
	Title   string          `json:"title"`
	PerSite map[string]int  `json:"perSite,omitempty"`
	Order   []string        `json:"order,omitempty"` // first-seen order of PerSite keys
	Site    string          `json:"site,omitempty"`
	Buckets *OutcomeBuckets `json:"buckets,omitempty"`
	Colors  *OutcomeColors  `json:"colors,omitempty"`
}

// MarshalJSON always writes perSite and order in ALL mode, empty when no
// site has a success.
func (p PieArtifact) MarshalJSON() ([]byte, error) {
	type pie PieArtifact
	if p.Mode != PieModeAll {
		return json.Marshal(pie(p))
	}
	perSite, order := p.PerSite, p.Order
	if perSite == nil {
		perSite = map[string]int{}
	}
	if order == nil {
		order = []string{}
	}
	return json.Marshal(struct {
		Mode    PieMode        `json:"mode"`
		Title   string         `json:"title"`
		PerSite map[string]int `json:"perSite"`
		Order   []string       `json:"order"`
	}{p.Mode, p.Title, perSite, order})
}

func (p PieArtifact) ArtifactTitle() string { return p.Title }
func (p PieArtifact) ChartType() string     { return "pie" }

// ScatterPoint is one launch in the scatter projection.
type ScatterPoint struct {
	X     float64 `json:"x"`     // payload mass
	Y     Outcome `json:"y"`     // outcome
	Group string  `json:"group"` // booster version
}

// ScatterArtifact is the success-payload-scatter-chart output.
type ScatterArtifact struct {
	Title      string         `json:"title"`
	Site       SiteSelector   `json:"site"`
	Range      PayloadRange   `json:"range"`
	RangeLabel string         `json:"rangeLabel"`
	Points     []ScatterPoint `json:"points"`
}

func (s ScatterArtifact) ArtifactTitle() string { return s.Title }
func (s ScatterArtifact) ChartType() string     { return "scatter" }

// ============================================================================
// GROUP: Intermediate computation result
// ============================================================================

// Group is a set of records sharing a key, with its aggregated value.
type Group struct {
	Key   string     `json:"key"`
	Label string     `json:"label"`
	Value float64    `json:"value"`
	Count int        `json:"count"`
	View  RecordView `json:"-"` // Sub-view for records in this group (zero-copy)
}

// ============================================================================
// CHART TYPES
// ============================================================================

// ChartConfig defines how to render a chart.
type ChartConfig struct {
	ChartType  string        `json:"chartType"`
	Title      string        `json:"title"`
	Subtitle   string        `json:"subtitle,omitempty"`
	XAxis      string        `json:"xAxis,omitempty"`
	YAxis      string        `json:"yAxis,omitempty"`
	Series     []ChartSeries `json:"series"`
	Colors     []string      `json:"colors,omitempty"`
	ShowLegend bool          `json:"showLegend"`
	ShowGrid   bool          `json:"showGrid"`
}

// ChartSeries represents a data series in a chart.
type ChartSeries struct {
	Name  string       `json:"name"`
	Data  []ChartPoint `json:"data"`
	Color string       `json:"color,omitempty"`
}

// ChartPoint represents a single data point. Pie slices use Label/Value,
// scatter points use X/Value.
type ChartPoint struct {
	Label string  `json:"label"`
	X     float64 `json:"x,omitempty"`
	Value float64 `json:"value"`
}

// ============================================================================
// TABLE TYPES
// ============================================================================

// TableData defines how to render a table.
type TableData struct {
	Title   string     `json:"title"`
	Columns []Column   `json:"columns"`
	Rows    [][]string `json:"rows"`
	Summary *Summary   `json:"summary,omitempty"`
}

// Column defines a table column.
type Column struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Type  string `json:"type"`  // "text", "number"
	Align string `json:"align"` // "left", "center", "right"
}

// Summary provides totals for a table.
type Summary struct {
	Label  string            `json:"label"`
	Values map[string]string `json:"values"`
}

// ============================================================================
// TEXT TYPES
// ============================================================================

// TextData is a plain-language summary of an artifact.
type TextData struct {
	Headline    string   `json:"headline"`
	Launches    int      `json:"launches"`
	Successes   int      `json:"successes"`
	SuccessRate float64  `json:"successRate"` // percent, 0 when no launches
	Lines       []string `json:"lines,omitempty"`
}
