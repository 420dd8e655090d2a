package engine

import (
	"math"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ============================================================================
// SIGNAL GRAPH: Per-session reactive recomputation
// ============================================================================
// Entry point: NewGraph(table, opts...), then OnSignalChange(signal, value).
//
// Pipeline per signal update:
//   1. Validate the new value against the signal's domain
//   2. Look up affected outputs in the dependency table
//   3. Filter → Aggregate / Project each affected output from the new state
//   4. Swap signals and artifacts in as one unit
//   5. Notify observers
//
// A rejected update changes nothing. Every accepted update recomputes its
// outputs, even when the value is unchanged.
// ============================================================================

// Table is the read-only dataset a graph computes over.
type Table interface {
	RecordView
	MinPayload() float64
	MaxPayload() float64
	Sites() []string
	HasSite(site string) bool
}

// Dependencies declares which signals each output is computed from.
// The pie ignores payloadRange.
var Dependencies = map[Output][]Signal{
	OutputPie:     {SignalSite},
	OutputScatter: {SignalSite, SignalPayloadRange},
}

// outputOrder fixes recompute and notification order.
var outputOrder = []Output{OutputPie, OutputScatter}

// Outputs lists every output in recompute order.
func Outputs() []Output {
	return append([]Output(nil), outputOrder...)
}

// AffectedOutputs returns the outputs whose dependency set contains signal.
func AffectedOutputs(signal Signal) []Output {
	var out []Output
	for _, o := range outputOrder {
		for _, s := range Dependencies[o] {
			if s == signal {
				out = append(out, o)
				break
			}
		}
	}
	return out
}

// State is one consistent snapshot of a session: both signals and the
// artifacts computed from them.
type State struct {
	Site    SiteSelector    `json:"site"`
	Range   PayloadRange    `json:"payloadRange"`
	Pie     PieArtifact     `json:"pieArtifact"`
	Scatter ScatterArtifact `json:"scatterArtifact"`
	Version uint64          `json:"version"` // accepted updates since creation
}

// Artifact returns the published artifact for an output.
func (s State) Artifact(o Output) (Artifact, bool) {
	switch o {
	case OutputPie:
		return s.Pie, true
	case OutputScatter:
		return s.Scatter, true
	default:
		return nil, false
	}
}

// Graph holds one session's signals and latest artifacts.
// Safe for concurrent use; updates are serialized.
type Graph struct {
	mu    sync.RWMutex
	table Table
	cfg   *config
	state State
}

// NewGraph creates a session over table with site = ALL and
// payloadRange = [MinPayload, MaxPayload], and publishes both outputs.
func NewGraph(table Table, opts ...Option) *Graph {
	g := &Graph{
		table: table,
		cfg:   applyOptions(opts),
	}

	next := State{
		Site:  AllSites,
		Range: PayloadRange{Low: table.MinPayload(), High: table.MaxPayload()},
	}
	timings := g.recompute(&next, outputOrder)
	g.state = next
	g.notify(timings)
	return g
}

// Result is what one accepted signal update published.
type Result struct {
	Recomputed []Output `json:"recomputed"`
	State      State    `json:"state"`
}

// OnSignalChange sets a signal and recomputes every output that depends on
// it. It returns the recomputed outputs.
//
// Accepted values: for SignalSite a SiteSelector or string; for
// SignalPayloadRange a PayloadRange, [2]float64 or []float64 of length 2.
// Anything else, an unknown site, or a range outside [0, ceiling] is
// rejected with a *SignalError and leaves the graph untouched.
func (g *Graph) OnSignalChange(signal Signal, value any) ([]Output, error) {
	res, err := g.Apply(signal, value)
	if err != nil {
		return nil, err
	}
	return res.Recomputed, nil
}

// Apply is OnSignalChange returning the state the update published along
// with the recomputed outputs. Later updates never leak into the result.
func (g *Graph) Apply(signal Signal, value any) (Result, error) {
	res, timings, err := g.apply(signal, value)
	if err != nil {
		g.cfg.Logger.Warn("signal rejected",
			zap.String("signal", string(signal)),
			zap.Error(err),
		)
		for _, o := range g.cfg.Observers {
			o.Rejected(signal, err)
		}
		return Result{}, err
	}
	g.notify(timings)
	return res, nil
}

// SetSite is OnSignalChange(SignalSite, site).
func (g *Graph) SetSite(site SiteSelector) ([]Output, error) {
	return g.OnSignalChange(SignalSite, site)
}

// SetPayloadRange is OnSignalChange(SignalPayloadRange, rng).
func (g *Graph) SetPayloadRange(rng PayloadRange) ([]Output, error) {
	return g.OnSignalChange(SignalPayloadRange, rng)
}

// Snapshot returns the current signals and artifacts as one consistent unit.
func (g *Graph) Snapshot() State {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state
}

// Pie returns the latest success-pie-chart artifact.
func (g *Graph) Pie() PieArtifact { return g.Snapshot().Pie }

// Scatter returns the latest success-payload-scatter-chart artifact.
func (g *Graph) Scatter() ScatterArtifact { return g.Snapshot().Scatter }

// Domain returns the accepted payloadRange bounds.
func (g *Graph) Domain() PayloadRange {
	return PayloadRange{Low: 0, High: math.Max(g.table.MaxPayload(), g.cfg.RangeCeiling)}
}

// ============================================================================
// UPDATE
// ============================================================================

type timing struct {
	output Output
	took   time.Duration
}

func (g *Graph) apply(signal Signal, value any) (Result, []timing, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	next := g.state
	switch signal {
	case SignalSite:
		site, err := g.parseSite(value)
		if err != nil {
			return Result{}, nil, err
		}
		next.Site = site
	case SignalPayloadRange:
		rng, err := g.parseRange(value)
		if err != nil {
			return Result{}, nil, err
		}
		next.Range = rng
	default:
		return Result{}, nil, &SignalError{Signal: signal, Value: value, Reason: "unknown signal"}
	}

	affected := AffectedOutputs(signal)
	timings := g.recompute(&next, affected)
	next.Version++
	g.state = next
	return Result{Recomputed: affected, State: next}, timings, nil
}

// recompute derives each output from s alone, so no output ever mixes old
// and new signal values.
func (g *Graph) recompute(s *State, outputs []Output) []timing {
	timings := make([]timing, 0, len(outputs))
	for _, o := range outputs {
		start := time.Now()
		switch o {
		case OutputPie:
			rows := Filter(g.table, s.Site, Unbounded())
			s.Pie = Aggregate(rows, s.Site)
		case OutputScatter:
			rows := Filter(g.table, s.Site, s.Range)
			s.Scatter = NewScatterArtifact(s.Site, s.Range, Project(rows))
		}
		timings = append(timings, timing{output: o, took: time.Since(start)})
	}
	return timings
}

func (g *Graph) notify(timings []timing) {
	for _, t := range timings {
		g.cfg.Logger.Debug("output published",
			zap.String("output", string(t.output)),
			zap.Duration("took", t.took),
		)
		for _, o := range g.cfg.Observers {
			o.Published(t.output, t.took)
		}
	}
}

// ============================================================================
// VALIDATION
// ============================================================================

func (g *Graph) parseSite(value any) (SiteSelector, error) {
	var site SiteSelector
	switch v := value.(type) {
	case SiteSelector:
		site = v
	case string:
		site = SiteSelector(v)
	default:
		return "", &SignalError{Signal: SignalSite, Value: value, Reason: "expected a site name"}
	}

	if site.IsAll() || g.table.HasSite(string(site)) {
		return site, nil
	}
	return "", &SignalError{Signal: SignalSite, Value: value, Reason: "unknown launch site"}
}

func (g *Graph) parseRange(value any) (PayloadRange, error) {
	var rng PayloadRange
	switch v := value.(type) {
	case PayloadRange:
		rng = v
	case [2]float64:
		rng = PayloadRange{Low: v[0], High: v[1]}
	case []float64:
		if len(v) != 2 {
			return rng, &SignalError{Signal: SignalPayloadRange, Value: value, Reason: "expected [low, high]"}
		}
		rng = PayloadRange{Low: v[0], High: v[1]}
	default:
		return rng, &SignalError{Signal: SignalPayloadRange, Value: value, Reason: "expected [low, high]"}
	}

	domain := g.Domain()
	for _, bound := range []float64{rng.Low, rng.High} {
		if math.IsNaN(bound) || math.IsInf(bound, 0) {
			return PayloadRange{}, &SignalError{Signal: SignalPayloadRange, Value: value, Reason: "bounds must be finite"}
		}
		if !domain.Contains(bound) {
			return PayloadRange{}, &SignalError{Signal: SignalPayloadRange, Value: value, Reason: "outside payload domain " + RangeLabel(domain)}
		}
	}
	return rng, nil
}
