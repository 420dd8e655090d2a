package engine

import (
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingObserver struct {
	mu        sync.Mutex
	published []Output
	rejected  []Signal
}

func (r *recordingObserver) Published(o Output, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.published = append(r.published, o)
}

func (r *recordingObserver) Rejected(s Signal, _ error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rejected = append(r.rejected, s)
}

func newScenarioGraph(t *testing.T, opts ...Option) *Graph {
	t.Helper()
	opts = append([]Option{WithRangeCeiling(10000), WithLogger(zap.NewNop())}, opts...)
	return NewGraph(newTestTable(scenarioRecords), opts...)
}

func TestDependencies(t *testing.T) {
	assert.Equal(t, []Output{OutputPie, OutputScatter}, AffectedOutputs(SignalSite))
	assert.Equal(t, []Output{OutputScatter}, AffectedOutputs(SignalPayloadRange))
	assert.Empty(t, AffectedOutputs(Signal("color")))
	assert.Equal(t, []Output{OutputPie, OutputScatter}, Outputs())
}

func TestNewGraphInitialState(t *testing.T) {
	obs := &recordingObserver{}
	g := newScenarioGraph(t, WithObserver(obs))

	s := g.Snapshot()
	assert.Equal(t, AllSites, s.Site)
	assert.Equal(t, PayloadRange{Low: 2000, High: 9000}, s.Range)
	assert.Equal(t, uint64(0), s.Version)
	assert.Equal(t, map[string]int{"A": 1, "B": 1}, s.Pie.PerSite)
	assert.Len(t, s.Scatter.Points, 3)
	assert.Equal(t, []Output{OutputPie, OutputScatter}, obs.published)
}

func TestScenarioEndToEnd(t *testing.T) {
	g := newScenarioGraph(t)

	// All sites over the whole slider.
	_, err := g.SetPayloadRange(PayloadRange{Low: 0, High: 10000})
	require.NoError(t, err)
	assert.Equal(t, PieModeAll, g.Pie().Mode)
	assert.Equal(t, map[string]int{"A": 1, "B": 1}, g.Pie().PerSite)

	// Narrow to site A.
	outputs, err := g.SetSite("A")
	require.NoError(t, err)
	assert.Equal(t, []Output{OutputPie, OutputScatter}, outputs)

	pie := g.Pie()
	require.Equal(t, PieModeSingle, pie.Mode)
	assert.Equal(t, OutcomeBuckets{Failure: 1, Success: 1}, *pie.Buckets)

	wantPoints := []ScatterPoint{
		{X: 2000, Y: Success, Group: "v1"},
		{X: 9000, Y: Failure, Group: "v2"},
	}
	if diff := cmp.Diff(wantPoints, g.Scatter().Points); diff != "" {
		t.Errorf("scatter for site A (-want +got):\n%s", diff)
	}

	// Narrow the payload range.
	outputs, err = g.SetPayloadRange(PayloadRange{Low: 0, High: 5000})
	require.NoError(t, err)
	assert.Equal(t, []Output{OutputScatter}, outputs)

	wantPoints = []ScatterPoint{{X: 2000, Y: Success, Group: "v1"}}
	if diff := cmp.Diff(wantPoints, g.Scatter().Points); diff != "" {
		t.Errorf("scatter for site A, 0-5000 (-want +got):\n%s", diff)
	}
	assert.Equal(t, "0 kg - 5,000 kg", g.Scatter().RangeLabel)
}

func TestPieIgnoresPayloadRange(t *testing.T) {
	g := newScenarioGraph(t)
	before := g.Pie()

	_, err := g.SetPayloadRange(PayloadRange{Low: 0, High: 2500})
	require.NoError(t, err)

	assert.Equal(t, before, g.Pie())
	assert.Equal(t, map[string]int{"A": 1, "B": 1}, g.Pie().PerSite)
	assert.Len(t, g.Scatter().Points, 1)
}

func TestPieNotRecomputedOnRangeChange(t *testing.T) {
	obs := &recordingObserver{}
	g := newScenarioGraph(t, WithObserver(obs))
	obs.published = nil

	_, err := g.OnSignalChange(SignalPayloadRange, []float64{1000, 4000})
	require.NoError(t, err)
	assert.Equal(t, []Output{OutputScatter}, obs.published)
}

func TestRejectedSignalLeavesStateUnchanged(t *testing.T) {
	obs := &recordingObserver{}
	g := newScenarioGraph(t, WithObserver(obs))
	_, err := g.SetSite("A")
	require.NoError(t, err)
	before := g.Snapshot()

	cases := []struct {
		name   string
		signal Signal
		value  any
	}{
		{"unknown site", SignalSite, "Nowhere"},
		{"empty site", SignalSite, ""},
		{"site wrong type", SignalSite, 42},
		{"negative low", SignalPayloadRange, PayloadRange{Low: -1, High: 5000}},
		{"above ceiling", SignalPayloadRange, PayloadRange{Low: 0, High: 20000}},
		{"NaN bound", SignalPayloadRange, PayloadRange{Low: math.NaN(), High: 5000}},
		{"infinite bound", SignalPayloadRange, [2]float64{0, math.Inf(1)}},
		{"short slice", SignalPayloadRange, []float64{1000}},
		{"range wrong type", SignalPayloadRange, "0-5000"},
		{"unknown signal", Signal("color"), "red"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			outputs, err := g.OnSignalChange(tc.signal, tc.value)
			require.Error(t, err)
			assert.Nil(t, outputs)
			assert.True(t, errors.Is(err, ErrInvalidSignal))

			var sigErr *SignalError
			require.True(t, errors.As(err, &sigErr))
			assert.Equal(t, tc.signal, sigErr.Signal)

			after := g.Snapshot()
			assert.Equal(t, before.Version, after.Version)
			assert.Equal(t, before.Site, after.Site)
			assert.Equal(t, before.Range, after.Range)
			assert.Equal(t, before.Pie, after.Pie)
			assert.Equal(t, before.Scatter.Points, after.Scatter.Points)
		})
	}
	assert.Len(t, obs.rejected, len(cases))
}

func TestSameValueStillRecomputes(t *testing.T) {
	g := newScenarioGraph(t)

	_, err := g.SetSite(AllSites)
	require.NoError(t, err)
	_, err = g.SetSite(AllSites)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), g.Snapshot().Version)
}

func TestInvertedRangeAcceptedAndEmpty(t *testing.T) {
	g := newScenarioGraph(t)

	_, err := g.SetPayloadRange(PayloadRange{Low: 8000, High: 1000})
	require.NoError(t, err)
	assert.Empty(t, g.Scatter().Points)
	assert.NotNil(t, g.Scatter().Points)
}

func TestSiteWithNoLaunchesInRange(t *testing.T) {
	g := newScenarioGraph(t)

	_, err := g.SetSite("B")
	require.NoError(t, err)
	_, err = g.SetPayloadRange(PayloadRange{Low: 5000, High: 10000})
	require.NoError(t, err)

	assert.Empty(t, g.Scatter().Points)
	assert.Equal(t, OutcomeBuckets{Failure: 0, Success: 1}, *g.Pie().Buckets)
}

func TestDomainUsesCeilingOrDatasetMax(t *testing.T) {
	g := NewGraph(newTestTable(scenarioRecords), WithLogger(zap.NewNop()))
	assert.Equal(t, PayloadRange{Low: 0, High: 9000}, g.Domain())

	g = newScenarioGraph(t)
	assert.Equal(t, PayloadRange{Low: 0, High: 10000}, g.Domain())
}

func TestEmptyDataset(t *testing.T) {
	g := NewGraph(newTestTable(nil), WithLogger(zap.NewNop()))

	s := g.Snapshot()
	assert.Equal(t, PayloadRange{Low: 0, High: 0}, s.Range)
	assert.Empty(t, s.Pie.PerSite)
	assert.Empty(t, s.Scatter.Points)
}

func TestStateArtifact(t *testing.T) {
	s := newScenarioGraph(t).Snapshot()

	a, ok := s.Artifact(OutputPie)
	require.True(t, ok)
	assert.Equal(t, "pie", a.ChartType())

	a, ok = s.Artifact(OutputScatter)
	require.True(t, ok)
	assert.Equal(t, "scatter", a.ChartType())

	_, ok = s.Artifact(Output("nope"))
	assert.False(t, ok)
}

func TestConcurrentUpdatesPublishConsistentSnapshots(t *testing.T) {
	g := newScenarioGraph(t)
	sites := []SiteSelector{AllSites, "A", "B"}
	ranges := []PayloadRange{{Low: 0, High: 10000}, {Low: 0, High: 5000}, {Low: 2500, High: 9500}}

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				_, _ = g.SetSite(sites[(i+w)%len(sites)])
				_, _ = g.SetPayloadRange(ranges[(i*w)%len(ranges)])
			}
		}(w)
	}

	stop := make(chan struct{})
	var inconsistent int
	var readers sync.WaitGroup
	readers.Add(1)
	go func() {
		defer readers.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			s := g.Snapshot()
			if s.Scatter.Site != s.Site || s.Scatter.Range != s.Range || s.Pie.Title != PieTitle(s.Site) {
				inconsistent++
			}
		}
	}()

	wg.Wait()
	close(stop)
	readers.Wait()

	assert.Zero(t, inconsistent)
	assert.Equal(t, uint64(400), g.Snapshot().Version)
}

func TestApplyReturnsPublishedState(t *testing.T) {
	g := newScenarioGraph(t)

	res, err := g.Apply(SignalSite, "B")
	require.NoError(t, err)
	assert.Equal(t, []Output{OutputPie, OutputScatter}, res.Recomputed)
	assert.Equal(t, g.Snapshot(), res.State)

	_, err = g.Apply(SignalSite, "nowhere")
	require.ErrorIs(t, err, ErrInvalidSignal)

	sites := []SiteSelector{AllSites, "A", "B"}
	results := make([]Result, 60)
	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r, err := g.Apply(SignalSite, sites[i%len(sites)])
			if err == nil {
				results[i] = r
			}
		}(i)
	}
	wg.Wait()

	seen := make(map[uint64]bool)
	for i, r := range results {
		assert.Equal(t, sites[i%len(sites)], r.State.Site)
		assert.Equal(t, PieTitle(r.State.Site), r.State.Pie.Title)
		assert.False(t, seen[r.State.Version], "version %d published twice", r.State.Version)
		seen[r.State.Version] = true
	}
	assert.Len(t, seen, len(results))
}
