package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spektr-org/launchboard/engine"
)

type table struct {
	engine.RecordView
}

func (table) MinPayload() float64      { return 2000 }
func (table) MaxPayload() float64      { return 9000 }
func (table) Sites() []string          { return []string{"A", "B"} }
func (table) HasSite(site string) bool { return site == "A" || site == "B" }

func newTable() table {
	return table{engine.NewSliceView([]engine.Record{
		{Site: "A", PayloadMass: 2000, Outcome: engine.Success, BoosterVersion: "v1"},
		{Site: "A", PayloadMass: 9000, Outcome: engine.Failure, BoosterVersion: "v2"},
		{Site: "B", PayloadMass: 3000, Outcome: engine.Success, BoosterVersion: "v1"},
	})}
}

func TestRecorderObservesGraph(t *testing.T) {
	rec := New(prometheus.NewRegistry())
	g := engine.NewGraph(newTable(), engine.WithObserver(rec), engine.WithLogger(zap.NewNop()))

	// Construction publishes both outputs.
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.recomputes.WithLabelValues(string(engine.OutputPie))))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.recomputes.WithLabelValues(string(engine.OutputScatter))))

	_, err := g.SetPayloadRange(engine.PayloadRange{Low: 0, High: 5000})
	require.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.recomputes.WithLabelValues(string(engine.OutputPie))))
	assert.Equal(t, 2.0, testutil.ToFloat64(rec.recomputes.WithLabelValues(string(engine.OutputScatter))))

	_, err = g.SetSite("C")
	require.Error(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.rejections.WithLabelValues(string(engine.SignalSite))))
	assert.Equal(t, 0.0, testutil.ToFloat64(rec.rejections.WithLabelValues(string(engine.SignalPayloadRange))))

	assert.Equal(t, 2, testutil.CollectAndCount(rec.duration))
}

func TestRecorderGauges(t *testing.T) {
	rec := New(prometheus.NewRegistry())

	rec.SessionOpened()
	rec.SessionOpened()
	rec.SessionClosed()
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.sessions))

	rec.DatasetLoaded(56)
	assert.Equal(t, 56.0, testutil.ToFloat64(rec.records))

	rec.RateLimited()
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.rateLimited))

	rec.Published(engine.OutputPie, time.Millisecond)
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.recomputes.WithLabelValues(string(engine.OutputPie))))
}

func TestHandler(t *testing.T) {
	rec := New(prometheus.NewRegistry())
	rec.SessionOpened()

	w := httptest.NewRecorder()
	rec.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.True(t, strings.Contains(body, "launchboard_sessions_active 1"), body)
}
