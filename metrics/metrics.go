package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spektr-org/launchboard/engine"
)

// -----------------------------------------------------------------------------
// Recorder
// -----------------------------------------------------------------------------

// Recorder exports graph and session activity. It implements engine.Observer,
// so one Recorder is shared by every session graph.
type Recorder struct {
	reg prometheus.Gatherer

	recomputes  *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	rejections  *prometheus.CounterVec
	rateLimited prometheus.Counter
	sessions    prometheus.Gauge
	records     prometheus.Gauge
}

var _ engine.Observer = (*Recorder)(nil)

// New registers the launchboard metrics on reg.
func New(reg *prometheus.Registry) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		reg: reg,
		recomputes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "launchboard_recomputes_total",
			Help: "Total number of artifacts recomputed, by output",
		}, []string{"output"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "launchboard_recompute_duration_seconds",
			Help:    "Duration of a single artifact recompute",
			Buckets: []float64{0.00001, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
		}, []string{"output"}),
		rejections: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "launchboard_signal_rejections_total",
			Help: "Signal updates rejected as outside their domain, by signal",
		}, []string{"signal"}),
		rateLimited: factory.NewCounter(prometheus.CounterOpts{
			Name: "launchboard_signal_rate_limited_total",
			Help: "Signal updates dropped by the per-session rate limiter",
		}),
		sessions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "launchboard_sessions_active",
			Help: "Current number of open sessions",
		}),
		records: factory.NewGauge(prometheus.GaugeOpts{
			Name: "launchboard_dataset_records",
			Help: "Number of launch records loaded",
		}),
	}
}

// Published counts one recompute of output.
func (r *Recorder) Published(output engine.Output, took time.Duration) {
	r.recomputes.WithLabelValues(string(output)).Inc()
	r.duration.WithLabelValues(string(output)).Observe(took.Seconds())
}

// Rejected counts a rejected signal update. Errors other than invalid
// signal values are not counted.
func (r *Recorder) Rejected(signal engine.Signal, err error) {
	if !errors.Is(err, engine.ErrInvalidSignal) {
		return
	}
	r.rejections.WithLabelValues(string(signal)).Inc()
}

func (r *Recorder) RateLimited() { r.rateLimited.Inc() }

func (r *Recorder) SessionOpened() { r.sessions.Inc() }

func (r *Recorder) SessionClosed() { r.sessions.Dec() }

// DatasetLoaded records the size of the loaded table.
func (r *Recorder) DatasetLoaded(records int) { r.records.Set(float64(records)) }

// Handler serves the registry in the prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}
