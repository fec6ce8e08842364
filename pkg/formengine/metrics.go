package formengine

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Conversion outcomes recorded in metrics.
const (
	conversionOK          = "ok"
	conversionDisabled    = "disabled"
	conversionUnavailable = "unavailable"
	conversionTimeout     = "timeout"
	conversionFailed      = "failed"
)

// unknownTemplate labels renders of names that resolve to no template file,
// keeping caller input out of label values.
const unknownTemplate = "unknown"

// Metrics holds the Prometheus collectors of a render pipeline.
type Metrics struct {
	Renders        *prometheus.CounterVec
	RenderDuration *prometheus.HistogramVec
	Conversions    *prometheus.CounterVec
	AuditRecords   prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Renders: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "formengine_renders_total",
			Help: "Total number of render calls by template and status",
		}, []string{"template", "status"}),
		RenderDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "formengine_render_duration_seconds",
			Help:    "Duration of successful render calls",
			Buckets: prometheus.DefBuckets,
		}, []string{"template"}),
		Conversions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "formengine_conversions_total",
			Help: "Total number of conversion attempts by result",
		}, []string{"result"}),
		AuditRecords: factory.NewCounter(prometheus.CounterOpts{
			Name: "formengine_audit_records_total",
			Help: "Total number of audit records appended",
		}),
	}
}

func (m *Metrics) observeRender(template, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Renders.WithLabelValues(template, status).Inc()
	if status == "ok" {
		m.RenderDuration.WithLabelValues(template).Observe(elapsed.Seconds())
	}
}

func (m *Metrics) observeConversion(result string) {
	if m == nil {
		return
	}
	m.Conversions.WithLabelValues(result).Inc()
}

func (m *Metrics) observeAudit() {
	if m == nil {
		return
	}
	m.AuditRecords.Inc()
}
