package metrics

import (
	"github.com/Arten331/observability/logger"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const label = "asterisk"

type Registerer interface {
	Register(prometheus.Collector) error
}

type Metrics struct {
	Service    Registerer
	collectors MetricCollectors
}

type MetricCollectors struct {
	requests       *prometheus.CounterVec
	requestErrors  *prometheus.CounterVec
	anonymousCalls *prometheus.CounterVec
	activeSessions *prometheus.GaugeVec
	storeMetric    *prometheus.CounterVec
}

// StoredMetric is the payload of the store-metric route.
type StoredMetric struct {
	Phase    string
	Caller   string
	Dnid     string
	Result   string
	Campaign string
}

func (m *Metrics) Register() {
	m.collectors = MetricCollectors{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agi_requests_total",
				Help: "Parsed FastAGI requests by script",
			},
			[]string{"script", "group"},
		),
		requestErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agi_request_errors_total",
				Help: "FastAGI requests whose route failed or was not found",
			},
			[]string{"script", "group"},
		),
		anonymousCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agi_anonymous_calls_total",
				Help: "FastAGI requests without caller id",
			},
			[]string{"group"},
		),
		activeSessions: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "agi_active_sessions",
				Help: "FastAGI sessions currently routed",
			},
			[]string{"group"},
		),
		storeMetric: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agi_store_metric_total",
				Help: "Values stored by the store-metric route",
			},
			[]string{"phase", "result", "campaign", "group"},
		),
	}

	_ = m.Service.Register(m.collectors.requests)
	_ = m.Service.Register(m.collectors.requestErrors)
	_ = m.Service.Register(m.collectors.anonymousCalls)
	_ = m.Service.Register(m.collectors.activeSessions)
	_ = m.Service.Register(m.collectors.storeMetric)
}

func (m *Metrics) StoreRequest(script string, anonymous bool) {
	m.collectors.requests.WithLabelValues(script, label).Inc()

	if anonymous {
		m.collectors.anonymousCalls.WithLabelValues(label).Inc()
	}
}

func (m *Metrics) StoreRequestError(script string) {
	m.collectors.requestErrors.WithLabelValues(script, label).Inc()
}

func (m *Metrics) SessionStarted() {
	m.collectors.activeSessions.WithLabelValues(label).Inc()
}

func (m *Metrics) SessionFinished() {
	m.collectors.activeSessions.WithLabelValues(label).Dec()
}

func (m *Metrics) StoreMetric(r *StoredMetric) {
	m.collectors.storeMetric.WithLabelValues(r.Phase, r.Result, r.Campaign, label).Inc()
	logger.L().Debug("stored metric", zap.Object("result", r))
}

func (w *StoredMetric) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("phase", w.Phase)
	enc.AddString("caller", w.Caller)
	enc.AddString("dnid", w.Dnid)
	enc.AddString("result", w.Result)
	enc.AddString("campaign", w.Campaign)

	return nil
}
