package metrics

import "github.com/prometheus/client_golang/prometheus"

// IntakeMetrics exposes counters/histograms for the intake engine.
type IntakeMetrics struct {
	turnsTotal       *prometheus.CounterVec
	extractionTotal  *prometheus.CounterVec
	sessionsTotal    *prometheus.CounterVec
	completionTiming *prometheus.HistogramVec
}

func NewIntakeMetrics(reg prometheus.Registerer) *IntakeMetrics {
	m := &IntakeMetrics{
		turnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kolmo",
			Subsystem: "intake",
			Name:      "turns_total",
			Help:      "Processed intake turns by classified intent and outcome",
		}, []string{"intent", "outcome"}),
		extractionTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kolmo",
			Subsystem: "intake",
			Name:      "extraction_total",
			Help:      "Extraction attempts by strategy and outcome",
		}, []string{"strategy", "outcome"}),
		sessionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kolmo",
			Subsystem: "intake",
			Name:      "sessions_total",
			Help:      "Session lifecycle transitions",
		}, []string{"event"}),
		completionTiming: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "kolmo",
			Subsystem: "intake",
			Name:      "completion_latency_seconds",
			Help:      "Latency of text-completion calls by pipeline stage",
			Buckets:   prometheus.DefBuckets,
		}, []string{"stage"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.turnsTotal, m.extractionTotal, m.sessionsTotal, m.completionTiming)
	return m
}

func (m *IntakeMetrics) ObserveTurn(intent, outcome string) {
	if m == nil {
		return
	}
	m.turnsTotal.WithLabelValues(intent, outcome).Inc()
}

func (m *IntakeMetrics) ObserveExtraction(strategy, outcome string) {
	if m == nil {
		return
	}
	m.extractionTotal.WithLabelValues(strategy, outcome).Inc()
}

func (m *IntakeMetrics) ObserveSession(event string) {
	if m == nil {
		return
	}
	m.sessionsTotal.WithLabelValues(event).Inc()
}

func (m *IntakeMetrics) ObserveCompletionLatency(stage string, seconds float64) {
	if m == nil {
		return
	}
	m.completionTiming.WithLabelValues(stage).Observe(seconds)
}
