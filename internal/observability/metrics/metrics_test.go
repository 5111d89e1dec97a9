package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func gather(t *testing.T, reg *prometheus.Registry) map[string]*dto.MetricFamily {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	byName := make(map[string]*dto.MetricFamily, len(families))
	for _, fam := range families {
		byName[fam.GetName()] = fam
	}
	return byName
}

func TestObserveTurn(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewIntakeMetrics(reg)

	m.ObserveTurn("answer", "ok")
	m.ObserveTurn("answer", "ok")
	m.ObserveTurn("modify", "ok")

	fam, ok := gather(t, reg)["kolmo_intake_turns_total"]
	if !ok {
		t.Fatal("kolmo_intake_turns_total not registered")
	}
	var total float64
	for _, metric := range fam.GetMetric() {
		total += metric.GetCounter().GetValue()
	}
	if total != 3 {
		t.Fatalf("expected 3 turns observed, got %v", total)
	}
}

func TestObserveExtractionLabels(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewIntakeMetrics(reg)

	m.ObserveExtraction("llm", "failure")
	m.ObserveExtraction("heuristic", "ok")

	fam, ok := gather(t, reg)["kolmo_intake_extraction_total"]
	if !ok {
		t.Fatal("kolmo_intake_extraction_total not registered")
	}
	if len(fam.GetMetric()) != 2 {
		t.Fatalf("expected 2 label combinations, got %d", len(fam.GetMetric()))
	}
}

func TestNilReceiverIsSafe(t *testing.T) {
	var m *IntakeMetrics
	m.ObserveTurn("answer", "ok")
	m.ObserveExtraction("llm", "ok")
	m.ObserveSession("started")
	m.ObserveCompletionLatency("classify", 0.1)
}

func TestCompletionLatencyHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewIntakeMetrics(reg)

	m.ObserveCompletionLatency("extract", 0.25)

	fam, ok := gather(t, reg)["kolmo_intake_completion_latency_seconds"]
	if !ok {
		t.Fatal("kolmo_intake_completion_latency_seconds not registered")
	}
	if fam.GetMetric()[0].GetHistogram().GetSampleCount() != 1 {
		t.Fatal("expected one histogram sample")
	}
}
