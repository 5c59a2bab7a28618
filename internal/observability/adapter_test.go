package observability

import "testing"

func TestZerologAdapterDoesNotPanic(t *testing.T) {
	a := ZerologAdapter{}
	a.Debug("debug msg", map[string]any{"stage": "interpret"})
	a.Info("info msg", nil)
	a.Error("error msg", map[string]any{"error": "boom"})
}

func TestOTelMetricsObserveHistogramCachesInstrument(t *testing.T) {
	m := NewOTelMetrics()
	m.ObserveHistogram("retrieval_stage_ms", 12.5, map[string]string{"stage": "fan_out"})
	// Recording the same metric name twice should reuse the cached
	// instrument rather than erroring or creating a duplicate.
	m.ObserveHistogram("retrieval_stage_ms", 30.0, map[string]string{"stage": "rerank"})
	if _, ok := m.getHistogram("retrieval_stage_ms"); !ok {
		t.Fatalf("expected histogram to be cached")
	}
}
