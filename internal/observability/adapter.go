package observability

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ZerologAdapter satisfies orchestrate.Logger (Debug/Info/Error with a
// message and a field map) by forwarding to the global zerolog logger
// InitLogger configures. It lives here rather than in internal/orchestrate
// so orchestrate stays free of any concrete logging dependency.
type ZerologAdapter struct{}

func (ZerologAdapter) Debug(msg string, fields map[string]any) { logWith(log.Debug(), msg, fields) }
func (ZerologAdapter) Info(msg string, fields map[string]any)  { logWith(log.Info(), msg, fields) }
func (ZerologAdapter) Error(msg string, fields map[string]any) { logWith(log.Error(), msg, fields) }

func logWith(e *zerolog.Event, msg string, fields map[string]any) {
	for k, v := range fields {
		e = e.Interface(k, v)
	}
	e.Msg(msg)
}

// OTelMetrics satisfies orchestrate.Metrics, recording per-stage latency
// into a cached OTel histogram per metric name, mirroring the teacher's
// internal/rag/obs.OtelMetrics.
type OTelMetrics struct {
	meter metric.Meter
	mu    sync.RWMutex
	hists map[string]metric.Float64Histogram
}

// NewOTelMetrics constructs an OTelMetrics using the global meter provider.
func NewOTelMetrics() *OTelMetrics {
	return &OTelMetrics{
		meter: otel.Meter("manifold/internal/orchestrate"),
		hists: make(map[string]metric.Float64Histogram),
	}
}

func (o *OTelMetrics) ObserveHistogram(name string, value float64, labels map[string]string) {
	h, ok := o.getHistogram(name)
	if !ok {
		return
	}
	h.Record(context.Background(), value, metric.WithAttributes(toAttrs(labels)...))
}

func (o *OTelMetrics) getHistogram(name string) (metric.Float64Histogram, bool) {
	o.mu.RLock()
	h, ok := o.hists[name]
	o.mu.RUnlock()
	if ok {
		return h, true
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if h, ok = o.hists[name]; ok {
		return h, true
	}
	hist, err := o.meter.Float64Histogram(name)
	if err != nil {
		return hist, false
	}
	o.hists[name] = hist
	return hist, true
}

func toAttrs(labels map[string]string) []attribute.KeyValue {
	if len(labels) == 0 {
		return nil
	}
	out := make([]attribute.KeyValue, 0, len(labels))
	for k, v := range labels {
		out = append(out, attribute.String(k, v))
	}
	return out
}
