package telemetry

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// Engine spans started from handlers must join the request span created by otelmux,
// and requests carrying a traceparent must continue the caller's trace.
func TestStartSpanJoinsRequestTrace(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	t.Cleanup(func() { _ = tp.Shutdown(t.Context()) })
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	r := mux.NewRouter()
	r.Use(otelmux.Middleware("psycomed-test"))
	r.HandleFunc("/api/v1/analytics", func(w http.ResponseWriter, r *http.Request) {
		_, span := StartSpan(r.Context(), "analytics.analyze", attribute.Int("entries", 7))
		span.End()
		w.WriteHeader(http.StatusOK)
	})

	const callerTrace = "4bf92f3577b34da6a3ce929d0e0e4736"
	tests := []struct {
		name        string
		traceParent string
	}{
		{name: "new trace"},
		{name: "continued trace", traceParent: "00-" + callerTrace + "-00f067aa0ba902b7-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exporter.Reset()
			req := httptest.NewRequest(http.MethodGet, "/api/v1/analytics", nil)
			if tt.traceParent != "" {
				req.Header.Set("traceparent", tt.traceParent)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != http.StatusOK {
				t.Fatalf("status = %d", w.Code)
			}

			spans := exporter.GetSpans()
			if len(spans) != 2 {
				t.Fatalf("got %d spans, want engine span and request span", len(spans))
			}
			engine, request := spans[0], spans[1]
			if engine.Name != "analytics.analyze" {
				t.Fatalf("first ended span = %q, want analytics.analyze", engine.Name)
			}
			if engine.Parent.SpanID() != request.SpanContext.SpanID() {
				t.Error("engine span is not a child of the request span")
			}
			if engine.SpanContext.TraceID() != request.SpanContext.TraceID() {
				t.Error("engine span is in a different trace")
			}
			if tt.traceParent != "" && request.SpanContext.TraceID().String() != callerTrace {
				t.Errorf("trace id = %s, want caller's %s", request.SpanContext.TraceID(), callerTrace)
			}

			var entries int64
			for _, kv := range engine.Attributes {
				if kv.Key == "entries" {
					entries = kv.Value.AsInt64()
				}
			}
			if entries != 7 {
				t.Errorf("entries attribute = %d, want 7", entries)
			}
		})
	}
}
