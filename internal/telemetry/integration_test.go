package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/benvon/devotional/internal/services/ai"
	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// TestTraceContextPropagation verifies that gateway spans join the request trace
func TestTraceContextPropagation(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	// Offline gateway: every call falls back without network access
	gateway := ai.NewGateway(nil)

	r := mux.NewRouter()
	r.Use(otelmux.Middleware("devotional-test"))
	r.HandleFunc("/api/v1/verses/explain", func(w http.ResponseWriter, r *http.Request) {
		_ = gateway.ExplainVerse(r.Context(), "Salmo 23:1")
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name        string
		traceParent string
	}{
		{name: "without existing trace ID"},
		{name: "with existing trace ID", traceParent: "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exporter.Reset()

			req := httptest.NewRequest(http.MethodPost, "/api/v1/verses/explain", nil)
			if tt.traceParent != "" {
				req.Header.Set("traceparent", tt.traceParent)
			}
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)

			if rr.Code != http.StatusOK {
				t.Errorf("Expected status OK, got %d", rr.Code)
			}
			if err := tp.ForceFlush(context.Background()); err != nil {
				t.Errorf("Failed to flush tracer provider: %v", err)
			}

			spans := exporter.GetSpans()
			var gatewaySpan, httpSpan *tracetest.SpanStub
			for i := range spans {
				switch spans[i].Name {
				case "gateway." + ai.OpExplainVerse:
					gatewaySpan = &spans[i]
				default:
					httpSpan = &spans[i]
				}
			}
			if gatewaySpan == nil || httpSpan == nil {
				t.Fatalf("Expected gateway and request spans, got %d spans", len(spans))
			}
			if gatewaySpan.SpanContext.TraceID() != httpSpan.SpanContext.TraceID() {
				t.Error("Expected gateway span to share the request trace")
			}
			if tt.traceParent != "" && httpSpan.SpanContext.TraceID().String() != "4bf92f3577b34da6a3ce929d0e0e4736" {
				t.Errorf("Expected incoming trace ID to be kept, got %s", httpSpan.SpanContext.TraceID())
			}

			fallback := false
			for _, kv := range gatewaySpan.Attributes {
				if kv.Key == attribute.Key("devotional.fallback") {
					fallback = kv.Value.AsBool()
				}
			}
			if !fallback {
				t.Error("Expected offline gateway span to be marked as fallback")
			}
		})
	}
}
