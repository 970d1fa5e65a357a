package tracer

import (
	"log" // For fatal error on metric init failure
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// RequestMetrics records a request counter and a latency histogram per route pattern.
// Call it after InitTracingAndMetrics so the instruments bind to the installed provider.
func RequestMetrics() func(next http.Handler) http.Handler {
	meter := otel.GetMeterProvider().Meter("go-simple-crud/http")

	requestsTotal, err := meter.Int64Counter(
		"http_server_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
	)
	if err != nil {
		log.Fatalf("Failed to create http_server_requests_total counter: %v", err)
	}

	durationSeconds, err := meter.Float64Histogram(
		"http_server_duration_seconds",
		metric.WithDescription("Duration of HTTP requests in seconds"),
		metric.WithUnit("s"), // Specify units
	)
	if err != nil {
		log.Fatalf("Failed to create http_server_duration_seconds histogram: %v", err)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			// the pattern keeps label cardinality bounded; raw paths carry post ids
			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			attrs := metric.WithAttributes(
				attribute.String("http.method", r.Method),
				attribute.String("http.route", route),
				attribute.String("http.status_code", strconv.Itoa(ww.Status())),
			)
			requestsTotal.Add(r.Context(), 1, attrs)
			durationSeconds.Record(r.Context(), time.Since(start).Seconds(), attrs)
		})
	}
}
