package middleware

import (
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var (
	routeMeter              = otel.Meter("emailsummary/http")
	routeRequestDuration, _ = routeMeter.Float64Histogram("http.route.request.duration",
		metric.WithDescription("Request duration per registered route in seconds"),
		metric.WithUnit("s"),
	)
	routeRequestTotal, _ = routeMeter.Int64Counter("http.route.request.total",
		metric.WithDescription("Total requests per registered route"),
	)
)

// RouteMetrics records duration and count keyed by the ServeMux pattern.
// Wrap individual handlers with it so r.Pattern is populated.
func RouteMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := wrapResponseWriter(w)
		next.ServeHTTP(wrapped, r)

		status := wrapped.Status()

		route := r.Pattern
		if route == "" {
			route = r.URL.Path
		}

		span := trace.SpanFromContext(r.Context())
		span.SetAttributes(attribute.String("http.route", route))
		if status >= 500 {
			span.SetStatus(codes.Error, http.StatusText(status))
		}

		attrs := metric.WithAttributes(
			attribute.String("http.method", r.Method),
			attribute.String("http.route", route),
			attribute.Int("http.status_code", status),
		)
		routeRequestDuration.Record(r.Context(), time.Since(start).Seconds(), attrs)
		routeRequestTotal.Add(r.Context(), 1, attrs)
	})
}
