package middleware

import (
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Telemetry starts a server span per request and records the standard otelhttp metrics.
func Telemetry(next http.Handler) http.Handler {
	return otelhttp.NewMiddleware("emailsummary-api")(next)
}
