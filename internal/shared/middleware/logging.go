package middleware

import (
	"log"
	"net/http"
	"time"
)

// statusRecorder remembers the status and body size a handler produced.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func wrapResponseWriter(w http.ResponseWriter) *statusRecorder {
	return &statusRecorder{ResponseWriter: w}
}

func (rw *statusRecorder) WriteHeader(code int) {
	if rw.status != 0 {
		return
	}
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *statusRecorder) Write(b []byte) (int, error) {
	if rw.status == 0 {
		rw.status = http.StatusOK
	}
	n, err := rw.ResponseWriter.Write(b)
	rw.bytes += n
	return n, err
}

// Status is the response status, 200 when the handler wrote nothing explicit.
func (rw *statusRecorder) Status() int {
	if rw.status == 0 {
		return http.StatusOK
	}
	return rw.status
}

// Logging writes one access log line per request. Query strings are left out
// since link and subscription calls carry identifiers there.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rec := wrapResponseWriter(w)
		next.ServeHTTP(rec, r)

		log.Printf("%s %s %d %dB %s ip=%s",
			r.Method,
			r.URL.Path,
			rec.Status(),
			rec.bytes,
			time.Since(start).Round(time.Microsecond),
			ClientIP(r),
		)
	})
}
