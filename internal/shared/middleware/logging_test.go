package middleware

import (
	"bytes"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
)

func TestStatusRecorder(t *testing.T) {
	tests := []struct {
		name       string
		handler    func(w http.ResponseWriter)
		wantStatus int
		wantBytes  int
	}{
		{"Nothing written", func(w http.ResponseWriter) {}, http.StatusOK, 0},
		{"Explicit status", func(w http.ResponseWriter) { w.WriteHeader(http.StatusNotFound) }, http.StatusNotFound, 0},
		{"Second WriteHeader ignored", func(w http.ResponseWriter) {
			w.WriteHeader(http.StatusUnauthorized)
			w.WriteHeader(http.StatusOK)
		}, http.StatusUnauthorized, 0},
		{"Implicit status on write", func(w http.ResponseWriter) { w.Write([]byte("OK")) }, http.StatusOK, 2},
		{"Write after status", func(w http.ResponseWriter) {
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte("Created"))
		}, http.StatusCreated, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := wrapResponseWriter(httptest.NewRecorder())
			tt.handler(rec)

			if rec.Status() != tt.wantStatus {
				t.Errorf("Status() = %d, want %d", rec.Status(), tt.wantStatus)
			}
			if rec.bytes != tt.wantBytes {
				t.Errorf("bytes = %d, want %d", rec.bytes, tt.wantBytes)
			}
		})
	}
}

func TestLogging_WritesAccessLine(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	handler := Logging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/sendmail?secret=x", nil)
	req.Header.Set("X-Real-IP", "203.0.113.7")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusUnauthorized)
	}

	line := buf.String()
	for _, want := range []string{"POST /api/sendmail 401", "ip=203.0.113.7"} {
		if !strings.Contains(line, want) {
			t.Errorf("log line %q missing %q", line, want)
		}
	}
	if strings.Contains(line, "secret=x") {
		t.Errorf("log line %q leaks the query string", line)
	}
}

func TestRouteMetrics_PassesThroughStatus(t *testing.T) {
	mux := http.NewServeMux()
	mux.Handle("POST /api/access_token", RouteMetrics(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Pattern != "POST /api/access_token" {
			t.Errorf("Pattern = %q, want %q", r.Pattern, "POST /api/access_token")
		}
		w.WriteHeader(http.StatusCreated)
	})))

	req := httptest.NewRequest(http.MethodPost, "/api/access_token", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusCreated)
	}
}
