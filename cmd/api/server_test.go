package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRedirectServer(t *testing.T) {
	srv := createRedirectServer([]string{"summary.example.com"})

	tests := []struct {
		name         string
		host         string
		target       string
		wantStatus   int
		wantLocation string
	}{
		{"Allowed host", "summary.example.com", "/api/accounts?x=1", http.StatusMovedPermanently, "https://summary.example.com/api/accounts?x=1"},
		{"Allowed host with port", "summary.example.com:80", "/health", http.StatusMovedPermanently, "https://summary.example.com/health"},
		{"Unknown host", "evil.example.com", "/", http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			req.Host = tt.host
			w := httptest.NewRecorder()
			srv.Handler.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			if got := w.Header().Get("Location"); got != tt.wantLocation {
				t.Errorf("Location = %q, want %q", got, tt.wantLocation)
			}
		})
	}
}

func TestHostWithoutPort(t *testing.T) {
	tests := map[string]string{
		"summary.example.com":      "summary.example.com",
		"summary.example.com:8080": "summary.example.com",
		"[::1]:80":                 "[::1]",
		"127.0.0.1:80":             "127.0.0.1",
	}
	for in, want := range tests {
		if got := hostWithoutPort(in); got != want {
			t.Errorf("hostWithoutPort(%q) = %q, want %q", in, got, want)
		}
	}
}
