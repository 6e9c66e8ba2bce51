package middleware

import (
	"net"
	"net/http"
	"strings"
)

// HSTS pins browsers to HTTPS for a year, subdomains included.
func HSTS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		next.ServeHTTP(w, r)
	})
}

// SecureCookies marks every Set-Cookie header Secure, and HttpOnly plus
// SameSite=Strict when the handler left them unset.
func SecureCookies(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(&secureCookieWriter{ResponseWriter: w}, r)
	})
}

type secureCookieWriter struct {
	http.ResponseWriter
	rewritten bool
}

func (w *secureCookieWriter) rewriteCookies() {
	if w.rewritten {
		return
	}
	w.rewritten = true

	h := w.ResponseWriter.Header()
	for i, c := range h.Values("Set-Cookie") {
		h["Set-Cookie"][i] = ensureSecureCookie(c)
	}
}

func (w *secureCookieWriter) WriteHeader(statusCode int) {
	w.rewriteCookies()
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *secureCookieWriter) Write(b []byte) (int, error) {
	w.rewriteCookies()
	return w.ResponseWriter.Write(b)
}

func (w *secureCookieWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

func ensureSecureCookie(raw string) string {
	c, err := http.ParseSetCookie(raw)
	if err != nil {
		return raw + "; Secure"
	}

	c.Secure = true
	c.HttpOnly = true
	if c.SameSite == 0 || c.SameSite == http.SameSiteDefaultMode {
		c.SameSite = http.SameSiteStrictMode
	}
	return c.String()
}

// IsHostAllowed reports whether host is one of allowedHosts, ignoring ports.
// An empty list allows every host.
func IsHostAllowed(host string, allowedHosts []string) bool {
	if len(allowedHosts) == 0 {
		return true
	}

	host = strings.ToLower(strings.TrimSpace(host))
	bare := stripPort(host)

	for _, allowedHost := range allowedHosts {
		allowedHost = strings.ToLower(strings.TrimSpace(allowedHost))
		if host == allowedHost || bare == stripPort(allowedHost) {
			return true
		}
	}

	return false
}

// stripPort drops an optional port and IPv6 brackets, keeping any zone.
func stripPort(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return strings.TrimSuffix(strings.TrimPrefix(host, "["), "]")
}
