package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"time"

	"emailsummary/internal/interfaces/scheduler"
	"emailsummary/internal/shared/config"
	"emailsummary/internal/shared/middleware"
)

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Handler      http.Handler
	Addr         string
	TLSEnabled   bool
	CertPath     string
	KeyPath      string
	RedirectHTTP bool
	AllowedHosts []string
}

// NewServerConfigFromConfig creates ServerConfig from application config.
func NewServerConfigFromConfig(handler http.Handler, cfg *config.Config) ServerConfig {
	return ServerConfig{
		Handler:      handler,
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		TLSEnabled:   cfg.TLS.Enabled,
		CertPath:     cfg.TLS.CertPath,
		KeyPath:      cfg.TLS.KeyPath,
		RedirectHTTP: cfg.TLS.RedirectHTTP,
		AllowedHosts: cfg.Server.AllowedHosts,
	}
}

// newHTTPServer applies the timeouts shared by every listener. WriteTimeout
// is generous because POST /api/sendmail walks all recipients inline.
func newHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      10 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}
}

// StartServers starts the API server and, with TLS and redirect enabled, a
// plain HTTP server on :80 that redirects to HTTPS. The redirect server is nil
// otherwise.
func StartServers(scfg ServerConfig) (srv, redirectSrv *http.Server) {
	srv = newHTTPServer(scfg.Addr, scfg.Handler)

	if scfg.TLSEnabled && scfg.RedirectHTTP {
		redirectSrv = createRedirectServer(scfg.AllowedHosts)
		go func() {
			log.Println("HTTP redirect server starting on :80")
			if err := redirectSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("HTTP redirect server error: %v", err)
			}
		}()
	}

	go func() {
		var err error
		if scfg.TLSEnabled {
			log.Printf("HTTPS server starting on %s", scfg.Addr)
			err = srv.ListenAndServeTLS(scfg.CertPath, scfg.KeyPath)
		} else {
			log.Printf("HTTP server starting on %s", scfg.Addr)
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	return srv, redirectSrv
}

// GracefulShutdown stops accepting requests first so no new digest run
// starts, then drains the scheduler.
func GracefulShutdown(srv, redirectSrv *http.Server, sched *scheduler.Scheduler, timeout time.Duration) {
	log.Println("Server shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	for _, s := range []*http.Server{redirectSrv, srv} {
		if s == nil {
			continue
		}
		if err := s.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down server on %s: %v", s.Addr, err)
		}
	}

	if sched != nil {
		sched.Shutdown(timeout)
	}

	log.Println("Server stopped")
}

// createRedirectServer answers every plain HTTP request with a permanent
// redirect to the same path on HTTPS, for allowed hosts only.
func createRedirectServer(allowedHosts []string) *http.Server {
	redirect := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host := r.Header.Get("X-Forwarded-Host")
		if host == "" {
			host = r.Host
		}

		if !middleware.IsHostAllowed(host, allowedHosts) {
			http.Error(w, "Invalid host", http.StatusBadRequest)
			return
		}

		http.Redirect(w, r, "https://"+hostWithoutPort(host)+r.RequestURI, http.StatusMovedPermanently)
	})

	return newHTTPServer(":80", redirect)
}

// hostWithoutPort drops the port, keeping brackets around IPv6 literals.
func hostWithoutPort(host string) string {
	h, _, err := net.SplitHostPort(host)
	if err != nil {
		return host
	}
	if net.ParseIP(h) != nil && net.ParseIP(h).To4() == nil {
		return "[" + h + "]"
	}
	return h
}
