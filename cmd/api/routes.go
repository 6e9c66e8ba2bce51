package main

import (
	"log"
	"net/http"

	"emailsummary/internal/shared/config"
	"emailsummary/internal/shared/middleware"
)

// SetupRoutes configures all HTTP routes and returns the final handler with middleware.
func SetupRoutes(deps *Dependencies, cfg *config.Config) http.Handler {
	mux := http.NewServeMux()

	route := func(pattern string, h http.Handler) {
		mux.Handle(pattern, middleware.RouteMetrics(h))
	}

	route("/health", http.HandlerFunc(deps.HealthHandler.HandleHealth))

	// Public auth routes, rate limited per client IP
	rateLimit := middleware.RateLimit(middleware.NewIPRateLimiter(cfg.Auth.LoginRateLimit))

	route("/api/auth/register", rateLimit(http.HandlerFunc(deps.AuthHandler.HandleRegister)))
	route("/api/auth/login", rateLimit(http.HandlerFunc(deps.AuthHandler.HandleLogin)))
	route("/api/auth/logout", http.HandlerFunc(deps.AuthHandler.HandleLogout))

	// The digest endpoint authenticates itself: bearer secret or session cookie.
	route("/api/sendmail", http.HandlerFunc(deps.DigestHandler.HandleSendMail))

	// Protected routes
	authMiddleware := middleware.Auth(deps.UserService, cfg.Session.CookieName)

	route("/api/accounts", authMiddleware(http.HandlerFunc(deps.AccountHandler.HandleListAccounts)))
	route("/api/access_token", authMiddleware(http.HandlerFunc(deps.AccountHandler.HandleAccessToken)))
	route("/api/create_link_token", authMiddleware(http.HandlerFunc(deps.AccountHandler.HandleCreateLinkToken)))
	route("/api/subscriptions", authMiddleware(http.HandlerFunc(deps.SubscriptionHandler.HandleSubscriptions)))

	// Apply global middleware
	handler := middleware.Logging(mux)

	if cfg.Telemetry.Enabled {
		handler = middleware.Telemetry(handler)
	}

	// Apply security middleware when TLS is enabled
	if cfg.TLS.Enabled {
		handler = middleware.HSTS(middleware.SecureCookies(handler))
		log.Println("TLS security middleware enabled (HSTS + SecureCookies)")
	}

	return handler
}
