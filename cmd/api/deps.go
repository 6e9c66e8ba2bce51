package main

import (
	"log"

	"emailsummary/internal/domain/account"
	"emailsummary/internal/domain/digest"
	"emailsummary/internal/domain/subscription"
	"emailsummary/internal/domain/user"
	"emailsummary/internal/infrastructure/mail"
	"emailsummary/internal/infrastructure/plaid"
	"emailsummary/internal/infrastructure/postgres"
	httphandlers "emailsummary/internal/interfaces/http"
	"emailsummary/internal/shared/config"
	"emailsummary/internal/shared/pacer"
)

// Dependencies holds all initialized application components.
type Dependencies struct {
	DB *postgres.DB

	// Handlers
	HealthHandler       *httphandlers.HealthHandler
	AuthHandler         *httphandlers.AuthHandler
	AccountHandler      *httphandlers.AccountHandler
	SubscriptionHandler *httphandlers.SubscriptionHandler
	DigestHandler       *httphandlers.DigestHandler

	// Services (for middleware and scheduler)
	UserService *user.Service
	Dispatcher  *digest.Dispatcher
}

// NewDependencies initializes all application dependencies.
func NewDependencies(cfg *config.Config) (*Dependencies, error) {
	db, err := postgres.New(cfg.Database.ConnectionString(), postgres.PoolConfig{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		return nil, err
	}
	log.Println("Connected to database")

	deps, err := newDependencies(db, cfg)
	if err != nil {
		db.Close()
		return nil, err
	}
	return deps, nil
}

func newDependencies(db *postgres.DB, cfg *config.Config) (*Dependencies, error) {
	// Repositories
	userRepo := postgres.NewUserRepository(db)
	sessionRepo := postgres.NewSessionRepository(db)
	accountRepo := postgres.NewAccountRepository(db)
	subscriptionRepo := postgres.NewSubscriptionRepository(db)
	digestRepo := postgres.NewDigestRepository(db)

	// Upstream aggregation provider
	plaidClient, err := plaid.NewClient(plaid.Config{
		ClientID:     cfg.Plaid.ClientID,
		Secret:       cfg.Plaid.Secret,
		Env:          cfg.Plaid.Env,
		Products:     cfg.Plaid.Products,
		CountryCodes: cfg.Plaid.CountryCodes,
		RedirectURI:  cfg.Plaid.RedirectURI,
		ClientName:   cfg.Plaid.ClientName,
	})
	if err != nil {
		return nil, err
	}

	// Domain services
	userService := user.NewService(userRepo, sessionRepo, cfg.Auth.InviteCode, cfg.Session.TTL)
	aggregator := account.NewAggregator(accountRepo, plaidClient)
	subscriptionService := subscription.NewService(subscriptionRepo)

	renderer := digest.NewRenderer(plaidClient, pacer.NewInterval(cfg.Digest.UpstreamInterval), digestRepo)
	dispatcher := digest.NewDispatcher(digestRepo, userService, renderer, newMailer(cfg.Mail), digest.Config{
		JobSecret:          cfg.Digest.JobSecret,
		HonorSubscriptions: cfg.Digest.HonorSubscriptions,
	})

	return &Dependencies{
		DB:                  db,
		HealthHandler:       httphandlers.NewHealthHandler(db),
		AuthHandler:         httphandlers.NewAuthHandler(userService, cfg.Session.CookieName),
		AccountHandler:      httphandlers.NewAccountHandler(aggregator),
		SubscriptionHandler: httphandlers.NewSubscriptionHandler(subscriptionService),
		DigestHandler:       httphandlers.NewDigestHandler(dispatcher, cfg.Session.CookieName),
		UserService:         userService,
		Dispatcher:          dispatcher,
	}, nil
}

// newMailer picks SendGrid when an API key is configured, otherwise a mailer
// that only logs.
func newMailer(cfg config.MailConfig) digest.Mailer {
	if cfg.SendGridAPIKey == "" {
		log.Println("Warning: SENDGRID_API_KEY not set, digests will be logged instead of sent")
		return mail.LogMailer{}
	}
	return mail.NewSendGridMailer(cfg.SendGridAPIKey, cfg.FromAddress, cfg.FromName)
}

// Close releases all resources held by dependencies.
func (d *Dependencies) Close() {
	if d.DB != nil {
		d.DB.Close()
	}
}
