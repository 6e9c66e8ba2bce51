package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Session   SessionConfig
	Auth      AuthConfig
	Digest    DigestConfig
	Plaid     PlaidConfig
	Mail      MailConfig
	Scheduler SchedulerConfig
	TLS       TLSConfig
	Telemetry TelemetryConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	AllowedHosts []string
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type SessionConfig struct {
	TTL        time.Duration
	CookieName string
}

type AuthConfig struct {
	InviteCode     string
	LoginRateLimit int // requests per minute per client IP
}

type DigestConfig struct {
	JobSecret          string
	UpstreamInterval   time.Duration
	HonorSubscriptions bool
}

type PlaidConfig struct {
	ClientID     string
	Secret       string
	Env          string
	Products     []string
	CountryCodes []string
	RedirectURI  string
	ClientName   string
}

type MailConfig struct {
	SendGridAPIKey string
	FromAddress    string
	FromName       string
}

type SchedulerConfig struct {
	Enabled       bool
	ScheduleTimes []string
	WorkerCount   int
	JobDelay      time.Duration
	QueueSize     int
	RunOnStartup  bool
}

type TLSConfig struct {
	Enabled      bool
	CertPath     string
	KeyPath      string
	RedirectHTTP bool
}

type TelemetryConfig struct {
	Enabled      bool
	ServiceName  string
	Environment  string
	OTLPEndpoint string
	MetricsPort  string
}

var plaidEnvs = map[string]struct{}{
	"sandbox":     {},
	"development": {},
	"production":  {},
}

var defaults = map[string]string{
	"port":                       "8080",
	"host":                       "0.0.0.0",
	"db_host":                    "localhost",
	"db_port":                    "5432",
	"db_user":                    "emailsummary",
	"db_name":                    "emailsummary",
	"db_sslmode":                 "disable",
	"db_max_open_conns":          "10",
	"db_max_idle_conns":          "2",
	"db_conn_max_lifetime":       "5m",
	"session_ttl":                "168h",
	"session_cookie_name":        "session-token",
	"login_rate_limit":           "6",
	"digest_upstream_interval":   "250ms",
	"digest_honor_subscriptions": "false",
	"plaid_env":                  "sandbox",
	"plaid_products":             "transactions",
	"plaid_country_codes":        "US",
	"plaid_client_name":          "Transactions Email Summary",
	"mail_from_address":          "summary@jhcao.net",
	"mail_from_name":             "Email Summary",
	"scheduler_enabled":          "false",
	"scheduler_times":            "06:00",
	"scheduler_workers":          "1",
	"scheduler_job_delay":        "1s",
	"scheduler_queue_size":       "10",
	"scheduler_run_on_startup":   "false",
	"tls_enabled":                "false",
	"tls_redirect_http":          "false",
	"otel_enabled":               "false",
	"otel_service_name":          "emailsummary",
	"otel_environment":           "development",
	"otel_exporter_endpoint":     "localhost:4317",
	"metrics_port":               "9464",
}

// Load reads configuration from config.yaml (if present) and the environment.
func Load() (*Config, error) {
	return LoadFrom(viper.New())
}

// LoadFrom reads configuration through v, which may already carry bound CLI flags.
func LoadFrom(v *viper.Viper) (*Config, error) {
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	dbPort, err := strconv.Atoi(v.GetString("db_port"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	maxOpenConns, err := strconv.Atoi(v.GetString("db_max_open_conns"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_OPEN_CONNS: %w", err)
	}
	maxIdleConns, err := strconv.Atoi(v.GetString("db_max_idle_conns"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_IDLE_CONNS: %w", err)
	}
	connMaxLifetime, err := time.ParseDuration(v.GetString("db_conn_max_lifetime"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_CONN_MAX_LIFETIME: %w", err)
	}

	sessionTTL, err := time.ParseDuration(v.GetString("session_ttl"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL: %w", err)
	}

	loginRateLimit, err := strconv.Atoi(v.GetString("login_rate_limit"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOGIN_RATE_LIMIT: %w", err)
	}

	upstreamInterval, err := time.ParseDuration(v.GetString("digest_upstream_interval"))
	if err != nil {
		return nil, fmt.Errorf("invalid DIGEST_UPSTREAM_INTERVAL: %w", err)
	}

	schedulerWorkers, err := strconv.Atoi(v.GetString("scheduler_workers"))
	if err != nil {
		return nil, fmt.Errorf("invalid SCHEDULER_WORKERS: %w", err)
	}
	schedulerJobDelay, err := time.ParseDuration(v.GetString("scheduler_job_delay"))
	if err != nil {
		return nil, fmt.Errorf("invalid SCHEDULER_JOB_DELAY: %w", err)
	}
	schedulerQueueSize, err := strconv.Atoi(v.GetString("scheduler_queue_size"))
	if err != nil {
		return nil, fmt.Errorf("invalid SCHEDULER_QUEUE_SIZE: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:         v.GetString("port"),
			Host:         v.GetString("host"),
			AllowedHosts: splitList(v.GetString("allowed_hosts")),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("db_host"),
			Port:            dbPort,
			User:            v.GetString("db_user"),
			Password:        v.GetString("db_password"),
			DBName:          v.GetString("db_name"),
			SSLMode:         v.GetString("db_sslmode"),
			MaxOpenConns:    maxOpenConns,
			MaxIdleConns:    maxIdleConns,
			ConnMaxLifetime: connMaxLifetime,
		},
		Session: SessionConfig{
			TTL:        sessionTTL,
			CookieName: v.GetString("session_cookie_name"),
		},
		Auth: AuthConfig{
			InviteCode:     v.GetString("invite_code"),
			LoginRateLimit: loginRateLimit,
		},
		Digest: DigestConfig{
			JobSecret:          v.GetString("digest_job_secret"),
			UpstreamInterval:   upstreamInterval,
			HonorSubscriptions: parseBool(v.GetString("digest_honor_subscriptions"), false),
		},
		Plaid: PlaidConfig{
			ClientID:     v.GetString("plaid_client_id"),
			Secret:       v.GetString("plaid_secret"),
			Env:          strings.ToLower(v.GetString("plaid_env")),
			Products:     splitList(v.GetString("plaid_products")),
			CountryCodes: splitList(v.GetString("plaid_country_codes")),
			RedirectURI:  v.GetString("plaid_redirect_uri"),
			ClientName:   v.GetString("plaid_client_name"),
		},
		Mail: MailConfig{
			SendGridAPIKey: v.GetString("sendgrid_api_key"),
			FromAddress:    v.GetString("mail_from_address"),
			FromName:       v.GetString("mail_from_name"),
		},
		Scheduler: SchedulerConfig{
			Enabled:       parseBool(v.GetString("scheduler_enabled"), false),
			ScheduleTimes: splitList(v.GetString("scheduler_times")),
			WorkerCount:   schedulerWorkers,
			JobDelay:      schedulerJobDelay,
			QueueSize:     schedulerQueueSize,
			RunOnStartup:  parseBool(v.GetString("scheduler_run_on_startup"), false),
		},
		TLS: TLSConfig{
			Enabled:      parseBool(v.GetString("tls_enabled"), false),
			CertPath:     v.GetString("tls_cert_path"),
			KeyPath:      v.GetString("tls_key_path"),
			RedirectHTTP: parseBool(v.GetString("tls_redirect_http"), false),
		},
		Telemetry: TelemetryConfig{
			Enabled:      parseBool(v.GetString("otel_enabled"), false),
			ServiceName:  v.GetString("otel_service_name"),
			Environment:  v.GetString("otel_environment"),
			OTLPEndpoint: v.GetString("otel_exporter_endpoint"),
			MetricsPort:  v.GetString("metrics_port"),
		},
	}

	// Validate required fields
	if cfg.Digest.JobSecret == "" {
		return nil, fmt.Errorf("DIGEST_JOB_SECRET is required")
	}
	if _, ok := plaidEnvs[cfg.Plaid.Env]; !ok {
		return nil, fmt.Errorf("PLAID_ENV must be one of sandbox, development, production (got %q)", cfg.Plaid.Env)
	}
	if cfg.Session.TTL <= 0 {
		return nil, fmt.Errorf("SESSION_TTL must be positive")
	}

	if cfg.TLS.Enabled {
		if cfg.TLS.CertPath == "" {
			return nil, fmt.Errorf("TLS_CERT_PATH is required when TLS_ENABLED=true")
		}
		if cfg.TLS.KeyPath == "" {
			return nil, fmt.Errorf("TLS_KEY_PATH is required when TLS_ENABLED=true")
		}
	}

	return cfg, nil
}

func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func parseBool(value string, defaultValue bool) bool {
	// Accept: true, false, 1, 0, yes, no (case-insensitive)
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	default:
		return defaultValue
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
