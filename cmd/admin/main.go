package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"emailsummary/internal/domain/digest"
	"emailsummary/internal/domain/user"
	"emailsummary/internal/infrastructure/mail"
	"emailsummary/internal/infrastructure/plaid"
	"emailsummary/internal/infrastructure/postgres"
	"emailsummary/internal/shared/config"
	"emailsummary/internal/shared/pacer"
)

var (
	v       = viper.New()
	timeout time.Duration
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "admin",
		Short:         "Email Summary Admin CLI - management commands for the Email Summary API",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Minute, "Timeout for the operation (e.g., 5m, 1h)")

	root.AddCommand(newMigrateCmd(), newReapSessionsCmd(), newSendDigestCmd())
	return root
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database schema if it does not exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := connect()
			if err != nil {
				return err
			}
			defer db.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			if err := db.Migrate(ctx); err != nil {
				return err
			}
			log.Println("Schema is up to date")
			return nil
		},
	}
}

func newReapSessionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reap-sessions",
		Short: "Delete sessions past their expiry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := connect()
			if err != nil {
				return err
			}
			defer db.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			users := user.NewService(postgres.NewUserRepository(db), postgres.NewSessionRepository(db), cfg.Auth.InviteCode, cfg.Session.TTL)
			n, err := users.ReapExpiredSessions(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Deleted %d expired session(s)\n", n)
			return nil
		},
	}
}

func newSendDigestCmd() *cobra.Command {
	var period, date, email string

	cmd := &cobra.Command{
		Use:   "send-digest",
		Short: "Send the transaction digest for a period",
		Example: `  admin send-digest --period daily
  admin send-digest --period weekly --date 2024-02-29
  admin send-digest --period monthly --email someone@example.com --pace 1s`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := connect()
			if err != nil {
				return err
			}
			defer db.Close()

			dispatcher, err := newDispatcher(cfg, db)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			var caller digest.Caller = digest.SystemCaller{}
			if email != "" {
				caller = digest.UserCaller{Email: email}
			}

			start := time.Now()
			result, err := dispatcher.Dispatch(ctx, caller, digest.Request{Period: period, DateString: date})
			if err != nil {
				return err
			}
			printResult(result)
			log.Printf("Digest run completed in %v", time.Since(start))

			if result.Failed() {
				return fmt.Errorf("%d recipient(s) failed", len(result.Failures))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&period, "period", "daily", "Digest period: daily, weekly or monthly")
	cmd.Flags().StringVar(&date, "date", "", "Last day of the window as YYYY-MM-DD (default yesterday)")
	cmd.Flags().StringVar(&email, "email", "", "Only send to this user")
	cmd.Flags().Duration("pace", 0, "Minimum interval between upstream calls (overrides DIGEST_UPSTREAM_INTERVAL)")
	cmd.Flags().Bool("honor-subscriptions", false, "Only include accounts subscribed to the period")

	v.BindPFlag("digest_upstream_interval", cmd.Flags().Lookup("pace"))
	v.BindPFlag("digest_honor_subscriptions", cmd.Flags().Lookup("honor-subscriptions"))

	return cmd
}

// connect loads configuration through the shared viper instance, so bound
// flags take effect, and opens the database.
func connect() (*config.Config, *postgres.DB, error) {
	cfg, err := config.LoadFrom(v)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	db, err := postgres.New(cfg.Database.ConnectionString(), postgres.PoolConfig{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Println("Connected to database")

	return cfg, db, nil
}

func newDispatcher(cfg *config.Config, db *postgres.DB) (*digest.Dispatcher, error) {
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

	var mailer digest.Mailer = mail.LogMailer{}
	if cfg.Mail.SendGridAPIKey != "" {
		mailer = mail.NewSendGridMailer(cfg.Mail.SendGridAPIKey, cfg.Mail.FromAddress, cfg.Mail.FromName)
	}

	digestRepo := postgres.NewDigestRepository(db)
	users := user.NewService(postgres.NewUserRepository(db), postgres.NewSessionRepository(db), cfg.Auth.InviteCode, cfg.Session.TTL)
	renderer := digest.NewRenderer(plaidClient, pacer.NewInterval(cfg.Digest.UpstreamInterval), digestRepo)

	return digest.NewDispatcher(digestRepo, users, renderer, mailer, digest.Config{
		JobSecret:          cfg.Digest.JobSecret,
		HonorSubscriptions: cfg.Digest.HonorSubscriptions,
	}), nil
}

func printResult(result *digest.Result) {
	fmt.Printf("\n=== %s ===\n", result.Window.Subject())
	fmt.Printf("  Recipients:  %d\n", result.Recipients)
	fmt.Printf("  Sent:        %d\n", result.Sent)

	if len(result.Failures) > 0 {
		fmt.Printf("  Failed:      %d\n", len(result.Failures))
		for i, f := range result.Failures {
			if i >= 5 {
				fmt.Printf("    ... and %d more failures\n", len(result.Failures)-5)
				break
			}
			fmt.Printf("    - %s: %v\n", f.Email, f.Err)
		}
	}
}
