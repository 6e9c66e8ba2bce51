package digest

import (
	"context"
	"errors"
	"log"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"emailsummary/internal/shared/apperr"
	"emailsummary/internal/shared/auth"
)

// Request is a digest run as asked for at the boundary.
type Request struct {
	Period     string
	DateString string
}

// Config controls dispatcher policy.
type Config struct {
	// JobSecret authenticates the scheduled caller.
	JobSecret string

	// HonorSubscriptions restricts recipients to accounts whose subscription
	// opts into the requested cadence. Off means every active linkage is mailed.
	HonorSubscriptions bool
}

// Dispatcher authorizes a caller, selects recipients, and sends one digest each.
type Dispatcher struct {
	repo     Repository
	sessions SessionResolver
	renderer *Renderer
	mailer   Mailer
	cfg      Config
	now      func() time.Time
}

// NewDispatcher creates a new digest dispatcher
func NewDispatcher(repo Repository, sessions SessionResolver, renderer *Renderer, mailer Mailer, cfg Config) *Dispatcher {
	return &Dispatcher{
		repo:     repo,
		sessions: sessions,
		renderer: renderer,
		mailer:   mailer,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Authenticate resolves the caller. A bearer secret takes precedence over the
// session cookie; a bearer that is present but wrong is rejected outright.
func (d *Dispatcher) Authenticate(ctx context.Context, bearer, sessionToken string) (Caller, error) {
	if bearer != "" {
		if auth.SecretsEqual(bearer, d.cfg.JobSecret) {
			return SystemCaller{}, nil
		}
		log.Printf("Digest: rejected bearer credential")
		return nil, apperr.Wrap(apperr.ErrUnauthorized, "invalid bearer credential", nil)
	}

	if sessionToken == "" {
		return nil, apperr.Wrap(apperr.ErrUnauthorized, "no credential presented", nil)
	}

	email, err := d.sessions.ResolveSession(ctx, sessionToken)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrSessionExpired):
			log.Printf("Digest: session expired")
		case errors.Is(err, apperr.ErrUnauthorized):
			log.Printf("Digest: unknown session")
		default:
			log.Printf("Digest: failed to resolve session: %v", err)
		}
		return nil, err
	}
	return UserCaller{Email: email}, nil
}

// Dispatch runs one digest. Recipients are processed in order; a failure for one
// recipient is recorded in the result and does not stop the rest. The returned
// error is reserved for failures that affect the whole run.
func (d *Dispatcher) Dispatch(ctx context.Context, caller Caller, req Request) (*Result, error) {
	start := time.Now()

	window, err := ResolveWindow(req.Period, req.DateString, d.now())
	if err != nil {
		return nil, err
	}

	var filter MailerFilter
	switch c := caller.(type) {
	case SystemCaller:
	case UserCaller:
		filter.Email = c.Email
	default:
		return nil, apperr.Wrap(apperr.ErrUnauthorized, "unknown caller", nil)
	}
	if d.cfg.HonorSubscriptions {
		filter.Cadence = window.Cadence
	}

	rows, err := d.repo.GetMailerData(ctx, filter)
	if err != nil {
		return nil, apperr.Storage("failed to load mailer data", err)
	}

	groups := Group(rows)
	result := &Result{Window: window, Recipients: len(groups)}
	log.Printf("Digest: %s run for %s covering %d recipients", window.Cadence, window.Label(), len(groups))

	for _, rg := range groups {
		sent, err := d.sendOne(ctx, rg, window)
		if err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			log.Printf("Digest: failed for %s: %v", rg.Email, err)
			result.Failures = append(result.Failures, RecipientFailure{Email: rg.Email, Err: err})
			emailsFailed.Add(ctx, 1)
			continue
		}
		if sent {
			result.Sent++
			emailsSent.Add(ctx, 1)
		}
	}

	runDuration.Record(ctx, time.Since(start).Seconds(),
		metric.WithAttributes(attribute.String("period", string(window.Cadence))))
	log.Printf("Digest: %s run complete - sent: %d, failed: %d", window.Cadence, result.Sent, len(result.Failures))

	return result, nil
}

// sendOne builds and mails one recipient's digest. It reports false when
// there was nothing to send.
func (d *Dispatcher) sendOne(ctx context.Context, rg *RecipientGroup, window Window) (bool, error) {
	digest, err := d.renderer.Collect(ctx, rg, window)
	if err != nil {
		return false, apperr.Upstream("failed to collect digest", err)
	}
	if digest.Empty() {
		return false, nil
	}

	html, err := d.renderer.Render(digest)
	if err != nil {
		return false, err
	}
	text, err := d.renderer.PlainText(html)
	if err != nil {
		log.Printf("Digest: sending %s without a text part: %v", rg.Email, err)
		text = ""
	}

	if err := d.mailer.Send(ctx, Message{
		To:      rg.Email,
		Subject: window.Subject(),
		HTML:    html,
		Text:    text,
	}); err != nil {
		return false, apperr.Wrap(apperr.ErrMailTransport, "failed to send digest", err)
	}
	return true, nil
}
