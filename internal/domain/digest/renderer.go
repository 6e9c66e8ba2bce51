package digest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"log"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"emailsummary/internal/domain/account"
	"emailsummary/internal/shared/money"
	"emailsummary/internal/shared/pacer"
)

const refreshUnavailable = "Last update time unavailable"

var (
	positive = decimal.NewFromInt(1)
	negative = decimal.NewFromInt(-1)
)

// ExpiryMarker flags credentials the provider has revoked.
type ExpiryMarker interface {
	MarkAccessTokenExpired(ctx context.Context, token string) error
}

// Renderer fetches each account's window from the provider into AccountDigest
// records, then renders them. Provider calls are sequential and paced.
type Renderer struct {
	provider  Provider
	pacer     pacer.Pacer
	marker    ExpiryMarker
	now       func() time.Time
	tmpl      *template.Template
	converter *md.Converter
}

// NewRenderer creates a renderer. p spaces out provider calls.
func NewRenderer(provider Provider, p pacer.Pacer, marker ExpiryMarker) *Renderer {
	converter := md.NewConverter("", true, nil)
	converter.Use(plugin.GitHubFlavored())

	return &Renderer{
		provider:  provider,
		pacer:     p,
		marker:    marker,
		now:       time.Now,
		tmpl:      digestTemplate,
		converter: converter,
	}
}

// Sign is the multiplier that puts provider amounts into the net-outflow
// convention: +1 for credit accounts, -1 for everything else.
func Sign(accountType string) decimal.Decimal {
	if accountType == "credit" {
		return positive
	}
	return negative
}

// ResolveBalance prefers the current balance and falls back to available.
func ResolveBalance(current, available decimal.NullDecimal) decimal.NullDecimal {
	if current.Valid {
		return current
	}
	return available
}

// Collect builds the structured digest for one recipient.
func (r *Renderer) Collect(ctx context.Context, rg *RecipientGroup, w Window) (*RecipientDigest, error) {
	d := &RecipientDigest{Email: rg.Email, Window: w}
	for _, cg := range rg.Credentials {
		inst, err := r.collectInstitution(ctx, cg, w)
		if err != nil {
			return nil, err
		}
		d.Institutions = append(d.Institutions, inst)
	}
	return d, nil
}

func (r *Renderer) collectInstitution(ctx context.Context, cg *CredentialGroup, w Window) (InstitutionDigest, error) {
	inst := InstitutionDigest{
		InstitutionName: cg.InstitutionName,
		RefreshNotice:   r.refreshNotice(ctx, cg.AccessToken),
	}

	for _, accountID := range cg.AccountIDs {
		ad, err := r.collectAccount(ctx, cg.AccessToken, accountID, w)
		switch {
		case err == nil:
		case ctx.Err() != nil:
			return inst, ctx.Err()
		case errors.Is(err, account.ErrItemLoginRequired):
			log.Printf("Digest: credential for %s needs re-authentication", cg.InstitutionName)
			inst.NeedsReauth = true
			if err := r.marker.MarkAccessTokenExpired(ctx, cg.AccessToken); err != nil {
				log.Printf("Digest: failed to flag expired credential: %v", err)
			}
			return inst, nil
		default:
			log.Printf("Digest: transactions unavailable for account %s: %v", accountID, err)
			ad = AccountDigest{AccountID: accountID, Name: accountID, Unavailable: true}
		}
		inst.Accounts = append(inst.Accounts, ad)
	}

	return inst, nil
}

func (r *Renderer) collectAccount(ctx context.Context, accessToken, accountID string, w Window) (AccountDigest, error) {
	if err := r.pacer.Wait(ctx); err != nil {
		return AccountDigest{}, err
	}
	upstreamCalls.Add(ctx, 1, metric.WithAttributes(attribute.String("call", "transactions")))

	res, err := r.provider.GetTransactions(ctx, TransactionsRequest{
		AccessToken: accessToken,
		StartDate:   w.StartDate(),
		EndDate:     w.EndDate(),
		AccountIDs:  []string{accountID},
	})
	if err != nil {
		return AccountDigest{}, err
	}

	ad := AccountDigest{AccountID: accountID, Name: accountID}
	for _, a := range res.Accounts {
		if a.AccountID == accountID {
			ad.Name = a.Name
			ad.Mask = a.Mask
			ad.Type = a.Type
			ad.Balance = ResolveBalance(a.Current, a.Available)
			break
		}
	}

	sign := Sign(ad.Type)
	var amounts []decimal.Decimal
	for _, tx := range res.Transactions {
		if tx.AccountID != "" && tx.AccountID != accountID {
			continue
		}
		signed := tx.Amount.Mul(sign)
		ad.Transactions = append(ad.Transactions, SignedTransaction{
			Date:    tx.Date,
			Name:    tx.Name,
			Amount:  signed,
			Pending: tx.Pending,
		})
		amounts = append(amounts, signed)
	}
	ad.Net = money.Sum(amounts)

	return ad, nil
}

// refreshNotice reports whole hours since the provider last refreshed the item.
// Any failure yields a placeholder.
func (r *Renderer) refreshNotice(ctx context.Context, accessToken string) string {
	if err := r.pacer.Wait(ctx); err != nil {
		return refreshUnavailable
	}
	upstreamCalls.Add(ctx, 1, metric.WithAttributes(attribute.String("call", "item")))

	status, err := r.provider.GetItemStatus(ctx, accessToken)
	if err != nil {
		log.Printf("Digest: item status lookup failed: %v", err)
		return refreshUnavailable
	}
	if status == nil || status.LastSuccessfulUpdate == nil {
		return refreshUnavailable
	}

	hours := int(r.now().Sub(*status.LastSuccessfulUpdate).Hours())
	if hours < 0 {
		hours = 0
	}
	if hours == 1 {
		return "Last updated 1 hour ago"
	}
	return fmt.Sprintf("Last updated %d hours ago", hours)
}

// Render turns a collected digest into the HTML email body. It performs no I/O.
func (r *Renderer) Render(d *RecipientDigest) (string, error) {
	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, d); err != nil {
		return "", fmt.Errorf("failed to render digest: %w", err)
	}
	return buf.String(), nil
}

// PlainText derives the text/plain alternative from the HTML body.
func (r *Renderer) PlainText(html string) (string, error) {
	text, err := r.converter.ConvertString(html)
	if err != nil {
		return "", fmt.Errorf("failed to convert digest to text: %w", err)
	}
	return text, nil
}

func formatBalance(b decimal.NullDecimal) string {
	if !b.Valid {
		return "Unavailable"
	}
	return money.Format(b.Decimal)
}

var digestTemplate = template.Must(template.New("digest").Funcs(template.FuncMap{
	"money":   money.Format,
	"balance": formatBalance,
}).Parse(digestHTML))

const digestHTML = `<div style="font-family: Arial, Helvetica, sans-serif; color: #222;">
<h1>{{.Window.Title}}</h1>
<p>{{.Window.Label}}</p>
{{- range .Institutions}}
<h2>{{.InstitutionName}}</h2>
<p style="color: #777;"><em>{{.RefreshNotice}}</em></p>
{{- if .NeedsReauth}}
<p><strong>This connection needs to be re-authenticated. Sign in and relink it to resume summaries.</strong></p>
{{- end}}
{{- range .Accounts}}
<h3>{{.Name}}{{if .Mask}} (...{{.Mask}}){{end}}: Balance {{balance .Balance}}</h3>
{{- if .Unavailable}}
<p>Transactions unavailable</p>
{{- else if .Transactions}}
<table style="border-collapse: collapse; width: 100%;">
<thead><tr><th align="left">Date</th><th align="left">Description</th><th align="right">Amount</th></tr></thead>
<tbody>
{{- range .Transactions}}
<tr><td>{{.Date}}{{if .Pending}} (pending){{end}}</td><td>{{.Name}}</td><td align="right">{{money .Amount}}</td></tr>
{{- end}}
<tr><td colspan="2"><strong>Net</strong></td><td align="right"><strong>{{money .Net}}</strong></td></tr>
</tbody>
</table>
{{- else}}
<p>No transactions</p>
{{- end}}
<br>
{{- end}}
{{- end}}
</div>
`
