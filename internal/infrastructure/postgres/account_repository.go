package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"emailsummary/internal/domain/account"
)

// AccountRepository implements the account.Repository interface for PostgreSQL.
// It covers credentials, institutions and cached accounts.
type AccountRepository struct {
	db      *DB
	newUUID func() string
}

// NewAccountRepository creates a new PostgreSQL account repository
func NewAccountRepository(db *DB) *AccountRepository {
	return &AccountRepository{db: db, newUUID: uuid.NewString}
}

// GetInstitution retrieves a cached institution by its provider id
func (r *AccountRepository) GetInstitution(ctx context.Context, institutionID string) (*account.Institution, error) {
	query := `
		SELECT id, institution_id, name
		FROM institutions
		WHERE institution_id = $1
	`

	var inst account.Institution
	var name sql.NullString
	err := r.db.QueryRowContext(ctx, query, institutionID).Scan(&inst.ID, &inst.InstitutionID, &name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, account.ErrInstitutionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get institution: %w", err)
	}

	inst.Name = name.String
	return &inst, nil
}

// CreateInstitution caches an institution. An existing row keeps its name.
func (r *AccountRepository) CreateInstitution(ctx context.Context, institutionID, name string) (*account.Institution, error) {
	query := `
		INSERT INTO institutions (institution_id, name)
		VALUES ($1, $2)
		ON CONFLICT (institution_id)
		DO UPDATE SET institution_id = EXCLUDED.institution_id
		RETURNING id, institution_id, name
	`

	var inst account.Institution
	var stored sql.NullString
	err := r.db.QueryRowContext(ctx, query, institutionID, nullString(name)).Scan(&inst.ID, &inst.InstitutionID, &stored)
	if err != nil {
		return nil, fmt.Errorf("failed to create institution: %w", err)
	}

	inst.Name = stored.String
	return &inst, nil
}

// ListAccounts returns the cached accounts reachable through a credential,
// joined to their institution.
func (r *AccountRepository) ListAccounts(ctx context.Context, token string) ([]*account.Account, error) {
	query := `
		SELECT a.id, a.uuid, a.account_id, a.access_token_id,
		       i.institution_id, i.name,
		       a.name, a.official_name, a.mask, a.type, a.subtype, a.date_created
		FROM accounts a
		INNER JOIN access_tokens t ON t.id = a.access_token_id
		LEFT JOIN institutions i ON i.id = a.institution_id
		WHERE t.access_token = $1
		ORDER BY a.id
	`

	rows, err := r.db.QueryContext(ctx, query, token)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	accounts := make([]*account.Account, 0)
	for rows.Next() {
		var acc account.Account
		var institutionID, institutionName, name, officialName, mask, accType, subtype sql.NullString

		err := rows.Scan(
			&acc.ID, &acc.UUID, &acc.AccountID, &acc.AccessTokenID,
			&institutionID, &institutionName,
			&name, &officialName, &mask, &accType, &subtype, &acc.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}

		acc.InstitutionID = institutionID.String
		acc.InstitutionName = institutionName.String
		acc.Name = name.String
		acc.OfficialName = officialName.String
		acc.Mask = mask.String
		acc.Type = accType.String
		acc.Subtype = subtype.String

		accounts = append(accounts, &acc)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounts: %w", err)
	}

	return accounts, nil
}

// CreateAccount caches an upstream account under a fresh uuid
func (r *AccountRepository) CreateAccount(ctx context.Context, params account.CreateAccountParams) (*account.Account, error) {
	query := `
		INSERT INTO accounts (uuid, access_token_id, account_id, name, official_name, mask, type, subtype, institution_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, uuid, date_created
	`

	acc := account.Account{
		AccountID:     params.AccountID,
		AccessTokenID: params.AccessTokenID,
		Name:          params.Name,
		OfficialName:  params.OfficialName,
		Mask:          params.Mask,
		Type:          params.Type,
		Subtype:       params.Subtype,
	}

	for attempt := 0; attempt < maxKeyAttempts; attempt++ {
		err := r.db.QueryRowContext(
			ctx, query,
			r.newUUID(), params.AccessTokenID, params.AccountID,
			nullString(params.Name), nullString(params.OfficialName), nullString(params.Mask),
			nullString(params.Type), nullString(params.Subtype), nullInt64(params.InstitutionID),
		).Scan(&acc.ID, &acc.UUID, &acc.CreatedAt)

		switch {
		case err == nil:
			return &acc, nil
		case isUniqueViolation(err, constraintAccountUUID):
			continue
		default:
			return nil, fmt.Errorf("failed to create account: %w", err)
		}
	}

	return nil, fmt.Errorf("failed to create account: uuid collided %d times", maxKeyAttempts)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt64(n int64) sql.NullInt64 {
	return sql.NullInt64{Int64: n, Valid: n != 0}
}
