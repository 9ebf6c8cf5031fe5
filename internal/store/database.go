package store

import (
	"database/sql"
	"fmt"
	"time"

	"reviewdeck-backend/internal/db"
)

// DatabaseCredentialStore persists provider accounts in PostgreSQL. Used
// when DB_URL is configured; otherwise the file store serves.
type DatabaseCredentialStore struct {
	db *db.DB
}

func NewDatabaseCredentialStore(database *db.DB) *DatabaseCredentialStore {
	return &DatabaseCredentialStore{db: database}
}

// ProviderAccount is one connected account: where it points and the access
// token the adapter consumes.
type ProviderAccount struct {
	AccountID   string
	BaseURL     string
	AccessToken string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SaveAccount inserts or updates the stored credential for an account.
func (ds *DatabaseCredentialStore) SaveAccount(accountID, baseURL, accessToken string) error {
	if accountID == "" || baseURL == "" || accessToken == "" {
		return fmt.Errorf("account_id, base_url and access_token are required")
	}

	query := `
		INSERT INTO provider_accounts (account_id, base_url, access_token, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		ON CONFLICT (account_id)
		DO UPDATE SET
			base_url = EXCLUDED.base_url,
			access_token = EXCLUDED.access_token,
			updated_at = NOW()
	`

	if _, err := ds.db.Exec(query, accountID, baseURL, accessToken); err != nil {
		return fmt.Errorf("failed to save provider account: %w", err)
	}
	return nil
}

// GetAccount retrieves the stored credential for an account, or nil when
// none exists.
func (ds *DatabaseCredentialStore) GetAccount(accountID string) (*ProviderAccount, error) {
	if accountID == "" {
		return nil, fmt.Errorf("account_id is required")
	}

	var acc ProviderAccount
	query := `
		SELECT account_id, base_url, access_token, created_at, updated_at
		FROM provider_accounts
		WHERE account_id = $1
	`

	err := ds.db.QueryRow(query, accountID).Scan(
		&acc.AccountID,
		&acc.BaseURL,
		&acc.AccessToken,
		&acc.CreatedAt,
		&acc.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get provider account: %w", err)
	}
	return &acc, nil
}

// DeleteAccount removes the stored credential for an account.
func (ds *DatabaseCredentialStore) DeleteAccount(accountID string) error {
	if accountID == "" {
		return fmt.Errorf("account_id is required")
	}
	if _, err := ds.db.Exec(`DELETE FROM provider_accounts WHERE account_id = $1`, accountID); err != nil {
		return fmt.Errorf("failed to delete provider account: %w", err)
	}
	return nil
}
