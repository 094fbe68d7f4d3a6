package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/atolyeshop/etsysync/internal/domain"
	"github.com/atolyeshop/etsysync/pkg/errors"
)

type accountRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *sql.DB, logger *zap.Logger) *accountRepository {
	return &accountRepository{
		db:     db,
		logger: logger,
	}
}

const accountColumns = `id, name, api_key_hash, etsy_user_id, access_token, shop_id, shop_name, is_active, created_at, updated_at`

func scanAccount(row interface {
	Scan(dest ...interface{}) error
}) (*domain.Account, error) {
	var account domain.Account
	var etsyUserID, shopID sql.NullInt64
	var shopName sql.NullString

	err := row.Scan(
		&account.ID,
		&account.Name,
		&account.APIKeyHash,
		&etsyUserID,
		&account.AccessToken,
		&shopID,
		&shopName,
		&account.IsActive,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if etsyUserID.Valid {
		account.EtsyUserID = &etsyUserID.Int64
	}
	if shopID.Valid {
		account.ShopID = &shopID.Int64
	}
	if shopName.Valid {
		account.ShopName = shopName.String
	}

	return &account, nil
}

func (r *accountRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE id = $1
	`

	account, err := scanAccount(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "account", ID: id.String()}
	}
	if err != nil {
		r.logger.Error("Failed to get account by ID", zap.Error(err))
		return nil, err
	}

	return account, nil
}

func (r *accountRepository) GetByAPIKey(ctx context.Context, apiKey string) (*domain.Account, error) {
	// bcrypt hashes are salted, so there is no direct lookup; scan active
	// accounts and verify the key against each hash.
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE is_active = true
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to query accounts", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			continue
		}

		if err := bcrypt.CompareHashAndPassword([]byte(account.APIKeyHash), []byte(apiKey)); err == nil {
			return account, nil
		}
	}

	return nil, &errors.ErrUnauthorized{Message: "invalid API key"}
}

func (r *accountRepository) Create(ctx context.Context, account *domain.Account) error {
	query := `
		INSERT INTO accounts (id, name, api_key_hash, etsy_user_id, access_token, shop_id, shop_name, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	now := time.Now()
	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}
	if account.CreatedAt.IsZero() {
		account.CreatedAt = now
	}
	if account.UpdatedAt.IsZero() {
		account.UpdatedAt = now
	}

	_, err := r.db.ExecContext(ctx, query,
		account.ID,
		account.Name,
		account.APIKeyHash,
		account.EtsyUserID,
		account.AccessToken,
		account.ShopID,
		account.ShopName,
		account.IsActive,
		account.CreatedAt,
		account.UpdatedAt,
	)

	if err != nil {
		r.logger.Error("Failed to create account", zap.Error(err))
		return err
	}

	return nil
}

func (r *accountRepository) SaveShop(ctx context.Context, id uuid.UUID, shopID int64, shopName string) error {
	query := `
		UPDATE accounts
		SET shop_id = $2, shop_name = $3, updated_at = $4
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query, id, shopID, shopName, time.Now())
	if err != nil {
		r.logger.Error("Failed to save resolved shop", zap.Error(err))
		return err
	}

	return nil
}
