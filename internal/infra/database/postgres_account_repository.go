package database

import (
	"context"
	"database/sql"
	"fmt"

	"teacher_referral_bot/internal/domain/account"
)

// Custom errors
var ErrAccountNotFound = fmt.Errorf("account not found")

type PostgresAccountRepository struct {
	db *sql.DB
}

func NewPostgresAccountRepository(db *sql.DB) *PostgresAccountRepository {
	return &PostgresAccountRepository{db: db}
}

// GetOrCreate inserts the account on first contact. The upsert makes the
// operation atomic under concurrent /start updates for the same user; the
// no-op DO UPDATE lets RETURNING yield the row on both paths.
func (r *PostgresAccountRepository) GetOrCreate(ctx context.Context, telegramID int64, username string) (*account.Account, error) {
	query := `INSERT INTO accounts (telegram_id, username)
               VALUES ($1, NULLIF($2, ''))
               ON CONFLICT (telegram_id)
               DO UPDATE SET username = COALESCE(accounts.username, EXCLUDED.username)
               RETURNING id, telegram_id, username, created_at, updated_at`

	a := &account.Account{}
	err := r.db.QueryRowContext(ctx, query, telegramID, username).
		Scan(&a.ID, &a.TelegramID, &a.Username, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("error getting or creating account: %w", err)
	}
	return a, nil
}

func (r *PostgresAccountRepository) GetByID(ctx context.Context, id int64) (*account.Account, error) {
	query := `SELECT id, telegram_id, username, created_at, updated_at
               FROM accounts WHERE id = $1`
	a := &account.Account{}
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&a.ID, &a.TelegramID, &a.Username, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("error getting account by ID: %w", err)
	}
	return a, nil
}

func (r *PostgresAccountRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*account.Account, error) {
	query := `SELECT id, telegram_id, username, created_at, updated_at
               FROM accounts WHERE telegram_id = $1`
	a := &account.Account{}
	err := r.db.QueryRowContext(ctx, query, telegramID).
		Scan(&a.ID, &a.TelegramID, &a.Username, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("error getting account by Telegram ID: %w", err)
	}
	return a, nil
}
