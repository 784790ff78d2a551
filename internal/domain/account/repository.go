package account

import (
	"context"
)

// Repository defines the operations for persisting and retrieving Account entities.
type Repository interface {
	// GetOrCreate returns the account for the given Telegram ID, creating it
	// atomically when it does not exist yet. The username is recorded on
	// first contact only.
	GetOrCreate(ctx context.Context, telegramID int64, username string) (*Account, error)
	GetByID(ctx context.Context, id int64) (*Account, error)
	GetByTelegramID(ctx context.Context, telegramID int64) (*Account, error)
}
