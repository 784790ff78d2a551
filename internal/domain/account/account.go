package account

import (
	"database/sql"
	"time"
)

// Account is an external Telegram identity known to the bot. It is created
// on first contact and its identity fields never change afterwards.
type Account struct {
	ID         int64
	TelegramID int64
	Username   sql.NullString // Telegram usernames are optional
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
