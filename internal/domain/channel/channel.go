package channel

import (
	"context"
)

// Channel is an external Telegram channel invite links are minted for.
// ChatID is kept as a string because channels may be referenced either by
// numeric identifier or by @username.
type Channel struct {
	ID     int64
	Name   string
	ChatID string
}

// Repository lists the registered channels.
type Repository interface {
	List(ctx context.Context) ([]*Channel, error)
}
