package database

import (
	"context"
	"database/sql"
	"fmt"

	"teacher_referral_bot/internal/domain/channel"
)

type PostgresChannelRepository struct {
	db *sql.DB
}

func NewPostgresChannelRepository(db *sql.DB) *PostgresChannelRepository {
	return &PostgresChannelRepository{db: db}
}

func (r *PostgresChannelRepository) List(ctx context.Context) ([]*channel.Channel, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, channel_name, channel_id FROM channels ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("error listing channels: %w", err)
	}
	defer rows.Close()

	channels := make([]*channel.Channel, 0)
	for rows.Next() {
		c := &channel.Channel{}
		if err := rows.Scan(&c.ID, &c.Name, &c.ChatID); err != nil {
			return nil, fmt.Errorf("error scanning channel: %w", err)
		}
		channels = append(channels, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating channels: %w", err)
	}
	return channels, nil
}
