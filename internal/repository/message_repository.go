package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/staffing-service/internal/domain"
)

// MessageRepository manages event chat messages.
type MessageRepository interface {
	Create(ctx context.Context, msg *domain.EventMessage) error
	ListByEvent(ctx context.Context, eventID string, limit, offset int) ([]domain.EventMessage, error)
}

type messageRepository struct {
	pool *pgxpool.Pool
}

// NewMessageRepository builds the repository.
func NewMessageRepository(pool *pgxpool.Pool) MessageRepository {
	return &messageRepository{pool: pool}
}

func (r *messageRepository) Create(ctx context.Context, msg *domain.EventMessage) error {
	const query = `
        INSERT INTO event_messages (event_id, user_id, body)
        VALUES ($1, $2, $3)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		msg.EventID,
		msg.UserID,
		msg.Body,
	).Scan(&msg.ID, &msg.CreatedAt)
}

func (r *messageRepository) ListByEvent(ctx context.Context, eventID string, limit, offset int) ([]domain.EventMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
        SELECT id, event_id, user_id, body, created_at
        FROM event_messages WHERE event_id=$1
        ORDER BY created_at ASC LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, query, eventID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.EventMessage
	for rows.Next() {
		var msg domain.EventMessage
		if err := rows.Scan(
			&msg.ID,
			&msg.EventID,
			&msg.UserID,
			&msg.Body,
			&msg.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, msg)
	}
	return result, rows.Err()
}
