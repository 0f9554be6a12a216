package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/staffing-service/internal/domain"
)

// CompensationRepository manages the one-to-one compensation and
// requirement records attached to events.
type CompensationRepository interface {
	UpsertCompensation(ctx context.Context, comp *domain.EventCompensation) error
	GetCompensation(ctx context.Context, eventID string) (*domain.EventCompensation, error)
	UpsertRequirement(ctx context.Context, req *domain.EventRequirement) error
	GetRequirement(ctx context.Context, eventID string) (*domain.EventRequirement, error)
}

type compensationRepository struct {
	pool *pgxpool.Pool
}

// NewCompensationRepository builds the repository.
func NewCompensationRepository(pool *pgxpool.Pool) CompensationRepository {
	return &compensationRepository{pool: pool}
}

func (r *compensationRepository) UpsertCompensation(ctx context.Context, comp *domain.EventCompensation) error {
	const query = `
        INSERT INTO event_compensations (event_id, type, amount)
        VALUES ($1, $2, $3)
        ON CONFLICT (event_id) DO UPDATE SET type=EXCLUDED.type, amount=EXCLUDED.amount, updated_at=NOW()
        RETURNING created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		comp.EventID,
		comp.Type,
		comp.Amount,
	).Scan(&comp.CreatedAt, &comp.UpdatedAt)
}

func (r *compensationRepository) GetCompensation(ctx context.Context, eventID string) (*domain.EventCompensation, error) {
	const query = `
        SELECT event_id, type, amount, created_at, updated_at
        FROM event_compensations WHERE event_id=$1`
	var comp domain.EventCompensation
	if err := r.pool.QueryRow(ctx, query, eventID).Scan(
		&comp.EventID,
		&comp.Type,
		&comp.Amount,
		&comp.CreatedAt,
		&comp.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &comp, nil
}

func (r *compensationRepository) UpsertRequirement(ctx context.Context, req *domain.EventRequirement) error {
	const query = `
        INSERT INTO event_requirements (event_id, details)
        VALUES ($1, $2)
        ON CONFLICT (event_id) DO UPDATE SET details=EXCLUDED.details, updated_at=NOW()
        RETURNING created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		req.EventID,
		req.Details,
	).Scan(&req.CreatedAt, &req.UpdatedAt)
}

func (r *compensationRepository) GetRequirement(ctx context.Context, eventID string) (*domain.EventRequirement, error) {
	const query = `
        SELECT event_id, details, created_at, updated_at
        FROM event_requirements WHERE event_id=$1`
	var req domain.EventRequirement
	if err := r.pool.QueryRow(ctx, query, eventID).Scan(
		&req.EventID,
		&req.Details,
		&req.CreatedAt,
		&req.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &req, nil
}
