package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/staffing-service/internal/domain"
)

// AgencyRepository encapsulates agency persistence.
type AgencyRepository interface {
	Create(ctx context.Context, agency *domain.Agency) error
	Update(ctx context.Context, agency *domain.Agency) error
	GetByID(ctx context.Context, id string) (*domain.Agency, error)
	GetByOwner(ctx context.Context, ownerUserID string) (*domain.Agency, error)
}

type agencyRepository struct {
	pool *pgxpool.Pool
}

// NewAgencyRepository returns a Postgres-backed implementation.
func NewAgencyRepository(pool *pgxpool.Pool) AgencyRepository {
	return &agencyRepository{pool: pool}
}

func (r *agencyRepository) Create(ctx context.Context, agency *domain.Agency) error {
	const query = `
        INSERT INTO agencies (name, owner_user_id)
        VALUES ($1, $2)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		agency.Name,
		agency.OwnerUserID,
	).Scan(&agency.ID, &agency.CreatedAt, &agency.UpdatedAt)
}

func (r *agencyRepository) Update(ctx context.Context, agency *domain.Agency) error {
	const query = `
        UPDATE agencies SET name=$1, updated_at=NOW()
        WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, agency.Name, agency.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *agencyRepository) GetByID(ctx context.Context, id string) (*domain.Agency, error) {
	const query = `
        SELECT id, name, owner_user_id, created_at, updated_at
        FROM agencies WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *agencyRepository) GetByOwner(ctx context.Context, ownerUserID string) (*domain.Agency, error) {
	const query = `
        SELECT id, name, owner_user_id, created_at, updated_at
        FROM agencies WHERE owner_user_id=$1`
	return r.fetchSingle(ctx, query, ownerUserID)
}

func (r *agencyRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Agency, error) {
	var agency domain.Agency
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&agency.ID,
		&agency.Name,
		&agency.OwnerUserID,
		&agency.CreatedAt,
		&agency.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &agency, nil
}
