package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/staffing-service/internal/domain"
)

// RoleRepository manages role records.
type RoleRepository interface {
	Create(ctx context.Context, role *domain.Role) error
	Update(ctx context.Context, role *domain.Role) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Role, error)
	GetByName(ctx context.Context, name string) (*domain.Role, error)
	List(ctx context.Context) ([]domain.Role, error)
}

type roleRepository struct {
	pool *pgxpool.Pool
}

// NewRoleRepository builds the repository.
func NewRoleRepository(pool *pgxpool.Pool) RoleRepository {
	return &roleRepository{pool: pool}
}

func (r *roleRepository) Create(ctx context.Context, role *domain.Role) error {
	const query = `
        INSERT INTO roles (name, permissions, is_system)
        VALUES ($1, $2, $3)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		role.Name,
		role.Permissions,
		role.IsSystem,
	).Scan(&role.ID, &role.CreatedAt, &role.UpdatedAt)
}

func (r *roleRepository) Update(ctx context.Context, role *domain.Role) error {
	const query = `
        UPDATE roles SET name=$1, permissions=$2, updated_at=NOW()
        WHERE id=$3 AND is_system=FALSE`
	cmd, err := r.pool.Exec(ctx, query, role.Name, role.Permissions, role.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *roleRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM roles WHERE id=$1 AND is_system=FALSE`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *roleRepository) GetByID(ctx context.Context, id string) (*domain.Role, error) {
	const query = roleSelect + ` WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *roleRepository) GetByName(ctx context.Context, name string) (*domain.Role, error) {
	const query = roleSelect + ` WHERE name=$1`
	return r.fetchSingle(ctx, query, name)
}

func (r *roleRepository) List(ctx context.Context) ([]domain.Role, error) {
	const query = roleSelect + ` ORDER BY name ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Role
	for rows.Next() {
		var role domain.Role
		if err := rows.Scan(
			&role.ID,
			&role.Name,
			&role.Permissions,
			&role.IsSystem,
			&role.CreatedAt,
			&role.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, role)
	}
	return result, rows.Err()
}

const roleSelect = `
        SELECT id, name, permissions, is_system, created_at, updated_at
        FROM roles`

func (r *roleRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Role, error) {
	var role domain.Role
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&role.ID,
		&role.Name,
		&role.Permissions,
		&role.IsSystem,
		&role.CreatedAt,
		&role.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &role, nil
}
