package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/staffing-service/internal/domain"
)

// StatusCounts groups assignment counts for an event by status.
type StatusCounts struct {
	Pending  int
	Accepted int
	Rejected int
}

// AssignmentRepository encapsulates assignment persistence.
type AssignmentRepository interface {
	Create(ctx context.Context, assignment *domain.EventAssignment) error
	Update(ctx context.Context, assignment *domain.EventAssignment) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.EventAssignment, error)
	GetByEventAndUser(ctx context.Context, eventID, userID string) (*domain.EventAssignment, error)
	ListByEvent(ctx context.Context, eventID string) ([]domain.EventAssignment, error)
	ListByUser(ctx context.Context, userID string) ([]domain.EventAssignment, error)
	CountByStatus(ctx context.Context, eventID string) (StatusCounts, error)
}

type assignmentRepository struct {
	pool *pgxpool.Pool
}

// NewAssignmentRepository instantiates the repository.
func NewAssignmentRepository(pool *pgxpool.Pool) AssignmentRepository {
	return &assignmentRepository{pool: pool}
}

const uniqueViolation = "23505"

func (r *assignmentRepository) Create(ctx context.Context, assignment *domain.EventAssignment) error {
	const query = `
        INSERT INTO event_assignments (event_id, user_id, status, notes)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		assignment.EventID,
		assignment.UserID,
		assignment.Status,
		assignment.Notes,
	).Scan(&assignment.ID, &assignment.CreatedAt, &assignment.UpdatedAt)
	if err != nil {
		// the unique (event_id, user_id) index closes the check-then-create
		// race between two concurrent applications
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicateAssignment
		}
		return err
	}
	return nil
}

func (r *assignmentRepository) Update(ctx context.Context, assignment *domain.EventAssignment) error {
	const query = `
        UPDATE event_assignments SET status=$1, notes=$2, responded_at=$3, updated_at=NOW()
        WHERE id=$4`
	cmd, err := r.pool.Exec(ctx, query,
		assignment.Status,
		assignment.Notes,
		assignment.RespondedAt,
		assignment.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *assignmentRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM event_assignments WHERE id=$1`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

const assignmentSelect = `
        SELECT id, event_id, user_id, status, notes, responded_at, created_at, updated_at
        FROM event_assignments`

func (r *assignmentRepository) GetByID(ctx context.Context, id string) (*domain.EventAssignment, error) {
	const query = assignmentSelect + ` WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *assignmentRepository) GetByEventAndUser(ctx context.Context, eventID, userID string) (*domain.EventAssignment, error) {
	const query = assignmentSelect + ` WHERE event_id=$1 AND user_id=$2`
	var assignment domain.EventAssignment
	if err := scanAssignment(r.pool.QueryRow(ctx, query, eventID, userID), &assignment); err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *assignmentRepository) ListByEvent(ctx context.Context, eventID string) ([]domain.EventAssignment, error) {
	const query = assignmentSelect + ` WHERE event_id=$1 ORDER BY created_at ASC`
	return r.list(ctx, query, eventID)
}

func (r *assignmentRepository) ListByUser(ctx context.Context, userID string) ([]domain.EventAssignment, error) {
	const query = assignmentSelect + ` WHERE user_id=$1 ORDER BY created_at DESC`
	return r.list(ctx, query, userID)
}

func (r *assignmentRepository) CountByStatus(ctx context.Context, eventID string) (StatusCounts, error) {
	const query = `
        SELECT status, COUNT(*) FROM event_assignments
        WHERE event_id=$1 GROUP BY status`
	rows, err := r.pool.Query(ctx, query, eventID)
	if err != nil {
		return StatusCounts{}, err
	}
	defer rows.Close()

	var counts StatusCounts
	for rows.Next() {
		var status domain.AssignmentStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return StatusCounts{}, err
		}
		switch status {
		case domain.AssignmentStatusPending:
			counts.Pending = count
		case domain.AssignmentStatusAccepted:
			counts.Accepted = count
		case domain.AssignmentStatusRejected:
			counts.Rejected = count
		}
	}
	return counts, rows.Err()
}

func (r *assignmentRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.EventAssignment, error) {
	var assignment domain.EventAssignment
	if err := scanAssignment(r.pool.QueryRow(ctx, query, arg), &assignment); err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *assignmentRepository) list(ctx context.Context, query string, arg any) ([]domain.EventAssignment, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.EventAssignment
	for rows.Next() {
		var assignment domain.EventAssignment
		if err := scanAssignment(rows, &assignment); err != nil {
			return nil, err
		}
		result = append(result, assignment)
	}
	return result, rows.Err()
}

func scanAssignment(row pgx.Row, assignment *domain.EventAssignment) error {
	return row.Scan(
		&assignment.ID,
		&assignment.EventID,
		&assignment.UserID,
		&assignment.Status,
		&assignment.Notes,
		&assignment.RespondedAt,
		&assignment.CreatedAt,
		&assignment.UpdatedAt,
	)
}
