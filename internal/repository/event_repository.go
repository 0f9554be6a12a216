package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/staffing-service/internal/domain"
)

// EventFilter captures event listing parameters.
type EventFilter struct {
	AgencyID   *string
	Statuses   []domain.EventStatus
	DateFrom   *time.Time
	DateTo     *time.Time
	SearchTerm *string
	Limit      int
	Offset     int
}

// EventRepository encapsulates event persistence.
type EventRepository interface {
	Create(ctx context.Context, event *domain.Event) error
	Update(ctx context.Context, event *domain.Event) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Event, error)
	ListWithFilter(ctx context.Context, filter EventFilter) ([]domain.Event, error)
}

type eventRepository struct {
	pool *pgxpool.Pool
}

// NewEventRepository instantiates the repository.
func NewEventRepository(pool *pgxpool.Pool) EventRepository {
	return &eventRepository{pool: pool}
}

func (r *eventRepository) Create(ctx context.Context, event *domain.Event) error {
	const query = `
        INSERT INTO events (agency_id, name, description, date, time_from, time_to, location, latitude, longitude, required_staff_count, status)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		event.AgencyID,
		event.Name,
		event.Description,
		event.Date,
		event.TimeFrom,
		event.TimeTo,
		event.Location,
		event.Latitude,
		event.Longitude,
		event.RequiredStaffCount,
		event.Status,
	).Scan(&event.ID, &event.CreatedAt, &event.UpdatedAt)
}

func (r *eventRepository) Update(ctx context.Context, event *domain.Event) error {
	const query = `
        UPDATE events SET name=$1, description=$2, date=$3, time_from=$4, time_to=$5, location=$6,
            latitude=$7, longitude=$8, required_staff_count=$9, status=$10, updated_at=NOW()
        WHERE id=$11`
	cmd, err := r.pool.Exec(ctx, query,
		event.Name,
		event.Description,
		event.Date,
		event.TimeFrom,
		event.TimeTo,
		event.Location,
		event.Latitude,
		event.Longitude,
		event.RequiredStaffCount,
		event.Status,
		event.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM events WHERE id=$1`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

const eventSelect = `
        SELECT id, agency_id, name, description, date, time_from, time_to, location,
               latitude, longitude, required_staff_count, status, created_at, updated_at
        FROM events`

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	const query = eventSelect + ` WHERE id=$1`
	var event domain.Event
	if err := scanEvent(r.pool.QueryRow(ctx, query, id), &event); err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *eventRepository) ListWithFilter(ctx context.Context, filter EventFilter) ([]domain.Event, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.AgencyID != nil {
		args = append(args, *filter.AgencyID)
		clauses = append(clauses, fmt.Sprintf("agency_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.DateFrom != nil {
		args = append(args, *filter.DateFrom)
		clauses = append(clauses, fmt.Sprintf("date >= $%d", len(args)))
	}
	if filter.DateTo != nil {
		args = append(args, *filter.DateTo)
		clauses = append(clauses, fmt.Sprintf("date <= $%d", len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(name) LIKE %s OR LOWER(location) LIKE %s)", placeholder, placeholder))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY date ASC, created_at DESC LIMIT %d OFFSET %d`,
		eventSelect, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Event
	for rows.Next() {
		var event domain.Event
		if err := scanEvent(rows, &event); err != nil {
			return nil, err
		}
		result = append(result, event)
	}
	return result, rows.Err()
}

func scanEvent(row pgx.Row, event *domain.Event) error {
	return row.Scan(
		&event.ID,
		&event.AgencyID,
		&event.Name,
		&event.Description,
		&event.Date,
		&event.TimeFrom,
		&event.TimeTo,
		&event.Location,
		&event.Latitude,
		&event.Longitude,
		&event.RequiredStaffCount,
		&event.Status,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
}
