package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/staffing-service/internal/domain"
)

// PaymentRepository manages event payment records and payout aggregates.
type PaymentRepository interface {
	// CreateBatch inserts all rows of a payment batch in one transaction.
	// It locks the event row and re-checks the already-paid guard inside
	// the transaction, returning ErrEventAlreadyPaid when any payment
	// exists. No partial commits.
	CreateBatch(ctx context.Context, eventID string, payments []*domain.EventPayment) error
	ExistsForEvent(ctx context.Context, eventID string) (bool, error)
	ListByEvent(ctx context.Context, eventID string) ([]domain.EventPayment, error)
	ListByUser(ctx context.Context, userID string) ([]domain.EventPayment, error)
	LastPaymentForUser(ctx context.Context, userID, excludeEventID string) (*domain.EventPayment, error)
	TotalForUser(ctx context.Context, userID string) (float64, error)
	TotalForEvent(ctx context.Context, eventID string) (float64, error)
	StaffTotalsByAgency(ctx context.Context, agencyID string) ([]domain.StaffPayoutTotal, error)
}

type paymentRepository struct {
	pool *pgxpool.Pool
}

// NewPaymentRepository instantiates the repository.
func NewPaymentRepository(pool *pgxpool.Pool) PaymentRepository {
	return &paymentRepository{pool: pool}
}

func (r *paymentRepository) CreateBatch(ctx context.Context, eventID string, payments []*domain.EventPayment) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	// serialize concurrent batches for the same event
	var lockedID string
	if err := tx.QueryRow(ctx, `SELECT id FROM events WHERE id=$1 FOR UPDATE`, eventID).Scan(&lockedID); err != nil {
		return err
	}

	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM event_payments WHERE event_id=$1)`, eventID).Scan(&exists); err != nil {
		return err
	}
	if exists {
		return ErrEventAlreadyPaid
	}

	const insert = `
        INSERT INTO event_payments (event_id, user_id, paid_by_user_id, hours_worked, hourly_rate, amount, notes, paid_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at`
	for _, payment := range payments {
		if err := tx.QueryRow(ctx, insert,
			payment.EventID,
			payment.UserID,
			payment.PaidByUserID,
			payment.HoursWorked,
			payment.HourlyRate,
			payment.Amount,
			payment.Notes,
			payment.PaidAt,
		).Scan(&payment.ID, &payment.CreatedAt); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *paymentRepository) ExistsForEvent(ctx context.Context, eventID string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM event_payments WHERE event_id=$1)`
	var exists bool
	err := r.pool.QueryRow(ctx, query, eventID).Scan(&exists)
	return exists, err
}

const paymentSelect = `
        SELECT id, event_id, user_id, paid_by_user_id, hours_worked, hourly_rate, amount, notes, paid_at, created_at
        FROM event_payments`

func (r *paymentRepository) ListByEvent(ctx context.Context, eventID string) ([]domain.EventPayment, error) {
	const query = paymentSelect + ` WHERE event_id=$1 ORDER BY created_at ASC`
	return r.list(ctx, query, eventID)
}

func (r *paymentRepository) ListByUser(ctx context.Context, userID string) ([]domain.EventPayment, error) {
	const query = paymentSelect + ` WHERE user_id=$1 ORDER BY paid_at DESC`
	return r.list(ctx, query, userID)
}

// LastPaymentForUser returns the user's most recent payment on another
// event, nil when they have none. Used to seed default rates and amounts.
func (r *paymentRepository) LastPaymentForUser(ctx context.Context, userID, excludeEventID string) (*domain.EventPayment, error) {
	const query = paymentSelect + `
        WHERE user_id=$1 AND event_id<>$2
        ORDER BY paid_at DESC LIMIT 1`
	var payment domain.EventPayment
	err := r.pool.QueryRow(ctx, query, userID, excludeEventID).Scan(
		&payment.ID,
		&payment.EventID,
		&payment.UserID,
		&payment.PaidByUserID,
		&payment.HoursWorked,
		&payment.HourlyRate,
		&payment.Amount,
		&payment.Notes,
		&payment.PaidAt,
		&payment.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) TotalForUser(ctx context.Context, userID string) (float64, error) {
	const query = `SELECT COALESCE(SUM(amount), 0) FROM event_payments WHERE user_id=$1`
	var total float64
	err := r.pool.QueryRow(ctx, query, userID).Scan(&total)
	return total, err
}

func (r *paymentRepository) TotalForEvent(ctx context.Context, eventID string) (float64, error) {
	const query = `SELECT COALESCE(SUM(amount), 0) FROM event_payments WHERE event_id=$1`
	var total float64
	err := r.pool.QueryRow(ctx, query, eventID).Scan(&total)
	return total, err
}

func (r *paymentRepository) StaffTotalsByAgency(ctx context.Context, agencyID string) ([]domain.StaffPayoutTotal, error) {
	const query = `
        SELECT p.user_id, u.name, COUNT(*), COALESCE(SUM(p.hours_worked), 0), COALESCE(SUM(p.amount), 0)
        FROM event_payments p
        JOIN events e ON e.id = p.event_id
        JOIN users u ON u.id = p.user_id
        WHERE e.agency_id = $1
        GROUP BY p.user_id, u.name
        ORDER BY u.name ASC`
	rows, err := r.pool.Query(ctx, query, agencyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.StaffPayoutTotal
	for rows.Next() {
		var total domain.StaffPayoutTotal
		if err := rows.Scan(
			&total.UserID,
			&total.UserName,
			&total.PaymentCount,
			&total.TotalHours,
			&total.TotalAmount,
		); err != nil {
			return nil, err
		}
		result = append(result, total)
	}
	return result, rows.Err()
}

func (r *paymentRepository) list(ctx context.Context, query string, arg any) ([]domain.EventPayment, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.EventPayment
	for rows.Next() {
		var payment domain.EventPayment
		if err := rows.Scan(
			&payment.ID,
			&payment.EventID,
			&payment.UserID,
			&payment.PaidByUserID,
			&payment.HoursWorked,
			&payment.HourlyRate,
			&payment.Amount,
			&payment.Notes,
			&payment.PaidAt,
			&payment.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, payment)
	}
	return result, rows.Err()
}
