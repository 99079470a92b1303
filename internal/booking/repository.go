package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type dbQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Repository persists booking records and their payment lifecycle transitions.
type Repository struct {
	db dbQuerier
}

// NewRepository creates a repository backed by pgx pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	if pool == nil {
		panic("booking: pgx pool required")
	}
	return &Repository{db: pool}
}

// NewRepositoryWithDB allows injecting mocks for tests.
func NewRepositoryWithDB(db dbQuerier) *Repository {
	if db == nil {
		panic("booking: db required")
	}
	return &Repository{db: db}
}

const bookingColumns = `id, user_id, user_email, practitioner_id, session_type, complaint,
		scheduled_at, amount, currency, status, invoice_id, invoice_url, external_id,
		payment_channel, payment_method, paid_at, created_at, updated_at`

// CreatePending inserts a booking row at checkout handoff time.
func (r *Repository) CreatePending(ctx context.Context, b *Booking) error {
	query := `
		INSERT INTO bookings (id, user_id, user_email, practitioner_id, session_type, complaint,
			scheduled_at, amount, currency, status, invoice_id, invoice_url, external_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at, updated_at
	`
	if err := r.db.QueryRow(ctx, query,
		b.ID,
		b.UserID,
		b.UserEmail,
		b.PractitionerID,
		b.SessionType,
		b.Complaint,
		b.ScheduledAt,
		b.Amount,
		b.Currency,
		StatusPending,
		b.InvoiceID,
		b.InvoiceURL,
		b.ExternalID,
	).Scan(&b.CreatedAt, &b.UpdatedAt); err != nil {
		return fmt.Errorf("booking: insert pending: %w", err)
	}
	b.Status = StatusPending
	return nil
}

// GetByExternalID resolves the booking referenced by a gateway webhook.
func (r *Repository) GetByExternalID(ctx context.Context, externalID string) (*Booking, error) {
	query := fmt.Sprintf("SELECT %s FROM bookings WHERE external_id = $1", bookingColumns)
	return r.scanOne(r.db.QueryRow(ctx, query, externalID))
}

// GetForUser returns a booking scoped to its owner.
func (r *Repository) GetForUser(ctx context.Context, userID, id string) (*Booking, error) {
	query := fmt.Sprintf("SELECT %s FROM bookings WHERE id = $1 AND user_id = $2", bookingColumns)
	return r.scanOne(r.db.QueryRow(ctx, query, id, userID))
}

// ListByUser returns the user's bookings, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID string) ([]*Booking, error) {
	query := fmt.Sprintf("SELECT %s FROM bookings WHERE user_id = $1 ORDER BY created_at DESC", bookingColumns)
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("booking: list by user: %w", err)
	}
	defer rows.Close()

	var out []*Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("booking: list rows: %w", err)
	}
	return out, nil
}

// MarkPaid settles a pending booking from a webhook event.
func (r *Repository) MarkPaid(ctx context.Context, externalID, channel, method string, paidAt time.Time) error {
	query := `
		UPDATE bookings
		SET status = $1, payment_channel = $2, payment_method = $3, paid_at = $4, updated_at = now()
		WHERE external_id = $5
	`
	ct, err := r.db.Exec(ctx, query, StatusPaid, channel, method, paidAt, externalID)
	if err != nil {
		return fmt.Errorf("booking: mark paid: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrBookingNotFound
	}
	return nil
}

// UpdateStatus transitions a booking by gateway reference (expired, failed).
func (r *Repository) UpdateStatus(ctx context.Context, externalID, status string) error {
	query := `UPDATE bookings SET status = $1, updated_at = now() WHERE external_id = $2`
	ct, err := r.db.Exec(ctx, query, status, externalID)
	if err != nil {
		return fmt.Errorf("booking: update status: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrBookingNotFound
	}
	return nil
}

// MarkCompleted finishes a paid booking's consultation session, scoped to the owner.
func (r *Repository) MarkCompleted(ctx context.Context, userID, id string) error {
	query := `
		UPDATE bookings
		SET status = $1, updated_at = now()
		WHERE id = $2 AND user_id = $3 AND status = $4
	`
	ct, err := r.db.Exec(ctx, query, StatusCompleted, id, userID, StatusPaid)
	if err != nil {
		return fmt.Errorf("booking: mark completed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrBookingNotFound
	}
	return nil
}

func (r *Repository) scanOne(row pgx.Row) (*Booking, error) {
	b, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return b, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (*Booking, error) {
	var b Booking
	if err := row.Scan(
		&b.ID,
		&b.UserID,
		&b.UserEmail,
		&b.PractitionerID,
		&b.SessionType,
		&b.Complaint,
		&b.ScheduledAt,
		&b.Amount,
		&b.Currency,
		&b.Status,
		&b.InvoiceID,
		&b.InvoiceURL,
		&b.ExternalID,
		&b.PaymentChannel,
		&b.PaymentMethod,
		&b.PaidAt,
		&b.CreatedAt,
		&b.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("booking: scan failed: %w", err)
	}
	return &b, nil
}
