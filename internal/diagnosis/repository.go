package diagnosis

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type dbQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Repository persists diagnoses keyed by booking.
type Repository struct {
	db dbQuerier
}

// NewRepository creates a repository backed by pgx pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	if pool == nil {
		panic("diagnosis: pgx pool required")
	}
	return &Repository{db: pool}
}

// NewRepositoryWithDB allows injecting mocks for tests.
func NewRepositoryWithDB(db dbQuerier) *Repository {
	if db == nil {
		panic("diagnosis: db required")
	}
	return &Repository{db: db}
}

// StartProcessing upserts the row into the processing state. A re-request
// overwrites a previous verdict, so a failed analysis can be retried.
func (r *Repository) StartProcessing(ctx context.Context, bookingID, userID string) error {
	query := `
		INSERT INTO diagnoses (booking_id, user_id, status)
		VALUES ($1, $2, $3)
		ON CONFLICT (booking_id) DO UPDATE
		SET status = $3, summary = NULL, recommendations = NULL, severity = NULL,
			next_steps = NULL, completed_at = NULL, updated_at = now()
	`
	if _, err := r.db.Exec(ctx, query, bookingID, userID, StatusProcessing); err != nil {
		return fmt.Errorf("diagnosis: start processing: %w", err)
	}
	return nil
}

// Complete stores the analyzer's verdict.
func (r *Repository) Complete(ctx context.Context, bookingID string, a *Assessment) error {
	query := `
		UPDATE diagnoses
		SET status = $1, summary = $2, recommendations = $3, severity = $4,
			next_steps = $5, completed_at = now(), updated_at = now()
		WHERE booking_id = $6
	`
	ct, err := r.db.Exec(ctx, query, StatusCompleted, a.Summary, a.Recommendations, a.Severity, a.NextSteps, bookingID)
	if err != nil {
		return fmt.Errorf("diagnosis: complete: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrDiagnosisNotFound
	}
	return nil
}

// MarkFailed records an analysis failure so clients stop polling.
func (r *Repository) MarkFailed(ctx context.Context, bookingID string) error {
	query := `UPDATE diagnoses SET status = $1, updated_at = now() WHERE booking_id = $2`
	ct, err := r.db.Exec(ctx, query, StatusFailed, bookingID)
	if err != nil {
		return fmt.Errorf("diagnosis: mark failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrDiagnosisNotFound
	}
	return nil
}

// GetForUser returns a diagnosis scoped to its owner.
func (r *Repository) GetForUser(ctx context.Context, userID, bookingID string) (*Diagnosis, error) {
	query := `
		SELECT booking_id, user_id, status, COALESCE(summary, ''), recommendations,
			COALESCE(severity, ''), COALESCE(next_steps, ''), completed_at, created_at, updated_at
		FROM diagnoses
		WHERE booking_id = $1 AND user_id = $2
	`
	var d Diagnosis
	if err := r.db.QueryRow(ctx, query, bookingID, userID).Scan(
		&d.BookingID,
		&d.UserID,
		&d.Status,
		&d.Summary,
		&d.Recommendations,
		&d.Severity,
		&d.NextSteps,
		&d.CompletedAt,
		&d.CreatedAt,
		&d.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDiagnosisNotFound
		}
		return nil, fmt.Errorf("diagnosis: get: %w", err)
	}
	return &d, nil
}
