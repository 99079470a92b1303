package diagnosis

import (
	"context"
	"testing"
	"time"

	pgx "github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepo(t *testing.T) (*Repository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewRepositoryWithDB(mock), mock
}

func TestStartProcessing(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("INSERT INTO diagnoses").
		WithArgs("bk-1", "user-1", StatusProcessing).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.StartProcessing(context.Background(), "bk-1", "user-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestComplete(t *testing.T) {
	repo, mock := newMockRepo(t)
	a := &Assessment{
		Summary:         "ringkasan",
		Recommendations: []string{"istirahat cukup"},
		Severity:        SeverityMedium,
		NextSteps:       "follow-up dalam 2 minggu",
	}

	mock.ExpectExec("UPDATE diagnoses").
		WithArgs(StatusCompleted, a.Summary, a.Recommendations, a.Severity, a.NextSteps, "bk-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, repo.Complete(context.Background(), "bk-1", a))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCompleteUnknownBooking(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("UPDATE diagnoses").
		WithArgs(StatusCompleted, "s", []string(nil), SeverityLow, "", "ghost").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.Complete(context.Background(), "ghost", &Assessment{Summary: "s", Severity: SeverityLow})
	require.ErrorIs(t, err, ErrDiagnosisNotFound)
}

func TestMarkFailed(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("UPDATE diagnoses").
		WithArgs(StatusFailed, "bk-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, repo.MarkFailed(context.Background(), "bk-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetForUser(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()
	completedAt := now.Add(-time.Minute)

	mock.ExpectQuery("SELECT (.+) FROM diagnoses").
		WithArgs("bk-1", "user-1").
		WillReturnRows(pgxmock.NewRows([]string{
			"booking_id", "user_id", "status", "summary", "recommendations",
			"severity", "next_steps", "completed_at", "created_at", "updated_at",
		}).AddRow(
			"bk-1", "user-1", StatusCompleted, "ringkasan", []string{"istirahat cukup"},
			SeverityMedium, "follow-up", &completedAt, now, now,
		))

	got, err := repo.GetForUser(context.Background(), "user-1", "bk-1")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, got.Status)
	assert.Equal(t, []string{"istirahat cukup"}, got.Recommendations)
	assert.Equal(t, SeverityMedium, got.Severity)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetForUserMissing(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT (.+) FROM diagnoses").
		WithArgs("ghost", "user-1").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetForUser(context.Background(), "user-1", "ghost")
	require.ErrorIs(t, err, ErrDiagnosisNotFound)
}
