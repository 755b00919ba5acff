package appointments

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"
)

func newMockRepo(t *testing.T) (*PostgresRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewPostgresRepositoryWithDB(mock), mock
}

func TestPostgresInsertReturnsRecord(t *testing.T) {
	repo, mock := newMockRepo(t)
	appt := testAppointment()
	createdAt := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO appointments")).
		WithArgs(pgxmock.AnyArg(), "APT-000001", appt.FullName, appt.Email, appt.Phone,
			appt.PreferredDate, appt.PreferredTime, appt.Service, appt.Message).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(createdAt))

	created, err := repo.Insert(context.Background(), appt, "APT-000001")
	require.NoError(t, err)
	require.Equal(t, "APT-000001", created.AppointmentNumber)
	require.NotEmpty(t, created.ID)
	require.Equal(t, createdAt, created.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresInsertMapsUniqueViolation(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO appointments")).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "appointments_number_uq"})

	_, err := repo.Insert(context.Background(), testAppointment(), "APT-000001")
	require.ErrorIs(t, err, ErrDuplicateNumber)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCount(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM appointments")).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(42)))

	count, err := repo.Count(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(42), count)
}

func TestPostgresGetByIDNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM appointments WHERE id =")).
		WithArgs("nope").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "nope")
	require.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestPostgresDeleteRetiresRow(t *testing.T) {
	repo, mock := newMockRepo(t)

	// Deletes retire the row in place; the appointment number must stay in
	// the unique index.
	mock.ExpectExec(regexp.QuoteMeta("UPDATE appointments SET deleted_at = now() WHERE id = $1 AND deleted_at IS NULL")).
		WithArgs("some-id").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, repo.Delete(context.Background(), "some-id"))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE appointments SET deleted_at = now()")).
		WithArgs("missing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.Delete(context.Background(), "missing")
	require.ErrorIs(t, err, ErrAppointmentNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetByIDExcludesRetired(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1 AND deleted_at IS NULL")).
		WithArgs("retired-id").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "retired-id")
	require.ErrorIs(t, err, ErrAppointmentNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresInsertWrapsOtherErrors(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO appointments")).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(errors.New("connection reset"))

	_, err := repo.Insert(context.Background(), testAppointment(), "APT-000001")
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrDuplicateNumber)
}
