package appointments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// uniqueViolation is the SQLSTATE Postgres reports when the unique index on
// appointment_number rejects an insert.
const uniqueViolation = "23505"

// DB is the subset of pgxpool.Pool the repository uses. It exists so tests
// can inject pgxmock.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresRepository stores appointments in Postgres.
type PostgresRepository struct {
	db DB
}

// NewPostgresRepository initializes a repository backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("appointments: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

// NewPostgresRepositoryWithDB allows injecting mocks for tests.
func NewPostgresRepositoryWithDB(db DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Insert persists a new row with the given appointment number. A collision on
// the unique index surfaces as ErrDuplicateNumber so the caller can retry
// allocation.
func (r *PostgresRepository) Insert(ctx context.Context, appt *Appointment, number string) (*Appointment, error) {
	id := uuid.New()
	query := `
		INSERT INTO appointments
			(id, appointment_number, full_name, email, phone, preferred_date, preferred_time, service, message)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at
	`
	var createdAt time.Time
	err := r.db.QueryRow(ctx, query,
		id,
		number,
		appt.FullName,
		appt.Email,
		appt.Phone,
		appt.PreferredDate,
		appt.PreferredTime,
		appt.Service,
		appt.Message,
	).Scan(&createdAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, ErrDuplicateNumber
		}
		return nil, fmt.Errorf("appointments: insert failed: %w", err)
	}

	stored := *appt
	stored.ID = id.String()
	stored.AppointmentNumber = number
	stored.CreatedAt = createdAt
	return &stored, nil
}

// Count returns the number of appointments ever created, retired rows
// included. Allocation derives the next sequence from it, so the value must
// never decrease when a record is deleted.
func (r *PostgresRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM appointments`).Scan(&count); err != nil {
		return 0, fmt.Errorf("appointments: count failed: %w", err)
	}
	return count, nil
}

const selectColumns = `id, appointment_number, full_name, email, phone, preferred_date, preferred_time, service, message, created_at`

// GetByID fetches a single live appointment.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Appointment, error) {
	query := `SELECT ` + selectColumns + ` FROM appointments WHERE id = $1 AND deleted_at IS NULL`
	appt, err := scanAppointment(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("appointments: select failed: %w", err)
	}
	return appt, nil
}

// List returns a page of appointments newest first plus the total count.
func (r *PostgresRepository) List(ctx context.Context, filter ListFilter) ([]*Appointment, int64, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}

	query := `SELECT ` + selectColumns + ` FROM appointments WHERE deleted_at IS NULL ORDER BY created_at DESC, appointment_number DESC LIMIT $1 OFFSET $2`
	rows, err := r.db.Query(ctx, query, limit, filter.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("appointments: list failed: %w", err)
	}
	defer rows.Close()

	var out []*Appointment
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("appointments: scan failed: %w", err)
		}
		out = append(out, appt)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("appointments: list rows: %w", err)
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM appointments WHERE deleted_at IS NULL`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("appointments: live count failed: %w", err)
	}
	return out, total, nil
}

// Delete retires a row. The row stays in the table so its appointment number
// remains in the unique index and is never reissued.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `UPDATE appointments SET deleted_at = now() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("appointments: delete failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var appt Appointment
	if err := row.Scan(
		&appt.ID,
		&appt.AppointmentNumber,
		&appt.FullName,
		&appt.Email,
		&appt.Phone,
		&appt.PreferredDate,
		&appt.PreferredTime,
		&appt.Service,
		&appt.Message,
		&appt.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &appt, nil
}

var _ Repository = (*PostgresRepository)(nil)
