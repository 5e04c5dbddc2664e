package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"trimline/internal/domain/booking"
	"trimline/internal/infra"
)

const bookingColumns = `
	id, resource_id, customer_id, booking_date, mode,
	fixed_time_min, queue_position, priority, duration_min, status,
	created_at, updated_at`

type BookingRepository struct {
	pool *pgxpool.Pool
}

func NewBookingRepository(pool *pgxpool.Pool) *BookingRepository {
	return &BookingRepository{pool: pool}
}

func (r *BookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*booking.Booking, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE id = $1`, id)

	b, err := scanBooking(row)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find booking by id", err)
	}
	return b, nil
}

// FindActive loads every booking that belongs on the given resource-day
// timeline, ordered so the result is stable across rebuilds.
func (r *BookingRepository) FindActive(ctx context.Context, resourceID uuid.UUID, date booking.Date) ([]*booking.Booking, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE resource_id = $1
		  AND booking_date = $2
		  AND status = ANY($3)
		ORDER BY created_at, id`,
		resourceID, date.Time(), statusStrings(booking.ActiveStatuses()))
	if err != nil {
		return nil, infra.WrapRepoErr("failed to query active bookings", err)
	}
	defer rows.Close()

	return collectBookings(rows)
}

func (r *BookingRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID, date booking.Date) ([]*booking.Booking, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE customer_id = $1
		  AND booking_date = $2
		ORDER BY created_at, id`,
		customerID, date.Time())
	if err != nil {
		return nil, infra.WrapRepoErr("failed to query customer bookings", err)
	}
	defer rows.Close()

	return collectBookings(rows)
}

func (r *BookingRepository) Create(ctx context.Context, b *booking.Booking) error {
	if _, err := r.pool.Exec(ctx, insertBookingSQL, insertBookingArgs(b)...); err != nil {
		return infra.WrapRepoErr("failed to insert booking", err)
	}
	return nil
}

// CreateShifting inserts a queue booking after bumping every active queue
// entry at or beyond shiftFrom by one. Both statements run in one
// transaction so a concurrent reader never sees two bookings sharing a
// position.
func (r *BookingRepository) CreateShifting(ctx context.Context, b *booking.Booking, shiftFrom int) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return infra.WrapRepoErr("failed to begin transaction", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		UPDATE bookings
		SET queue_position = queue_position + 1,
		    updated_at = $4
		WHERE resource_id = $1
		  AND booking_date = $2
		  AND mode = 'queue'
		  AND queue_position >= $3
		  AND status = ANY($5)`,
		b.ResourceID(), b.Date().Time(), shiftFrom, time.Now().UTC(),
		statusStrings(booking.ActiveStatuses()))
	if err != nil {
		return infra.WrapRepoErr("failed to shift queue positions", err)
	}

	if _, err := tx.Exec(ctx, insertBookingSQL, insertBookingArgs(b)...); err != nil {
		return infra.WrapRepoErr("failed to insert booking", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return infra.WrapRepoErr("failed to commit booking insert", err)
	}
	return nil
}

func (r *BookingRepository) UpdateStatus(ctx context.Context, b *booking.Booking) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE bookings
		SET status = $2, updated_at = $3
		WHERE id = $1`,
		b.ID(), b.Status().String(), b.UpdatedAt())
	if err != nil {
		return infra.WrapRepoErr("failed to update booking status", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.NotFoundErr("booking not found for status update")
	}
	return nil
}

// RenumberQueue closes the hole a cancellation leaves: active queue entries
// are re-ranked densely from 1 in their current order.
func (r *BookingRepository) RenumberQueue(ctx context.Context, resourceID uuid.UUID, date booking.Date) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE bookings b
		SET queue_position = ranked.rank,
		    updated_at = $3
		FROM (
			SELECT id, ROW_NUMBER() OVER (ORDER BY queue_position, created_at, id) AS rank
			FROM bookings
			WHERE resource_id = $1
			  AND booking_date = $2
			  AND mode = 'queue'
			  AND status = ANY($4)
		) ranked
		WHERE b.id = ranked.id
		  AND b.queue_position <> ranked.rank`,
		resourceID, date.Time(), time.Now().UTC(), statusStrings(booking.ActiveStatuses()))
	if err != nil {
		return infra.WrapRepoErr("failed to renumber queue", err)
	}
	return nil
}

// ShiftFixedTimes moves the stored start of the given scheduled bookings by
// delta minutes. Queue entries derive their slots at read time and need no
// persisted shift.
func (r *BookingRepository) ShiftFixedTimes(ctx context.Context, ids []uuid.UUID, delta int) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.pool.Exec(ctx, `
		UPDATE bookings
		SET fixed_time_min = fixed_time_min + $2,
		    updated_at = $3
		WHERE id = ANY($1)
		  AND mode = 'scheduled'`,
		ids, delta, time.Now().UTC())
	if err != nil {
		return infra.WrapRepoErr("failed to shift fixed times", err)
	}
	return nil
}

const insertBookingSQL = `
	INSERT INTO bookings (
		id, resource_id, customer_id, booking_date, mode,
		fixed_time_min, queue_position, priority, duration_min, status,
		created_at, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

func insertBookingArgs(b *booking.Booking) []any {
	var fixedTime, queuePos *int
	if v, ok := b.FixedTime(); ok {
		fixedTime = &v
	}
	if v, ok := b.QueuePosition(); ok {
		queuePos = &v
	}
	return []any{
		b.ID(), b.ResourceID(), b.CustomerID(), b.Date().Time(), b.Mode().String(),
		fixedTime, queuePos, b.Priority().String(), b.DurationMinutes(), b.Status().String(),
		b.CreatedAt(), b.UpdatedAt(),
	}
}

func scanBooking(row pgx.Row) (*booking.Booking, error) {
	var (
		id, resourceID, customerID uuid.UUID
		bookingDate                time.Time
		mode, priority, status     string
		fixedTime, queuePos        *int
		duration                   int
		createdAt, updatedAt       time.Time
	)
	err := row.Scan(
		&id, &resourceID, &customerID, &bookingDate, &mode,
		&fixedTime, &queuePos, &priority, &duration, &status,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}
	return booking.Reconstruct(
		id, resourceID, customerID,
		booking.DateOf(bookingDate),
		booking.Mode(mode),
		fixedTime, queuePos,
		booking.Priority(priority),
		duration,
		booking.Status(status),
		createdAt, updatedAt,
	)
}

func collectBookings(rows pgx.Rows) ([]*booking.Booking, error) {
	var out []*booking.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan booking row", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate booking rows", err)
	}
	return out, nil
}

func statusStrings(statuses []booking.Status) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = s.String()
	}
	return out
}
