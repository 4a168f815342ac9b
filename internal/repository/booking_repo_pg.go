package repository

import (
	"context"
	"fmt"

	"github.com/Domenick1991/ticketing/internal/domain"
)

const bookingColumns = `id, booking_id, event_id, user_id, quantity, total_cents, customer_name, customer_email, customer_phone, gender, status, created_at, updated_at`

func scanBooking(row interface{ Scan(dest ...any) error }) (*domain.Booking, error) {
	var b domain.Booking
	if err := row.Scan(&b.ID, &b.BookingID, &b.EventID, &b.UserID, &b.Quantity, &b.TotalCents, &b.CustomerName,
		&b.CustomerEmail, &b.CustomerPhone, &b.Gender, &b.Status, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *pgQueries) InsertBooking(ctx context.Context, booking *domain.Booking) error {
	if booking.Status == "" {
		booking.Status = domain.BookingStatusPending
	}
	return r.q.QueryRow(ctx, `INSERT INTO bookings (booking_id, event_id, user_id, quantity, total_cents, customer_name, customer_email, customer_phone, gender, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at`,
		booking.BookingID, booking.EventID, booking.UserID, booking.Quantity, booking.TotalCents, booking.CustomerName,
		booking.CustomerEmail, booking.CustomerPhone, booking.Gender, booking.Status).
		Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt)
}

func (r *pgQueries) GetBooking(ctx context.Context, id int64) (*domain.Booking, error) {
	b, err := scanBooking(r.q.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id=$1`, id))
	if err != nil {
		return nil, notFound(err, "booking")
	}
	return b, nil
}

func (r *pgQueries) LockBooking(ctx context.Context, id int64) (*domain.Booking, error) {
	b, err := scanBooking(r.q.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id=$1 FOR UPDATE`, id))
	if err != nil {
		return nil, notFound(err, "booking")
	}
	return b, nil
}

func (r *pgQueries) UpdateBookingStatus(ctx context.Context, id int64, status domain.BookingStatus) error {
	cmd, err := r.q.Exec(ctx, `UPDATE bookings SET status=$1, updated_at=now() WHERE id=$2`, status, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: booking %d", domain.ErrNotFound, id)
	}
	return nil
}

func (r *pgQueries) ListBookingsByUser(ctx context.Context, userID int64, limit int) ([]domain.Booking, error) {
	rows, err := r.q.Query(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE user_id=$1 ORDER BY id DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}
