package repository

import (
	"context"

	"github.com/Domenick1991/ticketing/internal/domain"
)

const ticketColumns = `t.id, t.ticket_id, t.booking_id, t.qr_code, t.status, t.checked_in_at, t.checked_in_by, t.created_at, t.updated_at`

// CountTickets must run after the owning booking row is locked; Postgres does
// not allow FOR UPDATE together with aggregates.
func (r *pgQueries) CountTickets(ctx context.Context, bookingID int64) (int, error) {
	var n int
	err := r.q.QueryRow(ctx, `SELECT count(*) FROM tickets WHERE booking_id=$1`, bookingID).Scan(&n)
	return n, err
}

func (r *pgQueries) InsertTicket(ctx context.Context, ticket *domain.Ticket) error {
	if ticket.Status == "" {
		ticket.Status = domain.TicketStatusActive
	}
	return r.q.QueryRow(ctx, `INSERT INTO tickets (ticket_id, booking_id, qr_code, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`,
		ticket.TicketID, ticket.BookingID, ticket.QRCode, ticket.Status).
		Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *pgQueries) ListTicketsByUser(ctx context.Context, userID int64, limit int) ([]domain.Ticket, error) {
	rows, err := r.q.Query(ctx, `SELECT `+ticketColumns+` FROM tickets t
		JOIN bookings b ON b.id = t.booking_id
		WHERE b.user_id=$1 ORDER BY t.id DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tickets := make([]domain.Ticket, 0)
	for rows.Next() {
		var t domain.Ticket
		if err := rows.Scan(&t.ID, &t.TicketID, &t.BookingID, &t.QRCode, &t.Status, &t.CheckedInAt,
			&t.CheckedInBy, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}
