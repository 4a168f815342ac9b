package repository

import (
	"context"

	"github.com/Domenick1991/ticketing/internal/domain"
)

const eventColumns = `id, title, location, address, start_date, end_date, price_cents, max_participants, available_tickets, status, organizer_id, created_at, updated_at`

func scanEvent(row interface{ Scan(dest ...any) error }) (*domain.Event, error) {
	var e domain.Event
	if err := row.Scan(&e.ID, &e.Title, &e.Location, &e.Address, &e.StartDate, &e.EndDate, &e.PriceCents,
		&e.MaxParticipants, &e.AvailableTickets, &e.Status, &e.OrganizerID, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *pgQueries) GetEvent(ctx context.Context, id int64) (*domain.Event, error) {
	e, err := scanEvent(r.q.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id=$1`, id))
	if err != nil {
		return nil, notFound(err, "event")
	}
	return e, nil
}

func (r *pgQueries) LockEvent(ctx context.Context, id int64) (*domain.Event, error) {
	e, err := scanEvent(r.q.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id=$1 FOR UPDATE`, id))
	if err != nil {
		return nil, notFound(err, "event")
	}
	return e, nil
}

func (r *pgQueries) SaveEventStock(ctx context.Context, event *domain.Event) error {
	return r.q.QueryRow(ctx, `UPDATE events SET max_participants=$1, available_tickets=$2, updated_at=now() WHERE id=$3 RETURNING updated_at`,
		event.MaxParticipants, event.AvailableTickets, event.ID).Scan(&event.UpdatedAt)
}

// SumActiveQuantity counts tickets held by pending and confirmed bookings.
func (r *pgQueries) SumActiveQuantity(ctx context.Context, eventID int64) (int, error) {
	var sum int
	err := r.q.QueryRow(ctx, `SELECT COALESCE(SUM(quantity), 0) FROM bookings WHERE event_id=$1 AND status IN ($2, $3)`,
		eventID, domain.BookingStatusPending, domain.BookingStatusConfirmed).Scan(&sum)
	return sum, err
}
