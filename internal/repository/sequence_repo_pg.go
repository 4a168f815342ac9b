package repository

import (
	"context"
	"fmt"

	"github.com/Domenick1991/ticketing/internal/idgen"
)

// NextDailySequence atomically bumps the (scope, day) counter. The counter row
// stays locked until the surrounding transaction ends, and a rollback undoes
// the increment, so committed ids are gap-free per day.
func (r *pgQueries) NextDailySequence(ctx context.Context, scope, day string) (int, error) {
	var next int
	err := r.q.QueryRow(ctx, `INSERT INTO daily_sequences (scope, day, value) VALUES ($1, $2, 1)
		ON CONFLICT (scope, day) DO UPDATE SET value = daily_sequences.value + 1
		RETURNING value`, scope, day).Scan(&next)
	return next, err
}

func (r *pgQueries) IdentifierExists(ctx context.Context, scope, value string) (bool, error) {
	var query string
	switch scope {
	case idgen.ScopeBooking:
		query = `SELECT EXISTS (SELECT 1 FROM bookings WHERE booking_id=$1)`
	case idgen.ScopeOrder:
		query = `SELECT EXISTS (SELECT 1 FROM transactions WHERE order_id=$1)`
	default:
		return false, fmt.Errorf("unknown id scope %q", scope)
	}
	var exists bool
	err := r.q.QueryRow(ctx, query, value).Scan(&exists)
	return exists, err
}
