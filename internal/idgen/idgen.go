// Package idgen produces the short, day-bucketed identifiers shown to customers
// and sent to the payment gateway: BKG-20251221-001, ORDER-20251221-001 and
// ticket ids derived from the booking sequence.
package idgen

import (
	"context"
	"fmt"
	"time"

	"github.com/Domenick1991/ticketing/internal/domain"
)

const (
	ScopeBooking = "booking"
	ScopeOrder   = "order"
)

// MaxAttempts bounds how many sequence values a Generator draws before giving up.
const MaxAttempts = 5

const dayLayout = "20060102"

// MaxTicketsPerBooking is the largest ticket index whose id still fits
// domain.MaxTicketIDLength after a three-digit booking sequence.
const MaxTicketsPerBooking = 9999

// Sequencer is implemented by the storage transaction. NextDailySequence must be
// an atomic increment of the (scope, day) counter so concurrent writers never
// observe the same value.
type Sequencer interface {
	NextDailySequence(ctx context.Context, scope, day string) (int, error)
	IdentifierExists(ctx context.Context, scope, value string) (bool, error)
}

type Generator struct {
	prefix string
	scope  string
	now    func() time.Time
}

func NewBookingIDs(now func() time.Time) *Generator {
	return newGenerator("BKG", ScopeBooking, now)
}

func NewOrderIDs(now func() time.Time) *Generator {
	return newGenerator("ORDER", ScopeOrder, now)
}

func newGenerator(prefix, scope string, now func() time.Time) *Generator {
	if now == nil {
		now = time.Now
	}
	return &Generator{prefix: prefix, scope: scope, now: now}
}

// Next draws the next id for today. Existing rows (for example data imported
// before the counter table existed) are skipped; after MaxAttempts the call
// fails with domain.ErrInternal.
func (g *Generator) Next(ctx context.Context, seq Sequencer) (string, error) {
	day := g.now().UTC().Format(dayLayout)
	for attempt := 0; attempt < MaxAttempts; attempt++ {
		n, err := seq.NextDailySequence(ctx, g.scope, day)
		if err != nil {
			return "", fmt.Errorf("next %s sequence: %w", g.scope, err)
		}
		candidate := Format(g.prefix, day, n)
		exists, err := seq.IdentifierExists(ctx, g.scope, candidate)
		if err != nil {
			return "", fmt.Errorf("check %s id: %w", g.scope, err)
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: failed to generate unique %s id", domain.ErrInternal, g.scope)
}

func Format(prefix, day string, n int) string {
	return fmt.Sprintf("%s-%s-%03d", prefix, day, n)
}

// TicketID builds TKT-<day><bookingSeq><NN> for the index-th ticket (1-based) of
// a booking. The day is taken from the booking id so two bookings sharing a
// sequence number on different days can never produce the same ticket id.
func TicketID(b *domain.Booking, index int) (string, error) {
	day := b.Day()
	if day == "" {
		day = b.CreatedAt.UTC().Format(dayLayout)
	}
	id := fmt.Sprintf("TKT-%s-%s%02d", day, b.Sequence(), index)
	if len(id) > domain.MaxTicketIDLength {
		return "", fmt.Errorf("%w: ticket id %q exceeds %d characters", domain.ErrInternal, id, domain.MaxTicketIDLength)
	}
	return id, nil
}
