package domain

import "time"

type EventStatus string

const (
	EventStatusDraft     EventStatus = "draft"
	EventStatusPublished EventStatus = "published"
	EventStatusCancelled EventStatus = "cancelled"
	EventStatusCompleted EventStatus = "completed"
)

type Event struct {
	ID               int64       `json:"id"`
	Title            string      `json:"title"`
	Location         string      `json:"location"`
	Address          string      `json:"address"`
	StartDate        time.Time   `json:"start_date"`
	EndDate          time.Time   `json:"end_date"`
	PriceCents       int64       `json:"price_cents"`
	MaxParticipants  int         `json:"max_participants"`
	AvailableTickets int         `json:"available_tickets"`
	Status           EventStatus `json:"status"`
	OrganizerID      int64       `json:"organizer_id"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

// EffectiveAvailability clamps available_tickets into [0, max_participants],
// so a previously corrupted stock value can never oversell.
func (e *Event) EffectiveAvailability() int {
	available := e.AvailableTickets
	if e.MaxParticipants > 0 && available > e.MaxParticipants {
		available = e.MaxParticipants
	}
	if available < 0 {
		available = 0
	}
	return available
}
