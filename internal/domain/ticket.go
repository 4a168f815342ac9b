package domain

import "time"

type TicketStatus string

const (
	TicketStatusActive    TicketStatus = "active"
	TicketStatusUsed      TicketStatus = "used"
	TicketStatusCancelled TicketStatus = "cancelled"
)

// MaxTicketIDLength matches the tickets.ticket_id column width.
const MaxTicketIDLength = 20

type Ticket struct {
	ID          int64
	TicketID    string
	BookingID   int64
	QRCode      string
	Status      TicketStatus
	CheckedInAt *time.Time
	CheckedInBy *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
