package domain

import (
	"strings"
	"time"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

type Booking struct {
	ID            int64
	BookingID     string
	EventID       int64
	UserID        int64
	Quantity      int
	TotalCents    int64
	CustomerName  string
	CustomerEmail string
	CustomerPhone *string
	Gender        *string
	Status        BookingStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// GrossCents is the amount charged through the gateway: booking total plus service fee.
func (b *Booking) GrossCents() int64 {
	return b.TotalCents + ServiceFeeCents
}

// Sequence returns the trailing day-sequence of the human readable id ("001" of BKG-20251221-001).
func (b *Booking) Sequence() string {
	i := strings.LastIndex(b.BookingID, "-")
	if i < 0 {
		return b.BookingID
	}
	return b.BookingID[i+1:]
}

// Day returns the YYYYMMDD bucket embedded in the booking id.
func (b *Booking) Day() string {
	parts := strings.Split(b.BookingID, "-")
	if len(parts) != 3 {
		return ""
	}
	return parts[1]
}
