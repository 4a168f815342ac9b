package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBooking_IDParts(t *testing.T) {
	b := Booking{BookingID: "BKG-20251221-001", TotalCents: 20000000}

	assert.Equal(t, "20251221", b.Day())
	assert.Equal(t, "001", b.Sequence())
	assert.Equal(t, int64(20200000), b.GrossCents())

	odd := Booking{BookingID: "legacy"}
	assert.Equal(t, "", odd.Day())
	assert.Equal(t, "legacy", odd.Sequence())
}

func TestEvent_EffectiveAvailability(t *testing.T) {
	tests := []struct {
		name      string
		max       int
		available int
		want      int
	}{
		{name: "normal", max: 10, available: 8, want: 8},
		{name: "above capacity", max: 10, available: 25, want: 10},
		{name: "negative", max: 10, available: -3, want: 0},
		{name: "sold out", max: 10, available: 0, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := Event{MaxParticipants: tt.max, AvailableTickets: tt.available}
			assert.Equal(t, tt.want, e.EffectiveAvailability())
		})
	}
}
