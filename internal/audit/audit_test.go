package audit

import (
	"bytes"
	"context"
	"log"
	"testing"

	"github.com/Domenick1991/ticketing/internal/kafka"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_Record(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(log.New(&buf, "", 0))

	err := l.Record(context.Background(), kafka.PipelineEvent{
		Type:          kafka.EventPaymentStatusChanged,
		BookingID:     "BKG-20251221-001",
		OrderID:       "ORDER-20251221-001",
		Amount:        "202000.00",
		PaymentStatus: "paid",
	})
	require.NoError(t, err)

	assert.Equal(t, "[audit] payment_status_changed booking=BKG-20251221-001 order=ORDER-20251221-001 amount=202000.00 payment_status=paid\n", buf.String())
}

func TestLogger_RecordTickets(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(log.New(&buf, "", 0))

	require.NoError(t, l.Record(context.Background(), kafka.PipelineEvent{
		Type:      kafka.EventTicketsIssued,
		BookingID: "BKG-20251221-001",
		TicketIDs: []string{"TKT-20251221-00101", "TKT-20251221-00102"},
	}))

	assert.Contains(t, buf.String(), "tickets=TKT-20251221-00101,TKT-20251221-00102")
}
