package audit

import (
	"context"
	"log"
	"strings"

	"github.com/Domenick1991/ticketing/internal/kafka"
)

// Logger writes one audit line per pipeline event consumed by the worker.
type Logger struct {
	logger *log.Logger
}

func NewLogger(logger *log.Logger) *Logger {
	if logger == nil {
		logger = log.Default()
	}
	return &Logger{logger: logger}
}

func (l *Logger) Record(ctx context.Context, event kafka.PipelineEvent) error {
	var b strings.Builder
	b.WriteString("[audit] ")
	b.WriteString(event.Type)
	b.WriteString(" booking=")
	b.WriteString(event.BookingID)
	if event.OrderID != "" {
		b.WriteString(" order=" + event.OrderID)
	}
	if event.Amount != "" {
		b.WriteString(" amount=" + event.Amount)
	}
	if event.BookingStatus != "" {
		b.WriteString(" booking_status=" + event.BookingStatus)
	}
	if event.PaymentStatus != "" {
		b.WriteString(" payment_status=" + event.PaymentStatus)
	}
	if len(event.TicketIDs) > 0 {
		b.WriteString(" tickets=" + strings.Join(event.TicketIDs, ","))
	}
	l.logger.Print(b.String())
	return nil
}
