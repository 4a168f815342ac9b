// Package testutil provides an in-memory repository.Store for pipeline tests.
package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Domenick1991/ticketing/internal/domain"
	"github.com/Domenick1991/ticketing/internal/idgen"
	"github.com/Domenick1991/ticketing/internal/repository"
)

type memState struct {
	events       map[int64]domain.Event
	bookings     map[int64]domain.Booking
	transactions map[int64]domain.Transaction
	tickets      map[int64]domain.Ticket
	sequences    map[string]int
	lastID       int64
}

func (s *memState) clone() *memState {
	c := &memState{
		events:       make(map[int64]domain.Event, len(s.events)),
		bookings:     make(map[int64]domain.Booking, len(s.bookings)),
		transactions: make(map[int64]domain.Transaction, len(s.transactions)),
		tickets:      make(map[int64]domain.Ticket, len(s.tickets)),
		sequences:    make(map[string]int, len(s.sequences)),
		lastID:       s.lastID,
	}
	for k, v := range s.events {
		c.events[k] = v
	}
	for k, v := range s.bookings {
		c.bookings[k] = v
	}
	for k, v := range s.transactions {
		c.transactions[k] = v
	}
	for k, v := range s.tickets {
		c.tickets[k] = v
	}
	for k, v := range s.sequences {
		c.sequences[k] = v
	}
	return c
}

// MemStore serializes every transaction behind one mutex, which gives the
// same outcome as row locks for single-process tests. A failed transaction
// restores the snapshot taken when it began.
type MemStore struct {
	mu     sync.Mutex
	state  *memState
	faults map[string]error
	Now    func() time.Time
}

func NewMemStore() *MemStore {
	return &MemStore{
		state: &memState{
			events:       map[int64]domain.Event{},
			bookings:     map[int64]domain.Booking{},
			transactions: map[int64]domain.Transaction{},
			tickets:      map[int64]domain.Ticket{},
			sequences:    map[string]int{},
		},
		faults: map[string]error{},
		Now:    time.Now,
	}
}

// FailOn makes the named Tx method return err until cleared with a nil err.
func (m *MemStore) FailOn(method string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.faults, method)
		return
	}
	m.faults[method] = err
}

func (m *MemStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx repository.Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.state.clone()
	if err := fn(ctx, &memTx{store: m}); err != nil {
		m.state = snapshot
		return err
	}
	return nil
}

func (m *MemStore) read() *memTx {
	return &memTx{store: m}
}

func (m *MemStore) GetEvent(ctx context.Context, id int64) (*domain.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.read().GetEvent(ctx, id)
}

func (m *MemStore) GetBooking(ctx context.Context, id int64) (*domain.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.read().GetBooking(ctx, id)
}

func (m *MemStore) LatestTransaction(ctx context.Context, bookingID int64) (*domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.read().LatestTransaction(ctx, bookingID)
}

func (m *MemStore) ListBookingsByUser(ctx context.Context, userID int64, limit int) ([]domain.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.read().ListBookingsByUser(ctx, userID, limit)
}

func (m *MemStore) ListTicketsByUser(ctx context.Context, userID int64, limit int) ([]domain.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.read().ListTicketsByUser(ctx, userID, limit)
}

func (m *MemStore) ListStaleSessions(ctx context.Context, createdBefore time.Time, limit int) ([]domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.read().ListStaleSessions(ctx, createdBefore, limit)
}

// Fixture helpers.

func (m *MemStore) AddEvent(e domain.Event) domain.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.lastID++
	e.ID = m.state.lastID
	now := m.Now().UTC()
	e.CreatedAt, e.UpdatedAt = now, now
	m.state.events[e.ID] = e
	return e
}

// SetSequence moves the (scope, day) counter, as if n ids had already been drawn.
func (m *MemStore) SetSequence(scope, day string, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.sequences[scope+"/"+day] = n
}

// SetEvent overwrites an event row, bypassing checks, to model corrupted data.
func (m *MemStore) SetEvent(e domain.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.events[e.ID] = e
}

func (m *MemStore) AddBooking(b domain.Booking) domain.Booking {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.lastID++
	b.ID = m.state.lastID
	if b.CreatedAt.IsZero() {
		b.CreatedAt = m.Now().UTC()
	}
	b.UpdatedAt = b.CreatedAt
	m.state.bookings[b.ID] = b
	return b
}

func (m *MemStore) AddTransaction(t domain.Transaction) domain.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.lastID++
	t.ID = m.state.lastID
	if t.CreatedAt.IsZero() {
		t.CreatedAt = m.Now().UTC()
	}
	t.UpdatedAt = t.CreatedAt
	m.state.transactions[t.ID] = t
	return t
}

func (m *MemStore) Event(id int64) domain.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.events[id]
}

func (m *MemStore) Booking(id int64) domain.Booking {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.bookings[id]
}

func (m *MemStore) BookingsForEvent(eventID int64) []domain.Booking {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Booking
	for _, b := range m.state.bookings {
		if b.EventID == eventID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *MemStore) Transactions(bookingID int64) []domain.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Transaction
	for _, t := range m.state.transactions {
		if t.BookingID == bookingID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *MemStore) Tickets(bookingID int64) []domain.Ticket {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Ticket
	for _, t := range m.state.tickets {
		if t.BookingID == bookingID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// memTx works on store.state directly; the caller holds store.mu.
type memTx struct {
	store *MemStore
}

func (t *memTx) st() *memState { return t.store.state }

func (t *memTx) fault(method string) error {
	return t.store.faults[method]
}

func (t *memTx) nextID() int64 {
	t.st().lastID++
	return t.st().lastID
}

func (t *memTx) now() time.Time { return t.store.Now().UTC() }

func (t *memTx) GetEvent(_ context.Context, id int64) (*domain.Event, error) {
	e, ok := t.st().events[id]
	if !ok {
		return nil, fmt.Errorf("%w: event", domain.ErrNotFound)
	}
	return &e, nil
}

func (t *memTx) LockEvent(ctx context.Context, id int64) (*domain.Event, error) {
	if err := t.fault("LockEvent"); err != nil {
		return nil, err
	}
	return t.GetEvent(ctx, id)
}

func (t *memTx) SaveEventStock(_ context.Context, event *domain.Event) error {
	if err := t.fault("SaveEventStock"); err != nil {
		return err
	}
	e, ok := t.st().events[event.ID]
	if !ok {
		return fmt.Errorf("%w: event", domain.ErrNotFound)
	}
	if event.MaxParticipants < 1 || event.AvailableTickets < 0 || event.AvailableTickets > event.MaxParticipants {
		return fmt.Errorf("events check constraint violated: available=%d max=%d", event.AvailableTickets, event.MaxParticipants)
	}
	e.MaxParticipants = event.MaxParticipants
	e.AvailableTickets = event.AvailableTickets
	e.UpdatedAt = t.now()
	event.UpdatedAt = e.UpdatedAt
	t.st().events[e.ID] = e
	return nil
}

func (t *memTx) SumActiveQuantity(_ context.Context, eventID int64) (int, error) {
	sum := 0
	for _, b := range t.st().bookings {
		if b.EventID == eventID && (b.Status == domain.BookingStatusPending || b.Status == domain.BookingStatusConfirmed) {
			sum += b.Quantity
		}
	}
	return sum, nil
}

func (t *memTx) InsertBooking(_ context.Context, booking *domain.Booking) error {
	if err := t.fault("InsertBooking"); err != nil {
		return err
	}
	for _, b := range t.st().bookings {
		if b.BookingID == booking.BookingID {
			return fmt.Errorf("duplicate booking_id %s", booking.BookingID)
		}
	}
	if booking.Status == "" {
		booking.Status = domain.BookingStatusPending
	}
	booking.ID = t.nextID()
	booking.CreatedAt = t.now()
	booking.UpdatedAt = booking.CreatedAt
	t.st().bookings[booking.ID] = *booking
	return nil
}

func (t *memTx) GetBooking(_ context.Context, id int64) (*domain.Booking, error) {
	b, ok := t.st().bookings[id]
	if !ok {
		return nil, fmt.Errorf("%w: booking", domain.ErrNotFound)
	}
	return &b, nil
}

func (t *memTx) LockBooking(ctx context.Context, id int64) (*domain.Booking, error) {
	return t.GetBooking(ctx, id)
}

func (t *memTx) UpdateBookingStatus(_ context.Context, id int64, status domain.BookingStatus) error {
	if err := t.fault("UpdateBookingStatus"); err != nil {
		return err
	}
	b, ok := t.st().bookings[id]
	if !ok {
		return fmt.Errorf("%w: booking %d", domain.ErrNotFound, id)
	}
	b.Status = status
	b.UpdatedAt = t.now()
	t.st().bookings[id] = b
	return nil
}

func (t *memTx) ListBookingsByUser(_ context.Context, userID int64, limit int) ([]domain.Booking, error) {
	out := make([]domain.Booking, 0)
	for _, b := range t.st().bookings {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (t *memTx) transactionsOf(bookingID int64) []domain.Transaction {
	var out []domain.Transaction
	for _, txn := range t.st().transactions {
		if txn.BookingID == bookingID {
			out = append(out, txn)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (t *memTx) FindReusableTransaction(_ context.Context, bookingID int64) (*domain.Transaction, error) {
	for _, txn := range t.transactionsOf(bookingID) {
		if txn.Reusable() {
			return &txn, nil
		}
	}
	return nil, nil
}

func (t *memTx) LatestTransaction(_ context.Context, bookingID int64) (*domain.Transaction, error) {
	all := t.transactionsOf(bookingID)
	if len(all) == 0 {
		return nil, fmt.Errorf("%w: transaction", domain.ErrNotFound)
	}
	return &all[0], nil
}

func (t *memTx) InsertTransaction(_ context.Context, txn *domain.Transaction) error {
	if err := t.fault("InsertTransaction"); err != nil {
		return err
	}
	for _, existing := range t.st().transactions {
		if existing.OrderID == txn.OrderID {
			return fmt.Errorf("duplicate order_id %s", txn.OrderID)
		}
	}
	if txn.PaymentStatus == "" {
		txn.PaymentStatus = domain.PaymentStatusPending
	}
	txn.ID = t.nextID()
	txn.CreatedAt = t.now()
	txn.UpdatedAt = txn.CreatedAt
	stored := *txn
	stored.CallbackResponse = copyRaw(txn.CallbackResponse)
	t.st().transactions[txn.ID] = stored
	return nil
}

func (t *memTx) LockTransaction(_ context.Context, id int64) (*domain.Transaction, error) {
	txn, ok := t.st().transactions[id]
	if !ok {
		return nil, fmt.Errorf("%w: transaction", domain.ErrNotFound)
	}
	return &txn, nil
}

func (t *memTx) LockTransactionByOrderID(_ context.Context, orderID string) (*domain.Transaction, error) {
	for _, txn := range t.st().transactions {
		if txn.OrderID == orderID {
			return &txn, nil
		}
	}
	return nil, fmt.Errorf("%w: transaction %s", domain.ErrNotFound, orderID)
}

func (t *memTx) UpdateTransaction(_ context.Context, txn *domain.Transaction) error {
	if err := t.fault("UpdateTransaction"); err != nil {
		return err
	}
	if _, ok := t.st().transactions[txn.ID]; !ok {
		return fmt.Errorf("%w: transaction %d", domain.ErrNotFound, txn.ID)
	}
	txn.UpdatedAt = t.now()
	stored := *txn
	stored.CallbackResponse = copyRaw(txn.CallbackResponse)
	t.st().transactions[txn.ID] = stored
	return nil
}

func (t *memTx) ListStaleSessions(_ context.Context, createdBefore time.Time, limit int) ([]domain.Transaction, error) {
	var out []domain.Transaction
	for _, txn := range t.st().transactions {
		if txn.PaymentStatus == domain.PaymentStatusPending && txn.GatewayToken == nil && txn.PaymentURL == nil &&
			txn.CreatedAt.Before(createdBefore) {
			out = append(out, txn)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (t *memTx) CountTickets(_ context.Context, bookingID int64) (int, error) {
	n := 0
	for _, tk := range t.st().tickets {
		if tk.BookingID == bookingID {
			n++
		}
	}
	return n, nil
}

func (t *memTx) InsertTicket(_ context.Context, ticket *domain.Ticket) error {
	if err := t.fault("InsertTicket"); err != nil {
		return err
	}
	if len(ticket.TicketID) > domain.MaxTicketIDLength {
		return fmt.Errorf("ticket_id %q exceeds %d chars", ticket.TicketID, domain.MaxTicketIDLength)
	}
	for _, tk := range t.st().tickets {
		if tk.TicketID == ticket.TicketID {
			return fmt.Errorf("duplicate ticket_id %s", ticket.TicketID)
		}
	}
	if ticket.Status == "" {
		ticket.Status = domain.TicketStatusActive
	}
	ticket.ID = t.nextID()
	ticket.CreatedAt = t.now()
	ticket.UpdatedAt = ticket.CreatedAt
	t.st().tickets[ticket.ID] = *ticket
	return nil
}

func (t *memTx) ListTicketsByUser(_ context.Context, userID int64, limit int) ([]domain.Ticket, error) {
	out := make([]domain.Ticket, 0)
	for _, tk := range t.st().tickets {
		if b, ok := t.st().bookings[tk.BookingID]; ok && b.UserID == userID {
			out = append(out, tk)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (t *memTx) NextDailySequence(_ context.Context, scope, day string) (int, error) {
	if err := t.fault("NextDailySequence"); err != nil {
		return 0, err
	}
	key := scope + "/" + day
	t.st().sequences[key]++
	return t.st().sequences[key], nil
}

func (t *memTx) IdentifierExists(_ context.Context, scope, value string) (bool, error) {
	switch scope {
	case idgen.ScopeBooking:
		for _, b := range t.st().bookings {
			if b.BookingID == value {
				return true, nil
			}
		}
	case idgen.ScopeOrder:
		for _, txn := range t.st().transactions {
			if txn.OrderID == value {
				return true, nil
			}
		}
	default:
		return false, fmt.Errorf("unknown id scope %q", scope)
	}
	return false, nil
}

func copyRaw(raw json.RawMessage) json.RawMessage {
	if raw == nil {
		return nil
	}
	return append(json.RawMessage(nil), raw...)
}

var (
	_ repository.Store = (*MemStore)(nil)
	_ repository.Tx    = (*memTx)(nil)
)
