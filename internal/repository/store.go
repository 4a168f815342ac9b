package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/ticketing/internal/domain"
	"github.com/Domenick1991/ticketing/internal/idgen"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Reader covers lookups that do not need row locks.
type Reader interface {
	GetEvent(ctx context.Context, id int64) (*domain.Event, error)
	GetBooking(ctx context.Context, id int64) (*domain.Booking, error)
	LatestTransaction(ctx context.Context, bookingID int64) (*domain.Transaction, error)
	ListBookingsByUser(ctx context.Context, userID int64, limit int) ([]domain.Booking, error)
	ListTicketsByUser(ctx context.Context, userID int64, limit int) ([]domain.Ticket, error)
	ListStaleSessions(ctx context.Context, createdBefore time.Time, limit int) ([]domain.Transaction, error)
}

// Tx is the unit of work handed to Store.WithinTx. Lock* methods take an
// exclusive row lock held until the transaction ends.
type Tx interface {
	Reader
	idgen.Sequencer

	LockEvent(ctx context.Context, id int64) (*domain.Event, error)
	SaveEventStock(ctx context.Context, event *domain.Event) error
	SumActiveQuantity(ctx context.Context, eventID int64) (int, error)

	InsertBooking(ctx context.Context, booking *domain.Booking) error
	LockBooking(ctx context.Context, id int64) (*domain.Booking, error)
	UpdateBookingStatus(ctx context.Context, id int64, status domain.BookingStatus) error

	FindReusableTransaction(ctx context.Context, bookingID int64) (*domain.Transaction, error)
	InsertTransaction(ctx context.Context, txn *domain.Transaction) error
	LockTransaction(ctx context.Context, id int64) (*domain.Transaction, error)
	LockTransactionByOrderID(ctx context.Context, orderID string) (*domain.Transaction, error)
	UpdateTransaction(ctx context.Context, txn *domain.Transaction) error

	CountTickets(ctx context.Context, bookingID int64) (int, error)
	InsertTicket(ctx context.Context, ticket *domain.Ticket) error
}

type Store interface {
	Reader
	// WithinTx runs fn in one database transaction. A non-nil error from fn
	// rolls everything back; otherwise the transaction is committed.
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type pgQueries struct {
	q querier
}

type PGStore struct {
	pgQueries
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{pgQueries: pgQueries{q: db}, db: db}
}

func (s *PGStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(ctx, &pgQueries{q: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func notFound(err error, what string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, what)
	}
	return err
}

var (
	_ Store = (*PGStore)(nil)
	_ Tx    = (*pgQueries)(nil)
)
