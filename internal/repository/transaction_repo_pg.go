package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/ticketing/internal/domain"
	"github.com/jackc/pgx/v5"
)

const transactionColumns = `id, order_id, booking_id, amount_cents, payment_status, payment_type, gateway_transaction_id, gateway_token, payment_url, signature_key, paid_at, callback_response::text, created_at, updated_at`

func scanTransaction(row interface{ Scan(dest ...any) error }) (*domain.Transaction, error) {
	var (
		t        domain.Transaction
		callback *string
	)
	if err := row.Scan(&t.ID, &t.OrderID, &t.BookingID, &t.AmountCents, &t.PaymentStatus, &t.PaymentType,
		&t.GatewayTransactionID, &t.GatewayToken, &t.PaymentURL, &t.Signature, &t.PaidAt, &callback,
		&t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	if callback != nil {
		t.CallbackResponse = json.RawMessage(*callback)
	}
	return &t, nil
}

// rawJSON returns nil for an empty payload so the column stays NULL.
func rawJSON(raw json.RawMessage) *string {
	if len(raw) == 0 {
		return nil
	}
	s := string(raw)
	return &s
}

func (r *pgQueries) InsertTransaction(ctx context.Context, txn *domain.Transaction) error {
	if txn.PaymentStatus == "" {
		txn.PaymentStatus = domain.PaymentStatusPending
	}
	return r.q.QueryRow(ctx, `INSERT INTO transactions (order_id, booking_id, amount_cents, payment_status, gateway_token, payment_url, callback_response)
		VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb)
		RETURNING id, created_at, updated_at`,
		txn.OrderID, txn.BookingID, txn.AmountCents, txn.PaymentStatus, txn.GatewayToken, txn.PaymentURL, rawJSON(txn.CallbackResponse)).
		Scan(&txn.ID, &txn.CreatedAt, &txn.UpdatedAt)
}

func (r *pgQueries) FindReusableTransaction(ctx context.Context, bookingID int64) (*domain.Transaction, error) {
	t, err := scanTransaction(r.q.QueryRow(ctx, `SELECT `+transactionColumns+` FROM transactions
		WHERE booking_id=$1 AND payment_status=$2 AND payment_url IS NOT NULL AND payment_url <> ''
		ORDER BY id DESC LIMIT 1`, bookingID, domain.PaymentStatusPending))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return t, err
}

func (r *pgQueries) LatestTransaction(ctx context.Context, bookingID int64) (*domain.Transaction, error) {
	t, err := scanTransaction(r.q.QueryRow(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE booking_id=$1 ORDER BY id DESC LIMIT 1`, bookingID))
	if err != nil {
		return nil, notFound(err, "transaction")
	}
	return t, nil
}

func (r *pgQueries) LockTransaction(ctx context.Context, id int64) (*domain.Transaction, error) {
	t, err := scanTransaction(r.q.QueryRow(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id=$1 FOR UPDATE`, id))
	if err != nil {
		return nil, notFound(err, "transaction")
	}
	return t, nil
}

func (r *pgQueries) LockTransactionByOrderID(ctx context.Context, orderID string) (*domain.Transaction, error) {
	t, err := scanTransaction(r.q.QueryRow(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE order_id=$1 FOR UPDATE`, orderID))
	if err != nil {
		return nil, notFound(err, "transaction "+orderID)
	}
	return t, nil
}

func (r *pgQueries) UpdateTransaction(ctx context.Context, txn *domain.Transaction) error {
	cmd, err := r.q.Exec(ctx, `UPDATE transactions SET
			amount_cents=$1, payment_status=$2, payment_type=$3, gateway_transaction_id=$4, gateway_token=$5,
			payment_url=$6, signature_key=$7, paid_at=$8, callback_response=$9::jsonb, updated_at=now()
		WHERE id=$10`,
		txn.AmountCents, txn.PaymentStatus, txn.PaymentType, txn.GatewayTransactionID, txn.GatewayToken,
		txn.PaymentURL, txn.Signature, txn.PaidAt, rawJSON(txn.CallbackResponse), txn.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: transaction %d", domain.ErrNotFound, txn.ID)
	}
	return nil
}

// ListStaleSessions finds pending transactions that never received a gateway
// session, i.e. the process stopped between creating the row and recording
// the gateway response.
func (r *pgQueries) ListStaleSessions(ctx context.Context, createdBefore time.Time, limit int) ([]domain.Transaction, error) {
	rows, err := r.q.Query(ctx, `SELECT `+transactionColumns+` FROM transactions
		WHERE payment_status=$1 AND gateway_token IS NULL AND payment_url IS NULL AND created_at < $2
		ORDER BY id LIMIT $3`, domain.PaymentStatusPending, createdBefore, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stale []domain.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		stale = append(stale, *t)
	}
	return stale, rows.Err()
}
