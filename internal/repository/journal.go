package repository

import (
	"context"
	"database/sql"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/doma-shop/doma-checkout-service/internal/checkout"
	"github.com/doma-shop/doma-checkout-service/internal/models"
)

// PostgresJournal persists checkout attempts.
//
// Schema:
//
//	CREATE TABLE checkout_attempts (
//	    id             BIGSERIAL PRIMARY KEY,
//	    attempt_id     TEXT UNIQUE NOT NULL,
//	    buyer_id       BIGINT NOT NULL,
//	    seller_id      BIGINT NOT NULL,
//	    order_id       BIGINT NOT NULL DEFAULT 0,
//	    state          TEXT NOT NULL,
//	    payment_method TEXT NOT NULL,
//	    total_amount   NUMERIC(12,2) NOT NULL,
//	    warnings       TEXT[] NOT NULL DEFAULT '{}',
//	    created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
//	    updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
//	);
type PostgresJournal struct {
	db     *sql.DB
	logger *zap.Logger
}

var _ checkout.Journal = (*PostgresJournal)(nil)

func NewPostgresJournal(db *sql.DB, logger *zap.Logger) *PostgresJournal {
	return &PostgresJournal{db: db, logger: logger}
}

func (j *PostgresJournal) Insert(ctx context.Context, entry *checkout.JournalEntry) error {
	err := j.db.QueryRowContext(
		ctx,
		`INSERT INTO checkout_attempts (attempt_id, buyer_id, seller_id, order_id, state, payment_method, total_amount, warnings)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at, updated_at`,
		entry.AttemptID, entry.BuyerID, entry.SellerID, entry.OrderID,
		string(entry.State), string(entry.PaymentMethod), entry.TotalAmount, pq.Array(entry.Warnings),
	).Scan(&entry.ID, &entry.CreatedAt, &entry.UpdatedAt)
	if err != nil {
		return err
	}

	j.logger.Debug("Checkout attempt journaled",
		zap.String("attempt_id", entry.AttemptID),
		zap.Int64("buyer_id", entry.BuyerID),
	)
	return nil
}

func (j *PostgresJournal) UpdateState(ctx context.Context, attemptID string, state checkout.State, orderID int64, warnings []string) error {
	if warnings == nil {
		warnings = []string{}
	}
	_, err := j.db.ExecContext(
		ctx,
		`UPDATE checkout_attempts
		 SET state = $1, order_id = $2, warnings = $3, updated_at = NOW()
		 WHERE attempt_id = $4`,
		string(state), orderID, pq.Array(warnings), attemptID,
	)
	return err
}

// SettleOrder moves an awaiting-payment attempt to its final state once the
// payment outcome becomes known, either via a retry or a payment event.
func (j *PostgresJournal) SettleOrder(ctx context.Context, orderID int64, state checkout.State) error {
	res, err := j.db.ExecContext(
		ctx,
		`UPDATE checkout_attempts
		 SET state = $1, updated_at = NOW()
		 WHERE order_id = $2 AND state = $3`,
		string(state), orderID, string(checkout.StatePartiallyCompleted),
	)
	if err != nil {
		return err
	}

	if n, err := res.RowsAffected(); err == nil && n > 0 {
		j.logger.Info("Checkout attempt settled",
			zap.Int64("order_id", orderID),
			zap.String("state", string(state)),
		)
	}
	return nil
}

func (j *PostgresJournal) ListAwaitingPayment(ctx context.Context, limit int) ([]*checkout.JournalEntry, error) {
	rows, err := j.db.QueryContext(
		ctx,
		`SELECT id, attempt_id, buyer_id, seller_id, order_id, state, payment_method, total_amount, warnings, created_at, updated_at
		 FROM checkout_attempts
		 WHERE state = $1
		 ORDER BY created_at ASC
		 LIMIT $2`,
		string(checkout.StatePartiallyCompleted), limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*checkout.JournalEntry
	for rows.Next() {
		var entry checkout.JournalEntry
		var state, paymentMethod string
		var warnings pq.StringArray
		if err := rows.Scan(
			&entry.ID, &entry.AttemptID, &entry.BuyerID, &entry.SellerID, &entry.OrderID,
			&state, &paymentMethod, &entry.TotalAmount, &warnings,
			&entry.CreatedAt, &entry.UpdatedAt,
		); err != nil {
			return nil, err
		}
		entry.State = checkout.State(state)
		entry.PaymentMethod = models.PaymentMethod(paymentMethod)
		entry.Warnings = warnings
		entries = append(entries, &entry)
	}

	return entries, rows.Err()
}
