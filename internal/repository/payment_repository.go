package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/campuscore/dues-ledger/internal/domain"
)

type paymentRepository struct {
	db *sqlx.DB
}

func NewPaymentRepository(db *sqlx.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) GetByDueID(ctx context.Context, dueID int64) ([]*domain.PaymentRecord, error) {
	query := `
		SELECT id, pending_due_id, amount_paid, payment_timestamp, payment_mode, received_by_user
		FROM payment_record
		WHERE pending_due_id = $1
		ORDER BY payment_timestamp ASC
	`

	var payments []*domain.PaymentRecord
	err := r.db.SelectContext(ctx, &payments, query, dueID)
	if err != nil {
		return nil, err
	}

	return payments, nil
}

func (r *paymentRepository) GetTotalPaid(ctx context.Context, dueID int64) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount_paid), 0)
		FROM payment_record
		WHERE pending_due_id = $1
	`

	var total decimal.Decimal
	err := r.db.GetContext(ctx, &total, query, dueID)
	if err != nil {
		return decimal.Zero, err
	}

	return total, nil
}
