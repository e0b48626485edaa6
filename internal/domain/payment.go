package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentRecord is a single installment recorded against a pending due.
// Records are append-only: there is no edit or delete operation.
type PaymentRecord struct {
	ID               int64           `json:"id" db:"id"`
	PendingDueID     int64           `json:"pending_due_id" db:"pending_due_id"`
	AmountPaid       decimal.Decimal `json:"amount_paid" db:"amount_paid"`
	PaymentTimestamp time.Time       `json:"payment_timestamp" db:"payment_timestamp"`
	PaymentMode      string          `json:"payment_mode" db:"payment_mode"`
	ReceivedByUser   string          `json:"received_by_user" db:"received_by_user"`
}

func (PaymentRecord) TableName() string {
	return "payment_record"
}
