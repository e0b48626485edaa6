package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	DueStatusUnpaid        = "unpaid"
	DueStatusPartiallyPaid = "partially paid"
	DueStatusPaid          = "paid"
)

// PendingDue represents a financial obligation of a student.
type PendingDue struct {
	ID        int64           `json:"id" db:"id"`
	StudentID int64           `json:"student_id" db:"student_id"`
	DueType   string          `json:"due_type" db:"due_type"`
	AmountDue decimal.Decimal `json:"amount_due" db:"amount_due"`
	DueDate   time.Time       `json:"due_date" db:"due_date"`
	Status    string          `json:"status" db:"status"`
}

// DueSummary is a read-only projection of a due together with its
// payment aggregate (total paid so far and the remaining balance).
type DueSummary struct {
	PendingDueID    int64           `json:"pending_due_id" db:"pending_due_id"`
	DueType         string          `json:"due_type" db:"due_type"`
	AmountDue       decimal.Decimal `json:"amount_due" db:"amount_due"`
	DueDate         time.Time       `json:"due_date" db:"due_date"`
	Status          string          `json:"status" db:"status"`
	TotalPaid       decimal.Decimal `json:"total_paid" db:"total_paid"`
	AmountRemaining decimal.Decimal `json:"amount_remaining" db:"amount_remaining"`
}

// DTOs for requests and responses

type CreateDueRequest struct {
	StudentID int64           `json:"student_id" validate:"required,gt=0"`
	DueType   string          `json:"due_type" validate:"required"`
	Amount    decimal.Decimal `json:"amount" validate:"required"`
	DueDate   string          `json:"due_date" validate:"required"`
}

type MakePaymentRequest struct {
	Amount      decimal.Decimal `json:"amount" validate:"required"`
	PaymentMode string          `json:"payment_mode" validate:"required"`
	ReceivedBy  string          `json:"received_by" validate:"required"`
	// Timestamp is RFC 3339; the server clock is used when omitted.
	Timestamp string `json:"timestamp,omitempty"`
}

type MakePaymentResponse struct {
	PaymentID int64  `json:"payment_id"`
	NewStatus string `json:"new_status"`
}

type CatchUpFeeRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"required"`
}

type MonthlyFeeStatusResponse struct {
	AlreadyRun bool   `json:"already_run"`
	DueType    string `json:"due_type,omitempty"`
}

type MonthlyFeeRunResponse struct {
	DueType       string `json:"due_type"`
	DuesCreated   int    `json:"dues_created"`
	AlreadyPosted bool   `json:"already_posted"`
}
