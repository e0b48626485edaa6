package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/campuscore/dues-ledger/internal/domain"
)

// DueRepository defines the interface for pending due data operations
type DueRepository interface {
	// Create inserts a new pending due and assigns its ID
	Create(ctx context.Context, due *domain.PendingDue) error

	// GetByID retrieves a pending due by its ID
	GetByID(ctx context.Context, dueID int64) (*domain.PendingDue, error)

	// DueTypeExists reports whether any due carries the given due_type
	DueTypeExists(ctx context.Context, dueType string) (bool, error)

	// InsertMonthlyBatch inserts a month's dues in one transaction,
	// re-checking the due_type token inside the transaction so that a
	// concurrent run cannot double-post. Returns the number inserted
	// (0 when the month was already posted).
	InsertMonthlyBatch(ctx context.Context, dueType string, dues []*domain.PendingDue) (int, error)

	// MakePayment atomically inserts a payment record, recomputes the
	// due's total paid and updates its status. Returns the new status
	// and the new payment's ID.
	MakePayment(ctx context.Context, payment *domain.PaymentRecord) (string, int64, error)

	// GetUnpaidSummaries retrieves dues still owing for a student,
	// oldest due date first
	GetUnpaidSummaries(ctx context.Context, studentID int64) ([]*domain.DueSummary, error)

	// GetAllSummaries retrieves every due for a student with its
	// payment aggregate, most recent due date first
	GetAllSummaries(ctx context.Context, studentID int64) ([]*domain.DueSummary, error)
}

// PaymentRepository defines the interface for payment record data operations
type PaymentRepository interface {
	// GetByDueID retrieves all payments for a due in chronological order
	GetByDueID(ctx context.Context, dueID int64) ([]*domain.PaymentRecord, error)

	// GetTotalPaid calculates the total amount paid against a due
	GetTotalPaid(ctx context.Context, dueID int64) (decimal.Decimal, error)
}

// ReportRepository defines the interface for read-only reporting queries
type ReportRepository interface {
	// ListStudentFees retrieves every student's ID and monthly fee
	ListStudentFees(ctx context.Context) ([]*domain.StudentFee, error)

	// TeacherLeaderboard retrieves teachers with complaint counts,
	// fewest complaints first, ties broken by descending teacher ID
	TeacherLeaderboard(ctx context.Context) ([]*domain.TeacherStanding, error)

	// FamilyOutstanding retrieves per-family remaining dues, largest first
	FamilyOutstanding(ctx context.Context) ([]*domain.FamilyOutstanding, error)
}
