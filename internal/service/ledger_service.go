package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/campuscore/dues-ledger/internal/domain"
	"github.com/campuscore/dues-ledger/internal/repository"
	customError "github.com/campuscore/dues-ledger/pkg/errors"
)

// LedgerService is the due lifecycle engine. It owns structural and
// transactional correctness only: business-rule validation (date
// ranges, positive amounts, the no-overpayment precondition) is the
// caller's job, applied through pkg/validation before any call lands
// here.
type LedgerService struct {
	DueRepo     repository.DueRepository
	PaymentRepo repository.PaymentRepository
}

func NewLedgerService(dueRepo repository.DueRepository, paymentRepo repository.PaymentRepository) *LedgerService {
	return &LedgerService{
		DueRepo:     dueRepo,
		PaymentRepo: paymentRepo,
	}
}

// AddManualDue creates a new pending due with no payment history.
func (s *LedgerService) AddManualDue(ctx context.Context, studentID int64, dueType string, amount decimal.Decimal, dueDate time.Time) (*domain.PendingDue, error) {
	due := &domain.PendingDue{
		StudentID: studentID,
		DueType:   dueType,
		AmountDue: amount,
		DueDate:   dueDate,
		Status:    domain.DueStatusUnpaid,
	}

	if err := s.DueRepo.Create(ctx, due); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return due, nil
}

// GetUnpaidDuesForStudent returns every due the student still owes on,
// oldest obligation first.
func (s *LedgerService) GetUnpaidDuesForStudent(ctx context.Context, studentID int64) ([]*domain.DueSummary, error) {
	summaries, err := s.DueRepo.GetUnpaidSummaries(ctx, studentID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return summaries, nil
}

// GetAllDuesWithSummary returns the student's full due history,
// including fully paid dues, most recent first.
func (s *LedgerService) GetAllDuesWithSummary(ctx context.Context, studentID int64) ([]*domain.DueSummary, error) {
	summaries, err := s.DueRepo.GetAllSummaries(ctx, studentID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return summaries, nil
}

// GetDueBalance returns a single due with its payment aggregate. The
// caller layer uses it to compute the remaining balance before
// recording a payment.
func (s *LedgerService) GetDueBalance(ctx context.Context, dueID int64) (*domain.DueSummary, error) {
	due, err := s.DueRepo.GetByID(ctx, dueID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapDueNotFound(dueID)
		}
		return nil, customError.WrapDatabaseError(err)
	}

	totalPaid, err := s.PaymentRepo.GetTotalPaid(ctx, dueID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return &domain.DueSummary{
		PendingDueID:    due.ID,
		DueType:         due.DueType,
		AmountDue:       due.AmountDue,
		DueDate:         due.DueDate,
		Status:          due.Status,
		TotalPaid:       totalPaid,
		AmountRemaining: due.AmountDue.Sub(totalPaid),
	}, nil
}

// MakePayment records a payment against a due and returns the due's
// new status together with the new payment's ID. Insert, recompute and
// status update happen in one transaction; a missing due aborts the
// whole thing. The engine does not reject overpayment: an amount above
// the remaining balance is simply recorded and the due marked paid.
func (s *LedgerService) MakePayment(ctx context.Context, dueID int64, amount decimal.Decimal, mode string, timestamp time.Time, receivedBy string) (string, int64, error) {
	payment := &domain.PaymentRecord{
		PendingDueID:     dueID,
		AmountPaid:       amount,
		PaymentTimestamp: timestamp,
		PaymentMode:      mode,
		ReceivedByUser:   receivedBy,
	}

	newStatus, paymentID, err := s.DueRepo.MakePayment(ctx, payment)
	if err != nil {
		var bizErr *customError.BusinessError
		if errors.As(err, &bizErr) {
			return "", 0, err
		}
		return "", 0, customError.WrapDatabaseError(err)
	}

	return newStatus, paymentID, nil
}

// GetPaymentsForDue returns a due's installments in chronological
// order.
func (s *LedgerService) GetPaymentsForDue(ctx context.Context, dueID int64) ([]*domain.PaymentRecord, error) {
	payments, err := s.PaymentRepo.GetByDueID(ctx, dueID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return payments, nil
}
