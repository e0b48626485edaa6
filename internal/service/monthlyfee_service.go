package service

import (
	"context"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"github.com/campuscore/dues-ledger/internal/domain"
	"github.com/campuscore/dues-ledger/internal/repository"
	customError "github.com/campuscore/dues-ledger/pkg/errors"
	"github.com/campuscore/dues-ledger/pkg/utils"
)

// MonthlyFeeService posts one pending due per fee-paying student for
// the current calendar month. The due_type token ("Monthly Fee -
// <Month> <Year>") is the dedup key: the run is a no-op whenever any
// due already carries it, so the service is safe to invoke on every
// startup and from the scheduler.
type MonthlyFeeService struct {
	DueRepo    repository.DueRepository
	ReportRepo repository.ReportRepository
	dueDay     int
	now        func() time.Time
}

func NewMonthlyFeeService(dueRepo repository.DueRepository, reportRepo repository.ReportRepository, dueDay int) *MonthlyFeeService {
	return &MonthlyFeeService{
		DueRepo:    dueRepo,
		ReportRepo: reportRepo,
		dueDay:     dueDay,
		now:        time.Now,
	}
}

// RunResult describes what a batch run did.
type RunResult struct {
	DueType       string
	DuesCreated   int
	AlreadyPosted bool
}

// Run posts the current month's fees. Exactly one batch per month is
// ever committed regardless of how many times it is called.
func (s *MonthlyFeeService) Run(ctx context.Context) (*RunResult, error) {
	now := s.now()
	token := utils.MonthlyFeeToken(now)

	exists, err := s.DueRepo.DueTypeExists(ctx, token)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	if exists {
		log.Printf("Monthly fees for %q already posted, no action taken", token)
		return &RunResult{DueType: token, AlreadyPosted: true}, nil
	}

	students, err := s.ReportRepo.ListStudentFees(ctx)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	dueDate := utils.MonthlyDueDate(now, s.dueDay)
	dues := make([]*domain.PendingDue, 0, len(students))
	for _, student := range students {
		if !student.MonthlyFee.GreaterThan(decimal.Zero) {
			continue
		}
		dues = append(dues, &domain.PendingDue{
			StudentID: student.StudentID,
			DueType:   token,
			AmountDue: student.MonthlyFee,
			DueDate:   dueDate,
			Status:    domain.DueStatusUnpaid,
		})
	}

	// The repository re-checks the token inside the insert transaction,
	// so a run that lost a race comes back with zero inserts.
	inserted, err := s.DueRepo.InsertMonthlyBatch(ctx, token, dues)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	if inserted == 0 && len(dues) > 0 {
		log.Printf("Monthly fees for %q posted by a concurrent run, no action taken", token)
		return &RunResult{DueType: token, AlreadyPosted: true}, nil
	}

	log.Printf("Posted monthly fees for %d students as %q", inserted, token)
	return &RunResult{DueType: token, DuesCreated: inserted}, nil
}

// CheckIfAlreadyRun reports whether this month's batch has posted, and
// under which token. Student enrollment asks this to decide whether a
// new student needs an individual catch-up fee.
func (s *MonthlyFeeService) CheckIfAlreadyRun(ctx context.Context) (bool, string, error) {
	token := utils.MonthlyFeeToken(s.now())

	exists, err := s.DueRepo.DueTypeExists(ctx, token)
	if err != nil {
		return false, "", customError.WrapDatabaseError(err)
	}
	if !exists {
		return false, "", nil
	}

	return true, token, nil
}

// AddCatchUpFee posts this month's fee for a single student enrolled
// after the batch ran.
func (s *MonthlyFeeService) AddCatchUpFee(ctx context.Context, studentID int64, fee decimal.Decimal) (*domain.PendingDue, error) {
	now := s.now()

	due := &domain.PendingDue{
		StudentID: studentID,
		DueType:   utils.MonthlyFeeToken(now),
		AmountDue: fee,
		DueDate:   utils.MonthlyDueDate(now, s.dueDay),
		Status:    domain.DueStatusUnpaid,
	}

	if err := s.DueRepo.Create(ctx, due); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	log.Printf("Added catch-up fee %q for student %d", due.DueType, studentID)
	return due, nil
}
