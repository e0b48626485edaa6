package mocks

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/campuscore/dues-ledger/internal/domain"
)

type MockDueRepository struct {
	mock.Mock
}

func (m *MockDueRepository) Create(ctx context.Context, due *domain.PendingDue) error {
	args := m.Called(ctx, due)
	return args.Error(0)
}

func (m *MockDueRepository) GetByID(ctx context.Context, dueID int64) (*domain.PendingDue, error) {
	args := m.Called(ctx, dueID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PendingDue), args.Error(1)
}

func (m *MockDueRepository) DueTypeExists(ctx context.Context, dueType string) (bool, error) {
	args := m.Called(ctx, dueType)
	return args.Bool(0), args.Error(1)
}

func (m *MockDueRepository) InsertMonthlyBatch(ctx context.Context, dueType string, dues []*domain.PendingDue) (int, error) {
	args := m.Called(ctx, dueType, dues)
	return args.Int(0), args.Error(1)
}

func (m *MockDueRepository) MakePayment(ctx context.Context, payment *domain.PaymentRecord) (string, int64, error) {
	args := m.Called(ctx, payment)
	return args.String(0), args.Get(1).(int64), args.Error(2)
}

func (m *MockDueRepository) GetUnpaidSummaries(ctx context.Context, studentID int64) ([]*domain.DueSummary, error) {
	args := m.Called(ctx, studentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.DueSummary), args.Error(1)
}

func (m *MockDueRepository) GetAllSummaries(ctx context.Context, studentID int64) ([]*domain.DueSummary, error) {
	args := m.Called(ctx, studentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.DueSummary), args.Error(1)
}

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) GetByDueID(ctx context.Context, dueID int64) ([]*domain.PaymentRecord, error) {
	args := m.Called(ctx, dueID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.PaymentRecord), args.Error(1)
}

func (m *MockPaymentRepository) GetTotalPaid(ctx context.Context, dueID int64) (decimal.Decimal, error) {
	args := m.Called(ctx, dueID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

type MockReportRepository struct {
	mock.Mock
}

func (m *MockReportRepository) ListStudentFees(ctx context.Context) ([]*domain.StudentFee, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.StudentFee), args.Error(1)
}

func (m *MockReportRepository) TeacherLeaderboard(ctx context.Context) ([]*domain.TeacherStanding, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.TeacherStanding), args.Error(1)
}

func (m *MockReportRepository) FamilyOutstanding(ctx context.Context) ([]*domain.FamilyOutstanding, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.FamilyOutstanding), args.Error(1)
}
