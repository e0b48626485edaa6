package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuscore/dues-ledger/internal/domain"
	customError "github.com/campuscore/dues-ledger/pkg/errors"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func testPayment() *domain.PaymentRecord {
	return &domain.PaymentRecord{
		PendingDueID:     7,
		AmountPaid:       decimal.NewFromInt(500),
		PaymentTimestamp: time.Date(2025, time.June, 5, 10, 0, 0, 0, time.UTC),
		PaymentMode:      "Cash",
		ReceivedByUser:   "reception-1",
	}
}

func TestMakePayment_PartialPayment(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDueRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO payment_record").
		WithArgs(int64(7), sqlmock.AnyArg(), sqlmock.AnyArg(), "Cash", "reception-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))
	mock.ExpectQuery("SELECT amount_due FROM pending_due WHERE id = .+ FOR UPDATE").
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"amount_due"}).AddRow("1500.00"))
	mock.ExpectQuery("FROM payment_record WHERE pending_due_id =").
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow("500.00"))
	mock.ExpectExec("UPDATE pending_due SET status =").
		WithArgs(domain.DueStatusPartiallyPaid, int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	status, paymentID, err := repo.MakePayment(context.Background(), testPayment())

	assert.NoError(t, err)
	assert.Equal(t, domain.DueStatusPartiallyPaid, status)
	assert.Equal(t, int64(11), paymentID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMakePayment_FinalInstallmentMarksPaid(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDueRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO payment_record").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(12))
	mock.ExpectQuery("SELECT amount_due FROM pending_due WHERE id = .+ FOR UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{"amount_due"}).AddRow("1500.00"))
	mock.ExpectQuery("FROM payment_record WHERE pending_due_id =").
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow("1500.00"))
	mock.ExpectExec("UPDATE pending_due SET status =").
		WithArgs(domain.DueStatusPaid, int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	status, paymentID, err := repo.MakePayment(context.Background(), testPayment())

	assert.NoError(t, err)
	assert.Equal(t, domain.DueStatusPaid, status)
	assert.Equal(t, int64(12), paymentID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMakePayment_DueVanishedRollsBack(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDueRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO payment_record").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(13))
	mock.ExpectQuery("SELECT amount_due FROM pending_due WHERE id = .+ FOR UPDATE").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	status, paymentID, err := repo.MakePayment(context.Background(), testPayment())

	assert.Error(t, err)
	assert.True(t, errors.Is(err, customError.ErrDueNotFound))
	assert.Empty(t, status)
	assert.Zero(t, paymentID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMakePayment_ForeignKeyViolationIsNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDueRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO payment_record").
		WillReturnError(&pq.Error{Code: fkViolation})
	mock.ExpectRollback()

	_, _, err := repo.MakePayment(context.Background(), testPayment())

	assert.Error(t, err)
	assert.True(t, errors.Is(err, customError.ErrDueNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertMonthlyBatch_AlreadyPosted(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDueRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("Monthly Fee - November 2025").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectRollback()

	inserted, err := repo.InsertMonthlyBatch(context.Background(), "Monthly Fee - November 2025", []*domain.PendingDue{
		{StudentID: 1, DueType: "Monthly Fee - November 2025", AmountDue: decimal.NewFromInt(1000)},
	})

	assert.NoError(t, err)
	assert.Zero(t, inserted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertMonthlyBatch_InsertsAllOrNothing(t *testing.T) {
	dueDate := time.Date(2025, time.November, 10, 0, 0, 0, 0, time.UTC)
	dues := []*domain.PendingDue{
		{StudentID: 1, DueType: "Monthly Fee - November 2025", AmountDue: decimal.NewFromInt(1000), DueDate: dueDate, Status: domain.DueStatusUnpaid},
		{StudentID: 3, DueType: "Monthly Fee - November 2025", AmountDue: decimal.NewFromInt(2000), DueDate: dueDate, Status: domain.DueStatusUnpaid},
	}

	t.Run("Success", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewDueRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT EXISTS").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		for _, due := range dues {
			mock.ExpectExec("INSERT INTO pending_due").
				WithArgs(due.StudentID, due.DueType, sqlmock.AnyArg(), sqlmock.AnyArg(), domain.DueStatusUnpaid).
				WillReturnResult(sqlmock.NewResult(1, 1))
		}
		mock.ExpectCommit()

		inserted, err := repo.InsertMonthlyBatch(context.Background(), "Monthly Fee - November 2025", dues)

		assert.NoError(t, err)
		assert.Equal(t, 2, inserted)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Failure mid-batch rolls back", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewDueRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT EXISTS").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectExec("INSERT INTO pending_due").
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec("INSERT INTO pending_due").
			WillReturnError(errors.New("disk full"))
		mock.ExpectRollback()

		inserted, err := repo.InsertMonthlyBatch(context.Background(), "Monthly Fee - November 2025", dues)

		assert.Error(t, err)
		assert.Zero(t, inserted)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetUnpaidSummaries(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDueRepository(db)

	rows := sqlmock.NewRows([]string{"pending_due_id", "due_type", "amount_due", "due_date", "status", "total_paid", "amount_remaining"}).
		AddRow(1, "Exam Fee", "1500.00", time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC), "unpaid", "0", "1500.00").
		AddRow(2, "Monthly Fee - June 2025", "1000.00", time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC), "partially paid", "400.00", "600.00")

	mock.ExpectQuery("FROM pending_due pd").
		WithArgs(int64(42)).
		WillReturnRows(rows)

	summaries, err := repo.GetUnpaidSummaries(context.Background(), 42)

	assert.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, int64(1), summaries[0].PendingDueID)
	assert.True(t, summaries[0].AmountRemaining.Equal(decimal.NewFromInt(1500)))
	assert.True(t, summaries[1].TotalPaid.Equal(decimal.NewFromInt(400)))
	assert.True(t, summaries[0].DueDate.Before(summaries[1].DueDate))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateAssignsID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDueRepository(db)

	due := &domain.PendingDue{
		StudentID: 42,
		DueType:   "Exam Fee",
		AmountDue: decimal.NewFromInt(1500),
		DueDate:   time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC),
		Status:    domain.DueStatusUnpaid,
	}

	mock.ExpectQuery("INSERT INTO pending_due").
		WithArgs(due.StudentID, due.DueType, sqlmock.AnyArg(), sqlmock.AnyArg(), due.Status).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))

	err := repo.Create(context.Background(), due)

	assert.NoError(t, err)
	assert.Equal(t, int64(5), due.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
