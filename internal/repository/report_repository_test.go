package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListStudentFees(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewReportRepository(db)

	rows := sqlmock.NewRows([]string{"student_id", "monthly_fee"}).
		AddRow(1, "1000.00").
		AddRow(2, "0").
		AddRow(3, "2000.00")

	mock.ExpectQuery("FROM student").WillReturnRows(rows)

	fees, err := repo.ListStudentFees(context.Background())

	assert.NoError(t, err)
	require.Len(t, fees, 3)
	assert.True(t, fees[1].MonthlyFee.IsZero())
	assert.True(t, fees[2].MonthlyFee.Equal(decimal.NewFromInt(2000)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherLeaderboardQuery(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewReportRepository(db)

	joined := time.Date(2020, time.March, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"teacher_id", "full_name", "joining_date", "complaint_count"}).
		AddRow(9, "A. Khan", joined, 0).
		AddRow(4, "B. Ali", joined, 0).
		AddRow(2, "C. Shah", joined, 2)

	mock.ExpectQuery("FROM teacher t").WillReturnRows(rows)

	standings, err := repo.TeacherLeaderboard(context.Background())

	assert.NoError(t, err)
	require.Len(t, standings, 3)
	// Ties on complaint count come back with the higher teacher ID first.
	assert.Equal(t, int64(9), standings[0].TeacherID)
	assert.Equal(t, int64(4), standings[1].TeacherID)
	assert.Equal(t, 2, standings[2].ComplaintCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}
