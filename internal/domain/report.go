package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// StudentFee is the slice of the student directory the monthly fee
// batch needs: who the student is and what they owe each month.
type StudentFee struct {
	StudentID  int64           `json:"student_id" db:"student_id"`
	MonthlyFee decimal.Decimal `json:"monthly_fee" db:"monthly_fee"`
}

// TeacherStanding is one row of the teacher leaderboard, ranked by
// complaint count (fewest complaints first).
type TeacherStanding struct {
	TeacherID      int64     `json:"teacher_id" db:"teacher_id"`
	FullName       string    `json:"full_name" db:"full_name"`
	JoiningDate    time.Time `json:"joining_date" db:"joining_date"`
	ComplaintCount int       `json:"complaint_count" db:"complaint_count"`
	Rank           int       `json:"rank" db:"-"`
}

// FamilyOutstanding aggregates the remaining dues of every student in
// a family.
type FamilyOutstanding struct {
	FamilyID         int64           `json:"family_id" db:"family_id"`
	FamilyName       string          `json:"family_name" db:"family_name"`
	TotalOutstanding decimal.Decimal `json:"total_outstanding" db:"total_outstanding"`
}
