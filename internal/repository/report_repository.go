package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/campuscore/dues-ledger/internal/domain"
)

type reportRepository struct {
	db *sqlx.DB
}

func NewReportRepository(db *sqlx.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) ListStudentFees(ctx context.Context) ([]*domain.StudentFee, error) {
	query := `SELECT id AS student_id, monthly_fee FROM student`

	var fees []*domain.StudentFee
	err := r.db.SelectContext(ctx, &fees, query)
	if err != nil {
		return nil, err
	}

	return fees, nil
}

func (r *reportRepository) TeacherLeaderboard(ctx context.Context) ([]*domain.TeacherStanding, error) {
	query := `
		SELECT
			t.id AS teacher_id,
			f.first_name || ' ' || COALESCE(f.middle_name || ' ', '') || f.last_name AS full_name,
			t.joining_date,
			COUNT(c.id) AS complaint_count
		FROM teacher t
		JOIN person p ON t.person_id = p.id
		JOIN fullname f ON f.person_id = p.id
		LEFT JOIN complaint c ON t.id = c.teacher_id
		GROUP BY t.id, f.first_name, f.middle_name, f.last_name, t.joining_date
		ORDER BY complaint_count ASC, t.id DESC
	`

	var standings []*domain.TeacherStanding
	err := r.db.SelectContext(ctx, &standings, query)
	if err != nil {
		return nil, err
	}

	return standings, nil
}

func (r *reportRepository) FamilyOutstanding(ctx context.Context) ([]*domain.FamilyOutstanding, error) {
	query := `
		SELECT
			fam.id AS family_id,
			COALESCE(fam.family_name, '') AS family_name,
			COALESCE(SUM(pd.amount_due - COALESCE(paid.total_paid, 0)), 0) AS total_outstanding
		FROM family fam
		JOIN student s ON s.family_id = fam.id
		JOIN pending_due pd ON pd.student_id = s.id
		LEFT JOIN (
			SELECT pending_due_id, COALESCE(SUM(amount_paid), 0) AS total_paid
			FROM payment_record
			GROUP BY pending_due_id
		) paid ON paid.pending_due_id = pd.id
		WHERE pd.status <> 'paid'
		GROUP BY fam.id, fam.family_name
		ORDER BY total_outstanding DESC, fam.id ASC
	`

	var families []*domain.FamilyOutstanding
	err := r.db.SelectContext(ctx, &families, query)
	if err != nil {
		return nil, err
	}

	return families, nil
}
