package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/campuscore/dues-ledger/internal/domain"
	customError "github.com/campuscore/dues-ledger/pkg/errors"
	"github.com/campuscore/dues-ledger/pkg/utils"
)

const fkViolation = "23503"

type dueRepository struct {
	db *sqlx.DB
}

func NewDueRepository(db *sqlx.DB) DueRepository {
	return &dueRepository{db: db}
}

func (r *dueRepository) Create(ctx context.Context, due *domain.PendingDue) error {
	query := `
		INSERT INTO pending_due (student_id, due_type, amount_due, due_date, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	return r.db.QueryRowxContext(ctx, query,
		due.StudentID,
		due.DueType,
		due.AmountDue,
		due.DueDate,
		due.Status,
	).Scan(&due.ID)
}

func (r *dueRepository) GetByID(ctx context.Context, dueID int64) (*domain.PendingDue, error) {
	query := `
		SELECT id, student_id, due_type, amount_due, due_date, status
		FROM pending_due
		WHERE id = $1
	`

	var due domain.PendingDue
	err := r.db.GetContext(ctx, &due, query, dueID)
	if err != nil {
		return nil, err
	}

	return &due, nil
}

func (r *dueRepository) DueTypeExists(ctx context.Context, dueType string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM pending_due WHERE due_type = $1)`

	var exists bool
	err := r.db.GetContext(ctx, &exists, query, dueType)
	if err != nil {
		return false, err
	}

	return exists, nil
}

// InsertMonthlyBatch re-checks the token and inserts all dues inside a
// single serializable transaction. A half-applied batch would make the
// token check lie on the next run, so it is all-or-nothing.
func (r *dueRepository) InsertMonthlyBatch(ctx context.Context, dueType string, dues []*domain.PendingDue) (int, error) {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var exists bool
	err = tx.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM pending_due WHERE due_type = $1)`, dueType)
	if err != nil {
		return 0, err
	}
	if exists {
		return 0, nil
	}

	query := `
		INSERT INTO pending_due (student_id, due_type, amount_due, due_date, status)
		VALUES ($1, $2, $3, $4, $5)
	`

	for _, due := range dues {
		_, err = tx.ExecContext(ctx, query,
			due.StudentID,
			due.DueType,
			due.AmountDue,
			due.DueDate,
			due.Status,
		)
		if err != nil {
			return 0, err
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}

	return len(dues), nil
}

// MakePayment performs the payment transaction: insert the record,
// re-read the due with a row lock, recompute the total and update the
// status. Any failure rolls the whole thing back.
func (r *dueRepository) MakePayment(ctx context.Context, payment *domain.PaymentRecord) (string, int64, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return "", 0, err
	}
	defer tx.Rollback()

	insertQuery := `
		INSERT INTO payment_record (pending_due_id, amount_paid, payment_timestamp, payment_mode, received_by_user)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	var paymentID int64
	err = tx.QueryRowxContext(ctx, insertQuery,
		payment.PendingDueID,
		payment.AmountPaid,
		payment.PaymentTimestamp,
		payment.PaymentMode,
		payment.ReceivedByUser,
	).Scan(&paymentID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == fkViolation {
			return "", 0, customError.WrapDueNotFound(payment.PendingDueID)
		}
		return "", 0, err
	}

	// The row lock serializes concurrent payments against the same due
	// so the recompute below never works from a stale total.
	var amountDue decimal.Decimal
	err = tx.GetContext(ctx, &amountDue, `SELECT amount_due FROM pending_due WHERE id = $1 FOR UPDATE`, payment.PendingDueID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", 0, customError.WrapDueNotFound(payment.PendingDueID)
		}
		return "", 0, err
	}

	var totalPaid decimal.Decimal
	err = tx.GetContext(ctx, &totalPaid, `SELECT COALESCE(SUM(amount_paid), 0) FROM payment_record WHERE pending_due_id = $1`, payment.PendingDueID)
	if err != nil {
		return "", 0, err
	}

	newStatus := utils.DeriveStatusAfterPayment(amountDue, totalPaid)

	_, err = tx.ExecContext(ctx, `UPDATE pending_due SET status = $1 WHERE id = $2`, newStatus, payment.PendingDueID)
	if err != nil {
		return "", 0, err
	}

	if err = tx.Commit(); err != nil {
		return "", 0, err
	}

	return newStatus, paymentID, nil
}

const dueSummaryColumns = `
	pd.id AS pending_due_id,
	pd.due_type,
	pd.amount_due,
	pd.due_date,
	pd.status,
	COALESCE(SUM(pr.amount_paid), 0) AS total_paid,
	pd.amount_due - COALESCE(SUM(pr.amount_paid), 0) AS amount_remaining
`

func (r *dueRepository) GetUnpaidSummaries(ctx context.Context, studentID int64) ([]*domain.DueSummary, error) {
	query := `
		SELECT ` + dueSummaryColumns + `
		FROM pending_due pd
		LEFT JOIN payment_record pr ON pd.id = pr.pending_due_id
		WHERE pd.student_id = $1
		GROUP BY pd.id, pd.due_type, pd.amount_due, pd.due_date, pd.status
		HAVING pd.status <> 'paid' AND pd.amount_due - COALESCE(SUM(pr.amount_paid), 0) > 0
		ORDER BY pd.due_date ASC
	`

	var summaries []*domain.DueSummary
	err := r.db.SelectContext(ctx, &summaries, query, studentID)
	if err != nil {
		return nil, err
	}

	return summaries, nil
}

func (r *dueRepository) GetAllSummaries(ctx context.Context, studentID int64) ([]*domain.DueSummary, error) {
	query := `
		SELECT ` + dueSummaryColumns + `
		FROM pending_due pd
		LEFT JOIN payment_record pr ON pd.id = pr.pending_due_id
		WHERE pd.student_id = $1
		GROUP BY pd.id, pd.due_type, pd.amount_due, pd.due_date, pd.status
		ORDER BY pd.due_date DESC
	`

	var summaries []*domain.DueSummary
	err := r.db.SelectContext(ctx, &summaries, query, studentID)
	if err != nil {
		return nil, err
	}

	return summaries, nil
}
