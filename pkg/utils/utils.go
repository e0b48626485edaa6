package utils

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/campuscore/dues-ledger/internal/domain"
)

// MonthlyFeeToken builds the due_type string for a calendar month,
// e.g. "Monthly Fee - November 2025". The string is both the label
// shown to operators and the dedup key for the monthly batch.
func MonthlyFeeToken(t time.Time) string {
	return fmt.Sprintf("Monthly Fee - %s %d", t.Month().String(), t.Year())
}

// MonthlyDueDate returns the standard due date for a month's fee:
// the given day of that month (the 10th in the default configuration).
func MonthlyDueDate(t time.Time, day int) time.Time {
	return time.Date(t.Year(), t.Month(), day, 0, 0, 0, 0, t.Location())
}

// DeriveStatus computes the status a due must carry given its amount
// and the sum of its payments. This is the single source of truth for
// the status invariant.
func DeriveStatus(amountDue, totalPaid decimal.Decimal) string {
	switch {
	case totalPaid.LessThanOrEqual(decimal.Zero):
		return domain.DueStatusUnpaid
	case totalPaid.GreaterThanOrEqual(amountDue):
		return domain.DueStatusPaid
	default:
		return domain.DueStatusPartiallyPaid
	}
}

// DeriveStatusAfterPayment is DeriveStatus specialized for the payment
// transaction, where a row was just inserted so total paid is known to
// be positive and "unpaid" can never be the outcome.
func DeriveStatusAfterPayment(amountDue, totalPaid decimal.Decimal) string {
	if totalPaid.GreaterThanOrEqual(amountDue) {
		return domain.DueStatusPaid
	}
	return domain.DueStatusPartiallyPaid
}

// DecimalFromString converts string to decimal.Decimal
func DecimalFromString(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}
