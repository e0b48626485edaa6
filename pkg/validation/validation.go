// Package validation centralizes the business-rule checks every caller
// of the ledger engine applies before invoking it. The engine itself
// performs no business-rule validation; it trusts input once these
// checks have passed.
package validation

import (
	"regexp"
	"time"

	"github.com/shopspring/decimal"

	customError "github.com/campuscore/dues-ledger/pkg/errors"
)

const DateLayout = "2006-01-02"

var dateShape = regexp.MustCompile(`^\d{4}-\d{1,2}-\d{1,2}$`)

// ParseDate validates that a date string is a real calendar date in
// YYYY-MM-DD form and returns it parsed.
func ParseDate(dateStr string) (time.Time, error) {
	if dateStr == "" {
		return time.Time{}, customError.WrapValidation("Date field cannot be empty")
	}
	if !dateShape.MatchString(dateStr) {
		return time.Time{}, customError.WrapValidation("Date must be in YYYY-MM-DD format")
	}
	t, err := time.Parse(DateLayout, dateStr)
	if err != nil {
		return time.Time{}, customError.WrapValidation("Date must be a valid date in YYYY-MM-DD format")
	}
	return t, nil
}

// ValidateNotFutureDate checks that a date string is today or in the
// past. Due dates and payment dates are entered after the fact, never
// ahead of it.
func ValidateNotFutureDate(dateStr string, now time.Time) error {
	t, err := ParseDate(dateStr)
	if err != nil {
		return err
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if t.After(today) {
		return customError.WrapValidation("Date cannot be in the future")
	}
	return nil
}

// ValidatePositiveAmount checks that an amount is strictly greater
// than zero (payments, monthly fees).
func ValidatePositiveAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return customError.WrapValidation("Amount must be greater than zero")
	}
	return nil
}

// ValidateNonNegativeAmount checks that an amount is zero or more
// (manual dues may legitimately be zero).
func ValidateNonNegativeAmount(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return customError.WrapValidation("Amount cannot be negative")
	}
	return nil
}

// ValidateNoOverpayment enforces the caller-side precondition of the
// payment operation: the engine records whatever amount it is given,
// so the remaining balance must be checked here, before the call.
func ValidateNoOverpayment(amount, remaining decimal.Decimal) error {
	if amount.GreaterThan(remaining) {
		return customError.WrapOverpayment(amount.String(), remaining.String())
	}
	return nil
}
