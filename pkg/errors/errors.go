package errors

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrDueNotFound          = errors.New("pending due not found")
	ErrInvalidPaymentAmount = errors.New("invalid payment amount")
	ErrOverpayment          = errors.New("payment exceeds remaining balance")
	ErrValidation           = errors.New("validation failed")
)

// BusinessError represents a business logic error
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeDueNotFound          = "DUE_NOT_FOUND"
	ErrCodeInvalidPaymentAmount = "INVALID_PAYMENT_AMOUNT"
	ErrCodeOverpayment          = "OVERPAYMENT"
	ErrCodeValidation           = "VALIDATION_ERROR"
	ErrCodeDatabaseError        = "DATABASE_ERROR"
	ErrCodeCacheError           = "CACHE_ERROR"
)

// Wrap common errors with business context

func WrapDueNotFound(dueID int64) *BusinessError {
	return NewBusinessError(
		ErrCodeDueNotFound,
		fmt.Sprintf("Pending due with ID %d not found", dueID),
		ErrDueNotFound,
	)
}

func WrapInvalidPaymentAmount(amount string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidPaymentAmount,
		fmt.Sprintf("Invalid payment amount: %s", amount),
		ErrInvalidPaymentAmount,
	)
}

func WrapOverpayment(attempted, remaining string) *BusinessError {
	return NewBusinessError(
		ErrCodeOverpayment,
		fmt.Sprintf("Payment of %s exceeds remaining balance %s", attempted, remaining),
		ErrOverpayment,
	)
}

func WrapValidation(message string) *BusinessError {
	return NewBusinessError(
		ErrCodeValidation,
		message,
		ErrValidation,
	)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeDatabaseError,
		"database operation failed",
		err,
	)
}

func WrapCacheError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeCacheError,
		"cache operation failed",
		err,
	)
}
