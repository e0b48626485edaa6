package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/campuscore/dues-ledger/internal/domain"
	"github.com/campuscore/dues-ledger/internal/service"
	customError "github.com/campuscore/dues-ledger/pkg/errors"
	"github.com/campuscore/dues-ledger/pkg/response"
	"github.com/campuscore/dues-ledger/pkg/validation"
)

// LedgerHandler is the HTTP boundary of the ledger engine. All
// business-rule validation lives here (and in pkg/validation), in
// front of the engine, which only guarantees transactional
// correctness.
type LedgerHandler struct {
	ledger     *service.LedgerService
	monthlyFee *service.MonthlyFeeService
	validator  *validator.Validate
}

func NewLedgerHandler(ledger *service.LedgerService, monthlyFee *service.MonthlyFeeService) *LedgerHandler {
	return &LedgerHandler{
		ledger:     ledger,
		monthlyFee: monthlyFee,
		validator:  validator.New(),
	}
}

// CreateDue handles POST /dues
func (h *LedgerHandler) CreateDue(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateDueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		response.BadRequest(w, "Invalid request", err)
		return
	}

	if err := validation.ValidateNonNegativeAmount(req.Amount); err != nil {
		writeBusinessError(w, err)
		return
	}

	if err := validation.ValidateNotFutureDate(req.DueDate, time.Now()); err != nil {
		writeBusinessError(w, err)
		return
	}

	dueDate, err := validation.ParseDate(req.DueDate)
	if err != nil {
		writeBusinessError(w, err)
		return
	}

	due, err := h.ledger.AddManualDue(r.Context(), req.StudentID, req.DueType, req.Amount, dueDate)
	if err != nil {
		writeBusinessError(w, err)
		return
	}

	response.Created(w, due)
}

// MakePayment handles POST /dues/{dueId}/payments
func (h *LedgerHandler) MakePayment(w http.ResponseWriter, r *http.Request) {
	dueID, ok := pathID(w, r, "dueId")
	if !ok {
		return
	}

	var req domain.MakePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		response.BadRequest(w, "Invalid request", err)
		return
	}

	if err := validation.ValidatePositiveAmount(req.Amount); err != nil {
		writeBusinessError(w, err)
		return
	}

	timestamp := time.Now()
	if req.Timestamp != "" {
		parsed, err := time.Parse(time.RFC3339, req.Timestamp)
		if err != nil {
			response.BadRequest(w, "Timestamp must be RFC 3339", err)
			return
		}
		timestamp = parsed
	}

	// The no-overpayment precondition is enforced here, not in the
	// engine: compute the remaining balance and reject before calling.
	balance, err := h.ledger.GetDueBalance(r.Context(), dueID)
	if err != nil {
		writeBusinessError(w, err)
		return
	}

	if err := validation.ValidateNoOverpayment(req.Amount, balance.AmountRemaining); err != nil {
		writeBusinessError(w, err)
		return
	}

	newStatus, paymentID, err := h.ledger.MakePayment(r.Context(), dueID, req.Amount, req.PaymentMode, timestamp, req.ReceivedBy)
	if err != nil {
		writeBusinessError(w, err)
		return
	}

	response.Created(w, domain.MakePaymentResponse{
		PaymentID: paymentID,
		NewStatus: newStatus,
	})
}

// ListUnpaidDues handles GET /students/{studentId}/dues/unpaid
func (h *LedgerHandler) ListUnpaidDues(w http.ResponseWriter, r *http.Request) {
	studentID, ok := pathID(w, r, "studentId")
	if !ok {
		return
	}

	summaries, err := h.ledger.GetUnpaidDuesForStudent(r.Context(), studentID)
	if err != nil {
		writeBusinessError(w, err)
		return
	}

	response.Success(w, summaries)
}

// ListDueHistory handles GET /students/{studentId}/dues
func (h *LedgerHandler) ListDueHistory(w http.ResponseWriter, r *http.Request) {
	studentID, ok := pathID(w, r, "studentId")
	if !ok {
		return
	}

	summaries, err := h.ledger.GetAllDuesWithSummary(r.Context(), studentID)
	if err != nil {
		writeBusinessError(w, err)
		return
	}

	response.Success(w, summaries)
}

// ListPayments handles GET /dues/{dueId}/payments
func (h *LedgerHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	dueID, ok := pathID(w, r, "dueId")
	if !ok {
		return
	}

	payments, err := h.ledger.GetPaymentsForDue(r.Context(), dueID)
	if err != nil {
		writeBusinessError(w, err)
		return
	}

	response.Success(w, payments)
}

// MonthlyFeeStatus handles GET /monthly-fees/status
func (h *LedgerHandler) MonthlyFeeStatus(w http.ResponseWriter, r *http.Request) {
	alreadyRun, token, err := h.monthlyFee.CheckIfAlreadyRun(r.Context())
	if err != nil {
		writeBusinessError(w, err)
		return
	}

	response.Success(w, domain.MonthlyFeeStatusResponse{
		AlreadyRun: alreadyRun,
		DueType:    token,
	})
}

// RunMonthlyFees handles POST /monthly-fees/run
func (h *LedgerHandler) RunMonthlyFees(w http.ResponseWriter, r *http.Request) {
	result, err := h.monthlyFee.Run(r.Context())
	if err != nil {
		writeBusinessError(w, err)
		return
	}

	response.Success(w, domain.MonthlyFeeRunResponse{
		DueType:       result.DueType,
		DuesCreated:   result.DuesCreated,
		AlreadyPosted: result.AlreadyPosted,
	})
}

// AddCatchUpFee handles POST /students/{studentId}/catch-up-fee
func (h *LedgerHandler) AddCatchUpFee(w http.ResponseWriter, r *http.Request) {
	studentID, ok := pathID(w, r, "studentId")
	if !ok {
		return
	}

	var req domain.CatchUpFeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		response.BadRequest(w, "Invalid request", err)
		return
	}

	if err := validation.ValidatePositiveAmount(req.Amount); err != nil {
		writeBusinessError(w, err)
		return
	}

	// A catch-up fee only makes sense once the month's batch has
	// posted; before that the batch itself will cover the student.
	alreadyRun, _, err := h.monthlyFee.CheckIfAlreadyRun(r.Context())
	if err != nil {
		writeBusinessError(w, err)
		return
	}
	if !alreadyRun {
		response.UnprocessableEntity(w, "This month's fee batch has not posted yet; run it instead", nil)
		return
	}

	due, err := h.monthlyFee.AddCatchUpFee(r.Context(), studentID, req.Amount)
	if err != nil {
		writeBusinessError(w, err)
		return
	}

	response.Created(w, due)
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(w, "Invalid "+name, err)
		return 0, false
	}
	return id, true
}

// writeBusinessError maps the error taxonomy to HTTP statuses.
func writeBusinessError(w http.ResponseWriter, err error) {
	var bizErr *customError.BusinessError
	if errors.As(err, &bizErr) {
		switch bizErr.Code {
		case customError.ErrCodeDueNotFound:
			response.NotFound(w, bizErr.Message)
			return
		case customError.ErrCodeValidation, customError.ErrCodeOverpayment, customError.ErrCodeInvalidPaymentAmount:
			response.UnprocessableEntity(w, bizErr.Message, bizErr.Err)
			return
		}
	}
	response.InternalServerError(w, "Internal server error", err)
}
