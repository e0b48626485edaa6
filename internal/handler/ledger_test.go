package handler

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/campuscore/dues-ledger/internal/domain"
	"github.com/campuscore/dues-ledger/internal/service"
	"github.com/campuscore/dues-ledger/tests/mocks"
)

func newTestRouter(dueRepo *mocks.MockDueRepository, paymentRepo *mocks.MockPaymentRepository) *mux.Router {
	ledgerService := service.NewLedgerService(dueRepo, paymentRepo)
	monthlyFeeService := service.NewMonthlyFeeService(dueRepo, new(mocks.MockReportRepository), 10)
	h := NewLedgerHandler(ledgerService, monthlyFeeService)

	router := mux.NewRouter()
	router.HandleFunc("/dues", h.CreateDue).Methods("POST")
	router.HandleFunc("/dues/{dueId}/payments", h.MakePayment).Methods("POST")
	return router
}

func paymentBody(t *testing.T, amount int64) *bytes.Buffer {
	body, err := json.Marshal(domain.MakePaymentRequest{
		Amount:      decimal.NewFromInt(amount),
		PaymentMode: "Cash",
		ReceivedBy:  "reception-1",
	})
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	return bytes.NewBuffer(body)
}

func TestMakePaymentHandler_RejectsOverpayment(t *testing.T) {
	dueRepo := new(mocks.MockDueRepository)
	paymentRepo := new(mocks.MockPaymentRepository)

	dueRepo.On("GetByID", mock.Anything, int64(7)).Return(&domain.PendingDue{
		ID:        7,
		AmountDue: decimal.NewFromInt(1500),
		Status:    domain.DueStatusPartiallyPaid,
	}, nil)
	paymentRepo.On("GetTotalPaid", mock.Anything, int64(7)).Return(decimal.NewFromInt(500), nil)

	router := newTestRouter(dueRepo, paymentRepo)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/dues/7/payments", paymentBody(t, 1001))

	router.ServeHTTP(rec, req)

	// Remaining is 1000; the guard sits in front of the engine, so the
	// transaction is never attempted.
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	dueRepo.AssertNotCalled(t, "MakePayment", mock.Anything, mock.Anything)
}

func TestMakePaymentHandler_RecordsPayment(t *testing.T) {
	dueRepo := new(mocks.MockDueRepository)
	paymentRepo := new(mocks.MockPaymentRepository)

	dueRepo.On("GetByID", mock.Anything, int64(7)).Return(&domain.PendingDue{
		ID:        7,
		AmountDue: decimal.NewFromInt(1500),
		Status:    domain.DueStatusUnpaid,
	}, nil)
	paymentRepo.On("GetTotalPaid", mock.Anything, int64(7)).Return(decimal.Zero, nil)
	dueRepo.On("MakePayment", mock.Anything, mock.MatchedBy(func(p *domain.PaymentRecord) bool {
		return p.PendingDueID == 7 && p.AmountPaid.Equal(decimal.NewFromInt(500))
	})).Return(domain.DueStatusPartiallyPaid, int64(11), nil)

	router := newTestRouter(dueRepo, paymentRepo)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/dues/7/payments", paymentBody(t, 500))

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	dueRepo.AssertExpectations(t)
}

func TestMakePaymentHandler_UnknownDue(t *testing.T) {
	dueRepo := new(mocks.MockDueRepository)
	paymentRepo := new(mocks.MockPaymentRepository)

	dueRepo.On("GetByID", mock.Anything, int64(99999)).Return(nil, sql.ErrNoRows)

	router := newTestRouter(dueRepo, paymentRepo)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/dues/99999/payments", paymentBody(t, 500))

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	dueRepo.AssertNotCalled(t, "MakePayment", mock.Anything, mock.Anything)
}

func TestCreateDueHandler_RejectsFutureDate(t *testing.T) {
	dueRepo := new(mocks.MockDueRepository)
	paymentRepo := new(mocks.MockPaymentRepository)

	body, _ := json.Marshal(domain.CreateDueRequest{
		StudentID: 42,
		DueType:   "Exam Fee",
		Amount:    decimal.NewFromInt(1500),
		DueDate:   "2999-01-01",
	})

	router := newTestRouter(dueRepo, paymentRepo)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/dues", bytes.NewBuffer(body))

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	dueRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}
