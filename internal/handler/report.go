package handler

import (
	"net/http"

	"github.com/campuscore/dues-ledger/internal/service"
	"github.com/campuscore/dues-ledger/pkg/response"
)

type ReportHandler struct {
	reports *service.ReportService
}

func NewReportHandler(reports *service.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// TeacherLeaderboard handles GET /reports/teacher-leaderboard
func (h *ReportHandler) TeacherLeaderboard(w http.ResponseWriter, r *http.Request) {
	standings, err := h.reports.TeacherLeaderboard(r.Context())
	if err != nil {
		writeBusinessError(w, err)
		return
	}

	response.Success(w, standings)
}

// FamilyOutstanding handles GET /reports/family-outstanding
func (h *ReportHandler) FamilyOutstanding(w http.ResponseWriter, r *http.Request) {
	families, err := h.reports.FamilyOutstanding(r.Context())
	if err != nil {
		writeBusinessError(w, err)
		return
	}

	response.Success(w, families)
}
