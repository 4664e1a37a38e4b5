package handler

import (
	"net/http"

	"github.com/senseprojects/timesheet-backend/internal/timesheet/service"
	"github.com/senseprojects/timesheet-backend/pkg/httputil"
	"github.com/senseprojects/timesheet-backend/pkg/logger"
)

// ReportHandler handles daily and monthly report endpoints
type ReportHandler struct {
	service *service.ReportService
	logger  *logger.Logger
}

// NewReportHandler creates a new report handler
func NewReportHandler(svc *service.ReportService, log *logger.Logger) *ReportHandler {
	return &ReportHandler{
		service: svc,
		logger:  log,
	}
}

// SubmitDaily stores a daily report and emails it to HR
func (h *ReportHandler) SubmitDaily(w http.ResponseWriter, r *http.Request) {
	var req service.SubmitDailyRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	res, err := h.service.SubmitDaily(r.Context(), &req)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Message(w, http.StatusCreated, res.Message, res, &httputil.Meta{
		EmailSent:  &res.EmailSent,
		Recipients: len(res.Recipients),
	})
}

// Monthly returns the monthly summary for employee_id between from_date and to_date
func (h *ReportHandler) Monthly(w http.ResponseWriter, r *http.Request) {
	q := service.MonthlyQuery{
		EmployeeID: httputil.QueryString(r, "employee_id"),
		FromDate:   httputil.QueryString(r, "from_date"),
		ToDate:     httputil.QueryString(r, "to_date"),
	}
	if err := httputil.Validate(&q); err != nil {
		httputil.Error(w, err)
		return
	}

	summary, err := h.service.Monthly(r.Context(), q)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	meta := &httputil.Meta{
		Total:     int64(len(summary.Reports)),
		DateRange: summary.DateRangeLabel,
	}
	if len(summary.Reports) == 0 {
		httputil.Message(w, http.StatusOK, service.MsgNoReportsFound, summary, meta)
		return
	}

	httputil.JSONWithMeta(w, http.StatusOK, summary, meta)
}

// SendMonthly emails the monthly summary to HR
func (h *ReportHandler) SendMonthly(w http.ResponseWriter, r *http.Request) {
	var req service.SendMonthlyRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	res, err := h.service.SendMonthly(r.Context(), &req)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	sent := true
	httputil.Message(w, http.StatusOK, res.Message, res, &httputil.Meta{
		Total:      int64(len(res.Summary.Reports)),
		DateRange:  res.Summary.DateRangeLabel,
		EmailSent:  &sent,
		Recipients: len(res.Recipients),
	})
}
