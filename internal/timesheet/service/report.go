package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/senseprojects/timesheet-backend/internal/mailer"
	"github.com/senseprojects/timesheet-backend/internal/timesheet/aggregate"
	"github.com/senseprojects/timesheet-backend/internal/timesheet/domain"
	"github.com/senseprojects/timesheet-backend/internal/timesheet/events"
	"github.com/senseprojects/timesheet-backend/internal/timesheet/report"
	"github.com/senseprojects/timesheet-backend/internal/timesheet/timecalc"
	"github.com/senseprojects/timesheet-backend/pkg/errors"
	"github.com/senseprojects/timesheet-backend/pkg/logger"
)

// Response messages
const (
	MsgReportSavedNoEntries = "Report saved (no projects provided)"
	MsgDailyReportSent      = "Daily report sent successfully to HR manager"
	MsgMonthlyReportSent    = "Monthly report sent successfully to HR manager"
	MsgNoReportsFound       = "No reports found for the selected criteria"
)

// ReportService handles daily submissions and monthly reporting
type ReportService struct {
	employees    EmployeeStore
	projects     ProjectStore
	reports      ReportStore
	renderer     *mailer.Renderer
	delivery     mailer.Delivery
	publisher    *events.TimesheetEventPublisher
	hrRecipients []string
	logger       *logger.Logger
}

// NewReportService creates a new report service. Reports are emailed to
// hrRecipients through delivery.
func NewReportService(
	employees EmployeeStore,
	projects ProjectStore,
	reports ReportStore,
	renderer *mailer.Renderer,
	delivery mailer.Delivery,
	publisher *events.TimesheetEventPublisher,
	hrRecipients []string,
	log *logger.Logger,
) *ReportService {
	return &ReportService{
		employees:    employees,
		projects:     projects,
		reports:      reports,
		renderer:     renderer,
		delivery:     delivery,
		publisher:    publisher,
		hrRecipients: hrRecipients,
		logger:       log,
	}
}

// EntryRequest is one time entry of a daily submission
type EntryRequest struct {
	ProjectID   *string `json:"project_id" validate:"omitempty,uuid"`
	ProjectName string  `json:"project_name" validate:"required,max=255"`
	StartTime   string  `json:"start_time" validate:"required,clock"`
	EndTime     string  `json:"end_time" validate:"required,clock"`
	Description string  `json:"description" validate:"max=4000"`
}

// SubmitDailyRequest represents a daily report submission
type SubmitDailyRequest struct {
	EmployeeID      string         `json:"employee_id" validate:"required,max=64"`
	ReportDate      string         `json:"report_date" validate:"required,date"`
	Entries         []EntryRequest `json:"entries" validate:"dive"`
	AdditionalEmail string         `json:"additional_email" validate:"omitempty,email"`
}

// SubmitDailyResult is the outcome of a daily submission
type SubmitDailyResult struct {
	Report     *domain.DailyReport  `json:"report"`
	Summary    *report.DailySummary `json:"summary,omitempty"`
	Recipients []string             `json:"recipients,omitempty"`
	EmailSent  bool                 `json:"-"`
	Message    string               `json:"-"`
}

// MonthlyQuery selects the reports of a monthly summary
type MonthlyQuery struct {
	EmployeeID string `json:"employee_id" validate:"required,max=64"`
	FromDate   string `json:"from_date" validate:"omitempty,date"`
	ToDate     string `json:"to_date" validate:"omitempty,date"`
}

// SendMonthlyRequest asks for a monthly summary to be emailed
type SendMonthlyRequest struct {
	EmployeeID      string `json:"employee_id" validate:"required,max=64"`
	FromDate        string `json:"from_date" validate:"omitempty,date"`
	ToDate          string `json:"to_date" validate:"omitempty,date"`
	AdditionalEmail string `json:"additional_email" validate:"omitempty,email"`
}

// Query returns the report selection of the request
func (r *SendMonthlyRequest) Query() MonthlyQuery {
	return MonthlyQuery{EmployeeID: r.EmployeeID, FromDate: r.FromDate, ToDate: r.ToDate}
}

// SendMonthlyResult is the outcome of a monthly email
type SendMonthlyResult struct {
	Summary    *report.MonthlySummary `json:"summary"`
	Recipients []string               `json:"recipients"`
	Message    string                 `json:"-"`
}

// SubmitDaily stores a daily report and emails its summary. A submission
// without entries is stored but not emailed. When the email fails the
// report stays stored and a delivery error is returned with the result.
func (s *ReportService) SubmitDaily(ctx context.Context, req *SubmitDailyRequest) (*SubmitDailyResult, error) {
	employeeID := strings.TrimSpace(req.EmployeeID)
	if _, err := timecalc.ParseDate(req.ReportDate); err != nil {
		return nil, errors.Validation(map[string]string{"report_date": "must be a date in YYYY-MM-DD format"})
	}
	if details := validateEntries(req.Entries); len(details) > 0 {
		return nil, errors.Validation(details)
	}

	emp, err := s.employees.GetByID(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	entries, err := s.resolveEntries(ctx, emp.EmployeeID, req.Entries)
	if err != nil {
		return nil, err
	}

	daily := &domain.DailyReport{
		EmployeeID:   emp.EmployeeID,
		EmployeeName: emp.EmployeeName,
		ReportDate:   req.ReportDate,
		Entries:      entries,
	}
	if err := s.reports.CreateWithEntries(ctx, daily); err != nil {
		return nil, err
	}

	summary := report.BuildDailySummary(daily.Entries, daily.EmployeeName, daily.ReportDate)

	log := s.logger.WithEmployee(emp.EmployeeID)
	log.Info().
		Str("report_id", daily.ID).
		Str("report_date", daily.ReportDate).
		Int("entries", summary.Stats.Count).
		Int("total_minutes", summary.Stats.TotalMinutes).
		Msg("daily report stored")
	s.publisher.PublishReportSubmitted(ctx, daily, summary.Stats.TotalMinutes)

	result := &SubmitDailyResult{Report: daily}
	if len(daily.Entries) == 0 {
		result.Message = MsgReportSavedNoEntries
		return result, nil
	}
	result.Summary = &summary

	extra := strings.TrimSpace(req.AdditionalEmail)
	recipients := mailer.Recipients(s.hrRecipients, extra)
	msg, err := s.renderer.RenderDaily(emp.EmployeeID, summary, recipients)
	if err != nil {
		return result, errors.Internal("failed to render report email")
	}
	if err := s.delivery.Deliver(ctx, msg); err != nil {
		log.Error().Err(err).Str("report_id", daily.ID).Msg("daily report email failed")
		return result, errors.MailDelivery(err)
	}

	result.Recipients = recipients
	result.EmailSent = true
	result.Message = sentMessage(MsgDailyReportSent, extra)
	return result, nil
}

// Monthly assembles the summary of an employee's reports in the range
func (s *ReportService) Monthly(ctx context.Context, q MonthlyQuery) (*report.MonthlySummary, error) {
	dr := report.DateRange{From: strings.TrimSpace(q.FromDate), To: strings.TrimSpace(q.ToDate)}
	if err := validateRange(dr); err != nil {
		return nil, err
	}

	emp, err := s.employees.GetByID(ctx, strings.TrimSpace(q.EmployeeID))
	if err != nil {
		return nil, err
	}

	var (
		reports []domain.DailyReport
		meta    []domain.ProjectMeta
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		reports, err = s.reports.ListInRange(gctx, emp.EmployeeID, dr.From, dr.To)
		return err
	})
	g.Go(func() error {
		var err error
		meta, err = s.projects.ListByEmployee(gctx, emp.EmployeeID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary := report.BuildMonthlySummary(reports, meta, dr)
	summary.EmployeeID = emp.EmployeeID
	if summary.EmployeeName == "" {
		summary.EmployeeName = emp.EmployeeName
	}

	s.logAnomalies(emp.EmployeeID, summary.Anomalies)
	return &summary, nil
}

// SendMonthly recomputes the monthly summary and emails it. It refuses to
// send an empty report.
func (s *ReportService) SendMonthly(ctx context.Context, req *SendMonthlyRequest) (*SendMonthlyResult, error) {
	summary, err := s.Monthly(ctx, req.Query())
	if err != nil {
		return nil, err
	}
	if len(summary.Reports) == 0 {
		return nil, errors.BadRequest("no reports found for the selected criteria, generate a report first")
	}

	extra := strings.TrimSpace(req.AdditionalEmail)
	recipients := mailer.Recipients(s.hrRecipients, extra)
	msg, err := s.renderer.RenderMonthly(*summary, recipients)
	if err != nil {
		return nil, errors.Internal("failed to render report email")
	}
	if err := s.delivery.Deliver(ctx, msg); err != nil {
		s.logger.Error().Err(err).Str("employee_id", summary.EmployeeID).Msg("monthly report email failed")
		return nil, errors.MailDelivery(err)
	}

	s.logger.Info().
		Str("employee_id", summary.EmployeeID).
		Str("date_range", summary.DateRangeLabel).
		Int("recipients", len(recipients)).
		Msg("monthly report sent")

	return &SendMonthlyResult{
		Summary:    summary,
		Recipients: recipients,
		Message:    sentMessage(MsgMonthlyReportSent, extra),
	}, nil
}

// resolveEntries links entries to the employee's projects. An explicit
// project ID must belong to the employee; otherwise the trimmed name is
// matched and unmatched entries are stored without an ID.
func (s *ReportService) resolveEntries(ctx context.Context, employeeID string, reqs []EntryRequest) ([]domain.TimeEntry, error) {
	entries := make([]domain.TimeEntry, 0, len(reqs))
	if len(reqs) == 0 {
		return entries, nil
	}

	projects, err := s.projects.ListByEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]bool, len(projects))
	byName := make(map[string]string, len(projects))
	for _, p := range projects {
		byID[p.ID] = true
		byName[strings.TrimSpace(p.ProjectName)] = p.ID
	}

	details := map[string]string{}
	for i, r := range reqs {
		e := domain.TimeEntry{
			ProjectName: strings.TrimSpace(r.ProjectName),
			StartTime:   r.StartTime,
			EndTime:     r.EndTime,
			Description: strings.TrimSpace(r.Description),
		}

		switch {
		case r.ProjectID != nil && *r.ProjectID != "":
			if !byID[*r.ProjectID] {
				details[fmt.Sprintf("entries[%d].project_id", i)] = "unknown project for this employee"
				continue
			}
			id := *r.ProjectID
			e.ProjectID = &id
		default:
			if id, ok := byName[e.ProjectName]; ok {
				e.ProjectID = &id
			}
		}
		entries = append(entries, e)
	}
	if len(details) > 0 {
		return nil, errors.Validation(details)
	}
	return entries, nil
}

func validateEntries(reqs []EntryRequest) map[string]string {
	details := map[string]string{}
	for i, r := range reqs {
		prefix := fmt.Sprintf("entries[%d].", i)
		if strings.TrimSpace(r.ProjectName) == "" {
			details[prefix+"project_name"] = "this field is required"
		}

		e := domain.TimeEntry{StartTime: r.StartTime, EndTime: r.EndTime}
		err := e.Validate()
		switch {
		case err == nil:
		case stderrors.Is(err, domain.ErrEndNotAfterStart):
			details[prefix+"end_time"] = "must be after start_time"
		default:
			if _, perr := timecalc.ParseClock(r.StartTime); perr != nil {
				details[prefix+"start_time"] = "must be a time in HH:MM format"
			}
			if _, perr := timecalc.ParseClock(r.EndTime); perr != nil {
				details[prefix+"end_time"] = "must be a time in HH:MM format"
			}
		}
	}
	return details
}

func (s *ReportService) logAnomalies(employeeID string, anomalies []aggregate.Anomaly) {
	for _, a := range anomalies {
		s.logger.Warn().
			Str("employee_id", employeeID).
			Str("report_id", a.ReportID).
			Str("report_date", a.ReportDate).
			Str("project_name", a.ProjectName).
			Str("start_time", a.StartTime).
			Str("end_time", a.EndTime).
			Str("reason", a.Reason).
			Msg("time entry excluded from totals")
	}
}

func validateRange(dr report.DateRange) error {
	details := map[string]string{}
	if dr.From != "" {
		if _, err := timecalc.ParseDate(dr.From); err != nil {
			details["from_date"] = "must be a date in YYYY-MM-DD format"
		}
	}
	if dr.To != "" {
		if _, err := timecalc.ParseDate(dr.To); err != nil {
			details["to_date"] = "must be a date in YYYY-MM-DD format"
		}
	}
	if len(details) > 0 {
		return errors.Validation(details)
	}
	if err := dr.Validate(); err != nil {
		return errors.Validation(map[string]string{"to_date": "cannot be before from_date"})
	}
	return nil
}

func sentMessage(base, extra string) string {
	if extra == "" {
		return base
	}
	return base + " and " + extra
}
