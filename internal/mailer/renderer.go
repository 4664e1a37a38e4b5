package mailer

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"

	"github.com/senseprojects/timesheet-backend/internal/timesheet/report"
	"github.com/senseprojects/timesheet-backend/internal/timesheet/timecalc"
	"github.com/senseprojects/timesheet-backend/pkg/messaging"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

const (
	dailyHTML   = "daily.html.tmpl"
	dailyText   = "daily.txt.tmpl"
	monthlyHTML = "monthly.html.tmpl"
	monthlyText = "monthly.txt.tmpl"
)

// Renderer turns report summaries into email messages
type Renderer struct {
	html    *htmltemplate.Template
	text    *texttemplate.Template
	company string
	sender  string
}

type view struct {
	Company string
	Sender  string
	Summary interface{}
}

func templateFuncs() map[string]interface{} {
	return map[string]interface{}{
		"duration": timecalc.FormatDuration,
		"clock":    timecalc.FormatClock,
		"longDate": timecalc.FormatLongDate,
		"inc":      func(i int) int { return i + 1 },
	}
}

// NewRenderer parses the embedded templates. company and sender appear in
// the email footer.
func NewRenderer(company, sender string) (*Renderer, error) {
	html, err := htmltemplate.New("html").Funcs(templateFuncs()).ParseFS(templateFS, "templates/*.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse html templates: %w", err)
	}

	text, err := texttemplate.New("text").Funcs(templateFuncs()).ParseFS(templateFS, "templates/*.txt.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse text templates: %w", err)
	}

	return &Renderer{html: html, text: text, company: company, sender: sender}, nil
}

// DailySubject is the subject line of a daily report email
func DailySubject(s report.DailySummary) string {
	return fmt.Sprintf("Daily Time Report - %s (%s)", s.EmployeeName, timecalc.FormatLongDate(s.Date))
}

// MonthlySubject is the subject line of a monthly report email
func MonthlySubject(s report.MonthlySummary) string {
	return fmt.Sprintf("Monthly Time Report - %s (%s)", s.EmployeeName, s.DateRangeLabel)
}

// RenderDaily renders a daily summary addressed to the given recipients
func (r *Renderer) RenderDaily(employeeID string, s report.DailySummary, to []string) (*Message, error) {
	htmlBody, textBody, err := r.render(dailyHTML, dailyText, s)
	if err != nil {
		return nil, err
	}
	return &Message{
		Kind:       messaging.ReportKindDaily,
		EmployeeID: employeeID,
		To:         to,
		Subject:    DailySubject(s),
		HTML:       htmlBody,
		Text:       textBody,
	}, nil
}

// RenderMonthly renders a monthly summary addressed to the given recipients
func (r *Renderer) RenderMonthly(s report.MonthlySummary, to []string) (*Message, error) {
	htmlBody, textBody, err := r.render(monthlyHTML, monthlyText, s)
	if err != nil {
		return nil, err
	}
	return &Message{
		Kind:       messaging.ReportKindMonthly,
		EmployeeID: s.EmployeeID,
		To:         to,
		Subject:    MonthlySubject(s),
		HTML:       htmlBody,
		Text:       textBody,
	}, nil
}

func (r *Renderer) render(htmlName, textName string, summary interface{}) (string, string, error) {
	data := view{Company: r.company, Sender: r.sender, Summary: summary}

	var htmlBuf, textBuf bytes.Buffer
	if err := r.html.ExecuteTemplate(&htmlBuf, htmlName, data); err != nil {
		return "", "", fmt.Errorf("failed to render %s: %w", htmlName, err)
	}
	if err := r.text.ExecuteTemplate(&textBuf, textName, data); err != nil {
		return "", "", fmt.Errorf("failed to render %s: %w", textName, err)
	}
	return htmlBuf.String(), textBuf.String(), nil
}
