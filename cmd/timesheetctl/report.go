package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/senseprojects/timesheet-backend/internal/mailer"
	"github.com/senseprojects/timesheet-backend/internal/timesheet/repository"
	"github.com/senseprojects/timesheet-backend/internal/timesheet/service"
	"github.com/senseprojects/timesheet-backend/pkg/config"
	"github.com/senseprojects/timesheet-backend/pkg/database"
	"github.com/senseprojects/timesheet-backend/pkg/httputil"
	"github.com/senseprojects/timesheet-backend/pkg/messaging"
	"github.com/spf13/cobra"
)

var (
	monthlyEmployee string
	monthlyFrom     string
	monthlyTo       string
	monthlyFormat   string
	monthlySend     bool
	monthlyCC       string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Inspect and send reports",
}

var reportMonthlyCmd = &cobra.Command{
	Use:   "monthly",
	Short: "Print an employee's monthly summary, or email it with --send",
	Args:  cobra.NoArgs,
	RunE:  runReportMonthly,
}

func init() {
	f := reportMonthlyCmd.Flags()
	f.StringVar(&monthlyEmployee, "employee", "", "Employee ID (required)")
	f.StringVar(&monthlyFrom, "from", "", "First report date, YYYY-MM-DD")
	f.StringVar(&monthlyTo, "to", "", "Last report date, YYYY-MM-DD")
	f.StringVar(&monthlyFormat, "format", "text", "Output format: text, json")
	f.BoolVar(&monthlySend, "send", false, "Email the summary to HR instead of printing it")
	f.StringVar(&monthlyCC, "cc", "", "Additional recipient when sending")
	_ = reportMonthlyCmd.MarkFlagRequired("employee")

	reportCmd.AddCommand(reportMonthlyCmd)
}

func runReportMonthly(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	format := strings.ToLower(monthlyFormat)
	if format != "text" && format != "json" {
		return fmt.Errorf("unknown format %q", monthlyFormat)
	}

	db, err := database.New(&cfg.Database, log)
	if err != nil {
		return err
	}
	defer db.Close()

	renderer, err := mailer.NewRenderer(cfg.Mail.CompanyName, cfg.Mail.FromName)
	if err != nil {
		return err
	}

	var delivery mailer.Delivery
	if monthlySend {
		d, closeFn, err := newDelivery(cfg)
		if err != nil {
			return err
		}
		defer closeFn()
		delivery = d
	}

	employeeRepo := repository.NewEmployeeRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	reportRepo := repository.NewReportRepository(db)
	svc := service.NewReportService(employeeRepo, projectRepo, reportRepo,
		renderer, delivery, nil, cfg.Mail.HRRecipients, log)

	out := cmd.OutOrStdout()

	if monthlySend {
		req := &service.SendMonthlyRequest{
			EmployeeID:      monthlyEmployee,
			FromDate:        monthlyFrom,
			ToDate:          monthlyTo,
			AdditionalEmail: monthlyCC,
		}
		if err := httputil.Validate(req); err != nil {
			return err
		}
		res, err := svc.SendMonthly(ctx, req)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s (%s)\n", res.Message, strings.Join(res.Recipients, ", "))
		return nil
	}

	q := service.MonthlyQuery{EmployeeID: monthlyEmployee, FromDate: monthlyFrom, ToDate: monthlyTo}
	if err := httputil.Validate(&q); err != nil {
		return err
	}
	summary, err := svc.Monthly(ctx, q)
	if err != nil {
		return err
	}

	if format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	}

	if len(summary.Reports) == 0 {
		fmt.Fprintln(out, service.MsgNoReportsFound)
		return nil
	}
	msg, err := renderer.RenderMonthly(*summary, nil)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, msg.Subject)
	fmt.Fprintln(out)
	fmt.Fprint(out, msg.Text)
	return nil
}

// newDelivery builds the configured mail delivery. Queue mode needs a
// broker connection, released by the returned func.
func newDelivery(cfg *config.Config) (mailer.Delivery, func(), error) {
	if cfg.Mail.Delivery != config.DeliveryQueue {
		smtp, err := mailer.NewSMTPSender(cfg.Mail, log)
		if err != nil {
			return nil, nil, err
		}
		return smtp, func() {}, nil
	}

	rmq, err := messaging.New(&cfg.RabbitMQ, log)
	if err != nil {
		return nil, nil, err
	}
	pub, err := messaging.NewPublisher(rmq, messaging.ExchangeTimesheetEvents, serviceName, log)
	if err != nil {
		rmq.Close()
		return nil, nil, err
	}
	return mailer.NewQueueDelivery(pub), func() { rmq.Close() }, nil
}
