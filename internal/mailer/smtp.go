package mailer

import (
	"context"
	"fmt"
	"strings"

	"github.com/senseprojects/timesheet-backend/pkg/config"
	"github.com/senseprojects/timesheet-backend/pkg/logger"
	"github.com/wneessen/go-mail"
)

// SMTPSender delivers messages directly over SMTP
type SMTPSender struct {
	cfg    config.MailConfig
	opts   []mail.Option
	logger *logger.Logger
}

// NewSMTPSender validates the SMTP settings and returns a sender. A
// connection is opened per message.
func NewSMTPSender(cfg config.MailConfig, log *logger.Logger) (*SMTPSender, error) {
	policy, err := tlsPolicy(cfg.TLSPolicy)
	if err != nil {
		return nil, err
	}

	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPolicy(policy),
	}
	if cfg.Timeout > 0 {
		opts = append(opts, mail.WithTimeout(cfg.Timeout))
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	return &SMTPSender{
		cfg:    cfg,
		opts:   opts,
		logger: log.WithComponent("smtp"),
	}, nil
}

// Deliver sends msg to all of its recipients
func (s *SMTPSender) Deliver(ctx context.Context, msg *Message) error {
	m, err := s.buildMsg(msg)
	if err != nil {
		return err
	}

	client, err := mail.NewClient(s.cfg.Host, s.opts...)
	if err != nil {
		return fmt.Errorf("failed to create smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}

	s.logger.Info().
		Str("kind", msg.Kind).
		Str("employee_id", msg.EmployeeID).
		Int("recipients", len(msg.To)).
		Str("subject", msg.Subject).
		Msg("report email sent")
	return nil
}

func (s *SMTPSender) buildMsg(msg *Message) (*mail.Msg, error) {
	if len(msg.To) == 0 {
		return nil, fmt.Errorf("message has no recipients")
	}

	m := mail.NewMsg()
	if err := m.FromFormat(s.cfg.FromName, s.cfg.From); err != nil {
		return nil, fmt.Errorf("invalid sender address %q: %w", s.cfg.From, err)
	}
	if err := m.To(msg.To...); err != nil {
		return nil, fmt.Errorf("invalid recipient: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextPlain, msg.Text)
	if msg.HTML != "" {
		m.AddAlternativeString(mail.TypeTextHTML, msg.HTML)
	}
	return m, nil
}

func tlsPolicy(name string) (mail.TLSPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "opportunistic":
		return mail.TLSOpportunistic, nil
	case "mandatory":
		return mail.TLSMandatory, nil
	case "none":
		return mail.NoTLS, nil
	default:
		return mail.NoTLS, fmt.Errorf("unknown mail tls_policy %q", name)
	}
}
