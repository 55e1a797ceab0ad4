package mailer

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/srijonashraf/sellswipe-server/internal/config"
	"github.com/srijonashraf/sellswipe-server/internal/platform/logger"
)

// Sender delivers moderation notifications to listing owners. Usecases
// treat delivery as best effort; a failed send never fails the
// moderation action itself.
type Sender interface {
	Send(ctx context.Context, to, subject, bodyText string) error
}

type smtpSender struct {
	cfg    *config.SMTPConfig
	dialer *gomail.Dialer
	logger *logger.Logger
}

func NewSMTPSender(cfg *config.SMTPConfig, log *logger.Logger) (Sender, error) {
	if cfg.Host == "" || cfg.Port == 0 || cfg.SenderEmail == "" {
		return nil, fmt.Errorf("SMTP host, port, and sender email must be configured")
	}

	return &smtpSender{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		logger: log.Named("SMTPSender"),
	}, nil
}

func (s *smtpSender) Send(ctx context.Context, to, subject, bodyText string) error {
	if to == "" {
		return fmt.Errorf("no recipient provided for email")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.SenderEmail)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", bodyText)

	done := make(chan error, 1)
	go func() {
		done <- s.dialer.DialAndSend(m)
	}()

	select {
	case <-ctx.Done():
		s.logger.Warn("Email sending cancelled by context",
			zap.String("to", to), zap.String("subject", subject), zap.Error(ctx.Err()))
		return fmt.Errorf("email sending cancelled or timed out: %w", ctx.Err())
	case err := <-done:
		if err != nil {
			s.logger.Error("Failed to send email",
				zap.String("to", to), zap.String("subject", subject), zap.Error(err))
			return fmt.Errorf("failed to send email: %w", err)
		}
	}

	s.logger.Debug("Email sent", zap.String("to", to), zap.String("subject", subject))
	return nil
}
