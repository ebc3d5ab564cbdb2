package email

import (
	"context"
	"crypto/tls"
	"fmt"

	"boilerplate_backend/internal/config"
	"boilerplate_backend/internal/logger"

	"gopkg.in/gomail.v2"
)

// Sender отправляет готовое письмо
type Sender interface {
	Send(ctx context.Context, msg *Message) error
}

// SMTPSender - отправка через SMTP
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPSender(cfg config.EmailConfig) *SMTPSender {
	dialer := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword)
	// 465 - неявный TLS, на остальных портах STARTTLS
	dialer.SSL = cfg.SMTPPort == 465
	if cfg.UseTLS {
		dialer.TLSConfig = &tls.Config{ServerName: cfg.SMTPHost, MinVersion: tls.VersionTLS12}
	}

	from := cfg.FromEmail
	if cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", cfg.FromName, cfg.FromEmail)
	}

	return &SMTPSender{dialer: dialer, from: from}
}

// Send отправляет email сообщение
func (s *SMTPSender) Send(ctx context.Context, msg *Message) error {
	if len(msg.To) == 0 {
		return fmt.Errorf("no recipients specified")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", msg.To...)
	m.SetHeader("Subject", msg.Subject)

	if msg.HTMLBody != "" {
		m.SetBody("text/html", msg.HTMLBody)
		if msg.Body != "" {
			m.AddAlternative("text/plain", msg.Body)
		}
	} else {
		m.SetBody("text/plain", msg.Body)
	}

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// LogSender пишет письмо в лог вместо отправки (dev без SMTP).
// Текст со ссылкой виден на уровне debug
type LogSender struct{}

func (LogSender) Send(ctx context.Context, msg *Message) error {
	logger.CtxInfo(ctx, "email (not sent, SMTP disabled)",
		"to", msg.To,
		"subject", msg.Subject,
	)
	logger.CtxDebug(ctx, "email body", "to", msg.To, "body", msg.Body)
	return nil
}

// NewSender выбирает реализацию по конфигу
func NewSender(cfg config.EmailConfig) Sender {
	if cfg.SMTPHost == "" {
		return LogSender{}
	}
	return NewSMTPSender(cfg)
}
