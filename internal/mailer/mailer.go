package mailer

import (
	"crypto/tls"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/damilareoj/student-portal-backend/internal/config"
)

// Notifier delivers a message to a user's email address. Implementations
// must not block past their configured timeout.
type Notifier interface {
	Send(to, subject, body string) error
}

// SMTPMailer sends plain-text mail over SMTP with STARTTLS. The TCP dial
// and the whole connection are deadline-bounded so a slow relay cannot
// hang a request.
type SMTPMailer struct {
	host     string
	port     string
	username string
	password string
	from     string
	fromName string
	timeout  time.Duration
}

func NewSMTPMailer(cfg *config.Config) *SMTPMailer {
	return &SMTPMailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		username: cfg.SMTPUser,
		password: cfg.SMTPPassword,
		from:     cfg.MailFrom,
		fromName: cfg.MailFromName,
		timeout:  cfg.MailTimeout,
	}
}

func (m *SMTPMailer) Send(to, subject, body string) error {
	fromHeader := fmt.Sprintf("%s <%s>", m.fromName, m.from)

	msg := strings.Join([]string{
		"From: " + fromHeader,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		`Content-Type: text/plain; charset="UTF-8"`,
		"",
		body,
	}, "\r\n")

	if err := m.send(to, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}

	slog.Info("mail sent", "to", to, "subject", subject)
	return nil
}

func (m *SMTPMailer) send(to string, msg []byte) error {
	addr := net.JoinHostPort(m.host, m.port)

	conn, err := net.DialTimeout("tcp", addr, m.timeout)
	if err != nil {
		return err
	}
	_ = conn.SetDeadline(time.Now().Add(m.timeout))

	c, err := smtp.NewClient(conn, m.host)
	if err != nil {
		conn.Close()
		return err
	}
	defer func() { _ = c.Quit() }()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: m.host}); err != nil {
			return err
		}
	}

	auth := smtp.PlainAuth("", m.username, m.password, m.host)
	if err := c.Auth(auth); err != nil {
		return err
	}

	if err := c.Mail(m.from); err != nil {
		return err
	}
	if err := c.Rcpt(to); err != nil {
		return err
	}

	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}
