package notifier

import (
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/rs/zerolog/log"
)

// Notifier delivers a message to the operator.
type Notifier interface {
	Send(subject, body string) error
	Name() string
}

// EmailNotifier sends plain text mail over SMTP with implicit TLS, the way
// Gmail app passwords expect.
type EmailNotifier struct {
	Host string
	Port int
	From string
	To   string
	// Password is an app password, not the account password.
	Password string
}

// NewEmailNotifier creates a notifier for the given SMTP endpoint.
func NewEmailNotifier(host string, port int, from, to, password string) *EmailNotifier {
	return &EmailNotifier{Host: host, Port: port, From: from, To: to, Password: password}
}

func (n *EmailNotifier) Name() string { return "email" }

func (n *EmailNotifier) Send(subject, body string) error {
	addr := fmt.Sprintf("%s:%d", n.Host, n.Port)
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: n.Host})
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	client, err := smtp.NewClient(conn, n.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp client: %w", err)
	}
	defer client.Close()

	auth := smtp.PlainAuth("", n.From, n.Password, n.Host)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("smtp auth: %w", err)
	}
	if err := client.Mail(n.From); err != nil {
		return fmt.Errorf("smtp mail: %w", err)
	}
	if err := client.Rcpt(n.To); err != nil {
		return fmt.Errorf("smtp rcpt: %w", err)
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	msg := buildMessage(n.From, n.To, subject, body)
	if _, err := w.Write([]byte(msg)); err != nil {
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp close: %w", err)
	}
	if err := client.Quit(); err != nil {
		log.Debug().Err(err).Msg("smtp quit failed")
	}
	log.Info().Str("to", n.To).Str("subject", subject).Msg("summary email sent")
	return nil
}

func buildMessage(from, to, subject, body string) string {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	return b.String()
}

// NoopNotifier drops messages, used when email is not configured.
type NoopNotifier struct{}

func (NoopNotifier) Name() string { return "noop" }

func (NoopNotifier) Send(subject, _ string) error {
	log.Debug().Str("subject", subject).Msg("notification dropped (notifier not configured)")
	return nil
}
