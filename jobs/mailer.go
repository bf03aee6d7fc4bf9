package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/locallibrary/locallibrary/internal/jobs"
)

// Mailer delivers a single email.
type Mailer interface {
	Send(ctx context.Context, msg SendEmailPayload) error
}

// SMTPMailer sends plain-text mail through an unauthenticated SMTP relay.
type SMTPMailer struct {
	Host string
	Port int
	From string

	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPMailer builds a mailer for host:port.
func NewSMTPMailer(host string, port int, from string) *SMTPMailer {
	return &SMTPMailer{Host: host, Port: port, From: from, send: smtp.SendMail}
}

// Send writes the message to the relay.
func (m *SMTPMailer) Send(ctx context.Context, msg SendEmailPayload) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(msg.To) == "" {
		return errors.New("mailer: empty recipient")
	}
	addr := net.JoinHostPort(m.Host, strconv.Itoa(m.Port))
	if err := m.send(addr, nil, m.From, []string{msg.To}, m.compose(msg)); err != nil {
		return fmt.Errorf("mailer: send to %s: %w", msg.To, err)
	}
	return nil
}

func (m *SMTPMailer) compose(msg SendEmailPayload) []byte {
	var b strings.Builder
	b.WriteString("From: " + m.From + "\r\n")
	b.WriteString("To: " + msg.To + "\r\n")
	b.WriteString("Subject: " + headerSafe(msg.Subject) + "\r\n")
	b.WriteString("Date: " + time.Now().UTC().Format(time.RFC1123Z) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(strings.ReplaceAll(msg.Body, "\n", "\r\n"))
	return []byte(b.String())
}

func headerSafe(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}

// MailJob handles mail:send tasks.
type MailJob struct {
	Mailer  Mailer
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// Handle decodes the payload and delivers it. Malformed payloads are dropped.
func (j *MailJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Mailer == nil {
		return errors.New("mail: handler not configured")
	}
	var payload SendEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("mail: decode payload: %v: %w", err, asynq.SkipRetry)
	}
	tracker := j.Metrics.Track(TaskTypeSendEmail)
	err := j.Mailer.Send(ctx, payload)
	if err != nil {
		j.logger().Warn("send email", slog.String("to", payload.To), slog.Any("error", err))
	} else {
		j.logger().Info("email sent", slog.String("to", payload.To), slog.String("subject", payload.Subject))
	}
	return tracker.End(err)
}

func (j *MailJob) logger() *slog.Logger {
	if j.Logger == nil {
		return slog.Default()
	}
	return j.Logger
}
