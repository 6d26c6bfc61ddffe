package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"net/smtp"
	"time"
)

// Mailer delivers a single HTML message.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// SMTPMailer sends mail through an authenticated SMTP relay.
type SMTPMailer struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string

	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPMailer(host, port, username, password, from string) *SMTPMailer {
	return &SMTPMailer{
		Host:     host,
		Port:     port,
		Username: username,
		Password: password,
		From:     from,
		sendMail: smtp.SendMail,
	}
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var auth smtp.Auth
	if m.Username != "" {
		auth = smtp.PlainAuth("", m.Username, m.Password, m.Host)
	}
	addr := fmt.Sprintf("%s:%s", m.Host, m.Port)

	msg := []byte(fmt.Sprintf("To: %s\r\n"+
		"From: FixMyArea <%s>\r\n"+
		"Subject: %s\r\n"+
		"MIME-version: 1.0;\r\nContent-Type: text/html; charset=\"UTF-8\";\r\n\r\n"+
		"%s", to, m.From, subject, htmlBody))

	if err := m.sendMail(addr, auth, m.From, []string{to}, msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	slog.Info("Email sent", "to", to, "subject", subject)
	return nil
}

var otpTemplate = template.Must(template.New("otp").Parse(`<div style="font-family:sans-serif">
<p>Your FixMyArea verification code is</p>
<h2 style="letter-spacing:4px">{{.Code}}</h2>
<p>It expires in {{.Minutes}} minutes. If you did not request it, ignore this email.</p>
</div>`))

// RenderOTPEmail renders the body of the passcode email.
func RenderOTPEmail(code string, ttl time.Duration) (string, error) {
	var buf bytes.Buffer
	err := otpTemplate.Execute(&buf, map[string]any{
		"Code":    code,
		"Minutes": int(ttl.Minutes()),
	})
	if err != nil {
		return "", fmt.Errorf("render otp email: %w", err)
	}
	return buf.String(), nil
}
