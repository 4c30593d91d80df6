package email

import (
	"context"
	"fmt"
	"net/smtp"
	"time"

	"github.com/seeran-grades/seeran-backend/internal/logging"
)

// sendMailFunc matches smtp.SendMail
type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPSender delivers activation codes through a plain SMTP relay
type SMTPSender struct {
	smtpHost     string
	smtpPort     string
	smtpUser     string
	smtpPassword string
	fromEmail    string
	codeTTL      time.Duration
	send         sendMailFunc
}

func NewSMTPSender(smtpHost, smtpPort, smtpUser, smtpPassword, fromEmail string, codeTTL time.Duration) *SMTPSender {
	if fromEmail == "" {
		fromEmail = smtpUser
	}
	return &SMTPSender{
		smtpHost:     smtpHost,
		smtpPort:     smtpPort,
		smtpUser:     smtpUser,
		smtpPassword: smtpPassword,
		fromEmail:    fromEmail,
		codeTTL:      codeTTL,
		send:         smtp.SendMail,
	}
}

// SendOTPEmail sends code to the given address
func (s *SMTPSender) SendOTPEmail(ctx context.Context, to, code string) error {
	logger := logging.GetLoggerFromContext(ctx)

	msg, err := renderOTP(code, minutes(s.codeTTL))
	if err != nil {
		logger.Error("failed to render otp email", "error", err)
		return fmt.Errorf("render template: %w", err)
	}

	if err := s.sendEmail(to, msg.Subject, msg.HTML); err != nil {
		logger.Error("failed to send otp email", "email", to, "error", err)
		return fmt.Errorf("send email: %w", err)
	}

	logger.Info("otp email sent", "email", to)
	return nil
}

func (s *SMTPSender) sendEmail(to, subject, body string) error {
	auth := smtp.PlainAuth("", s.smtpUser, s.smtpPassword, s.smtpHost)

	msg := []byte(fmt.Sprintf(
		"From: %s\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=UTF-8\r\n"+
			"\r\n"+
			"%s\r\n",
		s.fromEmail, to, subject, body,
	))

	addr := fmt.Sprintf("%s:%s", s.smtpHost, s.smtpPort)
	return s.send(addr, auth, s.fromEmail, []string{to}, msg)
}
