package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"log"
	"net/smtp"
	"time"
)

// SMTPConfig holds mail transport settings
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	FromName  string
}

type smtpMailer struct {
	cfg SMTPConfig
}

// NewSMTPMailer creates a Mailer that sends over SMTP with STARTTLS
func NewSMTPMailer(cfg SMTPConfig) Mailer {
	return &smtpMailer{cfg: cfg}
}

const otpMailTemplate = `<div style="max-width: 600px; margin: auto; font-family: sans-serif; color: #333; background: #f7f7f7; padding: 20px; border-radius: 10px;">
  <div style="background: #fff; padding: 20px; border-radius: 10px; text-align: center;">
    <h2 style="color: #C9AF2F;">Your OTP Code</h2>
    <p style="font-size: 16px;">Use the following OTP to complete your authentication:</p>
    <h1 style="background: #C9AF2F; color: #fff; padding: 10px 20px; display: inline-block; border-radius: 5px;">%s</h1>
    <p style="font-size: 14px; color: #777;">This OTP will expire in 10 minutes.</p>
    <hr style="margin: 20px 0; border: 1px solid #C9AF2F;">
    <p style="font-size: 14px;">If you did not request this OTP, please ignore this email.</p>
  </div>
  <p style="text-align: center; font-size: 12px; color: #999;">&copy; %d %s. All rights reserved.</p>
</div>`

// SendOtp renders the OTP mail and delivers it
func (m *smtpMailer) SendOtp(ctx context.Context, email, code string) error {
	if m.cfg.Username == "" || m.cfg.Password == "" {
		return fmt.Errorf("SMTP credentials not configured")
	}

	subject := fmt.Sprintf("Your %s OTP Code", m.cfg.FromName)
	body := fmt.Sprintf(otpMailTemplate, code, time.Now().Year(), m.cfg.FromName)
	message := fmt.Sprintf(
		"To: %s\r\nFrom: %q <%s>\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s\r\n",
		email, m.cfg.FromName, m.cfg.FromEmail, subject, body,
	)

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)

	// Dial in plain-text, then upgrade to TLS before authenticating
	client, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("failed to dial SMTP: %w", err)
	}
	defer client.Close()

	if err = client.StartTLS(&tls.Config{ServerName: m.cfg.Host}); err != nil {
		return fmt.Errorf("failed to start TLS: %w", err)
	}

	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	if err = client.Auth(auth); err != nil {
		return fmt.Errorf("failed to auth: %w", err)
	}

	if err = client.Mail(m.cfg.FromEmail); err != nil {
		return fmt.Errorf("failed to set MAIL FROM: %w", err)
	}
	if err = client.Rcpt(email); err != nil {
		return fmt.Errorf("failed to set RCPT TO: %w", err)
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to open DATA: %w", err)
	}
	if _, err = w.Write([]byte(message)); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("failed to close writer: %w", err)
	}

	if err = client.Quit(); err != nil {
		return fmt.Errorf("failed to quit SMTP: %w", err)
	}

	log.Printf("OTP email sent to %s", email)
	return nil
}
