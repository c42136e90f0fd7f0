// Copyright (c) 2026 Kinora. All rights reserved.
// Author: hello@kinora.dev

/*
Package email implements outgoing mail delivery over SMTP.

It provides the transport behind the auth domain's [auth.EmailSender]
contract. The domain decides when mail goes out; this package only knows how
to deliver it.
*/
package email

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"

	"github.com/kinora-dev/kinora/internal/auth"
	"github.com/kinora-dev/kinora/internal/platform/config"
)

// # SMTP Transport

// SMTPSender delivers verification email via a plain SMTP relay with
// STARTTLS-capable AUTH.
type SMTPSender struct {
	host     string
	port     string
	username string
	password string
	from     string
	logger   *slog.Logger
}

// NewSMTPSender builds a sender from the email section of the configuration.
func NewSMTPSender(cfg *config.Config, logger *slog.Logger) *SMTPSender {
	return &SMTPSender{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
		from:     cfg.EmailFrom,
		logger:   logger,
	}
}

/*
SendVerificationEmail delivers the verification link to the account's email
address.

Description: Builds a small HTML message carrying the clickable link and its
24 hour validity note, then hands it to the relay. Failures are returned to
the caller; the auth service decides whether they are fatal.

Parameters:
  - context: context.Context
  - account: *auth.Account (recipient)
  - verificationURL: string

Returns:
  - error: Connection, authentication, or delivery failures
*/
func (sender *SMTPSender) SendVerificationEmail(context context.Context, account *auth.Account, verificationURL string) error {
	subject := "Verify Your Email - Kinora"
	body := fmt.Sprintf(`<h2>Verify Your Email</h2>
<p>Hello %s,</p>
<p>Click the link below to verify your email:</p>
<a href="%s">%s</a>
<p>This link expires in 24 hours.</p>`, account.Fullname, verificationURL, verificationURL)

	message := sender.buildMessage(account.Email, subject, body)

	address := sender.host + ":" + sender.port
	var authentication smtp.Auth
	if sender.username != "" {
		authentication = smtp.PlainAuth("", sender.username, sender.password, sender.host)
	}

	sender.logger.InfoContext(context, "verification_email_sending",
		slog.String("to", account.Email),
	)

	if err := smtp.SendMail(address, authentication, sender.from, []string{account.Email}, message); err != nil {
		return fmt.Errorf("smtp_send_failed: %w", err)
	}

	sender.logger.InfoContext(context, "verification_email_sent",
		slog.String("to", account.Email),
	)

	return nil
}

// buildMessage assembles the raw RFC 5322 payload with HTML content headers.
func (sender *SMTPSender) buildMessage(to, subject, htmlBody string) []byte {
	var builder strings.Builder
	builder.WriteString("From: " + sender.from + "\r\n")
	builder.WriteString("To: " + to + "\r\n")
	builder.WriteString("Subject: " + subject + "\r\n")
	builder.WriteString("MIME-Version: 1.0\r\n")
	builder.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	builder.WriteString("\r\n")
	builder.WriteString(htmlBody)
	builder.WriteString("\r\n")
	return []byte(builder.String())
}
