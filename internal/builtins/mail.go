// ABOUTME: Comms pack sends email through the configured SMTP account.
// ABOUTME: Failures come back as short messages, never as errors.

package builtins

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/smtp"
	"net/textproto"
	"strings"

	"github.com/cbbisht2004/Yogi/internal/config"
	"github.com/cbbisht2004/Yogi/internal/tools"
)

// sendFunc matches smtp.SendMail; swapped out in tests.
type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// CommsPack creates the email pack.
func CommsPack(cfg config.SMTPConfig, logger *slog.Logger) *tools.Pack {
	if logger == nil {
		logger = slog.Default()
	}
	h := &commsHandlers{
		cfg:    cfg,
		send:   smtp.SendMail,
		logger: logger.With("component", "comms"),
	}
	return &tools.Pack{
		ID: "core.comms",
		Tools: []*tools.Tool{
			{
				Name:        "send_email",
				Description: "Send an email via Gmail SMTP.",
				Parameters:  json.RawMessage(`{"type":"object","properties":{"to_email":{"type":"string","description":"Recipient address"},"subject":{"type":"string"},"message":{"type":"string","description":"Plain-text body"},"cc_email":{"type":"string","description":"Optional CC address"}},"required":["to_email","subject","message"]}`),
				Handler:     h.SendEmail,
			},
		},
	}
}

type commsHandlers struct {
	cfg    config.SMTPConfig
	send   sendFunc
	logger *slog.Logger
}

type sendEmailInput struct {
	ToEmail string `json:"to_email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
	CcEmail string `json:"cc_email"`
}

func (h *commsHandlers) SendEmail(ctx context.Context, input json.RawMessage) (string, error) {
	var in sendEmailInput
	if err := json.Unmarshal(input, &in); err != nil {
		return "", fmt.Errorf("invalid input: %w", err)
	}
	if in.ToEmail == "" {
		return "", fmt.Errorf("to_email is required")
	}

	if h.cfg.Username == "" || h.cfg.Password == "" {
		return "Gmail credentials not set in environment.", nil
	}

	headers := []string{
		"From: " + h.cfg.Username,
		"To: " + in.ToEmail,
		"Subject: " + in.Subject,
	}
	recipients := []string{in.ToEmail}
	if in.CcEmail != "" {
		headers = append(headers, "Cc: "+in.CcEmail)
		recipients = append(recipients, in.CcEmail)
	}
	headers = append(headers, "MIME-Version: 1.0", `Content-Type: text/plain; charset="utf-8"`)
	msg := strings.Join(headers, "\r\n") + "\r\n\r\n" + in.Message

	addr := fmt.Sprintf("%s:%d", h.cfg.Host, h.cfg.Port)
	auth := smtp.PlainAuth("", h.cfg.Username, h.cfg.Password, h.cfg.Host)

	if err := h.send(addr, auth, h.cfg.Username, recipients, []byte(msg)); err != nil {
		if isAuthError(err) {
			h.logger.Error("SMTP authentication failed", "host", h.cfg.Host, "error", err)
			return "Authentication with SMTP failed.", nil
		}
		h.logger.Error("failed to send email", "host", h.cfg.Host, "error", err)
		return "Failed to send the email.", nil
	}

	h.logger.Info("email sent", "to", recipients)
	return fmt.Sprintf("Email sent to %s.", in.ToEmail), nil
}

// isAuthError reports whether an SMTP failure is a 53x authentication reply.
func isAuthError(err error) bool {
	var tpErr *textproto.Error
	if errors.As(err, &tpErr) {
		return tpErr.Code >= 530 && tpErr.Code <= 539
	}
	return false
}
