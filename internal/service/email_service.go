package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/resend/resend-go/v2"
)

// EmailService sends transactional emails.
type EmailService interface {
	SendCertificateApproved(ctx context.Context, toEmail, fullName, quizTitle, serial string) error
}

// NoopEmailService is used when outgoing email is disabled.
type NoopEmailService struct{}

func (s *NoopEmailService) SendCertificateApproved(ctx context.Context, toEmail, fullName, quizTitle, serial string) error {
	log.Printf("[EmailService] noop send certificate approval to=%s serial=%s", toEmail, serial)
	return nil
}

// ResendEmailService sends emails via Resend REST API.
type ResendEmailService struct {
	from   string
	client *resend.Client
}

func NewResendEmailService(apiKey, from string) (*ResendEmailService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("resend api key is required")
	}
	if from == "" {
		return nil, fmt.Errorf("email from is required")
	}
	return &ResendEmailService{
		from:   from,
		client: resend.NewClient(apiKey),
	}, nil
}

func (s *ResendEmailService) SendCertificateApproved(ctx context.Context, toEmail, fullName, quizTitle, serial string) error {
	if toEmail == "" || serial == "" {
		return fmt.Errorf("toEmail and serial are required")
	}

	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{toEmail},
		Subject: fmt.Sprintf("Your certificate for %s is ready", quizTitle),
		Text: fmt.Sprintf("Hello %s,\n\nYour certificate for %s has been approved.\nCertificate serial: %s\n\nYou can download it from your dashboard.",
			fullName, quizTitle, serial),
		Html: fmt.Sprintf("<p>Hello %s,</p><p>Your certificate for <strong>%s</strong> has been approved.</p><p>Certificate serial: <code>%s</code></p><p>You can download it from your dashboard.</p>",
			fullName, quizTitle, serial),
	}

	// Серийный номер уникален для попытки, поэтому годится как ключ идемпотентности
	options := &resend.SendEmailOptions{IdempotencyKey: serial}

	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		_, err := s.client.Emails.SendWithOptions(ctx, params, options)
		if err == nil {
			return nil
		}
		lastErr = err

		if wait, ok := resendRetryDelay(err, attempt); ok {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
				continue
			}
		}

		return fmt.Errorf("resend send failed: %w", err)
	}

	return fmt.Errorf("resend send failed after retries: %w", lastErr)
}

func resendRetryDelay(err error, attempt int) (time.Duration, bool) {
	var rateLimitErr *resend.RateLimitError
	if errors.As(err, &rateLimitErr) {
		if seconds, convErr := strconv.Atoi(strings.TrimSpace(rateLimitErr.RetryAfter)); convErr == nil && seconds > 0 {
			if seconds > 30 {
				seconds = 30
			}
			return time.Duration(seconds) * time.Second, true
		}
		return time.Duration(attempt+1) * time.Second, true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && (netErr.Timeout() || netErr.Temporary()) {
		return time.Duration(attempt+1) * 500 * time.Millisecond, true
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "timeout") || strings.Contains(msg, "temporar") {
		return time.Duration(attempt+1) * 500 * time.Millisecond, true
	}

	return 0, false
}
