package notify

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/mentari-health/mentari-platform/internal/booking"
	"github.com/mentari-health/mentari-platform/pkg/logging"
)

// Service sends patient-facing booking notifications.
type Service struct {
	email  EmailSender
	logger *logging.Logger
}

// NewService creates a notification service.
func NewService(email EmailSender, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{email: email, logger: logger}
}

// NotifyBookingPaid emails the patient once their payment settles. Failures
// are logged and returned but must never fail the webhook.
func (s *Service) NotifyBookingPaid(ctx context.Context, b *booking.Booking, practitionerName string) error {
	if s.email == nil || b.UserEmail == "" {
		s.logger.Debug("notify: no email sender or recipient, skipping", "booking_id", b.ID)
		return nil
	}

	sessionLabel := "Video Call"
	if b.SessionType == booking.SessionChat {
		sessionLabel = "Chat"
	}
	amountStr := "Rp" + formatIDR(b.Amount)
	when := b.ScheduledAt.Format("Monday, 2 January 2006 at 15:04")

	subject := "Your consultation is confirmed"
	body := fmt.Sprintf(`Hi,

Your payment of %s has been received and your consultation is confirmed.

Practitioner: %s
Session: %s
Schedule: %s
Booking ID: %s

You can join the session from your appointments page when it starts.

— Mentari Health`, amountStr, practitionerName, sessionLabel, when, b.ID)

	msg := EmailMessage{
		To:      b.UserEmail,
		Subject: subject,
		Body:    body,
	}
	if err := s.email.Send(ctx, msg); err != nil {
		s.logger.Error("notify: booking confirmation email failed", "error", err, "booking_id", b.ID)
		return err
	}
	s.logger.Info("notify: booking confirmation sent", "booking_id", b.ID, "to", b.UserEmail)
	return nil
}

// formatIDR renders an amount with Indonesian thousand separators (150000 -> 150.000).
func formatIDR(amount int64) string {
	digits := strconv.FormatInt(amount, 10)
	neg := strings.HasPrefix(digits, "-")
	if neg {
		digits = digits[1:]
	}
	var parts []string
	for len(digits) > 3 {
		parts = append([]string{digits[len(digits)-3:]}, parts...)
		digits = digits[:len(digits)-3]
	}
	parts = append([]string{digits}, parts...)
	out := strings.Join(parts, ".")
	if neg {
		out = "-" + out
	}
	return out
}
