package handlers

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/mentari-health/mentari-platform/internal/booking"
	"github.com/mentari-health/mentari-platform/internal/catalog"
	"github.com/mentari-health/mentari-platform/internal/observability/metrics"
	"github.com/mentari-health/mentari-platform/pkg/logging"
)

const webhookProvider = "xendit"

// xenditInvoiceEvent is the invoice callback payload Xendit posts on
// settlement, expiry, and failure.
type xenditInvoiceEvent struct {
	ID             string `json:"id"`
	ExternalID     string `json:"external_id"`
	Status         string `json:"status"`
	Amount         int64  `json:"amount"`
	PaidAmount     int64  `json:"paid_amount"`
	PaymentChannel string `json:"payment_channel"`
	PaymentMethod  string `json:"payment_method"`
	PaidAt         string `json:"paid_at"`
}

// BookingStore is the slice of the booking repository the webhook needs.
type BookingStore interface {
	GetByExternalID(ctx context.Context, externalID string) (*booking.Booking, error)
	MarkPaid(ctx context.Context, externalID, channel, method string, paidAt time.Time) error
	UpdateStatus(ctx context.Context, externalID, status string) error
}

// ProcessedStore deduplicates webhook deliveries by provider event id.
type ProcessedStore interface {
	AlreadyProcessed(ctx context.Context, provider, eventID string) (bool, error)
	MarkProcessed(ctx context.Context, provider, eventID string) (bool, error)
}

// PaidNotifier sends the patient confirmation after settlement.
type PaidNotifier interface {
	NotifyBookingPaid(ctx context.Context, b *booking.Booking, practitionerName string) error
}

// XenditWebhookHandler handles Xendit invoice callbacks.
type XenditWebhookHandler struct {
	callbackToken string
	bookings      BookingStore
	processed     ProcessedStore
	practitioners catalog.Repository
	notifier      PaidNotifier
	metrics       *metrics.BookingMetrics
	logger        *logging.Logger
}

func NewXenditWebhookHandler(callbackToken string, bookings BookingStore, processed ProcessedStore, practitioners catalog.Repository, notifier PaidNotifier, m *metrics.BookingMetrics, logger *logging.Logger) *XenditWebhookHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &XenditWebhookHandler{
		callbackToken: strings.TrimSpace(callbackToken),
		bookings:      bookings,
		processed:     processed,
		practitioners: practitioners,
		notifier:      notifier,
		metrics:       m,
		logger:        logger,
	}
}

func (h *XenditWebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if h.callbackToken == "" {
		h.logger.Error("xendit callback token not configured")
		http.Error(w, "callback token not configured", http.StatusInternalServerError)
		return
	}

	provided := r.Header.Get("x-callback-token")
	if subtle.ConstantTimeCompare([]byte(provided), []byte(h.callbackToken)) != 1 {
		h.logger.Warn("invalid xendit callback token")
		http.Error(w, "invalid callback token", http.StatusUnauthorized)
		return
	}

	var evt xenditInvoiceEvent
	if err := json.NewDecoder(r.Body).Decode(&evt); err != nil {
		http.Error(w, "invalid JSON payload", http.StatusBadRequest)
		return
	}
	if evt.ID == "" || evt.ExternalID == "" {
		http.Error(w, "missing invoice reference", http.StatusBadRequest)
		return
	}

	// Xendit retries deliveries until it sees a 2xx. Replays of an event that
	// already took effect are acked here; the event is only recorded as
	// processed after the booking update lands, so a failed update stays
	// retryable.
	if h.processed != nil {
		seen, err := h.processed.AlreadyProcessed(r.Context(), webhookProvider, evt.ID)
		if err != nil {
			h.logger.Error("webhook dedup lookup failed", "error", err, "invoice_id", evt.ID)
			http.Error(w, "dedup store unavailable", http.StatusInternalServerError)
			return
		}
		if seen {
			h.logger.Info("duplicate xendit event acked", "invoice_id", evt.ID)
			w.WriteHeader(http.StatusOK)
			return
		}
	}

	var applyErr error
	switch strings.ToUpper(evt.Status) {
	case "PAID", "SETTLED":
		applyErr = h.handlePaid(r.Context(), evt)
	case "EXPIRED":
		applyErr = h.updateStatus(r.Context(), evt, booking.StatusExpired)
	case "FAILED":
		applyErr = h.updateStatus(r.Context(), evt, booking.StatusFailed)
	default:
		h.logger.Info("ignoring xendit event status", "status", evt.Status, "invoice_id", evt.ID)
		h.metrics.ObserveWebhook("ignored")
	}
	if applyErr != nil {
		// Not marked processed, so the provider retry can land the update.
		http.Error(w, "settlement could not be applied", http.StatusInternalServerError)
		return
	}

	if h.processed != nil {
		if _, err := h.processed.MarkProcessed(r.Context(), webhookProvider, evt.ID); err != nil {
			// The update is already durable; a replayed delivery re-applies
			// the same terminal state, so this does not fail the delivery.
			h.logger.Error("failed to record processed event", "error", err, "invoice_id", evt.ID)
		}
	}
	w.WriteHeader(http.StatusOK)
}

func (h *XenditWebhookHandler) handlePaid(ctx context.Context, evt xenditInvoiceEvent) error {
	paidAt := time.Now().UTC()
	if evt.PaidAt != "" {
		if parsed, err := time.Parse(time.RFC3339, evt.PaidAt); err == nil {
			paidAt = parsed
		}
	}

	if err := h.bookings.MarkPaid(ctx, evt.ExternalID, evt.PaymentChannel, evt.PaymentMethod, paidAt); err != nil {
		if errors.Is(err, booking.ErrBookingNotFound) {
			h.logger.Warn("paid event for unknown booking", "external_id", evt.ExternalID)
			h.metrics.ObserveWebhook("unknown")
			return nil
		}
		h.logger.Error("failed to settle booking", "error", err, "external_id", evt.ExternalID)
		h.metrics.ObserveWebhook("error")
		return err
	}
	h.metrics.ObserveWebhook("paid")
	h.logger.Info("booking settled", "external_id", evt.ExternalID, "channel", evt.PaymentChannel)

	h.notifyPaid(ctx, evt)
	return nil
}

// notifyPaid sends the confirmation email best effort; a notification failure
// never fails the delivery.
func (h *XenditWebhookHandler) notifyPaid(ctx context.Context, evt xenditInvoiceEvent) {
	if h.notifier == nil {
		return
	}
	b, err := h.bookings.GetByExternalID(ctx, evt.ExternalID)
	if err != nil {
		h.logger.Error("failed to load settled booking for notification", "error", err, "external_id", evt.ExternalID)
		return
	}
	practitionerName := "your practitioner"
	if h.practitioners != nil {
		if p, err := h.practitioners.GetByID(ctx, b.PractitionerID); err == nil {
			practitionerName = p.DisplayName
		}
	}
	if err := h.notifier.NotifyBookingPaid(ctx, b, practitionerName); err != nil {
		h.logger.Error("confirmation notification failed", "error", err, "booking_id", b.ID)
	}
}

func (h *XenditWebhookHandler) updateStatus(ctx context.Context, evt xenditInvoiceEvent, status string) error {
	if err := h.bookings.UpdateStatus(ctx, evt.ExternalID, status); err != nil {
		if errors.Is(err, booking.ErrBookingNotFound) {
			h.logger.Warn("event for unknown booking", "external_id", evt.ExternalID, "status", status)
			h.metrics.ObserveWebhook("unknown")
			return nil
		}
		h.logger.Error("failed to update booking status", "error", err, "external_id", evt.ExternalID)
		h.metrics.ObserveWebhook("error")
		return err
	}
	h.metrics.ObserveWebhook(status)
	h.logger.Info("booking status updated from webhook", "external_id", evt.ExternalID, "status", status)
	return nil
}
