package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/mentari-health/mentari-platform/internal/catalog"
	"github.com/mentari-health/mentari-platform/internal/identity"
	"github.com/mentari-health/mentari-platform/internal/observability/metrics"
	"github.com/mentari-health/mentari-platform/internal/payments"
	"github.com/mentari-health/mentari-platform/pkg/logging"
)

// BookingStore is the slice of the repository the service needs.
type BookingStore interface {
	CreatePending(ctx context.Context, b *Booking) error
	ListByUser(ctx context.Context, userID string) ([]*Booking, error)
}

// ServiceConfig carries checkout parameters resolved from configuration.
type ServiceConfig struct {
	SuccessURL      string
	FailureURL      string
	InvoiceDuration time.Duration
}

// Service drives the booking wizard and the checkout handoff.
type Service struct {
	drafts        *DraftStore
	bookings      BookingStore
	practitioners catalog.Repository
	gateway       payments.Gateway
	cfg           ServiceConfig
	metrics       *metrics.BookingMetrics
	tracer        trace.Tracer
	logger        *logging.Logger
}

func NewService(drafts *DraftStore, bookings BookingStore, practitioners catalog.Repository, gateway payments.Gateway, cfg ServiceConfig, m *metrics.BookingMetrics, logger *logging.Logger) *Service {
	if drafts == nil {
		panic("booking: draft store required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		drafts:        drafts,
		bookings:      bookings,
		practitioners: practitioners,
		gateway:       gateway,
		cfg:           cfg,
		metrics:       m,
		tracer:        otel.Tracer("mentari.internal.booking"),
		logger:        logger,
	}
}

// StartDraft opens a new wizard for the given practitioner. A valid preselect
// skips the session type step, mirroring entry from a session-specific button.
func (s *Service) StartDraft(ctx context.Context, user identity.User, practitionerID string, preselect SessionType) (*Flow, error) {
	p, err := s.practitioners.GetByID(ctx, practitionerID)
	if err != nil {
		if errors.Is(err, catalog.ErrPractitionerNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("booking: load practitioner: %w", err)
	}

	flow := NewFlow(uuid.NewString(), user.ID, p.ID, p.PriceVideo, preselect)
	if err := s.drafts.Save(ctx, flow); err != nil {
		return nil, err
	}
	s.metrics.ObserveDraftStarted()
	s.logger.Info("booking draft started", "draft_id", flow.ID(), "practitioner_id", p.ID, "user_id", user.ID)
	return flow, nil
}

// LoadDraft fetches a flow and enforces ownership.
func (s *Service) LoadDraft(ctx context.Context, userID, draftID string) (*Flow, error) {
	flow, err := s.drafts.Load(ctx, draftID)
	if err != nil {
		return nil, err
	}
	if flow.UserID() != userID {
		return nil, ErrDraftForbidden
	}
	return flow, nil
}

// Apply runs a mutation against the draft and persists the result when the
// mutation succeeds. Guard violations leave the stored draft untouched.
func (s *Service) Apply(ctx context.Context, userID, draftID string, mutate func(*Flow) error) (*Flow, error) {
	flow, err := s.LoadDraft(ctx, userID, draftID)
	if err != nil {
		return nil, err
	}
	if err := mutate(flow); err != nil {
		return flow, err
	}
	if err := s.drafts.Save(ctx, flow); err != nil {
		return nil, err
	}
	return flow, nil
}

// DiscardDraft drops the draft outright.
func (s *Service) DiscardDraft(ctx context.Context, userID, draftID string) error {
	if _, err := s.LoadDraft(ctx, userID, draftID); err != nil {
		if errors.Is(err, ErrDraftNotFound) {
			return nil
		}
		return err
	}
	return s.drafts.Delete(ctx, draftID)
}

// CheckoutResult is returned on a successful confirm.
type CheckoutResult struct {
	BookingID  string `json:"booking_id"`
	InvoiceID  string `json:"invoice_id"`
	InvoiceURL string `json:"invoice_url"`
	Amount     int64  `json:"amount"`
}

// Confirm finalizes the wizard: it creates a gateway invoice, records the
// pending booking, and discards the draft. The draft id doubles as the
// gateway external id, so a retried confirm after a gateway failure reuses
// the same reference.
func (s *Service) Confirm(ctx context.Context, user identity.User, draftID string) (*CheckoutResult, error) {
	ctx, span := s.tracer.Start(ctx, "booking.confirm")
	defer span.End()
	span.SetAttributes(attribute.String("mentari.draft_id", draftID))

	flow, err := s.LoadDraft(ctx, user.ID, draftID)
	if err != nil {
		return nil, err
	}
	if err := flow.ConfirmReady(); err != nil {
		return nil, err
	}

	// The lease makes concurrent confirms on one draft mutually exclusive,
	// and its own short TTL frees the draft if the process dies mid-handoff.
	acquired, err := s.drafts.AcquireConfirm(ctx, flow.ID())
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, ErrAlreadyProcessing
	}

	p, err := s.practitioners.GetByID(ctx, flow.Draft().PractitionerID)
	if err != nil {
		s.releaseConfirm(ctx, flow.ID())
		return nil, fmt.Errorf("booking: load practitioner: %w", err)
	}

	draft := flow.Draft()
	sessionLabel := "Video Call"
	if draft.SessionType == SessionChat {
		sessionLabel = "Chat"
	}
	description := fmt.Sprintf("%s consultation with %s on %s %s", sessionLabel, p.DisplayName, draft.Date, draft.TimeSlot)

	start := time.Now()
	invoice, err := s.gateway.CreateInvoice(ctx, payments.InvoiceParams{
		ExternalID:  flow.ID(),
		Amount:      flow.Price(),
		Description: description,
		PayerEmail:  user.Email,
		PayerName:   user.Name,
		ItemName:    fmt.Sprintf("%s consultation (%s)", sessionLabel, p.DisplayName),
		SuccessURL:  s.cfg.SuccessURL,
		FailureURL:  s.cfg.FailureURL,
		Duration:    s.cfg.InvoiceDuration,
	})
	elapsed := time.Since(start).Seconds()
	if err != nil {
		s.metrics.ObserveCheckout("gateway_error", elapsed)
		s.logger.Error("invoice creation failed", "error", err, "draft_id", flow.ID())
		s.releaseConfirm(ctx, flow.ID())
		return nil, fmt.Errorf("booking: create invoice: %w", err)
	}
	s.metrics.ObserveCheckout("success", elapsed)

	scheduledAt, err := flow.ScheduledAt(time.UTC)
	if err != nil {
		s.releaseConfirm(ctx, flow.ID())
		return nil, err
	}

	record := &Booking{
		ID:             uuid.NewString(),
		UserID:         user.ID,
		UserEmail:      user.Email,
		PractitionerID: p.ID,
		SessionType:    draft.SessionType,
		Complaint:      draft.Complaint,
		ScheduledAt:    scheduledAt,
		Amount:         flow.Price(),
		Currency:       "IDR",
		InvoiceID:      invoice.ID,
		InvoiceURL:     invoice.URL,
		ExternalID:     flow.ID(),
	}
	if err := s.bookings.CreatePending(ctx, record); err != nil {
		s.logger.Error("failed to record pending booking", "error", err, "draft_id", flow.ID(), "invoice_id", invoice.ID)
		s.releaseConfirm(ctx, flow.ID())
		return nil, err
	}

	if err := s.drafts.Delete(ctx, flow.ID()); err != nil {
		// The booking exists; an orphaned draft only lingers until its TTL.
		s.logger.Warn("failed to delete confirmed draft", "error", err, "draft_id", flow.ID())
	}
	s.releaseConfirm(ctx, flow.ID())

	s.logger.Info("booking confirmed", "booking_id", record.ID, "invoice_id", invoice.ID, "amount", record.Amount)
	return &CheckoutResult{
		BookingID:  record.ID,
		InvoiceID:  invoice.ID,
		InvoiceURL: invoice.URL,
		Amount:     record.Amount,
	}, nil
}

// ListAppointments returns the user's bookings, newest first.
func (s *Service) ListAppointments(ctx context.Context, userID string) ([]*Booking, error) {
	return s.bookings.ListByUser(ctx, userID)
}

func (s *Service) releaseConfirm(ctx context.Context, draftID string) {
	if err := s.drafts.ReleaseConfirm(ctx, draftID); err != nil {
		// The lease TTL still frees the draft shortly.
		s.logger.Error("failed to release confirm lease", "error", err, "draft_id", draftID)
	}
}
