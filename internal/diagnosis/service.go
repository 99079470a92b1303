package diagnosis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mentari-health/mentari-platform/internal/booking"
	"github.com/mentari-health/mentari-platform/pkg/logging"
)

// Store is the slice of the repository the service needs.
type Store interface {
	StartProcessing(ctx context.Context, bookingID, userID string) error
	Complete(ctx context.Context, bookingID string, a *Assessment) error
	MarkFailed(ctx context.Context, bookingID string) error
	GetForUser(ctx context.Context, userID, bookingID string) (*Diagnosis, error)
}

// BookingSource resolves the session a diagnosis is requested for.
type BookingSource interface {
	GetForUser(ctx context.Context, userID, id string) (*booking.Booking, error)
}

const analyzeTimeout = 2 * time.Minute

// Service runs post-session analysis: a request flips the row to processing
// and the analyzer finishes it in the background.
type Service struct {
	store    Store
	bookings BookingSource
	analyzer Analyzer
	logger   *logging.Logger

	// launch runs the background analysis; tests replace it to run inline.
	launch func(fn func())
}

func NewService(store Store, bookings BookingSource, analyzer Analyzer, logger *logging.Logger) *Service {
	if store == nil || bookings == nil || analyzer == nil {
		panic("diagnosis: store, bookings and analyzer required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		store:    store,
		bookings: bookings,
		analyzer: analyzer,
		logger:   logger,
		launch:   func(fn func()) { go fn() },
	}
}

// Start kicks off analysis for a finished session. Only a paid or completed
// booking owned by the caller is eligible.
func (s *Service) Start(ctx context.Context, userID, bookingID string) error {
	b, err := s.bookings.GetForUser(ctx, userID, bookingID)
	if err != nil {
		if errors.Is(err, booking.ErrBookingNotFound) {
			return booking.ErrBookingNotFound
		}
		return fmt.Errorf("diagnosis: load booking: %w", err)
	}
	if b.Status != booking.StatusPaid && b.Status != booking.StatusCompleted {
		return ErrSessionNotEligible
	}

	if err := s.store.StartProcessing(ctx, b.ID, userID); err != nil {
		return err
	}
	s.logger.Info("diagnosis started", "booking_id", b.ID, "user_id", userID)

	input := SessionInput{Complaint: b.Complaint, SessionType: string(b.SessionType)}
	s.launch(func() { s.process(b.ID, input) })
	return nil
}

// Get returns the diagnosis for a booking, scoped to its owner.
func (s *Service) Get(ctx context.Context, userID, bookingID string) (*Diagnosis, error) {
	return s.store.GetForUser(ctx, userID, bookingID)
}

// process runs detached from the request; it gets its own deadline.
func (s *Service) process(bookingID string, input SessionInput) {
	ctx, cancel := context.WithTimeout(context.Background(), analyzeTimeout)
	defer cancel()

	assessment, err := s.analyzer.Analyze(ctx, input)
	if err != nil {
		s.logger.Error("diagnosis analysis failed", "error", err, "booking_id", bookingID)
		if err := s.store.MarkFailed(ctx, bookingID); err != nil {
			s.logger.Error("failed to record diagnosis failure", "error", err, "booking_id", bookingID)
		}
		return
	}

	if err := s.store.Complete(ctx, bookingID, assessment); err != nil {
		s.logger.Error("failed to store diagnosis", "error", err, "booking_id", bookingID)
		return
	}
	s.logger.Info("diagnosis completed", "booking_id", bookingID, "severity", assessment.Severity)
}
