package consultation

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mentari-health/mentari-platform/internal/booking"
	"github.com/mentari-health/mentari-platform/internal/identity"
	"github.com/mentari-health/mentari-platform/pkg/logging"
)

// SessionCloser marks a paid booking's session as finished.
type SessionCloser interface {
	MarkCompleted(ctx context.Context, userID, bookingID string) error
}

// Handler serves consultation session endpoints.
type Handler struct {
	minter   *TokenMinter
	bookings SessionCloser
	logger   *logging.Logger
}

func NewHandler(minter *TokenMinter, bookings SessionCloser, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{minter: minter, bookings: bookings, logger: logger}
}

// TokenResponse pairs the signed token with the provider API key.
type TokenResponse struct {
	Token  string `json:"token"`
	APIKey string `json:"api_key"`
	UserID string `json:"user_id"`
}

// Token handles POST /api/consultation/token.
func (h *Handler) Token(w http.ResponseWriter, r *http.Request) {
	user, ok := identity.FromContext(r.Context())
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	token, err := h.minter.Mint(user.ID)
	if err != nil {
		h.logger.Error("failed to mint session token", "error", err, "user_id", user.ID)
		http.Error(w, "failed to mint session token", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, TokenResponse{
		Token:  token,
		APIKey: h.minter.APIKey(),
		UserID: user.ID,
	})
}

type endRequest struct {
	BookingID string `json:"booking_id"`
}

// End handles POST /api/consultation/end. Only a paid booking owned by the
// caller can be completed.
func (h *Handler) End(w http.ResponseWriter, r *http.Request) {
	user, ok := identity.FromContext(r.Context())
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var req endRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON payload", http.StatusBadRequest)
		return
	}
	if req.BookingID == "" {
		http.Error(w, "booking_id is required", http.StatusBadRequest)
		return
	}

	if err := h.bookings.MarkCompleted(r.Context(), user.ID, req.BookingID); err != nil {
		if errors.Is(err, booking.ErrBookingNotFound) {
			http.Error(w, "no paid booking to complete", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to complete session", "error", err, "booking_id", req.BookingID)
		http.Error(w, "failed to complete session", http.StatusInternalServerError)
		return
	}
	h.logger.Info("consultation session completed", "booking_id", req.BookingID, "user_id", user.ID)
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
