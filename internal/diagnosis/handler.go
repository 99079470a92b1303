package diagnosis

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mentari-health/mentari-platform/internal/booking"
	"github.com/mentari-health/mentari-platform/internal/identity"
	"github.com/mentari-health/mentari-platform/pkg/logging"
)

// Handler serves the post-session diagnosis endpoints.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if service == nil {
		panic("diagnosis: service required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// Routes mounts the diagnosis endpoints on a chi router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Start)
	r.Get("/{bookingID}", h.Get)
	return r
}

type startRequest struct {
	BookingID string `json:"booking_id"`
}

// Start handles POST /api/diagnosis.
func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	user, ok := identity.FromContext(r.Context())
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON payload", http.StatusBadRequest)
		return
	}
	if req.BookingID == "" {
		http.Error(w, "booking_id is required", http.StatusBadRequest)
		return
	}

	if err := h.service.Start(r.Context(), user.ID, req.BookingID); err != nil {
		switch {
		case errors.Is(err, booking.ErrBookingNotFound):
			http.Error(w, "booking not found", http.StatusNotFound)
		case errors.Is(err, ErrSessionNotEligible):
			http.Error(w, "session is not eligible for analysis", http.StatusUnprocessableEntity)
		default:
			h.logger.Error("failed to start diagnosis", "error", err, "booking_id", req.BookingID)
			http.Error(w, "failed to start diagnosis", http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusAccepted, statusResponse{Status: StatusProcessing})
}

type statusResponse struct {
	Status    string     `json:"status"`
	Diagnosis *Diagnosis `json:"diagnosis,omitempty"`
}

// Get handles GET /api/diagnosis/{bookingID}. Clients poll this until the
// status leaves processing; the verdict is only attached once completed.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := identity.FromContext(r.Context())
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}
	bookingID := chi.URLParam(r, "bookingID")
	if bookingID == "" {
		http.Error(w, "missing booking id", http.StatusBadRequest)
		return
	}

	d, err := h.service.Get(r.Context(), user.ID, bookingID)
	if err != nil {
		if errors.Is(err, ErrDiagnosisNotFound) {
			http.Error(w, "no diagnosis for this booking", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to load diagnosis", "error", err, "booking_id", bookingID)
		http.Error(w, "failed to load diagnosis", http.StatusInternalServerError)
		return
	}

	resp := statusResponse{Status: d.Status}
	if d.Status == StatusCompleted {
		resp.Diagnosis = d
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
