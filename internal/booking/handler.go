package booking

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mentari-health/mentari-platform/internal/catalog"
	"github.com/mentari-health/mentari-platform/internal/identity"
	"github.com/mentari-health/mentari-platform/pkg/logging"
)

// Handler serves the booking wizard API. Every route requires an
// authenticated user; ownership of a draft is enforced per request.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if service == nil {
		panic("booking: service required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// Routes mounts the wizard endpoints on a chi router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Start)
	r.Route("/{draftID}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Delete("/", h.Discard)
		r.Post("/session-type", h.SessionType)
		r.Post("/complaint", h.Complaint)
		r.Post("/schedule", h.Schedule)
		r.Post("/next", h.Next)
		r.Post("/back", h.Back)
		r.Post("/reset", h.Reset)
		r.Post("/confirm", h.Confirm)
	})
	return r
}

// DraftResponse is the wizard state returned after every operation.
type DraftResponse struct {
	ID                 string `json:"id"`
	Step               Step   `json:"step"`
	Draft              Draft  `json:"draft"`
	Price              int64  `json:"price"`
	SessionTypeSkipped bool   `json:"session_type_skipped"`
}

func draftResponse(f *Flow) DraftResponse {
	return DraftResponse{
		ID:                 f.ID(),
		Step:               f.Step(),
		Draft:              f.Draft(),
		Price:              f.Price(),
		SessionTypeSkipped: f.SessionTypeSkipped(),
	}
}

type startRequest struct {
	PractitionerID string      `json:"practitioner_id"`
	SessionType    SessionType `json:"session_type,omitempty"`
}

// Start handles POST /api/bookings.
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
	if req.PractitionerID == "" {
		http.Error(w, "practitioner_id is required", http.StatusBadRequest)
		return
	}

	flow, err := h.service.StartDraft(r.Context(), user, req.PractitionerID, req.SessionType)
	if err != nil {
		if errors.Is(err, catalog.ErrPractitionerNotFound) {
			http.Error(w, "practitioner not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to start booking draft", "error", err, "user_id", user.ID)
		http.Error(w, "failed to start booking", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, draftResponse(flow))
}

// Get handles GET /api/bookings/{draftID}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	user, draftID, ok := h.requestIdentity(w, r)
	if !ok {
		return
	}
	flow, err := h.service.LoadDraft(r.Context(), user.ID, draftID)
	if err != nil {
		h.renderDraftError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, draftResponse(flow))
}

// Discard handles DELETE /api/bookings/{draftID}.
func (h *Handler) Discard(w http.ResponseWriter, r *http.Request) {
	user, draftID, ok := h.requestIdentity(w, r)
	if !ok {
		return
	}
	if err := h.service.DiscardDraft(r.Context(), user.ID, draftID); err != nil {
		h.renderDraftError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type sessionTypeRequest struct {
	SessionType SessionType `json:"session_type"`
}

// SessionType handles POST /api/bookings/{draftID}/session-type.
func (h *Handler) SessionType(w http.ResponseWriter, r *http.Request) {
	var req sessionTypeRequest
	h.apply(w, r, &req, func(f *Flow) error {
		return f.SelectSessionType(req.SessionType)
	})
}

type complaintRequest struct {
	Complaint string `json:"complaint"`
}

// Complaint handles POST /api/bookings/{draftID}/complaint.
func (h *Handler) Complaint(w http.ResponseWriter, r *http.Request) {
	var req complaintRequest
	h.apply(w, r, &req, func(f *Flow) error {
		return f.SubmitComplaint(req.Complaint)
	})
}

type scheduleRequest struct {
	Date string `json:"date,omitempty"`
	Time string `json:"time,omitempty"`
}

// Schedule handles POST /api/bookings/{draftID}/schedule. Date and time can be
// submitted together or separately; the date is applied first.
func (h *Handler) Schedule(w http.ResponseWriter, r *http.Request) {
	var req scheduleRequest
	h.apply(w, r, &req, func(f *Flow) error {
		if req.Date != "" {
			if err := f.SelectDate(req.Date); err != nil {
				return err
			}
		}
		if req.Time != "" {
			if err := f.SelectTime(req.Time); err != nil {
				return err
			}
		}
		return nil
	})
}

// Next handles POST /api/bookings/{draftID}/next.
func (h *Handler) Next(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, nil, func(f *Flow) error { return f.Next() })
}

// Back handles POST /api/bookings/{draftID}/back.
func (h *Handler) Back(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, nil, func(f *Flow) error { return f.Back() })
}

// Reset handles POST /api/bookings/{draftID}/reset.
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, nil, func(f *Flow) error {
		f.Reset()
		return nil
	})
}

// Confirm handles POST /api/bookings/{draftID}/confirm.
func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	user, draftID, ok := h.requestIdentity(w, r)
	if !ok {
		return
	}
	result, err := h.service.Confirm(r.Context(), user, draftID)
	if err != nil {
		if IsGuardError(err) {
			writeError(w, http.StatusUnprocessableEntity, err)
			return
		}
		if errors.Is(err, ErrDraftNotFound) || errors.Is(err, ErrDraftForbidden) {
			h.renderDraftError(w, err)
			return
		}
		h.logger.Error("confirm failed", "error", err, "draft_id", draftID)
		http.Error(w, "payment could not be started", http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// AppointmentsResponse lists the user's bookings.
type AppointmentsResponse struct {
	Appointments []*Booking `json:"appointments"`
}

// Appointments handles GET /api/appointments.
func (h *Handler) Appointments(w http.ResponseWriter, r *http.Request) {
	user, ok := identity.FromContext(r.Context())
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}
	bookings, err := h.service.ListAppointments(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("failed to list appointments", "error", err, "user_id", user.ID)
		http.Error(w, "failed to list appointments", http.StatusInternalServerError)
		return
	}
	if bookings == nil {
		bookings = []*Booking{}
	}
	writeJSON(w, http.StatusOK, AppointmentsResponse{Appointments: bookings})
}

// apply decodes the optional body, runs the mutation through the service, and
// renders the updated draft. Guard violations come back as 422 with the draft
// unchanged in the store.
func (h *Handler) apply(w http.ResponseWriter, r *http.Request, body any, mutate func(*Flow) error) {
	user, draftID, ok := h.requestIdentity(w, r)
	if !ok {
		return
	}
	if body != nil {
		if err := json.NewDecoder(r.Body).Decode(body); err != nil {
			http.Error(w, "invalid JSON payload", http.StatusBadRequest)
			return
		}
	}

	flow, err := h.service.Apply(r.Context(), user.ID, draftID, mutate)
	if err != nil {
		if IsGuardError(err) {
			writeError(w, http.StatusUnprocessableEntity, err)
			return
		}
		h.renderDraftError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, draftResponse(flow))
}

func (h *Handler) requestIdentity(w http.ResponseWriter, r *http.Request) (identity.User, string, bool) {
	user, ok := identity.FromContext(r.Context())
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return identity.User{}, "", false
	}
	draftID := chi.URLParam(r, "draftID")
	if draftID == "" {
		http.Error(w, "missing draft id", http.StatusBadRequest)
		return identity.User{}, "", false
	}
	return user, draftID, true
}

func (h *Handler) renderDraftError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrDraftNotFound):
		http.Error(w, "draft not found or expired", http.StatusNotFound)
	case errors.Is(err, ErrDraftForbidden):
		// Not revealing whether the draft exists.
		http.Error(w, "draft not found or expired", http.StatusNotFound)
	default:
		h.logger.Error("draft operation failed", "error", err)
		http.Error(w, "draft operation failed", http.StatusInternalServerError)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
