package favorites

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mentari-health/mentari-platform/internal/catalog"
	"github.com/mentari-health/mentari-platform/internal/identity"
	"github.com/mentari-health/mentari-platform/pkg/logging"
)

// Handler serves the favorites API. Listing resolves ids against the catalog
// so the client gets full practitioner cards.
type Handler struct {
	store   *Store
	catalog catalog.Repository
	logger  *logging.Logger
}

func NewHandler(store *Store, cat catalog.Repository, logger *logging.Logger) *Handler {
	if store == nil {
		panic("favorites: store required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{store: store, catalog: cat, logger: logger}
}

// Routes mounts the favorites endpoints on a chi router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Put("/{practitionerID}", h.Add)
	r.Delete("/{practitionerID}", h.Remove)
	return r
}

// ListResponse holds the user's favorite practitioners.
type ListResponse struct {
	Practitioners []*catalog.Practitioner `json:"practitioners"`
}

// List handles GET /api/favorites.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := identity.FromContext(r.Context())
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	ids, err := h.store.List(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("failed to list favorites", "error", err, "user_id", user.ID)
		http.Error(w, "failed to list favorites", http.StatusInternalServerError)
		return
	}

	practitioners := make([]*catalog.Practitioner, 0, len(ids))
	for _, id := range ids {
		p, err := h.catalog.GetByID(r.Context(), id)
		if err != nil {
			if errors.Is(err, catalog.ErrPractitionerNotFound) {
				// A favorite can outlive the practitioner; drop it silently.
				continue
			}
			h.logger.Error("failed to resolve favorite", "error", err, "practitioner_id", id)
			http.Error(w, "failed to list favorites", http.StatusInternalServerError)
			return
		}
		practitioners = append(practitioners, p)
	}
	writeJSON(w, http.StatusOK, ListResponse{Practitioners: practitioners})
}

// Add handles PUT /api/favorites/{practitionerID}.
func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	user, ok := identity.FromContext(r.Context())
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}
	id := chi.URLParam(r, "practitionerID")

	if _, err := h.catalog.GetByID(r.Context(), id); err != nil {
		if errors.Is(err, catalog.ErrPractitionerNotFound) {
			http.Error(w, "practitioner not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to check practitioner", "error", err, "practitioner_id", id)
		http.Error(w, "failed to add favorite", http.StatusInternalServerError)
		return
	}

	if err := h.store.Add(r.Context(), user.ID, id); err != nil {
		h.logger.Error("failed to add favorite", "error", err, "user_id", user.ID)
		http.Error(w, "failed to add favorite", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Remove handles DELETE /api/favorites/{practitionerID}.
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	user, ok := identity.FromContext(r.Context())
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}
	id := chi.URLParam(r, "practitionerID")

	if err := h.store.Remove(r.Context(), user.ID, id); err != nil {
		h.logger.Error("failed to remove favorite", "error", err, "user_id", user.ID)
		http.Error(w, "failed to remove favorite", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
