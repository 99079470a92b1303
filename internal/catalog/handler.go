package catalog

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mentari-health/mentari-platform/internal/shell"
	"github.com/mentari-health/mentari-platform/pkg/logging"
)

const (
	defaultPerPage = 12
	// The installed-app shell renders a tighter list, so it pages smaller.
	compactPerPage = 8
	maxPerPage     = 50
)

// Handler serves the practitioner catalog read API.
type Handler struct {
	repo   Repository
	logger *logging.Logger
}

// NewHandler creates a catalog handler.
func NewHandler(repo Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, logger: logger}
}

// ListResponse is the paginated listing payload.
type ListResponse struct {
	Practitioners []*Practitioner `json:"practitioners"`
	Total         int             `json:"total"`
	Page          int             `json:"page"`
	PerPage       int             `json:"per_page"`
}

// List handles GET /api/practitioners.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	perPageDefault := defaultPerPage
	if shell.FromContext(r.Context()) == shell.InstalledShell {
		perPageDefault = compactPerPage
	}

	filter := ListFilter{
		Search:    q.Get("search"),
		Specialty: q.Get("specialty"),
		Sort:      ParseSortOption(q.Get("sort")),
		Page:      1,
		PerPage:   perPageDefault,
	}

	if ratingStr := q.Get("min_rating"); ratingStr != "" {
		if rating, err := strconv.ParseFloat(ratingStr, 64); err == nil && rating > 0 {
			filter.MinRating = rating
		}
	}
	if pageStr := q.Get("page"); pageStr != "" {
		if page, err := strconv.Atoi(pageStr); err == nil && page > 0 {
			filter.Page = page
		}
	}
	if perPageStr := q.Get("per_page"); perPageStr != "" {
		if perPage, err := strconv.Atoi(perPageStr); err == nil && perPage > 0 && perPage <= maxPerPage {
			filter.PerPage = perPage
		}
	}

	practitioners, total, err := h.repo.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list practitioners", "error", err)
		http.Error(w, "failed to list practitioners", http.StatusInternalServerError)
		return
	}
	if practitioners == nil {
		practitioners = []*Practitioner{}
	}

	writeJSON(w, http.StatusOK, ListResponse{
		Practitioners: practitioners,
		Total:         total,
		Page:          filter.Page,
		PerPage:       filter.PerPage,
	})
}

// Get handles GET /api/practitioners/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		http.Error(w, "missing practitioner id", http.StatusBadRequest)
		return
	}

	p, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrPractitionerNotFound) {
			http.Error(w, "practitioner not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to load practitioner", "error", err, "id", id)
		http.Error(w, "failed to load practitioner", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
