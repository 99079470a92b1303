package catalog

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// InMemoryRepository is a catalog backed by a slice; used in tests and demos.
type InMemoryRepository struct {
	mu            sync.RWMutex
	practitioners []*Practitioner
}

// NewInMemoryRepository creates an empty in-memory catalog.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{}
}

// Add registers a practitioner.
func (r *InMemoryRepository) Add(p *Practitioner) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.practitioners = append(r.practitioners, p)
}

// List filters, sorts and pages the in-memory catalog.
func (r *InMemoryRepository) List(ctx context.Context, filter ListFilter) ([]*Practitioner, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []*Practitioner
	for _, p := range r.practitioners {
		if !matches(p, filter) {
			continue
		}
		matched = append(matched, p)
	}
	sortPractitioners(matched, filter.Sort)

	total := len(matched)
	start := filter.Offset()
	if start > total {
		start = total
	}
	end := start + filter.PerPage
	if filter.PerPage <= 0 || end > total {
		end = total
	}
	return matched[start:end], total, nil
}

// GetByID fetches a practitioner by id.
func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*Practitioner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.practitioners {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, ErrPractitionerNotFound
}

func matches(p *Practitioner, filter ListFilter) bool {
	if s := strings.ToLower(strings.TrimSpace(filter.Search)); s != "" {
		if !strings.Contains(strings.ToLower(p.DisplayName), s) &&
			!strings.Contains(strings.ToLower(p.Specialty), s) {
			return false
		}
	}
	if filter.Specialty != "" && filter.Specialty != "all" && p.Specialty != filter.Specialty {
		return false
	}
	if filter.MinRating > 0 && p.RatingAvg < filter.MinRating {
		return false
	}
	return true
}

func sortPractitioners(list []*Practitioner, opt SortOption) {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		switch opt {
		case SortNameAsc:
			return a.DisplayName < b.DisplayName
		case SortNameDesc:
			return a.DisplayName > b.DisplayName
		case SortExperienceDesc:
			return a.YearsExperience > b.YearsExperience
		case SortPriceAsc:
			return a.PriceVideo < b.PriceVideo
		default:
			if a.RatingAvg != b.RatingAvg {
				return a.RatingAvg > b.RatingAvg
			}
			return a.RatingCount > b.RatingCount
		}
	})
}
