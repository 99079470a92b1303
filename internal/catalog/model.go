package catalog

import "time"

// Practitioner is a psychologist available for consultation bookings.
type Practitioner struct {
	ID              string    `json:"id"`
	DisplayName     string    `json:"display_name"`
	Specialty       string    `json:"specialty"`
	Bio             string    `json:"bio"`
	ImageURL        string    `json:"image_url,omitempty"`
	Languages       []string  `json:"languages,omitempty"`
	YearsExperience int       `json:"years_experience"`
	PriceVideo      int64     `json:"price_video"`
	PriceChat       int64     `json:"price_chat"`
	RatingAvg       float64   `json:"rating_avg"`
	RatingCount     int       `json:"rating_count"`
	Available       bool      `json:"available"`
	CreatedAt       time.Time `json:"created_at"`
}

// SortOption orders a practitioner listing.
type SortOption string

const (
	SortNameAsc        SortOption = "name-asc"
	SortNameDesc       SortOption = "name-desc"
	SortRatingDesc     SortOption = "rating-desc"
	SortExperienceDesc SortOption = "experience-desc"
	SortPriceAsc       SortOption = "price-asc"
)

// ParseSortOption validates a sort query value, defaulting to rating-desc.
func ParseSortOption(s string) SortOption {
	switch SortOption(s) {
	case SortNameAsc, SortNameDesc, SortRatingDesc, SortExperienceDesc, SortPriceAsc:
		return SortOption(s)
	default:
		return SortRatingDesc
	}
}

// ListFilter narrows and pages a practitioner listing.
type ListFilter struct {
	Search    string
	Specialty string
	MinRating float64
	Sort      SortOption
	Page      int
	PerPage   int
}

// Offset converts page/per-page into a row offset.
func (f ListFilter) Offset() int {
	if f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * f.PerPage
}
