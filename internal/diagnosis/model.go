package diagnosis

import (
	"errors"
	"time"
)

// Diagnosis statuses. A row is created processing when analysis is requested
// and moves to completed or failed when the analyzer finishes.
const (
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Severity levels reported by the analyzer.
const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

var (
	ErrDiagnosisNotFound  = errors.New("diagnosis: not found")
	ErrSessionNotEligible = errors.New("diagnosis: session is not eligible for analysis")
)

// Diagnosis is the persisted post-session assessment for one booking.
type Diagnosis struct {
	BookingID       string     `json:"booking_id"`
	UserID          string     `json:"-"`
	Status          string     `json:"status"`
	Summary         string     `json:"summary,omitempty"`
	Recommendations []string   `json:"recommendations,omitempty"`
	Severity        string     `json:"severity,omitempty"`
	NextSteps       string     `json:"next_steps,omitempty"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}
