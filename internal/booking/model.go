package booking

import "time"

// Booking statuses. A row is created pending at checkout handoff and settled
// by the payment webhook; completed marks a finished consultation session.
const (
	StatusPending   = "pending"
	StatusPaid      = "paid"
	StatusExpired   = "expired"
	StatusFailed    = "failed"
	StatusCompleted = "completed"
)

// Booking is a persisted consultation booking.
type Booking struct {
	ID             string      `json:"id"`
	UserID         string      `json:"user_id"`
	UserEmail      string      `json:"-"`
	PractitionerID string      `json:"practitioner_id"`
	SessionType    SessionType `json:"session_type"`
	Complaint      string      `json:"complaint"`
	ScheduledAt    time.Time   `json:"scheduled_at"`
	Amount         int64       `json:"amount"`
	Currency       string      `json:"currency"`
	Status         string      `json:"status"`
	InvoiceID      string      `json:"invoice_id,omitempty"`
	InvoiceURL     string      `json:"invoice_url,omitempty"`
	ExternalID     string      `json:"external_id,omitempty"`
	PaymentChannel string      `json:"payment_channel,omitempty"`
	PaymentMethod  string      `json:"payment_method,omitempty"`
	PaidAt         *time.Time  `json:"paid_at,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}
