package booking

import "errors"

// Guard errors. These are never fatal: the HTTP layer renders them as the
// wizard's disabled affordances (4xx), leaving the draft untouched.
var (
	ErrWrongStep          = errors.New("booking: operation not valid at current step")
	ErrInvalidSessionType = errors.New("booking: unknown session type")
	ErrComplaintTooShort  = errors.New("booking: complaint shorter than minimum length")
	ErrComplaintTooLong   = errors.New("booking: complaint exceeds maximum length")
	ErrInvalidDate        = errors.New("booking: date must be formatted as YYYY-MM-DD")
	ErrDateInPast         = errors.New("booking: date is in the past")
	ErrDateUnavailable    = errors.New("booking: no consultations on that weekday")
	ErrDateRequired       = errors.New("booking: choose a date before a time")
	ErrSlotNotOffered     = errors.New("booking: time is not an offered slot")
	ErrScheduleIncomplete = errors.New("booking: date and time are both required")
	ErrInvalidPrice       = errors.New("booking: price must be positive")
	ErrAlreadyProcessing  = errors.New("booking: payment already in progress")
	ErrNoPriorStep        = errors.New("booking: no step to go back to")
)

// Resource errors.
var (
	ErrDraftNotFound   = errors.New("booking: draft not found or expired")
	ErrDraftForbidden  = errors.New("booking: draft belongs to another user")
	ErrBookingNotFound = errors.New("booking: booking not found")
)

// IsGuardError reports whether err is a wizard guard violation rather than an
// infrastructure failure.
func IsGuardError(err error) bool {
	for _, guard := range []error{
		ErrWrongStep, ErrInvalidSessionType, ErrComplaintTooShort, ErrComplaintTooLong,
		ErrInvalidDate, ErrDateInPast, ErrDateUnavailable, ErrDateRequired,
		ErrSlotNotOffered, ErrScheduleIncomplete, ErrInvalidPrice,
		ErrAlreadyProcessing, ErrNoPriorStep,
	} {
		if errors.Is(err, guard) {
			return true
		}
	}
	return false
}
