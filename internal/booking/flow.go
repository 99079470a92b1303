// Package booking drives the consultation booking wizard: an explicit draft
// value object advanced by a linear state machine, from session-type selection
// through the payment handoff to the hosted checkout page.
package booking

import (
	"math"
	"strings"
	"time"
)

// Step is the wizard position.
type Step string

const (
	StepSessionType Step = "session_type"
	StepComplaint   Step = "complaint"
	StepSchedule    Step = "schedule"
	StepPayment     Step = "payment"
)

// SessionType determines the consultation medium and the price tier.
type SessionType string

const (
	SessionVideo SessionType = "video"
	SessionChat  SessionType = "chat"
)

// ValidSessionType reports whether t is a known session type.
func ValidSessionType(t SessionType) bool {
	return t == SessionVideo || t == SessionChat
}

const (
	// ComplaintMinLen is the minimum trimmed complaint length required to advance.
	ComplaintMinLen = 50
	// ComplaintMaxLen is the hard input cap.
	ComplaintMaxLen = 500

	// chatPriceFactor discounts chat sessions relative to video.
	chatPriceFactor = 0.7

	dateLayout = "2006-01-02"
)

// OfferedSlots are the consultation start times offered for every bookable
// date. There is deliberately no cross-booking availability check here; the
// slot list is offered unconditionally.
var OfferedSlots = []string{"09:00", "10:00", "11:00", "13:00", "14:00", "15:00", "16:00", "17:00"}

// SlotOffered reports whether slot is one of the fixed offered times.
func SlotOffered(slot string) bool {
	for _, s := range OfferedSlots {
		if s == slot {
			return true
		}
	}
	return false
}

// Draft is the in-progress booking data. It is entirely held by the flow until
// the payment confirmation; no booking record exists before that point.
type Draft struct {
	PractitionerID string      `json:"practitioner_id"`
	SessionType    SessionType `json:"session_type"`
	Complaint      string      `json:"complaint"`
	Date           string      `json:"date,omitempty"` // 2006-01-02
	TimeSlot       string      `json:"time,omitempty"` // 15:04
}

// Flow is the booking wizard state machine. All operations are pure in-memory
// transitions; the single outbound side effect (the gateway call) lives in
// Service.Confirm, gated by the guards exposed here.
type Flow struct {
	id         string
	userID     string
	draft      Draft
	step       Step
	skipped    bool        // session-type step skipped via preselection
	preselect  SessionType // set only when skipped
	priceVideo int64       // practitioner base price, IDR

	now func() time.Time
}

// NewFlow opens a wizard for one practitioner. priceVideo is the base session
// price; preselect, when valid, skips the session-type step entirely.
func NewFlow(id, userID, practitionerID string, priceVideo int64, preselect SessionType) *Flow {
	f := &Flow{
		id:     id,
		userID: userID,
		draft: Draft{
			PractitionerID: practitionerID,
			SessionType:    SessionVideo,
		},
		step:       StepSessionType,
		priceVideo: priceVideo,
		now:        time.Now,
	}
	if ValidSessionType(preselect) {
		f.draft.SessionType = preselect
		f.step = StepComplaint
		f.skipped = true
		f.preselect = preselect
	}
	return f
}

// ID returns the draft id; it doubles as the idempotency key forwarded to the
// payment gateway on every confirm retry of this attempt.
func (f *Flow) ID() string { return f.id }

// UserID returns the owning user.
func (f *Flow) UserID() string { return f.userID }

// Step returns the current wizard position.
func (f *Flow) Step() Step { return f.step }

// Draft returns a copy of the collected data.
func (f *Flow) Draft() Draft { return f.draft }

// SessionTypeSkipped reports whether the wizard was opened with a preselected type.
func (f *Flow) SessionTypeSkipped() bool { return f.skipped }

// Price derives the session price from the selected type. Chat sessions are
// priced at 70% of the video rate, rounded to the nearest rupiah.
func (f *Flow) Price() int64 {
	if f.draft.SessionType == SessionChat {
		return int64(math.Round(float64(f.priceVideo) * chatPriceFactor))
	}
	return f.priceVideo
}

// SelectSessionType records the consultation medium. It never advances the
// wizard; Next does that once the user confirms.
func (f *Flow) SelectSessionType(t SessionType) error {
	if f.step != StepSessionType {
		return ErrWrongStep
	}
	if !ValidSessionType(t) {
		return ErrInvalidSessionType
	}
	f.draft.SessionType = t
	return nil
}

// SubmitComplaint validates and stores the complaint text, advancing to the
// schedule step on success. Text shorter than the minimum leaves the wizard
// exactly where it is.
func (f *Flow) SubmitComplaint(text string) error {
	if f.step != StepComplaint {
		return ErrWrongStep
	}
	if len([]rune(text)) > ComplaintMaxLen {
		return ErrComplaintTooLong
	}
	if trimmedLen(text) < ComplaintMinLen {
		return ErrComplaintTooShort
	}
	f.draft.Complaint = text
	f.step = StepSchedule
	return nil
}

// SelectDate records the consultation date. Dates before today and Sundays are
// rejected; a rejected date leaves the draft untouched.
func (f *Flow) SelectDate(date string) error {
	if f.step != StepSchedule {
		return ErrWrongStep
	}
	d, err := time.ParseInLocation(dateLayout, date, f.now().Location())
	if err != nil {
		return ErrInvalidDate
	}
	today := truncateToDay(f.now())
	if d.Before(today) {
		return ErrDateInPast
	}
	if d.Weekday() == time.Sunday {
		return ErrDateUnavailable
	}
	f.draft.Date = date
	return nil
}

// SelectTime records the consultation start time. A time is only settable once
// a date is chosen, and must be one of the offered slots.
func (f *Flow) SelectTime(slot string) error {
	if f.step != StepSchedule {
		return ErrWrongStep
	}
	if f.draft.Date == "" {
		return ErrDateRequired
	}
	if !SlotOffered(slot) {
		return ErrSlotNotOffered
	}
	f.draft.TimeSlot = slot
	return nil
}

// Next advances from the session-type or schedule step once its guard holds.
// The complaint step advances through SubmitComplaint, and payment through the
// confirm operation.
func (f *Flow) Next() error {
	switch f.step {
	case StepSessionType:
		f.step = StepComplaint
		return nil
	case StepSchedule:
		if f.draft.Date == "" || f.draft.TimeSlot == "" {
			return ErrScheduleIncomplete
		}
		if f.Price() <= 0 {
			return ErrInvalidPrice
		}
		f.step = StepPayment
		return nil
	default:
		return ErrWrongStep
	}
}

// Back moves one step backwards without clearing any entered data. From the
// complaint step it is unavailable when the session-type step was skipped.
func (f *Flow) Back() error {
	switch f.step {
	case StepComplaint:
		if f.skipped {
			return ErrNoPriorStep
		}
		f.step = StepSessionType
		return nil
	case StepSchedule:
		f.step = StepComplaint
		return nil
	case StepPayment:
		f.step = StepSchedule
		return nil
	default:
		return ErrNoPriorStep
	}
}

// Reset discards all collected data and returns to the entry step. Safe to
// call from any state.
func (f *Flow) Reset() {
	practitioner := f.draft.PractitionerID
	f.draft = Draft{PractitionerID: practitioner, SessionType: SessionVideo}
	f.step = StepSessionType
	if f.skipped {
		// Preselection is an entry condition, not entered data; it survives reset.
		f.draft.SessionType = f.preselect
		f.step = StepComplaint
	}
}

// ConfirmReady checks every payment-step guard without side effects. The
// double-submit guard is not here: one confirm at a time is enforced by the
// store's confirm lease, which outlives a single request.
func (f *Flow) ConfirmReady() error {
	if f.step != StepPayment {
		return ErrWrongStep
	}
	if f.draft.Date == "" || f.draft.TimeSlot == "" {
		return ErrScheduleIncomplete
	}
	if f.Price() <= 0 {
		return ErrInvalidPrice
	}
	return nil
}

// ScheduledAt combines the chosen date and slot into a timestamp in loc.
func (f *Flow) ScheduledAt(loc *time.Location) (time.Time, error) {
	if f.draft.Date == "" || f.draft.TimeSlot == "" {
		return time.Time{}, ErrScheduleIncomplete
	}
	return time.ParseInLocation(dateLayout+" 15:04", f.draft.Date+" "+f.draft.TimeSlot, loc)
}

func trimmedLen(s string) int {
	return len([]rune(strings.TrimSpace(s)))
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
