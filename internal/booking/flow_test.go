package booking

import (
	"errors"
	"testing"
	"time"
)

// fixedNow is a Monday so that all near-future weekdays in tests are bookable.
var fixedNow = time.Date(2026, 9, 7, 10, 0, 0, 0, time.UTC)

func newTestFlow(preselect SessionType) *Flow {
	f := NewFlow("draft-1", "user-1", "prac-1", 150000, preselect)
	f.now = func() time.Time { return fixedNow }
	return f
}

const validComplaint = "I have been feeling anxious for several weeks and it is affecting my sleep and my work every single day."

func advanceToSchedule(t *testing.T, f *Flow) {
	t.Helper()
	if f.Step() == StepSessionType {
		if err := f.Next(); err != nil {
			t.Fatalf("next from session type: %v", err)
		}
	}
	if err := f.SubmitComplaint(validComplaint); err != nil {
		t.Fatalf("submit complaint: %v", err)
	}
}

func advanceToPayment(t *testing.T, f *Flow) {
	t.Helper()
	advanceToSchedule(t, f)
	if err := f.SelectDate("2026-09-08"); err != nil {
		t.Fatalf("select date: %v", err)
	}
	if err := f.SelectTime("13:00"); err != nil {
		t.Fatalf("select time: %v", err)
	}
	if err := f.Next(); err != nil {
		t.Fatalf("next to payment: %v", err)
	}
}

func TestNewFlowStartsAtSessionType(t *testing.T) {
	f := newTestFlow("")
	if f.Step() != StepSessionType {
		t.Fatalf("step = %s, want %s", f.Step(), StepSessionType)
	}
	if f.Draft().SessionType != SessionVideo {
		t.Fatalf("default session type = %s, want video", f.Draft().SessionType)
	}
	if f.SessionTypeSkipped() {
		t.Fatal("fresh flow should not skip session type")
	}
}

func TestPreselectSkipsSessionType(t *testing.T) {
	f := newTestFlow(SessionChat)
	if f.Step() != StepComplaint {
		t.Fatalf("step = %s, want %s", f.Step(), StepComplaint)
	}
	if !f.SessionTypeSkipped() {
		t.Fatal("expected skipped flag")
	}
	if f.Draft().SessionType != SessionChat {
		t.Fatalf("session type = %s, want chat", f.Draft().SessionType)
	}
	if err := f.Back(); !errors.Is(err, ErrNoPriorStep) {
		t.Fatalf("back from skipped complaint = %v, want ErrNoPriorStep", err)
	}
}

func TestInvalidPreselectIgnored(t *testing.T) {
	f := NewFlow("d", "u", "p", 100000, SessionType("hologram"))
	if f.Step() != StepSessionType {
		t.Fatalf("step = %s, want session type", f.Step())
	}
	if f.SessionTypeSkipped() {
		t.Fatal("invalid preselect must not skip")
	}
}

func TestPriceDerivation(t *testing.T) {
	f := newTestFlow("")
	if got := f.Price(); got != 150000 {
		t.Fatalf("video price = %d, want 150000", got)
	}
	if err := f.SelectSessionType(SessionChat); err != nil {
		t.Fatalf("select chat: %v", err)
	}
	if got := f.Price(); got != 105000 {
		t.Fatalf("chat price = %d, want 105000", got)
	}

	// Rounded to the nearest rupiah, not truncated.
	odd := NewFlow("d", "u", "p", 99999, "")
	if got := odd.Price(); got != 99999 {
		t.Fatalf("video price = %d", got)
	}
	if err := odd.SelectSessionType(SessionChat); err != nil {
		t.Fatal(err)
	}
	if got := odd.Price(); got != 69999 {
		t.Fatalf("chat price = %d, want 69999 (round(99999*0.7))", got)
	}
}

func TestSelectSessionTypeGuards(t *testing.T) {
	f := newTestFlow("")
	if err := f.SelectSessionType(SessionType("carrier-pigeon")); !errors.Is(err, ErrInvalidSessionType) {
		t.Fatalf("err = %v, want ErrInvalidSessionType", err)
	}
	if err := f.Next(); err != nil {
		t.Fatal(err)
	}
	if err := f.SelectSessionType(SessionChat); !errors.Is(err, ErrWrongStep) {
		t.Fatalf("select after advancing = %v, want ErrWrongStep", err)
	}
}

func TestComplaintValidation(t *testing.T) {
	f := newTestFlow("")
	if err := f.Next(); err != nil {
		t.Fatal(err)
	}

	if err := f.SubmitComplaint("too short"); !errors.Is(err, ErrComplaintTooShort) {
		t.Fatalf("err = %v, want ErrComplaintTooShort", err)
	}
	if f.Step() != StepComplaint {
		t.Fatal("rejected complaint must not advance")
	}

	// Whitespace padding does not count toward the minimum.
	padded := "   short text   "
	for len([]rune(padded)) < ComplaintMaxLen {
		padded += " "
	}
	if err := f.SubmitComplaint(padded); !errors.Is(err, ErrComplaintTooShort) {
		t.Fatalf("padded complaint err = %v, want ErrComplaintTooShort", err)
	}

	long := make([]rune, ComplaintMaxLen+1)
	for i := range long {
		long[i] = 'a'
	}
	if err := f.SubmitComplaint(string(long)); !errors.Is(err, ErrComplaintTooLong) {
		t.Fatalf("err = %v, want ErrComplaintTooLong", err)
	}

	if err := f.SubmitComplaint(validComplaint); err != nil {
		t.Fatalf("valid complaint rejected: %v", err)
	}
	if f.Step() != StepSchedule {
		t.Fatalf("step = %s, want schedule", f.Step())
	}
}

func TestComplaintMinLengthCountsRunes(t *testing.T) {
	f := newTestFlow("")
	if err := f.Next(); err != nil {
		t.Fatal(err)
	}
	// 50 multibyte runes are enough even though the byte count differs.
	runes := make([]rune, ComplaintMinLen)
	for i := range runes {
		runes[i] = 'é'
	}
	if err := f.SubmitComplaint(string(runes)); err != nil {
		t.Fatalf("50-rune complaint rejected: %v", err)
	}
}

func TestDateValidation(t *testing.T) {
	f := newTestFlow("")
	advanceToSchedule(t, f)

	cases := []struct {
		name string
		date string
		want error
	}{
		{"garbage", "next tuesday", ErrInvalidDate},
		{"yesterday", "2026-09-06", ErrDateInPast},
		{"last year", "2025-09-08", ErrDateInPast},
		{"sunday", "2026-09-13", ErrDateUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := f.SelectDate(tc.date); !errors.Is(err, tc.want) {
				t.Fatalf("SelectDate(%q) = %v, want %v", tc.date, err, tc.want)
			}
			if f.Draft().Date != "" {
				t.Fatal("rejected date must not be stored")
			}
		})
	}

	// Today itself is bookable.
	if err := f.SelectDate("2026-09-07"); err != nil {
		t.Fatalf("today rejected: %v", err)
	}
	if err := f.SelectDate("2026-09-08"); err != nil {
		t.Fatalf("tomorrow rejected: %v", err)
	}
}

func TestTimeRequiresDate(t *testing.T) {
	f := newTestFlow("")
	advanceToSchedule(t, f)

	if err := f.SelectTime("13:00"); !errors.Is(err, ErrDateRequired) {
		t.Fatalf("err = %v, want ErrDateRequired", err)
	}
	if err := f.SelectDate("2026-09-08"); err != nil {
		t.Fatal(err)
	}
	if err := f.SelectTime("12:30"); !errors.Is(err, ErrSlotNotOffered) {
		t.Fatalf("err = %v, want ErrSlotNotOffered", err)
	}
	if err := f.SelectTime("13:00"); err != nil {
		t.Fatalf("offered slot rejected: %v", err)
	}
}

func TestNextGuards(t *testing.T) {
	f := newTestFlow("")
	advanceToSchedule(t, f)

	if err := f.Next(); !errors.Is(err, ErrScheduleIncomplete) {
		t.Fatalf("next without schedule = %v, want ErrScheduleIncomplete", err)
	}
	if err := f.SelectDate("2026-09-08"); err != nil {
		t.Fatal(err)
	}
	if err := f.Next(); !errors.Is(err, ErrScheduleIncomplete) {
		t.Fatalf("next without time = %v, want ErrScheduleIncomplete", err)
	}
	if err := f.SelectTime("09:00"); err != nil {
		t.Fatal(err)
	}
	if err := f.Next(); err != nil {
		t.Fatalf("next with complete schedule: %v", err)
	}
	if f.Step() != StepPayment {
		t.Fatalf("step = %s, want payment", f.Step())
	}
	if err := f.Next(); !errors.Is(err, ErrWrongStep) {
		t.Fatalf("next from payment = %v, want ErrWrongStep", err)
	}
}

func TestNextRejectsNonPositivePrice(t *testing.T) {
	f := NewFlow("d", "u", "p", 0, "")
	f.now = func() time.Time { return fixedNow }
	advanceToSchedule(t, f)
	if err := f.SelectDate("2026-09-08"); err != nil {
		t.Fatal(err)
	}
	if err := f.SelectTime("09:00"); err != nil {
		t.Fatal(err)
	}
	if err := f.Next(); !errors.Is(err, ErrInvalidPrice) {
		t.Fatalf("err = %v, want ErrInvalidPrice", err)
	}
}

func TestBackPreservesData(t *testing.T) {
	f := newTestFlow("")
	advanceToPayment(t, f)

	if err := f.Back(); err != nil {
		t.Fatal(err)
	}
	if f.Step() != StepSchedule {
		t.Fatalf("step = %s, want schedule", f.Step())
	}
	if f.Draft().Date != "2026-09-08" || f.Draft().TimeSlot != "13:00" {
		t.Fatal("back cleared schedule data")
	}

	if err := f.Back(); err != nil {
		t.Fatal(err)
	}
	if f.Step() != StepComplaint {
		t.Fatalf("step = %s, want complaint", f.Step())
	}
	if f.Draft().Complaint != validComplaint {
		t.Fatal("back cleared complaint")
	}

	if err := f.Back(); err != nil {
		t.Fatal(err)
	}
	if f.Step() != StepSessionType {
		t.Fatalf("step = %s, want session type", f.Step())
	}
	if err := f.Back(); !errors.Is(err, ErrNoPriorStep) {
		t.Fatalf("back from entry = %v, want ErrNoPriorStep", err)
	}

	// Forward again reuses everything already entered.
	if err := f.Next(); err != nil {
		t.Fatal(err)
	}
	if err := f.SubmitComplaint(validComplaint); err != nil {
		t.Fatal(err)
	}
	if err := f.Next(); err != nil {
		t.Fatalf("re-advance with preserved schedule: %v", err)
	}
	if f.Step() != StepPayment {
		t.Fatalf("step = %s, want payment", f.Step())
	}
}

func TestResetFromEveryStep(t *testing.T) {
	build := []func(t *testing.T, f *Flow){
		func(t *testing.T, f *Flow) {},
		func(t *testing.T, f *Flow) {
			if err := f.Next(); err != nil {
				t.Fatal(err)
			}
		},
		func(t *testing.T, f *Flow) { advanceToSchedule(t, f) },
		func(t *testing.T, f *Flow) { advanceToPayment(t, f) },
	}
	for i, setup := range build {
		f := newTestFlow("")
		setup(t, f)
		f.Reset()
		if f.Step() != StepSessionType {
			t.Fatalf("case %d: step after reset = %s", i, f.Step())
		}
		d := f.Draft()
		if d.Complaint != "" || d.Date != "" || d.TimeSlot != "" {
			t.Fatalf("case %d: reset left data behind: %+v", i, d)
		}
		if d.SessionType != SessionVideo {
			t.Fatalf("case %d: session type after reset = %s", i, d.SessionType)
		}
		if d.PractitionerID != "prac-1" {
			t.Fatalf("case %d: practitioner lost on reset", i)
		}
	}
}

func TestResetKeepsPreselection(t *testing.T) {
	f := newTestFlow(SessionChat)
	if err := f.SubmitComplaint(validComplaint); err != nil {
		t.Fatal(err)
	}
	f.Reset()
	if f.Step() != StepComplaint {
		t.Fatalf("step = %s, want complaint (session type stays skipped)", f.Step())
	}
	if f.Draft().SessionType != SessionChat {
		t.Fatalf("session type = %s, want preselected chat", f.Draft().SessionType)
	}
}

func TestConfirmReady(t *testing.T) {
	f := newTestFlow("")
	if err := f.ConfirmReady(); !errors.Is(err, ErrWrongStep) {
		t.Fatalf("confirm before payment step = %v, want ErrWrongStep", err)
	}

	advanceToPayment(t, f)
	if err := f.ConfirmReady(); err != nil {
		t.Fatalf("confirm ready: %v", err)
	}
	// The check has no side effects; the wizard stays on payment for a retry.
	if f.Step() != StepPayment {
		t.Fatalf("step = %s, want payment", f.Step())
	}
	if err := f.ConfirmReady(); err != nil {
		t.Fatalf("repeat check: %v", err)
	}
}

func TestScheduledAt(t *testing.T) {
	f := newTestFlow("")
	if _, err := f.ScheduledAt(time.UTC); !errors.Is(err, ErrScheduleIncomplete) {
		t.Fatalf("err = %v, want ErrScheduleIncomplete", err)
	}
	advanceToPayment(t, f)
	at, err := f.ScheduledAt(time.UTC)
	if err != nil {
		t.Fatal(err)
	}
	want := time.Date(2026, 9, 8, 13, 0, 0, 0, time.UTC)
	if !at.Equal(want) {
		t.Fatalf("scheduled at = %s, want %s", at, want)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	f := newTestFlow(SessionChat)
	if err := f.SubmitComplaint(validComplaint); err != nil {
		t.Fatal(err)
	}
	if err := f.SelectDate("2026-09-08"); err != nil {
		t.Fatal(err)
	}

	restored := Restore(f.Snapshot())
	if restored.ID() != f.ID() || restored.UserID() != f.UserID() {
		t.Fatal("identity lost in snapshot")
	}
	if restored.Step() != f.Step() {
		t.Fatalf("step = %s, want %s", restored.Step(), f.Step())
	}
	if restored.Draft() != f.Draft() {
		t.Fatalf("draft = %+v, want %+v", restored.Draft(), f.Draft())
	}
	if restored.Price() != f.Price() {
		t.Fatalf("price = %d, want %d", restored.Price(), f.Price())
	}
	if !restored.SessionTypeSkipped() {
		t.Fatal("skipped flag lost")
	}
	restored.Reset()
	if restored.Draft().SessionType != SessionChat {
		t.Fatal("preselection lost through snapshot")
	}
}

func TestSlotOffered(t *testing.T) {
	if len(OfferedSlots) != 8 {
		t.Fatalf("offered slots = %d, want 8", len(OfferedSlots))
	}
	if !SlotOffered("09:00") || !SlotOffered("17:00") {
		t.Fatal("boundary slots should be offered")
	}
	if SlotOffered("12:00") || SlotOffered("18:00") {
		t.Fatal("lunch break and after-hours must not be offered")
	}
}
