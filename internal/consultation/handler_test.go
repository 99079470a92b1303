package consultation

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mentari-health/mentari-platform/internal/booking"
	"github.com/mentari-health/mentari-platform/internal/identity"
)

type fakeCloser struct {
	completed []string
	err       error
}

func (c *fakeCloser) MarkCompleted(_ context.Context, userID, bookingID string) error {
	if c.err != nil {
		return c.err
	}
	c.completed = append(c.completed, userID+"/"+bookingID)
	return nil
}

func authedRequest(method, path string, body []byte) *http.Request {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	ctx := identity.WithUser(req.Context(), identity.User{ID: "user-1", Name: "Andi"})
	return req.WithContext(ctx)
}

func TestTokenEndpoint(t *testing.T) {
	h := NewHandler(NewTokenMinter("key_abc", "stream-secret", 0), &fakeCloser{}, nil)

	rec := httptest.NewRecorder()
	h.Token(rec, authedRequest(http.MethodPost, "/api/consultation/token", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var resp TokenResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Token == "" || resp.APIKey != "key_abc" || resp.UserID != "user-1" {
		t.Fatalf("response = %+v", resp)
	}
}

func TestTokenRequiresAuth(t *testing.T) {
	h := NewHandler(NewTokenMinter("key_abc", "stream-secret", 0), &fakeCloser{}, nil)
	rec := httptest.NewRecorder()
	h.Token(rec, httptest.NewRequest(http.MethodPost, "/api/consultation/token", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestEndEndpoint(t *testing.T) {
	closer := &fakeCloser{}
	h := NewHandler(NewTokenMinter("key_abc", "stream-secret", 0), closer, nil)

	body, _ := json.Marshal(map[string]string{"booking_id": "bk-1"})
	rec := httptest.NewRecorder()
	h.End(rec, authedRequest(http.MethodPost, "/api/consultation/end", body))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if len(closer.completed) != 1 || closer.completed[0] != "user-1/bk-1" {
		t.Fatalf("completed = %v", closer.completed)
	}
}

func TestEndUnknownBooking(t *testing.T) {
	closer := &fakeCloser{err: booking.ErrBookingNotFound}
	h := NewHandler(NewTokenMinter("key_abc", "stream-secret", 0), closer, nil)

	body, _ := json.Marshal(map[string]string{"booking_id": "ghost"})
	rec := httptest.NewRecorder()
	h.End(rec, authedRequest(http.MethodPost, "/api/consultation/end", body))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestEndValidation(t *testing.T) {
	h := NewHandler(NewTokenMinter("key_abc", "stream-secret", 0), &fakeCloser{}, nil)

	rec := httptest.NewRecorder()
	h.End(rec, authedRequest(http.MethodPost, "/api/consultation/end", []byte("{}")))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing booking_id status = %d, want 400", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.End(rec, authedRequest(http.MethodPost, "/api/consultation/end", []byte("{nope")))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad json status = %d, want 400", rec.Code)
	}
}
