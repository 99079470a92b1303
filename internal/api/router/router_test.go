package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"

	"github.com/mentari-health/mentari-platform/internal/booking"
	"github.com/mentari-health/mentari-platform/internal/catalog"
	"github.com/mentari-health/mentari-platform/pkg/logging"
)

const testAuthSecret = "router-test-secret"

func signTestToken(t *testing.T, userID string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":   userID,
		"name":  "Andi",
		"email": "andi@example.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testAuthSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	logger := logging.Default()
	repo := catalog.NewInMemoryRepository()
	repo.Add(&catalog.Practitioner{
		ID:          "prac-1",
		DisplayName: "dr. Sari Wulandari",
		Specialty:   "clinical",
		PriceVideo:  150000,
		RatingAvg:   4.9,
		Available:   true,
	})

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	drafts := booking.NewDraftStore(client, time.Hour)
	svc := booking.NewService(drafts, &noopBookingStore{}, repo, nil, booking.ServiceConfig{}, nil, logger)

	cfg := &Config{
		Logger:         logger,
		CatalogHandler: catalog.NewHandler(repo, logger),
		BookingHandler: booking.NewHandler(svc, logger),
		AuthSecret:     testAuthSecret,
	}
	return New(cfg)
}

func TestRouterHealthEndpoint(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	var resp map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode health response: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("expected status 'ok', got %q", resp["status"])
	}
}

func TestRouterCatalogIsPublic(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/practitioners", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if env := rr.Header().Get("X-App-Environment"); env == "" {
		t.Error("expected environment header on responses")
	}
}

func TestRouterBookingsRequireAuth(t *testing.T) {
	router := newTestRouter(t)

	body, _ := json.Marshal(map[string]string{"practitioner_id": "prac-1"})
	req := httptest.NewRequest(http.MethodPost, "/api/bookings", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rr.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/bookings", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+signTestToken(t, "user-1"))
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201 with token, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestRouterWebhookMissingWithoutHandler(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/xendit", bytes.NewReader([]byte("{}")))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound && rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 404/405 when XenditWebhook is nil, got %d", rr.Code)
	}
}

type noopBookingStore struct{}

func (noopBookingStore) CreatePending(_ context.Context, _ *booking.Booking) error { return nil }
func (noopBookingStore) ListByUser(_ context.Context, _ string) ([]*booking.Booking, error) {
	return nil, nil
}
