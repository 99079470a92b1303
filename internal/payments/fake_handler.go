package payments

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mentari-health/mentari-platform/pkg/logging"
)

type settlementStore interface {
	MarkPaid(ctx context.Context, externalID, channel, method string, paidAt time.Time) error
}

type processedTracker interface {
	AlreadyProcessed(ctx context.Context, provider, eventID string) (bool, error)
	MarkProcessed(ctx context.Context, provider, eventID string) (bool, error)
}

// FakePaymentsHandler exposes a tiny demo UI to "pay" invoices without Xendit.
// Only mount this handler when ALLOW_FAKE_PAYMENTS=true.
type FakePaymentsHandler struct {
	bookings  settlementStore
	processed processedTracker
	logger    *logging.Logger
}

func NewFakePaymentsHandler(bookings settlementStore, processed processedTracker, logger *logging.Logger) *FakePaymentsHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &FakePaymentsHandler{bookings: bookings, processed: processed, logger: logger}
}

func (h *FakePaymentsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/fake/{externalID}", h.HandleCheckout)
	r.Post("/fake/{externalID}/complete", h.HandleComplete)
	r.Get("/fake/{externalID}/success", h.HandleSuccess)
	return r
}

func (h *FakePaymentsHandler) HandleCheckout(w http.ResponseWriter, r *http.Request) {
	externalID := strings.TrimSpace(chi.URLParam(r, "externalID"))
	if externalID == "" {
		http.Error(w, "missing id", http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Demo Consultation Checkout</title>
    <style>
      body{font-family:system-ui,-apple-system,Segoe UI,Roboto,Ubuntu,Cantarell,Noto Sans,sans-serif;max-width:680px;margin:40px auto;padding:0 16px;}
      .card{border:1px solid #e5e7eb;border-radius:12px;padding:18px;}
      .btn{display:inline-block;background:#111827;color:#fff;padding:12px 16px;border-radius:10px;text-decoration:none;border:0;cursor:pointer;}
      .muted{color:#6b7280;font-size:14px;}
      code{background:#f3f4f6;padding:2px 6px;border-radius:6px;}
    </style>
  </head>
  <body>
    <h1>Demo Consultation Checkout</h1>
    <div class="card">
      <p class="muted">This is a demo-only payment page (no real payment is processed).</p>
      <form method="POST" action="/payments/fake/%s/complete">
        <button class="btn" type="submit">Pay Invoice</button>
      </form>
      <p class="muted">Reference: <code>%s</code></p>
    </div>
  </body>
</html>`, externalID, externalID)
}

func (h *FakePaymentsHandler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	externalID := strings.TrimSpace(chi.URLParam(r, "externalID"))
	if externalID == "" {
		http.Error(w, "missing id", http.StatusBadRequest)
		return
	}
	if err := h.completePayment(r.Context(), externalID); err != nil {
		h.logger.Error("fake payment completion failed", "error", err, "external_id", externalID)
		http.Error(w, "failed to complete payment", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, fmt.Sprintf("/payments/fake/%s/success", externalID), http.StatusSeeOther)
}

func (h *FakePaymentsHandler) HandleSuccess(w http.ResponseWriter, r *http.Request) {
	externalID := strings.TrimSpace(chi.URLParam(r, "externalID"))
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Payment Completed</title>
    <style>
      body{font-family:system-ui,-apple-system,Segoe UI,Roboto,Ubuntu,Cantarell,Noto Sans,sans-serif;max-width:680px;margin:40px auto;padding:0 16px;}
      .card{border:1px solid #e5e7eb;border-radius:12px;padding:18px;}
      .muted{color:#6b7280;font-size:14px;}
      code{background:#f3f4f6;padding:2px 6px;border-radius:6px;}
    </style>
  </head>
  <body>
    <h1>Payment Completed</h1>
    <div class="card">
      <p>Thanks — your demo consultation is marked as paid.</p>
      <p class="muted">You can close this tab and return to your appointments.</p>
      <p class="muted">Reference: <code>%s</code></p>
    </div>
  </body>
</html>`, externalID)
}

func (h *FakePaymentsHandler) completePayment(ctx context.Context, externalID string) error {
	if h.bookings == nil {
		return fmt.Errorf("payments: fake handler missing booking store")
	}
	if h.processed != nil {
		seen, err := h.processed.AlreadyProcessed(ctx, "fake", "fake:"+externalID)
		if err == nil && seen {
			return nil
		}
	}
	if err := h.bookings.MarkPaid(ctx, externalID, "FAKE", "DEMO", time.Now().UTC()); err != nil {
		return fmt.Errorf("payments: fake settle: %w", err)
	}
	if h.processed != nil {
		if _, err := h.processed.MarkProcessed(ctx, "fake", "fake:"+externalID); err != nil {
			h.logger.Error("failed to record fake settlement", "error", err, "external_id", externalID)
		}
	}
	return nil
}
