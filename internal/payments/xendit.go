package payments

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/mentari-health/mentari-platform/pkg/logging"
)

var xenditTracer = otel.Tracer("mentari.internal.payments.xendit")

const defaultInvoiceDuration = 24 * time.Hour

// XenditGateway creates hosted invoices through the Xendit Invoice API.
type XenditGateway struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *logging.Logger
}

func NewXenditGateway(apiKey string, logger *logging.Logger) *XenditGateway {
	if logger == nil {
		logger = logging.Default()
	}
	return &XenditGateway{
		apiKey:     apiKey,
		baseURL:    "https://api.xendit.co",
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

// WithBaseURL overrides the Xendit API host (tests, sandbox).
func (g *XenditGateway) WithBaseURL(baseURL string) *XenditGateway {
	if baseURL == "" {
		return g
	}
	g.baseURL = strings.TrimRight(baseURL, "/")
	return g
}

func (g *XenditGateway) CreateInvoice(ctx context.Context, params InvoiceParams) (*Invoice, error) {
	if g.apiKey == "" {
		return nil, fmt.Errorf("payments: xendit api key not configured")
	}
	if params.ExternalID == "" {
		return nil, fmt.Errorf("payments: external id required")
	}
	if params.Amount <= 0 {
		return nil, fmt.Errorf("payments: amount must be positive")
	}

	ctx, span := xenditTracer.Start(ctx, "xendit.create_invoice")
	defer span.End()
	span.SetAttributes(
		attribute.String("mentari.external_id", params.ExternalID),
		attribute.Int64("mentari.amount", params.Amount),
	)

	duration := params.Duration
	if duration <= 0 {
		duration = defaultInvoiceDuration
	}
	itemName := params.ItemName
	if strings.TrimSpace(itemName) == "" {
		itemName = "Consultation"
	}

	body := map[string]any{
		"external_id":      params.ExternalID,
		"amount":           params.Amount,
		"description":      params.Description,
		"invoice_duration": int(duration.Seconds()),
		"currency":         "IDR",
		"customer": map[string]any{
			"given_names": params.PayerName,
			"email":       params.PayerEmail,
		},
		"success_redirect_url": params.SuccessURL,
		"failure_redirect_url": params.FailureURL,
		"items": []map[string]any{
			{
				"name":     itemName,
				"quantity": 1,
				"price":    params.Amount,
			},
		},
	}

	reqBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("payments: xendit payload: %w", err)
	}

	apiURL := g.baseURL + "/v2/invoices"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("payments: xendit request: %w", err)
	}
	req.Header.Set("Authorization", basicAuth(g.apiKey))
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("payments: xendit http: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("payments: xendit api status %d: %s", resp.StatusCode, string(body))
	}

	var parsed struct {
		ID         string `json:"id"`
		InvoiceURL string `json:"invoice_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("payments: xendit decode: %w", err)
	}
	if parsed.InvoiceURL == "" {
		return nil, fmt.Errorf("payments: xendit response missing invoice_url")
	}

	return &Invoice{ID: parsed.ID, URL: parsed.InvoiceURL}, nil
}

// basicAuth builds the Xendit authorization header. The secret key acts as
// the username with an empty password.
func basicAuth(apiKey string) string {
	token := base64.StdEncoding.EncodeToString([]byte(apiKey + ":"))
	return "Basic " + token
}
