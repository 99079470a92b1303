package payments

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/mentari-health/mentari-platform/pkg/logging"
)

// FakeGateway is a dev/demo gateway that generates an internal URL and lets
// the user "pay" without Xendit credentials.
//
// This MUST be gated by configuration (e.g. ALLOW_FAKE_PAYMENTS) and should
// never be enabled in production.
type FakeGateway struct {
	publicBaseURL string
	logger        *logging.Logger
}

func NewFakeGateway(publicBaseURL string, logger *logging.Logger) *FakeGateway {
	if logger == nil {
		logger = logging.Default()
	}
	return &FakeGateway{
		publicBaseURL: strings.TrimRight(strings.TrimSpace(publicBaseURL), "/"),
		logger:        logger,
	}
}

func (g *FakeGateway) CreateInvoice(ctx context.Context, params InvoiceParams) (*Invoice, error) {
	_ = ctx
	if params.ExternalID == "" {
		return nil, fmt.Errorf("payments: fake gateway requires external id")
	}
	if g.publicBaseURL == "" {
		return nil, fmt.Errorf("payments: fake gateway requires PUBLIC_BASE_URL")
	}
	if !isValidBaseURL(g.publicBaseURL) {
		return nil, fmt.Errorf("payments: fake gateway PUBLIC_BASE_URL must be an absolute http(s) URL")
	}

	return &Invoice{
		ID:  "fake:" + params.ExternalID,
		URL: fmt.Sprintf("%s/payments/fake/%s", g.publicBaseURL, params.ExternalID),
	}, nil
}

func isValidBaseURL(value string) bool {
	parsed, err := url.Parse(value)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return false
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https":
		return true
	default:
		return false
	}
}
