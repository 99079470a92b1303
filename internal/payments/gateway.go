package payments

import (
	"context"
	"time"
)

// InvoiceParams describes a hosted invoice to create at the gateway.
type InvoiceParams struct {
	ExternalID  string
	Amount      int64
	Description string
	PayerEmail  string
	PayerName   string
	ItemName    string
	SuccessURL  string
	FailureURL  string
	Duration    time.Duration
}

// Invoice is the gateway's hosted payment page reference.
type Invoice struct {
	ID  string
	URL string
}

// Gateway creates hosted invoices a patient is redirected to for payment.
type Gateway interface {
	CreateInvoice(ctx context.Context, params InvoiceParams) (*Invoice, error)
}
