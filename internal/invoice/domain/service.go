package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

type ListInvoiceRequest struct {
	Status     *InvoiceStatus
	CustomerID *snowflake.ID
}

type ListInvoiceResponse struct {
	Invoices []Invoice `json:"invoices"`
}

// Service owns invoice reads and the cancellation-driven splitting of
// unpaid invoices.
type Service interface {
	List(ctx context.Context, req ListInvoiceRequest) (ListInvoiceResponse, error)
	GetByID(ctx context.Context, id string) (Invoice, error)

	// CancelUnpaidForEntities cancels every unpaid invoice of the customer
	// that bills for one of the related entities, splitting mixed invoices
	// so unrelated line items survive on a fresh unpaid invoice. Sub-step
	// failures are logged and skipped; only an unrecoverable read of the
	// invoice list is returned as an error.
	CancelUnpaidForEntities(ctx context.Context, customerID snowflake.ID, relatedIDs []snowflake.ID, now time.Time) error
}

var (
	ErrInvalidInvoiceID = errors.New("invalid_invoice_id")
	ErrInvoiceNotFound  = errors.New("invoice_not_found")
)
