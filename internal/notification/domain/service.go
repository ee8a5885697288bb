// Package domain defines the outbound notification contract. Delivery
// itself (email rendering, templates) belongs to the host platform.
package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

// Dispatcher hands customer-facing notices to the platform's delivery
// pipeline. Failures are reported to the caller, which decides whether to
// propagate or log.
type Dispatcher interface {
	SendInvoiceCreated(ctx context.Context, invoiceID snowflake.ID) error
}
