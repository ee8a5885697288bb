package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/samber/lo"
	auditdomain "github.com/smallbiznis/sunset/internal/audit/domain"
	invoicedomain "github.com/smallbiznis/sunset/internal/invoice/domain"
	notificationdomain "github.com/smallbiznis/sunset/internal/notification/domain"
	"github.com/smallbiznis/sunset/pkg/repository"
	"github.com/smallbiznis/sunset/pkg/telemetry"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	AuditSvc auditdomain.Service
	Notifier notificationdomain.Dispatcher
	Metrics  *telemetry.Metrics `optional:"true"`
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID    *snowflake.Node
	invoices repository.Repository[invoicedomain.Invoice]
	items    repository.Repository[invoicedomain.InvoiceItem]
	auditSvc auditdomain.Service
	notifier notificationdomain.Dispatcher
	metrics  *telemetry.Metrics
}

func NewService(p ServiceParam) invoicedomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("invoice.service"),
		genID: p.GenID,

		invoices: repository.ProvideStore[invoicedomain.Invoice](p.DB),
		items:    repository.ProvideStore[invoicedomain.InvoiceItem](p.DB),
		auditSvc: p.AuditSvc,
		notifier: p.Notifier,
		metrics:  p.Metrics,
	}
}

func (s *Service) List(ctx context.Context, req invoicedomain.ListInvoiceRequest) (invoicedomain.ListInvoiceResponse, error) {
	filter := &invoicedomain.Invoice{}
	if req.Status != nil {
		filter.Status = *req.Status
	}
	if req.CustomerID != nil {
		filter.CustomerID = *req.CustomerID
	}

	items, err := s.invoices.Find(ctx, filter)
	if err != nil {
		return invoicedomain.ListInvoiceResponse{}, err
	}

	invoices := make([]invoicedomain.Invoice, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		invoices = append(invoices, *item)
	}

	return invoicedomain.ListInvoiceResponse{Invoices: invoices}, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (invoicedomain.Invoice, error) {
	invoiceID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return invoicedomain.Invoice{}, invoicedomain.ErrInvalidInvoiceID
	}

	item, err := s.invoices.FindOne(ctx, &invoicedomain.Invoice{ID: invoiceID})
	if err != nil {
		return invoicedomain.Invoice{}, err
	}
	if item == nil {
		return invoicedomain.Invoice{}, invoicedomain.ErrInvoiceNotFound
	}

	return *item, nil
}

// CancelUnpaidForEntities implements domain.Service.
func (s *Service) CancelUnpaidForEntities(ctx context.Context, customerID snowflake.ID, relatedIDs []snowflake.ID, now time.Time) error {
	unpaid, err := s.invoices.Find(ctx, &invoicedomain.Invoice{
		CustomerID: customerID,
		Status:     invoicedomain.InvoiceStatusUnpaid,
	})
	if err != nil {
		return err
	}

	relatedSet := lo.SliceToMap(relatedIDs, func(id snowflake.ID) (snowflake.ID, struct{}) {
		return id, struct{}{}
	})

	for _, inv := range unpaid {
		if inv == nil {
			continue
		}
		s.cancelInvoice(ctx, *inv, relatedSet, now)
	}
	return nil
}

// cancelInvoice cancels one unpaid invoice and, when the invoice also
// bills for entities outside the related set, splits it: the original
// record keeps the cancelled obligation, a fresh unpaid invoice carries
// the surviving items. Failures never abort the remaining invoices.
func (s *Service) cancelInvoice(ctx context.Context, inv invoicedomain.Invoice, relatedSet map[snowflake.ID]struct{}, now time.Time) {
	itemPtrs, err := s.items.Find(ctx, &invoicedomain.InvoiceItem{InvoiceID: inv.ID})
	if err != nil {
		s.log.Error("failed to load invoice items",
			zap.String("invoice_id", inv.ID.String()),
			zap.Error(err),
		)
		s.auditSvc.Record(ctx, "invoice.cancel_failed", "invoice", inv.ID,
			"Unable to load line items: "+err.Error(), nil)
		return
	}

	items := make([]invoicedomain.InvoiceItem, 0, len(itemPtrs))
	for _, item := range itemPtrs {
		if item == nil {
			continue
		}
		items = append(items, *item)
	}

	related, unrelated := lo.FilterReject(items, func(item invoicedomain.InvoiceItem, _ int) bool {
		_, ok := relatedSet[item.RelID]
		return ok
	})

	// The original invoice always represents the cancelled obligation,
	// split or not.
	if err := s.markCancelled(ctx, inv.ID, now); err != nil {
		s.log.Error("failed to cancel invoice",
			zap.String("invoice_id", inv.ID.String()),
			zap.Error(err),
		)
		s.auditSvc.Record(ctx, "invoice.cancel_failed", "invoice", inv.ID,
			"Unable to cancel invoice: "+err.Error(), nil)
	} else {
		s.metrics.InvoiceCancelled()
		s.auditSvc.Record(ctx, "invoice.cancelled", "invoice", inv.ID,
			"Invoice cancelled by service cancellation", map[string]any{
				"line_items": len(items),
				"related":    len(related),
			})
	}

	if len(unrelated) == 0 {
		return
	}

	s.split(ctx, inv, related, unrelated, now)
}

func (s *Service) split(ctx context.Context, inv invoicedomain.Invoice, related, unrelated []invoicedomain.InvoiceItem, now time.Time) {
	newInvoice := invoicedomain.Invoice{
		ID:            s.genID.Generate(),
		CustomerID:    inv.CustomerID,
		Status:        invoicedomain.InvoiceStatusUnpaid,
		PaymentMethod: inv.PaymentMethod,
		TaxRate:       inv.TaxRate,
		TaxRate2:      inv.TaxRate2,
		Date:          now,
		DueDate:       inv.DueDate,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.invoices.Create(ctx, &newInvoice); err != nil {
		s.log.Error("failed to create replacement invoice",
			zap.String("invoice_id", inv.ID.String()),
			zap.Error(err),
		)
		s.auditSvc.Record(ctx, "invoice.split_failed", "invoice", inv.ID,
			"Unable to create replacement invoice: "+err.Error(), nil)
		return
	}

	// Every unrelated item must move before either totals recomputation
	// runs, so the calculator sees a fully-moved set.
	moved := make([]invoicedomain.InvoiceItem, 0, len(unrelated))
	for _, item := range unrelated {
		if err := s.items.Update(ctx, item.ID.String(), map[string]any{
			"invoice_id": newInvoice.ID,
		}); err != nil {
			s.log.Error("failed to move invoice item",
				zap.String("item_id", item.ID.String()),
				zap.String("from_invoice", inv.ID.String()),
				zap.String("to_invoice", newInvoice.ID.String()),
				zap.Error(err),
			)
			continue
		}
		item.InvoiceID = newInvoice.ID
		moved = append(moved, item)
	}

	if len(moved) != len(unrelated) {
		// Items left behind will be counted into the cancelled invoice's
		// totals; flagged separately so operators can reconcile.
		s.metrics.SplitInconsistency()
		s.log.Error("inconsistent invoice split: not every unrelated item moved",
			zap.String("invoice_id", inv.ID.String()),
			zap.String("new_invoice_id", newInvoice.ID.String()),
			zap.Int("expected", len(unrelated)),
			zap.Int("moved", len(moved)),
		)
		s.auditSvc.Record(ctx, "invoice.split_inconsistent", "invoice", inv.ID,
			"Invoice split left unrelated items on the cancelled invoice", map[string]any{
				"new_invoice_id": newInvoice.ID.String(),
				"expected":       len(unrelated),
				"moved":          len(moved),
			})
	}

	retained := related
	if len(moved) != len(unrelated) {
		stranded := lo.Reject(unrelated, func(item invoicedomain.InvoiceItem, _ int) bool {
			return lo.ContainsBy(moved, func(m invoicedomain.InvoiceItem) bool { return m.ID == item.ID })
		})
		retained = append(append([]invoicedomain.InvoiceItem{}, related...), stranded...)
	}

	s.applyTotals(ctx, newInvoice.ID, CalculateTotals(newInvoice.TaxRate, newInvoice.TaxRate2, newInvoice.Credit, moved), now)
	s.applyTotals(ctx, inv.ID, CalculateTotals(inv.TaxRate, inv.TaxRate2, inv.Credit, retained), now)

	s.metrics.InvoiceSplit()
	s.auditSvc.Record(ctx, "invoice.split", "invoice", inv.ID,
		"Unrelated line items moved to a new invoice", map[string]any{
			"new_invoice_id": newInvoice.ID.String(),
			"moved_items":    len(moved),
		})

	if err := s.notifier.SendInvoiceCreated(ctx, newInvoice.ID); err != nil {
		s.log.Error("failed to dispatch invoice created notice",
			zap.String("invoice_id", newInvoice.ID.String()),
			zap.Error(err),
		)
	}
}

func (s *Service) markCancelled(ctx context.Context, id snowflake.ID, now time.Time) error {
	return s.db.WithContext(ctx).Exec(
		`UPDATE invoices
		 SET status = ?, date_cancelled = ?, updated_at = ?
		 WHERE id = ?`,
		invoicedomain.InvoiceStatusCancelled,
		now,
		now,
		id,
	).Error
}

// applyTotals writes all four money columns in one statement; the invoice
// never holds a partially updated summary.
func (s *Service) applyTotals(ctx context.Context, id snowflake.ID, totals invoicedomain.Totals, now time.Time) {
	err := s.db.WithContext(ctx).Exec(
		`UPDATE invoices
		 SET subtotal = ?, tax = ?, tax2 = ?, total = ?, updated_at = ?
		 WHERE id = ?`,
		totals.Subtotal,
		totals.Tax,
		totals.Tax2,
		totals.Total,
		now,
		id,
	).Error
	if err != nil {
		s.log.Error("failed to update invoice totals",
			zap.String("invoice_id", id.String()),
			zap.Error(err),
		)
		s.auditSvc.Record(ctx, "invoice.totals_failed", "invoice", id,
			"Unable to update totals: "+err.Error(), nil)
	}
}
