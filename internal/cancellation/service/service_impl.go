package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/sunset/internal/actorctx"
	auditdomain "github.com/smallbiznis/sunset/internal/audit/domain"
	cancellationdomain "github.com/smallbiznis/sunset/internal/cancellation/domain"
	"github.com/smallbiznis/sunset/internal/clock"
	"github.com/smallbiznis/sunset/internal/config"
	customfielddomain "github.com/smallbiznis/sunset/internal/customfield/domain"
	gatewaydomain "github.com/smallbiznis/sunset/internal/gateway/domain"
	hostingdomain "github.com/smallbiznis/sunset/internal/hosting/domain"
	invoicedomain "github.com/smallbiznis/sunset/internal/invoice/domain"
	"github.com/smallbiznis/sunset/pkg/db"
	"github.com/smallbiznis/sunset/pkg/repository"
	"github.com/smallbiznis/sunset/pkg/telemetry"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	Cfg        config.Config
	Clock      clock.Clock
	Resolver   customfielddomain.TicketResolver
	Gateway    gatewaydomain.SubscriptionCanceller
	InvoiceSvc invoicedomain.Service
	AuditSvc   auditdomain.Service
	Metrics    *telemetry.Metrics `optional:"true"`
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger
	cfg config.Config

	clock      clock.Clock
	resolver   customfielddomain.TicketResolver
	gateway    gatewaydomain.SubscriptionCanceller
	invoiceSvc invoicedomain.Service
	auditSvc   auditdomain.Service
	metrics    *telemetry.Metrics

	services repository.Repository[hostingdomain.Service]
	addons   repository.Repository[hostingdomain.Addon]
	pending  repository.Repository[cancellationdomain.PendingNote]
}

func NewService(p ServiceParam) cancellationdomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("cancellation.service"),
		cfg: p.Cfg,

		clock:      p.Clock,
		resolver:   p.Resolver,
		gateway:    p.Gateway,
		invoiceSvc: p.InvoiceSvc,
		auditSvc:   p.AuditSvc,
		metrics:    p.Metrics,

		services: repository.ProvideStore[hostingdomain.Service](p.DB),
		addons:   repository.ProvideStore[hostingdomain.Addon](p.DB),
		pending:  repository.ProvideStore[cancellationdomain.PendingNote](p.DB),
	}
}

// HandleStatusChange implements domain.Service.
func (s *Service) HandleStatusChange(ctx context.Context, req cancellationdomain.StatusChangeRequest) (cancellationdomain.CascadeResult, error) {
	serviceID, err := snowflake.ParseString(strings.TrimSpace(req.ServiceID))
	if err != nil {
		return cancellationdomain.CascadeResult{}, cancellationdomain.ErrInvalidServiceID
	}

	svc, err := s.services.FindOne(ctx, &hostingdomain.Service{ID: serviceID})
	if err != nil {
		return cancellationdomain.CascadeResult{}, err
	}
	if svc == nil {
		return cancellationdomain.CascadeResult{}, cancellationdomain.ErrServiceNotFound
	}

	if req.NewStatus != hostingdomain.ServiceStatusCancelled ||
		req.PreviousStatus == hostingdomain.ServiceStatusCancelled {
		return cancellationdomain.CascadeResult{}, nil
	}

	now := s.clock.Now()
	actor := actorctx.ActorFromContext(ctx)
	ticketRef := s.resolver.TicketRef(ctx, svc.ID, req.TicketRef)
	note := ComposeNote(actor, now, ticketRef)

	s.stageNote(ctx, svc.ID, note)

	// The service's own recurring subscription goes first; a gateway
	// failure never blocks the rest of the cascade.
	if s.cancelSubscription(ctx, "service", svc.ID, svc.PaymentMethod, svc.SubscriptionRef) {
		s.clearSubscriptionRef(ctx, hostingdomain.Service{}.TableName(), svc.ID)
	}

	relatedIDs := []snowflake.ID{svc.ID}
	var cancelledAddons []snowflake.ID
	if s.cfg.CascadeAddons {
		relatedIDs, cancelledAddons = s.cascadeAddons(ctx, svc.ID, note, now, relatedIDs)
	}

	if err := s.invoiceSvc.CancelUnpaidForEntities(ctx, svc.CustomerID, relatedIDs, now); err != nil {
		// Unrecoverable read of the unpaid invoice list; everything done so
		// far stands, the caller still observes a successful cancellation.
		s.log.Error("failed to process unpaid invoices",
			zap.String("service_id", svc.ID.String()),
			zap.String("customer_id", svc.CustomerID.String()),
			zap.Error(err),
		)
		s.auditSvc.Record(ctx, "cancellation.invoices_failed", "service", svc.ID,
			"Unable to process unpaid invoices: "+err.Error(), nil)
		s.metrics.CancellationProcessed("partial")
	} else {
		s.metrics.CancellationProcessed("ok")
	}

	s.auditSvc.Record(ctx, "cancellation.cascade", "service", svc.ID, note, map[string]any{
		"actor":            actor,
		"ticket_ref":       ticketRef,
		"cancelled_addons": len(cancelledAddons),
	})

	return cancellationdomain.CascadeResult{
		Triggered:         true,
		Note:              note,
		CancelledAddonIDs: cancelledAddons,
	}, nil
}

// CompleteServiceEdit implements domain.Service. It runs after the host
// platform has committed the service's own status update and appends the
// staged note to the service record.
func (s *Service) CompleteServiceEdit(ctx context.Context, serviceID string) error {
	id, err := snowflake.ParseString(strings.TrimSpace(serviceID))
	if err != nil {
		return cancellationdomain.ErrInvalidServiceID
	}

	staged, err := s.pending.FindOne(ctx, &cancellationdomain.PendingNote{ServiceID: id})
	if err != nil {
		return err
	}
	if staged == nil {
		return nil
	}

	svc, err := s.services.FindOne(ctx, &hostingdomain.Service{ID: id})
	if err != nil {
		return err
	}
	if svc == nil {
		return cancellationdomain.ErrServiceNotFound
	}

	if err := s.services.Update(ctx, id.String(), map[string]any{
		"notes":      appendNote(svc.Notes, staged.Note),
		"updated_at": s.clock.Now(),
	}); err != nil {
		return err
	}

	return s.db.WithContext(ctx).
		Where("service_id = ?", id).
		Delete(&cancellationdomain.PendingNote{}).Error
}

// stageNote upserts the pending note for the post-commit phase. A repeated
// trigger for the same service simply refreshes the staged text.
func (s *Service) stageNote(ctx context.Context, serviceID snowflake.ID, note string) {
	entry := cancellationdomain.PendingNote{
		ServiceID: serviceID,
		Note:      note,
		CreatedAt: s.clock.Now(),
	}
	err := s.pending.Create(ctx, &entry)
	if err != nil && db.IsDuplicateKeyErr(err) {
		err = s.db.WithContext(ctx).
			Model(&cancellationdomain.PendingNote{}).
			Where("service_id = ?", serviceID).
			Updates(map[string]any{
				"note":       note,
				"created_at": entry.CreatedAt,
			}).Error
	}
	if err != nil {
		s.log.Error("failed to stage cancellation note",
			zap.String("service_id", serviceID.String()),
			zap.Error(err),
		)
		s.auditSvc.Record(ctx, "cancellation.note_failed", "service", serviceID,
			"Unable to stage cancellation note: "+err.Error(), nil)
	}
}

// cancelSubscription issues a gateway cancellation when there is a
// subscription to cancel and the gateway supports it. Reports whether the
// stored reference should be cleared.
func (s *Service) cancelSubscription(ctx context.Context, entity string, id snowflake.ID, paymentMethod string, ref *string) bool {
	if ref == nil || strings.TrimSpace(*ref) == "" {
		return false
	}
	if !s.gateway.SupportsCancellation(ctx, paymentMethod) {
		return false
	}

	if err := s.gateway.CancelSubscription(ctx, paymentMethod, *ref); err != nil {
		s.metrics.GatewayCancellation("error")
		s.log.Error("failed to cancel subscription at gateway",
			zap.String("entity", entity),
			zap.String("entity_id", id.String()),
			zap.String("payment_method", paymentMethod),
			zap.Error(err),
		)
		s.auditSvc.Record(ctx, "cancellation.subscription_failed", entity, id,
			"Unable to cancel subscription: "+err.Error(), map[string]any{
				"payment_method": paymentMethod,
			})
		return false
	}

	s.metrics.GatewayCancellation("ok")
	return true
}

func (s *Service) clearSubscriptionRef(ctx context.Context, table string, id snowflake.ID) {
	err := s.db.WithContext(ctx).
		Table(table).
		Where("id = ?", id).
		Update("subscription_ref", nil).Error
	if err != nil {
		s.log.Warn("failed to clear subscription reference",
			zap.String("table", table),
			zap.String("id", id.String()),
			zap.Error(err),
		)
	}
}
