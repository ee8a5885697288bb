package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	hostingdomain "github.com/smallbiznis/sunset/internal/hosting/domain"
	"go.uber.org/zap"
)

// cascadeAddons cancels every addon attached to the service, tagging each
// with the composed note. Every addon id joins the related set whether or
// not its cancellation succeeded: its line items still bill for the
// cancelled service. One addon's failure never blocks its siblings.
func (s *Service) cascadeAddons(ctx context.Context, serviceID snowflake.ID, note string, now time.Time, relatedIDs []snowflake.ID) ([]snowflake.ID, []snowflake.ID) {
	addons, err := s.addons.Find(ctx, &hostingdomain.Addon{ServiceID: serviceID})
	if err != nil {
		s.log.Error("failed to list addons for cascade",
			zap.String("service_id", serviceID.String()),
			zap.Error(err),
		)
		s.auditSvc.Record(ctx, "cancellation.addons_failed", "service", serviceID,
			"Unable to list addons: "+err.Error(), nil)
		return relatedIDs, nil
	}

	var cancelled []snowflake.ID
	for _, addon := range addons {
		if addon == nil {
			continue
		}
		relatedIDs = append(relatedIDs, addon.ID)

		if addon.Status == hostingdomain.ServiceStatusCancelled {
			continue
		}

		if err := s.addons.Update(ctx, addon.ID.String(), map[string]any{
			"status":           hostingdomain.ServiceStatusCancelled,
			"termination_date": now,
			"notes":            appendNote(addon.Notes, note),
			"updated_at":       now,
		}); err != nil {
			s.log.Error("failed to cancel addon",
				zap.String("addon_id", addon.ID.String()),
				zap.Error(err),
			)
			s.auditSvc.Record(ctx, "cancellation.addon_failed", "addon", addon.ID,
				"Unable to cancel addon: "+err.Error(), nil)
			continue
		}

		s.metrics.AddonCancelled()
		cancelled = append(cancelled, addon.ID)
		s.auditSvc.Record(ctx, "cancellation.addon_cancelled", "addon", addon.ID, note, nil)

		if s.cancelSubscription(ctx, "addon", addon.ID, addon.PaymentMethod, addon.SubscriptionRef) {
			s.clearSubscriptionRef(ctx, hostingdomain.Addon{}.TableName(), addon.ID)
		}
	}

	return relatedIDs, cancelled
}
