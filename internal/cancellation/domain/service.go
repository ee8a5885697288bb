package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	hostingdomain "github.com/smallbiznis/sunset/internal/hosting/domain"
)

// StatusChangeRequest is the pre-commit trigger payload: a service is
// transitioning between statuses, optionally with an inline support-ticket
// reference entered by the admin.
type StatusChangeRequest struct {
	ServiceID      string
	NewStatus      hostingdomain.ServiceStatus
	PreviousStatus hostingdomain.ServiceStatus
	TicketRef      string
}

// CascadeResult reports what one cancellation pass did.
type CascadeResult struct {
	Triggered         bool
	Note              string
	CancelledAddonIDs []snowflake.ID
}

// Service orchestrates the cancellation cascade. HandleStatusChange runs
// the pre-commit phase: compose and stage the audit note, cancel
// subscriptions, cascade to addons, cancel and split unpaid invoices.
// CompleteServiceEdit runs post-commit and appends the staged note to the
// service record.
type Service interface {
	HandleStatusChange(ctx context.Context, req StatusChangeRequest) (CascadeResult, error)
	CompleteServiceEdit(ctx context.Context, serviceID string) error
}

var (
	ErrInvalidServiceID = errors.New("invalid_service_id")
	ErrServiceNotFound  = errors.New("service_not_found")
)
