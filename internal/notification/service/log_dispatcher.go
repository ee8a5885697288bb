package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	notificationdomain "github.com/smallbiznis/sunset/internal/notification/domain"
	"go.uber.org/zap"
)

// LogDispatcher records notices in the application log. Used when no redis
// queue is configured, typically in development.
type LogDispatcher struct {
	log *zap.Logger
}

func NewLogDispatcher(log *zap.Logger) *LogDispatcher {
	return &LogDispatcher{log: log.Named("notification.log")}
}

func (d *LogDispatcher) SendInvoiceCreated(ctx context.Context, invoiceID snowflake.ID) error {
	_ = ctx
	d.log.Info("invoice created notice (delivery not configured)",
		zap.String("invoice_id", invoiceID.String()),
	)
	return nil
}

var _ notificationdomain.Dispatcher = (*LogDispatcher)(nil)
