package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/redis/go-redis/v9"
	"github.com/smallbiznis/sunset/internal/clock"
	notificationdomain "github.com/smallbiznis/sunset/internal/notification/domain"
	"go.uber.org/zap"
)

// QueueKey is the redis list the platform's mailer consumes.
const QueueKey = "sunset:notifications"

type queuedNotice struct {
	Type      string    `json:"type"`
	InvoiceID string    `json:"invoice_id"`
	QueuedAt  time.Time `json:"queued_at"`
}

// RedisDispatcher enqueues notices onto a redis list for asynchronous
// delivery by the platform mailer.
type RedisDispatcher struct {
	client *redis.Client
	clock  clock.Clock
	log    *zap.Logger
}

func NewRedisDispatcher(client *redis.Client, clk clock.Clock, log *zap.Logger) *RedisDispatcher {
	return &RedisDispatcher{
		client: client,
		clock:  clk,
		log:    log.Named("notification.redis"),
	}
}

func (d *RedisDispatcher) SendInvoiceCreated(ctx context.Context, invoiceID snowflake.ID) error {
	payload, err := json.Marshal(queuedNotice{
		Type:      "invoice.created",
		InvoiceID: invoiceID.String(),
		QueuedAt:  d.clock.Now(),
	})
	if err != nil {
		return err
	}

	if err := d.client.LPush(ctx, QueueKey, payload).Err(); err != nil {
		return err
	}

	d.log.Info("invoice created notice queued", zap.String("invoice_id", invoiceID.String()))
	return nil
}

var _ notificationdomain.Dispatcher = (*RedisDispatcher)(nil)
