package domain

import (
	"context"
	"errors"
)

// SubscriptionCanceller cancels a recurring subscription at the payment
// gateway backing the given payment method. SupportsCancellation must be
// consulted before calling CancelSubscription.
type SubscriptionCanceller interface {
	SupportsCancellation(ctx context.Context, paymentMethod string) bool
	CancelSubscription(ctx context.Context, paymentMethod, subscriptionRef string) error
}

var (
	ErrGatewayNotConfigured  = errors.New("gateway_not_configured")
	ErrCancellationRejected  = errors.New("cancellation_rejected")
	ErrInvalidSubscriptionID = errors.New("invalid_subscription_id")
)
