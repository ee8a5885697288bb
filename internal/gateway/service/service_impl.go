package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/smallbiznis/sunset/internal/config"
	gatewaydomain "github.com/smallbiznis/sunset/internal/gateway/domain"
	"github.com/smallbiznis/sunset/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB  *gorm.DB
	Log *zap.Logger
	Cfg config.Config
}

type Service struct {
	log     *zap.Logger
	configs repository.Repository[gatewaydomain.ProviderConfig]
	client  *retryablehttp.Client
}

func New(p Params) gatewaydomain.SubscriptionCanceller {
	client := retryablehttp.NewClient()
	client.RetryMax = 2
	client.RetryWaitMin = 500 * time.Millisecond
	client.RetryWaitMax = 2 * time.Second
	client.HTTPClient.Timeout = time.Duration(p.Cfg.GatewayTimeoutSeconds) * time.Second
	client.Logger = nil

	return &Service{
		log:     p.Log.Named("gateway.service"),
		configs: repository.ProvideStore[gatewaydomain.ProviderConfig](p.DB),
		client:  client,
	}
}

func (s *Service) SupportsCancellation(ctx context.Context, paymentMethod string) bool {
	cfg, err := s.lookup(ctx, paymentMethod)
	if err != nil {
		s.log.Warn("gateway capability lookup failed",
			zap.String("payment_method", paymentMethod),
			zap.Error(err),
		)
		return false
	}
	return cfg != nil && cfg.SupportsCancellation && cfg.Endpoint != ""
}

func (s *Service) CancelSubscription(ctx context.Context, paymentMethod, subscriptionRef string) error {
	subscriptionRef = strings.TrimSpace(subscriptionRef)
	if subscriptionRef == "" {
		return gatewaydomain.ErrInvalidSubscriptionID
	}

	cfg, err := s.lookup(ctx, paymentMethod)
	if err != nil {
		return err
	}
	if cfg == nil || !cfg.SupportsCancellation || cfg.Endpoint == "" {
		return gatewaydomain.ErrGatewayNotConfigured
	}

	payload, err := json.Marshal(map[string]string{
		"subscription_id": subscriptionRef,
	})
	if err != nil {
		return err
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, cfg.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("gateway %s: %w", cfg.Provider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("gateway %s returned %d: %w", cfg.Provider, resp.StatusCode, gatewaydomain.ErrCancellationRejected)
	}

	s.log.Info("subscription cancelled at gateway",
		zap.String("provider", cfg.Provider),
		zap.String("subscription_ref", subscriptionRef),
	)
	return nil
}

func (s *Service) lookup(ctx context.Context, paymentMethod string) (*gatewaydomain.ProviderConfig, error) {
	paymentMethod = strings.TrimSpace(paymentMethod)
	if paymentMethod == "" {
		return nil, nil
	}
	return s.configs.FindOne(ctx, &gatewaydomain.ProviderConfig{
		Provider: paymentMethod,
		IsActive: true,
	})
}
