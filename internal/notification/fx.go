package notification

import (
	"github.com/redis/go-redis/v9"
	"github.com/smallbiznis/sunset/internal/clock"
	"github.com/smallbiznis/sunset/internal/config"
	notificationdomain "github.com/smallbiznis/sunset/internal/notification/domain"
	"github.com/smallbiznis/sunset/internal/notification/service"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func newDispatcher(cfg config.Config, clk clock.Clock, log *zap.Logger) notificationdomain.Dispatcher {
	if cfg.RedisAddr == "" {
		return service.NewLogDispatcher(log)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	return service.NewRedisDispatcher(client, clk, log)
}

var Module = fx.Module("notification.service",
	fx.Provide(newDispatcher),
)
