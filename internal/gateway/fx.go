package gateway

import (
	"github.com/smallbiznis/sunset/internal/gateway/service"
	"go.uber.org/fx"
)

var Module = fx.Module("gateway.service",
	fx.Provide(service.New),
)
