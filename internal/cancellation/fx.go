package cancellation

import (
	"github.com/smallbiznis/sunset/internal/cancellation/service"
	"github.com/smallbiznis/sunset/internal/customfield"
	"github.com/smallbiznis/sunset/internal/gateway"
	"github.com/smallbiznis/sunset/internal/invoice"
	"go.uber.org/fx"
)

var Module = fx.Module("cancellation.service",
	customfield.Module,
	gateway.Module,
	invoice.Module,
	fx.Provide(service.NewService),
)
