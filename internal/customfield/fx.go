package customfield

import (
	"github.com/smallbiznis/sunset/internal/customfield/service"
	"go.uber.org/fx"
)

var Module = fx.Module("customfield.service",
	fx.Provide(service.NewResolver),
)
