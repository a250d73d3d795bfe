package movers

import (
	"github.com/smallbiznis/vendhub/internal/movers/service"
	"go.uber.org/fx"
)

var Module = fx.Module("movers.service",
	fx.Provide(service.NewService),
)
