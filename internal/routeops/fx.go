package routeops

import (
	"github.com/smallbiznis/vendhub/internal/routeops/service"
	"go.uber.org/fx"
)

var Module = fx.Module("routeops.service",
	fx.Provide(service.NewService),
)
