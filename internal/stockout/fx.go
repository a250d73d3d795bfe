package stockout

import (
	"github.com/smallbiznis/vendhub/internal/stockout/service"
	"go.uber.org/fx"
)

var Module = fx.Module("stockout.service",
	fx.Provide(service.NewService),
)
