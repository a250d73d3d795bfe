package datasource

import (
	"github.com/smallbiznis/vendhub/internal/datasource/demo"
	"go.uber.org/fx"
)

var Module = fx.Module("datasource",
	fx.Provide(demo.NewProvider),
)
