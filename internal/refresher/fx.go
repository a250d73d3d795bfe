package refresher

import (
	"context"

	"github.com/smallbiznis/vendhub/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("refresher",
	fx.Provide(ProvideConfig),
	fx.Provide(New),
	fx.Invoke(Start),
)

func ProvideConfig(cfg config.Config) Config {
	c := DefaultConfig()
	c.RunInterval = cfg.Reports.RefreshInterval
	return c.withDefaults()
}

func Start(lc fx.Lifecycle, r *Refresher) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			ctx, cancel := context.WithCancel(context.Background())

			go r.RunForever(ctx)

			lc.Append(fx.Hook{
				OnStop: func(context.Context) error {
					cancel()
					return nil
				},
			})

			return nil
		},
	})
}
