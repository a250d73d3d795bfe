package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/vendhub/internal/clock"
	"github.com/smallbiznis/vendhub/internal/config"
	"github.com/smallbiznis/vendhub/internal/observability"
	"github.com/smallbiznis/vendhub/internal/refresher"
	"github.com/smallbiznis/vendhub/internal/server"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		clock.Module,

		server.Module,
		refresher.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
