package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/sspkit/razorgate/internal/clock"
	"github.com/sspkit/razorgate/internal/config"
	"github.com/sspkit/razorgate/internal/gateway"
	"github.com/sspkit/razorgate/internal/observability"
	"github.com/sspkit/razorgate/internal/server"
	"github.com/sspkit/razorgate/internal/webhook"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		clock.Module,

		gateway.Module,
		webhook.Module,
		server.Module,
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
