package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/cobrato/cobrato/internal/clock"
	"github.com/cobrato/cobrato/internal/config"
	"github.com/cobrato/cobrato/internal/observability"
	"github.com/cobrato/cobrato/internal/server"
	"github.com/cobrato/cobrato/pkg/db"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,

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
