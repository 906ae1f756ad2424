package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/cobrato/cobrato/internal/clock"
	"github.com/cobrato/cobrato/internal/config"
	"github.com/cobrato/cobrato/internal/leaderlock"
	"github.com/cobrato/cobrato/internal/migration"
	"github.com/cobrato/cobrato/internal/observability"
	"github.com/cobrato/cobrato/internal/scheduler"
	"github.com/cobrato/cobrato/internal/server"
	"github.com/cobrato/cobrato/pkg/db"
)

// The monolith runs the API and the daily batch in one process. Deployments
// that split them use apps/api and apps/scheduler instead.
func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,

		server.Module,

		leaderlock.Module,
		scheduler.Module,
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
