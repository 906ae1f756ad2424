package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/cobrato/cobrato/internal/clock"
	"github.com/cobrato/cobrato/internal/collectionrule"
	"github.com/cobrato/cobrato/internal/config"
	"github.com/cobrato/cobrato/internal/customer"
	"github.com/cobrato/cobrato/internal/dispatch"
	"github.com/cobrato/cobrato/internal/dunning"
	"github.com/cobrato/cobrato/internal/invoice"
	"github.com/cobrato/cobrato/internal/leaderlock"
	"github.com/cobrato/cobrato/internal/messaging"
	"github.com/cobrato/cobrato/internal/observability"
	"github.com/cobrato/cobrato/internal/organization"
	"github.com/cobrato/cobrato/internal/payment"
	"github.com/cobrato/cobrato/internal/scheduler"
	"github.com/cobrato/cobrato/pkg/db"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,

		// Domain services the batch depends on.
		organization.Module,
		customer.Module,
		collectionrule.Module,
		invoice.Module,
		messaging.Module,
		dispatch.Module,
		dunning.Module,
		payment.Module,

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
