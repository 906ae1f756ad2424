package messaging

import (
	"go.uber.org/fx"

	"github.com/cobrato/cobrato/internal/messaging/channel"
	"github.com/cobrato/cobrato/internal/messaging/repository"
	"github.com/cobrato/cobrato/internal/messaging/service"
)

// Module wires the messaging feature.
var Module = fx.Module("messaging.service",
	fx.Provide(channel.NewRegistry),
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
