package dunning

import (
	"go.uber.org/fx"

	"github.com/cobrato/cobrato/internal/dunning/service"
)

// Module wires the dispatch orchestrator.
var Module = fx.Module("dunning.service",
	fx.Provide(service.New),
)
