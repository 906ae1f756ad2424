package dispatch

import "go.uber.org/fx"

// Module wires the channel dispatcher.
var Module = fx.Module("dispatch",
	fx.Provide(New),
)
