package invoice

import (
	"go.uber.org/fx"

	"github.com/cobrato/cobrato/internal/invoice/repository"
	"github.com/cobrato/cobrato/internal/invoice/service"
)

// Module wires the invoice feature.
var Module = fx.Module("invoice.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
