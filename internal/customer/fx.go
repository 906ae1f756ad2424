package customer

import (
	"github.com/cobrato/cobrato/internal/customer/repository"
	"github.com/cobrato/cobrato/internal/customer/service"
	"go.uber.org/fx"
)

var Module = fx.Module("customer.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
