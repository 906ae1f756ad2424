package organization

import (
	"github.com/cobrato/cobrato/internal/organization/repository"
	"github.com/cobrato/cobrato/internal/organization/service"
	"go.uber.org/fx"
)

var Module = fx.Module("organization.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
