package collectionrule

import (
	"github.com/cobrato/cobrato/internal/collectionrule/repository"
	"github.com/cobrato/cobrato/internal/collectionrule/service"
	"go.uber.org/fx"
)

var Module = fx.Module("collectionrule.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
