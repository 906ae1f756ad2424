package payment

import (
	"go.uber.org/fx"

	"github.com/cobrato/cobrato/internal/config"
	"github.com/cobrato/cobrato/internal/payment/adapters"
	"github.com/cobrato/cobrato/internal/payment/adapters/asaas"
	"github.com/cobrato/cobrato/internal/payment/adapters/mercadopago"
	"github.com/cobrato/cobrato/internal/payment/service"
)

// Module wires the payment-link feature.
var Module = fx.Module("payment.service",
	fx.Provide(func(cfg config.Config) *adapters.Registry {
		return adapters.NewRegistry(
			mercadopago.NewFactory(cfg.MercadoPagoEndpoint),
			asaas.NewFactory(cfg.AsaasEndpoint),
		)
	}),
	fx.Provide(service.New),
)
