package metrics

import (
	"go.uber.org/fx"

	"trade_risk/internal/modules/metrics/service"
)

func Module() fx.Option {
	return fx.Module("metrics",
		fx.Provide(
			service.New,
		),
	)
}
