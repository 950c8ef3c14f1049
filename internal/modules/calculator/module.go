package calculator

import (
	"go.uber.org/fx"

	"trade_risk/internal/modules/calculator/service"
)

func Module() fx.Option {
	return fx.Module("calculator",
		fx.Provide(
			service.New,
		),
	)
}
