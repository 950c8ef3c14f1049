package main

import (
	"go.uber.org/fx"

	"trade_risk/internal/modules/calculator"
	"trade_risk/internal/modules/config"
	"trade_risk/internal/modules/health"
	"trade_risk/internal/modules/logging"
	"trade_risk/internal/modules/metrics"
	telegram "trade_risk/internal/modules/telegram_bot"
	"trade_risk/internal/modules/tracing"
	"trade_risk/internal/modules/web"
)

func main() {
	app := fx.New(
		fx.WithLogger(logging.FxLogger),
		config.Module(),
		logging.Module(),
		tracing.Module(),
		metrics.Module(),
		health.Module(),
		calculator.Module(),
		web.Module(),
		telegram.Module(),
	)
	// Run блокируется до SIGINT/SIGTERM и сам вызывает OnStop хуки
	app.Run()
}
