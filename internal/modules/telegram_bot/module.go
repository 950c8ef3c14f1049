package telegram

import (
	"context"

	"go.uber.org/fx"

	calculator "trade_risk/internal/modules/calculator/service"
	"trade_risk/internal/modules/telegram_bot/service"
)

func Module() fx.Option {
	return fx.Module("telegram",
		// Сервис Telegram как *service.Telegram (nil, если токена нет)
		fx.Provide(
			func(c *calculator.Service) service.Calculator { return c },
			service.NewTelegram,
		),
		// Запуск основного цикла через Lifecycle
		fx.Invoke(
			func(lc fx.Lifecycle, t *service.Telegram) {
				if t == nil {
					return
				}
				lc.Append(fx.Hook{
					OnStart: func(ctx context.Context) error {
						t.Start(ctx)
						return nil
					},
					OnStop: func(ctx context.Context) error {
						return t.Stop(ctx)
					},
				})
			},
		),
	)
}
