package logging

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"trade_risk/internal/modules/config"
	"trade_risk/pkg/logger"
)

// NewLogger строит zap по конфигу и заодно инициализирует глобальный pkg/logger.
func NewLogger(lc fx.Lifecycle, cfg *config.Config) (*zap.Logger, error) {
	logger.SetServiceName(cfg.Service.Name)

	l, err := logger.New(cfg.Log)
	if err != nil {
		return nil, err
	}
	logger.Init(l)

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			// Sync на stdout/stderr часто возвращает EINVAL, игнорируем
			_ = l.Sync()
			return nil
		},
	})
	return l, nil
}

// FxLogger пишет события fx через тот же zap.
func FxLogger(l *zap.Logger) fxevent.Logger {
	return &fxevent.ZapLogger{Logger: l.Named("fx")}
}

func Module() fx.Option {
	return fx.Module("logging",
		fx.Provide(
			NewLogger,
		),
	)
}
