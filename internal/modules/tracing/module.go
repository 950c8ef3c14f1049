package tracing

import (
	"context"

	"github.com/opentracing/opentracing-go"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"trade_risk/internal/modules/config"
	"trade_risk/pkg/tracing"
)

// NewTracer поднимает jaeger, если он включён, иначе отдаёт NoopTracer.
func NewTracer(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (opentracing.Tracer, error) {
	if !cfg.Tracing.Enabled {
		return opentracing.NoopTracer{}, nil
	}

	tracing.SetServiceName(cfg.Service.Name)
	tracer, closeFn, err := tracing.InitTracer(tracing.Config{
		Host: cfg.Tracing.Host,
		Port: cfg.Tracing.Port,
	})
	if err != nil {
		return nil, err
	}
	log.Info("jaeger tracer started",
		zap.String("host", cfg.Tracing.Host), zap.Int("port", cfg.Tracing.Port))

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			closeFn()
			return nil
		},
	})
	return tracer, nil
}

func Module() fx.Option {
	return fx.Module("tracing",
		fx.Provide(
			NewTracer,
		),
	)
}
