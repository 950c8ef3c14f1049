package web

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	calculator "trade_risk/internal/modules/calculator/service"
	"trade_risk/internal/modules/config"
	health "trade_risk/internal/modules/health/service"
	metrics "trade_risk/internal/modules/metrics/service"
	"trade_risk/internal/modules/web/service"
)

type Config struct {
	Addr              string
	ReadHeaderTimeout time.Duration
	Handler           service.Options
}

func NewConfig(cfg *config.Config) Config {
	return Config{
		Addr:              cfg.PublicAddr(),
		ReadHeaderTimeout: cfg.Service.ReadHeaderTimeout,
		Handler: service.Options{
			RateRPS:   cfg.RateLimit.RPS,
			RateBurst: cfg.RateLimit.Burst,
		},
	}
}

func NewHandler(cfg Config, calc *calculator.Service, log *zap.Logger, m *metrics.Metrics) (*service.Handler, error) {
	return service.NewHandler(calc, log, m, cfg.Handler)
}

// RunHTTP поднимает публичный сервер и выставляет readiness после Listen.
func RunHTTP(lc fx.Lifecycle, cfg Config, h *service.Handler, state *health.State, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           h.Routes(),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", cfg.Addr)
			if err != nil {
				return err
			}
			log.Info("public http listening", zap.String("addr", ln.Addr().String()))
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("public http stopped", zap.Error(err))
					state.SetReady(false)
				}
			}()
			state.SetReady(true)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			state.SetReady(false)
			return srv.Shutdown(ctx)
		},
	})
}

func Module() fx.Option {
	return fx.Module("web",
		fx.Provide(
			NewConfig,
			NewHandler,
		),
		fx.Invoke(RunHTTP),
	)
}
