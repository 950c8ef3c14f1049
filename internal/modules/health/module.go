package health

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"trade_risk/internal/modules/config"
	"trade_risk/internal/modules/health/service"
	metrics "trade_risk/internal/modules/metrics/service"
)

type Config struct {
	Addr              string // например ":8081"
	ReadHeaderTimeout time.Duration
}

func NewConfig(cfg *config.Config) Config {
	return Config{
		Addr:              cfg.AdminAddr(),
		ReadHeaderTimeout: cfg.Service.ReadHeaderTimeout,
	}
}

type statusResponse struct {
	Ready             bool  `json:"ready"`
	TelegramConnected bool  `json:"telegramConnected"`
	UptimeSec         int64 `json:"uptimeSec"`
	Calculations      int64 `json:"calculations"`
	LastCalcUnix      int64 `json:"lastCalcUnix"`
}

func NewMux(state *service.State, m *metrics.Metrics) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/livez", func(w http.ResponseWriter, r *http.Request) {
		// liveness: процесс жив
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		// readiness: сервис готов обслуживать трафик
		if !state.Ready() {
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		// полезный JSON для отладки
		resp := statusResponse{
			Ready:             state.Ready(),
			TelegramConnected: state.TelegramConnected(),
			UptimeSec:         int64(state.Uptime().Seconds()),
			Calculations:      state.Calculations(),
		}
		if t := state.LastCalculation(); !t.IsZero() {
			resp.LastCalcUnix = t.Unix()
		}
		body, err := sonic.Marshal(resp)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	})

	mux.Handle("/metrics", m.Handler())

	return mux
}

func RunHTTP(lc fx.Lifecycle, cfg Config, mux *http.ServeMux, state *service.State, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", cfg.Addr)
			if err != nil {
				return err
			}
			log.Info("admin http listening", zap.String("addr", ln.Addr().String()))
			go func() { _ = srv.Serve(ln) }()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			state.SetReady(false)
			return srv.Shutdown(ctx)
		},
	})
}

func Module() fx.Option {
	return fx.Module("health",
		fx.Provide(
			service.NewState,
			NewConfig,
			NewMux,
		),
		fx.Invoke(RunHTTP),
	)
}
